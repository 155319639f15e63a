package conversation

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"vetchat/relay/pkg/proxy/types"
)

func TestEncoder_Encode(t *testing.T) {
	enc := NewEncoder()
	ctx := context.Background()

	t.Run("image", func(t *testing.T) {
		atts, err := enc.Encode(ctx, File{Name: "xray.png", Data: pngBytes})
		if err != nil {
			t.Fatalf("Encode() error = %v", err)
		}
		if len(atts) != 1 {
			t.Fatalf("got %d attachments, want 1", len(atts))
		}
		a := atts[0]
		if a.Kind != KindImage || a.MIME != MIMEPNG || a.Size != int64(len(pngBytes)) {
			t.Errorf("attachment = %+v", a)
		}
		if a.Data != base64.StdEncoding.EncodeToString(pngBytes) {
			t.Error("data is not the base64 of the file")
		}
		part := a.Part()
		if part.Type != types.PartTypeImageURL || !strings.HasPrefix(part.ImageURL.URL, "data:image/png;base64,") {
			t.Errorf("part = %+v", part)
		}
	})

	t.Run("text document", func(t *testing.T) {
		atts, err := enc.Encode(ctx, File{Name: "notes.txt", Data: []byte("A/G ratio 0.3")})
		if err != nil {
			t.Fatalf("Encode() error = %v", err)
		}
		part := atts[0].Part()
		if part.Type != types.PartTypeText || !strings.Contains(part.Text, "notes.txt") || !strings.Contains(part.Text, "A/G ratio 0.3") {
			t.Errorf("part = %+v", part)
		}
	})

	t.Run("pdf as native file", func(t *testing.T) {
		atts, err := enc.Encode(ctx, File{Name: "labs.pdf", Data: minimalPDF(2)})
		if err != nil {
			t.Fatalf("Encode() error = %v", err)
		}
		a := atts[0]
		if a.Kind != KindDocument || a.Pages != 2 {
			t.Errorf("attachment = %+v", a)
		}
		part := a.Part()
		if part.Type != types.PartTypeFile || part.File.Filename != "labs.pdf" ||
			!strings.HasPrefix(part.File.FileData, "data:application/pdf;base64,") {
			t.Errorf("part = %+v", part)
		}
	})

	t.Run("empty file", func(t *testing.T) {
		_, err := enc.Encode(ctx, File{Name: "empty.png"})
		var fileErr *FileError
		if !errors.As(err, &fileErr) || fileErr.Name != "empty.png" {
			t.Errorf("error = %v, want FileError", err)
		}
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := enc.Encode(ctx, File{Name: "a.zip", Data: zipBytes})
		if !errors.Is(err, ErrUnsupported) {
			t.Errorf("error = %v, want ErrUnsupported", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		if _, err := enc.Encode(cctx, File{Name: "xray.png", Data: pngBytes}); !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	})
}

func TestEncoder_MaxFileBytes(t *testing.T) {
	enc := NewEncoder(WithMaxFileBytes(16))

	_, err := enc.Encode(context.Background(), File{Name: "big.png", Data: pngBytes})
	if err == nil || !strings.Contains(err.Error(), "larger than the 16 B limit") {
		t.Errorf("error = %v", err)
	}
}

func TestEncoder_Rasterizer(t *testing.T) {
	var gotPages int
	raster := RasterizerFunc(func(ctx context.Context, name string, data []byte, pages int) ([]Page, error) {
		gotPages = pages
		out := make([]Page, pages)
		for i := range out {
			out[i] = Page{Data: pngBytes}
		}
		return out, nil
	})
	enc := NewEncoder(WithRasterizer(raster))

	atts, err := enc.Encode(context.Background(), File{Name: "labs.pdf", Data: minimalPDF(2)})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	if gotPages != 2 {
		t.Errorf("rasterizer got %d pages, want 2", gotPages)
	}
	if len(atts) != 2 {
		t.Fatalf("got %d attachments, want 2", len(atts))
	}
	for i, a := range atts {
		if a.Kind != KindImage || a.MIME != MIMEPNG {
			t.Errorf("page %d = %+v", i, a)
		}
	}
	if atts[1].Name != "labs.pdf (page 2)" {
		t.Errorf("name = %q", atts[1].Name)
	}
}

func TestEncoder_RasterizerError(t *testing.T) {
	raster := RasterizerFunc(func(context.Context, string, []byte, int) ([]Page, error) {
		return nil, errors.New("no renderer")
	})
	enc := NewEncoder(WithRasterizer(raster))

	_, err := enc.Encode(context.Background(), File{Name: "labs.pdf", Data: minimalPDF(1)})
	if err == nil || !strings.Contains(err.Error(), "failed to rasterize") {
		t.Errorf("error = %v", err)
	}
}

func TestEncoder_EncodeAll(t *testing.T) {
	enc := NewEncoder(WithConcurrency(2))
	files := []File{
		{Name: "a.png", Data: pngBytes},
		{Name: "b.gif", Data: gifBytes},
		{Name: "c.txt", Data: []byte("notes")},
		{Name: "d.jpg", Data: jpegBytes},
	}

	atts, err := enc.EncodeAll(context.Background(), files)
	if err != nil {
		t.Fatalf("EncodeAll() error = %v", err)
	}

	if len(atts) != len(files) {
		t.Fatalf("got %d attachments, want %d", len(atts), len(files))
	}
	for i, f := range files {
		if atts[i].Name != f.Name {
			t.Errorf("atts[%d] = %q, want %q", i, atts[i].Name, f.Name)
		}
	}
}

func TestEncoder_EncodeAllFailure(t *testing.T) {
	enc := NewEncoder()
	files := []File{
		{Name: "a.png", Data: pngBytes},
		{Name: "bad.zip", Data: zipBytes},
	}

	atts, err := enc.EncodeAll(context.Background(), files)
	if err == nil {
		t.Fatal("expected error")
	}
	if atts != nil {
		t.Error("no attachments should be returned on failure")
	}
	var fileErr *FileError
	if !errors.As(err, &fileErr) || fileErr.Name != "bad.zip" {
		t.Errorf("error = %v", err)
	}
}

func TestAttachment_SizeLabel(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1500, "1.5 kB"},
		{2_400_000, "2.4 MB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := (Attachment{Size: tt.size}).SizeLabel(); got != tt.want {
				t.Errorf("SizeLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}
