package conversation

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultMaxFileBytes caps a single file before encoding (10 MiB).
	DefaultMaxFileBytes = 10 << 20

	// DefaultConcurrency bounds parallel conversions.
	DefaultConcurrency = 4
)

// PDFMode selects how PDFs are sent when no Rasterizer is configured.
type PDFMode string

const (
	// PDFNative sends the PDF as a provider-native file part.
	PDFNative PDFMode = "native"

	// PDFText sends the extracted text of the PDF.
	PDFText PDFMode = "text"
)

// File is a raw upload.
type File struct {
	Name string
	Data []byte
}

// ReadFile loads a file from disk.
func ReadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return File{Name: filepath.Base(path), Data: data}, nil
}

// FileError reports which file failed to convert.
type FileError struct {
	Name string
	Err  error
}

// Error implements the error interface.
func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

// Unwrap returns the underlying error.
func (e *FileError) Unwrap() error {
	return e.Err
}

// Encoder converts uploads into attachments.
type Encoder struct {
	maxBytes    int64
	concurrency int
	rasterizer  Rasterizer
	pdfMode     PDFMode
}

// EncoderOption configures an Encoder.
type EncoderOption func(*Encoder)

// WithMaxFileBytes sets the per-file size cap.
func WithMaxFileBytes(n int64) EncoderOption {
	return func(e *Encoder) { e.maxBytes = n }
}

// WithConcurrency bounds the number of files converted at once.
func WithConcurrency(n int) EncoderOption {
	return func(e *Encoder) { e.concurrency = n }
}

// WithRasterizer converts PDFs into per-page images before sending.
func WithRasterizer(r Rasterizer) EncoderOption {
	return func(e *Encoder) { e.rasterizer = r }
}

// WithPDFMode selects how PDFs are sent when no rasterizer is set.
func WithPDFMode(m PDFMode) EncoderOption {
	return func(e *Encoder) { e.pdfMode = m }
}

// NewEncoder creates an Encoder.
func NewEncoder(opts ...EncoderOption) *Encoder {
	e := &Encoder{
		maxBytes:    DefaultMaxFileBytes,
		concurrency: DefaultConcurrency,
		pdfMode:     PDFNative,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.concurrency < 1 {
		e.concurrency = 1
	}
	return e
}

// Encode converts one file. A rasterized PDF yields one image attachment
// per page; every other file yields exactly one attachment.
func (e *Encoder) Encode(ctx context.Context, f File) ([]Attachment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	size := int64(len(f.Data))
	if size == 0 {
		return nil, &FileError{Name: f.Name, Err: fmt.Errorf("file is empty")}
	}
	if e.maxBytes > 0 && size > e.maxBytes {
		return nil, &FileError{Name: f.Name, Err: fmt.Errorf("file is %s, larger than the %s limit",
			humanize.Bytes(uint64(size)), humanize.Bytes(uint64(e.maxBytes)))}
	}

	kind, mime, err := Classify(f.Name, f.Data)
	if err != nil {
		return nil, &FileError{Name: f.Name, Err: err}
	}

	att := Attachment{
		Name: f.Name,
		Kind: kind,
		MIME: mime,
		Size: size,
	}

	switch {
	case kind == KindImage:
		att.Data = base64.StdEncoding.EncodeToString(f.Data)
		return []Attachment{att}, nil
	case mime == MIMEPDF:
		return e.encodePDF(ctx, f, att)
	default:
		att.Data = base64.StdEncoding.EncodeToString(f.Data)
		att.Text = string(f.Data)
		return []Attachment{att}, nil
	}
}

func (e *Encoder) encodePDF(ctx context.Context, f File, att Attachment) ([]Attachment, error) {
	pages, err := PageCount(f.Data)
	if err != nil {
		if e.rasterizer != nil || e.pdfMode == PDFText {
			return nil, &FileError{Name: f.Name, Err: err}
		}
		slog.Debug("could not count pdf pages", "file", f.Name, "error", err)
	}
	att.Pages = pages

	if e.rasterizer != nil {
		images, err := e.rasterizer.Rasterize(ctx, f.Name, f.Data, pages)
		if err != nil {
			return nil, &FileError{Name: f.Name, Err: fmt.Errorf("failed to rasterize: %w", err)}
		}
		out := make([]Attachment, 0, len(images))
		for i, img := range images {
			mime := img.MIME
			if mime == "" {
				mime = MIMEPNG
			}
			out = append(out, Attachment{
				Name: fmt.Sprintf("%s (page %d)", f.Name, i+1),
				Kind: KindImage,
				MIME: mime,
				Data: base64.StdEncoding.EncodeToString(img.Data),
				Size: int64(len(img.Data)),
			})
		}
		return out, nil
	}

	att.Data = base64.StdEncoding.EncodeToString(f.Data)
	if e.pdfMode == PDFText {
		text, err := ExtractText(f.Data)
		if err != nil {
			return nil, &FileError{Name: f.Name, Err: err}
		}
		att.Text = text
	}
	return []Attachment{att}, nil
}

// EncodeAll converts files concurrently and returns the attachments in the
// order of the input files. It waits for every conversion and fails if any
// one fails.
func (e *Encoder) EncodeAll(ctx context.Context, files []File) ([]Attachment, error) {
	if len(files) == 0 {
		return nil, nil
	}

	results := make([][]Attachment, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i, f := range files {
		g.Go(func() error {
			atts, err := e.Encode(gctx, f)
			if err != nil {
				return err
			}
			results[i] = atts
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []Attachment
	for _, atts := range results {
		out = append(out, atts...)
	}
	return out, nil
}
