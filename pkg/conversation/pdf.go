package conversation

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Page is one rasterized page of a document.
type Page struct {
	MIME string
	Data []byte
}

// Rasterizer converts a paginated document into one image per page. It is
// optional; without one, PDFs are sent as native file parts.
type Rasterizer interface {
	Rasterize(ctx context.Context, name string, data []byte, pages int) ([]Page, error)
}

// RasterizerFunc adapts a function to the Rasterizer interface.
type RasterizerFunc func(ctx context.Context, name string, data []byte, pages int) ([]Page, error)

// Rasterize implements Rasterizer.
func (f RasterizerFunc) Rasterize(ctx context.Context, name string, data []byte, pages int) ([]Page, error) {
	return f(ctx, name, data, pages)
}

// PageCount returns the number of pages in a PDF.
func PageCount(data []byte) (n int, err error) {
	r, err := openPDF(data)
	if err != nil {
		return 0, err
	}
	defer recoverPDF(&err)
	return r.NumPage(), nil
}

// ExtractText returns the plain text of every page of a PDF, pages separated
// by blank lines. Pages without extractable text are skipped.
func ExtractText(data []byte) (text string, err error) {
	r, err := openPDF(data)
	if err != nil {
		return "", err
	}
	defer recoverPDF(&err)

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		content = strings.TrimSpace(content)
		if content == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(content)
	}

	if b.Len() == 0 {
		return "", fmt.Errorf("no extractable text found in pdf")
	}
	return b.String(), nil
}

func openPDF(data []byte) (r *pdf.Reader, err error) {
	defer recoverPDF(&err)
	r, err = pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	return r, nil
}

// recoverPDF turns a panic from the pdf reader on malformed input into an error.
func recoverPDF(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("malformed pdf: %v", r)
	}
}
