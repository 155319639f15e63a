package conversation

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ErrUnsupported is returned for files that are neither a supported image
// nor a supported document.
var ErrUnsupported = errors.New("unsupported file type")

// Supported media types.
const (
	MIMEJPEG     = "image/jpeg"
	MIMEPNG      = "image/png"
	MIMEGIF      = "image/gif"
	MIMEWebP     = "image/webp"
	MIMEPDF      = "application/pdf"
	MIMEText     = "text/plain"
	MIMECSV      = "text/csv"
	MIMEMarkdown = "text/markdown"
)

var supported = map[string]Kind{
	MIMEJPEG:     KindImage,
	MIMEPNG:      KindImage,
	MIMEGIF:      KindImage,
	MIMEWebP:     KindImage,
	MIMEPDF:      KindDocument,
	MIMEText:     KindDocument,
	MIMECSV:      KindDocument,
	MIMEMarkdown: KindDocument,
}

var byExtension = map[string]string{
	".jpg":      MIMEJPEG,
	".jpeg":     MIMEJPEG,
	".png":      MIMEPNG,
	".gif":      MIMEGIF,
	".webp":     MIMEWebP,
	".pdf":      MIMEPDF,
	".txt":      MIMEText,
	".csv":      MIMECSV,
	".md":       MIMEMarkdown,
	".markdown": MIMEMarkdown,
}

// Classify determines the kind and media type of a file from its content,
// falling back to the file extension when the content is not recognised.
func Classify(name string, data []byte) (Kind, string, error) {
	detected := mimetype.Detect(data)
	ext := byExtension[strings.ToLower(filepath.Ext(name))]

	for m := detected; m != nil; m = m.Parent() {
		base := baseType(m.String())
		kind, ok := supported[base]
		if !ok {
			continue
		}
		// Markdown sniffs as plain text; the extension is more specific.
		if base == MIMEText && strings.HasPrefix(ext, "text/") {
			return KindDocument, ext, nil
		}
		return kind, base, nil
	}

	if ext != "" && detected.Is("application/octet-stream") {
		return supported[ext], ext, nil
	}

	return "", "", fmt.Errorf("%w: %s", ErrUnsupported, baseType(detected.String()))
}

func baseType(mt string) string {
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = mt[:i]
	}
	return strings.TrimSpace(mt)
}
