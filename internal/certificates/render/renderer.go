// Package render rasterizes certificate documents into image artifacts.
//
// Two backends exist: ChromeRenderer paints the document onto a real HTML
// surface in headless Chrome and captures a PNG (full fidelity: background
// blur, corner clipping, shadows), and PDFRenderer draws the document with
// gofpdf for environments without a browser.
package render

import (
	"context"
	"errors"
	"fmt"

	"attendex/event-portal-backend/internal/certificates/template"
)

// Artifact is a rasterized certificate: a byte buffer in a standard
// encoding plus enough metadata to store and attach it.
type Artifact struct {
	Data        []byte `json:"-"`
	ContentType string `json:"content_type"`
	FileName    string `json:"file_name"`
}

// Renderer converts a document into a fixed-size artifact. Implementations
// must honor the document's paint order (z-index ascending, insertion-order
// ties) and skip invisible elements.
type Renderer interface {
	Render(ctx context.Context, doc template.Document) (*Artifact, error)
}

// ErrBrowserMissing signals that no chromium binary is installed for the
// browser-backed renderer.
var ErrBrowserMissing = errors.New("chromium not installed")

// ForBackend selects a renderer by its configured name.
func ForBackend(backend string) (Renderer, error) {
	switch backend {
	case "chrome":
		return NewChromeRenderer(), nil
	case "pdf":
		return NewPDFRenderer(), nil
	default:
		return nil, fmt.Errorf("unknown render backend %q", backend)
	}
}
