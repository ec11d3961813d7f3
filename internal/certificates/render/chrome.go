package render

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"attendex/event-portal-backend/internal/certificates/template"
)

// ChromeRenderer rasterizes certificates by painting the HTML surface in
// headless Chrome and capturing the canvas node as a PNG. This is the
// full-fidelity backend: background blur, border-radius clipping, shadows
// and stacking behave exactly as in the editor.
type ChromeRenderer struct {
	// Timeout bounds one render, navigation included.
	Timeout time.Duration
}

// NewChromeRenderer returns a browser-backed renderer with the default
// per-render timeout.
func NewChromeRenderer() *ChromeRenderer {
	return &ChromeRenderer{Timeout: 30 * time.Second}
}

// Render implements Renderer.
func (r *ChromeRenderer) Render(ctx context.Context, doc template.Document) (*Artifact, error) {
	if _, err := exec.LookPath("chromium-browser"); err != nil {
		if _, fallbackErr := exec.LookPath("chromium"); fallbackErr != nil {
			return nil, fmt.Errorf("%w", ErrBrowserMissing)
		}
	}

	html, err := SurfaceHTML(doc)
	if err != nil {
		return nil, err
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	taskCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	dataURL := "data:text/html;charset=utf-8," + percentEncodeForDataURL(html)

	var png []byte
	err = chromedp.Run(taskCtx,
		chromedp.EmulateViewport(int64(doc.CanvasSize.Width), int64(doc.CanvasSize.Height)),
		chromedp.Navigate(dataURL),
		chromedp.WaitReady("#certificate-render-ready"),
		// Wait for webfonts so text metrics are final; capped so a stuck
		// font fetch cannot hang the render
		chromedp.Evaluate(`(() => {
  if (document.fonts && document.fonts.ready) {
    return Promise.race([
      document.fonts.ready.then(() => true),
      new Promise((resolve) => setTimeout(() => resolve(true), 3000))
    ]);
  }
  return true;
})()`, nil, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithAwaitPromise(true)
		}),
		chromedp.Screenshot("#certificate-root", &png, chromedp.NodeVisible),
	)
	if err != nil {
		return nil, fmt.Errorf("chrome certificate capture failed: %w", err)
	}

	return &Artifact{
		Data:        png,
		ContentType: "image/png",
		FileName:    "certificate.png",
	}, nil
}

// percentEncodeForDataURL encodes HTML for use in a data URL. Spaces must
// become %20, not +, so url.QueryEscape is unsuitable.
func percentEncodeForDataURL(s string) string {
	var result strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9',
			r == '-', r == '_', r == '.', r == '~':
			result.WriteRune(r)
		case r == ' ':
			result.WriteString("%20")
		default:
			for _, b := range []byte(string(r)) {
				result.WriteString(fmt.Sprintf("%%%02X", b))
			}
		}
	}
	return result.String()
}
