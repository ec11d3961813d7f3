package render

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"attendex/event-portal-backend/internal/certificates/template"
)

// px to mm at the editor's 96 DPI
const mmPerPx = 25.4 / 96.0

// PDFRenderer draws certificates as vector PDFs with gofpdf. It is the
// browserless backend: stacking, rotation, opacity, shapes, borders and
// images are honored; background blur and element shadows are not
// reproducible in vector output and are dropped.
type PDFRenderer struct {
	httpClient *http.Client
}

// NewPDFRenderer returns a vector renderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Render implements Renderer.
func (r *PDFRenderer) Render(ctx context.Context, doc template.Document) (*Artifact, error) {
	wmm := float64(doc.CanvasSize.Width) * mmPerPx
	hmm := float64(doc.CanvasSize.Height) * mmPerPx

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "mm",
		Size:    gofpdf.SizeType{Wd: wmm, Ht: hmm},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	r.drawBackground(ctx, pdf, doc, wmm, hmm)
	r.drawBorder(pdf, doc.Border, wmm, hmm)

	imgSeq := 0
	for _, el := range doc.PaintOrder() {
		if !el.Visible {
			continue
		}
		x := wmm * el.Position.X / 100
		y := hmm * el.Position.Y / 100

		if el.Opacity != 1 {
			pdf.SetAlpha(clamp01(el.Opacity), "Normal")
		}
		if el.Rotation != 0 {
			pdf.TransformBegin()
			pdf.TransformRotate(-el.Rotation, x, y)
		}

		switch el.Kind {
		case template.KindText:
			r.drawText(pdf, tr, el, x, y)
		case template.KindImage, template.KindSignature:
			imgSeq++
			r.drawImage(ctx, pdf, el, x, y, imgSeq)
		case template.KindShape:
			r.drawShape(pdf, el, x, y)
		}

		if el.Rotation != 0 {
			pdf.TransformEnd()
		}
		if el.Opacity != 1 {
			pdf.SetAlpha(1, "Normal")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write certificate pdf: %w", err)
	}

	return &Artifact{
		Data:        buf.Bytes(),
		ContentType: "application/pdf",
		FileName:    "certificate.pdf",
	}, nil
}

func (r *PDFRenderer) drawBackground(ctx context.Context, pdf *gofpdf.Fpdf, doc template.Document, wmm, hmm float64) {
	cr, cg, cb := parseHexColor(doc.Background.Color, 255, 255, 255)
	pdf.SetFillColor(cr, cg, cb)
	pdf.Rect(0, 0, wmm, hmm, "F")

	if doc.Background.Image == "" {
		return
	}
	opts, reader, err := r.openImage(ctx, doc.Background.Image)
	if err != nil {
		// A broken backdrop is not fatal to the certificate; the fill
		// color already covers the page
		return
	}
	if doc.Background.Opacity != 1 {
		pdf.SetAlpha(clamp01(doc.Background.Opacity), "Normal")
		defer pdf.SetAlpha(1, "Normal")
	}
	pdf.RegisterImageOptionsReader("__background__", opts, reader)
	pdf.ImageOptions("__background__", 0, 0, wmm, hmm, false, opts, 0, "")
}

func (r *PDFRenderer) drawBorder(pdf *gofpdf.Fpdf, border template.Border, wmm, hmm float64) {
	if border.Width <= 0 {
		return
	}
	bw := border.Width * mmPerPx
	br, bg, bb := parseHexColor(border.Color, 0, 0, 0)
	pdf.SetDrawColor(br, bg, bb)
	pdf.SetLineWidth(bw)

	switch border.Style {
	case template.BorderDashed:
		pdf.SetDashPattern([]float64{3 * bw, 2 * bw}, 0)
		defer pdf.SetDashPattern([]float64{}, 0)
	case template.BorderDotted:
		pdf.SetDashPattern([]float64{bw, bw}, 0)
		defer pdf.SetDashPattern([]float64{}, 0)
	}

	inset := bw / 2
	radius := border.CornerRadius * mmPerPx
	if border.Style == template.BorderDouble {
		pdf.RoundedRect(inset, inset, wmm-bw, hmm-bw, radius, "1234", "D")
		gap := 2 * bw
		pdf.RoundedRect(inset+gap, inset+gap, wmm-bw-2*gap, hmm-bw-2*gap, radius, "1234", "D")
		return
	}
	pdf.RoundedRect(inset, inset, wmm-bw, hmm-bw, radius, "1234", "D")
}

func (r *PDFRenderer) drawText(pdf *gofpdf.Fpdf, tr func(string) string, el template.Element, x, y float64) {
	style := ""
	if strings.EqualFold(el.FontWeight, "bold") || el.FontWeight == "700" || el.FontWeight == "800" || el.FontWeight == "900" {
		style = "B"
	}
	family := coreFontFamily(el.FontFamily)
	sizePt := el.FontSize * 72.0 / 96.0
	pdf.SetFont(family, style, sizePt)

	tcr, tcg, tcb := parseHexColor(el.Color, 26, 26, 26)
	pdf.SetTextColor(tcr, tcg, tcb)

	align := "L"
	switch strings.ToLower(el.TextAlign) {
	case "center":
		align = "C"
	case "right":
		align = "R"
	}

	boxW := el.Width * mmPerPx
	lineH := sizePt * 0.3528 * 1.3 // pt to mm with line spacing
	pdf.SetXY(x, y)
	pdf.MultiCell(boxW, lineH, tr(el.Content), "", align, false)
}

func (r *PDFRenderer) drawImage(ctx context.Context, pdf *gofpdf.Fpdf, el template.Element, x, y float64, seq int) {
	opts, reader, err := r.openImage(ctx, el.Source)
	if err != nil {
		// Missing assets are skipped; the batch layer decides whether a
		// degraded render is acceptable
		return
	}
	name := fmt.Sprintf("__element_%d__", seq)
	pdf.RegisterImageOptionsReader(name, opts, reader)
	pdf.ImageOptions(name, x, y, el.Width*mmPerPx, el.Height*mmPerPx, false, opts, 0, "")

	if el.Border != nil && el.Border.Enabled && el.Border.Width > 0 {
		br, bg, bb := parseHexColor(el.Border.Color, 0, 0, 0)
		pdf.SetDrawColor(br, bg, bb)
		pdf.SetLineWidth(el.Border.Width * mmPerPx)
		pdf.RoundedRect(x, y, el.Width*mmPerPx, el.Height*mmPerPx, el.BorderRadius*mmPerPx, "1234", "D")
	}
}

func (r *PDFRenderer) drawShape(pdf *gofpdf.Fpdf, el template.Element, x, y float64) {
	cr, cg, cb := parseHexColor(el.Color, 212, 175, 55)
	pdf.SetFillColor(cr, cg, cb)

	w := el.Width * mmPerPx
	h := el.Height * mmPerPx

	switch el.ShapeKind {
	case template.ShapeCircle:
		radius := w
		if h < w {
			radius = h
		}
		pdf.Circle(x+w/2, y+h/2, radius/2, "F")
	case template.ShapeRounded:
		pdf.RoundedRect(x, y, w, h, 12*mmPerPx, "1234", "F")
	default:
		pdf.Rect(x, y, w, h, "F")
	}
}

// openImage resolves an element source: a base64 data URI or an http(s)
// URL. The returned options carry the image type gofpdf needs for
// registration.
func (r *PDFRenderer) openImage(ctx context.Context, source string) (gofpdf.ImageOptions, io.Reader, error) {
	var opts gofpdf.ImageOptions

	if strings.HasPrefix(source, "data:") {
		meta, payload, found := strings.Cut(source, ",")
		if !found {
			return opts, nil, fmt.Errorf("malformed data uri")
		}
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return opts, nil, fmt.Errorf("decode data uri: %w", err)
		}
		opts.ImageType = imageTypeFromMime(meta)
		return opts, bytes.NewReader(data), nil
	}

	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return opts, nil, err
		}
		resp, err := r.httpClient.Do(req)
		if err != nil {
			return opts, nil, fmt.Errorf("fetch image %q: %w", source, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return opts, nil, fmt.Errorf("fetch image %q: status %d", source, resp.StatusCode)
		}
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return opts, nil, err
		}
		opts.ImageType = imageTypeFromMime(resp.Header.Get("Content-Type"))
		if opts.ImageType == "" {
			opts.ImageType = imageTypeFromPath(source)
		}
		return opts, bytes.NewReader(data), nil
	}

	return opts, nil, fmt.Errorf("unsupported image source %q", source)
}

func imageTypeFromMime(mime string) string {
	switch {
	case strings.Contains(mime, "png"):
		return "PNG"
	case strings.Contains(mime, "jpeg"), strings.Contains(mime, "jpg"):
		return "JPEG"
	case strings.Contains(mime, "gif"):
		return "GIF"
	default:
		return ""
	}
}

func imageTypeFromPath(p string) string {
	lower := strings.ToLower(p)
	switch {
	case strings.HasSuffix(lower, ".png"):
		return "PNG"
	case strings.HasSuffix(lower, ".jpg"), strings.HasSuffix(lower, ".jpeg"):
		return "JPEG"
	case strings.HasSuffix(lower, ".gif"):
		return "GIF"
	default:
		return "PNG"
	}
}

func coreFontFamily(family string) string {
	switch strings.ToLower(family) {
	case "times", "times new roman", "georgia", "serif":
		return "Times"
	case "courier", "courier new", "monospace":
		return "Courier"
	default:
		return "Helvetica"
	}
}

// parseHexColor parses #rgb and #rrggbb, falling back to the given default.
func parseHexColor(s string, dr, dg, db int) (int, int, int) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(s) {
	case 3:
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	case 6:
	default:
		return dr, dg, db
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return dr, dg, db
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
