package render

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strings"

	"attendex/event-portal-backend/internal/certificates/template"
)

// surfaceHTML is the HTML/CSS surface the browser renderer paints. It
// mirrors the editor's canvas: percentage positioning, z-index stacking,
// background blur behind the elements, document border with corner
// clipping.
const surfaceHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<style>
  html, body { margin: 0; padding: 0; background: #ffffff; }
  #certificate-root {
    position: relative;
    overflow: hidden;
    width: {{.Doc.CanvasSize.Width}}px;
    height: {{.Doc.CanvasSize.Height}}px;
    background-color: {{.Doc.Background.Color | css}};
    {{- if gt .Doc.Border.Width 0.0}}
    border: {{.Doc.Border.Width}}px {{.Doc.Border.Style}} {{.Doc.Border.Color | css}};
    {{- end}}
    border-radius: {{.Doc.Border.CornerRadius}}px;
    box-sizing: border-box;
  }
  #certificate-root .backdrop {
    position: absolute;
    inset: 0;
    background-size: cover;
    background-position: center;
  }
  #certificate-root .element { position: absolute; }
</style>
</head>
<body>
<div id="certificate-root">
  {{- if .Doc.Background.Image}}
  <div class="backdrop" style="background-image: url('{{.Doc.Background.Image | cssURL}}'); filter: blur({{.Doc.Background.BlurRadius}}px); opacity: {{.Doc.Background.Opacity}};"></div>
  {{- end}}
  {{- range $i, $el := .Painted}}
  {{- if $el.Visible}}
  <div class="element" style="{{elementStyle $el $i}}">
    {{- if eq $el.Kind "text"}}
    <div style="{{textStyle $el}}">{{$el.Content}}</div>
    {{- else if or (eq $el.Kind "image") (eq $el.Kind "signature")}}
    <img src="{{$el.Source | imgSrc}}" style="{{imageStyle $el}}" />
    {{- else if eq $el.Kind "shape"}}
    <div style="{{shapeStyle $el}}"></div>
    {{- end}}
  </div>
  {{- end}}
  {{- end}}
</div>
<div id="certificate-render-ready"></div>
</body>
</html>`

var surfaceTemplate = htmltemplate.Must(htmltemplate.New("surface").Funcs(htmltemplate.FuncMap{
	"css":    func(s string) htmltemplate.CSS { return htmltemplate.CSS(s) },
	"cssURL": func(s string) htmltemplate.CSS { return htmltemplate.CSS(s) },
	"imgSrc": func(s string) htmltemplate.URL { return htmltemplate.URL(s) },
	"elementStyle": func(el template.Element, paintIndex int) htmltemplate.CSS {
		return htmltemplate.CSS(elementStyle(el, paintIndex))
	},
	"textStyle": func(el template.Element) htmltemplate.CSS {
		return htmltemplate.CSS(textStyle(el))
	},
	"imageStyle": func(el template.Element) htmltemplate.CSS {
		return htmltemplate.CSS(imageStyle(el))
	},
	"shapeStyle": func(el template.Element) htmltemplate.CSS {
		return htmltemplate.CSS(shapeStyle(el))
	},
}).Parse(surfaceHTML))

type surfaceData struct {
	Doc     template.Document
	Painted []template.Element
}

// SurfaceHTML renders the document into the standalone HTML page the
// browser renderer captures. Elements are emitted in paint order; the
// paint index doubles as the CSS z-index so stacking matches exactly.
func SurfaceHTML(doc template.Document) (string, error) {
	var buf bytes.Buffer
	err := surfaceTemplate.Execute(&buf, surfaceData{Doc: doc, Painted: doc.PaintOrder()})
	if err != nil {
		return "", fmt.Errorf("render certificate surface: %w", err)
	}
	return buf.String(), nil
}

func elementStyle(el template.Element, paintIndex int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "left: %g%%; top: %g%%;", el.Position.X, el.Position.Y)
	fmt.Fprintf(&b, " z-index: %d;", paintIndex)
	if el.Rotation != 0 {
		fmt.Fprintf(&b, " transform: rotate(%gdeg);", el.Rotation)
	}
	if el.Opacity != 1 {
		fmt.Fprintf(&b, " opacity: %g;", el.Opacity)
	}
	if el.Shadow != nil && el.Shadow.Enabled {
		fmt.Fprintf(&b, " filter: drop-shadow(%gpx %gpx %gpx %s);",
			el.Shadow.OffsetX, el.Shadow.OffsetY, el.Shadow.Blur, el.Shadow.Color)
	}
	return b.String()
}

func textStyle(el template.Element) string {
	var b strings.Builder
	fmt.Fprintf(&b, "width: %gpx;", el.Width)
	fmt.Fprintf(&b, " font-size: %gpx;", el.FontSize)
	if el.FontFamily != "" {
		fmt.Fprintf(&b, " font-family: '%s';", el.FontFamily)
	}
	if el.Color != "" {
		fmt.Fprintf(&b, " color: %s;", el.Color)
	}
	if el.FontWeight != "" {
		fmt.Fprintf(&b, " font-weight: %s;", el.FontWeight)
	}
	if el.TextAlign != "" {
		fmt.Fprintf(&b, " text-align: %s;", el.TextAlign)
	}
	return b.String()
}

func imageStyle(el template.Element) string {
	var b strings.Builder
	fmt.Fprintf(&b, "width: %gpx; height: %gpx; object-fit: cover;", el.Width, el.Height)
	if el.BorderRadius > 0 {
		fmt.Fprintf(&b, " border-radius: %gpx;", el.BorderRadius)
	}
	if el.Border != nil && el.Border.Enabled {
		fmt.Fprintf(&b, " border: %gpx %s %s;", el.Border.Width, el.Border.Style, el.Border.Color)
	}
	return b.String()
}

func shapeStyle(el template.Element) string {
	var b strings.Builder
	fmt.Fprintf(&b, "width: %gpx; height: %gpx;", el.Width, el.Height)
	if el.Color != "" {
		fmt.Fprintf(&b, " background-color: %s;", el.Color)
	}
	switch el.ShapeKind {
	case template.ShapeCircle:
		b.WriteString(" border-radius: 50%;")
	case template.ShapeRounded:
		b.WriteString(" border-radius: 12px;")
	}
	return b.String()
}
