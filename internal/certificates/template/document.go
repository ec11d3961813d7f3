package template

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// ElementKind discriminates the element union
type ElementKind string

const (
	KindText      ElementKind = "text"
	KindImage     ElementKind = "image"
	KindShape     ElementKind = "shape"
	KindSignature ElementKind = "signature"
)

// ShapeKind enumerates the supported shape primitives
type ShapeKind string

const (
	ShapeRectangle ShapeKind = "rectangle"
	ShapeRounded   ShapeKind = "rounded"
	ShapeCircle    ShapeKind = "circle"
)

// Orientation of the certificate canvas. Informational only: rendering
// reads Width/Height directly.
type Orientation string

const (
	OrientationPortrait  Orientation = "portrait"
	OrientationLandscape Orientation = "landscape"
)

// BorderStyle enumerates document and image border styles
type BorderStyle string

const (
	BorderSolid  BorderStyle = "solid"
	BorderDashed BorderStyle = "dashed"
	BorderDotted BorderStyle = "dotted"
	BorderDouble BorderStyle = "double"
)

// CanvasSize defines the certificate page in pixels
type CanvasSize struct {
	Width       int         `json:"width"`
	Height      int         `json:"height"`
	Orientation Orientation `json:"orientation"`
}

// Background defines the document-level backdrop
type Background struct {
	Color      string  `json:"color"`
	Image      string  `json:"image,omitempty"`
	BlurRadius float64 `json:"blur_radius"`
	Opacity    float64 `json:"opacity"`
}

// Border defines the document-level frame
type Border struct {
	Color        string      `json:"color"`
	Width        float64     `json:"width"`
	Style        BorderStyle `json:"style"`
	CornerRadius float64     `json:"corner_radius"`
}

// Position locates an element as percentages of the canvas, so positions
// survive canvas resizes and orientation changes.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Shadow is an optional drop shadow on any element
type Shadow struct {
	Enabled bool    `json:"enabled"`
	Color   string  `json:"color"`
	Blur    float64 `json:"blur"`
	OffsetX float64 `json:"offset_x"`
	OffsetY float64 `json:"offset_y"`
}

// ImageBorder is the per-image border, distinct from the document Border
type ImageBorder struct {
	Enabled bool        `json:"enabled"`
	Color   string      `json:"color"`
	Width   float64     `json:"width"`
	Style   BorderStyle `json:"style"`
}

// Element is a tagged union over the four visual element kinds. Fields that
// only apply to some kinds are pointers or zero-valued for the others; all
// dispatch goes through Kind rather than field presence.
type Element struct {
	ID       string      `json:"id"`
	Kind     ElementKind `json:"kind"`
	Position Position    `json:"position"`
	Rotation float64     `json:"rotation"`
	Opacity  float64     `json:"opacity"`
	Visible  bool        `json:"visible"`
	ZIndex   int         `json:"z_index"`
	Shadow   *Shadow     `json:"shadow,omitempty"`

	// Text
	Content    string  `json:"content,omitempty"`
	FontSize   float64 `json:"font_size,omitempty"`
	FontFamily string  `json:"font_family,omitempty"`
	Color      string  `json:"color,omitempty"`
	FontWeight string  `json:"font_weight,omitempty"`
	TextAlign  string  `json:"text_align,omitempty"`

	// Image / Signature
	Source       string       `json:"source,omitempty"`
	Border       *ImageBorder `json:"border,omitempty"`
	BorderRadius float64      `json:"border_radius,omitempty"`

	// Shape
	ShapeKind ShapeKind `json:"shape_kind,omitempty"`

	// Shared box geometry (text layout width, image/shape box)
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

// Document is the editable certificate design. All operations on it are
// value-semantics: they return a new Document and leave the receiver's
// data untouched.
type Document struct {
	CanvasSize CanvasSize `json:"canvas_size"`
	Background Background `json:"background"`
	Border     Border     `json:"border"`
	Elements   []Element  `json:"elements"`
}

// NewDocument returns an empty design with the standard landscape canvas.
func NewDocument() Document {
	return Document{
		CanvasSize: CanvasSize{Width: 1123, Height: 794, Orientation: OrientationLandscape},
		Background: Background{Color: "#ffffff", Opacity: 1},
		Border:     Border{Color: "#d4af37", Width: 0, Style: BorderSolid},
		Elements:   nil,
	}
}

// Clone returns a deep copy of the document. Callers may mutate the copy
// freely without affecting the original.
func (d Document) Clone() Document {
	out := d
	if d.Elements != nil {
		out.Elements = make([]Element, len(d.Elements))
		for i, el := range d.Elements {
			out.Elements[i] = el.clone()
		}
	}
	return out
}

func (e Element) clone() Element {
	out := e
	if e.Shadow != nil {
		s := *e.Shadow
		out.Shadow = &s
	}
	if e.Border != nil {
		b := *e.Border
		out.Border = &b
	}
	return out
}

// PaintOrder returns the elements sorted for rendering: ZIndex ascending,
// ties broken by insertion order. The stored order is never resorted.
func (d Document) PaintOrder() []Element {
	out := make([]Element, len(d.Elements))
	copy(out, d.Elements)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ZIndex < out[j].ZIndex
	})
	return out
}

// FindElement returns the element with the given id, or false.
func (d Document) FindElement(id string) (Element, bool) {
	for _, el := range d.Elements {
		if el.ID == id {
			return el, true
		}
	}
	return Element{}, false
}

// ToJSON serializes the design for persistence.
func (d Document) ToJSON() ([]byte, error) {
	return json.Marshal(d)
}

// LoadDesign deserializes a persisted design. Saved designs round-trip
// verbatim, including every element field.
func LoadDesign(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("parse design: %w", err)
	}
	return doc, nil
}

// Validate reports structural violations a persisted design must not have.
func (d Document) Validate() error {
	if d.CanvasSize.Width <= 0 || d.CanvasSize.Height <= 0 {
		return fmt.Errorf("canvas size must be positive, got %dx%d", d.CanvasSize.Width, d.CanvasSize.Height)
	}
	if d.Background.Opacity < 0 || d.Background.Opacity > 1 {
		return fmt.Errorf("background opacity out of range: %v", d.Background.Opacity)
	}
	seen := make(map[string]struct{}, len(d.Elements))
	for _, el := range d.Elements {
		if el.ID == "" {
			return fmt.Errorf("element without id (kind %s)", el.Kind)
		}
		if _, dup := seen[el.ID]; dup {
			return fmt.Errorf("duplicate element id %s", el.ID)
		}
		seen[el.ID] = struct{}{}
	}
	return nil
}

func mintID() string {
	return uuid.NewString()
}
