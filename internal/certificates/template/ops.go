package template

// Defaults applied to every freshly added element. Editor operations are
// idempotent under rapid UI events: updating or removing an unknown id is
// a no-op, never an error.
const (
	defaultZIndex  = 1
	defaultOpacity = 1.0
)

// LayerDirection selects the z-order nudge applied by ReorderLayer
type LayerDirection string

const (
	LayerUp   LayerDirection = "up"
	LayerDown LayerDirection = "down"
)

// AddElement appends a new element of the given kind, minting a fresh id
// and filling in default geometry and style. The input document is not
// modified.
func AddElement(doc Document, kind ElementKind) (Document, string) {
	el := Element{
		ID:       mintID(),
		Kind:     kind,
		Position: Position{X: 50, Y: 50},
		Rotation: 0,
		Opacity:  defaultOpacity,
		Visible:  true,
		ZIndex:   defaultZIndex,
	}

	switch kind {
	case KindText:
		el.Content = "New text"
		el.FontSize = 24
		el.FontFamily = "Helvetica"
		el.Color = "#1a1a1a"
		el.FontWeight = "normal"
		el.TextAlign = "center"
		el.Width = 300
	case KindImage, KindSignature:
		el.Width = 200
		el.Height = 120
	case KindShape:
		el.ShapeKind = ShapeRectangle
		el.Color = "#d4af37"
		el.Width = 160
		el.Height = 90
	}

	out := doc.Clone()
	out.Elements = append(out.Elements, el)
	return out, el.ID
}

// ElementPatch carries the fields UpdateElement may change. Nil pointers
// leave the corresponding field untouched.
type ElementPatch struct {
	Position     *Position    `json:"position,omitempty"`
	Rotation     *float64     `json:"rotation,omitempty"`
	Opacity      *float64     `json:"opacity,omitempty"`
	Visible      *bool        `json:"visible,omitempty"`
	ZIndex       *int         `json:"z_index,omitempty"`
	Shadow       *Shadow      `json:"shadow,omitempty"`
	Content      *string      `json:"content,omitempty"`
	FontSize     *float64     `json:"font_size,omitempty"`
	FontFamily   *string      `json:"font_family,omitempty"`
	Color        *string      `json:"color,omitempty"`
	FontWeight   *string      `json:"font_weight,omitempty"`
	TextAlign    *string      `json:"text_align,omitempty"`
	Source       *string      `json:"source,omitempty"`
	Border       *ImageBorder `json:"border,omitempty"`
	BorderRadius *float64     `json:"border_radius,omitempty"`
	ShapeKind    *ShapeKind   `json:"shape_kind,omitempty"`
	Width        *float64     `json:"width,omitempty"`
	Height       *float64     `json:"height,omitempty"`
}

// UpdateElement merges patch into the element with the given id. If the id
// is not present the document comes back unchanged.
func UpdateElement(doc Document, id string, patch ElementPatch) Document {
	idx := -1
	for i, el := range doc.Elements {
		if el.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return doc
	}

	out := doc.Clone()
	el := &out.Elements[idx]

	if patch.Position != nil {
		el.Position = *patch.Position
	}
	if patch.Rotation != nil {
		el.Rotation = *patch.Rotation
	}
	if patch.Opacity != nil {
		el.Opacity = *patch.Opacity
	}
	if patch.Visible != nil {
		el.Visible = *patch.Visible
	}
	if patch.ZIndex != nil {
		el.ZIndex = *patch.ZIndex
	}
	if patch.Shadow != nil {
		s := *patch.Shadow
		el.Shadow = &s
	}
	if patch.Content != nil {
		el.Content = *patch.Content
	}
	if patch.FontSize != nil {
		el.FontSize = *patch.FontSize
	}
	if patch.FontFamily != nil {
		el.FontFamily = *patch.FontFamily
	}
	if patch.Color != nil {
		el.Color = *patch.Color
	}
	if patch.FontWeight != nil {
		el.FontWeight = *patch.FontWeight
	}
	if patch.TextAlign != nil {
		el.TextAlign = *patch.TextAlign
	}
	if patch.Source != nil {
		el.Source = *patch.Source
	}
	if patch.Border != nil {
		b := *patch.Border
		el.Border = &b
	}
	if patch.BorderRadius != nil {
		el.BorderRadius = *patch.BorderRadius
	}
	if patch.ShapeKind != nil {
		el.ShapeKind = *patch.ShapeKind
	}
	if patch.Width != nil {
		el.Width = *patch.Width
	}
	if patch.Height != nil {
		el.Height = *patch.Height
	}

	return out
}

// RemoveElement filters out the element with the given id. Unknown ids are
// a no-op.
func RemoveElement(doc Document, id string) Document {
	out := doc.Clone()
	filtered := out.Elements[:0]
	for _, el := range out.Elements {
		if el.ID != id {
			filtered = append(filtered, el)
		}
	}
	out.Elements = filtered
	return out
}

// ReorderLayer nudges an element's z-index. Down floors at zero; the
// stored element order never changes, paint order re-sorts at render time.
func ReorderLayer(doc Document, id string, direction LayerDirection) Document {
	el, ok := doc.FindElement(id)
	if !ok {
		return doc
	}

	z := el.ZIndex
	switch direction {
	case LayerUp:
		z++
	case LayerDown:
		if z > 0 {
			z--
		}
	default:
		return doc
	}

	return UpdateElement(doc, id, ElementPatch{ZIndex: &z})
}

// DuplicateElement deep-copies the element with the given id, mints a new
// id for the copy and appends it. The empty id return signals an unknown
// source element.
func DuplicateElement(doc Document, id string) (Document, string) {
	src, ok := doc.FindElement(id)
	if !ok {
		return doc, ""
	}

	dup := src.clone()
	dup.ID = mintID()
	dup.Position.X += 2
	dup.Position.Y += 2

	out := doc.Clone()
	out.Elements = append(out.Elements, dup)
	return out, dup.ID
}

// ApplyTemplate replaces the document's elements, background and border
// with a preset, minting fresh ids so preset elements never collide with
// ids handed out earlier in the session.
func ApplyTemplate(doc Document, presetElements []Element, presetBackground Background, presetBorder Border) Document {
	out := doc.Clone()
	out.Background = presetBackground
	out.Border = presetBorder
	out.Elements = make([]Element, 0, len(presetElements))
	for _, el := range presetElements {
		next := el.clone()
		next.ID = mintID()
		if next.Opacity == 0 {
			next.Opacity = defaultOpacity
		}
		out.Elements = append(out.Elements, next)
	}
	return out
}
