package designs

import (
	"fmt"
	"sort"

	"attendex/event-portal-backend/internal/certificates/template"
)

// Preset is a ready-made certificate layout the editor can start from.
type Preset struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	document    template.Document
}

// Document returns an independent copy of the preset's layout.
func (p Preset) Document() template.Document {
	return p.document.Clone()
}

// PresetNames lists the available presets in stable order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PresetByName looks up a preset layout.
func PresetByName(name string) (Preset, error) {
	p, ok := presets[name]
	if !ok {
		return Preset{}, fmt.Errorf("unknown preset %q", name)
	}
	return p, nil
}

var presets = map[string]Preset{
	"classic": {
		Name:        "classic",
		Description: "Gold border, centered serif headline",
		document:    classicPreset(),
	},
	"modern": {
		Name:        "modern",
		Description: "Dark canvas with a bold sans headline",
		document:    modernPreset(),
	},
	"minimal": {
		Name:        "minimal",
		Description: "Plain white canvas, no border",
		document:    minimalPreset(),
	},
}

func classicPreset() template.Document {
	doc := template.NewDocument()
	doc.Border = template.Border{Width: 6, Color: "#d4af37", Style: template.BorderDouble}

	doc = addText(doc, "Certificate of Attendance", textOpts{
		top: 18, size: 44, family: "Times", color: "#1a1a1a", weight: "bold",
	})
	doc = addText(doc, "{ userName }", textOpts{
		top: 38, size: 36, family: "Times", color: "#8a6d1a",
	})
	doc = addText(doc, "attended { title } on { eventDate }", textOpts{
		top: 55, size: 20, family: "Times", color: "#444444",
	})
	return doc
}

func modernPreset() template.Document {
	doc := template.NewDocument()
	doc.Background.Color = "#10243e"
	doc.Border = template.Border{}

	doc = addText(doc, "CERTIFICATE", textOpts{
		top: 16, size: 52, family: "Helvetica", color: "#ffffff", weight: "bold",
	})
	doc = addText(doc, "{ userName }", textOpts{
		top: 40, size: 34, family: "Helvetica", color: "#5ec2e7",
	})
	doc = addText(doc, "{ title } · { location }", textOpts{
		top: 58, size: 18, family: "Helvetica", color: "#c6d4e3",
	})
	return doc
}

func minimalPreset() template.Document {
	doc := template.NewDocument()

	doc = addText(doc, "{ userName }", textOpts{
		top: 35, size: 40, family: "Helvetica", color: "#1a1a1a",
	})
	doc = addText(doc, "{ title }", textOpts{
		top: 55, size: 22, family: "Helvetica", color: "#777777",
	})
	return doc
}

type textOpts struct {
	top    float64
	size   float64
	family string
	color  string
	weight string
}

func addText(doc template.Document, content string, opts textOpts) template.Document {
	doc, id := template.AddElement(doc, template.KindText)

	width := 900.0
	align := "center"
	patch := template.ElementPatch{
		Content:    &content,
		FontSize:   &opts.size,
		FontFamily: &opts.family,
		Color:      &opts.color,
		TextAlign:  &align,
		Width:      &width,
		Position:   &template.Position{X: 10, Y: opts.top},
	}
	if opts.weight != "" {
		patch.FontWeight = &opts.weight
	}
	return template.UpdateElement(doc, id, patch)
}
