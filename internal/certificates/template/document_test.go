package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddElementDefaults(t *testing.T) {
	doc := NewDocument()

	doc, id := AddElement(doc, KindText)
	require.NotEmpty(t, id)

	el, ok := doc.FindElement(id)
	require.True(t, ok)
	assert.Equal(t, KindText, el.Kind)
	assert.Equal(t, 1, el.ZIndex)
	assert.Equal(t, 1.0, el.Opacity)
	assert.True(t, el.Visible)
	assert.Equal(t, 0.0, el.Rotation)
}

func TestAddElementDoesNotMutateInput(t *testing.T) {
	doc := NewDocument()
	next, _ := AddElement(doc, KindShape)

	assert.Len(t, doc.Elements, 0)
	assert.Len(t, next.Elements, 1)
}

func TestElementIDsUnique(t *testing.T) {
	doc := NewDocument()
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		var id string
		doc, id = AddElement(doc, KindText)
		assert.False(t, seen[id], "id minted twice: %s", id)
		seen[id] = true
	}
	assert.NoError(t, doc.Validate())
}

func TestUpdateElementMergesPatch(t *testing.T) {
	doc := NewDocument()
	doc, id := AddElement(doc, KindText)

	content := "Hello"
	size := 36.0
	updated := UpdateElement(doc, id, ElementPatch{Content: &content, FontSize: &size})

	el, _ := updated.FindElement(id)
	assert.Equal(t, "Hello", el.Content)
	assert.Equal(t, 36.0, el.FontSize)
	// Untouched fields survive the merge
	assert.Equal(t, "Helvetica", el.FontFamily)

	// Original unchanged
	orig, _ := doc.FindElement(id)
	assert.Equal(t, "New text", orig.Content)
}

func TestUpdateElementUnknownIDNoop(t *testing.T) {
	doc := NewDocument()
	doc, _ = AddElement(doc, KindText)

	content := "x"
	updated := UpdateElement(doc, "no-such-id", ElementPatch{Content: &content})
	assert.Equal(t, doc, updated)
}

func TestRemoveElement(t *testing.T) {
	doc := NewDocument()
	doc, a := AddElement(doc, KindText)
	doc, b := AddElement(doc, KindShape)

	doc = RemoveElement(doc, a)
	assert.Len(t, doc.Elements, 1)
	_, ok := doc.FindElement(a)
	assert.False(t, ok)
	_, ok = doc.FindElement(b)
	assert.True(t, ok)

	// Removing again is a no-op
	doc = RemoveElement(doc, a)
	assert.Len(t, doc.Elements, 1)
}

func TestReorderLayerFloorsAtZero(t *testing.T) {
	doc := NewDocument()
	doc, id1 := AddElement(doc, KindText)
	doc, id2 := AddElement(doc, KindText)
	doc, id3 := AddElement(doc, KindText)

	doc = ReorderLayer(doc, id2, LayerDown)
	doc = ReorderLayer(doc, id2, LayerDown)
	doc = ReorderLayer(doc, id2, LayerDown)

	el2, _ := doc.FindElement(id2)
	assert.Equal(t, 0, el2.ZIndex)

	order := doc.PaintOrder()
	require.Len(t, order, 3)
	assert.Equal(t, id2, order[0].ID)
	// Remaining tie (both zIndex 1) keeps insertion order
	assert.Equal(t, id1, order[1].ID)
	assert.Equal(t, id3, order[2].ID)
}

func TestReorderLayerUp(t *testing.T) {
	doc := NewDocument()
	doc, a := AddElement(doc, KindShape)
	doc, b := AddElement(doc, KindShape)

	doc = ReorderLayer(doc, a, LayerUp)

	order := doc.PaintOrder()
	assert.Equal(t, b, order[0].ID)
	assert.Equal(t, a, order[1].ID)
	// Stored order never re-sorts
	assert.Equal(t, a, doc.Elements[0].ID)
}

func TestDuplicateElementMintsNewID(t *testing.T) {
	doc := NewDocument()
	doc, id := AddElement(doc, KindImage)
	src := "https://example.com/logo.png"
	doc = UpdateElement(doc, id, ElementPatch{Source: &src})

	doc, dupID := DuplicateElement(doc, id)
	require.NotEmpty(t, dupID)
	assert.NotEqual(t, id, dupID)
	assert.NoError(t, doc.Validate())

	dup, _ := doc.FindElement(dupID)
	assert.Equal(t, src, dup.Source)
	assert.Equal(t, KindImage, dup.Kind)
}

func TestDuplicateUnknownElement(t *testing.T) {
	doc := NewDocument()
	out, dupID := DuplicateElement(doc, "missing")
	assert.Empty(t, dupID)
	assert.Equal(t, doc, out)
}

func TestDuplicateShadowIsIndependent(t *testing.T) {
	doc := NewDocument()
	doc, id := AddElement(doc, KindText)
	doc = UpdateElement(doc, id, ElementPatch{
		Shadow: &Shadow{Enabled: true, Color: "#000000", Blur: 4},
	})

	doc, dupID := DuplicateElement(doc, id)
	dupped := UpdateElement(doc, dupID, ElementPatch{
		Shadow: &Shadow{Enabled: true, Color: "#ff0000", Blur: 8},
	})

	orig, _ := dupped.FindElement(id)
	assert.Equal(t, "#000000", orig.Shadow.Color)
}

func TestApplyTemplateMintsFreshIDs(t *testing.T) {
	doc := NewDocument()
	doc, existing := AddElement(doc, KindText)

	preset := []Element{
		{Kind: KindText, ID: existing, Content: "{ userName }", Opacity: 1, Visible: true, ZIndex: 1},
		{Kind: KindShape, ID: "preset-shape", ShapeKind: ShapeCircle, Color: "#336699", Opacity: 1, Visible: true},
	}
	out := ApplyTemplate(doc, preset, Background{Color: "#fafafa", Opacity: 1}, Border{Color: "#333333", Width: 2, Style: BorderDouble})

	require.Len(t, out.Elements, 2)
	assert.NoError(t, out.Validate())
	assert.NotEqual(t, existing, out.Elements[0].ID)
	assert.Equal(t, "#fafafa", out.Background.Color)
	assert.Equal(t, BorderDouble, out.Border.Style)
}

func TestDesignJSONRoundTrip(t *testing.T) {
	doc := NewDocument()
	doc, textID := AddElement(doc, KindText)
	content := "Certificate for { userName }"
	doc = UpdateElement(doc, textID, ElementPatch{Content: &content})
	doc, _ = AddElement(doc, KindSignature)
	doc = UpdateElement(doc, textID, ElementPatch{Shadow: &Shadow{Enabled: true, Color: "#00000033", Blur: 6, OffsetY: 2}})

	data, err := doc.ToJSON()
	require.NoError(t, err)

	loaded, err := LoadDesign(data)
	require.NoError(t, err)
	assert.Equal(t, doc, loaded)
}

func TestLoadDesignRejectsGarbage(t *testing.T) {
	_, err := LoadDesign([]byte("not json"))
	assert.Error(t, err)
}

func TestValidateDuplicateIDs(t *testing.T) {
	doc := NewDocument()
	doc.Elements = []Element{
		{ID: "same", Kind: KindText},
		{ID: "same", Kind: KindShape},
	}
	assert.Error(t, doc.Validate())
}
