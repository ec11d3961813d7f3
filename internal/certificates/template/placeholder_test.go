package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveKnownToken(t *testing.T) {
	ctx := ContextRecord{"title": "Gala"}

	assert.Equal(t, "Gala", Resolve("{title}", ctx))
	assert.Equal(t, "Gala", Resolve("{  title  }", ctx))
	assert.Equal(t, "Welcome to Gala!", Resolve("Welcome to { title }!", ctx))
}

func TestResolveUnknownTokenPassthrough(t *testing.T) {
	ctx := ContextRecord{"known": "x"}

	// Braces and internal spacing survive untouched
	assert.Equal(t, "Hello { unknown }", Resolve("Hello { unknown }", ctx))
	assert.Equal(t, "{unknown}", Resolve("{unknown}", ctx))
	assert.Equal(t, "{  spaced   }", Resolve("{  spaced   }", ctx))
}

func TestResolveFalsyValues(t *testing.T) {
	ctx := ContextRecord{"count": 0, "flag": false, "score": 0.0, "name": ""}

	assert.Equal(t, "0", Resolve("{count}", ctx))
	assert.Equal(t, "false", Resolve("{flag}", ctx))
	assert.Equal(t, "0", Resolve("{score}", ctx))
	assert.Equal(t, "", Resolve("{name}", ctx))
}

func TestResolveNilContextAndEmptyText(t *testing.T) {
	assert.Equal(t, "", Resolve("", ContextRecord{"a": 1}))
	assert.Equal(t, "Hello {a}", Resolve("Hello {a}", nil))
}

func TestResolveRepeatedToken(t *testing.T) {
	ctx := ContextRecord{"name": "Ana"}
	assert.Equal(t, "Ana and Ana and Ana", Resolve("{name} and { name } and {name}", ctx))
}

func TestResolveMalformedTokens(t *testing.T) {
	ctx := ContextRecord{"a": "x"}

	assert.Equal(t, "{ not a token }", Resolve("{ not a token }", ctx))
	assert.Equal(t, "{unclosed", Resolve("{unclosed", ctx))
	assert.Equal(t, "}{", Resolve("}{", ctx))
	// The scan does not support nesting; inner braces match what the
	// pattern finds first
	assert.Equal(t, "{x", Resolve("{{a}", ctx))
}

func TestResolveDeterministic(t *testing.T) {
	ctx := ContextRecord{"a": "1", "b": 2}
	text := "{a} {b} {c} literal"

	first := Resolve(text, ctx)
	second := Resolve(text, ctx)
	assert.Equal(t, first, second)
}

func TestResolveSurroundingTextVerbatim(t *testing.T) {
	ctx := ContextRecord{"userName": "Bo"}
	assert.Equal(t, "  Congrats Bo  ", Resolve("  Congrats {userName}  ", ctx))
}

func TestResolveDoesNotMutateContext(t *testing.T) {
	ctx := ContextRecord{"title": "Gala"}
	_ = Resolve("{title} {other}", ctx)

	assert.Len(t, ctx, 1)
	assert.Equal(t, "Gala", ctx["title"])
}

func TestResolveDocumentPurity(t *testing.T) {
	doc := NewDocument()
	doc, id := AddElement(doc, KindText)
	content := "Congrats { userName } for { title }"
	doc = UpdateElement(doc, id, ElementPatch{Content: &content})

	resolved := ResolveDocument(doc, ContextRecord{"userName": "Ana", "title": "Workshop"})

	got, _ := resolved.FindElement(id)
	assert.Equal(t, "Congrats Ana for Workshop", got.Content)

	// The source document still carries the raw tokens
	orig, _ := doc.FindElement(id)
	assert.Equal(t, content, orig.Content)
}

func TestResolveDocumentIndependentCopy(t *testing.T) {
	doc := NewDocument()
	doc, textID := AddElement(doc, KindText)
	doc, shapeID := AddElement(doc, KindShape)

	resolved := ResolveDocument(doc, ContextRecord{})

	// Mutating the copy must not bleed into the original
	resolved.Elements[0].Content = "changed"
	resolved.Elements[1].Color = "#000000"
	resolved.Background.Color = "#123456"

	orig, _ := doc.FindElement(textID)
	assert.Equal(t, "New text", orig.Content)
	shape, _ := doc.FindElement(shapeID)
	assert.Equal(t, "#d4af37", shape.Color)
	assert.Equal(t, "#ffffff", doc.Background.Color)
}

func TestContextMerge(t *testing.T) {
	event := ContextRecord{"title": "Workshop", "venue": "Hall A"}
	attendee := ContextRecord{"userName": "Ana", "venue": "Hall B"}

	merged := event.Merge(attendee)

	assert.Equal(t, "Workshop", merged["title"])
	assert.Equal(t, "Hall B", merged["venue"]) // attendee wins ties
	assert.Equal(t, "Hall A", event["venue"])  // inputs untouched
}

func TestRecipientKey(t *testing.T) {
	key, err := ContextRecord{"user_id": "u-9", "id": "a-1"}.RecipientKey()
	assert.NoError(t, err)
	assert.Equal(t, "u-9", key)

	key, err = ContextRecord{"user_id": "", "id": "a-1"}.RecipientKey()
	assert.NoError(t, err)
	assert.Equal(t, "a-1", key)

	_, err = ContextRecord{"name": "Ana"}.RecipientKey()
	assert.Error(t, err)

	_, err = ContextRecord{"user_id": "   "}.RecipientKey()
	assert.Error(t, err)
}
