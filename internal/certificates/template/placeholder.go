package template

import "regexp"

// tokenPattern matches one placeholder token: an opening brace, optional
// whitespace, a field name of word characters, optional whitespace, and a
// closing brace. Nested or overlapping braces are not supported; the scan
// is a single left-to-right pass.
var tokenPattern = regexp.MustCompile(`\{\s*([A-Za-z0-9_]+)\s*\}`)

// Resolve substitutes every "{ field }" token in text whose field exists
// in ctx with the field's value. Unknown tokens pass through byte-for-byte,
// braces and internal spacing included. Resolve is total: any string and
// any (possibly nil) context produce a result, never a panic, and the
// inputs are never mutated.
func Resolve(text string, ctx ContextRecord) string {
	if text == "" || ctx == nil {
		return text
	}
	return tokenPattern.ReplaceAllStringFunc(text, func(token string) string {
		field := tokenPattern.FindStringSubmatch(token)[1]
		value, ok := ctx[field]
		if !ok {
			return token
		}
		return display(value)
	})
}

// ResolveDocument returns a deep copy of doc in which every text element's
// content has been resolved against ctx. The input document is untouched,
// so the same unresolved design can be reused for every recipient in a
// batch run. Non-text elements and document-level properties carry over
// as-is.
func ResolveDocument(doc Document, ctx ContextRecord) Document {
	out := doc.Clone()
	for i := range out.Elements {
		if out.Elements[i].Kind == KindText {
			out.Elements[i].Content = Resolve(out.Elements[i].Content, ctx)
		}
	}
	return out
}
