package runtime

import "regexp"

// Bindings is the concrete variable scope visible to one node.
type Bindings map[string]string

// placeholderPattern matches {{name}} with optional inner whitespace.
var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.-]+)\s*\}\}`)

// Resolve merges the global scope with a node's scope. Node-level bindings
// override globals on identical keys. The inputs are never mutated.
func Resolve(global, node map[string]string) Bindings {
	b := make(Bindings, len(global)+len(node))
	for k, v := range global {
		b[k] = v
	}
	for k, v := range node {
		b[k] = v
	}
	return b
}

// Substitute replaces every {{key}} occurrence in text with its bound
// value. Unresolved placeholders stay as literal {{key}} text so the defect
// is visible to the trainee and the author; a missing variable is a content
// concern, never a runtime error.
func Substitute(text string, b Bindings) string {
	return placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		key := placeholderPattern.FindStringSubmatch(match)[1]
		if v, ok := b[key]; ok {
			return v
		}
		return match
	})
}
