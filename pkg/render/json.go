package render

import "github.com/matzehuels/spiderfy/pkg/document"

// RenderJSON returns doc as pretty-printed JSON. Options are accepted for
// symmetry with the other sinks and do not affect the output.
func RenderJSON(doc document.Document, _ ...Option) ([]byte, error) {
	return document.Marshal(doc)
}
