package pipeline

import (
	"github.com/matzehuels/spiderfy/pkg/document"
	"github.com/matzehuels/spiderfy/pkg/spider"
)

// GenerateLayout computes the layout document for opts without caching.
func GenerateLayout(opts Options) (document.Document, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return document.Document{}, err
	}
	l := spider.Compute(opts.Count, *opts.Params)
	return document.FromLayout(l, opts.Anchor, opts.Markers), nil
}
