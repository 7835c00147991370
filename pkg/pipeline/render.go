package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/spiderfy/pkg/document"
	errs "github.com/matzehuels/spiderfy/pkg/errors"
	"github.com/matzehuels/spiderfy/pkg/render"
)

// Render generates output artifacts in the requested formats without caching.
func Render(ctx context.Context, doc document.Document, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	ropts := opts.RenderOptions()

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		if _, ok := artifacts[format]; ok {
			continue
		}
		data, err := renderFormat(ctx, doc, format, ropts)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func renderFormat(ctx context.Context, doc document.Document, format string, opts []render.Option) ([]byte, error) {
	switch format {
	case FormatSVG:
		return render.RenderSVG(doc, opts...), nil
	case FormatJSON:
		return render.RenderJSON(doc, opts...)
	case FormatDOT:
		return []byte(render.ToDOT(doc, opts...)), nil
	case FormatDOTSVG:
		return render.RenderDOTSVG(ctx, doc, opts...)
	case FormatDOTPNG:
		return render.RenderDOTPNG(ctx, doc, opts...)
	case FormatPNG:
		return render.RenderPNG(doc, opts...)
	case FormatWebP:
		return render.RenderWebP(doc, opts...)
	case FormatPDF:
		return render.RenderPDF(doc, opts...)
	default:
		return nil, errs.New(errs.ErrCodeInvalidFormat, "unsupported format: %s", format)
	}
}
