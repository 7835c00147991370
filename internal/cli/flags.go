package cli

import (
	"github.com/spf13/pflag"

	"github.com/matzehuels/spiderfy/pkg/config"
	"github.com/matzehuels/spiderfy/pkg/document"
	"github.com/matzehuels/spiderfy/pkg/pipeline"
	"github.com/matzehuels/spiderfy/pkg/spider"
)

// layoutFlags are the flags shared by every command that computes a layout.
// Values from the config file apply unless a flag is set explicitly.
type layoutFlags struct {
	count       int
	markersFile string
	lng, lat    float64
	params      spider.Parameters
	noCache     bool
	refresh     bool
}

func (f *layoutFlags) register(fs *pflag.FlagSet) {
	f.params = spider.DefaultParameters()

	fs.IntVarP(&f.count, "count", "n", 0, "number of markers (default: number of entries in --markers)")
	fs.StringVarP(&f.markersFile, "markers", "m", "", "JSON file with an array of markers ({id, label, color, leg_color})")
	fs.Float64Var(&f.lng, "lng", 0, "anchor longitude")
	fs.Float64Var(&f.lat, "lat", 0, "anchor latitude")

	fs.Float64Var(&f.params.CircleFootSeparation, "circle-separation", f.params.CircleFootSeparation, "arc length between markers on the circle")
	fs.IntVar(&f.params.CircleSpiralSwitchover, "switchover", f.params.CircleSpiralSwitchover, "marker count at which the spiral is used")
	fs.Float64Var(&f.params.SpiralFootSeparation, "spiral-separation", f.params.SpiralFootSeparation, "distance between markers along the spiral")
	fs.Float64Var(&f.params.SpiralLengthStart, "spiral-start", f.params.SpiralLengthStart, "starting radius of the spiral")
	fs.Float64Var(&f.params.SpiralLengthFactor, "spiral-factor", f.params.SpiralLengthFactor, "spiral growth rate")
	fs.BoolVar(&f.params.Animate, "animate", f.params.Animate, "animate markers into place")
	fs.Float64Var(&f.params.AnimationSpeed, "animation-speed", f.params.AnimationSpeed, "entrance stagger window in milliseconds")
	fs.Float64Var(&f.params.AnchorOffsetX, "offset-x", f.params.AnchorOffsetX, "horizontal anchor offset")
	fs.Float64Var(&f.params.AnchorOffsetY, "offset-y", f.params.AnchorOffsetY, "vertical anchor offset")
	fs.BoolVar(&f.params.ForceLegsWhenSingle, "force-legs", f.params.ForceLegsWhenSingle, "draw a leg for a single marker")

	fs.BoolVar(&f.noCache, "no-cache", false, "disable caching")
	fs.BoolVar(&f.refresh, "refresh", false, "recompute and overwrite cached layouts")
}

// parameters merges explicitly set flags onto the configured parameters.
func (f *layoutFlags) parameters(fs *pflag.FlagSet, base spider.Parameters) spider.Parameters {
	p := base
	set := map[string]func(){
		"circle-separation": func() { p.CircleFootSeparation = f.params.CircleFootSeparation },
		"switchover":        func() { p.CircleSpiralSwitchover = f.params.CircleSpiralSwitchover },
		"spiral-separation": func() { p.SpiralFootSeparation = f.params.SpiralFootSeparation },
		"spiral-start":      func() { p.SpiralLengthStart = f.params.SpiralLengthStart },
		"spiral-factor":     func() { p.SpiralLengthFactor = f.params.SpiralLengthFactor },
		"animate":           func() { p.Animate = f.params.Animate },
		"animation-speed":   func() { p.AnimationSpeed = f.params.AnimationSpeed },
		"offset-x":          func() { p.AnchorOffsetX = f.params.AnchorOffsetX },
		"offset-y":          func() { p.AnchorOffsetY = f.params.AnchorOffsetY },
		"force-legs":        func() { p.ForceLegsWhenSingle = f.params.ForceLegsWhenSingle },
	}
	fs.Visit(func(fl *pflag.Flag) {
		if apply, ok := set[fl.Name]; ok {
			apply()
		}
	})
	return p
}

// options builds pipeline options from the flags and cfg.
func (f *layoutFlags) options(fs *pflag.FlagSet, cfg config.Config) (pipeline.Options, error) {
	params := f.parameters(fs, cfg.Layout)
	opts := pipeline.Options{
		Count:   f.count,
		Params:  &params,
		Anchor:  document.Anchor{Lng: f.lng, Lat: f.lat},
		Refresh: f.refresh,
	}
	if f.markersFile != "" {
		markers, err := document.ReadMarkersFile(f.markersFile)
		if err != nil {
			return pipeline.Options{}, err
		}
		opts.Markers = markers
	}
	return opts, nil
}

// renderFlags are the flags shared by commands that produce artifacts.
type renderFlags struct {
	formats      string
	theme        string
	width        float64
	height       float64
	scale        float64
	markerRadius float64
	labels       bool
}

func (f *renderFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.formats, "format", "f", "", "output format(s), comma-separated: svg, json, dot, dot.svg, dot.png, png, webp, pdf")
	fs.StringVar(&f.theme, "theme", "", "color theme: light, dark")
	fs.Float64Var(&f.width, "width", 0, "output width (default: fit the layout)")
	fs.Float64Var(&f.height, "height", 0, "output height (default: fit the layout)")
	fs.Float64Var(&f.scale, "scale", 0, "output scale factor")
	fs.Float64Var(&f.markerRadius, "marker-radius", 0, "marker radius in layout units")
	fs.BoolVar(&f.labels, "labels", false, "draw marker labels")
}

// apply copies render settings onto opts, with flags taking precedence over
// the [render] section of cfg.
func (f *renderFlags) apply(fs *pflag.FlagSet, cfg config.RenderConfig, opts *pipeline.Options) {
	opts.Formats = parseFormats(f.formats, cfg.Formats)
	opts.Theme = pick(fs, "theme", f.theme, cfg.Theme)
	opts.Width = pick(fs, "width", f.width, cfg.Width)
	opts.Height = pick(fs, "height", f.height, cfg.Height)
	opts.Scale = pick(fs, "scale", f.scale, cfg.Scale)
	opts.MarkerRadius = pick(fs, "marker-radius", f.markerRadius, cfg.MarkerRadius)
	opts.Labels = pick(fs, "labels", f.labels, cfg.Labels)
}

func pick[T any](fs *pflag.FlagSet, name string, flag, fallback T) T {
	if fs.Changed(name) {
		return flag
	}
	return fallback
}
