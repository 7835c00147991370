package cli

import (
	"testing"

	"github.com/spf13/pflag"

	"github.com/matzehuels/spiderfy/pkg/config"
	"github.com/matzehuels/spiderfy/pkg/pipeline"
	"github.com/matzehuels/spiderfy/pkg/spider"
)

func TestLayoutFlagsParameters(t *testing.T) {
	base := spider.DefaultParameters()
	base.SpiralLengthFactor = 3
	base.AnimationSpeed = 250

	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, p spider.Parameters)
	}{
		{"no flags keeps base", nil, func(t *testing.T, p spider.Parameters) {
			if p != base {
				t.Errorf("parameters = %+v, want %+v", p, base)
			}
		}},
		{"explicit flag wins", []string{"--spiral-factor", "7"}, func(t *testing.T, p spider.Parameters) {
			if p.SpiralLengthFactor != 7 || p.AnimationSpeed != 250 {
				t.Errorf("factor = %v speed = %v, want 7 and 250", p.SpiralLengthFactor, p.AnimationSpeed)
			}
		}},
		{"flag equal to default still applies", []string{"--spiral-factor", "5"}, func(t *testing.T, p spider.Parameters) {
			if p.SpiralLengthFactor != 5 {
				t.Errorf("factor = %v, want 5", p.SpiralLengthFactor)
			}
		}},
		{"booleans", []string{"--force-legs", "--animate=false"}, func(t *testing.T, p spider.Parameters) {
			if !p.ForceLegsWhenSingle || p.Animate {
				t.Errorf("force legs = %v animate = %v", p.ForceLegsWhenSingle, p.Animate)
			}
		}},
		{"offsets and switchover", []string{"--offset-x", "4", "--offset-y", "-2", "--switchover", "12"}, func(t *testing.T, p spider.Parameters) {
			if p.AnchorOffsetX != 4 || p.AnchorOffsetY != -2 || p.CircleSpiralSwitchover != 12 {
				t.Errorf("parameters = %+v", p)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f layoutFlags
			fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
			f.register(fs)
			if err := fs.Parse(tt.args); err != nil {
				t.Fatalf("Parse() error: %v", err)
			}
			tt.check(t, f.parameters(fs, base))
		})
	}
}

func TestRenderFlagsApply(t *testing.T) {
	cfg := config.Default().Render
	cfg.Theme = "dark"
	cfg.Formats = []string{"png"}
	cfg.Labels = true

	var f renderFlags
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f.register(fs)
	if err := fs.Parse([]string{"--width", "640", "--labels=false", "-f", "svg, webp"}); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	var opts pipeline.Options
	f.apply(fs, cfg, &opts)

	if opts.Theme != "dark" {
		t.Errorf("theme = %q, want dark from config", opts.Theme)
	}
	if opts.Width != 640 {
		t.Errorf("width = %v, want 640", opts.Width)
	}
	if opts.Labels {
		t.Error("labels flag did not override config")
	}
	if len(opts.Formats) != 2 || opts.Formats[0] != "svg" || opts.Formats[1] != "webp" {
		t.Errorf("formats = %v, want [svg webp]", opts.Formats)
	}
}

func TestParseFormats(t *testing.T) {
	fallback := []string{"svg"}
	tests := []struct {
		input string
		want  []string
	}{
		{"", fallback},
		{"  ", fallback},
		{"png", []string{"png"}},
		{"svg,pdf,dot.png", []string{"svg", "pdf", "dot.png"}},
		{"svg,,json ", []string{"svg", "json"}},
	}
	for _, tt := range tests {
		got := parseFormats(tt.input, fallback)
		if len(got) != len(tt.want) {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("parseFormats(%q)[%d] = %q, want %q", tt.input, i, got[i], tt.want[i])
			}
		}
	}
}
