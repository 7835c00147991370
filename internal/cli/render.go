package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/spiderfy/pkg/document"
	"github.com/matzehuels/spiderfy/pkg/pipeline"
)

// defaultBase is the output base name when neither --output nor an input file is given.
const defaultBase = appName

type renderOpts struct {
	layoutFlags
	renderFlags
	output string
}

// renderCommand renders a layout, computed from flags or read from a document file.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [layout.json]",
		Short: "Render a layout to SVG, PNG, WebP, PDF, JSON or Graphviz",
		Long: `Render a spiderfied layout.

Without an argument the layout is computed from the layout flags. With a layout
document (written by "spiderfy layout -o") that document is rendered as-is.
One file is written per format, named <output>.<format>.`,
		Example: `  spiderfy render -n 12 -f svg,png
  spiderfy render layout.json -f pdf -o out/anchor
  spiderfy render --markers markers.json --labels --theme dark -f webp`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			return c.runRender(ctx, cmd.Flags(), input, &opts)
		},
	}

	opts.layoutFlags.register(cmd.Flags())
	opts.renderFlags.register(cmd.Flags())
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output base path (default: input name or \"spiderfy\")")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, fs *pflag.FlagSet, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	cfg, err := c.config()
	if err != nil {
		return err
	}
	popts, err := opts.layoutFlags.options(fs, cfg)
	if err != nil {
		return err
	}
	opts.renderFlags.apply(fs, cfg.Render, &popts)
	if err := pipeline.ValidateFormats(popts.Formats); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Rendering "+strings.Join(popts.Formats, ", "))
	spinner.Start()

	var (
		artifacts map[string][]byte
		cached    bool
	)
	prog := newProgress(logger)
	if input != "" {
		doc, rerr := document.ReadFile(input)
		if rerr != nil {
			spinner.Stop()
			return rerr
		}
		artifacts, cached, err = runner.RenderWithCacheInfo(ctx, doc, popts)
	} else {
		var res *pipeline.Result
		res, err = runner.Execute(ctx, popts)
		if err == nil {
			artifacts, cached = res.Artifacts, res.CacheInfo.RenderHit
		}
	}
	spinner.Stop()
	if err != nil {
		if spinner.Cancelled() {
			return ctx.Err()
		}
		return err
	}
	prog.done(fmt.Sprintf("Rendered %d format(s)", len(artifacts)))

	paths, err := writeArtifacts(basePath(opts.output, input), artifacts)
	if err != nil {
		return err
	}
	status := iconFresh
	if cached {
		status = iconCached
	}
	printSuccess("Rendered %d file(s) %s", len(paths), StyleDim.Render("("+status+")"))
	for _, p := range paths {
		printFile(p)
	}
	return nil
}

// writeArtifacts writes one file per format as base.format, in format order.
func writeArtifacts(base string, artifacts map[string][]byte) ([]string, error) {
	if dir := filepath.Dir(base); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}
	formats := make([]string, 0, len(artifacts))
	for f := range artifacts {
		formats = append(formats, f)
	}
	sort.Strings(formats)

	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		path := base + "." + f
		if err := os.WriteFile(path, artifacts[f], 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// basePath derives the output base from --output and the input file. A
// trailing format extension (".svg", ".dot.png", ...) is stripped, as is
// ".json" from the input document name.
func basePath(output, input string) string {
	if output == "" {
		if input == "" {
			return defaultBase
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	// Longest first so ".dot.svg" wins over ".svg".
	formats := append([]string(nil), pipeline.Formats...)
	sort.Slice(formats, func(i, j int) bool { return len(formats[i]) > len(formats[j]) })
	for _, f := range formats {
		if strings.HasSuffix(output, "."+f) {
			return strings.TrimSuffix(output, "."+f)
		}
	}
	return output
}
