package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/spiderfy/pkg/document"
)

type layoutOpts struct {
	layoutFlags
	output string
	json   bool
}

// layoutCommand computes a layout and prints it as a table or writes it as JSON.
func (c *CLI) layoutCommand() *cobra.Command {
	var opts layoutOpts

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Compute marker placements around an anchor",
		Long: `Compute the spiderfied placement of markers around a shared anchor.

Fewer markers than the switchover are placed on a circle; more are laid out on
an outward spiral. Placements are printed as a table, or as a layout document
with --json or --output.`,
		Example: `  spiderfy layout -n 6
  spiderfy layout -n 20 --spiral-factor 4 --json
  spiderfy layout --markers markers.json -o layout.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)
			return c.runLayout(ctx, cmd.Flags(), &opts)
		},
	}

	opts.register(cmd.Flags())
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the layout document to a file")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the layout document as JSON")

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, fs *pflag.FlagSet, opts *layoutOpts) error {
	logger := loggerFromContext(ctx)

	cfg, err := c.config()
	if err != nil {
		return err
	}
	popts, err := opts.options(fs, cfg)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(logger)
	doc, cached, err := runner.LayoutWithCacheInfo(ctx, popts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Computed %s layout for %d markers", doc.Mode, doc.Count))

	switch {
	case opts.output != "":
		if err := document.WriteFile(doc, opts.output); err != nil {
			return err
		}
		printSuccess("Layout written")
		printFile(opts.output)
		printNextStep("Render it", "spiderfy render "+opts.output)
	case opts.json:
		return document.Write(doc, os.Stdout)
	default:
		fmt.Println(statsLine(doc, cached))
		if doc.Count > 0 {
			fmt.Println(recordsTable(doc))
		}
	}
	return nil
}
