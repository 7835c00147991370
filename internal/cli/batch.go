package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/spiderfy/pkg/config"
	"github.com/matzehuels/spiderfy/pkg/pipeline"
)

type batchOpts struct {
	renderFlags
	outDir  string
	limit   int
	noCache bool
}

// batchJob is one entry of a batch file. Parameters given per job are merged
// onto the configured defaults.
type batchJob struct {
	Name string `json:"name,omitempty"`
	pipeline.Options
}

// batchCommand renders many anchors concurrently from a JSON job file.
func (c *CLI) batchCommand() *cobra.Command {
	var opts batchOpts

	cmd := &cobra.Command{
		Use:   "batch <jobs.json>",
		Short: "Lay out and render many anchors concurrently",
		Long: `Lay out and render many anchors from a JSON file holding an array of jobs:

  [
    {"name": "station", "count": 7},
    {"name": "plaza", "markers": [{"id": "a"}, {"id": "b"}], "params": {"spiral_length_factor": 4}}
  ]

Each job writes <out>/<name>.<format> for every requested format. Jobs
without a name are numbered.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)
			return c.runBatch(ctx, cmd.Flags(), args[0], &opts)
		},
	}

	opts.register(cmd.Flags())
	cmd.Flags().StringVarP(&opts.outDir, "out", "o", ".", "output directory")
	cmd.Flags().IntVarP(&opts.limit, "concurrency", "j", pipeline.DefaultBatchLimit, "maximum jobs in flight")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runBatch(ctx context.Context, fs *pflag.FlagSet, path string, opts *batchOpts) error {
	logger := loggerFromContext(ctx)

	cfg, err := c.config()
	if err != nil {
		return err
	}
	jobs, names, err := readBatchFile(path, cfg)
	if err != nil {
		return err
	}
	for i := range jobs {
		own := jobs[i].Formats
		opts.apply(fs, cfg.Render, &jobs[i])
		if len(own) > 0 {
			jobs[i].Formats = own
		}
	}
	logger.Debug("loaded batch", "path", path, "jobs", len(jobs))

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %d anchors", len(jobs)))
	spinner.Start()
	prog := newProgress(logger)
	results, err := pipeline.Batch(ctx, runner, jobs, opts.limit)
	spinner.Stop()
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Processed %d anchors", len(results)))

	written := 0
	for i, res := range results {
		paths, err := writeArtifacts(filepath.Join(opts.outDir, names[i]), res.Artifacts)
		if err != nil {
			return err
		}
		written += len(paths)
	}
	printSuccess("Wrote %d file(s) for %d anchors", written, len(results))
	printDetail("Directory: %s", opts.outDir)
	return nil
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// readBatchFile parses a job file. Each job starts from the configured layout
// parameters, and names are made filesystem safe and unique.
func readBatchFile(path string, cfg config.Config) ([]pipeline.Options, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", path, err)
	}

	jobs := make([]pipeline.Options, len(raw))
	names := make([]string, len(raw))
	seen := make(map[string]bool)
	for i, msg := range raw {
		params := cfg.Layout
		job := batchJob{Options: pipeline.Options{Params: &params}}
		dec := json.NewDecoder(bytes.NewReader(msg))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&job); err != nil {
			return nil, nil, fmt.Errorf("job %d: %w", i, err)
		}
		if job.Params == nil {
			p := cfg.Layout
			job.Params = &p
		}

		base := unsafeName.ReplaceAllString(job.Name, "_")
		if base == "" {
			base = fmt.Sprintf("anchor-%03d", i)
		}
		name := base
		for n := 1; seen[name]; n++ {
			name = fmt.Sprintf("%s-%d", base, n)
		}
		seen[name] = true

		jobs[i] = job.Options
		names[i] = name
	}
	return jobs, names, nil
}
