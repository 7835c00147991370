package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/spiderfy/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the layout and artifact cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand removes every entry of the file cache.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached layouts and artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, backend, err := c.cacheDir()
			if err != nil {
				return err
			}
			if backend != cache.BackendFile {
				printWarning("Cache backend is %s; entries expire by TTL", backend)
				return nil
			}
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				printInfo("Cache is empty")
				return nil
			}

			fc, err := cache.NewFileCache(dir)
			if err != nil {
				return err
			}
			count, err := fc.Clear()
			if err != nil {
				return err
			}
			printSuccess("Cleared %d cached entries", count)
			printDetail("Directory: %s", dir)
			return nil
		},
	}
}

// cachePathCommand prints the file cache directory.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, backend, err := c.cacheDir()
			if err != nil {
				return err
			}
			if backend != cache.BackendFile {
				fmt.Fprintf(cmd.OutOrStdout(), "(%s backend)\n", backend)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}

// cacheDir resolves the configured file cache directory and backend.
func (c *CLI) cacheDir() (string, string, error) {
	cfg, err := c.config()
	if err != nil {
		return "", "", err
	}
	resolved, err := cfg.Cache.Resolve()
	if err != nil {
		return "", "", fmt.Errorf("get cache dir: %w", err)
	}
	backend := resolved.Backend
	if backend == "" {
		backend = cache.BackendFile
	}
	return resolved.Dir, backend, nil
}
