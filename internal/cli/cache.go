package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/spheregrid/pkg/cache"
)

func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the local frame and artifact cache",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "info",
			Short: "Show where the cache lives and how much it holds",
			Args:  cobra.NoArgs,
			RunE:  func(*cobra.Command, []string) error { return c.cacheInfo() },
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the cache directory",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				dir, err := cacheDir()
				if err != nil {
					return err
				}
				fmt.Fprintln(c.Out, dir)
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Delete every cached frame and artifact",
			Args:  cobra.NoArgs,
			RunE:  func(*cobra.Command, []string) error { return c.cacheClear() },
		},
	)
	return cmd
}

func (c *CLI) cacheInfo() error {
	dir, err := cacheDir()
	if err != nil {
		return err
	}
	n, size, err := cache.DirStats(dir)
	if err != nil {
		return fmt.Errorf("read cache: %w", err)
	}
	printKeyValue(c.Out, "dir", dir)
	printKeyValue(c.Out, "entries", fmt.Sprint(n))
	printKeyValue(c.Out, "size", formatBytes(size))
	return nil
}

func (c *CLI) cacheClear() error {
	dir, err := cacheDir()
	if err != nil {
		return err
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		printInfo(c.Out, "Cache is empty")
		return nil
	}
	n, err := cache.ClearDir(dir)
	if err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	c.Logger.Debug("cleared cache", "dir", dir, "entries", n)
	printSuccess(c.Out, "Removed %d cached entries", n)
	printDetail(c.Out, "%s", dir)
	return nil
}

// formatBytes renders n with a binary unit, e.g. "1.5 KiB".
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
