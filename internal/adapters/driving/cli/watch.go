package cli

import (
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/foldrag/internal/adapters/driving/watch"
	"github.com/custodia-labs/foldrag/internal/app"
	"github.com/custodia-labs/foldrag/internal/core/domain"
	"github.com/custodia-labs/foldrag/internal/logger"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch <folder>",
	Short: "Re-ingest a folder whenever its files change",
	Long: `Ingests the folder once, then watches it and rebuilds the index after
supported files are added, edited or removed. Changes are batched until the
folder has been quiet for the debounce period.

The store directory is ignored. Press Ctrl+C to stop.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "quiet period before re-ingesting")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	folder := args[0]
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)

	if err := reingest(cmd, cfg, folder); err != nil {
		return err
	}

	exts := app.Extensions(cfg)
	w := watch.New(folder,
		watch.WithDebounce(watchDebounce),
		watch.WithExclude(cfg.WorkDir),
		watch.WithFilter(func(path string) bool {
			return slices.Contains(exts, strings.ToLower(filepath.Ext(path)))
		}),
	)
	defer w.Close()

	batches, err := w.Watch(ctx)
	if err != nil {
		return err
	}
	cmd.Printf("Watching %s for changes...\n", folder)

	for batch := range batches {
		cmd.Printf("Changed: %s\n", strings.Join(batch.Paths, ", "))
		if err := reingest(cmd, cfg, folder); err != nil {
			return err
		}
	}
	return nil
}

// reingest runs one ingestion for watch. Input and external failures are
// reported and watching continues; configuration errors stop it.
func reingest(cmd *cobra.Command, cfg domain.Config, folder string) error {
	report, err := ingest(cmd, cfg, folder)
	switch {
	case err == nil:
		printReport(cmd, report)
		return nil
	case errors.Is(err, domain.ErrConfig), commandContext(cmd).Err() != nil:
		return err
	default:
		logger.Warn("ingest failed: %v", err)
		cmd.PrintErrln("Ingest failed:", err)
		return nil
	}
}
