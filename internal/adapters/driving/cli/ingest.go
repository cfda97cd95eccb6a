package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/foldrag/internal/core/domain"
	"github.com/custodia-labs/foldrag/internal/core/ports/driven"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <folder>",
	Short: "Index every supported file in a folder",
	Long: `Walks the folder, extracts text from every PDF, image, text, CSV and
Excel file, embeds the chunks and replaces the index in the store directory.

Each run rebuilds the index from scratch. The manifest records a content hash
per file and the run reports which files were added, changed or removed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIngest(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, folder string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	report, err := ingest(cmd, cfg, folder)
	if err != nil {
		return err
	}
	printReport(cmd, report)
	return nil
}

// ingest runs one ingestion under a progress display.
func ingest(cmd *cobra.Command, cfg domain.Config, folder string) (*domain.IngestReport, error) {
	var report *domain.IngestReport
	err := withProgress(cmd, "Ingesting "+folder, func(ctx context.Context, progress driven.ProgressReporter) error {
		pipeline, closeFn, err := newPipeline(cfg, progress)
		if err != nil {
			return err
		}
		defer closeFn()

		report, err = pipeline.Ingest(ctx, folder)
		return err
	})
	return report, err
}

func printReport(cmd *cobra.Command, r *domain.IngestReport) {
	cmd.Printf("Saved index: %s\n", r.IndexPath)
	cmd.Printf("Saved metadata: %s\n", r.MetaPath)
	cmd.Printf("Chunks indexed: %d\n", r.Chunks)

	c := r.Changes
	cmd.Printf("Files: %d new, %d changed, %d unchanged, %d removed\n",
		len(c.Created), len(c.Updated), len(c.Unchanged), len(c.Deleted))
	if len(r.Skipped) > 0 {
		cmd.Printf("Skipped: %s\n", strings.Join(r.Skipped, ", "))
	}
}
