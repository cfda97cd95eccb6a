package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/foldrag/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/foldrag/internal/core/domain"
	"github.com/custodia-labs/foldrag/internal/core/ports/driven"
)

var (
	inspectFormat string
	inspectFile   string
)

// openMetadata opens the metadata artifact. Tests replace it.
var openMetadata driven.MetadataOpener = sqlite.Open

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "List what the index holds",
	Long: `Lists the records stored alongside the index.

The table format summarises records per file, or lists the records of one
file with --file. The json and yaml formats print full records.`,
	Args: cobra.NoArgs,
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().StringVarP(&inspectFormat, "format", "f", "table", "output format: table, json or yaml")
	inspectCmd.Flags().StringVar(&inspectFile, "file", "", "only records of this relative path")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, _ []string) error {
	switch inspectFormat {
	case "table", "json", "yaml":
	default:
		return fmt.Errorf("%w: unknown format %q (want table, json or yaml)", domain.ErrInput, inspectFormat)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	store, err := openMetadata(cfg.MetaPath(), false)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.LoadAll(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("load metadata: %w", err)
	}
	if inspectFile != "" {
		records = filterFile(records, inspectFile)
	}

	switch inspectFormat {
	case "json":
		data, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal records: %w", err)
		}
		cmd.Println(string(data))
	case "yaml":
		data, err := yaml.Marshal(records)
		if err != nil {
			return fmt.Errorf("failed to marshal records: %w", err)
		}
		cmd.Print(string(data))
	default:
		if inspectFile != "" {
			printRecords(cmd, records)
		} else {
			printFiles(cmd, domain.SummariseFiles(records))
		}
	}
	return nil
}

func filterFile(records []domain.ChunkRecord, rel string) []domain.ChunkRecord {
	out := make([]domain.ChunkRecord, 0)
	for _, r := range records {
		if r.RelativePath == rel {
			out = append(out, r)
		}
	}
	return out
}

func printFiles(cmd *cobra.Command, files []domain.FileSummary) {
	if len(files) == 0 {
		cmd.Println("No records indexed.")
		return
	}
	total := 0
	cmd.Printf("%-8s %7s  %s\n", "TYPE", "RECORDS", "FILE")
	for _, f := range files {
		cmd.Printf("%-8s %7d  %s\n", f.FileType, f.Records, f.RelativePath)
		total += f.Records
	}
	cmd.Printf("\n%d records in %d files\n", total, len(files))
}

// previewLen caps the text shown per record in the table.
const previewLen = 60

func printRecords(cmd *cobra.Command, records []domain.ChunkRecord) {
	if len(records) == 0 {
		cmd.Println("No records for that file.")
		return
	}
	for _, r := range records {
		cmd.Printf("%s  %s\n", r.CitationTag, preview(r.Text))
	}
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewLen {
		return text
	}
	return string(runes[:previewLen]) + "..."
}
