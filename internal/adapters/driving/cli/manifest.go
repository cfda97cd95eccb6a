package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/foldrag/internal/adapters/driven/manifest/jsonfile"
	"github.com/custodia-labs/foldrag/internal/core/domain"
)

var manifestJSON bool

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Print the content-hash manifest",
	Long: `Prints the SHA-256 recorded for each file by the last ingestion, with
the run identifier and time.`,
	Args: cobra.NoArgs,
	RunE: runManifest,
}

func init() {
	manifestCmd.Flags().BoolVar(&manifestJSON, "json", false, "output the manifest as JSON")
	rootCmd.AddCommand(manifestCmd)
}

func runManifest(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	m, err := jsonfile.NewStore(cfg.ManifestPath()).Load()
	if err != nil {
		return err
	}

	if manifestJSON {
		return outputManifestJSON(cmd, m)
	}

	if len(m.Files) == 0 {
		cmd.Println("Manifest is empty.")
		return nil
	}
	if m.RunID != "" {
		cmd.Printf("Run: %s\n", m.RunID)
	}
	if !m.UpdatedAt.IsZero() {
		cmd.Printf("Updated: %s\n", m.UpdatedAt.Local().Format(time.DateTime))
	}
	cmd.Println()
	for _, rel := range m.Paths() {
		cmd.Printf("%s  %s\n", shortHash(m.Files[rel].SHA256), rel)
	}
	return nil
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

func outputManifestJSON(cmd *cobra.Command, m *domain.Manifest) error {
	out := struct {
		Files     map[string]domain.ManifestEntry `json:"files"`
		RunID     string                          `json:"run_id,omitempty"`
		UpdatedAt *time.Time                      `json:"updated_at,omitempty"`
	}{Files: m.Files, RunID: m.RunID}
	if !m.UpdatedAt.IsZero() {
		out.UpdatedAt = &m.UpdatedAt
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
