package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/foldrag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/foldrag/internal/app"
	"github.com/custodia-labs/foldrag/internal/core/domain"
	"github.com/custodia-labs/foldrag/internal/core/ports/driven"
	"github.com/custodia-labs/foldrag/internal/core/ports/driving"
	"github.com/custodia-labs/foldrag/internal/core/services"
)

// newSettings opens the settings at path. Tests replace it.
var newSettings = func(path string) (driving.SettingsService, error) {
	store, err := file.NewConfigStore(path)
	if err != nil {
		return nil, err
	}
	return services.NewSettingsService(store), nil
}

// newPipeline wires a pipeline for cfg and returns it with its closer.
// Tests replace it.
var newPipeline = func(cfg domain.Config, progress driven.ProgressReporter) (driving.PipelineService, func() error, error) {
	a, err := app.New(cfg, app.WithProgress(progress))
	if err != nil {
		return nil, nil, err
	}
	return a.Pipeline, a.Close, nil
}

// configPath returns the settings file location.
func configPath() string {
	if flagConfig != "" {
		return flagConfig
	}
	return filepath.Join(flagStore, file.DefaultFileName)
}

// loadConfig resolves the configuration: defaults, then the settings file
// and environment, then flags given on the command line.
func loadConfig(cmd *cobra.Command) (domain.Config, error) {
	settings, err := newSettings(configPath())
	if err != nil {
		return domain.Config{}, err
	}
	cfg, err := settings.Get()
	if err != nil {
		return domain.Config{}, err
	}
	applyFlags(cmd, &cfg)
	return cfg, cfg.Validate()
}

// applyFlags overrides cfg with flags the user set explicitly.
func applyFlags(cmd *cobra.Command, cfg *domain.Config) {
	flags := cmd.Flags()
	if flags.Changed("store") {
		cfg.WorkDir = flagStore
	}
	if flags.Changed("poppler") {
		cfg.PopplerPath = flagPoppler
	}
	if flags.Changed("topk") {
		cfg.TopK = flagTopK
	}
	if flagOCR != "" {
		cfg.OCR.Model = flagOCR
	}
	if flagQA != "" {
		cfg.QA.Model = flagQA
	}
	if flagEmbed != "" {
		cfg.Embed.Model = flagEmbed
	}
}
