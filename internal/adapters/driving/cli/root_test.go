package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/foldrag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/foldrag/internal/core/domain"
	"github.com/custodia-labs/foldrag/internal/core/ports/driven"
	"github.com/custodia-labs/foldrag/internal/core/ports/driving"
	"github.com/custodia-labs/foldrag/internal/core/services"
)

// mockPipeline is a mock implementation of driving.PipelineService.
type mockPipeline struct {
	mu        sync.Mutex
	report    *domain.IngestReport
	answer    *domain.Answer
	err       error
	loadErr   error
	ingested  []string
	questions []string
	loaded    int
	cfg       domain.Config
}

var _ driving.PipelineService = (*mockPipeline)(nil)

func (m *mockPipeline) Ingest(_ context.Context, folder string) (*domain.IngestReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ingested = append(m.ingested, folder)
	return m.report, m.err
}

func (m *mockPipeline) Load(_ context.Context) error {
	m.loaded++
	return m.loadErr
}

func (m *mockPipeline) Query(_ context.Context, question string) (*domain.Answer, error) {
	m.questions = append(m.questions, question)
	return m.answer, m.err
}

func (m *mockPipeline) Retrieve(_ context.Context, _ string, _ int) ([]domain.RetrievedContext, error) {
	return nil, m.err
}

func (m *mockPipeline) Records() []domain.ChunkRecord { return nil }

func (m *mockPipeline) State() domain.PipelineState { return domain.StateReady }

func ingestCount(env *testEnv) int {
	env.pipeline.mu.Lock()
	defer env.pipeline.mu.Unlock()
	return len(env.pipeline.ingested)
}

type testEnv struct {
	pipeline     *mockPipeline
	settings     *memory.ConfigStore
	settingsPath string
}

// setupTestServices swaps the settings and pipeline factories for fakes and
// resets every flag. It restores the real factories when the test ends.
func setupTestServices(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		pipeline: &mockPipeline{
			report: &domain.IngestReport{Chunks: 1},
			answer: &domain.Answer{Text: "answer"},
		},
		settings: memory.NewConfigStore(),
	}

	origSettings, origPipeline, origOpen := newSettings, newPipeline, openMetadata
	newSettings = func(path string) (driving.SettingsService, error) {
		env.settingsPath = path
		return services.NewSettingsService(env.settings, services.WithGetenv(func(string) string { return "" })), nil
	}
	newPipeline = func(cfg domain.Config, _ driven.ProgressReporter) (driving.PipelineService, func() error, error) {
		env.pipeline.cfg = cfg
		return env.pipeline, func() error { return nil }, nil
	}
	t.Cleanup(func() {
		newSettings, newPipeline, openMetadata = origSettings, origPipeline, origOpen
		resetFlags(rootCmd)
	})
	resetFlags(rootCmd)
	return env
}

// resetFlags restores every flag of cmd and its children to its default.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(os.Stdout)
		rootCmd.SetErr(nil)
	}()

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestRootCmd_NoFlagsPrintsHint(t *testing.T) {
	env := setupTestServices(t)

	out, _, err := execute(t)

	require.NoError(t, err)
	assert.Equal(t, "Use --dir to ingest or --ask to query.\n", out)
	assert.Empty(t, env.pipeline.ingested)
	assert.Empty(t, env.pipeline.questions)
}

func TestRootCmd_DirIngests(t *testing.T) {
	env := setupTestServices(t)

	out, _, err := execute(t, "--dir", "docs")

	require.NoError(t, err)
	assert.Equal(t, []string{"docs"}, env.pipeline.ingested)
	assert.Contains(t, out, "Chunks indexed: 1")
}

func TestRootCmd_AskQueries(t *testing.T) {
	env := setupTestServices(t)
	env.pipeline.answer = &domain.Answer{Text: "It is 42 [file:a.txt c000]."}

	out, _, err := execute(t, "--ask", "What is it?")

	require.NoError(t, err)
	assert.Equal(t, 1, env.pipeline.loaded)
	assert.Equal(t, []string{"What is it?"}, env.pipeline.questions)
	assert.Equal(t, "It is 42 [file:a.txt c000].\n", out)
}

func TestRootCmd_DirWinsOverAsk(t *testing.T) {
	env := setupTestServices(t)

	_, _, err := execute(t, "--dir", "docs", "--ask", "q")

	require.NoError(t, err)
	assert.Equal(t, []string{"docs"}, env.pipeline.ingested)
	assert.Empty(t, env.pipeline.questions)
}

func TestRootCmd_FlagsOverrideConfig(t *testing.T) {
	env := setupTestServices(t)
	require.NoError(t, env.settings.Set(services.KeyTopK, int64(3)))
	require.NoError(t, env.settings.Set(services.KeyModelQA, "from-file"))

	_, _, err := execute(t, "--dir", "docs",
		"--store", "custom_store", "--topk", "7", "--poppler", "/opt/poppler/bin",
		"--ocr", "vision-x", "--embed", "embed-x")

	require.NoError(t, err)
	cfg := env.pipeline.cfg
	assert.Equal(t, "custom_store", cfg.WorkDir)
	assert.Equal(t, 7, cfg.TopK)
	assert.Equal(t, "/opt/poppler/bin", cfg.PopplerPath)
	assert.Equal(t, "vision-x", cfg.OCR.Model)
	assert.Equal(t, "from-file", cfg.QA.Model)
	assert.Equal(t, "embed-x", cfg.Embed.Model)
	assert.Equal(t, "custom_store/foldrag.toml", env.settingsPath)
}

func TestRootCmd_ConfigFileFromSettings(t *testing.T) {
	env := setupTestServices(t)
	require.NoError(t, env.settings.Set(services.KeyTopK, int64(3)))

	_, _, err := execute(t, "--dir", "docs", "--config", "/etc/foldrag.toml")

	require.NoError(t, err)
	assert.Equal(t, 3, env.pipeline.cfg.TopK)
	assert.Equal(t, "/etc/foldrag.toml", env.settingsPath)
}

func TestRootCmd_InvalidTopK(t *testing.T) {
	setupTestServices(t)

	_, _, err := execute(t, "--ask", "q", "--topk", "0")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfig)
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"config", domain.ErrNotIndexed, ExitConfig},
		{"extractor unavailable", fmt.Errorf("wrap: %w", domain.ErrExtractorUnavailable), ExitConfig},
		{"input", domain.ErrNoSupportedFiles, ExitInput},
		{"external", domain.ClassifyExternal("qa", errors.New("refused")), ExitExternal},
		{"timeout", domain.ClassifyExternal("qa", context.DeadlineExceeded), ExitTimeout},
		{"other", errors.New("boom"), ExitFailure},
		{"not ready", domain.ErrNotReady, ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestExecute_ReturnsExitCode(t *testing.T) {
	env := setupTestServices(t)
	env.pipeline.err = domain.ErrNoSupportedFiles
	var errOut bytes.Buffer
	rootCmd.SetErr(&errOut)
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"ingest", "empty"})
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(os.Stdout)
		rootCmd.SetErr(nil)
	}()

	code := Execute(context.Background())

	assert.Equal(t, ExitInput, code)
	assert.Contains(t, errOut.String(), "no supported files")
}
