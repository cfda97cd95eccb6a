// Package cli implements the foldrag command line with cobra.
package cli

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/foldrag/internal/core/domain"
	"github.com/custodia-labs/foldrag/internal/logger"
)

// version is set at build time with -ldflags.
var version = "dev"

// Exit codes by error kind.
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitConfig   = 2
	ExitInput    = 3
	ExitExternal = 4
	ExitTimeout  = 5
)

// usageHint is printed when the root command gets neither --dir nor --ask.
const usageHint = "Use --dir to ingest or --ask to query."

var (
	rootDir string
	rootAsk string

	flagStore   string
	flagPoppler string
	flagTopK    int
	flagOCR     string
	flagQA      string
	flagEmbed   string
	flagConfig  string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "foldrag",
	Short: "Ask questions about a folder of documents",
	Long: `foldrag indexes a folder of PDFs, images, text, CSV and Excel files and
answers questions about them with citations.

Scanned pages and images are read by a vision model, every chunk is embedded,
and answers are written by a chat model using only the retrieved chunks.

  foldrag --dir ./docs
  foldrag --ask "What was revenue in Q3?"`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(flagVerbose)
	},
	RunE: runRoot,
}

func init() {
	// cobra prints to stderr unless an output is set; answers belong on stdout.
	rootCmd.SetOut(os.Stdout)
	rootCmd.Flags().StringVar(&rootDir, "dir", "", "folder to ingest")
	rootCmd.Flags().StringVar(&rootAsk, "ask", "", "question to ask")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagStore, "store", domain.DefaultConfig().WorkDir, "store directory")
	pf.StringVar(&flagPoppler, "poppler", "", "directory holding pdftoppm if it is not on PATH")
	pf.IntVar(&flagTopK, "topk", domain.DefaultConfig().TopK, "number of chunks retrieved per question")
	pf.StringVar(&flagOCR, "ocr", "", "OCR (vision) model")
	pf.StringVar(&flagQA, "qa", "", "QA (text) model")
	pf.StringVar(&flagEmbed, "embed", "", "embedding model")
	pf.StringVar(&flagConfig, "config", "", "config file (default <store>/foldrag.toml)")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "print debug logs to stderr")
}

func runRoot(cmd *cobra.Command, _ []string) error {
	switch {
	case rootDir != "":
		return runIngest(cmd, rootDir)
	case rootAsk != "":
		return runAsk(cmd, rootAsk)
	default:
		cmd.Println(usageHint)
		return nil
	}
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context) int {
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}
	rootCmd.PrintErrln("Error:", err)
	return ExitCode(err)
}

// ExitCode maps an error to the exit code for its kind.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, domain.ErrConfig):
		return ExitConfig
	case errors.Is(err, domain.ErrInput):
		return ExitInput
	case errors.Is(err, domain.ErrTimeout):
		return ExitTimeout
	case errors.Is(err, domain.ErrExternal):
		return ExitExternal
	default:
		return ExitFailure
	}
}
