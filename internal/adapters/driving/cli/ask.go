package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/foldrag/internal/core/domain"
	"github.com/custodia-labs/foldrag/internal/core/ports/driven"
)

var (
	askContexts bool
	askJSON     bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a question from the index",
	Long: `Embeds the question, retrieves the closest chunks and asks the QA model
to answer using only those chunks, citing them by tag.

If nothing is retrieved the answer is "I don't know (not in RAG folder)."`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAsk(cmd, strings.Join(args, " "))
	},
}

func init() {
	askCmd.Flags().BoolVar(&askContexts, "contexts", false, "list the retrieved chunks after the answer")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, question string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	pipeline, closeFn, err := newPipeline(cfg, driven.NopProgress{})
	if err != nil {
		return err
	}
	defer closeFn()

	ctx := commandContext(cmd)
	if err := pipeline.Load(ctx); err != nil {
		return err
	}
	answer, err := pipeline.Query(ctx, question)
	if err != nil {
		return err
	}

	if askJSON {
		return outputAnswerJSON(cmd, answer)
	}

	cmd.Println(answer.Text)
	if askContexts && len(answer.Contexts) > 0 {
		cmd.Println()
		cmd.Println("Contexts:")
		for i, c := range answer.Contexts {
			cmd.Printf("  [%d] %s (%.3f)\n", i+1, c.Record.CitationTag, c.Score)
		}
	}
	return nil
}

type answerJSON struct {
	Question string        `json:"question"`
	Answer   string        `json:"answer"`
	Fallback bool          `json:"fallback"`
	Contexts []contextJSON `json:"contexts"`
}

type contextJSON struct {
	Tag   string  `json:"tag"`
	File  string  `json:"file"`
	Score float32 `json:"score"`
	Text  string  `json:"text"`
}

func outputAnswerJSON(cmd *cobra.Command, a *domain.Answer) error {
	out := answerJSON{
		Question: a.Question,
		Answer:   a.Text,
		Fallback: a.Fallback,
		Contexts: make([]contextJSON, len(a.Contexts)),
	}
	for i, c := range a.Contexts {
		out.Contexts[i] = contextJSON{
			Tag:   c.Record.CitationTag,
			File:  c.Record.RelativePath,
			Score: c.Score,
			Text:  c.Record.Text,
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
