package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/policyd/internal/answer"
	"github.com/fyrsmithlabs/policyd/internal/llm"
	"github.com/fyrsmithlabs/policyd/internal/retriever"
)

var askLanguage string

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question about the ingested policies",
	Long: `Answer a question using the ingested policy documents as grounding
context. The answer cites the source documents it was built from.

Requires ANTHROPIC_API_KEY (or llm.api_key in the config file).

Examples:
  policyd ask "Hur många semesterdagar har jag?"
  policyd ask --language English "How does parental leave work?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askLanguage, "language", "l", "Swedish", "answer language (Swedish or English)")
}

func runAsk(cmd *cobra.Command, args []string) error {
	lang, err := answer.ParseLanguage(askLanguage)
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	client, err := llm.NewAnthropicClient(a.cfg.LLM)
	if err != nil {
		return err
	}

	r := retriever.New(a.store, a.cfg.Retrieval.TopK, float32(a.cfg.Retrieval.MaxDistance), a.logger)
	synth := answer.New(r, client, a.logger)

	question := strings.Join(args, " ")
	resp, err := synth.Answer(cmd.Context(), question, nil, lang)
	if err != nil {
		return err
	}

	fmt.Println(resp.Text)

	if len(resp.Sources) > 0 {
		fmt.Println()
		fmt.Println("Sources:")
		for _, src := range resp.Sources {
			location := src.Source
			switch {
			case src.Page != "":
				location += ", page " + src.Page
			case src.Paragraph != "":
				location += ", section " + src.Paragraph
			}
			relevance := (1 - src.Distance) * 100
			fmt.Printf("  - %s (relevance %.0f%%)\n", location, relevance)
		}
	}
	return nil
}
