// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/rag-engine/internal/chat"
	"github.com/pdiddy/rag-engine/internal/rag"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a question from the retrieved chunks",
	Long: `Ask retrieves the k nearest chunks, places them in a question-answering
prompt and sends it to the chat model. With --compare the question is also
sent without any context so both answers can be read side by side.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	llm, err := chat.NewClient(cfg.Chat)
	if err != nil {
		return err
	}

	h, err := openStore(cmd, cfg)
	if err != nil {
		return err
	}
	defer h.Close()

	question := strings.Join(args, " ")
	answerer := rag.New(h, llm, topK(cmd, cfg))

	answers := make([]rag.Answer, 0, 2)
	withContext, err := answerer.Ask(cmd.Context(), question)
	if err != nil {
		return err
	}
	answers = append(answers, withContext)

	if compare, _ := cmd.Flags().GetBool("compare"); compare {
		plain, err := answerer.AskWithoutContext(cmd.Context(), question)
		if err != nil {
			return err
		}
		answers = append(answers, plain)
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatAnswers(os.Stdout, answers, jsonOutput)
}

func formatAnswers(w io.Writer, answers []rag.Answer, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(answers)
	}

	for i, a := range answers {
		if len(answers) > 1 {
			label := "With retrieved context"
			if i > 0 {
				label = "Without context"
			}
			fmt.Fprintf(w, "== %s ==\n", label)
		}
		fmt.Fprintln(w, a.Text)
		if len(a.Sources) > 0 {
			fmt.Fprintln(w, "\nSources:")
			for _, s := range a.Sources {
				fmt.Fprintf(w, "  [%.4f] %s #%d: %s\n", s.Distance, s.Source, s.Index, truncate(oneLine(s.Text), 72))
			}
		}
		if i < len(answers)-1 {
			fmt.Fprintln(w)
		}
	}
	return nil
}

func init() {
	askCmd.Flags().IntP("k", "k", 0, "number of chunks placed in the prompt (default store.top_k)")
	askCmd.Flags().Bool("compare", false, "also answer without retrieved context")
	askCmd.Flags().Bool("json", false, "output answers as JSON")

	rootCmd.AddCommand(askCmd)
}
