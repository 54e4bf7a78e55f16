// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/rag-engine/pkg/types"
)

var queryCmd = &cobra.Command{
	Use:   "query <text>",
	Short: "Return the chunks nearest to a query",
	Long: `Query embeds the text with the index's embedding function and prints the
k nearest chunks with their cosine distance and source.

Use --trace with a chunk ID to print the chunk with its neighbours instead.`,
	RunE: runQuery,
}

func runQuery(cmd *cobra.Command, args []string) error {
	traceID, _ := cmd.Flags().GetString("trace")
	if traceID == "" && len(args) == 0 {
		return fmt.Errorf("query text required")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	h, err := openStore(cmd, cfg)
	if err != nil {
		return err
	}
	defer h.Close()

	jsonOutput, _ := cmd.Flags().GetBool("json")

	if traceID != "" {
		window, _ := cmd.Flags().GetInt("window")
		chunks, err := h.Trace(cmd.Context(), traceID, window)
		if err != nil {
			return err
		}
		return formatTraceOutput(os.Stdout, chunks, jsonOutput)
	}

	hits, err := h.Query(cmd.Context(), strings.Join(args, " "), topK(cmd, cfg))
	if err != nil {
		return err
	}
	return formatQueryOutput(os.Stdout, hits, jsonOutput)
}

func formatQueryOutput(w io.Writer, hits []types.SearchHit, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(hits)
	}

	if len(hits) == 0 {
		fmt.Fprintln(w, "No results found.")
		return nil
	}

	fmt.Fprintf(w, "%-4s  %-8s  %-16s  %-20s  %s\n", "Rank", "Distance", "ID", "Source", "Content")
	fmt.Fprintln(w, strings.Repeat("-", 110))

	for i, h := range hits {
		fmt.Fprintf(w, "%-4d  %-8.4f  %-16s  %-20s  %s\n",
			i+1, h.Distance, h.ID, truncate(h.Source, 20), truncate(oneLine(h.Text), 56))
	}

	fmt.Fprintf(w, "\n%d results\n", len(hits))
	return nil
}

func formatTraceOutput(w io.Writer, chunks []types.Chunk, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(chunks)
	}
	for _, c := range chunks {
		fmt.Fprintf(w, "--- %s #%d (offset %d, %s)\n%s\n", c.Source, c.Index, c.Offset, c.ID, c.Text)
	}
	return nil
}

// truncate shortens s to at most n characters.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func init() {
	queryCmd.Flags().IntP("k", "k", 0, "number of chunks to return (default store.top_k)")
	queryCmd.Flags().Bool("json", false, "output results as JSON")
	queryCmd.Flags().String("trace", "", "show a chunk ID with its neighbouring chunks")
	queryCmd.Flags().Int("window", 1, "neighbours on each side shown by --trace")

	rootCmd.AddCommand(queryCmd)
}
