// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/rag-engine/internal/corpus"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write the sample corpus",
	Long: `Generate writes a small knowledge base about future computing
architectures to the corpus path (or --output) so the other commands have
something to index.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		path, _ := cmd.Flags().GetString("output")
		if path == "" {
			path = cfg.Corpus.Path
		}

		if err := corpus.WriteSample(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample corpus to %s\n", path)
		return nil
	},
}

func init() {
	generateCmd.Flags().StringP("output", "o", "", "file to write (default corpus.path)")

	rootCmd.AddCommand(generateCmd)
}
