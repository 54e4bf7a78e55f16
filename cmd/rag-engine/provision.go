// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/rag-engine/internal/provision"
)

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Build the index, or validate and reuse the persisted one",
	Long: `Provision makes sure a valid index exists in the persist directory.

A missing or empty directory is built from the corpus. An existing index is
opened and reused; if it cannot be opened, holds no entries, or was built
with a different embedding configuration, it is deleted and rebuilt once.
--force always rebuilds.`,
	RunE: runProvision,
}

func runProvision(cmd *cobra.Command, args []string) error {
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
	return formatReport(os.Stdout, h.Report(), h.Info().Fingerprint, jsonOutput)
}

func formatReport(w io.Writer, r provision.Report, fingerprint string, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			provision.Report
			Fingerprint string `json:"fingerprint"`
		}{r, fingerprint})
	}

	state := "reused"
	switch {
	case r.Recovered:
		state = "rebuilt after recovery"
	case r.Rebuilt:
		state = "built"
	}

	fmt.Fprintf(w, "Index %s at %s\n", state, r.PersistDir)
	fmt.Fprintf(w, "  entries:   %d\n", r.Entries)
	fmt.Fprintf(w, "  embedding: %s\n", fingerprint)
	if len(r.Reasons) > 0 {
		fmt.Fprintf(w, "  reasons:\n    %s\n", strings.Join(r.Reasons, "\n    "))
	}
	return nil
}

func init() {
	provisionCmd.Flags().Bool("json", false, "output the provisioning report as JSON")

	rootCmd.AddCommand(provisionCmd)
}
