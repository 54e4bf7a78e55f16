// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the rag-engine CLI. It provisions a
// persisted embedding index from a text corpus and answers queries and
// questions against it.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/rag-engine/internal/secrets"
	"github.com/pdiddy/rag-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets = secrets.Set{}

// logger receives provisioning lifecycle events.
var logger = slog.New(slog.DiscardHandler)

// rootCmd is the base command for the rag-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "rag-engine",
	Short: "Provision and query a persisted embedding index over a text corpus",
	Long: `rag-engine chunks a UTF-8 corpus, embeds every chunk and persists the
result as a local index. Later runs reuse the index; an index that is empty,
unreadable or built by a different embedding function is rebuilt once.

Subcommands: generate writes a sample corpus, provision builds or validates
the index, query returns the nearest chunks, ask answers a question from
them, and export dumps the index.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A missing .env is normal.
		_ = godotenv.Load()

		verbose, _ := cmd.Flags().GetBool("verbose")
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Debug("loaded secrets", "keys", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./rag-engine.yaml or ~/.config/rag-engine/rag-engine.yaml)")
	pf.BoolP("verbose", "v", false, "log debug detail to stderr")
	pf.String("corpus", "", "corpus file or directory (default knowledge_base.txt)")
	pf.String("persist-dir", "", "index directory (default ./chroma_db)")
	pf.Bool("force", false, "discard any persisted index and rebuild it")
	pf.Int("chunk-size", 0, "chunk length in characters (default 500)")
	pf.Int("chunk-overlap", 0, "characters shared by consecutive chunks (default 50)")
	pf.String("embedding-provider", "", "embedding backend: hash or openai (default hash)")
	pf.String("embedding-model", "", "embedding model name")

	bindFlag("corpus.path", "corpus")
	bindFlag("store.persist_dir", "persist-dir")
	bindFlag("store.force_rebuild", "force")
	bindFlag("chunk.size", "chunk-size")
	bindFlag("chunk.overlap", "chunk-overlap")
	bindFlag("embedding.provider", "embedding-provider")
	bindFlag("embedding.model", "embedding-model")
}

func bindFlag(key, flag string) {
	if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("rag-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "rag-engine"))
		}
	}

	configureEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// configureEnv maps RAG_ENGINE_SECTION_KEY variables onto section.key and
// installs the defaults.
func configureEnv() {
	viper.SetEnvPrefix("RAG_ENGINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults()
}

// describe adds a hint for the failures a user can act on.
func describe(err error) string {
	var corrupt *types.CorruptStoreError
	switch {
	case errors.As(err, &corrupt):
		return fmt.Sprintf("%v\nDelete %s and run `rag-engine provision --force`.", err, corrupt.Path)
	case errors.Is(err, types.ErrNotFound):
		return fmt.Sprintf("%v\nRun `rag-engine generate` to write the sample corpus, or pass --corpus.", err)
	case errors.Is(err, types.ErrEmptyCorpus):
		return fmt.Sprintf("%v\nThe corpus has no usable UTF-8 text.", err)
	case errors.Is(err, context.Canceled):
		return "interrupted"
	default:
		return err.Error()
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", describe(err))
		stop()
		os.Exit(1)
	}
}
