// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets resolves API keys for the embedding and chat endpoints.
// Keys come from an explicit configuration value, an environment variable,
// or a plain-text file in a secrets directory, in that order. Each file in
// the directory holds one secret: the filename is the key name and the
// trimmed contents are the value.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Key names one credential by its secret file and environment variable.
type Key struct {
	File string
	Env  string
}

// Known credentials. DashScope serves an OpenAI-compatible API and is
// accepted wherever an OpenAI key is.
var (
	OpenAI    = Key{File: "openai-api-key", Env: "OPENAI_API_KEY"}
	DashScope = Key{File: "dashscope-api-key", Env: "DASHSCOPE_API_KEY"}
)

// Set is the contents of a secrets directory.
type Set map[string]string

// Load reads all files in dir. A missing directory is not an error; Load
// returns an empty Set. Unreadable files produce a warning on stderr but do
// not abort.
func Load(dir string) (Set, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Set{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	set := make(Set)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		if value := strings.TrimSpace(string(data)); value != "" {
			set[name] = value
		}
	}

	return set, nil
}

// Resolve returns explicit if set, otherwise the first key found in the
// environment, otherwise the first key found in s.
func (s Set) Resolve(explicit string, keys ...Key) string {
	if v := strings.TrimSpace(explicit); v != "" {
		return v
	}
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k.Env)); v != "" {
			return v
		}
	}
	for _, k := range keys {
		if v := s[k.File]; v != "" {
			return v
		}
	}
	return ""
}
