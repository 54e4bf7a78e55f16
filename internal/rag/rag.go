// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rag answers questions from retrieved chunks of the knowledge store,
// and, for comparison, from the chat model alone.
package rag

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/rag-engine/internal/chat"
	"github.com/pdiddy/rag-engine/pkg/types"
)

// DefaultTopK is the number of chunks placed in the prompt when none is
// configured.
const DefaultTopK = 4

var qaPromptTmpl = template.Must(template.New("qa").Parse(`You are a helpful question-answering assistant. Answer the question using the context provided.
If the answer cannot be found in the context, say that you don't know.

Context:
{{range $i, $c := .Context}}{{if $i}}

{{end}}{{$c.Text}}{{end}}

Question: {{.Question}}
Helpful answer:`))

// Retriever returns the chunks nearest to a query. *provision.Handle
// implements it.
type Retriever interface {
	Query(ctx context.Context, text string, k int) ([]types.SearchHit, error)
}

// Answer is a model response with the chunks it was given.
type Answer struct {
	Question string            `json:"question" yaml:"question"`
	Text     string            `json:"answer" yaml:"answer"`
	Sources  []types.SearchHit `json:"sources,omitempty" yaml:"sources,omitempty"`
}

// Answerer combines retrieval with a chat model.
type Answerer struct {
	retriever Retriever
	llm       chat.Completer
	topK      int
}

// New returns an Answerer that puts the topK nearest chunks in each prompt.
func New(r Retriever, llm chat.Completer, topK int) *Answerer {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Answerer{retriever: r, llm: llm, topK: topK}
}

// Ask retrieves context for question and asks the model to answer from it.
func (a *Answerer) Ask(ctx context.Context, question string) (Answer, error) {
	if strings.TrimSpace(question) == "" {
		return Answer{}, fmt.Errorf("empty question: %w", types.ErrInvalidParameter)
	}

	hits, err := a.retriever.Query(ctx, question, a.topK)
	if err != nil {
		return Answer{}, fmt.Errorf("retrieving context: %w", err)
	}

	prompt, err := renderPrompt(question, hits)
	if err != nil {
		return Answer{}, fmt.Errorf("rendering prompt: %w", err)
	}

	text, err := a.llm.Complete(ctx, prompt)
	if err != nil {
		return Answer{}, err
	}
	return Answer{Question: question, Text: text, Sources: hits}, nil
}

// AskWithoutContext sends question to the model as is.
func (a *Answerer) AskWithoutContext(ctx context.Context, question string) (Answer, error) {
	if strings.TrimSpace(question) == "" {
		return Answer{}, fmt.Errorf("empty question: %w", types.ErrInvalidParameter)
	}
	text, err := a.llm.Complete(ctx, question)
	if err != nil {
		return Answer{}, err
	}
	return Answer{Question: question, Text: text}, nil
}

func renderPrompt(question string, hits []types.SearchHit) (string, error) {
	var buf bytes.Buffer
	data := struct {
		Question string
		Context  []types.SearchHit
	}{Question: question, Context: hits}
	if err := qaPromptTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
