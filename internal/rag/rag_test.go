// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/rag-engine/pkg/types"
)

type fakeRetriever struct {
	hits  []types.SearchHit
	err   error
	gotK  int
	calls int
}

func (f *fakeRetriever) Query(_ context.Context, _ string, k int) ([]types.SearchHit, error) {
	f.calls++
	f.gotK = k
	return f.hits, f.err
}

type fakeLLM struct {
	prompts []string
	reply   string
	err     error
}

func (f *fakeLLM) Complete(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

func hit(text string) types.SearchHit {
	return types.SearchHit{Chunk: types.Chunk{ID: text, Source: "kb.txt", Text: text}}
}

func TestAsk(t *testing.T) {
	r := &fakeRetriever{hits: []types.SearchHit{hit("Qubits hold superpositions."), hit("Entanglement links qubits.")}}
	llm := &fakeLLM{reply: "A qubit is a quantum bit."}

	ans, err := New(r, llm, 2).Ask(context.Background(), "What is a qubit?")
	require.NoError(t, err)

	assert.Equal(t, 2, r.gotK)
	assert.Equal(t, "A qubit is a quantum bit.", ans.Text)
	assert.Len(t, ans.Sources, 2)

	require.Len(t, llm.prompts, 1)
	prompt := llm.prompts[0]
	assert.Contains(t, prompt, "Qubits hold superpositions.\n\nEntanglement links qubits.")
	assert.Contains(t, prompt, "Question: What is a qubit?")
	assert.Contains(t, prompt, "say that you don't know")
	assert.True(t, strings.HasSuffix(prompt, "Helpful answer:"))
}

func TestAsk_DefaultTopK(t *testing.T) {
	r := &fakeRetriever{}
	_, err := New(r, &fakeLLM{}, 0).Ask(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, DefaultTopK, r.gotK)
}

func TestAsk_Errors(t *testing.T) {
	_, err := New(&fakeRetriever{}, &fakeLLM{}, 1).Ask(context.Background(), " ")
	assert.ErrorIs(t, err, types.ErrInvalidParameter)

	_, err = New(&fakeRetriever{err: types.ErrInvalidParameter}, &fakeLLM{}, 1).Ask(context.Background(), "q")
	assert.ErrorContains(t, err, "retrieving context")

	_, err = New(&fakeRetriever{}, &fakeLLM{err: errors.New("rate limited")}, 1).Ask(context.Background(), "q")
	assert.ErrorContains(t, err, "rate limited")
}

func TestAskWithoutContext(t *testing.T) {
	r := &fakeRetriever{}
	llm := &fakeLLM{reply: "I think so."}

	ans, err := New(r, llm, 3).AskWithoutContext(context.Background(), "Is light faster than copper?")
	require.NoError(t, err)

	assert.Zero(t, r.calls)
	assert.Equal(t, []string{"Is light faster than copper?"}, llm.prompts)
	assert.Equal(t, "I think so.", ans.Text)
	assert.Empty(t, ans.Sources)
}
