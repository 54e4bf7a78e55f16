// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
	"strings"
)

// Fatal provisioning errors. Callers match them with errors.Is.
var (
	ErrNotFound         = errors.New("not found")
	ErrEmptyCorpus      = errors.New("empty corpus")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrCorruptStore     = errors.New("corrupt store")
)

// CorruptStoreError reports a persisted index that stayed unreadable or
// empty after the bounded rebuild attempts. Reasons holds the failure of
// every attempt in order.
type CorruptStoreError struct {
	Path    string
	Reasons []error
}

func (e *CorruptStoreError) Error() string {
	msgs := make([]string, len(e.Reasons))
	for i, r := range e.Reasons {
		msgs[i] = r.Error()
	}
	return fmt.Sprintf("corrupt store at %s after %d attempt(s): %s",
		e.Path, len(e.Reasons), strings.Join(msgs, "; "))
}

// Is makes errors.Is(err, ErrCorruptStore) hold.
func (e *CorruptStoreError) Is(target error) bool {
	return target == ErrCorruptStore
}

// Unwrap exposes the per-attempt reasons.
func (e *CorruptStoreError) Unwrap() []error {
	return e.Reasons
}
