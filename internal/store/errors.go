package store

import (
	"errors"
	"fmt"
)

// ErrNoChanges is returned by Publish when the draft matches the published template.
var ErrNoChanges = errors.New("no changes to publish")

type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

func errNotFound(kind string, id any) error {
	return NotFoundError{Kind: kind, ID: fmt.Sprint(id)}
}
