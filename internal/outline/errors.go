package outline

import (
	"errors"
	"fmt"
)

var (
	ErrNoParentAbove = errors.New("no parent item above to nest under")
	ErrMaxDepth      = errors.New("checklists are limited to parent and sub-item levels")
)

type IndexError struct {
	Op    string
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s: index %d out of range (items: %d)", e.Op, e.Index, e.Len)
}
