package cli

import (
	"fmt"
	"strconv"
	"strings"
)

type argError struct {
	name  string
	value string
}

func (e argError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.name, e.value)
}

func errInvalidArg(name, value string) error {
	return argError{name: name, value: value}
}

func parseTemplateID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidArg("template id", s)
	}
	return id, nil
}

// parseIndex parses a 0-based row index as printed by `items list`.
func parseIndex(s string) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || i < 0 {
		return 0, errInvalidArg("index", s)
	}
	return i, nil
}
