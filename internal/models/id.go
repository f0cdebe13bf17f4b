package models

import (
	"strconv"
	"strings"
)

// ParseID converts a path identifier into a row id. Malformed or
// non-positive identifiers are reported as NOT_FOUND, the same as an
// absent row, so callers cannot distinguish the two.
func ParseID(resource, raw string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, NewNotFoundError(resource, raw)
	}
	return uint(id), nil
}
