package validation

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict allows no tags and no attributes.
var strict = bluemonday.StrictPolicy()

// PlainText strips all markup and surrounding whitespace.
func PlainText(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}
