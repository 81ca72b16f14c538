package service

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// plainText strips markup and returns trimmed text with entities decoded.
func plainText(policy *bluemonday.Policy, input string) string {
	return strings.TrimSpace(html.UnescapeString(policy.Sanitize(input)))
}
