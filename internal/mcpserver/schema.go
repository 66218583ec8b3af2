package mcpserver

import (
	"strings"

	"github.com/zbennett/bbo-extension/internal/dd"
)

const defaultSolveMode = "fetch"

func normalizeSolveMode(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return defaultSolveMode
	}
	return v
}

// ParseSolveMode reads "cache" or "fetch".
func ParseSolveMode(v string) (dd.Mode, bool) {
	switch normalizeSolveMode(v) {
	case "cache":
		return dd.CacheOnly, true
	case "fetch":
		return dd.FetchIfMissing, true
	}
	return 0, false
}

func isAllowedConversion(v string) bool {
	return v == "lin" || v == "dot"
}
