package config

import (
	"regexp"
	"strings"
)

const DefaultArtifactName = "artifact"

var (
	validNameRe   = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]{0,63}$`)
	invalidFsChar = regexp.MustCompile(`[^a-z0-9._-]+`)
	leadingSep    = regexp.MustCompile(`^[-.]+`)
	trailingSep   = regexp.MustCompile(`[-.]+$`)
)

// NormalizeArtifactName converts a user-provided name into a filename
// safe for trace and video artifacts:
//   - Lowercase, max 64 chars
//   - Only [a-z0-9._-] allowed
//   - Invalid chars replaced with "-"
//   - Leading/trailing dashes and dots stripped
//   - Empty result defaults to "artifact"
func NormalizeArtifactName(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return DefaultArtifactName
	}

	lower := strings.ToLower(trimmed)
	if validNameRe.MatchString(lower) {
		return lower
	}

	// Best-effort: collapse invalid chars to "-"
	result := invalidFsChar.ReplaceAllString(lower, "-")
	result = leadingSep.ReplaceAllString(result, "")
	result = trailingSep.ReplaceAllString(result, "")

	if len(result) > 64 {
		result = result[:64]
	}

	if result == "" {
		return DefaultArtifactName
	}
	return result
}
