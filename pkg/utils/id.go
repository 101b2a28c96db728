package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateEntityID creates a short, human-readable id for an entity the world
// document left unnamed.
// Format: {prefix}-{8charHexUUID}
//
// Example:
//   - Input: prefix="container"
//   - Output: "container-a3f8e2b1"
func GenerateEntityID(prefix string) string {
	prefix = strings.TrimSpace(strings.ToLower(prefix))
	if prefix == "" {
		return generateShortUUID()
	}
	return prefix + "-" + generateShortUUID()
}

// GenerateRunID creates a full UUID identifying one simulation run
func GenerateRunID() string {
	return uuid.NewString()
}

// generateShortUUID creates an 8-character hex string from a UUID.
func generateShortUUID() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")[:8]
}
