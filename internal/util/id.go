package util

import (
	"strings"

	"github.com/google/uuid"
)

// NewID returns a prefixed 128-bit random identifier. It panics only if the
// system entropy source fails.
func NewID(prefix string) string {
	token := strings.ReplaceAll(uuid.New().String(), "-", "")
	if prefix == "" {
		return token
	}
	return prefix + "_" + token
}
