package rig

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NewIdentifier returns a fresh stable identifier: 32 lowercase hex
// characters, no separators. Identifiers survive renames; every host
// artifact a target owns is keyed by it.
func NewIdentifier() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// WeightArrayName returns the host property name holding a target's
// per-driver weights.
func WeightArrayName(identifier string) string {
	return "csk_" + identifier
}

// WeightArrayPath returns the channel path addressing the weight array.
// Individual drivers live at this path with their array index.
func WeightArrayPath(identifier string) string {
	return fmt.Sprintf("[%q]", WeightArrayName(identifier))
}

// Uniquify returns base if it does not collide with existing, otherwise
// the first "base.001"-style suffix that does not.
func Uniquify(base string, existing func(string) bool) string {
	if !existing(base) {
		return base
	}
	for i := 1; ; i++ {
		name := fmt.Sprintf("%s.%03d", base, i)
		if !existing(name) {
			return name
		}
	}
}
