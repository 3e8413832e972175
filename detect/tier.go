package detect

import (
	"fmt"
	"strings"
)

// Tier selects which model artifact serves a detection call.
type Tier string

const (
	// TierLite is the compact bundled model: no file or network access,
	// lower accuracy.
	TierLite Tier = "lite"

	// TierFull is the large cached model, downloaded on first use, higher
	// accuracy.
	TierFull Tier = "full"

	// TierAuto attempts the full model and substitutes lite for the current
	// call when the full model does not fit the memory budget. The
	// substitution is never cached, so the next full request retries.
	TierAuto Tier = "auto"
)

// ParseTier maps a selector string to a Tier. The historical low_memory and
// high_memory spellings are accepted. An empty string means auto.
func ParseTier(s string) (Tier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return TierAuto, nil
	case "lite", "low_memory":
		return TierLite, nil
	case "full", "high_memory":
		return TierFull, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidTier, s)
	}
}

func (t Tier) valid() bool {
	return t == TierLite || t == TierFull || t == TierAuto
}
