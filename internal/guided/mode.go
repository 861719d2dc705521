package guided

import (
	"fmt"
	"strings"
)

// Mode selects how the per-pixel slope is solved.
type Mode int

const (
	// ModeDefault resolves to ModeGradient during normalization.
	ModeDefault Mode = iota
	// ModeOriginal is the classic guided filter: a = cov / (var + ε).
	ModeOriginal
	// ModeWeighted scales ε per pixel by an edge-aware weight derived from
	// a small-window variance.
	ModeWeighted
	// ModeGradient adds a logistic edge-sharpening term on top of the
	// weighted solution.
	ModeGradient
)

func (m Mode) String() string {
	switch m {
	case ModeDefault:
		return "default"
	case ModeOriginal:
		return "original"
	case ModeWeighted:
		return "weighted"
	case ModeGradient:
		return "gradient"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode accepts the mode names produced by Mode.String. An empty string
// yields ModeDefault.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return ModeDefault, nil
	case "original":
		return ModeOriginal, nil
	case "weighted":
		return ModeWeighted, nil
	case "gradient":
		return ModeGradient, nil
	default:
		return ModeDefault, configErrorf("mode", "unknown mode %q", s)
	}
}
