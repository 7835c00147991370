package spider

import "fmt"

// Mode identifies which generator placed the markers.
type Mode int

const (
	ModeCircle Mode = iota
	ModeSpiral
)

// String returns "circle" or "spiral".
func (m Mode) String() string {
	switch m {
	case ModeCircle:
		return "circle"
	case ModeSpiral:
		return "spiral"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(b []byte) error {
	mode, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// ParseMode parses "circle" or "spiral".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "circle":
		return ModeCircle, nil
	case "spiral":
		return ModeSpiral, nil
	default:
		return 0, fmt.Errorf("unknown mode: %q (must be 'circle' or 'spiral')", s)
	}
}

// SelectMode picks the generator for count markers. The boundary is inclusive
// on the spiral side: count == switchover selects the spiral.
func SelectMode(count, switchover int) Mode {
	if count >= switchover {
		return ModeSpiral
	}
	return ModeCircle
}
