package transport

import (
	"fmt"
	"strings"
)

type Mode int

const (
	// ModeWrapped sends {"Contents":[...]} with a JSON content type.
	ModeWrapped Mode = iota
	// ModeRaw sends the envelope bytes as application/octet-stream.
	ModeRaw
)

const (
	contentTypeJSON  = "application/json"
	contentTypeOctet = "application/octet-stream"
)

func (m Mode) String() string {
	switch m {
	case ModeWrapped:
		return "wrapped"
	case ModeRaw:
		return "raw"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

func (m Mode) contentType() string {
	if m == ModeRaw {
		return contentTypeOctet
	}
	return contentTypeJSON
}

// ParseMode accepts the config spellings of each mode.
func ParseMode(raw string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "wrapped", "json":
		return ModeWrapped, nil
	case "raw", "octet", "octet-stream":
		return ModeRaw, nil
	default:
		return 0, fmt.Errorf("transport: unknown mode %q", raw)
	}
}
