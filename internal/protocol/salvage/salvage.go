// Package salvage recovers the JSON payload the remote system embeds in its
// error bodies.
//
// The server emits error text that wraps the intended JSON object in
// unrelated content and appends exactly one extra character after it.
package salvage

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// Marker opens the JSON object the server meant to send.
const Marker = `{"success":`

var ErrMarkerNotFound = errors.New("salvage: success marker not found")

// RecoverEmbeddedJSON returns the JSON object starting at Marker.
//
// Exactly one trailing character is always dropped, even when the text
// from Marker on would already parse. Absence of Marker yields
// ErrMarkerNotFound; callers decide what to do with the raw text.
func RecoverEmbeddedJSON(text string) (string, error) {
	i := strings.Index(text, Marker)
	if i < 0 {
		return "", ErrMarkerNotFound
	}
	candidate := text[i:]
	_, size := utf8.DecodeLastRuneInString(candidate)
	return candidate[:len(candidate)-size], nil
}
