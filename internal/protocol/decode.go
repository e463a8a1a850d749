package protocol

import (
	"bytes"
	"encoding/binary"
)

// Decode parses a Call envelope. Params elided at encode time (empty
// strings) cannot be recovered; Params only holds the non-empty ones.
func Decode(buf []byte) (Envelope, error) {
	if len(buf) < OpCodeSize {
		return Envelope{}, ErrTruncated
	}
	env := Envelope{OpCode: int32(binary.LittleEndian.Uint32(buf[:OpCodeSize]))}

	rest := buf[OpCodeSize:]
	parts := bytes.Split(rest, []byte{RecordSeparator})
	env.Token = string(parts[0])
	if len(parts) == 1 {
		return env, nil
	}
	env.Params = make([]string, 0, len(parts)-1)
	for _, p := range parts[1:] {
		env.Params = append(env.Params, string(p))
	}
	return env, nil
}
