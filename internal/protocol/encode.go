package protocol

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Encode builds a Call envelope. It never fails: params containing the
// record separator are written as-is, see ValidateParams.
func Encode(op int32, token string, params ...string) []byte {
	return AppendEnvelope(nil, op, token, params...)
}

// AppendEnvelope appends the envelope for op/token/params to dst.
func AppendEnvelope(dst []byte, op int32, token string, params ...string) []byte {
	if token == "" {
		token = NoTokenSentinel
	}
	dst = growFor(dst, token, params)
	dst = binary.LittleEndian.AppendUint32(dst, uint32(op))
	dst = append(dst, token...)
	for _, p := range params {
		if p == "" {
			continue
		}
		dst = append(dst, RecordSeparator)
		dst = append(dst, p...)
	}
	return dst
}

// EncodeChecked validates token and params before encoding.
func EncodeChecked(op int32, token string, params ...string) ([]byte, error) {
	if strings.IndexByte(token, RecordSeparator) >= 0 {
		return nil, ErrDelimiterInToken
	}
	if err := ValidateParams(params...); err != nil {
		return nil, err
	}
	return Encode(op, token, params...), nil
}

// ValidateParams rejects parameters that would split into extra positional
// arguments on the server side.
func ValidateParams(params ...string) error {
	for i, p := range params {
		if strings.IndexByte(p, RecordSeparator) >= 0 {
			return fmt.Errorf("param[%d]: %w", i, ErrDelimiterInParam)
		}
	}
	return nil
}

func growFor(dst []byte, token string, params []string) []byte {
	n := OpCodeSize + len(token)
	for _, p := range params {
		if p != "" {
			n += 1 + len(p)
		}
	}
	if cap(dst)-len(dst) >= n {
		return dst
	}
	out := make([]byte, len(dst), len(dst)+n)
	copy(out, dst)
	return out
}
