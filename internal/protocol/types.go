package protocol

const (
	// OpCodeSize is the fixed little-endian op code prefix.
	OpCodeSize = 4
	// RecordSeparator precedes every non-empty parameter.
	RecordSeparator byte = 0x1E
	// NoTokenSentinel is sent in place of an empty access token.
	NoTokenSentinel = "-"
)

// Envelope is the decoded form of one Call request body.
type Envelope struct {
	OpCode int32
	Token  string
	Params []string
}

// HasToken reports whether the envelope carries a real access token.
func (e Envelope) HasToken() bool {
	return e.Token != "" && e.Token != NoTokenSentinel
}

// Bytes re-encodes the envelope.
func (e Envelope) Bytes() []byte {
	return Encode(e.OpCode, e.Token, e.Params...)
}
