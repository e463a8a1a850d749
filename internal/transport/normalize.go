package transport

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/danmuck/callwire/internal/protocol/salvage"
)

// Result is the success outcome of one Call. Body is the business-level
// JSON document, never a transport envelope.
type Result struct {
	Status int
	Body   json.RawMessage
}

// Decode unmarshals the business payload into v.
func (r *Result) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("transport: decode result: %w", err)
	}
	return nil
}

// success canonicalizes a 2xx body. A JSON string document is the
// server double-encoding its payload; its content is parsed again.
// An empty body is the JSON null document.
func success(status int, raw []byte) (*Result, error) {
	doc := bytes.TrimSpace(raw)
	if len(doc) == 0 {
		return &Result{Status: status, Body: json.RawMessage("null")}, nil
	}
	if !json.Valid(doc) {
		return nil, failure(status, string(raw), errors.New("invalid JSON document"))
	}
	if doc[0] == '"' {
		var inner string
		if err := json.Unmarshal(doc, &inner); err != nil {
			return nil, failure(status, string(raw), err)
		}
		doc = bytes.TrimSpace([]byte(inner))
		if !json.Valid(doc) {
			return nil, failure(status, inner, errors.New("invalid JSON inside string document"))
		}
	}
	body := make(json.RawMessage, len(doc))
	copy(body, doc)
	return &Result{Status: status, Body: body}, nil
}

// failure builds the error outcome. Status 0 means no response; cause is
// the underlying transport or parse error, if any.
func failure(status int, text string, cause error) *CallError {
	if status == 0 || isEmptyBody(text) {
		return &CallError{
			Kind:   KindNetworkUnavailable,
			Status: status,
			Body:   UnavailableMessage,
			Err:    cause,
		}
	}
	if status >= 200 && status <= 299 {
		return &CallError{Kind: KindMalformedPayload, Status: status, Body: text, Err: cause}
	}
	recovered, err := salvage.RecoverEmbeddedJSON(text)
	if err != nil {
		return &CallError{Kind: KindMalformedPayload, Status: status, Body: text, Err: err}
	}
	return &CallError{Kind: KindServerBusiness, Status: status, Body: recovered, Err: cause}
}

// isEmptyBody reports whether text carries nothing: blank, or a JSON object
// with no members once whitespace is removed.
func isEmptyBody(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return true
	}
	if trimmed[0] != '{' {
		return false
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, []byte(trimmed)); err != nil {
		return false
	}
	return compact.String() == "{}"
}
