package stub

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Fault is a business error returned by a handler.
type Fault struct {
	Status  int
	Message string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("stub: fault %d: %s", f.Status, f.Message)
}

func NewFault(status int, message string) *Fault {
	return &Fault{Status: status, Message: message}
}

type faultBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// renderFault reproduces the remote system's error text: the JSON object
// is preceded by a status line and followed by exactly one stray character.
func renderFault(path string, f *Fault) []byte {
	payload, _ := json.Marshal(faultBody{Success: false, Message: f.Message})
	text := fmt.Sprintf("Http failure response for %s: %d %s %s\"",
		path, f.Status, http.StatusText(f.Status), payload)
	return []byte(text)
}
