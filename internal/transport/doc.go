// Package transport posts Call envelopes to the remote system and
// normalizes every response into either a Result or a *CallError.
//
// Two body modes are supported against the same <base>/Call endpoint:
// the wrapped form {"Contents":[byte,...]} sent as JSON, and the raw
// envelope sent as application/octet-stream.
package transport
