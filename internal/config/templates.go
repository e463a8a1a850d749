package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "client":
		return clientTemplate, nil
	case "stub":
		return stubTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const clientTemplate = `base_url = "http://127.0.0.1:9400"
# wrapped: {"Contents":[...]} as application/json
# raw: envelope bytes as application/octet-stream
mode = "wrapped"
timeout = "30s"
token = ""
# largest accepted response body; 0 disables the limit
max_body_bytes = 8388608
`

const stubTemplate = `name = "callstub"
addr = ":9400"
cors_origins = ["http://localhost:4200"]
require_token = false
`
