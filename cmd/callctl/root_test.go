package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/callwire/internal/testutil/testlog"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestEncodeDecodeCommands(t *testing.T) {
	testlog.Start(t)

	out, err := run(t, "encode", "--op", "258", "--", "a", "", "b")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	hexOut := strings.TrimSpace(out)
	if hexOut != "020100002d1e611e62" {
		t.Fatalf("unexpected hex %q", hexOut)
	}

	out, err = run(t, "decode", hexOut)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, want := range []string{"op: 258", `token: "-"`, `param[0]: "a"`, `param[1]: "b"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("decode output missing %q:\n%s", want, out)
		}
	}
}

func TestSalvageCommand(t *testing.T) {
	out, err := run(t, "salvage", `oops {"success":false,"message":"ERP11260"}X`)
	if err != nil {
		t.Fatalf("salvage: %v", err)
	}
	if strings.TrimSpace(out) != `{"success":false,"message":"ERP11260"}` {
		t.Fatalf("unexpected output %q", out)
	}
	if _, err := run(t, "salvage", "no marker"); err == nil {
		t.Fatalf("expected marker error")
	}
}

func TestCallCommandAgainstServer(t *testing.T) {
	testlog.Start(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/Call" || r.Header.Get("Content-Type") != "application/octet-stream" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"total":3}`))
	}))
	defer srv.Close()

	out, err := run(t, "call", "--base-url", srv.URL, "--mode", "raw", "--op", "12", "--", "entities")
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if strings.TrimSpace(out) != `{"success":true,"total":3}` {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestConfigInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.toml")
	if _, err := run(t, "config", "init", "--kind", "client", "--output", path); err != nil {
		t.Fatalf("config init: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read template: %v", err)
	}
	if !strings.Contains(string(data), "base_url") {
		t.Fatalf("unexpected template %s", data)
	}
}
