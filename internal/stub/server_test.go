package stub

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danmuck/callwire/internal/auth"
	"github.com/danmuck/callwire/internal/protocol"
	"github.com/danmuck/callwire/internal/protocol/salvage"
	"github.com/danmuck/callwire/internal/session"
	"github.com/danmuck/callwire/internal/testutil/testlog"
	"github.com/danmuck/callwire/internal/transport"
	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
)

const (
	opLogin int32 = 1
	opEcho  int32 = 2
)

func newStub(t *testing.T, requireToken bool) (*Server, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	s := New("stub-test", ":0", nil)
	s.RequireToken = requireToken
	s.Registry.HandlePublic(opLogin, Login("admin", "secret", "T-42", "ERP11260"))
	s.Registry.Handle(opEcho, Echo)
	s.RegisterRoutes()
	srv := httptest.NewServer(s.HTTPRouter())
	t.Cleanup(srv.Close)
	return s, srv
}

func newClient(t *testing.T, base string, mode transport.Mode) *transport.Client {
	t.Helper()
	cfg := transport.DefaultConfig()
	cfg.BaseURL = base
	cfg.Mode = mode
	c, err := transport.New(cfg)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

type echoReply struct {
	Success  bool     `json:"success"`
	Op       int32    `json:"op"`
	HasToken bool     `json:"has_token"`
	Params   []string `json:"params"`
}

func TestEchoBothModes(t *testing.T) {
	testlog.Start(t)
	_, srv := newStub(t, false)

	for _, mode := range []transport.Mode{transport.ModeWrapped, transport.ModeRaw} {
		c := newClient(t, srv.URL, mode)
		res, err := c.Call(context.Background(), opEcho, "tok", "entity", "", "röle")
		if err != nil {
			t.Fatalf("%s: call: %v", mode, err)
		}
		var got echoReply
		if err := res.Decode(&got); err != nil {
			t.Fatalf("%s: decode: %v", mode, err)
		}
		want := echoReply{Success: true, Op: opEcho, HasToken: true, Params: []string{"entity", "röle"}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("%s: echo mismatch (-want +got):\n%s", mode, diff)
		}
	}
}

func TestUnknownOpIsRecoveredBusinessError(t *testing.T) {
	testlog.Start(t)
	_, srv := newStub(t, false)
	c := newClient(t, srv.URL, transport.ModeRaw)

	_, err := c.Call(context.Background(), -99, "tok")
	var ce *transport.CallError
	if !errors.As(err, &ce) || !errors.Is(err, transport.ErrServerBusiness) {
		t.Fatalf("expected server business error, got %v", err)
	}
	if ce.Status != http.StatusNotFound {
		t.Fatalf("unexpected status %d", ce.Status)
	}
	if ce.Body != `{"success":false,"message":"unknown operation -99"}` {
		t.Fatalf("unexpected recovered body %q", ce.Body)
	}
}

func TestRequireTokenRejectsSentinel(t *testing.T) {
	testlog.Start(t)
	_, srv := newStub(t, true)
	c := newClient(t, srv.URL, transport.ModeWrapped)

	_, err := c.Call(context.Background(), opEcho, "")
	var ce *transport.CallError
	if !errors.As(err, &ce) || ce.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401 call error, got %v", err)
	}
	biz, err := ce.Business()
	if err != nil {
		t.Fatalf("business: %v", err)
	}
	if biz.Message != "token required" {
		t.Fatalf("unexpected message %q", biz.Message)
	}
}

func TestTokensValidated(t *testing.T) {
	testlog.Start(t)
	s, srv := newStub(t, true)
	s.Tokens = auth.NewTokenSet("T-42")
	c := newClient(t, srv.URL, transport.ModeRaw)

	_, err := c.Call(context.Background(), opEcho, "forged")
	var ce *transport.CallError
	if !errors.As(err, &ce) || ce.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401 for forged token, got %v", err)
	}
	if biz, _ := ce.Business(); biz.Message != "invalid token" {
		t.Fatalf("unexpected message %+v", biz)
	}
	if _, err := c.Call(context.Background(), opEcho, "T-42"); err != nil {
		t.Fatalf("issued token rejected: %v", err)
	}
}

func TestSessionLoginThenCall(t *testing.T) {
	testlog.Start(t)
	_, srv := newStub(t, true)
	sess := session.New(newClient(t, srv.URL, transport.ModeRaw), nil)

	_, err := sess.Login(context.Background(), opLogin, "admin", "nope")
	var ce *transport.CallError
	if !errors.As(err, &ce) {
		t.Fatalf("expected call error for bad login, got %v", err)
	}
	if biz, _ := ce.Business(); biz.Message != "ERP11260" {
		t.Fatalf("unexpected rejection %+v", biz)
	}

	if _, err := sess.Login(context.Background(), opLogin, "admin", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if sess.Token() != "T-42" {
		t.Fatalf("unexpected token %q", sess.Token())
	}

	res, err := sess.Do(context.Background(), opEcho, "x")
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	var got echoReply
	if err := res.Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got.HasToken {
		t.Fatalf("session token was not sent")
	}
}

func TestFaultTextCarriesOneTrailingCharacter(t *testing.T) {
	text := string(renderFault("/Call", NewFault(http.StatusBadRequest, "ERP1")))
	if !strings.HasPrefix(text, "Http failure response for /Call: 400 Bad Request ") {
		t.Fatalf("unexpected prefix %q", text)
	}
	recovered, err := salvage.RecoverEmbeddedJSON(text)
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	if recovered != `{"success":false,"message":"ERP1"}` {
		t.Fatalf("unexpected recovered %q", recovered)
	}
}

func TestCallRejectsBadBodies(t *testing.T) {
	testlog.Start(t)
	s, _ := newStub(t, false)

	cases := []struct {
		name        string
		contentType string
		body        []byte
		status      int
	}{
		{"content type", "text/plain", protocol.Encode(opEcho, "t"), http.StatusUnsupportedMediaType},
		{"byte range", "application/json", []byte(`{"Contents":[2,0,0,0,300]}`), http.StatusBadRequest},
		{"bad json", "application/json", []byte(`{"Contents":`), http.StatusBadRequest},
		{"truncated", "application/octet-stream", []byte{0x02}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/Call", bytes.NewReader(tc.body))
		req.Header.Set("Content-Type", tc.contentType)
		rr := httptest.NewRecorder()
		s.HTTPRouter().ServeHTTP(rr, req)
		if rr.Code != tc.status {
			t.Fatalf("%s: expected %d, got %d body=%s", tc.name, tc.status, rr.Code, rr.Body.String())
		}
		if !strings.Contains(rr.Body.String(), salvage.Marker) {
			t.Fatalf("%s: fault body missing marker: %s", tc.name, rr.Body.String())
		}
	}
}

func TestHandlerErrorBecomes500(t *testing.T) {
	testlog.Start(t)
	s, srv := newStub(t, false)
	s.Registry.Handle(7, func(context.Context, protocol.Envelope) (any, error) {
		return nil, errors.New("db down")
	})
	c := newClient(t, srv.URL, transport.ModeRaw)

	_, err := c.Call(context.Background(), 7, "tok")
	var ce *transport.CallError
	if !errors.As(err, &ce) || ce.Status != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %v", err)
	}
}

func TestRegistryOpsSorted(t *testing.T) {
	r := NewRegistry()
	r.Handle(5, Echo)
	r.HandlePublic(-1, Echo)
	r.Handle(2, Echo)
	if diff := cmp.Diff([]int32{-1, 2, 5}, r.Ops()); diff != "" {
		t.Fatalf("ops mismatch (-want +got):\n%s", diff)
	}
}
