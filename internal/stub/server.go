// Package stub is a stand-in for the remote system behind POST /Call.
//
// It decodes both transport modes, dispatches on op code and renders
// business errors in the same mangled form the real server uses.
package stub

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/danmuck/callwire/internal/auth"
	"github.com/danmuck/callwire/internal/observability"
	"github.com/danmuck/callwire/internal/protocol"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const callPath = "/Call"

type Server struct {
	Name         string
	Addr         string
	RequireToken bool
	// Tokens, when set, validates the token of every non-public op.
	Tokens   auth.Validator
	Appeared time.Time
	Registry *Registry

	router *gin.Engine
}

func New(name, addr string, corsOrigins []string) *Server {
	observability.RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware(name))
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(corsOrigins),
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	return &Server{
		Name:     name,
		Addr:     addr,
		Appeared: time.Now(),
		Registry: NewRegistry(),
		router:   r,
	}
}

func (s *Server) HTTPRouter() *gin.Engine {
	return s.router
}

func (s *Server) RegisterRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.Appeared).String(),
			"service": s.Name,
			"ops":     s.Registry.Ops(),
		})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.router.POST(callPath, s.handleCall)
}

func (s *Server) Serve() error {
	s.RegisterRoutes()
	return s.router.Run(s.Addr)
}

type wrappedBody struct {
	Contents []int `json:"Contents"`
}

func (s *Server) handleCall(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		s.fault(c, NewFault(http.StatusBadRequest, "unreadable body"))
		return
	}

	var payload []byte
	switch c.ContentType() {
	case "application/octet-stream":
		payload = raw
	case "application/json":
		payload, err = unwrapContents(raw)
		if err != nil {
			s.fault(c, NewFault(http.StatusBadRequest, err.Error()))
			return
		}
	default:
		s.fault(c, NewFault(http.StatusUnsupportedMediaType, "unsupported content type"))
		return
	}

	env, err := protocol.Decode(payload)
	if err != nil {
		s.fault(c, NewFault(http.StatusBadRequest, err.Error()))
		return
	}
	observability.SetOpCode(c, env.OpCode)

	e, ok := s.Registry.get(env.OpCode)
	if !ok {
		s.fault(c, NewFault(http.StatusNotFound, fmt.Sprintf("unknown operation %d", env.OpCode)))
		return
	}
	if s.RequireToken && !e.public && !env.HasToken() {
		s.fault(c, NewFault(http.StatusUnauthorized, "token required"))
		return
	}
	if s.Tokens != nil && !e.public {
		if err := s.Tokens.Validate(env.Token); err != nil {
			s.fault(c, NewFault(http.StatusUnauthorized, "invalid token"))
			return
		}
	}

	out, err := e.fn(c.Request.Context(), env)
	if err != nil {
		var f *Fault
		if !errors.As(err, &f) {
			f = NewFault(http.StatusInternalServerError, err.Error())
		}
		log.Warn().
			Str("stub", s.Name).
			Int32("op", env.OpCode).
			Int("status", f.Status).
			Str("message", f.Message).
			Msg("call handler fault")
		s.fault(c, f)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) fault(c *gin.Context, f *Fault) {
	c.Data(f.Status, "text/plain; charset=utf-8", renderFault(c.Request.URL.Path, f))
}

func unwrapContents(raw []byte) ([]byte, error) {
	var body wrappedBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("invalid wrapped body: %w", err)
	}
	out := make([]byte, len(body.Contents))
	for i, v := range body.Contents {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("contents[%d] out of byte range: %d", i, v)
		}
		out[i] = byte(v)
	}
	return out, nil
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:4200"}
	}
	return origins
}
