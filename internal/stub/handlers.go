package stub

import (
	"context"
	"net/http"

	"github.com/danmuck/callwire/internal/protocol"
)

// Echo answers with the decoded envelope.
func Echo(_ context.Context, env protocol.Envelope) (any, error) {
	params := env.Params
	if params == nil {
		params = []string{}
	}
	return map[string]any{
		"success":   true,
		"op":        env.OpCode,
		"has_token": env.HasToken(),
		"params":    params,
	}, nil
}

// Login accepts user/password and hands out token. Any other pair is
// rejected with the given business message.
func Login(user, password, token, rejectMessage string) HandlerFunc {
	return func(_ context.Context, env protocol.Envelope) (any, error) {
		if len(env.Params) != 2 || env.Params[0] != user || env.Params[1] != password {
			return nil, NewFault(http.StatusUnauthorized, rejectMessage)
		}
		return map[string]any{"success": true, "token": token}, nil
	}
}
