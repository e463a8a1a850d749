package stub

import (
	"context"
	"sort"
	"sync"

	"github.com/danmuck/callwire/internal/protocol"
)

// HandlerFunc serves one op code. A *Fault error is rendered the way the
// remote system renders business errors.
type HandlerFunc func(ctx context.Context, env protocol.Envelope) (any, error)

type entry struct {
	fn     HandlerFunc
	public bool
}

// Registry stores handlers by op code.
type Registry struct {
	repo map[int32]entry
	mu   sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{repo: make(map[int32]entry)}
}

// Handle registers fn for op; calls must carry a token when the server
// requires one.
func (r *Registry) Handle(op int32, fn HandlerFunc) {
	r.set(op, entry{fn: fn})
}

// HandlePublic registers fn for op and accepts the "-" token, e.g. login.
func (r *Registry) HandlePublic(op int32, fn HandlerFunc) {
	r.set(op, entry{fn: fn, public: true})
}

func (r *Registry) set(op int32, e entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.repo[op] = e
}

func (r *Registry) get(op int32) (entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.repo[op]
	return e, ok
}

// Ops returns the registered op codes in ascending order.
func (r *Registry) Ops() []int32 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]int32, 0, len(r.repo))
	for op := range r.repo {
		out = append(out, op)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
