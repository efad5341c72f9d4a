// Package registry implements Component C: the debuggee-local map of
// logical function name to callable and signature, used by the proxy to
// resolve "replace" actions into actual callables.
package registry

import "sync"

// Callable is the debuggee-local function a registered name resolves to.
// It receives the original positional/keyword-style arguments already
// decoded by the caller and returns a result or an error.
type Callable func(args []any, kwargs map[string]any) (any, error)

// Registration is the advisory metadata recorded for a registered name:
// consulted for replacement validation and for display, never for
// dispatch (dispatch goes through Lookup).
type Registration struct {
	Name      string
	Signature string
	Metadata  map[string]string
}

// Registry is a thread-safe name -> callable map. It is purely
// debuggee-local: the server only ever sees names and signatures, never
// callables.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]Callable
	regs  map[string]Registration
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		funcs: make(map[string]Callable),
		regs:  make(map[string]Registration),
	}
}

// Register associates name with fn and an optional signature string.
// Re-registering a name overwrites both the callable and its metadata.
func (r *Registry) Register(name string, fn Callable, signature string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[name] = fn
	r.regs[name] = Registration{Name: name, Signature: signature}
}

// Lookup resolves name to its callable, or reports ok=false if name was
// never registered.
func (r *Registry) Lookup(name string) (fn Callable, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok = r.funcs[name]
	return fn, ok
}

// SignatureOf returns the signature string recorded for name, if any.
func (r *Registry) SignatureOf(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.regs[name]
	return reg.Signature, ok
}

// Metadata returns the advisory metadata recorded for name.
func (r *Registry) Metadata(name string) (map[string]string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.regs[name]
	return reg.Metadata, ok
}

// UpdateMetadata merges kv into the metadata recorded for an already
// registered name. It is a no-op if name is unknown.
func (r *Registry) UpdateMetadata(name string, kv map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.regs[name]
	if !ok {
		return
	}
	if reg.Metadata == nil {
		reg.Metadata = make(map[string]string, len(kv))
	}
	for k, v := range kv {
		reg.Metadata[k] = v
	}
	r.regs[name] = reg
}

// List returns every registered name and its signature.
func (r *Registry) List() []Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Registration, 0, len(r.regs))
	for _, reg := range r.regs {
		out = append(out, reg)
	}
	return out
}

// SignaturesMatch reports whether name and candidate are both registered
// with identical signature strings — the validation a
// replacement must pass before it is honored.
func (r *Registry) SignaturesMatch(name, candidate string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, aok := r.regs[name]
	b, bok := r.regs[candidate]
	if !aok || !bok {
		return false
	}
	return a.Signature == b.Signature
}

// Clear removes every registration.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs = make(map[string]Callable)
	r.regs = make(map[string]Registration)
}
