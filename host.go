package questicle

// HostAPI is the capability boundary between scripts and the embedding
// application. Scripts reach it through the host, on and emit built-ins;
// embedders supply their own implementation to expose real operations.
type HostAPI interface {
	// Call performs a host operation with an arbitrary payload.
	Call(op string, payload Value) (Value, error)
	// On registers a handler for a named event.
	On(name string, fn *Function)
	// Emit fires an event, invoking its handlers in registration order.
	Emit(name string, data Value, env *Env) (Value, error)
}

// Host is the default in-process host: Call echoes its request back, and
// events are dispatched synchronously to native handlers.
type Host struct {
	events map[string][]*Function
}

// NewHost creates an empty default host.
func NewHost() *Host {
	return &Host{events: make(map[string][]*Function)}
}

// Call echoes the operation so scripts can be exercised without a real
// embedder behind them.
func (h *Host) Call(op string, payload Value) (Value, error) {
	return MapOf(map[string]Value{
		"ok":      Bool(true),
		"op":      Str(op),
		"payload": payload,
	}), nil
}

// On appends fn to the handler list for name. Handlers are never
// deduplicated; registering twice fires twice.
func (h *Host) On(name string, fn *Function) {
	h.events[name] = append(h.events[name], fn)
}

// Emit invokes the native handlers registered for name, in registration
// order, passing data as the sole argument. The first handler error
// stops dispatch and propagates. Script-defined handlers are recorded
// but not invoked here; an embedder that wants them runs them itself.
func (h *Host) Emit(name string, data Value, env *Env) (Value, error) {
	for _, fn := range h.events[name] {
		if fn.Native == nil {
			continue
		}
		if _, err := fn.Native([]Value{data}, env); err != nil {
			return Null, err
		}
	}
	return Null, nil
}
