package arbor

// listener is one registered callback of an Emitter.
type listener[T any] struct {
	id uint32
	fn func(T)
}

// Emitter is a list of callbacks notified synchronously by Emit. The zero
// value is ready to use. Callbacks may subscribe or unsubscribe (themselves or
// others) while an Emit is in progress; changes take effect from the next
// Emit.
type Emitter[T any] struct {
	listeners []listener[T]
	nextID    uint32
}

// On registers fn and returns a handle that unregisters it.
func (e *Emitter[T]) On(fn func(T)) Subscription {
	e.nextID++
	e.listeners = append(e.listeners, listener[T]{id: e.nextID, fn: fn})
	return Subscription{id: e.nextID, src: e}
}

// Emit calls every registered callback with v, in registration order.
func (e *Emitter[T]) Emit(v T) {
	ls := e.listeners
	for i := range ls {
		ls[i].fn(v)
	}
}

// Len returns the number of registered callbacks.
func (e *Emitter[T]) Len() int {
	return len(e.listeners)
}

// remove rebuilds the listener slice without id, leaving any slice currently
// being iterated by Emit untouched.
func (e *Emitter[T]) remove(id uint32) {
	for i := range e.listeners {
		if e.listeners[i].id == id {
			ls := make([]listener[T], 0, len(e.listeners)-1)
			ls = append(ls, e.listeners[:i]...)
			e.listeners = append(ls, e.listeners[i+1:]...)
			return
		}
	}
}

func (e *Emitter[T]) clear() {
	e.listeners = nil
}

// subscriptionSource is implemented by every Emitter instantiation.
type subscriptionSource interface {
	remove(id uint32)
}

// Subscription ties a callback to the signal it was registered on. The zero
// value is an inactive subscription; Unsubscribe on it is a no-op.
type Subscription struct {
	id  uint32
	src subscriptionSource
}

// Unsubscribe unregisters the callback. Calling it more than once is safe.
func (s *Subscription) Unsubscribe() {
	if s.src == nil {
		return
	}
	s.src.remove(s.id)
	s.src = nil
}

// Active reports whether the subscription still has a registered callback.
func (s Subscription) Active() bool {
	return s.src != nil
}

// Property is an observable value. Setting a different value notifies
// listeners with the new value.
type Property[T comparable] struct {
	value   T
	changed Emitter[T]
}

// NewProperty returns a property holding v.
func NewProperty[T comparable](v T) *Property[T] {
	return &Property[T]{value: v}
}

// Get returns the current value.
func (p *Property[T]) Get() T {
	return p.value
}

// Set stores v and notifies listeners if it differs from the current value.
func (p *Property[T]) Set(v T) {
	if p.value == v {
		return
	}
	p.value = v
	p.changed.Emit(v)
}

// LazyLink registers fn for future changes only.
func (p *Property[T]) LazyLink(fn func(T)) Subscription {
	return p.changed.On(fn)
}

// Link calls fn with the current value, then registers it for future changes.
func (p *Property[T]) Link(fn func(T)) Subscription {
	fn(p.value)
	return p.changed.On(fn)
}

// Listeners returns the number of linked callbacks.
func (p *Property[T]) Listeners() int {
	return p.changed.Len()
}
