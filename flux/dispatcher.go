// Package flux is the small runtime targeted by the code minigen generates
// for the built-in actions and store kinds: a priority-ordered action
// dispatcher, a generic state store and a composite closer.
//
// Generated code wires stores to a dispatcher:
//
//	d := flux.NewDispatcher(app.ActionTypes)
//	defer counter.SubscribeReducers(d).Close()
//	d.Dispatch(app.Increment{By: 2})
package flux

import (
	"io"
	"reflect"
	"sort"
	"sync"
)

// DefaultPriority is the priority of reducers that do not set one.
const DefaultPriority = 100

// Middleware sees every dispatched action before subscribers do. It must
// call next to continue the chain and may replace the action.
type Middleware interface {
	Intercept(action any, next func(any) any) any
}

// MiddlewareFunc adapts a function to Middleware.
type MiddlewareFunc func(action any, next func(any) any) any

func (f MiddlewareFunc) Intercept(action any, next func(any) any) any { return f(action, next) }

type subscription struct {
	id       uint64
	priority int
	typ      reflect.Type
	fn       func(any)
}

// Dispatcher delivers actions to subscribers. An action reaches the
// subscribers of every type listed for it in the action type table, in
// table order; subscribers of one type run by ascending priority, then in
// subscription order.
type Dispatcher struct {
	mu         sync.RWMutex
	types      map[reflect.Type][]reflect.Type
	subs       map[reflect.Type][]*subscription
	middleware []Middleware
	nextID     uint64
}

// NewDispatcher creates a dispatcher over a generated action type table.
// A nil table dispatches every action as its own type only.
func NewDispatcher(actionTypes map[reflect.Type][]reflect.Type) *Dispatcher {
	return &Dispatcher{
		types: actionTypes,
		subs:  make(map[reflect.Type][]*subscription),
	}
}

// ActionTypes returns the types an action is dispatched as.
func (d *Dispatcher) ActionTypes(action any) []reflect.Type {
	t := reflect.TypeOf(action)
	d.mu.RLock()
	defer d.mu.RUnlock()
	if types, ok := d.types[t]; ok {
		return types
	}
	return []reflect.Type{t}
}

// Use appends a middleware; the first added is the outermost.
func (d *Dispatcher) Use(m Middleware) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.middleware = append(d.middleware, m)
}

// SubscribeType registers fn for actions dispatched as t. fn receives the
// action converted to t.
func (d *Dispatcher) SubscribeType(t reflect.Type, priority int, fn func(any)) io.Closer {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	s := &subscription{id: d.nextID, priority: priority, typ: t, fn: fn}
	list := append(d.subs[t], s)
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].priority != list[j].priority {
			return list[i].priority < list[j].priority
		}
		return list[i].id < list[j].id
	})
	d.subs[t] = list
	return closerFunc(func() error {
		d.unsubscribe(s)
		return nil
	})
}

func (d *Dispatcher) unsubscribe(s *subscription) {
	d.mu.Lock()
	defer d.mu.Unlock()
	list := d.subs[s.typ]
	for i, cur := range list {
		if cur == s {
			d.subs[s.typ] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// Subscribe registers fn for actions of type A.
func Subscribe[A any](d *Dispatcher, priority int, fn func(A)) io.Closer {
	return d.SubscribeType(reflect.TypeFor[A](), priority, func(v any) { fn(v.(A)) })
}

// Subscribers returns how many subscriptions exist for t.
func (d *Dispatcher) Subscribers(t reflect.Type) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.subs[t])
}

// Dispatch runs the middleware chain and then the subscribers, returning
// the action as it left the chain.
func (d *Dispatcher) Dispatch(action any) any {
	d.mu.RLock()
	chain := append([]Middleware(nil), d.middleware...)
	d.mu.RUnlock()

	var step func(i int, a any) any
	step = func(i int, a any) any {
		if i == len(chain) {
			d.deliver(a)
			return a
		}
		return chain[i].Intercept(a, func(next any) any { return step(i+1, next) })
	}
	return step(0, action)
}

func (d *Dispatcher) deliver(action any) {
	v := reflect.ValueOf(action)
	for _, t := range d.ActionTypes(action) {
		d.mu.RLock()
		subs := append([]*subscription(nil), d.subs[t]...)
		d.mu.RUnlock()
		if len(subs) == 0 {
			continue
		}
		as, ok := convert(v, t)
		if !ok {
			continue
		}
		for _, s := range subs {
			s.fn(as)
		}
	}
}

// convert views v as t: the value itself, the interface it implements, or
// the embedded field of type t found by a breadth-first search.
func convert(v reflect.Value, t reflect.Type) (any, bool) {
	if !v.IsValid() {
		return nil, false
	}
	if v.Type() == t {
		return v.Interface(), true
	}
	if t.Kind() == reflect.Interface && v.Type().Implements(t) {
		return v.Interface(), true
	}

	queue := []reflect.Value{v}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for cur.Kind() == reflect.Pointer {
			if cur.IsNil() {
				break
			}
			cur = cur.Elem()
		}
		if cur.Kind() != reflect.Struct {
			continue
		}
		for i := 0; i < cur.NumField(); i++ {
			f := cur.Type().Field(i)
			if !f.Anonymous || !f.IsExported() {
				continue
			}
			fv := cur.Field(i)
			if fv.Type() == t {
				return fv.Interface(), true
			}
			queue = append(queue, fv)
		}
	}
	return nil, false
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
