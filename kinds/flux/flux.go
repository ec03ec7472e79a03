// Package flux provides the built-in generation kinds for the flux runtime:
// "actions" collects the action types of a package into a dispatch table,
// "store" links a store's reducers to a dispatcher.
//
//	//mini:action
//	type Increment struct{ By int }
//
//	//mini:store
//	type Counter struct{ flux.Store[CounterState] }
//
//	//mini:reducer priority=10
//	func (c *Counter) OnIncrement(s CounterState, a Increment) CounterState { ... }
package flux

import (
	"github.com/teranos/minigen/decl"
	"github.com/teranos/minigen/engine"
)

// RuntimePath is the import path of the runtime generated code targets.
const RuntimePath = "github.com/teranos/minigen/flux"

// Annotation names.
const (
	ActionAnnotation  = "action"
	StoreAnnotation   = "store"
	ReducerAnnotation = "reducer"
)

// Kind names.
const (
	ActionsKind = "actions"
	StoreKind   = "store"
)

// DefaultPriority matches the runtime's default reducer priority.
const DefaultPriority = 100

// Actions returns the actions kind: every action type of a package, one
// generated table per package.
func Actions() *engine.Kind {
	return &engine.Kind{
		Name: ActionsKind,
		Roles: []engine.RoleSpec{
			{Name: "action", Annotation: ActionAnnotation, Required: true, Many: true,
				Elements: []decl.ElementKind{decl.ElementType}},
		},
		KeyRule:  engine.KeyRule{Name: engine.KeyPackage},
		Seal:     engine.SealFinal,
		Rules:    []engine.Rule{actionNotGeneric},
		Renderer: engine.RendererFunc(renderActions),
	}
}

// Store returns the store kind: one store type plus its reducers. Reducer
// functions name their store with store=; methods belong to their receiver.
func Store() *engine.Kind {
	return &engine.Kind{
		Name: StoreKind,
		Roles: []engine.RoleSpec{
			{Name: "container", Annotation: StoreAnnotation, Required: true,
				Elements: []decl.ElementKind{decl.ElementType}},
			{Name: "reducer", Annotation: ReducerAnnotation, Required: true, Many: true,
				Elements: []decl.ElementKind{decl.ElementMethod, decl.ElementFunc}, Exported: true},
		},
		KeyRule:             engine.KeyRule{Name: engine.KeyParam, Param: "store"},
		Seal:                engine.SealFinal,
		ForbidSelfReference: true,
		Rules:               []engine.Rule{containerState, reducerOwner, reducerSignature, reducerPriority},
		Renderer:            engine.RendererFunc(renderStore),
	}
}

// Kinds returns both built-in kinds.
func Kinds() []*engine.Kind {
	return []*engine.Kind{Actions(), Store()}
}
