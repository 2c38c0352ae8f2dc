package schema

import (
	"fmt"
	"reflect"
	"sync"
)

// entry is the lazily built schema of one record type.
// The build outcome, including a failure, is computed once and cached.
type entry struct {
	once   sync.Once
	build  func() (any, error)
	schema any
	err    error
}

func (e *entry) get() (any, error) {
	e.once.Do(func() {
		e.schema, e.err = e.build()
	})
	return e.schema, e.err
}

var registry sync.Map // reflect.Type -> *entry

// Register records how to build the schema of T.
// The builder runs the first time For[T] is called, not at registration.
//
// Returns ErrAlreadyRegistered if T already has a schema, including one
// derived implicitly by an earlier For[T] call.
func Register[T any](build func() (*Schema[T], error)) error {
	e := &entry{build: func() (any, error) { return build() }}
	if _, loaded := registry.LoadOrStore(reflect.TypeFor[T](), e); loaded {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, reflect.TypeFor[T]())
	}
	return nil
}

// MustRegister is like Register but panics on error.
func MustRegister[T any](build func() (*Schema[T], error)) {
	if err := Register(build); err != nil {
		panic(err)
	}
}

// For returns the schema of T.
//
// A registered builder is used when present; otherwise the schema is
// derived from T's struct tags with FromStruct. Either way the result is
// built once per type and shared by all callers.
func For[T any]() (*Schema[T], error) {
	rt := reflect.TypeFor[T]()
	v, ok := registry.Load(rt)
	if !ok {
		v, _ = registry.LoadOrStore(rt, &entry{build: func() (any, error) { return FromStruct[T]() }})
	}

	s, err := v.(*entry).get()
	if err != nil {
		return nil, err
	}
	return s.(*Schema[T]), nil
}

// MustFor is like For but panics on error.
func MustFor[T any]() *Schema[T] {
	s, err := For[T]()
	if err != nil {
		panic(err)
	}
	return s
}
