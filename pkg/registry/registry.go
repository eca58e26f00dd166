package registry

import (
	"errors"
	"sync"
)

var (
	ErrDup    = errors.New("registry: duplicate object")
	ErrSealed = errors.New("registry: registration closed")
	ErrNil    = errors.New("registry: nil object")
)

type Registry[T any] interface {
	Register(name string, v T) error
	Unregister(name string)
	IsRegistered(name string) bool
	Get(name string) T
	GetAll() map[string]T
}

func NewRegistry[T any]() Registry[T] {
	return &registry[T]{}
}

type registry[T any] struct {
	m sync.Map
}

func (r *registry[T]) Register(name string, v T) error {
	if name == "" || any(v) == nil {
		return nil
	}
	if _, loaded := r.m.LoadOrStore(name, v); loaded {
		return ErrDup
	}

	return nil
}

func (r *registry[T]) Unregister(name string) {
	r.m.Delete(name)
}

func (r *registry[T]) IsRegistered(name string) bool {
	_, ok := r.m.Load(name)
	return ok
}

func (r *registry[T]) Get(name string) (t T) {
	if name == "" {
		return
	}
	v, ok := r.m.Load(name)
	if !ok {
		return
	}
	t, _ = v.(T)
	return
}

func (r *registry[T]) GetAll() map[string]T {
	m := make(map[string]T)
	r.m.Range(func(key, value any) bool {
		m[key.(string)] = value.(T)
		return true
	})
	return m
}
