// Package storage is the server-side stand-in for browser local storage:
// string values under string keys, partitioned by a namespace (one per
// visitor). Writers are not coordinated; the last write wins.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrEmptyNamespace is returned when a call omits the namespace.
var ErrEmptyNamespace = errors.New("storage: empty namespace")

// Storage is a namespaced key/value store.
type Storage interface {
	// GetItem returns the stored value and whether the key exists.
	GetItem(ctx context.Context, ns, key string) (string, bool, error)
	SetItem(ctx context.Context, ns, key, value string) error
	RemoveItem(ctx context.Context, ns, key string) error
	// Clear drops every key in ns.
	Clear(ctx context.Context, ns string) error
}

func checkNS(ns string) error {
	if ns == "" {
		return ErrEmptyNamespace
	}
	return nil
}

// Memory keeps everything in process. The zero value is ready to use.
type Memory struct {
	mu    sync.RWMutex
	items map[string]map[string]string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory { return &Memory{} }

var _ Storage = (*Memory)(nil)

func (m *Memory) GetItem(_ context.Context, ns, key string) (string, bool, error) {
	if err := checkNS(ns); err != nil {
		return "", false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[ns][key]
	return v, ok, nil
}

func (m *Memory) SetItem(_ context.Context, ns, key, value string) error {
	if err := checkNS(ns); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.items == nil {
		m.items = make(map[string]map[string]string)
	}
	bucket, ok := m.items[ns]
	if !ok {
		bucket = make(map[string]string)
		m.items[ns] = bucket
	}
	bucket[key] = value
	return nil
}

func (m *Memory) RemoveItem(_ context.Context, ns, key string) error {
	if err := checkNS(ns); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items[ns], key)
	return nil
}

func (m *Memory) Clear(_ context.Context, ns string) error {
	if err := checkNS(ns); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, ns)
	return nil
}

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendNeo4j  = "neo4j"
)

// Options selects and configures a backend for Open.
type Options struct {
	Backend    string
	SQLitePath string
	Neo4jURL   string
	Neo4jUser  string
	Neo4jPass  string
}

// Open builds the configured backend. The returned close func releases its
// connections and is never nil.
func Open(ctx context.Context, opts Options) (Storage, func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }
	switch opts.Backend {
	case "", BackendMemory:
		return NewMemory(), noop, nil
	case BackendSQLite:
		s, err := OpenSQLite(ctx, opts.SQLitePath)
		if err != nil {
			return nil, noop, err
		}
		return s, func(context.Context) error { return s.Close() }, nil
	case BackendNeo4j:
		s, err := OpenNeo4j(ctx, opts.Neo4jURL, opts.Neo4jUser, opts.Neo4jPass)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	default:
		return nil, noop, fmt.Errorf("storage: unknown backend %q", opts.Backend)
	}
}
