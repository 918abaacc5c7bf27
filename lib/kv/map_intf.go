package kv

import (
	"errors"
	"io"

	"github.com/benz9527/xrbtree/lib/infra"
)

var (
	ErrTreeMapKeyNotFound = errors.New("[kv] tree map key not found")
	ErrTreeMapKeyExists   = errors.New("[kv] tree map key exists")
)

type SafeStoreKeyFilterFunc[K infra.OrderedKey] func(key K) bool

func defaultAllKeysFilter[K infra.OrderedKey](key K) bool {
	return true
}

type Closable interface {
	io.Closer
}

// OrderedMap keeps its entries sorted by key, it is not thread safe.
type OrderedMap[K infra.OrderedKey, V any] interface {
	Len() int64
	// Put inserts or replaces the value of key.
	Put(key K, val V) error
	// PutIfAbsent fails with ErrTreeMapKeyExists if key is present.
	PutIfAbsent(key K, val V) error
	Get(key K) (V, bool)
	Remove(key K) (V, error)
	Min() (K, V, bool)
	Max() (K, V, bool)
	// Foreach visits the entries in key order, reversed if desc is set,
	// until action returns false.
	Foreach(action func(idx int64, key K, val V) bool, desc ...bool)
	Keys() []K
	Values() []V
	// ClearStep removes the first entry in key order and reports true once
	// the map is empty. Every other method stays usable between steps.
	ClearStep(fn func(key K, val V)) bool
	Clear()
	Validate() error
}

type OrderedSet[K infra.OrderedKey] interface {
	Len() int64
	Add(key K) bool
	Contains(key K) bool
	Remove(key K) bool
	Foreach(action func(idx int64, key K) bool, desc ...bool)
	Keys() []K
	Clear()
}

type ThreadSafeStorer[K infra.OrderedKey, V any] interface {
	Purge() error
	AddOrUpdate(key K, obj V) error
	Replace(items map[K]V)
	Delete(key K) (V, error)
	Get(key K) (item V, exists bool)
	ListKeys(filters ...SafeStoreKeyFilterFunc[K]) []K
	ListValues(keys ...K) (items []V)
}
