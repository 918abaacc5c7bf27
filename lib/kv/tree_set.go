package kv

import (
	"github.com/benz9527/xrbtree/lib/infra"
)

type treeSet[K infra.OrderedKey] struct {
	m *treeMap[K, struct{}]
}

var _ OrderedSet[int] = (*treeSet[int])(nil)

// NewTreeSet accepts the same options as NewTreeMap.
func NewTreeSet[K infra.OrderedKey](opts ...TreeMapOpt) OrderedSet[K] {
	return &treeSet[K]{
		m: newTreeMap[K, struct{}](opts...),
	}
}

func (s *treeSet[K]) Len() int64 {
	return s.m.Len()
}

// Add reports false if key is present or the set is full.
func (s *treeSet[K]) Add(key K) bool {
	return s.m.PutIfAbsent(key, struct{}{}) == nil
}

func (s *treeSet[K]) Contains(key K) bool {
	_, ok := s.m.Get(key)
	return ok
}

func (s *treeSet[K]) Remove(key K) bool {
	_, err := s.m.Remove(key)
	return err == nil
}

func (s *treeSet[K]) Foreach(action func(idx int64, key K) bool, desc ...bool) {
	s.m.Foreach(func(idx int64, key K, _ struct{}) bool {
		return action(idx, key)
	}, desc...)
}

func (s *treeSet[K]) Keys() []K {
	return s.m.Keys()
}

func (s *treeSet[K]) Clear() {
	s.m.Clear()
}
