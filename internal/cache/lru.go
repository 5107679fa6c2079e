// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package cache

// lruNode is a node in a doubly-linked LRU list.
// The node stores its key so eviction can delete it from the index.
type lruNode[K comparable] struct {
	key  K
	prev *lruNode[K]
	next *lruNode[K]
}

// LRU tracks the access order of cache keys.
//
// The head of the list is the most recently used key, the tail the least
// recently used one. LRU does not own any values: the cache it serves keeps
// its entries in a map of its own and must call Access on every store and
// Remove on every delete, so that Len always equals the number of entries
// the cache holds.
//
// LRU is not safe for concurrent use.
type LRU[K comparable] struct {
	index map[K]*lruNode[K]
	head  *lruNode[K]
	tail  *lruNode[K]
}

// NewLRU creates an empty eviction map.
func NewLRU[K comparable]() *LRU[K] {
	return &LRU[K]{index: make(map[K]*lruNode[K])}
}

// Len returns the number of tracked keys.
func (l *LRU[K]) Len() int {
	return len(l.index)
}

// Access marks key as most recently used, inserting it if new.
func (l *LRU[K]) Access(key K) {
	if node, ok := l.index[key]; ok {
		if node == l.head {
			return
		}
		l.unlink(node)
		l.pushFront(node)
		return
	}
	node := &lruNode[K]{key: key}
	l.index[key] = node
	l.pushFront(node)
}

// LeastUsed returns the least recently used key without removing it.
// Returns the zero value and false if nothing is tracked.
func (l *LRU[K]) LeastUsed() (K, bool) {
	if l.tail == nil {
		var zero K
		return zero, false
	}
	return l.tail.key, true
}

// Contains reports whether key is tracked.
func (l *LRU[K]) Contains(key K) bool {
	_, ok := l.index[key]
	return ok
}

// Remove stops tracking key. Removing an untracked key is a no-op.
func (l *LRU[K]) Remove(key K) {
	node, ok := l.index[key]
	if !ok {
		return
	}
	delete(l.index, key)
	l.unlink(node)
}

// Clear stops tracking all keys.
func (l *LRU[K]) Clear() {
	l.index = make(map[K]*lruNode[K])
	l.head = nil
	l.tail = nil
}

// pushFront links a detached node at the head.
func (l *LRU[K]) pushFront(node *lruNode[K]) {
	node.prev = nil
	node.next = l.head
	if l.head != nil {
		l.head.prev = node
	}
	l.head = node
	if l.tail == nil {
		l.tail = node
	}
}

// unlink detaches node from the list and clears its pointers.
func (l *LRU[K]) unlink(node *lruNode[K]) {
	if node.prev != nil {
		node.prev.next = node.next
	} else {
		l.head = node.next
	}

	if node.next != nil {
		node.next.prev = node.prev
	} else {
		l.tail = node.prev
	}

	node.prev = nil
	node.next = nil
}
