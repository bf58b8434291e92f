// Copyright (c) Facebook, Inc. and its affiliates. All Rights Reserved

package pv

import "github.com/holiman/uint256"

// Store is word-oriented backing storage, generic over the address
// type an Addressing scheme produces.  Addresses that were never
// written read as zero.  A write must be visible to every subsequent
// read; durability and transaction boundaries are the store's problem,
// not the vector's.
//
// Stores are not internally locked.  Concurrent reads are safe on the
// in-memory implementations here, concurrent writes are not.
type Store[A comparable] interface {
	ReadWord(addr A) uint256.Int
	WriteWord(addr A, w uint256.Int)
}

// MemStore is a map backed Store.  Writing a zero word deletes the
// entry, so reclaimed words actually release memory.
type MemStore[A comparable] struct {
	words map[A]uint256.Int
}

var _ Store[uint256.Int] = (*MemStore[uint256.Int])(nil)

func NewMemStore[A comparable]() *MemStore[A] {
	return &MemStore[A]{words: make(map[A]uint256.Int)}
}

func (m *MemStore[A]) ReadWord(addr A) uint256.Int {
	return m.words[addr]
}

func (m *MemStore[A]) WriteWord(addr A, w uint256.Int) {
	if w.IsZero() {
		delete(m.words, addr)
		return
	}
	m.words[addr] = w
}

// WordsInUse reports how many nonzero words the store holds.
func (m *MemStore[A]) WordsInUse() int {
	return len(m.words)
}
