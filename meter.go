// Copyright (c) Facebook, Inc. and its affiliates. All Rights Reserved

package pv

import "github.com/holiman/uint256"

// CostModel weights the three storage events a metered store can
// observe.  ReclaimCredit is earned whenever a write zeroes a
// previously nonzero word, mirroring stores that hand resources back
// on reclamation.  The meter sees raw word traffic, so that includes
// the length word going to zero on the pop that empties a vector, not
// just vacated data words.
type CostModel struct {
	WordRead      uint64
	WordWrite     uint64
	ReclaimCredit uint64
}

// DefaultCostModel approximates the relative weights persistent word
// stores charge: writes dominate reads by more than an order of
// magnitude, and reclaiming a word earns most of a write back.
var DefaultCostModel = CostModel{
	WordRead:      200,
	WordWrite:     5000,
	ReclaimCredit: 4800,
}

// Meter wraps a Store and counts word traffic under a CostModel.  It
// adds no caching and changes no visible behavior; the comparison
// harness and the bench command use it to sample per-operation cost.
type Meter[A comparable] struct {
	inner Store[A]
	model CostModel

	reads    uint64
	writes   uint64
	reclaims uint64
}

var _ Store[uint64] = (*Meter[uint64])(nil)

// NewMeter wraps store under model.
func NewMeter[A comparable](store Store[A], model CostModel) *Meter[A] {
	return &Meter[A]{inner: store, model: model}
}

func (m *Meter[A]) ReadWord(addr A) uint256.Int {
	m.reads++
	return m.inner.ReadWord(addr)
}

func (m *Meter[A]) WriteWord(addr A, w uint256.Int) {
	m.writes++
	if w.IsZero() {
		// An uncounted peek: only a transition from nonzero to
		// zero earns the reclaim credit.
		if prev := m.inner.ReadWord(addr); !prev.IsZero() {
			m.reclaims++
		}
	}
	m.inner.WriteWord(addr, w)
}

// Counts reports the raw event tallies since the last Reset.
func (m *Meter[A]) Counts() (reads, writes, reclaims uint64) {
	return m.reads, m.writes, m.reclaims
}

// Cost folds the tallies through the model.  The reclaim credit never
// drives the total below zero.
func (m *Meter[A]) Cost() uint64 {
	gross := m.reads*m.model.WordRead + m.writes*m.model.WordWrite
	credit := m.reclaims * m.model.ReclaimCredit
	if credit > gross {
		credit = gross
	}
	return gross - credit
}

// Reset clears the tallies.
func (m *Meter[A]) Reset() {
	m.reads, m.writes, m.reclaims = 0, 0, 0
}
