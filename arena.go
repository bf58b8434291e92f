// Copyright (c) Facebook, Inc. and its affiliates. All Rights Reserved

package pv

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"github.com/holiman/uint256"
)

const (
	// DefaultArenaSpan is the per-vector region size, in words, when
	// no explicit span is configured.  One length word plus up to
	// span-1 data words.
	DefaultArenaSpan = 1 << 20

	arenaPageBits  = 12
	arenaPageWords = 1 << arenaPageBits
)

// Arena is an in-memory word store addressed by plain integer offsets.
// Each BaseID is handed the next free fixed-size region by an explicit
// registry, so addressing is collision free by construction rather
// than by hashing.  Arena implements both Store[uint64] and
// Addressing[uint64]; pass the same value for both when constructing a
// Vector.
//
// Backing memory is allocated in pages on first write, and a bitset
// tracks which words hold nonzero data so reclamation is observable.
// Not safe for concurrent mutation.
type Arena struct {
	span    uint64
	regions map[BaseID]uint64
	next    uint64
	pages   map[uint64]*[arenaPageWords]uint256.Int
	dirty   *bitset.BitSet
}

var (
	_ Store[uint64]      = (*Arena)(nil)
	_ Addressing[uint64] = (*Arena)(nil)
)

// NewArena builds an empty arena with the default region span.
func NewArena() *Arena {
	return NewArenaWithSpan(DefaultArenaSpan)
}

// NewArenaWithSpan builds an empty arena whose regions hold span
// words each.  Vectors longer than span-1 data words overflow into the
// neighboring region; pick a span no smaller than the longest vector
// you intend to hold, plus one.
func NewArenaWithSpan(span uint64) *Arena {
	if span < 2 {
		panic(fmt.Sprintf("arena span %d too small to hold a length word and a data word", span))
	}
	return &Arena{
		span:    span,
		regions: make(map[BaseID]uint64),
		pages:   make(map[uint64]*[arenaPageWords]uint256.Int),
		dirty:   bitset.New(arenaPageWords),
	}
}

// region hands base its registered region, registering the next free
// one on first sight.
func (a *Arena) region(base BaseID) uint64 {
	r, ok := a.regions[base]
	if !ok {
		r = a.next
		a.next++
		a.regions[base] = r
	}
	return r
}

func (a *Arena) LengthAddress(base BaseID) uint64 {
	return a.region(base) * a.span
}

func (a *Arena) DataAddress(base BaseID) uint64 {
	return a.region(base)*a.span + 1
}

func (a *Arena) Offset(data uint64, word uint64) uint64 {
	return data + word
}

func (a *Arena) ReadWord(addr uint64) uint256.Int {
	page := a.pages[addr>>arenaPageBits]
	if page == nil {
		return uint256.Int{}
	}
	return page[addr&(arenaPageWords-1)]
}

func (a *Arena) WriteWord(addr uint64, w uint256.Int) {
	page := a.pages[addr>>arenaPageBits]
	if page == nil {
		if w.IsZero() {
			return
		}
		page = new([arenaPageWords]uint256.Int)
		a.pages[addr>>arenaPageBits] = page
	}
	page[addr&(arenaPageWords-1)] = w
	a.dirty.SetTo(uint(addr), !w.IsZero())
}

// WordsInUse reports how many words currently hold nonzero data.
func (a *Arena) WordsInUse() uint {
	return a.dirty.Count()
}

// Regions reports how many BaseIDs have been registered.
func (a *Arena) Regions() int {
	return len(a.regions)
}
