// Copyright (c) Facebook, Inc. and its affiliates. All Rights Reserved

package pv

import (
	"encoding/binary"

	"github.com/holiman/uint256"
	"github.com/zeebo/xxh3"
	"golang.org/x/crypto/sha3"
)

// BaseID is the opaque key selecting a vector's private storage region.
// Distinct BaseIDs must map to disjoint regions; how that is guaranteed
// depends on the Addressing scheme in use.
type BaseID [32]byte

// BaseIDFromUint64 builds a BaseID from a small slot number, stored
// big-endian in the low bytes.  This matches the layout contract
// languages use for numbered storage slots.
func BaseIDFromUint64(slot uint64) (b BaseID) {
	binary.BigEndian.PutUint64(b[24:], slot)
	return
}

// BaseIDFromString derives a BaseID by hashing a name, so callers can
// key regions by human-readable identifiers without worrying about
// accidental collisions.
func BaseIDFromString(name string) BaseID {
	return keccak256([]byte(name))
}

// Addressing maps a BaseID onto physical word addresses of type A.  The
// length word and the data words of one vector, and all words of
// distinct vectors, must resolve to distinct addresses.
type Addressing[A comparable] interface {
	// LengthAddress is where the vector's element count lives.
	LengthAddress(base BaseID) A
	// DataAddress is the address of data word zero.
	DataAddress(base BaseID) A
	// Offset resolves data word i relative to DataAddress.
	Offset(data A, word uint64) A
}

// locate is the pure address calculator: it maps a logical element
// index to the index of the word holding it and the bit offset of the
// element within that word.  Elements pack MSB first, so slot k of a
// word occupies bits [(perWord-1-k)*elemBits, (perWord-k)*elemBits).
func locate(wordBits, elemBits uint, index uint64) (word uint64, bitStart uint) {
	perWord := uint64(wordBits / elemBits)
	word = index / perWord
	k := uint(index % perWord)
	bitStart = (uint(perWord) - 1 - k) * elemBits
	return
}

// wordsFor reports how many words hold n elements at the given packing.
func wordsFor(wordBits, elemBits uint, n uint64) uint64 {
	perWord := uint64(wordBits / elemBits)
	return (n + perWord - 1) / perWord
}

func keccak256(v []byte) (out [32]byte) {
	h := sha3.NewLegacyKeccak256()
	h.Write(v)
	h.Sum(out[:0])
	return
}

// SlotAddressing resolves addresses in a 256-bit address space the way
// contract languages lay out dynamic arrays: the length word lives at
// the base slot itself and the data words start at keccak256(base),
// advancing by wrapping addition.  Collision resistance comes from the
// hash, so it is safe even when callers pick adversarial BaseIDs.
type SlotAddressing struct{}

var _ Addressing[uint256.Int] = SlotAddressing{}

func (SlotAddressing) LengthAddress(base BaseID) (a uint256.Int) {
	a.SetBytes(base[:])
	return
}

func (SlotAddressing) DataAddress(base BaseID) (a uint256.Int) {
	h := keccak256(base[:])
	a.SetBytes(h[:])
	return
}

func (SlotAddressing) Offset(data uint256.Int, word uint64) uint256.Int {
	data.AddUint64(&data, word)
	return data
}

// hashed64RegionBits is the size of the per-vector region used by
// Hashed64: the low bits address words within the region, the high
// bits select the region.
const hashed64RegionBits = 32

// Hashed64 resolves addresses in a 64-bit address space by hashing the
// BaseID with xxh3 to pick a 2^32-word region.  It is much cheaper than
// SlotAddressing but only probabilistically collision free, so it is
// meant for transient in-memory stores with trusted BaseIDs, not for
// durable data or adversarial callers.  Vectors are capped at 2^32-1
// data words.
type Hashed64 struct {
	// Seed perturbs the hash; distinct seeds give independent layouts.
	Seed uint64
}

var _ Addressing[uint64] = Hashed64{}

func (h Hashed64) region(base BaseID) uint64 {
	return xxh3.HashSeed(base[:], h.Seed) << hashed64RegionBits
}

func (h Hashed64) LengthAddress(base BaseID) uint64 {
	return h.region(base)
}

func (h Hashed64) DataAddress(base BaseID) uint64 {
	return h.region(base) + 1
}

func (Hashed64) Offset(data uint64, word uint64) uint64 {
	return data + word
}
