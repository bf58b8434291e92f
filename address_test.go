// Copyright (c) Facebook, Inc. and its affiliates. All Rights Reserved

package pv

import (
	"encoding/hex"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocate(t *testing.T) {
	cases := []struct {
		wordBits, elemBits uint
		index              uint64
		word               uint64
		bitStart           uint
	}{
		// 16 slots of 16 bits in a 256 bit word, MSB first
		{256, 16, 0, 0, 240},
		{256, 16, 1, 0, 224},
		{256, 16, 15, 0, 0},
		{256, 16, 16, 1, 240},
		{256, 16, 99, 6, 192},
		// 4 slots in a 64 bit word
		{64, 16, 0, 0, 48},
		{64, 16, 5, 1, 32},
		// word-wide elements: one per word, always at bit 0
		{256, 256, 0, 0, 0},
		{256, 256, 3, 3, 0},
		// 85 3-bit slots per 256 bit word, one bit wasted
		{256, 3, 84, 0, 0},
		{256, 3, 85, 1, 252},
		// single-bit elements
		{256, 1, 0, 0, 255},
		{256, 1, 255, 0, 0},
		{256, 1, 256, 1, 255},
	}
	for _, c := range cases {
		word, bitStart := locate(c.wordBits, c.elemBits, c.index)
		assert.Equal(t, c.word, word, "word for %+v", c)
		assert.Equal(t, c.bitStart, bitStart, "bitStart for %+v", c)
	}
}

func TestWordsFor(t *testing.T) {
	assert.Equal(t, uint64(0), wordsFor(256, 16, 0))
	assert.Equal(t, uint64(1), wordsFor(256, 16, 1))
	assert.Equal(t, uint64(1), wordsFor(256, 16, 16))
	assert.Equal(t, uint64(2), wordsFor(256, 16, 17))
	assert.Equal(t, uint64(7), wordsFor(256, 256, 7))
}

func TestSlotAddressingLayout(t *testing.T) {
	base := BaseIDFromUint64(0)
	scheme := SlotAddressing{}

	// the length word lives at the base slot itself
	lenAddr := scheme.LengthAddress(base)
	assert.True(t, lenAddr.IsZero())

	// data starts at keccak256 of the 32-byte base; this constant is
	// the well-known hash of slot zero
	want, err := hex.DecodeString("290decd9548b62a8d60345a988386fc84ba6bc95484008f6362f93160ef3e563")
	require.NoError(t, err)
	dataAddr := scheme.DataAddress(base)
	got := dataAddr.Bytes32()
	assert.Equal(t, want, got[:])

	// offsets advance by plain addition
	next := scheme.Offset(dataAddr, 2)
	var diff uint256.Int
	diff.Sub(&next, &dataAddr)
	assert.Equal(t, uint64(2), diff.Uint64())
}

func TestSlotAddressingOffsetWraps(t *testing.T) {
	var top uint256.Int
	top.Not(&top)
	next := SlotAddressing{}.Offset(top, 1)
	assert.True(t, next.IsZero())
}

func TestSlotAddressingDisjointBases(t *testing.T) {
	scheme := SlotAddressing{}
	a := scheme.DataAddress(BaseIDFromUint64(1))
	b := scheme.DataAddress(BaseIDFromUint64(2))
	assert.False(t, a.Eq(&b))
}

func TestHashed64Regions(t *testing.T) {
	scheme := Hashed64{Seed: 7}
	a := BaseIDFromString("alpha")
	b := BaseIDFromString("beta")

	assert.NotEqual(t, scheme.LengthAddress(a), scheme.LengthAddress(b))
	assert.Equal(t, scheme.LengthAddress(a)+1, scheme.DataAddress(a))
	assert.Equal(t, scheme.DataAddress(a)+9, scheme.Offset(scheme.DataAddress(a), 9))

	// a different seed rearranges the layout
	other := Hashed64{Seed: 8}
	assert.NotEqual(t, scheme.LengthAddress(a), other.LengthAddress(a))
}

func TestBaseIDConstructors(t *testing.T) {
	assert.Equal(t, BaseIDFromString("x"), BaseIDFromString("x"))
	assert.NotEqual(t, BaseIDFromString("x"), BaseIDFromString("y"))

	b := BaseIDFromUint64(5)
	assert.Equal(t, byte(5), b[31])
	var zero [31]byte
	assert.Equal(t, zero[:], b[:31])
}
