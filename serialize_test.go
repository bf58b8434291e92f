// Copyright (c) Facebook, Inc. and its affiliates. All Rights Reserved

package pv

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRoundTrip(t *testing.T) {
	// pack over an arena, restore over a hashed store: snapshots are
	// the migration path between stores
	arena := NewArena()
	src, err := New[uint64](arena, arena, BaseIDFromString("src"), Config{BitWidth: 16})
	require.NoError(t, err)
	for i := uint64(0); i < 100; i++ {
		src.Push(*uint256.NewInt(i))
	}

	var buf bytes.Buffer
	n, err := src.WriteTo(&buf)
	require.NoError(t, err)
	// header + ceil(100/16) words
	assert.Equal(t, int64(32+7*32), n)
	assert.Equal(t, int(n), buf.Len())

	dst, err := New[uint256.Int](NewMemStore[uint256.Int](), SlotAddressing{},
		BaseIDFromString("dst"), Config{BitWidth: 16})
	require.NoError(t, err)
	m, err := dst.ReadFrom(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, n, m)

	require.Equal(t, uint64(100), dst.Len())
	for i := uint64(0); i < 100; i++ {
		assert.Equal(t, i, u64(dst.Get(i)))
	}
}

func TestSnapshotHeader(t *testing.T) {
	vec, _ := newTestVector(t, Config{BitWidth: 32, WordBits: 64})
	vec.Push(*uint256.NewInt(9))

	var buf bytes.Buffer
	_, err := vec.WriteTo(&buf)
	require.NoError(t, err)

	h, err := ReadSnapshotHeader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, uint64(64), h.WordBits)
	assert.Equal(t, uint64(32), h.BitWidth)
	assert.Equal(t, uint64(1), h.Length)
}

func TestSnapshotGeometryMismatch(t *testing.T) {
	src, _ := newTestVector(t, Config{BitWidth: 16})
	src.Push(*uint256.NewInt(1))
	var buf bytes.Buffer
	_, err := src.WriteTo(&buf)
	require.NoError(t, err)

	dst, _ := newTestVector(t, Config{BitWidth: 32})
	_, err = dst.ReadFrom(bytes.NewReader(buf.Bytes()))
	assert.ErrorIs(t, err, ErrInvalidWidth)
}

func TestSnapshotBadVersion(t *testing.T) {
	h := SnapshotHeader{Version: 999, WordBits: 256, BitWidth: 16}
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, h))

	_, err := ReadSnapshotHeader(bytes.NewReader(buf.Bytes()))
	assert.Error(t, err)

	vec, _ := newTestVector(t, Config{BitWidth: 16})
	_, err = vec.ReadFrom(bytes.NewReader(buf.Bytes()))
	assert.Error(t, err)
}

func TestSnapshotReplacesLongerContents(t *testing.T) {
	short, _ := newTestVector(t, Config{BitWidth: 16})
	for i := uint64(0); i < 10; i++ {
		short.Push(*uint256.NewInt(i + 1))
	}
	var buf bytes.Buffer
	_, err := short.WriteTo(&buf)
	require.NoError(t, err)

	long, store := newTestVector(t, Config{BitWidth: 16})
	for i := uint64(0); i < 100; i++ {
		long.Push(*uint256.NewInt(i + 1))
	}

	_, err = long.ReadFrom(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, uint64(10), long.Len())
	for i := uint64(0); i < 10; i++ {
		assert.Equal(t, i+1, u64(long.Get(i)))
	}
	// the old tail words were zeroed, not stranded
	assert.Equal(t, 2, store.WordsInUse()) // 1 data word + length
}

func TestSnapshotEmptyVector(t *testing.T) {
	src, _ := newTestVector(t, Config{BitWidth: 16})
	var buf bytes.Buffer
	n, err := src.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(32), n)

	dst, _ := newTestVector(t, Config{BitWidth: 16})
	dst.Push(*uint256.NewInt(1))
	_, err = dst.ReadFrom(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, uint64(0), dst.Len())
}

func TestSnapshotTruncatedStream(t *testing.T) {
	src, _ := newTestVector(t, Config{BitWidth: 16})
	src.Push(*uint256.NewInt(1))
	var buf bytes.Buffer
	_, err := src.WriteTo(&buf)
	require.NoError(t, err)

	dst, _ := newTestVector(t, Config{BitWidth: 16})
	_, err = dst.ReadFrom(bytes.NewReader(buf.Bytes()[:40]))
	assert.Error(t, err)
}
