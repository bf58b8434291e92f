// Copyright (c) Facebook, Inc. and its affiliates. All Rights Reserved

package pv

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/holiman/uint256"
)

// snapshotVersion is a version number for the on disk snapshot
// format.  Any time incompatible changes are made, it is bumped.
const snapshotVersion = uint64(0x0001)

// SnapshotHeader describes a serialized packed vector.
type SnapshotHeader struct {
	// a version number which changes as the format changes
	Version uint64
	// the native word width the vector was packed against
	WordBits uint64
	// the element width in bits
	BitWidth uint64
	// the element count
	Length uint64
}

// WriteTo serializes the vector: a fixed header followed by the packed
// data words, whole words at a time, 32 bytes each, big-endian within
// the word.  Stale bits beyond the length travel along; they are not
// observable on the other side either.
func (v *Vector[A]) WriteTo(stream io.Writer) (n int64, err error) {
	length := v.Len()
	h := SnapshotHeader{
		Version:  snapshotVersion,
		WordBits: uint64(v.wordBits),
		BitWidth: uint64(v.bits),
		Length:   length,
	}
	if err = binary.Write(stream, binary.LittleEndian, h); err != nil {
		return
	}
	n += 32

	words := wordsFor(v.wordBits, v.bits, length)
	for i := uint64(0); i < words; i++ {
		w := v.store.ReadWord(v.scheme.Offset(v.dataAddr, i))
		buf := w.Bytes32()
		var np int
		np, err = stream.Write(buf[:])
		n += int64(np)
		if err != nil {
			return
		}
	}
	return
}

// ReadFrom loads a snapshot into the vector's store, replacing its
// contents.  The snapshot's geometry must match the vector's; the
// target store and addressing need not match the origin's, which is
// how a vector migrates between, say, an arena and a hashed store.
// Words land in the store directly, so this is the one bulk path that
// skips per-element packing.
func (v *Vector[A]) ReadFrom(stream io.Reader) (n int64, err error) {
	var h SnapshotHeader
	if err = binary.Read(stream, binary.LittleEndian, &h); err != nil {
		return
	}
	n += 32
	if h.Version != snapshotVersion {
		return n, fmt.Errorf("incompatible snapshot: version is %d, expected %d",
			h.Version, snapshotVersion)
	}
	if h.WordBits != uint64(v.wordBits) || h.BitWidth != uint64(v.bits) {
		return n, fmt.Errorf("%w: snapshot packs %d bit elements in %d bit words, vector wants %d in %d",
			ErrInvalidWidth, h.BitWidth, h.WordBits, v.bits, v.wordBits)
	}

	// Drop words the old contents held beyond the snapshot, so a
	// longer previous incarnation leaves no stale tail.
	oldWords := wordsFor(v.wordBits, v.bits, v.Len())
	newWords := wordsFor(v.wordBits, v.bits, h.Length)
	for i := newWords; i < oldWords; i++ {
		v.store.WriteWord(v.scheme.Offset(v.dataAddr, i), uint256.Int{})
	}

	var buf [32]byte
	var w uint256.Int
	for i := uint64(0); i < newWords; i++ {
		var np int
		np, err = io.ReadFull(stream, buf[:])
		n += int64(np)
		if err != nil {
			return
		}
		w.SetBytes(buf[:])
		v.store.WriteWord(v.scheme.Offset(v.dataAddr, i), w)
	}
	v.setLen(h.Length)
	return
}

// ReadSnapshotHeader reads just the header from a snapshot stream.
func ReadSnapshotHeader(stream io.Reader) (h SnapshotHeader, err error) {
	if err = binary.Read(stream, binary.LittleEndian, &h); err != nil {
		return
	}
	if h.Version != snapshotVersion {
		err = fmt.Errorf("incompatible snapshot: version is %d, expected %d",
			h.Version, snapshotVersion)
	}
	return
}

// ReadSnapshotHeaderFromPath reads a snapshot header from a file.
func ReadSnapshotHeaderFromPath(path string) (SnapshotHeader, error) {
	f, err := os.Open(path)
	if err != nil {
		return SnapshotHeader{}, err
	}
	defer f.Close()
	return ReadSnapshotHeader(f)
}
