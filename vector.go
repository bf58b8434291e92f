// package pv implements a dense, bit-packed dynamic array of
// fixed-width unsigned integers laid out over a word-oriented store.
// It supports:
//  1. any element width from 1 bit up to the store's word width
//  2. pluggable word stores and address derivation schemes
//  3. an opt-in unchecked access path that skips bounds checks
//  4. per-word storage reclamation on shrink
//
// A vector owns no in-process state beyond its geometry: the element
// count is re-read from the store on every call, so two Vector values
// built over the same store and BaseID observe each other's writes.
// Concurrent reads are safe; concurrent mutation of one BaseID needs
// external serialization.
package pv

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
)

var (
	// ErrInvalidWidth reports a Config whose element width falls
	// outside [1, WordBits].  Detected at construction only.
	ErrInvalidWidth = errors.New("invalid element width")
	// ErrEmpty reports a pop from a vector of length zero.
	ErrEmpty = errors.New("pop from empty vector")
	// ErrLengthMismatch reports a SetBatch whose index and value
	// lists differ in length.
	ErrLengthMismatch = errors.New("index and value count mismatch")
)

// Vector is a bit-packed dynamic array of BitWidth-bit unsigned
// integers stored under one BaseID.  A is the address type of the
// backing store.
type Vector[A comparable] struct {
	store  Store[A]
	scheme Addressing[A]
	base   BaseID

	lenAddr  A
	dataAddr A

	bits     uint
	wordBits uint
	perWord  uint64
	mask     uint256.Int
}

// New builds a Vector over store using the given addressing scheme and
// BaseID.  A vector is created implicitly the first time its BaseID is
// used: an untouched region reads as length zero.  Geometry is the
// only thing validated here; it must match across every Vector ever
// built for the same BaseID, since the store records no metadata.
func New[A comparable](store Store[A], scheme Addressing[A], base BaseID, c Config) (*Vector[A], error) {
	c = c.withDefaults()
	if err := c.validate(); err != nil {
		return nil, err
	}
	v := &Vector[A]{
		store:    store,
		scheme:   scheme,
		base:     base,
		lenAddr:  scheme.LengthAddress(base),
		dataAddr: scheme.DataAddress(base),
		bits:     c.BitWidth,
		wordBits: c.WordBits,
		perWord:  c.SlotsPerWord(),
	}
	v.mask = widthMask(c.BitWidth)
	return v, nil
}

// widthMask is (1<<bits)-1; for bits == 256 the shift wraps to zero
// and the subtraction yields all ones, which is what we want.
func widthMask(bits uint) (m uint256.Int) {
	one := uint256.NewInt(1)
	m.Lsh(one, bits)
	m.SubUint64(&m, 1)
	return
}

// BitWidth reports the element width the vector was built with.
func (v *Vector[A]) BitWidth() uint { return v.bits }

// WordBits reports the native word width the vector was built with.
func (v *Vector[A]) WordBits() uint { return v.wordBits }

// SlotsPerWord reports how many elements share one physical word.
func (v *Vector[A]) SlotsPerWord() uint64 { return v.perWord }

// Base reports the BaseID the vector stores under.
func (v *Vector[A]) Base() BaseID { return v.base }

// Len reports the element count.  It costs one word read: length is
// never cached in process.
func (v *Vector[A]) Len() uint64 {
	w := v.store.ReadWord(v.lenAddr)
	return w.Uint64()
}

func (v *Vector[A]) setLen(n uint64) {
	var w uint256.Int
	w.SetUint64(n)
	v.store.WriteWord(v.lenAddr, w)
}

// get extracts element i with no bounds check: one word read.
func (v *Vector[A]) get(i uint64) uint256.Int {
	word, bitStart := locate(v.wordBits, v.bits, i)
	w := v.store.ReadWord(v.scheme.Offset(v.dataAddr, word))
	w.Rsh(&w, bitStart)
	w.And(&w, &v.mask)
	return w
}

// set writes element i with no bounds check: one word read plus one
// word write, whatever the element width.  val is masked to BitWidth
// bits; overflow truncates silently.
func (v *Vector[A]) set(i uint64, val uint256.Int) {
	word, bitStart := locate(v.wordBits, v.bits, i)
	addr := v.scheme.Offset(v.dataAddr, word)
	w := v.store.ReadWord(addr)

	val.And(&val, &v.mask)
	val.Lsh(&val, bitStart)
	var window uint256.Int
	window.Lsh(&v.mask, bitStart)
	window.Not(&window)

	w.And(&w, &window)
	w.Or(&w, &val)
	v.store.WriteWord(addr, w)
}

// Get returns element i.  Panics if i >= Len(); use Unchecked to skip
// the check (and its length read).
func (v *Vector[A]) Get(i uint64) uint256.Int {
	v.check(i)
	return v.get(i)
}

// Set overwrites element i with val masked to BitWidth bits.  Panics
// if i >= Len().
func (v *Vector[A]) Set(i uint64, val uint256.Int) {
	v.check(i)
	v.set(i, val)
}

func (v *Vector[A]) check(i uint64) {
	if n := v.Len(); i >= n {
		panic(fmt.Sprintf("pv: index %d out of range [0, %d)", i, n))
	}
}

// Push appends val, masked to BitWidth bits.  Touches the tail data
// word and the length word.
func (v *Vector[A]) Push(val uint256.Int) {
	n := v.Len()
	v.set(n, val)
	v.setLen(n + 1)
}

// Pop removes the last element.  When the removed element was the sole
// live occupant of its word the whole word is zeroed, handing the
// storage back to the store; otherwise the element's stale bits stay
// in place, invisible beyond the new length.  Returns ErrEmpty on a
// vector of length zero.
func (v *Vector[A]) Pop() error {
	n := v.Len()
	if n == 0 {
		return ErrEmpty
	}
	if v.perWord == 1 || n%v.perWord == 1 {
		word, _ := locate(v.wordBits, v.bits, n-1)
		v.store.WriteWord(v.scheme.Offset(v.dataAddr, word), uint256.Int{})
	}
	v.setLen(n - 1)
	return nil
}

// Swap exchanges elements i and j: two reads and two writes.  When i
// and j share a physical word a single read-modify-write would do;
// that shortcut is left unimplemented.  Panics if either index is out
// of range.
func (v *Vector[A]) Swap(i, j uint64) {
	n := v.Len()
	if i >= n || j >= n {
		panic(fmt.Sprintf("pv: swap(%d, %d) out of range [0, %d)", i, j, n))
	}
	vi := v.get(i)
	vj := v.get(j)
	v.set(i, vj)
	v.set(j, vi)
}

// GetBatch returns the elements at indices, in order.  Reads are
// independent; there is no snapshot isolation across the batch.
func (v *Vector[A]) GetBatch(indices []uint64) []uint256.Int {
	out := make([]uint256.Int, len(indices))
	for k, i := range indices {
		out[k] = v.Get(i)
	}
	return out
}

// SetBatch applies Set pairwise in list order.  The only failure is
// the up-front length check: after it passes, every write happens, and
// nothing rolls back earlier pairs.
func (v *Vector[A]) SetBatch(indices []uint64, values []uint256.Int) error {
	if len(indices) != len(values) {
		return fmt.Errorf("%w: %d indices, %d values", ErrLengthMismatch, len(indices), len(values))
	}
	for k, i := range indices {
		v.Set(i, values[k])
	}
	return nil
}

// PushBatch appends values in order.
func (v *Vector[A]) PushBatch(values []uint256.Int) {
	for _, val := range values {
		v.Push(val)
	}
}

// PopBatch pops n times.  On underflow it stops and reports how far it
// got; the earlier pops are not rolled back.
func (v *Vector[A]) PopBatch(n uint64) error {
	for k := uint64(0); k < n; k++ {
		if err := v.Pop(); err != nil {
			return fmt.Errorf("popped %d of %d: %w", k, n, err)
		}
	}
	return nil
}

// Unchecked returns a view of the vector whose accessors skip bounds
// checks entirely, the length read included.  Reading an index at or
// beyond Len() yields whatever bits occupy that position; writing one
// corrupts nothing the vector will ever show, but wastes a word.
// Callers take the view deliberately; nothing hands it out implicitly.
func (v *Vector[A]) Unchecked() Unchecked[A] {
	return Unchecked[A]{v}
}

// Unchecked is the no-bounds-check access path of a Vector.
type Unchecked[A comparable] struct {
	v *Vector[A]
}

// Get returns element i without consulting the length: one word read.
func (u Unchecked[A]) Get(i uint64) uint256.Int {
	return u.v.get(i)
}

// Set writes element i without consulting the length: one read, one
// write.
func (u Unchecked[A]) Set(i uint64, val uint256.Int) {
	u.v.set(i, val)
}

// Swap exchanges elements i and j without bounds checks.
func (u Unchecked[A]) Swap(i, j uint64) {
	vi := u.v.get(i)
	vj := u.v.get(j)
	u.v.set(i, vj)
	u.v.set(j, vi)
}
