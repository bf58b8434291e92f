package pv

import (
	"fmt"
	"unsafe"

	"github.com/holiman/uint256"
)

// NativeWidth is the set of element widths with a native Go integer
// representation.  Wider elements go through Uint128 or the raw
// Vector.
type NativeWidth interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Typed is the façade over a Vector for element widths that fit a
// native Go unsigned integer.  It holds no logic of its own beyond
// value conversion; every call delegates to the engine.
type Typed[T NativeWidth, A comparable] struct {
	vec *Vector[A]
}

// NewTyped builds a Typed façade; the element width is the bit size of
// T.
func NewTyped[T NativeWidth, A comparable](store Store[A], scheme Addressing[A], base BaseID, c Config) (*Typed[T, A], error) {
	var z T
	c.BitWidth = uint(bitSizeOf(z))
	vec, err := New(store, scheme, base, c)
	if err != nil {
		return nil, err
	}
	return &Typed[T, A]{vec: vec}, nil
}

func bitSizeOf[T NativeWidth](z T) int {
	return int(unsafe.Sizeof(z)) * 8
}

// NewUint16 builds a 16-bit façade with default word width.
func NewUint16[A comparable](store Store[A], scheme Addressing[A], base BaseID) (*Typed[uint16, A], error) {
	return NewTyped[uint16](store, scheme, base, Config{})
}

// NewUint32 builds a 32-bit façade with default word width.
func NewUint32[A comparable](store Store[A], scheme Addressing[A], base BaseID) (*Typed[uint32, A], error) {
	return NewTyped[uint32](store, scheme, base, Config{})
}

// NewUint64 builds a 64-bit façade with default word width.
func NewUint64[A comparable](store Store[A], scheme Addressing[A], base BaseID) (*Typed[uint64, A], error) {
	return NewTyped[uint64](store, scheme, base, Config{})
}

// Vector exposes the underlying engine, for callers that want the
// unchecked path or the snapshot methods.
func (t *Typed[T, A]) Vector() *Vector[A] { return t.vec }

func (t *Typed[T, A]) Len() uint64 { return t.vec.Len() }

func (t *Typed[T, A]) Get(i uint64) T {
	w := t.vec.Get(i)
	return T(w.Uint64())
}

func (t *Typed[T, A]) Set(i uint64, val T) {
	t.vec.Set(i, *uint256.NewInt(uint64(val)))
}

func (t *Typed[T, A]) Push(val T) {
	t.vec.Push(*uint256.NewInt(uint64(val)))
}

func (t *Typed[T, A]) Pop() error { return t.vec.Pop() }

func (t *Typed[T, A]) Swap(i, j uint64) { t.vec.Swap(i, j) }

func (t *Typed[T, A]) GetBatch(indices []uint64) []T {
	out := make([]T, len(indices))
	for k, i := range indices {
		out[k] = t.Get(i)
	}
	return out
}

func (t *Typed[T, A]) SetBatch(indices []uint64, values []T) error {
	if len(indices) != len(values) {
		return fmt.Errorf("%w: %d indices, %d values", ErrLengthMismatch, len(indices), len(values))
	}
	for k, i := range indices {
		t.Set(i, values[k])
	}
	return nil
}

func (t *Typed[T, A]) PushBatch(values []T) {
	for _, val := range values {
		t.Push(val)
	}
}

func (t *Typed[T, A]) PopBatch(n uint64) error { return t.vec.PopBatch(n) }

// Uint128 is the façade for 128-bit elements.  Values travel as
// uint256.Int with the high 128 bits masked off.
type Uint128[A comparable] struct {
	vec *Vector[A]
}

// NewUint128 builds a 128-bit façade with default word width.
func NewUint128[A comparable](store Store[A], scheme Addressing[A], base BaseID) (*Uint128[A], error) {
	vec, err := New(store, scheme, base, Config{BitWidth: 128})
	if err != nil {
		return nil, err
	}
	return &Uint128[A]{vec: vec}, nil
}

// Vector exposes the underlying engine.
func (u *Uint128[A]) Vector() *Vector[A] { return u.vec }

func (u *Uint128[A]) Len() uint64 { return u.vec.Len() }

func (u *Uint128[A]) Get(i uint64) uint256.Int { return u.vec.Get(i) }

func (u *Uint128[A]) Set(i uint64, val uint256.Int) { u.vec.Set(i, val) }

func (u *Uint128[A]) Push(val uint256.Int) { u.vec.Push(val) }

func (u *Uint128[A]) Pop() error { return u.vec.Pop() }

func (u *Uint128[A]) Swap(i, j uint64) { u.vec.Swap(i, j) }

func (u *Uint128[A]) GetBatch(indices []uint64) []uint256.Int {
	return u.vec.GetBatch(indices)
}

func (u *Uint128[A]) SetBatch(indices []uint64, values []uint256.Int) error {
	return u.vec.SetBatch(indices, values)
}

func (u *Uint128[A]) PushBatch(values []uint256.Int) { u.vec.PushBatch(values) }

func (u *Uint128[A]) PopBatch(n uint64) error { return u.vec.PopBatch(n) }
