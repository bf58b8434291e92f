package main

import (
	"bytes"
	"fmt"
	"log"

	pv "github.com/facebookincubator/go-packedvec"

	"github.com/holiman/uint256"
)

func main() {
	// An arena keeps everything in memory and hands each vector its
	// own region of integer addresses.  For a durable word store,
	// swap in SlotAddressing over your own Store implementation.
	arena := pv.NewArena()

	scores, err := pv.NewUint16[uint64](arena, arena, pv.BaseIDFromString("scores"))
	if err != nil {
		log.Fatal(err)
	}

	for i := uint16(0); i < 10; i++ {
		scores.Push(i * 100)
	}
	fmt.Printf("%d scores, first=%d last=%d\n", scores.Len(), scores.Get(0), scores.Get(9))

	// The engine masks values to the element width silently; the
	// typed façade can't even express an overflow, so go through the
	// raw vector to see it.
	scores.Vector().Set(0, *uint256.NewInt(0xFFFF+42))
	fmt.Printf("after overflowing set: first=%d\n", scores.Get(0))

	scores.Swap(0, 9)
	fmt.Printf("after swap: first=%d last=%d\n", scores.Get(0), scores.Get(9))

	if err := scores.PopBatch(5); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("after popping half: %d scores, %d words live\n",
		scores.Len(), arena.WordsInUse())

	// Snapshot the vector and report its size.
	var buf bytes.Buffer
	if _, err := scores.Vector().WriteTo(&buf); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("vector serializes into %d bytes\n", buf.Len())
}
