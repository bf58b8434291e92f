package pv

import "fmt"

// DefaultWordBits is the native word width assumed when a Config does
// not name one.  256 matches the storage model this layout comes from;
// 64 and 128 bit stores work the same way, just with fewer slots per
// word.
const DefaultWordBits = 256

// MaxWordBits bounds the word widths a store built on 256-bit words
// can represent.
const MaxWordBits = 256

// Config controls the geometry of a packed vector.  The zero value of
// every field except BitWidth is usable; defaults are filled in at
// construction.
type Config struct {
	// BitWidth is the element width in bits, fixed for the vector's
	// lifetime.  Required, in [1, WordBits].
	BitWidth uint
	// WordBits is the native word width of the backing store.
	// Defaults to DefaultWordBits.
	WordBits uint
}

func (c Config) withDefaults() Config {
	if c.WordBits == 0 {
		c.WordBits = DefaultWordBits
	}
	return c
}

func (c Config) validate() error {
	if c.WordBits > MaxWordBits {
		return fmt.Errorf("%w: word width %d exceeds %d", ErrInvalidWidth, c.WordBits, MaxWordBits)
	}
	if c.BitWidth < 1 || c.BitWidth > c.WordBits {
		return fmt.Errorf("%w: element width %d not in [1, %d]", ErrInvalidWidth, c.BitWidth, c.WordBits)
	}
	return nil
}

// SlotsPerWord reports how many elements share one physical word.
func (c Config) SlotsPerWord() uint64 {
	c = c.withDefaults()
	return uint64(c.WordBits / c.BitWidth)
}

// WordsRequired reports how many data words hold n elements.
func (c Config) WordsRequired(n uint64) uint64 {
	c = c.withDefaults()
	return wordsFor(c.WordBits, c.BitWidth, n)
}

// ExplainIndent prints an indented summary of the geometry to stdout.
func (c Config) ExplainIndent(indent string) {
	c = c.withDefaults()
	fmt.Printf("%s%3d bit words, %d bit elements\n", indent, c.WordBits, c.BitWidth)
	fmt.Printf("%s%3d slots per word\n", indent, c.SlotsPerWord())
	fmt.Printf("%s%3d bits unused per full word\n", indent, c.WordBits%c.BitWidth)
}

// Explain prints a summary of the geometry to stdout.
func (c Config) Explain() {
	c.ExplainIndent("")
}
