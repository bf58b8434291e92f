// Copyright (c) Facebook, Inc. and its affiliates. All Rights Reserved

package main

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"strings"
	"time"

	pv "github.com/facebookincubator/go-packedvec"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/dustin/go-humanize"
	"github.com/holiman/uint256"
	"github.com/urfave/cli/v2"
)

// touches feeds every address a benchmark run visits into a bloom
// filter, to approximate the size of the working set without holding
// it.
type touches struct {
	inner    pv.Store[uint64]
	filter   *bloom.BloomFilter
	distinct uint64
}

func (t *touches) note(addr uint64) {
	var key [8]byte
	binary.LittleEndian.PutUint64(key[:], addr)
	if !t.filter.TestAndAdd(key[:]) {
		t.distinct++
	}
}

func (t *touches) ReadWord(addr uint64) uint256.Int {
	t.note(addr)
	return t.inner.ReadWord(addr)
}

func (t *touches) WriteWord(addr uint64, w uint256.Int) {
	t.note(addr)
	t.inner.WriteWord(addr, w)
}

func main() {
	app := &cli.App{
		Commands: []*cli.Command{
			{
				Name:  "bench",
				Usage: "run a randomized operation mix and report storage cost",
				Flags: []cli.Flag{
					&cli.UintFlag{
						Name:    "width",
						Aliases: []string{"w"},
						Value:   16,
						Usage:   "element width in bits",
					},
					&cli.IntFlag{
						Name:    "ops",
						Aliases: []string{"n"},
						Value:   100000,
						Usage:   "number of operations to run",
					},
					&cli.Int64Flag{
						Name:  "seed",
						Value: 77,
						Usage: "random seed",
					},
				},
				Action: func(c *cli.Context) error {
					arena := pv.NewArena()
					meter := pv.NewMeter[uint64](arena, pv.DefaultCostModel)
					tracked := &touches{
						inner:  meter,
						filter: bloom.NewWithEstimates(uint(c.Int("ops")), 0.001),
					}
					cfg := pv.Config{BitWidth: c.Uint("width")}
					vec, err := pv.New[uint64](tracked, arena, pv.BaseIDFromString("bench"), cfg)
					if err != nil {
						return err
					}
					cfg.Explain()

					ops := c.Int("ops")
					rnd := rand.New(rand.NewSource(c.Int64("seed")))
					start := time.Now()
					for i := 0; i < ops; i++ {
						n := vec.Len()
						switch x := rnd.Intn(100); {
						case x < 50 || n == 0:
							vec.Push(*uint256.NewInt(rnd.Uint64()))
						case x < 75:
							vec.Set(rnd.Uint64()%n, *uint256.NewInt(rnd.Uint64()))
						case x < 90:
							vec.Swap(rnd.Uint64()%n, rnd.Uint64()%n)
						default:
							if err := vec.Pop(); err != nil {
								return err
							}
						}
					}
					elapsed := time.Since(start)

					reads, writes, reclaims := meter.Counts()
					log.Printf("ran %s ops in %s", humanize.Comma(int64(ops)), elapsed)
					log.Printf("%s reads, %s writes, %s words reclaimed",
						humanize.Comma(int64(reads)), humanize.Comma(int64(writes)), humanize.Comma(int64(reclaims)))
					log.Printf("total cost %s, %.1f per op",
						humanize.Comma(int64(meter.Cost())), float64(meter.Cost())/float64(ops))
					log.Printf("~%s distinct words touched, %s live in %s of arena",
						humanize.Comma(int64(tracked.distinct)),
						humanize.Comma(int64(arena.WordsInUse())),
						humanize.Bytes(uint64(arena.WordsInUse())*32))
					return nil
				},
			},
			{
				Name:  "pack",
				Usage: "pack a list of unsigned integers into a vector snapshot",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"out", "o"},
						Value:   "vec.bin",
						Usage:   "name of the file to write the snapshot to",
					},
					&cli.StringFlag{
						Name:    "input",
						Aliases: []string{"in", "i"},
						Usage:   "file to read from (default is stdin)",
					},
					&cli.UintFlag{
						Name:    "width",
						Aliases: []string{"w"},
						Value:   64,
						Usage:   "element width in bits",
					},
				},
				Action: func(c *cli.Context) error {
					output := c.String("output")
					if _, err := os.Stat(output); !os.IsNotExist(err) {
						return fmt.Errorf("refusing to over-write existing file: %s", output)
					}
					if c.NArg() > 0 {
						return fmt.Errorf("unexpected command line arguments: %q", c.Args().Slice())
					}

					var reader io.Reader
					if c.IsSet("input") {
						f, err := os.Open(c.String("input"))
						if err != nil {
							return err
						}
						reader = f
						defer f.Close()
					} else {
						reader = os.Stdin
					}

					arena := pv.NewArena()
					vec, err := pv.New[uint64](arena, arena, pv.BaseIDFromString("pack"), pv.Config{
						BitWidth: c.Uint("width"),
					})
					if err != nil {
						return err
					}

					rdr := bufio.NewReader(reader)
					start := time.Now()
					for {
						l, _, err := rdr.ReadLine()
						if err != nil {
							if err == io.EOF {
								break
							}
							return err
						}
						s := strings.TrimSpace(string(l))
						if s == "" {
							continue
						}
						var val uint256.Int
						if err := val.SetFromDecimal(s); err != nil {
							return fmt.Errorf("bad value %q: %w", s, err)
						}
						vec.Push(val)
					}
					log.Printf("packed %s values in %s", humanize.Comma(int64(vec.Len())), time.Since(start))

					o, e := os.Create(output)
					if e != nil {
						return fmt.Errorf("error opening %s: %s", output, e)
					}
					defer o.Close()
					if n, err := vec.WriteTo(o); err != nil {
						return fmt.Errorf("error writing snapshot: %s", err)
					} else {
						log.Printf("wrote %s to %s", humanize.Bytes(uint64(n)), output)
					}
					return nil
				},
			},
			{
				Name:  "describe",
				Usage: "read the header from a vector snapshot and describe it",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "input",
						Aliases: []string{"in", "i"},
						Usage:   "file containing the snapshot",
					},
				},
				Action: func(c *cli.Context) error {
					h, err := pv.ReadSnapshotHeaderFromPath(c.String("i"))
					if err != nil {
						return fmt.Errorf("describe: can't read input file: %w", err)
					}
					fmt.Printf("Packed vector snapshot version %d\n", h.Version)
					fmt.Printf("%d elements of %d bits, packed in %d bit words\n",
						h.Length, h.BitWidth, h.WordBits)
					cfg := pv.Config{BitWidth: uint(h.BitWidth), WordBits: uint(h.WordBits)}
					fmt.Printf("%d data words (%s)\n", cfg.WordsRequired(h.Length),
						humanize.Bytes(cfg.WordsRequired(h.Length)*32))
					return nil
				},
			},
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}
