package main

import (
	"fmt"
	"path/filepath"

	gobytes "github.com/calvinalkan/gobytes/pkg/bytes"
	"github.com/calvinalkan/gobytes/pkg/fs"
	"github.com/calvinalkan/gobytes/pkg/methodio"
	"github.com/calvinalkan/gobytes/pkg/mmapfile"
	"github.com/calvinalkan/gobytes/pkg/reentrantlock"
	"github.com/calvinalkan/gobytes/pkg/uniquetime"
)

// Scenario is one named, repeatable unit of work: Run(count) performs
// count operations of whatever this scenario measures. The bench harness
// times successive calls to Run, not the scenario's setup.
type Scenario struct {
	Name string
	Run  func(count int) error
}

func allScenarioNames() []string {
	names := make([]string, 0, len(scenarios()))
	for _, s := range scenarios() {
		names = append(names, s.Name)
	}

	return names
}

// scenarios builds a fresh scenario table. Built fresh per call (rather
// than a package var) so each scenario's Run closure gets its own
// backing cursor/file state instead of accumulating across bench runs.
func scenarios() []Scenario {
	return []Scenario{
		cursorHeapWriteScenario(),
		cursorElasticWriteScenario(),
		mmapfileRoundtripScenario(),
		methodioRoundtripScenario(),
		uniquetimeCASScenario(),
	}
}

func scenarioByName(name string) (Scenario, bool) {
	for _, s := range scenarios() {
		if s.Name == name {
			return s, true
		}
	}

	return Scenario{}, false
}

// cursorHeapWriteScenario measures sequential fixed-capacity uint64
// writes through pkg/bytes's streaming API.
func cursorHeapWriteScenario() Scenario {
	return Scenario{
		Name: "cursor-heap-write",
		Run: func(count int) error {
			c := gobytes.NewHeap(make([]byte, count*8), "bench")
			defer func() { _ = c.Close() }()

			for i := 0; i < count; i++ {
				if err := c.WriteUint64(uint64(i)); err != nil {
					return err
				}
			}

			return nil
		},
	}
}

// cursorElasticWriteScenario measures the same write load through an
// elastic heap cursor, so its reported throughput includes the cost of
// repeated growth/reallocation.
func cursorElasticWriteScenario() Scenario {
	return Scenario{
		Name: "cursor-elastic-write",
		Run: func(count int) error {
			c := gobytes.NewElasticHeap(64, "bench")
			defer func() { _ = c.Close() }()

			for i := 0; i < count; i++ {
				if err := c.WriteUint64(uint64(i)); err != nil {
					return err
				}
			}

			return nil
		},
	}
}

// mmapfileRoundtripScenario measures write-then-read throughput directly
// against a mapped chunk's store, the same primitive pkg/uniquetime
// builds on.
func mmapfileRoundtripScenario() Scenario {
	return Scenario{
		Name: "mmapfile-roundtrip",
		Run: func(count int) error {
			dir, err := mkBenchTempDir()
			if err != nil {
				return err
			}

			locks := reentrantlock.NewRegistry(fs.NewLocker(fs.NewReal()))

			mf, err := mmapfile.Open(fs.NewReal(), locks, filepath.Join(dir, "bench.bin"), mmapfile.Options{ChunkSize: 1 << 20})
			if err != nil {
				return err
			}
			defer func() { _ = mf.Close() }()

			store, err := mf.AcquireChunkFor(0, "bench")
			if err != nil {
				return err
			}

			for i := 0; i < count; i++ {
				off := int64(i%131072) * 4
				if err := store.WriteUint32(off, uint32(i)); err != nil {
					return err
				}

				if _, err := store.ReadUint32(off); err != nil {
					return err
				}
			}

			return nil
		},
	}
}

// methodioRoundtripScenario measures Writer.Record/Reader.ReadAll
// throughput for a minimal single-argument method.
func methodioRoundtripScenario() Scenario {
	return Scenario{
		Name: "methodio-roundtrip",
		Run: func(count int) error {
			lookup := methodio.MapIDLookup{"Tick": 1}

			c := gobytes.NewElasticHeap(int64(count)*2, "bench")
			defer func() { _ = c.Close() }()

			w := methodio.NewWriter[*gobytes.Cursor](c, lookup)

			for i := 0; i < count; i++ {
				if err := w.Record("Tick", func(cursor *gobytes.Cursor) error {
					return cursor.WriteStopBit(int64(i))
				}); err != nil {
					return err
				}
			}

			if err := c.SetReadPosition(c.Start()); err != nil {
				return err
			}

			seen := 0

			handler, ok := methodio.NewHandler[*gobytes.Cursor](lookup, "Tick", func(cursor *gobytes.Cursor) error {
				if _, err := cursor.ReadStopBit(); err != nil {
					return err
				}

				seen++

				return nil
			})
			if !ok {
				return fmt.Errorf("bytesbench: building Tick handler failed")
			}

			r := methodio.NewReader[*gobytes.Cursor](c, methodio.SeekToReadLimit[*gobytes.Cursor], []methodio.Handler[*gobytes.Cursor]{handler})
			if err := r.ReadAll(); err != nil {
				return err
			}

			if seen != count {
				return fmt.Errorf("bytesbench: methodio-roundtrip decoded %d of %d records", seen, count)
			}

			return nil
		},
	}
}

// uniquetimeCASScenario measures Provider.CurrentTimeNanos throughput:
// one CAS-guarded read-modify-write per call, contended only against
// itself within a single process.
func uniquetimeCASScenario() Scenario {
	return Scenario{
		Name: "uniquetime-cas",
		Run: func(count int) error {
			dir, err := mkBenchTempDir()
			if err != nil {
				return err
			}

			locks := reentrantlock.NewRegistry(fs.NewLocker(fs.NewReal()))

			p, err := uniquetime.Open(fs.NewReal(), locks, filepath.Join(dir, "time.tsf"), uniquetime.Options{HostID: 1})
			if err != nil {
				return err
			}
			defer func() { _ = p.Close() }()

			for i := 0; i < count; i++ {
				if _, err := p.CurrentTimeNanos(); err != nil {
					return err
				}
			}

			return nil
		},
	}
}
