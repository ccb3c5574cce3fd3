// Package uniquetime implements the distributed unique timestamp provider
// of spec §4.8: a CAS-guarded "last emitted timestamp" word in a small file
// shared by every process that wants strictly increasing timestamps, each
// tagged with its emitting host's id in the low two decimal digits so two
// hosts can never emit the same value.
//
// Grounded on pkg/mmapfile as its own doc comment frames it ("spec §4.8:
// C8 is a small client of C4") — this package never touches raw mmap or
// flock itself, only [mmapfile.File.AcquireChunkFor] and the
// [bytesstore.Store] CAS primitives C3 already provides.
package uniquetime

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	natefinchatomic "github.com/natefinch/atomic"

	"github.com/calvinalkan/gobytes/pkg/bioerrors"
	"github.com/calvinalkan/gobytes/pkg/bytesstore"
	"github.com/calvinalkan/gobytes/pkg/fs"
	"github.com/calvinalkan/gobytes/pkg/mmapfile"
	"github.com/calvinalkan/gobytes/pkg/reentrantlock"
	"github.com/calvinalkan/gobytes/pkg/refcount"
)

// HostIDs is the modulus host ids are encoded against: spec §4.8's
// HOST_IDS constant.
const HostIDs = 100

const (
	// lastTimeOffset is spec §4.8/§6's fixed LAST_TIME offset.
	lastTimeOffset = 128

	// dedupOffset begins the 100-slot (one per host id) 8-byte-long
	// deduplication array spec §6 places right after the header region.
	dedupOffset = 192

	// fileSize is spec §6's "one OS page"; mmapfile.Open rounds its
	// ChunkSize up to the real page size regardless, so this only needs
	// to be a safe lower bound.
	fileSize = 4096

	// casRetryPause is spec §4.8 step 5's "short pause between attempts".
	casRetryPause = 50 * time.Microsecond
)

// header is spec §6's literal byte sequence: magic, then a version line,
// padded with zeros out to lastTimeOffset. Spec.md states the magic bytes
// and the LAST_TIME/dedup offsets but leaves the bytes in between
// unspecified beyond "a short ASCII header precedes it" — resolved here
// with a minimal, self-describing two-line header (magic + version)
// rather than inventing unneeded structure.
var header = append([]byte("&TSF\n"), []byte("v1\n")...)

// ErrInvalidFormat is returned by [Parse] for a string that isn't a value
// [Format] could have produced.
var ErrInvalidFormat = errors.New("uniquetime: invalid formatted timestamp")

// TimestampOf extracts the timestamp component of a value produced by
// [Provider.CurrentTimeNanos]/[Provider.CurrentTimeMicros]: spec §4.8's
// timestamp_of(v) = v - v mod HOST_IDS.
func TimestampOf(v int64) int64 { return v - v%HostIDs }

// HostIDOf extracts the host id component: spec §4.8's
// host_id_of(v) = v mod HOST_IDS.
func HostIDOf(v int64) int64 { return v % HostIDs }

// Format renders v as RFC3339 with nanosecond precision plus a "#NN"
// host-id suffix, a human-readable form for logs (spec §4.8 defines only
// the bit layout).
func Format(v int64) string {
	t := time.Unix(0, TimestampOf(v)).UTC()
	return fmt.Sprintf("%s#%02d", t.Format(time.RFC3339Nano), HostIDOf(v))
}

// Parse reverses [Format].
func Parse(s string) (int64, error) {
	idx := strings.LastIndexByte(s, '#')
	if idx < 0 {
		return 0, fmt.Errorf("%w: missing host-id suffix in %q", ErrInvalidFormat, s)
	}

	t, err := time.Parse(time.RFC3339Nano, s[:idx])
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}

	hostID, err := strconv.ParseInt(s[idx+1:], 10, 64)
	if err != nil || hostID < 0 || hostID >= HostIDs {
		return 0, fmt.Errorf("%w: invalid host id suffix in %q", ErrInvalidFormat, s)
	}

	ts := t.UnixNano()

	return (ts - ts%HostIDs) + hostID, nil
}

// Options configures [Open].
type Options struct {
	// HostID must be in [0, HostIDs). Required.
	HostID int64

	// Clock overrides the time source (test hook). Defaults to
	// [time.Now].
	Clock func() time.Time

	// SyncMode is passed through to [mmapfile.Open].
	SyncMode mmapfile.SyncMode
}

// Provider generates strictly increasing timestamps tagged with a fixed
// host id, backed by a file shared across every process pointed at the
// same path (spec §4.8).
type Provider struct {
	mapper *mmapfile.File
	store  *bytesstore.Store
	owner  refcount.Owner
	hostID int64
	clock  func() time.Time
}

// Open maps (creating the shared file on first use) the timestamp file at
// path and returns a [Provider] for hostID.
func Open(fsys fs.FS, locks *reentrantlock.Registry, path string, opts Options) (*Provider, error) {
	if opts.HostID < 0 || opts.HostID >= HostIDs {
		return nil, fmt.Errorf("%w: host id %d out of range [0,%d)", bioerrors.IllegalState, opts.HostID, HostIDs)
	}

	if err := ensureFile(fsys, path); err != nil {
		return nil, err
	}

	mapper, err := mmapfile.Open(fsys, locks, path, mmapfile.Options{
		ChunkSize: fileSize,
		SyncMode:  opts.SyncMode,
	})
	if err != nil {
		return nil, err
	}

	owner := new(struct{})

	store, err := mapper.AcquireChunkFor(0, owner)
	if err != nil {
		_ = mapper.Close()
		return nil, err
	}

	if err := validateHeader(store); err != nil {
		_ = store.Refcount().Release(owner)
		_ = mapper.Close()

		return nil, err
	}

	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Provider{mapper: mapper, store: store, owner: owner, hostID: opts.HostID, clock: clock}, nil
}

// ensureFile creates the shared file, with its header and a zeroed body,
// exactly once: the first process to observe it missing publishes it with
// [natefinchatomic.WriteFile]'s create-then-rename so a concurrent reader
// never observes a partially written header. A second process racing the
// same check publishes byte-identical content, so the race is harmless
// even when both "win" the Exists check. This writes straight to the OS
// path rather than through fsys, since the durability problem being
// solved here (no partial file ever visible) is a real-filesystem
// concern, not one the fsys abstraction's chaos/crash injection layer
// needs to intercept.
func ensureFile(fsys fs.FS, path string) error {
	exists, err := fsys.Exists(path)
	if err != nil {
		return fmt.Errorf("%w: checking %q: %w", bioerrors.IORuntime, path, err)
	}

	if exists {
		return nil
	}

	buf := make([]byte, fileSize)
	copy(buf, header)

	if err := natefinchatomic.WriteFile(path, bytes.NewReader(buf)); err != nil {
		return fmt.Errorf("%w: creating %q: %w", bioerrors.IORuntime, path, err)
	}

	return nil
}

func validateHeader(store *bytesstore.Store) error {
	got := make([]byte, len(header))
	if err := store.ReadBytes(0, got); err != nil {
		return fmt.Errorf("%w: reading header: %w", bioerrors.IORuntime, err)
	}

	if !bytes.Equal(got, header) {
		return fmt.Errorf("%w: timestamp file header %q does not match expected %q", bioerrors.IllegalState, got, header)
	}

	return nil
}

// Close releases this Provider's reservation on the mapped chunk and
// closes the underlying mapper.
func (p *Provider) Close() error {
	releaseErr := p.store.Refcount().Release(p.owner)
	closeErr := p.mapper.Close()

	return errors.Join(releaseErr, closeErr)
}

// HostID returns the host id this Provider tags every emitted timestamp
// with.
func (p *Provider) HostID() int64 { return p.hostID }

// CurrentTimeNanos implements spec §4.8's algorithm at nanosecond
// resolution.
func (p *Provider) CurrentTimeNanos() (int64, error) {
	return p.currentTime(1)
}

// CurrentTimeMicros is spec §4.8's "analogous algorithm ... scales by
// 1000": the identical CAS algorithm over the same LAST_TIME word, with
// the clock read at microsecond resolution instead of nanosecond.
func (p *Provider) CurrentTimeMicros() (int64, error) {
	return p.currentTime(1000)
}

func (p *Provider) currentTime(divisor int64) (int64, error) {
	t := p.clock().UnixNano() / divisor
	candidate := (t - t%HostIDs) + p.hostID

	t0, err := p.readLastTime()
	if err != nil {
		return 0, err
	}

	if candidate > t0 {
		ok, err := p.casLastTime(t0, candidate)
		if err != nil {
			return 0, err
		}

		if ok {
			return candidate, nil
		}
	}

	for {
		t0, err = p.readLastTime()
		if err != nil {
			return 0, err
		}

		next := (t0 - t0%HostIDs) + p.hostID
		if next <= t0 {
			next += HostIDs
		}

		ok, err := p.casLastTime(t0, next)
		if err != nil {
			return 0, err
		}

		if ok {
			return next, nil
		}

		time.Sleep(casRetryPause)
	}
}

func (p *Provider) readLastTime() (int64, error) {
	v, err := p.store.ReadVolatileUint64(lastTimeOffset)
	return int64(v), err
}

func (p *Provider) casLastTime(old, newV int64) (bool, error) {
	return p.store.CompareAndSwapUint64(lastTimeOffset, uint64(old), uint64(newV))
}

// CompareByHostID reads the deduplicator's recorded last-seen value for
// v's host id and returns the three-way comparison of v against it
// (-1, 0, 1), without modifying the recorded value.
func (p *Provider) CompareByHostID(v int64) (int, error) {
	last, err := p.store.ReadVolatileUint64(dedupSlot(v))
	if err != nil {
		return 0, err
	}

	return compareInt64(v, int64(last)), nil
}

// CompareAndRetainNewer compares v against the deduplicator's recorded
// last-seen value for v's host id; if v is newer, it CAS-installs v as
// the new recorded value. Returns the three-way comparison of v against
// whichever value ends up recorded.
func (p *Provider) CompareAndRetainNewer(v int64) (int, error) {
	slot := dedupSlot(v)

	for {
		last, err := p.store.ReadVolatileUint64(slot)
		if err != nil {
			return 0, err
		}

		lastV := int64(last)

		cmp := compareInt64(v, lastV)
		if cmp <= 0 {
			return cmp, nil
		}

		ok, err := p.store.CompareAndSwapUint64(slot, last, uint64(v))
		if err != nil {
			return 0, err
		}

		if ok {
			return 1, nil
		}
		// Lost the race to a concurrent CompareAndRetainNewer for the
		// same host id; re-read and re-compare against whatever won.
	}
}

func dedupSlot(v int64) int64 {
	return dedupOffset + HostIDOf(v)*8
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
