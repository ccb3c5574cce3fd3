// Package methodio implements the binary method writer/reader dispatch
// protocol of spec §4.7: a record is one stop-bit message-id followed by
// that message's arguments, and a shared [IDLookup] between a [Writer] and
// a [Reader] is what makes the two sides agree on framing without either
// one inspecting the other's code.
//
// Java's Chronicle-Bytes builds this over a reflective interface proxy:
// method_writer(interface) returns an object implementing the interface,
// and each method call is intercepted and encoded. Go's reflect package
// cannot synthesize a concrete type satisfying an arbitrary interface at
// runtime — method sets are fixed at compile time — so this package takes
// the same approach Go's own net/rpc takes for the same underlying
// problem: callers key every record off a method *name*, and [Writer] and
// [Reader] consult the same [IDLookup] to turn that name into a wire id.
// A hand-written (or generated) adapter type presenting the caller's real
// domain interface and forwarding to [Writer.Record] plays the role the
// reflective proxy plays in the original.
package methodio

import (
	"hash/fnv"
)

// Cursor is the subset of [bytes.Cursor]'s API a [Writer] and [Reader]
// need. Both Writer and Reader are generic over it so callers can pass
// either a plain *bytes.Cursor or a wrapped variant (e.g.
// *hexdump.Cursor) and still get back the wrapper's extra behavior
// (detected via [Describable]) through the same call sites.
type Cursor interface {
	WritePosition() int64
	SetWritePosition(pos int64) error
	WriteStopBit(v int64) error
	ReadPosition() int64
	ReadLimit() int64
	SetReadPosition(pos int64) error
	ReadRemaining() int64
	ReadStopBit() (int64, error)
}

// Describable is implemented by cursor wrappers (currently
// [hexdump.Cursor]) that accept positional annotations. [Writer.Record]
// type-asserts its cursor against this to satisfy spec §4.7 step 2
// ("optionally emit a hex-dump description with the method name")
// without requiring every cursor type to carry the capability.
type Describable interface {
	Annotate(position int64, indent int, description string)
}

// MethodEncoder is the (message_id, name) pair an [IDLookup] resolves a
// method name to. Writer and Reader only use MessageID; Name is carried
// through for logging.
type MethodEncoder struct {
	MessageID int64
	Name      string
}

// IDLookup resolves a method name to its wire message-id. Lookup returns
// false for a name the policy does not recognize, which [Writer.Record]
// treats as spec §4.7's "unknown methods are logged and skipped".
type IDLookup interface {
	Lookup(methodName string) (MethodEncoder, bool)
}

// MapIDLookup is an explicit, caller-supplied id_lookup: a fixed table of
// method name to message-id. Names absent from the map are unknown.
type MapIDLookup map[string]int64

func (m MapIDLookup) Lookup(methodName string) (MethodEncoder, bool) {
	id, ok := m[methodName]
	if !ok {
		return MethodEncoder{}, false
	}

	return MethodEncoder{MessageID: id, Name: methodName}, true
}

type hashIDLookup struct{}

// DefaultIDLookup is the annotation-driven default spec §4.7 describes,
// adapted to Go: since Go methods carry no runtime metadata to annotate,
// a method's message-id is instead derived deterministically from its
// name (FNV-1a, high bit cleared to stay a non-negative stop-bit value).
// A Writer and a Reader built independently with DefaultIDLookup — no
// shared map, no generated code — still agree on every method's id as
// long as they agree on its name. It never reports a name as unknown;
// use [MapIDLookup] when some names should be rejected instead.
func DefaultIDLookup() IDLookup { return hashIDLookup{} }

func (hashIDLookup) Lookup(methodName string) (MethodEncoder, bool) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(methodName))

	id := int64(h.Sum64() >> 1)

	return MethodEncoder{MessageID: id, Name: methodName}, true
}
