package methodio

import (
	"fmt"
	"log/slog"
)

// Writer records method calls as binary records over a shared cursor
// (spec §4.7). Each [Writer.Record] call is one record: a stop-bit
// message-id, the id_lookup assigns the method name, followed by
// whatever encode writes.
type Writer[C Cursor] struct {
	cursor C
	lookup IDLookup
	log    *slog.Logger
}

// NewWriter builds a Writer over cursor, dispatching message-ids through
// lookup.
func NewWriter[C Cursor](cursor C, lookup IDLookup) *Writer[C] {
	return &Writer[C]{cursor: cursor, lookup: lookup, log: slog.Default()}
}

// SetLogger overrides the logger used for unknown-method warnings.
// Defaults to [slog.Default].
func (w *Writer[C]) SetLogger(l *slog.Logger) { w.log = l }

// Cursor returns the underlying cursor, for callers that need to
// interleave raw cursor operations with recorded method calls.
func (w *Writer[C]) Cursor() C { return w.cursor }

// Record encodes one method call: spec §4.7's checkpoint, optional
// hex-dump description, message-id, and argument encoding, with an
// all-or-nothing rollback to the checkpoint on any encode failure.
//
// A methodName unknown to the Writer's [IDLookup] is logged and the call
// is skipped without writing anything, matching spec §4.7's "unknown
// methods are logged and skipped without writing".
func (w *Writer[C]) Record(methodName string, encode func(cursor C) error) error {
	enc, ok := w.lookup.Lookup(methodName)
	if !ok {
		w.log.Warn("method writer: unknown method, skipping", "method", methodName)
		return nil
	}

	checkpoint := w.cursor.WritePosition()

	if d, ok := any(w.cursor).(Describable); ok {
		d.Annotate(checkpoint, 0, methodName)
	}

	if err := w.cursor.WriteStopBit(enc.MessageID); err != nil {
		return w.rollback(checkpoint, fmt.Errorf("writing message id for %s: %w", methodName, err))
	}

	if err := encode(w.cursor); err != nil {
		return w.rollback(checkpoint, fmt.Errorf("encoding %s: %w", methodName, err))
	}

	return nil
}

// rollback resets write_position to checkpoint and wraps cause, matching
// spec §4.7 step 5's "on any exception, reset write_position = checkpoint
// and rethrow" — applied uniformly whether the failure happened writing
// the message-id or encoding the arguments, since either leaves partial
// bytes in the stream that must not survive the call.
func (w *Writer[C]) rollback(checkpoint int64, cause error) error {
	if resetErr := w.cursor.SetWritePosition(checkpoint); resetErr != nil {
		return fmt.Errorf("method writer: %w, and rollback to checkpoint failed: %w", cause, resetErr)
	}

	return fmt.Errorf("method writer: %w", cause)
}
