package methodio

import "log/slog"

// Handler decodes one record's arguments from the cursor and invokes the
// underlying business-logic method. Built by [NewHandler], which resolves
// MessageID from the same [IDLookup] a [Writer] uses for the matching
// name, so a (Writer, Reader) pair sharing a lookup automatically agree
// on ids without either side hard-coding them.
type Handler[C Cursor] struct {
	MessageID int64
	Name      string
	Decode    func(cursor C) error
}

// NewHandler resolves methodName through lookup and wraps decode as a
// [Handler]. Returns false if lookup does not recognize methodName.
func NewHandler[C Cursor](lookup IDLookup, methodName string, decode func(cursor C) error) (Handler[C], bool) {
	enc, ok := lookup.Lookup(methodName)
	if !ok {
		return Handler[C]{}, false
	}

	return Handler[C]{MessageID: enc.MessageID, Name: methodName, Decode: decode}, true
}

// DefaultParselet is invoked for a message-id with no registered
// [Handler], spec §4.7's "default_parselet(message_id, cursor)".
type DefaultParselet[C Cursor] func(messageID int64, cursor C)

// SeekToReadLimit is spec §4.7's suggested default_parselet: skip the
// unrecognized record by seeking straight to read_limit. Correct only
// when the Reader is scoped to exactly one record's worth of cursor (the
// common case: one cursor per inbound frame, already bounded to that
// frame's read_limit by the transport layer below this package).
func SeekToReadLimit[C Cursor](_ int64, cursor C) {
	_ = cursor.SetReadPosition(cursor.ReadLimit())
}

// Reader scans one or more records off a shared cursor, dispatching each
// by message-id to a registered [Handler] (spec §4.7's
// BytesMethodReader).
type Reader[C Cursor] struct {
	cursor          C
	handlers        map[int64]Handler[C]
	defaultParselet DefaultParselet[C]
	log             *slog.Logger
}

// NewReader builds a dispatch table from handlers keyed by MessageID.
// defaultParselet (may be nil) runs for a message-id with no matching
// handler; see [SeekToReadLimit] for the common choice.
func NewReader[C Cursor](cursor C, defaultParselet DefaultParselet[C], handlers []Handler[C]) *Reader[C] {
	table := make(map[int64]Handler[C], len(handlers))
	for _, h := range handlers {
		table[h.MessageID] = h
	}

	return &Reader[C]{
		cursor:          cursor,
		handlers:        table,
		defaultParselet: defaultParselet,
		log:             slog.Default(),
	}
}

// SetLogger overrides the logger used for swallowed decode errors.
// Defaults to [slog.Default].
func (r *Reader[C]) SetLogger(l *slog.Logger) { r.log = l }

// ReadOne reads and dispatches a single record, returning false when
// fewer than one byte remains (spec §4.7). A decode error from the
// resolved handler is logged against the method name and swallowed —
// "to avoid desynchronisation" — and ReadOne still returns true, since a
// record was consumed (its message-id was read) even though the payload
// could not be fully decoded.
func (r *Reader[C]) ReadOne() (bool, error) {
	if r.cursor.ReadRemaining() < 1 {
		return false, nil
	}

	messageID, err := r.cursor.ReadStopBit()
	if err != nil {
		return false, err
	}

	h, ok := r.handlers[messageID]
	if !ok {
		if r.defaultParselet != nil {
			r.defaultParselet(messageID, r.cursor)
		}

		return true, nil
	}

	if err := h.Decode(r.cursor); err != nil {
		r.log.Warn("method reader: decode failed, skipping record", "method", h.Name, "message_id", messageID, "error", err)
		return true, nil
	}

	return true, nil
}

// ReadAll drains every remaining record.
func (r *Reader[C]) ReadAll() error {
	for {
		ok, err := r.ReadOne()
		if err != nil {
			return err
		}

		if !ok {
			return nil
		}
	}
}
