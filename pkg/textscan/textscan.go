// Package textscan provides the stop-character predicates and ASCII
// numeric parse helpers spec §4.9 names as collaborators of the cursor
// layer's text-mode reads. It deliberately does not implement a general
// UTF-8 decoder or locale-aware numeric parser (Go's stdlib unicode/utf8
// and strconv remain the real collaborators for that); this package only
// supplies the small stop-on-character/look-ahead predicates the cursor
// uses to know where a token ends.
package textscan

// CharTester reports whether ch should terminate a scan.
type CharTester func(ch rune) bool

// CharsTester reports whether ch should terminate a scan, given the next
// rune in the stream (zero if ch is the last rune available). This lets a
// tester stop before a multi-rune delimiter such as "\r\n" without
// consuming the first half of it.
type CharsTester func(ch, next rune) bool

// IsSpace stops at any ASCII space or control character (code point <=
// ' '), the same boundary Chronicle-style parsers use for whitespace-
// delimited tokens.
func IsSpace(ch rune) bool {
	return ch <= ' '
}

// IsComma stops at ',' or any ASCII space/control character.
func IsComma(ch rune) bool {
	return ch == ',' || IsSpace(ch)
}

// IsNewline stops at '\n', accounting for a preceding '\r' so a "\r\n"
// line ending is recognized as a single boundary rather than stopping
// early on the '\r'.
func IsNewline(ch, next rune) bool {
	if ch == '\n' {
		return true
	}

	return ch == '\r' && next == '\n'
}

// ByteSource is the minimal single-byte-peek contract ParseInt/ParseDouble
// need: read the next byte, or signal end-of-input.
type ByteSource interface {
	// ReadByte returns the next byte, or ok=false if no more input is
	// available.
	ReadByte() (b byte, ok bool)
}

// ParseInt reads a decimal (optionally signed) ASCII integer from src,
// stopping at the first byte for which stop returns true (or at end of
// input). It returns the parsed value and the number of bytes consumed.
func ParseInt(src ByteSource, stop CharTester) (int64, int, bool) {
	var (
		n        int64
		consumed int
		neg      bool
		sawDigit bool
	)

	first := true

	for {
		b, ok := src.ReadByte()
		if !ok {
			break
		}

		ch := rune(b)
		if !first && stop(ch) {
			break
		}

		if first && (ch == '-' || ch == '+') {
			neg = ch == '-'
			consumed++
			first = false
			continue
		}

		if ch < '0' || ch > '9' {
			break
		}

		n = n*10 + int64(ch-'0')
		sawDigit = true
		consumed++
		first = false
	}

	if !sawDigit {
		return 0, consumed, false
	}

	if neg {
		n = -n
	}

	return n, consumed, true
}

// ParseDouble reads a decimal ASCII floating point number (optional sign,
// integer part, optional fractional part) from src, stopping at the first
// byte for which stop returns true or at end of input.
func ParseDouble(src ByteSource, stop CharTester) (float64, int, bool) {
	var (
		consumed   int
		neg        bool
		sawDigit   bool
		intPart    float64
		fracPart   float64
		fracScale  = 0.1
		inFraction bool
	)

	first := true

	for {
		b, ok := src.ReadByte()
		if !ok {
			break
		}

		ch := rune(b)
		if !first && stop(ch) {
			break
		}

		switch {
		case first && (ch == '-' || ch == '+'):
			neg = ch == '-'
			consumed++
		case ch == '.' && !inFraction:
			inFraction = true
			consumed++
		case ch >= '0' && ch <= '9':
			if inFraction {
				fracPart += float64(ch-'0') * fracScale
				fracScale /= 10
			} else {
				intPart = intPart*10 + float64(ch-'0')
			}
			sawDigit = true
			consumed++
		default:
			return finishDouble(neg, intPart, fracPart, sawDigit, consumed)
		}

		first = false
	}

	return finishDouble(neg, intPart, fracPart, sawDigit, consumed)
}

func finishDouble(neg bool, intPart, fracPart float64, sawDigit bool, consumed int) (float64, int, bool) {
	if !sawDigit {
		return 0, consumed, false
	}

	v := intPart + fracPart
	if neg {
		v = -v
	}

	return v, consumed, true
}
