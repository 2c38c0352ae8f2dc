package lineproto

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// defaultLineSize is the initial buffer capacity for a single line.
const defaultLineSize = 128

// epoch is the reference instant for timestamps.
var epoch = time.Unix(0, 0).UTC()

// latest is the last instant representable as int64 nanoseconds since epoch.
var latest = time.Unix(0, math.MaxInt64).UTC()

// Encoder writes measurements as line protocol.
//
// The zero Encoder uses EscapeNone. An Encoder holds no state between
// calls and is safe for concurrent use.
type Encoder struct {
	Escape EscapePolicy
}

// defaultEncoder backs the package-level helpers.
var defaultEncoder = Encoder{}

// Encode encodes a single measurement with the default encoder.
func Encode(m Measurement) (string, error) {
	return defaultEncoder.Encode(m)
}

// EncodeBatch encodes measurements with the default encoder.
func EncodeBatch(ms []Measurement) ([]byte, error) {
	return defaultEncoder.EncodeBatch(ms)
}

// Encode returns the line for m, without a trailing newline.
func (e Encoder) Encode(m Measurement) (string, error) {
	b, err := e.Append(make([]byte, 0, defaultLineSize), m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Append appends the line for m to dst, without a trailing newline.
//
// The segments are written in this order:
//  1. Measurement name
//  2. If there are tags, a comma and the tags joined by commas
//  3. A single space
//  4. The fields joined by commas
//  5. A single space
//  6. The timestamp in nanoseconds, if present
//
// The trailing space after the fields is written even without a timestamp.
//
// Parameters:
//   - dst: Buffer to append to
//   - m: Measurement to encode
//
// Returns:
//   - []byte: The extended buffer
//   - error: ErrEmptyName, ErrNoFields, ErrTrailingBackslash, a value error
//     or a timestamp error;
//     on error dst is returned truncated to its original length
func (e Encoder) Append(dst []byte, m Measurement) ([]byte, error) {
	start := len(dst)

	if m.Name == "" {
		return dst, ErrEmptyName
	}
	if len(m.Fields) == 0 {
		return dst, fmt.Errorf("%w: %s", ErrNoFields, m.Name)
	}

	var err error
	if dst, err = appendEscapedName(dst, m.Name, e.Escape, measurementEscaper); err != nil {
		return dst[:start], fmt.Errorf("measurement name: %w", err)
	}

	if len(m.Tags) > 0 {
		dst = append(dst, ',')
		for i, tag := range m.Tags {
			if i > 0 {
				dst = append(dst, ',')
			}
			if dst, err = appendEscapedName(dst, tag.Key, e.Escape, keyEscaper); err != nil {
				return dst[:start], fmt.Errorf("tag key of %s: %w", m.Name, err)
			}
			dst = append(dst, '=')
			if dst, err = appendEscapedName(dst, tag.Value, e.Escape, keyEscaper); err != nil {
				return dst[:start], fmt.Errorf("tag %q of %s: %w", tag.Key, m.Name, err)
			}
		}
	}

	dst = append(dst, ' ')

	for i, field := range m.Fields {
		if i > 0 {
			dst = append(dst, ',')
		}
		if dst, err = appendEscapedName(dst, field.Key, e.Escape, keyEscaper); err != nil {
			return dst[:start], fmt.Errorf("field key of %s: %w", m.Name, err)
		}
		dst = append(dst, '=')
		dst, err = AppendValue(dst, field.Value, e.Escape)
		if err != nil {
			return dst[:start], fmt.Errorf("field %q of %s: %w", field.Key, m.Name, err)
		}
	}

	dst = append(dst, ' ')

	if m.HasTime() {
		dst, err = AppendTimestamp(dst, m.Time)
		if err != nil {
			return dst[:start], fmt.Errorf("%s: %w", m.Name, err)
		}
	}

	return dst, nil
}

// EncodeBatch encodes ms in order, terminating every line with a newline.
//
// The batch is all-or-nothing: the first failing measurement aborts the
// batch and its index is reported in the error.
func (e Encoder) EncodeBatch(ms []Measurement) ([]byte, error) {
	buf := make([]byte, 0, len(ms)*defaultLineSize)
	var err error
	for i, m := range ms {
		buf, err = e.Append(buf, m)
		if err != nil {
			return nil, fmt.Errorf("measurement %d: %w", i, err)
		}
		buf = append(buf, '\n')
	}
	return buf, nil
}

// AppendTimestamp appends t as signed nanoseconds since the unix epoch.
//
// Returns:
//   - error: ErrPreEpochTimestamp for instants before 1970-01-01T00:00:00Z,
//     ErrTimestampOverflow for instants after 2262-04-11T23:47:16.854775807Z
func AppendTimestamp(dst []byte, t time.Time) ([]byte, error) {
	if t.Before(epoch) {
		return dst, fmt.Errorf("%w: %s", ErrPreEpochTimestamp, t.UTC().Format(time.RFC3339Nano))
	}
	if t.After(latest) {
		return dst, fmt.Errorf("%w: %s", ErrTimestampOverflow, t.UTC().Format(time.RFC3339Nano))
	}
	return strconv.AppendInt(dst, t.UnixNano(), 10), nil
}
