package lineproto

import "errors"

// Sentinel errors for line protocol encoding.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, lineproto.ErrNoFields) {
//	    // the measurement carried nothing to write
//	}
var (
	// ErrNoFields indicates a measurement without any field.
	// The database rejects lines that only carry tags.
	ErrNoFields = errors.New("lineproto: measurement has no fields")

	// ErrEmptyName indicates a measurement without a name.
	ErrEmptyName = errors.New("lineproto: measurement name is empty")

	// ErrPreEpochTimestamp indicates a timestamp before 1970-01-01T00:00:00Z.
	ErrPreEpochTimestamp = errors.New("lineproto: timestamp is before the unix epoch")

	// ErrTimestampOverflow indicates a timestamp that does not fit in int64 nanoseconds.
	ErrTimestampOverflow = errors.New("lineproto: timestamp overflows int64 nanoseconds")

	// ErrNonFiniteFloat indicates a NaN or infinite float field.
	ErrNonFiniteFloat = errors.New("lineproto: float field is NaN or infinite")

	// ErrInvalidValue indicates a zero Value that was never constructed.
	ErrInvalidValue = errors.New("lineproto: invalid field value")

	// ErrTrailingBackslash indicates a name, key or tag value ending in an
	// unpaired backslash. Under EscapeStrict it would escape the separator
	// that follows it.
	ErrTrailingBackslash = errors.New("lineproto: trailing backslash")

	// ErrUnsupportedValue indicates a foreign value with no line protocol representation.
	ErrUnsupportedValue = errors.New("lineproto: unsupported field value")
)
