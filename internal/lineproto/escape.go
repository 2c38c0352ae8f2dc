package lineproto

import (
	"fmt"
	"strings"
)

// EscapePolicy selects how names and string values are escaped.
type EscapePolicy uint8

const (
	// EscapeNone writes every name and value verbatim.
	// Input containing separators produces a line the database will misparse.
	EscapeNone EscapePolicy = iota

	// EscapeStrict applies the protocol escaping rules:
	//   - measurement names: comma and space
	//   - tag keys, tag values and field keys: comma, equals sign and space
	//   - string field values: double quote and backslash
	//
	// Newlines are written as the two characters `\n` in every position so a
	// record can never span lines. Some parsers, including
	// github.com/influxdata/line-protocol, do not accept `\n` inside a string
	// field value and reject such a line.
	//
	// A measurement name, key or tag value ending in an unpaired backslash
	// is refused with ErrTrailingBackslash, since no escape can keep it from
	// swallowing the separator after it.
	EscapeStrict
)

// String returns the policy name as used in configuration.
func (p EscapePolicy) String() string {
	if p == EscapeStrict {
		return "strict"
	}
	return "none"
}

// ParseEscapePolicy converts a configuration value to an EscapePolicy.
// Unrecognised values select EscapeNone.
func ParseEscapePolicy(s string) EscapePolicy {
	if strings.EqualFold(strings.TrimSpace(s), "strict") {
		return EscapeStrict
	}
	return EscapeNone
}

var (
	measurementEscaper = strings.NewReplacer(
		"\n", `\n`,
		"\r", `\r`,
		",", `\,`,
		" ", `\ `,
	)

	keyEscaper = strings.NewReplacer(
		"\n", `\n`,
		"\r", `\r`,
		",", `\,`,
		"=", `\=`,
		" ", `\ `,
	)

	stringFieldEscaper = strings.NewReplacer(
		"\n", `\n`,
		"\r", `\r`,
		`\`, `\\`,
		`"`, `\"`,
	)
)

// appendEscaped appends s to dst, escaped with r when policy is strict.
func appendEscaped(dst []byte, s string, policy EscapePolicy, r *strings.Replacer) []byte {
	if policy != EscapeStrict {
		return append(dst, s...)
	}
	return append(dst, r.Replace(s)...)
}

// appendEscapedName is appendEscaped for names, keys and tag values, which
// are followed by a separator.
func appendEscapedName(dst []byte, s string, policy EscapePolicy, r *strings.Replacer) ([]byte, error) {
	if policy == EscapeStrict && danglingBackslash(s) {
		return dst, fmt.Errorf("%w: %q", ErrTrailingBackslash, s)
	}
	return appendEscaped(dst, s, policy, r), nil
}

// danglingBackslash reports whether s ends in an odd run of backslashes.
func danglingBackslash(s string) bool {
	n := 0
	for i := len(s) - 1; i >= 0 && s[i] == '\\'; i-- {
		n++
	}
	return n%2 == 1
}
