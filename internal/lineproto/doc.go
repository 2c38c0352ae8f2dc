// Package lineproto encodes measurements into the line protocol accepted by
// the time-series database's /write endpoint and by its UDP listener.
//
// # Format
//
//	<measurement>[,<tag>=<value>...] <field>=<value>[,<field>=<value>...] [<timestamp>]
//
// Tags and fields are written in the order they appear on the Measurement.
// The encoder never sorts, deduplicates or reorders them, so the output is
// deterministic for a given classification.
//
// # Values
//
// Field values are a closed set (see Value):
//   - floats: shortest decimal form, no exponent, no suffix ("3.4")
//   - signed and unsigned integers up to 32 bits unsigned: decimal with an "i" suffix ("-42i")
//   - booleans: "T" or "F"
//   - strings: wrapped in double quotes
//
// 64-bit unsigned integers have no Value constructor because the database
// cannot store them.
//
// # Escaping
//
// With the default EscapeNone policy nothing is escaped: tag values are
// written verbatim and string fields are only quoted. Callers that cannot
// guarantee clean input should use an Encoder with EscapeStrict, which
// applies the protocol's escaping rules to every position.
//
// # Usage
//
//	m := lineproto.Measurement{Name: "cpu_load_short"}
//	m.AddTag("host", "server01")
//	m.AddField("value", lineproto.Float64(0.64))
//	m.Time = time.Unix(0, 1434055562000000000)
//
//	line, err := lineproto.Encode(m)
//	// cpu_load_short,host=server01 value=0.64 1434055562000000000
package lineproto
