// Package schema classifies the members of a record type into line protocol
// tags, fields and an optional timestamp.
//
// A Schema is built once per record type and then used as plain data by the
// encoder: each call reads the record through the accessors captured at
// build time and produces a lineproto.Measurement.
//
// # Building a Schema
//
// Either declare the classification explicitly:
//
//	s, err := schema.New[Reading]("my_measure").
//	    Tag("region", func(r *Reading) string { return r.Region }).
//	    Field("amount", func(r *Reading) lineproto.Value { return lineproto.Int32(r.Count) }).
//	    Timestamp(func(r *Reading) time.Time { return r.When }).
//	    Build()
//
// or describe it with struct tags and let FromStruct read them:
//
//	type Reading struct {
//	    _      struct{}  `influx:"measurement=my_measure"`
//	    Region string    `influx:"tag"`
//	    Count  int32     `influx:"field,rename=amount"`
//	    When   time.Time `influx:"timestamp"`
//	    Other  int32     // not sent
//	}
//
// # Invariants
//
// A schema has at least one field and at most one timestamp. Breaking either
// rule is a configuration error reported by Build (or FromStruct) before any
// record is encoded. The registry caches the outcome per type, so the error
// surfaces once, the first time the type is used.
package schema
