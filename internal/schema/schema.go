package schema

import (
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/influxwire/internal/lineproto"
)

// Role is the line protocol section a column is written to.
type Role uint8

// Column roles.
const (
	RoleTag Role = iota + 1
	RoleField
	RoleTimestamp
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleTag:
		return "tag"
	case RoleField:
		return "field"
	case RoleTimestamp:
		return "timestamp"
	default:
		return "unknown"
	}
}

// Column is one classified member of a record type.
//
// Name is the wire name (the member name or its rename). Exactly one of the
// accessors is set, matching Role.
type Column[T any] struct {
	Name string
	Role Role

	tag   func(*T) string
	field func(*T) lineproto.Value
	stamp func(*T) (time.Time, bool)
}

// Schema is the classification of record type T.
//
// A Schema is immutable and safe for concurrent use.
type Schema[T any] struct {
	name    string
	columns []Column[T]
	tags    []Column[T]
	fields  []Column[T]
	stamp   *Column[T]
}

// Name returns the measurement name.
func (s *Schema[T]) Name() string { return s.name }

// Columns returns the columns in declaration order.
func (s *Schema[T]) Columns() []Column[T] {
	out := make([]Column[T], len(s.columns))
	copy(out, s.columns)
	return out
}

// HasTimestamp reports whether records carry their own timestamp.
func (s *Schema[T]) HasTimestamp() bool { return s.stamp != nil }

// Measurement reads r into a Measurement.
func (s *Schema[T]) Measurement(r *T) lineproto.Measurement {
	m := lineproto.Measurement{
		Name:   s.name,
		Fields: make([]lineproto.Field, 0, len(s.fields)),
	}
	if len(s.tags) > 0 {
		m.Tags = make([]lineproto.Tag, 0, len(s.tags))
		for _, c := range s.tags {
			m.Tags = append(m.Tags, lineproto.Tag{Key: c.Name, Value: c.tag(r)})
		}
	}
	for _, c := range s.fields {
		m.Fields = append(m.Fields, lineproto.Field{Key: c.Name, Value: c.field(r)})
	}
	if s.stamp != nil {
		if t, ok := s.stamp.stamp(r); ok {
			m.Time = t
		}
	}
	return m
}

// Measurements reads every record in order.
func (s *Schema[T]) Measurements(records []T) []lineproto.Measurement {
	out := make([]lineproto.Measurement, len(records))
	for i := range records {
		out[i] = s.Measurement(&records[i])
	}
	return out
}

// Encode encodes r as a single line with the given encoder.
func (s *Schema[T]) Encode(enc lineproto.Encoder, r *T) (string, error) {
	return enc.Encode(s.Measurement(r))
}

// EncodeBatch encodes records as newline-terminated lines in input order.
func (s *Schema[T]) EncodeBatch(enc lineproto.Encoder, records []T) ([]byte, error) {
	return enc.EncodeBatch(s.Measurements(records))
}

// Builder declares the columns of record type T.
//
// Declaring the same name twice for the same role replaces the earlier
// accessor in place, so repeated declarations are idempotent.
type Builder[T any] struct {
	name    string
	columns []Column[T]
	errs    []error
}

// New starts a schema for measurement name.
func New[T any](measurement string) *Builder[T] {
	return &Builder[T]{name: measurement}
}

// Tag declares a tag column.
func (b *Builder[T]) Tag(name string, get func(*T) string) *Builder[T] {
	if get == nil {
		b.errs = append(b.errs, fmt.Errorf("%w: tag %q", ErrNilAccessor, name))
		return b
	}
	b.put(Column[T]{Name: name, Role: RoleTag, tag: get})
	return b
}

// Field declares a field column.
func (b *Builder[T]) Field(name string, get func(*T) lineproto.Value) *Builder[T] {
	if get == nil {
		b.errs = append(b.errs, fmt.Errorf("%w: field %q", ErrNilAccessor, name))
		return b
	}
	b.put(Column[T]{Name: name, Role: RoleField, field: get})
	return b
}

// Timestamp declares the timestamp column.
// A zero time.Time leaves the record without a timestamp.
func (b *Builder[T]) Timestamp(get func(*T) time.Time) *Builder[T] {
	if get == nil {
		b.errs = append(b.errs, fmt.Errorf("%w: timestamp", ErrNilAccessor))
		return b
	}
	return b.OptionalTimestamp(func(r *T) (time.Time, bool) {
		t := get(r)
		return t, !t.IsZero()
	})
}

// OptionalTimestamp declares a timestamp column whose accessor reports
// whether the record has a timestamp.
func (b *Builder[T]) OptionalTimestamp(get func(*T) (time.Time, bool)) *Builder[T] {
	if get == nil {
		b.errs = append(b.errs, fmt.Errorf("%w: timestamp", ErrNilAccessor))
		return b
	}
	b.put(Column[T]{Name: "time", Role: RoleTimestamp, stamp: get})
	return b
}

// namedTimestamp records the member name of a timestamp column for error reporting.
func (b *Builder[T]) namedTimestamp(name string, get func(*T) (time.Time, bool)) *Builder[T] {
	b.columns = append(b.columns, Column[T]{Name: name, Role: RoleTimestamp, stamp: get})
	return b
}

// put adds c, replacing an earlier column with the same name and role.
// Timestamp columns are never merged so that duplicates are detected by Build.
func (b *Builder[T]) put(c Column[T]) {
	if c.Role != RoleTimestamp {
		for i := range b.columns {
			if b.columns[i].Name == c.Name && b.columns[i].Role == c.Role {
				b.columns[i] = c
				return
			}
		}
	}
	b.columns = append(b.columns, c)
}

// Build validates the declarations and returns the schema.
//
// Returns:
//   - *Schema[T]: The schema; nil when any declaration is invalid
//   - error: Every problem found, joined (check with errors.Is)
func (b *Builder[T]) Build() (*Schema[T], error) {
	errs := append([]error(nil), b.errs...)

	if b.name == "" {
		errs = append(errs, fmt.Errorf("%w: measurement", ErrEmptyName))
	}

	s := &Schema[T]{name: b.name, columns: append([]Column[T](nil), b.columns...)}
	stamps := 0
	for i := range s.columns {
		c := s.columns[i]
		if c.Name == "" && c.Role != RoleTimestamp {
			errs = append(errs, fmt.Errorf("%w: %s column", ErrEmptyName, c.Role))
		}
		switch c.Role {
		case RoleTag:
			s.tags = append(s.tags, c)
		case RoleField:
			s.fields = append(s.fields, c)
		case RoleTimestamp:
			stamps++
			s.stamp = &s.columns[i]
		}
	}

	if len(s.fields) == 0 {
		errs = append(errs, fmt.Errorf("%w: %s", ErrNoFields, b.name))
	}
	if stamps > 1 {
		errs = append(errs, fmt.Errorf("%w: %s declares %d", ErrMultipleTimestamps, b.name, stamps))
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return s, nil
}

// MustBuild is like Build but panics on error.
// It is intended for package-level schema variables.
func (b *Builder[T]) MustBuild() *Schema[T] {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}
