package lineproto

import "time"

// Tag is an indexed, string-valued key=value pair.
type Tag struct {
	Key   string
	Value string
}

// Field is a typed key=value pair.
type Field struct {
	Key   string
	Value Value
}

// Measurement is one record ready for encoding.
//
// Tags and Fields are encoded in slice order. At least one field is required.
// The zero Time means no timestamp is written and the database assigns its
// own ingestion time.
type Measurement struct {
	Name   string
	Tags   []Tag
	Fields []Field
	Time   time.Time
}

// AddTag appends a tag and returns the measurement for chaining.
func (m *Measurement) AddTag(key, value string) *Measurement {
	m.Tags = append(m.Tags, Tag{Key: key, Value: value})
	return m
}

// AddField appends a field and returns the measurement for chaining.
func (m *Measurement) AddField(key string, value Value) *Measurement {
	m.Fields = append(m.Fields, Field{Key: key, Value: value})
	return m
}

// SetTime sets the timestamp and returns the measurement for chaining.
func (m *Measurement) SetTime(t time.Time) *Measurement {
	m.Time = t
	return m
}

// HasTime reports whether the measurement carries its own timestamp.
func (m *Measurement) HasTime() bool {
	return !m.Time.IsZero()
}
