package lineproto

import (
	"fmt"
	"math"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// FromPoint converts a point built with the official InfluxDB client into a
// Measurement, so code already producing write.Point values can send them
// through the transports in this module.
//
// The client normalises field values when the point is built: every signed
// integer becomes int64, every unsigned integer uint64 and float32 float64.
// Unsigned values are accepted only when they fit in 32 bits; larger ones are
// rejected instead of being truncated.
//
// Tags and fields keep the point's order (the client sorts them by key).
// A zero point time yields a measurement without a timestamp.
//
// Parameters:
//   - p: Point created with write.NewPoint or write.NewPointWithMeasurement
//
// Returns:
//   - Measurement: Equivalent measurement
//   - error: ErrUnsupportedValue for field values with no line protocol form
func FromPoint(p *write.Point) (Measurement, error) {
	m := Measurement{
		Name: p.Name(),
		Time: p.Time(),
	}

	for _, tag := range p.TagList() {
		m.AddTag(tag.Key, tag.Value)
	}

	for _, field := range p.FieldList() {
		v, err := valueOf(field.Value)
		if err != nil {
			return Measurement{}, fmt.Errorf("field %q of %s: %w", field.Key, m.Name, err)
		}
		m.AddField(field.Key, v)
	}

	return m, nil
}

// valueOf maps a client-normalised field value onto Value.
func valueOf(v any) (Value, error) {
	switch val := v.(type) {
	case float64:
		return Float64(val), nil
	case float32:
		return Float32(val), nil
	case int64:
		return Int64(val), nil
	case uint64:
		if val > math.MaxUint32 {
			return Value{}, fmt.Errorf("%w: uint64 %d exceeds 32 bits", ErrUnsupportedValue, val)
		}
		return Uint32(uint32(val)), nil
	case bool:
		return Bool(val), nil
	case string:
		return String(val), nil
	default:
		return Value{}, fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
}
