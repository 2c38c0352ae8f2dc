package schema

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/nerrad567/influxwire/internal/lineproto"
)

// tagKey is the struct tag read by FromStruct.
const tagKey = "influx"

var timeType = reflect.TypeFor[time.Time]()

// memberAttr is the merged influx tag of one struct member.
type memberAttr struct {
	rename    string
	tag       bool
	field     bool
	timestamp bool
}

func (a memberAttr) roles() int {
	n := 0
	for _, set := range []bool{a.tag, a.field, a.timestamp} {
		if set {
			n++
		}
	}
	return n
}

// parseAttr parses an influx struct tag value such as "field,rename=amount".
// Repeating an option is allowed; the last rename wins.
func parseAttr(raw string) (memberAttr, error) {
	var a memberAttr
	for _, opt := range strings.Split(raw, ",") {
		opt = strings.TrimSpace(opt)
		switch {
		case opt == "tag":
			a.tag = true
		case opt == "field":
			a.field = true
		case opt == "timestamp":
			a.timestamp = true
		case strings.HasPrefix(opt, "rename="):
			a.rename = strings.TrimPrefix(opt, "rename=")
		case opt == "":
		default:
			return a, fmt.Errorf("%w: %q", ErrUnknownOption, opt)
		}
	}
	return a, nil
}

// FromStruct builds the schema of struct type T from its influx struct tags.
//
// Members tagged `influx:"tag"` become tags, `influx:"field"` become fields
// and `influx:"timestamp"` becomes the timestamp. A `rename=name` option
// changes the wire name. Untagged members are ignored. The measurement name
// is the type name unless a blank member carries `influx:"measurement=name"`.
//
// Supported member types:
//   - tag: string kinds
//   - field: float, signed integer, unsigned integer up to 32 bits, bool, string kinds
//   - timestamp: time.Time or *time.Time (nil means no timestamp)
//
// Tags are parsed and converters chosen once, here. The resulting accessors
// still read member values through reflect, by the field index fixed at build
// time; a hand-written Builder schema avoids that cost on hot paths.
func FromStruct[T any]() (*Schema[T], error) {
	rt := reflect.TypeFor[T]()
	if rt.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s is not a struct", ErrUnsupportedType, rt)
	}

	b := New[T](rt.Name())
	var errs []error

	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		raw, ok := sf.Tag.Lookup(tagKey)
		if !ok {
			continue
		}

		if sf.Name == "_" {
			if name, found := strings.CutPrefix(raw, "measurement="); found {
				b.name = name
				continue
			}
			errs = append(errs, fmt.Errorf("%w: %q on blank member", ErrUnknownOption, raw))
			continue
		}

		attr, err := parseAttr(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("member %s: %w", sf.Name, err))
			continue
		}
		switch attr.roles() {
		case 0:
			// A bare rename classifies nothing.
			continue
		case 1:
		default:
			errs = append(errs, fmt.Errorf("%w: %s", ErrConflictingRoles, sf.Name))
			continue
		}
		if !sf.IsExported() {
			errs = append(errs, fmt.Errorf("%w: %s is unexported", ErrUnsupportedType, sf.Name))
			continue
		}

		name := sf.Name
		if attr.rename != "" {
			name = attr.rename
		}
		index := i

		switch {
		case attr.tag:
			if sf.Type.Kind() != reflect.String {
				errs = append(errs, fmt.Errorf("%w: tag %s has type %s", ErrUnsupportedType, sf.Name, sf.Type))
				continue
			}
			b.Tag(name, func(r *T) string {
				return reflect.ValueOf(r).Elem().Field(index).String()
			})

		case attr.field:
			conv, err := fieldConverter(sf.Type)
			if err != nil {
				errs = append(errs, fmt.Errorf("field %s: %w", sf.Name, err))
				continue
			}
			b.Field(name, func(r *T) lineproto.Value {
				return conv(reflect.ValueOf(r).Elem().Field(index))
			})

		case attr.timestamp:
			get, err := timestampAccessor[T](sf.Type, index)
			if err != nil {
				errs = append(errs, fmt.Errorf("timestamp %s: %w", sf.Name, err))
				continue
			}
			b.namedTimestamp(name, get)
		}
	}

	s, err := b.Build()
	if err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("schema %s: %w", rt, errors.Join(errs...))
	}
	return s, nil
}

// fieldConverter returns the lineproto conversion for a field member type.
// The choice depends only on the type, so it is made once per schema.
func fieldConverter(t reflect.Type) (func(reflect.Value) lineproto.Value, error) {
	switch t.Kind() {
	case reflect.Float32:
		return func(v reflect.Value) lineproto.Value { return lineproto.Float32(float32(v.Float())) }, nil
	case reflect.Float64:
		return func(v reflect.Value) lineproto.Value { return lineproto.Float64(v.Float()) }, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(v reflect.Value) lineproto.Value { return lineproto.Int64(v.Int()) }, nil
	case reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return func(v reflect.Value) lineproto.Value { return lineproto.Uint32(uint32(v.Uint())) }, nil
	case reflect.Bool:
		return func(v reflect.Value) lineproto.Value { return lineproto.Bool(v.Bool()) }, nil
	case reflect.String:
		return func(v reflect.Value) lineproto.Value { return lineproto.String(v.String()) }, nil
	default:
		// uint, uint64 and uintptr do not fit the signed wire integer.
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
}

func timestampAccessor[T any](t reflect.Type, index int) (func(*T) (time.Time, bool), error) {
	switch {
	case t == timeType:
		return func(r *T) (time.Time, bool) {
			ts := reflect.ValueOf(r).Elem().Field(index).Interface().(time.Time)
			return ts, !ts.IsZero()
		}, nil
	case t.Kind() == reflect.Pointer && t.Elem() == timeType:
		return func(r *T) (time.Time, bool) {
			p := reflect.ValueOf(r).Elem().Field(index).Interface().(*time.Time)
			if p == nil {
				return time.Time{}, false
			}
			return *p, true
		}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
}
