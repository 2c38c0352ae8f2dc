package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/influxwire/internal/lineproto"
)

// Input formats accepted by -format.
const (
	formatLine = "line"
	formatJSON = "json"
)

// maxLineSize bounds a single input line.
const maxLineSize = 16 << 20

// openInput opens path, or returns stdin for "-".
func openInput(path string, stdin io.Reader) (io.Reader, func() error, error) {
	if path == "" || path == "-" {
		return stdin, func() error { return nil }, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening input: %w", err)
	}
	return f, f.Close, nil
}

// readLines returns the non-empty line protocol lines of r.
// Comment lines, such as the "# DML" headers written by influx_inspect
// export, are skipped.
func readLines(r io.Reader) ([][]byte, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var lines [][]byte
	for sc.Scan() {
		// Trailing whitespace is kept: it may be an escaped space.
		line := bytes.TrimLeft(bytes.TrimRight(sc.Bytes(), "\r"), " \t")
		if len(bytes.TrimSpace(line)) == 0 || line[0] == '#' {
			continue
		}
		lines = append(lines, bytes.Clone(line))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// jsonPoint is one line of -format json input.
//
//	{"measurement":"cpu","tags":{"host":"a"},"fields":{"load":0.64},"time":"2015-06-11T20:46:02Z"}
//
// Time is optional and may be an RFC 3339 string or integer nanoseconds.
type jsonPoint struct {
	Measurement string            `json:"measurement"`
	Tags        map[string]string `json:"tags"`
	Fields      map[string]any    `json:"fields"`
	Time        json.RawMessage   `json:"time"`
}

// readJSONPoints decodes one JSON point per line and encodes each with enc.
// Tags and fields are written in key order.
func readJSONPoints(r io.Reader, enc lineproto.Encoder) ([][]byte, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var lines [][]byte
	for n := 1; sc.Scan(); n++ {
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}

		m, err := decodeJSONPoint(raw)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		line, err := enc.Append(nil, m)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func decodeJSONPoint(raw []byte) (lineproto.Measurement, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var p jsonPoint
	if err := dec.Decode(&p); err != nil {
		return lineproto.Measurement{}, err
	}
	if p.Measurement == "" {
		return lineproto.Measurement{}, errors.New("missing measurement")
	}

	fields := make(map[string]any, len(p.Fields))
	for k, v := range p.Fields {
		fv, err := jsonFieldValue(v)
		if err != nil {
			return lineproto.Measurement{}, fmt.Errorf("field %q: %w", k, err)
		}
		fields[k] = fv
	}

	ts, err := jsonTime(p.Time)
	if err != nil {
		return lineproto.Measurement{}, err
	}

	return lineproto.FromPoint(write.NewPoint(p.Measurement, p.Tags, fields, ts))
}

// jsonFieldValue narrows a decoded JSON value to a field type.
// Numbers without a fraction or exponent are integers.
func jsonFieldValue(v any) (any, error) {
	switch val := v.(type) {
	case json.Number:
		if !strings.ContainsAny(val.String(), ".eE") {
			if i, err := val.Int64(); err == nil {
				return i, nil
			}
		}
		return val.Float64()
	case string, bool:
		return val, nil
	default:
		return nil, fmt.Errorf("unsupported JSON value %T", v)
	}
}

func jsonTime(raw json.RawMessage) (time.Time, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return time.Time{}, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return time.Time{}, err
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("time: %w", err)
		}
		return t, nil
	}
	ns, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("time: %w", err)
	}
	return time.Unix(0, ns), nil
}
