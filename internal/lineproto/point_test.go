package lineproto

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

func TestFromPoint(t *testing.T) {
	p := write.NewPoint(
		"device_metrics",
		map[string]string{"measurement": "power_watts", "device_id": "light-01"},
		map[string]interface{}{"value": 23.5, "on": true, "count": int32(4), "level": uint8(7), "label": "kitchen"},
		fixedTime,
	)

	m, err := FromPoint(p)
	if err != nil {
		t.Fatalf("FromPoint() error = %v", err)
	}

	got, err := Encode(m)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	// The client sorts tags and fields by key.
	want := `device_metrics,device_id=light-01,measurement=power_watts count=4i,label="kitchen",level=7i,on=T,value=23.5 1434055562000000000`
	if got != want {
		t.Errorf("Encode(FromPoint()) = %q, want %q", got, want)
	}
}

func TestFromPoint_NoTime(t *testing.T) {
	p := write.NewPointWithMeasurement("energy").AddField("power_watts", 150.5)

	m, err := FromPoint(p)
	if err != nil {
		t.Fatalf("FromPoint() error = %v", err)
	}
	if m.HasTime() {
		t.Errorf("HasTime() = true, want false for point without time")
	}
}

func TestFromPoint_RejectsWideUnsigned(t *testing.T) {
	p := write.NewPoint(
		"m",
		nil,
		map[string]interface{}{"big": uint64(math.MaxUint32) + 1},
		time.Now(),
	)

	_, err := FromPoint(p)
	if !errors.Is(err, ErrUnsupportedValue) {
		t.Errorf("FromPoint() error = %v, want ErrUnsupportedValue", err)
	}
}
