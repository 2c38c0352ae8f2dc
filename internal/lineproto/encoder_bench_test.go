package lineproto

import (
	"testing"
	"time"
)

func BenchmarkEncode_Simple(b *testing.B) {
	m := Measurement{Name: "device_metrics"}
	m.AddTag("device_id", "light-01").AddTag("measurement", "power_watts")
	m.AddField("value", Float64(23.5))
	m.SetTime(time.Date(2026, 2, 5, 12, 0, 0, 0, time.UTC))

	buf := make([]byte, 0, defaultLineSize)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf, _ = Encoder{}.Append(buf[:0], m)
	}
}

func BenchmarkEncode_MultiField(b *testing.B) {
	m := Measurement{Name: "climate"}
	m.AddTag("device_id", "thermostat-01")
	m.AddField("temperature", Float64(21.5)).AddField("humidity", Float64(45))
	m.AddField("setpoint", Float64(22)).AddField("mode", String("heating"))
	m.SetTime(time.Date(2026, 2, 5, 12, 0, 0, 0, time.UTC))

	buf := make([]byte, 0, defaultLineSize)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf, _ = Encoder{}.Append(buf[:0], m)
	}
}

func BenchmarkEncode_Strict(b *testing.B) {
	m := Measurement{Name: "device_metrics"}
	m.AddTag("device_id", "light=living,room 01")
	m.AddField("note", String(`said "hi"`))

	enc := Encoder{Escape: EscapeStrict}
	buf := make([]byte, 0, defaultLineSize)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf, _ = enc.Append(buf[:0], m)
	}
}
