package services

import (
	"encoding/base64"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/patrik-rangel/hvac-telemetry-api/internal/domain/entities"
)

func encode(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

const fullPayload = `{"date":"2024-01-01T08:00","temp_in_C":18,"temp_out_C":20,"comm_status":0,"next_set_time_s":120,"next_set_temp":21,"humidity_perc":50,"rain_out":1,"wind_spd_ms":1.5}`

func TestDecodeFullPayload(t *testing.T) {
	got, err := NewPayloadCodec().Decode(encode(fullPayload))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	date := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	wantSensor := &entities.SensorRecord{DateTime: date, TempInDeciC: 180, TempOutDeciC: 200, RainOut: true, WindSpeedDeciMs: 15, HumidityDeciPerc: 500}
	if !reflect.DeepEqual(got.Sensor, wantSensor) {
		t.Fatalf("sensor = %+v, want %+v", got.Sensor, wantSensor)
	}
	wantCommand := &entities.CommandRecord{DateTime: date, ThermostatMode: 0}
	if !reflect.DeepEqual(got.Command, wantCommand) {
		t.Fatalf("command = %+v, want %+v", got.Command, wantCommand)
	}
	if len(got.Missing) != 0 {
		t.Fatalf("expected nothing missing, got %v", got.Missing)
	}
}

func TestDecodeIsDeterministic(t *testing.T) {
	codec := NewPayloadCodec()
	a, errA := codec.Decode(encode(fullPayload))
	b, errB := codec.Decode(encode(fullPayload))
	if errA != nil || errB != nil {
		t.Fatalf("unexpected errs: %v %v", errA, errB)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("decode not deterministic: %+v vs %+v", a, b)
	}
}

func TestDecodeTruncatesTowardZero(t *testing.T) {
	payload := `{"date":"2024-03-05T10:30:00Z","temp_in_C":-3.27,"temp_out_C":21.99,"comm_status":2.9,"humidity_perc":47.35,"rain_out":0,"wind_spd_ms":0.05}`
	got, err := NewPayloadCodec().Decode(encode(payload))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	s := got.Sensor
	if s == nil {
		t.Fatalf("expected sensor record")
	}
	if s.TempInDeciC != -32 || s.TempOutDeciC != 219 || s.HumidityDeciPerc != 473 || s.WindSpeedDeciMs != 0 {
		t.Fatalf("unexpected deci-units: %+v", s)
	}
	if s.RainOut {
		t.Fatalf("rain_out 0 must be false")
	}
	if got.Command == nil || got.Command.ThermostatMode != 2 {
		t.Fatalf("expected thermostat mode 2, got %+v", got.Command)
	}
}

func TestDecodeMissingSensorFieldKeepsCommand(t *testing.T) {
	payload := `{"date":"2024-01-01T08:00","temp_in_C":18,"temp_out_C":20,"comm_status":3,"humidity_perc":50,"rain_out":1}`
	got, err := NewPayloadCodec().Decode(encode(payload))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.Sensor != nil {
		t.Fatalf("expected no sensor record, got %+v", got.Sensor)
	}
	if got.Command == nil || got.Command.ThermostatMode != 3 {
		t.Fatalf("expected command record, got %+v", got.Command)
	}
	if !reflect.DeepEqual(got.Missing, []string{"wind_spd_ms"}) {
		t.Fatalf("missing = %v", got.Missing)
	}
}

func TestDecodeSensorOnlyNode(t *testing.T) {
	payload := `{"date":"2024-01-01","temp_in_C":18,"temp_out_C":20,"humidity_perc":50,"rain_out":1,"wind_spd_ms":2}`
	got, err := NewPayloadCodec().Decode(encode(payload))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.Sensor == nil || got.Command != nil {
		t.Fatalf("expected sensor only, got %+v", got)
	}
}

func TestDecodeFieldTypes(t *testing.T) {
	cases := []struct {
		name        string
		payload     string
		wantSensor  bool
		wantCommand bool
		wantRain    bool
	}{
		{"string temperature", `{"date":"2024-01-01","temp_in_C":"18","temp_out_C":20,"humidity_perc":50,"rain_out":1,"wind_spd_ms":2,"comm_status":1}`, false, true, false},
		{"null humidity", `{"date":"2024-01-01","temp_in_C":18,"temp_out_C":20,"humidity_perc":null,"rain_out":1,"wind_spd_ms":2,"comm_status":1}`, false, true, false},
		{"boolean rain equals one", `{"date":"2024-01-01","temp_in_C":18,"temp_out_C":20,"humidity_perc":5,"rain_out":true,"wind_spd_ms":2}`, true, false, true},
		{"boolean rain false", `{"date":"2024-01-01","temp_in_C":18,"temp_out_C":20,"humidity_perc":5,"rain_out":false,"wind_spd_ms":2}`, true, false, false},
		{"rain as float one", `{"date":"2024-01-01","temp_in_C":18,"temp_out_C":20,"humidity_perc":5,"rain_out":1.0,"wind_spd_ms":2}`, true, false, true},
		{"rain as string", `{"date":"2024-01-01","temp_in_C":18,"temp_out_C":20,"humidity_perc":5,"rain_out":"1","wind_spd_ms":2}`, true, false, false},
		{"comm_status numeric string", `{"date":"2024-01-01","comm_status":" 4 "}`, false, true, false},
		{"comm_status garbage", `{"date":"2024-01-01","comm_status":"ON_rising"}`, false, false, false},
		{"comm_status bool", `{"date":"2024-01-01","comm_status":true}`, false, true, false},
		{"overflowing temperature", `{"date":"2024-01-01","temp_in_C":1e300,"temp_out_C":20,"humidity_perc":5,"rain_out":1,"wind_spd_ms":2}`, false, false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NewPayloadCodec().Decode(encode(tc.payload))
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if (got.Sensor != nil) != tc.wantSensor {
				t.Fatalf("sensor present = %v, want %v", got.Sensor != nil, tc.wantSensor)
			}
			if (got.Command != nil) != tc.wantCommand {
				t.Fatalf("command present = %v, want %v", got.Command != nil, tc.wantCommand)
			}
			if got.Sensor != nil && got.Sensor.RainOut != tc.wantRain {
				t.Fatalf("rainOut = %v, want %v", got.Sensor.RainOut, tc.wantRain)
			}
		})
	}
}

func TestDecodeBooleansAsIntegers(t *testing.T) {
	got, err := NewPayloadCodec().Decode(encode(`{"date":"2024-01-01","temp_in_C":true,"temp_out_C":false,"humidity_perc":50,"rain_out":1,"wind_spd_ms":2,"comm_status":true}`))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.Sensor == nil || got.Sensor.TempInDeciC != 10 || got.Sensor.TempOutDeciC != 0 {
		t.Fatalf("sensor = %+v, want tempIn 10 and tempOut 0", got.Sensor)
	}
	if got.Command == nil || got.Command.ThermostatMode != 1 {
		t.Fatalf("command = %+v, want thermostat 1", got.Command)
	}
}

func TestDecodeErrors(t *testing.T) {
	cases := []struct {
		name    string
		encoded string
		stage   string
	}{
		{"not base64", "%%%not-base64", "base64"},
		{"missing padding", "eyJhIjoxfQ", "base64"},
		{"invalid utf-8", base64.StdEncoding.EncodeToString([]byte{0xff, 0xfe, 0xfd}), "utf-8"},
		{"not json", encode("hello"), "json"},
		{"json array", encode(`[1,2,3]`), "json"},
		{"trailing data", encode(`{"date":"2024-01-01"} {}`), "json"},
		{"missing date", encode(`{"temp_in_C":18,"temp_out_C":20,"comm_status":0,"humidity_perc":50,"rain_out":1,"wind_spd_ms":1.5}`), "date"},
		{"numeric date", encode(`{"date":20240101,"comm_status":0}`), "date"},
		{"unparseable date", encode(`{"date":"yesterday-ish","comm_status":0}`), "date"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewPayloadCodec().Decode(tc.encoded)
			if !errors.Is(err, entities.ErrDecode) {
				t.Fatalf("expected ErrDecode, got %v", err)
			}
			var de *entities.DecodeError
			if !errors.As(err, &de) || de.Stage != tc.stage {
				t.Fatalf("expected stage %q, got %v", tc.stage, err)
			}
		})
	}
}

func TestDecodeAcceptsSurroundingWhitespace(t *testing.T) {
	if _, err := NewPayloadCodec().Decode(encode(fullPayload) + "\n"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}
