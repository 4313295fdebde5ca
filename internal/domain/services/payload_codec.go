package services

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/araddon/dateparse"

	"github.com/patrik-rangel/hvac-telemetry-api/internal/domain/entities"
)

// Campos do payload enviado pelos dispositivos.
const (
	fieldDate       = "date"
	fieldTempIn     = "temp_in_C"
	fieldTempOut    = "temp_out_C"
	fieldCommStatus = "comm_status"
	fieldHumidity   = "humidity_perc"
	fieldRainOut    = "rain_out"
	fieldWindSpeed  = "wind_spd_ms"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
}

// DecodedPayload holds the records extracted from one uplink. Either may be nil.
type DecodedPayload struct {
	Sensor  *entities.SensorRecord
	Command *entities.CommandRecord
	// Missing lists the sensor and command fields that were absent or unusable.
	Missing []string
}

// PayloadCodec decodes the base64(JSON) payload sent by the devices.
type PayloadCodec struct{}

func NewPayloadCodec() *PayloadCodec {
	return &PayloadCodec{}
}

// Decode fails only when the envelope is broken or the date is unusable.
// Each record is built all-or-nothing and independently of the other.
func (c *PayloadCodec) Decode(encoded string) (DecodedPayload, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return DecodedPayload{}, &entities.DecodeError{Stage: "base64", Err: err}
	}
	if !utf8.Valid(raw) {
		return DecodedPayload{}, &entities.DecodeError{Stage: "utf-8", Err: errors.New("bytes não são UTF-8 válido")}
	}

	fields, err := decodeObject(raw)
	if err != nil {
		return DecodedPayload{}, err
	}

	date, err := parseDate(fields[fieldDate])
	if err != nil {
		return DecodedPayload{}, &entities.DecodeError{Stage: fieldDate, Err: err}
	}

	var out DecodedPayload
	out.Sensor, out.Missing = buildSensor(date, fields)

	if mode, ok := integerField(fields, fieldCommStatus); ok {
		out.Command = &entities.CommandRecord{DateTime: date, ThermostatMode: mode}
	} else {
		out.Missing = append(out.Missing, fieldCommStatus)
	}

	return out, nil
}

func decodeObject(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, &entities.DecodeError{Stage: "json", Err: err}
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, &entities.DecodeError{Stage: "json", Err: errors.New("dados após o objeto JSON")}
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, &entities.DecodeError{Stage: "json", Err: errors.New("payload não é um objeto JSON")}
	}
	return obj, nil
}

func parseDate(v any) (time.Time, error) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, errors.New("campo date ausente ou não é texto")
	}
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func buildSensor(date time.Time, fields map[string]any) (*entities.SensorRecord, []string) {
	var missing []string
	deci := func(name string) int64 {
		v, ok := deciField(fields, name)
		if !ok {
			missing = append(missing, name)
		}
		return v
	}

	rec := entities.SensorRecord{
		DateTime:         date,
		TempInDeciC:      deci(fieldTempIn),
		TempOutDeciC:     deci(fieldTempOut),
		WindSpeedDeciMs:  deci(fieldWindSpeed),
		HumidityDeciPerc: deci(fieldHumidity),
	}

	rain, present := fields[fieldRainOut]
	if !present {
		missing = append(missing, fieldRainOut)
	}
	rec.RainOut = isOne(rain)

	if len(missing) > 0 {
		return nil, missing
	}
	return &rec, nil
}

// deciField returns value*10 truncated toward zero. JSON numbers and booleans
// (true as 1, false as 0) are accepted.
func deciField(fields map[string]any, name string) (int64, bool) {
	switch v := fields[name].(type) {
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return truncate(f * 10)
	case bool:
		return boolInt(v) * 10, true
	default:
		return 0, false
	}
}

// integerField accepts a JSON number (truncated toward zero), a boolean
// or a base-10 integer string.
func integerField(fields map[string]any, name string) (int64, bool) {
	switch v := fields[name].(type) {
	case bool:
		return boolInt(v), true
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, true
		}
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return truncate(f)
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

func truncate(f float64) (int64, bool) {
	t := math.Trunc(f)
	if math.IsNaN(t) || t >= math.MaxInt64 || t < math.MinInt64 {
		return 0, false
	}
	return int64(t), true
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// isOne keeps the devices' convention: rain is reported as the number 1.
// true compares equal to 1; strings never do.
func isOne(v any) bool {
	switch n := v.(type) {
	case bool:
		return n
	case json.Number:
		f, err := n.Float64()
		return err == nil && f == 1
	default:
		return false
	}
}
