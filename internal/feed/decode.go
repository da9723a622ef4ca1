package feed

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/speedwagon-io/vitaldash/internal/model"
)

var (
	// ErrNetwork covers a failed request or a non-success status.
	ErrNetwork = errors.New("network failure")
	// ErrParse covers an undecodable body or a payload missing fields.
	ErrParse = errors.New("parse failure")
)

// number accepts a JSON number or a numeric string.
type number float64

func (n *number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return errors.New("null value")
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("invalid numeric string %q", s)
		}
		*n = number(f)
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = number(f)
	return nil
}

// columns is the struct-of-arrays shape: {"sensor_outputs": {"Temp": [...], ...}}.
type columns struct {
	Temp      []number `json:"Temp"`
	HeartRate []number `json:"HeartRate"`
	AccelX    []number `json:"AccelX"`
	AccelY    []number `json:"AccelY"`
	AccelZ    []number `json:"AccelZ"`
}

type columnsPayload struct {
	SensorOutputs *columns `json:"sensor_outputs"`
}

// record is one element of the array-of-records shape.
type record struct {
	Temp      *number `json:"Temp"`
	HeartRate *number `json:"HeartRate"`
	AccelX    *number `json:"AccelX"`
	AccelY    *number `json:"AccelY"`
	AccelZ    *number `json:"AccelZ"`
}

// Decode parses a feed body in either the struct-of-arrays or the
// array-of-records shape into a single reading sequence. Every failure
// wraps ErrParse.
func Decode(body []byte) ([]model.SensorReading, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrParse)
	}

	switch body[0] {
	case '{':
		return decodeColumns(body)
	case '[':
		return decodeRecords(body)
	default:
		return nil, fmt.Errorf("%w: unexpected payload starting with %q", ErrParse, body[0])
	}
}

func decodeColumns(body []byte) ([]model.SensorReading, error) {
	var payload columnsPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal sensor_outputs: %v", ErrParse, err)
	}

	cols := payload.SensorOutputs
	if cols == nil {
		return nil, fmt.Errorf("%w: missing sensor_outputs in response", ErrParse)
	}

	n := len(cols.Temp)
	fields := map[string][]number{
		"HeartRate": cols.HeartRate,
		"AccelX":    cols.AccelX,
		"AccelY":    cols.AccelY,
		"AccelZ":    cols.AccelZ,
	}
	for name, values := range fields {
		if len(values) < n {
			return nil, fmt.Errorf("%w: %s has %d values, Temp has %d", ErrParse, name, len(values), n)
		}
	}

	readings := make([]model.SensorReading, n)
	for i := 0; i < n; i++ {
		readings[i] = model.SensorReading{
			Temp:      float64(cols.Temp[i]),
			HeartRate: float64(cols.HeartRate[i]),
			AccelX:    float64(cols.AccelX[i]),
			AccelY:    float64(cols.AccelY[i]),
			AccelZ:    float64(cols.AccelZ[i]),
		}
	}

	return readings, nil
}

func decodeRecords(body []byte) ([]model.SensorReading, error) {
	var records []record
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal records: %v", ErrParse, err)
	}

	readings := make([]model.SensorReading, 0, len(records))
	for i, r := range records {
		if missing := r.missing(); missing != "" {
			return nil, fmt.Errorf("%w: record %d is missing %s", ErrParse, i, missing)
		}
		readings = append(readings, model.SensorReading{
			Temp:      float64(*r.Temp),
			HeartRate: float64(*r.HeartRate),
			AccelX:    float64(*r.AccelX),
			AccelY:    float64(*r.AccelY),
			AccelZ:    float64(*r.AccelZ),
		})
	}

	return readings, nil
}

func (r record) missing() string {
	switch {
	case r.Temp == nil:
		return "Temp"
	case r.HeartRate == nil:
		return "HeartRate"
	case r.AccelX == nil:
		return "AccelX"
	case r.AccelY == nil:
		return "AccelY"
	case r.AccelZ == nil:
		return "AccelZ"
	}
	return ""
}
