package feed

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/speedwagon-io/vitaldash/internal/lib/logger/sl"
	"github.com/speedwagon-io/vitaldash/internal/model"
)

const (
	// Columns is the number of cells in a sensor row; the error row spans all of them.
	Columns = 4

	ErrorText = "Error loading data"
)

// Classify derives the tier of a reading. Rules are evaluated in order and
// the first match wins.
func Classify(r model.SensorReading) model.Tier {
	switch {
	case r.HeartRate > 100 || r.Temp > 38:
		return model.TierDanger
	case r.HeartRate > 85 || r.Temp > 37.5:
		return model.TierWarning
	default:
		return model.TierNormal
	}
}

// RowView is one rendered sensor table row.
type RowView struct {
	Temp        string     `json:"temp"`
	HeartRate   string     `json:"heart_rate"`
	Accel       string     `json:"accel"`
	StatusClass string     `json:"status_class"`
	StatusLabel string     `json:"status_label"`
	Tier        model.Tier `json:"tier"`
}

// Table is the complete body of the sensor table. When Error is set the
// body is a single row spanning all columns and Rows is empty.
type Table struct {
	Rows    []RowView
	Error   string
	Columns int
}

func (t Table) Counts() map[model.Tier]int {
	counts := make(map[model.Tier]int, len(model.Tiers))
	for _, r := range t.Rows {
		counts[r.Tier]++
	}
	return counts
}

func RenderReadings(readings []model.SensorReading) Table {
	rows := make([]RowView, 0, len(readings))
	for _, r := range readings {
		tier := Classify(r)
		rows = append(rows, RowView{
			Temp:        toFixed2(r.Temp),
			HeartRate:   toFixed2(r.HeartRate),
			Accel:       fmt.Sprintf("(%s, %s, %s)", toFixed2(r.AccelX), toFixed2(r.AccelY), toFixed2(r.AccelZ)),
			StatusClass: tier.CellClass(),
			StatusLabel: tier.Label(),
			Tier:        tier,
		})
	}
	return Table{Rows: rows, Columns: Columns}
}

// toFixed2 formats v with two decimals, breaking exact ties away from zero
// the way browsers do. %.2f alone would round them to even.
//
// A double sits exactly halfway between two hundredths only when it is an
// odd multiple of 1/8, so 36.625 is a tie while 1.005 (stored as
// 1.00499...) is not.
func toFixed2(v float64) string {
	if v == 0 {
		return "0.00"
	}

	abs := math.Abs(v)
	eighths := abs * 8
	if eighths < 1<<52 && eighths == math.Trunc(eighths) && math.Mod(eighths, 2) == 1 {
		rounded := math.Ceil(abs*100) / 100
		return fmt.Sprintf("%.2f", math.Copysign(rounded, v))
	}

	return fmt.Sprintf("%.2f", v)
}

func ErrorTable() Table {
	return Table{Error: ErrorText, Columns: Columns}
}

// Source is anything that can produce the current readings.
type Source interface {
	Fetch(ctx context.Context) ([]model.SensorReading, error)
}

// Observer is told the outcome of every load.
type Observer interface {
	ObserveFetch(err error)
	ObserveTable(t Table)
}

type Renderer struct {
	log      *slog.Logger
	source   Source
	observer Observer
}

func NewRenderer(log *slog.Logger, source Source, observer Observer) *Renderer {
	return &Renderer{
		log:      log,
		source:   source,
		observer: observer,
	}
}

// Load runs one fetch-then-render pass. It never fails: any fetch or parse
// error is logged and turned into the error table. There is no retry.
func (r *Renderer) Load(ctx context.Context) Table {
	readings, err := r.source.Fetch(ctx)
	if r.observer != nil {
		r.observer.ObserveFetch(err)
	}
	if err != nil {
		r.log.Error("failed to load sensor data", sl.Err(err))
		return ErrorTable()
	}

	table := RenderReadings(readings)
	if r.observer != nil {
		r.observer.ObserveTable(table)
	}
	return table
}
