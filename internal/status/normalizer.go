// Package status reclassifies the free-text status cells of the employee
// table and orders the rows by severity.
package status

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/speedwagon-io/vitaldash/internal/config"
	"github.com/speedwagon-io/vitaldash/internal/model"
)

// Cell is the status cell of a row as it is displayed.
type Cell struct {
	Class      string `json:"class"`
	Text       string `json:"text"`
	Background string `json:"background,omitempty"`
	Color      string `json:"color,omitempty"`
}

// Row is one employee table row. Status is nil when the row has no
// status cell.
type Row struct {
	Cells  []string
	Status *Cell
	Tier   model.Tier
}

type Normalizer struct {
	log   *slog.Logger
	exact bool
}

func NewNormalizer(log *slog.Logger, matchMode string) *Normalizer {
	return &Normalizer{
		log:   log,
		exact: matchMode == config.MatchExact,
	}
}

// Match returns the tier whose key is found in text, walking the tiers in
// declaration order.
func (n *Normalizer) Match(text string) (model.Tier, bool) {
	text = strings.ToLower(strings.TrimSpace(text))
	for _, tier := range model.Tiers {
		key := string(tier)
		if n.exact {
			if text == key {
				return tier, true
			}
			continue
		}
		if strings.Contains(text, key) {
			return tier, true
		}
	}
	return model.TierUnknown, false
}

// Normalize rewrites the status cell of every recognised row to its tier's
// canonical class, colours and label, then stable-sorts all rows by tier
// priority. Unrecognised rows keep their content and sort last. The input
// slice is left untouched.
func (n *Normalizer) Normalize(rows []Row) []Row {
	out := make([]Row, len(rows))
	unknown := 0

	for i, row := range rows {
		out[i] = row
		out[i].Tier = model.TierUnknown

		if row.Status == nil {
			unknown++
			continue
		}

		tier, ok := n.Match(row.Status.Text)
		if !ok {
			unknown++
			continue
		}

		style, _ := tier.Style()
		out[i].Tier = tier
		out[i].Status = &Cell{
			Class:      tier.CellClass(),
			Text:       style.Label,
			Background: style.Background,
			Color:      style.TextColor,
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Tier.Priority() < out[j].Tier.Priority()
	})

	if unknown > 0 {
		n.log.Debug("rows without a recognised status",
			slog.Int("unknown", unknown),
			slog.Int("total", len(rows)),
		)
	}

	return out
}

// RowsFromRoster builds the table rows for the configured employees. The
// status column is always the last cell.
func RowsFromRoster(roster *config.Roster) []Row {
	if roster == nil {
		return nil
	}

	rows := make([]Row, 0, len(roster.Employees))
	for _, e := range roster.Employees {
		rows = append(rows, Row{
			Cells:  []string{e.Name, e.Department},
			Status: &Cell{Class: "status", Text: e.Status},
		})
	}
	return rows
}
