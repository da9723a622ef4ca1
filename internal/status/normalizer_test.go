package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/speedwagon-io/vitaldash/internal/config"
	"github.com/speedwagon-io/vitaldash/internal/lib/logger/sl"
	"github.com/speedwagon-io/vitaldash/internal/model"
)

func row(name, status string) Row {
	return Row{Cells: []string{name}, Status: &Cell{Class: "status", Text: status}}
}

func labels(rows []Row) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		if r.Status == nil {
			out = append(out, "")
			continue
		}
		out = append(out, r.Status.Text)
	}
	return out
}

func names(rows []Row) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Cells[0])
	}
	return out
}

func TestNormalizeRewritesRecognisedRows(t *testing.T) {
	n := NewNormalizer(sl.Discard(), config.MatchSubstring)

	tests := []struct {
		text string
		tier model.Tier
	}{
		{"  DANGER ", model.TierDanger},
		{"in danger zone", model.TierDanger},
		{"Warning!", model.TierWarning},
		{"\tnormal\n", model.TierNormal},
		{"abnormal", model.TierNormal},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			out := n.Normalize([]Row{row("a", tt.text)})
			require.Len(t, out, 1)

			style, ok := tt.tier.Style()
			require.True(t, ok)
			assert.Equal(t, tt.tier, out[0].Tier)
			assert.Equal(t, "status "+style.Class, out[0].Status.Class)
			assert.Equal(t, style.Label, out[0].Status.Text)
			assert.Equal(t, style.Background, out[0].Status.Background)
			assert.Equal(t, style.TextColor, out[0].Status.Color)
		})
	}
}

func TestNormalizeDeclarationOrderTieBreak(t *testing.T) {
	n := NewNormalizer(sl.Discard(), config.MatchSubstring)

	out := n.Normalize([]Row{row("a", "non-normal-danger")})
	assert.Equal(t, model.TierDanger, out[0].Tier)

	out = n.Normalize([]Row{row("b", "normal then warning")})
	assert.Equal(t, model.TierWarning, out[0].Tier)
}

func TestNormalizeSortsByPriority(t *testing.T) {
	n := NewNormalizer(sl.Discard(), config.MatchSubstring)

	out := n.Normalize([]Row{
		row("n1", "normal"),
		row("w1", "warning"),
		row("d1", "danger"),
		row("n2", "Normal"),
		row("d2", "DANGER"),
	})

	assert.Equal(t, []string{"d1", "d2", "w1", "n1", "n2"}, names(out))
	for i := 1; i < len(out); i++ {
		assert.LessOrEqual(t, out[i-1].Tier.Priority(), out[i].Tier.Priority())
	}
}

func TestNormalizeLeavesUnknownRowsUnchanged(t *testing.T) {
	n := NewNormalizer(sl.Discard(), config.MatchSubstring)

	in := []Row{
		row("u1", "on leave"),
		{Cells: []string{"nocell"}},
		row("n1", "normal"),
		row("u2", "  Off Shift "),
	}

	out := n.Normalize(in)

	assert.Equal(t, []string{"n1", "u1", "nocell", "u2"}, names(out))
	assert.Equal(t, "on leave", out[1].Status.Text)
	assert.Equal(t, "status", out[1].Status.Class)
	assert.Empty(t, out[1].Status.Background)
	assert.Nil(t, out[2].Status)
	assert.Equal(t, "  Off Shift ", out[3].Status.Text)
	assert.Equal(t, model.TierUnknown, out[3].Tier)
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	n := NewNormalizer(sl.Discard(), config.MatchSubstring)

	in := []Row{row("n1", "normal"), row("d1", "danger")}
	_ = n.Normalize(in)

	assert.Equal(t, []string{"n1", "d1"}, names(in))
	assert.Equal(t, "danger", in[1].Status.Text)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	n := NewNormalizer(sl.Discard(), config.MatchSubstring)

	once := n.Normalize([]Row{
		row("w1", "warning"),
		row("u1", "???"),
		row("d1", " danger "),
		row("n1", "normal"),
	})
	twice := n.Normalize(once)

	assert.Equal(t, once, twice)
}

func TestNormalizeExactMode(t *testing.T) {
	n := NewNormalizer(sl.Discard(), config.MatchExact)

	out := n.Normalize([]Row{
		row("a", "non-normal-danger"),
		row("b", "  Danger "),
	})

	assert.Equal(t, []string{"b", "a"}, names(out))
	assert.Equal(t, []string{"Danger", "non-normal-danger"}, labels(out))
	assert.Equal(t, model.TierUnknown, out[1].Tier)
}

func TestNormalizeEmpty(t *testing.T) {
	n := NewNormalizer(sl.Discard(), config.MatchSubstring)

	assert.Empty(t, n.Normalize(nil))
	assert.Empty(t, RowsFromRoster(nil))
}

func TestRowsFromRoster(t *testing.T) {
	rows := RowsFromRoster(&config.Roster{
		Employees: []config.EmployeeConfig{
			{Name: "Ada", Department: "Ops", Status: "danger"},
		},
	})

	require.Len(t, rows, 1)
	assert.Equal(t, []string{"Ada", "Ops"}, rows[0].Cells)
	assert.Equal(t, "danger", rows[0].Status.Text)
}
