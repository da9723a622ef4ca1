package model

// Tier is the severity class assigned to an employee status cell or a
// sensor reading.
type Tier string

const (
	TierDanger  Tier = "danger"
	TierWarning Tier = "warning"
	TierNormal  Tier = "normal"
	TierUnknown Tier = "unknown"
)

// TierStyle is the fixed presentation of a tier.
type TierStyle struct {
	Class      string
	Label      string
	Background string
	TextColor  string
	Priority   int
}

// Tiers lists the recognised tiers in declaration order. Matching walks
// this order, so the first key found wins.
var Tiers = []Tier{TierDanger, TierWarning, TierNormal}

var tierStyles = map[Tier]TierStyle{
	TierDanger:  {Class: "danger", Label: "Danger", Background: "#ef4444", TextColor: "white", Priority: 1},
	TierWarning: {Class: "warning", Label: "Warning", Background: "#facc15", TextColor: "black", Priority: 2},
	TierNormal:  {Class: "normal", Label: "Normal", Background: "#22c55e", TextColor: "white", Priority: 3},
}

// UnknownPriority sorts rows without a recognised tier after every known one.
const UnknownPriority = 4

func (t Tier) Style() (TierStyle, bool) {
	s, ok := tierStyles[t]
	return s, ok
}

func (t Tier) Priority() int {
	if s, ok := tierStyles[t]; ok {
		return s.Priority
	}
	return UnknownPriority
}

func (t Tier) Label() string {
	if s, ok := tierStyles[t]; ok {
		return s.Label
	}
	return "Unknown"
}

// CellClass is the class attribute of a status cell carrying this tier.
func (t Tier) CellClass() string {
	return "status " + string(t)
}
