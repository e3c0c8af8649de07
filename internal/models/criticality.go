package models

// Criticality is the business importance of a material for production
// continuity. Values form a total order; comparisons go through Rank so the
// ordering stays explicit when levels are added.
type Criticality string

const (
	CriticalityLow      Criticality = "LOW"
	CriticalityMedium   Criticality = "MEDIUM"
	CriticalityHigh     Criticality = "HIGH"
	CriticalityBlocking Criticality = "BLOCKING"
)

func (c Criticality) Rank() int {
	switch c {
	case CriticalityLow:
		return 0
	case CriticalityMedium:
		return 1
	case CriticalityHigh:
		return 2
	case CriticalityBlocking:
		return 3
	default:
		return -1
	}
}

func (c Criticality) Valid() bool {
	return c.Rank() >= 0
}

// MaxCriticality returns the more severe of the two levels.
func MaxCriticality(a, b Criticality) Criticality {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// RiskState is the derived stock-health band of a material, recomputed from
// the movement ledger, never stored as authoritative truth.
type RiskState string

const (
	RiskHealthy     RiskState = "HEALTHY"
	RiskBelowSafety RiskState = "BELOW_SAFETY"
	RiskToOrder     RiskState = "TO_ORDER"
	RiskOutOfStock  RiskState = "OUT_OF_STOCK"
	RiskBlocking    RiskState = "BLOCKING"
)

func (s RiskState) Rank() int {
	switch s {
	case RiskHealthy:
		return 0
	case RiskBelowSafety:
		return 1
	case RiskToOrder:
		return 2
	case RiskOutOfStock:
		return 3
	case RiskBlocking:
		return 4
	default:
		return -1
	}
}
