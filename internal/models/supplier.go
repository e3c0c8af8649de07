package models

import (
	"time"

	"github.com/google/uuid"
)

type SupplierGrade string

const (
	GradeA SupplierGrade = "A"
	GradeB SupplierGrade = "B"
	GradeC SupplierGrade = "C"
	GradeD SupplierGrade = "D"
)

// Rank orders grades from best (A) to worst (D).
func (g SupplierGrade) Rank() int {
	switch g {
	case GradeA:
		return 0
	case GradeB:
		return 1
	case GradeC:
		return 2
	case GradeD:
		return 3
	default:
		return -1
	}
}

type Supplier struct {
	ID              uuid.UUID     `json:"id" db:"id"`
	Name            string        `json:"name" db:"name"`
	Email           *string       `json:"email" db:"email"`
	LeadTimeDays    int           `json:"lead_time_days" db:"lead_time_days"`
	Grade           SupplierGrade `json:"grade" db:"grade"`
	DeliveriesTotal int           `json:"deliveries_total" db:"deliveries_total"`
	DeliveriesLate  int           `json:"deliveries_late" db:"deliveries_late"`
	Active          bool          `json:"active" db:"active"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" db:"updated_at"`
}

// DelayRate is the share of late deliveries, zero when nothing was delivered.
func (s *Supplier) DelayRate() float64 {
	if s.DeliveriesTotal == 0 {
		return 0
	}
	return float64(s.DeliveriesLate) / float64(s.DeliveriesTotal)
}

// SupplierPerformance is the read-only snapshot exposed to dashboards.
type SupplierPerformance struct {
	SupplierID      uuid.UUID     `json:"supplier_id"`
	Name            string        `json:"name"`
	Grade           SupplierGrade `json:"grade"`
	ComputedGrade   SupplierGrade `json:"computed_grade"`
	DelayRate       float64       `json:"delay_rate"`
	DeliveriesTotal int           `json:"deliveries_total"`
	DeliveriesLate  int           `json:"deliveries_late"`
}
