package booking

import (
	"time"

	"github.com/nusastay/service-rental/internal/domain/catalog"
)

// Interval is a half-open [Start, End) time range. The half-open convention
// lets a checkout day double as the next booking's check-in day.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two half-open intervals intersect:
// [a,b) and [c,d) overlap iff a < d && c < b.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// OverlapPolicy decides whether a unit type requires exclusive use of the
// service over the booked range.
type OverlapPolicy interface {
	// RequiresExclusiveUse returns true if bookings of this unit must not
	// overlap one another.
	RequiresExclusiveUse(unit catalog.Unit) bool
}

// UnitOverlapPolicy enforces exclusivity for day-unit bookings and makes
// hourly exclusivity configurable. Hourly resources may be shared (several
// time-slot customers at once), so the guard defaults to off for them.
type UnitOverlapPolicy struct {
	guardHourly bool
}

// NewUnitOverlapPolicy creates an OverlapPolicy. guardHourly enables overlap
// checking for per_hour services.
func NewUnitOverlapPolicy(guardHourly bool) *UnitOverlapPolicy {
	return &UnitOverlapPolicy{guardHourly: guardHourly}
}

// RequiresExclusiveUse implements OverlapPolicy.
func (p *UnitOverlapPolicy) RequiresExclusiveUse(unit catalog.Unit) bool {
	if unit == catalog.UnitPerHour {
		return p.guardHourly
	}
	return true
}

// FindConflict returns the first existing interval that overlaps the
// candidate, or nil. Cancelled bookings must be excluded by the caller.
func FindConflict(candidate Interval, existing []Interval) *Interval {
	for i := range existing {
		if candidate.Overlaps(existing[i]) {
			return &existing[i]
		}
	}
	return nil
}
