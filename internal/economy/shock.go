package economy

import "math"

// Shock describes a supply disruption: output drops by Magnitude for
// Duration periods starting at Start, then ramps back over roughly five
// periods scaled by RecoveryRate.
type Shock struct {
	Magnitude    float64
	Duration     int
	Start        int
	RecoveryRate float64
}

// SupplyAt returns the true supply at period t given the base level. The
// trajectory is a pure function of t, so callers may evaluate any period
// in any order.
func (s Shock) SupplyAt(base float64, t int) float64 {
	end := s.Start + s.Duration
	switch {
	case t < s.Start:
		return base
	case t < end:
		return base * (1.0 - s.Magnitude)
	default:
		periodsSince := t - end
		recovery := math.Min(1.0, s.RecoveryRate*float64(periodsSince+1)/5.0)
		return base * (1.0 - s.Magnitude*(1.0-recovery))
	}
}
