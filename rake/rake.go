// Package rake keeps basis-point fee bookkeeping exact across hands: the
// fractional part of every hand's rake is carried forward instead of being
// truncated away, so small pots still pay their share over time.
package rake

// BpsDenominator converts basis points to a fraction (50 bps = 0.5%).
const BpsDenominator = 10000

// Accumulator tracks collectible fees in 1/10000-chip units.
type Accumulator struct {
	RateBps       int64 `json:"rate_bps"`
	FractionUnits int64 `json:"fraction_units"` // pending fee x 10000
}

func NewAccumulator(rateBps int64) *Accumulator {
	return &Accumulator{RateBps: rateBps}
}

// Rake charges the configured rate against a settled pot and returns the
// whole chips that became collectible, leaving the fractional remainder in
// the accumulator for future hands.
func (a *Accumulator) Rake(pot int64) int64 {
	if a.RateBps <= 0 || pot <= 0 {
		return 0
	}
	a.FractionUnits += pot * a.RateBps
	whole := a.FractionUnits / BpsDenominator
	a.FractionUnits -= whole * BpsDenominator
	return whole
}

// Pending reports the fee fraction (in 1/10000 chip) not yet collectible.
func (a *Accumulator) Pending() int64 {
	return a.FractionUnits
}
