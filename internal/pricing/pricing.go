package pricing

import (
	"math"

	models "github.com/adriaticstays/booking-api/internal"
)

// Input is everything the price of a stay depends on. Fee amounts come from
// configuration; the extra-bed fee applies only when the listing carries the
// capability flag.
type Input struct {
	Nights           int
	NightlyRate      float64
	HasPets          bool
	ExtraBed         bool
	SupportsExtraBed bool
	DiscountPercent  float64
	PetFee           float64
	ExtraBedFee      float64
	Currency         string
}

// Calculate derives a quote from the input. It is a pure function: identical
// inputs always produce an identical quote, so recomputation never drifts.
// Rounding happens only in Quote.MinorUnits, not here.
func Calculate(in Input) models.PriceQuote {
	q := models.PriceQuote{
		Nights:      in.Nights,
		NightlyRate: in.NightlyRate,
		Currency:    in.Currency,
	}
	if in.Nights <= 0 {
		return q
	}

	subtotal := float64(in.Nights) * in.NightlyRate
	if in.HasPets {
		q.PetFee = in.PetFee
		subtotal += in.PetFee
	}
	if in.ExtraBed && in.SupportsExtraBed {
		q.ExtraBedFee = in.ExtraBedFee
		subtotal += in.ExtraBedFee
	}

	total := subtotal
	if in.DiscountPercent > 0 {
		q.DiscountPercent = in.DiscountPercent
		// discount applies to the full fee-inclusive subtotal
		total -= subtotal * in.DiscountPercent / 100
	}
	if total < 0 {
		total = 0
	}
	q.Total = total
	return q
}

// MinorUnits converts a quote total to minor currency units for submission.
// This is the only place rounding to currency precision happens.
func MinorUnits(q models.PriceQuote) int64 {
	return int64(math.Round(q.Total * 100))
}
