package pricing_test

import (
	"testing"

	"github.com/adriaticstays/booking-api/internal/pricing"
	"github.com/stretchr/testify/assert"
)

func baseInput() pricing.Input {
	return pricing.Input{
		Nights:      3,
		NightlyRate: 100,
		PetFee:      20,
		ExtraBedFee: 15,
		Currency:    "eur",
	}
}

func TestCalculate(t *testing.T) {
	t.Run("zero nights means zero total", func(t *testing.T) {
		in := baseInput()
		in.Nights = 0
		in.HasPets = true
		in.DiscountPercent = 50

		q := pricing.Calculate(in)
		assert.Equal(t, 0.0, q.Total)
		assert.Equal(t, int64(0), pricing.MinorUnits(q))
	})

	t.Run("plain stay is nights times rate", func(t *testing.T) {
		q := pricing.Calculate(baseInput())
		assert.Equal(t, 300.0, q.Total)
		assert.Equal(t, int64(30000), pricing.MinorUnits(q))
	})

	t.Run("pet fee added once", func(t *testing.T) {
		in := baseInput()
		in.HasPets = true

		q := pricing.Calculate(in)
		assert.Equal(t, 320.0, q.Total)
		assert.Equal(t, 20.0, q.PetFee)
	})

	t.Run("extra bed requires listing capability", func(t *testing.T) {
		in := baseInput()
		in.ExtraBed = true

		q := pricing.Calculate(in)
		assert.Equal(t, 300.0, q.Total)
		assert.Equal(t, 0.0, q.ExtraBedFee)

		in.SupportsExtraBed = true
		q = pricing.Calculate(in)
		assert.Equal(t, 315.0, q.Total)
		assert.Equal(t, 15.0, q.ExtraBedFee)
	})

	t.Run("coupon discounts the fee-inclusive subtotal", func(t *testing.T) {
		in := baseInput()
		in.Nights = 1
		in.DiscountPercent = 20

		q := pricing.Calculate(in)
		assert.Equal(t, 80.0, q.Total)

		in.HasPets = true
		q = pricing.Calculate(in)
		// (100 + 20) * 0.8
		assert.Equal(t, 96.0, q.Total)
	})

	t.Run("ten percent coupon on three nights", func(t *testing.T) {
		in := baseInput()
		in.DiscountPercent = 10

		q := pricing.Calculate(in)
		assert.Equal(t, 270.0, q.Total)
		assert.Equal(t, int64(27000), pricing.MinorUnits(q))
	})

	t.Run("recomputation is idempotent", func(t *testing.T) {
		in := baseInput()
		in.HasPets = true
		in.DiscountPercent = 17.5

		first := pricing.Calculate(in)
		for i := 0; i < 50; i++ {
			assert.Equal(t, first, pricing.Calculate(in))
		}
	})

	t.Run("full discount never goes negative", func(t *testing.T) {
		in := baseInput()
		in.DiscountPercent = 100

		q := pricing.Calculate(in)
		assert.Equal(t, 0.0, q.Total)
		assert.GreaterOrEqual(t, q.Total, 0.0)
	})
}

func TestMinorUnits(t *testing.T) {
	in := baseInput()
	in.Nights = 1
	in.NightlyRate = 123.456

	q := pricing.Calculate(in)
	// rounding happens here, not inside Calculate
	assert.Equal(t, 123.456, q.Total)
	assert.Equal(t, int64(12346), pricing.MinorUnits(q))
}
