package validator_test

import (
	"testing"

	models "github.com/adriaticstays/booking-api/internal"
	"github.com/adriaticstays/booking-api/internal/validator"
	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestValidateUpdateDraftRequest(t *testing.T) {
	cv := validator.NewCustomValidator()

	t.Run("empty request is valid", func(t *testing.T) {
		assert.NoError(t, cv.Validate(&models.UpdateDraftRequest{}))
	})

	t.Run("full valid request", func(t *testing.T) {
		req := &models.UpdateDraftRequest{
			GuestName:  strPtr("Ana Horvat"),
			GuestEmail: strPtr("ana@example.com"),
			Country:    strPtr("Croatia"),
			Phone:      strPtr("+385 91 234 5678"),
			GuestCount: intPtr(2),
		}
		assert.NoError(t, cv.Validate(req))
	})

	t.Run("invalid email", func(t *testing.T) {
		req := &models.UpdateDraftRequest{GuestEmail: strPtr("not-an-email")}
		assert.Error(t, cv.Validate(req))
	})

	t.Run("guest count bounds", func(t *testing.T) {
		assert.Error(t, cv.Validate(&models.UpdateDraftRequest{GuestCount: intPtr(0)}))
		assert.Error(t, cv.Validate(&models.UpdateDraftRequest{GuestCount: intPtr(5)}))
		assert.NoError(t, cv.Validate(&models.UpdateDraftRequest{GuestCount: intPtr(1)}))
		assert.NoError(t, cv.Validate(&models.UpdateDraftRequest{GuestCount: intPtr(4)}))
	})

	t.Run("phone numbers", func(t *testing.T) {
		valid := []string{"+385912345678", "0044 20 7946 0958", "+1 (212) 555-0100"}
		for _, p := range valid {
			assert.NoError(t, cv.Validate(&models.UpdateDraftRequest{Phone: strPtr(p)}), p)
		}

		invalid := []string{"abc", "12", "+"}
		for _, p := range invalid {
			assert.Error(t, cv.Validate(&models.UpdateDraftRequest{Phone: strPtr(p)}), p)
		}
	})

	t.Run("short name", func(t *testing.T) {
		assert.Error(t, cv.Validate(&models.UpdateDraftRequest{GuestName: strPtr("A")}))
	})
}
