package models

import (
	"time"

	"github.com/google/uuid"
)

// Listing is a bookable unit supplied by the external data store. SupportsExtraBed
// is a per-listing capability flag; the extra-bed fee only ever applies when it is set.
type Listing struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description,omitempty"`
	NightlyPrice     float64   `json:"nightly_price"`
	ImageURL         string    `json:"image_url,omitempty"`
	SupportsExtraBed bool      `json:"supports_extra_bed"`
}

// ExistingBooking is a read-only reservation record for a listing. The check-out
// day itself is not occupied: it is free for a new arrival.
type ExistingBooking struct {
	CheckIn  time.Time `json:"check_in"`
	CheckOut time.Time `json:"check_out"`
}

type Guest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Country string `json:"country"`
	Phone   string `json:"phone"`
	Count   int    `json:"count"`
}

// DraftBooking is the in-progress, unsubmitted guest selection for one session.
type DraftBooking struct {
	CheckIn  *time.Time `json:"check_in,omitempty"`
	CheckOut *time.Time `json:"check_out,omitempty"`
	Guest    Guest      `json:"guest"`
	HasPets  bool       `json:"has_pets"`
	ExtraBed bool       `json:"extra_bed"`
}

type Coupon struct {
	ID              uuid.UUID `json:"id"`
	Code            string    `json:"code"`
	DiscountPercent float64   `json:"discount_percent"`
	IsActive        bool      `json:"is_active"`
	ExpiresAt       time.Time `json:"expires_at"`
}

// Valid reports whether the coupon may be applied at the given instant.
func (c *Coupon) Valid(at time.Time) bool {
	return c.IsActive && c.ExpiresAt.After(at)
}

type SessionState string

const (
	StateEditing    SessionState = "EDITING"
	StateReviewing  SessionState = "REVIEWING"
	StateConfirming SessionState = "CONFIRMING"
	StateRedirected SessionState = "REDIRECTED"
)

type CreateSessionRequest struct {
	ListingID uuid.UUID `json:"listing_id" validate:"required"`
}

// UpdateDraftRequest carries partial draft updates; nil fields are left untouched.
// Dates are calendar days in 2006-01-02 form.
type UpdateDraftRequest struct {
	CheckIn    *string `json:"check_in,omitempty"`
	CheckOut   *string `json:"check_out,omitempty"`
	GuestName  *string `json:"guest_name,omitempty" validate:"omitempty,min=2,max=100"`
	GuestEmail *string `json:"guest_email,omitempty" validate:"omitempty,email"`
	Country    *string `json:"country,omitempty" validate:"omitempty,min=2,max=56"`
	Phone      *string `json:"phone,omitempty" validate:"omitempty,phone"`
	GuestCount *int    `json:"guest_count,omitempty" validate:"omitempty,gte=1,lte=4"`
	HasPets    *bool   `json:"has_pets,omitempty"`
	ExtraBed   *bool   `json:"extra_bed,omitempty"`
}

type ApplyCouponRequest struct {
	Code string `json:"code"`
}

type AppliedCoupon struct {
	Code            string  `json:"code"`
	DiscountPercent float64 `json:"discount_percent"`
}

// PriceQuote is derived on every relevant input change and never stored.
type PriceQuote struct {
	Nights          int     `json:"nights"`
	NightlyRate     float64 `json:"nightly_rate"`
	PetFee          float64 `json:"pet_fee"`
	ExtraBedFee     float64 `json:"extra_bed_fee"`
	DiscountPercent float64 `json:"discount_percent"`
	Total           float64 `json:"total"`
	Currency        string  `json:"currency"`
}

type SessionResponse struct {
	ID        uuid.UUID      `json:"id"`
	State     SessionState   `json:"state"`
	Listing   Listing        `json:"listing"`
	Draft     DraftBooking   `json:"draft"`
	Coupon    *AppliedCoupon `json:"coupon,omitempty"`
	Quote     PriceQuote     `json:"quote"`
	Blocked   []string       `json:"blocked_dates"`
	ExpiresAt time.Time      `json:"expires_at"`
}

type ConfirmResponse struct {
	RedirectURL string `json:"redirect_url"`
}

type CalendarResponse struct {
	ListingID uuid.UUID `json:"listing_id"`
	Blocked   []string  `json:"blocked_dates"`
}

type ListingsResponse struct {
	Listings []Listing `json:"listings"`
}

// CheckoutLineItem is the single line item of a checkout-session request,
// with the amount in minor currency units.
type CheckoutLineItem struct {
	Name       string `json:"name"`
	UnitAmount int64  `json:"unit_amount"`
	Quantity   int    `json:"quantity"`
	Currency   string `json:"currency"`
}

// CheckoutRequest is the payment-session creation payload for the hosted
// checkout collaborator.
type CheckoutRequest struct {
	SuccessURL    string            `json:"success_url"`
	CancelURL     string            `json:"cancel_url"`
	CustomerEmail string            `json:"customer_email"`
	LineItem      CheckoutLineItem  `json:"line_item"`
	Metadata      map[string]string `json:"metadata"`
}
