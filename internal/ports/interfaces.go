package ports

import (
	"context"

	models "github.com/adriaticstays/booking-api/internal"
	"github.com/google/uuid"
)

// Store is the read-only view of the external data store. This core never
// writes: persistence truth lives with the collaborator.
type Store interface {
	Listings(ctx context.Context) ([]models.Listing, error)
	ListingByID(ctx context.Context, id uuid.UUID) (*models.Listing, error)
	BookingsForListing(ctx context.Context, listingID uuid.UUID) ([]models.ExistingBooking, error)
	CouponByCode(ctx context.Context, code string) (*models.Coupon, error)
}

// CheckoutClient creates a hosted payment-checkout session and returns the
// redirect URL the caller should navigate to.
type CheckoutClient interface {
	CreateSession(ctx context.Context, req models.CheckoutRequest) (string, error)
}

type BookingService interface {
	Listings(ctx context.Context) (*models.ListingsResponse, error)
	Calendar(ctx context.Context, listingID uuid.UUID) (*models.CalendarResponse, error)

	CreateSession(ctx context.Context, listingID uuid.UUID) (*models.SessionResponse, error)
	GetSession(ctx context.Context, sessionID uuid.UUID) (*models.SessionResponse, error)
	UpdateDraft(ctx context.Context, sessionID uuid.UUID, req *models.UpdateDraftRequest) (*models.SessionResponse, error)
	ApplyCoupon(ctx context.Context, sessionID uuid.UUID, code string) (*models.SessionResponse, error)
	ClearCoupon(ctx context.Context, sessionID uuid.UUID) (*models.SessionResponse, error)
	Review(ctx context.Context, sessionID uuid.UUID) (*models.SessionResponse, error)
	Back(ctx context.Context, sessionID uuid.UUID) (*models.SessionResponse, error)
	Confirm(ctx context.Context, sessionID uuid.UUID) (*models.ConfirmResponse, error)
	CloseSession(ctx context.Context, sessionID uuid.UUID) error
}
