package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	models "github.com/adriaticstays/booking-api/internal"
	"github.com/adriaticstays/booking-api/internal/availability"
	"github.com/adriaticstays/booking-api/internal/ports"
	"github.com/adriaticstays/booking-api/internal/pricing"
	"github.com/adriaticstays/booking-api/internal/validator"
	"github.com/adriaticstays/booking-api/pkg/config"
	govalidator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// session is the single-writer owner of one booking draft. All reads and
// writes go through mu; network calls never run while it is held.
type session struct {
	mu          sync.Mutex
	id          uuid.UUID
	listing     models.Listing
	draft       models.DraftBooking
	coupon      *models.Coupon
	blocked     availability.BlockedDates
	state       models.SessionState
	redirectURL string
	expiresAt   time.Time
	closed      bool
}

type bookingService struct {
	store       ports.Store
	checkout    ports.CheckoutClient
	checkoutCfg config.CheckoutConfig
	bookingCfg  config.BookingConfig
	validate    *validator.CustomValidator
	logger      *zap.Logger

	mu       sync.RWMutex
	sessions map[uuid.UUID]*session
}

func NewBookingService(
	store ports.Store,
	checkoutClient ports.CheckoutClient,
	checkoutCfg config.CheckoutConfig,
	bookingCfg config.BookingConfig,
	logger *zap.Logger,
) *bookingService {
	return &bookingService{
		store:       store,
		checkout:    checkoutClient,
		checkoutCfg: checkoutCfg,
		bookingCfg:  bookingCfg,
		validate:    validator.NewCustomValidator(),
		logger:      logger,
		sessions:    make(map[uuid.UUID]*session),
	}
}

// StartSessionSweeper expires abandoned sessions until ctx is cancelled.
func (s *bookingService) StartSessionSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				s.sweep(now)
			}
		}
	}()
}

func (s *bookingService) sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		sess.mu.Lock()
		expired := now.After(sess.expiresAt)
		if expired {
			sess.closed = true
		}
		sess.mu.Unlock()
		if expired {
			delete(s.sessions, id)
			s.logger.Debug("expired booking session", zap.String("session_id", id.String()))
		}
	}
}

func (s *bookingService) Listings(ctx context.Context) (*models.ListingsResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.bookingCfg.FetchTimeout)
	defer cancel()

	listings, err := s.store.Listings(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: listings: %v", models.ErrExternalFetch, err)
	}
	if listings == nil {
		listings = []models.Listing{}
	}
	return &models.ListingsResponse{Listings: listings}, nil
}

func (s *bookingService) Calendar(ctx context.Context, listingID uuid.UUID) (*models.CalendarResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.bookingCfg.FetchTimeout)
	defer cancel()

	if _, err := s.store.ListingByID(ctx, listingID); err != nil {
		if errors.Is(err, models.ErrListingNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: listing: %v", models.ErrExternalFetch, err)
	}

	bookings, err := s.store.BookingsForListing(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("%w: bookings: %v", models.ErrExternalFetch, err)
	}

	blocked := availability.BuildBlockedDates(bookings)
	return &models.CalendarResponse{
		ListingID: listingID,
		Blocked:   formatDays(blocked),
	}, nil
}

func (s *bookingService) CreateSession(ctx context.Context, listingID uuid.UUID) (*models.SessionResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.bookingCfg.FetchTimeout)
	defer cancel()

	listing, err := s.store.ListingByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, models.ErrListingNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: listing: %v", models.ErrExternalFetch, err)
	}

	bookings, err := s.store.BookingsForListing(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("%w: bookings: %v", models.ErrExternalFetch, err)
	}

	sess := &session{
		id:        uuid.New(),
		listing:   *listing,
		blocked:   availability.BuildBlockedDates(bookings),
		state:     models.StateEditing,
		expiresAt: time.Now().UTC().Add(s.bookingCfg.SessionTTL),
	}
	sess.draft.Guest.Count = 1

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	s.logger.Info("booking session created",
		zap.String("session_id", sess.id.String()),
		zap.String("listing_id", listingID.String()))

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.view(sess), nil
}

func (s *bookingService) GetSession(ctx context.Context, sessionID uuid.UUID) (*models.SessionResponse, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.view(sess), nil
}

func (s *bookingService) UpdateDraft(ctx context.Context, sessionID uuid.UUID, req *models.UpdateDraftRequest) (*models.SessionResponse, error) {
	if err := s.validate.Validate(req); err != nil {
		ve := models.NewValidationError()
		var fieldErrs govalidator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				ve.Add(fe.Field(), "failed on "+fe.Tag())
			}
		} else {
			ve.Add("request", err.Error())
		}
		return nil, ve
	}

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.state != models.StateEditing {
		return nil, models.ErrInvalidState
	}

	if err := s.applyDates(sess, req); err != nil {
		return nil, err
	}

	if req.GuestName != nil {
		sess.draft.Guest.Name = *req.GuestName
	}
	if req.GuestEmail != nil {
		sess.draft.Guest.Email = *req.GuestEmail
	}
	if req.Country != nil {
		sess.draft.Guest.Country = *req.Country
	}
	if req.Phone != nil {
		sess.draft.Guest.Phone = *req.Phone
	}
	if req.GuestCount != nil {
		sess.draft.Guest.Count = *req.GuestCount
	}
	if req.HasPets != nil {
		sess.draft.HasPets = *req.HasPets
	}
	if req.ExtraBed != nil {
		sess.draft.ExtraBed = *req.ExtraBed
	}

	return s.view(sess), nil
}

// applyDates enforces the draft date invariants: check-out strictly after
// check-in, no selected day inside the blocked set, and a newly chosen
// check-in that is not before the current check-out clears the check-out.
func (s *bookingService) applyDates(sess *session, req *models.UpdateDraftRequest) error {
	checkIn := sess.draft.CheckIn
	checkOut := sess.draft.CheckOut

	if req.CheckIn != nil {
		d, err := parseDate("check_in", *req.CheckIn)
		if err != nil {
			return err
		}
		checkIn = &d
		if checkOut != nil && !d.Before(*checkOut) {
			checkOut = nil
		}
	}
	if req.CheckOut != nil {
		d, err := parseDate("check_out", *req.CheckOut)
		if err != nil {
			return err
		}
		checkOut = &d
	}

	if checkIn != nil && checkOut != nil && !checkOut.After(*checkIn) {
		ve := models.NewValidationError()
		ve.Add("check_out", "must be strictly after check-in")
		return ve
	}

	if checkIn != nil && checkOut != nil {
		if !sess.blocked.RangeFree(*checkIn, *checkOut) {
			return models.ErrAvailabilityConflict
		}
	} else if checkIn != nil && sess.blocked.Blocked(*checkIn) {
		return models.ErrAvailabilityConflict
	} else if checkOut != nil && sess.blocked.Blocked(*checkOut) {
		return models.ErrAvailabilityConflict
	}

	sess.draft.CheckIn = checkIn
	sess.draft.CheckOut = checkOut
	return nil
}

// Review moves Editing to Reviewing. It is entirely local: no network call is
// ever made for this transition.
func (s *bookingService) Review(ctx context.Context, sessionID uuid.UUID) (*models.SessionResponse, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.state != models.StateEditing {
		return nil, models.ErrInvalidState
	}

	ve := models.NewValidationError()
	if sess.draft.CheckIn == nil {
		ve.Add("check_in", "check-in date is required")
	}
	if sess.draft.CheckOut == nil {
		ve.Add("check_out", "check-out date is required")
	}
	if sess.draft.Guest.Name == "" {
		ve.Add("guest_name", "guest name is required")
	}
	if sess.draft.Guest.Email == "" {
		ve.Add("guest_email", "guest email is required")
	}
	if sess.draft.Guest.Country == "" {
		ve.Add("country", "country is required")
	}
	if sess.draft.Guest.Phone == "" {
		ve.Add("phone", "phone number is required")
	}
	if sess.draft.Guest.Count < 1 || sess.draft.Guest.Count > 4 {
		ve.Add("guest_count", "guest count must be between 1 and 4")
	}
	if ve.HasErrors() {
		return nil, ve
	}

	if !sess.draft.CheckOut.After(*sess.draft.CheckIn) {
		ve.Add("check_out", "must be strictly after check-in")
		return nil, ve
	}
	if !sess.blocked.RangeFree(*sess.draft.CheckIn, *sess.draft.CheckOut) {
		return nil, models.ErrAvailabilityConflict
	}

	sess.state = models.StateReviewing
	return s.view(sess), nil
}

func (s *bookingService) Back(ctx context.Context, sessionID uuid.UUID) (*models.SessionResponse, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.state != models.StateReviewing {
		return nil, models.ErrInvalidState
	}
	sess.state = models.StateEditing
	return s.view(sess), nil
}

// Confirm re-reads the listing's bookings as an optimistic race check, then
// submits the checkout request. Any failure lands the session back in
// Reviewing; nothing is retried automatically.
func (s *bookingService) Confirm(ctx context.Context, sessionID uuid.UUID) (*models.ConfirmResponse, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	switch sess.state {
	case models.StateConfirming:
		sess.mu.Unlock()
		return nil, models.ErrConfirmInProgress
	case models.StateReviewing:
		// proceed
	default:
		sess.mu.Unlock()
		return nil, models.ErrInvalidState
	}
	sess.state = models.StateConfirming
	listingID := sess.listing.ID
	checkIn := *sess.draft.CheckIn
	checkOut := *sess.draft.CheckOut
	sess.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.bookingCfg.ConfirmTimeout)
	defer cancel()

	bookings, fetchErr := s.store.BookingsForListing(ctx, listingID)

	sess.mu.Lock()
	if sess.closed {
		sess.mu.Unlock()
		return nil, models.ErrSessionClosed
	}
	if fetchErr != nil {
		sess.state = models.StateReviewing
		sess.mu.Unlock()
		return nil, fmt.Errorf("%w: re-checking availability: %v", models.ErrExternalFetch, fetchErr)
	}

	sess.blocked = availability.BuildBlockedDates(bookings)
	if !sess.blocked.RangeFree(checkIn, checkOut) {
		sess.state = models.StateReviewing
		sess.mu.Unlock()
		s.logger.Info("availability conflict discovered on confirm",
			zap.String("session_id", sessionID.String()))
		return nil, models.ErrAvailabilityConflict
	}

	quote := s.quote(sess)
	checkoutReq := s.buildCheckoutRequest(sess, quote, checkIn, checkOut)
	sess.mu.Unlock()

	url, checkoutErr := s.checkout.CreateSession(ctx, checkoutReq)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return nil, models.ErrSessionClosed
	}
	if checkoutErr != nil {
		sess.state = models.StateReviewing
		return nil, fmt.Errorf("%w: %v", models.ErrCheckoutFailed, checkoutErr)
	}

	sess.state = models.StateRedirected
	sess.redirectURL = url
	s.logger.Info("booking confirmed, redirecting to checkout",
		zap.String("session_id", sessionID.String()),
		zap.Int64("unit_amount", checkoutReq.LineItem.UnitAmount))
	return &models.ConfirmResponse{RedirectURL: url}, nil
}

func (s *bookingService) CloseSession(ctx context.Context, sessionID uuid.UUID) error {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	if ok {
		delete(s.sessions, sessionID)
	}
	s.mu.Unlock()
	if !ok {
		return models.ErrSessionNotFound
	}

	sess.mu.Lock()
	sess.closed = true
	sess.mu.Unlock()
	return nil
}

func (s *bookingService) lookup(sessionID uuid.UUID) (*session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, models.ErrSessionNotFound
	}

	sess.mu.Lock()
	expired := time.Now().UTC().After(sess.expiresAt)
	if expired {
		sess.closed = true
	}
	sess.mu.Unlock()

	if expired {
		s.mu.Lock()
		delete(s.sessions, sessionID)
		s.mu.Unlock()
		return nil, models.ErrSessionNotFound
	}
	return sess, nil
}

// quote recomputes the live price; callers must hold sess.mu.
func (s *bookingService) quote(sess *session) models.PriceQuote {
	nights := 0
	if sess.draft.CheckIn != nil && sess.draft.CheckOut != nil {
		nights = availability.Nights(*sess.draft.CheckIn, *sess.draft.CheckOut)
	}

	var discount float64
	if sess.coupon != nil {
		discount = sess.coupon.DiscountPercent
	}

	return pricing.Calculate(pricing.Input{
		Nights:           nights,
		NightlyRate:      sess.listing.NightlyPrice,
		HasPets:          sess.draft.HasPets,
		ExtraBed:         sess.draft.ExtraBed,
		SupportsExtraBed: sess.listing.SupportsExtraBed,
		DiscountPercent:  discount,
		PetFee:           s.bookingCfg.PetFee,
		ExtraBedFee:      s.bookingCfg.ExtraBedFee,
		Currency:         s.bookingCfg.Currency,
	})
}

func (s *bookingService) buildCheckoutRequest(sess *session, quote models.PriceQuote, checkIn, checkOut time.Time) models.CheckoutRequest {
	metadata := map[string]string{
		"listing_id":    sess.listing.ID.String(),
		"listing_name":  sess.listing.Name,
		"check_in":      availability.Normalize(checkIn).Format(time.RFC3339),
		"check_out":     availability.Normalize(checkOut).Format(time.RFC3339),
		"guest_name":    sess.draft.Guest.Name,
		"guest_email":   sess.draft.Guest.Email,
		"guest_country": sess.draft.Guest.Country,
		"guest_phone":   sess.draft.Guest.Phone,
		"guest_count":   strconv.Itoa(sess.draft.Guest.Count),
		"has_pets":      strconv.FormatBool(sess.draft.HasPets),
		"extra_bed":     strconv.FormatBool(sess.draft.ExtraBed && sess.listing.SupportsExtraBed),
	}
	if sess.coupon != nil {
		metadata["coupon_code"] = sess.coupon.Code
		metadata["coupon_percent"] = strconv.FormatFloat(sess.coupon.DiscountPercent, 'f', -1, 64)
	}

	return models.CheckoutRequest{
		SuccessURL:    s.checkoutCfg.SuccessURL,
		CancelURL:     s.checkoutCfg.CancelURL,
		CustomerEmail: sess.draft.Guest.Email,
		LineItem: models.CheckoutLineItem{
			Name:       sess.listing.Name,
			UnitAmount: pricing.MinorUnits(quote),
			Quantity:   1,
			Currency:   s.bookingCfg.Currency,
		},
		Metadata: metadata,
	}
}

// view renders the session; callers must hold sess.mu.
func (s *bookingService) view(sess *session) *models.SessionResponse {
	resp := &models.SessionResponse{
		ID:        sess.id,
		State:     sess.state,
		Listing:   sess.listing,
		Draft:     sess.draft,
		Quote:     s.quote(sess),
		Blocked:   formatDays(sess.blocked),
		ExpiresAt: sess.expiresAt,
	}
	if sess.coupon != nil {
		resp.Coupon = &models.AppliedCoupon{
			Code:            sess.coupon.Code,
			DiscountPercent: sess.coupon.DiscountPercent,
		}
	}
	return resp
}

func formatDays(blocked availability.BlockedDates) []string {
	days := blocked.Days()
	out := make([]string, 0, len(days))
	for _, d := range days {
		out = append(out, d.Format(dateLayout))
	}
	return out
}

func parseDate(field, value string) (time.Time, error) {
	d, err := time.Parse(dateLayout, value)
	if err != nil {
		ve := models.NewValidationError()
		ve.Add(field, "must be a calendar date in YYYY-MM-DD form")
		return time.Time{}, ve
	}
	return availability.Normalize(d), nil
}
