package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	models "github.com/adriaticstays/booking-api/internal"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBConn is the subset of pgxpool.Pool the store needs; pgxmock satisfies it.
type DBConn interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
}

// Store reads listings, existing bookings and coupons from the managed
// Postgres backend. All operations are read-only; the schema is owned by the
// external collaborator.
type Store struct {
	db DBConn
}

func NewStore(db DBConn) *Store {
	return &Store{db: db}
}

func (s *Store) Listings(ctx context.Context) ([]models.Listing, error) {
	query := `
        SELECT id, name, description, nightly_price, image_url, supports_extra_bed
        FROM listings
        ORDER BY name
    `
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying listings: %w", err)
	}
	defer rows.Close()

	var listings []models.Listing
	for rows.Next() {
		var l models.Listing
		if err := rows.Scan(&l.ID, &l.Name, &l.Description, &l.NightlyPrice, &l.ImageURL, &l.SupportsExtraBed); err != nil {
			return nil, fmt.Errorf("scanning listing: %w", err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading listings: %w", err)
	}
	return listings, nil
}

func (s *Store) ListingByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	query := `
        SELECT id, name, description, nightly_price, image_url, supports_extra_bed
        FROM listings
        WHERE id = $1
    `
	var l models.Listing
	err := s.db.QueryRow(ctx, query, id).
		Scan(&l.ID, &l.Name, &l.Description, &l.NightlyPrice, &l.ImageURL, &l.SupportsExtraBed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrListingNotFound
		}
		return nil, fmt.Errorf("querying listing %s: %w", id, err)
	}
	return &l, nil
}

func (s *Store) BookingsForListing(ctx context.Context, listingID uuid.UUID) ([]models.ExistingBooking, error) {
	query := `
        SELECT check_in, check_out
        FROM bookings
        WHERE listing_id = $1
        ORDER BY check_in
    `
	rows, err := s.db.Query(ctx, query, listingID)
	if err != nil {
		return nil, fmt.Errorf("querying bookings: %w", err)
	}
	defer rows.Close()

	var bookings []models.ExistingBooking
	for rows.Next() {
		var b models.ExistingBooking
		if err := rows.Scan(&b.CheckIn, &b.CheckOut); err != nil {
			return nil, fmt.Errorf("scanning booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading bookings: %w", err)
	}
	return bookings, nil
}

// CouponByCode looks up an active, non-expired coupon by exact code match.
// A clean zero-match result is models.ErrCouponInvalid; more than one match
// is a store-side inconsistency and surfaces as a plain error.
func (s *Store) CouponByCode(ctx context.Context, code string) (*models.Coupon, error) {
	query := `
        SELECT id, code, discount_percent, is_active, expires_at
        FROM coupons
        WHERE code = $1 AND is_active = true AND expires_at > $2
    `
	rows, err := s.db.Query(ctx, query, code, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("querying coupon: %w", err)
	}
	defer rows.Close()

	var coupons []models.Coupon
	for rows.Next() {
		var c models.Coupon
		if err := rows.Scan(&c.ID, &c.Code, &c.DiscountPercent, &c.IsActive, &c.ExpiresAt); err != nil {
			return nil, fmt.Errorf("scanning coupon: %w", err)
		}
		coupons = append(coupons, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading coupons: %w", err)
	}

	switch len(coupons) {
	case 0:
		return nil, models.ErrCouponInvalid
	case 1:
		return &coupons[0], nil
	default:
		return nil, fmt.Errorf("multiple coupons matched code %q", code)
	}
}
