package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	models "github.com/adriaticstays/booking-api/internal"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ApplyCoupon validates a discount code against the external store and applies
// it to the session. An empty code after trimming never reaches the store.
// Re-invocation is safe: the last successful response replaces any previously
// applied coupon, under the session lock.
func (s *bookingService) ApplyCoupon(ctx context.Context, sessionID uuid.UUID, code string) (*models.SessionResponse, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	code = strings.TrimSpace(code)
	if code == "" {
		ve := models.NewValidationError()
		ve.Add("code", "coupon code is required")
		return nil, ve
	}

	sess.mu.Lock()
	if sess.state != models.StateEditing {
		sess.mu.Unlock()
		return nil, models.ErrInvalidState
	}
	sess.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.bookingCfg.FetchTimeout)
	defer cancel()

	coupon, err := s.store.CouponByCode(ctx, code)
	if err != nil {
		if errors.Is(err, models.ErrCouponInvalid) {
			return nil, models.ErrCouponInvalid
		}
		return nil, fmt.Errorf("%w: coupon: %v", models.ErrExternalFetch, err)
	}
	if !coupon.Valid(time.Now().UTC()) {
		return nil, models.ErrCouponInvalid
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return nil, models.ErrSessionClosed
	}
	if sess.state != models.StateEditing {
		return nil, models.ErrInvalidState
	}
	sess.coupon = coupon

	s.logger.Info("coupon applied",
		zap.String("session_id", sessionID.String()),
		zap.String("code", coupon.Code),
		zap.Float64("discount_percent", coupon.DiscountPercent))
	return s.view(sess), nil
}

func (s *bookingService) ClearCoupon(ctx context.Context, sessionID uuid.UUID) (*models.SessionResponse, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.state != models.StateEditing {
		return nil, models.ErrInvalidState
	}
	sess.coupon = nil
	return s.view(sess), nil
}
