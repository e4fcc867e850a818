package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	models "github.com/adriaticstays/booking-api/internal"
	"github.com/adriaticstays/booking-api/internal/api"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockBookingService struct {
	mock.Mock
}

func (m *mockBookingService) Listings(ctx context.Context) (*models.ListingsResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ListingsResponse), args.Error(1)
}

func (m *mockBookingService) Calendar(ctx context.Context, listingID uuid.UUID) (*models.CalendarResponse, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CalendarResponse), args.Error(1)
}

func (m *mockBookingService) CreateSession(ctx context.Context, listingID uuid.UUID) (*models.SessionResponse, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SessionResponse), args.Error(1)
}

func (m *mockBookingService) GetSession(ctx context.Context, sessionID uuid.UUID) (*models.SessionResponse, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SessionResponse), args.Error(1)
}

func (m *mockBookingService) UpdateDraft(ctx context.Context, sessionID uuid.UUID, req *models.UpdateDraftRequest) (*models.SessionResponse, error) {
	args := m.Called(ctx, sessionID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SessionResponse), args.Error(1)
}

func (m *mockBookingService) ApplyCoupon(ctx context.Context, sessionID uuid.UUID, code string) (*models.SessionResponse, error) {
	args := m.Called(ctx, sessionID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SessionResponse), args.Error(1)
}

func (m *mockBookingService) ClearCoupon(ctx context.Context, sessionID uuid.UUID) (*models.SessionResponse, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SessionResponse), args.Error(1)
}

func (m *mockBookingService) Review(ctx context.Context, sessionID uuid.UUID) (*models.SessionResponse, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SessionResponse), args.Error(1)
}

func (m *mockBookingService) Back(ctx context.Context, sessionID uuid.UUID) (*models.SessionResponse, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SessionResponse), args.Error(1)
}

func (m *mockBookingService) Confirm(ctx context.Context, sessionID uuid.UUID) (*models.ConfirmResponse, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ConfirmResponse), args.Error(1)
}

func (m *mockBookingService) CloseSession(ctx context.Context, sessionID uuid.UUID) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func newTestRouter(svc *mockBookingService) http.Handler {
	handler := api.NewHandler(svc)
	router := http.NewServeMux()
	router.HandleFunc("GET /v1/listings", handler.Listings)
	router.HandleFunc("GET /v1/listings/{id}/calendar", handler.Calendar)
	router.HandleFunc("POST /v1/sessions", handler.CreateSession)
	router.HandleFunc("GET /v1/sessions/{id}", handler.GetSession)
	router.HandleFunc("PATCH /v1/sessions/{id}", handler.UpdateDraft)
	router.HandleFunc("DELETE /v1/sessions/{id}", handler.CloseSession)
	router.HandleFunc("POST /v1/sessions/{id}/coupon", handler.ApplyCoupon)
	router.HandleFunc("DELETE /v1/sessions/{id}/coupon", handler.ClearCoupon)
	router.HandleFunc("POST /v1/sessions/{id}/review", handler.Review)
	router.HandleFunc("POST /v1/sessions/{id}/back", handler.Back)
	router.HandleFunc("POST /v1/sessions/{id}/confirm", handler.Confirm)
	return router
}

func doJSON(t *testing.T, router http.Handler, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestListingsHandler(t *testing.T) {
	svc := new(mockBookingService)
	svc.On("Listings", mock.Anything).Return(&models.ListingsResponse{
		Listings: []models.Listing{{ID: uuid.New(), Name: "Sea View Apartment", NightlyPrice: 100}},
	}, nil)

	rec := doJSON(t, newTestRouter(svc), http.MethodGet, "/v1/listings", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp models.ListingsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Listings, 1)
	assert.Equal(t, "Sea View Apartment", resp.Listings[0].Name)
}

func TestCreateSessionHandler(t *testing.T) {
	listingID := uuid.New()

	t.Run("created", func(t *testing.T) {
		svc := new(mockBookingService)
		svc.On("CreateSession", mock.Anything, listingID).Return(&models.SessionResponse{
			ID:    uuid.New(),
			State: models.StateEditing,
		}, nil)

		rec := doJSON(t, newTestRouter(svc), http.MethodPost, "/v1/sessions",
			models.CreateSessionRequest{ListingID: listingID})

		assert.Equal(t, http.StatusCreated, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("missing listing id", func(t *testing.T) {
		svc := new(mockBookingService)
		rec := doJSON(t, newTestRouter(svc), http.MethodPost, "/v1/sessions", map[string]string{})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "CreateSession")
	})

	t.Run("unknown listing maps to 404", func(t *testing.T) {
		svc := new(mockBookingService)
		svc.On("CreateSession", mock.Anything, listingID).Return(nil, models.ErrListingNotFound)

		rec := doJSON(t, newTestRouter(svc), http.MethodPost, "/v1/sessions",
			models.CreateSessionRequest{ListingID: listingID})

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestSessionHandlerErrorMapping(t *testing.T) {
	sessionID := uuid.New()

	tests := []struct {
		name         string
		err          error
		expectedCode int
	}{
		{"validation error", func() error {
			ve := models.NewValidationError()
			ve.Add("guest_name", "guest name is required")
			return ve
		}(), http.StatusBadRequest},
		{"availability conflict", models.ErrAvailabilityConflict, http.StatusConflict},
		{"invalid state", models.ErrInvalidState, http.StatusConflict},
		{"confirm in progress", models.ErrConfirmInProgress, http.StatusConflict},
		{"session not found", models.ErrSessionNotFound, http.StatusNotFound},
		{"external fetch", models.ErrExternalFetch, http.StatusBadGateway},
		{"checkout failed", models.ErrCheckoutFailed, http.StatusBadGateway},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := new(mockBookingService)
			svc.On("Confirm", mock.Anything, sessionID).Return(nil, tc.err)

			rec := doJSON(t, newTestRouter(svc), http.MethodPost,
				"/v1/sessions/"+sessionID.String()+"/confirm", nil)

			assert.Equal(t, tc.expectedCode, rec.Code)
		})
	}
}

func TestConfirmHandler(t *testing.T) {
	sessionID := uuid.New()
	svc := new(mockBookingService)
	svc.On("Confirm", mock.Anything, sessionID).Return(&models.ConfirmResponse{
		RedirectURL: "https://pay.example.com/s/abc",
	}, nil)

	rec := doJSON(t, newTestRouter(svc), http.MethodPost,
		"/v1/sessions/"+sessionID.String()+"/confirm", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp models.ConfirmResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "https://pay.example.com/s/abc", resp.RedirectURL)
}

func TestApplyCouponHandler(t *testing.T) {
	sessionID := uuid.New()

	t.Run("invalid coupon maps to 422", func(t *testing.T) {
		svc := new(mockBookingService)
		svc.On("ApplyCoupon", mock.Anything, sessionID, "NOPE").Return(nil, models.ErrCouponInvalid)

		rec := doJSON(t, newTestRouter(svc), http.MethodPost,
			"/v1/sessions/"+sessionID.String()+"/coupon", models.ApplyCouponRequest{Code: "NOPE"})

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("applied", func(t *testing.T) {
		svc := new(mockBookingService)
		svc.On("ApplyCoupon", mock.Anything, sessionID, "SAVE10").Return(&models.SessionResponse{
			ID:     sessionID,
			Coupon: &models.AppliedCoupon{Code: "SAVE10", DiscountPercent: 10},
		}, nil)

		rec := doJSON(t, newTestRouter(svc), http.MethodPost,
			"/v1/sessions/"+sessionID.String()+"/coupon", models.ApplyCouponRequest{Code: "SAVE10"})

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestPathValidation(t *testing.T) {
	svc := new(mockBookingService)
	rec := doJSON(t, newTestRouter(svc), http.MethodGet, "/v1/sessions/not-a-uuid", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "GetSession")
}

func TestCloseSessionHandler(t *testing.T) {
	sessionID := uuid.New()
	svc := new(mockBookingService)
	svc.On("CloseSession", mock.Anything, sessionID).Return(nil)

	rec := doJSON(t, newTestRouter(svc), http.MethodDelete, "/v1/sessions/"+sessionID.String(), nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	svc.AssertExpectations(t)
}
