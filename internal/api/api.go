package api

import (
	"context"
	"errors"
	"net/http"

	models "github.com/adriaticstays/booking-api/internal"
	"github.com/adriaticstays/booking-api/internal/ports"
	"github.com/adriaticstays/booking-api/internal/utils"
	"github.com/google/uuid"
)

type Handler struct {
	service ports.BookingService
}

func NewHandler(service ports.BookingService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Listings(w http.ResponseWriter, r *http.Request) {
	ans, err := h.service.Listings(r.Context())
	if err != nil {
		renderError(w, err)
		return
	}
	utils.RenderResponse(w, http.StatusOK, ans)
}

func (h *Handler) Calendar(w http.ResponseWriter, r *http.Request) {
	listingID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	ans, err := h.service.Calendar(r.Context(), listingID)
	if err != nil {
		renderError(w, err)
		return
	}
	utils.RenderResponse(w, http.StatusOK, ans)
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSessionRequest
	if err := utils.JsonDecodeBody(r, &req); err != nil {
		ae := utils.NewBadRequest("error json decoding body")
		utils.RenderResponse(w, ae.StatusCode, ae)
		return
	}
	if req.ListingID == uuid.Nil {
		ae := utils.NewBadRequest("listing_id is required")
		utils.RenderResponse(w, ae.StatusCode, ae)
		return
	}

	ans, err := h.service.CreateSession(r.Context(), req.ListingID)
	if err != nil {
		renderError(w, err)
		return
	}
	utils.RenderResponse(w, http.StatusCreated, ans)
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	ans, err := h.service.GetSession(r.Context(), sessionID)
	if err != nil {
		renderError(w, err)
		return
	}
	utils.RenderResponse(w, http.StatusOK, ans)
}

func (h *Handler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req models.UpdateDraftRequest
	if err := utils.JsonDecodeBody(r, &req); err != nil {
		ae := utils.NewBadRequest("error json decoding body")
		utils.RenderResponse(w, ae.StatusCode, ae)
		return
	}

	ans, err := h.service.UpdateDraft(r.Context(), sessionID, &req)
	if err != nil {
		renderError(w, err)
		return
	}
	utils.RenderResponse(w, http.StatusOK, ans)
}

func (h *Handler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req models.ApplyCouponRequest
	if err := utils.JsonDecodeBody(r, &req); err != nil {
		ae := utils.NewBadRequest("error json decoding body")
		utils.RenderResponse(w, ae.StatusCode, ae)
		return
	}

	ans, err := h.service.ApplyCoupon(r.Context(), sessionID, req.Code)
	if err != nil {
		renderError(w, err)
		return
	}
	utils.RenderResponse(w, http.StatusOK, ans)
}

func (h *Handler) ClearCoupon(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	ans, err := h.service.ClearCoupon(r.Context(), sessionID)
	if err != nil {
		renderError(w, err)
		return
	}
	utils.RenderResponse(w, http.StatusOK, ans)
}

func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Review)
}

func (h *Handler) Back(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Back)
}

func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	ans, err := h.service.Confirm(r.Context(), sessionID)
	if err != nil {
		renderError(w, err)
		return
	}
	utils.RenderResponse(w, http.StatusOK, ans)
}

func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.CloseSession(r.Context(), sessionID); err != nil {
		renderError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request,
	fn func(ctx context.Context, id uuid.UUID) (*models.SessionResponse, error)) {
	sessionID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	ans, err := fn(r.Context(), sessionID)
	if err != nil {
		renderError(w, err)
		return
	}
	utils.RenderResponse(w, http.StatusOK, ans)
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		ae := utils.NewBadRequest("invalid " + name)
		utils.RenderResponse(w, ae.StatusCode, ae)
		return uuid.Nil, false
	}
	return id, true
}

func renderError(w http.ResponseWriter, err error) {
	ae := getApiError(err)
	utils.RenderResponse(w, ae.StatusCode, ae)
}

func getApiError(err error) utils.ApiError {
	ae := utils.ApiError{Msg: err.Error()}

	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		ae.StatusCode = http.StatusBadRequest
	case errors.Is(err, models.ErrListingNotFound),
		errors.Is(err, models.ErrSessionNotFound):
		ae.StatusCode = http.StatusNotFound
	case errors.Is(err, models.ErrAvailabilityConflict),
		errors.Is(err, models.ErrConfirmInProgress),
		errors.Is(err, models.ErrInvalidState):
		ae.StatusCode = http.StatusConflict
	case errors.Is(err, models.ErrCouponInvalid):
		ae.StatusCode = http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrExternalFetch),
		errors.Is(err, models.ErrCheckoutFailed):
		ae.StatusCode = http.StatusBadGateway
	case errors.Is(err, models.ErrSessionClosed):
		ae.StatusCode = http.StatusGone
	default:
		ae.StatusCode = http.StatusInternalServerError
	}
	return ae
}
