package checkout

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/noah-isme/checkout-api/internal/cart"
	"github.com/noah-isme/checkout-api/internal/common"
	"github.com/noah-isme/checkout-api/internal/order"
	"github.com/noah-isme/checkout-api/internal/shipping"
)

// Handler exposes the checkout flow over HTTP.
type Handler struct {
	Svc     *Service
	Catalog *shipping.Catalog
}

// Routes mounts the checkout endpoints on a chi router. StartSession and
// Submit are left to the caller, which wraps them with the idempotency and
// rate-limit middleware.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/shipping-methods", h.ListShippingMethods)
	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Get("/", h.GetSession)
		r.Patch("/", h.UpdateSession)
		r.Delete("/", h.AbandonSession)
		r.Post("/advance", h.Advance)
		r.Post("/retreat", h.Retreat)
		r.Put("/shipping-method", h.SelectShippingMethod)
	})
}

// ListShippingMethods returns the catalog in declaration order.
func (h *Handler) ListShippingMethods(w http.ResponseWriter, _ *http.Request) {
	common.JSONData(w, http.StatusOK, h.Catalog.List())
}

// StartSession opens a checkout session against a cart snapshot.
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CartID string `json:"cartId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.CartID) == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "cartId is required", nil)
		return
	}
	sess, err := h.Svc.Start(r.Context(), body.CartID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	common.JSONData(w, http.StatusCreated, sess)
}

// GetSession returns the current session state.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.Svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	common.JSONData(w, http.StatusOK, sess)
}

type billingPatch struct {
	SameAsShipping *bool    `json:"sameAsShipping"`
	Address        *Address `json:"address"`
}

// updatePayload is a sparse form patch: only present fields are applied.
type updatePayload struct {
	Customer         *Customer     `json:"customer"`
	ShippingAddress  *Address      `json:"shippingAddress"`
	BillingAddress   *billingPatch `json:"billingAddress"`
	Payment          *Payment      `json:"payment"`
	ShippingMethodID *string       `json:"shippingMethodId"`
	Instructions     *string       `json:"specialInstructions"`
	Newsletter       *bool         `json:"acceptsNewsletter"`
	AcceptsTerms     *bool         `json:"acceptsTerms"`
}

func (p updatePayload) events() []Event {
	var evs []Event
	if p.Customer != nil {
		evs = append(evs, UpdateCustomer{Customer: *p.Customer})
	}
	if p.ShippingAddress != nil {
		evs = append(evs, UpdateShippingAddress{Address: *p.ShippingAddress})
	}
	if p.BillingAddress != nil {
		evs = append(evs, UpdateBillingAddress{
			SameAsShipping: p.BillingAddress.SameAsShipping,
			Address:        p.BillingAddress.Address,
		})
	}
	if p.Payment != nil {
		evs = append(evs, UpdatePayment{Payment: *p.Payment})
	}
	if p.ShippingMethodID != nil {
		evs = append(evs, SelectShippingMethod{MethodID: *p.ShippingMethodID})
	}
	if p.Instructions != nil {
		evs = append(evs, UpdateInstructions{Instructions: *p.Instructions})
	}
	if p.Newsletter != nil || p.AcceptsTerms != nil {
		evs = append(evs, UpdateConsents{Newsletter: p.Newsletter, AcceptsTerms: p.AcceptsTerms})
	}
	return evs
}

// UpdateSession applies a sparse form patch to the session.
func (h *Handler) UpdateSession(w http.ResponseWriter, r *http.Request) {
	var body updatePayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json body", nil)
		return
	}
	if body.ShippingMethodID != nil {
		if _, err := h.Catalog.Lookup(*body.ShippingMethodID); err != nil {
			h.writeError(w, r, err)
			return
		}
	}
	evs := body.events()
	if len(evs) == 0 {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "no recognised fields in patch", nil)
		return
	}
	sess, err := h.Svc.Update(r.Context(), chi.URLParam(r, "id"), evs...)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	common.JSONData(w, http.StatusOK, sess)
}

// AbandonSession deletes the session.
func (h *Handler) AbandonSession(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Abandon(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Advance moves the session to the next step.
func (h *Handler) Advance(w http.ResponseWriter, r *http.Request) {
	sess, err := h.Svc.Advance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	common.JSONData(w, http.StatusOK, sess)
}

// Retreat moves the session back one step.
func (h *Handler) Retreat(w http.ResponseWriter, r *http.Request) {
	sess, err := h.Svc.Retreat(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	common.JSONData(w, http.StatusOK, sess)
}

// SelectShippingMethod records the chosen shipping method.
func (h *Handler) SelectShippingMethod(w http.ResponseWriter, r *http.Request) {
	var body struct {
		MethodID string `json:"methodId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.MethodID == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "methodId is required", nil)
		return
	}
	sess, err := h.Svc.SelectShippingMethod(r.Context(), chi.URLParam(r, "id"), body.MethodID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	common.JSONData(w, http.StatusOK, sess)
}

// Submit hands the finalized session to the order collaborator.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	sess, err := h.Svc.Submit(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	common.JSONData(w, http.StatusOK, map[string]any{
		"orderId":    sess.OrderID,
		"status":     string(sess.Step),
		"redirectTo": "/orders/" + sess.OrderID + "/confirmation",
	})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	app := classify(err)
	if app.HTTPStatus >= http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("checkout handler error")
	}
	common.JSONAppError(w, app)
}

// classify maps domain errors onto the canonical error shape.
func classify(err error) *common.AppError {
	var verr *ValidationError
	var serr *order.SubmissionError
	switch {
	case errors.As(err, &verr):
		return common.NewAppError("VALIDATION_FAILED", "required fields are missing", http.StatusUnprocessableEntity, err).
			WithDetails(map[string]any{
				"step":          string(verr.Step),
				"missingFields": verr.MissingFields,
			})
	case errors.Is(err, ErrNotFound):
		return common.NewAppError("SESSION_NOT_FOUND", "checkout session not found", http.StatusNotFound, err)
	case errors.Is(err, cart.ErrNotFound):
		return common.NewAppError("CART_NOT_FOUND", "cart not found", http.StatusNotFound, err)
	case errors.Is(err, cart.ErrInvalidSnapshot):
		return common.NewAppError("INVALID_CART", err.Error(), http.StatusUnprocessableEntity, err)
	case errors.Is(err, shipping.ErrUnknownMethod):
		return common.NewAppError("UNKNOWN_SHIPPING_METHOD", "shipping method not offered", http.StatusUnprocessableEntity, err)
	case errors.Is(err, ErrSubmitInFlight):
		return common.NewAppError("SUBMIT_IN_FLIGHT", "a submission is already in progress", http.StatusConflict, err)
	case errors.Is(err, ErrSessionComplete):
		return common.NewAppError("SESSION_COMPLETE", "session has already been submitted", http.StatusConflict, err)
	case errors.Is(err, ErrAtFirstStep):
		return common.NewAppError("AT_FIRST_STEP", "cannot retreat from the first step", http.StatusConflict, err)
	case errors.Is(err, ErrSubmitRequired):
		return common.NewAppError("SUBMIT_REQUIRED", "review step can only be left through submit", http.StatusConflict, err)
	case errors.Is(err, ErrNotAtReview):
		return common.NewAppError("NOT_AT_REVIEW", "submit is only allowed at the review step", http.StatusConflict, err)
	case errors.Is(err, ErrTermsNotAccepted):
		return common.NewAppError("TERMS_NOT_ACCEPTED", "terms must be accepted before submitting", http.StatusUnprocessableEntity, err)
	case errors.Is(err, ErrAbandoned):
		return common.NewAppError("SESSION_ABANDONED", "session was abandoned during submission", http.StatusGone, err)
	case errors.As(err, &serr):
		app := common.NewAppError("SUBMISSION_FAILED", "order submission failed", http.StatusBadGateway, err)
		app.Details = map[string]any{"reason": serr.Reason}
		return app
	default:
		return common.NewAppError("INTERNAL", "internal server error", http.StatusInternalServerError, err)
	}
}
