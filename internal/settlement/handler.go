package settlement

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tallyup/tallyup/internal/balance"
	"github.com/tallyup/tallyup/pkg/middleware"
	"github.com/tallyup/tallyup/pkg/response"
	"github.com/tallyup/tallyup/pkg/validate"
)

// Handler handles HTTP requests for settlement operations
type Handler struct {
	service *Service
}

// NewHandler creates a new settlement handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for settlement endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.GetByID)
	r.Get("/with/{userId}", h.ListBetweenUsers)

	// Balance queries
	r.Get("/balances", h.Balances)
	r.Get("/balances/{userId}", h.BalanceWith)

	return r
}

// Create handles POST /settlements
// @Summary      Record a settlement
// @Description  Record a direct payment to another user. Settlements are immutable; record a compensating payment to correct a mistake.
// @Tags         settlements
// @Accept       json
// @Produce      json
// @Param        request body CreateSettlementRequest true "Settlement creation request"
// @Success      201 {object} response.APIResponse{data=SettlementResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      422 {object} response.APIResponse
// @Router       /settlements [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req CreateSettlementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := validate.Struct(&req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	settlement, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrCannotSettleSelf) || errors.Is(err, ErrNonPositiveAmount):
			response.UnprocessableEntity(w, err.Error())
		case errors.Is(err, ErrUserNotFound):
			response.NotFound(w, err.Error())
		default:
			response.InternalError(w, "Failed to create settlement")
		}
		return
	}

	response.JSON(w, http.StatusCreated, settlement.ToResponse())
}

// GetByID handles GET /settlements/{id}
// @Summary      Get settlement by ID
// @Tags         settlements
// @Produce      json
// @Param        id path int true "Settlement ID"
// @Success      200 {object} response.APIResponse{data=SettlementResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /settlements/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid settlement ID")
		return
	}

	settlement, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrSettlementNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get settlement")
		return
	}

	response.JSON(w, http.StatusOK, settlement.ToResponse())
}

// List handles GET /settlements
// @Summary      List my settlements
// @Description  Get a paginated list of settlements the current user sent or received
// @Tags         settlements
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        per_page query int false "Items per page" default(20)
// @Success      200 {object} response.APIResponse{data=[]SettlementResponse}
// @Router       /settlements [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	settlements, total, err := h.service.ListByUserID(r.Context(), userID, page, perPage)
	if err != nil {
		response.InternalError(w, "Failed to list settlements")
		return
	}

	responses := make([]*SettlementResponse, len(settlements))
	for i, s := range settlements {
		responses[i] = s.ToResponse()
	}

	totalPages := (total + perPage - 1) / perPage
	meta := &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}

	response.JSONWithMeta(w, http.StatusOK, responses, meta)
}

// ListBetweenUsers handles GET /settlements/with/{userId}
// @Summary      List settlements with another user
// @Description  Get every settlement between the current user and another user, oldest first
// @Tags         settlements
// @Produce      json
// @Param        userId path int true "Other user ID"
// @Success      200 {object} response.APIResponse{data=[]SettlementResponse}
// @Router       /settlements/with/{userId} [get]
func (h *Handler) ListBetweenUsers(w http.ResponseWriter, r *http.Request) {
	otherID, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	settlements, err := h.service.ListBetweenUsers(r.Context(), userID, otherID)
	if err != nil {
		response.InternalError(w, "Failed to list settlements")
		return
	}

	responses := make([]*SettlementResponse, len(settlements))
	for i, s := range settlements {
		responses[i] = s.ToResponse()
	}

	response.JSON(w, http.StatusOK, responses)
}

// Balances handles GET /settlements/balances
// @Summary      Get my balances
// @Description  Get the current user's net position against everyone they share history with
// @Tags         settlements
// @Produce      json
// @Success      200 {object} response.APIResponse{data=BalancesResponse}
// @Router       /settlements/balances [get]
func (h *Handler) Balances(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	balances, err := h.service.Balances(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to compute balances")
		return
	}

	resp := &BalancesResponse{
		UserID:       userID,
		OweYou:       toCounterpartResponses(balance.OweYou(balances)),
		YouOwe:       toCounterpartResponses(balance.YouOwe(balances)),
		Counterparts: toCounterpartResponses(balances),
	}

	response.JSON(w, http.StatusOK, resp)
}

// BalanceWith handles GET /settlements/balances/{userId}
// @Summary      Get my balance with one user
// @Description  Get the current user's net position against one other user
// @Tags         settlements
// @Produce      json
// @Param        userId path int true "Other user ID"
// @Success      200 {object} response.APIResponse{data=CounterpartBalanceResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /settlements/balances/{userId} [get]
func (h *Handler) BalanceWith(w http.ResponseWriter, r *http.Request) {
	otherID, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	mb, err := h.service.BalanceWith(r.Context(), userID, otherID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to compute balance")
		return
	}

	response.JSON(w, http.StatusOK, toCounterpartResponse(*mb))
}

func toCounterpartResponses(balances []balance.MemberBalance) []*CounterpartBalanceResponse {
	out := make([]*CounterpartBalanceResponse, len(balances))
	for i, mb := range balances {
		out[i] = toCounterpartResponse(mb)
	}
	return out
}
