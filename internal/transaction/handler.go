package transaction

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tallyup/tallyup/internal/transaction/split"
	"github.com/tallyup/tallyup/pkg/middleware"
	"github.com/tallyup/tallyup/pkg/response"
	"github.com/tallyup/tallyup/pkg/validate"
)

// Handler handles HTTP requests for transaction operations
type Handler struct {
	service *Service
}

// NewHandler creates a new transaction handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for transaction endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Post("/preview", h.Preview)
	r.Get("/{id}", h.GetByID)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)

	r.Get("/group/{groupId}", h.ListByGroup)
	r.Get("/with/{userId}", h.ListBetweenUsers)

	return r
}

// splitError reports whether err came from split input validation rather
// than infrastructure
func splitError(err error) bool {
	return errors.Is(err, split.ErrNoParticipants) ||
		errors.Is(err, split.ErrNonPositiveTotal) ||
		errors.Is(err, split.ErrNegativeAmount) ||
		errors.Is(err, split.ErrInvalidAmounts) ||
		errors.Is(err, split.ErrInvalidPercentages) ||
		errors.Is(err, split.ErrPercentageOutOfRange) ||
		errors.Is(err, split.ErrNegativeShares) ||
		errors.Is(err, split.ErrNegativeSplit)
}

func contributionError(err error) bool {
	return errors.Is(err, ErrPayerNotContributing) ||
		errors.Is(err, ErrContributionMismatch) ||
		errors.Is(err, ErrNegativeContribution)
}

// Create handles POST /transactions
// @Summary      Create a new transaction
// @Description  Record an expense and split it using the EQUAL, AMOUNT, PERCENTAGE, SHARES, or ADJUSTMENT method
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        request body CreateTransactionRequest true "Transaction creation request"
// @Success      201 {object} response.APIResponse{data=TransactionResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      422 {object} response.APIResponse
// @Router       /transactions [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	payerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := validate.Struct(&req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	result, err := h.service.Create(r.Context(), payerID, &req)
	if err != nil {
		if splitError(err) || contributionError(err) {
			response.UnprocessableEntity(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to create transaction")
		return
	}

	response.JSON(w, http.StatusCreated, result.ToResponse())
}

// Preview handles POST /transactions/preview
// @Summary      Preview a split
// @Description  Calculate shares for the given inputs without saving anything. Incomplete inputs still return best-effort shares with valid=false.
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        request body PreviewSplitRequest true "Split preview request"
// @Success      200 {object} response.APIResponse{data=PreviewSplitResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /transactions/preview [post]
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req PreviewSplitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := validate.Struct(&req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	preview, err := h.service.Preview(r.Context(), userID, &req)
	if err != nil {
		if splitError(err) {
			response.UnprocessableEntity(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to preview split")
		return
	}

	response.JSON(w, http.StatusOK, preview)
}

// GetByID handles GET /transactions/{id}
// @Summary      Get transaction by ID
// @Description  Get a transaction with its contributions and splits
// @Tags         transactions
// @Produce      json
// @Param        id path int true "Transaction ID"
// @Success      200 {object} response.APIResponse{data=TransactionResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /transactions/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid transaction ID")
		return
	}

	result, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrTransactionNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get transaction")
		return
	}

	response.JSON(w, http.StatusOK, result.ToResponse())
}

// ListByGroup handles GET /transactions/group/{groupId}
// @Summary      List group transactions
// @Description  Get a paginated list of a group's transactions, newest first
// @Tags         transactions
// @Produce      json
// @Param        groupId path int true "Group ID"
// @Param        page query int false "Page number" default(1)
// @Param        per_page query int false "Items per page" default(20)
// @Success      200 {object} response.APIResponse{data=[]TransactionResponse}
// @Router       /transactions/group/{groupId} [get]
func (h *Handler) ListByGroup(w http.ResponseWriter, r *http.Request) {
	groupID, err := strconv.ParseInt(chi.URLParam(r, "groupId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
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

	transactions, total, err := h.service.ListByGroupID(r.Context(), groupID, page, perPage)
	if err != nil {
		response.InternalError(w, "Failed to list transactions")
		return
	}

	responses := make([]*TransactionResponse, len(transactions))
	for i, t := range transactions {
		responses[i] = t.ToResponse()
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

// ListBetweenUsers handles GET /transactions/with/{userId}
// @Summary      List transactions with another user
// @Description  Get the full shared history between the current user and another user, oldest first
// @Tags         transactions
// @Produce      json
// @Param        userId path int true "Other user ID"
// @Success      200 {object} response.APIResponse{data=[]TransactionResponse}
// @Router       /transactions/with/{userId} [get]
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

	results, err := h.service.ListBetweenUsers(r.Context(), userID, otherID)
	if err != nil {
		response.InternalError(w, "Failed to list transactions")
		return
	}

	responses := make([]*TransactionResponse, len(results))
	for i, t := range results {
		responses[i] = t.ToResponse()
	}

	response.JSON(w, http.StatusOK, responses)
}

// Update handles PUT /transactions/{id}
// @Summary      Update a transaction
// @Description  Edit a transaction's description or date, or resplit it with a new amount, method, or participants
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        id path int true "Transaction ID"
// @Param        request body UpdateTransactionRequest true "Transaction update request"
// @Success      200 {object} response.APIResponse{data=TransactionResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      422 {object} response.APIResponse
// @Router       /transactions/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid transaction ID")
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req UpdateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := validate.Struct(&req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	result, err := h.service.Update(r.Context(), id, userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrTransactionNotFound):
			response.NotFound(w, err.Error())
		case errors.Is(err, ErrNotPayer):
			response.Forbidden(w, err.Error())
		case splitError(err) || contributionError(err):
			response.UnprocessableEntity(w, err.Error())
		default:
			response.InternalError(w, "Failed to update transaction")
		}
		return
	}

	response.JSON(w, http.StatusOK, result.ToResponse())
}

// Delete handles DELETE /transactions/{id}
// @Summary      Delete a transaction
// @Description  Delete a transaction and its splits; only the payer may do this
// @Tags         transactions
// @Produce      json
// @Param        id path int true "Transaction ID"
// @Success      200 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /transactions/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid transaction ID")
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	if err := h.service.Delete(r.Context(), id, userID); err != nil {
		switch {
		case errors.Is(err, ErrTransactionNotFound):
			response.NotFound(w, err.Error())
		case errors.Is(err, ErrNotPayer):
			response.Forbidden(w, err.Error())
		default:
			response.InternalError(w, "Failed to delete transaction")
		}
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Transaction deleted successfully"})
}
