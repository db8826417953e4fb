package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/segyhp/pawn-engine/internal/domain"
	"github.com/segyhp/pawn-engine/pkg/response"
	"github.com/segyhp/pawn-engine/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

// LoanService is the behaviour LoanHandler needs from the service layer
type LoanService interface {
	CreateLoan(ctx context.Context, request *domain.CreateLoanRequest) (*domain.CreateLoanResponse, error)
	GetLoan(ctx context.Context, loanID string) (*domain.Loan, error)
	GetRedemptionQuote(ctx context.Context, loanID string, asOf time.Time) (*domain.RedemptionQuote, error)
	ProcessTransaction(ctx context.Context, loanID string, request *domain.TransactionRequest) (*domain.TransactionResponse, error)
	ListTransactions(ctx context.Context, loanID string) ([]*domain.Transaction, error)
}

type LoanHandler struct {
	service   LoanService
	validator *validator.Validate
	now       func() time.Time
}

func NewLoanHandler(service LoanService) *LoanHandler {
	return &LoanHandler{
		service:   service,
		validator: NewValidator(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateLoan handles POST /loans
func (h *LoanHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	result, err := h.service.CreateLoan(r.Context(), &request)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, result)
}

// GetLoan handles GET /loans/{loanId}
func (h *LoanHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	loan, err := h.service.GetLoan(r.Context(), mux.Vars(r)["loanId"])
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, loan)
}

// GetRedemptionQuote handles GET /loans/{loanId}/redemption?as_of=YYYY-MM-DD
func (h *LoanHandler) GetRedemptionQuote(w http.ResponseWriter, r *http.Request) {
	asOf := h.now()
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		parsed, err := utils.ParseDate(raw)
		if err != nil {
			response.BadRequest(w, "as_of must be a YYYY-MM-DD date", err)
			return
		}
		asOf = parsed
	}

	quote, err := h.service.GetRedemptionQuote(r.Context(), mux.Vars(r)["loanId"], asOf)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, quote)
}

// CreateTransaction handles POST /loans/{loanId}/transactions
func (h *LoanHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var request domain.TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	result, err := h.service.ProcessTransaction(r.Context(), mux.Vars(r)["loanId"], &request)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, result)
}

// ListTransactions handles GET /loans/{loanId}/transactions
func (h *LoanHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	txns, err := h.service.ListTransactions(r.Context(), mux.Vars(r)["loanId"])
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, txns)
}
