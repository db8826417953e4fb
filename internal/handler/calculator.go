package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/segyhp/pawn-engine/pkg/engine"
	"github.com/segyhp/pawn-engine/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type PenaltyRequest struct {
	Principal    decimal.Decimal       `json:"principal" validate:"gte=0"`
	MaturityDate time.Time             `json:"maturity_date" validate:"required"`
	AsOfDate     *time.Time            `json:"as_of_date,omitempty"`
	Config       *engine.PenaltyConfig `json:"config,omitempty"`
}

type ServiceChargeRequest struct {
	Principal decimal.Decimal               `json:"principal" validate:"gte=0"`
	Brackets  []engine.ServiceChargeBracket `json:"brackets,omitempty"`
}

type ServiceChargeResponse struct {
	Principal     decimal.Decimal `json:"principal"`
	ServiceCharge decimal.Decimal `json:"service_charge"`
}

type InterestRequest struct {
	Principal      decimal.Decimal  `json:"principal" validate:"gte=0"`
	Items          []engine.Item    `json:"items"`
	TotalAppraisal *decimal.Decimal `json:"total_appraisal,omitempty"`
	DefaultRate    *decimal.Decimal `json:"default_rate,omitempty"`
}

type RedemptionRequest struct {
	Principal      decimal.Decimal               `json:"principal" validate:"gte=0"`
	InterestRate   decimal.Decimal               `json:"interest_rate" validate:"gte=0"`
	GrantedDate    time.Time                     `json:"granted_date" validate:"required"`
	MaturityDate   time.Time                     `json:"maturity_date" validate:"required"`
	AsOfDate       *time.Time                    `json:"as_of_date,omitempty"`
	ServiceCharges *decimal.Decimal              `json:"service_charges,omitempty"`
	Brackets       []engine.ServiceChargeBracket `json:"brackets,omitempty"`
	Penalty        *engine.PenaltyConfig         `json:"penalty,omitempty"`
}

type PaymentRequest struct {
	Amount      decimal.Decimal    `json:"amount" validate:"gte=0"`
	Outstanding engine.Outstanding `json:"outstanding"`
}

// Settings supplies the penalty configuration and bracket table in effect.
type Settings interface {
	PenaltyConfig(ctx context.Context) (engine.PenaltyConfig, error)
	ServiceChargeBrackets(ctx context.Context) ([]engine.ServiceChargeBracket, error)
}

// CalculatorHandler exposes the engine without touching stored loans.
// Settings omitted from a request are the ones loans are priced with.
type CalculatorHandler struct {
	settings    Settings
	defaultRate decimal.Decimal
	validator   *validator.Validate
	now         func() time.Time
}

func NewCalculatorHandler(settings Settings, defaultRate decimal.Decimal) *CalculatorHandler {
	return &CalculatorHandler{
		settings:    settings,
		defaultRate: defaultRate,
		validator:   NewValidator(),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Penalty handles POST /calculate/penalty
func (h *CalculatorHandler) Penalty(w http.ResponseWriter, r *http.Request) {
	var request PenaltyRequest
	if !h.decode(w, r, &request) {
		return
	}

	penalty, err := h.penaltyConfig(r.Context(), request.Config)
	if err != nil {
		response.FromError(w, err)
		return
	}

	result, err := engine.CalculatePenalty(request.Principal, request.MaturityDate, h.asOf(request.AsOfDate), penalty)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, result)
}

// ServiceCharge handles POST /calculate/service-charge
func (h *CalculatorHandler) ServiceCharge(w http.ResponseWriter, r *http.Request) {
	var request ServiceChargeRequest
	if !h.decode(w, r, &request) {
		return
	}

	brackets, err := h.brackets(r.Context(), request.Brackets)
	if err != nil {
		response.FromError(w, err)
		return
	}

	charge, err := engine.CalculateServiceCharge(request.Principal, brackets)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, ServiceChargeResponse{Principal: request.Principal, ServiceCharge: charge})
}

// Interest handles POST /calculate/interest
func (h *CalculatorHandler) Interest(w http.ResponseWriter, r *http.Request) {
	var request InterestRequest
	if !h.decode(w, r, &request) {
		return
	}

	total := engine.TotalAppraisal(request.Items)
	if request.TotalAppraisal != nil {
		total = *request.TotalAppraisal
	}
	rate := h.defaultRate
	if request.DefaultRate != nil {
		rate = *request.DefaultRate
	}

	result, err := engine.AllocateItemInterest(request.Principal, request.Items, total, rate)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, result)
}

// Redemption handles POST /calculate/redemption
func (h *CalculatorHandler) Redemption(w http.ResponseWriter, r *http.Request) {
	var request RedemptionRequest
	if !h.decode(w, r, &request) {
		return
	}

	var serviceCharges decimal.Decimal
	if request.ServiceCharges != nil {
		serviceCharges = *request.ServiceCharges
	} else {
		brackets, err := h.brackets(r.Context(), request.Brackets)
		if err != nil {
			response.FromError(w, err)
			return
		}
		charge, err := engine.CalculateServiceCharge(request.Principal, brackets)
		if err != nil {
			response.FromError(w, err)
			return
		}
		serviceCharges = charge
	}

	penalty, err := h.penaltyConfig(r.Context(), request.Penalty)
	if err != nil {
		response.FromError(w, err)
		return
	}

	result, err := engine.CalculateRedemption(engine.RedemptionInput{
		Principal:      request.Principal,
		InterestRate:   request.InterestRate,
		GrantedDate:    request.GrantedDate,
		MaturityDate:   request.MaturityDate,
		AsOfDate:       h.asOf(request.AsOfDate),
		ServiceCharges: serviceCharges,
		Penalty:        penalty,
	})
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, result)
}

// Payment handles POST /calculate/payment
func (h *CalculatorHandler) Payment(w http.ResponseWriter, r *http.Request) {
	var request PaymentRequest
	if !h.decode(w, r, &request) {
		return
	}

	result, err := engine.ApplyPayment(request.Amount, request.Outstanding)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *CalculatorHandler) decode(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return false
	}
	if err := h.validator.Struct(dest); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return false
	}
	return true
}

func (h *CalculatorHandler) asOf(t *time.Time) time.Time {
	if t != nil {
		return t.UTC()
	}
	return h.now()
}

func (h *CalculatorHandler) penaltyConfig(ctx context.Context, cfg *engine.PenaltyConfig) (engine.PenaltyConfig, error) {
	if cfg != nil {
		return *cfg, nil
	}
	return h.settings.PenaltyConfig(ctx)
}

func (h *CalculatorHandler) brackets(ctx context.Context, requested []engine.ServiceChargeBracket) ([]engine.ServiceChargeBracket, error) {
	if len(requested) > 0 {
		return requested, nil
	}
	return h.settings.ServiceChargeBrackets(ctx)
}
