package handler

import (
	"net/http"
	"testing"

	customError "github.com/segyhp/pawn-engine/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculatePenalty(t *testing.T) {
	router, _ := setupRouter(t)

	tests := []struct {
		name    string
		body    string
		amount  string
		method  string
		overdue float64
	}{
		{
			name:    "daily window",
			body:    `{"principal":"15000","maturity_date":"2024-06-13T00:00:00Z","as_of_date":"2024-06-15T00:00:00Z"}`,
			amount:  "20",
			method:  "DAILY",
			overdue: 2,
		},
		{
			name:    "full month",
			body:    `{"principal":"15000","maturity_date":"2024-06-10T00:00:00Z","as_of_date":"2024-06-15T00:00:00Z"}`,
			amount:  "300",
			method:  "MONTHLY",
			overdue: 5,
		},
		{
			name:    "as of defaults to now",
			body:    `{"principal":"15000","maturity_date":"2024-06-20T00:00:00Z"}`,
			amount:  "0",
			method:  "NONE",
			overdue: 0,
		},
		{
			name:    "grace period from request config",
			body:    `{"principal":"15000","maturity_date":"2024-06-13T00:00:00Z","as_of_date":"2024-06-15T00:00:00Z","config":{"monthly_rate":"0.02","daily_threshold_days":3,"days_in_month":30,"grace_period_days":2}}`,
			amount:  "0",
			method:  "NONE",
			overdue: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(router, http.MethodPost, "/api/v1/calculate/penalty", tt.body)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			data := decodeData(t, rec)
			assert.Equal(t, tt.amount, data["penalty_amount"])
			assert.Equal(t, tt.method, data["method"])
			assert.Equal(t, tt.overdue, data["days_overdue"])
		})
	}
}

func TestCalculatePenalty_BadConfig(t *testing.T) {
	router, _ := setupRouter(t)

	rec := serve(router, http.MethodPost, "/api/v1/calculate/penalty",
		`{"principal":"100","maturity_date":"2024-06-13T00:00:00Z","config":{"monthly_rate":"0.02","days_in_month":0}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, customError.ErrCodeInvalidPenaltyConfig, decodeCode(t, rec))
}

func TestCalculateServiceCharge(t *testing.T) {
	router, _ := setupRouter(t)

	tests := []struct {
		name   string
		body   string
		status int
		charge string
	}{
		{"default table", `{"principal":"250"}`, http.StatusOK, "2"},
		{"top bracket", `{"principal":"15000"}`, http.StatusOK, "5"},
		{"zero principal", `{"principal":"0"}`, http.StatusOK, "0"},
		{"custom table", `{"principal":"50","brackets":[{"min_amount":"0","max_amount":"99.99","charge_amount":"10"},{"min_amount":"100","charge_amount":"20"}]}`, http.StatusOK, "10"},
		{"negative principal", `{"principal":"-1"}`, http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(router, http.MethodPost, "/api/v1/calculate/service-charge", tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.status == http.StatusOK {
				assert.Equal(t, tt.charge, decodeData(t, rec)["service_charge"])
			}
		})
	}
}

func TestCalculateServiceCharge_Gap(t *testing.T) {
	router, _ := setupRouter(t)

	rec := serve(router, http.MethodPost, "/api/v1/calculate/service-charge",
		`{"principal":"150","brackets":[{"min_amount":"0","max_amount":"99.99","charge_amount":"1"},{"min_amount":"200","charge_amount":"2"}]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCalculateInterest(t *testing.T) {
	router, _ := setupRouter(t)

	rec := serve(router, http.MethodPost, "/api/v1/calculate/interest", `{
		"principal": "9000",
		"items": [
			{"category": "jewelry", "interest_rate": "3", "appraisal_value": "10000"},
			{"category": "electronics", "interest_rate": "4", "appraisal_value": "5000"}
		]
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	data := decodeData(t, rec)
	assert.Equal(t, "300", data["total_interest"])
	assert.Equal(t, "3.3", data["blended_rate"])
	assert.Len(t, data["items"], 2)

	rec = serve(router, http.MethodPost, "/api/v1/calculate/interest", `{
		"principal": "9000",
		"total_appraisal": "14000",
		"items": [{"category": "jewelry", "interest_rate": "3", "appraisal_value": "10000"}]
	}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, customError.ErrCodeConsistency, decodeCode(t, rec))
}

func TestCalculateInterest_DefaultRate(t *testing.T) {
	router, _ := setupRouter(t)

	rec := serve(router, http.MethodPost, "/api/v1/calculate/interest", `{"principal":"5000","items":[]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeData(t, rec)
	assert.Equal(t, "150", data["total_interest"])
	assert.Equal(t, true, data["used_default_rate"])
}

func TestCalculateRedemption(t *testing.T) {
	router, _ := setupRouter(t)

	rec := serve(router, http.MethodPost, "/api/v1/calculate/redemption", `{
		"principal": "1000",
		"interest_rate": "3",
		"granted_date": "2024-06-01T00:00:00Z",
		"maturity_date": "2024-07-01T00:00:00Z",
		"as_of_date": "2024-07-03T00:00:00Z"
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	data := decodeData(t, rec)
	assert.Equal(t, "30", data["interest"])
	assert.Equal(t, "1.33", data["penalty"])
	assert.Equal(t, "5", data["service_charges"])
	assert.Equal(t, "1036.33", data["total_amount_due"])

	rec = serve(router, http.MethodPost, "/api/v1/calculate/redemption", `{
		"principal": "1000",
		"interest_rate": "3",
		"granted_date": "2024-07-01T00:00:00Z",
		"maturity_date": "2024-06-01T00:00:00Z"
	}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, customError.ErrCodeInvalidDate, decodeCode(t, rec))
}

func TestCalculatePayment(t *testing.T) {
	router, _ := setupRouter(t)

	rec := serve(router, http.MethodPost, "/api/v1/calculate/payment", `{
		"amount": "5000",
		"outstanding": {"service_charges": "5", "penalty": "100", "interest": "300", "principal": "9000"}
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	data := decodeData(t, rec)
	assert.Equal(t, "5", data["applied_service_charges"])
	assert.Equal(t, "100", data["applied_penalty"])
	assert.Equal(t, "300", data["applied_interest"])
	assert.Equal(t, "4595", data["applied_principal"])
	assert.Equal(t, "4405", data["remaining_balance"])
	assert.Equal(t, false, data["fully_paid"])

	rec = serve(router, http.MethodPost, "/api/v1/calculate/payment", `{
		"amount": "10",
		"outstanding": {"service_charges": "-5", "penalty": "0", "interest": "0", "principal": "0"}
	}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
