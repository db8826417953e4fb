package handler

import (
	"github.com/gorilla/mux"
)

// NewRouter wires every endpoint onto a mux router.
func NewRouter(loans *LoanHandler, calc *CalculatorHandler, health *HealthHandler) *mux.Router {
	router := mux.NewRouter()

	// Health check
	if health != nil {
		router.HandleFunc("/health", health.Health).Methods("GET")
		router.HandleFunc("/health/ready", health.Ready).Methods("GET")
	}

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/loans", loans.CreateLoan).Methods("POST")
	api.HandleFunc("/loans/{loanId}", loans.GetLoan).Methods("GET")
	api.HandleFunc("/loans/{loanId}/redemption", loans.GetRedemptionQuote).Methods("GET")
	api.HandleFunc("/loans/{loanId}/transactions", loans.CreateTransaction).Methods("POST")
	api.HandleFunc("/loans/{loanId}/transactions", loans.ListTransactions).Methods("GET")

	api.HandleFunc("/calculate/penalty", calc.Penalty).Methods("POST")
	api.HandleFunc("/calculate/service-charge", calc.ServiceCharge).Methods("POST")
	api.HandleFunc("/calculate/interest", calc.Interest).Methods("POST")
	api.HandleFunc("/calculate/redemption", calc.Redemption).Methods("POST")
	api.HandleFunc("/calculate/payment", calc.Payment).Methods("POST")

	return router
}
