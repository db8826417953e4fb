package domain

import (
	"testing"
	"time"

	"github.com/segyhp/pawn-engine/pkg/engine"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLoan_TotalAppraisalAndItems(t *testing.T) {
	loan := &Loan{Items: []*LoanItem{
		{Category: "GOLD", InterestRate: decimal.NewFromInt(3), AppraisalValue: decimal.NewFromInt(800)},
		{Category: "APPLIANCE", InterestRate: decimal.NewFromInt(5), AppraisalValue: decimal.NewFromInt(700)},
	}}

	assert.Equal(t, "1500", loan.TotalAppraisal().String())

	items := loan.EngineItems()
	assert.Len(t, items, 2)
	assert.Equal(t, "APPLIANCE", items[1].Category)
	assert.True(t, items[1].InterestRate.Equal(decimal.NewFromInt(5)))
}

func TestLoan_EffectiveStatus(t *testing.T) {
	loan := &Loan{
		Status:       engine.StatusRenewed,
		MaturityDate: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		ExpiryDate:   time.Date(2024, 9, 29, 0, 0, 0, 0, time.UTC),
	}

	assert.Equal(t, engine.StatusRenewed, loan.EffectiveStatus(time.Date(2024, 7, 1, 23, 0, 0, 0, time.UTC)))
	assert.Equal(t, engine.StatusMatured, loan.EffectiveStatus(time.Date(2024, 7, 2, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, engine.StatusExpired, loan.EffectiveStatus(time.Date(2024, 9, 30, 0, 0, 0, 0, time.UTC)))
}

func TestLoan_ResetCredits(t *testing.T) {
	loan := &Loan{
		ServiceChargePaid: decimal.NewFromInt(5),
		PenaltyPaid:       decimal.NewFromInt(1),
		InterestPaid:      decimal.NewFromInt(30),
	}
	loan.ResetCredits()

	assert.True(t, loan.ServiceChargePaid.IsZero())
	assert.True(t, loan.PenaltyPaid.IsZero())
	assert.True(t, loan.InterestPaid.IsZero())
}

func TestTransaction_ApplyPayment(t *testing.T) {
	txn := NewTransaction("PT-1", engine.TxPartial, decimal.NewFromInt(100), time.Now())
	assert.True(t, txn.AppliedPrincipal.IsZero())

	txn.ApplyPayment(engine.PaymentApplication{
		AppliedServiceCharges: decimal.NewFromInt(5),
		AppliedInterest:       decimal.NewFromInt(30),
		AppliedPrincipal:      decimal.NewFromInt(65),
		Overpayment:           decimal.Zero,
	})

	assert.Equal(t, "5", txn.AppliedServiceCharges.String())
	assert.Equal(t, "30", txn.AppliedInterest.String())
	assert.Equal(t, "65", txn.AppliedPrincipal.String())
	assert.NotEqual(t, txn.ID.String(), "")
}
