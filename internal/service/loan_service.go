package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/segyhp/pawn-engine/internal/config"
	"github.com/segyhp/pawn-engine/internal/domain"
	"github.com/segyhp/pawn-engine/internal/repository"
	"github.com/segyhp/pawn-engine/pkg/engine"
	customError "github.com/segyhp/pawn-engine/pkg/errors"
	"github.com/segyhp/pawn-engine/pkg/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type LoanService struct {
	loans    repository.LoanRepository
	txns     repository.TransactionRepository
	settings *Settings
	config   *config.Config
	logger   *zap.Logger
	now      func() time.Time
}

func NewLoanService(
	loans repository.LoanRepository,
	txns repository.TransactionRepository,
	settings repository.SettingsRepository,
	config *config.Config,
	logger *zap.Logger,
) *LoanService {
	return &LoanService{
		loans:    loans,
		txns:     txns,
		settings: NewSettings(settings, config.GetPenaltyConfig()),
		config:   config,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// settlement is the calculation context shared by quotes and payments.
type settlement struct {
	penalty  engine.PenaltyConfig
	brackets []engine.ServiceChargeBracket
}

// CreateLoan grants a new loan: allocates item interest, prices the service
// charge and records the NEW_LOAN transaction together with the loan.
func (s *LoanService) CreateLoan(ctx context.Context, request *domain.CreateLoanRequest) (*domain.CreateLoanResponse, error) {
	existing, err := s.loans.GetByLoanID(ctx, request.LoanID)
	if err == nil && existing != nil {
		return nil, customError.WrapLoanAlreadyExists(request.LoanID)
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, customError.WrapDatabaseError(err)
	}
	if err := engine.CheckTransaction(request.LoanID, engine.TxNewLoan, ""); err != nil {
		return nil, err
	}

	items := make([]*domain.LoanItem, 0, len(request.Items))
	for i, it := range request.Items {
		items = append(items, &domain.LoanItem{
			ID:             uuid.New(),
			LoanID:         request.LoanID,
			Position:       i,
			Category:       it.Category,
			Description:    it.Description,
			InterestRate:   it.InterestRate,
			AppraisalValue: it.AppraisalValue,
		})
	}

	loan := &domain.Loan{
		ID:                uuid.New(),
		LoanID:            request.LoanID,
		PawnerName:        request.PawnerName,
		Principal:         request.Principal,
		Items:             items,
		ServiceChargePaid: decimal.Zero,
		PenaltyPaid:       decimal.Zero,
		InterestPaid:      decimal.Zero,
	}

	totalAppraisal := loan.TotalAppraisal()
	if request.TotalAppraisal != nil {
		totalAppraisal = *request.TotalAppraisal
	}
	if err := checkWithinAppraisal(request.Principal, totalAppraisal); err != nil {
		return nil, err
	}

	allocation, err := engine.AllocateItemInterest(request.Principal, loan.EngineItems(), totalAppraisal, s.config.GetDefaultInterestRate())
	if err != nil {
		return nil, err
	}

	brackets, err := s.settings.ServiceChargeBrackets(ctx)
	if err != nil {
		return nil, err
	}
	serviceCharge, err := engine.CalculateServiceCharge(request.Principal, brackets)
	if err != nil {
		return nil, err
	}

	granted := s.now()
	if request.GrantedDate != nil {
		granted = request.GrantedDate.UTC()
	}
	loan.InterestRate = allocation.BlendedRate
	s.setTerm(loan, granted)
	loan.Status = engine.NextStatus(engine.TxNewLoan, "")

	txn := domain.NewTransaction(loan.LoanID, engine.TxNewLoan, loan.Principal, granted)
	txn.PrincipalAfter = loan.Principal
	txn.StatusAfter = loan.Status

	if err := s.loans.Create(ctx, loan, txn); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.logger.Info("loan granted",
		zap.String("loan_id", loan.LoanID),
		zap.String("principal", loan.Principal.String()),
		zap.String("interest_rate", loan.InterestRate.String()),
		zap.Time("maturity_date", loan.MaturityDate),
	)

	return &domain.CreateLoanResponse{
		Loan:          loan,
		Allocation:    allocation,
		ServiceCharge: serviceCharge,
		Transaction:   txn,
	}, nil
}

// GetLoan returns a loan with its items
func (s *LoanService) GetLoan(ctx context.Context, loanID string) (*domain.Loan, error) {
	loan, err := s.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, loanError(loanID, err)
	}
	return loan, nil
}

// GetRedemptionQuote prices a full redemption of the loan as of asOf.
func (s *LoanService) GetRedemptionQuote(ctx context.Context, loanID string, asOf time.Time) (*domain.RedemptionQuote, error) {
	loan, err := s.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, loanError(loanID, err)
	}
	if loan.Status.IsTerminal() {
		return nil, customError.WrapTerminalLoan(loanID, string(loan.Status))
	}

	st, err := s.loadSettlement(ctx)
	if err != nil {
		return nil, err
	}
	return st.quote(loan, asOf)
}

// ProcessTransaction runs a PARTIAL, ADDITIONAL, RENEW or REDEEM
// transaction while holding the loan's lock.
func (s *LoanService) ProcessTransaction(ctx context.Context, loanID string, request *domain.TransactionRequest) (*domain.TransactionResponse, error) {
	if !request.Type.Valid() || request.Type == engine.TxNewLoan {
		return nil, customError.InvalidInput(customError.ErrCodeUnknownTransaction, "unsupported transaction type "+string(request.Type))
	}
	if request.Amount.IsNegative() {
		return nil, customError.InvalidAmount("amount", request.Amount)
	}

	date := s.now()
	if request.Date != nil {
		date = request.Date.UTC()
	}

	// settings are read before taking the lock so the lock holds one connection only
	st, err := s.loadSettlement(ctx)
	if err != nil {
		return nil, err
	}

	var resp *domain.TransactionResponse
	err = s.loans.WithLoanLock(ctx, loanID, func(ctx context.Context, tx repository.LoanTx) error {
		loan := tx.Loan()
		status := loan.EffectiveStatus(date)
		if err := engine.CheckTransaction(loanID, request.Type, status); err != nil {
			return err
		}
		// persist any maturity or expiry the loan has passed
		loan.Status = status

		txn := domain.NewTransaction(loanID, request.Type, request.Amount, date)
		var err error
		switch request.Type {
		case engine.TxPartial:
			resp, err = st.partial(loan, txn)
		case engine.TxAdditional:
			resp, err = s.additional(loan, txn, st)
		case engine.TxRenew:
			resp, err = s.renew(loan, txn, st)
		case engine.TxRedeem:
			resp, err = st.redeem(loan, txn)
		}
		if err != nil {
			return err
		}

		txn.StatusAfter = loan.Status
		if err := tx.UpdateLoan(ctx, loan); err != nil {
			return customError.WrapDatabaseError(err)
		}
		if err := tx.RecordTransaction(ctx, txn); err != nil {
			return customError.WrapDatabaseError(err)
		}

		resp.Transaction = txn
		resp.Loan = loan
		return nil
	})
	if err != nil {
		s.logger.Warn("transaction rejected",
			zap.String("loan_id", loanID),
			zap.String("type", string(request.Type)),
			zap.String("amount", request.Amount.String()),
			zap.Error(err),
		)
		return nil, loanError(loanID, err)
	}

	s.logger.Info("transaction processed",
		zap.String("loan_id", loanID),
		zap.String("type", string(request.Type)),
		zap.String("amount", request.Amount.String()),
		zap.String("status", string(resp.Loan.Status)),
	)
	return resp, nil
}

// ListTransactions returns a loan's transactions oldest first
func (s *LoanService) ListTransactions(ctx context.Context, loanID string) ([]*domain.Transaction, error) {
	if _, err := s.loans.GetByLoanID(ctx, loanID); err != nil {
		return nil, loanError(loanID, err)
	}

	txns, err := s.txns.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return txns, nil
}

// RefreshStatuses stores MATURED or EXPIRED on open loans that have passed
// those dates as of asOf, and returns how many loans changed. A loan whose
// status moved since it was listed, such as one redeemed in the meantime,
// is skipped. A failed update is logged and does not stop the rest.
func (s *LoanService) RefreshStatuses(ctx context.Context, asOf time.Time) (int, error) {
	loans, err := s.loans.ListOpen(ctx)
	if err != nil {
		return 0, customError.WrapDatabaseError(err)
	}

	var (
		updated int
		errs    []error
	)
	for _, loan := range loans {
		next := loan.EffectiveStatus(asOf)
		if next == loan.Status {
			continue
		}
		ok, err := s.loans.UpdateStatus(ctx, loan.LoanID, loan.Status, next)
		if err != nil {
			s.logger.Error("status refresh failed", zap.String("loan_id", loan.LoanID), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		if !ok {
			s.logger.Debug("status refresh skipped, loan changed since listing", zap.String("loan_id", loan.LoanID))
			continue
		}
		updated++
		s.logger.Info("loan status changed",
			zap.String("loan_id", loan.LoanID),
			zap.String("from", string(loan.Status)),
			zap.String("to", string(next)),
		)
	}

	if len(errs) > 0 {
		return updated, customError.WrapDatabaseError(errors.Join(errs...))
	}
	return updated, nil
}

func (s *LoanService) additional(loan *domain.Loan, txn *domain.Transaction, st settlement) (*domain.TransactionResponse, error) {
	if !txn.Amount.IsPositive() {
		return nil, customError.InvalidInput(customError.ErrCodeInvalidAmount, "additional amount must be greater than 0")
	}

	principal := loan.Principal.Add(txn.Amount)
	totalAppraisal := loan.TotalAppraisal()
	if err := checkWithinAppraisal(principal, totalAppraisal); err != nil {
		return nil, err
	}

	allocation, err := engine.AllocateItemInterest(principal, loan.EngineItems(), totalAppraisal, s.config.GetDefaultInterestRate())
	if err != nil {
		return nil, err
	}
	serviceCharge, err := engine.CalculateServiceCharge(principal, st.brackets)
	if err != nil {
		return nil, err
	}

	loan.Principal = principal
	loan.InterestRate = allocation.BlendedRate
	loan.Status = engine.NextStatus(engine.TxAdditional, loan.Status)
	txn.PrincipalAfter = principal

	return &domain.TransactionResponse{Allocation: &allocation, ServiceCharge: &serviceCharge}, nil
}

func (s *LoanService) renew(loan *domain.Loan, txn *domain.Transaction, st settlement) (*domain.TransactionResponse, error) {
	quote, err := st.quote(loan, txn.TransactionDate)
	if err != nil {
		return nil, err
	}

	charges := quote.Outstanding.Charges()
	if txn.Amount.LessThan(charges) {
		return nil, customError.WrapInsufficientPayment(charges.StringFixed(2), txn.Amount.StringFixed(2))
	}

	app, err := engine.ApplyPayment(txn.Amount, quote.Outstanding)
	if err != nil {
		return nil, err
	}
	if app.FullyPaid {
		return nil, customError.InvalidInput(customError.ErrCodeSettlesLoan, "renewal payment settles the whole balance; redeem the loan instead")
	}

	txn.ApplyPayment(app)
	loan.Principal = app.Remaining.Principal
	loan.ResetCredits()
	s.setTerm(loan, txn.TransactionDate)
	loan.Status = engine.NextStatus(engine.TxRenew, loan.Status)
	txn.PrincipalAfter = loan.Principal

	return &domain.TransactionResponse{Breakdown: &quote.Breakdown, Payment: &app}, nil
}

func (st settlement) partial(loan *domain.Loan, txn *domain.Transaction) (*domain.TransactionResponse, error) {
	if !txn.Amount.IsPositive() {
		return nil, customError.InvalidInput(customError.ErrCodeInvalidAmount, "partial payment must be greater than 0")
	}

	quote, err := st.quote(loan, txn.TransactionDate)
	if err != nil {
		return nil, err
	}

	app, err := engine.ApplyPayment(txn.Amount, quote.Outstanding)
	if err != nil {
		return nil, err
	}
	if app.FullyPaid {
		return nil, customError.InvalidInput(customError.ErrCodeSettlesLoan, "partial payment settles the whole balance; redeem the loan instead")
	}

	txn.ApplyPayment(app)
	addCredits(loan, app)
	loan.Principal = loan.Principal.Sub(app.AppliedPrincipal)
	loan.Status = engine.NextStatus(engine.TxPartial, loan.Status)
	txn.PrincipalAfter = loan.Principal

	return &domain.TransactionResponse{Breakdown: &quote.Breakdown, Payment: &app}, nil
}

func (st settlement) redeem(loan *domain.Loan, txn *domain.Transaction) (*domain.TransactionResponse, error) {
	quote, err := st.quote(loan, txn.TransactionDate)
	if err != nil {
		return nil, err
	}

	if txn.Amount.LessThan(quote.TotalOutstanding) {
		return nil, customError.WrapInsufficientPayment(quote.TotalOutstanding.StringFixed(2), txn.Amount.StringFixed(2))
	}

	app, err := engine.ApplyPayment(txn.Amount, quote.Outstanding)
	if err != nil {
		return nil, err
	}

	txn.ApplyPayment(app)
	addCredits(loan, app)
	loan.Status = engine.NextStatus(engine.TxRedeem, loan.Status)
	txn.PrincipalAfter = app.Remaining.Principal

	return &domain.TransactionResponse{Breakdown: &quote.Breakdown, Payment: &app}, nil
}

// quote prices the loan as of asOf and nets out what has already been paid
// against each bucket since the last renewal.
func (st settlement) quote(loan *domain.Loan, asOf time.Time) (*domain.RedemptionQuote, error) {
	serviceCharge, err := engine.CalculateServiceCharge(loan.Principal, st.brackets)
	if err != nil {
		return nil, err
	}

	breakdown, err := engine.CalculateRedemption(engine.RedemptionInput{
		Principal:      loan.Principal,
		InterestRate:   loan.InterestRate,
		GrantedDate:    loan.GrantedDate,
		MaturityDate:   loan.MaturityDate,
		AsOfDate:       asOf,
		ServiceCharges: serviceCharge,
		Penalty:        st.penalty,
	})
	if err != nil {
		return nil, err
	}

	credits := engine.Outstanding{
		ServiceCharges: loan.ServiceChargePaid,
		Penalty:        loan.PenaltyPaid,
		Interest:       loan.InterestPaid,
		Principal:      decimal.Zero,
	}
	due := breakdown.Outstanding()
	outstanding := engine.Outstanding{
		ServiceCharges: utils.NonNegative(due.ServiceCharges.Sub(credits.ServiceCharges)),
		Penalty:        utils.NonNegative(due.Penalty.Sub(credits.Penalty)),
		Interest:       utils.NonNegative(due.Interest.Sub(credits.Interest)),
		Principal:      due.Principal,
	}

	return &domain.RedemptionQuote{
		LoanID:           loan.LoanID,
		AsOf:             asOf,
		Status:           loan.EffectiveStatus(asOf),
		Breakdown:        breakdown,
		Credits:          credits,
		Outstanding:      outstanding,
		TotalOutstanding: outstanding.Total(),
	}, nil
}

func (s *LoanService) loadSettlement(ctx context.Context) (settlement, error) {
	penalty, err := s.settings.PenaltyConfig(ctx)
	if err != nil {
		return settlement{}, err
	}
	brackets, err := s.settings.ServiceChargeBrackets(ctx)
	if err != nil {
		return settlement{}, err
	}
	return settlement{penalty: penalty, brackets: brackets}, nil
}

// setTerm stores all three term dates in UTC.
func (s *LoanService) setTerm(loan *domain.Loan, start time.Time) {
	start = start.UTC()
	loan.GrantedDate = start
	loan.MaturityDate = utils.AddDays(start, s.config.Business.LoanTermDays)
	loan.ExpiryDate = utils.AddDays(loan.MaturityDate, s.config.Business.ExpiryDays)
}

func addCredits(loan *domain.Loan, app engine.PaymentApplication) {
	loan.ServiceChargePaid = loan.ServiceChargePaid.Add(app.AppliedServiceCharges)
	loan.PenaltyPaid = loan.PenaltyPaid.Add(app.AppliedPenalty)
	loan.InterestPaid = loan.InterestPaid.Add(app.AppliedInterest)
}

func checkWithinAppraisal(principal, totalAppraisal decimal.Decimal) error {
	if totalAppraisal.IsPositive() && principal.GreaterThan(totalAppraisal) {
		return customError.InvalidInput(
			customError.ErrCodeExceedsAppraisal,
			"principal "+principal.StringFixed(2)+" exceeds the total appraised value "+totalAppraisal.StringFixed(2),
		)
	}
	return nil
}

// loanError maps repository failures onto business errors and passes
// business errors through unchanged.
func loanError(loanID string, err error) error {
	var be *customError.BusinessError
	switch {
	case errors.As(err, &be):
		return err
	case errors.Is(err, repository.ErrNotFound):
		return customError.WrapLoanNotFound(loanID)
	default:
		return customError.WrapDatabaseError(err)
	}
}

func settingsError(err error) error {
	var be *customError.BusinessError
	if errors.As(err, &be) {
		return err
	}
	return customError.WrapDatabaseError(err)
}
