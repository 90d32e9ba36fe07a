package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/checkout-api/internal/domain/entity"
	"github.com/sangkips/checkout-api/internal/domain/enum"
	"github.com/sangkips/checkout-api/internal/domain/repository"
	"github.com/sangkips/checkout-api/pkg/apperror"
	"github.com/sangkips/checkout-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// CreditLedger tracks per-customer outstanding balances against their limits.
type CreditLedger struct {
	accounts  repository.CreditAccountRepository
	customers repository.CustomerRepository
	uow       repository.UnitOfWork
	walkInID  uuid.UUID
}

// NewCreditLedger creates a new credit ledger
func NewCreditLedger(
	accounts repository.CreditAccountRepository,
	customers repository.CustomerRepository,
	uow repository.UnitOfWork,
	walkInID uuid.UUID,
) *CreditLedger {
	if walkInID == uuid.Nil {
		walkInID = entity.WalkInCustomerID
	}
	return &CreditLedger{
		accounts:  accounts,
		customers: customers,
		uow:       uow,
		walkInID:  walkInID,
	}
}

// WalkInID returns the reserved anonymous customer id.
func (l *CreditLedger) WalkInID() uuid.UUID {
	return l.walkInID
}

// IsWalkIn reports whether the id is the anonymous customer.
func (l *CreditLedger) IsWalkIn(customerID uuid.UUID) bool {
	return customerID == l.walkInID
}

// checkAccount validates a prospective credit sale against an already loaded account.
func (l *CreditLedger) checkAccount(customerID uuid.UUID, account *entity.CreditAccount, amount decimal.Decimal) error {
	if l.IsWalkIn(customerID) {
		return apperror.NewCreditDisabledError("walk-in customer")
	}
	if account == nil {
		return apperror.NewCreditDisabledError("no credit account")
	}
	if !account.AllowsCredit() {
		if !account.Enabled {
			return apperror.NewCreditDisabledError("credit account disabled")
		}
		return apperror.NewCreditDisabledError("credit limit is zero")
	}
	if account.Balance.Add(amount).GreaterThan(account.CreditLimit) {
		return apperror.NewLimitExceededError(account.Balance, account.CreditLimit, amount, account.Headroom())
	}
	return nil
}

// CheckLimit reports whether a credit sale of amount is allowed right now.
// Passing the check does not reserve headroom; ApplyCreditSale re-checks under lock.
func (l *CreditLedger) CheckLimit(ctx context.Context, customerID uuid.UUID, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return apperror.NewInvalidQuantityError("amount", amount.String())
	}
	if l.IsWalkIn(customerID) {
		return apperror.NewCreditDisabledError("walk-in customer")
	}
	account, err := l.accounts.Get(ctx, customerID)
	if err != nil {
		return apperror.NewPersistenceError(err)
	}
	return l.checkAccount(customerID, account, amount)
}

// ApplyCreditSale adds the net amount of a credit sale to the customer's balance.
// It joins the caller's unit of work.
func (l *CreditLedger) ApplyCreditSale(ctx context.Context, customerID uuid.UUID, amount decimal.Decimal, saleID *uuid.UUID) (*entity.CreditAccount, error) {
	if amount.IsNegative() {
		return nil, apperror.NewInvalidQuantityError("amount", amount.String())
	}

	var updated *entity.CreditAccount
	err := l.uow.Do(ctx, func(ctx context.Context) error {
		account, err := l.accounts.GetForUpdate(ctx, customerID)
		if err != nil {
			return err
		}
		if err := l.checkAccount(customerID, account, amount); err != nil {
			return err
		}

		account.Balance = account.Balance.Add(amount)
		if err := l.accounts.Save(ctx, account); err != nil {
			return err
		}
		updated = account

		return l.accounts.AddEntry(ctx, &entity.CreditEntry{
			CustomerID:   customerID,
			Kind:         enum.CreditEntrySale,
			Amount:       amount,
			BalanceAfter: account.Balance,
			SaleID:       saleID,
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// PaymentResult is the outcome of a credit repayment.
type PaymentResult struct {
	CustomerID uuid.UUID       `json:"customer_id"`
	Applied    decimal.Decimal `json:"applied"`
	Unapplied  decimal.Decimal `json:"unapplied"`
	Balance    decimal.Decimal `json:"balance"`
}

// ApplyPayment reduces the balance by min(amount, balance); any excess is reported as unapplied.
func (l *CreditLedger) ApplyPayment(ctx context.Context, customerID uuid.UUID, amount decimal.Decimal, reference string) (*PaymentResult, error) {
	if !amount.IsPositive() {
		return nil, apperror.NewInvalidQuantityError("amount", amount.String())
	}

	result := &PaymentResult{CustomerID: customerID}
	err := l.uow.Do(ctx, func(ctx context.Context) error {
		account, err := l.accounts.GetForUpdate(ctx, customerID)
		if err != nil {
			return err
		}
		if account == nil {
			return apperror.NewNotFoundError("Credit account")
		}

		applied := decimal.Min(amount, account.Balance)
		account.Balance = account.Balance.Sub(applied)
		if err := l.accounts.Save(ctx, account); err != nil {
			return err
		}
		result.Applied = applied
		result.Unapplied = amount.Sub(applied)
		result.Balance = account.Balance

		if !applied.IsPositive() {
			return nil
		}
		return l.accounts.AddEntry(ctx, &entity.CreditEntry{
			CustomerID:   customerID,
			Kind:         enum.CreditEntryPayment,
			Amount:       applied,
			BalanceAfter: account.Balance,
			Reference:    strings.TrimSpace(reference),
		})
	})
	if err != nil {
		if apperror.IsAppError(err) {
			return nil, err
		}
		return nil, apperror.NewPersistenceError(err)
	}

	log.Info().
		Str("customer_id", customerID.String()).
		Str("applied", result.Applied.StringFixed(2)).
		Str("balance", result.Balance.StringFixed(2)).
		Msg("credit payment applied")
	return result, nil
}

// ConfigureAccountInput sets a customer's credit terms.
type ConfigureAccountInput struct {
	CustomerID  uuid.UUID
	CreditLimit decimal.Decimal
	Enabled     bool
}

// ConfigureAccount creates or updates a customer's credit account. The balance is never touched.
func (l *CreditLedger) ConfigureAccount(ctx context.Context, input *ConfigureAccountInput) (*entity.CreditAccount, error) {
	if input.CreditLimit.IsNegative() {
		return nil, apperror.NewInvalidQuantityError("credit_limit", input.CreditLimit.String())
	}
	if l.IsWalkIn(input.CustomerID) && input.Enabled {
		return nil, apperror.NewCreditDisabledError("walk-in customer")
	}

	var account *entity.CreditAccount
	err := l.uow.Do(ctx, func(ctx context.Context) error {
		customer, err := l.customers.GetByID(ctx, input.CustomerID)
		if err != nil {
			return err
		}
		if customer == nil {
			return apperror.NewNotFoundError("Customer")
		}

		account, err = l.accounts.GetForUpdate(ctx, input.CustomerID)
		if err != nil {
			return err
		}
		if account == nil {
			account = &entity.CreditAccount{CustomerID: input.CustomerID, Balance: decimal.Zero}
		}
		account.CreditLimit = input.CreditLimit
		account.Enabled = input.Enabled
		return l.accounts.Save(ctx, account)
	})
	if err != nil {
		if apperror.IsAppError(err) {
			return nil, err
		}
		return nil, apperror.NewPersistenceError(err)
	}
	return account, nil
}

// GetAccount returns the customer's credit account.
func (l *CreditLedger) GetAccount(ctx context.Context, customerID uuid.UUID) (*entity.CreditAccount, error) {
	account, err := l.accounts.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, apperror.NewNotFoundError("Credit account")
	}
	return account, nil
}

// ListEntries returns the customer's credit history, newest first.
func (l *CreditLedger) ListEntries(ctx context.Context, customerID uuid.UUID, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.CreditEntry], error) {
	if params == nil {
		params = pagination.DefaultPagination()
	}
	params.Validate()

	entries, total, err := l.accounts.ListEntries(ctx, customerID, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(entries, params, total), nil
}
