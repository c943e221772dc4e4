package budgets

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrBudgetNotFound     = errors.New("budget not found")
	ErrUnauthorizedAccess = errors.New("unauthorized: user does not own this budget")
	ErrInvalidSection     = errors.New("budget section must be 'income', 'fixed', 'variable' or 'savings_and_debt'")
	ErrInvalidAmount      = errors.New("budget amount must not be negative")
)

var budgetSections = map[string]struct{}{
	"income":           {},
	"fixed":            {},
	"variable":         {},
	"savings_and_debt": {},
}

func IsValidSection(section string) bool {
	_, ok := budgetSections[section]
	return ok
}

// SectionTotals sums budget amounts per section, keyed by section name.
type SectionTotals map[string]decimal.Decimal

type Service interface {
	CreateBudget(ctx context.Context, userID, section, label string, amount decimal.Decimal) (*Budget, error)
	GetBudget(ctx context.Context, budgetID int, userID string) (*Budget, error)
	GetAllBudgets(ctx context.Context, userID string) ([]Budget, error)
	GetSectionTotals(ctx context.Context, userID string) (SectionTotals, error)
	UpdateBudget(ctx context.Context, budgetID int, userID string, section, label *string, amount *decimal.Decimal) (*Budget, error)
	DeleteBudget(ctx context.Context, budgetID int, userID string) error
}

type service struct {
	budgetRepo BudgetRepository
}

func NewBudgetService(repo BudgetRepository) Service {
	return &service{budgetRepo: repo}
}

func (s *service) CreateBudget(ctx context.Context, userID, section, label string, amount decimal.Decimal) (*Budget, error) {
	if !IsValidSection(section) {
		return nil, ErrInvalidSection
	}
	if amount.IsNegative() {
		return nil, ErrInvalidAmount
	}

	budget := &Budget{
		UserID:  userID,
		Section: section,
		Label:   label,
		Amount:  amount.Round(2),
	}
	err := s.budgetRepo.Create(ctx, budget)
	return budget, err
}

func (s *service) GetBudget(ctx context.Context, budgetID int, userID string) (*Budget, error) {
	var budget Budget
	err := s.budgetRepo.FindByID(ctx, budgetID, &budget)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBudgetNotFound
		}
		return nil, err
	}
	if budget.UserID != userID {
		return nil, ErrUnauthorizedAccess
	}
	return &budget, nil
}

func (s *service) GetAllBudgets(ctx context.Context, userID string) ([]Budget, error) {
	var budgets []Budget
	if err := s.budgetRepo.FindByUserID(ctx, userID, &budgets); err != nil {
		return nil, err
	}
	return budgets, nil
}

func (s *service) GetSectionTotals(ctx context.Context, userID string) (SectionTotals, error) {
	budgets, err := s.GetAllBudgets(ctx, userID)
	if err != nil {
		return nil, err
	}

	totals := make(SectionTotals, len(budgetSections))
	for section := range budgetSections {
		totals[section] = decimal.Zero
	}
	for _, budget := range budgets {
		totals[budget.Section] = totals[budget.Section].Add(budget.Amount)
	}
	return totals, nil
}

func (s *service) UpdateBudget(ctx context.Context, budgetID int, userID string, section, label *string, amount *decimal.Decimal) (*Budget, error) {
	budget, err := s.GetBudget(ctx, budgetID, userID)
	if err != nil {
		return nil, err
	}

	if section != nil {
		if !IsValidSection(*section) {
			return nil, ErrInvalidSection
		}
		budget.Section = *section
	}
	if label != nil {
		budget.Label = *label
	}
	if amount != nil {
		if amount.IsNegative() {
			return nil, ErrInvalidAmount
		}
		budget.Amount = amount.Round(2)
	}

	affected, err := s.budgetRepo.Update(ctx, budget)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrBudgetNotFound
	}
	return budget, nil
}

func (s *service) DeleteBudget(ctx context.Context, budgetID int, userID string) error {
	if _, err := s.GetBudget(ctx, budgetID, userID); err != nil {
		return err
	}
	return s.budgetRepo.Delete(ctx, budgetID)
}
