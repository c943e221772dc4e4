package budgets

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

type Budget struct {
	ID        int             `json:"budget_id"`
	UserID    string          `json:"-"`
	Section   string          `json:"section"`
	Label     string          `json:"label"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type BudgetRepository interface {
	Create(ctx context.Context, budget *Budget) error
	FindByID(ctx context.Context, budgetID int, budget *Budget) error
	FindByUserID(ctx context.Context, userID string, budgets *[]Budget) error
	Update(ctx context.Context, budget *Budget) (int64, error)
	Delete(ctx context.Context, budgetID int) error
}

type budgetRepository struct {
	db *sql.DB
}

func NewBudgetRepository(db *sql.DB) BudgetRepository {
	return &budgetRepository{db: db}
}

func (r *budgetRepository) Create(ctx context.Context, budget *Budget) error {
	query := `INSERT INTO budgets (user_id, section, label, amount)
              VALUES ($1, $2, $3, $4)
              RETURNING budget_id, created_at, updated_at`
	return r.db.QueryRowContext(ctx, query, budget.UserID, budget.Section, budget.Label, budget.Amount).
		Scan(&budget.ID, &budget.CreatedAt, &budget.UpdatedAt)
}

func (r *budgetRepository) FindByID(ctx context.Context, budgetID int, budget *Budget) error {
	query := `SELECT budget_id, user_id, section, label, amount, created_at, updated_at
              FROM budgets WHERE budget_id = $1`
	return r.db.QueryRowContext(ctx, query, budgetID).Scan(
		&budget.ID, &budget.UserID, &budget.Section, &budget.Label, &budget.Amount, &budget.CreatedAt, &budget.UpdatedAt)
}

func (r *budgetRepository) FindByUserID(ctx context.Context, userID string, budgets *[]Budget) error {
	query := `SELECT budget_id, user_id, section, label, amount, created_at, updated_at
              FROM budgets WHERE user_id = $1 ORDER BY section, label`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var budget Budget
		if err := rows.Scan(&budget.ID, &budget.UserID, &budget.Section, &budget.Label, &budget.Amount, &budget.CreatedAt, &budget.UpdatedAt); err != nil {
			return err
		}
		*budgets = append(*budgets, budget)
	}
	return rows.Err()
}

func (r *budgetRepository) Update(ctx context.Context, budget *Budget) (int64, error) {
	query := `
        UPDATE budgets
        SET section = $1, label = $2, amount = $3, updated_at = $4
        WHERE budget_id = $5 AND user_id = $6
    `

	result, err := r.db.ExecContext(ctx, query, budget.Section, budget.Label, budget.Amount, time.Now(), budget.ID, budget.UserID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *budgetRepository) Delete(ctx context.Context, budgetID int) error {
	query := `DELETE FROM budgets WHERE budget_id = $1`
	_, err := r.db.ExecContext(ctx, query, budgetID)
	return err
}
