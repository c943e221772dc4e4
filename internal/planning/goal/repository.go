package goals

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

type Goal struct {
	ID           int             `json:"goal_id"`
	UserID       string          `json:"-"`
	Title        string          `json:"title"`
	TargetAmount decimal.Decimal `json:"target_amount"`
	// CurrentAmount is derived from the goal's deposits, never stored.
	CurrentAmount decimal.Decimal `json:"current_amount"`
	TargetDate    *time.Time      `json:"target_date,omitempty"`
	Priority      string          `json:"priority"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type GoalDeposit struct {
	ID        int             `json:"deposit_id"`
	GoalID    int             `json:"goal_id"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}

type GoalRepository interface {
	Create(ctx context.Context, goal *Goal) error
	FindByID(ctx context.Context, goalID int, goal *Goal) error
	FindByUserID(ctx context.Context, userID string, goals *[]Goal) error
	Update(ctx context.Context, goal *Goal) (int64, error)
	Delete(ctx context.Context, goalID int) error
	CreateDeposit(ctx context.Context, deposit *GoalDeposit) error
	FindDeposits(ctx context.Context, goalID int, deposits *[]GoalDeposit) error
	SumDeposits(ctx context.Context, goalID int) (decimal.Decimal, error)
}

type goalRepository struct {
	db *sql.DB
}

func NewGoalRepository(db *sql.DB) GoalRepository {
	return &goalRepository{db: db}
}

func (r *goalRepository) Create(ctx context.Context, goal *Goal) error {
	query := `INSERT INTO goals (user_id, title, target_amount, target_date, priority)
              VALUES ($1, $2, $3, $4, $5)
              RETURNING goal_id, created_at, updated_at`
	return r.db.QueryRowContext(ctx, query, goal.UserID, goal.Title, goal.TargetAmount, goal.TargetDate, goal.Priority).
		Scan(&goal.ID, &goal.CreatedAt, &goal.UpdatedAt)
}

func (r *goalRepository) FindByID(ctx context.Context, goalID int, goal *Goal) error {
	query := `SELECT g.goal_id, g.user_id, g.title, g.target_amount,
                     COALESCE(SUM(d.amount), 0) AS current_amount,
                     g.target_date, g.priority, g.created_at, g.updated_at
              FROM goals g
              LEFT JOIN goal_deposits d ON d.goal_id = g.goal_id
              WHERE g.goal_id = $1
              GROUP BY g.goal_id`
	return r.db.QueryRowContext(ctx, query, goalID).Scan(
		&goal.ID, &goal.UserID, &goal.Title, &goal.TargetAmount,
		&goal.CurrentAmount, &goal.TargetDate, &goal.Priority, &goal.CreatedAt, &goal.UpdatedAt)
}

func (r *goalRepository) FindByUserID(ctx context.Context, userID string, goals *[]Goal) error {
	query := `SELECT g.goal_id, g.user_id, g.title, g.target_amount,
                     COALESCE(SUM(d.amount), 0) AS current_amount,
                     g.target_date, g.priority, g.created_at, g.updated_at
              FROM goals g
              LEFT JOIN goal_deposits d ON d.goal_id = g.goal_id
              WHERE g.user_id = $1
              GROUP BY g.goal_id
              ORDER BY g.created_at`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var goal Goal
		if err := rows.Scan(&goal.ID, &goal.UserID, &goal.Title, &goal.TargetAmount,
			&goal.CurrentAmount, &goal.TargetDate, &goal.Priority, &goal.CreatedAt, &goal.UpdatedAt); err != nil {
			return err
		}
		*goals = append(*goals, goal)
	}
	return rows.Err()
}

func (r *goalRepository) Update(ctx context.Context, goal *Goal) (int64, error) {
	query := `
        UPDATE goals
        SET title = $1, target_amount = $2, target_date = $3, priority = $4, updated_at = $5
        WHERE goal_id = $6 AND user_id = $7
    `

	result, err := r.db.ExecContext(ctx, query, goal.Title, goal.TargetAmount, goal.TargetDate, goal.Priority, time.Now(), goal.ID, goal.UserID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *goalRepository) Delete(ctx context.Context, goalID int) error {
	// goal_deposits rows go with the goal via ON DELETE CASCADE.
	query := `DELETE FROM goals WHERE goal_id = $1`
	_, err := r.db.ExecContext(ctx, query, goalID)
	return err
}

func (r *goalRepository) CreateDeposit(ctx context.Context, deposit *GoalDeposit) error {
	query := `INSERT INTO goal_deposits (goal_id, amount)
              VALUES ($1, $2)
              RETURNING deposit_id, created_at`
	return r.db.QueryRowContext(ctx, query, deposit.GoalID, deposit.Amount).
		Scan(&deposit.ID, &deposit.CreatedAt)
}

func (r *goalRepository) FindDeposits(ctx context.Context, goalID int, deposits *[]GoalDeposit) error {
	query := `SELECT deposit_id, goal_id, amount, created_at
              FROM goal_deposits WHERE goal_id = $1 ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, goalID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var deposit GoalDeposit
		if err := rows.Scan(&deposit.ID, &deposit.GoalID, &deposit.Amount, &deposit.CreatedAt); err != nil {
			return err
		}
		*deposits = append(*deposits, deposit)
	}
	return rows.Err()
}

func (r *goalRepository) SumDeposits(ctx context.Context, goalID int) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM goal_deposits WHERE goal_id = $1`

	var sum decimal.Decimal
	err := r.db.QueryRowContext(ctx, query, goalID).Scan(&sum)
	return sum, err
}
