package goals

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrGoalNotFound       = errors.New("goal not found")
	ErrUnauthorizedAccess = errors.New("unauthorized: user does not own this goal")
	ErrInvalidPriority    = errors.New("goal priority must be 'low', 'med' or 'high'")
	ErrInvalidTarget      = errors.New("goal target amount must be positive")
	ErrInvalidDeposit     = errors.New("deposit amount must be positive")
)

func IsValidPriority(priority string) bool {
	return priority == "low" || priority == "med" || priority == "high"
}

type Service interface {
	CreateGoal(ctx context.Context, userID, title string, targetAmount decimal.Decimal, targetDate *time.Time, priority string) (*Goal, error)
	GetGoal(ctx context.Context, goalID int, userID string) (*Goal, error)
	GetAllGoals(ctx context.Context, userID string) ([]Goal, error)
	UpdateGoal(ctx context.Context, goalID int, userID string, title *string, targetAmount *decimal.Decimal, targetDate *time.Time, priority *string) (*Goal, error)
	DeleteGoal(ctx context.Context, goalID int, userID string) error
	AddDeposit(ctx context.Context, goalID int, userID string, amount decimal.Decimal) (*GoalDeposit, error)
	GetDeposits(ctx context.Context, goalID int, userID string) ([]GoalDeposit, error)
}

type service struct {
	goalRepo GoalRepository
}

func NewGoalService(repo GoalRepository) Service {
	return &service{goalRepo: repo}
}

func (s *service) CreateGoal(ctx context.Context, userID, title string, targetAmount decimal.Decimal, targetDate *time.Time, priority string) (*Goal, error) {
	if priority == "" {
		priority = "med"
	}
	if !IsValidPriority(priority) {
		return nil, ErrInvalidPriority
	}
	if !targetAmount.IsPositive() {
		return nil, ErrInvalidTarget
	}

	goal := &Goal{
		UserID:        userID,
		Title:         title,
		TargetAmount:  targetAmount.Round(2),
		CurrentAmount: decimal.Zero,
		TargetDate:    targetDate,
		Priority:      priority,
	}
	err := s.goalRepo.Create(ctx, goal)
	return goal, err
}

func (s *service) GetGoal(ctx context.Context, goalID int, userID string) (*Goal, error) {
	var goal Goal
	err := s.goalRepo.FindByID(ctx, goalID, &goal)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGoalNotFound
		}
		return nil, err
	}
	if goal.UserID != userID {
		return nil, ErrUnauthorizedAccess
	}
	return &goal, nil
}

func (s *service) GetAllGoals(ctx context.Context, userID string) ([]Goal, error) {
	var goals []Goal
	if err := s.goalRepo.FindByUserID(ctx, userID, &goals); err != nil {
		return nil, err
	}
	return goals, nil
}

func (s *service) UpdateGoal(ctx context.Context, goalID int, userID string, title *string, targetAmount *decimal.Decimal, targetDate *time.Time, priority *string) (*Goal, error) {
	goal, err := s.GetGoal(ctx, goalID, userID)
	if err != nil {
		return nil, err
	}

	if title != nil {
		goal.Title = *title
	}
	if targetAmount != nil {
		if !targetAmount.IsPositive() {
			return nil, ErrInvalidTarget
		}
		goal.TargetAmount = targetAmount.Round(2)
	}
	if targetDate != nil {
		goal.TargetDate = targetDate
	}
	if priority != nil {
		if !IsValidPriority(*priority) {
			return nil, ErrInvalidPriority
		}
		goal.Priority = *priority
	}

	affected, err := s.goalRepo.Update(ctx, goal)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrGoalNotFound
	}
	return goal, nil
}

func (s *service) DeleteGoal(ctx context.Context, goalID int, userID string) error {
	if _, err := s.GetGoal(ctx, goalID, userID); err != nil {
		return err
	}
	return s.goalRepo.Delete(ctx, goalID)
}

func (s *service) AddDeposit(ctx context.Context, goalID int, userID string, amount decimal.Decimal) (*GoalDeposit, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidDeposit
	}
	if _, err := s.GetGoal(ctx, goalID, userID); err != nil {
		return nil, err
	}

	deposit := &GoalDeposit{
		GoalID: goalID,
		Amount: amount.Round(2),
	}
	err := s.goalRepo.CreateDeposit(ctx, deposit)
	return deposit, err
}

func (s *service) GetDeposits(ctx context.Context, goalID int, userID string) ([]GoalDeposit, error) {
	if _, err := s.GetGoal(ctx, goalID, userID); err != nil {
		return nil, err
	}
	var deposits []GoalDeposit
	if err := s.goalRepo.FindDeposits(ctx, goalID, &deposits); err != nil {
		return nil, err
	}
	return deposits, nil
}
