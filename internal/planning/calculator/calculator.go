package calculator

import (
	"errors"
	"math"
)

var (
	ErrInvalidPrincipal = errors.New("principal must be positive")
	ErrInvalidRate      = errors.New("annual rate must be a percentage below 100")
	ErrInvalidTerm      = errors.New("term must be positive")
	ErrInvalidDeposit   = errors.New("deposit must not be negative")
)

type LoanParams struct {
	Principal  float64 `json:"principal"`
	AnnualRate float64 `json:"annual_rate"`
	TermMonths int     `json:"term_months"`
}

type LoanResult struct {
	MonthlyPayment float64 `json:"monthly_payment"`
	TotalPayment   float64 `json:"total_payment"`
	TotalInterest  float64 `json:"total_interest"`
}

type SavingsParams struct {
	Initial        float64 `json:"initial"`
	MonthlyDeposit float64 `json:"monthly_deposit"`
	AnnualRate     float64 `json:"annual_rate"`
	TermMonths     int     `json:"term_months"`
}

type SavingsResult struct {
	Balance        float64 `json:"balance"`
	Contributions  float64 `json:"contributions"`
	InterestEarned float64 `json:"interest_earned"`
}

type InvestmentParams struct {
	Principal  float64 `json:"principal"`
	AnnualRate float64 `json:"annual_rate"`
	Years      float64 `json:"years"`
}

type InvestmentResult struct {
	FutureValue   float64 `json:"future_value"`
	TotalInterest float64 `json:"total_interest"`
}

// Loan computes the fixed monthly payment of an amortized loan.
func Loan(p LoanParams) (*LoanResult, error) {
	if p.Principal <= 0 {
		return nil, ErrInvalidPrincipal
	}
	if p.AnnualRate <= 0 || p.AnnualRate >= 100 {
		return nil, ErrInvalidRate
	}
	if p.TermMonths <= 0 {
		return nil, ErrInvalidTerm
	}

	r := p.AnnualRate / 100 / 12
	n := float64(p.TermMonths)
	payment := r * p.Principal / (1 - math.Pow(1+r, -n))
	total := payment * n
	return &LoanResult{
		MonthlyPayment: round2(payment),
		TotalPayment:   round2(total),
		TotalInterest:  round2(total - p.Principal),
	}, nil
}

// Savings compounds a starting balance monthly, adding the deposit after
// each interest step.
func Savings(p SavingsParams) (*SavingsResult, error) {
	if p.Initial < 0 {
		return nil, ErrInvalidPrincipal
	}
	if p.MonthlyDeposit < 0 {
		return nil, ErrInvalidDeposit
	}
	if p.AnnualRate < 0 || p.AnnualRate >= 100 {
		return nil, ErrInvalidRate
	}
	if p.TermMonths <= 0 {
		return nil, ErrInvalidTerm
	}

	r := p.AnnualRate / 100 / 12
	balance := p.Initial
	contributions := 0.0
	for i := 0; i < p.TermMonths; i++ {
		balance = balance*(1+r) + p.MonthlyDeposit
		contributions += p.MonthlyDeposit
	}
	return &SavingsResult{
		Balance:        round2(balance),
		Contributions:  round2(contributions),
		InterestEarned: round2(balance - p.Initial - contributions),
	}, nil
}

// Investment computes the future value of a lump sum compounded annually.
func Investment(p InvestmentParams) (*InvestmentResult, error) {
	if p.Principal <= 0 {
		return nil, ErrInvalidPrincipal
	}
	if p.AnnualRate <= 0 || p.AnnualRate >= 100 {
		return nil, ErrInvalidRate
	}
	if p.Years <= 0 {
		return nil, ErrInvalidTerm
	}

	r := p.AnnualRate / 100
	fv := p.Principal * math.Pow(1+r, p.Years)
	return &InvestmentResult{
		FutureValue:   round2(fv),
		TotalInterest: round2(fv - p.Principal),
	}, nil
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
