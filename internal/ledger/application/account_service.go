package application

import (
	"github.com/keebs5225/TrackVault/internal/ledger/domain"
)

type AccountService struct {
	accounts domain.AccountRepository
}

func NewAccountService(accounts domain.AccountRepository) *AccountService {
	return &AccountService{accounts: accounts}
}

// AccountUpdate deliberately has no balance field: the balance is derived
// from the account's transactions and only moves through AdjustBalance.
type AccountUpdate struct {
	Name *string `json:"name"`
	Type *string `json:"account_type"`
}

func (s *AccountService) CreateAccount(account *domain.Account) error {
	if account.Type == "" {
		account.Type = "checking"
	}
	if account.Currency == "" {
		account.Currency = "USD"
	}
	account.Balance = account.Balance.Round(2)
	if err := account.Validate(); err != nil {
		return err
	}
	return s.accounts.Save(account)
}

func (s *AccountService) GetUserAccounts(userID string) ([]domain.Account, error) {
	accounts, err := s.accounts.FindByUser(userID)
	if err != nil {
		return nil, err
	}
	if accounts == nil {
		return []domain.Account{}, nil
	}
	return accounts, nil
}

func (s *AccountService) GetAccount(userID string, accountID int) (*domain.Account, error) {
	return s.accounts.FindByID(accountID, userID)
}

func (s *AccountService) UpdateAccount(userID string, accountID int, changes AccountUpdate) (*domain.Account, error) {
	account, err := s.accounts.FindByID(accountID, userID)
	if err != nil {
		return nil, err
	}
	if changes.Name != nil {
		account.Name = *changes.Name
	}
	if changes.Type != nil {
		account.Type = *changes.Type
	}
	if err := account.Validate(); err != nil {
		return nil, err
	}
	if err := s.accounts.Update(account); err != nil {
		return nil, err
	}
	return account, nil
}

// DeleteAccount soft-deletes: the row stays for history, new balance
// mutations against it fail with an invalid-account error.
func (s *AccountService) DeleteAccount(userID string, accountID int) error {
	return s.accounts.Deactivate(accountID, userID)
}
