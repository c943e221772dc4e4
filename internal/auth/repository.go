package auth

import (
	"database/sql"
	"errors"
)

// TwoFactorRepository stores TOTP secrets keyed by user. The secret lives in
// its own table so dropping it fully revokes an enrollment.
type TwoFactorRepository interface {
	GetTwoFactorSecret(userID string) (string, error)
	SaveTwoFactorSecret(userID string, secret string) error
	DeleteTwoFactorSecret(userID string) error
}

type twoFactorRepository struct {
	db *sql.DB
}

func NewTwoFactorRepository(db *sql.DB) TwoFactorRepository {
	return &twoFactorRepository{
		db: db,
	}
}

func (r *twoFactorRepository) SaveTwoFactorSecret(userID string, secret string) error {
	query := `
        INSERT INTO user_two_factor_secrets (user_id, secret, created_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (user_id) DO UPDATE
        SET secret = EXCLUDED.secret,
            created_at = NOW()
    `
	_, err := r.db.Exec(query, userID, secret)
	if err != nil {
		return ErrInternalError
	}
	return nil
}

func (r *twoFactorRepository) GetTwoFactorSecret(userID string) (string, error) {
	var secret string
	query := `
        SELECT secret
        FROM user_two_factor_secrets
        WHERE user_id = $1
    `
	err := r.db.QueryRow(query, userID).Scan(&secret)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrUser2FANotEnabled
		}
		return "", ErrInternalError
	}
	return secret, nil
}

func (r *twoFactorRepository) DeleteTwoFactorSecret(userID string) error {
	query := `
        DELETE FROM user_two_factor_secrets
        WHERE user_id = $1
    `
	_, err := r.db.Exec(query, userID)
	if err != nil {
		return ErrInternalError
	}
	return nil
}
