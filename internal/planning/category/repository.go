package categories

import (
	"context"
	"database/sql"
	"time"
)

type Category struct {
	ID               int        `json:"category_id"`
	UserID           string     `json:"-"`
	Name             string     `json:"name"`
	Type             string     `json:"type"`
	ParentCategoryID *int       `json:"parent_category_id,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type CategoryRepository interface {
	Create(ctx context.Context, category *Category) error
	FindByID(ctx context.Context, categoryID int, category *Category) error
	FindByUserID(ctx context.Context, userID string, categories *[]Category) error
	ExistsByName(ctx context.Context, userID, name, categoryType string) (bool, error)
	Update(ctx context.Context, category *Category) (int64, error)
	Delete(ctx context.Context, categoryID int) error
}

type categoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(db *sql.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *Category) error {
	query := `INSERT INTO categories (user_id, name, type, parent_category_id)
              VALUES ($1, $2, $3, $4)
              RETURNING category_id, created_at, updated_at`
	return r.db.QueryRowContext(ctx, query, category.UserID, category.Name, category.Type, category.ParentCategoryID).
		Scan(&category.ID, &category.CreatedAt, &category.UpdatedAt)
}

func (r *categoryRepository) FindByID(ctx context.Context, categoryID int, category *Category) error {
	query := `SELECT category_id, user_id, name, type, parent_category_id, created_at, updated_at
              FROM categories WHERE category_id = $1`
	return r.db.QueryRowContext(ctx, query, categoryID).Scan(
		&category.ID, &category.UserID, &category.Name, &category.Type, &category.ParentCategoryID, &category.CreatedAt, &category.UpdatedAt)
}

func (r *categoryRepository) FindByUserID(ctx context.Context, userID string, categories *[]Category) error {
	query := `SELECT category_id, user_id, name, type, parent_category_id, created_at, updated_at
              FROM categories WHERE user_id = $1 ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var category Category
		if err := rows.Scan(&category.ID, &category.UserID, &category.Name, &category.Type, &category.ParentCategoryID, &category.CreatedAt, &category.UpdatedAt); err != nil {
			return err
		}
		*categories = append(*categories, category)
	}
	return rows.Err()
}

func (r *categoryRepository) ExistsByName(ctx context.Context, userID, name, categoryType string) (bool, error) {
	query := `SELECT COUNT(1)
              FROM categories
              WHERE user_id = $1 AND name = $2 AND type = $3`

	var count int
	err := r.db.QueryRowContext(ctx, query, userID, name, categoryType).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *categoryRepository) Update(ctx context.Context, category *Category) (int64, error) {
	query := `
        UPDATE categories
        SET name = $1, type = $2, parent_category_id = $3, updated_at = $4
        WHERE category_id = $5 AND user_id = $6
    `

	result, err := r.db.ExecContext(ctx, query, category.Name, category.Type, category.ParentCategoryID, time.Now(), category.ID, category.UserID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *categoryRepository) Delete(ctx context.Context, categoryID int) error {
	query := `DELETE FROM categories WHERE category_id = $1`
	_, err := r.db.ExecContext(ctx, query, categoryID)
	return err
}
