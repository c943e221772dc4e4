package categories

import (
	"context"
	"database/sql"
	"errors"
)

var (
	ErrCategoryNotFound   = errors.New("category not found")
	ErrUnauthorizedAccess = errors.New("unauthorized: user does not own this category")
	ErrCategoryNameTaken  = errors.New("category with this name already exists")
	ErrInvalidType        = errors.New("category type must be 'income' or 'expense'")
	ErrInvalidParent      = errors.New("parent category does not exist or has a different type")
)

type Service interface {
	CreateCategory(ctx context.Context, userID, name, categoryType string, parentCategoryID *int) (*Category, error)
	GetCategory(ctx context.Context, categoryID int, userID string) (*Category, error)
	GetAllCategories(ctx context.Context, userID string) ([]Category, error)
	UpdateCategory(ctx context.Context, categoryID int, userID string, name *string, parentCategoryID *int) (*Category, error)
	DeleteCategory(ctx context.Context, categoryID int, userID string) error
}

type service struct {
	categoryRepo CategoryRepository
}

func NewCategoryService(repo CategoryRepository) Service {
	return &service{categoryRepo: repo}
}

func IsValidCategoryType(categoryType string) bool {
	return categoryType == "income" || categoryType == "expense"
}

func (s *service) CreateCategory(ctx context.Context, userID, name, categoryType string, parentCategoryID *int) (*Category, error) {
	if !IsValidCategoryType(categoryType) {
		return nil, ErrInvalidType
	}
	exists, err := s.categoryRepo.ExistsByName(ctx, userID, name, categoryType)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrCategoryNameTaken
	}
	if parentCategoryID != nil {
		if err := s.checkParent(ctx, *parentCategoryID, userID, categoryType); err != nil {
			return nil, err
		}
	}

	category := &Category{
		UserID:           userID,
		Name:             name,
		Type:             categoryType,
		ParentCategoryID: parentCategoryID,
	}
	err = s.categoryRepo.Create(ctx, category)
	return category, err
}

func (s *service) GetCategory(ctx context.Context, categoryID int, userID string) (*Category, error) {
	var category Category
	err := s.categoryRepo.FindByID(ctx, categoryID, &category)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	if category.UserID != userID {
		return nil, ErrUnauthorizedAccess
	}
	return &category, nil
}

func (s *service) GetAllCategories(ctx context.Context, userID string) ([]Category, error) {
	var categories []Category
	if err := s.categoryRepo.FindByUserID(ctx, userID, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *service) UpdateCategory(ctx context.Context, categoryID int, userID string, name *string, parentCategoryID *int) (*Category, error) {
	category, err := s.GetCategory(ctx, categoryID, userID)
	if err != nil {
		return nil, err
	}

	if name != nil && *name != category.Name {
		exists, err := s.categoryRepo.ExistsByName(ctx, userID, *name, category.Type)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrCategoryNameTaken
		}
		category.Name = *name
	}

	if parentCategoryID != nil {
		if err := s.checkParent(ctx, *parentCategoryID, userID, category.Type); err != nil {
			return nil, err
		}
		category.ParentCategoryID = parentCategoryID
	}

	affected, err := s.categoryRepo.Update(ctx, category)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrCategoryNotFound
	}
	return category, nil
}

func (s *service) DeleteCategory(ctx context.Context, categoryID int, userID string) error {
	if _, err := s.GetCategory(ctx, categoryID, userID); err != nil {
		return err
	}
	return s.categoryRepo.Delete(ctx, categoryID)
}

// checkParent verifies the parent belongs to the same user and shares the
// child's type, so income categories never nest under expense ones.
func (s *service) checkParent(ctx context.Context, parentCategoryID int, userID, categoryType string) error {
	var parent Category
	err := s.categoryRepo.FindByID(ctx, parentCategoryID, &parent)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInvalidParent
		}
		return err
	}
	if parent.UserID != userID || parent.Type != categoryType {
		return ErrInvalidParent
	}
	return nil
}
