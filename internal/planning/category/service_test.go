package categories

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCategoryRepository struct {
	categories map[int]Category
	nextID     int
}

func newMockCategoryRepository() *mockCategoryRepository {
	return &mockCategoryRepository{categories: make(map[int]Category), nextID: 1}
}

func (m *mockCategoryRepository) Create(_ context.Context, category *Category) error {
	category.ID = m.nextID
	m.nextID++
	m.categories[category.ID] = *category
	return nil
}

func (m *mockCategoryRepository) FindByID(_ context.Context, categoryID int, category *Category) error {
	stored, ok := m.categories[categoryID]
	if !ok {
		return sql.ErrNoRows
	}
	*category = stored
	return nil
}

func (m *mockCategoryRepository) FindByUserID(_ context.Context, userID string, categories *[]Category) error {
	result := []Category{}
	for _, category := range m.categories {
		if category.UserID == userID {
			result = append(result, category)
		}
	}
	*categories = result
	return nil
}

func (m *mockCategoryRepository) ExistsByName(_ context.Context, userID, name, categoryType string) (bool, error) {
	for _, category := range m.categories {
		if category.UserID == userID && category.Name == name && category.Type == categoryType {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockCategoryRepository) Update(_ context.Context, category *Category) (int64, error) {
	if _, ok := m.categories[category.ID]; !ok {
		return 0, nil
	}
	m.categories[category.ID] = *category
	return 1, nil
}

func (m *mockCategoryRepository) Delete(_ context.Context, categoryID int) error {
	delete(m.categories, categoryID)
	return nil
}

func TestCreateCategory_RejectsInvalidType(t *testing.T) {
	service := NewCategoryService(newMockCategoryRepository())

	_, err := service.CreateCategory(context.Background(), "user-1", "Salary", "windfall", nil)
	assert.ErrorIs(t, err, ErrInvalidType)
}

func TestCreateCategory_RejectsDuplicateNameWithinType(t *testing.T) {
	service := NewCategoryService(newMockCategoryRepository())

	_, err := service.CreateCategory(context.Background(), "user-1", "Groceries", "expense", nil)
	require.NoError(t, err)

	_, err = service.CreateCategory(context.Background(), "user-1", "Groceries", "expense", nil)
	assert.ErrorIs(t, err, ErrCategoryNameTaken)

	// The same name under the other type is a different category.
	_, err = service.CreateCategory(context.Background(), "user-1", "Groceries", "income", nil)
	assert.NoError(t, err)
}

func TestCreateCategory_ParentMustShareType(t *testing.T) {
	service := NewCategoryService(newMockCategoryRepository())

	parent, err := service.CreateCategory(context.Background(), "user-1", "Food", "expense", nil)
	require.NoError(t, err)

	child, err := service.CreateCategory(context.Background(), "user-1", "Groceries", "expense", &parent.ID)
	require.NoError(t, err)
	assert.Equal(t, parent.ID, *child.ParentCategoryID)

	_, err = service.CreateCategory(context.Background(), "user-1", "Salary", "income", &parent.ID)
	assert.ErrorIs(t, err, ErrInvalidParent)
}

func TestCreateCategory_ParentMustBelongToSameUser(t *testing.T) {
	service := NewCategoryService(newMockCategoryRepository())

	parent, err := service.CreateCategory(context.Background(), "user-1", "Food", "expense", nil)
	require.NoError(t, err)

	_, err = service.CreateCategory(context.Background(), "user-2", "Groceries", "expense", &parent.ID)
	assert.ErrorIs(t, err, ErrInvalidParent)
}

func TestGetCategory_OwnershipIsolation(t *testing.T) {
	service := NewCategoryService(newMockCategoryRepository())

	created, err := service.CreateCategory(context.Background(), "user-1", "Food", "expense", nil)
	require.NoError(t, err)

	_, err = service.GetCategory(context.Background(), created.ID, "user-2")
	assert.ErrorIs(t, err, ErrUnauthorizedAccess)

	_, err = service.GetCategory(context.Background(), 999, "user-1")
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestUpdateCategory_RenameChecksForCollision(t *testing.T) {
	service := NewCategoryService(newMockCategoryRepository())

	_, err := service.CreateCategory(context.Background(), "user-1", "Food", "expense", nil)
	require.NoError(t, err)
	second, err := service.CreateCategory(context.Background(), "user-1", "Transport", "expense", nil)
	require.NoError(t, err)

	name := "Food"
	_, err = service.UpdateCategory(context.Background(), second.ID, "user-1", &name, nil)
	assert.ErrorIs(t, err, ErrCategoryNameTaken)

	name = "Commuting"
	updated, err := service.UpdateCategory(context.Background(), second.ID, "user-1", &name, nil)
	require.NoError(t, err)
	assert.Equal(t, "Commuting", updated.Name)
}
