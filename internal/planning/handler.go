package planning

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	budgets "github.com/keebs5225/TrackVault/internal/planning/budget"
	"github.com/keebs5225/TrackVault/internal/planning/calculator"
	categories "github.com/keebs5225/TrackVault/internal/planning/category"
	goals "github.com/keebs5225/TrackVault/internal/planning/goal"
)

type PlanningHandler struct {
	categoryService categories.Service
	budgetService   budgets.Service
	goalService     goals.Service
	respondJSON     func(w http.ResponseWriter, status int, payload interface{})
	respondError    func(w http.ResponseWriter, status int, message string, errors ...[]string)
}

func NewPlanningHandler(
	categoryService categories.Service,
	budgetService budgets.Service,
	goalService goals.Service,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string),
) *PlanningHandler {
	return &PlanningHandler{
		categoryService: categoryService,
		budgetService:   budgetService,
		goalService:     goalService,
		respondJSON:     respondJSON,
		respondError:    respondError,
	}
}

func (h *PlanningHandler) getUserIDReq(w http.ResponseWriter, r *http.Request) string {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return ""
	}
	return userID
}

func (h *PlanningHandler) pathID(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(r.PathValue(name))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid ID in path")
		return 0, false
	}
	return id, true
}

// --- Categories ---

type createCategoryRequest struct {
	Name             string `json:"name"`
	Type             string `json:"type"`
	ParentCategoryID *int   `json:"parent_category_id"`
}

type updateCategoryRequest struct {
	Name             *string `json:"name"`
	ParentCategoryID *int    `json:"parent_category_id"`
}

func (h *PlanningHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	userID := h.getUserIDReq(w, r)
	if userID == "" {
		return
	}

	var req createCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		h.respondError(w, http.StatusBadRequest, "Category name is required")
		return
	}

	category, err := h.categoryService.CreateCategory(r.Context(), userID, req.Name, req.Type, req.ParentCategoryID)
	if err != nil {
		switch {
		case errors.Is(err, categories.ErrCategoryNameTaken):
			h.respondError(w, http.StatusConflict, "Category name already exists")
		case errors.Is(err, categories.ErrInvalidType), errors.Is(err, categories.ErrInvalidParent):
			h.respondError(w, http.StatusBadRequest, err.Error())
		default:
			h.respondError(w, http.StatusInternalServerError, "Failed to create category")
		}
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "Category successfully created.",
		"data":    category,
	})
}

func (h *PlanningHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	userID := h.getUserIDReq(w, r)
	if userID == "" {
		return
	}

	list, err := h.categoryService.GetAllCategories(r.Context(), userID)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve categories")
		return
	}
	if list == nil {
		list = []categories.Category{}
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Categories retrieved successfully.",
		"data":    list,
	})
}

func (h *PlanningHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	userID := h.getUserIDReq(w, r)
	if userID == "" {
		return
	}
	categoryID, ok := h.pathID(w, r, "categoryID")
	if !ok {
		return
	}

	category, err := h.categoryService.GetCategory(r.Context(), categoryID, userID)
	if err != nil {
		h.respondCategoryError(w, err, "Failed to retrieve category")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Category retrieved successfully.",
		"data":    category,
	})
}

func (h *PlanningHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	userID := h.getUserIDReq(w, r)
	if userID == "" {
		return
	}
	categoryID, ok := h.pathID(w, r, "categoryID")
	if !ok {
		return
	}

	var req updateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	category, err := h.categoryService.UpdateCategory(r.Context(), categoryID, userID, req.Name, req.ParentCategoryID)
	if err != nil {
		h.respondCategoryError(w, err, "Failed to update category")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Category updated successfully.",
		"data":    category,
	})
}

func (h *PlanningHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	userID := h.getUserIDReq(w, r)
	if userID == "" {
		return
	}
	categoryID, ok := h.pathID(w, r, "categoryID")
	if !ok {
		return
	}

	if err := h.categoryService.DeleteCategory(r.Context(), categoryID, userID); err != nil {
		h.respondCategoryError(w, err, "Failed to delete category")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Category deleted successfully.",
	})
}

func (h *PlanningHandler) respondCategoryError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, categories.ErrCategoryNotFound), errors.Is(err, categories.ErrUnauthorizedAccess):
		h.respondError(w, http.StatusNotFound, "Category not found")
	case errors.Is(err, categories.ErrCategoryNameTaken):
		h.respondError(w, http.StatusConflict, "Category name already exists")
	case errors.Is(err, categories.ErrInvalidType), errors.Is(err, categories.ErrInvalidParent):
		h.respondError(w, http.StatusBadRequest, err.Error())
	default:
		h.respondError(w, http.StatusInternalServerError, fallback)
	}
}

// --- Budgets ---

type createBudgetRequest struct {
	Section string          `json:"section"`
	Label   string          `json:"label"`
	Amount  decimal.Decimal `json:"amount"`
}

type updateBudgetRequest struct {
	Section *string          `json:"section"`
	Label   *string          `json:"label"`
	Amount  *decimal.Decimal `json:"amount"`
}

func (h *PlanningHandler) CreateBudget(w http.ResponseWriter, r *http.Request) {
	userID := h.getUserIDReq(w, r)
	if userID == "" {
		return
	}

	var req createBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Label == "" {
		h.respondError(w, http.StatusBadRequest, "Budget label is required")
		return
	}

	budget, err := h.budgetService.CreateBudget(r.Context(), userID, req.Section, req.Label, req.Amount)
	if err != nil {
		h.respondBudgetError(w, err, "Failed to create budget")
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "Budget successfully created.",
		"data":    budget,
	})
}

func (h *PlanningHandler) GetBudgets(w http.ResponseWriter, r *http.Request) {
	userID := h.getUserIDReq(w, r)
	if userID == "" {
		return
	}

	list, err := h.budgetService.GetAllBudgets(r.Context(), userID)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve budgets")
		return
	}
	if list == nil {
		list = []budgets.Budget{}
	}

	totals, err := h.budgetService.GetSectionTotals(r.Context(), userID)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve budgets")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Budgets retrieved successfully.",
		"data":    list,
		"totals":  totals,
	})
}

func (h *PlanningHandler) UpdateBudget(w http.ResponseWriter, r *http.Request) {
	userID := h.getUserIDReq(w, r)
	if userID == "" {
		return
	}
	budgetID, ok := h.pathID(w, r, "budgetID")
	if !ok {
		return
	}

	var req updateBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	budget, err := h.budgetService.UpdateBudget(r.Context(), budgetID, userID, req.Section, req.Label, req.Amount)
	if err != nil {
		h.respondBudgetError(w, err, "Failed to update budget")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Budget updated successfully.",
		"data":    budget,
	})
}

func (h *PlanningHandler) DeleteBudget(w http.ResponseWriter, r *http.Request) {
	userID := h.getUserIDReq(w, r)
	if userID == "" {
		return
	}
	budgetID, ok := h.pathID(w, r, "budgetID")
	if !ok {
		return
	}

	if err := h.budgetService.DeleteBudget(r.Context(), budgetID, userID); err != nil {
		h.respondBudgetError(w, err, "Failed to delete budget")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Budget deleted successfully.",
	})
}

func (h *PlanningHandler) respondBudgetError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, budgets.ErrBudgetNotFound), errors.Is(err, budgets.ErrUnauthorizedAccess):
		h.respondError(w, http.StatusNotFound, "Budget not found")
	case errors.Is(err, budgets.ErrInvalidSection), errors.Is(err, budgets.ErrInvalidAmount):
		h.respondError(w, http.StatusBadRequest, err.Error())
	default:
		h.respondError(w, http.StatusInternalServerError, fallback)
	}
}

// --- Goals ---

type createGoalRequest struct {
	Title        string          `json:"title"`
	TargetAmount decimal.Decimal `json:"target_amount"`
	TargetDate   *time.Time      `json:"target_date"`
	Priority     string          `json:"priority"`
}

type updateGoalRequest struct {
	Title        *string          `json:"title"`
	TargetAmount *decimal.Decimal `json:"target_amount"`
	TargetDate   *time.Time       `json:"target_date"`
	Priority     *string          `json:"priority"`
}

type goalDepositRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (h *PlanningHandler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	userID := h.getUserIDReq(w, r)
	if userID == "" {
		return
	}

	var req createGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Title == "" {
		h.respondError(w, http.StatusBadRequest, "Goal title is required")
		return
	}

	goal, err := h.goalService.CreateGoal(r.Context(), userID, req.Title, req.TargetAmount, req.TargetDate, req.Priority)
	if err != nil {
		h.respondGoalError(w, err, "Failed to create goal")
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "Goal successfully created.",
		"data":    goal,
	})
}

func (h *PlanningHandler) GetGoals(w http.ResponseWriter, r *http.Request) {
	userID := h.getUserIDReq(w, r)
	if userID == "" {
		return
	}

	list, err := h.goalService.GetAllGoals(r.Context(), userID)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve goals")
		return
	}
	if list == nil {
		list = []goals.Goal{}
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Goals retrieved successfully.",
		"data":    list,
	})
}

func (h *PlanningHandler) GetGoal(w http.ResponseWriter, r *http.Request) {
	userID := h.getUserIDReq(w, r)
	if userID == "" {
		return
	}
	goalID, ok := h.pathID(w, r, "goalID")
	if !ok {
		return
	}

	goal, err := h.goalService.GetGoal(r.Context(), goalID, userID)
	if err != nil {
		h.respondGoalError(w, err, "Failed to retrieve goal")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Goal retrieved successfully.",
		"data":    goal,
	})
}

func (h *PlanningHandler) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	userID := h.getUserIDReq(w, r)
	if userID == "" {
		return
	}
	goalID, ok := h.pathID(w, r, "goalID")
	if !ok {
		return
	}

	var req updateGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	goal, err := h.goalService.UpdateGoal(r.Context(), goalID, userID, req.Title, req.TargetAmount, req.TargetDate, req.Priority)
	if err != nil {
		h.respondGoalError(w, err, "Failed to update goal")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Goal updated successfully.",
		"data":    goal,
	})
}

func (h *PlanningHandler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	userID := h.getUserIDReq(w, r)
	if userID == "" {
		return
	}
	goalID, ok := h.pathID(w, r, "goalID")
	if !ok {
		return
	}

	if err := h.goalService.DeleteGoal(r.Context(), goalID, userID); err != nil {
		h.respondGoalError(w, err, "Failed to delete goal")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Goal deleted successfully.",
	})
}

func (h *PlanningHandler) AddGoalDeposit(w http.ResponseWriter, r *http.Request) {
	userID := h.getUserIDReq(w, r)
	if userID == "" {
		return
	}
	goalID, ok := h.pathID(w, r, "goalID")
	if !ok {
		return
	}

	var req goalDepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	deposit, err := h.goalService.AddDeposit(r.Context(), goalID, userID, req.Amount)
	if err != nil {
		h.respondGoalError(w, err, "Failed to add deposit")
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "Deposit successfully added.",
		"data":    deposit,
	})
}

func (h *PlanningHandler) GetGoalDeposits(w http.ResponseWriter, r *http.Request) {
	userID := h.getUserIDReq(w, r)
	if userID == "" {
		return
	}
	goalID, ok := h.pathID(w, r, "goalID")
	if !ok {
		return
	}

	deposits, err := h.goalService.GetDeposits(r.Context(), goalID, userID)
	if err != nil {
		h.respondGoalError(w, err, "Failed to retrieve deposits")
		return
	}
	if deposits == nil {
		deposits = []goals.GoalDeposit{}
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Deposits retrieved successfully.",
		"data":    deposits,
	})
}

func (h *PlanningHandler) respondGoalError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, goals.ErrGoalNotFound), errors.Is(err, goals.ErrUnauthorizedAccess):
		h.respondError(w, http.StatusNotFound, "Goal not found")
	case errors.Is(err, goals.ErrInvalidPriority), errors.Is(err, goals.ErrInvalidTarget), errors.Is(err, goals.ErrInvalidDeposit):
		h.respondError(w, http.StatusBadRequest, err.Error())
	default:
		h.respondError(w, http.StatusInternalServerError, fallback)
	}
}

// --- Calculators ---

func (h *PlanningHandler) CalculateLoan(w http.ResponseWriter, r *http.Request) {
	var params calculator.LoanParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := calculator.Loan(params)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   result,
	})
}

func (h *PlanningHandler) CalculateSavings(w http.ResponseWriter, r *http.Request) {
	var params calculator.SavingsParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := calculator.Savings(params)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   result,
	})
}

func (h *PlanningHandler) CalculateInvestment(w http.ResponseWriter, r *http.Request) {
	var params calculator.InvestmentParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := calculator.Investment(params)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   result,
	})
}
