package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	database "github.com/keebs5225/TrackVault/db"
	"github.com/keebs5225/TrackVault/internal/auth"
	"github.com/keebs5225/TrackVault/internal/ledger/application"
	"github.com/keebs5225/TrackVault/internal/ledger/infrastructure"
	"github.com/keebs5225/TrackVault/internal/ledger/interfaces"
	"github.com/keebs5225/TrackVault/internal/planning"
	budgets "github.com/keebs5225/TrackVault/internal/planning/budget"
	categories "github.com/keebs5225/TrackVault/internal/planning/category"
	goals "github.com/keebs5225/TrackVault/internal/planning/goal"
	"github.com/keebs5225/TrackVault/internal/user"
)

type Response struct {
	Message string `json:"message"`
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("Started %s %s", r.Method, r.URL.Path)

		next.ServeHTTP(w, r)

		log.Printf("Completed %s in %v", r.URL.Path, time.Since(start))
	})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string, errs ...[]string) {
	response := map[string]interface{}{
		"status":  "error",
		"message": message,
		"code":    status,
	}
	if len(errs) > 0 {
		response["errors"] = errs[0]
	}
	respondJSON(w, status, response)
}

type Server struct {
	router             *http.ServeMux
	authHandler        *auth.Handler
	authService        auth.Service
	userHandler        *user.Handler
	accountHandler     *interfaces.AccountHandler
	transactionHandler *interfaces.TransactionHandler
	recurringHandler   *interfaces.RecurringHandler
	planningHandler    *planning.PlanningHandler
	dbService          *database.DBService
}

func NewServer(
	authHandler *auth.Handler,
	authService auth.Service,
	userHandler *user.Handler,
	accountHandler *interfaces.AccountHandler,
	transactionHandler *interfaces.TransactionHandler,
	recurringHandler *interfaces.RecurringHandler,
	planningHandler *planning.PlanningHandler,
	dbService *database.DBService,
) *Server {
	return &Server{
		authHandler:        authHandler,
		authService:        authService,
		userHandler:        userHandler,
		accountHandler:     accountHandler,
		transactionHandler: transactionHandler,
		recurringHandler:   recurringHandler,
		planningHandler:    planningHandler,
		dbService:          dbService,
		router:             http.NewServeMux(),
	}
}

func notFoundHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(Response{Message: "Path not found"})
}

func checkConfiguration() error {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, continuing with system environment variables")
	}

	if os.Getenv("JWT_SECRET") == "" {
		return errors.New("no JWT_SECRET Provided")
	}
	return nil
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.dbService.Health())
}

func (s *Server) RegisterRoutes() {
	protect := s.authService.JWTAccessTokenMiddleware()

	// Public routes
	publicRoutes := http.NewServeMux()
	publicRoutes.Handle("POST /api/register", http.HandlerFunc(s.userHandler.HandleRegister))
	publicRoutes.Handle("POST /api/auth/login", http.HandlerFunc(s.authHandler.HandleLogin))
	publicRoutes.Handle("POST /api/auth/logout", http.HandlerFunc(s.authHandler.HandleLogout))
	publicRoutes.Handle("POST /api/auth/2fa/verify", http.HandlerFunc(s.authHandler.HandleVerifyTwoFactor))
	publicRoutes.Handle("GET /api/ready", http.HandlerFunc(s.handleReady))
	publicRoutes.Handle("GET /api/health", http.HandlerFunc(s.handleHealth))

	// Calculators are stateless, no auth required
	publicRoutes.Handle("POST /api/calculators/loan", http.HandlerFunc(s.planningHandler.CalculateLoan))
	publicRoutes.Handle("POST /api/calculators/savings", http.HandlerFunc(s.planningHandler.CalculateSavings))
	publicRoutes.Handle("POST /api/calculators/investment", http.HandlerFunc(s.planningHandler.CalculateInvestment))

	// Protected routes (using JWT Access Token Middleware)
	protectedRoutes := http.NewServeMux()

	// USER API
	protectedRoutes.Handle("GET /api/protected/profile", protect(http.HandlerFunc(s.userHandler.HandleGetUserProfile)))
	protectedRoutes.Handle("PATCH /api/protected/profile", protect(http.HandlerFunc(s.userHandler.HandleUpdateProfile)))
	protectedRoutes.Handle("POST /api/protected/change-password", protect(http.HandlerFunc(s.userHandler.HandleChangePassword)))
	protectedRoutes.Handle("DELETE /api/protected/profile", protect(http.HandlerFunc(s.userHandler.HandleDeleteUser)))

	protectedRoutes.Handle("POST /api/protected/2fa/register", protect(http.HandlerFunc(s.authHandler.HandleRegisterTwoFactor)))
	protectedRoutes.Handle("POST /api/protected/2fa/verify-registration", protect(http.HandlerFunc(s.authHandler.HandleVerifyTwoFactorCode)))
	protectedRoutes.Handle("DELETE /api/protected/2fa/disable", protect(http.HandlerFunc(s.authHandler.HandleDisableTwoFactor)))

	// ACCOUNTS API
	protectedRoutes.Handle("POST /api/protected/accounts", protect(http.HandlerFunc(s.accountHandler.CreateAccount)))
	protectedRoutes.Handle("GET /api/protected/accounts", protect(http.HandlerFunc(s.accountHandler.GetAccounts)))
	protectedRoutes.Handle("GET /api/protected/accounts/{accountID}", protect(http.HandlerFunc(s.accountHandler.GetAccount)))
	protectedRoutes.Handle("PATCH /api/protected/accounts/{accountID}", protect(http.HandlerFunc(s.accountHandler.UpdateAccount)))
	protectedRoutes.Handle("DELETE /api/protected/accounts/{accountID}", protect(http.HandlerFunc(s.accountHandler.DeleteAccount)))

	// TRANSACTIONS API
	protectedRoutes.Handle("POST /api/protected/transactions", protect(http.HandlerFunc(s.transactionHandler.CreateTransaction)))
	protectedRoutes.Handle("GET /api/protected/transactions", protect(http.HandlerFunc(s.transactionHandler.GetTransactions)))
	protectedRoutes.Handle("GET /api/protected/transactions/{transactionID}", protect(http.HandlerFunc(s.transactionHandler.GetTransaction)))
	protectedRoutes.Handle("PATCH /api/protected/transactions/{transactionID}", protect(http.HandlerFunc(s.transactionHandler.UpdateTransaction)))
	protectedRoutes.Handle("DELETE /api/protected/transactions/{transactionID}", protect(http.HandlerFunc(s.transactionHandler.DeleteTransaction)))

	// RECURRING API
	protectedRoutes.Handle("POST /api/protected/recurring", protect(http.HandlerFunc(s.recurringHandler.CreateTemplate)))
	protectedRoutes.Handle("GET /api/protected/recurring", protect(http.HandlerFunc(s.recurringHandler.GetTemplates)))
	protectedRoutes.Handle("GET /api/protected/recurring/{recurringID}", protect(http.HandlerFunc(s.recurringHandler.GetTemplate)))
	protectedRoutes.Handle("PATCH /api/protected/recurring/{recurringID}", protect(http.HandlerFunc(s.recurringHandler.UpdateTemplate)))
	protectedRoutes.Handle("DELETE /api/protected/recurring/{recurringID}", protect(http.HandlerFunc(s.recurringHandler.DeleteTemplate)))

	// CATEGORIES API
	protectedRoutes.Handle("POST /api/protected/categories", protect(http.HandlerFunc(s.planningHandler.CreateCategory)))
	protectedRoutes.Handle("GET /api/protected/categories", protect(http.HandlerFunc(s.planningHandler.GetCategories)))
	protectedRoutes.Handle("GET /api/protected/categories/{categoryID}", protect(http.HandlerFunc(s.planningHandler.GetCategory)))
	protectedRoutes.Handle("PATCH /api/protected/categories/{categoryID}", protect(http.HandlerFunc(s.planningHandler.UpdateCategory)))
	protectedRoutes.Handle("DELETE /api/protected/categories/{categoryID}", protect(http.HandlerFunc(s.planningHandler.DeleteCategory)))

	// BUDGETS API
	protectedRoutes.Handle("POST /api/protected/budgets", protect(http.HandlerFunc(s.planningHandler.CreateBudget)))
	protectedRoutes.Handle("GET /api/protected/budgets", protect(http.HandlerFunc(s.planningHandler.GetBudgets)))
	protectedRoutes.Handle("PATCH /api/protected/budgets/{budgetID}", protect(http.HandlerFunc(s.planningHandler.UpdateBudget)))
	protectedRoutes.Handle("DELETE /api/protected/budgets/{budgetID}", protect(http.HandlerFunc(s.planningHandler.DeleteBudget)))

	// GOALS API
	protectedRoutes.Handle("POST /api/protected/goals", protect(http.HandlerFunc(s.planningHandler.CreateGoal)))
	protectedRoutes.Handle("GET /api/protected/goals", protect(http.HandlerFunc(s.planningHandler.GetGoals)))
	protectedRoutes.Handle("GET /api/protected/goals/{goalID}", protect(http.HandlerFunc(s.planningHandler.GetGoal)))
	protectedRoutes.Handle("PATCH /api/protected/goals/{goalID}", protect(http.HandlerFunc(s.planningHandler.UpdateGoal)))
	protectedRoutes.Handle("DELETE /api/protected/goals/{goalID}", protect(http.HandlerFunc(s.planningHandler.DeleteGoal)))
	protectedRoutes.Handle("POST /api/protected/goals/{goalID}/deposits", protect(http.HandlerFunc(s.planningHandler.AddGoalDeposit)))
	protectedRoutes.Handle("GET /api/protected/goals/{goalID}/deposits", protect(http.HandlerFunc(s.planningHandler.GetGoalDeposits)))

	// Refresh token routes
	refreshTokenRoutes := http.NewServeMux()
	refreshTokenRoutes.Handle("PUT /api/refresh/token", s.authService.JWTRefreshTokenMiddleware()(http.HandlerFunc(s.authHandler.RefreshAccessToken)))

	// Main router
	mainRouter := http.NewServeMux()

	mainRouter.Handle("/api/", publicRoutes)
	mainRouter.Handle("/api/protected/", protectedRoutes)
	mainRouter.Handle("/api/refresh/", refreshTokenRoutes)
	mainRouter.Handle("/", http.HandlerFunc(notFoundHandler))

	s.router = mainRouter
}

func main() {
	if err := checkConfiguration(); err != nil {
		log.Fatalf("Missing configuration, update to start server")
	}

	dbService, err := database.NewDBService()
	if err != nil {
		log.Fatalf("Could not initialize database: %v", err)
	}
	defer dbService.Close()

	userRepo := user.NewUserRepository(dbService.DB)
	userService := user.NewUserService(userRepo)
	userHandler := user.NewHandler(userService)

	sessionManager := auth.NewSessionManager()
	sessionManager.StartSessionTokenCleanup(time.Minute)
	jwtManager := auth.NewJWTManager()
	authenticator := auth.Authenticator{}

	twoFactorRepo := auth.NewTwoFactorRepository(dbService.DB)
	authService := auth.NewAuthService(twoFactorRepo, userService, sessionManager, jwtManager, &authenticator)
	authHandler := auth.NewHandler(authService)

	accountRepo := infrastructure.NewAccountRepository(dbService.DB)
	transactionRepo := infrastructure.NewTransactionRepository(dbService.DB)
	templateRepo := infrastructure.NewRecurringTemplateRepository(dbService.DB)

	accountService := application.NewAccountService(accountRepo)
	transactionService := application.NewTransactionService(transactionRepo, accountRepo)
	recurringService := application.NewRecurringService(templateRepo, transactionRepo, accountRepo)

	accountHandler := interfaces.NewAccountHandler(accountService, respondJSON, respondError)
	transactionHandler := interfaces.NewTransactionHandler(transactionService, respondJSON, respondError)
	recurringHandler := interfaces.NewRecurringHandler(recurringService, respondJSON, respondError)

	categoryService := categories.NewCategoryService(categories.NewCategoryRepository(dbService.DB))
	budgetService := budgets.NewBudgetService(budgets.NewBudgetRepository(dbService.DB))
	goalService := goals.NewGoalService(goals.NewGoalRepository(dbService.DB))
	planningHandler := planning.NewPlanningHandler(categoryService, budgetService, goalService, respondJSON, respondError)

	server := NewServer(authHandler, authService, userHandler, accountHandler, transactionHandler, recurringHandler, planningHandler, dbService)
	server.RegisterRoutes()

	// Catch up on any recurring transactions missed while the server was down.
	if err := recurringService.ProcessDueTemplates(context.Background(), time.Now()); err != nil {
		log.Printf("Error processing due recurring templates on startup: %v", err)
	}

	err = StartRecurringScheduler(recurringService)
	if err != nil {
		log.Fatalf("Scheduler didn't start, stoping the app ...")
	}

	handler := loggingMiddleware(http.HandlerFunc(server.router.ServeHTTP))
	log.Println("Starting perf on port 6060...")
	go func() {
		log.Println(http.ListenAndServe("localhost:6060", nil))
	}()
	log.Println("Server starting on port 8080...")
	if err := http.ListenAndServe(":8080", handler); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

func StartRecurringScheduler(recurringService *application.RecurringService) error {
	c := cron.New()
	// Daily scan at 02:00 server time
	_, err := c.AddFunc("0 2 * * *", func() {
		err := recurringService.ProcessDueTemplates(context.Background(), time.Now())
		if err != nil {
			log.Printf("Error processing due recurring templates: %v", err)
		} else {
			log.Println("Recurring templates processed successfully.")
		}
	})
	if err != nil {
		return err
	}
	c.Start()
	return nil
}
