package service

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tallysplit/tally/internal/auth"
	"github.com/tallysplit/tally/internal/middleware"
)

// NewRouter registers all API routes and the middleware stack.
func NewRouter(
	authSvc *AuthService,
	groupSvc *GroupService,
	ledgerSvc *LedgerService,
	balanceSvc *BalanceService,
	jwtManager *auth.JWTManager,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.CORS)
	r.Use(middleware.Logging)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", authSvc.Register)
		r.Post("/auth/login", authSvc.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(jwtManager))

			r.Post("/groups", groupSvc.Create)
			r.Get("/groups", groupSvc.List)
			r.Get("/groups/{groupID}", groupSvc.Get)
			r.Put("/groups/{groupID}", groupSvc.Update)
			r.Delete("/groups/{groupID}", groupSvc.Delete)
			r.Post("/groups/{groupID}/members", groupSvc.AddMembers)
			r.Delete("/groups/{groupID}/members/{userID}", groupSvc.RemoveMember)

			r.Post("/groups/{groupID}/expenses", ledgerSvc.CreateExpense)
			r.Get("/groups/{groupID}/expenses", ledgerSvc.ListExpenses)
			r.Get("/expenses/{expenseID}", ledgerSvc.GetExpense)
			r.Put("/expenses/{expenseID}", ledgerSvc.UpdateExpense)
			r.Delete("/expenses/{expenseID}", ledgerSvc.DeleteExpense)

			r.Post("/groups/{groupID}/settlements", ledgerSvc.CreateSettlement)
			r.Get("/groups/{groupID}/settlements", ledgerSvc.ListSettlements)
			r.Put("/settlements/{settlementID}", ledgerSvc.UpdateSettlement)
			r.Delete("/settlements/{settlementID}", ledgerSvc.DeleteSettlement)

			r.Get("/groups/{groupID}/balances", balanceSvc.GetGroupBalances)
		})
	})

	return r
}
