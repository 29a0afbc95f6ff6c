package service

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tallysplit/tally/internal/calculator"
	"github.com/tallysplit/tally/internal/metrics"
	"github.com/tallysplit/tally/internal/middleware"
	"github.com/tallysplit/tally/internal/models"
	"github.com/tallysplit/tally/internal/storage"
)

// BalanceService serves the balance view for a group: per-currency net
// positions and the simplified settling transactions.
type BalanceService struct {
	store    storage.Store
	recorder metrics.Recorder
}

// NewBalanceService creates a BalanceService with the given storage backend
// and metrics recorder.
func NewBalanceService(store storage.Store, recorder metrics.Recorder) *BalanceService {
	return &BalanceService{store: store, recorder: recorder}
}

type userBalanceResponse struct {
	UserID     string             `json:"user_id"`
	Currency   string             `json:"currency"`
	Owes       map[string]float64 `json:"owes"`
	OwedBy     map[string]float64 `json:"owed_by"`
	NetBalance float64            `json:"net_balance"`
}

type simplifiedDebtResponse struct {
	From     string  `json:"from"`
	To       string  `json:"to"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type groupBalancesResponse struct {
	GroupID         string                              `json:"group_id"`
	UserBalances    map[string][]userBalanceResponse    `json:"user_balances"`
	SimplifiedDebts map[string][]simplifiedDebtResponse `json:"simplified_debts"`
	LastUpdated     int64                               `json:"last_updated"`
}

func toBalancesResponse(gb *models.GroupBalances) groupBalancesResponse {
	resp := groupBalancesResponse{
		GroupID:         gb.GroupID,
		UserBalances:    make(map[string][]userBalanceResponse, len(gb.UserBalances)),
		SimplifiedDebts: make(map[string][]simplifiedDebtResponse, len(gb.SimplifiedDebts)),
		LastUpdated:     gb.LastUpdated,
	}
	for currency, balances := range gb.UserBalances {
		out := make([]userBalanceResponse, len(balances))
		for i, ub := range balances {
			out[i] = userBalanceResponse{
				UserID:     ub.UserID,
				Currency:   ub.Currency,
				Owes:       ub.Owes,
				OwedBy:     ub.OwedBy,
				NetBalance: ub.NetBalance,
			}
		}
		resp.UserBalances[currency] = out
	}
	for currency, debts := range gb.SimplifiedDebts {
		out := make([]simplifiedDebtResponse, len(debts))
		for i, d := range debts {
			out[i] = simplifiedDebtResponse{From: d.From, To: d.To, Amount: d.Amount, Currency: d.Currency}
		}
		resp.SimplifiedDebts[currency] = out
	}
	return resp
}

// countDegraded counts the skipped-record errors in a joined error chain.
func countDegraded(err error) int {
	type unwrapper interface{ Unwrap() []error }
	if err == nil {
		return 0
	}
	var joined unwrapper
	if errors.As(err, &joined) {
		return len(joined.Unwrap())
	}
	return 1
}

// GetGroupBalances computes balances from a point-in-time snapshot of the
// group's ledger. Malformed records degrade gracefully: they are logged and
// skipped, and the rest of the group's balances are still served.
func (s *BalanceService) GetGroupBalances(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")

	group, err := s.store.GetGroup(r.Context(), groupID)
	if err != nil {
		writeError(w, http.StatusNotFound, "group not found")
		return
	}
	if !group.HasMember(middleware.GetUserID(r.Context())) {
		writeError(w, http.StatusForbidden, "you must be a member of this group")
		return
	}

	expenses, err := s.store.ListExpensesByGroup(r.Context(), groupID)
	if err != nil {
		slog.Error("GetGroupBalances: failed to list expenses", "group_id", groupID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load ledger")
		return
	}
	settlements, err := s.store.ListSettlementsByGroup(r.Context(), groupID)
	if err != nil {
		slog.Error("GetGroupBalances: failed to list settlements", "group_id", groupID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load ledger")
		return
	}

	start := time.Now()
	balances, calcErr := calculator.ComputeGroupBalances(groupID, expenses, settlements, group.Members)
	s.recorder.BalanceComputed(time.Since(start), countDegraded(calcErr))

	if calcErr != nil {
		slog.Warn("GetGroupBalances: degraded computation",
			"group_id", groupID,
			"skipped_records", countDegraded(calcErr),
			"error", calcErr,
		)
	}

	slog.Info("GetGroupBalances successful",
		"group_id", groupID,
		"expenses", len(expenses),
		"settlements", len(settlements),
		"currencies", len(balances.UserBalances),
	)
	writeJSON(w, http.StatusOK, toBalancesResponse(balances))
}
