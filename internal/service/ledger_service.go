package service

import (
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tallysplit/tally/internal/calculator"
	"github.com/tallysplit/tally/internal/metrics"
	"github.com/tallysplit/tally/internal/middleware"
	"github.com/tallysplit/tally/internal/models"
	"github.com/tallysplit/tally/internal/storage"
)

// LedgerService handles expense and settlement mutations. Edits and deletes
// consult the lock evaluator: a record referencing a departed member is
// immutable and stays in the ledger as history.
type LedgerService struct {
	store    storage.Store
	recorder metrics.Recorder
}

// NewLedgerService creates a LedgerService with the given storage backend and
// metrics recorder.
func NewLedgerService(store storage.Store, recorder metrics.Recorder) *LedgerService {
	return &LedgerService{store: store, recorder: recorder}
}

type splitLineRequest struct {
	UserID string  `json:"user_id"`
	Amount float64 `json:"amount"`
}

type expenseRequest struct {
	Currency    string             `json:"currency"`
	Amount      float64            `json:"amount"`
	Description string             `json:"description"`
	PaidBy      string             `json:"paid_by"`
	Splits      []splitLineRequest `json:"splits"`
}

type expenseResponse struct {
	ID          string             `json:"id"`
	GroupID     string             `json:"group_id"`
	Currency    string             `json:"currency"`
	Amount      float64            `json:"amount"`
	Description string             `json:"description"`
	PaidBy      string             `json:"paid_by"`
	Splits      []splitLineRequest `json:"splits"`
	CreatedAt   int64              `json:"created_at"`
	CreatedBy   string             `json:"created_by"`
	Locked      bool               `json:"locked"`
}

func toExpenseResponse(exp *models.ExpenseRecord, roster []string) expenseResponse {
	splits := make([]splitLineRequest, len(exp.Splits))
	for i, line := range exp.Splits {
		splits[i] = splitLineRequest{UserID: line.UserID, Amount: line.Amount}
	}
	return expenseResponse{
		ID:          exp.ID,
		GroupID:     exp.GroupID,
		Currency:    exp.Currency,
		Amount:      exp.Amount,
		Description: exp.Description,
		PaidBy:      exp.PaidBy,
		Splits:      splits,
		CreatedAt:   exp.CreatedAt,
		CreatedBy:   exp.CreatedBy,
		Locked:      calculator.IsLocked(exp, roster),
	}
}

// validateExpense checks an expense request against the group roster.
// Returns an error message, or "" if valid.
func validateExpense(req *expenseRequest, group *models.Group) string {
	if req.Currency == "" {
		return "currency required"
	}
	if req.Amount <= 0 {
		return "amount must be positive"
	}
	if req.PaidBy == "" {
		return "paid_by required"
	}
	if !group.HasMember(req.PaidBy) {
		return "paid_by must be an active group member"
	}
	if len(req.Splits) == 0 {
		return "at least one split required"
	}
	sum := 0.0
	for _, line := range req.Splits {
		if !group.HasMember(line.UserID) {
			return "split user " + line.UserID + " must be an active group member"
		}
		sum += line.Amount
	}
	if math.Abs(sum-req.Amount) > calculator.Epsilon {
		return "splits must sum to the expense amount"
	}
	return ""
}

// getGroupForMember loads the group and verifies the caller's membership.
func (s *LedgerService) getGroupForMember(w http.ResponseWriter, r *http.Request, groupID string) *models.Group {
	group, err := s.store.GetGroup(r.Context(), groupID)
	if err != nil {
		writeError(w, http.StatusNotFound, "group not found")
		return nil
	}
	if !group.HasMember(middleware.GetUserID(r.Context())) {
		writeError(w, http.StatusForbidden, "you must be a member of this group")
		return nil
	}
	return group
}

// CreateExpense records a new expense in a group.
func (s *LedgerService) CreateExpense(w http.ResponseWriter, r *http.Request) {
	group := s.getGroupForMember(w, r, chi.URLParam(r, "groupID"))
	if group == nil {
		return
	}

	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validateExpense(&req, group); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	exp := &models.ExpenseRecord{
		GroupID:     group.ID,
		Currency:    req.Currency,
		Amount:      req.Amount,
		Description: req.Description,
		PaidBy:      req.PaidBy,
		CreatedBy:   middleware.GetUserID(r.Context()),
	}
	for _, line := range req.Splits {
		exp.Splits = append(exp.Splits, models.SplitLine{UserID: line.UserID, Amount: line.Amount})
		exp.Participants = append(exp.Participants, line.UserID)
	}

	if err := s.store.CreateExpense(r.Context(), exp); err != nil {
		slog.Error("CreateExpense failed", "group_id", group.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create expense")
		return
	}

	s.recorder.LedgerMutation("expense", "create")
	slog.Info("Expense created", "expense_id", exp.ID, "group_id", group.ID, "amount", exp.Amount, "currency", exp.Currency)
	writeJSON(w, http.StatusCreated, toExpenseResponse(exp, group.Members))
}

// ListExpenses retrieves all non-deleted expenses in a group.
func (s *LedgerService) ListExpenses(w http.ResponseWriter, r *http.Request) {
	group := s.getGroupForMember(w, r, chi.URLParam(r, "groupID"))
	if group == nil {
		return
	}

	expenses, err := s.store.ListExpensesByGroup(r.Context(), group.ID)
	if err != nil {
		slog.Error("ListExpensesByGroup failed", "group_id", group.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list expenses")
		return
	}

	resp := make([]expenseResponse, len(expenses))
	for i, exp := range expenses {
		resp[i] = toExpenseResponse(exp, group.Members)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"expenses": resp})
}

// GetExpense retrieves one expense. Soft-deleted and locked records remain
// readable.
func (s *LedgerService) GetExpense(w http.ResponseWriter, r *http.Request) {
	exp, err := s.store.GetExpense(r.Context(), chi.URLParam(r, "expenseID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "expense not found")
		return
	}
	group := s.getGroupForMember(w, r, exp.GroupID)
	if group == nil {
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponse(exp, group.Members))
}

// UpdateExpense replaces an expense. Rejected if the record is locked.
func (s *LedgerService) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	exp, err := s.store.GetExpense(r.Context(), chi.URLParam(r, "expenseID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "expense not found")
		return
	}
	group := s.getGroupForMember(w, r, exp.GroupID)
	if group == nil {
		return
	}
	if exp.Deleted.IsDeleted() {
		writeError(w, http.StatusConflict, "expense has been deleted")
		return
	}
	if calculator.IsLocked(exp, group.Members) {
		s.recorder.LockedMutationRejected("expense")
		writeError(w, http.StatusConflict, calculator.ErrRecordLocked.Error())
		return
	}

	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validateExpense(&req, group); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	exp.Currency = req.Currency
	exp.Amount = req.Amount
	exp.Description = req.Description
	exp.PaidBy = req.PaidBy
	exp.Splits = nil
	exp.Participants = nil
	for _, line := range req.Splits {
		exp.Splits = append(exp.Splits, models.SplitLine{UserID: line.UserID, Amount: line.Amount})
		exp.Participants = append(exp.Participants, line.UserID)
	}

	if err := s.store.UpdateExpense(r.Context(), exp); err != nil {
		slog.Error("UpdateExpense failed", "expense_id", exp.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update expense")
		return
	}

	s.recorder.LedgerMutation("expense", "update")
	writeJSON(w, http.StatusOK, toExpenseResponse(exp, group.Members))
}

// DeleteExpense soft-deletes an expense. Rejected if the record is locked.
func (s *LedgerService) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	exp, err := s.store.GetExpense(r.Context(), chi.URLParam(r, "expenseID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "expense not found")
		return
	}
	group := s.getGroupForMember(w, r, exp.GroupID)
	if group == nil {
		return
	}
	if calculator.IsLocked(exp, group.Members) {
		s.recorder.LockedMutationRejected("expense")
		writeError(w, http.StatusConflict, calculator.ErrRecordLocked.Error())
		return
	}

	if err := s.store.SoftDeleteExpense(r.Context(), exp.ID, time.Now().Unix()); err != nil {
		slog.Error("SoftDeleteExpense failed", "expense_id", exp.ID, "error", err)
		writeError(w, http.StatusConflict, "expense already deleted")
		return
	}

	s.recorder.LedgerMutation("expense", "delete")
	slog.Info("Expense deleted", "expense_id", exp.ID)
	writeJSON(w, http.StatusOK, nil)
}

type settlementRequest struct {
	Currency string  `json:"currency"`
	PayerID  string  `json:"payer_id"`
	PayeeID  string  `json:"payee_id"`
	Amount   float64 `json:"amount"`
	Note     string  `json:"note"`
}

type settlementResponse struct {
	ID        string  `json:"id"`
	GroupID   string  `json:"group_id"`
	Currency  string  `json:"currency"`
	PayerID   string  `json:"payer_id"`
	PayeeID   string  `json:"payee_id"`
	Amount    float64 `json:"amount"`
	Note      string  `json:"note,omitempty"`
	CreatedAt int64   `json:"created_at"`
	CreatedBy string  `json:"created_by"`
	Locked    bool    `json:"locked"`
}

func toSettlementResponse(stl *models.SettlementRecord, roster []string) settlementResponse {
	return settlementResponse{
		ID:        stl.ID,
		GroupID:   stl.GroupID,
		Currency:  stl.Currency,
		PayerID:   stl.PayerID,
		PayeeID:   stl.PayeeID,
		Amount:    stl.Amount,
		Note:      stl.Note,
		CreatedAt: stl.CreatedAt,
		CreatedBy: stl.CreatedBy,
		Locked:    calculator.IsLocked(stl, roster),
	}
}

// validateSettlement checks a settlement request against the group roster.
func validateSettlement(req *settlementRequest, group *models.Group) string {
	if req.Currency == "" {
		return "currency required"
	}
	if req.Amount <= 0 {
		return "amount must be positive"
	}
	if req.PayerID == "" || req.PayeeID == "" {
		return "payer_id and payee_id required"
	}
	if req.PayerID == req.PayeeID {
		return "payer and payee must differ"
	}
	if !group.HasMember(req.PayerID) || !group.HasMember(req.PayeeID) {
		return "payer and payee must be active group members"
	}
	return ""
}

// CreateSettlement records a payment between two members.
func (s *LedgerService) CreateSettlement(w http.ResponseWriter, r *http.Request) {
	group := s.getGroupForMember(w, r, chi.URLParam(r, "groupID"))
	if group == nil {
		return
	}

	var req settlementRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validateSettlement(&req, group); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	stl := &models.SettlementRecord{
		GroupID:   group.ID,
		Currency:  req.Currency,
		PayerID:   req.PayerID,
		PayeeID:   req.PayeeID,
		Amount:    req.Amount,
		Note:      req.Note,
		CreatedBy: middleware.GetUserID(r.Context()),
	}
	if err := s.store.CreateSettlement(r.Context(), stl); err != nil {
		slog.Error("CreateSettlement failed", "group_id", group.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create settlement")
		return
	}

	s.recorder.LedgerMutation("settlement", "create")
	slog.Info("Settlement created", "settlement_id", stl.ID, "group_id", group.ID, "amount", stl.Amount, "currency", stl.Currency)
	writeJSON(w, http.StatusCreated, toSettlementResponse(stl, group.Members))
}

// ListSettlements retrieves all non-deleted settlements in a group.
func (s *LedgerService) ListSettlements(w http.ResponseWriter, r *http.Request) {
	group := s.getGroupForMember(w, r, chi.URLParam(r, "groupID"))
	if group == nil {
		return
	}

	settlements, err := s.store.ListSettlementsByGroup(r.Context(), group.ID)
	if err != nil {
		slog.Error("ListSettlementsByGroup failed", "group_id", group.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list settlements")
		return
	}

	resp := make([]settlementResponse, len(settlements))
	for i, stl := range settlements {
		resp[i] = toSettlementResponse(stl, group.Members)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"settlements": resp})
}

// UpdateSettlement replaces a settlement. Rejected if the record is locked.
func (s *LedgerService) UpdateSettlement(w http.ResponseWriter, r *http.Request) {
	stl, err := s.store.GetSettlement(r.Context(), chi.URLParam(r, "settlementID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "settlement not found")
		return
	}
	group := s.getGroupForMember(w, r, stl.GroupID)
	if group == nil {
		return
	}
	if stl.Deleted.IsDeleted() {
		writeError(w, http.StatusConflict, "settlement has been deleted")
		return
	}
	if calculator.IsLocked(stl, group.Members) {
		s.recorder.LockedMutationRejected("settlement")
		writeError(w, http.StatusConflict, calculator.ErrRecordLocked.Error())
		return
	}

	var req settlementRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validateSettlement(&req, group); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	stl.Currency = req.Currency
	stl.PayerID = req.PayerID
	stl.PayeeID = req.PayeeID
	stl.Amount = req.Amount
	stl.Note = req.Note

	if err := s.store.UpdateSettlement(r.Context(), stl); err != nil {
		slog.Error("UpdateSettlement failed", "settlement_id", stl.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update settlement")
		return
	}

	s.recorder.LedgerMutation("settlement", "update")
	writeJSON(w, http.StatusOK, toSettlementResponse(stl, group.Members))
}

// DeleteSettlement soft-deletes a settlement. Rejected if the record is locked.
func (s *LedgerService) DeleteSettlement(w http.ResponseWriter, r *http.Request) {
	stl, err := s.store.GetSettlement(r.Context(), chi.URLParam(r, "settlementID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "settlement not found")
		return
	}
	group := s.getGroupForMember(w, r, stl.GroupID)
	if group == nil {
		return
	}
	if calculator.IsLocked(stl, group.Members) {
		s.recorder.LockedMutationRejected("settlement")
		writeError(w, http.StatusConflict, calculator.ErrRecordLocked.Error())
		return
	}

	if err := s.store.SoftDeleteSettlement(r.Context(), stl.ID, time.Now().Unix()); err != nil {
		slog.Error("SoftDeleteSettlement failed", "settlement_id", stl.ID, "error", err)
		writeError(w, http.StatusConflict, "settlement already deleted")
		return
	}

	s.recorder.LedgerMutation("settlement", "delete")
	slog.Info("Settlement deleted", "settlement_id", stl.ID)
	writeJSON(w, http.StatusOK, nil)
}
