package service

import (
	"log/slog"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tallysplit/tally/internal/calculator"
	"github.com/tallysplit/tally/internal/middleware"
	"github.com/tallysplit/tally/internal/models"
	"github.com/tallysplit/tally/internal/storage"
)

// GroupService handles group management, including the membership-removal
// guard: a member cannot leave while they have an outstanding balance.
type GroupService struct {
	store storage.Store
}

// NewGroupService creates a GroupService with the given storage backend.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

type groupRequest struct {
	Name            string   `json:"name"`
	DefaultCurrency string   `json:"default_currency"`
	Members         []string `json:"members"`
}

type groupResponse struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	DefaultCurrency string   `json:"default_currency"`
	Members         []string `json:"members"`
	CreatedBy       string   `json:"created_by"`
	CreatedAt       int64    `json:"created_at"`
}

func toGroupResponse(g *models.Group) groupResponse {
	return groupResponse{
		ID:              g.ID,
		Name:            g.Name,
		DefaultCurrency: g.DefaultCurrency,
		Members:         g.Members,
		CreatedBy:       g.CreatedBy,
		CreatedAt:       g.CreatedAt,
	}
}

// memberOrReject loads the group and verifies the caller is an active member.
// Writes the error response and returns nil if not.
func (s *GroupService) memberOrReject(w http.ResponseWriter, r *http.Request, groupID string) *models.Group {
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

// Create creates a new group. The caller is always added to the roster.
func (s *GroupService) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req groupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name required")
		return
	}

	members := req.Members
	found := false
	for _, m := range members {
		if m == userID {
			found = true
			break
		}
	}
	if !found {
		members = append(members, userID)
	}

	group := &models.Group{
		Name:            req.Name,
		DefaultCurrency: req.DefaultCurrency,
		Members:         members,
		CreatedBy:       userID,
	}
	if err := s.store.CreateGroup(r.Context(), group); err != nil {
		slog.Error("CreateGroup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create group")
		return
	}

	slog.Info("Group created", "group_id", group.ID, "members", len(group.Members))
	writeJSON(w, http.StatusCreated, toGroupResponse(group))
}

// Get retrieves a group with its roster.
func (s *GroupService) Get(w http.ResponseWriter, r *http.Request) {
	group := s.memberOrReject(w, r, chi.URLParam(r, "groupID"))
	if group == nil {
		return
	}
	writeJSON(w, http.StatusOK, toGroupResponse(group))
}

// List retrieves all groups the caller belongs to.
func (s *GroupService) List(w http.ResponseWriter, r *http.Request) {
	groups, err := s.store.ListGroupsByUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		slog.Error("ListGroupsByUser failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list groups")
		return
	}

	resp := make([]groupResponse, len(groups))
	for i, g := range groups {
		resp[i] = toGroupResponse(g)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"groups": resp})
}

// Update changes a group's name and default currency.
func (s *GroupService) Update(w http.ResponseWriter, r *http.Request) {
	group := s.memberOrReject(w, r, chi.URLParam(r, "groupID"))
	if group == nil {
		return
	}

	var req groupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name != "" {
		group.Name = req.Name
	}
	if req.DefaultCurrency != "" {
		group.DefaultCurrency = req.DefaultCurrency
	}

	if err := s.store.UpdateGroup(r.Context(), group); err != nil {
		slog.Error("UpdateGroup failed", "group_id", group.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update group")
		return
	}
	writeJSON(w, http.StatusOK, toGroupResponse(group))
}

// Delete removes a group entirely.
func (s *GroupService) Delete(w http.ResponseWriter, r *http.Request) {
	group := s.memberOrReject(w, r, chi.URLParam(r, "groupID"))
	if group == nil {
		return
	}

	if err := s.store.DeleteGroup(r.Context(), group.ID); err != nil {
		slog.Error("DeleteGroup failed", "group_id", group.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete group")
		return
	}
	slog.Info("Group deleted", "group_id", group.ID)
	writeJSON(w, http.StatusOK, nil)
}

type addMembersRequest struct {
	Members []string `json:"members"`
}

// AddMembers adds users to the active roster.
func (s *GroupService) AddMembers(w http.ResponseWriter, r *http.Request) {
	group := s.memberOrReject(w, r, chi.URLParam(r, "groupID"))
	if group == nil {
		return
	}

	var req addMembersRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Members) == 0 {
		writeError(w, http.StatusBadRequest, "members required")
		return
	}

	if err := s.store.AddGroupMembers(r.Context(), group.ID, req.Members); err != nil {
		slog.Error("AddGroupMembers failed", "group_id", group.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to add members")
		return
	}
	slog.Info("Members added", "group_id", group.ID, "count", len(req.Members))

	updated, err := s.store.GetGroup(r.Context(), group.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to reload group")
		return
	}
	writeJSON(w, http.StatusOK, toGroupResponse(updated))
}

// RemoveMember removes a user from the active roster. Removal is refused
// while the member's net balance in any currency is outside the settlement
// epsilon — they have to settle up first.
func (s *GroupService) RemoveMember(w http.ResponseWriter, r *http.Request) {
	group := s.memberOrReject(w, r, chi.URLParam(r, "groupID"))
	if group == nil {
		return
	}
	userID := chi.URLParam(r, "userID")
	if !group.HasMember(userID) {
		writeError(w, http.StatusNotFound, "member not found in group")
		return
	}

	expenses, err := s.store.ListExpensesByGroup(r.Context(), group.ID)
	if err != nil {
		slog.Error("RemoveMember: failed to list expenses", "group_id", group.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to check balances")
		return
	}
	settlements, err := s.store.ListSettlementsByGroup(r.Context(), group.ID)
	if err != nil {
		slog.Error("RemoveMember: failed to list settlements", "group_id", group.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to check balances")
		return
	}

	balances, err := calculator.ComputeGroupBalances(group.ID, expenses, settlements, group.Members)
	if err != nil {
		slog.Warn("RemoveMember: degraded balance computation", "group_id", group.ID, "error", err)
	}
	for currency := range balances.UserBalances {
		if net := balances.NetBalanceOf(userID, currency); math.Abs(net) > calculator.Epsilon {
			writeError(w, http.StatusConflict, "member has an outstanding balance and must settle up first")
			return
		}
	}

	if err := s.store.RemoveGroupMember(r.Context(), group.ID, userID); err != nil {
		slog.Error("RemoveGroupMember failed", "group_id", group.ID, "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to remove member")
		return
	}
	slog.Info("Member removed", "group_id", group.ID, "user_id", userID)
	writeJSON(w, http.StatusOK, nil)
}
