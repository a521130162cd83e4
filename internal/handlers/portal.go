package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/diewo77/staff-portal/internal/auth"
	"github.com/diewo77/staff-portal/internal/httpx"
	"github.com/diewo77/staff-portal/internal/models"
	"github.com/diewo77/staff-portal/internal/navigator"
	"github.com/diewo77/staff-portal/internal/store"
)

// PortalHandler is the single surface the UI talks to. Every route builds a
// navigator action and dispatches it; nothing here reaches the store
// directly.
type PortalHandler struct {
	Nav   *navigator.Navigator
	Store *store.Store
}

func NewPortalHandler(nav *navigator.Navigator, st *store.Store) *PortalHandler {
	return &PortalHandler{Nav: nav, Store: st}
}

func (h *PortalHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/portal/home", h.get(navigator.OpShowHome))
	mux.HandleFunc("/portal/tasks", h.tasks)
	mux.HandleFunc("/portal/tasks/detail", h.getOnly(h.taskDetail))
	mux.HandleFunc("/portal/tasks/new", h.getOnly(h.taskNew))
	mux.HandleFunc("/portal/tasks/resolve", h.post(h.resolveTask))
	mux.HandleFunc("/portal/tasks/delete", h.post(h.deleteTask))
	mux.HandleFunc("/portal/comments", h.post(h.addComment))
	mux.HandleFunc("/portal/roster", h.roster)
	mux.HandleFunc("/portal/roster/editor", h.getOnly(h.rosterEditor))
	mux.HandleFunc("/portal/roster/delete", h.post(h.deleteEvent))
	mux.HandleFunc("/portal/admin", h.get(navigator.OpShowAdmin))
	mux.HandleFunc("/portal/admin/categories", h.post(h.createCategory))
	mux.HandleFunc("/portal/admin/categories/rename", h.post(h.renameCategory))
	mux.HandleFunc("/portal/admin/roles", h.post(h.assignRole))
	mux.HandleFunc("/portal/admin/users/delete", h.post(h.deleteUser))
}

// sessionFrom resolves the signed cookie to a fresh user row, so role or
// status changes take effect on the next request rather than at next login.
func (h *PortalHandler) sessionFrom(r *http.Request) (auth.Session, bool) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok || uid == 0 {
		return auth.Session{}, false
	}
	u, err := h.Store.GetUserByID(r.Context(), uid)
	if err != nil {
		return auth.Session{}, false
	}
	return auth.SessionFor(u), true
}

func (h *PortalHandler) dispatch(w http.ResponseWriter, r *http.Request, act navigator.Action) {
	sess, ok := h.sessionFrom(r)
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	state, data, err := h.Nav.Dispatch(r.Context(), sess, act)
	if err != nil {
		httpx.DomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"state": state, "data": data})
}

// get builds a parameterless GET view handler.
func (h *PortalHandler) get(op navigator.Op) http.HandlerFunc {
	return h.getOnly(func(w http.ResponseWriter, r *http.Request) {
		h.dispatch(w, r, navigator.Action{Op: op})
	})
}

// getOnly wraps a view handler with the method check.
func (h *PortalHandler) getOnly(fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", "GET")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
			return
		}
		fn(w, r)
	}
}

// post wraps a mutation handler with the method check.
func (h *PortalHandler) post(fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", "POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
			return
		}
		fn(w, r)
	}
}

func (h *PortalHandler) tasks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.dispatch(w, r, navigator.Action{Op: navigator.OpShowTaskList, Category: r.URL.Query().Get("category")})
	case http.MethodPost:
		h.createTask(w, r)
	default:
		w.Header().Set("Allow", "GET,POST")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	}
}

func (h *PortalHandler) taskDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.URL.Query().Get("id"), 10, 64)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_task_id", nil)
		return
	}
	h.dispatch(w, r, navigator.Action{Op: navigator.OpShowTaskDetail, TaskID: uint(id)})
}

func (h *PortalHandler) taskNew(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, navigator.Action{Op: navigator.OpShowCreateTask, Category: r.URL.Query().Get("category")})
}

type createTaskRequest struct {
	Category   string `json:"category"`
	Title      string `json:"title"`
	Details    string `json:"details"`
	Importance string `json:"importance"`
	AssigneeID *uint  `json:"assignee_id"`
	ImageRef   string `json:"image_ref"`
}

func (h *PortalHandler) createTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", nil)
		return
	}
	h.dispatch(w, r, navigator.Action{
		Op:         navigator.OpCreateTask,
		Category:   req.Category,
		Title:      req.Title,
		Details:    req.Details,
		Importance: models.Importance(req.Importance),
		AssigneeID: req.AssigneeID,
		ImageRef:   req.ImageRef,
	})
}

func (h *PortalHandler) resolveTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TaskID uint `json:"task_id"`
		Done   bool `json:"done"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", nil)
		return
	}
	h.dispatch(w, r, navigator.Action{Op: navigator.OpResolveTask, TaskID: req.TaskID, Done: req.Done})
}

func (h *PortalHandler) deleteTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TaskID uint `json:"task_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", nil)
		return
	}
	h.dispatch(w, r, navigator.Action{Op: navigator.OpDeleteTask, TaskID: req.TaskID})
}

func (h *PortalHandler) addComment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TaskID   uint   `json:"task_id"`
		Message  string `json:"message"`
		ImageRef string `json:"image_ref"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", nil)
		return
	}
	h.dispatch(w, r, navigator.Action{Op: navigator.OpAddComment, TaskID: req.TaskID, Message: req.Message, ImageRef: req.ImageRef})
}

func (h *PortalHandler) roster(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.dispatch(w, r, navigator.Action{Op: navigator.OpShowRoster})
	case http.MethodPost:
		h.saveEvent(w, r)
	default:
		w.Header().Set("Allow", "GET,POST")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	}
}

func (h *PortalHandler) rosterEditor(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, navigator.Action{Op: navigator.OpShowRosterEditor, Date: r.URL.Query().Get("date")})
}

func (h *PortalHandler) saveEvent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date     string `json:"date"`
		Time     string `json:"time"`
		Timezone string `json:"timezone"`
		Location string `json:"location"`
		Mission  string `json:"mission"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", nil)
		return
	}
	h.dispatch(w, r, navigator.Action{
		Op: navigator.OpSaveEvent, Date: req.Date, Time: req.Time,
		Timezone: req.Timezone, Location: req.Location, Mission: req.Mission,
	})
}

func (h *PortalHandler) deleteEvent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", nil)
		return
	}
	h.dispatch(w, r, navigator.Action{Op: navigator.OpDeleteEvent, Date: req.Date})
}

func (h *PortalHandler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name         string `json:"name"`
		RequiredRole string `json:"required_role"`
		SortOrder    int    `json:"sort_order"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", nil)
		return
	}
	h.dispatch(w, r, navigator.Action{
		Op: navigator.OpCreateCategory, Category: req.Name,
		RequiredRole: req.RequiredRole, SortOrder: req.SortOrder,
	})
}

func (h *PortalHandler) renameCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name"`
		NewName string `json:"new_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", nil)
		return
	}
	h.dispatch(w, r, navigator.Action{Op: navigator.OpRenameCategory, Category: req.Name, NewName: req.NewName})
}

func (h *PortalHandler) assignRole(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email  string `json:"email"`
		Role   string `json:"role"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", nil)
		return
	}
	h.dispatch(w, r, navigator.Action{
		Op: navigator.OpAssignRole, Email: req.Email,
		Role: models.Role(req.Role), Status: models.Status(req.Status),
	})
}

func (h *PortalHandler) deleteUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", nil)
		return
	}
	h.dispatch(w, r, navigator.Action{Op: navigator.OpDeleteUser, Email: req.Email})
}
