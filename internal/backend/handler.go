package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"hrconsole/internal/domain/audit"
	"hrconsole/internal/domain/auth"
	"hrconsole/internal/domain/leave"
	"hrconsole/internal/domain/masterdata"
	"hrconsole/internal/gateway"
	"hrconsole/internal/transport/http/api"
	"hrconsole/internal/transport/http/middleware"
	"hrconsole/internal/validation"
)

const (
	statusOK     = 1
	statusFailed = 0
)

// Handler serves the legacy gateway protocol: list envelopes wrapped in
// dataFetch.table and statusCode/message results for everything else.
type Handler struct {
	Store        Store
	Secret       string
	TokenTTL     time.Duration
	DoubleEncode bool
	// Audit records successful mutations when set.
	Audit audit.Recorder
}

func NewHandler(store Store, secret string, tokenTTL time.Duration, doubleEncode bool) *Handler {
	return &Handler{Store: store, Secret: secret, TokenTTL: tokenTTL, DoubleEncode: doubleEncode}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get(auth.CheckUserPath, h.handleCheckUser)
	r.Post(auth.LoginPath, h.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser)

		r.With(middleware.RequirePermission(auth.PermMasterDataRead)).Get(masterdata.CollegeListPath, h.handleColleges)
		r.With(middleware.RequirePermission(auth.PermLeaveRead)).Get(leave.EmployeeListPath, h.handleEmployees)
		r.With(middleware.RequirePermission(auth.PermLeaveRead)).Get(leave.PendingPath, h.handlePending)
		r.Post(leave.ApprovePath, h.handleApprove)
		r.With(middleware.RequirePermission(auth.PermAuditRead)).Get(AuditListPath, h.handleAuditList)

		for _, def := range masterdata.All() {
			r.With(middleware.RequirePermission(auth.PermMasterDataRead)).Get(def.Endpoints.List, h.handleList(def))
			r.Post(def.Endpoints.Save, h.handleSave(def))
			r.Post(def.Endpoints.Update, h.handleUpdate(def))
			r.Delete(def.Endpoints.Delete, h.handleDelete(def))
			r.Get(def.Endpoints.Delete, h.handleDelete(def))
		}
	})
}

func (h *Handler) writeTable(w http.ResponseWriter, r *http.Request, rows []gateway.Row) {
	body, err := gateway.EncodeTable(rows, h.DoubleEncode)
	if err != nil {
		slog.Error("encode table failed", "path", r.URL.Path, "err", err)
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		slog.Warn("write table failed", "err", err)
	}
}

// writeResult always answers 200; the outcome travels in statusCode.
func (h *Handler) writeResult(w http.ResponseWriter, code int, message string, extra map[string]any) {
	payload := make(map[string]any, len(extra)+2)
	for k, v := range extra {
		payload[k] = v
	}
	payload["statusCode"] = code
	payload["message"] = message
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("write result failed", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("gateway request failed", "path", r.URL.Path, "requestId", middleware.GetRequestID(r.Context()), "err", err)
	api.Fail(w, http.StatusInternalServerError, "internal_error", "internal error", middleware.GetRequestID(r.Context()))
}

// allowed checks a mutation permission. A denial is a domain failure, not an
// HTTP error, so the console shows the message.
func (h *Handler) allowed(w http.ResponseWriter, r *http.Request, perm string) bool {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return false
	}
	if !auth.HasPermission(user.RoleName, perm) {
		h.writeResult(w, statusFailed, "You are not allowed to perform this action", nil)
		return false
	}
	return true
}

func decodeRow(r *http.Request) (gateway.Row, error) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	var row gateway.Row
	if err := dec.Decode(&row); err != nil {
		return nil, err
	}
	if row == nil {
		return nil, errors.New("empty body")
	}
	return row, nil
}

func (h *Handler) handleCheckUser(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.URL.Query().Get("username"))
	if username == "" {
		h.writeResult(w, statusFailed, "Username is required", nil)
		return
	}
	if _, err := h.Store.FindUser(r.Context(), username); err != nil {
		if !errors.Is(err, ErrNotFound) {
			h.writeError(w, r, err)
			return
		}
		h.writeResult(w, statusFailed, "User not found", nil)
		return
	}
	h.writeResult(w, statusOK, "User verified", nil)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.writeResult(w, statusFailed, "Invalid login request", nil)
		return
	}
	user, err := h.Store.FindUser(r.Context(), payload.Username)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			h.writeError(w, r, err)
			return
		}
		h.writeResult(w, statusFailed, "Invalid username or password", nil)
		return
	}
	if err := auth.CheckPassword(user.PasswordHash, payload.Password); err != nil {
		h.writeResult(w, statusFailed, "Invalid username or password", nil)
		return
	}

	token, err := auth.GenerateToken(h.Secret, auth.Claims{Username: user.Username, RoleName: user.RoleName}, h.TokenTTL)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeResult(w, statusOK, "Login successful", map[string]any{"token": token, "roleName": user.RoleName})
}

func (h *Handler) handleColleges(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Store.Colleges(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeTable(w, r, rows)
}

func (h *Handler) handleEmployees(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Store.Employees(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeTable(w, r, rows)
}

func (h *Handler) handlePending(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Store.PendingLeaves(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeTable(w, r, rows)
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	if !h.allowed(w, r, auth.PermLeaveApprove) {
		return
	}
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	var batch []leave.Approval
	if err := dec.Decode(&batch); err != nil {
		h.writeResult(w, statusFailed, "Invalid approval request", nil)
		return
	}
	if len(batch) == 0 {
		h.writeResult(w, statusFailed, "No leaves selected", nil)
		return
	}
	approved, err := h.Store.ApproveLeaves(r.Context(), batch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if approved == 0 {
		h.writeResult(w, statusFailed, "No matching pending leaves", nil)
		return
	}
	h.record(r, audit.ActionApprove, "leave", "", batch)
	h.writeResult(w, statusOK, fmt.Sprintf("%d leave(s) approved successfully", approved), nil)
}

func (h *Handler) handleList(def masterdata.Definition) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := h.Store.List(r.Context(), def.Name)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		h.writeTable(w, r, rows)
	}
}

func (h *Handler) handleSave(def masterdata.Definition) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.allowed(w, r, auth.PermMasterDataWrite) {
			return
		}
		rec, ok := h.readRecord(w, r, def)
		if !ok {
			return
		}
		id, err := h.Store.Create(r.Context(), def.Name, rec)
		if err != nil {
			h.mutationFailed(w, r, def, err)
			return
		}
		h.record(r, audit.ActionCreate, def.Name, strconv.FormatInt(id, 10), rec)
		h.writeResult(w, statusOK, def.Noun+" saved successfully", map[string]any{def.IDField: id})
	}
}

func (h *Handler) handleUpdate(def masterdata.Definition) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.allowed(w, r, auth.PermMasterDataWrite) {
			return
		}
		body, err := decodeRow(r)
		if err != nil {
			h.writeResult(w, statusFailed, "Invalid request body", nil)
			return
		}
		id, ok := parseID(masterdata.Text(body, def.IDField))
		if !ok {
			h.writeResult(w, statusFailed, def.IDLabel+" is required", nil)
			return
		}
		rec, ok := h.normalized(w, def, body)
		if !ok {
			return
		}
		if err := h.Store.Update(r.Context(), def.Name, id, rec); err != nil {
			h.mutationFailed(w, r, def, err)
			return
		}
		h.record(r, audit.ActionUpdate, def.Name, strconv.FormatInt(id, 10), rec)
		h.writeResult(w, statusOK, def.Noun+" updated successfully", nil)
	}
}

func (h *Handler) handleDelete(def masterdata.Definition) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.allowed(w, r, auth.PermMasterDataWrite) {
			return
		}
		id, ok := parseID(r.URL.Query().Get(def.IDField))
		if !ok {
			h.writeResult(w, statusFailed, def.IDLabel+" is required", nil)
			return
		}
		if err := h.Store.Delete(r.Context(), def.Name, id); err != nil {
			h.mutationFailed(w, r, def, err)
			return
		}
		h.record(r, audit.ActionDelete, def.Name, strconv.FormatInt(id, 10), nil)
		h.writeResult(w, statusOK, def.Noun+" deleted successfully", nil)
	}
}

func (h *Handler) readRecord(w http.ResponseWriter, r *http.Request, def masterdata.Definition) (gateway.Row, bool) {
	body, err := decodeRow(r)
	if err != nil {
		h.writeResult(w, statusFailed, "Invalid request body", nil)
		return nil, false
	}
	return h.normalized(w, def, body)
}

func (h *Handler) normalized(w http.ResponseWriter, def masterdata.Definition, body gateway.Row) (gateway.Row, bool) {
	t, err := tableFor(def.Name)
	if err != nil {
		h.writeResult(w, statusFailed, err.Error(), nil)
		return nil, false
	}
	rec, err := t.normalize(body)
	if err != nil {
		h.writeResult(w, statusFailed, err.Error(), nil)
		return nil, false
	}
	return rec, true
}

func (h *Handler) mutationFailed(w http.ResponseWriter, r *http.Request, def masterdata.Definition, err error) {
	var verr *validation.Error
	switch {
	case errors.Is(err, ErrConflict):
		h.writeResult(w, statusFailed, def.Noun+" already exists", nil)
	case errors.Is(err, ErrNotFound):
		h.writeResult(w, statusFailed, def.Noun+" not found", nil)
	case errors.Is(err, ErrInUse):
		h.writeResult(w, statusFailed, def.Noun+" is in use and cannot be deleted", nil)
	case errors.As(err, &verr):
		h.writeResult(w, statusFailed, verr.Error(), nil)
	default:
		h.writeError(w, r, err)
	}
}

// AuditListPath serves the mutation trail in the same table envelope as the
// other lists.
const AuditListPath = "/audit/list"

// record never fails the request; a lost audit event is only logged.
func (h *Handler) record(r *http.Request, action, entity, entityID string, after any) {
	if h.Audit == nil {
		return
	}
	evt := audit.Event{
		Action:     action,
		EntityType: entity,
		EntityID:   entityID,
		RequestID:  middleware.GetRequestID(r.Context()),
		IP:         remoteIP(r),
	}
	if user, ok := middleware.GetUser(r.Context()); ok {
		evt.Actor = user.Username
	}
	if err := h.Audit.Record(r.Context(), evt, after); err != nil {
		slog.Warn("audit record failed", "action", action, "entity", entity, "err", err)
	}
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (h *Handler) handleAuditList(w http.ResponseWriter, r *http.Request) {
	if h.Audit == nil {
		h.writeTable(w, r, []gateway.Row{})
		return
	}
	q := r.URL.Query()
	limit := 200
	if raw := q.Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	events, err := h.Audit.List(r.Context(), audit.Filter{
		Action:     q.Get("action"),
		EntityType: q.Get("entity"),
		Actor:      q.Get("actor"),
	}, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	rows := make([]gateway.Row, 0, len(events))
	for _, evt := range events {
		rows = append(rows, gateway.Row{
			"id":         evt.ID,
			"actor":      evt.Actor,
			"action":     evt.Action,
			"entityType": evt.EntityType,
			"entityId":   evt.EntityID,
			"requestId":  evt.RequestID,
			"createdAt":  evt.CreatedAt.Format(time.RFC3339),
		})
	}
	h.writeTable(w, r, rows)
}
