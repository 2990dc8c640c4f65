package leavehandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrconsole/internal/domain/auth"
	"hrconsole/internal/domain/leave"
	"hrconsole/internal/transport/http/middleware"
	"hrconsole/internal/transport/http/shared"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/leaves", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermLeaveRead)).Get("/", h.handleView)
		r.With(middleware.RequirePermission(auth.PermLeaveRead)).Post("/reload", h.handleReload)
		r.With(middleware.RequirePermission(auth.PermLeaveRead)).Put("/query", h.handleQuery)
		r.With(middleware.RequirePermission(auth.PermLeaveRead)).Get("/export", h.handleExport)
		r.With(middleware.RequirePermission(auth.PermLeaveApprove)).Post("/{rowID}/toggle", h.handleToggle)
		r.With(middleware.RequirePermission(auth.PermLeaveApprove)).Post("/select-all", h.handleSelectAll)
		r.With(middleware.RequirePermission(auth.PermLeaveApprove)).Post("/submit", h.handleSubmit)
	})
}

func withApprovals(op func(r *http.Request, approvals *leave.Approvals) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := shared.MustWorkspace(w, r)
		if !ok {
			return
		}
		approvals, err := ws.Approvals(r.Context())
		if err != nil {
			shared.Respond(w, r, ws, nil, err)
			return
		}
		err = op(r, approvals)
		shared.Respond(w, r, ws, approvals.Snapshot(), err)
	}
}

func (h *Handler) handleView(w http.ResponseWriter, r *http.Request) {
	withApprovals(func(r *http.Request, approvals *leave.Approvals) error {
		if q, ok := r.URL.Query()["q"]; ok && len(q) > 0 {
			approvals.SetQuery(q[0])
		}
		return nil
	})(w, r)
}

func (h *Handler) handleReload(w http.ResponseWriter, r *http.Request) {
	withApprovals(func(r *http.Request, approvals *leave.Approvals) error {
		return approvals.Load(r.Context())
	})(w, r)
}

type queryRequest struct {
	Query string `json:"query"`
}

func (h *Handler) handleQuery(w http.ResponseWriter, r *http.Request) {
	var payload queryRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	withApprovals(func(r *http.Request, approvals *leave.Approvals) error {
		approvals.SetQuery(payload.Query)
		return nil
	})(w, r)
}

func (h *Handler) handleToggle(w http.ResponseWriter, r *http.Request) {
	withApprovals(func(r *http.Request, approvals *leave.Approvals) error {
		return approvals.Toggle(chi.URLParam(r, "rowID"))
	})(w, r)
}

type selectAllRequest struct {
	Selected bool `json:"selected"`
}

func (h *Handler) handleSelectAll(w http.ResponseWriter, r *http.Request) {
	var payload selectAllRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	withApprovals(func(r *http.Request, approvals *leave.Approvals) error {
		approvals.SelectAll(payload.Selected)
		return nil
	})(w, r)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	withApprovals(func(r *http.Request, approvals *leave.Approvals) error {
		return approvals.SubmitSelected(r.Context())
	})(w, r)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	ws, ok := shared.MustWorkspace(w, r)
	if !ok {
		return
	}
	approvals, err := ws.Approvals(r.Context())
	if err != nil {
		shared.Respond(w, r, ws, nil, err)
		return
	}
	shared.WriteExport(w, r, approvals.Table())
}
