package masterdatahandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrconsole/internal/domain/auth"
	"hrconsole/internal/domain/masterdata"
	"hrconsole/internal/transport/http/api"
	"hrconsole/internal/transport/http/middleware"
	"hrconsole/internal/transport/http/shared"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/masterdata", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermMasterDataRead)).Get("/", h.handleDefinitions)
		r.Route("/{entity}", func(r chi.Router) {
			read := r.With(middleware.RequirePermission(auth.PermMasterDataRead))
			write := r.With(middleware.RequirePermission(auth.PermMasterDataWrite))

			read.Get("/", h.handleView)
			read.Post("/reload", h.handleReload)
			read.Put("/query", h.handleQuery)
			read.Get("/export", h.handleExport)

			write.Put("/form", h.handleDraft)
			write.Post("/form/edit", h.handleEdit)
			write.Post("/form/reset", h.handleReset)
			write.Post("/form/submit", h.handleSubmit)
			write.Post("/delete", h.handleDeleteRequest)
			write.Post("/delete/confirm", h.handleDeleteConfirm)
			write.Post("/delete/cancel", h.handleDeleteCancel)
		})
	})
}

type definitionView struct {
	Entity  string             `json:"entity"`
	Title   string             `json:"title"`
	IDField string             `json:"idField"`
	Fields  []masterdata.Field `json:"fields"`
}

func (h *Handler) handleDefinitions(w http.ResponseWriter, r *http.Request) {
	defs := masterdata.All()
	out := make([]definitionView, 0, len(defs))
	for _, def := range defs {
		out = append(out, definitionView{Entity: def.Name, Title: def.Title, IDField: def.IDField, Fields: def.Fields})
	}
	api.Success(w, out, middleware.GetRequestID(r.Context()))
}

// withScreen resolves the session's screen for the {entity} parameter, runs
// op against it and answers with the screen's new snapshot.
func withScreen(op func(r *http.Request, screen *masterdata.Screen) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := shared.MustWorkspace(w, r)
		if !ok {
			return
		}
		screen, err := ws.Screen(r.Context(), chi.URLParam(r, "entity"))
		if err != nil {
			shared.Respond(w, r, ws, nil, err)
			return
		}
		err = op(r, screen)
		shared.Respond(w, r, ws, screen.Snapshot(), err)
	}
}

func (h *Handler) handleView(w http.ResponseWriter, r *http.Request) {
	withScreen(func(r *http.Request, screen *masterdata.Screen) error {
		if q, ok := r.URL.Query()["q"]; ok && len(q) > 0 {
			screen.List.SetQuery(q[0])
		}
		return nil
	})(w, r)
}

func (h *Handler) handleReload(w http.ResponseWriter, r *http.Request) {
	withScreen(func(r *http.Request, screen *masterdata.Screen) error {
		return screen.Open(r.Context())
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
	withScreen(func(r *http.Request, screen *masterdata.Screen) error {
		screen.List.SetQuery(payload.Query)
		return nil
	})(w, r)
}

type draftRequest struct {
	Values masterdata.Draft `json:"values"`
}

func (h *Handler) handleDraft(w http.ResponseWriter, r *http.Request) {
	var payload draftRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	withScreen(func(r *http.Request, screen *masterdata.Screen) error {
		return screen.Form.SetDraft(payload.Values)
	})(w, r)
}

type idRequest struct {
	ID string `json:"id"`
}

func (h *Handler) handleEdit(w http.ResponseWriter, r *http.Request) {
	var payload idRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	withScreen(func(r *http.Request, screen *masterdata.Screen) error {
		return screen.EditByID(payload.ID)
	})(w, r)
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	withScreen(func(r *http.Request, screen *masterdata.Screen) error {
		return screen.Form.Reset()
	})(w, r)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	withScreen(func(r *http.Request, screen *masterdata.Screen) error {
		return screen.Form.Submit(r.Context())
	})(w, r)
}

func (h *Handler) handleDeleteRequest(w http.ResponseWriter, r *http.Request) {
	var payload idRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	withScreen(func(r *http.Request, screen *masterdata.Screen) error {
		return screen.Delete.Request(payload.ID)
	})(w, r)
}

func (h *Handler) handleDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	withScreen(func(r *http.Request, screen *masterdata.Screen) error {
		return screen.Delete.Confirm(r.Context())
	})(w, r)
}

func (h *Handler) handleDeleteCancel(w http.ResponseWriter, r *http.Request) {
	withScreen(func(r *http.Request, screen *masterdata.Screen) error {
		screen.Delete.Cancel()
		return nil
	})(w, r)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	ws, ok := shared.MustWorkspace(w, r)
	if !ok {
		return
	}
	screen, err := ws.Screen(r.Context(), chi.URLParam(r, "entity"))
	if err != nil {
		shared.Respond(w, r, ws, nil, err)
		return
	}
	shared.WriteExport(w, r, screen.Table())
}
