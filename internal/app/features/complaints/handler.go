// internal/app/features/complaints/handler.go
package complaints

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/campusvoice/internal/app/ledger"
	"github.com/dalemusser/campusvoice/internal/app/lifecycle"
	"github.com/dalemusser/campusvoice/internal/app/policy/complaintpolicy"
	"github.com/dalemusser/campusvoice/internal/app/store/queries/complaintqueries"
	"github.com/dalemusser/campusvoice/internal/app/system/apperr"
	"github.com/dalemusser/campusvoice/internal/app/system/auditlog"
	"github.com/dalemusser/campusvoice/internal/app/system/httpjson"
	"github.com/dalemusser/campusvoice/internal/app/system/normalize"
	"github.com/dalemusser/campusvoice/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB       *mongo.Database
	Engine   *lifecycle.Engine
	Ledger   *ledger.Ledger
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, engine *lifecycle.Engine, l *ledger.Ledger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Engine:   engine,
		Ledger:   l,
		AuditLog: audit,
		Log:      logger,
	}
}

// caller returns the signed-in caller or writes 401.
func (h *Handler) caller(w http.ResponseWriter, r *http.Request) (complaintpolicy.Caller, bool) {
	c, ok := complaintpolicy.CallerFromRequest(r)
	if !ok {
		apperr.Write(w, r, h.Log, apperr.Unauthorized("Authentication required"))
	}
	return c, ok
}

// complaintID parses the {id} URL param. A malformed id is reported as a
// missing complaint.
func (h *Handler) complaintID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apperr.Write(w, r, h.Log, apperr.NotFound(lifecycle.MsgNotFound))
		return primitive.NilObjectID, false
	}
	return id, true
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /api/complaints, /api/complaints/all, /api/complaints/user              |
*─────────────────────────────────────────────────────────────────────────────*/

func listFilter(r *http.Request) complaintqueries.Filter {
	q := r.URL.Query()
	return complaintqueries.Filter{
		Category: normalize.Filter(q.Get("category")),
		Status:   normalize.Filter(q.Get("status")),
	}
}

func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	h.serveVisible(w, r, complaintqueries.KindPublic)
}

func (h *Handler) ServeAll(w http.ResponseWriter, r *http.Request) {
	h.serveVisible(w, r, complaintqueries.KindAll)
}

func (h *Handler) serveVisible(w http.ResponseWriter, r *http.Request, kind complaintqueries.Kind) {
	c, ok := h.caller(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	sort := normalize.QueryParam(r.URL.Query().Get("sort"))
	items, err := complaintqueries.ListVisible(ctx, h.DB, c, kind, listFilter(r), sort)
	if err != nil {
		if errors.Is(err, complaintpolicy.ErrForbidden) {
			apperr.Write(w, r, h.Log, apperr.Forbidden(lifecycle.MsgFacultyOnly))
			return
		}
		apperr.Write(w, r, h.Log, apperr.Internal(err))
		return
	}
	apperr.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) ServeOwn(w http.ResponseWriter, r *http.Request) {
	c, ok := h.caller(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	q := r.URL.Query()
	items, err := complaintqueries.ListOwn(ctx, h.DB, c, normalize.Filter(q.Get("status")), normalize.QueryParam(q.Get("sort")))
	if err != nil {
		apperr.Write(w, r, h.Log, apperr.Internal(err))
		return
	}
	apperr.WriteJSON(w, http.StatusOK, items)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /api/complaints/{id}                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeOne(w http.ResponseWriter, r *http.Request) {
	c, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, ok := h.complaintID(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	s, err := h.Engine.Read(ctx, id, c)
	if err != nil {
		apperr.Write(w, r, h.Log, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, s)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /api/complaints                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

type createRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	IsAnonymous *bool  `json:"is_anonymous"`
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	c, ok := h.caller(w, r)
	if !ok {
		return
	}
	var req createRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		apperr.Write(w, r, h.Log, err)
		return
	}
	anonymous := true
	if req.IsAnonymous != nil {
		anonymous = *req.IsAnonymous
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Engine.Create(ctx, c.ID, lifecycle.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		IsAnonymous: anonymous,
	})
	if err != nil {
		apperr.Write(w, r, h.Log, err)
		return
	}
	h.Log.Info("complaint created",
		zap.String("complaint_id", created.ID.Hex()),
		zap.String("category", created.Category))
	apperr.WriteJSON(w, http.StatusCreated, complaintqueries.SummaryOf(created, 0))
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /api/complaints/{id}/vote                                              |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleVote(w http.ResponseWriter, r *http.Request) {
	c, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, ok := h.complaintID(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	votes, err := h.Engine.Vote(ctx, id, c.ID)
	if err != nil {
		apperr.Write(w, r, h.Log, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, map[string]int{"votes": votes})
}

/*─────────────────────────────────────────────────────────────────────────────*
| PATCH /api/complaints/{id}/status                                           |
*─────────────────────────────────────────────────────────────────────────────*/

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	c, ok := h.caller(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		apperr.Write(w, r, h.Log, err)
		return
	}
	if err := lifecycle.ValidateStatus(req.Status); err != nil {
		apperr.Write(w, r, h.Log, err)
		return
	}
	id, ok := h.complaintID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	change, err := h.Engine.ChangeStatus(ctx, id, c, req.Status)
	if err != nil {
		apperr.Write(w, r, h.Log, err)
		return
	}
	if change.Changed() {
		h.AuditLog.ComplaintStatusChanged(ctx, r, c.ID, id, change.AuthorID, change.Previous, change.Current)
	}
	apperr.WriteJSON(w, http.StatusOK, map[string]string{"status": change.Current})
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET, POST /api/complaints/{id}/comments                                     |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeComments(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.caller(w, r); !ok {
		return
	}
	id, ok := h.complaintID(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	views, err := h.Ledger.List(ctx, id)
	if err != nil {
		apperr.Write(w, r, h.Log, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, views)
}

type commentRequest struct {
	Text        string `json:"text"`
	IsAnonymous *bool  `json:"is_anonymous"`
}

func (h *Handler) HandleAddComment(w http.ResponseWriter, r *http.Request) {
	c, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, ok := h.complaintID(w, r)
	if !ok {
		return
	}
	var req commentRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		apperr.Write(w, r, h.Log, err)
		return
	}
	anonymous := true
	if req.IsAnonymous != nil {
		anonymous = *req.IsAnonymous
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	v, err := h.Ledger.Add(ctx, id, c.ID, req.Text, anonymous)
	if err != nil {
		apperr.Write(w, r, h.Log, err)
		return
	}
	apperr.WriteJSON(w, http.StatusCreated, v)
}
