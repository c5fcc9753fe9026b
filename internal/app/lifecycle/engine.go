// Package lifecycle owns complaint creation, voting and status changes.
//
// Validation and authorization run before any write. Vote and status writes
// are single conditioned updates in the complaint store; listeners are
// notified after the status write commits and their failures are logged, not
// returned.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/dalemusser/campusvoice/internal/app/policy/complaintpolicy"
	complaintstore "github.com/dalemusser/campusvoice/internal/app/store/complaints"
	"github.com/dalemusser/campusvoice/internal/app/store/queries/complaintqueries"
	"github.com/dalemusser/campusvoice/internal/app/system/apperr"
	"github.com/dalemusser/campusvoice/internal/app/system/htmlsanitize"
	"github.com/dalemusser/campusvoice/internal/app/system/normalize"
	"github.com/dalemusser/campusvoice/internal/app/system/timeouts"
	"github.com/dalemusser/campusvoice/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Messages surfaced to API callers.
const (
	MsgNotFound     = "Complaint not found"
	MsgAlreadyVoted = "You have already voted on this complaint"
	MsgBadStatus    = "Invalid status value"
	MsgFacultyOnly  = "Access denied. Faculty only."
)

// fallbackStudentName is used in notifications when the author record is gone.
const fallbackStudentName = "Student"

// ComplaintStore is the persistence the engine needs. *complaintstore.Store
// satisfies it.
type ComplaintStore interface {
	Create(ctx context.Context, c models.Complaint) (models.Complaint, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Complaint, error)
	AddVote(ctx context.Context, id, voter primitive.ObjectID) (int, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status string, allowedFrom []string) (models.Complaint, error)
}

// CommentCounter supplies live comment counts for reads. The comment
// ledger satisfies it.
type CommentCounter interface {
	Count(ctx context.Context, complaintID primitive.ObjectID) (int64, error)
}

// UserLookup resolves complaint authors for event payloads.
type UserLookup interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

type Engine struct {
	complaints ComplaintStore
	comments   CommentCounter
	users      UserLookup
	listeners  []Listener
	log        *zap.Logger
}

func New(complaints ComplaintStore, comments CommentCounter, users UserLookup, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		complaints: complaints,
		comments:   comments,
		users:      users,
		log:        logger,
	}
}

// Subscribe registers l for StatusChanged events. Not safe to call once the
// engine is serving requests.
func (e *Engine) Subscribe(l Listener) {
	e.listeners = append(e.listeners, l)
}

// CreateInput is the caller-supplied part of a new complaint.
type CreateInput struct {
	Title       string
	Description string
	Category    string
	IsAnonymous bool
}

// Create validates in and stores a new pending complaint authored by author.
func (e *Engine) Create(ctx context.Context, author primitive.ObjectID, in CreateInput) (models.Complaint, error) {
	title := htmlsanitize.StripTags(in.Title)
	desc := htmlsanitize.StripTags(in.Description)
	category := normalize.Category(in.Category)

	var fields []apperr.FieldError
	switch {
	case title == "":
		fields = append(fields, apperr.FieldError{Field: "title", Msg: "Title is required"})
	case utf8.RuneCountInString(title) > models.MaxTitleLen:
		fields = append(fields, apperr.FieldError{Field: "title", Msg: fmt.Sprintf("Title must be at most %d characters", models.MaxTitleLen)})
	}
	switch {
	case desc == "":
		fields = append(fields, apperr.FieldError{Field: "description", Msg: "Description is required"})
	case utf8.RuneCountInString(desc) > models.MaxDescriptionLen:
		fields = append(fields, apperr.FieldError{Field: "description", Msg: fmt.Sprintf("Description must be at most %d characters", models.MaxDescriptionLen)})
	}
	switch {
	case category == "":
		fields = append(fields, apperr.FieldError{Field: "category", Msg: "Category is required"})
	case !models.IsValidCategory(category):
		fields = append(fields, apperr.FieldError{Field: "category", Msg: "Category is not recognized"})
	}
	if len(fields) > 0 {
		return models.Complaint{}, apperr.Validation("Invalid complaint", fields...)
	}

	c, err := e.complaints.Create(ctx, models.Complaint{
		Title:       title,
		Description: desc,
		Category:    category,
		AuthorID:    author,
		IsAnonymous: in.IsAnonymous,
	})
	if err != nil {
		return models.Complaint{}, apperr.Internal(err)
	}
	return c, nil
}

// Vote records voter's single vote on id and returns the new count.
func (e *Engine) Vote(ctx context.Context, id, voter primitive.ObjectID) (int, error) {
	votes, err := e.complaints.AddVote(ctx, id, voter)
	switch {
	case err == nil:
		return votes, nil
	case errors.Is(err, complaintstore.ErrNotFound):
		return 0, apperr.NotFound(MsgNotFound)
	case errors.Is(err, complaintstore.ErrAlreadyVoted):
		return 0, apperr.Conflict(MsgAlreadyVoted)
	default:
		return 0, apperr.Internal(err)
	}
}

// StatusChange reports the outcome of ChangeStatus.
type StatusChange struct {
	ComplaintID primitive.ObjectID
	AuthorID    primitive.ObjectID
	Previous    string
	Current     string
}

// Changed reports whether the write moved the complaint to a new status.
func (s StatusChange) Changed() bool { return s.Previous != s.Current }

// ValidateStatus accepts only the canonical status values, exactly as
// spelled; case and surrounding whitespace are not forgiven.
func ValidateStatus(status string) error {
	if !models.IsValidStatus(status) {
		return apperr.Validation(MsgBadStatus, apperr.FieldError{Field: "status", Msg: MsgBadStatus})
	}
	return nil
}

// ChangeStatus sets the status of id. Only faculty may call it. When the
// status actually changes, listeners receive a StatusChanged event after the
// write.
func (e *Engine) ChangeStatus(ctx context.Context, id primitive.ObjectID, caller complaintpolicy.Caller, newStatus string) (StatusChange, error) {
	if !complaintpolicy.CanChangeStatus(caller) {
		return StatusChange{}, apperr.Forbidden(MsgFacultyOnly)
	}
	if err := ValidateStatus(newStatus); err != nil {
		return StatusChange{}, err
	}
	status := newStatus

	before, err := e.complaints.SetStatus(ctx, id, status, sourcesOf(status))
	switch {
	case err == nil:
	case errors.Is(err, complaintstore.ErrNotFound):
		return StatusChange{}, apperr.NotFound(MsgNotFound)
	case errors.Is(err, complaintstore.ErrTransitionNotAllowed):
		return StatusChange{}, apperr.Conflict(fmt.Sprintf("Cannot change status to %s", status))
	default:
		return StatusChange{}, apperr.Internal(err)
	}

	change := StatusChange{
		ComplaintID: id,
		AuthorID:    before.AuthorID,
		Previous:    before.Status,
		Current:     status,
	}
	if change.Changed() {
		e.emit(ctx, StatusChanged{
			ComplaintID:    id,
			AuthorID:       before.AuthorID,
			ChangedBy:      caller.ID,
			ComplaintTitle: before.Title,
			PreviousStatus: before.Status,
			NewStatus:      status,
			At:             time.Now().UTC(),
		})
	}
	return change, nil
}

// emit delivers ev to every listener. The status write has already
// committed, so the request context's cancellation no longer applies.
func (e *Engine) emit(parent context.Context, ev StatusChanged) {
	if len(e.listeners) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), timeouts.Short())
	defer cancel()

	ev.StudentName = e.authorName(ctx, ev.AuthorID)
	for _, l := range e.listeners {
		if err := l.OnStatusChanged(ctx, ev); err != nil {
			e.log.Warn("status change listener failed",
				zap.Error(err),
				zap.String("complaint_id", ev.ComplaintID.Hex()),
				zap.String("new_status", ev.NewStatus))
		}
	}
}

func (e *Engine) authorName(ctx context.Context, id primitive.ObjectID) string {
	if e.users == nil {
		return fallbackStudentName
	}
	u, err := e.users.GetByID(ctx, id)
	if err != nil || u == nil || u.Name == "" {
		if err != nil {
			e.log.Debug("author lookup failed", zap.Error(err), zap.String("author_id", id.Hex()))
		}
		return fallbackStudentName
	}
	return u.Name
}

// Read returns one complaint with its live comment count. Any authenticated
// caller may read any complaint, resolved ones included.
func (e *Engine) Read(ctx context.Context, id primitive.ObjectID, caller complaintpolicy.Caller) (complaintqueries.Summary, error) {
	c, err := e.complaints.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, complaintstore.ErrNotFound) {
			return complaintqueries.Summary{}, apperr.NotFound(MsgNotFound)
		}
		return complaintqueries.Summary{}, apperr.Internal(err)
	}
	if !complaintpolicy.CanRead(caller, c) {
		return complaintqueries.Summary{}, apperr.Unauthorized("Authentication required")
	}
	n, err := e.comments.Count(ctx, id)
	if err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return complaintqueries.Summary{}, err
		}
		return complaintqueries.Summary{}, apperr.Internal(err)
	}
	return complaintqueries.SummaryOf(c, n), nil
}
