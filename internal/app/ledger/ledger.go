// Package ledger appends and lists complaint comments.
package ledger

import (
	"context"
	"time"

	"github.com/dalemusser/campusvoice/internal/app/system/apperr"
	"github.com/dalemusser/campusvoice/internal/app/system/htmlsanitize"
	"github.com/dalemusser/campusvoice/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommentStore is the comment persistence. *commentstore.Store satisfies it.
type CommentStore interface {
	Create(ctx context.Context, c models.Comment) (models.Comment, error)
	ListByComplaint(ctx context.Context, complaintID primitive.ObjectID) ([]models.Comment, error)
	CountByComplaint(ctx context.Context, complaintID primitive.ObjectID) (int64, error)
}

// ComplaintChecker confirms a complaint exists before a comment is attached.
type ComplaintChecker interface {
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
}

// NameLookup resolves author ids to display names in one call.
type NameLookup interface {
	NamesByID(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error)
}

// View is a comment as rendered to readers.
type View struct {
	ID          primitive.ObjectID `json:"id"`
	ComplaintID primitive.ObjectID `json:"complaint_id"`
	AuthorID    primitive.ObjectID `json:"-"`
	Author      Display            `json:"author"`
	Text        string             `json:"text"`
	IsAnonymous bool               `json:"is_anonymous"`
	CreatedAt   time.Time          `json:"created_at"`
}

type Ledger struct {
	comments   CommentStore
	complaints ComplaintChecker
	names      NameLookup
}

func New(comments CommentStore, complaints ComplaintChecker, names NameLookup) *Ledger {
	return &Ledger{comments: comments, complaints: complaints, names: names}
}

// Add appends a comment to complaintID.
func (l *Ledger) Add(ctx context.Context, complaintID, author primitive.ObjectID, text string, anonymous bool) (View, error) {
	text = htmlsanitize.StripTags(text)
	if text == "" {
		return View{}, apperr.Validation("Comment text is required",
			apperr.FieldError{Field: "text", Msg: "Comment text is required"})
	}
	ok, err := l.complaints.Exists(ctx, complaintID)
	if err != nil {
		return View{}, apperr.Internal(err)
	}
	if !ok {
		return View{}, apperr.NotFound("Complaint not found")
	}

	c, err := l.comments.Create(ctx, models.Comment{
		ComplaintID: complaintID,
		AuthorID:    author,
		Text:        text,
		IsAnonymous: anonymous,
	})
	if err != nil {
		return View{}, apperr.Internal(err)
	}
	views, err := l.render(ctx, []models.Comment{c})
	if err != nil {
		return View{}, err
	}
	return views[0], nil
}

// List returns every comment on complaintID, oldest first.
func (l *Ledger) List(ctx context.Context, complaintID primitive.ObjectID) ([]View, error) {
	cs, err := l.comments.ListByComplaint(ctx, complaintID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return l.render(ctx, cs)
}

// Count returns the number of comments on complaintID.
func (l *Ledger) Count(ctx context.Context, complaintID primitive.ObjectID) (int64, error) {
	n, err := l.comments.CountByComplaint(ctx, complaintID)
	if err != nil {
		return 0, apperr.Internal(err)
	}
	return n, nil
}

func (l *Ledger) render(ctx context.Context, cs []models.Comment) ([]View, error) {
	var ids []primitive.ObjectID
	seen := map[primitive.ObjectID]bool{}
	for _, c := range cs {
		if !c.IsAnonymous && !seen[c.AuthorID] {
			seen[c.AuthorID] = true
			ids = append(ids, c.AuthorID)
		}
	}
	names := map[primitive.ObjectID]string{}
	if len(ids) > 0 {
		var err error
		if names, err = l.names.NamesByID(ctx, ids); err != nil {
			return nil, apperr.Internal(err)
		}
	}

	out := make([]View, 0, len(cs))
	for _, c := range cs {
		out = append(out, View{
			ID:          c.ID,
			ComplaintID: c.ComplaintID,
			AuthorID:    c.AuthorID,
			Author:      displayFor(c.IsAnonymous, names[c.AuthorID]),
			Text:        c.Text,
			IsAnonymous: c.IsAnonymous,
			CreatedAt:   c.CreatedAt,
		})
	}
	return out, nil
}
