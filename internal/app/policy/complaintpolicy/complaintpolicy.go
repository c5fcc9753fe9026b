// internal/app/policy/complaintpolicy/complaintpolicy.go
package complaintpolicy

import (
	"errors"
	"net/http"

	"github.com/dalemusser/campusvoice/internal/app/system/authz"
	"github.com/dalemusser/campusvoice/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrForbidden is returned when the caller's role does not grant the query.
var ErrForbidden = errors.New("access denied")

// Caller is the authenticated identity a policy decides for.
type Caller struct {
	ID   primitive.ObjectID
	Role string
}

// IsFaculty reports whether the caller has the faculty role.
func (c Caller) IsFaculty() bool { return c.Role == models.RoleFaculty }

// CallerFromRequest extracts the caller from the request context.
// ok is false for anonymous requests.
func CallerFromRequest(r *http.Request) (Caller, bool) {
	role, _, id, ok := authz.UserCtx(r)
	if !ok {
		return Caller{}, false
	}
	return Caller{ID: id, Role: role}, true
}

// Scope is the constraint a complaint list query applies on top of the
// caller's own filters. The zero value matches every complaint.
type Scope struct {
	// AuthorID restricts results to one author when set.
	AuthorID *primitive.ObjectID
	// ExcludeStatuses removes complaints in these states.
	ExcludeStatuses []string
}

// Public is the shared feed. Students do not see resolved complaints there.
func Public(c Caller) Scope {
	if c.Role == models.RoleStudent {
		return Scope{ExcludeStatuses: []string{models.StatusResolved}}
	}
	return Scope{}
}

// All is the faculty triage view: every complaint, no implicit exclusion.
func All(c Caller) (Scope, error) {
	if !c.IsFaculty() {
		return Scope{}, ErrForbidden
	}
	return Scope{}, nil
}

// Own is the caller's authored complaints in every status.
func Own(c Caller) Scope {
	id := c.ID
	return Scope{AuthorID: &id}
}

// CanRead decides single-complaint reads. Any authenticated caller may read
// any complaint by id; the list-time exclusion of Public does not apply.
func CanRead(c Caller, _ models.Complaint) bool {
	return c.ID != primitive.NilObjectID
}

// CanChangeStatus reports whether the caller may move a complaint between
// states.
func CanChangeStatus(c Caller) bool {
	return c.IsFaculty()
}
