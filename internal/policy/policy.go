// Package policy decides whether a caller may perform an action on a
// resource. Every controller goes through the same rule table instead of
// re-deriving ownership and role checks.
package policy

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/goer-app/goer/backend/internal/errs"
	"github.com/goer-app/goer/backend/internal/models"
)

// Action is one of the CRUD verbs.
type Action string

const (
	ActionList   Action = "list"
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Kind is the resource kind a rule applies to.
type Kind string

const (
	KindAccount    Kind = "account"
	KindTag        Kind = "tag"
	KindStatic     Kind = "static"
	KindPreference Kind = "preference"
	KindFeedback   Kind = "feedback"
	KindPost       Kind = "post"
	KindReview     Kind = "review"
	KindComment    Kind = "comment"
	KindReaction   Kind = "reaction"
	KindThread     Kind = "thread"
	KindMessage    Kind = "message"
	KindEvent      Kind = "event"
	KindSave       Kind = "save"
)

// Caller is the authenticated identity. A nil *Caller is anonymous.
type Caller struct {
	ID       primitive.ObjectID
	Role     models.Role
	Approved bool
}

// CallerOf builds a Caller from an account.
func CallerOf(a *models.Account) *Caller {
	return &Caller{ID: a.ID, Role: a.Role, Approved: a.Approved}
}

// Resource describes the instance being acted on. ID is the account id for
// KindAccount; Members is the member set of the enclosing thread.
type Resource struct {
	Kind    Kind
	ID      primitive.ObjectID
	Owner   primitive.ObjectID
	Members []primitive.ObjectID
}

// Rule reports whether caller may act on res.
type Rule func(caller *Caller, res Resource) bool

func anyone(*Caller, Resource) bool { return true }

func authenticated(c *Caller, _ Resource) bool { return c != nil }

func adminOnly(c *Caller, _ Resource) bool {
	return c != nil && c.Role == models.RoleAdmin
}

func adminOrSelf(c *Caller, res Resource) bool {
	return c != nil && (c.Role == models.RoleAdmin || c.ID == res.ID)
}

func adminNotSelf(c *Caller, res Resource) bool {
	return c != nil && c.Role == models.RoleAdmin && c.ID != res.ID
}

func owner(c *Caller, res Resource) bool {
	return c != nil && !res.Owner.IsZero() && c.ID == res.Owner
}

func ownerOrAdmin(c *Caller, res Resource) bool {
	return owner(c, res) || adminOnly(c, res)
}

func roleUser(c *Caller, _ Resource) bool {
	return c != nil && c.Role == models.RoleUser
}

func member(c *Caller, res Resource) bool {
	if c == nil {
		return false
	}
	for _, m := range res.Members {
		if m == c.ID {
			return true
		}
	}
	return false
}

var catalog = map[Action]Rule{
	ActionList:   anyone,
	ActionRead:   anyone,
	ActionCreate: adminOnly,
	ActionUpdate: adminOnly,
	ActionDelete: adminOnly,
}

var content = map[Action]Rule{
	ActionList:   authenticated,
	ActionRead:   authenticated,
	ActionCreate: roleUser,
	ActionUpdate: owner,
	ActionDelete: ownerOrAdmin,
}

// Rules is the declarative (kind, action) -> rule table. A missing entry denies.
var Rules = map[Kind]map[Action]Rule{
	KindAccount: {
		ActionList:   adminOnly,
		ActionCreate: adminOnly,
		ActionRead:   adminOrSelf,
		ActionUpdate: adminOrSelf,
		ActionDelete: adminNotSelf,
	},
	KindTag:        catalog,
	KindPreference: catalog,
	KindStatic: {
		ActionList:   authenticated,
		ActionRead:   authenticated,
		ActionCreate: adminOnly,
		ActionUpdate: adminOnly,
		ActionDelete: adminOnly,
	},
	KindFeedback: {
		ActionList:   adminOnly,
		ActionRead:   adminOnly,
		ActionCreate: authenticated,
		ActionDelete: adminOnly,
	},
	KindPost:   content,
	KindReview: content,
	KindComment: {
		ActionList:   authenticated,
		ActionRead:   authenticated,
		ActionCreate: authenticated,
		ActionUpdate: owner,
		ActionDelete: ownerOrAdmin,
	},
	KindReaction: {
		ActionList:   authenticated,
		ActionCreate: roleUser,
		ActionUpdate: owner,
		ActionDelete: owner,
	},
	KindThread: {
		ActionList:   authenticated,
		ActionCreate: roleUser,
		ActionRead:   member,
		ActionUpdate: member,
		ActionDelete: member,
	},
	KindMessage: {
		ActionList:   member,
		ActionCreate: member,
	},
	KindEvent: {
		ActionList:   member,
		ActionCreate: member,
		ActionRead:   member,
		ActionUpdate: owner,
		ActionDelete: owner,
	},
	KindSave: {
		ActionList:   roleUser,
		ActionCreate: roleUser,
		ActionDelete: roleUser,
	},
}

// Can returns nil when caller may perform action on res, or an *errs.Error
// of kind unauthorized, unapproved or forbidden. It has no side effects.
func Can(caller *Caller, action Action, res Resource) error {
	rule, ok := Rules[res.Kind][action]
	if !ok {
		return errs.Forbidden("Action not allowed")
	}
	if caller != nil && !caller.Approved && action != ActionRead && action != ActionList {
		return errs.Unapproved("Account is not approved")
	}
	if rule(caller, res) {
		return nil
	}
	if caller == nil {
		return errs.Unauthorized("Authentication required")
	}
	return errs.Forbidden("You are not allowed to " + string(action) + " this " + string(res.Kind))
}

// ProjectAccount returns what caller may see of target: the full record for
// itself or a public account, otherwise only picture, name and email.
func ProjectAccount(caller *Caller, target *models.Account) any {
	if !target.Private || (caller != nil && caller.ID == target.ID) {
		return target
	}
	return models.PublicProfile{Picture: target.Picture, Name: target.Name, Email: target.Email}
}

// CanSeeContent reports whether caller may see content owned by author.
// acceptedFollower is whether caller follows author with an accepted edge.
func CanSeeContent(caller *Caller, author *models.Account, acceptedFollower bool) bool {
	if !author.Private {
		return true
	}
	if caller == nil {
		return false
	}
	return caller.ID == author.ID || caller.Role == models.RoleAdmin || acceptedFollower
}

// IsAdmin reports whether caller is an administrator. Approval of business
// accounts and the approved flag are reserved to admins.
func IsAdmin(caller *Caller) bool {
	return adminOnly(caller, Resource{})
}
