package model

import "time"

type Visibility string

const (
	VisibilityAll     Visibility = "all"
	VisibilityAdmins  Visibility = "admins"
	VisibilityLeaders Visibility = "leaders"
)

func (v Visibility) Valid() bool {
	switch v {
	case VisibilityAll, VisibilityAdmins, VisibilityLeaders:
		return true
	}
	return false
}

// VisibleTo reports whether an admin of the given tier should see the item.
func (v Visibility) VisibleTo(role Role) bool {
	switch v {
	case VisibilityAll:
		return true
	case VisibilityAdmins:
		return role.OrgWide()
	case VisibilityLeaders:
		return role == RoleLeader
	}
	return false
}

type Announcement struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	Visibility Visibility `json:"visibility"`
	CreatedBy  string     `json:"created_by"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (a Announcement) Expired(now time.Time) bool {
	return a.ExpiresAt != nil && !a.ExpiresAt.After(now)
}

type AnnouncementPatch struct {
	Title       *string
	Content     *string
	Visibility  *Visibility
	ExpiresAt   *time.Time
	ClearExpiry bool
}
