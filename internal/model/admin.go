package model

import "time"

// Role is the numeric tier stored on an admin record.
type Role int

const (
	RoleSuperAdmin Role = 1
	RoleAdmin      Role = 2
	RoleOFP        Role = 3
	RoleLeader     Role = 4
)

func (r Role) Valid() bool {
	return r >= RoleSuperAdmin && r <= RoleLeader
}

// OrgWide reports whether the tier sees every dimension.
func (r Role) OrgWide() bool {
	return r == RoleSuperAdmin || r == RoleAdmin || r == RoleOFP
}

func (r Role) String() string {
	switch r {
	case RoleSuperAdmin:
		return "super-admin"
	case RoleAdmin:
		return "admin"
	case RoleOFP:
		return "ofp"
	case RoleLeader:
		return "leader"
	default:
		return "unknown"
	}
}

type Admin struct {
	ID                string     `json:"id"`
	Email             string     `json:"email"`
	FullName          string     `json:"full_name"`
	PasswordHash      string     `json:"-"`
	Role              Role       `json:"role"`
	DimensionID       *int64     `json:"dimension_id,omitempty"`
	SessionsRevokedAt *time.Time `json:"-"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// Identity is the resolved caller of a request.
type Identity struct {
	AdminID     string `json:"admin_id"`
	Email       string `json:"email"`
	FullName    string `json:"full_name"`
	Role        Role   `json:"role"`
	DimensionID *int64 `json:"dimension_id,omitempty"`
}

func (i Identity) ActorRole() string {
	return i.Role.String()
}

type AuthClaims struct {
	AdminID  string
	Role     Role
	Type     string
	TokenID  string
	IssuedAt time.Time
	// IssuedAtPrecision is a millisecond for tokens carrying iat_ms and a
	// second for tokens that only have the standard iat claim.
	IssuedAtPrecision time.Duration
}

type TokenPair struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	TokenType    string   `json:"token_type"`
	ExpiresIn    int64    `json:"expires_in"`
	Admin        Identity `json:"admin"`
}
