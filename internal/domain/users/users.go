package users

import (
	"strings"
	"time"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, true
	case RoleModerator:
		return RoleModerator, true
	case RoleAdmin:
		return RoleAdmin, true
	}
	return "", false
}

func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

type Group struct {
	ID        string    `json:"id" gorm:"primaryKey;type:char(36)"`
	Name      string    `json:"name" gorm:"type:varchar(128);not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	Users     []User    `json:"-" gorm:"foreignKey:GroupID"`
}

type User struct {
	ID             string    `json:"id" gorm:"primaryKey;type:char(36)"`
	Email          string    `json:"email" gorm:"type:varchar(60);uniqueIndex;not null"`
	Username       string    `json:"username" gorm:"type:varchar(60);uniqueIndex;not null"`
	Phone          string    `json:"phone" gorm:"type:varchar(15);uniqueIndex;not null"`
	Name           string    `json:"name" gorm:"type:varchar(128)"`
	Surname        string    `json:"surname" gorm:"type:varchar(128)"`
	HashedPassword string    `json:"-" gorm:"column:hashed_password;not null"`
	Role           Role      `json:"role" gorm:"type:varchar(16);not null;default:user"`
	GroupID        *string   `json:"group_id" gorm:"type:char(36);index"`
	Image          *string   `json:"image" gorm:"type:varchar(255)"`
	IsBlocked      bool      `json:"is_blocked" gorm:"not null;default:false"`
	CreatedAt      time.Time `json:"created_at"`
	ModifiedAt     time.Time `json:"modified_at"`
}

// InGroup reports whether u belongs to groupID. A nil group matches nothing.
func (u User) InGroup(groupID *string) bool {
	return u.GroupID != nil && groupID != nil && *u.GroupID == *groupID
}

// GroupRef returns the group id or an empty string.
func (u User) GroupRef() string {
	if u.GroupID == nil {
		return ""
	}
	return *u.GroupID
}

// UserPatch holds the fields a user may change on their own record. Nil
// fields are left untouched.
type UserPatch struct {
	Name     *string `json:"name" validate:"omitempty,min=3,max=128"`
	Surname  *string `json:"surname" validate:"omitempty,min=3,max=128"`
	Username *string `json:"username" validate:"omitempty,min=3,max=40,username"`
	Phone    *string `json:"phone" validate:"omitempty,e164"`
	Email    *string `json:"email" validate:"omitempty,email"`
}

func (p UserPatch) IsEmpty() bool {
	return p.Name == nil && p.Surname == nil && p.Username == nil && p.Phone == nil && p.Email == nil
}

// Apply returns a copy of u with the set fields overridden.
func (p UserPatch) Apply(u User) User {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Surname != nil {
		u.Surname = *p.Surname
	}
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	return u
}

// AdminPatch extends UserPatch with the restricted fields only an admin may set.
type AdminPatch struct {
	UserPatch
	Role      *Role   `json:"role" validate:"omitempty,oneof=user moderator admin"`
	IsBlocked *bool   `json:"is_blocked"`
	GroupID   *string `json:"group_id" validate:"omitempty,uuid"`
}

func (p AdminPatch) IsEmpty() bool {
	return p.UserPatch.IsEmpty() && p.Role == nil && p.IsBlocked == nil && p.GroupID == nil
}

func (p AdminPatch) Apply(u User) User {
	u = p.UserPatch.Apply(u)
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.IsBlocked != nil {
		u.IsBlocked = *p.IsBlocked
	}
	if p.GroupID != nil {
		groupID := *p.GroupID
		u.GroupID = &groupID
	}
	return u
}

type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

const (
	DefaultListLimit = 30
	MaxListLimit     = 100
	DefaultSortBy    = "username"
)

type ListFilter struct {
	Page         int    `query:"page" validate:"min=1"`
	Limit        int    `query:"limit" validate:"min=0,max=100"`
	FilterByName string `query:"filter_by_name" validate:"max=128"`
	SortBy       string `query:"sort_by" validate:"max=64"`
	OrderBy      Order  `query:"order_by" validate:"omitempty,oneof=asc desc"`
}

// DefaultListFilter mirrors the query defaults of the list endpoint.
func DefaultListFilter() ListFilter {
	return ListFilter{
		Page:    1,
		Limit:   DefaultListLimit,
		SortBy:  DefaultSortBy,
		OrderBy: OrderDesc,
	}
}

// Offset is the number of rows skipped for the requested page.
func (f ListFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

type UploadImageResponse struct {
	Image  string `json:"image"`
	Status string `json:"status"`
}

type DeleteUserResponse struct {
	Message string `json:"message"`
}
