package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Themes offered to users. The first one is the default.
var Themes = []string{"enterprise", "dark", "material", "green", "modern"}

// DefaultTheme is applied when a profile has no preference.
const DefaultTheme = "enterprise"

// Permission names a single capability. They are used by the router to guard routes.
type Permission string

const (
	PermViewDashboard Permission = "canViewDashboard"
	PermReadList      Permission = "canReadList"
	PermCreate        Permission = "canCreate"
	PermUpdate        Permission = "canUpdate"
	PermDelete        Permission = "canDelete"
	PermExport        Permission = "canExport"
	PermAdmin         Permission = "isAdmin"
)

type Permissions struct {
	CanViewDashboard bool `bson:"canViewDashboard" json:"canViewDashboard"`
	CanReadList      bool `bson:"canReadList" json:"canReadList"`
	CanCreate        bool `bson:"canCreate" json:"canCreate"`
	CanUpdate        bool `bson:"canUpdate" json:"canUpdate"`
	CanDelete        bool `bson:"canDelete" json:"canDelete"`
	CanExport        bool `bson:"canExport" json:"canExport"`
	IsAdmin          bool `bson:"isAdmin" json:"isAdmin"`
}

// Has reports whether the permission set grants p. Admins are granted everything.
func (p Permissions) Has(perm Permission) bool {
	if p.IsAdmin {
		return true
	}
	switch perm {
	case PermViewDashboard:
		return p.CanViewDashboard
	case PermReadList:
		return p.CanReadList
	case PermCreate:
		return p.CanCreate
	case PermUpdate:
		return p.CanUpdate
	case PermDelete:
		return p.CanDelete
	case PermExport:
		return p.CanExport
	}
	return false
}

// AllPermissions is the permission set given to seeded administrators.
func AllPermissions() Permissions {
	return Permissions{
		CanViewDashboard: true,
		CanReadList:      true,
		CanCreate:        true,
		CanUpdate:        true,
		CanDelete:        true,
		CanExport:        true,
		IsAdmin:          true,
	}
}

type Preferences struct {
	Theme string `bson:"theme,omitempty" json:"theme,omitempty"`
}

// User is the profile document. Credentials live in their own collection.
type User struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName   string             `bson:"firstName" json:"firstName"`
	LastName    string             `bson:"lastName" json:"lastName"`
	Email       string             `bson:"email" json:"email"`
	Permissions Permissions        `bson:"permissions" json:"permissions"`
	Preferences Preferences        `bson:"preferences" json:"preferences"`
}

// DisplayName is "First Last" trimmed, as written into audit logs.
func (u User) DisplayName() string {
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	return name
}

// Credential is the sign-in secret bound to a profile.
type Credential struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"passwordHash" json:"-"`
	UserID       primitive.ObjectID `bson:"userID" json:"userID"`
}
