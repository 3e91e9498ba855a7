package user

import (
	"time"

	"ict-ticketing/internal/domain/apperr"
)

var (
	ErrNotFound          = apperr.New(apperr.KindNotFound, "user not found")
	ErrDuplicateUsername = apperr.New(apperr.KindConflict, "username already exists")
	ErrDuplicateEmail    = apperr.New(apperr.KindConflict, "email already exists")
	ErrInvalidRole       = apperr.New(apperr.KindValidation, "role must be one of user, approver, admin")
)

type Role string

const (
	RoleUser     Role = "user"
	RoleApprover Role = "approver"
	RoleAdmin    Role = "admin"
)

// rank orders roles for minimum-role checks: user < approver < admin.
var rank = map[Role]int{
	RoleUser:     1,
	RoleApprover: 2,
	RoleAdmin:    3,
}

func (r Role) Valid() bool {
	_, ok := rank[r]
	return ok
}

// AtLeast reports whether r meets or exceeds min. Unknown roles never qualify.
func (r Role) AtLeast(min Role) bool {
	have, ok := rank[r]
	if !ok {
		return false
	}
	need, ok := rank[min]
	if !ok {
		return false
	}
	return have >= need
}

// Table: users
type User struct {
	ID             uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Username       string    `gorm:"column:username;size:50;not null;uniqueIndex:ux_users_username" json:"username"`
	Email          string    `gorm:"column:email;size:120;not null;uniqueIndex:ux_users_email" json:"email"`
	HashedPassword string    `gorm:"column:hashed_password;size:256;not null" json:"-"`
	Name           *string   `gorm:"column:name;size:120" json:"name"`
	Role           Role      `gorm:"column:role;size:20;not null;default:'user'" json:"role"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (User) TableName() string { return "users" }
