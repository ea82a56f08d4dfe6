package models

import "time"

const (
	RoleDeveloper = "developer"
	RoleQATester  = "qatester"
	RoleAdmin     = "admin"
)

// RegistrableRoles are the roles self-registration may claim. The admin role
// is only ever provisioned out of band.
var RegistrableRoles = []string{RoleDeveloper, RoleQATester}

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"unique;not null"          json:"username"`
	Email        string `gorm:"unique;not null"          json:"email"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Role         string `gorm:"not null"                 json:"role"`
	Points       int    `gorm:"not null;default:0"       json:"points"`
}

// RevokedToken is an append-only ledger row. Token holds the sha256 hex of
// the exact token string; the column is indexed but not unique, so revoking
// the same string twice just appends another row.
type RevokedToken struct {
	ID        uint      `gorm:"primaryKey"         json:"id"`
	Token     string    `gorm:"index;not null"     json:"token"`
	UserLabel string    `gorm:"not null"           json:"user_label"`
	Revoked   bool      `gorm:"not null;default:true" json:"revoked"`
	CreatedAt time.Time `json:"created_at"`
}
