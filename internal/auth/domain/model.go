// Package domain contains core types for the auth service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// User represents a dispatcher or technician account.
type User struct {
	ID           snowflake.ID `gorm:"primaryKey"`
	Email        string       `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash string       `gorm:"column:password_hash;type:text;not null"`
	DisplayName  string       `gorm:"column:display_name;type:text"`
	CreatedAt    time.Time    `gorm:"not null"`
	UpdatedAt    time.Time    `gorm:"not null"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

// Session represents a persisted login session. Only a hash of the
// session token is stored.
type Session struct {
	ID          snowflake.ID `gorm:"primaryKey"`
	UserID      snowflake.ID `gorm:"column:user_id;not null;index"`
	ActiveOrgID int64        `gorm:"column:active_org_id"`
	TokenHash   string       `gorm:"column:token_hash;type:text;not null;uniqueIndex"`
	ExpiresAt   time.Time    `gorm:"column:expires_at;not null"`
	RevokedAt   *time.Time   `gorm:"column:revoked_at"`
	CreatedAt   time.Time    `gorm:"column:created_at;not null"`
}

// TableName sets the database table name.
func (Session) TableName() string { return "sessions" }
