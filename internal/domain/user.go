package domain

import (
	"time"

	"gorm.io/datatypes"
)

type User struct {
	ID                    uint           `json:"id" gorm:"primaryKey"`
	Name                  string         `json:"name" gorm:"size:100;not null"`
	Email                 string         `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash          string         `json:"-" gorm:"not null"`
	RefreshTokenHash      *string        `json:"-"`
	RefreshTokenExpiresAt *time.Time     `json:"-"`
	OAuthProvider         *string        `json:"-" gorm:"column:oauth_provider"`
	OAuthID               *string        `json:"-" gorm:"column:oauth_id"`
	OAuthProfile          datatypes.JSON `json:"-" gorm:"column:oauth_profile"`
	CreatedAt             time.Time      `json:"createdAt"`
	UpdatedAt             time.Time      `json:"updatedAt"`
}
