package domain

import "time"

type Post struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	UserID      uint       `json:"userId" gorm:"index;not null"`
	Title       string     `json:"title" gorm:"default:Untitled"`
	Content     string     `json:"content" gorm:"not null"`
	PublishedAt *time.Time `json:"publishedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
