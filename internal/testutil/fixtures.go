package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/superimpress/backend/internal/domain"
	"github.com/superimpress/backend/internal/password"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	name     string
	email    string
	password string
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		name:     "Test User",
		email:    fmt.Sprintf("testuser_%s@example.com", uuid.New().String()[:8]),
		password: "Testpassword123!",
	}
}

// WithName sets the display name
func (b *UserBuilder) WithName(name string) *UserBuilder {
	b.name = name
	return b
}

// WithEmail sets the email
func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

// WithPassword sets the password
func (b *UserBuilder) WithPassword(pw string) *UserBuilder {
	b.password = pw
	return b
}

// Build creates the user in the database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	hashed, err := password.Hash(b.password)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		Name:         b.name,
		Email:        b.email,
		PasswordHash: hashed,
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// AuthResponse matches the API auth response
type AuthResponse struct {
	Message string `json:"message"`
	User    struct {
		ID    uint   `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"user"`
}

// BuildAndLogin creates a user in the database, logs in through the API and
// returns the user together with a client whose jar holds the session cookies.
func (b *UserBuilder) BuildAndLogin(t *testing.T, ts *TestServer) (*domain.User, *http.Client) {
	t.Helper()

	user, rawPassword := b.Build(t, ts.DB.DB)

	client := ts.NewClient(t)
	body, _ := json.Marshal(map[string]string{
		"email":    user.Email,
		"password": rawPassword,
	})

	resp, err := client.Post(ts.APIURL("/auth/login"), "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("failed to login user: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected login status code: %d", resp.StatusCode)
	}

	return user, client
}

// PostBuilder creates test posts with a builder pattern
type PostBuilder struct {
	title     string
	content   string
	published bool
}

// NewPostBuilder creates a new PostBuilder with default values
func NewPostBuilder() *PostBuilder {
	return &PostBuilder{
		title:   "Test Post",
		content: "Test content",
	}
}

// WithTitle sets the title
func (b *PostBuilder) WithTitle(title string) *PostBuilder {
	b.title = title
	return b
}

// WithContent sets the content
func (b *PostBuilder) WithContent(content string) *PostBuilder {
	b.content = content
	return b
}

// Published marks the post as published
func (b *PostBuilder) Published() *PostBuilder {
	b.published = true
	return b
}

// Build creates the post in the database for the given owner
func (b *PostBuilder) Build(t *testing.T, db *gorm.DB, userID uint) *domain.Post {
	t.Helper()

	post := &domain.Post{
		UserID:  userID,
		Title:   b.title,
		Content: b.content,
	}
	if b.published {
		now := time.Now()
		post.PublishedAt = &now
	}

	if err := db.Create(post).Error; err != nil {
		t.Fatalf("failed to create post: %v", err)
	}

	return post
}
