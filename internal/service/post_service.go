package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/superimpress/backend/internal/domain"
	"github.com/superimpress/backend/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrPostNotFound = errors.New("post not found")
	ErrForbidden    = errors.New("not authorized to access this post")
)

const defaultPostListLimit = 20

type PostService struct {
	postRepo repository.PostRepository
}

func NewPostService(postRepo repository.PostRepository) *PostService {
	return &PostService{postRepo: postRepo}
}

type CreatePostInput struct {
	Title     string
	Content   string
	Published bool
}

type UpdatePostInput struct {
	Title     *string
	Content   *string
	Published *bool
}

func (s *PostService) Create(ctx context.Context, userID uint, input CreatePostInput) (*domain.Post, error) {
	if input.Content == "" {
		return nil, fmt.Errorf("%w: content is required", ErrValidation)
	}

	post := &domain.Post{
		UserID:  userID,
		Title:   input.Title,
		Content: input.Content,
	}
	if post.Title == "" {
		post.Title = "Untitled"
	}
	if input.Published {
		now := time.Now()
		post.PublishedAt = &now
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	return post, nil
}

// Get returns a post only to its owner. A missing post and a post owned by
// someone else are distinct outcomes: 404 versus 403 at the API boundary.
func (s *PostService) Get(ctx context.Context, userID, postID uint) (*domain.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	if post.UserID != userID {
		return nil, ErrForbidden
	}

	return post, nil
}

func (s *PostService) List(ctx context.Context, userID uint, limit, offset int) ([]*domain.Post, error) {
	if limit <= 0 {
		limit = defaultPostListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.postRepo.ListByUserID(ctx, userID, limit, offset)
}

func (s *PostService) Update(ctx context.Context, userID, postID uint, input UpdatePostInput) (*domain.Post, error) {
	post, err := s.Get(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		post.Title = *input.Title
	}
	if input.Content != nil {
		if *input.Content == "" {
			return nil, fmt.Errorf("%w: content is required", ErrValidation)
		}
		post.Content = *input.Content
	}
	if input.Published != nil {
		if *input.Published && post.PublishedAt == nil {
			now := time.Now()
			post.PublishedAt = &now
		} else if !*input.Published {
			post.PublishedAt = nil
		}
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}

	return post, nil
}

func (s *PostService) Delete(ctx context.Context, userID, postID uint) error {
	post, err := s.Get(ctx, userID, postID)
	if err != nil {
		return err
	}
	return s.postRepo.Delete(ctx, post.ID)
}
