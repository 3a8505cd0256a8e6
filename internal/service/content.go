package service

import (
	"context"
	"fmt"

	"github.com/sakif/altarie/internal/model"
	"github.com/sakif/altarie/internal/repository"
)

// RecentLimit is how many products and posts the home page shows.
const RecentLimit = 2

// ContentService reads the catalogue and the blog.
type ContentService struct {
	products repository.ProductRepository
	posts    repository.PostRepository
	users    repository.UserRepository
}

func NewContentService(
	products repository.ProductRepository,
	posts repository.PostRepository,
	users repository.UserRepository,
) *ContentService {
	return &ContentService{products: products, posts: posts, users: users}
}

// Home is the landing page content.
type Home struct {
	Products []model.Product
	Posts    []model.Post
}

func (s *ContentService) Home(ctx context.Context) (*Home, error) {
	products, err := s.products.Recent(ctx, RecentLimit)
	if err != nil {
		return nil, fmt.Errorf("service/content: recent products: %w", err)
	}
	posts, err := s.posts.Recent(ctx, RecentLimit)
	if err != nil {
		return nil, fmt.Errorf("service/content: recent posts: %w", err)
	}
	return &Home{Products: products, Posts: posts}, nil
}

func (s *ContentService) Products(ctx context.Context) ([]model.Product, error) {
	products, err := s.products.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/content: listing products: %w", err)
	}
	return products, nil
}

// Product returns the product with slug; apperror.ErrNotFound when missing.
func (s *ContentService) Product(ctx context.Context, slug string) (*model.Product, error) {
	p, err := s.products.FindBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("service/content: %w", err)
	}
	return p, nil
}

func (s *ContentService) Posts(ctx context.Context) ([]model.Post, error) {
	posts, err := s.posts.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/content: listing posts: %w", err)
	}
	return posts, nil
}

// Post returns the post with slug; apperror.ErrNotFound when missing.
func (s *ContentService) Post(ctx context.Context, slug string) (*model.Post, error) {
	p, err := s.posts.FindBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("service/content: %w", err)
	}
	return p, nil
}

// Stats are the admin dashboard counters.
type Stats struct {
	Products int
	Posts    int
	Users    int
}

// Dashboard is the admin overview.
type Dashboard struct {
	Stats    Stats
	Products []model.Product
	Posts    []model.Post
}

func (s *ContentService) Dashboard(ctx context.Context) (*Dashboard, error) {
	products, err := s.products.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/content: listing products: %w", err)
	}
	posts, err := s.posts.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/content: listing posts: %w", err)
	}
	users, err := s.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/content: counting users: %w", err)
	}

	return &Dashboard{
		Stats: Stats{
			Products: len(products),
			Posts:    len(posts),
			Users:    users,
		},
		Products: products,
		Posts:    posts,
	}, nil
}
