// Package repository declares the model interfaces the services depend on.
// internal/repository/sqlite implements them.
package repository

import (
	"context"
	"time"

	"github.com/sakif/altarie/internal/model"
)

type UserRepository interface {
	All(ctx context.Context) ([]model.User, error)
	Find(ctx context.Context, id int64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, name, email string) (*model.User, error)
	CreateWithPassword(ctx context.Context, name, email, passwordHash string) (*model.User, error)
	Count(ctx context.Context) (int, error)
}

type SessionRepository interface {
	Create(ctx context.Context, userID int64, ttl time.Duration) (*model.Session, error)
	FindByToken(ctx context.Context, token string) (*model.Session, error)
	DeleteByToken(ctx context.Context, token string) error
	Delete(ctx context.Context, id int64) error
}

type ProductRepository interface {
	All(ctx context.Context) ([]model.Product, error)
	Recent(ctx context.Context, limit int) ([]model.Product, error)
	FindBySlug(ctx context.Context, slug string) (*model.Product, error)
	Count(ctx context.Context) (int, error)
}

type PostRepository interface {
	All(ctx context.Context) ([]model.Post, error)
	Recent(ctx context.Context, limit int) ([]model.Post, error)
	FindBySlug(ctx context.Context, slug string) (*model.Post, error)
	Count(ctx context.Context) (int, error)
}
