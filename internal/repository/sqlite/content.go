package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sakif/altarie/internal/apperror"
	"github.com/sakif/altarie/internal/model"
	"github.com/sakif/altarie/internal/repository"
)

var (
	_ repository.ProductRepository = (*ProductStore)(nil)
	_ repository.PostRepository    = (*PostStore)(nil)
)

// =========================================================================
// PRODUCTS
// =========================================================================

// ProductStore is the products model. It is read-only: rows come from the
// seed migration.
type ProductStore struct {
	db *DB
}

const productColumns = `id, slug, name, summary, features, created_at, updated_at`

func scanProduct(s scanner) (*model.Product, error) {
	var (
		p                    model.Product
		summary, features    sql.NullString
		createdAt, updatedAt string
	)
	if err := s.Scan(&p.ID, &p.Slug, &p.Name, &summary, &features, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	p.Summary = summary.String
	p.Features = []string{}
	if features.String != "" {
		if err := json.Unmarshal([]byte(features.String), &p.Features); err != nil {
			return nil, fmt.Errorf("decoding features of %s: %w", p.Slug, err)
		}
	}
	p.CreatedAt = ParseTime(createdAt)
	p.UpdatedAt = ParseTime(updatedAt)
	return &p, nil
}

func (s *ProductStore) list(ctx context.Context, query string, args ...any) ([]model.Product, error) {
	conn, err := s.db.conn()
	if err != nil {
		return nil, err
	}
	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing products: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating products: %w", err)
	}
	return products, nil
}

// All returns every product, newest first.
func (s *ProductStore) All(ctx context.Context) ([]model.Product, error) {
	return s.list(ctx, `SELECT `+productColumns+` FROM products ORDER BY id DESC`)
}

// Recent returns the newest limit products.
func (s *ProductStore) Recent(ctx context.Context, limit int) ([]model.Product, error) {
	return s.list(ctx, `SELECT `+productColumns+` FROM products ORDER BY id DESC LIMIT ?`, limit)
}

func (s *ProductStore) FindBySlug(ctx context.Context, slug string) (*model.Product, error) {
	conn, err := s.db.conn()
	if err != nil {
		return nil, err
	}
	p, err := scanProduct(conn.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE slug = ?`, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("product", slug)
		}
		return nil, fmt.Errorf("sqlite: finding product %s: %w", slug, err)
	}
	return p, nil
}

func (s *ProductStore) Count(ctx context.Context) (int, error) {
	return s.db.count(ctx, "products")
}

// =========================================================================
// POSTS
// =========================================================================

// PostStore is the posts model.
type PostStore struct {
	db *DB
}

const postColumns = `id, slug, title, excerpt, body, created_at, updated_at`

func scanPost(s scanner) (*model.Post, error) {
	var (
		p                    model.Post
		excerpt, body        sql.NullString
		createdAt, updatedAt string
	)
	if err := s.Scan(&p.ID, &p.Slug, &p.Title, &excerpt, &body, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	p.Excerpt = excerpt.String
	p.Body = body.String
	p.CreatedAt = ParseTime(createdAt)
	p.UpdatedAt = ParseTime(updatedAt)
	return &p, nil
}

func (s *PostStore) list(ctx context.Context, query string, args ...any) ([]model.Post, error) {
	conn, err := s.db.conn()
	if err != nil {
		return nil, err
	}
	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing posts: %w", err)
	}
	defer rows.Close()

	posts := []model.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning post: %w", err)
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating posts: %w", err)
	}
	return posts, nil
}

func (s *PostStore) All(ctx context.Context) ([]model.Post, error) {
	return s.list(ctx, `SELECT `+postColumns+` FROM posts ORDER BY id DESC`)
}

func (s *PostStore) Recent(ctx context.Context, limit int) ([]model.Post, error) {
	return s.list(ctx, `SELECT `+postColumns+` FROM posts ORDER BY id DESC LIMIT ?`, limit)
}

func (s *PostStore) FindBySlug(ctx context.Context, slug string) (*model.Post, error) {
	conn, err := s.db.conn()
	if err != nil {
		return nil, err
	}
	p, err := scanPost(conn.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE slug = ?`, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("post", slug)
		}
		return nil, fmt.Errorf("sqlite: finding post %s: %w", slug, err)
	}
	return p, nil
}

func (s *PostStore) Count(ctx context.Context) (int, error) {
	return s.db.count(ctx, "posts")
}
