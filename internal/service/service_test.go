package service

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/sakif/altarie/internal/apperror"
	"github.com/sakif/altarie/internal/model"
)

// =========================================================================
// FAKES
// =========================================================================

// fakeUsers is an in-memory repository.UserRepository.
type fakeUsers struct {
	byID     map[int64]*model.User
	nextID   int64
	findErr  error
	countErr error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[int64]*model.User{}, nextID: 1}
}

func (f *fakeUsers) All(ctx context.Context) ([]model.User, error) {
	out := []model.User{}
	for _, u := range f.byID {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeUsers) Find(ctx context.Context, id int64) (*model.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, apperror.NotFound("user", strconv.FormatInt(id, 10))
	}
	c := *u
	c.PasswordHash = ""
	return &c, nil
}

func (f *fakeUsers) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, u := range f.byID {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (f *fakeUsers) Create(ctx context.Context, name, email string) (*model.User, error) {
	return f.CreateWithPassword(ctx, name, email, "")
}

func (f *fakeUsers) CreateWithPassword(ctx context.Context, name, email, hash string) (*model.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return nil, apperror.Conflict("user", email)
		}
	}
	u := &model.User{ID: f.nextID, Name: name, Email: email, PasswordHash: hash, CreatedAt: time.Now()}
	f.byID[u.ID] = u
	f.nextID++
	return f.Find(ctx, u.ID)
}

func (f *fakeUsers) Count(ctx context.Context) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return len(f.byID), nil
}

// fakeSessions is an in-memory repository.SessionRepository.
type fakeSessions struct {
	byToken   map[string]*model.Session
	nextID    int64
	lastTTL   time.Duration
	createErr error
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{byToken: map[string]*model.Session{}, nextID: 1}
}

func (f *fakeSessions) Create(ctx context.Context, userID int64, ttl time.Duration) (*model.Session, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.lastTTL = ttl
	s := &model.Session{
		ID:        f.nextID,
		UserID:    userID,
		Token:     "token-" + strconv.FormatInt(f.nextID, 10),
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	f.nextID++
	f.byToken[s.Token] = s
	return s, nil
}

func (f *fakeSessions) FindByToken(ctx context.Context, token string) (*model.Session, error) {
	s, ok := f.byToken[token]
	if !ok {
		return nil, apperror.NotFound("session", "token")
	}
	return s, nil
}

func (f *fakeSessions) DeleteByToken(ctx context.Context, token string) error {
	delete(f.byToken, token)
	return nil
}

func (f *fakeSessions) Delete(ctx context.Context, id int64) error {
	for token, s := range f.byToken {
		if s.ID == id {
			delete(f.byToken, token)
		}
	}
	return nil
}

// fakeProducts and fakePosts serve fixed slices, newest first.
type fakeProducts struct {
	items []model.Product
	err   error
}

func (f *fakeProducts) All(ctx context.Context) ([]model.Product, error) { return f.items, f.err }

func (f *fakeProducts) Recent(ctx context.Context, limit int) ([]model.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.items) {
		return f.items[:limit], nil
	}
	return f.items, nil
}

func (f *fakeProducts) FindBySlug(ctx context.Context, slug string) (*model.Product, error) {
	for i := range f.items {
		if f.items[i].Slug == slug {
			return &f.items[i], nil
		}
	}
	return nil, apperror.NotFound("product", slug)
}

func (f *fakeProducts) Count(ctx context.Context) (int, error) { return len(f.items), f.err }

type fakePosts struct {
	items []model.Post
}

func (f *fakePosts) All(ctx context.Context) ([]model.Post, error) { return f.items, nil }

func (f *fakePosts) Recent(ctx context.Context, limit int) ([]model.Post, error) {
	if limit < len(f.items) {
		return f.items[:limit], nil
	}
	return f.items, nil
}

func (f *fakePosts) FindBySlug(ctx context.Context, slug string) (*model.Post, error) {
	for i := range f.items {
		if f.items[i].Slug == slug {
			return &f.items[i], nil
		}
	}
	return nil, apperror.NotFound("post", slug)
}

func (f *fakePosts) Count(ctx context.Context) (int, error) { return len(f.items), nil }

var errDatabase = errors.New("database is locked")
