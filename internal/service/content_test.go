package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/altarie/internal/apperror"
	"github.com/sakif/altarie/internal/model"
)

func newTestContentService() (*ContentService, *fakeProducts, *fakeUsers) {
	products := &fakeProducts{items: []model.Product{
		{ID: 3, Slug: "altarie-blog-kit", Name: "Blog Kit"},
		{ID: 2, Slug: "altarie-admin-dash", Name: "Admin Dashboard"},
		{ID: 1, Slug: "altarie-site-starter", Name: "Altarie Site Starter"},
	}}
	posts := &fakePosts{items: []model.Post{
		{ID: 2, Slug: "why-choose-altarie", Title: "Why choose Altarie"},
		{ID: 1, Slug: "launching-altarie-studio", Title: "Launching Altarie Studio"},
	}}
	users := newFakeUsers()
	users.Create(context.Background(), "Admin", "admin@altarie.local")
	return NewContentService(products, posts, users), products, users
}

func TestHome_ReturnsRecentItems(t *testing.T) {
	svc, _, _ := newTestContentService()

	home, err := svc.Home(context.Background())
	require.NoError(t, err)
	require.Len(t, home.Products, RecentLimit)
	assert.Equal(t, "altarie-blog-kit", home.Products[0].Slug)
	assert.Len(t, home.Posts, 2)
}

func TestHome_PropagatesErrors(t *testing.T) {
	svc, products, _ := newTestContentService()
	products.err = errDatabase

	_, err := svc.Home(context.Background())
	assert.True(t, errors.Is(err, errDatabase))
}

func TestProductAndPostLookup(t *testing.T) {
	svc, _, _ := newTestContentService()
	ctx := context.Background()

	p, err := svc.Product(ctx, "altarie-admin-dash")
	require.NoError(t, err)
	assert.Equal(t, "Admin Dashboard", p.Name)

	_, err = svc.Product(ctx, "missing")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	post, err := svc.Post(ctx, "why-choose-altarie")
	require.NoError(t, err)
	assert.Equal(t, "Why choose Altarie", post.Title)

	_, err = svc.Post(ctx, "missing")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestDashboard_Stats(t *testing.T) {
	svc, _, users := newTestContentService()

	d, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stats{Products: 3, Posts: 2, Users: 1}, d.Stats)
	assert.Len(t, d.Products, 3)
	assert.Len(t, d.Posts, 2)

	users.countErr = errDatabase
	_, err = svc.Dashboard(context.Background())
	assert.True(t, errors.Is(err, errDatabase))
}

func TestListings(t *testing.T) {
	svc, _, _ := newTestContentService()

	products, err := svc.Products(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 3)

	posts, err := svc.Posts(context.Background())
	require.NoError(t, err)
	assert.Len(t, posts, 2)
}
