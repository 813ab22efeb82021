package films

import (
	"context"

	"github.com/stretchr/testify/mock"

	"filmorate/internal/models"
)

type mockStore struct {
	mock.Mock
}

func newMockStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *mockStore {
	m := &mockStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *mockStore) CreateFilm(ctx context.Context, film models.Film) (models.Film, error) {
	args := m.Called(ctx, film)
	return args.Get(0).(models.Film), args.Error(1)
}

func (m *mockStore) UpdateFilm(ctx context.Context, film models.Film) (models.Film, error) {
	args := m.Called(ctx, film)
	return args.Get(0).(models.Film), args.Error(1)
}

func (m *mockStore) DeleteFilm(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockStore) FilmByID(ctx context.Context, id int64) (models.Film, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Film), args.Error(1)
}

func (m *mockStore) AllFilms(ctx context.Context) ([]models.Film, error) {
	args := m.Called(ctx)
	films, _ := args.Get(0).([]models.Film)
	return films, args.Error(1)
}

func (m *mockStore) MostPopularFilms(ctx context.Context, count int) ([]models.Film, error) {
	args := m.Called(ctx, count)
	films, _ := args.Get(0).([]models.Film)
	return films, args.Error(1)
}

func (m *mockStore) AddLike(ctx context.Context, filmID, userID int64) error {
	return m.Called(ctx, filmID, userID).Error(0)
}

func (m *mockStore) DeleteLike(ctx context.Context, filmID, userID int64) error {
	return m.Called(ctx, filmID, userID).Error(0)
}

type mockValidator struct {
	mock.Mock
}

func (m *mockValidator) ValidateFilm(film models.Film) error {
	return m.Called(film).Error(0)
}

func (m *mockValidator) ValidFilmID(count int, id int64) bool {
	return m.Called(count, id).Bool(0)
}
