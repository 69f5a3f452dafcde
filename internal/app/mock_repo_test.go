package app_test

import (
	"context"

	"bodylog/internal/domain"
)

type mockRepo struct {
	listProfilesFn  func(ctx context.Context) ([]domain.Profile, error)
	getProfileFn    func(ctx context.Context, id string) (*domain.Profile, error)
	saveProfileFn   func(ctx context.Context, p domain.Profile) (domain.Profile, error)
	deleteProfileFn func(ctx context.Context, id string) error
	listEntriesFn   func(ctx context.Context, profileID string) ([]domain.Entry, error)
	saveEntryFn     func(ctx context.Context, e domain.Entry) error
	deleteEntryFn   func(ctx context.Context, key string) error
	clearAllFn      func(ctx context.Context) error
}

var _ domain.Repository = (*mockRepo)(nil)

func (m *mockRepo) ListProfiles(ctx context.Context) ([]domain.Profile, error) {
	if m.listProfilesFn != nil {
		return m.listProfilesFn(ctx)
	}
	return nil, nil
}

func (m *mockRepo) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	if m.getProfileFn != nil {
		return m.getProfileFn(ctx, id)
	}
	return &domain.Profile{ID: id, Name: "Test", Activity: domain.DefaultActivity}, nil
}

func (m *mockRepo) SaveProfile(ctx context.Context, p domain.Profile) (domain.Profile, error) {
	if m.saveProfileFn != nil {
		return m.saveProfileFn(ctx, p)
	}
	return p, nil
}

func (m *mockRepo) DeleteProfile(ctx context.Context, id string) error {
	if m.deleteProfileFn != nil {
		return m.deleteProfileFn(ctx, id)
	}
	return nil
}

func (m *mockRepo) ListEntries(ctx context.Context, profileID string) ([]domain.Entry, error) {
	if m.listEntriesFn != nil {
		return m.listEntriesFn(ctx, profileID)
	}
	return nil, nil
}

func (m *mockRepo) SaveEntry(ctx context.Context, e domain.Entry) error {
	if m.saveEntryFn != nil {
		return m.saveEntryFn(ctx, e)
	}
	return nil
}

func (m *mockRepo) DeleteEntry(ctx context.Context, key string) error {
	if m.deleteEntryFn != nil {
		return m.deleteEntryFn(ctx, key)
	}
	return nil
}

func (m *mockRepo) ClearAll(ctx context.Context) error {
	if m.clearAllFn != nil {
		return m.clearAllFn(ctx)
	}
	return nil
}

func ptr[T any](v T) *T { return &v }
