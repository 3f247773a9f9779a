// Package mocks provides testify mocks for the repository interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/PhucDaizz/parkledger/internal/domain/ledger"
	"github.com/PhucDaizz/parkledger/internal/repository"
	"github.com/stretchr/testify/mock"
)

// SessionRepository is a mock for repository.SessionRepository.
type SessionRepository struct {
	mock.Mock
}

func (m *SessionRepository) Insert(ctx context.Context, plateKey string, entryTime time.Time, imagePath *string) (int64, error) {
	args := m.Called(ctx, plateKey, entryTime, imagePath)
	return args.Get(0).(int64), args.Error(1)
}

func (m *SessionRepository) CloseLatestOpen(ctx context.Context, plateKey string, exitTime time.Time) (int64, error) {
	args := m.Called(ctx, plateKey, exitTime)
	return args.Get(0).(int64), args.Error(1)
}

func (m *SessionRepository) HasOpen(ctx context.Context, plateKey string) (bool, error) {
	args := m.Called(ctx, plateKey)
	return args.Bool(0), args.Error(1)
}

func (m *SessionRepository) AttachImage(ctx context.Context, id int64, imagePath string) error {
	args := m.Called(ctx, id, imagePath)
	return args.Error(0)
}

func (m *SessionRepository) Get(ctx context.Context, id int64) (*ledger.Session, error) {
	args := m.Called(ctx, id)
	if sess, ok := args.Get(0).(*ledger.Session); ok {
		return sess, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SessionRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *SessionRepository) ListOpen(ctx context.Context) ([]ledger.Session, error) {
	args := m.Called(ctx)
	if sessions, ok := args.Get(0).([]ledger.Session); ok {
		return sessions, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SessionRepository) List(ctx context.Context, opts repository.ListOptions) ([]ledger.Session, error) {
	args := m.Called(ctx, opts)
	if sessions, ok := args.Get(0).([]ledger.Session); ok {
		return sessions, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SessionRepository) CountOpen(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *SessionRepository) CountEnteredBetween(ctx context.Context, from, to time.Time) (int, error) {
	args := m.Called(ctx, from, to)
	return args.Int(0), args.Error(1)
}
