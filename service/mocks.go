package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/oamaok/esportal-bets/events"
	"github.com/oamaok/esportal-bets/models"
)

// MockMatchProvider is a mock implementation of MatchProvider
type MockMatchProvider struct {
	mock.Mock
}

func (m *MockMatchProvider) WatchedStatuses(ctx context.Context) ([]models.FriendStatus, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.FriendStatus), args.Error(1)
}

func (m *MockMatchProvider) CurrentMatchID(ctx context.Context, playerID int64) (int64, error) {
	args := m.Called(ctx, playerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMatchProvider) Match(ctx context.Context, id int64) (*models.Match, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Match), args.Error(1)
}

// MockNotifier is a mock implementation of Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) AnnounceMatch(ctx context.Context, match *models.Match, window time.Duration) (string, error) {
	args := m.Called(ctx, match, window)
	return args.String(0), args.Error(1)
}

func (m *MockNotifier) NoticeOneMinuteLeft(ctx context.Context, threadID string) error {
	args := m.Called(ctx, threadID)
	return args.Error(0)
}

func (m *MockNotifier) NoticeLocked(ctx context.Context, threadID string) error {
	args := m.Called(ctx, threadID)
	return args.Error(0)
}

func (m *MockNotifier) NoticeVoided(ctx context.Context, threadID string) error {
	args := m.Called(ctx, threadID)
	return args.Error(0)
}

func (m *MockNotifier) PostSettlement(ctx context.Context, threadID string, winner models.Team, payouts []models.Payout) error {
	args := m.Called(ctx, threadID, winner, payouts)
	return args.Error(0)
}

func (m *MockNotifier) ArchiveThread(ctx context.Context, threadID string) error {
	args := m.Called(ctx, threadID)
	return args.Error(0)
}

// MockSnapshotStore is a mock implementation of SnapshotStore
type MockSnapshotStore struct {
	mock.Mock
}

func (m *MockSnapshotStore) Load(ctx context.Context) (map[string]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

func (m *MockSnapshotStore) Save(ctx context.Context, balances map[string]int64) error {
	args := m.Called(ctx, balances)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Emit(ctx context.Context, event events.Event) {
	m.Called(ctx, event)
}
