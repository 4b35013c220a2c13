package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func setupReaper(t *testing.T) (*Reaper, *MockRevokedTokenRepository) {
	logger, _ := zap.NewDevelopment()
	zap.ReplaceGlobals(logger)

	mockRepo := new(MockRevokedTokenRepository)
	reaper := NewReaper(mockRepo, time.Hour)

	return reaper, mockRepo
}

func TestRunOnce_PurgesAtCurrentClock(t *testing.T) {
	reaper, mockRepo := setupReaper(t)
	ctx := context.Background()

	frozen := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	reaper.now = func() time.Time { return frozen }

	mockRepo.On("PurgeExpiredBefore", ctx, frozen).Return(int64(3), nil).Once()

	reaper.RunOnce(ctx)

	mockRepo.AssertExpectations(t)
}

func TestRunOnce_CutoffFollowsClock(t *testing.T) {
	reaper, mockRepo := setupReaper(t)
	ctx := context.Background()

	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	reaper.now = func() time.Time { return clock }

	// An entry expiring at clock+10s must survive this run and fall to
	// the next one after the clock advances past it.
	mockRepo.On("PurgeExpiredBefore", ctx, clock).Return(int64(0), nil).Once()
	reaper.RunOnce(ctx)

	clock = clock.Add(time.Hour)
	mockRepo.On("PurgeExpiredBefore", ctx, clock).Return(int64(1), nil).Once()
	reaper.RunOnce(ctx)

	mockRepo.AssertExpectations(t)
}

func TestRunOnce_SurvivesStoreError(t *testing.T) {
	reaper, mockRepo := setupReaper(t)
	ctx := context.Background()

	mockRepo.On("PurgeExpiredBefore", ctx, mock.AnythingOfType("time.Time")).
		Return(int64(0), errors.New("connection refused")).Once()

	reaper.RunOnce(ctx)

	// The next run proceeds normally.
	mockRepo.On("PurgeExpiredBefore", ctx, mock.AnythingOfType("time.Time")).
		Return(int64(2), nil).Once()
	reaper.RunOnce(ctx)

	mockRepo.AssertExpectations(t)
}

func TestStart_StopsOnContextCancel(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	zap.ReplaceGlobals(logger)

	mockRepo := new(MockRevokedTokenRepository)
	reaper := NewReaper(mockRepo, 10*time.Millisecond)

	mockRepo.On("PurgeExpiredBefore", mock.Anything, mock.AnythingOfType("time.Time")).
		Return(int64(0), nil)

	ctx, cancel := context.WithCancel(context.Background())
	reaper.Start(ctx)

	time.Sleep(50 * time.Millisecond)
	cancel()
	time.Sleep(20 * time.Millisecond)

	callsAfterCancel := len(mockRepo.Calls)
	time.Sleep(30 * time.Millisecond)

	if len(mockRepo.Calls) != callsAfterCancel {
		t.Fatalf("reaper kept running after cancel: %d calls before, %d after",
			callsAfterCancel, len(mockRepo.Calls))
	}
}
