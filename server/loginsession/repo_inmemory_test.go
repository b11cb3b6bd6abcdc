package loginsession_test

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/go-chat-frontend/server/loginsession"
	"github.com/stretchr/testify/require"
)

func countingFactory(calls *atomic.Int32) loginsession.Factory {
	return func(profileID string) (*loginsession.Session, error) {
		calls.Add(1)
		if profileID == "broken" {
			return nil, fmt.Errorf("cannot open store")
		}
		return &loginsession.Session{ProfileID: profileID}, nil
	}
}

func TestInMemoryRepo_GetOrCreate(t *testing.T) {
	var calls atomic.Int32
	repo := loginsession.NewInMemoryRepo(countingFactory(&calls))

	first, err := repo.GetOrCreate("p-1")
	require.NoError(t, err)
	second, err := repo.GetOrCreate("p-1")
	require.NoError(t, err)
	require.Same(t, first, second)
	require.Equal(t, int32(1), calls.Load())
	require.Equal(t, 1, repo.Len())
}

func TestInMemoryRepo_ConcurrentCreateBuildsOnce(t *testing.T) {
	var calls atomic.Int32
	repo := loginsession.NewInMemoryRepo(countingFactory(&calls))

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.GetOrCreate("p-1")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, int32(1), calls.Load())
}

func TestInMemoryRepo_Errors(t *testing.T) {
	var calls atomic.Int32
	repo := loginsession.NewInMemoryRepo(countingFactory(&calls))

	_, err := repo.GetOrCreate("")
	require.Error(t, err)

	_, err = repo.GetOrCreate("broken")
	require.Error(t, err)
	require.Zero(t, repo.Len())
}

func TestInMemoryRepo_Delete(t *testing.T) {
	var calls atomic.Int32
	repo := loginsession.NewInMemoryRepo(countingFactory(&calls))

	_, err := repo.GetOrCreate("p-1")
	require.NoError(t, err)
	require.NoError(t, repo.Delete("p-1"))
	require.NoError(t, repo.Delete("p-1"))
	require.Zero(t, repo.Len())
	require.Error(t, repo.Delete(""))

	_, err = repo.GetOrCreate("p-1")
	require.NoError(t, err)
	require.Equal(t, int32(2), calls.Load())
}

func TestInMemoryRepo_EvictsIdleSessions(t *testing.T) {
	var calls atomic.Int32
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := loginsession.NewInMemoryRepo(countingFactory(&calls),
		loginsession.WithIdleTimeout(10*time.Minute),
		loginsession.WithNowTime(func() time.Time { return now }),
	)

	active, err := repo.GetOrCreate("active")
	require.NoError(t, err)
	_, err = repo.GetOrCreate("idle")
	require.NoError(t, err)

	now = now.Add(8 * time.Minute)
	again, err := repo.GetOrCreate("active")
	require.NoError(t, err)
	require.Same(t, active, again)

	// Creating a session sweeps those idle past the timeout
	now = now.Add(5 * time.Minute)
	_, err = repo.GetOrCreate("new")
	require.NoError(t, err)
	require.Equal(t, 2, repo.Len())

	again, err = repo.GetOrCreate("active")
	require.NoError(t, err)
	require.Same(t, active, again)

	// An evicted profile is rebuilt on its next request
	_, err = repo.GetOrCreate("idle")
	require.NoError(t, err)
	require.Equal(t, int32(4), calls.Load())
}

func TestInMemoryRepo_NoIdleTimeoutKeepsSessions(t *testing.T) {
	var calls atomic.Int32
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := loginsession.NewInMemoryRepo(countingFactory(&calls),
		loginsession.WithNowTime(func() time.Time { return now }),
	)

	for i := 0; i < 5; i++ {
		_, err := repo.GetOrCreate(fmt.Sprintf("p-%d", i))
		require.NoError(t, err)
		now = now.Add(24 * time.Hour)
	}
	require.Equal(t, 5, repo.Len())
}
