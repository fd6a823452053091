package membership

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakeResolverStore struct {
	levels       map[uuid.UUID][]Level
	defaultLevel *Level
}

func (f *fakeResolverStore) FindCoveringLevels(_ context.Context, userID uuid.UUID, _ time.Time) ([]Level, error) {
	return f.levels[userID], nil
}

func (f *fakeResolverStore) GetDefaultLevel(_ context.Context) (*Level, error) {
	if f.defaultLevel == nil {
		return nil, ErrNoDefaultLevel
	}
	copied := *f.defaultLevel
	return &copied, nil
}

func level(code string, rank int) Level {
	return Level{ID: uuid.New(), Code: code, Name: code, Rank: rank}
}

func TestCurrentPicksHighestRank(t *testing.T) {
	userID := uuid.New()
	basic := level("basic", 0)
	gold := level("gold", 10)
	silver := level("silver", 5)
	store := &fakeResolverStore{
		levels:       map[uuid.UUID][]Level{userID: {silver, gold, basic}},
		defaultLevel: &basic,
	}

	current, err := NewResolver(store).Current(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, gold.ID, current.ID)
}

func TestCurrentFallsBackToDefault(t *testing.T) {
	basic := level("basic", 0)
	store := &fakeResolverStore{
		levels:       map[uuid.UUID][]Level{},
		defaultLevel: &basic,
	}

	current, err := NewResolver(store).Current(context.Background(), uuid.New())
	require.NoError(t, err)
	require.Equal(t, basic.ID, current.ID)
}

func TestCurrentNoDefaultConfigured(t *testing.T) {
	store := &fakeResolverStore{levels: map[uuid.UUID][]Level{}}

	_, err := NewResolver(store).Current(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrNoDefaultLevel)
}
