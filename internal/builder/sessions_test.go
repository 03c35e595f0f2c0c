package builder

import (
	"context"
	"testing"
	"time"

	"github.com/offgriddoc/cablebuilder/internal/pricing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionsReusePipelinePerSession(t *testing.T) {
	resolver := &stubResolver{prices: pricing.Prices{}}
	sessions, err := NewSessions(resolver, DefaultTaxRate, time.Minute)
	require.NoError(t, err)

	cfg := Configuration{Family: FamilyBatterySingle, Gauge: "4"}
	first, _, err := sessions.Quote(context.Background(), "abc", cfg)
	require.NoError(t, err)
	second, _, err := sessions.Quote(context.Background(), " abc ", cfg)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), first.Generation)
	assert.Equal(t, uint64(2), second.Generation)
	assert.Equal(t, 1, sessions.Len())
}

func TestSessionsAnonymousRunsAreIndependent(t *testing.T) {
	resolver := &stubResolver{prices: pricing.Prices{}}
	sessions, err := NewSessions(resolver, DefaultTaxRate, time.Minute)
	require.NoError(t, err)

	cfg := Configuration{Family: FamilyBatterySingle, Gauge: "4"}
	for i := 0; i < 3; i++ {
		result, inFlight, err := sessions.Quote(context.Background(), "", cfg)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), result.Generation)
		assert.False(t, inFlight)
		assert.Equal(t, []string{"CABLE-BatterySingle-4-CM"}, result.Quote.Missing)
	}
	assert.Zero(t, sessions.Len())
}

func TestSessionsEvictIdle(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	resolver := &stubResolver{prices: pricing.Prices{"CABLE-Welding-35mm2-CM": decimal.NewNullDecimal(decimal.NewFromInt(1))}}
	sessions, err := NewSessions(resolver, DefaultTaxRate, 10*time.Minute, WithSessionClock(clock))
	require.NoError(t, err)

	cfg := Configuration{Family: FamilyWelding, Gauge: "35mm2"}
	_, _, err = sessions.Quote(context.Background(), "old", cfg)
	require.NoError(t, err)

	now = now.Add(10 * time.Minute)
	result, _, err := sessions.Quote(context.Background(), "new", cfg)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), result.Generation)
	assert.Equal(t, 1, sessions.Len())

	now = now.Add(11 * time.Minute)
	result, _, err = sessions.Quote(context.Background(), "new", cfg)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), result.Generation)
}

func TestNewSessionsRequiresResolver(t *testing.T) {
	_, err := NewSessions(nil, DefaultTaxRate, time.Minute)
	require.Error(t, err)
}

func TestSessionsCapEvictsLeastRecentlySeen(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	resolver := &stubResolver{prices: pricing.Prices{}}
	sessions, err := NewSessions(resolver, DefaultTaxRate, time.Hour, WithSessionClock(clock), WithMaxSessions(2))
	require.NoError(t, err)

	cfg := Configuration{Family: FamilyBatterySingle, Gauge: "4"}
	for _, id := range []string{"a", "b", "a", "c"} {
		now = now.Add(time.Second)
		_, _, err := sessions.Quote(context.Background(), id, cfg)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, sessions.Len())

	// "b" was evicted, so it starts over; "a" survived and keeps counting.
	now = now.Add(time.Second)
	result, _, err := sessions.Quote(context.Background(), "a", cfg)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), result.Generation)

	now = now.Add(time.Second)
	result, _, err = sessions.Quote(context.Background(), "b", cfg)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), result.Generation)
	assert.Equal(t, 2, sessions.Len())
}
