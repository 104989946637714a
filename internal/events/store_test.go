package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreAppendReadAndFilters(t *testing.T) {
	t.Setenv("OPENTUNNEL_CONFIG_DIR", t.TempDir())
	s := NewStore()

	base := time.Now().Add(-2 * time.Hour).UTC()
	seed := []Event{
		{Timestamp: base, TunnelID: "a", Hostname: "app.example.com", EventType: TypeMappingAdded},
		{Timestamp: base.Add(10 * time.Minute), TunnelID: "a", Hostname: "app.example.com", EventType: TypeDNSCreated},
		{Timestamp: base.Add(20 * time.Minute), TunnelID: "b", EventType: TypeTunnelDeleted},
	}
	for _, evt := range seed {
		require.NoError(t, s.Append(evt))
	}

	all, err := s.Read(Query{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byHost, err := s.Read(Query{Hostname: "app.example.com"})
	require.NoError(t, err)
	assert.Len(t, byHost, 2)

	byType, err := s.Read(Query{EventType: TypeTunnelDeleted})
	require.NoError(t, err)
	require.Len(t, byType, 1)
	assert.Equal(t, "b", byType[0].TunnelID)

	limited, err := s.Read(Query{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "b", limited[0].TunnelID, "limit should keep the most recent event")

	since, err := s.Read(Query{Since: base.Add(15 * time.Minute)})
	require.NoError(t, err)
	require.Len(t, since, 1)
	assert.Equal(t, "b", since[0].TunnelID)
}

func TestStoreReadMissingFile(t *testing.T) {
	t.Setenv("OPENTUNNEL_CONFIG_DIR", t.TempDir())

	got, err := NewStore().Read(Query{})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStoreAppendFillsTimestamp(t *testing.T) {
	t.Setenv("OPENTUNNEL_CONFIG_DIR", t.TempDir())
	s := NewStore()

	require.NoError(t, s.Append(Event{EventType: TypeTunnelCreated, TunnelID: "a"}))
	got, err := s.Read(Query{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.False(t, got[0].Timestamp.IsZero())
}
