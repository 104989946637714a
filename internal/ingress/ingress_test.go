package ingress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opentunnel/opentunnel/internal/model"
)

func baseRules() []Rule {
	return []Rule{
		{Hostname: "a.com", Service: "s1"},
		{Service: "http_status:404"},
	}
}

func TestInsertBeforeCatchAll(t *testing.T) {
	rules := baseRules()
	out, err := Insert(rules, "b.com", "s2")
	require.NoError(t, err)

	require.Len(t, out, 3)
	assert.Equal(t, "a.com", out[0].Hostname)
	assert.Equal(t, "b.com", out[1].Hostname)
	assert.Equal(t, "s2", out[1].Service)
	assert.True(t, out[2].IsCatchAll(), "catch-all must remain last")
	assert.Equal(t, "http_status:404", out[2].Service)
}

func TestInsertEmptyList(t *testing.T) {
	out, err := Insert(nil, "a.com", "s1")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "a.com", out[0].Hostname)
}

func TestInsertDuplicateHostname(t *testing.T) {
	rules := baseRules()
	out, err := Insert(rules, "a.com", "s2")
	require.ErrorIs(t, err, ErrDuplicateHostname)
	assert.Nil(t, out)
	// Input is untouched on failure.
	assert.Equal(t, baseRules(), rules)
}

func TestRemove(t *testing.T) {
	rules := baseRules()
	out, err := Remove(rules, "a.com")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.True(t, out[0].IsCatchAll())
}

func TestRemoveNotFound(t *testing.T) {
	rules := baseRules()
	_, err := Remove(rules, "missing.com")
	require.ErrorIs(t, err, ErrMappingNotFound)
	assert.Equal(t, baseRules(), rules)
}

func TestRemoveNeverMatchesCatchAll(t *testing.T) {
	rules := []Rule{{Service: "http_status:404"}}
	_, err := Remove(rules, "")
	require.ErrorIs(t, err, ErrMappingNotFound)
}

func TestInsertRemoveRoundTrip(t *testing.T) {
	rules := baseRules()
	inserted, err := Insert(rules, "b.com", "s2")
	require.NoError(t, err)
	out, err := Remove(inserted, "b.com")
	require.NoError(t, err)
	assert.Equal(t, rules, out)
}

func TestCatchAllStaysLastAcrossOperations(t *testing.T) {
	rules := []Rule{{Service: "http_status:404"}}
	var err error
	for _, h := range []string{"one.com", "two.com", "three.com"} {
		rules, err = Insert(rules, h, "http://localhost:3000")
		require.NoError(t, err)
		assert.True(t, rules[len(rules)-1].IsCatchAll())
	}
	rules, err = Remove(rules, "two.com")
	require.NoError(t, err)
	assert.True(t, rules[len(rules)-1].IsCatchAll())
	assert.Equal(t, []string{"one.com", "three.com"}, Hostnames(rules))
}

func TestNoDuplicateHostnamesEver(t *testing.T) {
	rules := baseRules()
	rules, err := Insert(rules, "b.com", "s2")
	require.NoError(t, err)
	_, err = Insert(rules, "b.com", "s3")
	require.ErrorIs(t, err, ErrDuplicateHostname)

	seen := map[string]bool{}
	for _, h := range Hostnames(rules) {
		assert.False(t, seen[h], "duplicate hostname %s", h)
		seen[h] = true
	}
}

func TestMergeDiscoveredAdds(t *testing.T) {
	rules := baseRules()
	svc := model.DiscoveredService{Port: 5173, Description: "Vite"}
	out, outcome, err := MergeDiscovered(rules, svc, "vite.a.com")
	require.NoError(t, err)
	assert.Equal(t, Added, outcome)
	require.Len(t, out, 3)
	assert.Equal(t, "http://localhost:5173", out[1].Service)
	assert.True(t, out[2].IsCatchAll())
}

func TestMergeDiscoveredSkipsMapped(t *testing.T) {
	rules := baseRules()
	svc := model.DiscoveredService{Port: 3000, Description: "React / Node.js"}
	out, outcome, err := MergeDiscovered(rules, svc, "a.com")
	require.NoError(t, err)
	assert.Equal(t, AlreadyMapped, outcome)
	assert.Equal(t, baseRules(), out, "list unchanged when hostname already mapped")
}

func TestHostnamesSkipsCatchAll(t *testing.T) {
	assert.Equal(t, []string{"a.com"}, Hostnames(baseRules()))
	assert.Empty(t, Hostnames([]Rule{{Service: "http_status:404"}}))
}
