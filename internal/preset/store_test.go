package preset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opentunnel/opentunnel/internal/ingress"
)

func TestCreateGetDelete(t *testing.T) {
	t.Setenv("OPENTUNNEL_CONFIG_DIR", t.TempDir())

	err := Create("dev", []Entry{
		{Hostname: "app.example.com", Target: "3000"},
		{Hostname: "api.example.com", Target: "localhost:8080"},
	})
	require.NoError(t, err)

	got, err := Get("dev")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000", got.Entries[0].Target, "bare port should be normalized on save")
	assert.Equal(t, "http://localhost:8080", got.Entries[1].Target)

	all, err := LoadAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "dev", all[0].Name)

	require.NoError(t, Delete("dev"))
	_, err = Get("dev")
	assert.Error(t, err)
}

func TestCreateValidation(t *testing.T) {
	t.Setenv("OPENTUNNEL_CONFIG_DIR", t.TempDir())

	assert.Error(t, Create("", []Entry{{Hostname: "a", Target: "1"}}))
	assert.Error(t, Create("dev", nil))
	assert.Error(t, Create("dev", []Entry{{Hostname: "", Target: "3000"}}))
	assert.Error(t, Create("dev", []Entry{{Hostname: "a.example.com", Target: "  "}}))
}

func TestDeleteMissing(t *testing.T) {
	t.Setenv("OPENTUNNEL_CONFIG_DIR", t.TempDir())
	assert.Error(t, Delete("nope"))
}

func TestApply(t *testing.T) {
	rules := []ingress.Rule{
		{Hostname: "app.example.com", Service: "http://localhost:3000"},
		{Service: "http_status:404"},
	}
	def := Definition{Name: "dev", Entries: []Entry{
		{Hostname: "app.example.com", Target: "http://localhost:3000"},
		{Hostname: "api.example.com", Target: "http://localhost:8080"},
	}}

	out, added, skipped, err := Apply(rules, def)
	require.NoError(t, err)
	assert.Equal(t, []string{"api.example.com"}, added)
	assert.Equal(t, []string{"app.example.com"}, skipped)
	require.Len(t, out, 3)
	assert.True(t, out[len(out)-1].IsCatchAll(), "catch-all must stay last")

	assert.Len(t, rules, 2, "input list must not be modified")
}

func TestApplyTwiceIsIdempotent(t *testing.T) {
	def := Definition{Name: "dev", Entries: []Entry{
		{Hostname: "app.example.com", Target: "http://localhost:3000"},
	}}

	out, added, _, err := Apply([]ingress.Rule{{Service: "http_status:404"}}, def)
	require.NoError(t, err)
	require.Len(t, added, 1)

	again, added, skipped, err := Apply(out, def)
	require.NoError(t, err)
	assert.Empty(t, added)
	assert.Equal(t, []string{"app.example.com"}, skipped)
	assert.Equal(t, out, again)
}
