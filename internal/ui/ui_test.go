package ui

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opentunnel/opentunnel/internal/config"
	"github.com/opentunnel/opentunnel/internal/i18n"
	"github.com/opentunnel/opentunnel/internal/ingress"
	"github.com/opentunnel/opentunnel/internal/model"
)

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func keyEnter() tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyEnter}
}

func typeInto(t *testing.T, f *mappingForm, text string) {
	t.Helper()
	for _, r := range text {
		res, _ := f.update(keyRunes(string(r)))
		require.Nil(t, res)
	}
}

func testConfigPath(t *testing.T, rules []ingress.Rule) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	cfg := config.TunnelConfig{Tunnel: "abc12345-0000-0000-0000-000000000000", Ingress: rules}
	require.NoError(t, config.SaveTo(path, cfg))
	return path
}

func TestApplyFilter(t *testing.T) {
	m := modelUI{lang: i18n.En}
	m.cfg.Ingress = []ingress.Rule{
		{Hostname: "app.example.com", Service: "http://localhost:3000"},
		{Hostname: "db.example.com", Service: "tcp://localhost:5432"},
		{Service: "http_status:404"},
	}

	m.applyFilter()
	assert.Len(t, m.filtered, 3)

	m.filter = "APP"
	m.applyFilter()
	require.Len(t, m.filtered, 1)
	assert.Equal(t, "app.example.com", m.filtered[0].Hostname)

	m.filter = "5432"
	m.applyFilter()
	require.Len(t, m.filtered, 1)
	assert.Equal(t, "db.example.com", m.filtered[0].Hostname)

	m.filter = "nomatch"
	m.sel = 2
	m.applyFilter()
	assert.Empty(t, m.filtered)
	assert.Equal(t, 0, m.sel)
}

func TestMappingFormSubmit(t *testing.T) {
	f := newMappingForm(i18n.En)

	// Enter on the hostname field moves focus instead of submitting.
	typeInto(t, f, "app.example.com")
	res, _ := f.update(keyEnter())
	require.Nil(t, res)
	assert.Equal(t, fieldTarget, f.focusIdx)

	typeInto(t, f, "3000")
	res, _ = f.update(keyEnter())
	require.NotNil(t, res)
	assert.Equal(t, "app.example.com", res.hostname)
	assert.Equal(t, "http://localhost:3000", res.target)
}

func TestMappingFormRequiresFields(t *testing.T) {
	f := newMappingForm(i18n.En)

	res, _ := f.update(keyEnter()) // focus target
	require.Nil(t, res)
	res, _ = f.update(keyEnter()) // submit with both empty
	require.Nil(t, res)
	assert.NotEmpty(t, f.errMsg)

	typeInto(t, f, "8080")
	res, _ = f.update(keyEnter())
	require.Nil(t, res)
	assert.Contains(t, f.errMsg, "hostname")
}

func TestScanWizardPicksAndSkips(t *testing.T) {
	services := []model.DiscoveredService{
		{Port: 3000, Description: "React / Node.js"},
		{Port: 5432, Description: "PostgreSQL"},
	}
	w := newScanWizard(i18n.En, services)

	for _, r := range "web.example.com" {
		done, _ := w.update(keyRunes(string(r)))
		require.False(t, done)
	}
	done, _ := w.update(keyEnter())
	require.False(t, done)

	// Empty hostname skips the second service and finishes the wizard.
	done, _ = w.update(keyEnter())
	require.True(t, done)

	picks := w.picks()
	require.Len(t, picks, 1)
	assert.Equal(t, 3000, picks[0].service.Port)
	assert.Equal(t, "web.example.com", picks[0].hostname)
	assert.Equal(t, 1, w.skipped)
}

func TestUpdateListDeleteRefusesCatchAll(t *testing.T) {
	path := testConfigPath(t, []ingress.Rule{
		{Hostname: "app.example.com", Service: "http://localhost:3000"},
		{Service: "http_status:404"},
	})
	m := initialModel(i18n.En, path)
	m.sel = 1

	next, _ := m.updateList(keyRunes("d"))
	got := next.(modelUI)
	assert.Len(t, got.cfg.Ingress, 2)
	assert.Contains(t, got.status, "catch-all")
}

func TestUpdateListDeleteRemovesMapping(t *testing.T) {
	path := testConfigPath(t, []ingress.Rule{
		{Hostname: "app.example.com", Service: "http://localhost:3000"},
		{Service: "http_status:404"},
	})
	m := initialModel(i18n.En, path)
	m.sel = 0

	next, _ := m.updateList(keyRunes("d"))
	got := next.(modelUI)
	require.Len(t, got.cfg.Ingress, 1)
	assert.True(t, got.cfg.Ingress[0].IsCatchAll())

	saved, err := config.LoadFrom(path)
	require.NoError(t, err)
	assert.Len(t, saved.Ingress, 1)
}

func TestReloadConfigMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yml")
	m := initialModel(i18n.En, path)
	assert.NotEmpty(t, m.loadErr)
	assert.Empty(t, m.cfg.Ingress)

	require.NoError(t, os.WriteFile(path, []byte("tunnel: t1\ningress:\n  - service: http_status:404\n"), 0o644))
	m.reloadConfig()
	assert.Empty(t, m.loadErr)
	assert.Len(t, m.cfg.Ingress, 1)
}
