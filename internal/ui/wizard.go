package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/opentunnel/opentunnel/internal/i18n"
	"github.com/opentunnel/opentunnel/internal/model"
)

// wizardPick pairs a discovered service with the hostname the user chose.
type wizardPick struct {
	service  model.DiscoveredService
	hostname string
}

// scanWizard walks the scan results one service at a time, asking for a
// hostname per service. An empty hostname skips the service.
type scanWizard struct {
	lang     i18n.Lang
	services []model.DiscoveredService
	idx      int
	input    textinput.Model
	chosen   []wizardPick
	skipped  int
}

func newScanWizard(lang i18n.Lang, services []model.DiscoveredService) *scanWizard {
	ti := textinput.New()
	ti.Placeholder = lang.T("hostname, empty to skip", "主机名，留空跳过")
	ti.CharLimit = 256
	ti.Width = 50
	ti.Focus()
	return &scanWizard{lang: lang, services: services, input: ti}
}

func (w *scanWizard) focusCmd() tea.Cmd {
	return w.input.Cursor.BlinkCmd()
}

func (w *scanWizard) picks() []wizardPick {
	return w.chosen
}

// update advances the wizard; done reports that every service was handled.
func (w *scanWizard) update(msg tea.KeyMsg) (bool, tea.Cmd) {
	if msg.String() != "enter" {
		var cmd tea.Cmd
		w.input, cmd = w.input.Update(msg)
		return false, cmd
	}

	hostname := strings.TrimSpace(w.input.Value())
	if hostname == "" {
		w.skipped++
	} else {
		w.chosen = append(w.chosen, wizardPick{service: w.services[w.idx], hostname: hostname})
	}
	w.idx++
	w.input.SetValue("")
	return w.idx >= len(w.services), nil
}

func (w *scanWizard) view(renderPanel func(string, string, int, lipgloss.Color) string, width int) string {
	var b strings.Builder
	svc := w.services[w.idx]
	b.WriteString(fmt.Sprintf("%s %d/%d\n\n", w.lang.T("Service", "服务"), w.idx+1, len(w.services)))
	b.WriteString(fmt.Sprintf("  %-8d %s\n\n", svc.Port, svc.Description))
	b.WriteString(fmt.Sprintf("  %s %s\n", w.lang.T("Hostname:", "主机名："), w.input.View()))
	b.WriteString("\n" + w.lang.T("Enter to confirm (empty skips) | Esc cancel", "回车确认（留空跳过）| Esc 取消"))

	title := fmt.Sprintf("%s (%d %s)", w.lang.T("Scan Wizard", "扫描向导"), len(w.services), w.lang.T("found", "发现"))
	return renderPanel(title, b.String(), width, lipgloss.Color("214"))
}
