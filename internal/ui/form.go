package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/opentunnel/opentunnel/internal/i18n"
	"github.com/opentunnel/opentunnel/internal/ingress"
)

// Field indices for the add-mapping form.
const (
	fieldHostname = iota
	fieldTarget
	fieldCount
)

// formResult is returned when the user completes the form.
type formResult struct {
	hostname string
	target   string
}

// mappingForm holds all state for the add-mapping dialog.
type mappingForm struct {
	lang     i18n.Lang
	fields   []textinput.Model
	focusIdx int
	errMsg   string
}

func newMappingForm(lang i18n.Lang) *mappingForm {
	f := &mappingForm{lang: lang}

	placeholders := []string{
		"app.example.com (required)",
		lang.T("3000, localhost:8080 or http://... (required)", "3000、localhost:8080 或 http://...（必填）"),
	}
	limits := []int{256, 256}

	f.fields = make([]textinput.Model, fieldCount)
	for i := range f.fields {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.CharLimit = limits[i]
		ti.Width = 50
		f.fields[i] = ti
	}
	f.fields[0].Focus()
	return f
}

func (f *mappingForm) focusCmd() tea.Cmd {
	return f.fields[f.focusIdx].Cursor.BlinkCmd()
}

// update processes a key message and returns a formResult when complete.
func (f *mappingForm) update(msg tea.KeyMsg) (*formResult, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab", "enter":
		if msg.String() == "enter" && f.focusIdx == fieldCount-1 {
			return f.submit()
		}
		f.fields[f.focusIdx].Blur()
		if msg.String() == "shift+tab" {
			f.focusIdx = (f.focusIdx - 1 + fieldCount) % fieldCount
		} else {
			f.focusIdx = (f.focusIdx + 1) % fieldCount
		}
		f.fields[f.focusIdx].Focus()
		return nil, f.focusCmd()
	default:
		var cmd tea.Cmd
		f.fields[f.focusIdx], cmd = f.fields[f.focusIdx].Update(msg)
		f.errMsg = ""
		return nil, cmd
	}
}

func (f *mappingForm) submit() (*formResult, tea.Cmd) {
	hostname := strings.TrimSpace(f.fields[fieldHostname].Value())
	target := strings.TrimSpace(f.fields[fieldTarget].Value())
	if hostname == "" {
		f.errMsg = f.lang.T("hostname is required", "主机名必填")
		return nil, nil
	}
	if target == "" {
		f.errMsg = f.lang.T("target is required", "目标必填")
		return nil, nil
	}
	return &formResult{hostname: hostname, target: ingress.NormalizeTarget(target)}, nil
}

// view renders the form panel.
func (f *mappingForm) view(renderPanel func(string, string, int, lipgloss.Color) string, width int) string {
	labels := []string{
		f.lang.T("Hostname:", "主机名："),
		f.lang.T("Target:", "目标："),
	}

	var b strings.Builder
	for i, label := range labels {
		cursor := "  "
		if i == f.focusIdx {
			cursor = "> "
		}
		b.WriteString(fmt.Sprintf("%s%-12s %s\n", cursor, label, f.fields[i].View()))
	}

	if f.errMsg != "" {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
		b.WriteString("\n" + errStyle.Render(f.lang.T("Error: ", "错误：")+f.errMsg) + "\n")
	}
	b.WriteString("\n" + f.lang.T("Tab next field | Enter on target submits | Esc cancel", "Tab 切换 | 在目标上回车提交 | Esc 取消"))

	return renderPanel(f.lang.T("Add Mapping", "添加映射"), b.String(), width, lipgloss.Color("214"))
}
