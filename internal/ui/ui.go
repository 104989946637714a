// Package ui is the interactive dashboard: the current hostname mappings,
// an add-mapping form, and a scan wizard that turns discovered local
// services into mappings.
package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/opentunnel/opentunnel/internal/config"
	"github.com/opentunnel/opentunnel/internal/i18n"
	"github.com/opentunnel/opentunnel/internal/ingress"
	"github.com/opentunnel/opentunnel/internal/model"
	"github.com/opentunnel/opentunnel/internal/scan"
	"github.com/opentunnel/opentunnel/internal/util"
)

type statusMsg string

type scanDoneMsg struct {
	services []model.DiscoveredService
	err      error
}

type modelUI struct {
	lang       i18n.Lang
	configPath string

	cfg      config.TunnelConfig
	loadErr  string
	filtered []ingress.Rule
	sel      int

	filter     string
	filterMode bool
	showHelp   bool
	scanning   bool
	status     string
	width      int
	height     int

	form   *mappingForm
	wizard *scanWizard
}

func initialModel(lang i18n.Lang, configPath string) modelUI {
	m := modelUI{lang: lang, configPath: configPath}
	m.reloadConfig()
	m.status = lang.T(
		"Ready. Press a to add a mapping, s to scan local services.",
		"就绪。按 a 添加映射，按 s 扫描本地服务。")
	return m
}

func (m *modelUI) reloadConfig() {
	cfg, err := config.LoadFrom(m.configPath)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			m.loadErr = m.lang.T("no tunnel config yet; run `opentunnel switch <tunnel>` first", "尚无隧道配置；请先运行 `opentunnel switch <tunnel>`")
		} else {
			m.loadErr = err.Error()
		}
		m.cfg = config.TunnelConfig{}
	} else {
		m.loadErr = ""
		m.cfg = cfg
	}
	m.applyFilter()
}

func (m *modelUI) applyFilter() {
	if strings.TrimSpace(m.filter) == "" {
		m.filtered = append([]ingress.Rule(nil), m.cfg.Ingress...)
	} else {
		f := strings.ToLower(strings.TrimSpace(m.filter))
		m.filtered = nil
		for _, r := range m.cfg.Ingress {
			if strings.Contains(strings.ToLower(r.Hostname), f) || strings.Contains(strings.ToLower(r.Service), f) {
				m.filtered = append(m.filtered, r)
			}
		}
	}
	if m.sel >= len(m.filtered) {
		m.sel = len(m.filtered) - 1
	}
	if m.sel < 0 {
		m.sel = 0
	}
}

// saveRules persists a new rule list and reloads the view.
func (m *modelUI) saveRules(rules []ingress.Rule) error {
	cfg := m.cfg
	cfg.Ingress = rules
	if err := config.SaveTo(m.configPath, cfg); err != nil {
		return err
	}
	m.cfg = cfg
	m.applyFilter()
	return nil
}

func (m modelUI) Init() tea.Cmd {
	return nil
}

func scanCmd() tea.Cmd {
	return func() tea.Msg {
		services, err := scan.Scan(context.Background(), nil, util.DefaultScanTimeout)
		return scanDoneMsg{services: services, err: err}
	}
}

func (m modelUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case statusMsg:
		m.status = string(msg)
		return m, nil

	case scanDoneMsg:
		m.scanning = false
		if msg.err != nil {
			m.status = m.lang.T("scan failed: ", "扫描失败：") + msg.err.Error()
			return m, nil
		}
		if len(msg.services) == 0 {
			m.status = m.lang.T("scan found no services", "扫描未发现服务")
			return m, nil
		}
		m.wizard = newScanWizard(m.lang, msg.services)
		return m, m.wizard.focusCmd()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.form != nil {
			return m.updateForm(msg)
		}
		if m.wizard != nil {
			return m.updateWizard(msg)
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m modelUI) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.form = nil
		m.status = m.lang.T("cancelled", "已取消")
		return m, nil
	}
	res, cmd := m.form.update(msg)
	if res == nil {
		return m, cmd
	}
	m.form = nil
	updated, err := ingress.Insert(m.cfg.Ingress, res.hostname, res.target)
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	if err := m.saveRules(updated); err != nil {
		m.status = err.Error()
		return m, nil
	}
	m.status = fmt.Sprintf("%s %s -> %s", m.lang.T("mapped", "已映射"), res.hostname, res.target)
	return m, nil
}

func (m modelUI) updateWizard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.wizard = nil
		m.status = m.lang.T("scan wizard cancelled", "扫描向导已取消")
		return m, nil
	}
	done, cmd := m.wizard.update(msg)
	if !done {
		return m, cmd
	}

	rules := m.cfg.Ingress
	var added, skipped int
	for _, pick := range m.wizard.picks() {
		next, outcome, err := ingress.MergeDiscovered(rules, pick.service, pick.hostname)
		if err != nil {
			m.wizard = nil
			m.status = err.Error()
			return m, nil
		}
		if outcome == ingress.AlreadyMapped {
			skipped++
			continue
		}
		rules = next
		added++
	}
	m.wizard = nil
	if added > 0 {
		if err := m.saveRules(rules); err != nil {
			m.status = err.Error()
			return m, nil
		}
	}
	m.status = fmt.Sprintf("%s: %d %s, %d %s",
		m.lang.T("scan wizard finished", "扫描向导完成"),
		added, m.lang.T("added", "新增"),
		skipped, m.lang.T("skipped", "跳过"))
	return m, nil
}

func (m modelUI) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.filterMode = false
		m.applyFilter()
	case "backspace":
		if len(m.filter) > 0 {
			m.filter = m.filter[:len(m.filter)-1]
		}
		m.applyFilter()
	default:
		if len(msg.String()) == 1 {
			m.filter += msg.String()
			m.applyFilter()
		}
	}
	return m, nil
}

func (m modelUI) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "j", "down":
		if m.sel < len(m.filtered)-1 {
			m.sel++
		}
	case "k", "up":
		if m.sel > 0 {
			m.sel--
		}
	case "/":
		m.filterMode = true
		m.status = m.lang.T("filter mode: type and press Enter", "过滤模式：输入后按回车")
	case "?":
		m.showHelp = !m.showHelp
	case "r":
		m.reloadConfig()
		m.status = m.lang.T("reloaded tunnel config", "已重新加载隧道配置")
	case "a":
		m.form = newMappingForm(m.lang)
		return m, m.form.focusCmd()
	case "s":
		if m.scanning {
			break
		}
		m.scanning = true
		m.status = m.lang.T("scanning local ports...", "正在扫描本地端口...")
		return m, scanCmd()
	case "d":
		if len(m.filtered) == 0 {
			break
		}
		r := m.filtered[m.sel]
		if r.IsCatchAll() {
			m.status = m.lang.T("the catch-all rule cannot be removed", "无法删除 catch-all 规则")
			break
		}
		updated, err := ingress.Remove(m.cfg.Ingress, r.Hostname)
		if err != nil {
			m.status = err.Error()
			break
		}
		if err := m.saveRules(updated); err != nil {
			m.status = err.Error()
			break
		}
		m.status = fmt.Sprintf("%s %s", m.lang.T("unmapped", "已取消映射"), r.Hostname)
	}
	return m, nil
}

func (m modelUI) View() string {
	head := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).Render(
		m.lang.T("OpenTunnel Dashboard", "OpenTunnel 控制台"))
	subhead := fmt.Sprintf("tunnel=%s mappings=%d shown=%d config=%s",
		util.EmptyDash(util.ShortID(m.cfg.Tunnel)), len(m.cfg.Ingress), len(m.filtered), m.configPath)

	list := strings.Builder{}
	for i, r := range m.filtered {
		cursor := " "
		if i == m.sel {
			cursor = ">"
		}
		name := r.Hostname
		if r.IsCatchAll() {
			name = "(catch-all)"
		}
		list.WriteString(fmt.Sprintf("%s %-40s %s\n", cursor, name, r.Service))
	}
	if len(m.filtered) == 0 {
		list.WriteString(m.lang.T("  (no mappings)\n", "  （无映射）\n"))
	}

	filterLine := fmt.Sprintf("%s %s", m.lang.T("Filter:", "过滤："), m.filter)
	if m.filterMode {
		filterLine += m.lang.T(" (typing...)", "（输入中...）")
	}
	quickHelp := m.lang.T(
		"Keys: a add | d delete | s scan | / filter | r reload | ? help | q quit",
		"按键：a 添加 | d 删除 | s 扫描 | / 过滤 | r 重载 | ? 帮助 | q 退出")

	width := m.effectiveWidth()
	sections := []string{
		head,
		subhead,
		filterLine,
		quickHelp,
		m.renderPanel(m.lang.T("Mappings", "映射"), list.String(), width, lipgloss.Color("39")),
	}
	if m.form != nil {
		sections = append(sections, m.form.view(m.renderPanel, width))
	}
	if m.wizard != nil {
		sections = append(sections, m.wizard.view(m.renderPanel, width))
	}
	if m.showHelp {
		sections = append(sections, m.renderPanel(m.lang.T("Help", "帮助"), m.helpBlock(), width, lipgloss.Color("244")))
	}
	if m.loadErr != "" {
		sections = append(sections, m.renderPanel(m.lang.T("Config", "配置"), m.loadErr, width, lipgloss.Color("196")))
	}
	sections = append(sections, m.renderPanel(m.lang.T("Status", "状态"), m.status, width, lipgloss.Color("205")))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// Run starts the dashboard against the given tunnel config file.
func Run(lang i18n.Lang, configPath string) error {
	p := tea.NewProgram(initialModel(lang, configPath), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m modelUI) helpBlock() string {
	return strings.Join([]string{
		m.lang.T("  Navigation: j/k or arrow keys move selection.", "  导航：j/k 或方向键移动。"),
		m.lang.T("  Add: press a, fill hostname and target, Enter to save.", "  添加：按 a，填写主机名和目标，回车保存。"),
		m.lang.T("  Scan: press s, assign hostnames per found service, empty skips.", "  扫描：按 s，为发现的服务分配主机名，留空跳过。"),
		m.lang.T("  Delete: press d on the selected mapping.", "  删除：在选中的映射上按 d。"),
		m.lang.T("  Filter: press /, type hostname/target text, then Enter.", "  过滤：按 /，输入文本后回车。"),
		m.lang.T("  Quit: press q or Ctrl+C.", "  退出：按 q 或 Ctrl+C。"),
	}, "\n")
}

func (m modelUI) effectiveWidth() int {
	if m.width <= 0 {
		return 100
	}
	return m.width
}

func (m modelUI) renderPanel(title, body string, width int, accent lipgloss.Color) string {
	if width < 24 {
		width = 24
	}
	header := lipgloss.NewStyle().Bold(true).Foreground(accent).Render(title)
	content := strings.TrimSuffix(body, "\n")
	panel := strings.TrimSpace(header + "\n" + content)
	return lipgloss.NewStyle().
		Width(width).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1).
		Render(panel)
}

