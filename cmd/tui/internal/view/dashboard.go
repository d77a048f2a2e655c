package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/cierres/internal/closing"
	"github.com/MrJamesThe3rd/cierres/internal/snapshot"
)

// DashboardModel shows the rows of the current closing with cycling filters.
type DashboardModel struct {
	CommonModel
	closing *closing.Service

	table   table.Model
	snap    *snapshot.Snapshot
	derived snapshot.Derived
	options snapshot.Options
	view    snapshot.View

	// Filter cycling; 0 means "all".
	centerIdx int
	lineIdx   int
	statusIdx int
	lowOnly   bool
}

func NewDashboardModel(svc *closing.Service) DashboardModel {
	columns := []table.Column{
		{Title: "Centro", Width: 22},
		{Title: "Cliente", Width: 24},
		{Title: "Línea", Width: 16},
		{Title: "Estado", Width: 12},
		{Title: "Venta", Width: 16},
		{Title: "Coste", Width: 16},
		{Title: "Margen", Width: 16},
		{Title: "%", Width: 8},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)
	t.SetStyles(tableStyles())

	m := DashboardModel{closing: svc, table: t}
	m.reload()

	return m
}

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)

	return s
}

func (m DashboardModel) Title() string { return "Cuadro de mando" }

func (m DashboardModel) ShortHelp() string {
	return "Esc: volver | c: centro | l: línea | s: estado | b: bajo rendimiento | x: limpiar"
}

func (m DashboardModel) Init() tea.Cmd {
	return nil
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ClosingChangedMsg:
		m.reload()
		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(max(msg.Height-16, 5))
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "c":
			m.centerIdx = (m.centerIdx + 1) % (len(m.options.Centers) + 1)
		case "l":
			m.lineIdx = (m.lineIdx + 1) % (len(m.options.BusinessLines) + 1)
		case "s":
			m.statusIdx = (m.statusIdx + 1) % (len(m.options.Statuses) + 1)
		case "b":
			m.lowOnly = !m.lowOnly
		case "x":
			m.centerIdx, m.lineIdx, m.statusIdx, m.lowOnly = 0, 0, 0, false
		default:
			var cmd tea.Cmd
			m.table, cmd = m.table.Update(msg)

			return m, cmd
		}

		m.applyFilter()

		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m *DashboardModel) reload() {
	snap, derived, ok := m.closing.Current()
	if !ok {
		m.snap = nil
		return
	}

	m.snap, m.derived = snap, derived
	m.options = snapshot.FilterOptions(snap.Rows)
	m.centerIdx, m.lineIdx, m.statusIdx, m.lowOnly = 0, 0, 0, false
	m.applyFilter()
}

func (m *DashboardModel) filter() snapshot.Filter {
	return snapshot.Filter{
		Center:         pick(m.options.Centers, m.centerIdx),
		BusinessLine:   pick(m.options.BusinessLines, m.lineIdx),
		Status:         pick(m.options.Statuses, m.statusIdx),
		LowPerformance: m.lowOnly,
	}
}

// pick returns values[idx-1], or "" for idx 0.
func pick(values []string, idx int) string {
	if idx <= 0 || idx > len(values) {
		return ""
	}

	return values[idx-1]
}

func (m *DashboardModel) applyFilter() {
	if m.snap == nil {
		return
	}

	m.view = m.snap.View(m.filter())

	rows := make([]table.Row, 0, len(m.view.Rows))
	for _, r := range m.view.Rows {
		rows = append(rows, table.Row{
			r.Center,
			r.DisplayName(),
			r.BusinessLine,
			r.Status,
			FormatMoney(r.Revenue),
			FormatMoney(r.Cost),
			FormatMoney(r.Margin),
			FormatPct(r.MarginPct),
		})
	}

	m.table.SetRows(rows)
	m.table.GotoTop()
}

func (m DashboardModel) View() string {
	if m.snap == nil {
		return paddedStyle.Render("No hay ningún cierre cargado. Importa una hoja o selecciona uno del histórico.\n\n(Esc para volver)")
	}

	f := m.filter()

	label := func(v string) string {
		if v == "" {
			return "Todos"
		}

		return v
	}

	low := "No"
	if f.LowPerformance {
		low = fmt.Sprintf("< %.0f%%", snapshot.LowPerformanceThreshold)
	}

	filters := fmt.Sprintf("Filtros: [c] Centro: %s | [l] Línea: %s | [s] Estado: %s | [b] Bajo rendimiento: %s",
		activeStyle(label(f.Center)),
		activeStyle(label(f.BusinessLine)),
		activeStyle(label(f.Status)),
		activeStyle(low),
	)

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).Render(m.snap.Period+"  "+faintStyle.Render(m.snap.FileName)),
		m.viewKPIs(),
		"",
		filters,
		lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Render(m.table.View()),
	)

	return paddedStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top, content, "  ", m.viewSummary()))
}

func (m DashboardModel) viewKPIs() string {
	t := m.view.Totals
	yoy, budget := m.derived.YoY, m.derived.Budget

	parts := []string{
		"Ventas " + FormatMoney(t.Revenue),
		"Costes " + FormatMoney(t.Cost),
		"Margen " + FormatMoney(t.Margin) + " (" + FormatPct(t.MarginPct()) + ")",
		"Interanual " + FormatChange(yoy.RevenueChangePct, yoy.Available),
	}

	if budget.Available {
		parts = append(parts, "Presupuesto "+FormatPct(budget.RevenueAchievementPct))
	}

	return strings.Join(parts, " | ")
}

func (m DashboardModel) viewSummary() string {
	sum := snapshot.Summarize(m.snap)

	lines := []string{lipgloss.NewStyle().Bold(true).Render("Resumen")}

	if sum.TopCenter != nil {
		lines = append(lines, "Mejor centro: "+sum.TopCenter.Name, "  "+FormatMoney(sum.TopCenter.Margin))
	}

	if len(sum.LowCenters) > 0 {
		lines = append(lines, "", warnStyle.Render("Bajo rendimiento:"))
		for _, c := range sum.LowCenters {
			lines = append(lines, fmt.Sprintf("  %s %s", c.Name, FormatPct(c.MarginPct)))
		}
	}

	return lipgloss.NewStyle().
		Padding(0, 1).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Width(34).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
