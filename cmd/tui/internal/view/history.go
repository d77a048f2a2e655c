package view

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/cierres/internal/closing"
	"github.com/MrJamesThe3rd/cierres/internal/history"
	"github.com/MrJamesThe3rd/cierres/internal/snapshot"
)

type historyState int

const (
	historyStateBrowse historyState = iota
	historyStateConfirm
)

type HistoryModel struct {
	CommonModel
	closing *closing.Service

	state   historyState
	table   table.Model
	items   []*snapshot.Snapshot
	form    *huh.Form
	confirm bool
	status  string
}

func NewHistoryModel(svc *closing.Service) HistoryModel {
	columns := []table.Column{
		{Title: "#", Width: 4},
		{Title: "Periodo", Width: 18},
		{Title: "Archivo", Width: 30},
		{Title: "Ingresos", Width: 18},
		{Title: "Margen", Width: 18},
		{Title: "Rend. %", Width: 9},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)
	t.SetStyles(tableStyles())

	m := HistoryModel{closing: svc, table: t}
	m.refreshTable()

	return m
}

func (m HistoryModel) Title() string { return "Histórico" }

func (m HistoryModel) ShortHelp() string {
	if m.state == historyStateConfirm {
		return "←/→: elegir | Enter: confirmar | Esc: cancelar"
	}

	return "Esc: volver | Enter: cargar | d: eliminar"
}

func (m HistoryModel) Init() tea.Cmd {
	return nil
}

func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case historyDeleteMsg:
		m.state = historyStateBrowse
		m.form = nil
		m.table.Focus()
		m.status = msg.status()
		m.refreshTable()

		return m, func() tea.Msg { return ClosingChangedMsg{} }

	case tea.WindowSizeMsg:
		m.table.SetHeight(max(msg.Height-10, 5))
		return m, nil
	}

	if m.state == historyStateConfirm {
		return m.updateConfirm(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "enter":
			return m.selectCurrent()
		case "d":
			return m.enterConfirm()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m HistoryModel) selectCurrent() (tea.Model, tea.Cmd) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.items) {
		return m, nil
	}

	s, _, err := m.closing.SelectIndex(idx)
	if err != nil {
		m.status = errorStyle.Render("Error: " + err.Error())
		return m, nil
	}

	m.status = successStyle.Render("Cargado " + s.Period)

	return m, func() tea.Msg { return ClosingChangedMsg{} }
}

func (m HistoryModel) enterConfirm() (tea.Model, tea.Cmd) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.items) {
		return m, nil
	}

	m.confirm = false
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Key("confirm").
				Title(fmt.Sprintf("¿Eliminar %s del histórico?", m.items[idx].Period)).
				Affirmative("Eliminar").
				Negative("Cancelar").
				Value(&m.confirm),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = historyStateConfirm
	m.table.Blur()

	return m, m.form.Init()
}

func (m HistoryModel) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = historyStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if !m.form.GetBool("confirm") {
		m.state = historyStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	return m, m.deleteCmd(m.table.Cursor())
}

func (m HistoryModel) View() string {
	content := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	if len(m.items) == 0 {
		content = "El histórico está vacío."
	}

	if m.state == historyStateConfirm && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("196")).
			Width(48).
			Render(m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = m.status + "\n\n" + content
	}

	return paddedStyle.Render(content)
}

func (m *HistoryModel) refreshTable() {
	m.items = m.closing.History()

	rows := make([]table.Row, 0, len(m.items))
	for i, s := range m.items {
		rows = append(rows, table.Row{
			fmt.Sprint(i + 1),
			s.Period,
			s.FileName,
			FormatMoney(s.Totals.Revenue),
			FormatMoney(s.Totals.Margin),
			FormatPct(s.MarginPct()),
		})
	}

	m.table.SetRows(rows)

	if c := m.table.Cursor(); c >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}
}

type historyDeleteMsg struct {
	period string
	err    error
}

func (msg historyDeleteMsg) status() string {
	switch {
	case msg.err == nil:
		return successStyle.Render("Eliminado " + msg.period)
	case errors.Is(msg.err, history.ErrPersist):
		return warnStyle.Render(fmt.Sprintf("Eliminado %s, pero no se pudo guardar: %v", msg.period, msg.err))
	default:
		return errorStyle.Render("Error: " + msg.err.Error())
	}
}

func (m HistoryModel) deleteCmd(index int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := OpCtx()
		defer cancel()

		removed, err := m.closing.DeleteHistory(ctx, index)
		if removed == nil {
			return historyDeleteMsg{err: err}
		}

		return historyDeleteMsg{period: removed.Period, err: err}
	}
}
