package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/cierres/internal/clients"
	"github.com/MrJamesThe3rd/cierres/internal/closing"
)

type clientsState int

const (
	clientsStateBrowse clientsState = iota
	clientsStateAdd
)

// ClientsModel lists the managed clients with their figures in the current
// closing.
type ClientsModel struct {
	CommonModel
	clients *clients.Service
	closing *closing.Service

	state  clientsState
	table  table.Model
	items  []clients.Client
	form   *huh.Form
	name   string
	color  string
	status string
}

func NewClientsModel(clientSvc *clients.Service, closingSvc *closing.Service) ClientsModel {
	columns := []table.Column{
		{Title: "Cliente", Width: 20},
		{Title: "Filas", Width: 7},
		{Title: "Ventas", Width: 18},
		{Title: "Margen", Width: 18},
		{Title: "%", Width: 8},
		{Title: "Centro principal", Width: 24},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	t.SetStyles(tableStyles())

	m := ClientsModel{clients: clientSvc, closing: closingSvc, table: t}
	m.refreshTable()

	return m
}

func (m ClientsModel) Title() string { return "Clientes" }

func (m ClientsModel) ShortHelp() string {
	if m.state == clientsStateAdd {
		return "Enter: guardar | Esc: cancelar"
	}

	return "Esc: volver | a: añadir | d: eliminar"
}

func (m ClientsModel) Init() tea.Cmd {
	return nil
}

func (m ClientsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(ClosingChangedMsg); ok {
		m.refreshTable()
		return m, nil
	}

	if m.state == clientsStateAdd {
		return m.updateAdd(msg)
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "a":
			m.name, m.color = "", clients.DefaultColor
			m.form = huh.NewForm(
				huh.NewGroup(
					huh.NewInput().
						Key("name").
						Title("Nombre").
						Validate(func(s string) error {
							if strings.TrimSpace(s) == "" {
								return fmt.Errorf("el nombre no puede estar vacío")
							}

							return nil
						}).
						Value(&m.name),
					huh.NewInput().
						Key("color").
						Title("Color").
						Placeholder(clients.DefaultColor).
						Value(&m.color),
				),
			).WithWidth(40).WithShowHelp(false)
			m.state = clientsStateAdd
			m.table.Blur()

			return m, m.form.Init()
		case "d":
			idx := m.table.Cursor()
			if idx < 0 || idx >= len(m.items) {
				return m, nil
			}

			if err := m.clients.Remove(m.items[idx].ID); err != nil {
				m.status = errorStyle.Render("Error: " + err.Error())
			} else {
				m.status = successStyle.Render("Eliminado " + m.items[idx].Name)
			}

			m.refreshTable()

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ClientsModel) updateAdd(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = clientsStateBrowse
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

	c, err := m.clients.Add(m.form.GetString("name"), m.form.GetString("color"))
	if err != nil {
		m.status = errorStyle.Render("Error: " + err.Error())
	} else {
		m.status = successStyle.Render("Añadido " + c.Name)
	}

	m.state = clientsStateBrowse
	m.form = nil
	m.table.Focus()
	m.refreshTable()

	return m, nil
}

func (m *ClientsModel) refreshTable() {
	m.items = m.clients.List()
	snap, _, ok := m.closing.Current()

	rows := make([]table.Row, 0, len(m.items))
	for _, c := range m.items {
		row := table.Row{c.Name, "-", "-", "-", "-", "-"}

		if ok {
			d := clients.BuildDashboard(snap, c)
			row[1] = fmt.Sprint(len(d.Rows))
			row[2] = FormatMoney(d.Totals.Revenue)
			row[3] = FormatMoney(d.Totals.Margin)
			row[4] = FormatPct(d.MarginPct)

			if len(d.Centers) > 0 {
				row[5] = d.Centers[0].Center
			}
		}

		rows = append(rows, row)
	}

	m.table.SetRows(rows)
}

func (m ClientsModel) View() string {
	content := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	if _, _, ok := m.closing.Current(); !ok {
		content = faintStyle.Render("Sin cierre cargado: solo se muestra la lista.") + "\n" + content
	}

	if m.state == clientsStateAdd && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(44).
			Render("Nuevo cliente\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = m.status + "\n\n" + content
	}

	return paddedStyle.Render(content)
}
