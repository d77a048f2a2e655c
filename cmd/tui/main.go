package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/cierres/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/cierres/internal/app"
	"github.com/MrJamesThe3rd/cierres/internal/config"
	"github.com/MrJamesThe3rd/cierres/internal/logging"
)

type model struct {
	app *app.App

	currentView View

	importView    view.ImportModel
	dashboardView view.DashboardModel
	historyView   view.HistoryModel
	clientsView   view.ClientsModel
	exportView    view.ExportModel
}

type View int

const (
	ViewMenu      View = 0
	ViewImport    View = 1
	ViewDashboard View = 2
	ViewHistory   View = 3
	ViewClients   View = 4
	ViewExport    View = 5
)

func initialModel(a *app.App) model {
	return model{
		app:           a,
		currentView:   ViewMenu,
		importView:    view.NewImportModel(a.Closing),
		dashboardView: view.NewDashboardModel(a.Closing),
		historyView:   view.NewHistoryModel(a.Closing),
		clientsView:   view.NewClientsModel(a.Clients, a.Closing),
		exportView:    view.NewExportModel(a.Export),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewImport
				m.importView = view.NewImportModel(m.app.Closing)

				return m, m.importView.Init()
			case "2":
				m.currentView = ViewDashboard
				m.dashboardView = view.NewDashboardModel(m.app.Closing)

				return m, m.dashboardView.Init()
			case "3":
				m.currentView = ViewHistory
				m.historyView = view.NewHistoryModel(m.app.Closing)

				return m, m.historyView.Init()
			case "4":
				m.currentView = ViewClients
				m.clientsView = view.NewClientsModel(m.app.Clients, m.app.Closing)

				return m, m.clientsView.Init()
			case "5":
				m.currentView = ViewExport
				m.exportView = view.NewExportModel(m.app.Export)

				return m, m.exportView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewDashboard:
		var newModel tea.Model
		newModel, cmd = m.dashboardView.Update(msg)
		m.dashboardView = newModel.(view.DashboardModel)
	case ViewHistory:
		var newModel tea.Model
		newModel, cmd = m.historyView.Update(msg)
		m.historyView = newModel.(view.HistoryModel)
	case ViewClients:
		var newModel tea.Model
		newModel, cmd = m.clientsView.Update(msg)
		m.clientsView = newModel.(view.ClientsModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		current := "ninguno"
		if s, _, ok := m.app.Closing.Current(); ok {
			current = s.Period
		}

		return lipgloss.NewStyle().Padding(2).Render(
			"Cierres\n\n" +
				"Cierre actual: " + current + "\n\n" +
				"1. Importar cierre\n" +
				"2. Cuadro de mando\n" +
				"3. Histórico\n" +
				"4. Clientes\n" +
				"5. Exportar\n\n" +
				"q. Salir",
		)
	case ViewImport:
		return m.importView.View()
	case ViewDashboard:
		return m.dashboardView.View()
	case ViewHistory:
		return m.historyView.View()
	case ViewClients:
		return m.clientsView.View()
	case ViewExport:
		return m.exportView.View()
	}

	return "Unknown View"
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// The terminal belongs to the UI; logs go to LOG_FILE or nowhere.
	logOut := io.Discard
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err == nil {
			defer f.Close()
			logOut = f
		}
	}

	slog.SetDefault(logging.New(logOut, cfg.Log.Level, cfg.Log.Format))

	a, err := app.New(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Stderr.WriteString("failed to start: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer a.Close()

	p := tea.NewProgram(initialModel(a))
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
