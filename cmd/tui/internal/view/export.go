package view

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/cierres/internal/export"
)

type exportState int

const (
	exportStateForm exportState = iota
	exportStateExporting
	exportStateResult
)

var kindLabels = map[export.Kind]string{
	export.KindSummary:  "Resumen del histórico (Excel)",
	export.KindSnapshot: "Cierre actual (Excel)",
	export.KindCSV:      "Cierre actual (CSV)",
	export.KindTemplate: "Plantilla vacía (Excel)",
	export.KindBackup:   "Copia de seguridad (JSON)",
}

type ExportModel struct {
	CommonModel
	exportService *export.Service

	state   exportState
	err     error
	form    *huh.Form
	kinds   []export.Kind
	path    string
	spinner spinner.Model
	paths   []string
}

func NewExportModel(svc *export.Service) ExportModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := ExportModel{
		exportService: svc,
		path:          "./exports",
		spinner:       s,
	}
	m.form = m.buildForm()

	return m
}

func (m ExportModel) Title() string { return "Exportar" }

func (m ExportModel) ShortHelp() string {
	switch m.state {
	case exportStateResult:
		return "Esc: volver al menú"
	case exportStateExporting:
		return "Exportando..."
	}

	return "Esc: volver | Espacio: marcar | Enter: confirmar"
}

func (m ExportModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m ExportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.state {
	case exportStateForm:
		return m.updateForm(msg)
	case exportStateExporting:
		return m.updateExporting(msg)
	case exportStateResult:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	return m, nil
}

func (m ExportModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m, Back
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	kinds, _ := m.form.Get("kinds").([]export.Kind)
	path := strings.TrimSpace(m.form.GetString("path"))

	if path == "" {
		path = "./exports"
	}

	m.state = exportStateExporting
	m.err = nil

	return m, tea.Batch(m.spinner.Tick, m.runExportCmd(kinds, path))
}

func (m ExportModel) updateExporting(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(exportResultMsg); ok {
		m.state = exportStateResult
		m.err = result.err
		m.paths = result.paths

		return m, nil
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)

	return m, cmd
}

func (m ExportModel) buildForm() *huh.Form {
	options := make([]huh.Option[export.Kind], 0, len(export.Kinds))
	for _, k := range export.Kinds {
		options = append(options, huh.NewOption(kindLabels[k], k))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[export.Kind]().
				Key("kinds").
				Title("¿Qué quieres exportar?").
				Options(options...).
				Value(&m.kinds).
				Validate(func(v []export.Kind) error {
					if len(v) == 0 {
						return errors.New("elige al menos un formato")
					}

					return nil
				}),
			huh.NewInput().
				Key("path").
				Title("Carpeta de destino").
				Description("Se crea si no existe").
				Placeholder("./exports").
				Value(&m.path),
		),
	).WithWidth(60).WithShowHelp(false)
}

func (m ExportModel) View() string {
	switch m.state {
	case exportStateForm:
		return paddedStyle.Render(m.form.View())
	case exportStateExporting:
		return paddedStyle.Render(fmt.Sprintf("%s Generando ficheros...", m.spinner.View()))
	case exportStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ExportModel) viewResult() string {
	lines := []string{}

	if len(m.paths) > 0 {
		lines = append(lines, successStyle.Render("Exportación completada"), "")
		for _, p := range m.paths {
			lines = append(lines, "  "+p)
		}
	}

	if m.err != nil {
		lines = append(lines, "", errorStyle.Render("Error: "+m.err.Error()))
	}

	return paddedStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

type exportResultMsg struct {
	paths []string
	err   error
}

const exportTimeout = 2 * time.Minute

func (m ExportModel) runExportCmd(kinds []export.Kind, path string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
		defer cancel()

		paths, err := m.exportService.Export(ctx, kinds, path)

		return exportResultMsg{paths: paths, err: err}
	}
}
