package view

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/cierres/internal/closing"
	"github.com/MrJamesThe3rd/cierres/internal/ingest"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateFilePick importState = iota
	importStateImporting
	importStateResult
)

type ImportModel struct {
	CommonModel
	closing *closing.Service

	state      importState
	filePicker filepicker.Model
	spinner    spinner.Model
	path       string

	result *closing.Result
	err    error
}

func NewImportModel(svc *closing.Service) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".xlsx", ".xls", ".csv"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return ImportModel{
		closing:    svc,
		filePicker: fp,
		spinner:    s,
	}
}

func (m ImportModel) Title() string { return "Importar cierre" }

func (m ImportModel) ShortHelp() string {
	if m.state == importStateResult {
		return "Esc: volver | Enter: importar otro"
	}

	return "Esc: volver | Enter: seleccionar"
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc && m.state != importStateImporting {
			return m, Back
		}

		if m.state == importStateResult && msg.Type == tea.KeyEnter {
			m.state = importStateFilePick
			m.result, m.err = nil, nil

			return m, m.filePicker.Init()
		}

	case importResultMsg:
		m.state = importStateResult
		m.result, m.err = msg.result, msg.err

		if msg.err != nil {
			return m, nil
		}

		return m, func() tea.Msg { return ClosingChangedMsg{} }
	}

	switch m.state {
	case importStateImporting:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	case importStateFilePick:
		var cmd tea.Cmd
		m.filePicker, cmd = m.filePicker.Update(msg)

		if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
			m.state = importStateImporting
			m.path = path

			return m, tea.Batch(m.spinner.Tick, m.importCmd(path))
		}

		return m, cmd
	}

	return m, nil
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateFilePick:
		return paddedStyle.Render("Selecciona la hoja de cierre (.xlsx, .xls, .csv):\n\n" + m.filePicker.View())
	case importStateImporting:
		return paddedStyle.Render(fmt.Sprintf("%s Procesando %s...", m.spinner.View(), filepath.Base(m.path)))
	case importStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ImportModel) viewResult() string {
	if m.err != nil {
		return paddedStyle.Render(errorStyle.Render("Error: "+m.err.Error()) + "\n\n(Esc para volver)")
	}

	r := m.result
	s := r.Snapshot

	lines := []string{
		successStyle.Render("Cierre importado: " + s.Period),
		"",
		fmt.Sprintf("Filas válidas:   %d", r.Report.Accepted),
		fmt.Sprintf("Filas excluidas: %d %s", r.Report.DiscardedTotal(), discardBreakdown(r.Report.Discarded)),
		fmt.Sprintf("Ventas:          %s", FormatMoney(s.Totals.Revenue)),
		fmt.Sprintf("Margen:          %s (%s)", FormatMoney(s.Totals.Margin), FormatPct(s.MarginPct())),
		fmt.Sprintf("Interanual:      ventas %s | margen %s",
			FormatChange(r.Derived.YoY.RevenueChangePct, r.Derived.YoY.Available),
			FormatChange(r.Derived.YoY.MarginChangePct, r.Derived.YoY.Available)),
	}

	if r.Replaced {
		lines = append(lines, faintStyle.Render("Sustituye al cierre guardado del mismo periodo."))
	}

	for _, a := range r.Report.Approximate {
		lines = append(lines, warnStyle.Render(fmt.Sprintf("Columna %q localizada de forma aproximada en %q", a.Field, a.Header)))
	}

	for _, w := range r.Warnings {
		lines = append(lines, warnStyle.Render("Aviso: "+w))
	}

	return paddedStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func discardBreakdown(discarded map[ingest.Discard]int) string {
	if len(discarded) == 0 {
		return ""
	}

	reasons := make([]ingest.Discard, 0, len(discarded))
	for d := range discarded {
		reasons = append(reasons, d)
	}

	slices.Sort(reasons)

	parts := make([]string, 0, len(reasons))
	for _, d := range reasons {
		parts = append(parts, fmt.Sprintf("%s: %d", d, discarded[d]))
	}

	return "(" + strings.Join(parts, ", ") + ")"
}

type importResultMsg struct {
	result *closing.Result
	err    error
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		res, err := m.closing.Ingest(ctx, filepath.Base(path), f)

		return importResultMsg{result: res, err: err}
	}
}
