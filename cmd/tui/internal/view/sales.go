package view

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/binder/internal/report"
)

const salesTimeout = time.Minute

type Sales interface {
	Sales(ctx context.Context, sellerID uuid.UUID, start, end time.Time) ([]report.Row, error)
}

type salesState int

const (
	salesStatePeriod salesState = iota
	salesStatePath
	salesStateWriting
	salesStateResult
)

// SalesModel writes the user's completed sales for a period to a CSV file.
type SalesModel struct {
	CommonModel
	sales Sales
	user  uuid.UUID

	state   salesState
	picker  PeriodPicker
	form    *huh.Form
	spinner spinner.Model

	start, end time.Time

	file    string
	summary string
	err     error
}

func NewSalesModel(sales Sales, user uuid.UUID) SalesModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = accentStyle

	return SalesModel{
		sales:   sales,
		user:    user,
		picker:  NewPeriodPicker(),
		spinner: s,
	}
}

func (m SalesModel) Title() string { return "Sales Report" }

func (m SalesModel) ShortHelp() string {
	switch m.state {
	case salesStateResult:
		return "Esc: back to menu"
	case salesStateWriting:
		return "Writing..."
	}

	return "Esc: back | Enter: confirm"
}

func (m SalesModel) Init() tea.Cmd {
	return nil
}

func (m SalesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if sel, ok := msg.(PeriodSelectedMsg); ok {
		m.start, m.end = sel.Start, sel.End
		m.form = pathForm()
		m.state = salesStatePath

		return m, m.form.Init()
	}

	switch m.state {
	case salesStatePeriod:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc && m.picker.Selecting() {
			return m, Back
		}

		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)

		return m, cmd
	case salesStatePath:
		return m.updatePath(msg)
	case salesStateWriting:
		if result, ok := msg.(salesResultMsg); ok {
			m.state = salesStateResult
			m.err = result.err
			m.file = result.file
			m.summary = result.summary

			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	case salesStateResult:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	return m, nil
}

func (m SalesModel) updatePath(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = salesStatePeriod
		m.picker = NewPeriodPicker()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	dir := m.form.GetString("dir")
	if dir == "" {
		dir = "./reports"
	}

	m.state = salesStateWriting

	return m, tea.Batch(m.spinner.Tick, m.writeCmd(dir))
}

func pathForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("dir").
				Title("Output Directory").
				Description("Created if it doesn't exist").
				Placeholder("./reports"),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m SalesModel) View() string {
	switch m.state {
	case salesStatePeriod:
		return lipgloss.NewStyle().Padding(1).Render(m.picker.View())
	case salesStatePath:
		return lipgloss.NewStyle().Padding(1).Render(m.form.View())
	case salesStateWriting:
		return lipgloss.NewStyle().Padding(1).Render(m.spinner.View() + " Building sales report...")
	case salesStateResult:
		return m.viewResult()
	}

	return ""
}

func (m SalesModel) viewResult() string {
	if m.err != nil {
		return lipgloss.NewStyle().Padding(1).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	header := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("46")).Render("Report written to " + m.file)

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, "", m.summary),
	)
}

type salesResultMsg struct {
	file    string
	summary string
	err     error
}

func (m SalesModel) writeCmd(dir string) tea.Cmd {
	start, end := m.start, m.end

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), salesTimeout)
		defer cancel()

		rows, err := m.sales.Sales(ctx, m.user, start, end)
		if err != nil {
			return salesResultMsg{err: err}
		}

		if err := os.MkdirAll(dir, 0o755); err != nil {
			return salesResultMsg{err: fmt.Errorf("creating %s: %w", dir, err)}
		}

		path := filepath.Join(dir, report.Filename(start, end))

		f, err := os.Create(path)
		if err != nil {
			return salesResultMsg{err: err}
		}
		defer f.Close()

		if err := report.WriteCSV(f, rows); err != nil {
			return salesResultMsg{err: err}
		}

		return salesResultMsg{file: path, summary: report.Summary(rows)}
	}
}
