package view

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/binder/internal/importer"
)

const importTimeout = 2 * time.Minute

type Importer interface {
	ImportFile(ctx context.Context, userID uuid.UUID, format importer.Format, r io.Reader) (*importer.Summary, error)
}

type importState int

const (
	importStateFormatSelect importState = iota
	importStateFilePick
	importStateImporting
	importStateResult
)

var importFormats = []importer.Format{importer.FormatAuto, importer.FormatCSV, importer.FormatText}

type ImportModel struct {
	CommonModel
	importer Importer
	user     uuid.UUID

	state        importState
	filePicker   filepicker.Model
	spinner      spinner.Model
	format       importer.Format
	formatCursor int

	log     list.Model
	summary *importer.Summary
	path    string
	err     error
}

func NewImportModel(imp Importer, user uuid.UUID) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt", ".dec"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = accentStyle

	return ImportModel{
		importer:   imp,
		user:       user,
		filePicker: fp,
		spinner:    s,
	}
}

func (m ImportModel) Title() string { return "Import Collection" }

func (m ImportModel) ShortHelp() string {
	if m.state == importStateResult {
		return "↑/↓: scroll log | Esc: import another"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		switch m.state {
		case importStateFormatSelect:
			return m.updateFormatSelect(msg)
		case importStateResult:
			var cmd tea.Cmd
			m.log, cmd = m.log.Update(msg)

			return m, cmd
		}

	case importResultMsg:
		m.state = importStateResult
		m.err = msg.err
		m.summary = msg.summary

		if msg.summary != nil {
			m.log = newLogList(msg.summary.Log)
		}

		return m, nil

	case spinner.TickMsg:
		if m.state != importStateImporting {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateImporting
		m.path = path

		return m, tea.Batch(m.spinner.Tick, m.importCmd(path))
	}

	return m, cmd
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStateFilePick, importStateResult:
		m.state = importStateFormatSelect
		m.err = nil
		m.summary = nil

		return m, nil
	case importStateImporting:
		return m, nil
	}

	return m, Back
}

func (m ImportModel) updateFormatSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.formatCursor > 0 {
			m.formatCursor--
		}
	case tea.KeyDown:
		if m.formatCursor < len(importFormats)-1 {
			m.formatCursor++
		}
	case tea.KeyEnter:
		m.format = importFormats[m.formatCursor]
		m.state = importStateFilePick

		return m, m.filePicker.Init()
	}

	return m, nil
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateFormatSelect:
		return m.viewFormatSelect()
	case importStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("Select file to import (%s):\n\n%s", m.format, m.filePicker.View()),
		)
	case importStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(
			fmt.Sprintf("%s Importing %s...", m.spinner.View(), m.path),
		)
	case importStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ImportModel) viewFormatSelect() string {
	s := "Select Format:\n\n"

	for i, f := range importFormats {
		cursor := " "
		if i == m.formatCursor {
			cursor = ">"
		}

		s += fmt.Sprintf("%s %s\n", cursor, f)
	}

	s += "\n" + faintStyle.Render("auto tries the known CSV layouts, then decklist text")

	return lipgloss.NewStyle().Padding(2).Render(s)
}

func (m ImportModel) viewResult() string {
	style := lipgloss.NewStyle().Padding(1)

	if m.err != nil {
		return style.Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n(Esc to go back)")
	}

	header := successStyle.Render(fmt.Sprintf("Imported %d lines", m.summary.Successful))
	if m.summary.Failed > 0 {
		header += ", " + errorStyle.Render(fmt.Sprintf("%d failed", m.summary.Failed))
	}

	return style.Render(lipgloss.JoinVertical(lipgloss.Left, header, "", m.log.View()))
}

// Messages

type importResultMsg struct {
	summary *importer.Summary
	err     error
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	format := m.format

	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		summary, err := m.importer.ImportFile(ctx, m.user, format, f)

		return importResultMsg{summary: summary, err: err}
	}
}

// Import log list

type logItem struct {
	entry importer.LogEntry
}

func (i logItem) FilterValue() string { return i.entry.Line }

func newLogList(entries []importer.LogEntry) list.Model {
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = logItem{entry: e}
	}

	l := list.New(items, logDelegate{}, 80, 20)
	l.Title = "Import Log"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return l
}

type logDelegate struct{}

func (d logDelegate) Height() int                             { return 1 }
func (d logDelegate) Spacing() int                            { return 0 }
func (d logDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d logDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(logItem)
	if !ok {
		return
	}

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	if item.entry.Error == "" {
		fmt.Fprintf(w, "%s%s %s", cursor, successStyle.Render("ok  "), item.entry.Line)
		return
	}

	fmt.Fprintf(w, "%s%s %s  %s", cursor, errorStyle.Render("fail"), item.entry.Line, faintStyle.Render(item.entry.Error))
}
