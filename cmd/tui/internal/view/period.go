package view

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// Period is a predefined or custom reporting window.
type Period int

const (
	PeriodThisMonth Period = iota
	PeriodLastMonth
	PeriodThisYear
	PeriodAll
	PeriodCustom
)

func (p Period) String() string {
	switch p {
	case PeriodThisMonth:
		return "This Month"
	case PeriodLastMonth:
		return "Last Month"
	case PeriodThisYear:
		return "This Year"
	case PeriodAll:
		return "All Time"
	case PeriodCustom:
		return "Custom Range"
	}

	return "Unknown"
}

// Range returns the calendar days covered by p relative to now. Zero times
// mean the side is open.
func (p Period) Range(now time.Time) (time.Time, time.Time) {
	switch p {
	case PeriodThisMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC), dayOf(now)
	case PeriodLastMonth:
		start := time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, -1)
	case PeriodThisYear:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC), dayOf(now)
	}

	return time.Time{}, time.Time{}
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// endOfDay makes a day range inclusive of its last day.
func endOfDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}

	return t.Add(24*time.Hour - time.Nanosecond)
}

// PeriodSelectedMsg is emitted once the user has picked a window.
type PeriodSelectedMsg struct {
	Period Period
	Start  time.Time
	End    time.Time
}

// PeriodPicker is a cursor list of periods with a form for custom ranges.
type PeriodPicker struct {
	selected Period
	form     *huh.Form
}

func NewPeriodPicker() PeriodPicker {
	return PeriodPicker{selected: PeriodThisMonth}
}

func (m PeriodPicker) Update(msg tea.Msg) (PeriodPicker, tea.Cmd) {
	if m.form != nil {
		return m.updateCustom(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.Type {
	case tea.KeyUp:
		if m.selected > PeriodThisMonth {
			m.selected--
		}
	case tea.KeyDown:
		if m.selected < PeriodCustom {
			m.selected++
		}
	case tea.KeyEnter:
		if m.selected == PeriodCustom {
			m.form = m.customForm()
			return m, m.form.Init()
		}

		period := m.selected
		start, end := period.Range(time.Now())

		return m, func() tea.Msg {
			return PeriodSelectedMsg{Period: period, Start: start, End: endOfDay(end)}
		}
	}

	return m, nil
}

func (m PeriodPicker) updateCustom(msg tea.Msg) (PeriodPicker, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.form = nil
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	start, _ := time.Parse(time.DateOnly, strings.TrimSpace(m.form.GetString("start")))
	end, _ := time.Parse(time.DateOnly, strings.TrimSpace(m.form.GetString("end")))
	m.form = nil

	return m, func() tea.Msg {
		return PeriodSelectedMsg{Period: PeriodCustom, Start: start, End: endOfDay(end)}
	}
}

func (m PeriodPicker) customForm() *huh.Form {
	var start string

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("start").
				Title("Start Date").
				Placeholder("YYYY-MM-DD").
				Value(&start).
				Validate(validDate),
			huh.NewInput().
				Key("end").
				Title("End Date").
				Placeholder("YYYY-MM-DD").
				Validate(func(s string) error {
					if err := validDate(s); err != nil {
						return err
					}

					from, _ := time.Parse(time.DateOnly, strings.TrimSpace(start))
					to, _ := time.Parse(time.DateOnly, strings.TrimSpace(s))

					if to.Before(from) {
						return errors.New("end date is before start date")
					}

					return nil
				}),
		),
	).WithWidth(40).WithShowHelp(false)
}

func validDate(s string) error {
	if _, err := time.Parse(time.DateOnly, strings.TrimSpace(s)); err != nil {
		return errors.New("use YYYY-MM-DD")
	}

	return nil
}

// Selecting reports whether the picker is on the period list rather than the
// custom range form.
func (m PeriodPicker) Selecting() bool {
	return m.form == nil
}

func (m PeriodPicker) View() string {
	if m.form != nil {
		return "Enter Custom Range:\n\n" + m.form.View() + "\n" + faintStyle.Render("(Esc to go back)")
	}

	var sb strings.Builder

	sb.WriteString("Select Period:\n\n")

	for p := PeriodThisMonth; p <= PeriodCustom; p++ {
		cursor := " "
		if m.selected == p {
			cursor = ">"
		}

		fmt.Fprintf(&sb, "%s %s\n", cursor, p)
	}

	sb.WriteString("\n(Enter to select, Esc to back)")

	return sb.String()
}
