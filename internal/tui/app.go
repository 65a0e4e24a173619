// Package tui is the terminal frontend: one input, a mode toggle, and the
// three result regions of the last review.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"invoice-qa-review/internal/domain/model"
)

// Reviewer is the slice of the review facade the TUI needs.
type Reviewer interface {
	HandleReview(ctx context.Context, input string, mode model.ResolveMode) model.ReviewView
}

type reviewDoneMsg struct {
	view model.ReviewView
}

// App is the bubbletea model.
type App struct {
	ctx      context.Context
	reviewer Reviewer

	input   textinput.Model
	spinner spinner.Model
	mode    model.ResolveMode
	busy    bool
	view    *model.ReviewView

	width int
}

func NewApp(ctx context.Context, reviewer Reviewer, mode model.ResolveMode) *App {
	if mode == "" {
		mode = model.ModeJob
	}
	ti := textinput.New()
	ti.Placeholder = "ServiceTrade ID"
	ti.CharLimit = 64
	ti.Width = 32
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#2a7bd3"))

	return &App{ctx: ctx, reviewer: reviewer, input: ti, spinner: sp, mode: mode}
}

func (a *App) Init() tea.Cmd {
	return textinput.Blink
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return a, tea.Quit
		case "tab":
			if !a.busy {
				a.toggleMode()
			}
			return a, nil
		case "enter":
			if a.busy {
				return a, nil
			}
			a.busy = true
			a.view = nil
			return a, tea.Batch(a.spinner.Tick, a.reviewCmd())
		}
		if a.busy {
			return a, nil
		}

	case reviewDoneMsg:
		a.busy = false
		v := msg.view
		a.view = &v
		return a, nil

	case spinner.TickMsg:
		if !a.busy {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) toggleMode() {
	if a.mode == model.ModeJob {
		a.mode = model.ModeInvoice
	} else {
		a.mode = model.ModeJob
	}
}

// reviewCmd runs the review off the UI loop.
func (a *App) reviewCmd() tea.Cmd {
	input, mode := a.input.Value(), a.mode
	return func() tea.Msg {
		return reviewDoneMsg{view: a.reviewer.HandleReview(a.ctx, input, mode)}
	}
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA")).Background(lipgloss.Color("#2a7bd3")).Padding(0, 1)
	headingStyle = lipgloss.NewStyle().Bold(true).MarginTop(1)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#057a55")).Bold(true)
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#b00020")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#f5b400"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#2a7bd3"))
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#888888")).Padding(0, 1)
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

func (a *App) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("🧾 Invoice QA Assistant for ServiceTrade"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Enter ServiceTrade %s: %s\n", a.mode.Label(), a.input.View())

	if a.busy {
		fmt.Fprintf(&b, "\n%s Reviewing %s...\n", a.spinner.View(), a.mode.Label())
	} else if a.view != nil {
		b.WriteString("\n")
		b.WriteString(a.renderView(*a.view))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(hintStyle.Render("enter: analyze • tab: toggle job/invoice • esc: quit"))
	return b.String()
}

func (a *App) renderView(v model.ReviewView) string {
	width := a.width - 4
	if width < 40 {
		width = 76
	}
	box := boxStyle.Width(width)

	switch v.Status {
	case model.ViewWarning:
		return warnStyle.Render("⚠️  " + v.Error)
	case model.ViewError:
		return failStyle.Render("❌ " + v.Error)
	case model.ViewDecodeError:
		return failStyle.Render("❌ "+v.Error) + "\n" + box.Render(v.Raw)
	}

	var b strings.Builder
	b.WriteString(okStyle.Render("✅ Analysis Complete"))
	if v.JobID != "" {
		b.WriteString(hintStyle.Render(" job " + v.JobID))
	}
	b.WriteString("\n")
	b.WriteString(headingStyle.Render("Corrected Invoice Text"))
	b.WriteString("\n")
	b.WriteString(box.Render(v.Corrected))
	b.WriteString("\n")
	b.WriteString(headingStyle.Render("Alerts"))
	b.WriteString("\n")
	if len(v.Alerts) == 0 {
		b.WriteString(hintStyle.Render("No alerts."))
	}
	for i, alert := range v.Alerts {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(warnStyle.Render("• " + alert))
	}
	b.WriteString("\n")
	b.WriteString(headingStyle.Render("Suggestions"))
	b.WriteString("\n")
	b.WriteString(infoStyle.Render(v.Suggestions))
	return b.String()
}
