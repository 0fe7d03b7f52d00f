package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/opsdash/internal/dashboard"
)

// Width breakpoints for layout
const (
	BreakpointCompact = 60
	BreakpointWide    = 100
)

// clockInterval re-renders relative times ("12s ago").
const clockInterval = time.Second

// Options configures the dashboard model.
type Options struct {
	// BaseURL is shown in the header.
	BaseURL string
	// CurrencySymbol prefixes the revenue figure.
	CurrencySymbol string
	// Now is the time source for relative times. Defaults to time.Now.
	Now func() time.Time
}

// Model is the Bubble Tea model for the dashboard.
type Model struct {
	ctx   context.Context
	vm    *dashboard.ViewModel
	state dashboard.ViewState
	opts  Options

	spinner spinner.Model
	help    help.Model

	width      int
	height     int
	showHelp   bool
	refreshing bool
	quitting   bool
}

// activateMsg starts the session from inside the update loop.
type activateMsg struct{}

// eventMsg carries one feed completion from the ViewModel.
type eventMsg dashboard.Event

// clockMsg fires every clockInterval.
type clockMsg time.Time

// NewModel creates a dashboard model over vm. The session starts when the
// program runs; ctx bounds its lifetime.
func NewModel(ctx context.Context, vm *dashboard.ViewModel, opts Options) Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.CurrencySymbol == "" {
		opts.CurrencySymbol = "£"
	}

	sp := spinner.New()
	sp.Spinner = SpinnerFrames
	sp.Style = lipgloss.NewStyle().Foreground(ColorAccent)

	h := help.New()
	h.Styles.ShortKey = LabelStyle
	h.Styles.ShortDesc = MutedStyle
	h.Styles.ShortSeparator = MutedStyle

	return Model{
		ctx:     ctx,
		vm:      vm,
		state:   vm.State(),
		opts:    opts,
		spinner: sp,
		help:    h,
	}
}

// Init activates the session and starts the clock and spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return activateMsg{} },
		m.spinner.Tick,
		clockCmd(),
	)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case activateMsg:
		m.vm.Activate(m.ctx)
		m.state = m.vm.State()
		return m, waitForEvent(m.vm.Events())

	case eventMsg:
		ev := dashboard.Event(msg)
		if m.vm.Apply(ev) {
			m.state = m.vm.State()
			if ev.Feed == dashboard.FeedMetrics {
				m.refreshing = false
			}
		}
		if m.quitting {
			return m, nil
		}
		return m, waitForEvent(m.vm.Events())

	case clockMsg:
		if m.quitting {
			return m, nil
		}
		return m, clockCmd()

	case spinner.TickMsg:
		if !m.Busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		wasBusy := m.Busy()
		handled, cmd := m.HandleKeyMsg(msg)
		if handled {
			if !wasBusy && m.Busy() {
				cmd = tea.Batch(cmd, m.spinner.Tick)
			}
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.showHelp {
		return m.renderHelpOverlay()
	}
	return m.renderDashboard()
}

// State returns the ViewState the model last rendered from.
func (m Model) State() dashboard.ViewState {
	return m.state
}

// Loading reports whether the initial load is still in progress. Before the
// session starts the model counts as loading too.
func (m Model) Loading() bool {
	if m.quitting {
		return false
	}
	return m.state.IsLoadingInitial || m.state.Phase == dashboard.PhaseIdle
}

// Busy reports whether the spinner should animate.
func (m Model) Busy() bool {
	return m.Loading() || m.refreshing
}

// waitForEvent blocks on the next ViewModel event.
func waitForEvent(ch <-chan dashboard.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return eventMsg(ev)
	}
}

func clockCmd() tea.Cmd {
	return tea.Tick(clockInterval, func(t time.Time) tea.Msg {
		return clockMsg(t)
	})
}

// Run shows the dashboard full screen until the user quits or ctx is done.
// The ViewModel is always left deactivated.
func Run(ctx context.Context, vm *dashboard.ViewModel, opts Options) error {
	defer vm.Deactivate()

	p := tea.NewProgram(NewModel(ctx, vm, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
