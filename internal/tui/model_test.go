package tui

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/opsdash/internal/api"
	"github.com/rileyhilliard/opsdash/internal/dashboard"
	"github.com/rileyhilliard/opsdash/internal/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 1, 26, 10, 40, 0, 0, time.UTC)

// fakeBackend implements both feed sources.
type fakeBackend struct {
	mu           sync.Mutex
	metricsCalls int
	metricsErr   error
	syncErr      error
	report       api.SyncReport
}

func (f *fakeBackend) Dashboard(ctx context.Context) (api.Dashboard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.metricsCalls++
	if f.metricsErr != nil {
		return api.Dashboard{}, f.metricsErr
	}
	return api.Dashboard{
		TotalOrders:       1042,
		TotalRevenue:      decimal.RequireFromString("1000.5"),
		LowStockItems:     3,
		PendingProduction: 7,
	}, nil
}

func (f *fakeBackend) SyncStatus(ctx context.Context) (api.SyncReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.syncErr != nil {
		return nil, f.syncErr
	}
	return f.report, nil
}

func (f *fakeBackend) MetricsCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.metricsCalls
}

func newBackend() *fakeBackend {
	synced := time.Date(2025, 1, 26, 10, 30, 0, 0, time.UTC)
	return &fakeBackend{report: api.SyncReport{
		"shopify":    {Status: "connected", LastSync: &synced},
		"quickbooks": {Status: "error"},
	}}
}

func newTestModel(t *testing.T, backend *fakeBackend) (Model, *dashboard.ViewModel) {
	t.Helper()
	fetcher := dashboard.NewMetricsFetcher(backend, nil)
	poller := dashboard.NewSyncStatusPoller(backend, dashboard.WithInterval(time.Hour))
	vm := dashboard.NewViewModel(fetcher, poller)
	t.Cleanup(func() { vm.Deactivate() })

	m := NewModel(context.Background(), vm, Options{
		BaseURL: "http://localhost:8000",
		Now:     func() time.Time { return testNow },
	})
	return m, vm
}

// runCmd executes a command, failing the test if it does not return in time.
func runCmd(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	require.NotNil(t, cmd)
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	select {
	case msg := <-done:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("command did not return")
		return nil
	}
}

// loadModel activates the session and feeds events until the initial load
// completes.
func loadModel(t *testing.T, m Model) Model {
	t.Helper()
	updated, cmd := m.Update(activateMsg{})
	m = updated.(Model)
	for m.Loading() {
		updated, cmd = m.Update(runCmd(t, cmd))
		m = updated.(Model)
	}
	return m
}

func pressKey(m Model, k tea.KeyMsg) (Model, tea.Cmd) {
	updated, cmd := m.Update(k)
	return updated.(Model), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewModel(t *testing.T) {
	m, _ := newTestModel(t, newBackend())

	assert.Equal(t, "£", m.opts.CurrencySymbol, "currency defaults to pounds")
	assert.True(t, m.Loading(), "counts as loading before the session starts")
	assert.False(t, m.showHelp)
	assert.NotNil(t, m.Init())
}

func TestModel_ActivateThenLoad(t *testing.T) {
	m, vm := newTestModel(t, newBackend())

	m = loadModel(t, m)

	assert.True(t, vm.Active())
	s := m.State()
	assert.Equal(t, dashboard.PhaseReady, s.Phase)
	require.NotNil(t, s.Snapshot)
	assert.Equal(t, int64(1042), s.Snapshot.TotalOrders)
	assert.Equal(t, dashboard.StatusUnknown, s.SyncStatus[dashboard.PlatformNuOrder].Status)
	assert.False(t, m.Busy())
}

func TestModel_QuitDeactivates(t *testing.T) {
	for _, k := range []tea.KeyMsg{runes("q"), {Type: tea.KeyCtrlC}} {
		t.Run(k.String(), func(t *testing.T) {
			m, vm := newTestModel(t, newBackend())
			m = loadModel(t, m)

			m, cmd := pressKey(m, k)
			require.NotNil(t, cmd)
			assert.IsType(t, tea.QuitMsg{}, cmd())
			assert.False(t, vm.Active())
			assert.Equal(t, dashboard.PhaseIdle, m.State().Phase)
			assert.Empty(t, m.View())
		})
	}
}

func TestModel_Refresh(t *testing.T) {
	backend := newBackend()
	m, _ := newTestModel(t, backend)
	m = loadModel(t, m)
	require.Equal(t, 1, backend.MetricsCalls())

	m, cmd := pressKey(m, runes("r"))
	assert.NotNil(t, cmd, "spinner restarts")
	assert.True(t, m.Busy())
	assert.Contains(t, m.View(), "refreshing")

	// Wait for the refreshed metrics to land.
	waitCmd := waitForEvent(m.vm.Events())
	for m.refreshing {
		updated, _ := m.Update(runCmd(t, waitCmd))
		m = updated.(Model)
	}
	assert.Equal(t, 2, backend.MetricsCalls())
	assert.False(t, m.Busy())
}

func TestModel_HelpToggle(t *testing.T) {
	m, _ := newTestModel(t, newBackend())

	m, _ = pressKey(m, runes("?"))
	assert.True(t, m.showHelp)
	assert.Contains(t, m.View(), "Keyboard Shortcuts")
	assert.Contains(t, m.View(), "refresh")

	m, _ = pressKey(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.showHelp)

	m, _ = pressKey(m, runes("?"))
	m, _ = pressKey(m, runes("?"))
	assert.False(t, m.showHelp)
}

func TestModel_UnhandledKey(t *testing.T) {
	m, _ := newTestModel(t, newBackend())
	handled, cmd := m.HandleKeyMsg(runes("x"))
	assert.False(t, handled)
	assert.Nil(t, cmd)
}

func TestModel_WindowSize(t *testing.T) {
	m, _ := newTestModel(t, newBackend())
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = updated.(Model)
	assert.Equal(t, 120, m.width)
	assert.Equal(t, 40, m.height)
	assert.Equal(t, 120, m.help.Width)
}

func TestModel_StaleEventIgnoredAfterQuit(t *testing.T) {
	m, vm := newTestModel(t, newBackend())
	m = loadModel(t, m)
	before := m.State()

	m, _ = pressKey(m, runes("q"))
	updated, cmd := m.Update(eventMsg(dashboard.Event{Feed: dashboard.FeedSync, Err: errors.New(errors.ErrNetwork, "late", "")}))
	m = updated.(Model)

	assert.Nil(t, cmd, "no more waiting once quitting")
	assert.False(t, vm.Active())
	assert.Equal(t, before.Snapshot, m.State().Snapshot)
	assert.Nil(t, m.State().SyncError)
}

func TestModel_SpinnerStopsAfterLoad(t *testing.T) {
	m, _ := newTestModel(t, newBackend())
	m = loadModel(t, m)

	updated, cmd := m.Update(m.spinner.Tick())
	assert.Nil(t, cmd)
	assert.IsType(t, Model{}, updated)
}
