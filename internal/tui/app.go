// Package tui provides the interactive Bubble Tea dashboard for fincast.
package tui

import (
	"time"

	"github.com/theirongolddev/fincast/internal/config"
	"github.com/theirongolddev/fincast/internal/model"
	"github.com/theirongolddev/fincast/internal/pipeline"
	"github.com/theirongolddev/fincast/internal/store"
	"github.com/theirongolddev/fincast/internal/tui/components"
	"github.com/theirongolddev/fincast/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"
)

// ProjectionDoneMsg is sent when an ensemble finishes.
type ProjectionDoneMsg struct {
	Result  *pipeline.RecordedResult
	Err     error
	Elapsed time.Duration
}

// ProgressMsg reports how many runs have completed.
type ProgressMsg struct {
	Current int
	Total   int
}

// Options configures the dashboard.
type Options struct {
	Scenario      model.Scenario
	ScenarioPath  string // where [w] writes the scenario; empty means the scenarios dir
	Runs          int
	Workers       int
	Seed          *uint64
	RecordHistory bool
}

// App is the root Bubble Tea model.
type App struct {
	// Inputs
	scenario      model.Scenario
	scenarioPath  string
	runs          int
	workers       int
	seed          *uint64
	recordHistory bool

	// Latest projection
	result    *pipeline.RecordedResult
	prevRun   *model.EnsembleSummary // previous in-session summary
	err       error
	loaded    bool
	running   bool
	queued    bool    // a rerun was requested while running
	queuedFor *uint64 // seed of the queued rerun
	elapsed   time.Duration
	startDate time.Time

	// Derived from result
	bands       [][]model.WeekBand // indexed like trajectorySeries
	totalBins   []model.Bin
	accountBins map[model.Account][]model.Bin

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool

	// Per-tab state
	traj trajectoriesState
	scen scenarioState

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals SetupValues
	needSetup bool
	setupErr  error

	// Loading, channel-based progress subscription
	spinner     spinner.Model
	progress    int
	progressMax int
	loadSub     chan tea.Msg // progress + completion messages from the ensemble goroutine
}

// Tab indices, matching components.Tabs.
const (
	tabOverview = iota
	tabAccounts
	tabTrajectories
	tabScenario
)

// loadConfigOrDefault loads config, returning defaults on error so the
// dashboard can always start.
func loadConfigOrDefault() config.Config {
	cfg, err := config.Load()
	if err != nil {
		return config.DefaultConfig()
	}
	return cfg
}

// NewApp creates a new TUI app model.
func NewApp(opts Options) App {
	needSetup := !config.Exists()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Cyan).Background(theme.Active.Surface)

	runs := opts.Runs
	if runs < 1 {
		runs = config.DefaultConfig().General.Runs
	}

	a := App{
		scenario:      opts.Scenario,
		scenarioPath:  opts.ScenarioPath,
		runs:          runs,
		workers:       opts.Workers,
		seed:          opts.Seed,
		recordHistory: opts.RecordHistory,
		needSetup:     needSetup,
		spinner:       sp,
		loadSub:       make(chan tea.Msg, 1),
	}

	if needSetup {
		a.setupVals = NewSetupValues(a.scenario, loadConfigOrDefault())
		a.setupForm = NewSetupForm(&a.setupVals)
	} else {
		a.markRunning()
	}
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	if a.needSetup && a.setupForm != nil {
		return tea.Batch(tea.EnableMouseCellMotion, a.setupForm.Init())
	}
	return tea.Batch(tea.EnableMouseCellMotion, a.projectionCmd())
}

func (a *App) markRunning() {
	a.running = true
	a.progress = 0
	a.progressMax = a.runs
	a.startDate = time.Now()
}

// startProjection marks the model busy and returns the ensemble command.
func (a *App) startProjection() tea.Cmd {
	a.markRunning()
	return a.projectionCmd()
}

// projectionCmd runs the current scenario in the background.
func (a App) projectionCmd() tea.Cmd {
	opts := pipeline.Options{
		Runs:    a.runs,
		Workers: a.workers,
		Seed:    a.seed,
	}
	return tea.Batch(
		runProjectionCmd(a.scenario, opts, a.recordHistory, a.loadSub),
		a.spinner.Tick,
	)
}

// rerun starts a new projection. A nil seed draws a fresh one.
// While a projection is running the request is queued.
func (a *App) rerun(seed *uint64) tea.Cmd {
	if a.running {
		a.queued = true
		a.queuedFor = seed
		return nil
	}
	a.seed = seed
	return a.startProjection()
}

func (a *App) recompute() {
	res := a.result.Result

	a.bands = make([][]model.WeekBand, len(trajectorySeries))
	for i, s := range trajectorySeries {
		a.bands[i] = pipeline.WeeklyBands(res, s.series)
	}

	bins := pipeline.DefaultBinCount(res.RunCount())
	a.totalBins = pipeline.Histogram(pipeline.FinalTotal(res), bins)
	a.accountBins = make(map[model.Account][]model.Bin, len(model.Accounts))
	for _, acct := range model.Accounts {
		a.accountBins[acct] = pipeline.Histogram(pipeline.FinalBalances(res, acct), bins)
	}
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if a.loaded && !a.showHelp && a.setupForm == nil {
			a.handleMouse(msg)
		}
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case ProgressMsg:
		a.progress, a.progressMax = msg.Current, msg.Total
		return a, waitForLoadMsg(a.loadSub)

	case ProjectionDoneMsg:
		cmd := a.finishProjection(msg)
		return a, cmd

	case spinner.TickMsg:
		if !a.running && a.loaded {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	// Anything else (cursor blink and similar) belongs to whichever
	// input currently has focus.
	switch {
	case a.needSetup && a.setupForm != nil:
		return a.updateSetupForm(msg)
	case a.scen.editing:
		var cmd tea.Cmd
		a.scen.input, cmd = a.scen.input.Update(msg)
		return a, cmd
	}
	return a, nil
}

// finishProjection stores a completed ensemble, keeping the previous
// summary for comparison, and starts any rerun queued meanwhile.
func (a *App) finishProjection(msg ProjectionDoneMsg) tea.Cmd {
	a.running = false
	a.loaded = true
	a.elapsed = msg.Elapsed
	a.err = msg.Err
	if msg.Err != nil {
		log.Debug().Err(msg.Err).Msg("projection failed")
	} else {
		if a.result != nil {
			prev := a.result.Summary
			a.prevRun = &prev
		}
		a.result = msg.Result
		a.seed = nil
		a.recompute()
	}
	if !a.queued {
		return nil
	}
	a.queued = false
	return a.rerun(a.queuedFor)
}

func (a *App) handleMouse(msg tea.MouseMsg) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		a.moveCursor(-1)
	case tea.MouseButtonWheelDown:
		a.moveCursor(1)
	case tea.MouseButtonLeft:
		// The tab bar is the top two rows.
		if msg.Y > 1 {
			return
		}
		if tab := a.tabAtX(msg.X); tab >= 0 {
			a.activeTab = tab
		}
	}
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch {
	case key == "ctrl+c":
		return a, tea.Quit
	case a.needSetup && a.setupForm != nil:
		return a.updateSetupForm(msg)
	case !a.loaded:
		return a, nil
	case a.activeTab == tabScenario && a.scen.editing:
		return a.updateScenarioInput(msg)
	case key == "?":
		a.showHelp = !a.showHelp
		return a, nil
	case a.showHelp:
		a.showHelp = false
		return a, nil
	}

	listTab := a.activeTab == tabTrajectories || a.activeTab == tabScenario
	n := len(components.Tabs)
	switch key {
	case "j", "down":
		if listTab {
			a.moveCursor(1)
		}
	case "k", "up":
		if listTab {
			a.moveCursor(-1)
		}
	case "enter":
		if a.activeTab == tabScenario {
			return a.scenarioStartEdit()
		}
	case "w":
		if a.activeTab == tabScenario {
			a.scenarioWrite()
		}
	case "q":
		return a, tea.Quit
	case "r":
		cmd := a.rerun(nil)
		return a, cmd
	case "left":
		a.activeTab = (a.activeTab + n - 1) % n
	case "right":
		a.activeTab = (a.activeTab + 1) % n
	default:
		if r := []rune(key); len(r) == 1 {
			if idx := components.TabIdxByKey(r[0]); idx >= 0 {
				a.activeTab = idx
			}
		}
	}
	return a, nil
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		res, err := ApplySetup(a.setupVals, a.scenario, loadConfigOrDefault())
		if err != nil {
			a.setupErr = err
		} else {
			a.scenario = res.Scenario
			a.scenarioPath = res.ScenarioPath
			a.runs = res.Config.General.Runs
		}
	case huh.StateAborted:
		// Run with what we have; the wizard comes back next launch.
	default:
		return a, cmd
	}
	a.needSetup = false
	a.setupForm = nil
	cmd = a.startProjection()
	return a, cmd
}

// moveCursor moves the list cursor of the active tab.
func (a *App) moveCursor(delta int) {
	switch a.activeTab {
	case tabTrajectories:
		a.traj.cursor = clampIdx(a.traj.cursor+delta, len(trajectorySeries))
	case tabScenario:
		if !a.scen.editing {
			a.scen.cursor = clampIdx(a.scen.cursor+delta, len(scenarioFields))
			a.scen.err = nil
		}
	}
}

func clampIdx(i, n int) int {
	return min(max(i, 0), n-1)
}

// runProjectionCmd runs the ensemble in a background goroutine.
// It streams ProgressMsg updates and a final ProjectionDoneMsg through sub.
func runProjectionCmd(s model.Scenario, opts pipeline.Options, record bool, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			start := time.Now()

			// Non-blocking send so workers aren't stalled; a skipped
			// update is caught up by the next one.
			opts.Progress = func(current, total int) {
				select {
				case sub <- ProgressMsg{Current: current, Total: total}:
				default:
				}
			}

			var h *store.History
			if record {
				var err error
				h, err = pipeline.OpenHistory()
				if err != nil {
					log.Warn().Err(err).Msg("history unavailable")
					h = nil
				}
			}

			out, err := pipeline.RunWithHistory(s, opts, h)
			if h != nil {
				_ = h.Close()
			}
			sub <- ProjectionDoneMsg{Result: out, Err: err, Elapsed: time.Since(start)}
		}()

		// Block until the first message (either ProgressMsg or ProjectionDoneMsg)
		return <-sub
	}
}

// waitForLoadMsg blocks until the next message arrives from the ensemble goroutine.
func waitForLoadMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}

// tabAtX returns the tab under column x, or -1. Widths come from
// components.TabVisualWidth so hits line up with RenderTabBar.
func (a App) tabAtX(x int) int {
	left := 0
	for i, tab := range components.Tabs {
		right := left + components.TabVisualWidth(tab, i == a.activeTab)
		if x >= left && x < right {
			return i
		}
		left = right + 1 // separator
	}
	return -1
}
