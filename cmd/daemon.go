package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/theirongolddev/fincast/internal/cli"
	"github.com/theirongolddev/fincast/internal/config"
	"github.com/theirongolddev/fincast/internal/daemon"
	"github.com/theirongolddev/fincast/internal/model"
	"github.com/theirongolddev/fincast/internal/pipeline"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	flagDaemonAddr         string
	flagDaemonSchedule     string
	flagDaemonDetach       bool
	flagDaemonPIDFile      string
	flagDaemonLogFile      string
	flagDaemonEventsBuffer int
	flagDaemonChild        bool
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Reproject on a schedule and serve results over HTTP/SSE",
	RunE:  runDaemon,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the daemon process and its latest projection",
	RunE:  runDaemonStatus,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running daemon",
	RunE:  runDaemonStop,
}

func init() {
	dir := pipeline.DataDir()
	pf := daemonCmd.PersistentFlags()
	pf.StringVar(&flagDaemonAddr, "addr", "", "HTTP listen address (default from config)")
	pf.StringVar(&flagDaemonSchedule, "schedule", "", "Cron schedule for reprojection (default from config)")
	pf.StringVar(&flagDaemonPIDFile, "pid-file", filepath.Join(dir, "fincastd.pid"), "PID file path")
	pf.StringVar(&flagDaemonLogFile, "log-file", filepath.Join(dir, "fincastd.log"), "Log file used when detached")
	pf.IntVar(&flagDaemonEventsBuffer, "events-buffer", 0, "Events kept in memory (default from config)")

	daemonCmd.Flags().BoolVar(&flagDaemonDetach, "detach", false, "Run in the background")
	daemonCmd.Flags().BoolVar(&flagDaemonChild, "child", false, "Internal: set on the detached child")
	_ = daemonCmd.Flags().MarkHidden("child")

	daemonCmd.AddCommand(daemonStatusCmd, daemonStopCmd)
	rootCmd.AddCommand(daemonCmd)
}

// daemonConfig merges daemon flags over the config file.
func daemonConfig() (daemon.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return daemon.Config{}, err
	}
	// A broken scenario should fail here, not at the first scheduled run.
	if _, _, err := resolveScenario(cfg); err != nil {
		return daemon.Config{}, err
	}

	opts := ensembleOptions(cfg)
	dc := daemon.Config{
		Load:          reloadScenario,
		Runs:          opts.Runs,
		Workers:       opts.Workers,
		Seed:          opts.Seed,
		RecordHistory: recordHistory(cfg),
		Schedule:      orDefault(flagDaemonSchedule, cfg.Daemon.Schedule),
		Addr:          orDefault(flagDaemonAddr, cfg.Daemon.Addr),
		EventsBuffer:  cfg.Daemon.EventsBuffer,
	}
	if flagDaemonEventsBuffer > 0 {
		dc.EventsBuffer = flagDaemonEventsBuffer
	}
	return dc, nil
}

// reloadScenario rereads config and scenario so edits made while the
// daemon runs are picked up by the next projection.
func reloadScenario() (model.Scenario, error) {
	cfg, err := loadConfig()
	if err != nil {
		return model.Scenario{}, err
	}
	s, _, err := resolveScenario(cfg)
	return s, err
}

// orDefault returns the flag value when set, else the fallback.
func orDefault(flag, fallback string) string {
	if flag != "" {
		return flag
	}
	return fallback
}

func runDaemon(_ *cobra.Command, _ []string) error {
	if flagDaemonDetach && flagDaemonChild {
		return errors.New("--detach and --child are mutually exclusive")
	}

	dc, err := daemonConfig()
	if err != nil {
		return err
	}

	files := daemonFiles{pidPath: flagDaemonPIDFile}
	if err := files.ensureFree(); err != nil {
		return err
	}
	if flagDaemonDetach {
		return spawnDetached(dc, files)
	}
	return serveForeground(dc, files)
}

// spawnDetached re-executes the current binary without --detach, with
// output going to the daemon log file.
func spawnDetached(dc daemon.Config, files daemonFiles) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolving executable: %w", err)
	}
	for _, dir := range []string{filepath.Dir(files.pidPath), filepath.Dir(flagDaemonLogFile)} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	//nolint:gosec // log path comes from the local user's flags
	logf, err := os.OpenFile(flagDaemonLogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("opening daemon log: %w", err)
	}
	defer func() { _ = logf.Close() }()

	var args []string
	for _, a := range os.Args[1:] {
		if a != "--detach" && !strings.HasPrefix(a, "--detach=") {
			args = append(args, a)
		}
	}
	child := exec.Command(exe, append(args, "--child")...) //nolint:gosec // re-exec of this binary
	child.Stdout, child.Stderr = logf, logf
	child.Env = os.Environ()
	if err := child.Start(); err != nil {
		return fmt.Errorf("starting detached daemon: %w", err)
	}

	fmt.Printf("  Started daemon (pid %d)\n", child.Process.Pid)
	fmt.Printf("  Status: http://%s/v1/status\n", dc.Addr)
	fmt.Printf("  Log:    %s\n", flagDaemonLogFile)
	return nil
}

func serveForeground(dc daemon.Config, files daemonFiles) error {
	state := daemonRuntimeState{
		PID:       os.Getpid(),
		Addr:      dc.Addr,
		StartedAt: time.Now(),
		Schedule:  dc.Schedule,
	}
	if err := files.claim(state); err != nil {
		return err
	}
	defer files.clear()

	fmt.Printf("  fincast daemon on http://%s, reprojecting at %q\n", dc.Addr, dc.Schedule)
	fmt.Printf("  Stop with: fincast daemon stop --pid-file %s\n", files.pidPath)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := daemon.New(dc).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runDaemonStatus(_ *cobra.Command, _ []string) error {
	files := daemonFiles{pidPath: flagDaemonPIDFile}
	pid, err := files.readPID()
	switch {
	case err != nil:
		fmt.Println("  Daemon: not running")
		return nil
	case !processAlive(pid):
		fmt.Printf("  Daemon: not running (stale pid %d)\n", pid)
		return nil
	}

	addr := flagDaemonAddr
	if addr == "" {
		addr = config.DefaultConfig().Daemon.Addr
		if st, err := files.readState(); err == nil && st.Addr != "" {
			addr = st.Addr
		}
	}

	rows := [][]string{
		{"PID", strconv.Itoa(pid)},
		{"Address", "http://" + addr},
	}
	st, err := fetchDaemonStatus(addr)
	if err != nil {
		rows = append(rows, []string{"API", err.Error()})
	} else {
		rows = append(rows, statusRows(st)...)
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Daemon",
		Headers: []string{"Field", "Value"},
		Rows:    rows,
	}))
	return nil
}

func fetchDaemonStatus(addr string) (daemon.Status, error) {
	var st daemon.Status
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + addr + "/v1/status") //nolint:noctx // short local probe
	if err != nil {
		return st, errors.New("unreachable")
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return st, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return st, fmt.Errorf("malformed response: %w", err)
	}
	return st, nil
}

func statusRows(st daemon.Status) [][]string {
	last := "pending"
	if !st.LastRunAt.IsZero() {
		last = cli.FormatAge(st.LastRunAt)
	}
	rows := [][]string{
		{"Last projection", last},
	}
	if !st.NextRunAt.IsZero() {
		rows = append(rows, []string{"Next projection", st.NextRunAt.Local().Format("Mon 02 Jan 15:04")})
	}
	sum := st.Summary
	rows = append(rows,
		[]string{"Projections", cli.FormatNumber(int64(st.RunCount))},
		[]string{"Scenario", sum.Scenario},
		[]string{"Liquid", cli.FormatMeanStd(sum.LiquidMean, sum.LiquidStdDev)},
		[]string{"Total", cli.FormatMeanStd(sum.TotalMean, sum.TotalStdDev)},
		[]string{"P(liquid < £0)", cli.FormatPercent(sum.PShortfall)},
	)
	if st.LastError != "" {
		rows = append(rows, []string{"Last error", st.LastError})
	}
	return rows
}

func runDaemonStop(_ *cobra.Command, _ []string) error {
	files := daemonFiles{pidPath: flagDaemonPIDFile}
	pid, err := files.readPID()
	if err != nil {
		return errors.New("daemon is not running")
	}

	if err := syscall.Kill(pid, syscall.SIGTERM); err != nil {
		return fmt.Errorf("signalling pid %d: %w", pid, err)
	}

	for range 50 {
		if !processAlive(pid) {
			files.clear()
			fmt.Printf("  Stopped daemon (pid %d)\n", pid)
			return nil
		}
		time.Sleep(150 * time.Millisecond)
	}
	return fmt.Errorf("daemon (pid %d) still running after SIGTERM", pid)
}

// daemonRuntimeState is written next to the pid file so status can find
// the listen address of a daemon started with non-default flags.
type daemonRuntimeState struct {
	PID       int       `json:"pid"`
	Addr      string    `json:"addr"`
	StartedAt time.Time `json:"started_at"`
	Schedule  string    `json:"schedule"`
}

// daemonFiles is the pid file and its JSON state sidecar.
type daemonFiles struct {
	pidPath string
}

func (f daemonFiles) statePath() string { return f.pidPath + ".json" }

func (f daemonFiles) clear() {
	_ = os.Remove(f.pidPath)
	_ = os.Remove(f.statePath())
}

// ensureFree fails if a live daemon owns the pid file and removes the
// file when its process is gone.
func (f daemonFiles) ensureFree() error {
	pid, err := f.readPID()
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil
	case err != nil:
		return err
	case processAlive(pid):
		return fmt.Errorf("daemon already running (pid %d)", pid)
	}
	f.clear()
	return nil
}

// claim writes the pid file, then the state sidecar. A state write
// failure only costs status its address lookup, so it is logged.
func (f daemonFiles) claim(st daemonRuntimeState) error {
	if err := os.MkdirAll(filepath.Dir(f.pidPath), 0o750); err != nil {
		return fmt.Errorf("creating daemon directory: %w", err)
	}
	if err := os.WriteFile(f.pidPath, []byte(strconv.Itoa(st.PID)+"\n"), 0o600); err != nil {
		return fmt.Errorf("writing pid file: %w", err)
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err == nil {
		err = os.WriteFile(f.statePath(), append(data, '\n'), 0o600)
	}
	if err != nil {
		log.Warn().Err(err).Str("path", f.statePath()).Msg("writing daemon state")
	}
	return nil
}

func (f daemonFiles) readPID() (int, error) {
	data, err := os.ReadFile(f.pidPath)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pid in %s", f.pidPath)
	}
	return pid, nil
}

func (f daemonFiles) readState() (daemonRuntimeState, error) {
	var st daemonRuntimeState
	data, err := os.ReadFile(f.statePath())
	if err != nil {
		return st, err
	}
	err = json.Unmarshal(data, &st)
	return st, err
}

// processAlive reports whether pid exists; EPERM means it does but
// belongs to someone else.
func processAlive(pid int) bool {
	err := syscall.Kill(pid, 0)
	return err == nil || errors.Is(err, syscall.EPERM)
}
