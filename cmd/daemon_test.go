package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/fincast/internal/daemon"
)

func TestDaemonFilesClaimAndClear(t *testing.T) {
	files := daemonFiles{pidPath: filepath.Join(t.TempDir(), "run", "fincastd.pid")}

	if err := files.ensureFree(); err != nil {
		t.Fatalf("ensureFree with no pid file: %v", err)
	}

	want := daemonRuntimeState{PID: os.Getpid(), Addr: "127.0.0.1:9999", Schedule: "@hourly"}
	if err := files.claim(want); err != nil {
		t.Fatalf("claim: %v", err)
	}

	pid, err := files.readPID()
	if err != nil || pid != want.PID {
		t.Fatalf("readPID = %d, %v", pid, err)
	}
	st, err := files.readState()
	if err != nil || st.Addr != want.Addr || st.Schedule != want.Schedule {
		t.Fatalf("readState = %+v, %v", st, err)
	}

	// Our own pid is alive, so the files are taken.
	if err := files.ensureFree(); err == nil {
		t.Fatal("ensureFree should refuse a live pid")
	}

	files.clear()
	if _, err := os.Stat(files.pidPath); !os.IsNotExist(err) {
		t.Fatalf("pid file still present: %v", err)
	}
	if _, err := os.Stat(files.statePath()); !os.IsNotExist(err) {
		t.Fatalf("state file still present: %v", err)
	}
}

func TestDaemonFilesStalePID(t *testing.T) {
	files := daemonFiles{pidPath: filepath.Join(t.TempDir(), "fincastd.pid")}
	if err := os.WriteFile(files.pidPath, []byte("2147483646\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := files.ensureFree(); err != nil {
		t.Fatalf("stale pid should be cleared: %v", err)
	}
	if _, err := os.Stat(files.pidPath); !os.IsNotExist(err) {
		t.Fatal("stale pid file was not removed")
	}

	if err := os.WriteFile(files.pidPath, []byte("not-a-pid"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := files.readPID(); err == nil {
		t.Fatal("garbage pid should fail to parse")
	}
}

func TestStatusRows(t *testing.T) {
	st := daemon.Status{
		LastRunAt: time.Now().Add(-2 * time.Hour),
		RunCount:  4,
		LastError: "scenario vanished",
		Summary:   daemon.Snapshot{Scenario: "gap-year", PShortfall: 0.25},
	}
	rows := statusRows(st)

	got := map[string]string{}
	for _, r := range rows {
		got[r[0]] = r[1]
	}
	if got["Scenario"] != "gap-year" || got["Projections"] != "4" {
		t.Fatalf("rows = %v", rows)
	}
	if got["Last projection"] == "pending" {
		t.Fatal("last run time should be shown")
	}
	if !strings.Contains(got["P(liquid < £0)"], "25") {
		t.Fatalf("shortfall = %q", got["P(liquid < £0)"])
	}
	if got["Last error"] != "scenario vanished" {
		t.Fatalf("last error row missing: %v", rows)
	}
	if _, ok := got["Next projection"]; ok {
		t.Fatal("zero next run should be omitted")
	}
}
