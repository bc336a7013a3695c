package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/theirongolddev/fincast/internal/model"
	"github.com/theirongolddev/fincast/internal/store"

	"github.com/rs/zerolog/log"
)

// RecordedResult extends an ensemble with its summary and history metadata.
type RecordedResult struct {
	Result  *model.EnsembleResult
	Summary model.EnsembleSummary

	// Previous is the last stored projection of the same scenario name,
	// captured before this one was saved. Nil on the first run.
	Previous *store.Record
	RecordID string
}

// RunWithHistory runs the ensemble, compares it with the last stored
// projection of the same scenario, and stores the new summary.
// History failures are logged and do not fail the projection.
func RunWithHistory(s model.Scenario, opts Options, h *store.History) (*RecordedResult, error) {
	var prev *store.Record
	if h != nil {
		p, err := h.LatestForScenario(s.Name)
		if err != nil {
			log.Warn().Err(err).Str("scenario", s.Name).Msg("reading projection history")
		}
		prev = p
	}

	res, err := RunEnsemble(s, opts)
	if err != nil {
		return nil, err
	}

	out := &RecordedResult{
		Result:   res,
		Summary:  Summarize(res),
		Previous: prev,
	}

	if h != nil {
		id, err := h.SaveProjection(store.NewRecord(s, out.Summary))
		if err != nil {
			log.Warn().Err(err).Msg("saving projection history")
		} else {
			out.RecordID = id
		}
	}

	return out, nil
}

// DataDir returns the platform-appropriate data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "fincast")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "fincast")
}

// HistoryPath returns the full path to the history database.
func HistoryPath() string {
	return filepath.Join(DataDir(), "history.db")
}

// OpenHistory opens the default history database.
func OpenHistory() (*store.History, error) {
	h, err := store.Open(HistoryPath())
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	return h, nil
}
