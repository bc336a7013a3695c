package tui

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/theirongolddev/fincast/internal/cli"
	"github.com/theirongolddev/fincast/internal/config"
	"github.com/theirongolddev/fincast/internal/model"
	"github.com/theirongolddev/fincast/internal/pipeline"
	"github.com/theirongolddev/fincast/internal/source"
	"github.com/theirongolddev/fincast/internal/tui/components"
	"github.com/theirongolddev/fincast/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// scenarioField is one editable assumption.
type scenarioField struct {
	label string
	unit  string
	get   func(s model.Scenario) string
	set   func(s *model.Scenario, v string) error
}

func floatField(label, unit string, ref func(s *model.Scenario) *float64) scenarioField {
	return scenarioField{
		label: label,
		unit:  unit,
		get: func(s model.Scenario) string {
			return strconv.FormatFloat(*ref(&s), 'f', -1, 64)
		},
		set: func(s *model.Scenario, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("%s: %q is not a number", strings.ToLower(label), v)
			}
			*ref(s) = f
			return nil
		},
	}
}

var scenarioFields = []scenarioField{
	{
		label: "Name",
		get:   func(s model.Scenario) string { return s.Name },
		set: func(s *model.Scenario, v string) error {
			if err := validateName(v); err != nil {
				return err
			}
			s.Name = v
			return nil
		},
	},
	floatField("Current balance", "£", func(s *model.Scenario) *float64 { return &s.CurrentBalance }),
	floatField("Savings balance", "£", func(s *model.Scenario) *float64 { return &s.SavingsBalance }),
	floatField("ISA balance", "£", func(s *model.Scenario) *float64 { return &s.ISABalance }),
	floatField("LISA balance", "£", func(s *model.Scenario) *float64 { return &s.LISABalance }),
	floatField("Savings interest", "%/yr", func(s *model.Scenario) *float64 { return &s.SavingsInterest }),
	floatField("ISA growth mean", "%/yr", func(s *model.Scenario) *float64 { return &s.ISAMean }),
	floatField("ISA growth std dev", "%/yr", func(s *model.Scenario) *float64 { return &s.ISAStdDev }),
	floatField("ISA payment", "£/wk", func(s *model.Scenario) *float64 { return &s.ISAWeeklyPayment }),
	floatField("LISA growth mean", "%/yr", func(s *model.Scenario) *float64 { return &s.LISAMean }),
	floatField("LISA growth std dev", "%/yr", func(s *model.Scenario) *float64 { return &s.LISAStdDev }),
	floatField("LISA payment", "£/wk", func(s *model.Scenario) *float64 { return &s.LISAWeeklyPayment }),
	floatField("Spending mean", "£/wk", func(s *model.Scenario) *float64 { return &s.SpendMean }),
	floatField("Spending std dev", "£/wk", func(s *model.Scenario) *float64 { return &s.SpendStdDev }),
	floatField("Annual inflow", "£/yr", func(s *model.Scenario) *float64 { return &s.AnnualInflow }),
	{
		label: "Weeks",
		get:   func(s model.Scenario) string { return strconv.Itoa(s.Weeks) },
		set: func(s *model.Scenario, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("weeks: %q is not a whole number", v)
			}
			s.Weeks = n
			return nil
		},
	},
}

// scenarioState tracks the scenario tab state.
type scenarioState struct {
	cursor  int
	editing bool
	input   textinput.Model
	err     error  // last edit or save error
	saved   string // path of the last successful write
	dirty   bool   // edited since last write
}

func (a App) scenarioStartEdit() (tea.Model, tea.Cmd) {
	f := scenarioFields[a.scen.cursor]

	ti := textinput.New()
	ti.CharLimit = 64
	ti.Width = 24
	ti.Placeholder = f.get(model.DefaultScenario())
	ti.SetValue(f.get(a.scenario))
	ti.Focus()

	a.scen.editing = true
	a.scen.err = nil
	a.scen.saved = ""
	a.scen.input = ti
	return a, ti.Cursor.BlinkCmd()
}

func (a App) updateScenarioInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.scen.editing = false
		cmd := a.scenarioCommit(strings.TrimSpace(a.scen.input.Value()))
		return a, cmd
	case "esc":
		a.scen.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.scen.input, cmd = a.scen.input.Update(msg)
	return a, cmd
}

// scenarioCommit applies an edited value and reprojects with the current
// seed, so the new result differs from the old one only by the edit.
func (a *App) scenarioCommit(val string) tea.Cmd {
	f := scenarioFields[a.scen.cursor]

	next := a.scenario
	if err := f.set(&next, val); err != nil {
		a.scen.err = err
		return nil
	}
	if next == a.scenario {
		return nil
	}
	if err := next.Validate(); err != nil {
		a.scen.err = err
		return nil
	}

	a.scenario = next
	a.scen.dirty = true

	var seed *uint64
	if a.result != nil {
		seed = pipeline.SeedPtr(a.result.Result.Seed)
	}
	return a.rerun(seed)
}

// scenarioPathOrDefault is where [w] writes the scenario.
func (a App) scenarioPathOrDefault() string {
	if a.scenarioPath != "" {
		return a.scenarioPath
	}
	return filepath.Join(config.ScenariosDir(), a.scenario.Name+".toml")
}

func (a *App) scenarioWrite() {
	path := a.scenarioPathOrDefault()
	if err := source.SaveScenario(path, a.scenario); err != nil {
		a.scen.err = err
		a.scen.saved = ""
		return
	}
	a.scenarioPath = path
	a.scen.err = nil
	a.scen.saved = path
	a.scen.dirty = false
}

func (a App) renderScenarioTab(cw int) string {
	t := theme.Active

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	unitStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	greenStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface)
	warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)

	formW, infoW := cw, cw
	if !a.isCompactLayout() {
		formW = cw * 3 / 5
		infoW = cw - formW
	}
	innerW := components.CardInnerWidth(formW)

	var form strings.Builder
	for i, f := range scenarioFields {
		label := fmt.Sprintf("%-20s ", f.label)

		if a.scen.editing && i == a.scen.cursor {
			form.WriteString(markerStyle.Render("▸ "))
			form.WriteString(accentStyle.Render(label))
			form.WriteString(a.scen.input.View())
			form.WriteString("\n")
			continue
		}

		if i == a.scen.cursor {
			line := markerStyle.Render("▸ ") +
				selectedLabelStyle.Render(label) +
				selectedStyle.Render(f.get(a.scenario)+" ") +
				lipgloss.NewStyle().Foreground(t.TextDim).Background(t.SurfaceBright).Render(f.unit)
			form.WriteString(line)
			if pad := innerW - lipgloss.Width(line); pad > 0 {
				form.WriteString(lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", pad)))
			}
		} else {
			form.WriteString(lipgloss.NewStyle().Background(t.Surface).Render("  "))
			form.WriteString(labelStyle.Render(label))
			form.WriteString(valueStyle.Render(f.get(a.scenario) + " "))
			form.WriteString(unitStyle.Render(f.unit))
		}
		form.WriteString("\n")
	}

	switch {
	case a.scen.err != nil:
		form.WriteString("\n")
		form.WriteString(warnStyle.Render(truncStr(a.scen.err.Error(), innerW)))
	case a.scen.saved != "":
		form.WriteString("\n")
		form.WriteString(greenStyle.Render(truncStr("Saved to "+a.scen.saved, innerW)))
	case a.scen.dirty:
		form.WriteString("\n")
		form.WriteString(warnStyle.Render("Unsaved changes"))
	}

	form.WriteString("\n")
	form.WriteString(labelStyle.Render("[j/k] navigate  [Enter] edit  [Esc] cancel  [w] write file"))

	// Projection info
	infoInner := components.CardInnerWidth(infoW)
	row := func(label, value string) string {
		return labelStyle.Render(fmt.Sprintf("%-10s", label)) + valueStyle.Render(truncStr(value, infoInner-10)) + "\n"
	}

	var info strings.Builder
	info.WriteString(row("File", a.scenarioPathOrDefault()))
	info.WriteString(row("Config", config.Path()))
	if a.recordHistory {
		info.WriteString(row("History", pipeline.HistoryPath()))
	} else {
		info.WriteString(row("History", "off"))
	}
	info.WriteString(row("Runs", cli.FormatNumber(int64(a.runs))))
	if a.result != nil {
		info.WriteString(row("Seed", strconv.FormatUint(a.result.Result.Seed, 10)))
		if a.result.RecordID != "" {
			info.WriteString(row("Record", a.result.RecordID[:8]))
		}
	}
	info.WriteString(row("Elapsed", fmt.Sprintf("%.2fs", a.elapsed.Seconds())))
	if a.err != nil {
		info.WriteString("\n")
		info.WriteString(warnStyle.Render(truncStr(a.err.Error(), infoInner)))
	}

	formCard := components.ContentCard("Assumptions", strings.TrimSuffix(form.String(), "\n"), formW)
	infoCard := components.ContentCard("Projection", strings.TrimSuffix(info.String(), "\n"), infoW)

	if a.isCompactLayout() {
		return formCard + "\n" + infoCard
	}
	return components.CardRow([]string{formCard, infoCard})
}
