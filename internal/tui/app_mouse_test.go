package tui

import (
	"testing"

	"github.com/theirongolddev/fincast/internal/tui/components"
)

func TestTabAtXMatchesTabWidths(t *testing.T) {
	n := len(components.Tabs)
	for active := 0; active < n; active++ {
		a := App{activeTab: active}
		pos := 0

		for i := 0; i < n; i++ {
			w := tabWidthForTest(i)
			x := pos + w/2 // midpoint inside this tab
			if got := a.tabAtX(x); got != i {
				t.Fatalf("active=%d x=%d -> tab=%d, want %d", active, x, got, i)
			}
			pos += w
			if i < n-1 {
				pos++ // separator
			}
		}
	}
}

func TestTabAtXOutsideBar(t *testing.T) {
	a := App{}
	total := 0
	for i := range components.Tabs {
		total += tabWidthForTest(i) + 1
	}
	if got := a.tabAtX(total + 5); got != -1 {
		t.Fatalf("tabAtX past the bar = %d, want -1", got)
	}
}

func tabWidthForTest(tabIdx int) int {
	nameWidths := []int{
		len("Overview"),
		len("Accounts"),
		len("Trajectories"),
		len("Scenario"),
	}
	return nameWidths[tabIdx] + 2 // one column of padding each side
}
