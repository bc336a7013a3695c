package model

import (
	"fmt"
	"strings"
)

// Account identifies one of the four modelled accounts.
type Account int

// Accounts in their fixed reporting order.
const (
	Current Account = iota
	Savings
	ISA
	LISA
)

// Accounts lists every account in reporting order.
var Accounts = []Account{Current, Savings, ISA, LISA}

func (a Account) String() string {
	switch a {
	case Current:
		return "Current Account"
	case Savings:
		return "Savings Account"
	case ISA:
		return "ISA"
	case LISA:
		return "LISA"
	}
	return fmt.Sprintf("Account(%d)", int(a))
}

// Key returns the short lowercase identifier used in flags and storage.
func (a Account) Key() string {
	switch a {
	case Current:
		return "current"
	case Savings:
		return "savings"
	case ISA:
		return "isa"
	case LISA:
		return "lisa"
	}
	return ""
}

// ParseAccount accepts an account key or display name, case-insensitively.
func ParseAccount(s string) (Account, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, a := range Accounts {
		if s == a.Key() || s == strings.ToLower(a.String()) {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown account %q", s)
}

// Trajectory is one simulated run: a week-by-week balance series per account.
// Every series has the same length and index 0 holds the initial balance.
type Trajectory struct {
	Current []float64
	Savings []float64
	ISA     []float64
	LISA    []float64
}

// NewTrajectory allocates a trajectory of the given number of weeks.
func NewTrajectory(weeks int) Trajectory {
	return Trajectory{
		Current: make([]float64, weeks),
		Savings: make([]float64, weeks),
		ISA:     make([]float64, weeks),
		LISA:    make([]float64, weeks),
	}
}

// Len returns the number of weeks in the trajectory.
func (t Trajectory) Len() int {
	return len(t.Current)
}

// Balances returns the series for one account. Callers must not modify it.
func (t Trajectory) Balances(a Account) []float64 {
	switch a {
	case Current:
		return t.Current
	case Savings:
		return t.Savings
	case ISA:
		return t.ISA
	case LISA:
		return t.LISA
	}
	return nil
}

// At returns the balance of an account at a week.
func (t Trajectory) At(a Account, week int) float64 {
	return t.Balances(a)[week]
}

// Final returns the last-week balance of an account.
func (t Trajectory) Final(a Account) float64 {
	b := t.Balances(a)
	return b[len(b)-1]
}

// Liquid returns current plus savings at a week.
func (t Trajectory) Liquid(week int) float64 {
	return t.Current[week] + t.Savings[week]
}

// Total returns the sum of all four accounts at a week.
func (t Trajectory) Total(week int) float64 {
	return t.Current[week] + t.Savings[week] + t.ISA[week] + t.LISA[week]
}
