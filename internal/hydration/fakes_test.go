package hydration_test

import (
	"fmt"

	"github.com/noahxzhu/hydrate/internal/hydration"
	"github.com/noahxzhu/hydrate/internal/model"
)

type recordingNotifier struct {
	due        []int
	missed     []int
	milestones []int
	goal       int
}

func (n *recordingNotifier) NotifyDue(r model.Reminder)    { n.due = append(n.due, r.Time) }
func (n *recordingNotifier) NotifyMissed(r model.Reminder) { n.missed = append(n.missed, r.Time) }
func (n *recordingNotifier) NotifyMilestone(p int)         { n.milestones = append(n.milestones, p) }
func (n *recordingNotifier) NotifyGoalReached()            { n.goal++ }

type archiveCall struct {
	date   string
	intake int
}

type recordingArchiver struct {
	calls []archiveCall
	seen  map[string]bool
}

func (a *recordingArchiver) Archive(date string, intake int) error {
	if a.seen == nil {
		a.seen = map[string]bool{}
	}
	a.calls = append(a.calls, archiveCall{date, intake})
	if a.seen[date] {
		return fmt.Errorf("%s: %w", date, hydration.ErrAlreadyArchived)
	}
	a.seen[date] = true
	return nil
}

var defaultSettings = model.Settings{
	DailyGoalMl:        3500,
	PerSessionAmountMl: 300,
	WindowStartMinute:  480,
	WindowEndMinute:    1290,
	GraceMinutes:       15,
}

func newRecord() *model.DailyRecord {
	return hydration.NewDay("2026-10-15", defaultSettings)
}
