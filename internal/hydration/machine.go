package hydration

import (
	"errors"
	"fmt"
	"time"

	"github.com/noahxzhu/hydrate/internal/model"
)

var (
	ErrInvalidAmount = errors.New("intake amount must be positive")

	// ErrAlreadyArchived is returned by an Archiver when the date already has
	// an entry. History entries are never overwritten.
	ErrAlreadyArchived = errors.New("history entry already archived")
)

// Reconcile advances Upcoming reminders against the clock. A reminder more
// than grace minutes past due becomes Missed; one that has come due but is
// still inside grace gets a single due alert. Done and Missed reminders are
// never touched. It reports whether anything changed.
func Reconcile(rec *model.DailyRecord, nowMinute, graceMinutes int, n Notifier) bool {
	changed := false
	for i := range rec.Reminders {
		r := &rec.Reminders[i]
		if r.State != model.StateUpcoming {
			continue
		}

		switch {
		case nowMinute > r.Time+graceMinutes:
			r.State = model.StateMissed
			changed = true
			n.NotifyMissed(*r)
		case nowMinute >= r.Time && !r.Notified:
			r.Notified = true
			changed = true
			n.NotifyDue(*r)
		}
	}
	return changed
}

// RecordIntake adds amountMl (capped at the goal), completes the earliest
// Upcoming reminder whatever its time or target, and announces newly crossed
// milestones.
func RecordIntake(rec *model.DailyRecord, amountMl, dailyGoal int, n Notifier) error {
	if amountMl <= 0 {
		return ErrInvalidAmount
	}

	rec.Intake += amountMl
	if rec.Intake > dailyGoal {
		rec.Intake = dailyGoal
	}

	if r := NextUpcoming(rec); r != nil {
		r.State = model.StateDone
	}

	for i, th := range model.Thresholds {
		if rec.MilestonesSent[i] || rec.Intake*100 < th*dailyGoal {
			continue
		}
		rec.MilestonesSent[i] = true
		n.NotifyMilestone(th)
		if th == 100 {
			n.NotifyGoalReached()
		}
	}
	return nil
}

// NextUpcoming returns the earliest reminder still Upcoming, or nil.
func NextUpcoming(rec *model.DailyRecord) *model.Reminder {
	var next *model.Reminder
	for i := range rec.Reminders {
		r := &rec.Reminders[i]
		if r.State != model.StateUpcoming {
			continue
		}
		if next == nil || r.Time < next.Time {
			next = r
		}
	}
	return next
}

// ValidateRecord checks that rec obeys the data model for the given plan:
// a real date, intake within 0..goal, known reminder states, and times inside
// the day in non-decreasing order. Equal times are allowed because a zero gap
// schedules several reminders on the same minute.
func ValidateRecord(rec *model.DailyRecord, s model.Settings) error {
	if _, err := time.Parse(DateLayout, rec.DateKey); err != nil {
		return fmt.Errorf("invalid date key %q", rec.DateKey)
	}
	if rec.Intake < 0 || rec.Intake > s.DailyGoalMl {
		return fmt.Errorf("intake %d outside 0..%d", rec.Intake, s.DailyGoalMl)
	}
	for i, r := range rec.Reminders {
		switch r.State {
		case model.StateUpcoming, model.StateDone, model.StateMissed:
		default:
			return fmt.Errorf("reminder %d: unknown state %q", i, r.State)
		}
		if r.Time < 0 || r.Time > 1439 {
			return fmt.Errorf("reminder %d: time %d outside the day", i, r.Time)
		}
		if i > 0 && r.Time < rec.Reminders[i-1].Time {
			return fmt.Errorf("reminder %d: time %d before %d", i, r.Time, rec.Reminders[i-1].Time)
		}
		if r.TargetAmount < 0 {
			return fmt.Errorf("reminder %d: negative target %d", i, r.TargetAmount)
		}
	}
	return nil
}
