package hydration

import (
	"math"

	"github.com/noahxzhu/hydrate/internal/model"
)

type ReminderView struct {
	Time         int                 `json:"time"`
	Clock        string              `json:"clock"`
	TargetAmount int                 `json:"target_amount"`
	State        model.ReminderState `json:"state"`
}

// Snapshot is a read-only copy of the live record prepared for display.
type Snapshot struct {
	DateKey   string         `json:"date_key"`
	Intake    int            `json:"intake"`
	Goal      int            `json:"goal"`
	Percent   int            `json:"percent"`
	Reminders []ReminderView `json:"reminders"`
	Next      *ReminderView  `json:"next,omitempty"`
}

func (s Snapshot) NextLabel() string {
	if s.Next == nil {
		return "No more reminders today"
	}
	return s.Next.Clock
}

// Percent returns intake as a rounded percentage of goal, clamped to 0..100.
func Percent(intake, goal int) int {
	if goal <= 0 {
		return 0
	}
	p := math.Round(float64(intake) * 100 / float64(goal))
	return int(math.Min(math.Max(p, 0), 100))
}

func snapshotOf(rec *model.DailyRecord, goal int) Snapshot {
	s := Snapshot{
		DateKey:   rec.DateKey,
		Intake:    rec.Intake,
		Goal:      goal,
		Percent:   Percent(rec.Intake, goal),
		Reminders: make([]ReminderView, 0, len(rec.Reminders)),
	}
	for _, r := range rec.Reminders {
		s.Reminders = append(s.Reminders, ReminderView{
			Time:         r.Time,
			Clock:        r.Clock(),
			TargetAmount: r.TargetAmount,
			State:        r.State,
		})
	}
	if next := NextUpcoming(rec); next != nil {
		for i := range s.Reminders {
			if s.Reminders[i].Time == next.Time && s.Reminders[i].State == model.StateUpcoming {
				s.Next = &s.Reminders[i]
				break
			}
		}
	}
	return s
}
