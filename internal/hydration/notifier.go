package hydration

import "github.com/noahxzhu/hydrate/internal/model"

// Notifier receives alerts from the core. Implementations must not block;
// delivery is best effort and nothing is returned to the caller.
type Notifier interface {
	NotifyDue(r model.Reminder)
	NotifyMissed(r model.Reminder)
	NotifyMilestone(percent int)
	NotifyGoalReached()
}

// Archiver stores the final intake of a finished day.
type Archiver interface {
	Archive(dateKey string, intake int) error
}

// StateStore persists the single live DailyRecord. Load returns the record for
// today and, when the persisted one belonged to another day, that prior record.
type StateStore interface {
	Load(today string, s model.Settings) (rec *model.DailyRecord, prior *model.DailyRecord)
	Save(rec *model.DailyRecord) error
}

type nopNotifier struct{}

func (nopNotifier) NotifyDue(model.Reminder)    {}
func (nopNotifier) NotifyMissed(model.Reminder) {}
func (nopNotifier) NotifyMilestone(int)         {}
func (nopNotifier) NotifyGoalReached()          {}

// NopNotifier discards every alert.
var NopNotifier Notifier = nopNotifier{}
