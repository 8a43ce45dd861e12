package hydration

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/noahxzhu/hydrate/internal/model"
)

const DateLayout = "2006-01-02"

// DateKey is the local calendar date of t.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// MinuteOfDay is the number of minutes since local midnight.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// Tracker owns the single live DailyRecord. The tick and user actions both go
// through it, one at a time. The update callback runs after the lock is
// released, so a slow consumer never holds up the next action.
type Tracker struct {
	mu       sync.Mutex
	settings model.Settings
	store    StateStore
	archiver Archiver
	notifier Notifier
	now      func() time.Time
	record   *model.DailyRecord
	onUpdate func(Snapshot)
}

func NewTracker(settings model.Settings, store StateStore, archiver Archiver, notifier Notifier) *Tracker {
	if notifier == nil {
		notifier = NopNotifier
	}
	return &Tracker{
		settings: settings,
		store:    store,
		archiver: archiver,
		notifier: notifier,
		now:      time.Now,
	}
}

// SetClock replaces the time source.
func (t *Tracker) SetClock(now func() time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.now = now
}

// SetOnUpdate sets a callback invoked with a fresh snapshot after every change.
func (t *Tracker) SetOnUpdate(fn func(Snapshot)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onUpdate = fn
}

func (t *Tracker) Settings() model.Settings {
	return t.settings
}

// Open loads today's record, archiving the persisted one if it belongs to an
// earlier day, and persists the result. Any other method loads lazily when
// Open has not been called.
func (t *Tracker) Open() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.load(t.now())
}

// Tick rolls the day over when needed and reconciles reminders with the clock.
func (t *Tracker) Tick() Snapshot {
	t.mu.Lock()

	now := t.now()
	t.ensureRecord(now)
	rolled := t.rollover(now)
	changed := Reconcile(t.record, MinuteOfDay(now), t.settings.GraceMinutes, t.notifier)

	t.persist()
	snap := snapshotOf(t.record, t.settings.DailyGoalMl)
	onUpdate := t.onUpdate
	t.mu.Unlock()

	if (rolled || changed) && onUpdate != nil {
		onUpdate(snap)
	}
	return snap
}

// RecordIntake applies a "drank amountMl" action to today's record.
func (t *Tracker) RecordIntake(amountMl int) (Snapshot, error) {
	t.mu.Lock()

	now := t.now()
	t.ensureRecord(now)
	t.rollover(now)
	if err := RecordIntake(t.record, amountMl, t.settings.DailyGoalMl, t.notifier); err != nil {
		snap := snapshotOf(t.record, t.settings.DailyGoalMl)
		t.mu.Unlock()
		return snap, err
	}
	slog.Info("Intake recorded", "amount_ml", amountMl, "total_ml", t.record.Intake, "date", t.record.DateKey)

	t.persist()
	snap := snapshotOf(t.record, t.settings.DailyGoalMl)
	onUpdate := t.onUpdate
	t.mu.Unlock()

	if onUpdate != nil {
		onUpdate(snap)
	}
	return snap, nil
}

func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ensureRecord(t.now())
	return snapshotOf(t.record, t.settings.DailyGoalMl)
}

func (t *Tracker) ensureRecord(now time.Time) {
	if t.record == nil {
		t.load(now)
	}
}

func (t *Tracker) load(now time.Time) {
	rec, prior := t.store.Load(DateKey(now), t.settings)
	if prior != nil {
		t.archive(prior)
	}
	t.record = rec
	t.persist()
}

// rollover replaces a record from another day. Only a record from an earlier
// day is archived; days with no record at all leave no history entry, and a
// record dated after today (clock moved back) is dropped unarchived.
func (t *Tracker) rollover(now time.Time) bool {
	today := DateKey(now)
	if t.record.DateKey == today {
		return false
	}
	if t.record.DateKey < today {
		t.archive(t.record)
		slog.Info("Day rolled over", "from", t.record.DateKey, "to", today)
	} else {
		slog.Warn("Record dated after today, discarding", "date", t.record.DateKey, "today", today)
	}
	t.record = NewDay(today, t.settings)
	return true
}

func (t *Tracker) archive(rec *model.DailyRecord) {
	if t.archiver == nil {
		return
	}
	if err := t.archiver.Archive(rec.DateKey, rec.Intake); err != nil {
		if errors.Is(err, ErrAlreadyArchived) {
			slog.Warn("History entry already present", "date", rec.DateKey)
			return
		}
		slog.Error("Failed to archive day", "date", rec.DateKey, "error", err)
	}
}

func (t *Tracker) persist() {
	if err := t.store.Save(t.record); err != nil {
		slog.Error("Failed to save state", "error", err)
	}
}
