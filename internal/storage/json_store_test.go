package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/noahxzhu/hydrate/internal/hydration"
	"github.com/noahxzhu/hydrate/internal/model"
)

var settings = model.Settings{
	DailyGoalMl:        3500,
	PerSessionAmountMl: 300,
	WindowStartMinute:  480,
	WindowEndMinute:    1290,
	GraceMinutes:       15,
}

func newTestStore(t *testing.T) (*Store, string) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	return NewStore(path), path
}

func TestLoadMissingFile(t *testing.T) {
	s, _ := newTestStore(t)

	rec, prior := s.Load("2026-10-15", settings)
	if prior != nil {
		t.Fatal("Expected no prior record")
	}
	if rec.DateKey != "2026-10-15" || rec.Intake != 0 || len(rec.Reminders) != 12 {
		t.Fatalf("Expected a fresh day, got %+v", rec)
	}
}

func TestSaveAndLoadSameDay(t *testing.T) {
	s, _ := newTestStore(t)

	rec := hydration.NewDay("2026-10-15", settings)
	rec.Intake = 900
	rec.Reminders[0].State = model.StateDone
	rec.Reminders[1].State = model.StateMissed
	rec.Reminders[2].Notified = true
	rec.MilestonesSent[0] = true
	if err := s.Save(rec); err != nil {
		t.Fatal(err)
	}

	got, prior := s.Load("2026-10-15", settings)
	if prior != nil {
		t.Fatal("Expected no prior record on the same day")
	}
	if got.Intake != 900 || got.Reminders[0].State != model.StateDone || got.Reminders[1].State != model.StateMissed {
		t.Fatalf("Record did not survive a reload: %+v", got)
	}
	if !got.Reminders[2].Notified || !got.MilestonesSent[0] || got.MilestonesSent[1] {
		t.Fatalf("Idempotency flags did not survive a reload: %+v", got)
	}
}

func TestLoadOtherDayReturnsPrior(t *testing.T) {
	s, _ := newTestStore(t)

	old := hydration.NewDay("2026-10-13", settings)
	old.Intake = 2100
	if err := s.Save(old); err != nil {
		t.Fatal(err)
	}

	rec, prior := s.Load("2026-10-15", settings)
	if prior == nil || prior.DateKey != "2026-10-13" || prior.Intake != 2100 {
		t.Fatalf("Expected the stale record as prior, got %+v", prior)
	}
	if rec.DateKey != "2026-10-15" || rec.Intake != 0 {
		t.Fatalf("Expected a fresh day, got %+v", rec)
	}
}

func TestLoadDiscardsBadState(t *testing.T) {
	tests := map[string]string{
		"empty":     "",
		"malformed": "{not json",
		"version":   `{"version": 1, "record": {"date_key": "2026-10-15", "intake": 800}}`,
		"no record": `{"version": 3}`,
		"negative intake": `{"version": 3, "record": {"date_key": "2026-10-15", "intake": -400,
			"reminders": [{"time": 480, "target_amount": 300, "state": "Upcoming"}]}}`,
		"intake over goal": `{"version": 3, "record": {"date_key": "2026-10-15", "intake": 9000, "reminders": []}}`,
		"unknown state": `{"version": 3, "record": {"date_key": "2026-10-15", "intake": 0,
			"reminders": [{"time": 480, "target_amount": 300, "state": "Bogus"}]}}`,
		"time outside day": `{"version": 3, "record": {"date_key": "2026-10-15", "intake": 0,
			"reminders": [{"time": 1500, "target_amount": 300, "state": "Upcoming"}]}}`,
		"times out of order": `{"version": 3, "record": {"date_key": "2026-10-15", "intake": 0,
			"reminders": [{"time": 600, "target_amount": 300, "state": "Upcoming"},
			{"time": 480, "target_amount": 300, "state": "Upcoming"}]}}`,
		"bad date key": `{"version": 3, "record": {"date_key": "yesterday", "intake": 0, "reminders": []}}`,
		"invalid prior day": `{"version": 3, "record": {"date_key": "2026-10-14", "intake": 200,
			"reminders": [{"time": 480, "target_amount": 300, "state": "Bogus"}]}}`,
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			s, path := newTestStore(t)
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				t.Fatal(err)
			}

			rec, prior := s.Load("2026-10-15", settings)
			if prior != nil {
				t.Fatalf("Discarded state must not be archived, got %+v", prior)
			}
			if rec.DateKey != "2026-10-15" || rec.Intake != 0 || len(rec.Reminders) != 12 {
				t.Fatalf("Expected a fresh day, got %+v", rec)
			}
			for _, r := range rec.Reminders {
				if r.State != model.StateUpcoming {
					t.Fatalf("Expected fresh reminders, got %s at %d", r.State, r.Time)
				}
			}
		})
	}
}

func TestLoadKeepsCollapsedSchedule(t *testing.T) {
	s, _ := newTestStore(t)

	collapsed := settings
	collapsed.WindowEndMinute = collapsed.WindowStartMinute
	rec := hydration.NewDay("2026-10-15", collapsed)
	rec.Intake = 600
	if err := s.Save(rec); err != nil {
		t.Fatal(err)
	}

	got, _ := s.Load("2026-10-15", collapsed)
	if got.Intake != 600 {
		t.Fatalf("Reminders sharing a minute must still load, got %+v", got)
	}
}

func TestLoadFutureDayIsNotArchived(t *testing.T) {
	s, _ := newTestStore(t)

	future := hydration.NewDay("2026-10-17", settings)
	future.Intake = 1500
	if err := s.Save(future); err != nil {
		t.Fatal(err)
	}

	rec, prior := s.Load("2026-10-15", settings)
	if prior != nil {
		t.Fatalf("A record dated after today must not be returned as prior, got %+v", prior)
	}
	if rec.DateKey != "2026-10-15" || rec.Intake != 0 {
		t.Fatalf("Expected a fresh day, got %+v", rec)
	}
}

func TestSaveOverwrites(t *testing.T) {
	s, _ := newTestStore(t)

	rec := hydration.NewDay("2026-10-15", settings)
	rec.Intake = 100
	if err := s.Save(rec); err != nil {
		t.Fatal(err)
	}
	rec.Intake = 400
	if err := s.Save(rec); err != nil {
		t.Fatal(err)
	}

	got, _ := s.Load("2026-10-15", settings)
	if got.Intake != 400 {
		t.Fatalf("Expected 400 after overwrite, got %d", got.Intake)
	}
}
