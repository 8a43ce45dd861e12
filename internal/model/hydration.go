package model

import "fmt"

type ReminderState string

const (
	StateUpcoming ReminderState = "Upcoming"
	StateDone     ReminderState = "Done"
	StateMissed   ReminderState = "Missed"
)

// Reminder is one scheduled hydration prompt. Time is minutes since midnight.
type Reminder struct {
	Time         int           `json:"time"`
	TargetAmount int           `json:"target_amount"`
	State        ReminderState `json:"state"`
	Notified     bool          `json:"notified"`
}

func (r Reminder) Clock() string {
	return FormatMinutes(r.Time)
}

// Thresholds are the progress percentages that trigger a milestone alert.
var Thresholds = [4]int{25, 50, 75, 100}

// Milestones records which of Thresholds have already been announced today.
type Milestones [4]bool

type DailyRecord struct {
	DateKey        string     `json:"date_key"`
	Intake         int        `json:"intake"`
	Reminders      []Reminder `json:"reminders"`
	MilestonesSent Milestones `json:"milestones_sent"`
}

// Settings is the hydration plan. It is fixed for the lifetime of the process.
type Settings struct {
	DailyGoalMl        int
	PerSessionAmountMl int
	WindowStartMinute  int
	WindowEndMinute    int
	GraceMinutes       int
}

type HistoryEntry struct {
	DateKey string `json:"date_key"`
	Intake  int    `json:"intake"`
}

// AppSchema is the persisted envelope. A Version other than the running build's
// causes the whole state to be discarded.
type AppSchema struct {
	Version int          `json:"version"`
	Record  *DailyRecord `json:"record"`
}

// FormatMinutes renders minutes since midnight as a 12h clock, e.g. "9:14 PM".
func FormatMinutes(mins int) string {
	h := mins / 60
	m := mins % 60
	hh := h % 12
	if hh == 0 {
		hh = 12
	}
	ampm := "AM"
	if h >= 12 {
		ampm = "PM"
	}
	return fmt.Sprintf("%d:%02d %s", hh, m, ampm)
}

// PushSubscription is a browser Web Push endpoint registered by the dashboard.
type PushSubscription struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}
