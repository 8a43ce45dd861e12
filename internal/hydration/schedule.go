package hydration

import "github.com/noahxzhu/hydrate/internal/model"

// GenerateReminders spreads ceil(goal/perSession) reminders evenly across
// [windowStart, windowEnd). When the gap rounds down to zero the reminders
// share a minute.
func GenerateReminders(dailyGoal, perSessionAmount, windowStartMinute, windowEndMinute int) []model.Reminder {
	if dailyGoal <= 0 || perSessionAmount <= 0 {
		return nil
	}

	sessions := (dailyGoal + perSessionAmount - 1) / perSessionAmount
	gap := (windowEndMinute - windowStartMinute) / sessions
	if gap < 0 {
		gap = 0
	}

	reminders := make([]model.Reminder, 0, sessions)
	for i := 0; i < sessions; i++ {
		reminders = append(reminders, model.Reminder{
			Time:         windowStartMinute + i*gap,
			TargetAmount: perSessionAmount,
			State:        model.StateUpcoming,
		})
	}
	return reminders
}

// NewDay builds the record for a day nobody has touched yet.
func NewDay(dateKey string, s model.Settings) *model.DailyRecord {
	return &model.DailyRecord{
		DateKey:   dateKey,
		Reminders: GenerateReminders(s.DailyGoalMl, s.PerSessionAmountMl, s.WindowStartMinute, s.WindowEndMinute),
	}
}
