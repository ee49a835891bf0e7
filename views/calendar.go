package views

import (
	"taskboard-service/models"
)

// DateKeyLayout keys calendar buckets at day precision.
const DateKeyLayout = "2006-01-02"

// GroupByDueDate buckets tasks by due day. Tasks without a due date do
// not appear on the calendar.
func GroupByDueDate(tasks []models.Task) map[string][]models.Task {
	byDay := make(map[string][]models.Task)
	for _, t := range tasks {
		if t.DueDate == nil {
			continue
		}
		key := t.DueDate.Format(DateKeyLayout)
		byDay[key] = append(byDay[key], t)
	}
	return byDay
}
