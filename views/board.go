package views

import "taskboard-service/models"

// BoardColumns is the kanban projection of a task snapshot: one column
// per status, input order preserved within each column.
type BoardColumns struct {
	Todo       []models.Task
	InProgress []models.Task
	Done       []models.Task
}

// GroupByStatus recomputes the board from the current snapshot. It is
// a pure function; derived columns are never mutated in place.
func GroupByStatus(tasks []models.Task) BoardColumns {
	var board BoardColumns
	for _, t := range tasks {
		switch t.Status {
		case models.StatusInProgress:
			board.InProgress = append(board.InProgress, t)
		case models.StatusDone:
			board.Done = append(board.Done, t)
		default:
			board.Todo = append(board.Todo, t)
		}
	}
	return board
}
