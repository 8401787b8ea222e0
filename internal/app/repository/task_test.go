package repository

import (
	"testing"

	"renovation/internal/app/ds"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func titles(tasks []ds.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}

func positions(tasks []ds.Task) []int {
	out := make([]int, len(tasks))
	for i, t := range tasks {
		out[i] = t.Position
	}
	return out
}

func TestTaskBoard(t *testing.T) {
	r := newTestRepository(t)
	f := seed(t, r)

	var ids []uint
	for _, title := range []string{"Measure", "Order tiles", "Book plumber"} {
		task := &ds.Task{ProjectID: f.project.ID, Title: title, CreatedByID: f.user.ID}
		require.NoError(t, r.CreateTask(task))
		ids = append(ids, task.ID)
	}
	done := &ds.Task{ProjectID: f.project.ID, Title: "Kickoff", Column: ds.TaskDone, CreatedByID: f.user.ID}
	require.NoError(t, r.CreateTask(done))

	board, err := r.Board(f.project.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Measure", "Order tiles", "Book plumber"}, titles(board[ds.TaskTodo]))
	assert.Empty(t, board[ds.TaskInProgress])
	assert.Len(t, board, len(ds.TaskColumns))

	_, err = r.MoveTask(ids[2], ds.TaskTodo, 0)
	require.NoError(t, err)
	board, err = r.Board(f.project.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Book plumber", "Measure", "Order tiles"}, titles(board[ds.TaskTodo]))
	assert.Equal(t, []int{0, 1, 2}, positions(board[ds.TaskTodo]))

	moved, err := r.MoveTask(ids[0], ds.TaskDone, 99)
	require.NoError(t, err)
	assert.Equal(t, ds.TaskDone, moved.Column)
	assert.Equal(t, 1, moved.Position)

	board, err = r.Board(f.project.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Book plumber", "Order tiles"}, titles(board[ds.TaskTodo]))
	assert.Equal(t, []int{0, 1}, positions(board[ds.TaskTodo]))
	assert.Equal(t, []string{"Kickoff", "Measure"}, titles(board[ds.TaskDone]))

	_, err = r.DeleteTask(ids[2])
	require.NoError(t, err)
	board, err = r.Board(f.project.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, positions(board[ds.TaskTodo]))

	_, err = r.MoveTask(ids[1], "someday", 0)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = r.MoveTask(999, ds.TaskTodo, 0)
	assert.ErrorIs(t, err, ErrNotFound)
}
