package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"renovation/internal/app/dto"
	"renovation/internal/app/ws"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) createTask(title, column string) dto.TaskResponse {
	e.t.Helper()
	w := e.do(http.MethodPost, fmt.Sprintf("/api/projects/%d/tasks", e.project.ID), e.designer,
		dto.CreateTaskRequest{Title: title, Column: column})
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	var task dto.TaskResponse
	data(e.t, w, &task)
	return task
}

func (e *testEnv) board() map[string][]dto.TaskResponse {
	e.t.Helper()
	w := e.do(http.MethodGet, fmt.Sprintf("/api/projects/%d/board", e.project.ID), e.designer, nil)
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())
	var b boardResponse
	data(e.t, w, &b)
	return b.Columns
}

func titles(tasks []dto.TaskResponse) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}

func TestBoardMoveRenumbersColumns(t *testing.T) {
	env := newTestEnv(t)
	demo := env.createTask("Demolition", "")
	plumbing := env.createTask("Plumbing rough-in", "todo")
	env.createTask("Electrical", "todo")
	paint := env.createTask("Paint", "in_progress")

	assert.Equal(t, "todo", demo.Column, "new cards land in todo")
	assert.Equal(t, "medium", demo.Priority)
	assert.Equal(t, 1, plumbing.Position)

	w := env.do(http.MethodPatch, fmt.Sprintf("/api/tasks/%d/move", plumbing.ID), env.designer,
		dto.MoveTaskRequest{Column: "in_progress", Position: 0})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(http.MethodPatch, fmt.Sprintf("/api/tasks/%d/move", demo.ID), env.designer,
		dto.MoveTaskRequest{Column: "done", Position: 10})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var moved dto.TaskResponse
	data(t, w, &moved)
	assert.Equal(t, 0, moved.Position, "positions past the end are clamped")

	board := env.board()
	assert.Equal(t, []string{"Electrical"}, titles(board["todo"]))
	assert.Equal(t, []string{"Plumbing rough-in", "Paint"}, titles(board["in_progress"]))
	assert.Empty(t, board["review"])
	assert.Equal(t, []string{"Demolition"}, titles(board["done"]))
	for column, tasks := range board {
		for i, task := range tasks {
			assert.Equal(t, i, task.Position, "column %s is densely numbered", column)
		}
	}

	w = env.do(http.MethodPatch, fmt.Sprintf("/api/tasks/%d/move", paint.ID), env.designer,
		map[string]interface{}{"column": "backlog", "position": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodDelete, fmt.Sprintf("/api/tasks/%d", plumbing.ID), env.designer, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	board = env.board()
	require.Len(t, board["in_progress"], 1)
	assert.Equal(t, 0, board["in_progress"][0].Position)
}

func TestUpdateTask(t *testing.T) {
	env := newTestEnv(t)
	task := env.createTask("Order tiles", "todo")

	title, priority := "Order bathroom tiles", "high"
	w := env.do(http.MethodPut, fmt.Sprintf("/api/tasks/%d", task.ID), env.designer, dto.UpdateTaskRequest{
		Title:      &title,
		Priority:   &priority,
		AssigneeID: &env.manager.ID,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data(t, w, &task)
	assert.Equal(t, title, task.Title)
	assert.Equal(t, "high", task.Priority)
	require.NotNil(t, task.AssigneeID)
	assert.Equal(t, env.manager.ID, *task.AssigneeID)

	w = env.do(http.MethodPut, "/api/tasks/9999", env.designer, dto.UpdateTaskRequest{Title: &title})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBoardSocketReceivesTaskEvents(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.router)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") +
		fmt.Sprintf("/ws/projects/%d/board?token=%s", env.project.ID, env.token(env.manager))

	_, resp, err := websocket.DefaultDialer.Dial(strings.Split(url, "?")[0], nil)
	require.Error(t, err, "the socket needs a token")
	if resp != nil {
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.Eventually(t, func() bool {
		return env.api.Hub.Viewers(env.project.ID) == 1
	}, time.Second, 10*time.Millisecond)

	task := env.createTask("Install vanity", "todo")

	var ev ws.Event
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, ws.TaskCreated, ev.Type)
	assert.Equal(t, env.project.ID, ev.ProjectID)
	assert.EqualValues(t, task.ID, ev.Task.(map[string]interface{})["id"])

	w := env.do(http.MethodPatch, fmt.Sprintf("/api/tasks/%d/move", task.ID), env.designer,
		dto.MoveTaskRequest{Column: "review"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var moved ws.Event
	require.NoError(t, conn.ReadJSON(&moved))
	assert.Equal(t, ws.TaskMoved, moved.Type)
	assert.Equal(t, "review", moved.Task.(map[string]interface{})["column"])

	assert.Equal(t, 1, boardViewers(t, env))
}

func boardViewers(t *testing.T, env *testEnv) int {
	t.Helper()
	w := env.do(http.MethodGet, fmt.Sprintf("/api/projects/%d/board", env.project.ID), env.designer, nil)
	var b boardResponse
	data(t, w, &b)
	return b.Viewers
}
