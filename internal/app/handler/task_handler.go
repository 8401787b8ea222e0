package handler

import (
	"net/http"

	"renovation/internal/app/ds"
	"renovation/internal/app/dto"
	"renovation/internal/app/repository"
	"renovation/internal/app/ws"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type boardResponse struct {
	ProjectID uint                          `json:"project_id"`
	Columns   map[string][]dto.TaskResponse `json:"columns"`
	Viewers   int                           `json:"viewers"`
}

func (h *APIHandler) broadcastTask(eventType string, t *ds.Task) {
	if h.Hub == nil {
		return
	}
	h.Hub.Broadcast(t.ProjectID, eventType, toTaskResponse(t))
}

// GetBoard returns the project kanban
// @Summary Task board
// @Tags Tasks
// @Produce json
// @Security BearerAuth
// @Param id path int true "Project ID"
// @Success 200 {object} boardResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/projects/{id}/board [get]
func (h *APIHandler) GetBoard(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}
	if _, err := h.Repository.GetProject(projectID); err != nil {
		repoError(c, err, "failed to load project")
		return
	}

	board, err := h.Repository.Board(projectID)
	if err != nil {
		repoError(c, err, "failed to load board")
		return
	}

	resp := boardResponse{ProjectID: projectID, Columns: map[string][]dto.TaskResponse{}}
	for _, column := range ds.TaskColumns {
		tasks := board[column]
		out := make([]dto.TaskResponse, len(tasks))
		for i := range tasks {
			out[i] = toTaskResponse(&tasks[i])
		}
		resp.Columns[column] = out
	}
	if h.Hub != nil {
		resp.Viewers = h.Hub.Viewers(projectID)
	}
	successResponse(c, http.StatusOK, "", resp)
}

// CreateTask adds a card to the end of a column
// @Summary Create task
// @Tags Tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Project ID"
// @Param request body dto.CreateTaskRequest true "Task"
// @Success 201 {object} dto.TaskResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/projects/{id}/tasks [post]
func (h *APIHandler) CreateTask(c *gin.Context) {
	userID, _, err := h.getUserFromContext(c)
	if err != nil {
		errorResponse(c, http.StatusUnauthorized, err.Error())
		return
	}
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	task := ds.Task{
		ProjectID:   projectID,
		Title:       req.Title,
		Description: req.Description,
		Column:      req.Column,
		Priority:    req.Priority,
		AssigneeID:  req.AssigneeID,
		DueDate:     req.DueDate,
		CreatedByID: userID,
	}
	if task.Priority == "" {
		task.Priority = "medium"
	}
	if err := h.Repository.CreateTask(&task); err != nil {
		repoError(c, err, "failed to create task")
		return
	}

	logrus.Infof("Task %d created on project %d by user %d", task.ID, projectID, userID)
	h.broadcastTask(ws.TaskCreated, &task)
	successResponse(c, http.StatusCreated, "task created", toTaskResponse(&task))
}

// UpdateTask edits a card
// @Summary Update task
// @Tags Tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Param request body dto.UpdateTaskRequest true "Fields to change"
// @Success 200 {object} dto.TaskResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/tasks/{id} [put]
func (h *APIHandler) UpdateTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	task, err := h.Repository.UpdateTask(id, repository.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		AssigneeID:  req.AssigneeID,
		DueDate:     req.DueDate,
	})
	if err != nil {
		repoError(c, err, "failed to update task")
		return
	}

	h.broadcastTask(ws.TaskUpdated, task)
	successResponse(c, http.StatusOK, "task updated", toTaskResponse(task))
}

// MoveTask drags a card to a column and position
// @Summary Move task
// @Description Positions in the source and target columns are renumbered.
// @Tags Tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Param request body dto.MoveTaskRequest true "Target"
// @Success 200 {object} dto.TaskResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/tasks/{id}/move [patch]
func (h *APIHandler) MoveTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req dto.MoveTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	task, err := h.Repository.MoveTask(id, req.Column, req.Position)
	if err != nil {
		repoError(c, err, "failed to move task")
		return
	}

	h.broadcastTask(ws.TaskMoved, task)
	successResponse(c, http.StatusOK, "task moved", toTaskResponse(task))
}

// DeleteTask removes a card
// @Summary Delete task
// @Tags Tasks
// @Produce json
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/tasks/{id} [delete]
func (h *APIHandler) DeleteTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	task, err := h.Repository.DeleteTask(id)
	if err != nil {
		repoError(c, err, "failed to delete task")
		return
	}

	h.broadcastTask(ws.TaskDeleted, task)
	successResponse(c, http.StatusOK, "task deleted", nil)
}

// BoardSocket upgrades to a websocket that streams board events
// @Summary Board live updates
// @Description Browsers pass the JWT as ?token= since they cannot set headers on upgrade.
// @Tags Tasks
// @Security BearerAuth
// @Param id path int true "Project ID"
// @Param token query string false "JWT"
// @Router /ws/projects/{id}/board [get]
func (h *APIHandler) BoardSocket(c *gin.Context) {
	userID, _, err := h.getUserFromContext(c)
	if err != nil {
		errorResponse(c, http.StatusUnauthorized, err.Error())
		return
	}
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}
	if h.Hub == nil {
		errorResponse(c, http.StatusServiceUnavailable, "live board is disabled")
		return
	}
	if _, err := h.Repository.GetProject(projectID); err != nil {
		repoError(c, err, "failed to load project")
		return
	}

	// Upgrade writes its own error response.
	if err := h.Hub.Serve(c.Writer, c.Request, projectID, userID); err != nil {
		logrus.Warnf("Board socket for project %d: %v", projectID, err)
	}
}
