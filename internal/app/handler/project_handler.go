package handler

import (
	"fmt"
	"net/http"
	"time"

	"renovation/internal/app/ds"
	"renovation/internal/app/dto"
	"renovation/internal/app/report"
	"renovation/internal/app/repository"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ListProjects returns projects
// @Summary List projects
// @Tags Projects
// @Produce json
// @Security BearerAuth
// @Param status query string false "active, on_hold, completed or archived"
// @Param query query string false "Search in project and client names"
// @Success 200 {object} dto.ListResponse
// @Router /api/projects [get]
func (h *APIHandler) ListProjects(c *gin.Context) {
	projects, err := h.Repository.ListProjects(repository.ProjectFilter{
		Status: c.Query("status"),
		Query:  c.Query("query"),
	})
	if err != nil {
		repoError(c, err, "failed to list projects")
		return
	}

	out := make([]dto.ProjectResponse, len(projects))
	for i := range projects {
		out[i] = toProjectResponse(&projects[i])
	}
	successResponse(c, http.StatusOK, "", dto.ListResponse{Items: out, Total: len(out)})
}

// GetProject returns one project
// @Summary Get project
// @Tags Projects
// @Produce json
// @Security BearerAuth
// @Param id path int true "Project ID"
// @Success 200 {object} dto.ProjectResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/projects/{id} [get]
func (h *APIHandler) GetProject(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	project, err := h.Repository.GetProject(id)
	if err != nil {
		repoError(c, err, "failed to load project")
		return
	}
	successResponse(c, http.StatusOK, "", toProjectResponse(project))
}

// CreateProject creates a project owned by the caller
// @Summary Create project
// @Tags Projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateProjectRequest true "Project"
// @Success 201 {object} dto.ProjectResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/projects [post]
func (h *APIHandler) CreateProject(c *gin.Context) {
	userID, _, err := h.getUserFromContext(c)
	if err != nil {
		errorResponse(c, http.StatusUnauthorized, err.Error())
		return
	}

	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	project := ds.Project{
		Name:          req.Name,
		ClientName:    req.ClientName,
		ClientEmail:   req.ClientEmail,
		Address:       req.Address,
		DefaultMarkup: req.DefaultMarkup,
		Budget:        req.Budget,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		OwnerID:       userID,
	}
	if err := h.Repository.CreateProject(&project); err != nil {
		repoError(c, err, "failed to create project")
		return
	}
	successResponse(c, http.StatusCreated, "project created", toProjectResponse(&project))
}

// UpdateProject changes project fields
// @Summary Update project
// @Tags Projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Project ID"
// @Param request body dto.UpdateProjectRequest true "Fields to change"
// @Success 200 {object} dto.ProjectResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/projects/{id} [put]
func (h *APIHandler) UpdateProject(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	project, err := h.Repository.UpdateProject(id, repository.ProjectUpdate{
		Name:          req.Name,
		ClientName:    req.ClientName,
		ClientEmail:   req.ClientEmail,
		Address:       req.Address,
		Status:        req.Status,
		DefaultMarkup: req.DefaultMarkup,
		Budget:        req.Budget,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
	})
	if err != nil {
		repoError(c, err, "failed to update project")
		return
	}
	successResponse(c, http.StatusOK, "project updated", toProjectResponse(project))
}

// ArchiveProject archives a project
// @Summary Archive project
// @Tags Projects
// @Produce json
// @Security BearerAuth
// @Param id path int true "Project ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/projects/{id} [delete]
func (h *APIHandler) ArchiveProject(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.Repository.ArchiveProject(id); err != nil {
		repoError(c, err, "failed to archive project")
		return
	}
	successResponse(c, http.StatusOK, "project archived", nil)
}

// ProjectReport downloads the project workbook
// @Summary Project Excel report
// @Description FFE schedule, purchase orders and invoices of the project as an xlsx workbook
// @Tags Projects
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param id path int true "Project ID"
// @Success 200 {file} file
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/projects/{id}/report.xlsx [get]
func (h *APIHandler) ProjectReport(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	summary, err := h.Repository.ProjectSummary(id)
	if err != nil {
		repoError(c, err, "failed to load project")
		return
	}

	data, err := report.ProjectWorkbook(summary)
	if err != nil {
		logrus.Error("Error building workbook: ", err)
		errorResponse(c, http.StatusInternalServerError, "failed to build report")
		return
	}

	filename := fmt.Sprintf("project-%d-%s.xlsx", id, time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// ProjectCalendar lists dated events of a project
// @Summary Project calendar
// @Description Task due dates, expected deliveries, invoice and RFQ due dates in [from, to). Defaults to the current month.
// @Tags Projects
// @Produce json
// @Security BearerAuth
// @Param id path int true "Project ID"
// @Param from query string false "YYYY-MM-DD"
// @Param to query string false "YYYY-MM-DD, exclusive"
// @Success 200 {array} dto.CalendarEventResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/projects/{id}/calendar [get]
func (h *APIHandler) ProjectCalendar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	fromParam, err := optionalDate(c.Query("from"))
	if err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	toParam, err := optionalDate(c.Query("to"))
	if err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if fromParam != nil {
		from = *fromParam
		if toParam == nil {
			to = from.AddDate(0, 1, 0)
		}
	}
	if toParam != nil {
		to = *toParam
	}

	if _, err := h.Repository.GetProject(id); err != nil {
		repoError(c, err, "failed to load project")
		return
	}

	events, err := h.Repository.Calendar(id, from, to, now)
	if err != nil {
		repoError(c, err, "failed to build calendar")
		return
	}
	successResponse(c, http.StatusOK, "", toCalendarResponse(events))
}

// Dashboard returns studio-wide counters
// @Summary Dashboard
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.DashboardResponse
// @Router /api/dashboard [get]
func (h *APIHandler) Dashboard(c *gin.Context) {
	stats, err := h.Repository.Dashboard(time.Now())
	if err != nil {
		repoError(c, err, "failed to build dashboard")
		return
	}
	successResponse(c, http.StatusOK, "", toDashboardResponse(stats))
}
