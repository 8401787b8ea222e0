package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"renovation/internal/app/ds"
	"renovation/internal/app/dto"
	"renovation/internal/app/storage"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	maxPhotosPerUpload = 50
	uploadLimit        = 4
)

var documentCategories = map[string]bool{
	ds.DocContract: true,
	ds.DocDrawing:  true,
	ds.DocInvoice:  true,
	ds.DocOther:    true,
}

func readFormFile(file *multipart.FileHeader) ([]byte, error) {
	if file.Size > maxUploadSize {
		return nil, fmt.Errorf("file is too large")
	}
	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return io.ReadAll(src)
}

// CreateSurvey records a site visit
// @Summary Create survey
// @Tags Surveys
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Project ID"
// @Param request body dto.CreateSurveyRequest true "Survey"
// @Success 201 {object} dto.SurveyResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/projects/{id}/surveys [post]
func (h *APIHandler) CreateSurvey(c *gin.Context) {
	userID, _, err := h.getUserFromContext(c)
	if err != nil {
		errorResponse(c, http.StatusUnauthorized, err.Error())
		return
	}
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req dto.CreateSurveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	survey := ds.Survey{
		ProjectID:   projectID,
		Title:       req.Title,
		Room:        req.Room,
		Notes:       req.Notes,
		SurveyedAt:  time.Now(),
		CreatedByID: userID,
	}
	if req.SurveyedAt != nil {
		survey.SurveyedAt = *req.SurveyedAt
	}
	if err := h.Repository.CreateSurvey(&survey); err != nil {
		repoError(c, err, "failed to create survey")
		return
	}
	successResponse(c, http.StatusCreated, "survey created", h.surveyResponse(c, &survey))
}

func (h *APIHandler) surveyResponse(c *gin.Context, s *ds.Survey) dto.SurveyResponse {
	resp := dto.SurveyResponse{
		ID:         s.ID,
		ProjectID:  s.ProjectID,
		Title:      s.Title,
		Room:       s.Room,
		Notes:      s.Notes,
		SurveyedAt: s.SurveyedAt,
		Photos:     []dto.PhotoResponse{},
	}
	for i := range s.Photos {
		p := &s.Photos[i]
		resp.Photos = append(resp.Photos, toPhotoResponse(p, h.fileURL(c.Request.Context(), p.ObjectKey)))
	}
	return resp
}

// ListSurveys returns project surveys with their photos
// @Summary List surveys
// @Tags Surveys
// @Produce json
// @Security BearerAuth
// @Param id path int true "Project ID"
// @Success 200 {object} dto.ListResponse
// @Router /api/projects/{id}/surveys [get]
func (h *APIHandler) ListSurveys(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}

	surveys, err := h.Repository.ListSurveys(projectID)
	if err != nil {
		repoError(c, err, "failed to list surveys")
		return
	}
	out := make([]dto.SurveyResponse, len(surveys))
	for i := range surveys {
		out[i] = h.surveyResponse(c, &surveys[i])
	}
	successResponse(c, http.StatusOK, "", dto.ListResponse{Items: out, Total: len(out)})
}

type uploadedPhoto struct {
	key  string
	size int64
	err  error
}

// UploadPhotos stores several site photos at once
// @Summary Upload photos
// @Description Each file succeeds or fails on its own; the response lists both.
// @Tags Surveys
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Project ID"
// @Param photos formData file true "Images"
// @Param survey_id formData int false "Survey"
// @Param caption formData string false "Caption for every photo"
// @Param room formData string false "Room"
// @Success 201 {object} dto.BulkResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/projects/{id}/photos [post]
func (h *APIHandler) UploadPhotos(c *gin.Context) {
	userID, _, err := h.getUserFromContext(c)
	if err != nil {
		errorResponse(c, http.StatusUnauthorized, err.Error())
		return
	}
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}
	if _, err := h.Repository.GetProject(projectID); err != nil {
		repoError(c, err, "failed to load project")
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "multipart form is required")
		return
	}
	files := form.File["photos"]
	if len(files) == 0 {
		errorResponse(c, http.StatusBadRequest, "at least one photo is required")
		return
	}
	if len(files) > maxPhotosPerUpload {
		errorResponse(c, http.StatusBadRequest, fmt.Sprintf("at most %d photos per upload", maxPhotosPerUpload))
		return
	}

	surveyID, err := optionalUint(c.PostForm("survey_id"))
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid survey_id")
		return
	}
	if surveyID != nil {
		survey, err := h.Repository.GetSurvey(*surveyID)
		if err != nil {
			repoError(c, err, "failed to load survey")
			return
		}
		if survey.ProjectID != projectID {
			errorResponse(c, http.StatusBadRequest, "survey belongs to another project")
			return
		}
	}

	ctx := c.Request.Context()
	prefix := fmt.Sprintf("photos/%d", projectID)
	uploads := make([]uploadedPhoto, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uploadLimit)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			if !storage.IsImage(file.Filename) {
				uploads[i].err = fmt.Errorf("unsupported image type")
				return nil
			}
			data, err := readFormFile(file)
			if err != nil {
				uploads[i].err = err
				return nil
			}
			key, err := h.Storage.UploadFile(gctx, data, file.Filename, prefix)
			uploads[i] = uploadedPhoto{key: key, size: int64(len(data)), err: err}
			return nil
		})
	}
	_ = g.Wait()

	caption, room := c.PostForm("caption"), c.PostForm("room")
	resp := dto.BulkResponse{Results: make([]dto.BulkResult, len(files))}
	for i, file := range files {
		result := dto.BulkResult{Name: file.Filename}
		up := uploads[i]
		if up.err == nil {
			photo := ds.Photo{
				ProjectID:    projectID,
				SurveyID:     surveyID,
				ObjectKey:    up.key,
				FileName:     file.Filename,
				Caption:      caption,
				Room:         room,
				ContentType:  file.Header.Get("Content-Type"),
				Size:         up.size,
				UploadedByID: userID,
			}
			if err := h.Repository.CreatePhoto(&photo); err != nil {
				_ = h.Storage.DeleteFile(ctx, up.key)
				up.err = err
			} else {
				result.ID = photo.ID
			}
		}

		if up.err != nil {
			logrus.Warnf("Photo %s for project %d: %v", file.Filename, projectID, up.err)
			result.Error = up.err.Error()
			resp.Failed++
		} else {
			result.OK = true
			resp.Succeeded++
		}
		resp.Results[i] = result
	}

	code := http.StatusCreated
	if resp.Succeeded == 0 {
		code = http.StatusBadRequest
	}
	successResponse(c, code, fmt.Sprintf("%d of %d photos uploaded", resp.Succeeded, len(files)), resp)
}

// ListPhotos returns project photos
// @Summary List photos
// @Tags Surveys
// @Produce json
// @Security BearerAuth
// @Param id path int true "Project ID"
// @Param survey_id query int false "Only photos of this survey"
// @Success 200 {object} dto.ListResponse
// @Router /api/projects/{id}/photos [get]
func (h *APIHandler) ListPhotos(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}
	surveyID, err := optionalUint(c.Query("survey_id"))
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid survey_id")
		return
	}

	photos, err := h.Repository.ListPhotos(projectID, surveyID)
	if err != nil {
		repoError(c, err, "failed to list photos")
		return
	}
	out := make([]dto.PhotoResponse, len(photos))
	for i := range photos {
		out[i] = toPhotoResponse(&photos[i], h.fileURL(c.Request.Context(), photos[i].ObjectKey))
	}
	successResponse(c, http.StatusOK, "", dto.ListResponse{Items: out, Total: len(out)})
}

// DeletePhoto removes a photo and its file
// @Summary Delete photo
// @Tags Surveys
// @Produce json
// @Security BearerAuth
// @Param id path int true "Photo ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/photos/{id} [delete]
func (h *APIHandler) DeletePhoto(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	photo, err := h.Repository.GetPhoto(id)
	if err != nil {
		repoError(c, err, "failed to load photo")
		return
	}
	if err := h.Repository.DeletePhoto(id); err != nil {
		repoError(c, err, "failed to delete photo")
		return
	}
	if err := h.Storage.DeleteFile(c.Request.Context(), photo.ObjectKey); err != nil {
		logrus.Warn("Error deleting photo file: ", err)
	}
	successResponse(c, http.StatusOK, "photo deleted", nil)
}

// UploadDocument stores a project document
// @Summary Upload document
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param project_id formData int true "Project ID"
// @Param category formData string false "contract, drawing, invoice or other"
// @Param file formData file true "File"
// @Success 201 {object} dto.DocumentResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/documents/upload [post]
func (h *APIHandler) UploadDocument(c *gin.Context) {
	userID, _, err := h.getUserFromContext(c)
	if err != nil {
		errorResponse(c, http.StatusUnauthorized, err.Error())
		return
	}

	projectID, err := optionalUint(c.PostForm("project_id"))
	if err != nil || projectID == nil {
		errorResponse(c, http.StatusBadRequest, "project_id is required")
		return
	}
	category := c.DefaultPostForm("category", ds.DocOther)
	if !documentCategories[category] {
		errorResponse(c, http.StatusBadRequest, "unknown document category")
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "file is required")
		return
	}
	data, err := readFormFile(file)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx := c.Request.Context()
	key, err := h.Storage.UploadFile(ctx, data, file.Filename, fmt.Sprintf("documents/%d", *projectID))
	if err != nil {
		logrus.Error("Error uploading document: ", err)
		errorResponse(c, http.StatusInternalServerError, "failed to upload document")
		return
	}

	doc := ds.Document{
		ProjectID:    *projectID,
		Category:     category,
		FileName:     file.Filename,
		ObjectKey:    key,
		ContentType:  file.Header.Get("Content-Type"),
		Size:         int64(len(data)),
		UploadedByID: userID,
	}
	if err := h.Repository.CreateDocument(&doc); err != nil {
		_ = h.Storage.DeleteFile(ctx, key)
		repoError(c, err, "failed to save document")
		return
	}
	successResponse(c, http.StatusCreated, "document uploaded", toDocumentResponse(&doc, h.fileURL(ctx, key)))
}

// ListDocuments returns project documents
// @Summary List documents
// @Tags Documents
// @Produce json
// @Security BearerAuth
// @Param id path int true "Project ID"
// @Param category query string false "Category"
// @Success 200 {object} dto.ListResponse
// @Router /api/projects/{id}/documents [get]
func (h *APIHandler) ListDocuments(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}

	docs, err := h.Repository.ListDocuments(projectID, c.Query("category"))
	if err != nil {
		repoError(c, err, "failed to list documents")
		return
	}
	out := make([]dto.DocumentResponse, len(docs))
	for i := range docs {
		out[i] = toDocumentResponse(&docs[i], h.fileURL(c.Request.Context(), docs[i].ObjectKey))
	}
	successResponse(c, http.StatusOK, "", dto.ListResponse{Items: out, Total: len(out)})
}

// DeleteDocument removes a document and its file
// @Summary Delete document
// @Tags Documents
// @Produce json
// @Security BearerAuth
// @Param id path int true "Document ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/documents/{id} [delete]
func (h *APIHandler) DeleteDocument(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	doc, err := h.Repository.GetDocument(id)
	if err != nil {
		repoError(c, err, "failed to load document")
		return
	}
	if err := h.Repository.DeleteDocument(id); err != nil {
		repoError(c, err, "failed to delete document")
		return
	}
	if err := h.Storage.DeleteFile(c.Request.Context(), doc.ObjectKey); err != nil {
		logrus.Warn("Error deleting document file: ", err)
	}
	successResponse(c, http.StatusOK, "document deleted", nil)
}
