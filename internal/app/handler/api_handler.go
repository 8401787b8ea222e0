package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"renovation/internal/app/config"
	"renovation/internal/app/document"
	"renovation/internal/app/dto"
	"renovation/internal/app/mailer"
	"renovation/internal/app/middleware"
	"renovation/internal/app/repository"
	"renovation/internal/app/role"
	"renovation/internal/app/storage"
	"renovation/internal/app/wizard"
	"renovation/internal/app/ws"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SendLocker stops the same document from being emailed twice concurrently
// and serializes wizard steps. Redis implements it; without Redis the locks
// are held in this process only.
type SendLocker interface {
	AcquireSendLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	ReleaseSendLock(ctx context.Context, key string) error
}

type localLocks struct {
	mu    sync.Mutex
	held  map[string]time.Time
	clock func() time.Time
}

func newLocalLocks() *localLocks {
	return &localLocks{held: make(map[string]time.Time), clock: time.Now}
}

func (l *localLocks) AcquireSendLock(_ context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	if until, ok := l.held[key]; ok && now.Before(until) {
		return false, nil
	}
	l.held[key] = now.Add(ttl)
	return true, nil
}

func (l *localLocks) ReleaseSendLock(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.held, key)
	return nil
}

// APIHandler holds the REST handlers.
type APIHandler struct {
	Config      *config.Config
	Repository  *repository.Repository
	Storage     storage.FileStorage
	Mailer      mailer.Sender
	PDF         document.PDFRenderer
	Documents   *document.Builder
	Hub         *ws.Hub
	Wizards     wizard.Store
	SendLocks   SendLocker
	AuthHandler *AuthHandler
}

func NewAPIHandler(
	cfg *config.Config,
	r *repository.Repository,
	fileStorage storage.FileStorage,
	sender mailer.Sender,
	pdf document.PDFRenderer,
	docs *document.Builder,
	hub *ws.Hub,
	wizards wizard.Store,
	sendLocks SendLocker,
	authHandler *AuthHandler,
) *APIHandler {
	if sendLocks == nil {
		sendLocks = newLocalLocks()
	}
	return &APIHandler{
		Config:      cfg,
		Repository:  r,
		Storage:     fileStorage,
		Mailer:      sender,
		PDF:         pdf,
		Documents:   docs,
		Hub:         hub,
		Wizards:     wizards,
		SendLocks:   sendLocks,
		AuthHandler: authHandler,
	}
}

// getUserFromContext returns the caller set by WithAuthCheck.
func (h *APIHandler) getUserFromContext(c *gin.Context) (uint, role.Role, error) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		logrus.Warn("userID not found in context")
		return 0, role.Designer, fmt.Errorf("user not authenticated")
	}
	return user.ID, user.Role, nil
}

// ============ Helpers ============

func errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, dto.ErrorResponse{
		Status:  "fail",
		Message: message,
	})
}

func successResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	response := dto.SuccessResponse{
		Status:  "success",
		Message: message,
	}
	if data != nil {
		response.Data = data
	}
	c.JSON(statusCode, response)
}

// repoError maps repository errors to HTTP statuses; anything unexpected is
// logged and reported with the fallback message.
func repoError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		errorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, repository.ErrInvalidStatus):
		errorResponse(c, http.StatusConflict, err.Error())
	case errors.Is(err, repository.ErrValidation):
		errorResponse(c, http.StatusBadRequest, err.Error())
	default:
		logrus.Error(fallback+": ", err)
		errorResponse(c, http.StatusInternalServerError, fallback)
	}
}

// parseID reads a positive uint path parameter, answering 400 otherwise.
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		errorResponse(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// optionalUint reads an optional positive uint query or form value.
func optionalUint(value string) (*uint, error) {
	if value == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(value, 10, 32)
	if err != nil || id == 0 {
		return nil, fmt.Errorf("invalid id %q", value)
	}
	v := uint(id)
	return &v, nil
}

const dateLayout = "2006-01-02"

// optionalDate reads an optional YYYY-MM-DD value.
func optionalDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return &t, nil
}

// Ping checks that the API is up
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /ping [get]
func (h *APIHandler) Ping(ctx *gin.Context) {
	ctx.JSON(200, gin.H{"message": "pong"})
}
