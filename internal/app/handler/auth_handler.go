package handler

import (
	"errors"
	"net/http"
	"time"

	"renovation/internal/app/config"
	"renovation/internal/app/dto"
	"renovation/internal/app/middleware"
	"renovation/internal/app/repository"
	"renovation/internal/app/role"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	Repository *repository.Repository
	Blacklist  middleware.Blacklist
	Auth       *middleware.AuthMiddleware
	Config     *config.Config
}

// NewAuthHandler accepts a nil blacklist when Redis is not configured; logout
// then cannot revoke tokens before they expire.
func NewAuthHandler(r *repository.Repository, blacklist middleware.Blacklist, auth *middleware.AuthMiddleware, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		Repository: r,
		Blacklist:  blacklist,
		Auth:       auth,
		Config:     cfg,
	}
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (h *AuthHandler) createUser(ctx *gin.Context, request dto.RegisterRequest, userRole role.Role) {
	exists, err := h.Repository.UserExistsByLogin(request.Login)
	if err != nil {
		logrus.Error("Error checking login: ", err)
		errorResponse(ctx, http.StatusInternalServerError, "failed to register user")
		return
	}
	if exists {
		errorResponse(ctx, http.StatusConflict, "user with this login already exists")
		return
	}

	hashedPassword, err := hashPassword(request.Password)
	if err != nil {
		logrus.Error("Error hashing password: ", err)
		errorResponse(ctx, http.StatusInternalServerError, "failed to register user")
		return
	}

	user, err := h.Repository.CreateUser(request.Login, hashedPassword, request.FullName, request.Email, userRole)
	if err != nil {
		logrus.Error("Error creating user: ", err)
		errorResponse(ctx, http.StatusInternalServerError, "failed to register user")
		return
	}

	successResponse(ctx, http.StatusCreated, "user registered", toUserResponse(user))
}

// RegisterUser creates a designer account
// @Summary Register
// @Description Self-registration always creates a designer; managers and admins are created by an admin
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Account"
// @Success 201 {object} dto.UserResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/auth/register [post]
func (h *AuthHandler) RegisterUser(ctx *gin.Context) {
	var request dto.RegisterRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		errorResponse(ctx, http.StatusBadRequest, err.Error())
		return
	}
	h.createUser(ctx, request, role.Designer)
}

// CreateUser creates an account with any role
// @Summary Create user
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.RegisterRequest true "Account"
// @Success 201 {object} dto.UserResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/users [post]
func (h *AuthHandler) CreateUser(ctx *gin.Context) {
	var request dto.RegisterRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		errorResponse(ctx, http.StatusBadRequest, err.Error())
		return
	}
	h.createUser(ctx, request, role.Role(request.Role))
}

// ListUsers returns every account, for assignee pickers
// @Summary List users
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.UserResponse
// @Router /api/users [get]
func (h *AuthHandler) ListUsers(ctx *gin.Context) {
	users, err := h.Repository.ListUsers()
	if err != nil {
		repoError(ctx, err, "failed to list users")
		return
	}
	out := make([]dto.UserResponse, len(users))
	for i := range users {
		out[i] = toUserResponse(&users[i])
	}
	successResponse(ctx, http.StatusOK, "", dto.ListResponse{Items: out, Total: len(out)})
}

// LoginUser issues a JWT
// @Summary Login
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/auth/login [post]
func (h *AuthHandler) LoginUser(ctx *gin.Context) {
	var request dto.LoginRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		errorResponse(ctx, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.Repository.GetUserByLogin(request.Login)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		logrus.Error("Error loading user: ", err)
		errorResponse(ctx, http.StatusInternalServerError, "failed to log in")
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(request.Password)) != nil {
		errorResponse(ctx, http.StatusUnauthorized, "invalid login or password")
		return
	}

	accessToken, expires, err := h.Auth.IssueToken(user, time.Now())
	if err != nil {
		logrus.Error("Error signing token: ", err)
		errorResponse(ctx, http.StatusInternalServerError, "failed to log in")
		return
	}

	successResponse(ctx, http.StatusOK, "logged in", dto.LoginResponse{
		Token:     accessToken,
		TokenType: "Bearer",
		ExpiresIn: int(time.Until(expires).Seconds()),
		User:      toUserResponse(user),
	})
}

// LogoutUser blacklists the current token until it expires
// @Summary Logout
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.SuccessResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/auth/logout [post]
func (h *AuthHandler) LogoutUser(ctx *gin.Context) {
	user, ok := middleware.GetCurrentUser(ctx)
	if !ok || user.Token == "" {
		errorResponse(ctx, http.StatusUnauthorized, "authorization header missing")
		return
	}

	ttl := time.Until(user.TokenExpiry)
	if h.Blacklist == nil || ttl <= 0 {
		successResponse(ctx, http.StatusOK, "logged out", nil)
		return
	}

	if err := h.Blacklist.WriteJWTToBlacklist(ctx.Request.Context(), user.Token, ttl); err != nil {
		logrus.Error("Error blacklisting token: ", err)
		errorResponse(ctx, http.StatusInternalServerError, "failed to log out")
		return
	}

	successResponse(ctx, http.StatusOK, "logged out", nil)
}

// GetUserProfile returns the current user
// @Summary Profile
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.UserResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/auth/profile [get]
func (h *AuthHandler) GetUserProfile(ctx *gin.Context) {
	current, ok := middleware.GetCurrentUser(ctx)
	if !ok {
		errorResponse(ctx, http.StatusUnauthorized, "user not authenticated")
		return
	}

	user, err := h.Repository.GetUserByID(current.ID)
	if err != nil {
		repoError(ctx, err, "failed to load profile")
		return
	}

	successResponse(ctx, http.StatusOK, "", toUserResponse(user))
}

// UpdateProfile changes name, email or password of the current user
// @Summary Update profile
// @Tags Authentication
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateProfileRequest true "Fields to change"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/auth/profile [put]
func (h *AuthHandler) UpdateProfile(ctx *gin.Context) {
	current, ok := middleware.GetCurrentUser(ctx)
	if !ok {
		errorResponse(ctx, http.StatusUnauthorized, "user not authenticated")
		return
	}

	var request dto.UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		errorResponse(ctx, http.StatusBadRequest, err.Error())
		return
	}

	var passwordHash *string
	if request.Password != nil {
		hash, err := hashPassword(*request.Password)
		if err != nil {
			logrus.Error("Error hashing password: ", err)
			errorResponse(ctx, http.StatusInternalServerError, "failed to update profile")
			return
		}
		passwordHash = &hash
	}

	if err := h.Repository.UpdateUser(current.ID, request.FullName, request.Email, passwordHash); err != nil {
		repoError(ctx, err, "failed to update profile")
		return
	}

	user, err := h.Repository.GetUserByID(current.ID)
	if err != nil {
		repoError(ctx, err, "failed to load profile")
		return
	}
	successResponse(ctx, http.StatusOK, "profile updated", toUserResponse(user))
}
