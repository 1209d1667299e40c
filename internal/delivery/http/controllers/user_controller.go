package controllers

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/domain"
)

// UpdateUserRequest is the request body for PATCH /users/me. All fields are optional.
type UpdateUserRequest struct {
	Name         *string `json:"name"`
	Bio          *string `json:"bio"`
	Organization *string `json:"organization"`
	Website      *string `json:"website"`
	Location     *string `json:"location"`
	Timezone     *string `json:"timezone"`
}

// Validate implements Validator.
func (u UpdateUserRequest) Validate() []string {
	var errs []string
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		errs = append(errs, "name cannot be empty")
	}
	if u.Bio != nil && len(*u.Bio) > 2000 {
		errs = append(errs, "bio must be at most 2000 characters")
	}
	if u.Website != nil && strings.TrimSpace(*u.Website) != "" {
		if parsed, err := url.ParseRequestURI(strings.TrimSpace(*u.Website)); err != nil || parsed.Host == "" {
			errs = append(errs, "website must be an absolute URL")
		}
	}
	return errs
}

func (u UpdateUserRequest) patch() domain.ProfilePatch {
	return domain.ProfilePatch{
		Name:         u.Name,
		Bio:          u.Bio,
		Organization: u.Organization,
		Website:      u.Website,
		Location:     u.Location,
		Timezone:     u.Timezone,
	}
}

// UserSuccessResponse is the success response envelope for user endpoints (200).
type UserSuccessResponse struct {
	Data  *domain.User      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// PublicProfile is a user's profile without contact details.
type PublicProfile struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Bio          string `json:"bio,omitempty"`
	Organization string `json:"organization,omitempty"`
	Website      string `json:"website,omitempty"`
	Location     string `json:"location,omitempty"`
}

// PublicProfileSuccessResponse is the success response envelope for GET /users/{userID} (200).
type PublicProfileSuccessResponse struct {
	Data  PublicProfile     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// UserController handles profile endpoints.
type UserController struct {
	Logger  *slog.Logger
	Service domain.UserService
}

// NewUserController creates a UserController with the given logger and service.
func NewUserController(logger *slog.Logger, svc domain.UserService) *UserController {
	return &UserController{
		Logger:  logger,
		Service: svc,
	}
}

// GetMe godoc
// @Summary Get current user
// @Description Returns the authenticated user's account and profile.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.UserSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/me [get]
func (c *UserController) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	user, err := c.Service.GetByID(r.Context(), userID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, user)
}

// UpdateMe godoc
// @Summary Update current user profile
// @Description Partially update profile fields. Email cannot be changed here.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body UpdateUserRequest true "Fields to update"
// @Success 200 {object} controllers.UserSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/me [patch]
func (c *UserController) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req UpdateUserRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	user, err := c.Service.UpdateProfile(r.Context(), userID, req.patch())
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, user)
}

// GetUser godoc
// @Summary Get a public profile
// @Tags users
// @Produce json
// @Param userID path string true "User ID (UUID)"
// @Success 200 {object} controllers.PublicProfileSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/{userID} [get]
func (c *UserController) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	user, err := c.Service.GetByID(r.Context(), userID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, PublicProfile{
		ID:           user.ID,
		Name:         user.Name,
		Bio:          user.Bio,
		Organization: user.Organization,
		Website:      user.Website,
		Location:     user.Location,
	})
}
