package v1

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/curiocodex/curiocodex/internal/errcode"
	"github.com/curiocodex/curiocodex/server/service/collection"
	"github.com/curiocodex/curiocodex/store"
)

// errorResponse is the uniform error body for every failed request.
type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps a service error to its HTTP status. Internal failures
// are logged with their cause but reported with a generic message so
// infrastructure details never leak to clients.
func writeError(c echo.Context, err error) error {
	switch errcode.CodeOf(err) {
	case errcode.CodeInvalidArgument:
		return c.JSON(http.StatusBadRequest, &errorResponse{Error: err.Error()})
	case errcode.CodeUnauthenticated:
		return c.JSON(http.StatusUnauthorized, &errorResponse{Error: err.Error()})
	case errcode.CodeNotFound:
		return c.JSON(http.StatusNotFound, &errorResponse{Error: err.Error()})
	case errcode.CodeUnavailable:
		return c.JSON(http.StatusServiceUnavailable, &errorResponse{Error: err.Error()})
	default:
		slog.Error("request failed", "method", c.Request().Method, "path", c.Path(), "error", err)
		return c.JSON(http.StatusInternalServerError, &errorResponse{Error: "internal server error"})
	}
}

type UserResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

type HobbyResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"`
	Tags        []string        `json:"tags"`
	CreatedAt   int64           `json:"created_at"`
	UpdatedAt   int64           `json:"updated_at"`
	Items       []*ItemResponse `json:"items,omitempty"`
}

type ItemResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	Tags        []string `json:"tags"`
	ImageRef    string   `json:"image_ref,omitempty"`
	CreatedAt   int64    `json:"created_at"`
	UpdatedAt   int64    `json:"updated_at"`
}

func convertUser(user *store.User) *UserResponse {
	return &UserResponse{
		ID:       user.UID,
		Email:    user.Email,
		Username: user.Username,
	}
}

func convertHobby(hobby *store.Hobby) *HobbyResponse {
	response := &HobbyResponse{
		ID:          hobby.UID,
		Name:        hobby.Name,
		Description: hobby.Description,
		Tags:        hobby.Tags,
		CreatedAt:   hobby.CreatedTs,
		UpdatedAt:   hobby.UpdatedTs,
	}
	if hobby.Category != nil {
		response.Category = *hobby.Category
	}
	return response
}

func convertHobbyWithItems(hobby *collection.HobbyWithItems) *HobbyResponse {
	response := convertHobby(hobby.Hobby)
	response.Items = make([]*ItemResponse, 0, len(hobby.Items))
	for _, item := range hobby.Items {
		response.Items = append(response.Items, convertItem(item))
	}
	return response
}

func convertItem(item *store.Item) *ItemResponse {
	response := &ItemResponse{
		ID:          item.UID,
		Name:        item.Name,
		Description: item.Description,
		Tags:        item.Tags,
		CreatedAt:   item.CreatedTs,
		UpdatedAt:   item.UpdatedTs,
	}
	if item.Category != nil {
		response.Category = *item.Category
	}
	if item.ImageRef != nil {
		response.ImageRef = *item.ImageRef
	}
	return response
}
