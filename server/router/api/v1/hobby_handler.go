package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/curiocodex/curiocodex/internal/errcode"
	"github.com/curiocodex/curiocodex/server/auth"
	"github.com/curiocodex/curiocodex/server/service/collection"
)

type upsertHobbyRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

type hobbyResponse struct {
	Success bool           `json:"success"`
	Hobby   *HobbyResponse `json:"hobby"`
}

type similarHobbyResponse struct {
	*HobbyResponse
	Similarity float32 `json:"similarity"`
}

// CreateHobby handles POST /api/hobbies.
func (s *APIV1Service) CreateHobby(c echo.Context) error {
	user := auth.UserFromContext(c)

	request := &upsertHobbyRequest{}
	if err := c.Bind(request); err != nil {
		return writeError(c, errcode.InvalidArgument("malformed request body"))
	}

	hobby, err := s.Collection.CreateHobby(c.Request().Context(), user, &collection.UpsertHobbyRequest{
		Name:        request.Name,
		Description: request.Description,
		Category:    request.Category,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, &hobbyResponse{Success: true, Hobby: convertHobby(hobby)})
}

// ListHobbies handles GET /api/hobbies. Hobbies come back newest first,
// each with its items.
func (s *APIV1Service) ListHobbies(c echo.Context) error {
	user := auth.UserFromContext(c)

	hobbies, err := s.Collection.ListHobbiesWithItems(c.Request().Context(), user)
	if err != nil {
		return writeError(c, err)
	}

	responses := make([]*HobbyResponse, 0, len(hobbies))
	for _, hobby := range hobbies {
		responses = append(responses, convertHobbyWithItems(hobby))
	}
	return c.JSON(http.StatusOK, map[string][]*HobbyResponse{"hobbies": responses})
}

// UpdateHobby handles PUT /api/hobbies/:id.
func (s *APIV1Service) UpdateHobby(c echo.Context) error {
	user := auth.UserFromContext(c)

	request := &upsertHobbyRequest{}
	if err := c.Bind(request); err != nil {
		return writeError(c, errcode.InvalidArgument("malformed request body"))
	}

	hobby, err := s.Collection.UpdateHobby(c.Request().Context(), user, c.Param("id"), &collection.UpsertHobbyRequest{
		Name:        request.Name,
		Description: request.Description,
		Category:    request.Category,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, &hobbyResponse{Success: true, Hobby: convertHobby(hobby)})
}

// DeleteHobby handles DELETE /api/hobbies/:id.
func (s *APIV1Service) DeleteHobby(c echo.Context) error {
	user := auth.UserFromContext(c)

	if err := s.Collection.DeleteHobby(c.Request().Context(), user, c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

// SimilarHobbies handles GET /api/hobbies/:id/similar.
func (s *APIV1Service) SimilarHobbies(c echo.Context) error {
	user := auth.UserFromContext(c)

	scored, err := s.Collection.SimilarHobbies(c.Request().Context(), user, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}

	responses := make([]*similarHobbyResponse, 0, len(scored))
	for _, match := range scored {
		responses = append(responses, &similarHobbyResponse{
			HobbyResponse: convertHobby(match.Hobby),
			Similarity:    match.Score,
		})
	}
	return c.JSON(http.StatusOK, map[string][]*similarHobbyResponse{"similar": responses})
}
