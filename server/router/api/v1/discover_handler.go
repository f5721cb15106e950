package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/curiocodex/curiocodex/internal/errcode"
	"github.com/curiocodex/curiocodex/server/auth"
)

type recommendationResponse struct {
	Type  string         `json:"type"`
	Hobby *HobbyResponse `json:"hobby,omitempty"`
	Item  *ItemResponse  `json:"item,omitempty"`
	Score float32        `json:"score"`
}

// Recommendations handles GET /api/discover/recommendations.
func (s *APIV1Service) Recommendations(c echo.Context) error {
	user := auth.UserFromContext(c)

	recommendations, err := s.Collection.Recommendations(c.Request().Context(), user)
	if err != nil {
		return writeError(c, err)
	}

	responses := make([]*recommendationResponse, 0, len(recommendations))
	for _, rec := range recommendations {
		response := &recommendationResponse{Type: rec.Kind, Score: rec.Score}
		if rec.Hobby != nil {
			response.Hobby = convertHobby(rec.Hobby)
		}
		if rec.Item != nil {
			response.Item = convertItem(rec.Item)
		}
		responses = append(responses, response)
	}
	return c.JSON(http.StatusOK, map[string][]*recommendationResponse{"recommendations": responses})
}

// Reindex handles POST /api/admin/reindex. Only the instance host, the
// first registered account, may trigger a rebuild; for anyone else the
// endpoint does not exist.
func (s *APIV1Service) Reindex(c echo.Context) error {
	user := auth.UserFromContext(c)
	if user.ID != 1 {
		return writeError(c, errcode.NotFound("not found"))
	}

	indexed, err := s.Collection.Reindex(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "indexed": indexed})
}
