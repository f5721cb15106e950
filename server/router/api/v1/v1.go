// Package v1 exposes the JSON HTTP API: auth, hobby and item management,
// similarity search and cross-user discovery.
package v1

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/curiocodex/curiocodex/internal/profile"
	"github.com/curiocodex/curiocodex/server/auth"
	"github.com/curiocodex/curiocodex/server/middleware"
	"github.com/curiocodex/curiocodex/server/service/collection"
	"github.com/curiocodex/curiocodex/store"
)

type APIV1Service struct {
	Profile    *profile.Profile
	Store      *store.Store
	Sessions   auth.SessionStore
	Collection *collection.Service

	// aiLimiter throttles the AI-backed write paths per user.
	aiLimiter *middleware.RateLimiter
}

func NewAPIV1Service(profile *profile.Profile, store *store.Store, sessions auth.SessionStore, collectionService *collection.Service) *APIV1Service {
	return &APIV1Service{
		Profile:    profile,
		Store:      store,
		Sessions:   sessions,
		Collection: collectionService,
		aiLimiter:  middleware.NewRateLimiter(time.Second, 10),
	}
}

// RegisterRoutes mounts the API under /api. Everything except signup and
// login requires a session token.
func (s *APIV1Service) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api")

	api.POST("/auth/signup", s.Signup)
	api.POST("/auth/login", s.Login)

	authed := api.Group("", auth.Middleware(s.Store, s.Sessions))
	authed.POST("/auth/logout", s.Logout)
	authed.GET("/auth/me", s.Me)

	limited := s.aiLimiter.Middleware(func(c echo.Context) string {
		if user := auth.UserFromContext(c); user != nil {
			return user.UID
		}
		return ""
	})

	authed.GET("/hobbies", s.ListHobbies)
	authed.POST("/hobbies", s.CreateHobby, limited)
	authed.PUT("/hobbies/:id", s.UpdateHobby, limited)
	authed.DELETE("/hobbies/:id", s.DeleteHobby)
	authed.GET("/hobbies/:id/similar", s.SimilarHobbies)

	authed.GET("/hobbies/:hobbyId/items", s.ListItems)
	authed.POST("/hobbies/:hobbyId/items", s.CreateItem, limited)
	authed.PUT("/hobbies/:hobbyId/items/:id", s.UpdateItem, limited)
	authed.DELETE("/hobbies/:hobbyId/items/:id", s.DeleteItem)

	authed.GET("/discover/recommendations", s.Recommendations)

	authed.POST("/admin/reindex", s.Reindex)
}
