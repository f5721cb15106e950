// Package server assembles the HTTP server from the profile: relational
// store, AI gateway, vector index, session store, API routes and the
// background index repair runner.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/curiocodex/curiocodex/internal/profile"
	"github.com/curiocodex/curiocodex/plugin/vector"
	"github.com/curiocodex/curiocodex/server/ai"
	"github.com/curiocodex/curiocodex/server/auth"
	apiv1 "github.com/curiocodex/curiocodex/server/router/api/v1"
	"github.com/curiocodex/curiocodex/server/runner/embedrepair"
	"github.com/curiocodex/curiocodex/server/service/collection"
	"github.com/curiocodex/curiocodex/store"
)

type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer   *echo.Echo
	sessions     auth.SessionStore
	repairRunner *embedrepair.Runner
}

func NewServer(ctx context.Context, serverProfile *profile.Profile, st *store.Store) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.DELETE, echo.OPTIONS},
	}))
	e.Use(requestLogger())

	server := &Server{
		Profile:    serverProfile,
		Store:      st,
		echoServer: e,
	}

	var enricher ai.Enricher
	if serverProfile.IsAIEnabled() {
		provider, err := ai.NewProvider(ai.ConfigFromProfile(serverProfile))
		if err != nil {
			return nil, errors.Wrap(err, "failed to create AI provider")
		}
		enricher = provider
		slog.Info("AI enrichment enabled", "model", serverProfile.AIEmbeddingModel)
	} else {
		slog.Warn("AI enrichment disabled, records will not be categorized or indexed")
	}

	index, err := newVectorIndex(ctx, serverProfile, st)
	if err != nil {
		return nil, err
	}

	sessions, err := newSessionStore(ctx, serverProfile)
	if err != nil {
		return nil, err
	}
	server.sessions = sessions

	collectionService := collection.NewService(st, enricher, index)
	apiv1.NewAPIV1Service(serverProfile, st, sessions, collectionService).RegisterRoutes(e)

	if enricher != nil && index != nil {
		server.repairRunner = embedrepair.NewRunner(collectionService)
	}

	return server, nil
}

// newVectorIndex builds the configured index backend, or none.
func newVectorIndex(ctx context.Context, serverProfile *profile.Profile, st *store.Store) (vector.Index, error) {
	switch serverProfile.VectorIndex {
	case "memory":
		return vector.NewMemoryIndex(), nil
	case "pgvector":
		index, err := vector.NewPGVectorIndex(ctx, st.GetDriver().GetDB(), vector.DefaultDimension)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create pgvector index")
		}
		return index, nil
	case "":
		slog.Warn("vector index disabled, similarity and discovery will return empty results")
		return nil, nil
	default:
		return nil, errors.Errorf("unknown vector index backend %q", serverProfile.VectorIndex)
	}
}

// newSessionStore prefers Redis when configured, falling back to the
// in-process store otherwise.
func newSessionStore(ctx context.Context, serverProfile *profile.Profile) (auth.SessionStore, error) {
	if serverProfile.SessionRedisAddr != "" {
		sessions, err := auth.NewRedisSessionStore(ctx, serverProfile.SessionRedisAddr, serverProfile.SessionRedisPassword, serverProfile.SessionTTL)
		if err != nil {
			return nil, errors.Wrap(err, "failed to connect to session redis")
		}
		return sessions, nil
	}
	slog.Info("using in-process session store, sessions will not survive restarts")
	return auth.NewMemorySessionStore(serverProfile.SessionTTL), nil
}

func requestLogger() echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogURI:     true,
		LogMethod:  true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			slog.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			)
			return nil
		},
	})
}

// Start runs the HTTP listener and the background runners until the
// context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if s.repairRunner != nil {
		go s.repairRunner.Run(ctx)
	}

	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	slog.Info("server started", "address", address, "mode", s.Profile.Mode)
	return s.echoServer.Start(address)
}

// Shutdown drains in-flight requests and releases resources.
func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shut down http server", "error", err)
	}
	if closer, ok := s.sessions.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			slog.Error("failed to close session store", "error", err)
		}
	}
	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close store", "error", err)
	}
	slog.Info("server shut down")
}
