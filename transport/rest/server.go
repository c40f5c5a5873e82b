package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gomokuhub/gomoku-backend/internal/room"
)

// Server is the administrative HTTP surface: health, derived room status,
// and metrics. It never mutates game state.
type Server struct {
	logger  *slog.Logger
	manager *room.Manager
	echo    *echo.Echo
}

func New(logger *slog.Logger, manager *room.Manager) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	server := &Server{
		logger:  logger.With("component", "rest"),
		manager: manager,
		echo:    e,
	}

	e.GET("/healthz", server.handleHealth)
	e.GET("/rooms/:id", server.handleRoomStatus)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return server
}

// Start - starts the HTTP server and blocks until ctx is canceled or the
// listener fails.
func (that *Server) Start(ctx context.Context, port string) error {
	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := that.echo.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down http server", "error", err)
		}
	}()

	if err := that.echo.Start(":" + port); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status": "healthy",
		"rooms":  that.manager.RoomCount(),
	})
}

func (that *Server) handleRoomStatus(c echo.Context) error {
	status, ok := that.manager.RoomStatus(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
	}

	return c.JSON(http.StatusOK, status)
}
