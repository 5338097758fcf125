package rest

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/cocodedk/publix"
	"github.com/cocodedk/publix/internal/domain"
	"github.com/cocodedk/publix/internal/present/rest/presenter"
	"github.com/cocodedk/publix/internal/service"
	"github.com/cocodedk/publix/internal/usecase"
)

type Handler struct {
	search *usecase.SearchUsecase
	record *usecase.RecordUsecase
	signal *service.SignalService
}

func NewHandler(
	search *usecase.SearchUsecase,
	record *usecase.RecordUsecase,
	signal *service.SignalService,
) *Handler {
	return &Handler{
		search: search,
		record: record,
		signal: signal,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.handleHealth)
	e.GET("/search", h.handleSearch)
	e.GET("/records/:systemid", h.handleRecordGet)
	e.DELETE("/records/:systemid", h.handleRecordPurge)
	e.GET("/realtime", h.handleRealtime)
}

func (h *Handler) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

type searchResponse struct {
	Count int                `json:"count"`
	Hits  []publix.SearchHit `json:"hits"`
}

func (h *Handler) handleSearch(c echo.Context) error {
	ctx := c.Request().Context()

	query := c.QueryParam("q")
	if query == "" {
		return presenter.BadRequestMessage(c, "q parameter is required")
	}

	var (
		hits []publix.SearchHit
		err  error
	)
	if c.QueryParam("field") == "password" {
		hits, err = h.search.SearchByPassword(ctx, query)
	} else {
		hits, err = h.search.Search(ctx, query)
	}
	if err != nil {
		return presenter.InternalError(c, err)
	}

	return presenter.OK(c, searchResponse{Count: len(hits), Hits: hits})
}

type recordResponse struct {
	SystemID  string    `json:"systemid"`
	Name      string    `json:"name"`
	Bucket    string    `json:"bucket"`
	Size      int64     `json:"size"`
	XScore    int       `json:"xscore"`
	Added     time.Time `json:"added"`
	Date      time.Time `json:"date"`
	LineCount int64     `json:"line_count"`
}

func (h *Handler) handleRecordGet(c echo.Context) error {
	ctx := c.Request().Context()

	record, err := h.record.Get(ctx, c.Param("systemid"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "record not found")
		}
		return presenter.InternalError(c, err)
	}

	return presenter.OK(c, recordResponse{
		SystemID:  record.SystemID,
		Name:      record.Name,
		Bucket:    record.Bucket,
		Size:      record.Size,
		XScore:    record.XScore,
		Added:     record.Added,
		Date:      record.Date,
		LineCount: record.LineCount,
	})
}

func (h *Handler) handleRecordPurge(c echo.Context) error {
	ctx := c.Request().Context()

	systemID := c.Param("systemid")
	if err := h.record.Purge(ctx, systemID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "record not found")
		}
		return presenter.InternalError(c, err)
	}

	slog.InfoContext(ctx, "record purged",
		slog.String("systemid", systemID),
		slog.String("module", "rest"),
	)

	return presenter.OK(c, echo.Map{"status": "ok"})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type realtimeRequest struct {
	Type string `json:"type"`
}

func (h *Handler) handleRealtime(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer func() {
		ws.Close()
	}()

	ctx := c.Request().Context()

	output := make(chan publix.Event)

	go h.signal.Realtime(ctx, output)

	quit := make(chan struct{})

	go func() {
		for {
			var req realtimeRequest
			err := ws.ReadJSON(&req)
			if err != nil {

				wsErr, ok := err.(*websocket.CloseError)
				if ok {
					if !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
						slog.DebugContext(
							ctx, "WebSocket closed",
							slog.String("error", wsErr.Error()),
							slog.String("module", "socket"),
						)
					}
				} else {
					slog.ErrorContext(
						ctx, "Error reading message",
						slog.String("error", err.Error()),
						slog.String("module", "socket"),
					)
				}

				quit <- struct{}{}
				break
			}

			switch req.Type {
			case "h": // heartbeat
				// do nothing
			default:
				slog.InfoContext(
					ctx, "Unknown request type",
					slog.String("type", req.Type),
					slog.String("module", "socket"),
				)
			}
		}
	}()

	for {
		select {
		case <-quit:
			return nil
		case event := <-output:
			err := ws.WriteJSON(event)
			if err != nil {
				slog.ErrorContext(
					ctx, "Error writing message",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return nil
			}
		}
	}
}
