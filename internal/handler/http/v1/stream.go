package v1

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/shenikar/wildfire_broadcasting_system/internal/broadcast"
)

const (
	wsWriteTimeout = 5 * time.Second
	wsReadTimeout  = 60 * time.Second
	wsReadLimit    = 4096
)

// nextEvent ждет событие подписки не дольше интервала heartbeat.
// heartbeat=true означает, что событий не было и клиенту пора отправить пульс.
func (h *Handler) nextEvent(ctx context.Context, sub *broadcast.Subscription) (event broadcast.Event, heartbeat bool, err error) {
	waitCtx, cancel := context.WithTimeout(ctx, h.cfg.StreamHeartbeat)
	defer cancel()

	event, err = sub.Next(waitCtx)
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return broadcast.Event{}, true, nil
	}
	return event, false, err
}

// @Summary Live incident stream (SSE)
// @Description Server-Sent Events: a "snapshot" event with the most recently updated incidents, then an "update" event per change and a periodic "heartbeat"
// @Tags Stream
// @Produce text/event-stream
// @Success 200 {object} StreamEvent
// @Failure 503 {object} map[string]string "Service unavailable"
// @Router /incidents/stream [get]
func (h *Handler) streamIncidents(c *gin.Context) {
	log := h.logger.WithField("method", "streamIncidents").WithField("client_ip", c.ClientIP())
	ctx := c.Request.Context()

	sub, err := h.broadcaster.Subscribe(ctx)
	if err != nil {
		log.WithError(err).Warn("Failed to subscribe to incident stream")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service unavailable"})
		return
	}
	defer sub.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	log.Info("SSE client connected")
	sent := 0
	c.Stream(func(w io.Writer) bool {
		event, heartbeat, err := h.nextEvent(ctx, sub)
		if err != nil {
			return false
		}
		if heartbeat {
			c.SSEvent("heartbeat", gin.H{"at": time.Now().UTC()})
			return true
		}
		c.SSEvent(string(event.Type), EventToStreamEvent(event))
		sent++
		return true
	})
	log.WithField("events_sent", sent).WithField("dropped", sub.Dropped()).Info("SSE client disconnected")
}

// @Summary Live incident stream (WebSocket)
// @Description Same event flow as the SSE stream, one JSON text message per event. Heartbeats are sent as ping frames.
// @Tags Stream
// @Success 101 {object} StreamEvent
// @Router /incidents/ws [get]
func (h *Handler) streamWebSocket(c *gin.Context) {
	log := h.logger.WithField("method", "streamWebSocket").WithField("client_ip", c.ClientIP())

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade уже ответил клиенту ошибкой
		log.WithError(err).Warn("Failed to upgrade connection")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	sub, err := h.broadcaster.Subscribe(ctx)
	if err != nil {
		log.WithError(err).Warn("Failed to subscribe to incident stream")
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "service unavailable"),
			time.Now().Add(wsWriteTimeout))
		return
	}
	defer sub.Close()

	// Читатель нужен только для pong и close от клиента
	go func() {
		defer cancel()
		conn.SetReadLimit(wsReadLimit)
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
			_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		}
	}()

	log.Info("WebSocket client connected")
	for {
		event, heartbeat, err := h.nextEvent(ctx, sub)
		if err != nil {
			break
		}
		if heartbeat {
			err = conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout))
		} else {
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			err = conn.WriteJSON(EventToStreamEvent(event))
		}
		if err != nil {
			log.WithError(err).Debug("WebSocket write failed")
			break
		}
	}

	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"),
		time.Now().Add(time.Second))
	log.WithField("dropped", sub.Dropped()).Info("WebSocket client disconnected")
}
