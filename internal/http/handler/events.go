package handler

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"docspace/internal/events"
	"docspace/internal/service"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// feedMessage is one frame of the renderer feed.
type feedMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// RequireUpgrade rejects plain HTTP requests on websocket routes.
func RequireUpgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

// Events streams the workspace to the renderer: the current snapshot first, then a
// "workspace" frame per change and a "notice" frame per upload outcome.
func Events(bus *events.Bus, svc service.WorkspaceService, logger *zap.Logger) fiber.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return websocket.New(func(conn *websocket.Conn) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changes, err := bus.Subscribe(ctx, events.TopicWorkspace)
		if err != nil {
			logger.Error("subscribe workspace feed", zap.Error(err))
			return
		}
		notices, err := bus.Subscribe(ctx, events.TopicNotices)
		if err != nil {
			logger.Error("subscribe notice feed", zap.Error(err))
			return
		}

		go func() {
			defer cancel()
			readUntilClosed(conn)
		}()

		if err := send(conn, feedMessage{Type: "workspace", Data: newSnapshotView(svc.Snapshot())}); err != nil {
			return
		}

		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()

		for {
			var frame feedMessage
			var msg *message.Message
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
				continue
			case msg = <-changes:
				if msg == nil {
					return
				}
				s, err := events.DecodeSnapshot(msg.Payload)
				if err != nil {
					logger.Warn("undecodable workspace event", zap.Error(err))
					msg.Ack()
					continue
				}
				frame = feedMessage{Type: "workspace", Data: newSnapshotView(s)}
			case msg = <-notices:
				if msg == nil {
					return
				}
				frame = feedMessage{Type: "notice", Data: json.RawMessage(msg.Payload)}
			}
			msg.Ack()
			if err := send(conn, frame); err != nil {
				logger.Debug("renderer feed closed", zap.Error(err))
				return
			}
		}
	})
}

func readUntilClosed(conn *websocket.Conn) {
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func send(conn *websocket.Conn, frame feedMessage) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(frame)
}
