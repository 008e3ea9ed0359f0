package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zulandar/atelier/internal/ai"
	"github.com/zulandar/atelier/internal/event"
	"github.com/zulandar/atelier/internal/hub"
)

const (
	// sendBuffer bounds the per-session outbound queue. A session that
	// cannot drain this many events is dropped rather than allowed to
	// stall broadcasts for the whole room.
	sendBuffer = 256

	writeTimeout = 10 * time.Second
	pingInterval = 30 * time.Second
)

// wsSession is one websocket connection. It implements room.Sender: the
// broadcaster enqueues onto send, the write pump drains it, so a slow
// peer never blocks the engine lock.
type wsSession struct {
	id   string
	h    *hub.Hub
	conn *websocket.Conn

	send chan outbound
	done chan struct{}
	once sync.Once
}

func newWSSession(id string, h *hub.Hub, conn *websocket.Conn) *wsSession {
	return &wsSession{
		id:   id,
		h:    h,
		conn: conn,
		send: make(chan outbound, sendBuffer),
		done: make(chan struct{}),
	}
}

// Send implements room.Sender. Non-blocking: a full buffer or closed
// session returns an error instead of stalling the broadcaster.
func (s *wsSession) Send(eventName string, data any) error {
	select {
	case <-s.done:
		return fmt.Errorf("server: session %s closed", s.id)
	default:
	}
	select {
	case s.send <- outbound{Event: eventName, Data: data}:
		return nil
	default:
		return fmt.Errorf("server: session %s outbound buffer full", s.id)
	}
}

func (s *wsSession) close() {
	s.once.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}

// run services the connection until it drops, then tears the session
// down. In-flight mutations submitted before the drop still complete and
// broadcast; only future deliveries stop.
func (s *wsSession) run(ctx context.Context) {
	go s.writePump()
	s.readPump(ctx)

	s.h.Disconnect(s.id)
	s.close()
}

// readPump parses inbound envelopes and dispatches them one at a time.
// Commands for one session run to completion in arrival order.
func (s *wsSession) readPump(ctx context.Context) {
	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("server: session %s read: %v", s.id, err)
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			s.sendError("error", fmt.Sprintf("malformed message: %v", err))
			continue
		}
		if env.Event == "disconnect" {
			return
		}
		s.handle(ctx, env)
	}
}

// writePump drains the outbound queue, pinging during idle stretches.
func (s *wsSession) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeTimeout))
			return
		case msg := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := s.conn.WriteJSON(msg); err != nil {
				// A websocket write deadline cannot be recovered.
				log.Printf("server: session %s write: %v", s.id, err)
				s.close()
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				s.close()
				return
			}
		}
	}
}

// handle routes one inbound command to the hub. Every failure maps to a
// named error event delivered to this session only.
func (s *wsSession) handle(ctx context.Context, env Envelope) {
	switch env.Event {
	case "join-project":
		var p joinPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			s.sendError("error", fmt.Sprintf("join-project: %v", err))
			return
		}
		if err := s.h.Join(ctx, s.id, p.UserID, p.ProjectID, p.Mode, s); err != nil {
			s.sendError("error", err.Error())
		}

	case "change-mode":
		var p modePayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			s.sendError("error", fmt.Sprintf("change-mode: %v", err))
			return
		}
		if err := s.h.ChangeMode(s.id, p.Mode); err != nil {
			s.sendError("error", err.Error())
		}

	case "design-change":
		var p designPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			s.sendError("error", fmt.Sprintf("design-change: %v", err))
			return
		}
		if err := s.h.DesignChange(s.id, p.Type, p.Target, p.Payload); err != nil {
			s.sendError("error", err.Error())
		}

	case "logic-change":
		var p logicPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			s.sendError("error", fmt.Sprintf("logic-change: %v", err))
			return
		}
		if err := s.h.LogicChange(s.id, p.Type, p.NodeType, p.Payload); err != nil {
			s.sendError("error", err.Error())
		}

	case "code-change":
		var p codePayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			s.sendError("error", fmt.Sprintf("code-change: %v", err))
			return
		}
		if err := s.h.CodeChange(s.id, p.Type, p.Payload); err != nil {
			s.sendError("error", err.Error())
		}

	case "sync-event":
		var ev event.Event
		if err := json.Unmarshal(env.Data, &ev); err != nil {
			s.sendError("error", fmt.Sprintf("sync-event: %v", err))
			return
		}
		if err := s.h.Relay(s.id, ev); err != nil {
			s.sendError("error", err.Error())
		}

	case "cursor-update":
		var cur hub.Cursor
		if err := json.Unmarshal(env.Data, &cur); err != nil {
			s.sendError("error", fmt.Sprintf("cursor-update: %v", err))
			return
		}
		if err := s.h.CursorUpdate(s.id, cur); err != nil {
			s.sendError("error", err.Error())
		}

	case "user-activity":
		s.h.Activity(s.id)

	case "ai-request":
		var p aiPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			s.sendError("ai-error", fmt.Sprintf("ai-request: %v", err))
			return
		}
		resp, err := s.h.AIRequest(ctx, s.id, ai.Request{
			Type:    p.Type,
			Prompt:  p.Prompt,
			Context: p.Context,
		})
		if err != nil {
			s.sendError("ai-error", err.Error())
			return
		}
		s.reply("ai-response", resp)

	case "save-project":
		if err := s.h.Save(ctx, s.id); err != nil {
			s.sendError("save-error", err.Error())
			return
		}
		s.reply("project-saved", nil)

	case "export-project":
		var p exportPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			s.sendError("export-error", fmt.Sprintf("export-project: %v", err))
			return
		}
		exp, err := s.h.Export(s.id, p.Format)
		if err != nil {
			s.sendError("export-error", err.Error())
			return
		}
		s.reply("project-exported", exp)

	default:
		s.sendError("error", fmt.Sprintf("unknown command %q", env.Event))
	}
}

func (s *wsSession) reply(eventName string, data any) {
	if err := s.Send(eventName, data); err != nil {
		log.Printf("server: reply %s to %s: %v", eventName, s.id, err)
	}
}

func (s *wsSession) sendError(eventName, message string) {
	if err := s.Send(eventName, errorPayload{Message: message}); err != nil {
		log.Printf("server: send %s to %s: %v", eventName, s.id, err)
	}
}
