package web

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/station64/internal/observability"
	"github.com/danmuck/station64/internal/petscii"
	"github.com/danmuck/station64/internal/screen"
)

// Frame types carried on the websocket. Callers send "line" frames;
// the server answers every inbound frame with exactly one "output" or
// "error" frame, plus a final "close" frame when the session ends.
const (
	frameLine   = "line"
	frameOutput = "output"
	frameError  = "error"
	frameClose  = "close"
)

// inboundFrame is one caller message envelope.
type inboundFrame struct {
	Type string `json:"type"`
	Data string `json:"data,omitempty"`
}

// outboundFrame is one server message envelope.
type outboundFrame struct {
	Type  string `json:"type"`
	Data  string `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

func (s *Server) handleWS(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		log.Warn().Str("remote", c.ClientIP()).Err(err).Msg("websocket upgrade rejected")
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	remote := c.ClientIP()
	active := s.activeConns.Add(1)
	observability.SessionOpened(transportName)
	log.Info().Str("remote", remote).Int64("active_conns", active).Msg("web caller connected")
	defer func() {
		remaining := s.activeConns.Add(-1)
		observability.SessionClosed(transportName)
		log.Info().Str("remote", remote).Int64("active_conns", remaining).Msg("web caller disconnected")
	}()

	sess, greeting := s.engine.NewSession(petscii.CharsetUTF8, transportName, remote)
	// Browser terminals render escapes; tint the welcome block the
	// classic light blue.
	welcome := screen.Clear(sess.Charset) + screen.Colorize(string(greeting), screen.LightBlue)
	if err := writeFrame(conn, outboundFrame{Type: frameOutput, Data: welcome}); err != nil {
		log.Warn().Str("session", sess.ID).Err(err).Msg("web greeting write failed")
		return
	}

	for {
		if s.cfg.IdleTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(s.cfg.IdleTimeout))
		}
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) && ctx.Err() == nil {
				log.Warn().Str("session", sess.ID).Err(err).Msg("web read failed")
			}
			return
		}

		var in inboundFrame
		if err := json.Unmarshal(payload, &in); err != nil {
			// Malformed frames are answered, not fatal.
			if writeFrame(conn, outboundFrame{Type: frameError, Error: "malformed frame"}) != nil {
				return
			}
			continue
		}

		switch in.Type {
		case frameLine:
			out, keepOpen := sess.HandleLine([]byte(in.Data))
			if err := writeFrame(conn, outboundFrame{Type: frameOutput, Data: string(out)}); err != nil {
				log.Warn().Str("session", sess.ID).Err(err).Msg("web write failed")
				return
			}
			if !keepOpen {
				_ = writeFrame(conn, outboundFrame{Type: frameClose})
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"))
				return
			}
		default:
			if writeFrame(conn, outboundFrame{Type: frameError, Error: fmt.Sprintf("unknown frame type %q", in.Type)}) != nil {
				return
			}
		}
	}
}

func writeFrame(conn *websocket.Conn, frame outboundFrame) error {
	return conn.WriteJSON(frame)
}
