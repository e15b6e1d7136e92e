package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const wsWriteTimeout = 10 * time.Second

// handleRenderWS streams a render over a websocket: progress and console
// messages, then one complete or error message. Closing the socket cancels
// the render.
func (s *Server) handleRenderWS(w http.ResponseWriter, r *http.Request) {
	// Bad requests are rejected before the upgrade
	req, err := s.parseRenderRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}
	job, err := s.newRenderJob(req, true)
	if err != nil {
		writeError(w, requestErrorStatus(err), err.Error())
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The client only ever closes; any read error means it is gone
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func(event RenderEvent) error {
		conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		return conn.WriteJSON(event)
	}

	if err := s.streamRender(ctx, job, send); err != nil {
		log.Info().Err(err).Str("scene", req.Scene).Msg("websocket render ended early")
		return
	}

	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "render finished"))
}
