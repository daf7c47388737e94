package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"nhooyr.io/websocket"

	"github.com/dinofightergenesis/dinofighterg/internal/identity"
)

const wsWriteTimeout = 5 * time.Second

// stream pushes the caller's account view on connect and after every
// committed change.
func (s *Server) stream(w http.ResponseWriter, r *http.Request) {
	holderID, _ := identity.HolderFromContext(r.Context())
	if _, ok := s.open(w, r); !ok {
		return
	}
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: []string{"*"}})
	if err != nil {
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "stream closed")

	ctx := conn.CloseRead(r.Context())
	if err := s.pushUpdates(ctx, conn, holderID); err != nil {
		if websocket.CloseStatus(err) == -1 && ctx.Err() == nil {
			log.WithError(err).WithField("holder", holderID).Warn("account stream failed")
			_ = conn.Close(websocket.StatusInternalError, "stream error")
		}
	}
}

func (s *Server) pushUpdates(ctx context.Context, conn *websocket.Conn, holderID string) error {
	updates, err := s.sessions.Watch(ctx, holderID)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case rec, ok := <-updates:
			if !ok {
				return nil
			}
			data, err := json.Marshal(s.view(holderID, rec))
			if err != nil {
				return err
			}
			writeCtx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
			err = conn.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				return err
			}
		}
	}
}
