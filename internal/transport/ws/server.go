// Package ws bridges websocket clients to the session loop. The transport
// is dumb on purpose: it validates the handshake, forwards ACT messages in
// arrival order, and drains the loop's outbound queue.
package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"geogrid.app/internal/game/session"
	"geogrid.app/internal/protocol"
)

type Server struct {
	loop *session.Loop
	log  *log.Logger

	upgrader websocket.Upgrader
}

func NewServer(loop *session.Loop, logger *log.Logger) *Server {
	return &Server{
		loop: loop,
		log:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		clientID, out := s.handshake(conn)
		if clientID == "" {
			return
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b, ok := <-out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				break
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil || base.Type != protocol.TypeAct {
				continue
			}
			var act protocol.ActMsg
			if err := json.Unmarshal(msg, &act); err != nil {
				continue
			}
			if act.ProtocolVersion != protocol.Version {
				continue
			}
			s.loop.Inbox() <- session.Envelope{ClientID: clientID, Act: act}
		}

		s.loop.Leave() <- clientID
	}
}

func (s *Server) handshake(conn *websocket.Conn) (clientID string, out chan []byte) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return "", nil
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"), time.Now().Add(time.Second))
		return "", nil
	}

	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return "", nil
	}
	if hello.ProtocolVersion != protocol.Version {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"), time.Now().Add(time.Second))
		return "", nil
	}
	if hello.ClientName == "" {
		hello.ClientName = "client"
	}

	out = make(chan []byte, 64)
	resp := make(chan session.JoinResponse, 1)
	s.loop.Join() <- session.JoinRequest{Name: hello.ClientName, Out: out, Resp: resp}
	jr := <-resp

	b, err := json.Marshal(jr.Welcome)
	if err != nil {
		return "", nil
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		return "", nil
	}
	return jr.ClientID, out
}
