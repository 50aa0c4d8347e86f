package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"param-server/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// handleWebsockets is the main Hub loop
func (s *AdminServer) handleWebsockets(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(s.hubDone)
			for client := range s.clients {
				delete(s.clients, client)
				close(client.send)
			}
			return

		case client := <-s.register:
			s.clients[client] = struct{}{}
			// Replay history on connect
			for _, event := range s.recentSnapshot() {
				select {
				case client.send <- event:
				default:
				}
			}

		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				close(client.send)
			}

		case event := <-s.broadcast:
			s.stateMutex.Lock()
			s.recent = append(s.recent, event)
			if len(s.recent) > recentEvents {
				s.recent = s.recent[len(s.recent)-recentEvents:]
			}
			s.stateMutex.Unlock()

			for client := range s.clients {
				if !client.wants(event.Symbol) {
					continue
				}
				select {
				case client.send <- event:
				default:
					// Client too slow, disconnect to prevent Hub blocking
					delete(s.clients, client)
					close(client.send)
				}
			}
		}
	}
}

// -----------------------------------------------------------------------------
// Event Sink Implementation
// -----------------------------------------------------------------------------

// Publish queues a served event for the feed. It never blocks: when the
// queue is full the event is dropped and counted.
func (s *AdminServer) Publish(event models.MServedEvent) {
	s.served.Add(1)
	select {
	case s.broadcast <- event:
	default:
		s.dropped.Add(1)
	}
}

// -----------------------------------------------------------------------------

func (s *AdminServer) recentSnapshot() []models.MServedEvent {
	s.stateMutex.RLock()
	defer s.stateMutex.RUnlock()
	return append([]models.MServedEvent{}, s.recent...)
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *AdminServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		hub:  s,
		conn: conn,
		// Buffered channel to prevent blocking the Hub loop
		send: make(chan models.MServedEvent, 64),
	}

	select {
	case s.register <- client:
	case <-s.hubDone:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

func (s *AdminServer) HandleClientMessage(client *Client, message []byte) {
	var cmd models.MFeedCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		s.Logger.Info("Failed to parse client command: %v, disconnecting client", err)
		client.conn.Close()
		return
	}

	if cmd.Command != "subscribe" {
		return
	}

	symbols := make([]string, 0, len(cmd.Symbols))
	for _, sym := range cmd.Symbols {
		if sym = strings.ToUpper(strings.TrimSpace(sym)); sym != "" {
			symbols = append(symbols, sym)
		}
	}
	client.setFilter(symbols)
}
