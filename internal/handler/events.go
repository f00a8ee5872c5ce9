package handler // handler package contains the change stream handler

import (
	"log"      // log reports connection problems
	"net/http" // http is needed by the upgrader
	"time"     // time sets deadlines and the ping period

	"github.com/gorilla/websocket" // websocket upgrades the change stream
	"github.com/labstack/echo/v4"  // echo is the web framework used for handlers

	"github.com/iliyamo/menu-factory/internal/events"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// EventsHandler streams menu change events to browsers so the views can
// refresh on change.
type EventsHandler struct {
	Hub *events.Hub
}

func NewEventsHandler(hub *events.Hub) *EventsHandler {
	if hub == nil {
		panic("nil hub passed to NewEventsHandler")
	}
	return &EventsHandler{Hub: hub}
}

// Stream handles GET /v1/events.  Each change is sent as a JSON text
// message; clients re-read /v1/snapshot on receipt.
func (h *EventsHandler) Stream(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Printf("events: upgrade failed: %v", err)
		return nil // the upgrader already answered
	}
	changes, cancel := h.Hub.Subscribe()
	defer cancel()
	defer conn.Close()

	closed := make(chan struct{})
	go readPump(conn, closed)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-closed:
			return nil
		case ev, ok := <-changes:
			if !ok {
				return nil
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				return nil
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		}
	}
}

// readPump discards client messages and closes done when the peer goes away.
func readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("events: connection error: %v", err)
			}
			return
		}
	}
}
