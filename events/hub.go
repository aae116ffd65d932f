package events

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sakura-poker/reservation-app/models"
)

// Event types pushed to connected admin dashboards.
const (
	EventReservationCreate = "reservation_create"
	EventReservationUpdate = "reservation_update"
	EventTableUpdate       = "table_update"
	EventDashboardUpdate   = "dashboard_update"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub holds every connected dashboard client keyed by role.
type Hub struct {
	clients map[*websocket.Conn]string
	mutex   sync.Mutex
}

var hub = Hub{
	clients: make(map[*websocket.Conn]string),
}

// RegisterClient adds a connection with its role.
func RegisterClient(conn *websocket.Conn, role string) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	hub.clients[conn] = role
}

// UnregisterClient removes and closes a connection.
func UnregisterClient(conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	delete(hub.clients, conn)
	conn.Close()
}

// BroadcastReservation announces a reservation create or update. Best-effort:
// a dead client is dropped, the booking is never blocked.
func BroadcastReservation(event string, reservation models.Reservation) {
	BroadcastMessage(Message{
		Event: event,
		Data:  reservation,
	})
}

// BroadcastTableUpdate announces a catalog edit.
func BroadcastTableUpdate(table models.PokerTable) {
	BroadcastMessage(Message{
		Event: EventTableUpdate,
		Data:  table,
	})
}

func BroadcastMessage(msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Failed to marshal event %s: %v", msg.Event, err)
		return
	}

	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	for conn := range hub.clients {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			delete(hub.clients, conn)
			conn.Close()
		}
	}
}
