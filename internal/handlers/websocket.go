package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/placesbridge/internal/common"
	"github.com/ternarybob/placesbridge/internal/models"
	"github.com/ternarybob/placesbridge/internal/services/places"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// Message types exchanged on /ws
const (
	WSTypeConnected   = "connected"
	WSTypeInput       = "input"
	WSTypeSelect      = "select"
	WSTypeOptions     = "options"
	WSTypePredictions = "predictions"
	WSTypeLoading     = "loading"
	WSTypeError       = "error"
	WSTypeDetails     = "details"
)

// WSMessage is an outbound websocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// wsInbound is an inbound websocket message; Payload is decoded per Type
type wsInbound struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type inputPayload struct {
	Text string `json:"text"`
}

type selectPayload struct {
	PlaceID string `json:"place_id"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// wsClient is one live autocomplete connection
type wsClient struct {
	id           string
	conn         *websocket.Conn
	writeMu      sync.Mutex
	autocomplete *places.Autocomplete
}

// send writes msg to the client. Writes are serialized per connection.
func (c *wsClient) send(msg WSMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// WebSocketHandler serves live autocomplete. Each connection gets its own facade session.
type WebSocketHandler struct {
	service *places.Service
	config  *common.Config
	logger  arbor.ILogger

	clients map[string]*wsClient
	mu      sync.RWMutex
}

func NewWebSocketHandler(service *places.Service, config *common.Config, logger arbor.ILogger) *WebSocketHandler {
	return &WebSocketHandler{
		service: service,
		config:  config,
		logger:  logger,
		clients: make(map[string]*wsClient),
	}
}

// ClientCount returns the number of connected clients
func (h *WebSocketHandler) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleWebSocket upgrades the connection and runs its read loop
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	client := &wsClient{id: uuid.New().String(), conn: conn}
	client.autocomplete = places.NewAutocomplete(
		h.service.NewSession(),
		h.config.Places.DebounceInterval,
		h.config.Places.RequestTimeout,
		h.listenersFor(client),
		h.logger,
	)

	h.mu.Lock()
	h.clients[client.id] = client
	clientCount := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug().Str("client_id", client.id).Int("clients", clientCount).Msg("WebSocket client connected")

	done := make(chan struct{})
	defer func() {
		close(done)
		client.autocomplete.Close()

		h.mu.Lock()
		delete(h.clients, client.id)
		remaining := len(h.clients)
		h.mu.Unlock()

		conn.Close()
		h.logger.Debug().Str("client_id", client.id).Int("clients", remaining).Msg("WebSocket client disconnected")
	}()

	client.send(WSMessage{
		Type: WSTypeConnected,
		Payload: map[string]interface{}{
			"client_id":     client.id,
			"platform":      h.service.Platform(),
			"session_state": client.autocomplete.SessionState(),
		},
	})

	pingInterval := h.config.WebSocket.PingInterval
	conn.SetReadLimit(h.config.WebSocket.ReadLimit)
	conn.SetReadDeadline(time.Now().Add(2 * pingInterval))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(2 * pingInterval))
	})
	common.SafeGo(h.logger, "ws-ping:"+client.id, func() { h.pingLoop(client, pingInterval, done) })

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.logger.Warn().Err(err).Str("client_id", client.id).Msg("WebSocket error")
			}
			return
		}
		h.handleMessage(r.Context(), client, data)
	}
}

func (h *WebSocketHandler) handleMessage(ctx context.Context, client *wsClient, data []byte) {
	var msg wsInbound
	if err := json.Unmarshal(data, &msg); err != nil {
		h.sendError(client, models.ErrCodeInvalidRequest, "message is not valid JSON")
		return
	}

	switch msg.Type {
	case WSTypeInput:
		var p inputPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			h.sendError(client, models.ErrCodeInvalidRequest, "input payload must be {\"text\": string}")
			return
		}
		client.autocomplete.Input(p.Text)

	case WSTypeSelect:
		var p selectPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil || p.PlaceID == "" {
			h.sendError(client, models.ErrCodeInvalidRequest, "select payload must be {\"place_id\": string}")
			return
		}
		// errors reach the client through the OnError listener
		if details, err := client.autocomplete.Select(ctx, p.PlaceID); err == nil {
			client.send(WSMessage{Type: WSTypeDetails, Payload: details})
		}

	case WSTypeOptions:
		var opts models.PredictionsRequest
		if err := json.Unmarshal(msg.Payload, &opts); err != nil {
			h.sendError(client, models.ErrCodeInvalidRequest, "invalid options payload")
			return
		}
		client.autocomplete.SetOptions(opts)

	default:
		h.sendError(client, models.ErrCodeInvalidRequest, "unknown message type: "+msg.Type)
	}
}

func (h *WebSocketHandler) listenersFor(client *wsClient) places.Listeners {
	return places.Listeners{
		OnPredictions: func(predictions []models.Prediction) {
			if err := client.send(WSMessage{Type: WSTypePredictions, Payload: predictions}); err != nil {
				h.logger.Debug().Err(err).Str("client_id", client.id).Msg("Failed to send predictions")
			}
		},
		OnLoading: func(loading bool) {
			client.send(WSMessage{Type: WSTypeLoading, Payload: map[string]bool{"loading": loading}})
		},
		OnError: func(err error) {
			h.sendError(client, models.ErrorCode(err), err.Error())
		},
	}
}

func (h *WebSocketHandler) sendError(client *wsClient, code, message string) {
	if err := client.send(WSMessage{Type: WSTypeError, Payload: errorPayload{Code: code, Message: message}}); err != nil {
		h.logger.Debug().Err(err).Str("client_id", client.id).Msg("Failed to send error")
	}
}

func (h *WebSocketHandler) pingLoop(client *wsClient, interval time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			client.writeMu.Lock()
			err := client.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
			client.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}
