package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/placesbridge/internal/models"
)

type wsReply struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func dialAutocomplete(t *testing.T, env *testEnv) (*websocket.Conn, *WebSocketHandler) {
	t.Helper()
	handler := NewWebSocketHandler(env.service, env.config, arbor.NewLogger())

	server := httptest.NewServer(http.HandlerFunc(handler.HandleWebSocket))
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	first := readUntil(t, conn, WSTypeConnected)
	assert.Contains(t, string(first.Payload), `"platform":"places-new"`)
	return conn, handler
}

// readUntil reads messages until one of msgType arrives
func readUntil(t *testing.T, conn *websocket.Conn, msgType string) wsReply {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var reply wsReply
		require.NoError(t, json.Unmarshal(data, &reply))
		if reply.Type == msgType {
			return reply
		}
	}
}

func sendWS(t *testing.T, conn *websocket.Conn, msgType string, payload interface{}) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(map[string]interface{}{"type": msgType, "payload": payload}))
}

func TestWebSocket_InputThenSelect(t *testing.T) {
	env := newTestEnv(t, true)
	conn, handler := dialAutocomplete(t, env)
	assert.Equal(t, 1, handler.ClientCount())

	sendWS(t, conn, WSTypeInput, map[string]string{"text": "cof"})
	sendWS(t, conn, WSTypeInput, map[string]string{"text": "coffee"})

	loading := readUntil(t, conn, WSTypeLoading)
	assert.JSONEq(t, `{"loading":true}`, string(loading.Payload))

	reply := readUntil(t, conn, WSTypePredictions)
	var predictions []models.Prediction
	require.NoError(t, json.Unmarshal(reply.Payload, &predictions))
	require.Len(t, predictions, 1)
	assert.Equal(t, "Coffee", predictions[0].Title)

	sendWS(t, conn, WSTypeSelect, map[string]string{"place_id": "p1"})
	reply = readUntil(t, conn, WSTypeDetails)

	var details models.PlaceDetails
	require.NoError(t, json.Unmarshal(reply.Payload, &details))
	assert.Equal(t, "p1", details.PlaceID)

	// the connection's session was recorded; the shared HTTP session was never touched
	sessions, err := env.storage.SessionStorage().ListSessions(t.Context(), 10)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, models.SessionOutcomeSelected, sessions[0].Outcome)
	assert.Equal(t, models.SessionStateNone, env.service.SessionState())
}

func TestWebSocket_BlankInputAnswersImmediately(t *testing.T) {
	env := newTestEnv(t, true)
	conn, _ := dialAutocomplete(t, env)

	sendWS(t, conn, WSTypeInput, map[string]string{"text": "   "})
	reply := readUntil(t, conn, WSTypePredictions)
	assert.JSONEq(t, `[]`, string(reply.Payload))
}

func TestWebSocket_Errors(t *testing.T) {
	env := newTestEnv(t, true)
	conn, _ := dialAutocomplete(t, env)

	sendWS(t, conn, WSTypeSelect, map[string]string{"place_id": "missing"})
	reply := readUntil(t, conn, WSTypeError)
	assert.Contains(t, string(reply.Payload), models.ErrCodePlaceNotFound)

	sendWS(t, conn, "bogus", nil)
	reply = readUntil(t, conn, WSTypeError)
	assert.Contains(t, string(reply.Payload), models.ErrCodeInvalidRequest)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	reply = readUntil(t, conn, WSTypeError)
	assert.Contains(t, string(reply.Payload), models.ErrCodeInvalidRequest)
}

func TestWebSocket_OptionsApplied(t *testing.T) {
	env := newTestEnv(t, true)
	conn, _ := dialAutocomplete(t, env)

	// invalid countries fail validation on the next request
	sendWS(t, conn, WSTypeOptions, map[string]interface{}{"countries": []string{"australia"}})
	sendWS(t, conn, WSTypeInput, map[string]string{"text": "coffee"})

	reply := readUntil(t, conn, WSTypeError)
	assert.Contains(t, string(reply.Payload), models.ErrCodeInvalidRequest)

	reply = readUntil(t, conn, WSTypePredictions)
	assert.JSONEq(t, `[]`, string(reply.Payload))
}

func TestWebSocket_DisconnectRemovesClient(t *testing.T) {
	env := newTestEnv(t, true)
	conn, handler := dialAutocomplete(t, env)

	require.Equal(t, 1, handler.ClientCount())
	conn.Close()

	require.Eventually(t, func() bool { return handler.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}
