package handlers_test

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenloop/recycle-be/internal/realtime"
)

func wsURL(httpURL, path string) string {
	return "ws" + strings.TrimPrefix(httpURL, "http") + path
}

func TestPointsStreamDeliversAwards(t *testing.T) {
	ts, store := newTestAPI(t)
	seedUser(t, store, "ADMIN", "admin@example.com", 0, true)
	seedUser(t, store, "U1", "member@example.com", 20, false)

	memberToken := loginAs(t, ts.URL, "member@example.com")
	header := http.Header{"Authorization": []string{"Bearer " + memberToken}}
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(ts.URL, "/ws/points"), header)
	require.NoError(t, err)
	if resp != nil {
		defer resp.Body.Close()
	}
	defer conn.Close()

	// Give the server side a moment to register its subscription.
	time.Sleep(50 * time.Millisecond)

	adminToken := loginAs(t, ts.URL, "admin@example.com")
	awardResp, _ := doJSON(t, http.MethodPost, ts.URL+"/points/award", adminToken, map[string]any{
		"identityToken": "U1",
		"points":        7,
	})
	require.Equal(t, http.StatusOK, awardResp.StatusCode)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event struct {
		Topic   string                 `json:"topic"`
		Payload realtime.BalanceUpdate `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, realtime.PointsTopic("U1"), event.Topic)
	assert.Equal(t, int64(27), event.Payload.Points)
}

func TestPointsStreamRequiresAuth(t *testing.T) {
	ts, _ := newTestAPI(t)
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(ts.URL, "/ws/points"), nil)
	if conn != nil {
		conn.Close()
	}
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProductsStreamSeesNewProducts(t *testing.T) {
	ts, store := newTestAPI(t)
	seedUser(t, store, "ADMIN", "admin@example.com", 0, true)

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(ts.URL, "/ws/products"), nil)
	require.NoError(t, err)
	if resp != nil {
		defer resp.Body.Close()
	}
	defer conn.Close()

	time.Sleep(50 * time.Millisecond)

	adminToken := loginAs(t, ts.URL, "admin@example.com")
	createResp, _ := doJSON(t, http.MethodPost, ts.URL+"/products", adminToken, map[string]any{
		"name": "Recycled Planter", "price": 4.5,
	})
	require.Equal(t, http.StatusCreated, createResp.StatusCode)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event struct {
		Topic string `json:"topic"`
	}
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, realtime.ProductsTopic, event.Topic)
}
