package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"edc-panorama-api-server/internal/auth"
	"edc-panorama-api-server/internal/database"
	"edc-panorama-api-server/internal/models"
	"edc-panorama-api-server/internal/socket"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func TestServeWs_ReceivesBroadcasts(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := database.NewMemoryStore()
	user := models.User{FirstName: "Paul", Email: "paul@edc.cm", Permissions: models.Permissions{CanReadList: true}}
	if err := store.InsertUser(context.Background(), &user); err != nil {
		t.Fatal(err)
	}
	tokens, _ := auth.NewTokenIssuer("ws-secret", time.Hour)
	token, _ := tokens.GenerateJWT(user.ID.Hex(), user.Email)

	hub := socket.NewHub()
	h := &WebSocketHandler{Hub: hub, Tokens: tokens, Users: store}
	r := gin.New()
	r.GET("/ws", h.ServeWs)
	srv := httptest.NewServer(r)
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	if _, resp, err := websocket.DefaultDialer.Dial(wsURL+"?token=bad", nil); err == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad token: err = %v", err)
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?token="+token, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Len() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	hub.Broadcast(socket.EventLogsChanged, database.LogsCollection)
	hub.Broadcast(socket.EventAssetsChanged, database.AssetsCollection)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev socket.Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if ev.Event != socket.EventAssetsChanged || ev.Collection != database.AssetsCollection {
		t.Errorf("non-admin received %+v, want only assets.changed", ev)
	}
}
