package websocket

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/vntrieu/werewolf/internal/auth"
	"github.com/vntrieu/werewolf/internal/games"
	"github.com/vntrieu/werewolf/internal/orchestrator"
	"github.com/vntrieu/werewolf/internal/store"
)

type fakeStates struct{}

func (fakeStates) View(_ context.Context, gameID, playerID string) (*games.PlayerView, error) {
	if gameID != "game-1" {
		return nil, errors.New("not found")
	}
	return &games.PlayerView{GameID: gameID, PlayerID: playerID, Phase: games.PhaseNight}, nil
}

// wireEnvelope is ServerEnvelope as a client decodes it.
type wireEnvelope struct {
	Type          string                 `json:"type"`
	Event         string                 `json:"event"`
	CorrelationID string                 `json:"correlation_id"`
	Payload       map[string]interface{} `json:"payload"`
}

func newTestServer(t *testing.T) (*httptest.Server, *Hub, *auth.Signer) {
	t.Helper()
	signer, err := auth.NewSigner([]byte("test-secret"))
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	hub := startHub(t)
	hub.SetEventHandler(NewEventHandler(hub, fakeStates{}, nil, zerolog.Nop()))
	ws := NewWSHandler(hub, signer, fakeStates{}, zerolog.Nop())

	r := chi.NewRouter()
	r.Get("/api/games/{id}/ws", ws.HandleGameWebSocket)
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server, hub, signer
}

func dial(t *testing.T, server *httptest.Server, gameID, token string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/games/" + gameID + "/ws?token=" + token
	return websocket.DefaultDialer.Dial(url, nil)
}

func readEnvelope(t *testing.T, conn *websocket.Conn) wireEnvelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env wireEnvelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read: %v", err)
	}
	return env
}

func TestWebSocket_RejectsBadTokens(t *testing.T) {
	server, _, signer := newTestServer(t)
	otherGame, _, _ := signer.Issue("game-2", "p1", time.Hour)

	tests := []struct {
		name   string
		gameID string
		token  string
		status int
	}{
		{"missing token", "game-1", "", http.StatusUnauthorized},
		{"garbage token", "game-1", "abc.def", http.StatusUnauthorized},
		{"token for another game", "game-1", otherGame, http.StatusUnauthorized},
		{"unknown game", "game-2", otherGame, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, resp, err := dial(t, server, tt.gameID, tt.token)
			if err == nil {
				conn.Close()
				t.Fatal("expected dial to fail")
			}
			if resp == nil || resp.StatusCode != tt.status {
				t.Errorf("expected status %d, got %+v", tt.status, resp)
			}
		})
	}
}

func TestWebSocket_SeatSession(t *testing.T) {
	server, hub, signer := newTestServer(t)
	token, _, _ := signer.Issue("game-1", "p1", time.Hour)

	conn, _, err := dial(t, server, "game-1", token)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	state := readEnvelope(t, conn)
	if state.Type != ServerTypeState || state.Payload["player_id"] != "p1" {
		t.Fatalf("expected initial state for p1, got %+v", state)
	}

	hub.PublishEvents("game-1", []store.EventRecord{
		{Seq: 1, Event: games.Event{Type: games.EventSeerCheck, VisibleTo: []string{"p2"}}},
		{Seq: 2, Event: games.Event{Type: games.EventPhaseChange, Public: true}},
	})
	ev := readEnvelope(t, conn)
	if ev.Type != ServerTypeEvent || ev.Event != string(games.EventPhaseChange) || ev.Payload["seq"] != float64(2) {
		t.Fatalf("expected only the public phase_change, got %+v", ev)
	}

	done := make(chan orchestrator.Decision, 1)
	go func() {
		d, err := NewRemoteDecider(hub, "game-1", "p1").Decide(context.Background(),
			orchestrator.Prompt{Kind: orchestrator.KindVote, PlayerID: "p1", Options: []string{"p3"}, CanSkip: true})
		if err == nil {
			done <- d
		}
	}()
	prompt := readEnvelope(t, conn)
	if prompt.Type != ServerTypePrompt || prompt.Event != string(orchestrator.KindVote) {
		t.Fatalf("expected vote prompt, got %+v", prompt)
	}
	reply := ClientInMessage{
		Type:          ClientMessageTypeDecision,
		CorrelationID: prompt.CorrelationID,
		Decision:      &orchestrator.Decision{TargetID: "p3"},
	}
	if err := conn.WriteJSON(reply); err != nil {
		t.Fatalf("write: %v", err)
	}
	select {
	case d := <-done:
		if d.TargetID != "p3" {
			t.Errorf("expected p3, got %+v", d)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("decision not delivered")
	}

	if err := conn.WriteJSON(ClientInMessage{Type: ClientMessageTypeSyncState}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if sync := readEnvelope(t, conn); sync.Type != ServerTypeState {
		t.Errorf("expected state after sync_state, got %+v", sync)
	}

	if err := conn.WriteJSON(ClientInMessage{Type: "chat"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if bad := readEnvelope(t, conn); bad.Type != ServerTypeError {
		t.Errorf("expected error for unsupported type, got %+v", bad)
	}

	if err := conn.WriteJSON(ClientInMessage{Type: ClientMessageTypeDecision, CorrelationID: "stale", Decision: &orchestrator.Decision{}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if bad := readEnvelope(t, conn); bad.Type != ServerTypeError {
		t.Errorf("expected error for stale prompt, got %+v", bad)
	}
}
