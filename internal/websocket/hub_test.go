package websocket

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/vntrieu/werewolf/internal/games"
	"github.com/vntrieu/werewolf/internal/orchestrator"
	"github.com/vntrieu/werewolf/internal/store"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := NewHub(nil, zerolog.Nop())
	go hub.Run(ctx)
	return hub
}

func testClient(hub *Hub, gameID, playerID string) *Client {
	return &Client{
		hub:      hub,
		send:     make(chan *ServerEnvelope, 256),
		GameID:   gameID,
		PlayerID: playerID,
		ctx:      context.Background(),
	}
}

func receive(t *testing.T, c *Client) *ServerEnvelope {
	t.Helper()
	select {
	case out := <-c.send:
		return out
	case <-time.After(200 * time.Millisecond):
		t.Fatalf("client %s: nothing received", c.PlayerID)
		return nil
	}
}

func expectNothing(t *testing.T, c *Client) {
	t.Helper()
	select {
	case out := <-c.send:
		t.Errorf("client %s: unexpected %s %s", c.PlayerID, out.Type, out.Event)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := startHub(t)
	client := testClient(hub, "game-1", "player-1")

	hub.register <- client
	time.Sleep(10 * time.Millisecond)
	if count := hub.GetGameClientCount("game-1"); count != 1 {
		t.Errorf("expected 1 client in game, got %d", count)
	}
	if !hub.Connected("game-1", "player-1") || hub.Connected("game-1", "player-2") {
		t.Error("unexpected Connected result")
	}

	hub.unregister <- client
	time.Sleep(10 * time.Millisecond)
	if count := hub.GetGameClientCount("game-1"); count != 0 {
		t.Errorf("expected 0 clients after unregister, got %d", count)
	}
	if _, ok := <-client.send; ok {
		t.Error("expected send channel closed")
	}
}

func TestHub_MultipleGames(t *testing.T) {
	hub := startHub(t)
	for _, c := range []*Client{
		testClient(hub, "game-1", "a"),
		testClient(hub, "game-1", "b"),
		testClient(hub, "game-2", "a"),
	} {
		hub.register <- c
	}
	time.Sleep(10 * time.Millisecond)
	if got := hub.GetGameClientCount("game-1"); got != 2 {
		t.Errorf("expected 2 clients in game-1, got %d", got)
	}
	if got := hub.GetGameClientCount("game-2"); got != 1 {
		t.Errorf("expected 1 client in game-2, got %d", got)
	}
}

func TestHub_PublishEventsFiltersByVisibility(t *testing.T) {
	hub := startHub(t)
	wolf := testClient(hub, "game-1", "wolf")
	villager := testClient(hub, "game-1", "villager")
	other := testClient(hub, "game-2", "wolf")
	for _, c := range []*Client{wolf, villager, other} {
		hub.register <- c
	}
	time.Sleep(10 * time.Millisecond)

	hub.PublishEvents("game-1", []store.EventRecord{
		{Seq: 1, Event: games.Event{Type: games.EventNightKill, TargetID: "villager", VisibleTo: []string{"wolf"}}},
		{Seq: 2, Event: games.Event{Type: games.EventNoDeath, Public: true}},
	})

	got := receive(t, wolf)
	if got.Type != ServerTypeEvent || got.Event != string(games.EventNightKill) {
		t.Fatalf("wolf: expected night_kill first, got %+v", got)
	}
	if p, ok := got.Payload.(EventPayload); !ok || p.Seq != 1 {
		t.Errorf("wolf: unexpected payload %+v", got.Payload)
	}
	if got := receive(t, wolf); got.Event != string(games.EventNoDeath) {
		t.Errorf("wolf: expected no_death, got %s", got.Event)
	}

	if got := receive(t, villager); got.Event != string(games.EventNoDeath) {
		t.Errorf("villager: expected only the public event, got %s", got.Event)
	}
	expectNothing(t, villager)
	expectNothing(t, other)
}

func TestHub_AskAndResolve(t *testing.T) {
	hub := startHub(t)
	seat := testClient(hub, "game-1", "seer")
	hub.register <- seat
	time.Sleep(10 * time.Millisecond)

	type result struct {
		d   orchestrator.Decision
		err error
	}
	done := make(chan result, 1)
	go func() {
		d, err := NewRemoteDecider(hub, "game-1", "seer").Decide(context.Background(),
			orchestrator.Prompt{Kind: orchestrator.KindSeerCheck, PlayerID: "seer", Options: []string{"x"}})
		done <- result{d, err}
	}()

	prompt := receive(t, seat)
	if prompt.Type != ServerTypePrompt || prompt.CorrelationID == "" || prompt.Event != string(orchestrator.KindSeerCheck) {
		t.Fatalf("unexpected prompt %+v", prompt)
	}
	if err := hub.Resolve("game-1", "someone-else", prompt.CorrelationID, orchestrator.Decision{}); !errors.Is(err, ErrUnknownPrompt) {
		t.Errorf("expected ErrUnknownPrompt for foreign seat, got %v", err)
	}
	if err := hub.Resolve("game-1", "seer", prompt.CorrelationID, orchestrator.Decision{TargetID: "x"}); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if err := hub.Resolve("game-1", "seer", prompt.CorrelationID, orchestrator.Decision{TargetID: "x"}); !errors.Is(err, ErrUnknownPrompt) {
		t.Errorf("expected second answer rejected, got %v", err)
	}

	select {
	case r := <-done:
		if r.err != nil || r.d.TargetID != "x" {
			t.Errorf("unexpected result %+v", r)
		}
	case <-time.After(time.Second):
		t.Fatal("Decide did not return")
	}
}

func TestHub_AskNotConnected(t *testing.T) {
	hub := startHub(t)
	_, err := hub.Ask(context.Background(), "game-1", "nobody", orchestrator.Prompt{Kind: orchestrator.KindVote})
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("expected ErrNotConnected, got %v", err)
	}
}

func TestHub_AskTimesOut(t *testing.T) {
	hub := startHub(t)
	seat := testClient(hub, "game-1", "guard")
	hub.register <- seat
	time.Sleep(10 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err := hub.Ask(ctx, "game-1", "guard", orchestrator.Prompt{Kind: orchestrator.KindGuardProtect})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	prompt := receive(t, seat)
	if err := hub.Resolve("game-1", "guard", prompt.CorrelationID, orchestrator.Decision{}); !errors.Is(err, ErrUnknownPrompt) {
		t.Errorf("expected expired prompt rejected, got %v", err)
	}
}

func TestTrimToMax(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short", "hello", 10, "hello"},
		{"ascii cut", "hello world", 5, "hello"},
		{"inside a two-byte rune", "cafés", 4, "caf"},
		{"on a rune boundary", "cafés", 5, "café"},
		{"inside a four-byte rune", "ok🐺", 4, "ok"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := trimToMax(tt.in, tt.max)
			if got != tt.want || !utf8.ValidString(got) {
				t.Errorf("trimToMax(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}

	long := strings.Repeat("狼", MaxSpeechLength)
	if got := trimToMax(long, MaxSpeechLength); !utf8.ValidString(got) || len(got) > MaxSpeechLength {
		t.Errorf("long speech trimmed to %d bytes, valid=%v", len(got), utf8.ValidString(got))
	}
}
