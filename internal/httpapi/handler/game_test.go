package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/vntrieu/werewolf/internal/auth"
	"github.com/vntrieu/werewolf/internal/gamelog"
	"github.com/vntrieu/werewolf/internal/games"
	"github.com/vntrieu/werewolf/internal/httpapi/handler"
	"github.com/vntrieu/werewolf/internal/session"
	"github.com/vntrieu/werewolf/internal/store"
)

// fakeGames returns err from every call, or canned values when err is nil.
type fakeGames struct {
	err     error
	created session.CreateRequest
	stopKey string
	log     *gamelog.GameLog
}

func (f *fakeGames) Create(_ context.Context, req session.CreateRequest) (*session.Created, error) {
	f.created = req
	if f.err != nil {
		return nil, f.err
	}
	return &session.Created{Game: &store.Game{ID: "g1"}, HostKey: "host"}, nil
}

func (f *fakeGames) List(context.Context, int) ([]store.Game, error) {
	return nil, f.err
}

func (f *fakeGames) Get(_ context.Context, id string) (*store.Game, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &store.Game{ID: id, Status: store.StatusInProgress}, nil
}

func (f *fakeGames) View(_ context.Context, id, playerID string) (*games.PlayerView, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &games.PlayerView{GameID: id, PlayerID: playerID}, nil
}

func (f *fakeGames) Events(_ context.Context, _, playerID string, after int) ([]store.EventRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []store.EventRecord{{Seq: after + 1, Event: games.Event{Type: games.EventSpeech, ActorID: playerID, Public: true}}}, nil
}

func (f *fakeGames) Log(context.Context, string) (*gamelog.GameLog, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.log, nil
}

func (f *fakeGames) Stop(_ context.Context, _, key string) error {
	f.stopKey = key
	return f.err
}

func newRouter(svc handler.GameService) http.Handler {
	h := handler.NewGameHandler(svc, zerolog.Nop())
	r := chi.NewRouter()
	r.Post("/api/games", h.CreateGame)
	r.Get("/api/games", h.ListGames)
	r.Get("/api/games/{id}", h.GetGame)
	r.Get("/api/games/{id}/view", h.GetView)
	r.Get("/api/games/{id}/events", h.ListEvents)
	r.Get("/api/games/{id}/log", h.GetLog)
	r.Get("/api/games/{id}/stats", h.GetStats)
	r.Post("/api/games/{id}/stop", h.StopGame)
	return r
}

func do(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func withSeat(req *http.Request, gameID, playerID string) *http.Request {
	claims := &auth.Claims{GameID: gameID, PlayerID: playerID}
	return req.WithContext(context.WithValue(req.Context(), handler.SeatClaimsContextKey, claims))
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", session.ErrGameNotFound, http.StatusNotFound},
		{"forbidden", session.ErrForbidden, http.StatusForbidden},
		{"not running", session.ErrNotRunning, http.StatusConflict},
		{"not finished", session.ErrNotFinished, http.StatusConflict},
		{"invalid seat", fmt.Errorf("%w: 13", session.ErrInvalidSeat), http.StatusBadRequest},
		{"invalid config", fmt.Errorf("%w: role set", games.ErrInvalidConfig), http.StatusBadRequest},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(&fakeGames{err: tt.err})
			req := httptest.NewRequest(http.MethodPost, "/api/games/g1/stop", nil)
			req.Header.Set(handler.HostKeyHeader, "key")
			if w := do(t, r, req); w.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}

func TestCreateGame(t *testing.T) {
	t.Run("201 with empty body", func(t *testing.T) {
		svc := &fakeGames{}
		w := do(t, newRouter(svc), httptest.NewRequest(http.MethodPost, "/api/games", nil))
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
		}
		var created session.Created
		if err := json.NewDecoder(w.Body).Decode(&created); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if created.HostKey != "host" || created.Game.ID != "g1" {
			t.Errorf("unexpected response %+v", created)
		}
	})

	t.Run("passes options through", func(t *testing.T) {
		svc := &fakeGames{}
		body := `{"role_set":"B","seed":9,"human_seats":[1,5]}`
		w := do(t, newRouter(svc), httptest.NewRequest(http.MethodPost, "/api/games", strings.NewReader(body)))
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", w.Code)
		}
		if svc.created.RoleSet != games.RoleSetB || svc.created.Seed == nil || *svc.created.Seed != 9 || len(svc.created.HumanSeats) != 2 {
			t.Errorf("unexpected request %+v", svc.created)
		}
	})

	rejects := []struct {
		name string
		body string
	}{
		{"malformed json", `{"role_set":`},
		{"empty name", `{"names":[""]}`},
		{"long name", `{"names":["` + strings.Repeat("n", handler.MaxNameLen+1) + `"]}`},
	}
	for _, tt := range rejects {
		t.Run("400 "+tt.name, func(t *testing.T) {
			w := do(t, newRouter(&fakeGames{}), httptest.NewRequest(http.MethodPost, "/api/games", strings.NewReader(tt.body)))
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", w.Code)
			}
		})
	}
}

func TestListGames(t *testing.T) {
	r := newRouter(&fakeGames{})
	w := do(t, r, httptest.NewRequest(http.MethodGet, "/api/games", nil))
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("expected an empty array, got %d %q", w.Code, w.Body.String())
	}
	for _, limit := range []string{"0", "101", "ten"} {
		w := do(t, r, httptest.NewRequest(http.MethodGet, "/api/games?limit="+limit, nil))
		if w.Code != http.StatusBadRequest {
			t.Errorf("limit %s: expected 400, got %d", limit, w.Code)
		}
	}
}

func TestSeatEndpoints(t *testing.T) {
	r := newRouter(&fakeGames{})

	t.Run("view requires a seat", func(t *testing.T) {
		w := do(t, r, httptest.NewRequest(http.MethodGet, "/api/games/g1/view", nil))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	})

	t.Run("view for own seat", func(t *testing.T) {
		req := withSeat(httptest.NewRequest(http.MethodGet, "/api/games/g1/view", nil), "g1", "p1")
		w := do(t, r, req)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var view games.PlayerView
		if err := json.NewDecoder(w.Body).Decode(&view); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if view.PlayerID != "p1" {
			t.Errorf("expected p1's view, got %+v", view)
		}
	})

	t.Run("token for another game", func(t *testing.T) {
		for _, path := range []string{"/api/games/g2/view", "/api/games/g2/events"} {
			req := withSeat(httptest.NewRequest(http.MethodGet, path, nil), "g1", "p1")
			if w := do(t, r, req); w.Code != http.StatusForbidden {
				t.Errorf("%s: expected 403, got %d", path, w.Code)
			}
		}
	})

	t.Run("events use the seat and after", func(t *testing.T) {
		req := withSeat(httptest.NewRequest(http.MethodGet, "/api/games/g1/events?after=4", nil), "g1", "p1")
		w := do(t, r, req)
		var recs []store.EventRecord
		if err := json.NewDecoder(w.Body).Decode(&recs); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(recs) != 1 || recs[0].Seq != 5 || recs[0].Event.ActorID != "p1" {
			t.Errorf("unexpected events %+v", recs)
		}
	})

	t.Run("bad after", func(t *testing.T) {
		w := do(t, r, httptest.NewRequest(http.MethodGet, "/api/games/g1/events?after=-1", nil))
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
	})
}

func TestGetLog(t *testing.T) {
	l := &gamelog.GameLog{GameID: "g1", WinningTeam: games.TeamVillage, FinalDay: 2}
	r := newRouter(&fakeGames{log: l})

	tests := []struct {
		query       string
		code        int
		contentType string
		contains    string
	}{
		{"", http.StatusOK, "application/json", `"winning_team": "village"`},
		{"?format=json", http.StatusOK, "application/json", `"final_day": 2`},
		{"?format=yaml", http.StatusOK, "application/x-yaml", "winning_team: village"},
		{"?format=xml", http.StatusBadRequest, "", ""},
	}
	for _, tt := range tests {
		t.Run("format"+tt.query, func(t *testing.T) {
			w := do(t, r, httptest.NewRequest(http.MethodGet, "/api/games/g1/log"+tt.query, nil))
			if w.Code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, w.Code)
			}
			if tt.contentType != "" && w.Header().Get("Content-Type") != tt.contentType {
				t.Errorf("expected %s, got %s", tt.contentType, w.Header().Get("Content-Type"))
			}
			if !strings.Contains(w.Body.String(), tt.contains) {
				t.Errorf("body missing %q:\n%s", tt.contains, w.Body.String())
			}
		})
	}

	w := do(t, newRouter(&fakeGames{err: session.ErrNotFinished}), httptest.NewRequest(http.MethodGet, "/api/games/g1/log", nil))
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409 while running, got %d", w.Code)
	}
}

func TestStopGame(t *testing.T) {
	svc := &fakeGames{}
	r := newRouter(svc)

	w := do(t, r, httptest.NewRequest(http.MethodPost, "/api/games/g1/stop", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without a host key, got %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/games/g1/stop", nil)
	req.Header.Set(handler.HostKeyHeader, "the-key")
	w = do(t, r, req)
	if w.Code != http.StatusAccepted || svc.stopKey != "the-key" {
		t.Errorf("expected 202 with the key passed through, got %d (%q)", w.Code, svc.stopKey)
	}
}
