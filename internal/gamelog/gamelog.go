// Package gamelog exports finished games as self-contained JSON or YAML records.
package gamelog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/vntrieu/werewolf/internal/games"
)

// ErrUnsupportedFormat is returned for file extensions other than .json, .yaml and .yml.
var ErrUnsupportedFormat = errors.New("unsupported game log format")

// Format is an export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// PlayerLog is a seat with its role revealed.
type PlayerLog struct {
	ID         string          `json:"id" yaml:"id"`
	Name       string          `json:"name" yaml:"name"`
	SeatNumber int             `json:"seat_number" yaml:"seat_number"`
	Role       games.Role      `json:"role" yaml:"role"`
	Alignment  games.Alignment `json:"alignment" yaml:"alignment"`
	IsAlive    bool            `json:"is_alive" yaml:"is_alive"`
	IsSheriff  bool            `json:"is_sheriff" yaml:"is_sheriff"`
}

// GameLog is the full record of one game, private events included.
type GameLog struct {
	GameID      string             `json:"game_id" yaml:"game_id"`
	Seed        int64              `json:"seed" yaml:"seed"`
	RoleSet     games.RoleSet      `json:"role_set" yaml:"role_set"`
	Variants    games.RuleVariants `json:"rule_variants" yaml:"rule_variants"`
	WinningTeam games.Team         `json:"winning_team" yaml:"winning_team"`
	FinalDay    int                `json:"final_day" yaml:"final_day"`
	StartedAt   *time.Time         `json:"started_at,omitempty" yaml:"started_at,omitempty"`
	EndedAt     *time.Time         `json:"ended_at,omitempty" yaml:"ended_at,omitempty"`
	Players     []PlayerLog        `json:"players" yaml:"players"`
	Events      []games.Event      `json:"events" yaml:"events"`
}

// FromState builds a log from a game state, normally the final one.
func FromState(state *games.GameState) *GameLog {
	l := &GameLog{
		GameID:      state.GameID,
		Seed:        state.Seed,
		RoleSet:     state.Config.RoleSet,
		Variants:    state.Config.RuleVariants,
		WinningTeam: state.WinningTeam,
		FinalDay:    state.DayNumber,
		Players:     make([]PlayerLog, 0, len(state.Players)),
		Events:      append([]games.Event(nil), state.History...),
	}
	for _, p := range state.Players {
		l.Players = append(l.Players, PlayerLog{
			ID:         p.ID,
			Name:       p.Name,
			SeatNumber: p.SeatNumber,
			Role:       p.Role,
			Alignment:  p.Alignment,
			IsAlive:    p.IsAlive,
			IsSheriff:  p.IsSheriff,
		})
	}
	return l
}

// EventsOfType returns the events of one type in order.
func (l *GameLog) EventsOfType(t games.EventType) []games.Event {
	var out []games.Event
	for _, e := range l.Events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// PlayerName returns the name for id, or id itself when unknown.
func (l *GameLog) PlayerName(id string) string {
	for _, p := range l.Players {
		if p.ID == id {
			return p.Name
		}
	}
	return id
}

// FormatFromPath picks the encoding from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Encode writes l to w.
func (l *GameLog) Encode(w io.Writer, format Format) error {
	switch format {
	case FormatYAML:
		data, err := yaml.Marshal(l)
		if err != nil {
			return fmt.Errorf("marshal yaml: %w", err)
		}
		_, err = w.Write(data)
		return err
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(l)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Decode reads a log from r.
func Decode(r io.Reader, format Format) (*GameLog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read game log: %w", err)
	}
	var l GameLog
	switch format {
	case FormatYAML:
		if err = yaml.Unmarshal(data, &l); err == nil {
			err = normalizeEvents(&l)
		}
	case FormatJSON, "":
		err = json.Unmarshal(data, &l)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("decode game log: %w", err)
	}
	return &l, nil
}

// normalizeEvents gives YAML-decoded event data the shape JSON decoding produces: string
// keyed maps all the way down and float64 numbers.
func normalizeEvents(l *GameLog) error {
	for i := range l.Events {
		for k, v := range l.Events[i].Data {
			l.Events[i].Data[k] = stringKeys(v)
		}
	}
	raw, err := json.Marshal(l.Events)
	if err != nil {
		return err
	}
	var events []games.Event
	if err := json.Unmarshal(raw, &events); err != nil {
		return err
	}
	l.Events = events
	return nil
}

func stringKeys(v interface{}) interface{} {
	switch x := v.(type) {
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(x))
		for k, val := range x {
			m[fmt.Sprint(k)] = stringKeys(val)
		}
		return m
	case map[string]interface{}:
		for k, val := range x {
			x[k] = stringKeys(val)
		}
		return x
	case []interface{}:
		for i, val := range x {
			x[i] = stringKeys(val)
		}
		return x
	}
	return v
}

// Save writes l to path, creating parent directories. The extension picks the format.
func (l *GameLog) Save(path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := l.Encode(&buf, format); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write game log: %w", err)
	}
	return nil
}

// Load reads a log saved by Save.
func Load(path string) (*GameLog, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open game log: %w", err)
	}
	defer f.Close()
	return Decode(f, format)
}

// LoadDir loads every .json, .yaml and .yml log in dir. Unreadable files are skipped and
// reported in the returned error list.
func LoadDir(dir string) ([]*GameLog, []error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, []error{fmt.Errorf("read log dir: %w", err)}
	}
	var (
		logs []*GameLog
		errs []error
	)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, err := FormatFromPath(e.Name()); err != nil {
			continue
		}
		l, err := Load(filepath.Join(dir, e.Name()))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", e.Name(), err))
			continue
		}
		logs = append(logs, l)
	}
	return logs, errs
}
