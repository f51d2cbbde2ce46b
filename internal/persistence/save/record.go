// Package save is the persistence bridge: it fixes the on-disk JSON schema
// for a session snapshot and owns the debounced write path. The schema is a
// compatibility surface; field names and the ["i,j", state] tuple layout
// never change.
package save

import (
	"encoding/json"
	"fmt"

	"geogrid.app/internal/game/store"
	"geogrid.app/internal/grid"
)

type Position struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type TokenV1 struct {
	Value int `json:"value"`
}

type CellStateV1 struct {
	Token     *TokenV1 `json:"token"`
	Timestamp int64    `json:"timestamp"`
}

// CellEntry serializes as a two-element array ["i,j", {token, timestamp}].
type CellEntry struct {
	Key   string
	State CellStateV1
}

func (e CellEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{e.Key, e.State})
}

func (e *CellEntry) UnmarshalJSON(b []byte) error {
	var raw [2]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[0], &e.Key); err != nil {
		return fmt.Errorf("cell entry key: %w", err)
	}
	if err := json.Unmarshal(raw[1], &e.State); err != nil {
		return fmt.Errorf("cell entry state: %w", err)
	}
	return nil
}

type Record struct {
	PlayerPosition Position    `json:"playerPosition"`
	Inventory      *TokenV1    `json:"inventory"`
	ModifiedCells  []CellEntry `json:"modifiedCells"`
	Timestamp      int64       `json:"timestamp"`
}

func (r Record) Encode() ([]byte, error) {
	if r.ModifiedCells == nil {
		r.ModifiedCells = []CellEntry{}
	}
	return json.Marshal(r)
}

// Decode parses and validates a persisted record. Validation is
// deliberately shallow but strict about shape: playerPosition.lat/lng must
// be JSON numbers and modifiedCells must be an array. Any failure is an
// error; callers treat every error as "no saved state" and never
// partial-load.
func Decode(b []byte) (Record, error) {
	var shape struct {
		PlayerPosition map[string]json.RawMessage `json:"playerPosition"`
		ModifiedCells  json.RawMessage            `json:"modifiedCells"`
	}
	if err := json.Unmarshal(b, &shape); err != nil {
		return Record{}, fmt.Errorf("save record: %w", err)
	}
	if shape.PlayerPosition == nil {
		return Record{}, fmt.Errorf("save record: missing playerPosition")
	}
	for _, field := range []string{"lat", "lng"} {
		raw, ok := shape.PlayerPosition[field]
		if !ok {
			return Record{}, fmt.Errorf("save record: playerPosition.%s missing", field)
		}
		var n float64
		if err := json.Unmarshal(raw, &n); err != nil {
			return Record{}, fmt.Errorf("save record: playerPosition.%s not a number", field)
		}
	}
	if len(shape.ModifiedCells) == 0 {
		return Record{}, fmt.Errorf("save record: missing modifiedCells")
	}
	var cells []json.RawMessage
	if err := json.Unmarshal(shape.ModifiedCells, &cells); err != nil {
		return Record{}, fmt.Errorf("save record: modifiedCells not an array")
	}

	var rec Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return Record{}, fmt.Errorf("save record: %w", err)
	}
	return rec, nil
}

// CellEntries converts a store export into schema entries.
func CellEntries(entries []store.Entry) []CellEntry {
	out := make([]CellEntry, 0, len(entries))
	for _, e := range entries {
		cs := CellStateV1{Timestamp: e.Memento.Stamp}
		if e.Memento.Present {
			cs.Token = &TokenV1{Value: e.Memento.Value}
		}
		out = append(out, CellEntry{Key: e.Cell.Key(), State: cs})
	}
	return out
}

// StoreEntries converts schema entries back into a store import set. A
// malformed cell key poisons the whole record.
func StoreEntries(entries []CellEntry) ([]store.Entry, error) {
	out := make([]store.Entry, 0, len(entries))
	for _, e := range entries {
		c, err := grid.ParseKey(e.Key)
		if err != nil {
			return nil, err
		}
		m := store.Memento{Stamp: e.State.Timestamp}
		if e.State.Token != nil {
			m.Value = e.State.Token.Value
			m.Present = true
		}
		out = append(out, store.Entry{Cell: c, Memento: m})
	}
	return out, nil
}
