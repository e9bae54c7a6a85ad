package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"hitstory/internal/domain"
)

// ErrCorruptSnapshot marks a stored document that is not a game state.
var ErrCorruptSnapshot = errors.New("corrupt snapshot")

// Encode serializes the whole state as one JSON document.
func Encode(state *domain.GameState) ([]byte, error) {
	if state == nil {
		return nil, fmt.Errorf("%w: nil state", ErrCorruptSnapshot)
	}
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// Decode parses a snapshot. The document must be an object with a "players" array;
// anything else is ErrCorruptSnapshot.
func Decode(data []byte) (*domain.GameState, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	players, ok := fields["players"]
	if !ok || !bytes.HasPrefix(bytes.TrimSpace(players), []byte("[")) {
		return nil, fmt.Errorf("%w: players array missing", ErrCorruptSnapshot)
	}
	var state domain.GameState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	return &state, nil
}
