package app

import (
	"encoding/json"
	"fmt"
)

// Envelope is the wire form of an action.
type Envelope struct {
	Type    ActionKind      `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func newAction(kind ActionKind) (Action, bool) {
	switch kind {
	case ActionAddPlayer:
		return &AddPlayer{}, true
	case ActionRemovePlayer:
		return &RemovePlayer{}, true
	case ActionStartGame:
		return &StartGame{}, true
	case ActionDistributeInitialCards:
		return &DistributeInitialCards{}, true
	case ActionSetCurrentCard:
		return &SetCurrentCard{}, true
	case ActionResetCurrentCard:
		return &ResetCurrentCard{}, true
	case ActionGuessGap:
		return &GuessGap{}, true
	case ActionToggleChallenger:
		return &ToggleChallenger{}, true
	case ActionStartChallengeRound:
		return &StartChallengeRound{}, true
	case ActionPlaceBet:
		return &PlaceBet{}, true
	case ActionPassChallenge:
		return &PassChallenge{}, true
	case ActionConfirmReveal:
		return &ConfirmReveal{}, true
	case ActionNextTurn:
		return &NextTurn{}, true
	case ActionSkipCard:
		return &SkipCard{}, true
	case ActionAutoPlace:
		return &AutoPlace{}, true
	case ActionContinueGame:
		return &ContinueGame{}, true
	case ActionAdjustTokens:
		return &AdjustTokens{}, true
	case ActionRestoreState:
		return &RestoreState{}, true
	}
	return nil, false
}

// DecodeAction parses an envelope into a value action accepted by Apply.
func DecodeAction(data []byte) (Action, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode action envelope: %w", err)
	}
	ptr, ok := newAction(env.Type)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, env.Type)
	}
	if len(env.Payload) > 0 && string(env.Payload) != "null" {
		if err := json.Unmarshal(env.Payload, ptr); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", env.Type, err)
		}
	}
	return deref(ptr), nil
}

func deref(a Action) Action {
	switch p := a.(type) {
	case *AddPlayer:
		return *p
	case *RemovePlayer:
		return *p
	case *StartGame:
		return *p
	case *DistributeInitialCards:
		return *p
	case *SetCurrentCard:
		return *p
	case *ResetCurrentCard:
		return *p
	case *GuessGap:
		return *p
	case *ToggleChallenger:
		return *p
	case *StartChallengeRound:
		return *p
	case *PlaceBet:
		return *p
	case *PassChallenge:
		return *p
	case *ConfirmReveal:
		return *p
	case *NextTurn:
		return *p
	case *SkipCard:
		return *p
	case *AutoPlace:
		return *p
	case *ContinueGame:
		return *p
	case *AdjustTokens:
		return *p
	case *RestoreState:
		return *p
	}
	return a
}

// EncodeAction renders action as an envelope.
func EncodeAction(action Action) ([]byte, error) {
	if action == nil {
		return nil, ErrUnknownAction
	}
	payload, err := json.Marshal(action)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", action.Kind(), err)
	}
	return json.Marshal(Envelope{Type: action.Kind(), Payload: payload})
}
