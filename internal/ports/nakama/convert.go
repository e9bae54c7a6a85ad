package nakama

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"hitstory/internal/domain"
)

var standingsJSON = protojson.MarshalOptions{EmitUnpopulated: true}

// standingsToProto builds the scoreboard document sent by the standings RPC.
func standingsToProto(state *domain.GameState) (*structpb.Struct, error) {
	rows := domain.Standings(state.Players)
	list := make([]interface{}, 0, len(rows))
	for _, r := range rows {
		list = append(list, map[string]interface{}{
			"playerId": r.PlayerID,
			"name":     r.Name,
			"cards":    r.Cards,
			"tokens":   r.Tokens,
			"place":    r.Place,
			"final":    r.Final,
		})
	}
	doc, err := structpb.NewStruct(map[string]interface{}{
		"phase":       string(state.Phase),
		"targetScore": state.Settings.TargetScore,
		"winnerId":    state.WinnerID,
		"standings":   list,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build standings: %w", err)
	}
	return doc, nil
}

func marshalStandings(state *domain.GameState) (string, error) {
	doc, err := standingsToProto(state)
	if err != nil {
		return "", err
	}
	data, err := standingsJSON.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal standings: %w", err)
	}
	return string(data), nil
}
