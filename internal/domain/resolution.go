package domain

// Resolve scores one round. The active player's guess at gap is checked against
// their own timeline; challenger bets are checked against the same timeline.
//
// players is not modified; the returned slice carries the updated timelines and
// token balances.
func Resolve(players []Player, activeIndex int, card Card, gap int, challenges []ChallengeRecord) ([]Player, RevealResult) {
	out := make([]Player, len(players))
	copy(out, players)

	active := out[activeIndex]
	timeline := active.Timeline
	result := RevealResult{
		Correct:    IsCorrectPlacement(timeline, gap, card.Year),
		ActualYear: card.Year,
	}

	index := make(map[string]int, len(out))
	for i, p := range out {
		index[p.ID] = i
	}

	if result.Correct {
		out[activeIndex].Timeline = InsertAt(timeline, gap, card)
		// Stakes are forfeited to no one.
		for _, c := range challenges {
			i, ok := index[c.PlayerID]
			if !ok {
				continue
			}
			before := out[i].Tokens
			out[i].Tokens = max(0, before-ChallengeStake)
			result.note(c.PlayerID, out[i].Tokens-before)
		}
		return out, result
	}

	var stealer *ChallengeRecord
	for k, c := range challenges {
		if IsCorrectPlacement(timeline, c.Gap, card.Year) {
			if stealer == nil {
				stealer = &challenges[k]
			}
			continue
		}
		i, ok := index[c.PlayerID]
		if !ok || out[i].Tokens < ChallengeStake {
			continue
		}
		out[i].Tokens -= ChallengeStake
		result.Pot += ChallengeStake
		result.note(c.PlayerID, -ChallengeStake)
	}

	if stealer == nil {
		// Card is discarded and the pot leaves circulation.
		return out, result
	}
	i, ok := index[stealer.PlayerID]
	if !ok {
		return out, result
	}
	out[i].Timeline = InsertSorted(out[i].Timeline, card)
	out[i].Tokens += result.Pot
	result.note(stealer.PlayerID, result.Pot)
	result.StolenBy = out[i].Name
	result.StolenByID = out[i].ID
	return out, result
}

func (r *RevealResult) note(playerID string, delta int) {
	if r.TokenChanges == nil {
		r.TokenChanges = make(map[string]int)
	}
	r.TokenChanges[playerID] += delta
}
