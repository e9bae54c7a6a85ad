package app

// MinPlayersToStartGame defines the minimum number of seated players required to start a game.
// Local hot-seat play allows a single player practising alone.
const MinPlayersToStartGame = 1

// MinContestantsToContinue is how many unfinished players, besides the current winner,
// must remain for play to continue for the next place.
const MinContestantsToContinue = 2
