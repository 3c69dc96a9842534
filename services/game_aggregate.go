package services

import "github.com/Dosada05/commander-ledger/models"

// AggregateGames собирает вложенные представления партий из нормализованных строк.
// Порядок партий и игроков сохраняется таким, каким он пришёл из выборки.
func AggregateGames(rows []models.ParticipationRow, commanderRows []models.CommanderRow) []models.GameView {
	commandersByParticipation := make(map[int][]string, len(rows))
	for _, row := range commanderRows {
		commandersByParticipation[row.ParticipationID] = append(commandersByParticipation[row.ParticipationID], row.Commander)
	}

	games := make([]models.GameView, 0)
	indexByGameID := make(map[int]int)

	for _, row := range rows {
		idx, ok := indexByGameID[row.GameID]
		if !ok {
			games = append(games, models.GameView{
				ID:        row.GameID,
				StartTime: row.StartTime,
				EndTime:   row.EndTime,
				Players:   make([]models.PlayerResult, 0, 4),
			})
			idx = len(games) - 1
			indexByGameID[row.GameID] = idx
		}

		commanders := commandersByParticipation[row.ParticipationID]
		if commanders == nil {
			commanders = []string{}
		}
		games[idx].Players = append(games[idx].Players, models.PlayerResult{
			Name:       row.PlayerName,
			Rank:       row.Rank,
			Commanders: commanders,
		})
	}

	return games
}
