package services

import (
	"fmt"
	"sort"

	"github.com/Dosada05/commander-ledger/models"
)

const minPlayersPerGame = 2

// ValidateGameSubmission проверяет результат партии без обращения к базе.
// Возвращает nil, если результат можно записывать, иначе *RejectionError.
// Проверки идут в фиксированном порядке, возвращается первая сработавшая.
func ValidateGameSubmission(submission models.GameSubmission) error {
	players := submission.Players
	n := len(players)

	if n < minPlayersPerGame {
		return reject(ErrTooFewPlayers, "too few players: a game must have at least two players")
	}

	seen := make(map[string]struct{}, n)
	for _, p := range players {
		if _, ok := seen[p.Name]; ok {
			return reject(ErrDuplicatePlayer, fmt.Sprintf("duplicate player: %q appears more than once", p.Name))
		}
		seen[p.Name] = struct{}{}
	}

	if !submission.EndTime.After(submission.StartTime) {
		return reject(ErrEndNotAfterStart, "end not after start: end datetime cannot be earlier than or equal to start datetime")
	}

	draws := 0
	for _, p := range players {
		if p.Rank == models.DrawRank {
			draws++
		}
	}

	switch draws {
	case n:
		// Ничья: ранги дальше не проверяем.
	case 0:
		if err := validatePlacements(players); err != nil {
			return err
		}
	default:
		return reject(ErrPartialDraw, "partial draw not allowed: either every player has rank 0 or none does")
	}

	for _, p := range players {
		if len(p.Commanders) == 0 {
			return reject(ErrNoCommanders, fmt.Sprintf("player %q has no commanders", p.Name))
		}
		for _, commander := range p.Commanders {
			if commander == "" {
				return reject(ErrEmptyCommander, fmt.Sprintf("player %q has an empty string as a commander", p.Name))
			}
		}
	}

	return nil
}

// validatePlacements проверяет ранги партии без ничьей.
// Одинаковые ранги разрешены, пропуски нет: 1,1,3 корректно, 1,1,4 - нет.
func validatePlacements(players []models.SubmittedPlayer) error {
	n := len(players)

	allFirst := true
	for _, p := range players {
		if p.Rank < 1 || p.Rank > n {
			return reject(ErrRankOutOfBounds, fmt.Sprintf("rank out of bounds for player %q: rank %d must be between 1 and %d", p.Name, p.Rank, n))
		}
		if p.Rank != 1 {
			allFirst = false
		}
	}
	if allFirst {
		return reject(ErrAllTiedForFirst, "all players tied for first: record the game as a draw instead")
	}

	sorted := make([]models.SubmittedPlayer, n)
	copy(sorted, players)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Rank < sorted[j].Rank })

	if sorted[0].Rank != 1 {
		return reject(ErrNoFirstPlace, "invalid ranking: at least one player must come in first")
	}

	// Каждый следующий ранг равен либо своей позиции (1-based), либо предыдущему рангу.
	for i := 1; i < n; i++ {
		prev, cur := sorted[i-1].Rank, sorted[i].Rank
		pos := i + 1
		if cur != pos && cur != prev {
			return reject(ErrInvalidRanking, fmt.Sprintf(
				"invalid ranking: player %q has rank %d but should have rank %d or %d",
				sorted[i].Name, cur, pos, prev,
			))
		}
	}

	return nil
}
