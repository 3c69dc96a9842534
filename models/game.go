package models

import "time"

// DrawRank - ранг, которым помечаются все участники ничейной партии.
const DrawRank = 0

type Game struct {
	ID        int       `json:"id"`
	StartTime time.Time `json:"start_datetime"`
	EndTime   time.Time `json:"end_datetime"`
}

// Participation - участие одного игрока в одной партии (таблица games_players).
type Participation struct {
	ID       int `json:"id"`
	GameID   int `json:"game_id"`
	PlayerID int `json:"player_id"`
	Rank     int `json:"rank"`
}

// CommanderChoice - командир, которым играл участник (таблица commanders).
type CommanderChoice struct {
	ID              int    `json:"id"`
	ParticipationID int    `json:"games_players_id"`
	Commander       string `json:"commander"`
}

// SubmittedPlayer - строка результата, присланная клиентом.
type SubmittedPlayer struct {
	Name       string   `json:"name"`
	Rank       int      `json:"rank"`
	Commanders []string `json:"commanders"`
}

// GameSubmission - непроверенный результат партии от клиента.
type GameSubmission struct {
	StartTime time.Time         `json:"start_datetime"`
	EndTime   time.Time         `json:"end_datetime"`
	Players   []SubmittedPlayer `json:"players"`
}

// ParticipationRow - строка выборки games ⨝ games_players ⨝ players.
type ParticipationRow struct {
	GameID          int
	ParticipationID int
	StartTime       time.Time
	EndTime         time.Time
	PlayerName      string
	Rank            int
}

// CommanderRow - строка выборки commanders по участию.
type CommanderRow struct {
	ParticipationID int
	Commander       string
}

type PlayerResult struct {
	Name       string   `json:"name"`
	Rank       int      `json:"rank"`
	Commanders []string `json:"commanders"`
}

// GameView - собранное представление партии для чтения.
type GameView struct {
	ID        int            `json:"id"`
	StartTime time.Time      `json:"start_datetime"`
	EndTime   time.Time      `json:"end_datetime"`
	Players   []PlayerResult `json:"players"`
}
