package models

// Player - зарегистрированный игрок. Имя уникально и не меняется после создания.
type Player struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
