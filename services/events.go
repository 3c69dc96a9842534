package services

// Типы событий, рассылаемых подписчикам ленты.
const (
	EventGameRecorded     = "GAME_RECORDED"
	EventPlayerRegistered = "PLAYER_REGISTERED"
	EventCatalogRefreshed = "CATALOG_REFRESHED"
)

// EventPublisher рассылает события после успешной записи. Доставка не гарантируется.
type EventPublisher interface {
	Publish(eventType string, payload interface{})
}

type noopPublisher struct{}

func (noopPublisher) Publish(string, interface{}) {}

func publisherOrNoop(p EventPublisher) EventPublisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}
