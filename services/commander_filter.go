package services

import (
	"sort"
	"strings"

	"github.com/Dosada05/commander-ledger/scryfall"
)

// Grist в колоде лежит планесвокером, но по правилам формата может быть командиром.
const gristName = "Grist, the Hunger Tide"

// CommanderCollector отбирает командиров из потока карт по одной, не держа весь датасет в памяти.
// Нулевое значение готово к работе.
type CommanderCollector struct {
	seen  map[string]struct{}
	names []string
}

// Add учитывает карту. Повторное имя игнорируется: побеждает первое вхождение.
func (c *CommanderCollector) Add(card scryfall.Card) {
	name, ok := commanderName(card)
	if !ok {
		return
	}
	if c.seen == nil {
		c.seen = make(map[string]struct{})
	}
	if _, dup := c.seen[name]; dup {
		return
	}
	c.seen[name] = struct{}{}
	c.names = append(c.names, name)
}

// Len возвращает число уже отобранных командиров.
func (c *CommanderCollector) Len() int {
	return len(c.names)
}

// Names возвращает отсортированную копию списка.
func (c *CommanderCollector) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	sort.Strings(out)
	return out
}

// FilterCommanders возвращает отсортированный список уникальных имён карт, которые могут быть командиром.
func FilterCommanders(cards []scryfall.Card) []string {
	var c CommanderCollector
	for _, card := range cards {
		c.Add(card)
	}
	return c.Names()
}

// commanderName возвращает имя, под которым карта попадает в каталог, или false.
func commanderName(card scryfall.Card) (string, bool) {
	if !card.IsLegalIn(scryfall.FormatCommander) || !card.AvailableIn(scryfall.GamePaper) {
		return "", false
	}

	// Результат слияния (Brisela) сам себя перечисляет как meld_result.
	if result, ok := card.MeldResultName(); ok && result == card.Name {
		return "", false
	}

	name, typeLine := card.Name, card.TypeLine
	if len(card.CardFaces) > 0 {
		front := card.CardFaces[0]
		name = front.Name
		if front.TypeLine != nil {
			typeLine = front.TypeLine
		}
	}

	if typeLine == nil {
		return "", false
	}

	switch {
	case strings.Contains(*typeLine, "Creature") && strings.Contains(*typeLine, "Legendary"):
		return name, true
	case strings.Contains(*typeLine, "Background"):
		return name, true
	case name == gristName:
		return name, true
	case card.OracleText != nil && strings.Contains(*card.OracleText, "can be your commander"):
		return name, true
	}
	return "", false
}
