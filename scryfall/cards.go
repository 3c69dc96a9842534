package scryfall

// BulkData - метаданные, которые отдаёт эндпоинт bulk-data.
type BulkData struct {
	Object      string `json:"object"`
	Type        string `json:"type"`
	DownloadURI string `json:"download_uri"`
	UpdatedAt   string `json:"updated_at"`
	Size        int64  `json:"size"`
}

// Card - часть карточки Scryfall, нужная каталогу командиров.
// Любое поле кроме Name может отсутствовать в зависимости от layout карты.
type Card struct {
	Name       string            `json:"name"`
	Layout     string            `json:"layout,omitempty"`
	TypeLine   *string           `json:"type_line,omitempty"`
	OracleText *string           `json:"oracle_text,omitempty"`
	Legalities map[string]string `json:"legalities,omitempty"`
	Games      []string          `json:"games,omitempty"`
	AllParts   []RelatedPart     `json:"all_parts,omitempty"`
	CardFaces  []CardFace        `json:"card_faces,omitempty"`
}

// RelatedPart - связанная карта (части meld, токены, комбо).
type RelatedPart struct {
	Component string `json:"component"`
	Name      string `json:"name"`
}

// CardFace - одна сторона многосторонней карты.
type CardFace struct {
	Name     string  `json:"name"`
	TypeLine *string `json:"type_line,omitempty"`
}

const (
	ComponentMeldPart   = "meld_part"
	ComponentMeldResult = "meld_result"

	FormatCommander = "commander"
	LegalityLegal   = "legal"
	GamePaper       = "paper"
)

// IsLegalIn сообщает, легальна ли карта в формате.
func (c Card) IsLegalIn(format string) bool {
	return c.Legalities[format] == LegalityLegal
}

// AvailableIn сообщает, печаталась ли карта для данной среды (paper, arena, mtgo).
func (c Card) AvailableIn(game string) bool {
	for _, g := range c.Games {
		if g == game {
			return true
		}
	}
	return false
}

// MeldResultName возвращает имя первого meld-результата, в котором участвует карта.
func (c Card) MeldResultName() (string, bool) {
	for _, part := range c.AllParts {
		if part.Component == ComponentMeldResult {
			return part.Name, true
		}
	}
	return "", false
}
