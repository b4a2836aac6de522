package useCases

// DefaultReasons каталог текстов жалоб по умолчанию
var DefaultReasons = []string{
	"Содержит российскую пропаганду",
	"Военная пропаганда",
	"Пропаганда насилия",
	"Фейки и дезинформация о войне",
	"Дезинформация оккупантов",
	"Разжигание ненависти",
	"Разжигание вражды",
	"Разжигание межнациональной розни",
	"Российские фейки",
	"Diversionary activity of Russian terrorism in Ukraine",
	"Russian occupants channel",
	"Fakes and disinformation",
	"Content against human rights",
	"СМИ, подконтрольные оккупантам",
	"Пророссийские и антизападные СМИ",
	"Антизападные СМИ",
	"Распространение дезинформации",
}

// Rand источник случайности; *rand.Rand подходит
type Rand interface {
	Intn(n int) int
}

// MessagePicker выбирает текст жалобы
type MessagePicker struct {
	catalog []string
	rnd     Rand
}

// NewMessagePicker falls back to DefaultReasons when catalog is empty.
func NewMessagePicker(catalog []string, rnd Rand) *MessagePicker {
	if len(catalog) == 0 {
		catalog = DefaultReasons
	}
	return &MessagePicker{catalog: catalog, rnd: rnd}
}

// Pick returns override when set, otherwise a uniform draw from the catalog.
func (p *MessagePicker) Pick(override string) string {
	if override != "" {
		return override
	}
	return p.catalog[p.rnd.Intn(len(p.catalog))]
}
