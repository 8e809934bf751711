// Package recommend turns a weather snapshot into clothing advice using a
// declarative rule table: temperature bands plus independent special conditions.
package recommend

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

// ConditionKind names the predicate a Condition evaluates.
type ConditionKind string

const (
	WindAbove ConditionKind = "wind_above"
	Rain      ConditionKind = "rain"
	Snow      ConditionKind = "snow"
)

// Band is a half-open temperature interval [Min, Max) with its advice.
type Band struct {
	Min    float64 `json:"min_temp"`
	Max    float64 `json:"max_temp" validate:"gtfield=Min"`
	Label  string  `json:"description" validate:"required"`
	Advice string  `json:"recommendation" validate:"required"`
}

func (b Band) Contains(temp float64) bool {
	return b.Min <= temp && temp < b.Max
}

// Condition adds an advice line whenever its predicate holds. Threshold is
// only read by WindAbove.
type Condition struct {
	Kind      ConditionKind `json:"kind" validate:"oneof=wind_above rain snow"`
	Threshold float64       `json:"threshold,omitempty"`
	Label     string        `json:"description" validate:"required"`
	Advice    string        `json:"recommendation" validate:"required"`
}

// Rules is the full recommendation table. It is built once at startup and
// never mutated afterwards.
type Rules struct {
	Bands      []Band      `json:"temperature_ranges" validate:"required,min=1,dive"`
	Conditions []Condition `json:"special_conditions" validate:"dive"`
}

func DefaultRules() Rules {
	return Rules{
		Bands: []Band{
			{Min: -50, Max: 0, Label: "❄️ Сильный мороз", Advice: "Теплая зимняя куртка, шапка, шарф, перчатки, термобельё"},
			{Min: 0, Max: 10, Label: "🥶 Холодно", Advice: "Пуховик/демисезонная куртка, шапка, тёплый свитер"},
			{Min: 10, Max: 18, Label: "🧥 Прохладно", Advice: "Ветровка/джинсовка, лёгкий свитер/кофта"},
			{Min: 18, Max: 25, Label: "👕 Тепло", Advice: "Футболка/рубашка, джинсы/шорты"},
			{Min: 25, Max: 50, Label: "🔥 Жара", Advice: "Лёгкая одежда, головной убор, солнцезащитные очки"},
		},
		Conditions: []Condition{
			{Kind: WindAbove, Threshold: 10, Label: "💨 Сильный ветер", Advice: "Ветровка/непродуваемая одежда"},
			{Kind: Rain, Label: "☔ Ожидается дождь", Advice: "Возьмите зонт или дождевик"},
			{Kind: Snow, Label: "❄️ Ожидается снег", Advice: "Наденьте непромокаемую обувь"},
		},
	}
}

// Validate checks field constraints and that the bands are ascending and
// contiguous.
func (r Rules) Validate() error {
	if err := validator.New().Struct(r); err != nil {
		return fmt.Errorf("invalid rules: %w", err)
	}
	for i := 1; i < len(r.Bands); i++ {
		if r.Bands[i].Min != r.Bands[i-1].Max {
			return fmt.Errorf("invalid rules: band %d starts at %v, previous band ends at %v",
				i, r.Bands[i].Min, r.Bands[i-1].Max)
		}
	}
	return nil
}

// LoadRules reads a JSON rule table from path and validates it.
func LoadRules(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("reading rules file: %w", err)
	}

	var rules Rules
	if err := json.Unmarshal(data, &rules); err != nil {
		return Rules{}, fmt.Errorf("parsing rules file %s: %w", path, err)
	}
	if err := rules.Validate(); err != nil {
		return Rules{}, err
	}
	return rules, nil
}
