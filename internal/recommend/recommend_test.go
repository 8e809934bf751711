package recommend

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobby-s-dev/wardrobe-bot/internal/models"
)

func TestDefaultRules_Valid(t *testing.T) {
	require.NoError(t, DefaultRules().Validate())
}

func TestBandFor_ExactlyOneInsideRange(t *testing.T) {
	rules := DefaultRules()

	for temp := -50.0; temp < 50; temp += 0.5 {
		band, ok := rules.BandFor(temp)
		require.True(t, ok, "temp %v", temp)
		assert.True(t, band.Contains(temp), "temp %v", temp)

		matches := 0
		for _, b := range rules.Bands {
			if b.Contains(temp) {
				matches++
			}
		}
		assert.Equal(t, 1, matches, "temp %v", temp)
	}
}

func TestBandFor_Boundaries(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		temp    float64
		wantMin float64
		wantOK  bool
	}{
		{-50, -50, true},
		{-0.01, -50, true},
		{0, 0, true},
		{9.99, 0, true},
		{10, 10, true},
		{18, 18, true},
		{24.9, 18, true},
		{25, 25, true},
		{49.99, 25, true},
		{50, 0, false},
		{-50.01, 0, false},
		{-60, 0, false},
	}

	for _, tt := range tests {
		band, ok := rules.BandFor(tt.temp)
		assert.Equal(t, tt.wantOK, ok, "temp %v", tt.temp)
		if tt.wantOK {
			assert.Equal(t, tt.wantMin, band.Min, "temp %v", tt.temp)
		}
	}
}

func TestRecommend_WarmAndWindy(t *testing.T) {
	lines := DefaultRules().Recommend(models.WeatherSnapshot{Temperature: 22, WindSpeed: 15})

	assert.Equal(t, []string{
		"👕 Тепло: Футболка/рубашка, джинсы/шорты",
		"💨 Сильный ветер: Ветровка/непродуваемая одежда",
	}, lines)
}

func TestRecommend_OutOfRangeTemperature(t *testing.T) {
	lines := DefaultRules().Recommend(models.WeatherSnapshot{Temperature: -60, Snow: true})

	assert.Equal(t, []string{"❄️ Ожидается снег: Наденьте непромокаемую обувь"}, lines)

	assert.Empty(t, DefaultRules().Recommend(models.WeatherSnapshot{Temperature: 55}))
}

func TestRecommend_ConditionsInTableOrder(t *testing.T) {
	rules := DefaultRules()

	for _, wind := range []float64{5, 10, 10.5} {
		for _, rain := range []bool{false, true} {
			for _, snow := range []bool{false, true} {
				s := models.WeatherSnapshot{Temperature: 5, WindSpeed: wind, Rain: rain, Snow: snow}

				var want []string
				want = append(want, "🥶 Холодно: Пуховик/демисезонная куртка, шапка, тёплый свитер")
				if wind > 10 {
					want = append(want, "💨 Сильный ветер: Ветровка/непродуваемая одежда")
				}
				if rain {
					want = append(want, "☔ Ожидается дождь: Возьмите зонт или дождевик")
				}
				if snow {
					want = append(want, "❄️ Ожидается снег: Наденьте непромокаемую обувь")
				}

				assert.Equal(t, want, rules.Recommend(s), "wind=%v rain=%v snow=%v", wind, rain, snow)
			}
		}
	}
}

func TestValidate_RejectsBrokenTables(t *testing.T) {
	gap := DefaultRules()
	gap.Bands[2].Min = 11
	assert.ErrorContains(t, gap.Validate(), "band 2 starts at 11")

	inverted := DefaultRules()
	inverted.Bands[0].Max = -60
	assert.Error(t, inverted.Validate())

	unknown := DefaultRules()
	unknown.Conditions[1].Kind = "hail"
	assert.Error(t, unknown.Validate())

	empty := Rules{}
	assert.Error(t, empty.Validate())
}

func TestLoadRules(t *testing.T) {
	dir := t.TempDir()

	valid := filepath.Join(dir, "rules.json")
	require.NoError(t, os.WriteFile(valid, []byte(`{
		"temperature_ranges": [
			{"min_temp": -30, "max_temp": 15, "description": "cold", "recommendation": "coat"},
			{"min_temp": 15, "max_temp": 40, "description": "warm", "recommendation": "shirt"}
		],
		"special_conditions": [
			{"kind": "wind_above", "threshold": 8, "description": "wind", "recommendation": "windbreaker"}
		]
	}`), 0o600))

	rules, err := LoadRules(valid)
	require.NoError(t, err)
	require.Len(t, rules.Bands, 2)
	assert.Equal(t, []string{"warm: shirt", "wind: windbreaker"},
		rules.Recommend(models.WeatherSnapshot{Temperature: 20, WindSpeed: 9}))

	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte(`{"temperature_ranges": [`), 0o600))
	_, err = LoadRules(broken)
	assert.Error(t, err)

	_, err = LoadRules(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
