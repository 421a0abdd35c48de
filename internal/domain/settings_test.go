package domain

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrice_JSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "number", input: `12000`},
		{name: "fraction", input: `32000.5`},
		{name: "label", input: `"По запросу"`},
		{name: "empty label", input: `""`},
		{name: "null", input: `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Price
			require.NoError(t, json.Unmarshal([]byte(tt.input), &p))
			out, err := json.Marshal(p)
			require.NoError(t, err)
			assert.JSONEq(t, tt.input, string(out))
		})
	}

	var p Price
	assert.Error(t, json.Unmarshal([]byte(`true`), &p))
}

func TestSettings_RoundTrip(t *testing.T) {
	documents := []string{
		`{"discountEnabled": true}`,
		`{"discountExpiry": "", "basicPrice": null}`,
		`{"heroBanner": {"title": "Запись открыта"}, "contactEmail": "hi@vxschool.com"}`,
		`{}`,
	}

	for _, doc := range documents {
		var s Settings
		require.NoError(t, json.Unmarshal([]byte(doc), &s), doc)
		out, err := json.Marshal(s)
		require.NoError(t, err)
		assert.JSONEq(t, doc, string(out))
	}
}

func TestSettings_AbsentKeysKeepDefaults(t *testing.T) {
	var s Settings
	require.NoError(t, json.Unmarshal([]byte(`{"discountText": "Лето"}`), &s))

	assert.True(t, s.Has("discountText"))
	assert.False(t, s.Has("basicPrice"))

	public := s.Public()
	assert.Equal(t, "Лето", public.DiscountText)
	assert.Equal(t, 20.0, public.DiscountPercent)
	require.NotNil(t, public.BasicPrice.Amount)
	assert.Equal(t, 10000.0, *public.BasicPrice.Amount)
}

func TestSettings_DefaultsRoundTripEqual(t *testing.T) {
	data, err := json.Marshal(DefaultSettings())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "discountExpiry")

	var s Settings
	require.NoError(t, json.Unmarshal(data, &s))
	assert.Equal(t, DefaultSettings(), s)
}

func TestSettings_Toggles(t *testing.T) {
	var s Settings
	require.NoError(t, json.Unmarshal([]byte(`{"discountText": "Лето"}`), &s))
	copied := s

	assert.True(t, s.ToggleDiscount())
	value, ok := s.TogglePackage("consultation")
	require.True(t, ok)
	assert.False(t, value)
	_, ok = s.TogglePackage("premium")
	assert.False(t, ok)

	out, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"discountText": "Лето", "discountEnabled": true, "consultationAvailable": false}`, string(out))

	// Marking keys on one value does not leak into a copy.
	assert.False(t, copied.Has("discountEnabled"))
}
