package i18n

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	testCases := []struct {
		name   string
		value  Text
		locale string
		want   string
	}{
		{"requested locale", Localized(Entry{"fr", "Bonjour"}, Entry{"en", "Hello"}), "en", "Hello"},
		{"fallback to fr", Localized(Entry{"fr", "Bonjour"}), "de", "Bonjour"},
		{"fallback to en", Localized(Entry{"it", "Ciao"}, Entry{"en", "Hello"}), "de", "Hello"},
		{"first declared value", Localized(Entry{"it", "Ciao"}, Entry{"es", "Hola"}), "de", "Ciao"},
		{"empty requested value falls through", Localized(Entry{"en", ""}, Entry{"fr", "Bonjour"}), "en", "Bonjour"},
		{"zero value", Text{}, "fr", ""},
		{"empty localized", Localized(), "fr", ""},
		{"plain", Plain("Plain"), "en", "Plain"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Resolve(tc.value, tc.locale))
		})
	}
}

func TestTextJSON(t *testing.T) {
	t.Run("object keeps declaration order", func(t *testing.T) {
		var v Text
		require.NoError(t, json.Unmarshal([]byte(`{"it":"Ciao","es":"Hola","de":null}`), &v))
		assert.True(t, v.IsLocalized())
		assert.Equal(t, []Entry{{"it", "Ciao"}, {"es", "Hola"}}, v.Entries())
		assert.Equal(t, "Ciao", Resolve(v, "pt"))

		out, err := json.Marshal(v)
		require.NoError(t, err)
		assert.JSONEq(t, `{"it":"Ciao","es":"Hola"}`, string(out))
	})

	t.Run("string is plain", func(t *testing.T) {
		var v Text
		require.NoError(t, json.Unmarshal([]byte(`"Plain"`), &v))
		assert.False(t, v.IsLocalized())
		assert.Equal(t, "Plain", Resolve(v, "en"))
	})

	t.Run("null is zero", func(t *testing.T) {
		var v Text
		require.NoError(t, json.Unmarshal([]byte(`null`), &v))
		assert.True(t, v.IsZero())
	})

	t.Run("number is rejected", func(t *testing.T) {
		var v Text
		assert.Error(t, json.Unmarshal([]byte(`42`), &v))
		assert.Error(t, json.Unmarshal([]byte(`{"fr":1}`), &v))
	})
}

func TestTextScanValue(t *testing.T) {
	v, err := Localized(Entry{"fr", "Pizza"}, Entry{"en", "Pie"}).Value()
	require.NoError(t, err)

	var back Text
	require.NoError(t, back.Scan(v))
	assert.Equal(t, "Pie", Resolve(back, "en"))

	var legacy Text
	require.NoError(t, legacy.Scan([]byte("not json")))
	assert.Equal(t, "not json", Resolve(legacy, "fr"))

	null, err := Text{}.Value()
	require.NoError(t, err)
	assert.Nil(t, null)
}

func TestWith(t *testing.T) {
	base := Plain("x")
	v := base.With("fr", "Salut").With("en", "Hi").With("fr", "Bonjour")
	assert.Equal(t, []Entry{{"fr", "Bonjour"}, {"en", "Hi"}}, v.Entries())
	assert.Equal(t, "x", Resolve(base, "fr"), "With must not mutate the receiver")
}

func TestDetectLanguage(t *testing.T) {
	assert.Equal(t, "en", DetectLanguage("en-US,en;q=0.9"))
	assert.Equal(t, "en", DetectLanguage("EN-gb"))
	assert.Equal(t, "fr", DetectLanguage("fr-FR,fr;q=0.8"))
	assert.Empty(t, DetectLanguage(""))
	assert.Equal(t, "en", DetectLanguage("de-DE,en;q=0.5", "fr", "en"))
	assert.Empty(t, DetectLanguage("de-DE", "fr", "en"))
	assert.Empty(t, DetectLanguage("*;q=0.1", "fr", "en"))
}

func TestLangFromContext(t *testing.T) {
	assert.Equal(t, DefaultLang, LangFromContext(context.Background()))
	assert.Equal(t, "en", LangFromContext(WithLang(context.Background(), "en")))
}
