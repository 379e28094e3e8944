package i18n

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// Fallback locales tried, in order, when the requested locale has no value.
const (
	PrimaryFallback   = "fr"
	SecondaryFallback = "en"
)

// Entry is one locale/value pair of a localized Text.
type Entry struct {
	Locale string
	Value  string
}

// Text is a display value that is either a single plain string or a set of
// per-locale strings. Localized entries keep the order in which they were
// declared so that the last-resort fallback is deterministic.
type Text struct {
	plain     string
	entries   []Entry
	localized bool
}

// Plain returns a single-locale Text.
func Plain(s string) Text {
	return Text{plain: s}
}

// Localized returns a Text holding the given entries in order. Later entries
// for an already present locale replace the earlier value in place.
func Localized(entries ...Entry) Text {
	t := Text{localized: true}
	for _, e := range entries {
		t = t.With(e.Locale, e.Value)
	}
	return t
}

// FromMap builds a localized Text from a map. Go maps carry no order, so
// the entries are sorted by locale code.
func FromMap(m map[string]string) Text {
	locales := make([]string, 0, len(m))
	for l := range m {
		locales = append(locales, l)
	}
	sort.Strings(locales)
	entries := make([]Entry, 0, len(m))
	for _, l := range locales {
		entries = append(entries, Entry{Locale: l, Value: m[l]})
	}
	return Localized(entries...)
}

// With returns a copy of t with locale set to value. A plain Text becomes
// localized and loses its plain value.
func (t Text) With(locale, value string) Text {
	out := Text{localized: true}
	if t.localized {
		out.entries = make([]Entry, len(t.entries), len(t.entries)+1)
		copy(out.entries, t.entries)
	}
	for i := range out.entries {
		if out.entries[i].Locale == locale {
			out.entries[i].Value = value
			return out
		}
	}
	out.entries = append(out.entries, Entry{Locale: locale, Value: value})
	return out
}

// IsZero reports whether t holds nothing at all.
func (t Text) IsZero() bool {
	if t.localized {
		return len(t.entries) == 0
	}
	return t.plain == ""
}

// IsLocalized reports whether t is the per-locale variant.
func (t Text) IsLocalized() bool { return t.localized }

// Entries returns a copy of the localized entries, nil for a plain Text.
func (t Text) Entries() []Entry {
	if !t.localized {
		return nil
	}
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Get returns the value stored for locale. A plain Text has no locales.
func (t Text) Get(locale string) (string, bool) {
	for _, e := range t.entries {
		if e.Locale == locale {
			return e.Value, true
		}
	}
	return "", false
}

// Resolve renders t to a single string for locale. Plain values are returned
// as is. Localized values fall back from locale to "fr", then "en", then the
// first declared entry, then the empty string.
func Resolve(t Text, locale string) string {
	if !t.localized {
		return t.plain
	}
	for _, l := range [...]string{locale, PrimaryFallback, SecondaryFallback} {
		if v, ok := t.Get(l); ok && v != "" {
			return v
		}
	}
	if len(t.entries) > 0 {
		return t.entries[0].Value
	}
	return ""
}

// Or returns t, or fallback when t is empty.
func (t Text) Or(fallback string) Text {
	if t.IsZero() {
		return Plain(fallback)
	}
	return t
}

// MarshalJSON writes a plain Text as a JSON string and a localized Text as an
// object whose keys follow the declaration order.
func (t Text) MarshalJSON() ([]byte, error) {
	if !t.localized {
		if t.plain == "" {
			return []byte("null"), nil
		}
		return json.Marshal(t.plain)
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range t.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Locale)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

var errInvalidText = errors.New("i18n: text must be a string or an object of strings")

// UnmarshalJSON accepts null, a string or an object of strings.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*t = Text{}
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Plain(s)
		return nil
	case data[0] == '{':
		return t.decodeObject(data)
	}
	return errInvalidText
}

func (t *Text) decodeObject(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return err
	}
	out := Text{localized: true}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		locale, ok := tok.(string)
		if !ok {
			return errInvalidText
		}
		tok, err = dec.Token()
		if err != nil {
			return err
		}
		switch v := tok.(type) {
		case nil:
			// a null value is the same as an absent locale
		case string:
			out = out.With(locale, v)
		default:
			return fmt.Errorf("%w: locale %q", errInvalidText, locale)
		}
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*t = out
	return nil
}

// Value stores t as JSON text. An empty Text is stored as NULL.
func (t Text) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	b, err := t.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan reads a JSON column. Text that is not JSON is kept as a plain value.
func (t *Text) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*t = Text{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("i18n: cannot scan %T into Text", src)
	}
	if err := t.UnmarshalJSON(raw); err != nil {
		*t = Plain(string(raw))
	}
	return nil
}
