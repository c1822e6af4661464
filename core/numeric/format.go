package numeric

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultLocale is used when no locale is configured.
var DefaultLocale = language.AmericanEnglish

// Formatter renders numbers with locale-aware digit grouping and a fixed
// number of fraction digits. It is safe for concurrent use.
type Formatter struct {
	tag     language.Tag
	printer *message.Printer
}

// NewFormatter returns a Formatter for the given locale.
func NewFormatter(tag language.Tag) *Formatter {
	return &Formatter{tag: tag, printer: message.NewPrinter(tag)}
}

// ParseLocale parses a BCP 47 tag such as "en-US" or "de".
func ParseLocale(s string) (language.Tag, error) {
	if s == "" {
		return DefaultLocale, nil
	}
	tag, err := language.Parse(s)
	if err != nil {
		return language.Und, fmt.Errorf("invalid locale %q: %w", s, err)
	}
	return tag, nil
}

// Locale returns the formatter's language tag.
func (f *Formatter) Locale() language.Tag {
	return f.tag
}

// Format renders v with exactly fractionDigits digits after the decimal point,
// padding with zeros. Ties round away from zero (see RoundHalfAway); x/text
// alone would round them to even.
func (f *Formatter) Format(v float64, fractionDigits int) string {
	if fractionDigits < 0 {
		fractionDigits = 0
	}
	return f.printer.Sprint(number.Decimal(RoundHalfAway(v, fractionDigits),
		number.MinFractionDigits(fractionDigits),
		number.MaxFractionDigits(fractionDigits),
	))
}

// FormatRaw coerces raw with ToNumber and formats it. The second return value
// is false when raw is absent.
func (f *Formatter) FormatRaw(raw any, fractionDigits int) (string, bool) {
	v, ok := ToNumber(raw)
	if !ok {
		return "", false
	}
	return f.Format(v, fractionDigits), true
}

var defaultFormatter = NewFormatter(DefaultLocale)

// Format formats raw using the default locale. Absent input yields "", false.
func Format(raw any, fractionDigits int) (string, bool) {
	return defaultFormatter.FormatRaw(raw, fractionDigits)
}
