package phone

import (
	"errors"
	"strings"
	"unicode"
)

// Длина национального номера (код региона + абонентский номер)
const (
	MinNationalLength = 10
	MaxNationalLength = 11
)

// DefaultCountryCode код страны по умолчанию (Бразилия)
const DefaultCountryCode = "55"

var (
	// ErrEmpty возвращается, когда в номере нет ни одной цифры
	ErrEmpty = errors.New("phone: no digits")

	// ErrInvalidLength возвращается, когда длина номера вне допустимого диапазона
	ErrInvalidLength = errors.New("phone: invalid length")
)

// Normalize приводит номер к каноническому виду: только цифры,
// код страны по умолчанию отбрасывается, если после него остается национальный номер.
// Повторная нормализация результата ничего не меняет.
func Normalize(raw, countryCode string) string {
	digits := Digits(raw)

	if countryCode != "" && strings.HasPrefix(digits, countryCode) {
		rest := len(digits) - len(countryCode)
		if rest >= MinNationalLength && rest <= MaxNationalLength {
			return digits[len(countryCode):]
		}
	}

	return digits
}

// Digits оставляет в строке только цифры
func Digits(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r <= unicode.MaxASCII && unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Validate проверяет, что нормализованный номер пригоден как ключ клиента
func Validate(normalized string) error {
	if normalized == "" {
		return ErrEmpty
	}
	if len(normalized) < MinNationalLength-2 || len(normalized) > 15 {
		return ErrInvalidLength
	}
	return nil
}

// Variants возможные написания номера в сырых данных: как введен,
// только цифры, национальный номер и номер с кодом страны (с "+" и без).
// Используется для поиска старых записей, у которых нет нормализованного номера.
func Variants(raw, countryCode string) []string {
	national := Normalize(raw, countryCode)

	candidates := []string{strings.TrimSpace(raw), Digits(raw), national}
	if countryCode != "" && national != "" {
		candidates = append(candidates, countryCode+national, "+"+countryCode+national)
	}

	seen := make(map[string]struct{}, len(candidates))
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
