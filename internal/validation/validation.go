// Package validation содержит функции валидации входных данных.
package validation

import (
	"regexp"
	"strings"
	"unicode"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsValidEmail проверяет базовую форму адреса электронной почты.
func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

// IsValidPassword проверяет политику пароля: от 6 до 20 символов.
func IsValidPassword(password string) bool {
	n := len([]rune(password))
	return n >= 6 && n <= 20
}

// IsValidFullName требует полное имя: минимум два слова.
func IsValidFullName(name string) bool {
	return len(strings.Fields(name)) >= 2
}

// IsValidPhone проверяет бразильский номер телефона: 10 или 11 цифр,
// форматирование (скобки, дефисы, пробелы) игнорируется.
func IsValidPhone(phone string) bool {
	n := len(Digits(phone))
	return n == 10 || n == 11
}

// NormalizeCEP убирает из CEP всё, кроме цифр, и проверяет длину.
// Возвращает восемь цифр и признак корректности.
func NormalizeCEP(cep string) (string, bool) {
	digits := Digits(cep)
	if len(digits) != 8 {
		return "", false
	}
	return digits, true
}

// Digits возвращает только цифры из строки.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
