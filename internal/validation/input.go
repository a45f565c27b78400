package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Пределы входных данных
const (
	MinUsernameLength = 3
	MaxUsernameLength = 30

	MinDisplayNameLength = 2
	MaxDisplayNameLength = 100

	MinRequestTitleLength = 3
	MaxRequestTitleLength = 200

	MinRequestDescriptionLength = 10
	MaxRequestDescriptionLength = 5000

	MaxLocationLength     = 100
	MaxRequirementsLength = 3000

	MaxQuotationDescriptionLength = 2000
	MaxTermsLength                = 2000

	MinBudget = 0.0
	MaxBudget = 100000000.0 // 100 миллионов
)

// ValidateLength проверяет длину строки в рунах.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s не может быть пустым", fieldName)
	}
	return nil
}

var (
	emailLocalRegex  = regexp.MustCompile(`^[a-z0-9._+-]+$`)
	emailDomainRegex = regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
	usernameRegex    = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)
)

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email обязателен")
	}

	email = strings.ToLower(strings.TrimSpace(email))

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return fmt.Errorf("некорректный формат email")
	}

	localPart, domainPart := parts[0], parts[1]

	if len(localPart) == 0 || len(localPart) > 64 {
		return fmt.Errorf("локальная часть email должна быть от 1 до 64 символов")
	}
	if len(domainPart) == 0 || len(domainPart) > 255 {
		return fmt.Errorf("доменная часть email должна быть от 1 до 255 символов")
	}

	if !emailLocalRegex.MatchString(localPart) {
		return fmt.Errorf("локальная часть email содержит недопустимые символы")
	}
	if !emailDomainRegex.MatchString(domainPart) {
		return fmt.Errorf("доменная часть email имеет некорректный формат")
	}

	return nil
}

// ValidateUsername проверяет имя пользователя.
func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("имя пользователя обязательно")
	}

	if err := ValidateLength("имя пользователя", username, MinUsernameLength, MaxUsernameLength); err != nil {
		return err
	}

	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("имя пользователя может содержать только буквы, цифры и символы _ . -")
	}

	return nil
}

// ValidateBudget проверяет, что сумма находится в допустимом диапазоне.
func ValidateBudget(fieldName string, value float64) error {
	if value < MinBudget {
		return fmt.Errorf("%s не может быть отрицательным", fieldName)
	}
	if value > MaxBudget {
		return fmt.Errorf("%s превышает допустимый максимум", fieldName)
	}
	return nil
}
