package validation

import (
	"strings"
	"testing"
)

func TestValidateLength(t *testing.T) {
	if err := ValidateLength("поле", "abc", 3, 10); err != nil {
		t.Fatalf("строка на нижней границе должна проходить: %v", err)
	}
	if err := ValidateLength("поле", "ab", 3, 10); err == nil {
		t.Fatal("слишком короткая строка должна отклоняться")
	}
	if err := ValidateLength("поле", strings.Repeat("a", 11), 3, 10); err == nil {
		t.Fatal("слишком длинная строка должна отклоняться")
	}

	// Длина считается в рунах, а не байтах.
	if err := ValidateLength("поле", "привет мир", 3, 10); err != nil {
		t.Fatalf("кириллица в пределах лимита должна проходить: %v", err)
	}
}

func TestValidateEmail(t *testing.T) {
	valid := []string{
		"user@example.com",
		"first.last+tag@sub.domain.org",
		"  User@Example.COM  ",
	}
	for _, email := range valid {
		if err := ValidateEmail(email); err != nil {
			t.Errorf("email %q должен проходить: %v", email, err)
		}
	}

	invalid := []string{
		"",
		"no-at-sign",
		"two@@example.com",
		"@example.com",
		"user@",
		"user@domain",
		"user name@example.com",
	}
	for _, email := range invalid {
		if err := ValidateEmail(email); err == nil {
			t.Errorf("email %q должен отклоняться", email)
		}
	}
}

func TestValidateUsername(t *testing.T) {
	if err := ValidateUsername("ivan_petrov-1"); err != nil {
		t.Fatalf("корректное имя должно проходить: %v", err)
	}
	if err := ValidateUsername("ab"); err == nil {
		t.Fatal("короткое имя должно отклоняться")
	}
	if err := ValidateUsername("ivan petrov"); err == nil {
		t.Fatal("имя с пробелом должно отклоняться")
	}
}

func TestValidateBudget(t *testing.T) {
	if err := ValidateBudget("бюджет", 0); err != nil {
		t.Fatalf("нулевой бюджет допустим: %v", err)
	}
	if err := ValidateBudget("бюджет", -0.01); err == nil {
		t.Fatal("отрицательный бюджет должен отклоняться")
	}
	if err := ValidateBudget("бюджет", MaxBudget+1); err == nil {
		t.Fatal("бюджет сверх максимума должен отклоняться")
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("Passw0rd"); err != nil {
		t.Fatalf("корректный пароль должен проходить: %v", err)
	}

	weak := []string{
		"short1A",   // меньше восьми символов
		"password1", // без заглавных
		"PASSWORD1", // без строчных
		"Passwordd", // без цифр
	}
	for _, p := range weak {
		if err := ValidatePassword(p); err == nil {
			t.Errorf("пароль %q должен отклоняться", p)
		}
	}
}
