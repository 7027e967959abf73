// Package password implements the password policy for the credential service:
// rule-based validation with a 0–100 strength score, plus bcrypt hashing of
// accepted passwords.
package password

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// MinLength and MaxLength bound accepted password lengths.
	MinLength = 8
	MaxLength = 128

	specialChars = "!@#$%^&*()_+-=[]{}|;:,.<>?"
)

// ValidationResult reports the outcome of a policy check. Valid is true iff
// there are zero violations; Score is independent of Valid and always in
// 0–100. The result is ephemeral and never persisted.
type ValidationResult struct {
	Valid  bool
	Errors []string
	Score  int
}

// commonPasswords holds lowercased passwords rejected outright.
var commonPasswords = func() map[string]struct{} {
	list := []string{
		"password", "123456", "123456789", "qwerty", "abc123",
		"password123", "admin", "letmein", "welcome", "monkey",
		"1234567890", "1234567", "12345678", "12345678910",
		"password1", "password12", "password1234", "password12345",
		"admin123", "admin1234", "admin12345", "admin123456",
		"user", "user123", "user1234", "user12345", "user123456",
		"test", "test123", "test1234", "test12345", "test123456",
		"guest", "guest123", "guest1234", "guest12345", "guest123456",
		"demo", "demo123", "demo1234", "demo12345", "demo123456",
		"temp", "temp123", "temp1234", "temp12345", "temp123456",
		"pass", "pass123", "pass1234", "pass12345", "pass123456",
		"login", "login123", "login1234", "login12345", "login123456",
		"welcome123", "welcome1234", "welcome12345", "welcome123456",
		"letmein123", "letmein1234", "letmein12345", "letmein123456",
		"monkey123", "monkey1234", "monkey12345", "monkey123456",
		"qwerty123", "qwerty1234", "qwerty12345", "qwerty123456",
		"abc123456", "abc1234567", "abc12345678", "abc123456789",
		"123456789a", "123456789ab", "123456789abc", "123456789abcd",
		"a123456789", "ab123456789", "abc123456789", "abcd123456789",
	}
	m := make(map[string]struct{}, len(list))
	for _, p := range list {
		m[p] = struct{}{}
	}
	return m
}()

// personalInfoPatterns is a fixed heuristic blacklist of common first names,
// surnames, places, and birth years. It is not a user-specific check.
var personalInfoPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(joao|maria|jose|ana|pedro|julia|lucas|sophia|gabriel|isabella)\b`),
	regexp.MustCompile(`\b(silva|santos|oliveira|souza|rodrigues|ferreira|almeida|pereira|lima|gomes)\b`),
	regexp.MustCompile(`\b(brasil|brazil|sao paulo|rio de janeiro|minas gerais|bahia|parana|pernambuco)\b`),
	regexp.MustCompile(`\b(199[0-9]|200[0-5])\b`),
}

// Validate checks a candidate password against the policy. Every failing rule
// appends one human-readable violation; each satisfied rule adds its fixed
// weight to the score, with length bonuses on top, capped at 100.
func Validate(password string) ValidationResult {
	var errs []string
	score := 0

	check := func(ok bool, weight int, msg string) {
		if ok {
			score += weight
		} else {
			errs = append(errs, msg)
		}
	}

	check(len(password) >= MinLength, 10,
		fmt.Sprintf("password must be at least %d characters long", MinLength))
	check(len(password) <= MaxLength, 5,
		fmt.Sprintf("password must be at most %d characters long", MaxLength))
	check(hasUpper(password), 10, "password must contain at least one uppercase letter")
	check(hasLower(password), 10, "password must contain at least one lowercase letter")
	check(hasDigit(password), 10, "password must contain at least one digit")
	check(hasSpecial(password), 15, "password must contain at least one special character")
	check(!isCommon(password), 20, "password is too common")
	check(!containsPersonalInfo(password), 10, "password must not contain personal information")
	check(!hasSequentialChars(password), 5, "password must not contain sequential characters")
	check(!hasRepeatedChars(password), 5, "password must not contain too many repeated characters")

	// Character variety feeds the score only; it never fails validation.
	if hasCharVariety(password) {
		score += 10
	}

	// Length bonuses.
	switch {
	case len(password) >= 12:
		score += 10
	case len(password) >= 10:
		score += 5
	}

	if score > 100 {
		score = 100
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs, Score: score}
}

// StrengthDescription maps a score to a qualitative label.
func StrengthDescription(score int) string {
	switch {
	case score >= 80:
		return "very strong"
	case score >= 60:
		return "strong"
	case score >= 40:
		return "medium"
	case score >= 20:
		return "weak"
	default:
		return "very weak"
	}
}

// SuggestImprovements re-runs the policy checks and emits actionable
// suggestions instead of hard failures.
func SuggestImprovements(password string) []string {
	var suggestions []string

	if len(password) < MinLength {
		suggestions = append(suggestions,
			fmt.Sprintf("add more characters to reach at least %d", MinLength))
	}
	if !hasUpper(password) {
		suggestions = append(suggestions, "add at least one uppercase letter")
	}
	if !hasLower(password) {
		suggestions = append(suggestions, "add at least one lowercase letter")
	}
	if !hasDigit(password) {
		suggestions = append(suggestions, "add at least one digit")
	}
	if !hasSpecial(password) {
		suggestions = append(suggestions, "add at least one special character")
	}
	if len(password) < 12 {
		suggestions = append(suggestions, "consider a longer password (12+ characters)")
	}
	if containsPersonalInfo(password) {
		suggestions = append(suggestions, "avoid personal information such as names or birth years")
	}
	if hasSequentialChars(password) {
		suggestions = append(suggestions, "avoid sequences such as '123' or 'abc'")
	}
	if hasRepeatedChars(password) {
		suggestions = append(suggestions, "avoid repeating the same character many times")
	}

	return suggestions
}

func hasUpper(s string) bool {
	return strings.ContainsFunc(s, func(r rune) bool { return r >= 'A' && r <= 'Z' })
}

func hasLower(s string) bool {
	return strings.ContainsFunc(s, func(r rune) bool { return r >= 'a' && r <= 'z' })
}

func hasDigit(s string) bool {
	return strings.ContainsFunc(s, func(r rune) bool { return r >= '0' && r <= '9' })
}

func hasSpecial(s string) bool {
	return strings.ContainsAny(s, specialChars)
}

func isCommon(s string) bool {
	_, ok := commonPasswords[strings.ToLower(s)]
	return ok
}

func containsPersonalInfo(s string) bool {
	lower := strings.ToLower(s)
	for _, re := range personalInfoPatterns {
		if re.MatchString(lower) {
			return true
		}
	}
	return false
}

// hasSequentialChars reports a run of 3+ ascending characters, numeric or
// alphabetic. Digits wrap ("890" counts), letters do not.
func hasSequentialChars(s string) bool {
	lower := strings.ToLower(s)
	for i := 0; i+2 < len(lower); i++ {
		a, b, c := lower[i], lower[i+1], lower[i+2]
		if isDigitByte(a) && isDigitByte(b) && isDigitByte(c) {
			if nextDigit(a) == b && nextDigit(b) == c {
				return true
			}
			continue
		}
		if a >= 'a' && a < 'y' && b == a+1 && c == b+1 {
			return true
		}
	}
	return false
}

// hasRepeatedChars reports either a 3-in-a-row repeat or a single character
// making up more than half of the password.
func hasRepeatedChars(s string) bool {
	if len(s) < 4 {
		return false
	}

	for i := 0; i+2 < len(s); i++ {
		if s[i] == s[i+1] && s[i+1] == s[i+2] {
			return true
		}
	}

	counts := make(map[byte]int)
	max := 0
	for i := 0; i < len(s); i++ {
		counts[s[i]]++
		if counts[s[i]] > max {
			max = counts[s[i]]
		}
	}
	return max*2 > len(s)
}

func hasCharVariety(s string) bool {
	if s == "" {
		return false
	}
	unique := make(map[byte]struct{}, len(s))
	for i := 0; i < len(s); i++ {
		unique[s[i]] = struct{}{}
	}
	return float64(len(unique)) >= float64(len(s))*0.7
}

func isDigitByte(b byte) bool { return b >= '0' && b <= '9' }

func nextDigit(b byte) byte {
	if b == '9' {
		return '0'
	}
	return b + 1
}
