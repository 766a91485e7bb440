package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Константы валидации
const (
	MinUsernameLength = 3
	MaxUsernameLength = 30
	MinDisplayNameLength = 2
	MaxDisplayNameLength = 100
	MinOrderTitleLength = 3
	MaxOrderTitleLength = 200
	MinOrderDescriptionLength = 10
	MaxOrderDescriptionLength = 5000
	MinDisputeDescriptionLength = 20
	MaxDisputeDescriptionLength = 2000
	MinDisputeMessageLength = 1
	MaxDisputeMessageLength = 1000
	MaxEvidenceCount = 10
	MaxRedFlagDescriptionLength = 2000
	MaxRedFlagNoteLength = 1000
	MaxBulkIDsCount = 100
	MaxExternalLinkLength = 500
)

// ValidateLength проверяет длину строки.
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

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email обязателен")
	}

	email = strings.TrimSpace(email)
	email = strings.ToLower(email)

	// Базовая проверка формата
	if !strings.Contains(email, "@") {
		return fmt.Errorf("email должен содержать символ @")
	}

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return fmt.Errorf("некорректный формат email")
	}

	localPart := parts[0]
	domainPart := parts[1]

	if len(localPart) == 0 || len(localPart) > 64 {
		return fmt.Errorf("локальная часть email должна быть от 1 до 64 символов")
	}

	if len(domainPart) == 0 || len(domainPart) > 255 {
		return fmt.Errorf("доменная часть email должна быть от 1 до 255 символов")
	}

	if !strings.Contains(domainPart, ".") {
		return fmt.Errorf("доменная часть email должна содержать точку")
	}

	// Проверка на валидные символы в локальной части
	emailRegex := regexp.MustCompile(`^[a-z0-9._+-]+$`)
	if !emailRegex.MatchString(localPart) {
		return fmt.Errorf("локальная часть email содержит недопустимые символы")
	}

	// Проверка на валидные символы в доменной части
	domainRegex := regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
	if !domainRegex.MatchString(domainPart) {
		return fmt.Errorf("доменная часть email имеет некорректный формат")
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

// ValidateUsername проверяет имя пользователя.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("имя пользователя обязательно")
	}

	username = strings.TrimSpace(username)

	// Проверка длины
	if err := ValidateLength("имя пользователя", username, MinUsernameLength, MaxUsernameLength); err != nil {
		return err
	}

	// Проверка на допустимые символы (только буквы, цифры и подчеркивание)
	usernameRegex := regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("имя пользователя может содержать только буквы, цифры и подчеркивание")
	}

	// Проверка, что не начинается с цифры
	if len(username) > 0 && unicode.IsDigit(rune(username[0])) {
		return fmt.Errorf("имя пользователя не может начинаться с цифры")
	}

	return nil
}

// ValidateDisplayName проверяет отображаемое имя.
func ValidateDisplayName(displayName string) error {
	if displayName == "" {
		return fmt.Errorf("отображаемое имя обязательно")
	}

	displayName = strings.TrimSpace(displayName)

	// Проверка длины
	if err := ValidateLength("отображаемое имя", displayName, MinDisplayNameLength, MaxDisplayNameLength); err != nil {
		return err
	}

	// Проверка на недопустимые символы (только буквы, цифры, пробелы и некоторые спецсимволы)
	displayNameRegex := regexp.MustCompile(`^[a-zA-Zа-яА-ЯёЁ0-9\s\-_.,!?()]+$`)
	if !displayNameRegex.MatchString(displayName) {
		return fmt.Errorf("отображаемое имя содержит недопустимые символы")
	}

	return nil
}

// ValidateOrderTitle проверяет заголовок заказа.
func ValidateOrderTitle(title string) error {
	if title == "" {
		return fmt.Errorf("заголовок заказа обязателен")
	}

	title = strings.TrimSpace(title)

	if err := ValidateLength("заголовок заказа", title, MinOrderTitleLength, MaxOrderTitleLength); err != nil {
		return err
	}

	return nil
}

// ValidateOrderDescription проверяет описание заказа.
func ValidateOrderDescription(description string) error {
	if description == "" {
		return fmt.Errorf("описание заказа обязательно")
	}

	description = strings.TrimSpace(description)

	if err := ValidateLength("описание заказа", description, MinOrderDescriptionLength, MaxOrderDescriptionLength); err != nil {
		return err
	}

	return nil
}

// ValidateDisputeDescription проверяет описание спора.
func ValidateDisputeDescription(description string) error {
	if strings.TrimSpace(description) == "" {
		return fmt.Errorf("описание спора обязательно")
	}

	description = strings.TrimSpace(description)

	if err := ValidateLength("описание спора", description, MinDisputeDescriptionLength, MaxDisputeDescriptionLength); err != nil {
		return err
	}

	return nil
}

// ValidateDisputeMessage проверяет текст сообщения в споре.
func ValidateDisputeMessage(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("сообщение не может быть пустым")
	}

	text = strings.TrimSpace(text)

	if err := ValidateLength("сообщение", text, MinDisputeMessageLength, MaxDisputeMessageLength); err != nil {
		return err
	}

	return nil
}

// ValidateEvidence проверяет ссылки на доказательства.
func ValidateEvidence(evidence []string) error {
	if len(evidence) > MaxEvidenceCount {
		return fmt.Errorf("количество доказательств не может превышать %d", MaxEvidenceCount)
	}

	for _, link := range evidence {
		l := link
		if err := ValidateExternalLink(&l); err != nil {
			return err
		}
	}

	return nil
}

// ValidateRedFlagDescription проверяет описание нарушения.
func ValidateRedFlagDescription(description string) error {
	if strings.TrimSpace(description) == "" {
		return fmt.Errorf("описание нарушения обязательно")
	}

	description = strings.TrimSpace(description)

	if err := ValidateLength("описание нарушения", description, 0, MaxRedFlagDescriptionLength); err != nil {
		return err
	}

	return nil
}

// ValidateRedFlagNote проверяет текст заметки модератора.
func ValidateRedFlagNote(note string) error {
	if strings.TrimSpace(note) == "" {
		return fmt.Errorf("заметка не может быть пустой")
	}

	note = strings.TrimSpace(note)

	if err := ValidateLength("заметка", note, 0, MaxRedFlagNoteLength); err != nil {
		return err
	}

	return nil
}

// ValidateBulkIDs проверяет размер пакета идентификаторов.
func ValidateBulkIDs(count int) error {
	if count == 0 {
		return fmt.Errorf("список идентификаторов не может быть пустым")
	}
	if count > MaxBulkIDsCount {
		return fmt.Errorf("за один запрос можно обновить не более %d записей", MaxBulkIDsCount)
	}
	return nil
}

// ValidateExternalLink проверяет внешнюю ссылку.
func ValidateExternalLink(link *string) error {
	if link != nil && *link != "" {
		linkStr := strings.TrimSpace(*link)

		if err := ValidateLength("внешняя ссылка", linkStr, 0, MaxExternalLinkLength); err != nil {
			return err
		}

		// Проверка формата URL
		parsedURL, err := url.Parse(linkStr)
		if err != nil {
			return fmt.Errorf("некорректный формат URL")
		}

		if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			return fmt.Errorf("ссылка должна начинаться с http:// или https://")
		}

		if parsedURL.Host == "" {
			return fmt.Errorf("ссылка должна содержать доменное имя")
		}
	}
	return nil
}
