package middleware

import (
	"errors"
	"unicode/utf8"

	"github.com/venueworks/av-concierge/internal/model"
)

// ValidatePropertyID validates a property identifier.
func ValidatePropertyID(id string) error {
	if len(id) == 0 {
		return errors.New("property ID cannot be empty")
	}
	if len(id) > 64 {
		return errors.New("property ID exceeds maximum length")
	}
	return nil
}

// ValidateTurns validates the submitted conversation history.
func ValidateTurns(turns []model.Turn) error {
	if len(turns) == 0 {
		return errors.New("messages cannot be empty")
	}
	for _, t := range turns {
		switch t.Role {
		case model.RoleUser, model.RoleAssistant:
		default:
			return errors.New("messages may only contain user and assistant roles")
		}
		if err := ValidateMessageContent(t.Content); err != nil {
			return err
		}
	}
	return nil
}

// ValidateMessageContent validates message content.
func ValidateMessageContent(content string) error {
	if len(content) == 0 {
		return errors.New("content cannot be empty")
	}
	if len(content) > 100000 { // ~100KB limit
		return errors.New("content exceeds maximum length")
	}
	if !utf8.ValidString(content) {
		return errors.New("content must be valid UTF-8")
	}
	return nil
}
