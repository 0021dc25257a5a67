package core

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Rorical/RoriChat/internal/models"
)

const (
	// MaxMessageLength is measured in characters (runes).
	MaxMessageLength = 2000

	warnThreshold   = 1500
	dangerThreshold = 1800
)

var (
	ErrEmptyMessage   = errors.New("message is empty")
	ErrMessageTooLong = fmt.Errorf("message exceeds %d characters", MaxMessageLength)
)

// MsgTooLong is shown in the error dialog for oversized input.
var MsgTooLong = fmt.Sprintf("Message cannot exceed %d characters", MaxMessageLength)

// ValidateMessage trims input and checks it can be sent.
func ValidateMessage(input string) (string, error) {
	message := strings.TrimSpace(input)
	if message == "" {
		return "", ErrEmptyMessage
	}
	if utf8.RuneCountInString(message) > MaxMessageLength {
		return message, ErrMessageTooLong
	}
	return message, nil
}

// CountLevelFor grades a character count for the input counter.
func CountLevelFor(count int) models.CountLevel {
	switch {
	case count > MaxMessageLength:
		return models.CountOver
	case count > dangerThreshold:
		return models.CountDanger
	case count > warnThreshold:
		return models.CountWarn
	default:
		return models.CountNormal
	}
}
