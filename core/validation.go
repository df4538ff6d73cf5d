// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"fmt"
	"strings"
	"time"
)

// ValidateItem validates a catalog item according to domain rules.
//
// Validation rules:
//   - Title must not be empty
//   - Year and thumbnail dimensions must not be negative
//
// NOT validated:
//   - ID (derived from content when empty)
//   - Vector (populated by the embedding step)
func ValidateItem(item *Item) error {
	if item == nil {
		return fmt.Errorf("%w: item is nil", ErrInvalidArgument)
	}

	if strings.TrimSpace(item.Title) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, ErrEmptyTitle)
	}

	if item.Year < 0 || item.ThumbnailWidth < 0 || item.ThumbnailHeight < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, ErrNegativeValue)
	}

	return nil
}

// ValidateVectorRecord checks that a vector record carries an ID and a vector.
func ValidateVectorRecord(record *VectorRecord) error {
	if record == nil {
		return fmt.Errorf("%w: vector record is nil", ErrInvalidArgument)
	}
	if record.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, ErrEmptyID)
	}
	if len(record.Vector) == 0 {
		return fmt.Errorf("%w: vector record %s has no vector", ErrInvalidArgument, record.ID)
	}
	return nil
}

// ValidateSession validates a Session.
//
// Validation rules:
//   - ID must not be empty
//   - Type must be Session
//   - Token and turn counters must not be negative
func ValidateSession(session *Session) error {
	if session == nil {
		return fmt.Errorf("%w: session is nil", ErrInvalidArgument)
	}
	if session.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, ErrEmptyID)
	}
	if session.Type != DocumentTypeSession {
		return fmt.Errorf("%w: %w: %q", ErrInvalidArgument, ErrInvalidDocumentType, session.Type)
	}
	if session.Tokens < 0 || session.CompletionTokens < 0 || session.Turns < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, ErrNegativeValue)
	}
	return nil
}

// ValidateMessage validates a Message.
//
// Validation rules:
//   - ID and SessionID must not be empty
//   - Type must be Message
//   - Role must be User or Assistant
//   - Text must not be empty
//   - Timestamp must not be in the future
func ValidateMessage(message *Message) error {
	if message == nil {
		return fmt.Errorf("%w: message is nil", ErrInvalidArgument)
	}
	if message.ID == "" || message.SessionID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, ErrEmptyID)
	}
	if message.Type != DocumentTypeMessage {
		return fmt.Errorf("%w: %w: %q", ErrInvalidArgument, ErrInvalidDocumentType, message.Type)
	}
	if err := ValidateRole(message.Role); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	if strings.TrimSpace(message.Text) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, ErrEmptyText)
	}
	if message.Tokens < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, ErrNegativeValue)
	}
	if !IsValidTimestamp(message.Timestamp) {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, ErrInvalidTimestamp)
	}
	return nil
}

// ValidateTurn validates the session and both messages of a turn, and
// checks that the messages belong to the session and are distinct.
func ValidateTurn(turn *Turn) error {
	if turn == nil {
		return fmt.Errorf("%w: turn is nil", ErrInvalidArgument)
	}
	if err := ValidateSession(turn.Session); err != nil {
		return err
	}
	for _, msg := range []*Message{turn.Prompt, turn.Completion} {
		if err := ValidateMessage(msg); err != nil {
			return err
		}
		if msg.SessionID != turn.Session.ID {
			return fmt.Errorf("%w: %w: %s", ErrInvalidArgument, ErrSessionMismatch, msg.ID)
		}
	}
	if turn.Prompt.ID == turn.Completion.ID {
		return fmt.Errorf("%w: prompt and completion share id %s", ErrInvalidArgument, turn.Prompt.ID)
	}
	return nil
}

// ValidateRole validates that a Role has a valid value.
func ValidateRole(role Role) error {
	if role != RoleUser && role != RoleAssistant {
		return fmt.Errorf("%w: value %q", ErrInvalidRole, role)
	}
	return nil
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
// A small allowance covers clock skew between the caller and this process.
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now().Add(time.Second))
}
