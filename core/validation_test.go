package core

import (
	"errors"
	"testing"
	"time"
)

func TestValidateItem(t *testing.T) {
	tests := []struct {
		name    string
		item    *Item
		wantErr error
	}{
		{
			name:    "valid item",
			item:    &Item{Title: "The Grudge", Year: 2020},
			wantErr: nil,
		},
		{
			name:    "valid item without id",
			item:    &Item{Title: "Tenet"},
			wantErr: nil,
		},
		{
			name:    "nil item",
			item:    nil,
			wantErr: ErrInvalidArgument,
		},
		{
			name:    "blank title",
			item:    &Item{Title: "   ", Year: 2020},
			wantErr: ErrEmptyTitle,
		},
		{
			name:    "negative year",
			item:    &Item{Title: "Soul", Year: -1},
			wantErr: ErrNegativeValue,
		},
		{
			name:    "negative thumbnail size",
			item:    &Item{Title: "Soul", ThumbnailWidth: -220},
			wantErr: ErrNegativeValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateItem(tt.item)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateItem() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateItem() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("ValidateItem() error = %v, want ErrInvalidArgument kind", err)
			}
		})
	}
}

func TestValidateVectorRecord(t *testing.T) {
	if err := ValidateVectorRecord(&VectorRecord{ID: "a", Vector: []float32{1}}); err != nil {
		t.Errorf("ValidateVectorRecord() error = %v, want nil", err)
	}
	if err := ValidateVectorRecord(&VectorRecord{Vector: []float32{1}}); !errors.Is(err, ErrEmptyID) {
		t.Errorf("ValidateVectorRecord() error = %v, want ErrEmptyID", err)
	}
	if err := ValidateVectorRecord(&VectorRecord{ID: "a"}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("ValidateVectorRecord() error = %v, want ErrInvalidArgument", err)
	}
}

func TestValidateSession(t *testing.T) {
	tests := []struct {
		name    string
		session *Session
		wantErr error
	}{
		{
			name:    "valid session",
			session: &Session{ID: "s1", Type: DocumentTypeSession, Name: DefaultSessionName},
			wantErr: nil,
		},
		{
			name:    "missing id",
			session: &Session{Type: DocumentTypeSession},
			wantErr: ErrEmptyID,
		},
		{
			name:    "wrong type",
			session: &Session{ID: "s1", Type: DocumentTypeMessage},
			wantErr: ErrInvalidDocumentType,
		},
		{
			name:    "negative tokens",
			session: &Session{ID: "s1", Type: DocumentTypeSession, Tokens: -5},
			wantErr: ErrNegativeValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSession(tt.session)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateSession() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateSession() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateMessage(t *testing.T) {
	validTime := time.Now().Add(-1 * time.Hour)
	futureTime := time.Now().Add(1 * time.Hour)

	valid := func() *Message {
		return &Message{
			ID:        "m1",
			SessionID: "s1",
			Type:      DocumentTypeMessage,
			Role:      RoleUser,
			Text:      "Any horror movies?",
			Timestamp: validTime,
		}
	}

	tests := []struct {
		name    string
		mutate  func(m *Message)
		wantErr error
	}{
		{name: "valid message", mutate: func(m *Message) {}, wantErr: nil},
		{name: "assistant role", mutate: func(m *Message) { m.Role = RoleAssistant }, wantErr: nil},
		{name: "missing session", mutate: func(m *Message) { m.SessionID = "" }, wantErr: ErrEmptyID},
		{name: "wrong type", mutate: func(m *Message) { m.Type = DocumentTypeSession }, wantErr: ErrInvalidDocumentType},
		{name: "invalid role", mutate: func(m *Message) { m.Role = "System" }, wantErr: ErrInvalidRole},
		{name: "empty text", mutate: func(m *Message) { m.Text = " " }, wantErr: ErrEmptyText},
		{name: "future timestamp", mutate: func(m *Message) { m.Timestamp = futureTime }, wantErr: ErrInvalidTimestamp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := valid()
			tt.mutate(msg)
			err := ValidateMessage(msg)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateMessage() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateMessage() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateTurn(t *testing.T) {
	now := time.Now().Add(-time.Minute)
	session := &Session{ID: "s1", Type: DocumentTypeSession, Turns: 1}
	prompt := &Message{ID: "p", SessionID: "s1", Type: DocumentTypeMessage, Role: RoleUser, Text: "hi", Timestamp: now}
	completion := &Message{ID: "c", SessionID: "s1", Type: DocumentTypeMessage, Role: RoleAssistant, Text: "hello", Timestamp: now}

	if err := ValidateTurn(&Turn{Session: session, Prompt: prompt, Completion: completion}); err != nil {
		t.Fatalf("ValidateTurn() error = %v, want nil", err)
	}

	foreign := *completion
	foreign.SessionID = "s2"
	if err := ValidateTurn(&Turn{Session: session, Prompt: prompt, Completion: &foreign}); !errors.Is(err, ErrSessionMismatch) {
		t.Errorf("ValidateTurn() error = %v, want ErrSessionMismatch", err)
	}

	same := *completion
	same.ID = prompt.ID
	if err := ValidateTurn(&Turn{Session: session, Prompt: prompt, Completion: &same}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("ValidateTurn() error = %v, want ErrInvalidArgument", err)
	}

	if err := ValidateTurn(nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("ValidateTurn(nil) error = %v, want ErrInvalidArgument", err)
	}
}

func TestValidateRole(t *testing.T) {
	tests := []struct {
		name    string
		role    Role
		wantErr bool
	}{
		{name: "user", role: RoleUser, wantErr: false},
		{name: "assistant", role: RoleAssistant, wantErr: false},
		{name: "empty", role: "", wantErr: true},
		{name: "lowercase", role: "user", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRole(tt.role)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRole() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidRole) {
				t.Errorf("ValidateRole() error = %v, want ErrInvalidRole", err)
			}
		})
	}
}

func TestIsValidTimestamp(t *testing.T) {
	if !IsValidTimestamp(time.Now()) {
		t.Error("IsValidTimestamp(now) = false, want true")
	}
	if !IsValidTimestamp(time.Time{}) {
		t.Error("IsValidTimestamp(zero) = false, want true")
	}
	if IsValidTimestamp(time.Now().Add(time.Hour)) {
		t.Error("IsValidTimestamp(future) = true, want false")
	}
}
