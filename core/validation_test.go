package core

import (
	"errors"
	"testing"
	"time"
)

func TestValidateIndexedDocument(t *testing.T) {
	tests := []struct {
		name    string
		doc     *IndexedDocument
		wantErr error
	}{
		{
			name: "valid document",
			doc: &IndexedDocument{
				Id:      1,
				Content: "The Eiffel Tower is in Paris.",
				Source:  "Wikipedia",
			},
			wantErr: nil,
		},
		{
			name: "valid document with empty vector",
			doc: &IndexedDocument{
				Id:      1,
				Content: "Some content",
				Source:  "local",
				Vector:  nil,
			},
			wantErr: nil,
		},
		{
			name: "valid document with ID 0",
			doc: &IndexedDocument{
				Id:      0,
				Content: "Some content",
				Source:  "local",
			},
			wantErr: nil,
		},
		{
			name:    "nil document",
			doc:     nil,
			wantErr: ErrInvalidDocument,
		},
		{
			name: "empty content",
			doc: &IndexedDocument{
				Id:     1,
				Source: "local",
			},
			wantErr: ErrEmptyContent,
		},
		{
			name: "empty source",
			doc: &IndexedDocument{
				Id:      1,
				Content: "Some content",
			},
			wantErr: ErrEmptySource,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIndexedDocument(tt.doc)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateTurn(t *testing.T) {
	validTime := time.Now().Add(-1 * time.Hour)
	futureTime := time.Now().Add(1 * time.Hour)

	tests := []struct {
		name    string
		turn    *Turn
		wantErr error
	}{
		{
			name: "valid user turn",
			turn: &Turn{
				Sender:    SenderUser,
				Message:   "Where is Tesla HQ?",
				Timestamp: validTime,
			},
			wantErr: nil,
		},
		{
			name: "valid bot turn",
			turn: &Turn{
				Sender:    SenderBot,
				Message:   "Tesla is headquartered in Austin, Texas.",
				Timestamp: validTime,
			},
			wantErr: nil,
		},
		{
			name:    "nil turn",
			turn:    nil,
			wantErr: ErrInvalidTurn,
		},
		{
			name: "empty message",
			turn: &Turn{
				Sender:    SenderUser,
				Timestamp: validTime,
			},
			wantErr: ErrEmptyMessage,
		},
		{
			name: "invalid sender",
			turn: &Turn{
				Sender:    SenderType(99),
				Message:   "hello",
				Timestamp: validTime,
			},
			wantErr: ErrInvalidSenderType,
		},
		{
			name: "future timestamp",
			turn: &Turn{
				Sender:    SenderUser,
				Message:   "hello",
				Timestamp: futureTime,
			},
			wantErr: ErrInvalidTimestamp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTurn(tt.turn)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestIDFromContent(t *testing.T) {
	a := IDFromContent("the eiffel tower")
	b := IDFromContent("the eiffel tower")
	c := IDFromContent("the louvre")

	if a != b {
		t.Errorf("identical content should produce identical IDs: %d != %d", a, b)
	}
	if a == c {
		t.Errorf("different content should produce different IDs: both %d", a)
	}
}

func TestSenderTypeString(t *testing.T) {
	tests := []struct {
		sender SenderType
		want   string
	}{
		{SenderUser, "User"},
		{SenderBot, "Bot"},
		{SenderType(0), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.sender.String(); got != tt.want {
			t.Errorf("SenderType(%d).String() = %q, want %q", tt.sender, got, tt.want)
		}
	}
}
