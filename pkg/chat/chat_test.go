package chat

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestTurnRequest_Validate(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name    string
		req     TurnRequest
		wantErr bool
	}{
		{
			name:    "valid request",
			req:     TurnRequest{CharacterID: id, Action: "ทำอาหาร"},
			wantErr: false,
		},
		{
			name:    "empty action is a no-op turn",
			req:     TurnRequest{CharacterID: id, Action: "   "},
			wantErr: false,
		},
		{
			name:    "missing character id",
			req:     TurnRequest{Action: "นอน"},
			wantErr: true,
		},
		{
			name: "unknown history speaker",
			req: TurnRequest{
				CharacterID: id,
				Action:      "วิ่ง",
				History:     []HistoryTurn{{Speaker: "narrator", Text: "hello"}},
			},
			wantErr: true,
		},
		{
			name: "known history speakers",
			req: TurnRequest{
				CharacterID: id,
				Action:      "วิ่ง",
				History: []HistoryTurn{
					{Speaker: SpeakerUser, Text: "hi"},
					{Speaker: SpeakerWorld, Text: "hello"},
				},
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTurnRequest) {
					t.Errorf("Expected ErrInvalidTurnRequest, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}
