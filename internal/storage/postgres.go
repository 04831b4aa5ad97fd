package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/lifesim-engine/pkg/chat"
	"github.com/jwebster45206/lifesim-engine/pkg/state"
	"github.com/jwebster45206/lifesim-engine/pkg/storage"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// playerRow is the players table.
type playerRow struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name          string    `gorm:"not null"`
	Age           int
	Gender        string
	Background    string
	Skills        []byte `gorm:"type:jsonb"`
	Relationships []byte `gorm:"type:jsonb"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (playerRow) TableName() string { return "players" }

// chatTurnRow is the chat_history table.
type chatTurnRow struct {
	ID        uint      `gorm:"primaryKey"`
	PlayerID  uuid.UUID `gorm:"type:uuid;index;not null"`
	Speaker   string    `gorm:"not null"`
	Text      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"index"`
}

func (chatTurnRow) TableName() string { return "chat_history" }

// PostgresCharacterStore implements storage.CharacterStore with gorm on Postgres.
type PostgresCharacterStore struct {
	db     *gorm.DB
	logger *slog.Logger
}

// Ensure PostgresCharacterStore implements CharacterStore interface
var _ storage.CharacterStore = (*PostgresCharacterStore)(nil)

// OpenPostgres connects to dsn and migrates the players and chat_history tables.
func OpenPostgres(ctx context.Context, dsn string, log *slog.Logger) (*PostgresCharacterStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return NewPostgresCharacterStore(ctx, db, log)
}

// NewPostgresCharacterStore wraps an existing gorm handle.
func NewPostgresCharacterStore(ctx context.Context, db *gorm.DB, log *slog.Logger) (*PostgresCharacterStore, error) {
	if err := db.WithContext(ctx).AutoMigrate(&playerRow{}, &chatTurnRow{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &PostgresCharacterStore{db: db, logger: log}, nil
}

func (p *PostgresCharacterStore) Ping(ctx context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return fmt.Errorf("postgres handle: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres ping failed: %w", err)
	}
	return nil
}

func (p *PostgresCharacterStore) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.Close(); err != nil {
		p.logger.Error("Failed to close Postgres connection", "error", err)
		return err
	}
	p.logger.Info("Postgres connection closed")
	return nil
}

func (p *PostgresCharacterStore) CreateCharacter(ctx context.Context, c *state.Character) (*state.Character, error) {
	if c == nil {
		return nil, errors.New("character cannot be nil")
	}
	row, err := toPlayerRow(c)
	if err != nil {
		return nil, err
	}
	if err := p.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("create character: %w", err)
	}
	return fromPlayerRow(row)
}

func (p *PostgresCharacterStore) GetCharacter(ctx context.Context, id uuid.UUID) (*state.Character, error) {
	var row playerRow
	err := p.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get character: %w", err)
	}
	return fromPlayerRow(row)
}

func (p *PostgresCharacterStore) GetCharactersByIDs(ctx context.Context, ids []uuid.UUID) ([]state.Character, error) {
	out := []state.Character{}
	if len(ids) == 0 {
		return out, nil
	}
	var rows []playerRow
	if err := p.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list characters: %w", err)
	}
	for _, row := range rows {
		c, err := fromPlayerRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, nil
}

func (p *PostgresCharacterStore) UpdateCharacter(ctx context.Context, id uuid.UUID, skills, relationships map[string]int) error {
	skillsJSON, err := encodeValues(skills)
	if err != nil {
		return err
	}
	relJSON, err := encodeValues(relationships)
	if err != nil {
		return err
	}
	res := p.db.WithContext(ctx).Model(&playerRow{}).Where("id = ?", id).Updates(map[string]any{
		"skills":        skillsJSON,
		"relationships": relJSON,
		"updated_at":    time.Now(),
	})
	if res.Error != nil {
		return fmt.Errorf("update character: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (p *PostgresCharacterStore) DeleteCharacter(ctx context.Context, id uuid.UUID) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("player_id = ?", id).Delete(&chatTurnRow{}).Error; err != nil {
			return fmt.Errorf("delete chat history: %w", err)
		}
		res := tx.Delete(&playerRow{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("delete character: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return storage.ErrNotFound
		}
		return nil
	})
}

func (p *PostgresCharacterStore) AppendChatTurn(ctx context.Context, id uuid.UUID, speaker chat.Speaker, text string) error {
	row := chatTurnRow{PlayerID: id, Speaker: string(speaker), Text: text, CreatedAt: time.Now()}
	if err := p.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("append chat turn: %w", err)
	}
	return nil
}

func (p *PostgresCharacterStore) ListChatTurns(ctx context.Context, id uuid.UUID, limit int) ([]chat.HistoryTurn, error) {
	var rows []chatTurnRow
	query := p.db.WithContext(ctx).Where("player_id = ?", id).Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list chat turns: %w", err)
	}
	out := make([]chat.HistoryTurn, len(rows))
	for i, row := range rows {
		out[len(rows)-1-i] = chat.HistoryTurn{
			Speaker:   chat.Speaker(row.Speaker),
			Text:      row.Text,
			Timestamp: row.CreatedAt,
		}
	}
	return out, nil
}

func toPlayerRow(c *state.Character) (playerRow, error) {
	skills, err := encodeValues(c.Skills)
	if err != nil {
		return playerRow{}, err
	}
	relationships, err := encodeValues(c.Relationships)
	if err != nil {
		return playerRow{}, err
	}
	row := playerRow{
		ID:            c.ID,
		Name:          c.Name,
		Age:           c.Age,
		Gender:        c.Gender,
		Background:    c.Background,
		Skills:        skills,
		Relationships: relationships,
		CreatedAt:     c.CreatedAt,
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now()
	}
	return row, nil
}

func fromPlayerRow(row playerRow) (*state.Character, error) {
	skills, err := decodeValues(row.Skills)
	if err != nil {
		return nil, fmt.Errorf("character %s skills: %w", row.ID, err)
	}
	relationships, err := decodeValues(row.Relationships)
	if err != nil {
		return nil, fmt.Errorf("character %s relationships: %w", row.ID, err)
	}
	return &state.Character{
		ID:            row.ID,
		Name:          row.Name,
		Age:           row.Age,
		Gender:        row.Gender,
		Background:    row.Background,
		Skills:        skills,
		Relationships: relationships,
		CreatedAt:     row.CreatedAt,
	}, nil
}

// encodeValues stores a skill or relationship map as a JSON object.
func encodeValues(values map[string]int) ([]byte, error) {
	if values == nil {
		values = map[string]int{}
	}
	b, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("encode values: %w", err)
	}
	return b, nil
}

func decodeValues(b []byte) (map[string]int, error) {
	out := map[string]int{}
	if len(b) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}
