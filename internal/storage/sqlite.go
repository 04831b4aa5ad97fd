package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jwebster45206/lifesim-engine/pkg/chat"
	"github.com/jwebster45206/lifesim-engine/pkg/state"
	"github.com/jwebster45206/lifesim-engine/pkg/storage"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS players (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	age INTEGER NOT NULL DEFAULT 0,
	gender TEXT NOT NULL DEFAULT '',
	background TEXT NOT NULL DEFAULT '',
	skills_json TEXT NOT NULL DEFAULT '{}',
	relationships_json TEXT NOT NULL DEFAULT '{}',
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS chat_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	player_id TEXT NOT NULL REFERENCES players(id) ON DELETE CASCADE,
	speaker TEXT NOT NULL,
	text TEXT NOT NULL,
	created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_chat_history_player ON chat_history(player_id, id);
`

type sqlitePlayer struct {
	ID                string `db:"id"`
	Name              string `db:"name"`
	Age               int    `db:"age"`
	Gender            string `db:"gender"`
	Background        string `db:"background"`
	SkillsJSON        string `db:"skills_json"`
	RelationshipsJSON string `db:"relationships_json"`
	CreatedAt         int64  `db:"created_at"`
	UpdatedAt         int64  `db:"updated_at"`
}

type sqliteChatTurn struct {
	Speaker   string `db:"speaker"`
	Text      string `db:"text"`
	CreatedAt int64  `db:"created_at"`
}

// SQLiteCharacterStore implements storage.CharacterStore on a local SQLite file.
type SQLiteCharacterStore struct {
	conn   *sqlx.DB
	logger *slog.Logger
}

// Ensure SQLiteCharacterStore implements CharacterStore interface
var _ storage.CharacterStore = (*SQLiteCharacterStore)(nil)

// OpenSQLite opens or creates a SQLite database at the given path.
func OpenSQLite(path string, logger *slog.Logger) (*SQLiteCharacterStore, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// SQLite allows a single writer
	conn.SetMaxOpenConns(1)

	s := &SQLiteCharacterStore{conn: conn, logger: logger}
	if _, err := conn.Exec(sqliteSchema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteCharacterStore) Ping(ctx context.Context) error {
	if err := s.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite ping failed: %w", err)
	}
	return nil
}

func (s *SQLiteCharacterStore) Close() error {
	return s.conn.Close()
}

func (s *SQLiteCharacterStore) CreateCharacter(ctx context.Context, c *state.Character) (*state.Character, error) {
	if c == nil {
		return nil, errors.New("character cannot be nil")
	}
	row, err := toSQLitePlayer(c)
	if err != nil {
		return nil, err
	}
	_, err = s.conn.NamedExecContext(ctx, `
		INSERT INTO players (id, name, age, gender, background, skills_json, relationships_json, created_at, updated_at)
		VALUES (:id, :name, :age, :gender, :background, :skills_json, :relationships_json, :created_at, :updated_at)`, row)
	if err != nil {
		return nil, fmt.Errorf("create character: %w", err)
	}
	return row.character()
}

func (s *SQLiteCharacterStore) GetCharacter(ctx context.Context, id uuid.UUID) (*state.Character, error) {
	var row sqlitePlayer
	err := s.conn.GetContext(ctx, &row, `SELECT * FROM players WHERE id = ?`, id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get character: %w", err)
	}
	return row.character()
}

func (s *SQLiteCharacterStore) GetCharactersByIDs(ctx context.Context, ids []uuid.UUID) ([]state.Character, error) {
	out := []state.Character{}
	if len(ids) == 0 {
		return out, nil
	}
	args := make([]string, len(ids))
	for i, id := range ids {
		args[i] = id.String()
	}
	query, params, err := sqlx.In(`SELECT * FROM players WHERE id IN (?) ORDER BY created_at DESC`, args)
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var rows []sqlitePlayer
	if err := s.conn.SelectContext(ctx, &rows, s.conn.Rebind(query), params...); err != nil {
		return nil, fmt.Errorf("list characters: %w", err)
	}
	for _, row := range rows {
		c, err := row.character()
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, nil
}

func (s *SQLiteCharacterStore) UpdateCharacter(ctx context.Context, id uuid.UUID, skills, relationships map[string]int) error {
	skillsJSON, err := encodeValues(skills)
	if err != nil {
		return err
	}
	relJSON, err := encodeValues(relationships)
	if err != nil {
		return err
	}
	res, err := s.conn.ExecContext(ctx,
		`UPDATE players SET skills_json = ?, relationships_json = ?, updated_at = ? WHERE id = ?`,
		string(skillsJSON), string(relJSON), time.Now().UnixNano(), id.String())
	if err != nil {
		return fmt.Errorf("update character: %w", err)
	}
	return requireAffected(res)
}

func (s *SQLiteCharacterStore) DeleteCharacter(ctx context.Context, id uuid.UUID) error {
	tx, err := s.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chat_history WHERE player_id = ?`, id.String()); err != nil {
		return fmt.Errorf("delete chat history: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM players WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete character: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteCharacterStore) AppendChatTurn(ctx context.Context, id uuid.UUID, speaker chat.Speaker, text string) error {
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO chat_history (player_id, speaker, text, created_at) VALUES (?, ?, ?, ?)`,
		id.String(), string(speaker), text, time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("append chat turn: %w", err)
	}
	return nil
}

func (s *SQLiteCharacterStore) ListChatTurns(ctx context.Context, id uuid.UUID, limit int) ([]chat.HistoryTurn, error) {
	query := `SELECT speaker, text, created_at FROM chat_history WHERE player_id = ? ORDER BY id DESC`
	args := []any{id.String()}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	var rows []sqliteChatTurn
	if err := s.conn.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list chat turns: %w", err)
	}
	out := make([]chat.HistoryTurn, len(rows))
	for i, row := range rows {
		out[len(rows)-1-i] = chat.HistoryTurn{
			Speaker:   chat.Speaker(row.Speaker),
			Text:      row.Text,
			Timestamp: time.Unix(0, row.CreatedAt),
		}
	}
	return out, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func toSQLitePlayer(c *state.Character) (sqlitePlayer, error) {
	skills, err := encodeValues(c.Skills)
	if err != nil {
		return sqlitePlayer{}, err
	}
	relationships, err := encodeValues(c.Relationships)
	if err != nil {
		return sqlitePlayer{}, err
	}
	id := c.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	created := c.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	return sqlitePlayer{
		ID:                id.String(),
		Name:              c.Name,
		Age:               c.Age,
		Gender:            c.Gender,
		Background:        c.Background,
		SkillsJSON:        string(skills),
		RelationshipsJSON: string(relationships),
		CreatedAt:         created.UnixNano(),
		UpdatedAt:         created.UnixNano(),
	}, nil
}

func (row sqlitePlayer) character() (*state.Character, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, fmt.Errorf("character id %q: %w", row.ID, err)
	}
	skills, err := decodeValues([]byte(row.SkillsJSON))
	if err != nil {
		return nil, fmt.Errorf("character %s skills: %w", id, err)
	}
	relationships, err := decodeValues([]byte(row.RelationshipsJSON))
	if err != nil {
		return nil, fmt.Errorf("character %s relationships: %w", id, err)
	}
	return &state.Character{
		ID:            id,
		Name:          row.Name,
		Age:           row.Age,
		Gender:        row.Gender,
		Background:    row.Background,
		Skills:        skills,
		Relationships: relationships,
		CreatedAt:     time.Unix(0, row.CreatedAt),
	}, nil
}
