// Package store implements the persistence port over sqlite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/avelis/pulse/internal/core"
	"github.com/avelis/pulse/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS messages (
	id            TEXT PRIMARY KEY,
	room_id       TEXT NOT NULL,
	content       TEXT NOT NULL DEFAULT '',
	sender_id     TEXT NOT NULL,
	sender_name   TEXT NOT NULL DEFAULT '',
	sender_avatar TEXT NOT NULL DEFAULT '',
	timestamp     TIMESTAMP NOT NULL,
	attachments   TEXT,
	reactions     TEXT,
	reply_to      TEXT NOT NULL DEFAULT '',
	is_edited     INTEGER NOT NULL DEFAULT 0,
	edited_at     TIMESTAMP,
	is_deleted    INTEGER NOT NULL DEFAULT 0,
	deleted_at    TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_messages_room ON messages (room_id, id);
`

type SQLiteStore struct {
	db *sql.DB
}

// Open opens (creating if needed) the message database at path.
// Use ":memory:" for an ephemeral store.
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func marshalJSON(v any) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func (s *SQLiteStore) Create(ctx context.Context, msg *domain.Message) error {
	attachments, err := marshalJSON(msg.Attachments)
	if err != nil {
		return fmt.Errorf("encode attachments: %w", err)
	}
	reactions, err := marshalJSON(msg.Reactions)
	if err != nil {
		return fmt.Errorf("encode reactions: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO messages
			(id, room_id, content, sender_id, sender_name, sender_avatar,
			 timestamp, attachments, reactions, reply_to,
			 is_edited, edited_at, is_deleted, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		msg.ID, string(msg.RoomID), msg.Content, string(msg.SenderID),
		msg.SenderName, msg.SenderAvatar, msg.Timestamp,
		attachments, reactions, msg.ReplyTo,
		msg.IsEdited, msg.EditedAt, msg.IsDeleted, msg.DeletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert message %s: %w", msg.ID, err)
	}
	return nil
}

func (s *SQLiteStore) Read(ctx context.Context, id string) (*domain.Message, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, room_id, content, sender_id, sender_name, sender_avatar,
		       timestamp, attachments, reactions, reply_to,
		       is_edited, edited_at, is_deleted, deleted_at
		FROM messages WHERE id = ?`, id)
	msg, err := scanMessage(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("read message %s: %w", id, err)
	}
	return msg, nil
}

// Update applies a patch inside a transaction: read, mutate, write back.
// SenderID and Timestamp are not reachable from a patch, and IsDeleted can
// only be set, matching the one-way soft-delete rule.
func (s *SQLiteStore) Update(ctx context.Context, id string, patch domain.MessagePatch) (*domain.Message, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin update %s: %w", id, err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		SELECT id, room_id, content, sender_id, sender_name, sender_avatar,
		       timestamp, attachments, reactions, reply_to,
		       is_edited, edited_at, is_deleted, deleted_at
		FROM messages WHERE id = ?`, id)
	msg, err := scanMessage(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("read for update %s: %w", id, err)
	}

	if patch.Content != nil {
		msg.Content = *patch.Content
	}
	if patch.Reactions != nil {
		msg.Reactions = patch.Reactions
	}
	if patch.IsEdited != nil {
		msg.IsEdited = *patch.IsEdited
	}
	if patch.EditedAt != nil {
		msg.EditedAt = patch.EditedAt
	}
	if patch.IsDeleted != nil && *patch.IsDeleted {
		msg.IsDeleted = true
	}
	if patch.DeletedAt != nil {
		msg.DeletedAt = patch.DeletedAt
	}

	reactions, err := marshalJSON(msg.Reactions)
	if err != nil {
		return nil, fmt.Errorf("encode reactions: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE messages
		SET content = ?, reactions = ?, is_edited = ?, edited_at = ?,
		    is_deleted = ?, deleted_at = ?
		WHERE id = ?`,
		msg.Content, reactions, msg.IsEdited, msg.EditedAt,
		msg.IsDeleted, msg.DeletedAt, id,
	)
	if err != nil {
		return nil, fmt.Errorf("write update %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update %s: %w", id, err)
	}
	return msg, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete message %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// Find returns messages for a room, newest first. ULID ids order by
// creation time, so pagination keys on id alone.
func (s *SQLiteStore) Find(ctx context.Context, q core.Query) ([]*domain.Message, error) {
	query := `
		SELECT id, room_id, content, sender_id, sender_name, sender_avatar,
		       timestamp, attachments, reactions, reply_to,
		       is_edited, edited_at, is_deleted, deleted_at
		FROM messages WHERE room_id = ?`
	args := []any{string(q.RoomID)}
	if q.Before != "" {
		query += ` AND id < ?`
		args = append(args, q.Before)
	}
	query += ` ORDER BY id DESC`
	if q.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find messages in %s: %w", q.RoomID, err)
	}
	defer rows.Close()

	var out []*domain.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages in %s: %w", q.RoomID, err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (*domain.Message, error) {
	var (
		msg                    domain.Message
		roomID, senderID       string
		attachments, reactions sql.NullString
		editedAt, deletedAt    sql.NullTime
	)
	err := row.Scan(
		&msg.ID, &roomID, &msg.Content, &senderID, &msg.SenderName,
		&msg.SenderAvatar, &msg.Timestamp, &attachments, &reactions,
		&msg.ReplyTo, &msg.IsEdited, &editedAt, &msg.IsDeleted, &deletedAt,
	)
	if err != nil {
		return nil, err
	}
	msg.Type = domain.DocTypeMessage
	msg.RoomID = domain.RoomID(roomID)
	msg.SenderID = domain.UserID(senderID)
	if attachments.Valid {
		if err := json.Unmarshal([]byte(attachments.String), &msg.Attachments); err != nil {
			return nil, fmt.Errorf("decode attachments: %w", err)
		}
	}
	if reactions.Valid {
		if err := json.Unmarshal([]byte(reactions.String), &msg.Reactions); err != nil {
			return nil, fmt.Errorf("decode reactions: %w", err)
		}
	}
	if editedAt.Valid {
		t := editedAt.Time
		msg.EditedAt = &t
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		msg.DeletedAt = &t
	}
	return &msg, nil
}

var _ core.Store = (*SQLiteStore)(nil)
