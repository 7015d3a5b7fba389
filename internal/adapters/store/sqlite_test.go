package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/avelis/pulse/internal/core"
	"github.com/avelis/pulse/internal/domain"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testMessage(roomID domain.RoomID, content string) *domain.Message {
	return &domain.Message{
		ID:         ulid.Make().String(),
		Type:       domain.DocTypeMessage,
		RoomID:     roomID,
		Content:    content,
		SenderID:   "alice",
		SenderName: "Alice",
		Timestamp:  time.Now().UTC(),
	}
}

func TestCreateAndRead(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	msg := testMessage("R1", "hello")
	msg.Attachments = []domain.Attachment{{Name: "notes.pdf", URL: "/files/notes.pdf"}}
	if err := s.Create(ctx, msg); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := s.Read(ctx, msg.ID)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got.Content != "hello" || got.SenderID != "alice" || got.RoomID != "R1" {
		t.Errorf("Read() = %+v, want original fields", got)
	}
	if len(got.Attachments) != 1 || got.Attachments[0].Name != "notes.pdf" {
		t.Errorf("attachments = %v, want notes.pdf", got.Attachments)
	}

	if _, err := s.Read(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Read(missing) error = %v, want ErrNotFound", err)
	}
}

func TestUpdatePatchSemantics(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	msg := testMessage("R1", "tpyo")
	if err := s.Create(ctx, msg); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	content := "typo"
	edited := true
	now := time.Now().UTC()
	got, err := s.Update(ctx, msg.ID, domain.MessagePatch{Content: &content, IsEdited: &edited, EditedAt: &now})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got.Content != "typo" || !got.IsEdited || got.EditedAt == nil {
		t.Errorf("Update() = %+v, want edited content", got)
	}
	if got.SenderID != msg.SenderID {
		t.Error("Update() changed immutable SenderID")
	}

	deleted := true
	got, err = s.Update(ctx, msg.ID, domain.MessagePatch{IsDeleted: &deleted, DeletedAt: &now})
	if err != nil {
		t.Fatalf("Update() soft delete error = %v", err)
	}
	if !got.IsDeleted || got.Content != "typo" {
		t.Errorf("soft delete = %+v, want IsDeleted with content intact", got)
	}

	if _, err := s.Update(ctx, "missing", domain.MessagePatch{Content: &content}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
	}
}

func TestFindOrdersNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var ids []string
	for _, c := range []string{"one", "two", "three"} {
		msg := testMessage("R1", c)
		if err := s.Create(ctx, msg); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		ids = append(ids, msg.ID)
	}
	if err := s.Create(ctx, testMessage("R2", "elsewhere")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := s.Find(ctx, core.Query{RoomID: "R1", Limit: 2})
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Find() returned %d messages, want 2", len(got))
	}
	if got[0].ID != ids[2] || got[1].ID != ids[1] {
		t.Errorf("Find() order = [%s %s], want newest first", got[0].Content, got[1].Content)
	}

	// pagination: everything strictly older than the second message
	got, err = s.Find(ctx, core.Query{RoomID: "R1", Before: ids[1]})
	if err != nil {
		t.Fatalf("Find(before) error = %v", err)
	}
	if len(got) != 1 || got[0].ID != ids[0] {
		t.Errorf("Find(before) = %d messages, want only the oldest", len(got))
	}
}

func TestDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	msg := testMessage("R1", "bye")
	if err := s.Create(ctx, msg); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := s.Delete(ctx, msg.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Read(ctx, msg.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Read() after delete error = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, msg.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Delete() twice error = %v, want ErrNotFound", err)
	}
}
