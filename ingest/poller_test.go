package ingest

import (
	"context"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/alibukhari13/slack-attendance/entity"
	"github.com/alibukhari13/slack-attendance/platform"
	"github.com/alibukhari13/slack-attendance/service"
)

type stubClient struct {
	pages map[string][]platform.Message // channel id -> newest-first page
}

func (s *stubClient) ListConversations(ctx context.Context) ([]platform.Conversation, error) {
	return nil, nil
}

func (s *stubClient) ListMembers(ctx context.Context) ([]platform.Member, error) {
	return []platform.Member{{ID: "U1", Name: "amira"}}, nil
}

func (s *stubClient) History(ctx context.Context, conversationID, cursor string, limit int) (*platform.HistoryPage, error) {
	return &platform.HistoryPage{Messages: s.pages[conversationID]}, nil
}

func (s *stubClient) Post(ctx context.Context, conversationID, text string) (string, error) {
	return "", nil
}

func (s *stubClient) Update(ctx context.Context, conversationID, ts, text string) error {
	return nil
}

func (s *stubClient) Delete(ctx context.Context, conversationID, ts string) error {
	return nil
}

func TestPollerSeedsThenIngests(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&entity.AttendanceRecord{}, &entity.WatchedChannel{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	watches := service.NewWatchService(db)
	attendance := service.NewAttendanceService(db)
	if _, err := watches.Create(entity.CreateWatchRequest{ChannelID: "CIN", Label: "check-in", Purpose: "in"}); err != nil {
		t.Fatalf("watch: %v", err)
	}

	client := &stubClient{pages: map[string][]platform.Message{
		"CIN": {{Ts: "1690000000.000100", User: "U1", Text: "good morning"}},
	}}
	p := NewPoller(client, watches, attendance, 0)

	// first sweep only records the high-water mark
	p.sweep(context.Background())
	recs, err := attendance.ListByDate(tsDate("1690000000.000100"))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("first sweep must not ingest history, got %d rows", len(recs))
	}

	// a newer message arrives; the next sweep ingests it
	client.pages["CIN"] = append([]platform.Message{
		{Ts: "1690000100.000200", User: "U1", Text: "here"},
	}, client.pages["CIN"]...)
	p.sweep(context.Background())

	recs, err = attendance.ListByDate(tsDate("1690000100.000200"))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 ingested record, got %d", len(recs))
	}
	if recs[0].UserName != "amira" || recs[0].CheckIn != "1690000100.000200" {
		t.Fatalf("unexpected record: %+v", recs[0])
	}
}

func TestPollerCheckOutSide(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&entity.AttendanceRecord{}, &entity.WatchedChannel{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	watches := service.NewWatchService(db)
	attendance := service.NewAttendanceService(db)
	if _, err := watches.Create(entity.CreateWatchRequest{ChannelID: "COUT", Label: "check-out", Purpose: "out"}); err != nil {
		t.Fatalf("watch: %v", err)
	}

	client := &stubClient{pages: map[string][]platform.Message{"COUT": nil}}
	p := NewPoller(client, watches, attendance, 0)
	p.sweep(context.Background())

	client.pages["COUT"] = []platform.Message{{Ts: "1690030000.000300", User: "U1", Text: "bye"}}
	p.sweep(context.Background())

	recs, err := attendance.ListByDate(tsDate("1690030000.000300"))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 1 || recs[0].CheckOut != "1690030000.000300" || recs[0].CheckIn != "" {
		t.Fatalf("expected check-out side filled: %+v", recs)
	}
}
