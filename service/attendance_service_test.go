package service

import (
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/alibukhari13/slack-attendance/entity"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&entity.Operator{}, &entity.Identity{}, &entity.AttendanceRecord{}, &entity.WatchedChannel{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestAttendanceUpsertMergesByUserAndDate(t *testing.T) {
	svc := NewAttendanceService(testDB(t))

	in := entity.AttendanceRecord{
		UserID: "U1", Date: "2026-08-28", UserName: "amira",
		CheckIn: "1690000000.000100", ChannelID: "CIN",
	}
	if err := svc.Upsert(in); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	out := entity.AttendanceRecord{
		UserID: "U1", Date: "2026-08-28", UserName: "amira",
		CheckOut: "1690030000.000200", ChannelID: "COUT",
	}
	if err := svc.Upsert(out); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	recs, err := svc.ListByDate("2026-08-28")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected one merged row, got %d", len(recs))
	}
	if recs[0].CheckIn != "1690000000.000100" || recs[0].CheckOut != "1690030000.000200" {
		t.Fatalf("merge lost a side: %+v", recs[0])
	}
}

func TestAttendanceSeparateDays(t *testing.T) {
	svc := NewAttendanceService(testDB(t))
	for _, date := range []string{"2026-08-27", "2026-08-28"} {
		if err := svc.Upsert(entity.AttendanceRecord{UserID: "U1", Date: date, CheckIn: "1.0"}); err != nil {
			t.Fatalf("upsert %s: %v", date, err)
		}
	}
	recs, err := svc.ListByUser("U1", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(recs))
	}
	if recs[0].Date != "2026-08-28" {
		t.Fatalf("expected newest day first, got %s", recs[0].Date)
	}
}
