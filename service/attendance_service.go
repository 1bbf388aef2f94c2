package service

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/alibukhari13/slack-attendance/entity"
)

// AttendanceService records attendance events, one merged row per
// (user, date).
type AttendanceService interface {
	Upsert(rec entity.AttendanceRecord) error
	ListByDate(date string) ([]entity.AttendanceRecord, error)
	ListByUser(userID string, limit int) ([]entity.AttendanceRecord, error)
}

type DBAttendanceService struct {
	db *gorm.DB
}

func NewAttendanceService(db *gorm.DB) *DBAttendanceService {
	return &DBAttendanceService{db: db}
}

// Upsert merge-writes one event. A second event for the same user and date
// fills in whichever side (check-in/check-out) it carries instead of adding
// a new row; empty incoming fields never blank out recorded ones.
func (s *DBAttendanceService) Upsert(rec entity.AttendanceRecord) error {
	assignments := map[string]interface{}{
		"user_name":  rec.UserName,
		"channel_id": rec.ChannelID,
	}
	if rec.CheckIn != "" {
		assignments["check_in"] = rec.CheckIn
	}
	if rec.CheckOut != "" {
		assignments["check_out"] = rec.CheckOut
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(assignments),
	}).Create(&rec).Error
}

func (s *DBAttendanceService) ListByDate(date string) ([]entity.AttendanceRecord, error) {
	var recs []entity.AttendanceRecord
	if err := s.db.Where("date = ?", date).Order("user_name").Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

func (s *DBAttendanceService) ListByUser(userID string, limit int) ([]entity.AttendanceRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 31
	}
	var recs []entity.AttendanceRecord
	if err := s.db.Where("user_id = ?", userID).Order("date DESC").Limit(limit).Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}
