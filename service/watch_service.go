package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/alibukhari13/slack-attendance/entity"
)

var ErrWatchExists = errors.New("channel already watched")

// WatchService manages the channels whose traffic feeds attendance
// ingestion.
type WatchService struct {
	db *gorm.DB
}

func NewWatchService(db *gorm.DB) *WatchService {
	return &WatchService{db: db}
}

func (s *WatchService) Create(req entity.CreateWatchRequest) (*entity.WatchedChannel, error) {
	var cnt int64
	if err := s.db.Model(&entity.WatchedChannel{}).Where("channel_id = ?", req.ChannelID).Count(&cnt).Error; err != nil {
		return nil, err
	}
	if cnt > 0 {
		return nil, ErrWatchExists
	}
	w := &entity.WatchedChannel{ChannelID: req.ChannelID, Label: req.Label, Purpose: req.Purpose}
	if err := s.db.Create(w).Error; err != nil {
		return nil, err
	}
	return w, nil
}

func (s *WatchService) List() ([]entity.WatchedChannel, error) {
	var ws []entity.WatchedChannel
	if err := s.db.Order("id").Find(&ws).Error; err != nil {
		return nil, err
	}
	return ws, nil
}

func (s *WatchService) Remove(id uint) error {
	return s.db.Delete(&entity.WatchedChannel{}, id).Error
}
