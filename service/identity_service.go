package service

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alibukhari13/slack-attendance/entity"
)

var ErrIdentityNotFound = errors.New("identity not authorized")

// IdentityService is the registry of Slack identities the relay may act as,
// and the credential store behind it.
type IdentityService interface {
	Enroll(req entity.EnrollIdentityRequest) (*entity.Identity, error)
	List() ([]entity.Identity, error)
	Get(id string) (*entity.Identity, error)
	Remove(id string) error
	// GetCredential resolves the token needed to act as an identity. The
	// relay must not attempt any remote call when this fails.
	GetCredential(id string) (string, error)
}

type DBIdentityService struct {
	db *gorm.DB
}

func NewIdentityService(db *gorm.DB) *DBIdentityService {
	return &DBIdentityService{db: db}
}

func (s *DBIdentityService) Enroll(req entity.EnrollIdentityRequest) (*entity.Identity, error) {
	ident := &entity.Identity{
		ID:          uuid.NewString(),
		SlackUserID: req.SlackUserID,
		DisplayName: req.DisplayName,
		Avatar:      req.Avatar,
		AccessToken: req.AccessToken,
	}
	if err := s.db.Create(ident).Error; err != nil {
		return nil, err
	}
	return ident, nil
}

func (s *DBIdentityService) List() ([]entity.Identity, error) {
	var idents []entity.Identity
	if err := s.db.Order("created_at").Find(&idents).Error; err != nil {
		return nil, err
	}
	return idents, nil
}

func (s *DBIdentityService) Get(id string) (*entity.Identity, error) {
	var ident entity.Identity
	if err := s.db.Where("id = ?", id).First(&ident).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIdentityNotFound
		}
		return nil, err
	}
	return &ident, nil
}

func (s *DBIdentityService) Remove(id string) error {
	return s.db.Where("id = ?", id).Delete(&entity.Identity{}).Error
}

func (s *DBIdentityService) GetCredential(id string) (string, error) {
	ident, err := s.Get(id)
	if err != nil {
		return "", err
	}
	if ident.AccessToken == "" {
		return "", ErrIdentityNotFound
	}
	return ident.AccessToken, nil
}
