package service

import (
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/alibukhari13/slack-attendance/entity"
)

var (
	ErrOperatorExists   = errors.New("operator already exists")
	ErrInvalidCreds     = errors.New("invalid credentials")
	ErrOperatorNotFound = errors.New("operator not found")
)

// OperatorService abstracts operator account ops.
type OperatorService interface {
	CreateOperator(email, password string) (*entity.Operator, error)
	Authenticate(email, password string) (*entity.Operator, error)
	GetByID(id string) (*entity.Operator, error)
}

type DBOperatorService struct {
	db *gorm.DB
}

func NewOperatorService(db *gorm.DB) *DBOperatorService {
	return &DBOperatorService{db: db}
}

func (s *DBOperatorService) CreateOperator(email, password string) (*entity.Operator, error) {
	var cnt int64
	if err := s.db.Model(&entity.Operator{}).Where("email = ?", email).Count(&cnt).Error; err != nil {
		return nil, err
	}
	if cnt > 0 {
		return nil, ErrOperatorExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	op := &entity.Operator{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.db.Create(op).Error; err != nil {
		return nil, err
	}
	return op, nil
}

func (s *DBOperatorService) Authenticate(email, password string) (*entity.Operator, error) {
	var op entity.Operator
	if err := s.db.Where("email = ?", email).First(&op).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCreds
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCreds
	}
	return &op, nil
}

func (s *DBOperatorService) GetByID(id string) (*entity.Operator, error) {
	var op entity.Operator
	if err := s.db.Where("id = ?", id).First(&op).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOperatorNotFound
		}
		return nil, err
	}
	return &op, nil
}
