package repository

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"renovation/internal/app/ds"
	"renovation/internal/app/pricing"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrInvalidStatus = errors.New("operation not allowed in current status")
	ErrValidation    = errors.New("validation failed")
)

type Repository struct {
	db            *gorm.DB
	rates         pricing.Rates
	defaultMarkup decimal.Decimal
}

func New(dsn string, rates pricing.Rates, defaultMarkup decimal.Decimal) (*Repository, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(ds.Models()...)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return NewWithDB(db, rates, defaultMarkup), nil
}

// NewWithDB wraps an already opened connection.
func NewWithDB(db *gorm.DB, rates pricing.Rates, defaultMarkup decimal.Decimal) *Repository {
	return &Repository{
		db:            db,
		rates:         rates,
		defaultMarkup: defaultMarkup,
	}
}

func (r *Repository) Rates() pricing.Rates {
	return r.rates
}

func (r *Repository) DefaultMarkup() decimal.Decimal {
	return r.defaultMarkup
}

// notFound maps gorm's missing-row error to ErrNotFound.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return err
}

func missing(what string) error {
	return fmt.Errorf("%s: %w", what, ErrNotFound)
}

func invalidStatus(what, status string) error {
	return fmt.Errorf("%s is %s: %w", what, status, ErrInvalidStatus)
}

func validation(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrValidation)
}

// nextNumber returns the next document number of the form PREFIX-YYYY-NNNN.
// The sequence is zero-padded to four digits and grows past 9999, so the
// longest number sorts last.
func nextNumber(tx *gorm.DB, model interface{}, prefix string, at time.Time) (string, error) {
	base := fmt.Sprintf("%s-%d-", prefix, at.Year())

	var last []string
	err := tx.Model(model).
		Where("number LIKE ?", base+"%").
		Order("LENGTH(number) DESC, number DESC").
		Limit(1).
		Pluck("number", &last).Error
	if err != nil {
		return "", err
	}

	seq := 0
	if len(last) > 0 {
		seq, err = strconv.Atoi(strings.TrimPrefix(last[0], base))
		if err != nil {
			return "", fmt.Errorf("malformed number %q: %w", last[0], err)
		}
	}
	return fmt.Sprintf("%s%04d", base, seq+1), nil
}

func likePattern(q string) string {
	return "%" + strings.ToLower(strings.TrimSpace(q)) + "%"
}

func oneOf(status string, allowed ...string) bool {
	for _, s := range allowed {
		if s == status {
			return true
		}
	}
	return false
}
