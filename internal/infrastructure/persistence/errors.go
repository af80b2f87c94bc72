package persistence

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"

	"github.com/dormdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// translateError maps storage errors onto domain errors. Domain errors pass
// through unchanged so WithinTx can return what the callback returned.
func translateError(err error, resource string) error {
	if err == nil {
		return nil
	}
	var de *shared.DomainError
	switch {
	case errors.As(err, &de):
		return err
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.NewDuplicateError(resource + " already exists")
	case isTransient(err):
		return shared.NewTransientError(resource, err)
	default:
		return err
	}
}

func isTransient(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// updateWithVersion writes every column of model where the row still has the
// expected version, storing expected+1. model.Version must already hold
// expected+1. Zero rows affected means either the row is gone or somebody
// else saved first.
func updateWithVersion(db *gorm.DB, model any, id uuid.UUID, expected int, resource string) error {
	result := db.Model(model).
		Select("*").
		Omit("id", "created_at").
		Where("version = ?", expected).
		Updates(model)
	if result.Error != nil {
		return translateError(result.Error, resource)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := db.Session(&gorm.Session{NewDB: true}).Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return translateError(err, resource)
	}
	if count == 0 {
		return shared.NewNotFoundError(resource)
	}
	return shared.NewConflictError(resource)
}
