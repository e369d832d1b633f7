// Package repository defines the assessment store interface and errors.
package repository

import (
	"context"

	"github.com/lantern-care/lantern/internal/domain/model"
)

// Store provides durable access to assessment history.
type Store interface {
	// Append persists a new assessment for its person.
	Append(ctx context.Context, a *model.Assessment) error

	// Latest returns the most recent assessment for a person.
	// Returns ErrNotFound if the person has no history.
	Latest(ctx context.Context, personID string) (*model.Assessment, error)

	// History returns assessments for a person, newest first.
	History(ctx context.Context, personID string, limit, offset int) ([]*model.Assessment, error)

	// CountPersons returns the number of persons with at least one assessment.
	CountPersons(ctx context.Context) (int, error)

	// Close releases the underlying storage.
	Close() error
}
