package persistence

import (
	"errors"
	"fmt"

	"github.com/dfryer1193/campusnav/navigation/domain"
)

// asPersistenceError tags err with domain.ErrPersistence unless it already carries it
func asPersistenceError(err error) error {
	if err == nil || errors.Is(err, domain.ErrPersistence) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
}
