package service

import (
	"errors"

	"github.com/niksmo/finsearch/internal/core/domain"
)

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrCustomerNotFound) ||
		errors.Is(err, domain.ErrProductNotFound)
}
