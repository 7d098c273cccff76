package repos

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"strings"

	"smartpharma/internal/domain"
)

var driverBadConn = driver.ErrBadConn

func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewError(domain.CodeNotFound, "%s not found", what)
	}
	return err
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
