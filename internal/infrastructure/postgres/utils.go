package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/rack-inventory/internal/domain"
	"github.com/jhoicas/rack-inventory/internal/domain/entity"
)

const (
	codeUniqueViolation = "23505"
	codeCheckViolation  = "23514"
)

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	return pgErrorCode(err) == codeUniqueViolation
}

// mapWriteError traduce violaciones de constraints a errores de dominio.
// El CHECK de capacidad de locations es la última barrera contra un used_capacity fuera de rango.
func mapWriteError(op string, err error) error {
	switch {
	case isUniqueViolation(err):
		return fmt.Errorf("%s: %w", op, domain.ErrConflict)
	case pgErrorCode(err) == codeCheckViolation:
		return fmt.Errorf("%s: %w", op, domain.ErrCapacityExceeded)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func statusStrings(in []entity.LotStatus) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = string(s)
	}
	return out
}
