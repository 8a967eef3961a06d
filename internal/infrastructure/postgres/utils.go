package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/Traslados-api/internal/domain"
)

// Códigos SQLSTATE traducidos a errores de dominio.
const (
	codeUniqueViolation  = "23505"
	codeCheckViolation   = "23514"
	codeForeignKey       = "23503"
	codeLockNotAvailable = "55P03"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}

// mapError traduce errores de PostgreSQL a los sentinelas de dominio y envuelve el resto con op.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeLockNotAvailable:
			return fmt.Errorf("%w: %s", domain.ErrConcurrentModification, op)
		case codeUniqueViolation:
			return fmt.Errorf("%w: %s: registro duplicado (%s)", domain.ErrValidation, op, pgErr.ConstraintName)
		case codeCheckViolation:
			return fmt.Errorf("%w: %s: restricción %s", domain.ErrValidation, op, pgErr.ConstraintName)
		case codeForeignKey:
			return fmt.Errorf("%w: %s: referencia inexistente (%s)", domain.ErrNotFound, op, pgErr.ConstraintName)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
