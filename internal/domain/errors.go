package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sentinel). Los errores detallados los envuelven con %w.
var (
	ErrNotFound               = errors.New("recurso no encontrado")
	ErrValidation             = errors.New("entrada inválida")
	ErrUnauthorized           = errors.New("no autorizado")
	ErrInvalidState           = errors.New("transición inválida para el estado actual")
	ErrInvalidMovement        = errors.New("movimiento de inventario inválido")
	ErrInsufficientStock      = errors.New("stock insuficiente")
	ErrOverConsumption        = errors.New("consumo mayor al saldo del lote")
	ErrConcurrentModification = errors.New("modificación concurrente, reintente la operación")
	ErrAlreadyResolved        = errors.New("la discrepancia ya fue resuelta")
)

// Invalid envuelve ErrValidation con detalle.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFound envuelve ErrNotFound con detalle.
func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// InvalidMovementf envuelve ErrInvalidMovement con detalle.
func InvalidMovementf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidMovement, fmt.Sprintf(format, args...))
}

// InvalidState indica que op no se admite en el estado current.
func InvalidState(op, current string) error {
	return fmt.Errorf("%w: %s no permitido en estado %s", ErrInvalidState, op, current)
}

// Insufficient detalla un faltante de stock para producto+sucursal.
func Insufficient(productID, branchID string, available, requested decimal.Decimal) error {
	return fmt.Errorf("%w: producto %s en sucursal %s (disponible %s, solicitado %s)",
		ErrInsufficientStock, productID, branchID, available, requested)
}
