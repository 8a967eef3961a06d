package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Traslados-api/internal/application/dto"
	"github.com/jhoicas/Traslados-api/internal/domain"
	"github.com/jhoicas/Traslados-api/pkg/validator"
)

// errorMapping traduce un sentinela de dominio a status y código HTTP.
type errorMapping struct {
	target    error
	status    int
	code      string
	retryable bool
}

// El orden importa: se usa la primera coincidencia de errors.Is.
var errorMappings = []errorMapping{
	{domain.ErrConcurrentModification, fiber.StatusConflict, "CONCURRENT_MODIFICATION", true},
	{domain.ErrValidation, fiber.StatusBadRequest, "VALIDATION", false},
	{domain.ErrInvalidMovement, fiber.StatusBadRequest, "INVALID_MOVEMENT", false},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", false},
	{domain.ErrInvalidState, fiber.StatusConflict, "INVALID_STATE", false},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK", false},
	{domain.ErrOverConsumption, fiber.StatusConflict, "OVER_CONSUMPTION", false},
	{domain.ErrAlreadyResolved, fiber.StatusConflict, "ALREADY_RESOLVED", false},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED", false},
}

// writeError responde con el status del sentinela; los errores no mapeados
// se registran y se devuelven como 500 sin exponer el detalle.
func writeError(c *fiber.Ctx, log zerolog.Logger, err error) error {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: err.Error(), Retryable: m.retryable})
		}
	}
	log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error no controlado")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

// bindBody parsea el JSON y valida las etiquetas validate del destino.
// Si falla, ya escribió la respuesta 400 y devuelve false.
func bindBody(c *fiber.Ctx, out any) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	return validate(c, out)
}

// bindQuery igual que bindBody para parámetros de query.
func bindQuery(c *fiber.Ctx, out any) (bool, error) {
	if err := c.QueryParser(out); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	return validate(c, out)
}

func validate(c *fiber.Ctx, out any) (bool, error) {
	if fields := validator.ValidateStruct(out); len(fields) > 0 {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code:    "VALIDATION",
			Message: "datos inválidos",
			Details: fields,
		})
	}
	return true, nil
}

// requireActor devuelve el usuario autenticado; sin él responde 401.
func requireActor(c *fiber.Ctx) (string, bool, error) {
	actor := GetUserID(c)
	if actor == "" {
		return "", false, c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	return actor, true, nil
}
