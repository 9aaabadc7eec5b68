package http

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/rack-inventory/internal/application/dto"
	idemstore "github.com/jhoicas/rack-inventory/internal/infrastructure/redis"
	"github.com/jhoicas/rack-inventory/pkg/logger"
)

// Cabeceras de idempotencia.
const (
	IdempotencyKeyHeader      = "Idempotency-Key"
	IdempotentReplayHeader    = "Idempotent-Replayed"
	idempotencyConflictCode   = "IDEMPOTENCY_CONFLICT"
	idempotencyInProgressCode = "IDEMPOTENCY_IN_PROGRESS"
)

// IdempotencyStore almacén de respuestas por clave. Get devuelve idemstore.ErrNotFound si no existe.
// SetNX reserva la clave; Set la sobrescribe con la respuesta final; Del libera la reserva.
type IdempotencyStore interface {
	Key(scope, id string) string
	Get(ctx context.Context, key string) (string, error)
	SetNX(ctx context.Context, key, value string) (bool, error)
	Set(ctx context.Context, key, value string) error
	Del(ctx context.Context, keys ...string) error
}

type idempotencyRecord struct {
	Pending     bool   `json:"pending,omitempty"`
	Status      int    `json:"status,omitempty"`
	Body        []byte `json:"body,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	RequestHash string `json:"request_hash"`
}

// Idempotency reproduce la respuesta guardada de un POST repetido con el mismo Idempotency-Key.
// La clave se reserva antes de ejecutar el handler: un request concurrente con la misma clave
// recibe 409 IDEMPOTENCY_IN_PROGRESS y, con otro cuerpo, 409 IDEMPOTENCY_CONFLICT. Sin cabecera
// o sin store el request pasa sin cambios. Las respuestas 5xx y los errores liberan la reserva.
func Idempotency(store IdempotencyStore, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if store == nil || c.Method() != fiber.MethodPost {
			return c.Next()
		}
		id := strings.TrimSpace(c.Get(IdempotencyKeyHeader))
		if id == "" {
			return c.Next()
		}

		ctx := c.Context()
		requestHash := hashBody(c.Body())
		key := store.Key(c.Method()+"|"+c.Path(), id)

		reservation, err := json.Marshal(idempotencyRecord{Pending: true, RequestHash: requestHash})
		if err != nil {
			return writeError(c, fmt.Errorf("encode idempotency reservation: %w", err))
		}
		reserved, err := store.SetNX(ctx, key, string(reservation))
		if err != nil {
			return writeError(c, fmt.Errorf("reserve idempotency key: %w", err))
		}
		if !reserved {
			return replayStored(c, store, key, requestHash)
		}

		release := func() {
			if err := store.Del(ctx, key); err != nil {
				log.Warn().Err(err).Str("idempotency_key", id).Msg("no se pudo liberar la reserva idempotente")
			}
		}

		if err := c.Next(); err != nil {
			release()
			return err
		}
		status := c.Response().StatusCode()
		if status >= fiber.StatusInternalServerError {
			release()
			return nil
		}
		payload, err := json.Marshal(idempotencyRecord{
			Status:      status,
			Body:        append([]byte(nil), c.Response().Body()...),
			ContentType: string(c.Response().Header.ContentType()),
			RequestHash: requestHash,
		})
		if err != nil {
			log.Warn().Err(err).Str("idempotency_key", id).Msg("no se pudo serializar la respuesta idempotente")
			release()
			return nil
		}
		if err := store.Set(ctx, key, string(payload)); err != nil {
			log.Warn().Err(err).Str("idempotency_key", id).Msg("no se pudo guardar la respuesta idempotente")
			release()
		}
		return nil
	}
}

// replayStored responde a un request cuya clave ya estaba reservada o completada.
func replayStored(c *fiber.Ctx, store IdempotencyStore, key, requestHash string) error {
	stored, err := store.Get(c.Context(), key)
	if errors.Is(err, idemstore.ErrNotFound) {
		// La reserva se liberó entre SetNX y Get: el otro request sigue resolviéndose.
		return inProgress(c)
	}
	if err != nil {
		return writeError(c, fmt.Errorf("check idempotency: %w", err))
	}
	var rec idempotencyRecord
	if err := json.Unmarshal([]byte(stored), &rec); err != nil {
		return writeError(c, fmt.Errorf("decode idempotency record: %w", err))
	}
	if rec.RequestHash != requestHash {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:    idempotencyConflictCode,
			Message: "Idempotency-Key reutilizada con un cuerpo distinto",
		})
	}
	if rec.Pending {
		return inProgress(c)
	}
	c.Set(IdempotentReplayHeader, "true")
	if rec.ContentType != "" {
		c.Set(fiber.HeaderContentType, rec.ContentType)
	}
	return c.Status(rec.Status).Send(rec.Body)
}

func inProgress(c *fiber.Ctx) error {
	return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
		Code:    idempotencyInProgressCode,
		Message: "ya hay un request en curso con esta Idempotency-Key",
	})
}

func hashBody(payload []byte) string {
	sum := sha256.Sum256(payload)
	return base64.StdEncoding.EncodeToString(sum[:])
}
