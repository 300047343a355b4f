package inventario

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tumundo_admin/internal/api"
	"tumundo_admin/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrMismaSucursal = errors.New("origen y destino deben ser sucursales distintas")
	// ErrTransferRevertida means the credit failed and the debit was reversed.
	ErrTransferRevertida = errors.New("transferencia revertida")
	// ErrTransferInconsistente means the debit stands without its credit.
	ErrTransferInconsistente = errors.New("transferencia inconsistente: debito sin credito")
)

type EstadoTransfer string

const (
	TransferIniciada      EstadoTransfer = "iniciada"
	TransferDebitada      EstadoTransfer = "debitada"
	TransferCompletada    EstadoTransfer = "completada"
	TransferCompensada    EstadoTransfer = "compensada"
	TransferFallida       EstadoTransfer = "fallida"
	TransferInconsistente EstadoTransfer = "inconsistente"
)

func (e EstadoTransfer) terminal() bool {
	return e == TransferCompletada || e == TransferCompensada || e == TransferFallida
}

// TransferIntent is the persisted record of a branch transfer. Each step
// reuses a stable idempotency key so a resumed step cannot apply twice on
// a backend that honours the header.
type TransferIntent struct {
	ID          string         `json:"id"`
	ItemID      string         `json:"itemId"`
	Codigo      string         `json:"codigo"`
	Origen      Sucursal       `json:"origen"`
	Destino     Sucursal       `json:"destino"`
	Cantidad    int            `json:"cantidad"`
	Estado      EstadoTransfer `json:"estado"`
	Creado      api.Fecha      `json:"creado"`
	Actualizado api.Fecha      `json:"actualizado"`
	Error       string         `json:"error,omitempty"`
}

func (t TransferIntent) debitKey() string   { return t.ID + ":debito" }
func (t TransferIntent) creditKey() string  { return t.ID + ":credito" }
func (t TransferIntent) reverseKey() string { return t.ID + ":reverso" }

// Transferir moves cantidad units of item from origen to destino as a debit
// followed by a credit, reversing the debit when the credit fails.
func (c *Client) Transferir(ctx context.Context, item Item, origen, destino Sucursal, cantidad int) (TransferIntent, error) {
	if err := validarMovimiento(item.ID, origen, cantidad); err != nil {
		return TransferIntent{}, err
	}
	if !destino.Valid() {
		return TransferIntent{}, ErrSucursalInvalida
	}
	if origen == destino {
		return TransferIntent{}, ErrMismaSucursal
	}
	if cantidad > item.Existencia(origen) {
		return TransferIntent{}, fmt.Errorf("%w: %s tiene %d en %s", ErrExistenciaInsuficiente, item.Codigo, item.Existencia(origen), origen)
	}

	now := api.NewFecha(time.Now().UTC())
	intent := TransferIntent{
		ID:          uuid.NewString(),
		ItemID:      item.ID,
		Codigo:      item.Codigo,
		Origen:      origen,
		Destino:     destino,
		Cantidad:    cantidad,
		Estado:      TransferIniciada,
		Creado:      now,
		Actualizado: now,
	}
	if err := c.guardarIntent(ctx, intent); err != nil {
		return intent, fmt.Errorf("registrar transferencia: %w", err)
	}

	_, err := c.movimiento(ctx, intent.ItemID, intent.debitKey(), movimientoRequest{
		Cantidad: cantidad, Tipo: tipoDescargar, Sucursal: origen, Concepto: "transferencia " + intent.ID,
	})
	if err != nil {
		intent = c.avanzar(ctx, intent, TransferFallida, err)
		return intent, err
	}
	intent = c.avanzar(ctx, intent, TransferDebitada, nil)

	return c.acreditar(ctx, intent)
}

func (c *Client) acreditar(ctx context.Context, intent TransferIntent) (TransferIntent, error) {
	_, creditErr := c.movimiento(ctx, intent.ItemID, intent.creditKey(), movimientoRequest{
		Cantidad: intent.Cantidad, Tipo: tipoCargar, Sucursal: intent.Destino, Concepto: "transferencia " + intent.ID,
	})
	if creditErr == nil {
		return c.avanzar(ctx, intent, TransferCompletada, nil), nil
	}

	c.logger.Warn("credito de transferencia fallido, revirtiendo debito",
		zap.String("transfer_id", intent.ID),
		zap.String("codigo", intent.Codigo),
		zap.Error(creditErr),
	)
	return c.revertir(ctx, intent, creditErr)
}

func (c *Client) revertir(ctx context.Context, intent TransferIntent, cause error) (TransferIntent, error) {
	_, reverseErr := c.movimiento(ctx, intent.ItemID, intent.reverseKey(), movimientoRequest{
		Cantidad: intent.Cantidad, Tipo: tipoCargar, Sucursal: intent.Origen, Concepto: "reverso transferencia " + intent.ID,
	})
	if reverseErr != nil {
		c.logger.Error("reverso de transferencia fallido",
			zap.String("transfer_id", intent.ID),
			zap.String("codigo", intent.Codigo),
			zap.Error(reverseErr),
		)
		intent = c.avanzar(ctx, intent, TransferInconsistente, errors.Join(cause, reverseErr))
		return intent, fmt.Errorf("%w (%s): %w", ErrTransferInconsistente, intent.ID, errors.Join(cause, reverseErr))
	}
	intent = c.avanzar(ctx, intent, TransferCompensada, cause)
	return intent, fmt.Errorf("%w: %w", ErrTransferRevertida, cause)
}

// TransferenciasPendientes lists intents that did not reach a final state.
func (c *Client) TransferenciasPendientes(ctx context.Context) ([]TransferIntent, error) {
	intents, _, err := store.Load[[]TransferIntent](ctx, c.store, store.KeyTransferenciasIntent)
	return intents, err
}

// Reanudar drives every pending intent to a final state: debited intents
// retry their credit, inconsistent ones retry the reversal. It returns the
// intents after the attempt along with the errors of those still pending.
func (c *Client) Reanudar(ctx context.Context) ([]TransferIntent, error) {
	pendientes, err := c.TransferenciasPendientes(ctx)
	if err != nil {
		return nil, err
	}

	var errs []error
	out := make([]TransferIntent, 0, len(pendientes))
	for _, intent := range pendientes {
		var stepErr error
		switch intent.Estado {
		case TransferIniciada:
			// The debit outcome is unknown; replaying it under the same
			// key lets the backend deduplicate it.
			if _, stepErr = c.movimiento(ctx, intent.ItemID, intent.debitKey(), movimientoRequest{
				Cantidad: intent.Cantidad, Tipo: tipoDescargar, Sucursal: intent.Origen, Concepto: "transferencia " + intent.ID,
			}); stepErr == nil {
				intent = c.avanzar(ctx, intent, TransferDebitada, nil)
				intent, stepErr = c.acreditar(ctx, intent)
			}
		case TransferDebitada:
			intent, stepErr = c.acreditar(ctx, intent)
		case TransferInconsistente:
			intent, stepErr = c.revertir(ctx, intent, errors.New(intent.Error))
		}
		if errors.Is(stepErr, ErrTransferRevertida) {
			stepErr = nil
		}
		if stepErr != nil {
			errs = append(errs, fmt.Errorf("%s: %w", intent.ID, stepErr))
		}
		out = append(out, intent)
	}
	return out, errors.Join(errs...)
}

func (c *Client) avanzar(ctx context.Context, intent TransferIntent, estado EstadoTransfer, cause error) TransferIntent {
	intent.Estado = estado
	intent.Actualizado = api.NewFecha(time.Now().UTC())
	if cause != nil {
		intent.Error = cause.Error()
	}
	if err := c.guardarIntent(ctx, intent); err != nil {
		c.logger.Error("no se pudo persistir el estado de la transferencia",
			zap.String("transfer_id", intent.ID),
			zap.String("estado", string(estado)),
			zap.Error(err),
		)
	}
	return intent
}

// guardarIntent upserts intent in the pending log and drops it once final.
func (c *Client) guardarIntent(ctx context.Context, intent TransferIntent) error {
	_, err := store.Update(ctx, c.store, store.KeyTransferenciasIntent, func(log []TransferIntent) ([]TransferIntent, error) {
		next := make([]TransferIntent, 0, len(log)+1)
		for _, existing := range log {
			if existing.ID != intent.ID {
				next = append(next, existing)
			}
		}
		if !intent.Estado.terminal() {
			next = append(next, intent)
		}
		return next, nil
	})
	return err
}
