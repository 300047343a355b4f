package cli

import (
	"context"
	"errors"
	"net"
	"strings"

	"tumundo_admin/internal/api"
	"tumundo_admin/internal/facturacion"
	"tumundo_admin/internal/inventario"
)

// Friendly turns err into the message shown to the operator.
func Friendly(err error) string {
	var apiErr *api.APIError
	var netErr net.Error
	var sinCodigo *facturacion.ItemsSinCodigoError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, errUsage):
		return err.Error() + ". Use --help para ver las opciones."
	case errors.Is(err, api.ErrUnauthorized):
		return "Sin acceso: el token es invalido, expiro o no tiene permisos. Use 'token set <token>'."
	case errors.Is(err, context.DeadlineExceeded):
		return "Tiempo de espera agotado. Intente de nuevo o aumente --timeout."
	case errors.Is(err, context.Canceled):
		return "Operacion cancelada."
	case errors.Is(err, inventario.ErrTransferInconsistente):
		return "ATENCION: " + err.Error() + ". Ejecute 'inventario reanudar' para completar la reversion."
	case errors.As(err, &sinCodigo):
		return "No se puede cargar al inventario, hay items sin codigo: " + strings.Join(sinCodigo.Nombres, ", ")
	case errors.Is(err, api.ErrNotFound):
		if msg := api.Message(err); msg != "" && !strings.HasPrefix(msg, "404") {
			return "No encontrado: " + msg
		}
		return "No encontrado."
	case errors.As(err, &apiErr):
		return "El servidor respondio con error: " + api.Message(err)
	case errors.As(err, &netErr), errors.Is(err, api.ErrBadBaseURL):
		return "No se pudo conectar con el servidor: " + err.Error()
	default:
		return err.Error()
	}
}
