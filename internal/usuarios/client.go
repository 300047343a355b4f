package usuarios

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"tumundo_admin/internal/api"

	"go.uber.org/zap"
)

const MinPasswordLen = 6

// Permisos is the closed set of screens a user can be granted.
var Permisos = []string{
	"metodos_pago",
	"cuentas_por_pagar",
	"facturacion",
	"inventario",
	"pedidos",
	"panel_logistico",
	"usuarios",
	"home",
}

var (
	ErrPermisoDesconocido = errors.New("permiso desconocido")
	ErrPasswordCorta      = fmt.Errorf("la contraseña debe tener al menos %d caracteres", MinPasswordLen)
	ErrUsuarioSinID       = errors.New("el usuario no tiene id")
)

type Usuario struct {
	ID       string   `json:"_id"`
	Nombre   string   `json:"nombre"`
	Email    string   `json:"email,omitempty"`
	Usuario  string   `json:"usuario,omitempty"`
	Rol      string   `json:"rol,omitempty"`
	Permisos []string `json:"permisos"`
}

func (u Usuario) Tiene(permiso string) bool {
	return slices.Contains(u.Permisos, permiso)
}

type Client struct {
	api    *api.Client
	logger *zap.Logger
}

func NewClient(apiClient *api.Client, logger *zap.Logger) *Client {
	return &Client{api: apiClient, logger: logger.Named("usuarios")}
}

func (c *Client) List(ctx context.Context) ([]Usuario, error) {
	var resp api.List[Usuario]
	if err := c.api.Get(ctx, "/usuarios/all", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// ValidarPermisos trims, dedupes and orders permisos as in Permisos.
// Unknown names are refused.
func ValidarPermisos(permisos []string) ([]string, error) {
	seen := map[string]bool{}
	var unknown []string
	for _, p := range permisos {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if !slices.Contains(Permisos, p) {
			unknown = append(unknown, p)
			continue
		}
		seen[p] = true
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrPermisoDesconocido, strings.Join(unknown, ", "))
	}
	out := []string{}
	for _, p := range Permisos {
		if seen[p] {
			out = append(out, p)
		}
	}
	return out, nil
}

func (c *Client) SetPermisos(ctx context.Context, id string, permisos []string) (Usuario, error) {
	if id == "" {
		return Usuario{}, ErrUsuarioSinID
	}
	valid, err := ValidarPermisos(permisos)
	if err != nil {
		return Usuario{}, err
	}
	var resp Usuario
	if err := c.api.Put(ctx, "/usuarios/"+url.PathEscape(id), map[string]any{"permisos": valid}, &resp); err != nil {
		return Usuario{}, err
	}
	if resp.ID == "" {
		resp = Usuario{ID: id, Permisos: valid}
	}
	c.logger.Info("permisos actualizados", zap.String("id", id), zap.Strings("permisos", valid))
	return resp, nil
}

func (c *Client) CambiarPassword(ctx context.Context, id, password string) error {
	if id == "" {
		return ErrUsuarioSinID
	}
	if len([]rune(password)) < MinPasswordLen {
		return ErrPasswordCorta
	}
	if err := c.api.Put(ctx, "/usuarios/"+url.PathEscape(id), map[string]string{"password": password}, nil); err != nil {
		return err
	}
	c.logger.Info("password actualizada", zap.String("id", id))
	return nil
}
