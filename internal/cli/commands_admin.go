package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"tumundo_admin/internal/api"
	"tumundo_admin/internal/config"
	"tumundo_admin/internal/homecfg"
	"tumundo_admin/internal/usuarios"
)

func (r *Runner) cmdToken(ctx context.Context, args []string) error {
	action, rest, err := subcommand(args, "set", "show", "clear")
	if err != nil {
		return err
	}
	switch action {
	case "set":
		if len(rest) != 1 {
			return fmt.Errorf("%w: token set <token>", errUsage)
		}
		if err := r.deps.API.SetToken(ctx, rest[0]); err != nil {
			return err
		}
		r.println("Token guardado.")
		return nil
	case "clear":
		if err := r.deps.API.ClearToken(ctx); err != nil {
			return err
		}
		r.println("Token eliminado.")
		return nil
	}

	token := r.deps.API.Token(ctx)
	if token == "" {
		r.println("No hay token configurado.")
		return nil
	}
	info, infoErr := api.DescribeToken(token)
	out := map[string]any{"base_url": r.deps.API.BaseURL(), "token": mask(token)}
	if infoErr == nil {
		out["info"] = info
		out["expirado"] = info.Expired(time.Now())
	}
	return r.emit(out, func() {
		r.println("Servidor: %s", r.deps.API.BaseURL())
		r.println("Token:    %s", mask(token))
		if infoErr != nil {
			r.println("(token opaco, sin datos legibles)")
			return
		}
		if info.Usuario != "" || info.Subject != "" {
			r.println("Usuario:  %s %s", info.Usuario, info.Subject)
		}
		if !info.ExpiresAt.IsZero() {
			estado := "vigente"
			if info.Expired(time.Now()) {
				estado = "EXPIRADO"
			}
			r.println("Expira:   %s (%s)", info.ExpiresAt.Local().Format("2006-01-02 15:04"), estado)
		}
	})
}

func mask(token string) string {
	if len(token) <= 10 {
		return strings.Repeat("*", len(token))
	}
	return token[:6] + "..." + token[len(token)-4:]
}

func (r *Runner) cmdUsuarios(ctx context.Context, args []string) error {
	action, rest, err := subcommand(args, "list", "permisos", "password")
	if err != nil {
		return err
	}
	switch action {
	case "list":
		list, err := r.deps.Usuarios.List(ctx)
		if err != nil {
			return err
		}
		return r.emit(list, func() {
			rows := make([][]string, 0, len(list))
			for _, u := range list {
				rows = append(rows, []string{u.ID, u.Nombre, u.Email, strings.Join(u.Permisos, ",")})
			}
			r.table([]string{"ID", "NOMBRE", "EMAIL", "PERMISOS"}, rows)
			r.println("\nPermisos disponibles: %s", strings.Join(usuarios.Permisos, ", "))
		})
	case "permisos":
		fs := r.flags("usuarios permisos")
		id := fs.String("id", "", "ID del usuario")
		set := fs.String("set", "", "Permisos separados por coma")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if err := required("id", *id); err != nil {
			return err
		}
		u, err := r.deps.Usuarios.SetPermisos(ctx, *id, config.SplitList(*set))
		if err != nil {
			return err
		}
		return r.emit(u, func() {
			r.println("Permisos de %s: %s", u.ID, strings.Join(u.Permisos, ", "))
		})
	default:
		fs := r.flags("usuarios password")
		id := fs.String("id", "", "ID del usuario")
		password := fs.String("password", "", "Nueva contraseña")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if err := required("id", *id); err != nil {
			return err
		}
		if err := r.deps.Usuarios.CambiarPassword(ctx, *id, *password); err != nil {
			return err
		}
		r.println("Contraseña actualizada.")
		return nil
	}
}

func (r *Runner) cmdHome(ctx context.Context, args []string) error {
	action, rest, err := subcommand(args, "get", "set", "subir")
	if err != nil {
		return err
	}
	switch action {
	case "get":
		res, err := r.deps.Home.Get(ctx)
		if err != nil {
			return err
		}
		r.warn(res.Advertencia)
		if r.options.JSON {
			return r.emit(res, nil)
		}
		enc := json.NewEncoder(r.out)
		enc.SetIndent("", "  ")
		return enc.Encode(res.Config)
	case "set":
		fs := r.flags("home set")
		file := fs.String("file", "", "Archivo JSON con la configuracion")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if err := required("file", *file); err != nil {
			return err
		}
		raw, err := os.ReadFile(*file)
		if err != nil {
			return err
		}
		var cfg homecfg.HomeConfig
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return fmt.Errorf("leer %s: %w", *file, err)
		}
		saved, err := r.deps.Home.Save(ctx, cfg)
		if err != nil {
			return err
		}
		return r.emit(saved, func() { r.println("Configuracion guardada.") })
	default:
		fs := r.flags("home subir")
		file := fs.String("file", "", "Imagen a subir")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if err := required("file", *file); err != nil {
			return err
		}
		data, err := os.ReadFile(*file)
		if err != nil {
			return err
		}
		public, err := r.deps.Home.UploadImage(ctx, *file, data)
		if err != nil {
			return err
		}
		return r.emit(map[string]string{"url": public}, func() { r.println("Imagen disponible en %s", public) })
	}
}
