// Package homecfg administers the public home page content. The last
// configuration read or saved is mirrored in the local store.
package homecfg

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/url"
	"path/filepath"
	"reflect"
	"strings"

	"tumundo_admin/internal/api"
	"tumundo_admin/internal/store"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var (
	ErrColorInvalido   = errors.New("color invalido, use formato hexadecimal como #1A2B3C")
	ErrCampoRequerido  = errors.New("campo requerido")
	ErrSinTitulo       = errors.New("el banner requiere un titulo")
	ErrPresignInvalido = errors.New("respuesta de url prefirmada incompleta")
	ErrArchivoVacio    = errors.New("el archivo esta vacio")
)

type Service struct {
	api    *api.Client
	store  store.Store
	logger *zap.Logger
}

func NewService(apiClient *api.Client, st store.Store, logger *zap.Logger) *Service {
	return &Service{api: apiClient, store: st, logger: logger.Named("homecfg")}
}

func (s *Service) Get(ctx context.Context) (Resultado, error) {
	var cfg HomeConfig
	err := s.api.Get(ctx, "/home/config", nil, &cfg)
	if err == nil {
		if err := store.Save(ctx, s.store, store.KeyHomeConfig, cfg); err != nil {
			s.logger.Warn("home config mirror failed", zap.Error(err))
		}
		return Resultado{Config: cfg}, nil
	}

	mirror, found, mirrorErr := store.Load[HomeConfig](ctx, s.store, store.KeyHomeConfig)
	if mirrorErr != nil || !found {
		return Resultado{}, err
	}
	s.logger.Warn("home config backend unavailable, serving local mirror", zap.Error(err))
	return Resultado{Config: mirror, Stale: true, Advertencia: "configuracion local: " + api.Message(err)}, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validar checks the banner title, the theme colors and that every product
// and service has a name.
func Validar(cfg HomeConfig) error {
	if strings.TrimSpace(cfg.Banner.Titulo) == "" {
		return ErrSinTitulo
	}
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	if fe.Tag() == "hexcolor" {
		return fmt.Errorf("%w: %s=%q", ErrColorInvalido, fe.Field(), fe.Value())
	}
	return fmt.Errorf("%w: %s", ErrCampoRequerido, fe.Namespace())
}

func (s *Service) Save(ctx context.Context, cfg HomeConfig) (HomeConfig, error) {
	if err := Validar(cfg); err != nil {
		return HomeConfig{}, err
	}
	var resp HomeConfig
	if err := s.api.Put(ctx, "/home/config", cfg, &resp); err != nil {
		return HomeConfig{}, err
	}
	if resp.Banner.Titulo == "" {
		resp = cfg
	}
	if err := store.Save(ctx, s.store, store.KeyHomeConfig, resp); err != nil {
		s.logger.Warn("home config mirror failed", zap.Error(err))
	}
	s.logger.Info("home config guardada")
	return resp, nil
}

// UploadImage asks the backend for a presigned URL, PUTs data there and
// returns the public URL of the stored file.
func (s *Service) UploadImage(ctx context.Context, filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrArchivoVacio
	}
	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename)))
	if contentType == "" {
		contentType = mimetype.Detect(data).String()
	}

	var presign presignResponse
	req := presignRequest{Filename: filepath.Base(filename), ContentType: contentType}
	if err := s.api.Post(ctx, "/files/presigned-url", req, &presign); err != nil {
		return "", err
	}
	destino := presign.destino()
	if destino == "" {
		return "", ErrPresignInvalido
	}
	if err := s.api.Upload(ctx, destino, contentType, data); err != nil {
		return "", fmt.Errorf("subir %s: %w", req.Filename, err)
	}

	publica := presign.publica()
	if publica == "" {
		// Without an explicit public URL the upload target minus its
		// signature is the object location.
		u, err := url.Parse(destino)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrPresignInvalido, err)
		}
		u.RawQuery = ""
		publica = u.String()
	}
	s.logger.Info("imagen subida", zap.String("archivo", req.Filename), zap.Int("bytes", len(data)))
	return publica, nil
}
