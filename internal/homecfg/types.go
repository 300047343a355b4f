package homecfg

type Banner struct {
	Titulo    string `json:"titulo"`
	Subtitulo string `json:"subtitulo,omitempty"`
	Imagen    string `json:"imagen,omitempty"`
	BotonText string `json:"botonTexto,omitempty"`
	BotonLink string `json:"botonLink,omitempty"`
}

type Colores struct {
	Primario   string `json:"primario,omitempty" validate:"omitempty,hexcolor"`
	Secundario string `json:"secundario,omitempty" validate:"omitempty,hexcolor"`
	Acento     string `json:"acento,omitempty" validate:"omitempty,hexcolor"`
	Fondo      string `json:"fondo,omitempty" validate:"omitempty,hexcolor"`
	Texto      string `json:"texto,omitempty" validate:"omitempty,hexcolor"`
}

type Tipografia struct {
	Titulos string `json:"titulos,omitempty"`
	Texto   string `json:"texto,omitempty"`
}

type Producto struct {
	Nombre      string `json:"nombre" validate:"required"`
	Descripcion string `json:"descripcion,omitempty"`
	Imagen      string `json:"imagen,omitempty"`
	Enlace      string `json:"enlace,omitempty"`
}

type Servicio struct {
	Titulo      string `json:"titulo" validate:"required"`
	Descripcion string `json:"descripcion,omitempty"`
	Icono       string `json:"icono,omitempty"`
}

type HomeConfig struct {
	Banner     Banner     `json:"banner"`
	Logo       string     `json:"logo,omitempty"`
	Colores    Colores    `json:"colores"`
	Tipografia Tipografia `json:"tipografia"`
	Productos  []Producto `json:"productos,omitempty" validate:"dive"`
	Servicios  []Servicio `json:"servicios,omitempty" validate:"dive"`
}

// Resultado is a configuration read. Stale is set when the backend could
// not be reached and the local mirror was returned instead.
type Resultado struct {
	Config      HomeConfig `json:"config"`
	Stale       bool       `json:"stale"`
	Advertencia string     `json:"advertencia,omitempty"`
}

type presignRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

type presignResponse struct {
	UploadURL string `json:"upload_url"`
	URL       string `json:"url"`
	PublicURL string `json:"public_url"`
	FileURL   string `json:"file_url"`
}

func (p presignResponse) destino() string {
	if p.UploadURL != "" {
		return p.UploadURL
	}
	return p.URL
}

func (p presignResponse) publica() string {
	if p.PublicURL != "" {
		return p.PublicURL
	}
	return p.FileURL
}
