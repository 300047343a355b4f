package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

var fechaLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Fecha is a timestamp that accepts the several layouts the backend emits.
// Empty strings and null decode to the zero time.
type Fecha struct {
	time.Time
}

func NewFecha(t time.Time) Fecha {
	return Fecha{Time: t}
}

func ParseFecha(value string) (Fecha, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Fecha{}, nil
	}
	for _, layout := range fechaLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return Fecha{Time: t}, nil
		}
	}
	return Fecha{}, fmt.Errorf("unrecognized date %q", value)
}

func (f *Fecha) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		f.Time = time.Time{}
		return nil
	}
	var millis int64
	if err := json.Unmarshal(data, &millis); err == nil {
		f.Time = time.UnixMilli(millis).UTC()
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseFecha(s)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

func (f Fecha) MarshalJSON() ([]byte, error) {
	if f.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(f.UTC().Format(time.RFC3339Nano))
}

var listWrapperKeys = []string{"data", "items", "results", "pedidos", "usuarios", "cuentas", "metodos", "historial", "transacciones", "inventario"}

// List decodes either a bare JSON array or an object wrapping the array
// under one of the usual keys.
type List[T any] []T

func (l *List[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if data[0] == '[' {
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*l = items
		return nil
	}
	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return err
	}
	for _, key := range listWrapperKeys {
		raw, ok := wrapper[key]
		if !ok {
			continue
		}
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) == 0 || trimmed[0] != '[' {
			continue
		}
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		*l = items
		return nil
	}
	return fmt.Errorf("response does not contain a list")
}
