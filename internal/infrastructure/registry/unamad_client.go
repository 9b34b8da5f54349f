// Package registry implementa ports.StudentRegistry contra la API institucional de la UNAMAD.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jhoicas/portal-unamad/internal/application/ports"
	"github.com/jhoicas/portal-unamad/internal/domain"
	"github.com/jhoicas/portal-unamad/internal/domain/entity"
	"github.com/jhoicas/portal-unamad/pkg/config"
)

const maxBodyBytes = 1 << 20

var _ ports.StudentRegistry = (*Client)(nil)

// errNotFound marca respuestas "no existe" para que no cuenten como falla del breaker.
var errNotFound = errors.New("registry: estudiante no encontrado")

// Client consulta el padrón de estudiantes con token bearer y circuit breaker.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	cb      *gobreaker.CircuitBreaker
	log     zerolog.Logger
}

// NewClient construye el cliente; cfg.Timeout acota cada petición.
func NewClient(cfg config.RegistryConfig, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http:    &http.Client{Timeout: timeout},
		log:     log.With().Str("component", "registry").Logger(),
	}
	c.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "unamad-registry",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     20 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("cambio de estado del circuit breaker")
		},
	})
	return c
}

// ByDNI GET {base}/estudiantes/dni/{dni}.
func (c *Client) ByDNI(ctx context.Context, dni string) (*entity.Student, error) {
	return c.lookup(ctx, "/estudiantes/dni/"+url.PathEscape(dni))
}

// ByCode GET {base}/estudiantes/codigo/{code}.
func (c *Client) ByCode(ctx context.Context, code string) (*entity.Student, error) {
	return c.lookup(ctx, "/estudiantes/codigo/"+url.PathEscape(code))
}

func (c *Client) lookup(ctx context.Context, path string) (*entity.Student, error) {
	out, err := c.cb.Execute(func() (interface{}, error) {
		return c.fetch(ctx, path)
	})
	if err != nil {
		if errors.Is(err, errNotFound) {
			return nil, domain.ErrNotFound
		}
		c.log.Error().Err(err).Str("path", path).Msg("consulta al padrón de estudiantes falló")
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	return out.(*entity.Student), nil
}

func (c *Client) fetch(ctx context.Context, path string) (*entity.Student, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("leer respuesta: %w", err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("respuesta %d", resp.StatusCode)
	}

	rec, err := extractRecord(body)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, errNotFound
	}
	st := c.normalize(rec)
	if st.Code == "" && st.DNI == "" {
		return nil, errNotFound
	}
	return st, nil
}

// extractRecord admite {data:{..}}, {estudiante:{..}}, objeto plano y arreglo (primer elemento).
// Devuelve nil si la respuesta no trae registro.
func extractRecord(body []byte) (map[string]any, error) {
	var raw any
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, nil
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("respuesta no es JSON: %w", err)
	}
	return unwrap(raw, 0), nil
}

func unwrap(v any, depth int) map[string]any {
	if depth > 3 {
		return nil
	}
	switch t := v.(type) {
	case []any:
		if len(t) == 0 {
			return nil
		}
		return unwrap(t[0], depth+1)
	case map[string]any:
		for _, k := range []string{"data", "estudiante", "student", "result"} {
			if inner, ok := t[k]; ok && inner != nil {
				return unwrap(inner, depth+1)
			}
		}
		if len(t) == 0 {
			return nil
		}
		return t
	}
	return nil
}

func (c *Client) normalize(rec map[string]any) *entity.Student {
	st := &entity.Student{
		Code:            strings.ToUpper(pick(rec, "codigo", "code", "codigo_estudiante", "codigoEstudiante")),
		DNI:             pick(rec, "dni", "documento", "num_documento", "numeroDocumento"),
		Names:           c.name(pick(rec, "nombres", "names", "nombre")),
		PaternalSurname: c.name(pick(rec, "apellido_paterno", "apellidoPaterno", "paternal_surname")),
		MaternalSurname: c.name(pick(rec, "apellido_materno", "apellidoMaterno", "maternal_surname")),
		Faculty:         c.name(pick(rec, "facultad", "faculty")),
		Program:         c.name(pick(rec, "escuela", "programa", "carrera", "program")),
		Email:           strings.ToLower(pick(rec, "email", "correo", "correo_institucional")),
		Status:          strings.ToUpper(pick(rec, "estado", "status")),
	}
	full := c.name(pick(rec, "nombre_completo", "nombreCompleto", "full_name"))
	if full == "" {
		full = strings.Join(nonEmpty(st.Names, st.PaternalSurname, st.MaternalSurname), " ")
	}
	st.FullName = full
	return st
}

// name pasa a mayúscula inicial. Un cases.Caser guarda estado: se crea uno por llamada.
func (c *Client) name(s string) string {
	if s == "" {
		return ""
	}
	return cases.Title(language.Spanish).String(strings.ToLower(s))
}

// pick devuelve el primer valor no vacío entre las claves dadas, con espacios colapsados.
func pick(rec map[string]any, keys ...string) string {
	for _, k := range keys {
		v, ok := rec[k]
		if !ok || v == nil {
			continue
		}
		var s string
		switch t := v.(type) {
		case string:
			s = t
		case float64:
			s = fmt.Sprintf("%.0f", t)
		default:
			s = fmt.Sprint(t)
		}
		if s = strings.Join(strings.Fields(s), " "); s != "" {
			return s
		}
	}
	return ""
}

func nonEmpty(parts ...string) []string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
