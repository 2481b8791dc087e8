package agora

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"agora/internal/comparacion"
	"agora/internal/services"
)

const (
	opVerificarMasiva     = "verificar_masiva"
	opVerificarIndividual = "verificar_individual"
)

// Upload is one transcript file sent to the verification endpoints.
type Upload struct {
	Name    string
	Content io.Reader
}

// VerificarMasiva uploads transcripts for bulk eligibility verification against
// the given program. The file count limit is enforced by the caller.
func (c *Client) VerificarMasiva(ctx context.Context, programaID int, files []Upload) (*comparacion.VerificacionMasiva, error) {
	if err := c.requireToken(opVerificarMasiva); err != nil {
		return nil, err
	}
	if programaID <= 0 {
		return nil, services.Wrap(services.ErrValidation, "agora", opVerificarMasiva, "programa_id must be positive", nil)
	}
	if len(files) == 0 {
		return nil, services.Wrap(services.ErrValidation, "agora", opVerificarMasiva, "at least one transcript is required", nil)
	}

	body, contentType, err := buildForm("historias", files, programaID)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "agora", opVerificarMasiva, "build multipart body", err)
	}

	var out comparacion.VerificacionMasiva
	err = c.do(ctx, request{
		operation:   opVerificarMasiva,
		method:      http.MethodPost,
		path:        "historias/verificar/masiva/",
		body:        body,
		contentType: contentType,
		timeout:     c.uploadTimeout,
		fallback:    "Error verificando elegibilidad masiva",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// VerificarIndividual uploads a single transcript and returns its verification.
func (c *Client) VerificarIndividual(ctx context.Context, programaID int, file Upload) (*comparacion.Estudiante, error) {
	if err := c.requireToken(opVerificarIndividual); err != nil {
		return nil, err
	}
	if programaID <= 0 {
		return nil, services.Wrap(services.ErrValidation, "agora", opVerificarIndividual, "programa_id must be positive", nil)
	}

	body, contentType, err := buildForm("historia", []Upload{file}, programaID)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "agora", opVerificarIndividual, "build multipart body", err)
	}

	var out comparacion.Estudiante
	err = c.do(ctx, request{
		operation:   opVerificarIndividual,
		method:      http.MethodPost,
		path:        "historias/verificar/",
		body:        body,
		contentType: contentType,
		timeout:     c.uploadTimeout,
		fallback:    "Error verificando elegibilidad individual",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func buildForm(field string, files []Upload, programaID int) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, file := range files {
		if file.Content == nil {
			return nil, "", fmt.Errorf("upload %q has no content", file.Name)
		}
		name := filepath.Base(strings.TrimSpace(file.Name))
		if name == "." || name == string(filepath.Separator) {
			return nil, "", errors.New("upload name is required")
		}
		part, err := writer.CreateFormFile(field, name)
		if err != nil {
			return nil, "", fmt.Errorf("create form file %s: %w", name, err)
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return nil, "", fmt.Errorf("copy %s: %w", name, err)
		}
	}
	if err := writer.WriteField("programa_id", strconv.Itoa(programaID)); err != nil {
		return nil, "", fmt.Errorf("write programa_id: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return &buf, writer.FormDataContentType(), nil
}
