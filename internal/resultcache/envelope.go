package resultcache

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"agora/internal/comparacion"
	"agora/internal/services"
)

// EnvelopeVersion tags the current serialized shape.
const EnvelopeVersion = 2

// Format identifies which stored shape a value was decoded from.
type Format string

const (
	FormatEnvelope    Format = "envelope"
	FormatUnversioned Format = "unversioned"
	FormatLegacy      Format = "legacy"
)

type envelope struct {
	Version  int                            `json:"version"`
	Response comparacion.VerificacionMasiva `json:"response"`
	Metadata Metadata                       `json:"metadata"`
}

// Encode serializes cache as a versioned envelope.
func Encode(cache *Cache) ([]byte, error) {
	if cache == nil {
		return nil, errors.New("encode cache: nil cache")
	}
	data, err := json.Marshal(envelope{
		Version:  EnvelopeVersion,
		Response: cache.Response,
		Metadata: cache.Metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("encode cache: %w", err)
	}
	return data, nil
}

// Decode parses any supported stored shape. Legacy bare responses and objects
// without metadata get programaId 0 and generadoEn set to now.
func Decode(raw []byte, now time.Time) (*Cache, Format, error) {
	raw = bytes.TrimSpace(raw)
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, "", services.Wrap(services.ErrDecode, "resultcache", "decode", "stored value is not a JSON object", err)
	}
	if fields == nil {
		return nil, "", services.Wrap(services.ErrDecode, "resultcache", "decode", "stored value is null", nil)
	}

	if rawVersion, ok := fields["version"]; ok {
		var version int
		if err := json.Unmarshal(rawVersion, &version); err != nil {
			return nil, "", services.Wrap(services.ErrDecode, "resultcache", "decode", "invalid version marker", err)
		}
		if version != EnvelopeVersion {
			return nil, "", services.Wrap(services.ErrDecode, "resultcache", "decode",
				fmt.Sprintf("unsupported envelope version %d", version), nil)
		}
		cache, err := decodeWrapped(fields, now)
		if err != nil {
			return nil, "", err
		}
		return cache, FormatEnvelope, nil
	}

	if _, ok := fields["response"]; ok {
		cache, err := decodeWrapped(fields, now)
		if err != nil {
			return nil, "", err
		}
		return cache, FormatUnversioned, nil
	}

	if _, ok := fields["total_estudiantes"]; ok {
		var response comparacion.VerificacionMasiva
		if err := json.Unmarshal(raw, &response); err != nil {
			return nil, "", services.Wrap(services.ErrDecode, "resultcache", "decode", "legacy response", err)
		}
		return &Cache{Response: response, Metadata: defaultMetadata(now)}, FormatLegacy, nil
	}

	return nil, "", services.Wrap(services.ErrDecode, "resultcache", "decode", "unrecognized stored shape", nil)
}

func decodeWrapped(fields map[string]json.RawMessage, now time.Time) (*Cache, error) {
	rawResponse, ok := fields["response"]
	if !ok || isNull(rawResponse) {
		return nil, services.Wrap(services.ErrDecode, "resultcache", "decode", "missing response", nil)
	}
	var cache Cache
	if err := json.Unmarshal(rawResponse, &cache.Response); err != nil {
		return nil, services.Wrap(services.ErrDecode, "resultcache", "decode", "response", err)
	}
	rawMetadata, ok := fields["metadata"]
	if !ok || isNull(rawMetadata) {
		cache.Metadata = defaultMetadata(now)
		return &cache, nil
	}
	if err := json.Unmarshal(rawMetadata, &cache.Metadata); err != nil {
		return nil, services.Wrap(services.ErrDecode, "resultcache", "decode", "metadata", err)
	}
	if cache.Metadata.GeneradoEn.IsZero() {
		cache.Metadata.GeneradoEn = now
	}
	return &cache, nil
}

func defaultMetadata(now time.Time) Metadata {
	return Metadata{GeneradoEn: now}
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
