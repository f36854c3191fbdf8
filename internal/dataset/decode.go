// Package dataset reads raw facility datasets from local files or S3,
// transparently decompressing gzip and zstd payloads.
package dataset

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/kailas-cloud/facilitydex/internal/domain"
)

// Encoding is a payload compression.
type Encoding string

// Supported encodings.
const (
	Identity Encoding = ""
	Gzip     Encoding = "gzip"
	Zstd     Encoding = "zstd"
)

// EncodingFromName infers the compression from a file or object name.
func EncodingFromName(name string) Encoding {
	switch {
	case strings.HasSuffix(name, ".gz"):
		return Gzip
	case strings.HasSuffix(name, ".zst"), strings.HasSuffix(name, ".zstd"):
		return Zstd
	default:
		return Identity
	}
}

// ParseEncoding maps a Content-Encoding header value.
func ParseEncoding(header string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(header)) {
	case "", "identity":
		return Identity, nil
	case "gzip", "x-gzip":
		return Gzip, nil
	case "zstd":
		return Zstd, nil
	default:
		return Identity, fmt.Errorf("%w: unsupported content encoding %q", domain.ErrInvalidDataset, header)
	}
}

// Decode reads one dataset document from r. Numbers are kept as json.Number
// so identifiers and coordinates keep their source text.
func Decode(r io.Reader, enc Encoding) (*domain.Dataset, error) {
	switch enc {
	case Gzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("%w: gzip: %w", domain.ErrInvalidDataset, err)
		}
		defer func() { _ = zr.Close() }()
		r = zr
	case Zstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %w", domain.ErrInvalidDataset, err)
		}
		defer zr.Close()
		r = zr
	}

	dec := json.NewDecoder(r)
	dec.UseNumber()
	var ds domain.Dataset
	if err := dec.Decode(&ds); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidDataset, err)
	}
	return &ds, nil
}
