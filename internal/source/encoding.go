package source

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
)

// Supported source encodings.
const (
	EncodingUTF8     = "utf-8"
	EncodingShiftJIS = "shift_jis"
	EncodingEUCJP    = "euc-jp"
)

// decodingFetcher converts fetched bytes from a legacy encoding to UTF-8.
type decodingFetcher struct {
	next Fetcher
	enc  encoding.Encoding
}

// WithEncoding wraps f so every resource is decoded from the named
// encoding. UTF-8 (or an empty name) returns f unchanged.
func WithEncoding(f Fetcher, name string) (Fetcher, error) {
	enc, err := lookupEncoding(name)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return f, nil
	}
	return &decodingFetcher{next: f, enc: enc}, nil
}

func (d *decodingFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	data, err := d.next.Fetch(ctx, name)
	if err != nil {
		return nil, err
	}
	out, err := d.enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return out, nil
}

func lookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", EncodingUTF8, "utf8":
		return nil, nil
	case "utf-8-bom":
		return unicode.UTF8BOM, nil
	case EncodingShiftJIS, "shift-jis", "sjis", "cp932":
		return japanese.ShiftJIS, nil
	case EncodingEUCJP, "eucjp":
		return japanese.EUCJP, nil
	default:
		return nil, fmt.Errorf("unsupported source encoding %q", name)
	}
}
