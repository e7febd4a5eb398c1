package ingestion

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/clinquery/core"
)

// Option configures the loader.
type Option func(*loader)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *loader) {
		if logger == nil {
			logger = slog.Default()
		}
		l.logger = logger
	}
}

type loader struct {
	logger *slog.Logger
}

// LoadFile loads a dataset from a JSON file on disk.
func LoadFile(path string, opts ...Option) ([]*core.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnreadable, path, err)
	}
	defer f.Close()
	return Load(f, opts...)
}

// Load reads a JSON array of Q&A records and returns the accepted documents
// with dense ids assigned in input order. Records that fail their individual
// decode are skipped; Load fails only when the source is unreadable, the
// top-level value is not an array, or nothing survives.
func Load(r io.Reader, opts ...Option) ([]*core.Document, error) {
	l := &loader{logger: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnreadable, err)
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDataset, err)
	}

	docs := make([]*core.Document, 0, len(raws))
	skipped := 0
	for i, raw := range raws {
		doc, err := decodeRecord(raw)
		if err != nil {
			skipped++
			l.logger.Debug("skipping record", "position", i, "err", err)
			continue
		}
		doc.Id = len(docs)
		docs = append(docs, doc)
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: %d records rejected", ErrEmptyDataset, skipped)
	}

	if skipped > 0 {
		l.logger.Warn("dataset loaded with rejected records", "accepted", len(docs), "skipped", skipped)
	} else {
		l.logger.Info("dataset loaded", "records", len(docs))
	}
	return docs, nil
}

// decodeRecord attempts a strict decode of one record. The record must be a
// JSON object with string-coercible prompt and completion; cancer_type and
// genes are optional comma-separated strings; remaining scalar fields pass
// through as opaque metadata for the presentation layer.
func decodeRecord(raw json.RawMessage) (*core.Document, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("%w: not an object", errInvalidRecord)
	}

	prompt, ok := coerceString(fields["prompt"])
	if !ok {
		return nil, fmt.Errorf("%w: missing or non-string prompt", errInvalidRecord)
	}
	completion, ok := coerceString(fields["completion"])
	if !ok {
		return nil, fmt.Errorf("%w: missing or non-string completion", errInvalidRecord)
	}

	doc := &core.Document{
		Prompt:     strings.TrimSpace(prompt),
		Completion: strings.TrimSpace(completion),
	}

	var err error
	if doc.CancerTypes, err = facetValues(fields, "cancer_type"); err != nil {
		return nil, err
	}
	if doc.Genes, err = facetValues(fields, "genes"); err != nil {
		return nil, err
	}

	for key, value := range fields {
		switch key {
		case "prompt", "completion", "cancer_type", "genes":
			continue
		}
		if s, ok := coerceString(value); ok {
			if doc.Metadata == nil {
				doc.Metadata = make(map[string]string)
			}
			doc.Metadata[key] = s
		}
	}

	return doc, nil
}

// facetValues parses an optional comma-separated facet field into a trimmed,
// deduped set. Values keep their original case. A present but non-string
// field fails the record's decode.
func facetValues(fields map[string]any, key string) ([]string, error) {
	value, present := fields[key]
	if !present || value == nil {
		return nil, nil
	}
	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a string", errInvalidRecord, key)
	}

	var values []string
	seen := make(map[string]struct{})
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if _, dup := seen[part]; dup {
			continue
		}
		seen[part] = struct{}{}
		values = append(values, part)
	}
	return values, nil
}

// coerceString converts a decoded JSON scalar to its string form. Objects,
// arrays and nulls do not coerce.
func coerceString(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case bool:
		if v {
			return "true", true
		}
		return "false", true
	default:
		return "", false
	}
}
