package spec

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

const s3Scheme = "s3://"

// ObjectFetcher reads an object from S3-compatible storage. A missing object
// is reported with an error wrapping fs.ErrNotExist.
type ObjectFetcher interface {
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
}

// Loader resolves document references. A reference is inline JSON, a local
// file path, or an s3://bucket/key URL when Objects is set.
type Loader struct {
	Objects ObjectFetcher
}

// LoadDocument resolves ref without object storage support.
func LoadDocument(ctx context.Context, ref string) (Document, error) {
	return Loader{}.Load(ctx, ref)
}

// Load resolves ref into a document.
func (l Loader) Load(ctx context.Context, ref string) (Document, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, missing("document")
	}
	if strings.HasPrefix(ref, "{") {
		return parseDocument("inline document", []byte(ref))
	}
	if strings.HasPrefix(ref, s3Scheme) {
		return l.loadObject(ctx, ref)
	}

	// #nosec G304
	data, err := os.ReadFile(ref)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &ValidationError{Field: "document", Message: fmt.Sprintf("couldn't find file %q", ref), Err: ErrFileNotFound}
		}
		return nil, fmt.Errorf("failed to read document %s: %w", ref, err)
	}
	return parseDocument(fmt.Sprintf("file %q", ref), data)
}

func (l Loader) loadObject(ctx context.Context, ref string) (Document, error) {
	if l.Objects == nil {
		return nil, &ValidationError{Field: "document", Message: "object storage is not configured", Err: ErrInvalidValue}
	}
	bucket, key, ok := strings.Cut(strings.TrimPrefix(ref, s3Scheme), "/")
	if !ok || bucket == "" || key == "" {
		return nil, &ValidationError{Field: "document", Message: fmt.Sprintf("%q is not of the form s3://bucket/key", ref), Err: ErrInvalidValue}
	}
	data, err := l.Objects.GetObject(ctx, bucket, key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &ValidationError{Field: "document", Message: fmt.Sprintf("couldn't find object %q", ref), Err: ErrFileNotFound}
		}
		return nil, fmt.Errorf("failed to fetch document %s: %w", ref, err)
	}
	return parseDocument(fmt.Sprintf("object %q", ref), data)
}

func parseDocument(source string, data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil || doc == nil {
		return nil, &ValidationError{Field: "document", Message: fmt.Sprintf("%s doesn't contain a valid JSON object", source), Err: ErrInvalidJSON}
	}
	return doc, nil
}
