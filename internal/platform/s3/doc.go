// Package s3 reads cluster and node pool documents from S3-compatible object
// storage. Documents are referenced as s3://bucket/key; a missing object is
// reported as fs.ErrNotExist so callers can tell it apart from access errors.
package s3
