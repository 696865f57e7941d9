// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package assets stores and resolves the uploadable site asset slots
// (logo, favicon, Open Graph image). Files live in S3-compatible object
// storage under a stable namespace; the settings row only holds the
// relative key.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// keyPrefix namespaces all site asset objects in the bucket.
const keyPrefix = "website/"

// Typed upload failures, surfaced to the admin as field errors.
var (
	ErrNoStorage    = errors.New("object storage is not configured")
	ErrFileTooLarge = errors.New("file exceeds the size limit")
	ErrBadFileType  = errors.New("file type is not allowed")
)

// Slot identifies one of the uploadable asset slots.
type Slot string

const (
	SlotLogo    Slot = "logo"
	SlotFavicon Slot = "favicon"
	SlotOgImage Slot = "og_image"
)

// slotRule holds the per-slot upload constraints.
type slotRule struct {
	maxBytes int64
	types    map[string]bool
}

var slotRules = map[Slot]slotRule{
	SlotLogo: {
		maxBytes: 2 << 20,
		types: map[string]bool{
			"image/jpeg":    true,
			"image/png":     true,
			"image/gif":     true,
			"image/svg+xml": true,
		},
	},
	SlotFavicon: {
		maxBytes: 1 << 20,
		types: map[string]bool{
			"image/x-icon":             true,
			"image/vnd.microsoft.icon": true,
			"image/png":                true,
		},
	},
	SlotOgImage: {
		maxBytes: 2 << 20,
		types: map[string]bool{
			"image/jpeg": true,
			"image/png":  true,
		},
	},
}

// ObjectStore is the subset of the storage client the resolver needs.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
	FileURL(key string) string
}

// Resolver stores asset files and maps stored relative keys to public URLs.
type Resolver struct {
	objects ObjectStore // nil when storage is not configured
}

// NewResolver creates a Resolver. objects may be nil when S3 is not
// configured; uploads then fail with ErrNoStorage and URL resolves to nil.
func NewResolver(objects ObjectStore) *Resolver {
	return &Resolver{objects: objects}
}

// URL resolves a stored relative key to its public URL. Nil in, nil out.
// Existence is not re-verified: callers upload first and resolve after.
func (r *Resolver) URL(path *string) *string {
	if path == nil || *path == "" {
		return nil
	}
	if r.objects == nil {
		return nil
	}
	u := r.objects.FileURL(*path)
	return &u
}

// Replace validates and stores a newly uploaded file for the slot,
// deleting the slot's previous object first. Returns the new relative key
// for the caller to persist. Replacement is last-write-wins.
//
// The old-file deletion is best-effort and independent of the subsequent
// settings update, so a failure in between can leave a dangling reference;
// the admin simply re-uploads.
func (r *Resolver) Replace(ctx context.Context, slot Slot, file multipart.File, header *multipart.FileHeader, previous *string) (string, error) {
	if r.objects == nil {
		return "", ErrNoStorage
	}

	rule, ok := slotRules[slot]
	if !ok {
		return "", fmt.Errorf("unknown asset slot %q", slot)
	}

	if header.Size > rule.maxBytes {
		return "", fmt.Errorf("%w: max %d bytes for %s", ErrFileTooLarge, rule.maxBytes, slot)
	}

	contentType, err := sniffType(file, header.Filename)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if !rule.types[contentType] {
		return "", fmt.Errorf("%w: %q for %s", ErrBadFileType, contentType, slot)
	}

	// Remove the old object before storing the new one. Deletion failures
	// are logged and do not block the upload.
	if previous != nil && *previous != "" {
		if err := r.objects.Delete(ctx, *previous); err != nil {
			slog.Warn("old asset delete failed", "slot", slot, "key", *previous, "error", err)
		}
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext == "" {
		ext = extensionFromType(contentType)
	}
	key := fmt.Sprintf("%s%s-%s%s", keyPrefix, slot, uuid.New().String(), ext)

	if err := r.objects.Upload(ctx, key, contentType, file, header.Size); err != nil {
		return "", fmt.Errorf("store asset: %w", err)
	}

	return key, nil
}

// sniffType detects the content type from the first 512 bytes and rewinds
// the file. SVG and ICO need filename hints: DetectContentType reports
// them as XML/text or octet-stream.
func sniffType(file multipart.File, filename string) (string, error) {
	buf := make([]byte, 512)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		return "", err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	contentType := http.DetectContentType(buf[:n])
	// Strip parameters like "; charset=utf-8".
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}

	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".svg") &&
		(strings.Contains(contentType, "xml") || contentType == "text/plain"):
		return "image/svg+xml", nil
	case strings.HasSuffix(lower, ".ico") && contentType == "application/octet-stream":
		return "image/x-icon", nil
	}
	return contentType, nil
}

// extensionFromType returns a file extension for known MIME types.
func extensionFromType(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/svg+xml":
		return ".svg"
	case "image/x-icon", "image/vnd.microsoft.icon":
		return ".ico"
	default:
		return ""
	}
}
