// Package storage writes uploaded review images to a local directory or
// an S3-compatible bucket and returns the URL they are served from.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/eco-stations/internal/config"
)

// ErrExists is returned by Save when name is already taken.  Stores
// never overwrite.
var ErrExists = errors.New("upload name already taken")

// maxNameAttempts bounds how many suffixed names SaveUnique tries.
const maxNameAttempts = 10

// Store saves one uploaded file under name and returns its public URL.
// Delete removes a file saved earlier; a missing file is not an error.
type Store interface {
	Save(ctx context.Context, name string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, name string) error
	Backend() string
}

// SaveUnique saves r under name, or under name with a _1, _2, ...
// suffix before the extension when that is taken.  r is rewound before
// every attempt.  It returns the name actually used and its URL.
func SaveUnique(ctx context.Context, st Store, name string, r io.ReadSeeker, contentType string) (string, string, error) {
	for i := 0; i < maxNameAttempts; i++ {
		candidate := withSuffix(name, i)
		if _, err := r.Seek(0, io.SeekStart); err != nil {
			return "", "", fmt.Errorf("rewind upload: %w", err)
		}
		url, err := st.Save(ctx, candidate, r, contentType)
		if errors.Is(err, ErrExists) {
			continue
		}
		if err != nil {
			return "", "", err
		}
		return candidate, url, nil
	}
	return "", "", ErrExists
}

// withSuffix inserts _n before the extension of name; n == 0 leaves it
// unchanged.
func withSuffix(name string, n int) string {
	if n == 0 {
		return name
	}
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + "_" + strconv.Itoa(n) + ext
}

// New returns the store selected by cfg.Backend.
func New(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "local":
		return NewLocalStore(cfg.Dir)
	case "s3":
		return NewS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown upload backend %q", cfg.Backend)
	}
}

// ReviewImageName builds the stored name of a review image:
// {userID}_{stationID}_{unixSeconds}{.ext}.  The extension is taken from
// the client's file name, lower-cased, and dropped unless it is short
// and alphanumeric.
func ReviewImageName(userID, stationID uint64, at time.Time, filename string) string {
	name := strconv.FormatUint(userID, 10) + "_" + strconv.FormatUint(stationID, 10) + "_" + strconv.FormatInt(at.Unix(), 10)
	return name + cleanExt(filename)
}

func cleanExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if len(ext) < 2 || len(ext) > 6 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}

// validName rejects anything that could escape the upload directory or
// bucket prefix.
func validName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid upload name %q", name)
	}
	return nil
}
