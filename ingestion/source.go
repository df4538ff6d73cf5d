package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/poiesic/recall/core"
)

// DefaultMaxBlobSize caps a single blob read.
const DefaultMaxBlobSize = 256 << 20

// Blob is one staged input document.
type Blob struct {
	Name string
	Data []byte
}

// BlobSource yields the raw bytes of named blobs.
type BlobSource interface {
	// Fetch returns every blob selected by name, in lexical order.
	// Returns ErrBlobNotFound when nothing matches.
	Fetch(ctx context.Context, name string) ([]Blob, error)
}

// DirSource reads blobs from a directory. Names are slash-separated paths
// relative to Root and may be doublestar patterns.
type DirSource struct {
	Root    string
	MaxSize int64
	fsys    fs.FS
}

var _ BlobSource = (*DirSource)(nil)

// NewDirSource creates a source rooted at dir.
func NewDirSource(dir string) *DirSource {
	return &DirSource{Root: dir, MaxSize: DefaultMaxBlobSize, fsys: os.DirFS(dir)}
}

// Fetch reads the blob called name, or every file matching it when name is
// a pattern.
func (s *DirSource) Fetch(ctx context.Context, name string) ([]Blob, error) {
	if err := validateBlobName(name); err != nil {
		return nil, err
	}
	if !doublestar.ValidatePattern(name) {
		return nil, fmt.Errorf("%w: %w: %q", core.ErrInvalidArgument, ErrInvalidBlobName, name)
	}

	fsys := s.fsys
	if fsys == nil {
		fsys = os.DirFS(s.Root)
	}

	matches, err := doublestar.Glob(fsys, name, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrStoreUnavailable, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %w: %q in %s", core.ErrInvalidArgument, ErrBlobNotFound, name, s.Root)
	}
	sort.Strings(matches)

	blobs := make([]Blob, 0, len(matches))
	for _, match := range matches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := s.read(fsys, match)
		if err != nil {
			return nil, err
		}
		blobs = append(blobs, Blob{Name: match, Data: data})
	}
	return blobs, nil
}

func (s *DirSource) read(fsys fs.FS, name string) ([]byte, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrStoreUnavailable, err)
	}
	defer f.Close()
	return readLimited(f, name, s.MaxSize)
}

// HTTPSource fetches blobs with GET requests under BaseURL. It serves plain
// file servers and public object store containers alike. Patterns are not
// supported.
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
	MaxSize int64
	logger  *slog.Logger
}

var _ BlobSource = (*HTTPSource)(nil)

// NewHTTPSource creates a source for the container at baseURL.
func NewHTTPSource(baseURL string, client *http.Client) *HTTPSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSource{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		Client:  client,
		MaxSize: DefaultMaxBlobSize,
		logger:  slog.Default().With("component", "http-source"),
	}
}

// Fetch downloads the blob called name.
func (s *HTTPSource) Fetch(ctx context.Context, name string) ([]Blob, error) {
	if err := validateBlobName(name); err != nil {
		return nil, err
	}

	base, err := url.Parse(s.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrConfiguration, err)
	}
	u := base.JoinPath(name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrInvalidArgument, err)
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", core.ErrStoreUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %w: %s", core.ErrInvalidArgument, ErrBlobNotFound, u)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		if s.logger != nil {
			s.logger.Error("blob download failed", "url", u.String(), "status", resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: GET %s: %s", core.ErrStoreUnavailable, u, resp.Status)
	}

	data, err := readLimited(resp.Body, name, s.MaxSize)
	if err != nil {
		return nil, err
	}
	return []Blob{{Name: name, Data: data}}, nil
}

func validateBlobName(name string) error {
	if name == "" || strings.HasPrefix(name, "/") || strings.Contains(name, "\\") {
		return fmt.Errorf("%w: %w: %q", core.ErrInvalidArgument, ErrInvalidBlobName, name)
	}
	for _, part := range strings.Split(path.Clean(name), "/") {
		if part == ".." {
			return fmt.Errorf("%w: %w: %q", core.ErrInvalidArgument, ErrInvalidBlobName, name)
		}
	}
	return nil
}

func readLimited(r io.Reader, name string, limit int64) ([]byte, error) {
	if limit <= 0 {
		limit = DefaultMaxBlobSize
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", core.ErrStoreUnavailable, name, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %w: %s", core.ErrInvalidArgument, ErrBlobTooLarge, name)
	}
	return data, nil
}
