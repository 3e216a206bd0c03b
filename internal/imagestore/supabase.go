package imagestore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	storage "github.com/supabase-community/storage-go"

	"github.com/law-makers/shiptrack/internal/retry"
)

// DefaultBucket is the storage bucket for map images
const DefaultBucket = "ship-images"

const pngContentType = "image/png"

// SupabaseOptions configures a Supabase Storage client
type SupabaseOptions struct {
	// BaseURL is the project URL; the storage API lives under /storage/v1.
	BaseURL    string
	Bucket     string
	ServiceKey string
	Retry      *retry.Config
}

// Supabase uploads objects through storage-go
type Supabase struct {
	client *storage.Client
	bucket string
	retry  retry.Config

	// storage-go keeps per-call file options on the client's shared headers
	mu sync.Mutex
}

// NewSupabase creates a Supabase Storage client
func NewSupabase(opts SupabaseOptions) (*Supabase, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("storage base URL is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("storage base URL: %w", err)
	}
	if opts.ServiceKey == "" {
		return nil, fmt.Errorf("storage service key is required")
	}
	if opts.Bucket == "" {
		opts.Bucket = DefaultBucket
	}
	cfg := retry.DefaultConfig()
	if opts.Retry != nil {
		cfg = *opts.Retry
	}
	return &Supabase{
		client: storage.NewClient(base+"/storage/v1", opts.ServiceKey, map[string]string{"apikey": opts.ServiceKey}),
		bucket: opts.Bucket,
		retry:  cfg,
	}, nil
}

// PublicURL returns the public object URL for key
func (s *Supabase) PublicURL(key string) string {
	return s.client.GetPublicUrl(s.bucket, key).SignedURL
}

// Upload implements Uploader. Existing objects are overwritten.
func (s *Supabase) Upload(ctx context.Context, key string, png []byte) (string, error) {
	upsert := true
	contentType := pngContentType
	opts := storage.FileOptions{ContentType: &contentType, Upsert: &upsert}

	err := retry.Do(ctx, s.retry, "storage upload", func(ctx context.Context) error {
		return s.uploadOnce(ctx, key, png, opts)
	})
	if err != nil {
		return "", fmt.Errorf("upload %s to bucket %s: %w", key, s.bucket, err)
	}

	log.Debug().Str("bucket", s.bucket).Str("key", key).Int("bytes", len(png)).Msg("Image uploaded")
	return s.PublicURL(key), nil
}

// uploadOnce runs one UploadFile call. storage-go takes no context, so the
// call is abandoned (not aborted) when ctx ends first.
func (s *Supabase) uploadOnce(ctx context.Context, key string, png []byte, opts storage.FileOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		_, err := s.client.UploadFile(s.bucket, key, bytes.NewReader(png), opts)
		done <- classify(err)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// rejectedError is a storage error response without a usable status code.
// The server understood the request and refused it, so it is not retried.
type rejectedError struct {
	err *storage.StorageError
}

func (e rejectedError) Error() string   { return "storage rejected upload: " + e.err.Message }
func (e rejectedError) Unwrap() error   { return e.err }
func (e rejectedError) Temporary() bool { return false }

// classify maps storage-go errors onto the retry package's view. Transport
// errors and unreadable error bodies stay retryable.
func classify(err error) error {
	var se *storage.StorageError
	if err == nil || !errors.As(err, &se) {
		return err
	}
	switch {
	case se.Status > 0:
		return retry.NewHTTPError(se.Status, http.StatusText(se.Status), se.Message)
	case se.Message != "":
		return rejectedError{err: se}
	default:
		return fmt.Errorf("storage error response without a body")
	}
}
