package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dfryer1193/campusnav/navigation/domain"
	"github.com/rs/zerolog/log"
	"github.com/sethvargo/go-retry"
	"github.com/spf13/afero"
)

// Initializer loads navigation data from a pair of payloads
type Initializer interface {
	Initialize(ctx context.Context, classroomPayload, imagePayload string) error
}

// InitializeWithRetry runs initializer.Initialize, retrying with a Fibonacci backoff
// starting at base while the store is unreachable. Any other failure is returned at once.
func InitializeWithRetry(ctx context.Context, initializer Initializer, payloads *Payloads, maxRetries uint64, base time.Duration) error {
	return withRetry(ctx, "initialize", maxRetries, base, func(ctx context.Context) error {
		return initializer.Initialize(ctx, payloads.Classrooms, payloads.Images)
	})
}

// ConnectWithRetry runs connect until it succeeds, treating every failure as
// the store being unreachable.
func ConnectWithRetry(ctx context.Context, connect func(ctx context.Context) error, maxRetries uint64, base time.Duration) error {
	return withRetry(ctx, "connect", maxRetries, base, func(ctx context.Context) error {
		if err := connect(ctx); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrConnectivity, err)
		}
		return nil
	})
}

// withRetry retries fn only while it fails with domain.ErrConnectivity
func withRetry(ctx context.Context, op string, maxRetries uint64, base time.Duration, fn func(ctx context.Context) error) error {
	attempt := 0
	b := retry.WithMaxRetries(maxRetries, retry.NewFibonacci(base))

	return retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if errors.Is(err, domain.ErrConnectivity) {
			log.Warn().Err(err).Str("op", op).Int("attempt", attempt).Msg("Navigation store unreachable, retrying")
			return retry.RetryableError(err)
		}
		return err
	})
}

// Reloader reads payload files and hands them to an Initializer
type Reloader struct {
	fs             afero.Fs
	initializer    Initializer
	classroomsFile string
	imagesFile     string
}

func NewReloader(fs afero.Fs, initializer Initializer, classroomsFile, imagesFile string) *Reloader {
	return &Reloader{
		fs:             fs,
		initializer:    initializer,
		classroomsFile: classroomsFile,
		imagesFile:     imagesFile,
	}
}

// Files returns the configured payload paths, skipping unset ones
func (r *Reloader) Files() []string {
	var files []string
	for _, f := range []string{r.classroomsFile, r.imagesFile} {
		if f != "" {
			files = append(files, f)
		}
	}
	return files
}

// Reload reads both payloads again and reinitializes. A failure leaves the
// previously loaded data in place.
func (r *Reloader) Reload(ctx context.Context) error {
	payloads, err := LoadPayloads(ctx, r.fs, r.classroomsFile, r.imagesFile)
	if err != nil {
		return err
	}
	return r.initializer.Initialize(ctx, payloads.Classrooms, payloads.Images)
}
