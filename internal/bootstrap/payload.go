package bootstrap

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// EmptyPayload is used for a payload whose file is not configured
const EmptyPayload = "[]"

type Payloads struct {
	Classrooms string
	Images     string
}

// LoadPayloads reads both payload files from fs concurrently.
// An empty path yields EmptyPayload; a configured path that cannot be read is an error.
func LoadPayloads(ctx context.Context, fs afero.Fs, classroomsFile, imagesFile string) (*Payloads, error) {
	var payloads Payloads

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := readPayload(fs, classroomsFile)
		if err != nil {
			return fmt.Errorf("failed to read classroom payload: %w", err)
		}
		payloads.Classrooms = p
		return nil
	})
	g.Go(func() error {
		p, err := readPayload(fs, imagesFile)
		if err != nil {
			return fmt.Errorf("failed to read image payload: %w", err)
		}
		payloads.Images = p
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &payloads, nil
}

func readPayload(fs afero.Fs, path string) (string, error) {
	if path == "" {
		return EmptyPayload, nil
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return "", err
	}

	log.Debug().Str("file", path).Int("bytes", len(data)).Msg("Read payload file")
	return string(data), nil
}
