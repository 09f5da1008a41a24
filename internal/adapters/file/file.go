package file

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog/log"
)

const downloadTimeout = 30 * time.Second

// Assets stores command images in a local directory.
type Assets struct {
	dir    string
	client *http.Client
}

// NewAssets creates the asset directory if needed.
func NewAssets(dir string) (*Assets, error) {
	if dir == "" {
		dir = "assets"
	}

	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return nil, fmt.Errorf("error creating asset directory %w", err)
	}

	return &Assets{dir: dir, client: &http.Client{Timeout: downloadTimeout}}, nil
}

// Download returns the byte content of a file on a provided URL.
func (a *Assets) Download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		err = fmt.Errorf("error creating request %w", err)
		log.Error().Err(err).Str("url", url).Send()
		return nil, err
	}

	res, err := a.client.Do(req)
	if err != nil {
		err = fmt.Errorf("error executing request %w", err)
		log.Error().Err(err).Str("url", url).Send()
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		err = fmt.Errorf("unexpected status code on download: %d", res.StatusCode)
		log.Error().Err(err).Str("url", url).Send()
		return nil, err
	}

	buf, err := io.ReadAll(res.Body)
	if err != nil {
		err = fmt.Errorf("error reading response %w", err)
		log.Error().Err(err).Str("url", url).Send()
		return nil, err
	}

	return buf, nil
}

// Save writes data to a new uuid-named file in the asset directory and returns its path.
func (a *Assets) Save(data []byte, extension string) (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}

	extension = strings.TrimPrefix(extension, ".")
	log.Debug().Int("bytes", len(data)).Str("extension", extension).Msg("storing asset")

	path := filepath.Join(a.dir, fmt.Sprintf("%s.%s", id.String(), extension))

	err = os.WriteFile(path, data, 0o644)
	if err != nil {
		err = fmt.Errorf("error writing asset %w", err)
		log.Error().Err(err).Send()
		return "", err
	}

	log.Debug().Str("path", path).Msg("stored asset")

	return path, nil
}

// Read retrieves a stored asset by the path returned from Save.
func (a *Assets) Read(path string) ([]byte, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		err = fmt.Errorf("error reading asset %w", err)
		log.Error().Err(err).Send()
		return nil, err
	}

	return buf, nil
}
