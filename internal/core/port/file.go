package port

import "context"

// AssetStore keeps the images attached to silly commands.
type AssetStore interface {
	// Download fetches an uploaded attachment.
	Download(ctx context.Context, url string) ([]byte, error)
	// Save stores data under a fresh name and returns the path to persist.
	Save(data []byte, extension string) (string, error)
	Read(path string) ([]byte, error)
}
