package media

import (
	"context"
	"io"
)

// Uploader stores a file with an external media host and returns a
// durable URL.
type Uploader interface {
	Upload(ctx context.Context, file io.Reader, folder string) (string, error)
}
