package storage

import (
	"context"
	"errors"
	"io"

	"github.com/gabriel-vasile/mimetype"
)

// Storage persists uploaded files and reports their public URL.
type Storage interface {
	Save(ctx context.Context, name string, reader io.Reader, contentType string) error
	URL(name string) string
}

type Config struct {
	BasePath string
	BaseURL  string
	Bucket   string
	Region   string
	Endpoint string
}

var ErrUnsupportedType = errors.New("only jpeg, png, gif and webp images are allowed")

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// DetectImage sniffs the content type of data and returns it along with the
// canonical extension. Anything but the allowed image types is rejected.
func DetectImage(data []byte) (contentType, ext string, err error) {
	mt := mimetype.Detect(data)
	for _, allowed := range allowedImageTypes {
		if mt.Is(allowed) {
			return allowed, mt.Extension(), nil
		}
	}
	return "", "", ErrUnsupportedType
}
