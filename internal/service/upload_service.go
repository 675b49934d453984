package service

import (
	"bytes"
	"context"

	apperrors "github.com/aditya/go-gigs/internal/errors"
	"github.com/aditya/go-gigs/internal/storage"
	"github.com/aditya/go-gigs/pkg/utils"
	"go.uber.org/zap"
)

type UploadService interface {
	UploadPhoto(ctx context.Context, data []byte) (string, error)
}

type uploadService struct {
	store    storage.Storage
	maxBytes int64
	logger   *zap.Logger
}

func NewUploadService(store storage.Storage, maxBytes int64, logger *zap.Logger) UploadService {
	return &uploadService{store: store, maxBytes: maxBytes, logger: logger}
}

// UploadPhoto stores an image under a random name and returns its URL.
func (s *uploadService) UploadPhoto(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", apperrors.Validation("no file uploaded")
	}
	if int64(len(data)) > s.maxBytes {
		return "", apperrors.Validation("file too large")
	}

	contentType, ext, err := storage.DetectImage(data)
	if err != nil {
		return "", apperrors.Validation(err.Error())
	}

	name := utils.GenerateID() + ext
	if err := s.store.Save(ctx, name, bytes.NewReader(data), contentType); err != nil {
		s.logger.Error("failed to store upload", zap.String("name", name), zap.Error(err))
		return "", apperrors.ExternalService("file storage", err)
	}
	return s.store.URL(name), nil
}
