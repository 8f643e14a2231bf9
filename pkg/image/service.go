// Package image stores uploaded recipe pictures on the recipe aggregate.
package image

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"cookbook/pkg/domain"
)

// ErrImageTooLarge is returned when an upload exceeds the configured limit.
var ErrImageTooLarge = errors.New("image is too large")

// ErrEmptyImage is returned when the upload carries no bytes.
var ErrEmptyImage = errors.New("image is empty")

// DefaultMaxBytes bounds uploads when no explicit limit is configured.
const DefaultMaxBytes int64 = 10 << 20

// Service turns uploads into recipe images. Writes go through the shared
// mutation queue like every other change to the aggregate.
type Service struct {
	recipes  domain.RecipeRepository
	queue    domain.Serializer
	maxBytes int64
	logger   *zap.Logger
}

// NewService falls back to DefaultMaxBytes for a non-positive limit and to a
// no-op logger when none is given.
func NewService(recipes domain.RecipeRepository, queue domain.Serializer, maxBytes int64, logger *zap.Logger) *Service {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{recipes: recipes, queue: queue, maxBytes: maxBytes, logger: logger}
}

// MaxBytes is the upload limit the HTTP layer enforces before handing the body over.
func (s *Service) MaxBytes() int64 { return s.maxBytes }

// SaveImageFile replaces the recipe image with the uploaded bytes.
func (s *Service) SaveImageFile(ctx context.Context, recipeID int64, file io.Reader) error {
	data, err := io.ReadAll(io.LimitReader(file, s.maxBytes+1))
	if err != nil {
		s.logger.Error("reading uploaded image failed", zap.Int64("recipe_id", recipeID), zap.Error(err))
		return fmt.Errorf("read image: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		s.logger.Warn("uploaded image rejected", zap.Int64("recipe_id", recipeID), zap.Int64("limit_bytes", s.maxBytes))
		return ErrImageTooLarge
	}
	if len(data) == 0 {
		return ErrEmptyImage
	}

	err = s.queue.Do(ctx, func(ctx context.Context) error {
		r, err := s.recipes.FindByID(ctx, recipeID)
		if err != nil {
			return err
		}
		r.Image = data
		_, err = s.recipes.Save(ctx, r)
		return err
	})
	if err != nil {
		s.logger.Error("saving image failed", zap.Int64("recipe_id", recipeID), zap.Error(err))
		return err
	}
	s.logger.Info("recipe image stored", zap.Int64("recipe_id", recipeID), zap.Int("bytes", len(data)))
	return nil
}
