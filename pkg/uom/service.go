// Package uom serves unit-of-measure reference data to the ingredient form.
package uom

import (
	"context"
	"sort"

	"cookbook/pkg/command"
	"cookbook/pkg/domain"
)

// Service lists units of measure.
type Service struct {
	repo domain.UnitOfMeasureRepository
}

// NewService returns a Service reading from repo.
func NewService(repo domain.UnitOfMeasureRepository) *Service {
	return &Service{repo: repo}
}

// ListAllUoms returns every unit sorted by description for the select box.
func (s *Service) ListAllUoms(ctx context.Context) ([]command.UnitOfMeasureCommand, error) {
	units, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]command.UnitOfMeasureCommand, 0, len(units))
	for i := range units {
		out = append(out, command.FromUnitOfMeasure(&units[i]))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Description < out[j].Description })
	return out, nil
}
