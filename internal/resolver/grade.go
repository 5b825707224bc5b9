package resolver

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/scanvault/internal/domain"
	"github.com/MrSnakeDoc/scanvault/internal/logger"
	"github.com/MrSnakeDoc/scanvault/internal/recognition"
)

// ErrNoResult is returned by a grading call whose response holds nothing usable.
var ErrNoResult = errors.New("no usable grading result")

// Grade issues the grade, condition and centering calls concurrently and
// waits for all three. A failed call leaves its section nil and records the
// reason; it never cancels the others. An error is returned only for invalid
// input, or when all three calls failed on configuration.
func (r *Resolver) Grade(ctx context.Context, front recognition.Image, back *recognition.Image, mode domain.ConditionMode) (*domain.GradingReport, error) {
	if err := r.validateGrading(front, back, &mode); err != nil {
		return nil, err
	}

	var (
		g                                 errgroup.Group
		grade                             *domain.GradeResult
		condition                         *domain.ConditionResult
		centering                         *domain.CenteringResult
		gradeErr, conditionErr, centerErr error
	)

	// Goroutines never return an error: each outcome is kept separately so
	// one failure does not affect the others.
	g.Go(func() error {
		grade, gradeErr = r.gradeCard(ctx, front, back)
		return nil
	})
	g.Go(func() error {
		condition, conditionErr = r.conditionCard(ctx, front, mode)
		return nil
	})
	g.Go(func() error {
		centering, centerErr = r.centeringCard(ctx, front)
		return nil
	})
	_ = g.Wait()

	report := &domain.GradingReport{Grade: grade, Condition: condition, Centering: centering}
	for section, err := range map[string]error{
		domain.SectionGrade:     gradeErr,
		domain.SectionCondition: conditionErr,
		domain.SectionCentering: centerErr,
	} {
		if err == nil {
			continue
		}
		if report.Errors == nil {
			report.Errors = make(map[string]string, 3)
		}
		report.Errors[section] = err.Error()
		r.logger.Warn("grading call failed", logger.String("section", section), logger.Error(err))
	}

	if errors.Is(gradeErr, domain.ErrConfiguration) &&
		errors.Is(conditionErr, domain.ErrConfiguration) &&
		errors.Is(centerErr, domain.ErrConfiguration) {
		return nil, gradeErr
	}
	return report, nil
}

// GradeCard scores corners, edges, surface and centering. back is optional.
func (r *Resolver) GradeCard(ctx context.Context, front recognition.Image, back *recognition.Image) (*domain.GradeResult, error) {
	if err := r.validateGrading(front, back, nil); err != nil {
		return nil, err
	}
	return r.gradeCard(ctx, front, back)
}

// ConditionCard labels the card condition on the scale of mode (ebay when empty).
func (r *Resolver) ConditionCard(ctx context.Context, front recognition.Image, mode domain.ConditionMode) (*domain.ConditionResult, error) {
	if err := r.validateGrading(front, nil, &mode); err != nil {
		return nil, err
	}
	return r.conditionCard(ctx, front, mode)
}

// CenteringCard measures the centering of the front image.
func (r *Resolver) CenteringCard(ctx context.Context, front recognition.Image) (*domain.CenteringResult, error) {
	if err := r.validateGrading(front, nil, nil); err != nil {
		return nil, err
	}
	return r.centeringCard(ctx, front)
}

func (r *Resolver) validateGrading(front recognition.Image, back *recognition.Image, mode *domain.ConditionMode) error {
	if err := front.Validate(r.minImageLength); err != nil {
		return fmt.Errorf("front image: %w", err)
	}
	if back != nil && !back.Empty() {
		if err := back.Validate(r.minImageLength); err != nil {
			return fmt.Errorf("back image: %w", err)
		}
	}
	if mode != nil {
		if *mode == "" {
			*mode = domain.ConditionEbay
		}
		if !mode.Valid() {
			return fmt.Errorf("%w: unknown condition mode %q", domain.ErrInvalidInput, *mode)
		}
	}
	return nil
}

func (r *Resolver) gradeCard(ctx context.Context, front recognition.Image, back *recognition.Image) (*domain.GradeResult, error) {
	front.Side = "front"
	images := []recognition.Image{front}
	if back != nil && !back.Empty() {
		b := *back
		b.Side = "back"
		images = append(images, b)
	}
	resp, err := r.caller.Call(ctx, recognition.EndpointGrade, images, recognition.Options{})
	if err != nil {
		return nil, err
	}
	res, ok := recognition.ParseGrade(resp)
	if !ok {
		return nil, ErrNoResult
	}
	return res, nil
}

func (r *Resolver) conditionCard(ctx context.Context, front recognition.Image, mode domain.ConditionMode) (*domain.ConditionResult, error) {
	front.Side = ""
	resp, err := r.caller.Call(ctx, recognition.EndpointCondition, []recognition.Image{front}, recognition.Options{Mode: string(mode)})
	if err != nil {
		return nil, err
	}
	res, ok := recognition.ParseCondition(resp)
	if !ok {
		return nil, ErrNoResult
	}
	return res, nil
}

func (r *Resolver) centeringCard(ctx context.Context, front recognition.Image) (*domain.CenteringResult, error) {
	front.Side = ""
	resp, err := r.caller.Call(ctx, recognition.EndpointCentering, []recognition.Image{front}, recognition.Options{})
	if err != nil {
		return nil, err
	}
	res, ok := recognition.ParseCentering(resp)
	if !ok {
		return nil, ErrNoResult
	}
	return res, nil
}
