package resolver

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/MrSnakeDoc/scanvault/internal/domain"
	"github.com/MrSnakeDoc/scanvault/internal/logger"
	"github.com/MrSnakeDoc/scanvault/internal/recognition"
)

// DefaultMinImageLength rejects base64 payloads too short to be an image.
const DefaultMinImageLength = 100

// Price sources requested per strategy.
var (
	sportPriceSources   = []string{"tcgplayer", "ebay"}
	tcgPriceSources     = []string{"tcgplayer", "cardmarket", "ebay"}
	comicsPriceSources  = []string{"ebay"}
	analyzePriceSources = []string{"tcgplayer", "ebay", "cardmarket"}
)

// Resolver turns one image into at most one Card by trying recognition
// strategies in order. It holds no per-attempt state and is safe for
// concurrent use.
type Resolver struct {
	caller         recognition.Caller
	logger         logger.Logger
	tuning         atomic.Pointer[Tuning]
	minImageLength int
}

// Option configures a Resolver.
type Option func(*Resolver)

func WithLogger(log logger.Logger) Option {
	return func(r *Resolver) {
		if log != nil {
			r.logger = log
		}
	}
}

func WithTuning(t Tuning) Option {
	return func(r *Resolver) { r.SetTuning(t) }
}

func WithMinImageLength(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.minImageLength = n
		}
	}
}

// New creates a Resolver over caller.
func New(caller recognition.Caller, opts ...Option) *Resolver {
	r := &Resolver{
		caller:         caller,
		logger:         logger.Nop(),
		minImageLength: DefaultMinImageLength,
	}
	r.SetTuning(DefaultTuning())
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetTuning swaps the tuning used by attempts started afterwards.
func (r *Resolver) SetTuning(t Tuning) {
	t = t.withDefaults()
	r.tuning.Store(&t)
}

// Tuning returns the current tuning.
func (r *Resolver) Tuning() Tuning {
	return *r.tuning.Load()
}

// Identify runs the strategy sequence for one image.
//
// It returns domain.ErrInvalidInput before any call when the image is empty
// or too short, and domain.ErrConfiguration as soon as a step reports one.
// Every other step failure is absorbed. No identification is reported as an
// Outcome with a nil Card and a nil error.
func (r *Resolver) Identify(ctx context.Context, img recognition.Image) (*Outcome, error) {
	if err := img.Validate(r.minImageLength); err != nil {
		return nil, err
	}
	img.Side = ""

	tuning := r.Tuning()
	a := &attempt{
		image:  img,
		tuning: tuning,
		picker: domain.NewPicker(tuning.Weights),
	}

	start := time.Now()
	for step := StepOCR; step != StepDone; step = next(step, a) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := r.run(ctx, step, a); err != nil {
			r.logger.Error("identification aborted",
				logger.String("step", step.String()),
				logger.Error(err))
			return nil, err
		}
	}

	outcome := &Outcome{Card: a.card, Strategy: a.strategy, Steps: a.steps}
	if outcome.Identified() {
		r.logger.Info("card identified",
			logger.String("strategy", a.strategy.String()),
			logger.String("name", a.card.Name),
			logger.Int("steps", len(a.steps)),
			logger.Duration("elapsed", time.Since(start)))
	} else {
		r.logger.Info("no identification",
			logger.Int("steps", len(a.steps)),
			logger.Duration("elapsed", time.Since(start)))
	}
	return outcome, nil
}

// run executes one step. Only errors that must abort the attempt are returned.
func (r *Resolver) run(ctx context.Context, step Step, a *attempt) error {
	labels := a.tuning.CategoryLabels

	switch step {
	case StepOCR:
		rec, err := r.call(ctx, step, a, recognition.EndpointOCR, recognition.Options{})
		if rec != nil {
			a.ocr = rec
			a.keywords = recognition.Keywords(rec)
			r.logger.Debug("ocr keywords", logger.Strings("keywords", a.keywords))
		}
		return err

	case StepDetect:
		rec, err := r.call(ctx, step, a, recognition.EndpointDetect, recognition.Options{})
		if rec != nil {
			a.analyzeAll = recognition.CountObjects(rec, labels) > 1
		}
		return err

	case StepCategorize:
		rec, err := r.call(ctx, step, a, recognition.EndpointProcess, recognition.Options{})
		if rec != nil {
			a.category = recognition.Categorize(rec, labels)
			r.logger.Debug("categorized",
				logger.String("kind", a.category.Kind),
				logger.String("subcategory", a.category.Subcategory))
		}
		return err

	case StepCategory:
		endpoint, opts := r.categoryStrategy(a)
		return r.identify(ctx, step, a, endpoint, opts)

	case StepAnalyze:
		return r.identify(ctx, step, a, recognition.EndpointAnalyze, recognition.Options{
			Pricing:      true,
			PriceSources: analyzePriceSources,
			AnalyzeAll:   a.analyzeAll,
		})

	case StepSlab:
		return r.identify(ctx, step, a, recognition.EndpointSlab, recognition.Options{SlabGrade: true})

	case StepOCRFallback:
		trace := StepTrace{Step: step.String(), Endpoint: recognition.EndpointOCR}
		match, tags := recognition.FirstOCR(a.ocr, labels)
		if match != nil {
			trace.Candidates = 1
			r.accept(a, domain.Assemble(match, tags), recognition.EndpointOCR)
		}
		a.steps = append(a.steps, trace)
		return nil
	}
	return nil
}

// categoryStrategy routes a categorized image to comics, TCG or sport
// identification. An unknown kind is treated as a card.
func (r *Resolver) categoryStrategy(a *attempt) (recognition.Endpoint, recognition.Options) {
	if a.category.Kind == recognition.KindComics {
		return recognition.EndpointComics, recognition.Options{
			Pricing:      true,
			PriceSources: comicsPriceSources,
			AnalyzeAll:   a.analyzeAll,
		}
	}

	opts := recognition.Options{
		Pricing:    true,
		SlabID:     true,
		SlabGrade:  true,
		AnalyzeAll: a.analyzeAll,
	}
	if a.tuning.IsTCG(a.category.Subcategory) {
		opts.PriceSources = tcgPriceSources
		return recognition.EndpointTCG, opts
	}
	opts.PriceSources = sportPriceSources
	return recognition.EndpointSport, opts
}

// identify calls an identification endpoint, then extracts, picks and assembles.
func (r *Resolver) identify(ctx context.Context, step Step, a *attempt, endpoint recognition.Endpoint, opts recognition.Options) error {
	rec, err := r.call(ctx, step, a, endpoint, opts)
	if err != nil || rec == nil {
		return err
	}

	ext := recognition.Extract(rec, a.tuning.CategoryLabels)
	a.steps[len(a.steps)-1].Candidates = len(ext.Candidates)
	if ext.Empty() {
		return nil
	}

	match := a.picker.Pick(ext.Candidates, scoringTags(ext.Tags, a.category), a.keywords)
	r.accept(a, domain.Assemble(match, ext.Tags), endpoint)
	return nil
}

// scoringTags falls back to the categorization subcategory when the
// identification response carries none.
func scoringTags(tags *domain.ClassificationTags, cat recognition.Category) *domain.ClassificationTags {
	if cat.Subcategory == "" || (tags != nil && tags.Subcategory != "") {
		return tags
	}
	merged := domain.ClassificationTags{Subcategory: cat.Subcategory}
	if tags != nil {
		merged.Grade = tags.Grade
		merged.GradeCompany = tags.GradeCompany
	}
	return &merged
}

func (r *Resolver) accept(a *attempt, card *domain.Card, endpoint recognition.Endpoint) {
	if card == nil {
		return
	}
	a.card = card
	a.strategy = endpoint
}

// call performs one remote call and records its trace. It returns a nil
// record for absorbed failures and an error only when the attempt must stop.
func (r *Resolver) call(ctx context.Context, step Step, a *attempt, endpoint recognition.Endpoint, opts recognition.Options) (*recognition.Record, error) {
	start := time.Now()
	resp, err := r.caller.Call(ctx, endpoint, []recognition.Image{a.image}, opts)
	trace := StepTrace{
		Step:     step.String(),
		Endpoint: endpoint,
		Called:   true,
		Duration: time.Since(start),
	}

	if err != nil {
		trace.Error = err.Error()
		a.steps = append(a.steps, trace)
		if isFatal(err) {
			return nil, err
		}
		r.logger.Warn("recognition step failed",
			logger.String("step", step.String()),
			logger.String("endpoint", endpoint.String()),
			logger.Error(err))
		return nil, nil
	}

	rec := resp.First()
	switch {
	case rec == nil:
		trace.Error = "no record in response"
	case !rec.OK():
		trace.Error = fmt.Sprintf("record status %d: %s", rec.Status.Code, rec.Status.Text)
		rec = nil
	}
	a.steps = append(a.steps, trace)

	if trace.Error != "" {
		r.logger.Warn("recognition step returned no usable record",
			logger.String("step", step.String()),
			logger.String("endpoint", endpoint.String()),
			logger.String("reason", trace.Error))
		return nil, nil
	}

	r.logger.Debug("recognition step done",
		logger.String("step", step.String()),
		logger.String("endpoint", endpoint.String()),
		logger.Duration("latency", trace.Duration))
	return rec, nil
}

// isFatal reports errors that no later step can recover from.
func isFatal(err error) bool {
	return errors.Is(err, domain.ErrConfiguration) ||
		errors.Is(err, domain.ErrInvalidInput) ||
		errors.Is(err, context.Canceled)
}
