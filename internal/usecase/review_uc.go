package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"invoice-qa-review/internal/domain"
	"invoice-qa-review/internal/domain/model"
	"invoice-qa-review/internal/domain/ports/adapter"
	"invoice-qa-review/internal/infra/logging"
	"invoice-qa-review/internal/infra/metrics"
)

// Compile-time check
var _ ReviewUseCase = (*reviewUC)(nil)

type ReviewUseCase interface {
	// Review runs one submission: resolve, build, invoke, decode. A reply that
	// cannot be decoded is not an error: the outcome carries Raw and DecodeErr.
	Review(ctx context.Context, identifier string, mode model.ResolveMode) (*model.ReviewOutcome, error)
	// Preview resolves and builds the prompt without calling the completion service.
	Preview(ctx context.Context, identifier string, mode model.ResolveMode) (*PromptPreview, error)
}

// PromptPreview is the prompt that Review would submit.
type PromptPreview struct {
	JobID        string
	Prompt       string
	PromptTokens int // 0 when the provider cannot count
}

// ReviewOptions configures the completion call.
type ReviewOptions struct {
	Model    string
	Provider string // metrics/log label only
}

type reviewUC struct {
	resolver RecordResolver
	ai       adapter.AIServiceAdapter
	opts     ReviewOptions
	log      *zerolog.Logger

	newID func() string
	now   func() time.Time
}

func NewReviewUseCase(resolver RecordResolver, ai adapter.AIServiceAdapter, opts ReviewOptions, logger *zerolog.Logger) *reviewUC {
	if logger == nil {
		logger = logging.Nop()
	}
	return &reviewUC{
		resolver: resolver,
		ai:       ai,
		opts:     opts,
		log:      logger,
		newID:    func() string { return ulid.Make().String() },
		now:      time.Now,
	}
}

func (u *reviewUC) Review(ctx context.Context, identifier string, mode model.ResolveMode) (out *model.ReviewOutcome, err error) {
	identifier = strings.TrimSpace(identifier)
	id := u.newID()
	ctx = logging.WithReviewID(ctx, id)
	l := logging.With(ctx, u.log).With().Str("mode", mode.String()).Str("identifier", identifier).Logger()
	defer logging.TraceDuration(&l, "ReviewUC.Review")()

	start := u.now()
	defer func() {
		outcome := string(domain.Classify(err))
		switch {
		case err != nil:
		case out.DecodeErr != nil:
			outcome = string(domain.KindDecode)
		default:
			outcome = "ok"
		}
		metrics.ObserveReview(mode.String(), outcome, u.now().Sub(start).Milliseconds())
		if err != nil {
			l.Warn().Err(err).Str("outcome", outcome).Msg("review failed")
		}
	}()

	if err := validate(identifier, mode); err != nil {
		return nil, err
	}

	res, err := u.resolver.Resolve(ctx, identifier, mode)
	if err != nil {
		return nil, err
	}
	req, err := NewReviewRequest(res.Record)
	if err != nil {
		return nil, err
	}
	l.Info().Str("job_id", res.JobID).Int("prompt_bytes", len(req.Prompt)).Msg("submitting review")

	msgs := []adapter.Message{{Role: "user", Content: req.Prompt}}
	reply, usage, err := u.ai.ChatWithUsage(ctx, u.opts.Model, msgs)
	if err != nil {
		return nil, u.completionError(err)
	}

	out = &model.ReviewOutcome{
		ID:         id,
		Identifier: identifier,
		Mode:       mode,
		JobID:      res.JobID,
		Model:      u.opts.Model,
		Raw:        reply,
		Usage: model.Usage{
			PromptTokens:     usage.PromptTokens,
			CompletionTokens: usage.CompletionTokens,
			TotalTokens:      usage.TotalTokens,
		},
		StartedAt: start,
	}

	result, derr := model.DecodeReviewResult(reply)
	if derr != nil {
		out.DecodeErr = derr
		l.Warn().Err(derr).Int("reply_bytes", len(reply)).Msg("completion reply could not be decoded")
	} else {
		out.Result = result
		l.Info().Int("alerts", len(result.Alerts)).Int("total_tokens", usage.TotalTokens).Msg("review complete")
	}
	out.Duration = u.now().Sub(start)
	return out, nil
}

func (u *reviewUC) Preview(ctx context.Context, identifier string, mode model.ResolveMode) (*PromptPreview, error) {
	identifier = strings.TrimSpace(identifier)
	if err := validate(identifier, mode); err != nil {
		return nil, err
	}
	res, err := u.resolver.Resolve(ctx, identifier, mode)
	if err != nil {
		return nil, err
	}
	req, err := NewReviewRequest(res.Record)
	if err != nil {
		return nil, err
	}
	p := &PromptPreview{JobID: res.JobID, Prompt: req.Prompt}
	n, err := u.ai.CountTokens(ctx, u.opts.Model, []adapter.Message{{Role: "user", Content: req.Prompt}})
	if err != nil {
		logging.With(ctx, u.log).Debug().Err(err).Msg("token count unavailable")
	} else {
		p.PromptTokens = n
	}
	return p, nil
}

func validate(identifier string, mode model.ResolveMode) error {
	if identifier == "" {
		return domain.ErrEmptyIdentifier
	}
	if _, err := model.ParseResolveMode(mode.String()); err != nil {
		return err
	}
	return nil
}

// completionError guarantees every completion failure is a *domain.CompletionError.
func (u *reviewUC) completionError(err error) error {
	var ce *domain.CompletionError
	if errors.As(err, &ce) {
		return err
	}
	kind := domain.CompletionUnknown
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		kind = domain.CompletionUnavailable
	}
	return &domain.CompletionError{Provider: u.opts.Provider, Kind: kind, Err: fmt.Errorf("chat: %w", err)}
}
