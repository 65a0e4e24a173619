package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"invoice-qa-review/internal/domain"
	"invoice-qa-review/internal/domain/model"
	"invoice-qa-review/internal/infra/logging"
	"invoice-qa-review/internal/usecase"
)

// ReviewFacade turns review use case results into views every frontend can draw.
// It never returns an error: failures become ViewError or ViewWarning views.
type ReviewFacade struct {
	ReviewUC usecase.ReviewUseCase
	log      *zerolog.Logger
}

func NewReviewFacade(reviewUC usecase.ReviewUseCase, logger *zerolog.Logger) *ReviewFacade {
	if logger == nil {
		logger = logging.Nop()
	}
	return &ReviewFacade{ReviewUC: reviewUC, log: logger}
}

// HandleReview runs one submission for the raw user input.
func (f *ReviewFacade) HandleReview(ctx context.Context, input string, mode model.ResolveMode) model.ReviewView {
	identifier := strings.TrimSpace(input)
	view := model.ReviewView{Identifier: identifier, Mode: mode}

	if identifier == "" {
		view.Status = model.ViewWarning
		view.ErrorKind = domain.KindValidation
		view.Error = fmt.Sprintf("Please enter a valid %s.", mode.Label())
		return view
	}
	if f.ReviewUC == nil {
		view.Status = model.ViewError
		view.ErrorKind = domain.KindInternal
		view.Error = "review service not available"
		return view
	}

	out, err := f.ReviewUC.Review(ctx, identifier, mode)
	if err != nil {
		kind := domain.Classify(err)
		view.ErrorKind = kind
		view.Error = errorMessage(kind, err)
		if kind == domain.KindValidation {
			view.Status = model.ViewWarning
		} else {
			view.Status = model.ViewError
		}
		logging.With(ctx, f.log).Debug().Err(err).Str("kind", string(kind)).Msg("review view: error")
		return view
	}

	view.ReviewID = out.ID
	view.JobID = out.JobID
	if !out.Decoded() {
		view.Status = model.ViewDecodeError
		view.ErrorKind = domain.KindDecode
		view.Raw = out.Raw
		view.Error = "Error parsing AI response. Here's the raw output:"
		var de *model.DecodeError
		if errors.As(out.DecodeErr, &de) && de.Reason != "" {
			view.Error = fmt.Sprintf("Error parsing AI response (%s). Here's the raw output:", de.Reason)
		}
		return view
	}

	view.Status = model.ViewOK
	view.Corrected = out.Result.Corrected
	view.Alerts = out.Result.Alerts
	if view.Alerts == nil {
		view.Alerts = []string{}
	}
	view.Suggestions = out.Result.Suggestions
	if strings.TrimSpace(view.Suggestions) == "" {
		view.Suggestions = model.NoSuggestions
	}
	return view
}

// HandlePreview returns the prompt that HandleReview would submit, as text.
func (f *ReviewFacade) HandlePreview(ctx context.Context, input string, mode model.ResolveMode) (string, error) {
	if f.ReviewUC == nil {
		return "", fmt.Errorf("review service not available")
	}
	p, err := f.ReviewUC.Preview(ctx, input, mode)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Job ID: %s\n", p.JobID)
	if p.PromptTokens > 0 {
		fmt.Fprintf(&sb, "Prompt tokens: %d\n", p.PromptTokens)
	}
	sb.WriteString("\n")
	sb.WriteString(p.Prompt)
	return sb.String(), nil
}

func errorMessage(kind domain.ErrorKind, err error) string {
	var (
		fe *domain.FetchError
		te *domain.TransportError
		ce *domain.CompletionError
	)
	switch kind {
	case domain.KindValidation:
		return err.Error()
	case domain.KindFetch:
		if errors.As(err, &fe) {
			return fmt.Sprintf("Could not fetch %s with ID %s. Status code: %d", fe.Resource, fe.ID, fe.StatusCode)
		}
	case domain.KindReference:
		return "Job ID not found in invoice response."
	case domain.KindTransport:
		if errors.As(err, &te) && te.Err != nil {
			return "Error contacting ServiceTrade API: " + te.Err.Error()
		}
	case domain.KindCompletion:
		if errors.As(err, &ce) {
			return fmt.Sprintf("Completion service error (%s): %v", ce.Kind, ce.Err)
		}
	case domain.KindCanceled:
		return "Review canceled before it finished."
	}
	return err.Error()
}

// FormatText renders a view as plain text for chat and terminal output.
func FormatText(v model.ReviewView) string {
	var sb strings.Builder
	switch v.Status {
	case model.ViewWarning:
		sb.WriteString("⚠️ " + v.Error)
	case model.ViewError:
		sb.WriteString("❌ " + v.Error)
	case model.ViewDecodeError:
		sb.WriteString("❌ " + v.Error + "\n\n")
		sb.WriteString(v.Raw)
	case model.ViewOK:
		sb.WriteString("✅ Analysis Complete")
		if v.JobID != "" {
			fmt.Fprintf(&sb, " (job %s)", v.JobID)
		}
		sb.WriteString("\n\nCorrected Invoice Text\n")
		sb.WriteString(v.Corrected)
		sb.WriteString("\n\nAlerts\n")
		if len(v.Alerts) == 0 {
			sb.WriteString("(none)")
		}
		for i, a := range v.Alerts {
			if i > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString("- " + a)
		}
		sb.WriteString("\n\nSuggestions\n")
		sb.WriteString(v.Suggestions)
	default:
		sb.WriteString(v.Error)
	}
	return sb.String()
}
