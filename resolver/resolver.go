package resolver

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/truemediaorg/mediaresolver/model"
	"github.com/truemediaorg/mediaresolver/platform"
	"github.com/truemediaorg/mediaresolver/provider"
)

const (
	DefaultDeadline = 2 * time.Minute

	// Time the recorder gets once the resolution is over, even if the caller has gone away
	recordTimeout = 5 * time.Second

	softSuccessWarning = "API responded but data structure may be unexpected"
	noUsableDataMsg    = "provider responded but returned no usable data"
)

// ExhaustionPolicy decides what happens when the last provider answers with data that does
// not validate.
type ExhaustionPolicy string

const (
	// Report the last payload as a success carrying a warning
	ExhaustionSoftSuccess ExhaustionPolicy = "soft_success"
	// Report a failure like any other exhausted resolution
	ExhaustionHardFailure ExhaustionPolicy = "hard_failure"
)

func ParseExhaustionPolicy(raw string) (ExhaustionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(ExhaustionSoftSuccess), "softsuccess":
		return ExhaustionSoftSuccess, nil
	case string(ExhaustionHardFailure), "hardfailure":
		return ExhaustionHardFailure, nil
	default:
		return "", fmt.Errorf("unidentified exhaustion policy: %q", raw)
	}
}

type URLCanonicalizer interface {
	Canonicalize(ctx context.Context, rawURL string) string
}

type ProviderSelector interface {
	Select(p model.Platform) []provider.Spec
	Platforms() []model.Platform
}

type ProviderExecutor interface {
	Execute(ctx context.Context, spec provider.Spec, req model.MediaRequest, budget time.Duration) provider.Attempt
}

type PayloadValidator interface {
	Valid(payload any) bool
}

type OutcomeRecorder interface {
	RecordOutcome(ctx context.Context, outcome model.Outcome) error
}

type Options struct {
	UnknownPlatformPolicy platform.UnknownPlatformPolicy
	ExhaustionPolicy      ExhaustionPolicy
	// Fixed time allowed for each provider call
	ProviderBudget time.Duration
	// Time allowed for the whole resolution, canonicalization included
	Deadline time.Duration
}

type Resolver struct {
	canonicalizer URLCanonicalizer
	selector      ProviderSelector
	executor      ProviderExecutor
	validator     PayloadValidator
	recorder      OutcomeRecorder
	options       Options
}

// NewResolver wires the resolution pipeline. recorder may be nil.
// The exhaustion policy has no default and must be set explicitly.
func NewResolver(
	canonicalizer URLCanonicalizer,
	selector ProviderSelector,
	executor ProviderExecutor,
	validator PayloadValidator,
	recorder OutcomeRecorder,
	opts Options,
) (*Resolver, error) {
	if canonicalizer == nil || selector == nil || executor == nil || validator == nil {
		return nil, errors.New("canonicalizer, selector, executor and validator are required")
	}
	switch opts.ExhaustionPolicy {
	case ExhaustionSoftSuccess, ExhaustionHardFailure:
	default:
		return nil, fmt.Errorf("exhaustion policy must be %s or %s, got %q", ExhaustionSoftSuccess, ExhaustionHardFailure, opts.ExhaustionPolicy)
	}
	switch opts.UnknownPlatformPolicy {
	case "":
		opts.UnknownPlatformPolicy = platform.UnknownPlatformAllowUniversal
	case platform.UnknownPlatformAllowUniversal, platform.UnknownPlatformReject:
	default:
		return nil, fmt.Errorf("unidentified unknown platform policy: %q", opts.UnknownPlatformPolicy)
	}
	if opts.ProviderBudget <= 0 {
		opts.ProviderBudget = provider.DefaultBudget
	}
	if opts.Deadline <= 0 {
		opts.Deadline = DefaultDeadline
	}
	return &Resolver{
		canonicalizer: canonicalizer,
		selector:      selector,
		executor:      executor,
		validator:     validator,
		recorder:      recorder,
		options:       opts,
	}, nil
}

/*
Resolve runs one resolution: canonicalize, classify, then try each eligible provider in
order until one returns a payload the validator accepts.

Providers are called one at a time and each at most once. The first validated payload ends
the loop. The caller's context and Options.Deadline bound the whole run; when either ends
the remaining providers are skipped.
*/
func (r *Resolver) Resolve(ctx context.Context, rawURL string) model.Outcome {
	start := time.Now()
	runCtx, cancel := context.WithTimeout(ctx, r.options.Deadline)
	defer cancel()

	outcome := r.resolve(runCtx, rawURL)
	observeOutcome(outcome, time.Since(start))

	if r.recorder != nil {
		recordCtx, cancelRecord := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
		defer cancelRecord()
		if err := r.recorder.RecordOutcome(recordCtx, outcome); err != nil {
			log.WithField("url", rawURL).Errorf("error recording resolution: %v", err)
		}
	}
	return outcome
}

func (r *Resolver) resolve(ctx context.Context, rawURL string) model.Outcome {
	resolvedURL := r.canonicalizer.Canonicalize(ctx, rawURL)
	req := model.MediaRequest{
		OriginalURL: rawURL,
		ResolvedURL: resolvedURL,
		Platform:    platform.Classify(resolvedURL, r.options.UnknownPlatformPolicy),
	}
	logger := log.WithField("url", rawURL).WithField("platform", req.Platform)
	if resolvedURL != rawURL {
		logger = logger.WithField("resolvedUrl", resolvedURL)
	}

	providers := r.selector.Select(req.Platform)
	if len(providers) == 0 {
		logger.Warn("no provider supports this platform")
		return r.unsupported(req)
	}

	attempts := make([]provider.Attempt, 0, len(providers))
	for i, spec := range providers {
		if err := ctx.Err(); err != nil {
			logger.WithField("tried", len(attempts)).Warnf("resolution stopped early: %v", err)
			return r.deadlineExceeded(req, attempts, len(providers), err)
		}

		logger.Infof("trying provider %d/%d: %s", i+1, len(providers), spec.Name)
		attempt := r.executor.Execute(ctx, spec, req, r.options.ProviderBudget)
		attempt.Provider = spec.Name

		if !attempt.Failed() {
			if r.validator.Valid(attempt.Payload) {
				observeAttempt(attempt)
				logger.WithField("provider", spec.Name).Info("provider returned media")
				return model.Outcome{
					Request: req,
					Success: &model.Success{
						Provider:    spec.Name,
						Payload:     attempt.Payload,
						ContentType: attempt.ContentType,
					},
				}
			}
			attempt.ErrorKind = model.ErrorKindInvalidResponse
			attempt.ErrorMessage = noUsableDataMsg
			observeAttempt(attempt)

			if i == len(providers)-1 && r.options.ExhaustionPolicy == ExhaustionSoftSuccess {
				logger.WithField("provider", spec.Name).Warn("last provider returned unexpected data, passing it along")
				return model.Outcome{
					Request: req,
					Success: &model.Success{
						Provider:    spec.Name,
						Payload:     attempt.Payload,
						ContentType: attempt.ContentType,
						Warning:     softSuccessWarning,
					},
				}
			}
		} else {
			observeAttempt(attempt)
		}

		logger.WithField("provider", spec.Name).WithField("kind", attempt.ErrorKind).WithField("status", attempt.HTTPStatus).Warnf("provider failed: %s", attempt.ErrorMessage)
		attempts = append(attempts, attempt)
	}

	// The deadline may have cut the last call short
	if err := ctx.Err(); err != nil {
		logger.WithField("tried", len(attempts)).Warnf("resolution stopped early: %v", err)
		return r.deadlineExceeded(req, attempts, len(providers), err)
	}

	logger.WithField("tried", len(attempts)).Error("all providers failed")
	return r.exhausted(req, attempts)
}

func (r *Resolver) unsupported(req model.MediaRequest) model.Outcome {
	supported := r.selector.Platforms()
	names := make([]string, len(supported))
	for i, p := range supported {
		names[i] = string(p)
	}
	return model.Outcome{
		Request: req,
		Failure: &model.Failure{
			Platform:           req.Platform,
			Reason:             model.FailureReasonUnsupportedPlatform,
			TestedProviders:    []string{},
			Message:            fmt.Sprintf("Unsupported platform. Supported platforms: %s", strings.Join(names, ", ")),
			Suggestions:        Suggestions(model.PlatformUnsupported),
			SupportedPlatforms: supported,
		},
	}
}

func (r *Resolver) exhausted(req model.MediaRequest, attempts []provider.Attempt) model.Outcome {
	last := attempts[len(attempts)-1]
	return model.Outcome{
		Request: req,
		Failure: &model.Failure{
			Platform:        req.Platform,
			Reason:          model.FailureReasonExhausted,
			TestedProviders: testedProviders(attempts),
			LastError:       last.Error(),
			Message: fmt.Sprintf(
				"All %d API endpoints failed. Most recent error: %s - %s. The video URL might be private, expired, or the APIs are temporarily down.",
				len(attempts), statusOrNetwork(last), last.ErrorMessage,
			),
			Suggestions: Suggestions(req.Platform),
		},
	}
}

func (r *Resolver) deadlineExceeded(req model.MediaRequest, attempts []provider.Attempt, selected int, cause error) model.Outcome {
	failure := &model.Failure{
		Platform:        req.Platform,
		Reason:          model.FailureReasonDeadline,
		TestedProviders: testedProviders(attempts),
		Message:         fmt.Sprintf("Resolution stopped after %d of %d API endpoints: %v", len(attempts), selected, cause),
		Suggestions:     Suggestions(req.Platform),
	}
	if len(attempts) > 0 {
		failure.LastError = attempts[len(attempts)-1].Error()
	}
	return model.Outcome{Request: req, Failure: failure}
}

func testedProviders(attempts []provider.Attempt) []string {
	names := make([]string, len(attempts))
	for i, a := range attempts {
		names[i] = a.Provider
	}
	return names
}

func statusOrNetwork(attempt provider.Attempt) string {
	if attempt.HTTPStatus == 0 {
		return "Network Error"
	}
	return strconv.Itoa(attempt.HTTPStatus)
}
