// Package converter turns a booking code on one platform into a translated
// slip and a placeholder code on another.
package converter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/Vodeneev/betcode/internal/parser/parsers"
	"github.com/Vodeneev/betcode/internal/pkg/bookingcode"
	"github.com/Vodeneev/betcode/internal/pkg/enums"
	"github.com/Vodeneev/betcode/internal/pkg/markets"
	"github.com/Vodeneev/betcode/internal/pkg/models"
	"github.com/Vodeneev/betcode/internal/pkg/storage"
	"github.com/Vodeneev/betcode/internal/pkg/validation"
)

// User-facing messages.
const (
	MsgSamePlatform = "From/To platforms are the same."
	MsgCodeRequired = "Booking code is required."
	MsgNotFound     = "Code not found or could not fetch (try a valid SportyBet code)."
	MsgConverted    = "Converted (live scrape)."
)

// Outcome classifies a conversion for metrics, audit and HTTP status mapping.
type Outcome string

const (
	OutcomeOK                  Outcome = "ok"
	OutcomeUnsupportedPlatform Outcome = "unsupported_platform"
	OutcomeSamePlatform        Outcome = "same_platform"
	OutcomeMissingCode         Outcome = "missing_code"
	OutcomeNotFound            Outcome = "not_found"
)

const auditTimeout = 3 * time.Second

// Metrics counts conversion outcomes.
type Metrics interface {
	RecordConversion(from, to, result string)
}

// Notifier is told about codes that could not be resolved.
type Notifier interface {
	NotifyUnresolved(platform, code, reason string) bool
}

// Deps are the collaborators of a Service. Only Sources is required.
type Deps struct {
	Sources    map[string]parsers.Source
	Translator *markets.Translator
	Sanitizer  *validation.Sanitizer
	Metrics    Metrics
	Audit      storage.AuditStorage
	Notifier   Notifier
}

type Service struct {
	sources    map[string]parsers.Source
	translator *markets.Translator
	sanitizer  *validation.Sanitizer
	metrics    Metrics
	audit      storage.AuditStorage
	notifier   Notifier
}

func NewService(d Deps) *Service {
	s := &Service{
		sources:    d.Sources,
		translator: d.Translator,
		sanitizer:  d.Sanitizer,
		metrics:    d.Metrics,
		audit:      d.Audit,
		notifier:   d.Notifier,
	}
	if s.sources == nil {
		s.sources = map[string]parsers.Source{}
	}
	if s.translator == nil {
		s.translator = markets.NewTranslator(nil)
	}
	if s.sanitizer == nil {
		s.sanitizer = validation.NewSanitizer()
	}
	if s.audit == nil {
		s.audit = storage.NopAuditStorage{}
	}
	return s
}

// Convert validates req, resolves the code on the source platform and builds
// the target-side preview. Validation runs before any resolution.
func (s *Service) Convert(ctx context.Context, req models.ConvertRequest) (models.ConvertResult, Outcome) {
	start := time.Now()
	code := strings.TrimSpace(req.Code)

	from, fromOK := enums.ParsePlatform(string(req.FromPlatform))
	to, toOK := enums.ParsePlatform(string(req.ToPlatform))

	var (
		result  models.ConvertResult
		outcome Outcome
		legs    int
	)
	switch {
	case !fromOK:
		result, outcome = models.Failed(unsupported(req.FromPlatform)), OutcomeUnsupportedPlatform
	case !toOK:
		result, outcome = models.Failed(unsupported(req.ToPlatform)), OutcomeUnsupportedPlatform
	case from == to:
		result, outcome = models.Failed(MsgSamePlatform), OutcomeSamePlatform
	case code == "":
		result, outcome = models.Failed(MsgCodeRequired), OutcomeMissingCode
	default:
		result, outcome, legs = s.convert(ctx, code, from, to)
	}

	s.record(ctx, code, req, result, outcome, legs, time.Since(start))
	return result, outcome
}

func (s *Service) convert(ctx context.Context, code string, from, to enums.Platform) (models.ConvertResult, Outcome, int) {
	src, ok := s.sources[string(from)]
	if !ok {
		slog.Error("No slip source registered", "platform", from)
		return models.Failed(MsgNotFound), OutcomeNotFound, 0
	}

	slip, ok := src.Resolve(ctx, code)
	if !ok || slip.Empty() {
		reason := "no legs found"
		if err := ctx.Err(); err != nil {
			reason = err.Error()
		}
		return s.notFound(from, code, reason)
	}

	s.sanitizer.SanitizeSlip(slip)
	if slip.Empty() {
		return s.notFound(from, code, "no usable legs after sanitizing")
	}

	preview := s.translator.Translate(slip, from, to)
	converted := bookingcode.Synthesize(to, code)

	slog.Info("Code converted", "from", from, "to", to, "code", code, "converted_code", converted, "legs", len(preview.Legs))
	return models.Converted(MsgConverted, converted, preview), OutcomeOK, len(preview.Legs)
}

func (s *Service) notFound(from enums.Platform, code, reason string) (models.ConvertResult, Outcome, int) {
	if s.notifier != nil {
		s.notifier.NotifyUnresolved(string(from), code, reason)
	}
	return models.Failed(MsgNotFound), OutcomeNotFound, 0
}

func (s *Service) record(ctx context.Context, code string, req models.ConvertRequest, result models.ConvertResult, outcome Outcome, legs int, took time.Duration) {
	from, to := string(req.FromPlatform), string(req.ToPlatform)
	if s.metrics != nil {
		s.metrics.RecordConversion(metricLabel(req.FromPlatform), metricLabel(req.ToPlatform), string(outcome))
	}

	rec := storage.ConversionRecord{
		Code:         code,
		FromPlatform: from,
		ToPlatform:   to,
		OK:           result.OK,
		Outcome:      string(outcome),
		Legs:         legs,
		Duration:     took,
		CreatedAt:    time.Now(),
	}
	if result.ConvertedCode != nil {
		rec.ConvertedCode = *result.ConvertedCode
	}

	auditCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
	defer cancel()
	if err := s.audit.RecordConversion(auditCtx, rec); err != nil {
		slog.Warn("Failed to audit conversion", "error", err, "code", code)
	}
}

func unsupported(p enums.Platform) string {
	return "Unsupported platform: " + string(p) + "."
}

// metricLabel bounds label cardinality to known platforms.
func metricLabel(p enums.Platform) string {
	if v, ok := enums.ParsePlatform(string(p)); ok {
		return string(v)
	}
	return "other"
}
