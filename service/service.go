package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/apex/log"

	"verdix/database"
	"verdix/image"
	"verdix/llm"
	"verdix/metrics"
	"verdix/parser"
	"verdix/profile"
	"verdix/rabbitmq"
)

// ErrAnalysisFailed wraps every failure of the vision model call
var ErrAnalysisFailed = errors.New("analysis failed")

// TimestampLayout matches JavaScript's Date.toISOString
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// EventPublisher delivers scan events; *rabbitmq.Publisher satisfies it
type EventPublisher interface {
	Publish(message interface{}) error
}

type Options struct {
	HistoryLimit      int
	MaxImageDimension int
	LLMTimeout        time.Duration
}

// Result is the /api/analyze response body
type Result struct {
	Success   bool           `json:"success"`
	Analysis  string         `json:"analysis,omitempty"`
	Report    *parser.Report `json:"report,omitempty"`
	ScanID    int64          `json:"scan_id,omitempty"`
	Error     string         `json:"error,omitempty"`
	Timestamp string         `json:"timestamp"`
}

type Service struct {
	client llm.Client
	store  database.Store
	events EventPublisher
	opts   Options
	now    func() time.Time
}

// New wires the analysis pipeline. events may be nil.
func New(client llm.Client, store database.Store, events EventPublisher, opts Options) *Service {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 50
	}
	if opts.MaxImageDimension <= 0 {
		opts.MaxImageDimension = image.DefaultMaxDimension
	}
	if opts.LLMTimeout <= 0 {
		opts.LLMTimeout = 60 * time.Second
	}
	return &Service{
		client: client,
		store:  store,
		events: events,
		opts:   opts,
		now:    time.Now,
	}
}

func (s *Service) Timestamp() string {
	return s.now().UTC().Format(TimestampLayout)
}

// Analyze runs one product photo through the model and the report parser,
// then records it in userID's history. Storage and event failures are logged
// and do not fail the call.
func (s *Service) Analyze(ctx context.Context, userID, dataURL string) (*Result, error) {
	data, mime, err := image.DecodeDataURL(dataURL)
	if err != nil {
		metrics.AnalysesTotal.WithLabelValues("bad_request").Inc()
		return nil, err
	}

	if norm, normMime, err := image.Normalize(data, mime, s.opts.MaxImageDimension); errors.Is(err, image.ErrTooManyPixels) {
		metrics.AnalysesTotal.WithLabelValues("bad_request").Inc()
		return nil, err
	} else if err != nil {
		log.Warnf("Image normalization failed, sending original: %v", err)
	} else {
		data, mime = norm, normMime
	}

	logger := log.WithFields(log.Fields{"user_id": userID, "source": s.client.SourceName()})
	logger.Infof("Analyzing product image (%s, %d bytes)", mime, len(data))

	text, err := s.callModel(ctx, data, mime)
	if err != nil {
		metrics.AnalysesTotal.WithLabelValues("llm_error").Inc()
		logger.WithError(err).Error("Vision model call failed")
		return nil, fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
	}

	report := s.parse(text, logger)
	result := &Result{
		Success:   true,
		Analysis:  text,
		Report:    &report,
		Timestamp: s.Timestamp(),
	}

	if report.IsEmpty() {
		metrics.AnalysesTotal.WithLabelValues("empty").Inc()
		logger.Warn("Model answer carried no recognizable report, not saving it")
		return result, nil
	}
	metrics.AnalysesTotal.WithLabelValues("ok").Inc()

	result.ScanID = s.save(ctx, userID, text, report, logger)
	s.publish(result.ScanID, userID, report, logger)

	logger.WithFields(log.Fields{
		"product":  report.ProductName,
		"score":    report.Score,
		"strategy": report.AlternativesStrategy,
	}).Info("Analysis completed")
	return result, nil
}

func (s *Service) callModel(ctx context.Context, data []byte, mime string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.LLMTimeout)
	defer cancel()

	start := time.Now()
	text, err := s.client.AnalyzeImage(ctx, data, mime)
	outcome := "ok"
	if err == nil && text == "" {
		err = llm.ErrEmptyResponse
	}
	if err != nil {
		outcome = "error"
	}
	metrics.LLMLatencySeconds.WithLabelValues(s.client.SourceName(), outcome).Observe(time.Since(start).Seconds())
	return text, err
}

// ParseText runs caller-supplied analysis text through the parser with the
// same diagnostics as Analyze.
func (s *Service) ParseText(text string) parser.Report {
	return s.parse(text, log.WithField("source", "api"))
}

func (s *Service) parse(text string, logger *log.Entry) parser.Report {
	report := parser.Parse(text, parser.WithTrace(traceTo(logger)))
	strategy := report.AlternativesStrategy
	if strategy == "" {
		strategy = "none"
	}
	metrics.AlternativesStrategyTotal.WithLabelValues(strategy).Inc()
	return report
}

// traceTo forwards parser diagnostics to logger at debug level and counts them
func traceTo(logger *log.Entry) parser.TraceFunc {
	return func(e parser.Event) {
		metrics.ParseDiagnosticsTotal.WithLabelValues(e.Stage).Inc()
		fields := log.Fields{"stage": e.Stage}
		for k, v := range e.Fields {
			fields[k] = v
		}
		logger.WithFields(fields).Debug(e.Message)
	}
}

func (s *Service) save(ctx context.Context, userID, text string, report parser.Report, logger *log.Entry) int64 {
	scan := database.NewScan(userID, s.client.SourceName(), text, report)
	scan.CreatedAt = s.now().UTC()
	id, err := s.store.SaveScan(ctx, scan)
	if err != nil {
		logger.WithError(err).Warn("Failed to save scan")
		return 0
	}
	if n, err := s.store.TrimScans(ctx, userID, s.opts.HistoryLimit); err != nil {
		logger.WithError(err).Warn("Failed to trim scan history")
	} else if n > 0 {
		logger.Debugf("Trimmed %d old scans", n)
	}
	return id
}

func (s *Service) publish(scanID int64, userID string, report parser.Report, logger *log.Entry) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(rabbitmq.NewScanAnalyzed(scanID, userID, report, s.now())); err != nil {
		metrics.EventPublishErrorTotal.Inc()
		logger.WithError(err).Warn("Failed to publish scan event")
	}
}

// History returns userID's scans, newest first
func (s *Service) History(ctx context.Context, userID string) ([]database.Scan, error) {
	return s.store.ListScans(ctx, userID, s.opts.HistoryLimit)
}

func (s *Service) ClearHistory(ctx context.Context, userID string) (int64, error) {
	return s.store.ClearScans(ctx, userID)
}

func (s *Service) Profile(ctx context.Context, userID string) (profile.Profile, error) {
	scans, err := s.History(ctx, userID)
	if err != nil {
		return profile.Profile{}, err
	}
	return profile.Build(userID, scans, s.now()), nil
}
