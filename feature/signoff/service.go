package signoff

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"tinyflow/core/klayout"
	"tinyflow/core/storage"
	"tinyflow/core/utils"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

var (
	// ErrInvalidRequest reports a request with no input or no cells to check.
	ErrInvalidRequest = errors.New("invalid sign-off request")
	// ErrHistoryDisabled is returned by history queries without a database.
	ErrHistoryDisabled = errors.New("run history disabled: no database")
	// ErrArchiveDisabled is returned by archive queries without object storage.
	ErrArchiveDisabled = errors.New("report archive disabled: no storage")
	// ErrReportNotFound is returned when an archived report does not exist.
	ErrReportNotFound = errors.New("report not found")
)

// ReportPrefix is the object prefix under which reports are archived.
const ReportPrefix = "reports"

// DRCRequest asks for a DRC batch. Empty optional fields use the
// configuration. Reports go to a directory named after the batch id below
// the output directory.
type DRCRequest struct {
	Input       string
	Cells       []string
	Deck        string
	OutputDir   string
	RequestedBy string
}

// LVSRequest asks for an LVS batch. Empty optional fields use the
// configuration. Reports and netlists go to directories named after the
// batch id below the output and extraction directories.
type LVSRequest struct {
	Input         string
	Schematic     string
	Cells         []string
	Deck          string
	OutputDir     string
	ExtractionDir string
	RequestedBy   string
}

// Service runs sign-off batches and keeps their history.
type Service struct {
	runner  *klayout.Runner
	cfg     klayout.Config
	store   *Store
	archive storage.Client
	bucket  string
	logger  *zap.Logger
	now     func() time.Time
}

// NewService creates a sign-off service. store and archive may be nil, in
// which case batches are neither persisted nor archived.
func NewService(runner *klayout.Runner, cfg klayout.Config, logger *zap.Logger, store *Store, archive storage.Client, bucket string) *Service {
	return &Service{
		runner:  runner,
		cfg:     cfg,
		store:   store,
		archive: archive,
		bucket:  bucket,
		logger:  logger,
		now:     time.Now,
	}
}

// RunDRC checks every requested cell with the DRC runset.
func (s *Service) RunDRC(ctx context.Context, req DRCRequest) (*Batch, error) {
	cells, err := s.cells(req.Input, req.Cells)
	if err != nil {
		return nil, err
	}
	b := s.newBatch(KindDRC, req.Input, "", req.RequestedBy)
	deck := fallback(req.Deck, s.cfg.DRCDeck)
	outDir := filepath.Join(fallback(req.OutputDir, s.cfg.DRCOutputDir), b.ID)

	log := s.logger.With(zap.String("batch", b.ID), zap.String("kind", KindDRC))
	log.Info("Starting DRC batch", zap.Int("cells", len(cells)))

	for _, cell := range cells {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		job := klayout.DRCJob{Input: req.Input, Cell: cell, Deck: deck, OutputDir: outDir}
		result := CellResult{Cell: cell, Report: job.ReportPath()}

		report, err := s.runner.RunDRC(ctx, job)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			result.Status = StatusError
			result.Reason = reason(err)
			result.Report = ""
		case report.Clean():
			result.Status = StatusPass
		default:
			result.Status = StatusFail
			result.Violations = report.Total
			result.Rules = report.ByRule
		}
		log.Info("Cell checked", zap.String("cell", cell), zap.String("status", result.Status), zap.Int("violations", result.Violations))

		b.Results = append(b.Results, result)
	}

	return s.finish(ctx, b, log), nil
}

// RunLVS compares every requested cell against the schematic.
func (s *Service) RunLVS(ctx context.Context, req LVSRequest) (*Batch, error) {
	cells, err := s.cells(req.Input, req.Cells)
	if err != nil {
		return nil, err
	}
	if req.Schematic == "" {
		return nil, fmt.Errorf("%w: schematic is required", ErrInvalidRequest)
	}
	b := s.newBatch(KindLVS, req.Input, req.Schematic, req.RequestedBy)
	deck := fallback(req.Deck, s.cfg.LVSDeck)
	outDir := filepath.Join(fallback(req.OutputDir, s.cfg.LVSOutputDir), b.ID)
	extDir := filepath.Join(fallback(req.ExtractionDir, s.cfg.ExtractionDir), b.ID)

	log := s.logger.With(zap.String("batch", b.ID), zap.String("kind", KindLVS))
	log.Info("Starting LVS batch", zap.Int("cells", len(cells)))

	for _, cell := range cells {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		job := klayout.LVSJob{
			Input:         req.Input,
			Schematic:     req.Schematic,
			Cell:          cell,
			Deck:          deck,
			OutputDir:     outDir,
			ExtractionDir: extDir,
		}
		result := CellResult{Cell: cell, Report: job.ReportPath()}

		if _, err := os.Stat(req.Schematic); err != nil {
			log.Warn("Skipping cell, schematic not found", zap.String("cell", cell), zap.String("schematic", req.Schematic))
			result.Status = StatusError
			result.Reason = "no schematic"
			result.Report = ""
			b.Results = append(b.Results, result)
			continue
		}

		report, err := s.runner.RunLVS(ctx, job)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			result.Status = StatusError
			result.Reason = reason(err)
			result.Report = ""
		case report.Match:
			result.Status = StatusPass
		default:
			result.Status = StatusFail
			result.Violations = len(report.Errors)
			result.Errors = report.Errors
		}
		log.Info("Cell checked", zap.String("cell", cell), zap.String("status", result.Status), zap.Int("issues", result.Violations))

		b.Results = append(b.Results, result)
	}

	return s.finish(ctx, b, log), nil
}

// ListBatches returns the most recent batches first.
func (s *Service) ListBatches(ctx context.Context, limit int) ([]Batch, error) {
	if s.store == nil {
		return nil, ErrHistoryDisabled
	}
	return s.store.List(ctx, limit)
}

// GetBatch loads one batch by id.
func (s *Service) GetBatch(ctx context.Context, id string) (*Batch, error) {
	if s.store == nil {
		return nil, ErrHistoryDisabled
	}
	return s.store.Get(ctx, id)
}

// ReadReport returns the content of an archived report of a batch.
func (s *Service) ReadReport(ctx context.Context, batchID, file string) ([]byte, error) {
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}
	key := ReportObject(batchID, file)
	rc, err := s.archive.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, reportError(key, err)
	}
	defer rc.Close()

	// The object is fetched lazily, so a missing key surfaces on read.
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, reportError(key, err)
	}
	return data, nil
}

func reportError(key string, err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return fmt.Errorf("%w: %s", ErrReportNotFound, key)
	}
	return fmt.Errorf("failed to read report %s: %w", key, err)
}

// ReportObject is the archive key of a report file.
func ReportObject(batchID, file string) string {
	return path.Join(ReportPrefix, batchID, path.Base(file))
}

func (s *Service) cells(input string, requested []string) ([]string, error) {
	if input == "" {
		return nil, fmt.Errorf("%w: input layout is required", ErrInvalidRequest)
	}
	cells := utils.Without(utils.Normalize(requested), s.cfg.SkipCells)
	if len(cells) == 0 {
		return nil, fmt.Errorf("%w: no cells to check", ErrInvalidRequest)
	}
	return cells, nil
}

func (s *Service) newBatch(kind, input, schematic, requestedBy string) *Batch {
	return &Batch{
		ID:          uuid.NewString(),
		Kind:        kind,
		Input:       input,
		Schematic:   schematic,
		RequestedBy: requestedBy,
		StartedAt:   s.now(),
		Results:     []CellResult{},
	}
}

// finish archives reports and records the batch. Neither step is fatal.
func (s *Service) finish(ctx context.Context, b *Batch, log *zap.Logger) *Batch {
	b.FinishedAt = s.now()

	if s.archive != nil {
		s.archiveReports(ctx, b, log)
	}

	if s.store != nil {
		if err := s.store.Save(ctx, b); err != nil {
			log.Warn("Failed to record batch", zap.Error(err))
		}
	}

	sum := b.Summary()
	log.Info("Batch finished",
		zap.Int("passed", sum.Passed),
		zap.Int("failed", sum.Failed),
		zap.Int("errored", sum.Errored),
		zap.Duration("took", b.FinishedAt.Sub(b.StartedAt)))
	return b
}

func (s *Service) archiveReports(ctx context.Context, b *Batch, log *zap.Logger) {
	if err := storage.EnsureBucket(ctx, s.archive, s.bucket, ""); err != nil {
		log.Warn("Report archive unavailable", zap.Error(err))
		return
	}
	for _, r := range b.Results {
		if r.Report == "" {
			continue
		}
		if err := s.upload(ctx, b.ID, r.Report); err != nil {
			log.Warn("Failed to archive report", zap.String("cell", r.Cell), zap.Error(err))
		}
	}
}

func (s *Service) upload(ctx context.Context, batchID, file string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	_, err = s.archive.PutObject(ctx, s.bucket, ReportObject(batchID, filepath.Base(file)), f, info.Size(), minio.PutObjectOptions{
		ContentType: contentType(file),
	})
	return err
}

func contentType(file string) string {
	if filepath.Ext(file) == ".lyrdb" {
		return "application/xml"
	}
	return "text/plain"
}

func reason(err error) string {
	if errors.Is(err, klayout.ErrNoReport) {
		return "no report"
	}
	return err.Error()
}

func fallback(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
