package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/AngelCh415/lead-reports/internal/config"
	"github.com/AngelCh415/lead-reports/internal/store"
	"github.com/AngelCh415/lead-reports/internal/utils"
)

// ETL runs an uploaded file through decode, normalize and the session cache.
type ETL struct {
	norm *Normalizer
	st   *store.MemoryStore
	log  *slog.Logger
	cfg  config.Config
}

func NewETL(norm *Normalizer, st *store.MemoryStore, log *slog.Logger, cfg config.Config) *ETL {
	return &ETL{norm: norm, st: st, log: log, cfg: cfg}
}

// UploadResult summarizes what was stored for the session.
type UploadResult struct {
	SessionID   string   `json:"session_id"`
	Filename    string   `json:"filename"`
	Rows        int      `json:"rows"`
	Columns     []string `json:"columns"`
	Normalized  bool     `json:"normalized"`
	TotalIssues int      `json:"total_issues"`
	Issues      []Issue  `json:"issues"`
}

// Upload replaces the session's dataset with the decoded and normalized
// contents of r. On any input error the cached dataset is left as it was.
// A normalization pass that aborts still stores the raw rows and reports it.
func (e *ETL) Upload(ctx context.Context, sessionID, filename string, r io.Reader) (UploadResult, error) {
	log := e.log.With(slog.String("session", sessionID), slog.String("file", filename), slog.String("rid", utils.RID(ctx)))

	body, err := e.readCapped(r)
	if err != nil {
		e.fail(log, err)
		return UploadResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return UploadResult{}, err
	}
	raw, err := Decode(filename, bytes.NewReader(body))
	if err != nil {
		e.fail(log, err)
		return UploadResult{}, err
	}

	res := e.norm.Normalize(raw)
	if err := e.st.Put(sessionID, filename, res.Dataset); err != nil {
		e.fail(log, err)
		return UploadResult{}, fmt.Errorf("store dataset: %w", err)
	}

	outcome := utils.OutcomeOK
	if !res.Normalized {
		outcome = utils.OutcomeWarning
	}
	utils.Uploads.WithLabelValues(outcome).Inc()
	utils.RowsIngested.Add(float64(res.Dataset.Len()))
	utils.NormalizationIssues.Add(float64(res.TotalIssues))
	utils.ActiveSessions.Set(float64(e.st.Len()))

	log.Info("upload stored",
		slog.Int("rows", res.Dataset.Len()),
		slog.Int("columns", len(res.Dataset.Columns)),
		slog.Int("issues", res.TotalIssues),
		slog.Bool("normalized", res.Normalized))
	if !res.Normalized {
		log.Warn("normalization aborted, raw rows stored")
	}

	issues := res.Issues
	if issues == nil {
		issues = []Issue{}
	}
	return UploadResult{
		SessionID:   sessionID,
		Filename:    filename,
		Rows:        res.Dataset.Len(),
		Columns:     res.Dataset.Columns,
		Normalized:  res.Normalized,
		TotalIssues: res.TotalIssues,
		Issues:      issues,
	}, nil
}

func (e *ETL) readCapped(r io.Reader) ([]byte, error) {
	limit := e.cfg.MaxUploadBytes
	if limit <= 0 {
		return io.ReadAll(r)
	}
	b, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(b)) > limit {
		return nil, fmt.Errorf("%w (%d bytes)", ErrTooLarge, limit)
	}
	return b, nil
}

func (e *ETL) fail(log *slog.Logger, err error) {
	outcome := utils.OutcomeError
	switch {
	case errors.Is(err, ErrUnsupportedFormat):
		outcome = utils.OutcomeUnsupported
	case errors.Is(err, ErrEmptyDataset):
		outcome = utils.OutcomeEmpty
	case errors.Is(err, ErrTooLarge):
		outcome = utils.OutcomeTooLarge
	case errors.Is(err, ErrMalformed):
		outcome = utils.OutcomeMalformed
	}
	utils.Uploads.WithLabelValues(outcome).Inc()
	log.Warn("upload rejected", slog.String("outcome", outcome), slog.String("err", err.Error()))
}
