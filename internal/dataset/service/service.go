package service

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"govdash/internal/backend"
	"govdash/internal/dataset/metrics"
	"govdash/internal/dataset/models"
	"govdash/internal/i18n"
	"govdash/internal/snapshot"
	"govdash/pkg/domain"
	dErrors "govdash/pkg/domain-errors"
	"govdash/pkg/requestcontext"
)

// Backend is the slice of the backend client the console drives.
type Backend interface {
	UploadCSV(ctx context.Context, req backend.UploadCSVRequest) (*backend.UploadResult, error)
	Reset(ctx context.Context) (string, error)
}

// Snapshots supplies backend stats and logs, and refreshes them on demand.
type Snapshots interface {
	Current() *snapshot.Snapshot
	Refresh(ctx context.Context) (*snapshot.Snapshot, error)
}

const (
	defaultTick       = 300 * time.Millisecond
	defaultTimeout    = 2 * time.Minute
	defaultMaxBytes   = 32 << 20
	maxTrackedUploads = 50
	logTimeLayout     = "2006-01-02 15:04"
)

// Service runs uploads in the background and keeps the console's local log
// list: rows the backend has not reported yet, newest first.
type Service struct {
	backend   Backend
	snapshots Snapshots
	catalog   *i18n.Catalog
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tick      time.Duration
	timeout   time.Duration
	maxBytes  int64
	now       func() time.Time

	mu      sync.Mutex
	uploads map[string]*models.Upload
	order   []string
	logs    []localRow
	wg      sync.WaitGroup
}

// localRow is an audit row the backend does not report (yet). A successful
// row is superseded once the backend logs are refreshed after it settled.
type localRow struct {
	log       backend.UploadLog
	settledAt time.Time
}

func (r localRow) superseded(logsRefreshed time.Time) bool {
	return r.log.Status == models.LogSuccess && !logsRefreshed.Before(r.settledAt)
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithCatalog(c *i18n.Catalog) Option {
	return func(s *Service) {
		s.catalog = c
	}
}

// WithProgressTick sets how often simulated progress advances.
func WithProgressTick(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.tick = d
		}
	}
}

// WithTimeout bounds the backend ingestion call.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithMaxBytes(n int64) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxBytes = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func New(be Backend, snapshots Snapshots, opts ...Option) *Service {
	s := &Service{
		backend:   be,
		snapshots: snapshots,
		catalog:   i18n.Default(),
		logger:    slog.Default(),
		tick:      defaultTick,
		timeout:   defaultTimeout,
		maxBytes:  defaultMaxBytes,
		now:       time.Now,
		uploads:   make(map[string]*models.Upload),
		logs:      []localRow{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaxBytes is the largest accepted file.
func (s *Service) MaxBytes() int64 {
	return s.maxBytes
}

// StartUpload validates the request, records a Processing log row and sends
// the file in the background. The returned upload is at ProgressStart; poll
// Upload for its progress.
func (s *Service) StartUpload(ctx context.Context, req models.StartUploadRequest) (*models.Upload, error) {
	datasetType, err := req.Validate(s.maxBytes)
	if err != nil {
		return nil, err
	}

	now := s.now()
	up := &models.Upload{
		ID:         uuid.NewString(),
		FileName:   req.FileName,
		Type:       datasetType,
		SizeBytes:  int64(len(req.Content)),
		UploaderID: req.Uploader.UserID,
		State:      models.StateUploading,
		Progress:   models.ProgressStart,
		Indicative: true,
		StartedAt:  now,
	}
	row := backend.UploadLog{
		ID:         "local-" + up.ID,
		FileName:   up.FileName,
		Type:       string(datasetType),
		SizeBytes:  up.SizeBytes,
		Status:     models.LogProcessing,
		Timestamp:  now.Format(logTimeLayout),
		UploaderID: up.UploaderID,
	}

	s.mu.Lock()
	s.track(up)
	next := make([]localRow, 0, len(s.logs)+1)
	next = append(next, localRow{log: row})
	s.logs = append(next, s.logs...)
	if len(s.logs) > maxTrackedUploads {
		s.logs = s.logs[:maxTrackedUploads]
	}
	out := *up
	s.mu.Unlock()

	s.metrics.UploadStarted(len(req.Content))
	s.logger.InfoContext(ctx, "dataset upload started",
		"upload_id", up.ID,
		"file_name", up.FileName,
		"dataset_type", string(datasetType),
		"size_bytes", up.SizeBytes,
		"request_id", requestcontext.RequestID(ctx),
	)

	// The upload outlives the request that started it.
	bg := context.WithoutCancel(ctx)
	job := uploadJob{
		uploadID:    up.ID,
		rowID:       row.ID,
		fileName:    up.FileName,
		uploaderID:  up.UploaderID,
		datasetType: datasetType,
		content:     req.Content,
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(bg, job)
	}()
	return &out, nil
}

type uploadJob struct {
	uploadID    string
	rowID       string
	fileName    string
	uploaderID  string
	datasetType models.DatasetType
	content     []byte
}

func (s *Service) run(ctx context.Context, job uploadJob) {
	uploadID, rowID, datasetType := job.uploadID, job.rowID, job.datasetType
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	stop := make(chan struct{})
	ticked := make(chan struct{})
	go func() {
		defer close(ticked)
		ticker := time.NewTicker(s.tick)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				s.mutate(uploadID, func(u *models.Upload) {
					if !u.Done() {
						u.Progress = models.NextProgress(u.Progress)
					}
				})
			}
		}
	}()

	result, err := s.backend.UploadCSV(ctx, backend.UploadCSVRequest{
		FileName:    job.fileName,
		Content:     bytes.NewReader(job.content),
		DatasetType: string(datasetType),
		UploaderID:  job.uploaderID,
	})
	close(stop)
	<-ticked
	finished := s.now()

	if err != nil {
		detail := backend.Detail(err)
		if detail == "" {
			detail = err.Error()
		}
		s.mutate(uploadID, func(u *models.Upload) {
			u.State = models.StateFailed
			u.Progress = models.ProgressFailed
			u.Error = detail
			u.FinishedAt = &finished
		})
		s.settleLog(rowID, models.LogFailed, 0, finished)
		s.metrics.UploadFinished(string(datasetType), "failed", start)
		s.logger.WarnContext(ctx, "dataset upload failed",
			"upload_id", uploadID,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return
	}

	s.mutate(uploadID, func(u *models.Upload) {
		u.State = models.StateSucceeded
		u.Progress = models.ProgressDone
		u.RecordCount = result.RecordCount
		u.MergedInto = result.MergedInto
		u.FinishedAt = &finished
	})
	s.settleLog(rowID, models.LogSuccess, result.RecordCount, finished)
	s.metrics.UploadFinished(string(datasetType), "succeeded", start)
	s.logger.InfoContext(ctx, "dataset upload merged",
		"upload_id", uploadID,
		"record_count", result.RecordCount,
		"merged_into", result.MergedInto,
		"request_id", requestcontext.RequestID(ctx),
	)

	if _, err := s.snapshots.Refresh(ctx); err != nil {
		s.logger.WarnContext(ctx, "refresh after upload failed",
			"upload_id", uploadID,
			"error", err,
		)
	}
}

// Upload returns a copy of a tracked upload.
func (s *Service) Upload(_ context.Context, id string) (*models.Upload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.uploads[id]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "upload not found")
	}
	out := *u
	return &out, nil
}

// Console assembles the supervisor page. Backend stats are preferred; until
// they have been fetched the header is derived from the rows shown.
func (s *Service) Console(_ context.Context, lang i18n.Lang) *models.Console {
	t := s.catalog.Translator(lang)
	snap := s.snapshots.Current()

	logsRefreshed := snap.Refreshed[snapshot.ResourceLogs]

	s.mu.Lock()
	local := make([]backend.UploadLog, 0, len(s.logs))
	for _, r := range s.logs {
		if !r.superseded(logsRefreshed) {
			local = append(local, r.log)
		}
	}
	uploads := make([]models.Upload, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		uploads = append(uploads, *s.uploads[s.order[i]])
	}
	s.mu.Unlock()

	rows := make([]backend.UploadLog, 0, len(local)+len(snap.Logs))
	rows = append(rows, local...)
	rows = append(rows, snap.Logs...)

	c := &models.Console{
		Logs:         make([]models.LogView, 0, len(rows)),
		DatasetTypes: models.DatasetTypes,
		Uploads:      uploads,
		Notices:      []models.Notice{},
	}
	for i, r := range rows {
		key := models.StatusKey(r.Status)
		c.Logs = append(c.Logs, models.LogView{
			UploadLog:   r,
			StatusKey:   key,
			StatusLabel: t(key),
			Local:       i < len(local),
		})
	}
	if snap.Stats != nil {
		c.Stats = models.Stats{
			TotalRecords:  snap.Stats.TotalRecords,
			TotalDatasets: snap.Stats.TotalDatasets,
			LastUpdate:    snap.Stats.LastUpdate,
		}
		c.StatsSource = "backend"
	} else {
		c.Stats = models.DeriveStats(rows)
		c.StatsSource = "derived"
	}
	for _, n := range snap.Notices {
		if n.Resource == snapshot.ResourceStats || n.Resource == snapshot.ResourceLogs {
			c.Notices = append(c.Notices, models.Notice{Key: n.Key, Message: t(n.Key)})
			break
		}
	}
	return c
}

// Reset clears every ingested dataset at the backend and the local rows.
func (s *Service) Reset(ctx context.Context, caller domain.Principal) (string, error) {
	if caller.Role != domain.RoleDataSupervisor {
		return "", dErrors.New(dErrors.CodeForbidden, "only data supervisors can reset datasets")
	}
	status, err := s.backend.Reset(ctx)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeUnavailable, "backend reset failed")
	}

	s.mu.Lock()
	kept := make([]localRow, 0, len(s.logs))
	for _, r := range s.logs {
		if r.log.Status == models.LogProcessing {
			kept = append(kept, r)
		}
	}
	s.logs = kept
	s.mu.Unlock()

	if _, err := s.snapshots.Refresh(ctx); err != nil {
		s.logger.WarnContext(ctx, "refresh after reset failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	s.logger.InfoContext(ctx, "datasets reset",
		"user_id", caller.UserID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return status, nil
}

// Wait blocks until background uploads have finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

// track must be called with mu held. Finished uploads beyond
// maxTrackedUploads are forgotten, oldest first.
func (s *Service) track(u *models.Upload) {
	s.uploads[u.ID] = u
	s.order = append(s.order, u.ID)
	for len(s.order) > maxTrackedUploads {
		evicted := false
		for i, id := range s.order {
			if s.uploads[id].Done() {
				delete(s.uploads, id)
				s.order = append(s.order[:i:i], s.order[i+1:]...)
				evicted = true
				break
			}
		}
		if !evicted {
			return
		}
	}
}

func (s *Service) mutate(id string, fn func(*models.Upload)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.uploads[id]; ok {
		fn(u)
	}
}

// settleLog replaces the row list so slices already handed out stay
// unchanged.
func (s *Service) settleLog(rowID, status string, records int64, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]localRow, len(s.logs))
	copy(next, s.logs)
	for i := range next {
		if next[i].log.ID == rowID {
			next[i].log.Status = status
			next[i].log.RecordCount = records
			next[i].settledAt = at
		}
	}
	s.logs = next
}
