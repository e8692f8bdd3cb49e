// Package archive moves finished result files into blob storage and
// records the outcome in the result catalog, asynchronously so an
// acquisition loop never blocks on an upload.
package archive

import (
	"context"
	"crypto/rand"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"benchcore/internal/blob"
	"benchcore/internal/index"
	"benchcore/internal/results"
)

// Status describes the lifecycle stage of an archive request.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// StatusArchived marks a catalog entry whose file has been uploaded.
const StatusArchived = "archived"

// Record tracks one archive request.
type Record struct {
	ID          string     `json:"id"`
	Path        string     `json:"path"`
	Key         string     `json:"key,omitempty"`
	Procedure   string     `json:"procedure,omitempty"`
	Status      Status     `json:"status"`
	Error       string     `json:"error,omitempty"`
	SizeBytes   int64      `json:"size_bytes,omitempty"`
	ETag        string     `json:"etag,omitempty"`
	RequestedBy string     `json:"requested_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Input is an enqueue request.
type Input struct {
	Path        string
	RequestedBy string
}

// AuditEntry captures the audit trail for archive operations.
type AuditEntry struct {
	ID         string    `json:"id"`
	Action     string    `json:"action"`
	Actor      string    `json:"actor,omitempty"`
	Path       string    `json:"path"`
	Status     Status    `json:"status"`
	Note       string    `json:"note,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// AuditLogger records archive audit entries.
type AuditLogger interface {
	Record(ctx context.Context, entry AuditEntry)
}

// Worker uploads result files in the background.
type Worker struct {
	store   blob.Store
	catalog index.Store
	audit   AuditLogger
	diag    results.Diagnostics

	queue chan task
	mu    sync.RWMutex
	jobs  map[string]*Record

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type task struct {
	id    string
	input Input
}

// NewWorker constructs an archive worker. catalog, audit, and diag may
// be nil; the store is required.
func NewWorker(store blob.Store, catalog index.Store, audit AuditLogger, diag results.Diagnostics) *Worker {
	if diag == nil {
		diag = results.NopDiagnostics{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		store:   store,
		catalog: catalog,
		audit:   audit,
		diag:    diag,
		queue:   make(chan task, 32),
		jobs:    make(map[string]*Record),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start begins processing archive requests.
func (w *Worker) Start() {
	w.wg.Add(1)
	go w.loop()
}

// Stop signals the worker to halt and waits for completion.
func (w *Worker) Stop(ctx context.Context) error {
	w.cancel()
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case t := <-w.queue:
			w.process(t)
		}
	}
}

// Enqueue schedules an archive job and returns the queued record.
func (w *Worker) Enqueue(ctx context.Context, input Input) (Record, error) {
	if input.Path == "" {
		return Record{}, fmt.Errorf("archive: file path required")
	}
	if _, err := os.Stat(input.Path); err != nil {
		return Record{}, fmt.Errorf("archive: %w", err)
	}

	id := newID()
	now := time.Now().UTC()
	record := Record{
		ID:          id,
		Path:        input.Path,
		Status:      StatusQueued,
		RequestedBy: input.RequestedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	w.mu.Lock()
	w.jobs[id] = &record
	snapshot := record
	w.mu.Unlock()

	w.record(ctx, AuditEntry{
		ID:         newID(),
		Action:     "archive_result",
		Actor:      input.RequestedBy,
		Path:       input.Path,
		Status:     StatusQueued,
		OccurredAt: now,
	})

	select {
	case w.queue <- task{id: id, input: input}:
	default:
		w.fail(id, "archive queue full")
		return Record{}, fmt.Errorf("archive: queue full")
	}
	return snapshot, nil
}

// Get returns a snapshot of the archive record.
func (w *Worker) Get(id string) (Record, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	record, ok := w.jobs[id]
	if !ok {
		return Record{}, false
	}
	return *record, true
}

func (w *Worker) process(t task) {
	w.update(t.id, StatusRunning, "")

	header, format, err := results.DecodeHeaderFile(t.input.Path)
	if err != nil {
		w.fail(t.id, fmt.Sprintf("read header: %v", err))
		return
	}
	rows, err := results.CountRows(t.input.Path)
	if err != nil {
		w.fail(t.id, fmt.Sprintf("count rows: %v", err))
		return
	}

	key := path.Join(header.Identity.String(), filepath.Base(t.input.Path))
	file, err := os.Open(t.input.Path)
	if err != nil {
		w.fail(t.id, fmt.Sprintf("open file: %v", err))
		return
	}
	info, err := w.store.Put(w.ctx, key, file, blob.PutOptions{
		ContentType: contentTypeOf(format),
		Metadata: map[string]string{
			"procedure": header.Identity.String(),
			"rows":      fmt.Sprintf("%d", rows),
		},
	})
	_ = file.Close()
	if err != nil {
		w.fail(t.id, fmt.Sprintf("upload: %v", err))
		return
	}

	if w.catalog != nil {
		if err := w.publish(t.input.Path, header, rows, info); err != nil {
			w.diag.Warn("catalog update failed", "path", t.input.Path, "error", err.Error())
		}
	}
	w.complete(t.id, header.Identity.String(), info)
}

// publish upserts the catalog entry for an archived file.
func (w *Worker) publish(filePath string, header results.Header, rows int, info blob.Info) error {
	stat, err := os.Stat(filePath)
	if err != nil {
		return err
	}
	params := make(map[string]string, len(header.Params))
	for _, p := range header.Params {
		params[p.Name] = p.Value
	}
	return w.catalog.Put(w.ctx, index.Entry{
		Path:       filePath,
		Procedure:  header.Identity.String(),
		Parameters: params,
		Rows:       rows,
		SizeBytes:  stat.Size(),
		ModTime:    stat.ModTime(),
		Status:     StatusArchived,
		IndexedAt:  time.Now().UTC(),
	})
}

func (w *Worker) update(id string, status Status, message string) {
	now := time.Now().UTC()
	w.mu.Lock()
	record, ok := w.jobs[id]
	var snapshot Record
	if ok {
		record.Status = status
		record.Error = message
		record.UpdatedAt = now
		snapshot = *record
	}
	w.mu.Unlock()
	if ok {
		w.record(w.ctx, AuditEntry{
			ID:         newID(),
			Action:     "archive_result",
			Actor:      snapshot.RequestedBy,
			Path:       snapshot.Path,
			Status:     status,
			Note:       message,
			OccurredAt: now,
		})
	}
}

func (w *Worker) complete(id, procedure string, info blob.Info) {
	now := time.Now().UTC()
	w.mu.Lock()
	record, ok := w.jobs[id]
	var snapshot Record
	if ok {
		record.Status = StatusSucceeded
		record.Error = ""
		record.Key = info.Key
		record.Procedure = procedure
		record.SizeBytes = info.Size
		record.ETag = info.ETag
		record.UpdatedAt = now
		record.CompletedAt = &now
		snapshot = *record
	}
	w.mu.Unlock()
	if ok {
		w.record(w.ctx, AuditEntry{
			ID:         newID(),
			Action:     "archive_result",
			Actor:      snapshot.RequestedBy,
			Path:       snapshot.Path,
			Status:     StatusSucceeded,
			OccurredAt: now,
		})
	}
}

func (w *Worker) fail(id, reason string) {
	now := time.Now().UTC()
	w.mu.Lock()
	record, ok := w.jobs[id]
	var snapshot Record
	if ok {
		record.Status = StatusFailed
		record.Error = reason
		record.UpdatedAt = now
		record.CompletedAt = &now
		snapshot = *record
	}
	w.mu.Unlock()
	if ok {
		w.record(w.ctx, AuditEntry{
			ID:         newID(),
			Action:     "archive_result",
			Actor:      snapshot.RequestedBy,
			Path:       snapshot.Path,
			Status:     StatusFailed,
			Note:       reason,
			OccurredAt: now,
		})
	}
}

func (w *Worker) record(ctx context.Context, entry AuditEntry) {
	if w.audit != nil {
		w.audit.Record(ctx, entry)
	}
}

func contentTypeOf(format results.Format) string {
	if format == results.FormatJSON {
		return "application/json"
	}
	return "text/csv"
}

func newID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return fmt.Sprintf("%x", b[:])
}

// MemoryAuditLog captures audit entries in-memory for assertions.
type MemoryAuditLog struct {
	mu      sync.Mutex
	entries []AuditEntry
}

// Record stores an audit entry.
func (l *MemoryAuditLog) Record(_ context.Context, entry AuditEntry) {
	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()
}

// Entries returns a defensive copy of recorded audit entries.
func (l *MemoryAuditLog) Entries() []AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]AuditEntry, len(l.entries))
	copy(out, l.entries)
	return out
}
