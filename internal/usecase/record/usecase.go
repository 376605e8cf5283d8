package record

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	domain "user-table-service/internal/domain/record"
	pkgerrors "user-table-service/pkg/errors"
	"user-table-service/pkg/logger"
	"user-table-service/pkg/security"
)

// Store persists the whole record list as one value.
// Every mutation rewrites the full list.
type Store interface {
	Load(ctx context.Context) ([]domain.Record, error) // Load the list, empty when nothing was saved
	Save(ctx context.Context, records []domain.Record) error
	Clear(ctx context.Context) error
}

// Identity is one sample person returned by the random-user service.
type Identity struct {
	UUID      string
	FirstName string
	LastName  string
	Email     string
	DOB       string // ISO-8601 timestamp
}

// Fetcher retrieves sample identities from an external service.
type Fetcher interface {
	FetchIdentities(ctx context.Context, count int) ([]Identity, error)
}

// LoadOptions controls how the record list is initialised at startup.
type LoadOptions struct {
	Reset bool // clear the stored list before loading
	Seed  bool // write the sample records when the list is empty
}

// Option configures a Table.
type Option func(*Table)

// WithPageSize sets the number of rows per page.
func WithPageSize(n int) Option {
	return func(uc *Table) {
		if n > 0 {
			uc.pageSize = int64(n)
		}
	}
}

// WithSyncBatchSize sets how many identities one sync requests.
func WithSyncBatchSize(n int) Option {
	return func(uc *Table) {
		if n > 0 {
			uc.batchSize = n
		}
	}
}

// WithSessionTTL sets how long idle session state is kept.
func WithSessionTTL(ttl time.Duration) Option {
	return func(uc *Table) {
		uc.sessions.ttl = ttl
	}
}

// WithSalaryGenerator replaces the random salary assigned to synced records.
func WithSalaryGenerator(fn func() float64) Option {
	return func(uc *Table) {
		if fn != nil {
			uc.salary = fn
		}
	}
}

// Table implements the record table: an in-memory mirror of the stored
// list, the one-time sync flag, and per-session view state.
type Table struct {
	store     Store               // Store holding the serialized list
	fetcher   Fetcher             // Fetcher for the random-user sync
	log       *zap.Logger         // Logger for structured logging
	validate  *validator.Validate // Validator for form input
	sessions  *sessionStore
	pageSize  int64
	batchSize int
	salary    func() float64

	mu      sync.RWMutex
	records []domain.Record

	// editMu orders deletes against edits that hold an index into records.
	// Lock order: editMu, session, mu.
	editMu sync.RWMutex
	syncMu sync.Mutex // serializes SyncRecords
	synced atomic.Bool
}

var _ Usecase = (*Table)(nil)

// New creates a new Table with the provided store, fetcher and logger.
func New(store Store, fetcher Fetcher, log *zap.Logger, opts ...Option) *Table {
	uc := &Table{
		store:     store,
		fetcher:   fetcher,
		log:       log,
		validate:  validator.New(),
		sessions:  newSessionStore(time.Hour),
		pageSize:  domain.DefaultPageSize,
		batchSize: 5,
		salary:    randomSalary,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// randomSalary returns a whole salary in [3000, 12000).
func randomSalary() float64 {
	return float64(rand.IntN(9000) + 3000)
}

// sampleRecords are written by Load when seeding an empty list.
func sampleRecords() []domain.Record {
	return []domain.Record{
		{Name: "John Doe", Email: "john@company.com", ID: "EMP-1001", Salary: 5150, DOB: "1992-03-14"},
		{Name: "Patricia Foe", Email: "patricia@company.com", ID: "EMP-1002", Salary: 6120, DOB: "1990-11-02"},
	}
}

// formatValidationError converts validator.ValidationErrors into a ValidationError.
func formatValidationError(err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return pkgerrors.NewValidationError("", err.Error())
	}

	var messages []string
	field := ""
	for _, e := range validationErrors {
		if field == "" {
			field = e.Field()
		}
		switch e.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", e.Field()))
		case "email":
			messages = append(messages, fmt.Sprintf("%s must be a valid email", e.Field()))
		case "max":
			messages = append(messages, fmt.Sprintf("%s must be at most %s characters", e.Field(), e.Param()))
		case "gte":
			messages = append(messages, fmt.Sprintf("%s must be at least %s", e.Field(), e.Param()))
		case "datetime":
			messages = append(messages, fmt.Sprintf("%s must be a date formatted as YYYY-MM-DD", e.Field()))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", e.Field()))
		}
	}
	if len(messages) == 1 {
		return pkgerrors.NewValidationError(field, strings.TrimPrefix(messages[0], field+" "))
	}
	return pkgerrors.NewValidationError("", strings.Join(messages, ", "))
}

func (uc *Table) validateInput(ctx context.Context, in any) error {
	if err := uc.validate.Struct(in); err != nil {
		logger.WithContext(ctx, uc.log).Warn("validate failed", zap.Error(err))
		return formatValidationError(err)
	}
	return nil
}

func toDomain(in RecordInput) domain.Record {
	return domain.Record{
		Name:   strings.TrimSpace(in.Name),
		Email:  strings.TrimSpace(in.Email),
		ID:     strings.TrimSpace(in.ID),
		Salary: in.Salary,
		DOB:    in.DOB,
	}
}

func toDTO(r domain.Record) Record {
	return Record{
		Name:   r.Name,
		Email:  r.Email,
		ID:     r.ID,
		Salary: r.Salary,
		DOB:    r.DOB,
	}
}

// Load reads the stored list into memory.
func (uc *Table) Load(ctx context.Context, opts LoadOptions) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if opts.Reset {
		if err := uc.store.Clear(ctx); err != nil {
			return fmt.Errorf("failed to reset record store: %w", err)
		}
		uc.log.Info("record store reset on start")
	}

	records, err := uc.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load records: %w", err)
	}

	if len(records) == 0 && opts.Seed {
		records = sampleRecords()
		if err := uc.store.Save(ctx, records); err != nil {
			return fmt.Errorf("failed to seed records: %w", err)
		}
		uc.log.Info("seeded sample records", zap.Int("count", len(records)))
	}

	uc.records = records
	uc.log.Info("records loaded", zap.Int("count", len(records)))
	return nil
}

// Count returns the number of records currently held.
func (uc *Table) Count() int {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return len(uc.records)
}

// mutate applies fn to a copy of the list and persists the result.
// The in-memory list only changes when the store accepted the new list.
func (uc *Table) mutate(ctx context.Context, fn func(records []domain.Record) ([]domain.Record, error)) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	next, err := fn(domain.Clone(uc.records))
	if err != nil {
		return err
	}

	if err := uc.store.Save(ctx, next); err != nil {
		logger.WithContext(ctx, uc.log).Error("failed to persist records", zap.Int("count", len(next)), zap.Error(err))
		return pkgerrors.NewInternalError("failed to persist records", err)
	}

	uc.records = next
	return nil
}

func (uc *Table) checkIndex(records []domain.Record, index int) error {
	if index < 0 || index >= len(records) {
		return pkgerrors.NewNotFoundError("record", fmt.Sprintf("record not found: index=%d", index))
	}
	return nil
}

// appendRecord rejects identifiers that are already taken.
func appendRecord(records []domain.Record, r domain.Record) ([]domain.Record, error) {
	if domain.IndexOfID(records, r.ID) >= 0 {
		return nil, pkgerrors.NewAlreadyExistsError("record", "user already exists")
	}
	return append(records, r), nil
}

// replaceRecord rejects identifiers that belong to a different record.
func (uc *Table) replaceRecord(records []domain.Record, index int, r domain.Record) ([]domain.Record, error) {
	if err := uc.checkIndex(records, index); err != nil {
		return nil, err
	}
	if existing := domain.IndexOfID(records, r.ID); existing >= 0 && existing != index {
		return nil, pkgerrors.NewAlreadyExistsError("record", "user already exists")
	}
	records[index] = r
	return records, nil
}

// CreateRecord appends a record after validating it and checking identifier uniqueness.
func (uc *Table) CreateRecord(ctx context.Context, in CreateRecordRequest) (*CreateRecordResponse, error) {
	log := logger.WithContext(ctx, uc.log)
	log.Info("creating record", zap.String("id", in.ID), zap.String("name", in.Name))

	if err := uc.validateInput(ctx, in); err != nil {
		return nil, err
	}

	r := toDomain(in.RecordInput)
	var index int
	err := uc.mutate(ctx, func(records []domain.Record) ([]domain.Record, error) {
		next, err := appendRecord(records, r)
		if err != nil {
			return nil, err
		}
		index = len(next) - 1
		return next, nil
	})
	if err != nil {
		log.Warn("failed to create record", zap.String("id", r.ID), zap.Error(err))
		return nil, err
	}

	return &CreateRecordResponse{Index: index, Record: toDTO(r)}, nil
}

// UpdateRecord replaces the record at the given index in place.
func (uc *Table) UpdateRecord(ctx context.Context, in UpdateRecordRequest) (*UpdateRecordResponse, error) {
	log := logger.WithContext(ctx, uc.log)
	log.Info("updating record", zap.Int("index", in.Index), zap.String("id", in.ID))

	if err := uc.validateInput(ctx, in); err != nil {
		return nil, err
	}

	r := toDomain(in.RecordInput)
	err := uc.mutate(ctx, func(records []domain.Record) ([]domain.Record, error) {
		return uc.replaceRecord(records, in.Index, r)
	})
	if err != nil {
		log.Warn("failed to update record", zap.Int("index", in.Index), zap.Error(err))
		return nil, err
	}

	return &UpdateRecordResponse{Index: in.Index, Record: toDTO(r)}, nil
}

// DeleteRecord removes the record at the given index.
// Every session editing a later record is moved to its new index, and a session
// editing the removed record leaves edit mode. When a session is given, its
// current page is moved back onto the last non-empty page.
func (uc *Table) DeleteRecord(ctx context.Context, in DeleteRecordRequest) (*DeleteRecordResponse, error) {
	log := logger.WithContext(ctx, uc.log)
	log.Info("deleting record", zap.Int("index", in.Index))

	uc.editMu.Lock()
	defer uc.editMu.Unlock()

	var removed domain.Record
	var remaining int
	err := uc.mutate(ctx, func(records []domain.Record) ([]domain.Record, error) {
		if err := uc.checkIndex(records, in.Index); err != nil {
			return nil, err
		}
		removed = records[in.Index]
		next := append(records[:in.Index], records[in.Index+1:]...)
		remaining = len(next)
		return next, nil
	})
	if err != nil {
		log.Warn("failed to delete record", zap.Int("index", in.Index), zap.Error(err))
		return nil, err
	}

	uc.sessions.forEach(func(s *session) {
		s.shiftAfterDelete(in.Index)
	})

	if in.SessionID != "" {
		s := uc.sessions.get(in.SessionID)
		s.mu.Lock()
		s.page = domain.ClampPage(s.page, int64(remaining), uc.pageSize)
		s.mu.Unlock()
	}

	return &DeleteRecordResponse{Index: in.Index, Record: toDTO(removed)}, nil
}

// GetRecord retrieves the record at the given index.
func (uc *Table) GetRecord(ctx context.Context, in GetRecordRequest) (*GetRecordResponse, error) {
	uc.mu.RLock()
	defer uc.mu.RUnlock()

	if err := uc.checkIndex(uc.records, in.Index); err != nil {
		logger.WithContext(ctx, uc.log).Warn("get record failed", zap.Int("index", in.Index), zap.Error(err))
		return nil, err
	}

	return &GetRecordResponse{Index: in.Index, Record: toDTO(uc.records[in.Index])}, nil
}

// ListRecords retrieves a page of records with optional name search.
func (uc *Table) ListRecords(ctx context.Context, in ListRecordsRequest) (*ListRecordsResponse, error) {
	if in.Page <= 0 {
		in.Page = 1
	}
	if in.Limit <= 0 {
		in.Limit = uc.pageSize
	}
	if in.Limit > 100 {
		in.Limit = 100
	}

	query, err := security.ValidateSearchQuery(in.Query)
	if err != nil {
		logger.WithContext(ctx, uc.log).Warn("invalid search query", zap.String("query", in.Query), zap.Error(err))
		return nil, pkgerrors.NewValidationError("query", err.Error())
	}

	logger.WithContext(ctx, uc.log).Debug("listing records", zap.String("query", query), zap.Int64("page", in.Page), zap.Int64("limit", in.Limit))

	uc.mu.RLock()
	filtered := domain.FilterByName(uc.records, query)
	uc.mu.RUnlock()

	total := int64(len(filtered))
	if totalPages := domain.TotalPages(total, in.Limit); in.Page > max(totalPages, 1) {
		logger.WithContext(ctx, uc.log).Warn("page out of range", zap.Int64("page", in.Page), zap.Int64("total_pages", totalPages))
		return nil, pkgerrors.NewValidationError("page", fmt.Sprintf("page %d is out of range", in.Page))
	}
	start, end := domain.PageBounds(total, in.Page, in.Limit)

	rows := make([]Row, 0, end-start)
	for _, item := range filtered[start:end] {
		rows = append(rows, Row{Index: item.Index, Record: toDTO(item.Record)})
	}

	p := domain.NewPagination(total, in.Page, in.Limit)
	return &ListRecordsResponse{
		Rows: rows,
		Pagination: &Pagination{
			Total:      p.Total,
			Page:       p.Page,
			Limit:      p.Limit,
			TotalPages: p.TotalPages,
		},
	}, nil
}
