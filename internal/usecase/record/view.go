package record

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	domain "user-table-service/internal/domain/record"
	pkgerrors "user-table-service/pkg/errors"
	"user-table-service/pkg/logger"
	"user-table-service/pkg/security"
)

// session returns the validated session for a request.
func (uc *Table) session(ctx context.Context, sessionID string) (*session, error) {
	if sessionID == "" {
		logger.WithContext(ctx, uc.log).Warn("missing session id")
		return nil, pkgerrors.NewValidationError("SessionID", "is required")
	}
	return uc.sessions.get(sessionID), nil
}

// filteredLocked applies the session query. Callers hold s.mu.
func (uc *Table) filteredLocked(s *session) []domain.Indexed {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return domain.FilterByName(uc.records, s.query)
}

// buildViewLocked renders the visible page of s. Callers hold s.mu.
// The current page is not reset by searching, so a narrowed result may leave
// the session on a page past the end and the view reports Empty.
func (uc *Table) buildViewLocked(s *session) *View {
	uc.mu.RLock()
	filtered := domain.FilterByName(uc.records, s.query)
	total := len(uc.records)
	var form Record
	if s.editing != nil && *s.editing >= 0 && *s.editing < len(uc.records) {
		form = toDTO(uc.records[*s.editing])
	}
	uc.mu.RUnlock()

	matched := int64(len(filtered))
	start, end := domain.PageBounds(matched, s.page, uc.pageSize)

	rows := make([]Row, 0, end-start)
	for _, item := range filtered[start:end] {
		rows = append(rows, Row{Index: item.Index, Record: toDTO(item.Record)})
	}

	totalPages := domain.TotalPages(matched, uc.pageSize)
	pages := make([]PageLink, 0, totalPages)
	for i := int64(1); i <= totalPages; i++ {
		pages = append(pages, PageLink{Number: i, Active: i == s.page})
	}

	return &View{
		Rows:    rows,
		Empty:   len(rows) == 0,
		Query:   s.query,
		Total:   total,
		Matched: len(filtered),
		Pagination: PageControls{
			Current:    s.page,
			TotalPages: totalPages,
			Pages:      pages,
			HasPrev:    s.page > 1,
			HasNext:    s.page < totalPages,
		},
		Modal:  modalLocked(s, form),
		Synced: uc.isSynced(),
	}
}

func modalLocked(s *session, form Record) Modal {
	m := Modal{Open: s.modal, Title: s.title}
	if s.editing != nil {
		m.Editing = true
		m.EditingIndex = *s.editing
		m.Form = form
	}
	return m
}

// View renders the current page of a session.
func (uc *Table) View(ctx context.Context, in SessionRequest) (*View, error) {
	s, err := uc.session(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return uc.buildViewLocked(s), nil
}

// Search sets the name filter of a session. The current page is kept.
func (uc *Table) Search(ctx context.Context, in SearchRequest) (*View, error) {
	s, err := uc.session(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}

	query, err := security.ValidateSearchQuery(in.Query)
	if err != nil {
		logger.WithContext(ctx, uc.log).Warn("invalid search query", zap.String("query", in.Query), zap.Error(err))
		return nil, pkgerrors.NewValidationError("query", err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = query
	return uc.buildViewLocked(s), nil
}

// GoToPage moves a session to one of the numbered pages.
func (uc *Table) GoToPage(ctx context.Context, in GoToPageRequest) (*View, error) {
	s, err := uc.session(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	totalPages := domain.TotalPages(int64(len(uc.filteredLocked(s))), uc.pageSize)
	if in.Page < 1 || (in.Page > totalPages && in.Page != 1) {
		logger.WithContext(ctx, uc.log).Warn("page out of range", zap.Int64("page", in.Page), zap.Int64("total_pages", totalPages))
		return nil, pkgerrors.NewValidationError("page", fmt.Sprintf("page %d is out of range", in.Page))
	}

	s.page = in.Page
	return uc.buildViewLocked(s), nil
}

// PrevPage moves a session one page back when it is not on the first page.
func (uc *Table) PrevPage(ctx context.Context, in SessionRequest) (*View, error) {
	s, err := uc.session(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.page > 1 {
		s.page--
	}
	return uc.buildViewLocked(s), nil
}

// NextPage moves a session one page forward when it is not on the last page.
func (uc *Table) NextPage(ctx context.Context, in SessionRequest) (*View, error) {
	s, err := uc.session(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	totalPages := domain.TotalPages(int64(len(uc.filteredLocked(s))), uc.pageSize)
	if s.page < totalPages {
		s.page++
	}
	return uc.buildViewLocked(s), nil
}

// OpenAddModal opens an empty form for a new record.
func (uc *Table) OpenAddModal(ctx context.Context, in SessionRequest) (*Modal, error) {
	s, err := uc.session(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.openModal(titleAddUser, nil)
	m := modalLocked(s, Record{})
	return &m, nil
}

// OpenEditModal opens the form prefilled with the record at the given index.
func (uc *Table) OpenEditModal(ctx context.Context, in OpenEditModalRequest) (*Modal, error) {
	s, err := uc.session(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}

	uc.editMu.RLock()
	defer uc.editMu.RUnlock()

	uc.mu.RLock()
	err = uc.checkIndex(uc.records, in.Index)
	var form Record
	if err == nil {
		form = toDTO(uc.records[in.Index])
	}
	uc.mu.RUnlock()
	if err != nil {
		logger.WithContext(ctx, uc.log).Warn("edit of unknown record", zap.Int("index", in.Index))
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	idx := in.Index
	s.openModal(titleEditUser, &idx)
	m := modalLocked(s, form)
	return &m, nil
}

// CloseModal closes the form and leaves edit mode.
func (uc *Table) CloseModal(ctx context.Context, in SessionRequest) (*Modal, error) {
	s, err := uc.session(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeModal()
	return &Modal{}, nil
}

// SaveRecord submits the modal form. Outside edit mode the record is appended
// unless its identifier is taken; in edit mode the edited record is replaced.
// The modal stays open when saving fails.
func (uc *Table) SaveRecord(ctx context.Context, in SaveRecordRequest) (*SaveRecordResponse, error) {
	s, err := uc.session(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	if err := uc.validateInput(ctx, in); err != nil {
		return nil, err
	}

	uc.editMu.RLock()
	defer uc.editMu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	log := logger.WithContext(logger.WithSessionID(ctx, in.SessionID), uc.log)
	r := toDomain(in.RecordInput)

	var index int
	created := s.editing == nil
	if created {
		log.Info("saving new record", zap.String("id", r.ID))
		err = uc.mutate(ctx, func(records []domain.Record) ([]domain.Record, error) {
			next, err := appendRecord(records, r)
			if err != nil {
				return nil, err
			}
			index = len(next) - 1
			return next, nil
		})
	} else {
		index = *s.editing
		log.Info("saving edited record", zap.Int("index", index), zap.String("id", r.ID))
		err = uc.mutate(ctx, func(records []domain.Record) ([]domain.Record, error) {
			return uc.replaceRecord(records, index, r)
		})
	}
	if err != nil {
		log.Warn("save record failed", zap.String("id", r.ID), zap.Error(err))
		return nil, err
	}

	s.closeModal()
	return &SaveRecordResponse{Index: index, Created: created, Record: toDTO(r)}, nil
}
