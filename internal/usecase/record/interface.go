package record

import "context"

// Usecase defines the interface for record table operations.
//
// Session-scoped operations (view, paging, search, modal, save) act on the
// view state of one browser session. The remaining operations are stateless
// and address records by their position in the full list.
type Usecase interface {
	View(ctx context.Context, in SessionRequest) (*View, error)
	Search(ctx context.Context, in SearchRequest) (*View, error)
	GoToPage(ctx context.Context, in GoToPageRequest) (*View, error)
	PrevPage(ctx context.Context, in SessionRequest) (*View, error)
	NextPage(ctx context.Context, in SessionRequest) (*View, error)
	OpenAddModal(ctx context.Context, in SessionRequest) (*Modal, error)
	OpenEditModal(ctx context.Context, in OpenEditModalRequest) (*Modal, error)
	CloseModal(ctx context.Context, in SessionRequest) (*Modal, error)
	SaveRecord(ctx context.Context, in SaveRecordRequest) (*SaveRecordResponse, error)

	CreateRecord(ctx context.Context, in CreateRecordRequest) (*CreateRecordResponse, error)
	UpdateRecord(ctx context.Context, in UpdateRecordRequest) (*UpdateRecordResponse, error)
	DeleteRecord(ctx context.Context, in DeleteRecordRequest) (*DeleteRecordResponse, error)
	GetRecord(ctx context.Context, in GetRecordRequest) (*GetRecordResponse, error)
	ListRecords(ctx context.Context, in ListRecordsRequest) (*ListRecordsResponse, error)
	SyncRecords(ctx context.Context) (*SyncRecordsResponse, error)
}
