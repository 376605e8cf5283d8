package record

// RecordInput holds the form fields of a record.
type RecordInput struct {
	Name   string  `validate:"required,max=100"`
	Email  string  `validate:"required,email"`
	ID     string  `validate:"required,max=64"`
	Salary float64 `validate:"gte=0"`
	DOB    string  `validate:"required,datetime=2006-01-02"`
}

// SessionRequest identifies the browser session whose view state is used.
type SessionRequest struct {
	SessionID string `validate:"required"`
}

// SearchRequest sets the name filter of a session.
type SearchRequest struct {
	SessionID string `validate:"required"`
	Query     string
}

// GoToPageRequest moves a session to a page number.
type GoToPageRequest struct {
	SessionID string `validate:"required"`
	Page      int64
}

// OpenEditModalRequest opens the modal prefilled with the record at Index.
type OpenEditModalRequest struct {
	SessionID string `validate:"required"`
	Index     int
}

// SaveRecordRequest submits the modal form of a session.
// It adds a record unless the session is editing one.
type SaveRecordRequest struct {
	SessionID string `validate:"required"`
	RecordInput
}

// SaveRecordResponse reports where the submitted record ended up.
type SaveRecordResponse struct {
	Index   int
	Created bool
	Record  Record
}

// CreateRecordRequest represents the request payload for appending a record.
type CreateRecordRequest struct {
	RecordInput
}

// CreateRecordResponse represents the response payload after appending a record.
type CreateRecordResponse struct {
	Index  int
	Record Record
}

// UpdateRecordRequest replaces the record at Index.
type UpdateRecordRequest struct {
	Index int
	RecordInput
}

// UpdateRecordResponse represents the response payload after updating a record.
type UpdateRecordResponse struct {
	Index  int
	Record Record
}

// DeleteRecordRequest removes the record at Index.
// When SessionID is set, that session's current page is clamped afterwards.
type DeleteRecordRequest struct {
	SessionID string
	Index     int
}

// DeleteRecordResponse returns the removed record.
type DeleteRecordResponse struct {
	Index  int
	Record Record
}

// GetRecordRequest represents the request payload for retrieving a record.
type GetRecordRequest struct {
	Index int
}

// GetRecordResponse represents the response payload for record details.
type GetRecordResponse struct {
	Index  int
	Record Record
}

// ListRecordsRequest represents the request payload for listing records.
// It supports pagination and name search.
type ListRecordsRequest struct {
	Query string
	Page  int64
	Limit int64
}

// ListRecordsResponse represents the response payload for record listing.
type ListRecordsResponse struct {
	Rows       []Row
	Pagination *Pagination
}

// SyncRecordsResponse summarizes a random-user sync.
type SyncRecordsResponse struct {
	Fetched int
	Added   int
	Total   int
}

// Pagination represents pagination information for list responses.
type Pagination struct {
	Total      int64
	Page       int64
	Limit      int64
	TotalPages int64
}

// Record represents a record DTO for API responses.
type Record struct {
	Name   string
	Email  string
	ID     string
	Salary float64
	DOB    string
}

// Row is a visible record together with its position in the full list.
type Row struct {
	Index  int
	Record Record
}

// PageLink is one numbered pagination control.
type PageLink struct {
	Number int64
	Active bool
}

// PageControls describes the prev / numbers / next controls under the table.
type PageControls struct {
	Current    int64
	TotalPages int64
	Pages      []PageLink
	HasPrev    bool
	HasNext    bool
}

// Modal describes the add/edit dialog of a session.
type Modal struct {
	Open         bool
	Title        string
	Editing      bool
	EditingIndex int
	Form         Record
}

// View is everything needed to render the table for one session.
type View struct {
	Rows       []Row
	Empty      bool
	Query      string
	Total      int
	Matched    int
	Pagination PageControls
	Modal      Modal
	Synced     bool
}
