package grpc

// RecordFields are the editable fields of a record.
type RecordFields struct {
	Name   string  `json:"name"`
	Email  string  `json:"email"`
	ID     string  `json:"id"`
	Salary float64 `json:"salary"`
	DOB    string  `json:"dob"`
}

// RecordReply is a record together with its position in the list.
type RecordReply struct {
	Index  int          `json:"index"`
	Record RecordFields `json:"record"`
}

type ListRecordsRequest struct {
	Query string `json:"query,omitempty"`
	Page  int64  `json:"page,omitempty"`
	Limit int64  `json:"limit,omitempty"`
}

type Pagination struct {
	Total      int64 `json:"total"`
	Page       int64 `json:"page"`
	Limit      int64 `json:"limit"`
	TotalPages int64 `json:"total_pages"`
}

type ListRecordsResponse struct {
	Records    []*RecordReply `json:"records"`
	Pagination *Pagination    `json:"pagination,omitempty"`
}

type GetRecordRequest struct {
	Index int `json:"index"`
}

type CreateRecordRequest struct {
	Record RecordFields `json:"record"`
}

type UpdateRecordRequest struct {
	Index  int          `json:"index"`
	Record RecordFields `json:"record"`
}

type DeleteRecordRequest struct {
	Index int `json:"index"`
}

type SyncRecordsRequest struct{}

type SyncRecordsResponse struct {
	Fetched int `json:"fetched"`
	Added   int `json:"added"`
	Total   int `json:"total"`
}
