package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-table-service/internal/usecase/record"
	"user-table-service/pkg/logger"
)

// RecordHandler handles JSON API requests for record operations
type RecordHandler struct {
	uc  record.Usecase
	log *zap.Logger
}

// NewRecordHandler creates a new RecordHandler instance
func NewRecordHandler(uc record.Usecase, log *zap.Logger) *RecordHandler {
	return &RecordHandler{
		uc:  uc,
		log: log,
	}
}

// RecordRequest represents the HTTP request body for creating or replacing a record
type RecordRequest struct {
	Name   string  `json:"name" binding:"required"`
	Email  string  `json:"email" binding:"required"`
	ID     string  `json:"id" binding:"required"`
	Salary float64 `json:"salary"`
	DOB    string  `json:"dob" binding:"required"`
}

func (r RecordRequest) toInput() record.RecordInput {
	return record.RecordInput{
		Name:   r.Name,
		Email:  r.Email,
		ID:     r.ID,
		Salary: r.Salary,
		DOB:    r.DOB,
	}
}

// RecordResponse represents the HTTP response for record data
type RecordResponse struct {
	Index  int     `json:"index"`
	Name   string  `json:"name"`
	Email  string  `json:"email"`
	ID     string  `json:"id"`
	Salary float64 `json:"salary"`
	DOB    string  `json:"dob"`
}

func toRecordResponse(index int, r record.Record) RecordResponse {
	return RecordResponse{
		Index:  index,
		Name:   r.Name,
		Email:  r.Email,
		ID:     r.ID,
		Salary: r.Salary,
		DOB:    r.DOB,
	}
}

// ListRecordsResponse represents the HTTP response for listing records
type ListRecordsResponse struct {
	Records    []RecordResponse `json:"records"`
	Pagination *Pagination      `json:"pagination,omitempty"`
}

// Pagination represents pagination information
type Pagination struct {
	Total      int64 `json:"total"`
	Page       int64 `json:"page"`
	Limit      int64 `json:"limit"`
	TotalPages int64 `json:"total_pages"`
}

// SyncResponse represents the HTTP response for a random-user sync
type SyncResponse struct {
	Fetched int `json:"fetched"`
	Added   int `json:"added"`
	Total   int `json:"total"`
}

func (h *RecordHandler) parseIndex(c *gin.Context) (int, bool) {
	raw := c.Param("index")
	index, err := strconv.Atoi(raw)
	if err != nil || index < 0 {
		logger.WithContext(c.Request.Context(), h.log).Warn("invalid record index", zap.String("index", raw))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_index",
			Message: "Record index must be a non-negative number",
		})
		return 0, false
	}
	return index, true
}

func (h *RecordHandler) bindRecord(c *gin.Context) (RecordRequest, bool) {
	var req RecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WithContext(c.Request.Context(), h.log).Warn("invalid record request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return req, false
	}
	return req, true
}

// CreateRecord handles POST /v1/records
func (h *RecordHandler) CreateRecord(c *gin.Context) {
	req, ok := h.bindRecord(c)
	if !ok {
		return
	}

	resp, err := h.uc.CreateRecord(c.Request.Context(), record.CreateRecordRequest{RecordInput: req.toInput()})
	if err != nil {
		handleError(c, err)
		return
	}

	c.Header("Location", "/v1/records/"+strconv.Itoa(resp.Index))
	c.JSON(http.StatusCreated, toRecordResponse(resp.Index, resp.Record))
}

// GetRecord handles GET /v1/records/:index
func (h *RecordHandler) GetRecord(c *gin.Context) {
	index, ok := h.parseIndex(c)
	if !ok {
		return
	}

	resp, err := h.uc.GetRecord(c.Request.Context(), record.GetRecordRequest{Index: index})
	if err != nil {
		handleError(c, err)
		return
	}

	respondJSONWithETag(c, http.StatusOK, toRecordResponse(resp.Index, resp.Record))
}

// UpdateRecord handles PUT /v1/records/:index
func (h *RecordHandler) UpdateRecord(c *gin.Context) {
	index, ok := h.parseIndex(c)
	if !ok {
		return
	}
	req, ok := h.bindRecord(c)
	if !ok {
		return
	}

	resp, err := h.uc.UpdateRecord(c.Request.Context(), record.UpdateRecordRequest{Index: index, RecordInput: req.toInput()})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toRecordResponse(resp.Index, resp.Record))
}

// DeleteRecord handles DELETE /v1/records/:index
func (h *RecordHandler) DeleteRecord(c *gin.Context) {
	index, ok := h.parseIndex(c)
	if !ok {
		return
	}

	resp, err := h.uc.DeleteRecord(c.Request.Context(), record.DeleteRecordRequest{Index: index})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toRecordResponse(resp.Index, resp.Record))
}

// ListRecords handles GET /v1/records
func (h *RecordHandler) ListRecords(c *gin.Context) {
	query := c.DefaultQuery("query", "")

	page, err := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "0"), 10, 64)
	if err != nil || limit < 0 {
		limit = 0
	}

	resp, err := h.uc.ListRecords(c.Request.Context(), record.ListRecordsRequest{
		Query: query,
		Page:  page,
		Limit: limit,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	records := make([]RecordResponse, len(resp.Rows))
	for i, row := range resp.Rows {
		records[i] = toRecordResponse(row.Index, row.Record)
	}

	var pagination *Pagination
	if resp.Pagination != nil {
		pagination = &Pagination{
			Total:      resp.Pagination.Total,
			Page:       resp.Pagination.Page,
			Limit:      resp.Pagination.Limit,
			TotalPages: resp.Pagination.TotalPages,
		}
	}

	respondJSONWithETag(c, http.StatusOK, ListRecordsResponse{
		Records:    records,
		Pagination: pagination,
	})
}

// SyncRecords handles POST /v1/sync
func (h *RecordHandler) SyncRecords(c *gin.Context) {
	resp, err := h.uc.SyncRecords(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, SyncResponse{
		Fetched: resp.Fetched,
		Added:   resp.Added,
		Total:   resp.Total,
	})
}
