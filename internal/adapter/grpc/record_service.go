package grpc

import (
	"context"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"user-table-service/internal/usecase/record"
	"user-table-service/pkg/logger"
)

// ServiceName is the fully qualified name of the record service.
const ServiceName = "records.v1.RecordService"

// RecordService is the server API of records.v1.RecordService.
type RecordService interface {
	ListRecords(context.Context, *ListRecordsRequest) (*ListRecordsResponse, error)
	GetRecord(context.Context, *GetRecordRequest) (*RecordReply, error)
	CreateRecord(context.Context, *CreateRecordRequest) (*RecordReply, error)
	UpdateRecord(context.Context, *UpdateRecordRequest) (*RecordReply, error)
	DeleteRecord(context.Context, *DeleteRecordRequest) (*RecordReply, error)
	SyncRecords(context.Context, *SyncRecordsRequest) (*SyncRecordsResponse, error)
}

func fullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

// unaryHandler adapts a typed service method to a grpc.MethodHandler.
func unaryHandler[Req, Resp any](name string, call func(RecordService, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(RecordService), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod(name),
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(RecordService), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// RecordServiceDesc describes records.v1.RecordService for grpc.Server.RegisterService.
var RecordServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RecordService)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListRecords", Handler: unaryHandler("ListRecords", RecordService.ListRecords)},
		{MethodName: "GetRecord", Handler: unaryHandler("GetRecord", RecordService.GetRecord)},
		{MethodName: "CreateRecord", Handler: unaryHandler("CreateRecord", RecordService.CreateRecord)},
		{MethodName: "UpdateRecord", Handler: unaryHandler("UpdateRecord", RecordService.UpdateRecord)},
		{MethodName: "DeleteRecord", Handler: unaryHandler("DeleteRecord", RecordService.DeleteRecord)},
		{MethodName: "SyncRecords", Handler: unaryHandler("SyncRecords", RecordService.SyncRecords)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "records/v1/record_service",
}

// RegisterRecordService registers srv on s.
func RegisterRecordService(s grpc.ServiceRegistrar, srv RecordService) {
	s.RegisterService(&RecordServiceDesc, srv)
}

// RecordServiceServer implements the gRPC record service
type RecordServiceServer struct {
	uc  record.Usecase
	log *zap.Logger
}

var _ RecordService = (*RecordServiceServer)(nil)

// NewRecordServiceServer creates a new gRPC record service server
func NewRecordServiceServer(uc record.Usecase, log *zap.Logger) *RecordServiceServer {
	return &RecordServiceServer{uc: uc, log: log}
}

func toInput(f RecordFields) record.RecordInput {
	return record.RecordInput{
		Name:   f.Name,
		Email:  f.Email,
		ID:     f.ID,
		Salary: f.Salary,
		DOB:    f.DOB,
	}
}

func toReply(index int, r record.Record) *RecordReply {
	return &RecordReply{
		Index: index,
		Record: RecordFields{
			Name:   r.Name,
			Email:  r.Email,
			ID:     r.ID,
			Salary: r.Salary,
			DOB:    r.DOB,
		},
	}
}

// ListRecords handles gRPC ListRecords request
func (s *RecordServiceServer) ListRecords(ctx context.Context, req *ListRecordsRequest) (*ListRecordsResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	resp, err := s.uc.ListRecords(ctx, record.ListRecordsRequest{
		Query: req.Query,
		Page:  page,
		Limit: req.Limit,
	})
	if err != nil {
		return nil, err
	}

	out := &ListRecordsResponse{Records: make([]*RecordReply, 0, len(resp.Rows))}
	for _, row := range resp.Rows {
		out.Records = append(out.Records, toReply(row.Index, row.Record))
	}
	if resp.Pagination != nil {
		out.Pagination = &Pagination{
			Total:      resp.Pagination.Total,
			Page:       resp.Pagination.Page,
			Limit:      resp.Pagination.Limit,
			TotalPages: resp.Pagination.TotalPages,
		}
	}
	return out, nil
}

// GetRecord handles gRPC GetRecord request
func (s *RecordServiceServer) GetRecord(ctx context.Context, req *GetRecordRequest) (*RecordReply, error) {
	resp, err := s.uc.GetRecord(ctx, record.GetRecordRequest{Index: req.Index})
	if err != nil {
		return nil, err
	}
	return toReply(resp.Index, resp.Record), nil
}

// CreateRecord handles gRPC CreateRecord request
func (s *RecordServiceServer) CreateRecord(ctx context.Context, req *CreateRecordRequest) (*RecordReply, error) {
	resp, err := s.uc.CreateRecord(ctx, record.CreateRecordRequest{RecordInput: toInput(req.Record)})
	if err != nil {
		return nil, err
	}
	logger.WithContext(ctx, s.log).Debug("record created over grpc", zap.Int("index", resp.Index))
	return toReply(resp.Index, resp.Record), nil
}

// UpdateRecord handles gRPC UpdateRecord request
func (s *RecordServiceServer) UpdateRecord(ctx context.Context, req *UpdateRecordRequest) (*RecordReply, error) {
	resp, err := s.uc.UpdateRecord(ctx, record.UpdateRecordRequest{Index: req.Index, RecordInput: toInput(req.Record)})
	if err != nil {
		return nil, err
	}
	return toReply(resp.Index, resp.Record), nil
}

// DeleteRecord handles gRPC DeleteRecord request
func (s *RecordServiceServer) DeleteRecord(ctx context.Context, req *DeleteRecordRequest) (*RecordReply, error) {
	resp, err := s.uc.DeleteRecord(ctx, record.DeleteRecordRequest{Index: req.Index})
	if err != nil {
		return nil, err
	}
	return toReply(resp.Index, resp.Record), nil
}

// SyncRecords handles gRPC SyncRecords request
func (s *RecordServiceServer) SyncRecords(ctx context.Context, _ *SyncRecordsRequest) (*SyncRecordsResponse, error) {
	resp, err := s.uc.SyncRecords(ctx)
	if err != nil {
		return nil, err
	}
	return &SyncRecordsResponse{Fetched: resp.Fetched, Added: resp.Added, Total: resp.Total}, nil
}
