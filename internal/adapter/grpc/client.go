package grpc

import (
	"context"

	"google.golang.org/grpc"
)

// RecordServiceClient calls records.v1.RecordService using the JSON codec.
type RecordServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewRecordServiceClient creates a client on an established connection.
func NewRecordServiceClient(cc grpc.ClientConnInterface) *RecordServiceClient {
	return &RecordServiceClient{cc: cc}
}

func (c *RecordServiceClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, fullMethod(method), in, out, opts...)
}

func (c *RecordServiceClient) ListRecords(ctx context.Context, in *ListRecordsRequest, opts ...grpc.CallOption) (*ListRecordsResponse, error) {
	out := new(ListRecordsResponse)
	if err := c.invoke(ctx, "ListRecords", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *RecordServiceClient) GetRecord(ctx context.Context, in *GetRecordRequest, opts ...grpc.CallOption) (*RecordReply, error) {
	out := new(RecordReply)
	if err := c.invoke(ctx, "GetRecord", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *RecordServiceClient) CreateRecord(ctx context.Context, in *CreateRecordRequest, opts ...grpc.CallOption) (*RecordReply, error) {
	out := new(RecordReply)
	if err := c.invoke(ctx, "CreateRecord", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *RecordServiceClient) UpdateRecord(ctx context.Context, in *UpdateRecordRequest, opts ...grpc.CallOption) (*RecordReply, error) {
	out := new(RecordReply)
	if err := c.invoke(ctx, "UpdateRecord", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *RecordServiceClient) DeleteRecord(ctx context.Context, in *DeleteRecordRequest, opts ...grpc.CallOption) (*RecordReply, error) {
	out := new(RecordReply)
	if err := c.invoke(ctx, "DeleteRecord", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *RecordServiceClient) SyncRecords(ctx context.Context, in *SyncRecordsRequest, opts ...grpc.CallOption) (*SyncRecordsResponse, error) {
	out := new(SyncRecordsResponse)
	if err := c.invoke(ctx, "SyncRecords", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}
