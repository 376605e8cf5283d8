package grpc

import (
	"context"
	"errors"
	"math"
	"net"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"user-table-service/internal/adapter/grpc/middleware"
	"user-table-service/internal/adapter/kv"
	"user-table-service/internal/usecase/record"
	"user-table-service/pkg/logger"
)

type stubFetcher struct {
	identities []record.Identity
	err        error
}

func (f *stubFetcher) FetchIdentities(context.Context, int) ([]record.Identity, error) {
	return f.identities, f.err
}

func setupClient(t *testing.T, fetcher record.Fetcher) *RecordServiceClient {
	log := zaptest.NewLogger(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	table := record.New(kv.NewRedisRecordStore(rdb, "users-crud-v1", log), fetcher, log)
	require.NoError(t, table.Load(context.Background(), record.LoadOptions{Seed: true}))

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		middleware.RecoveryInterceptor(log),
		logger.RequestIDInterceptor(),
		middleware.ErrorInterceptor(log),
	))
	RegisterRecordService(srv, NewRecordServiceServer(table, log))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return NewRecordServiceClient(conn)
}

func TestRecordService_CRUD(t *testing.T) {
	client := setupClient(t, &stubFetcher{})
	ctx := context.Background()

	list, err := client.ListRecords(ctx, &ListRecordsRequest{})
	require.NoError(t, err)
	require.Len(t, list.Records, 2)
	assert.Equal(t, "John Doe", list.Records[0].Record.Name)
	assert.Equal(t, int64(2), list.Pagination.Total)

	created, err := client.CreateRecord(ctx, &CreateRecordRequest{Record: RecordFields{
		Name: "Ada Lovelace", Email: "ada@company.com", ID: "EMP-2001", Salary: 9100, DOB: "1985-12-10",
	}})
	require.NoError(t, err)
	assert.Equal(t, 2, created.Index)

	got, err := client.GetRecord(ctx, &GetRecordRequest{Index: 2})
	require.NoError(t, err)
	assert.Equal(t, "EMP-2001", got.Record.ID)
	assert.Equal(t, 9100.0, got.Record.Salary)

	updated, err := client.UpdateRecord(ctx, &UpdateRecordRequest{Index: 2, Record: RecordFields{
		Name: "Ada King", Email: "ada@company.com", ID: "EMP-2001", Salary: 9200, DOB: "1985-12-10",
	}})
	require.NoError(t, err)
	assert.Equal(t, "Ada King", updated.Record.Name)

	found, err := client.ListRecords(ctx, &ListRecordsRequest{Query: "KING"})
	require.NoError(t, err)
	require.Len(t, found.Records, 1)
	assert.Equal(t, 2, found.Records[0].Index)

	deleted, err := client.DeleteRecord(ctx, &DeleteRecordRequest{Index: 0})
	require.NoError(t, err)
	assert.Equal(t, "John Doe", deleted.Record.Name)

	list, err = client.ListRecords(ctx, &ListRecordsRequest{Page: 1, Limit: 5})
	require.NoError(t, err)
	assert.Len(t, list.Records, 2)
}

func TestRecordService_Errors(t *testing.T) {
	client := setupClient(t, &stubFetcher{})
	ctx := context.Background()

	_, err := client.GetRecord(ctx, &GetRecordRequest{Index: 7})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = client.CreateRecord(ctx, &CreateRecordRequest{Record: RecordFields{
		Name: "Dup", Email: "dup@company.com", ID: "EMP-1001", Salary: 1, DOB: "1990-01-01",
	}})
	assert.Equal(t, codes.AlreadyExists, status.Code(err))

	_, err = client.CreateRecord(ctx, &CreateRecordRequest{Record: RecordFields{
		Name: "Bad", Email: "nope", ID: "EMP-9", DOB: "1990-01-01",
	}})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestRecordService_ListRecordsPageOutOfRange(t *testing.T) {
	client := setupClient(t, &stubFetcher{})
	ctx := context.Background()

	for _, page := range []int64{2, 1844674407370955163, math.MaxInt64} {
		_, err := client.ListRecords(ctx, &ListRecordsRequest{Page: page, Limit: 5})
		assert.Equal(t, codes.InvalidArgument, status.Code(err), "page %d", page)
	}

	// The server keeps serving afterwards
	list, err := client.ListRecords(ctx, &ListRecordsRequest{Page: 1, Limit: 5})
	require.NoError(t, err)
	assert.Len(t, list.Records, 2)
}

func TestRecordService_Sync(t *testing.T) {
	client := setupClient(t, &stubFetcher{identities: []record.Identity{
		{UUID: "u-1", FirstName: "Mia", LastName: "Hart", Email: "mia@example.com", DOB: "1988-04-21T09:12:00.000Z"},
	}})
	ctx := context.Background()

	resp, err := client.SyncRecords(ctx, &SyncRecordsRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Added)
	assert.Equal(t, 3, resp.Total)

	_, err = client.SyncRecords(ctx, &SyncRecordsRequest{})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
}

func TestRecordService_SyncFailure(t *testing.T) {
	client := setupClient(t, &stubFetcher{err: errors.New("dial tcp 10.0.0.1:443: refused")})

	_, err := client.SyncRecords(context.Background(), &SyncRecordsRequest{})
	st, _ := status.FromError(err)
	assert.Equal(t, codes.Internal, st.Code())
	assert.Equal(t, "failed to fetch users", st.Message())
}

func TestJSONCodec(t *testing.T) {
	c := jsonCodec{}
	assert.Equal(t, "json", c.Name())

	b, err := c.Marshal(&GetRecordRequest{Index: 4})
	require.NoError(t, err)
	assert.JSONEq(t, `{"index":4}`, string(b))

	var out GetRecordRequest
	require.NoError(t, c.Unmarshal(b, &out))
	assert.Equal(t, 4, out.Index)

	require.NoError(t, c.Unmarshal(nil, &out))
	assert.Error(t, c.Unmarshal([]byte("{"), &out))
}
