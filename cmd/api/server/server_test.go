package server

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	grpcadapter "user-table-service/internal/adapter/grpc"
	"user-table-service/internal/config"
	"user-table-service/internal/usecase/record"
)

// stubUsecase answers GetRecord and panics on anything else.
type stubUsecase struct {
	record.Usecase
	mock.Mock
}

func (s *stubUsecase) GetRecord(ctx context.Context, in record.GetRecordRequest) (*record.GetRecordResponse, error) {
	args := s.Called(ctx, in)
	return args.Get(0).(*record.GetRecordResponse), args.Error(1)
}

func TestSetupGRPC_RegistersRecordService(t *testing.T) {
	srv := SetupGRPC(&stubUsecase{}, zaptest.NewLogger(t), nil, nil)

	info := srv.GetServiceInfo()
	require.Contains(t, info, grpcadapter.ServiceName)

	var methods []string
	for _, m := range info[grpcadapter.ServiceName].Methods {
		methods = append(methods, m.Name)
	}
	assert.ElementsMatch(t, []string{
		"ListRecords", "GetRecord", "CreateRecord", "UpdateRecord", "DeleteRecord", "SyncRecords",
	}, methods)
}

func TestServer_ServeAndShutdown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := zaptest.NewLogger(t)

	uc := &stubUsecase{}
	uc.On("GetRecord", mock.Anything, record.GetRecordRequest{Index: 0}).
		Return(&record.GetRecordResponse{Index: 0, Record: record.Record{Name: "John Doe"}}, nil)

	router := gin.New()
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	cfg := &config.Config{}
	s := New(cfg, log, SetupGRPC(uc, log, nil, nil), router)

	grpcLis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	httpLis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	serveErr := make(chan error, 1)
	go func() { serveErr <- s.Serve(grpcLis, httpLis) }()

	resp, err := http.Get("http://" + httpLis.Addr().String() + "/ping")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	conn, err := grpc.NewClient(grpcLis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	reply, err := grpcadapter.NewRecordServiceClient(conn).GetRecord(context.Background(), &grpcadapter.GetRecordRequest{Index: 0})
	require.NoError(t, err)
	assert.Equal(t, "John Doe", reply.Record.Name)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))

	select {
	case err := <-serveErr:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("servers did not stop")
	}
}

func TestWithSignal_Cancel(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	ctx, stop := WithSignal(parent)
	defer stop()

	cancel()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not canceled with parent")
	}
}
