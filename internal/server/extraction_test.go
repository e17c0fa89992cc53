package server

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/po-tracker/internal/catalog"
	"github.com/joseph-ayodele/po-tracker/internal/common"
	"github.com/joseph-ayodele/po-tracker/internal/extract"
	"github.com/joseph-ayodele/po-tracker/internal/partnumber"
	"github.com/joseph-ayodele/po-tracker/internal/record"
	"github.com/joseph-ayodele/po-tracker/internal/repository"
)

const poText = `Production Order: 123456789
PART NUMBER 157710-30 OP 20
10.00 EA 09/03/2025
Q1 Q15
`

type harness struct {
	client *Client
	conn   *grpc.ClientConn
}

func newHarness(t *testing.T, withRepo bool) *harness {
	t.Helper()
	resolver := partnumber.NewResolver(catalog.New([]string{"157710-30*OP10"}), nil)
	ext, err := extract.New(extract.DefaultConfig(), resolver, nil, nil,
		extract.WithClock(func() time.Time { return time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC) }))
	require.NoError(t, err)

	var repo repository.RecordRepository
	if withRepo {
		repo, err = repository.Open(context.Background(), common.DatabaseConfig{Driver: repository.DriverSQLite, DSN: ":memory:"}, nil)
		require.NoError(t, err)
		t.Cleanup(func() { _ = repo.Close() })
	}

	svc := NewExtractionService(record.NewAssembler(ext, nil, nil), resolver, repo, nil)
	srv, _ := New(svc, nil)

	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return &harness{client: NewClient(conn), conn: conn}
}

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return s
}

func TestExtract(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()

	resp, err := h.client.Extract(ctx, mustStruct(t, map[string]any{"text": poText, "source": "po-1.txt"}))
	require.NoError(t, err)

	rec := resp.GetFields()["record"].GetStructValue()
	require.NotNil(t, rec)
	assert.Equal(t, "123456789", rec.GetFields()["production_order"].GetStringValue())
	assert.Equal(t, float64(10), rec.GetFields()["quantity"].GetNumberValue())
	assert.Equal(t, "09/03/2025", rec.GetFields()["dock_date"].GetStringValue())
	_, hasID := resp.GetFields()["id"]
	assert.False(t, hasID)

	analysis := rec.GetFields()["quality_clauses_analysis"].GetStructValue()
	require.NotNil(t, analysis)
	assert.True(t, analysis.GetFields()["action_required"].GetBoolValue())
}

func TestExtractErrors(t *testing.T) {
	h := newHarness(t, false)
	tests := []struct {
		name string
		req  map[string]any
		code codes.Code
	}{
		{name: "missing text", req: map[string]any{}, code: codes.InvalidArgument},
		{name: "blank text", req: map[string]any{"text": "  \n "}, code: codes.InvalidArgument},
		{name: "store without repository", req: map[string]any{"text": poText, "store": true}, code: codes.FailedPrecondition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.client.Extract(context.Background(), mustStruct(t, tt.req))
			require.Error(t, err)
			assert.Equal(t, tt.code, status.Code(err))
		})
	}
}

func TestExtractStoreAndGet(t *testing.T) {
	h := newHarness(t, true)
	ctx := metadata.AppendToOutgoingContext(context.Background(), requestIDHeader, "req-42")

	resp, err := h.client.Extract(ctx, mustStruct(t, map[string]any{"text": poText, "source": "po-1.txt", "store": true}))
	require.NoError(t, err)
	id := resp.GetFields()["id"].GetStringValue()
	_, err = uuid.Parse(id)
	require.NoError(t, err)

	got, err := h.client.GetRecord(ctx, mustStruct(t, map[string]any{"id": id}))
	require.NoError(t, err)
	assert.Equal(t, id, got.GetFields()["id"].GetStringValue())
	assert.Equal(t, "po-1.txt", got.GetFields()["source"].GetStringValue())
	rec := got.GetFields()["record"].GetStructValue()
	require.NotNil(t, rec)
	assert.Equal(t, "123456789", rec.GetFields()["production_order"].GetStringValue())
}

func TestGetRecordErrors(t *testing.T) {
	tests := []struct {
		name     string
		withRepo bool
		id       string
		code     codes.Code
	}{
		{name: "no repository", withRepo: false, id: uuid.NewString(), code: codes.FailedPrecondition},
		{name: "bad id", withRepo: true, id: "not-a-uuid", code: codes.InvalidArgument},
		{name: "unknown id", withRepo: true, id: uuid.NewString(), code: codes.NotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.withRepo)
			_, err := h.client.GetRecord(context.Background(), mustStruct(t, map[string]any{"id": tt.id}))
			require.Error(t, err)
			assert.Equal(t, tt.code, status.Code(err))
		})
	}
}

func TestResolvePartNumber(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()

	resp, err := h.client.ResolvePartNumber(ctx, mustStruct(t, map[string]any{"part_number": "157710-30*OP20"}))
	require.NoError(t, err)
	res := resp.GetFields()["result"].GetStructValue()
	require.NotNil(t, res)
	assert.Equal(t, "157710-30*OP20", res.GetFields()["value"].GetStringValue())
	assert.Equal(t, string(partnumber.MethodExact), res.GetFields()["method"].GetStringValue())
	assert.Equal(t, float64(1), res.GetFields()["confidence"].GetNumberValue())
	assert.NotNil(t, resp.GetFields()["suggestions"].GetListValue())

	_, err = h.client.ResolvePartNumber(ctx, mustStruct(t, map[string]any{}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestHealth(t *testing.T) {
	h := newHarness(t, false)
	resp, err := healthpb.NewHealthClient(h.conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}

func TestServiceInfo(t *testing.T) {
	srv, _ := New(NewExtractionService(nil, nil, nil, nil), nil)
	info, ok := srv.GetServiceInfo()[ServiceName]
	require.True(t, ok)
	assert.Nil(t, info.Metadata)

	var names []string
	for _, m := range info.Methods {
		names = append(names, m.Name)
	}
	assert.ElementsMatch(t, []string{"Extract", "GetRecord", "ResolvePartNumber"}, names)
}
