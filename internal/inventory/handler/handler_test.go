package handler

import (
	"context"
	"net"
	"path/filepath"
	"testing"

	"github.com/fekuna/omnipos-stock-service/internal/inventory/repository"
	"github.com/fekuna/omnipos-stock-service/internal/inventory/usecase"
	"github.com/fekuna/omnipos-stock-service/pkg/database"
	"github.com/fekuna/omnipos-stock-service/pkg/logger"
	"github.com/fekuna/omnipos-stock-service/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

const bufSize = 1024 * 1024

func newTestClient(t *testing.T) *InventoryServiceClient {
	t.Helper()

	db, err := database.NewSQLite(&database.SQLiteConfig{Path: filepath.Join(t.TempDir(), "inventory.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, repository.Migrate(context.Background(), db))

	log := logger.NewNop()
	uc := usecase.NewInventoryUseCase(repository.NewSQLRepository(db), nil, nil, log)

	lis := bufconn.Listen(bufSize)
	srv := grpc.NewServer(grpc.UnaryInterceptor(middleware.ContextInterceptor(log)))
	RegisterInventoryServiceServer(srv, NewInventoryHandler(uc, log))
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return NewInventoryServiceClient(conn)
}

func call(t *testing.T, c *InventoryServiceClient, method string, req map[string]interface{}) (*structpb.Struct, error) {
	t.Helper()
	in, err := structpb.NewStruct(req)
	require.NoError(t, err)
	return c.Call(context.Background(), method, in)
}

func mustCall(t *testing.T, c *InventoryServiceClient, method string, req map[string]interface{}) map[string]interface{} {
	t.Helper()
	out, err := call(t, c, method, req)
	require.NoError(t, err)
	return out.AsMap()
}

func TestAddAndRemoveStock(t *testing.T) {
	c := newTestClient(t)

	mustCall(t, c, MethodAddStock, map[string]interface{}{"category": "red", "attribute_value": 50, "quantity": 10})
	added := mustCall(t, c, MethodAddStock, map[string]interface{}{"category": "red", "attribute_value": 50, "quantity": 5})
	assert.Equal(t, 15.0, added["quantity"])

	removed := mustCall(t, c, MethodRemoveStock, map[string]interface{}{"category": "red", "attribute_value": 50, "quantity": 15})
	assert.Equal(t, 0.0, removed["quantity"])
	assert.Equal(t, added["id"], removed["id"])
}

func TestErrorCodes(t *testing.T) {
	c := newTestClient(t)
	mustCall(t, c, MethodAddStock, map[string]interface{}{"category": "red", "attribute_value": 50, "quantity": 10})
	blue := mustCall(t, c, MethodAddStock, map[string]interface{}{"category": "blue", "attribute_value": 20, "quantity": 1})

	tests := []struct {
		name   string
		method string
		req    map[string]interface{}
		want   codes.Code
	}{
		{name: "attribute out of range", method: MethodAddStock, req: map[string]interface{}{"category": "red", "attribute_value": 101, "quantity": 1}, want: codes.InvalidArgument},
		{name: "missing category", method: MethodAddStock, req: map[string]interface{}{"attribute_value": 50, "quantity": 1}, want: codes.InvalidArgument},
		{name: "fractional quantity", method: MethodAddStock, req: map[string]interface{}{"category": "red", "attribute_value": 50, "quantity": 1.5}, want: codes.InvalidArgument},
		{name: "insufficient stock", method: MethodRemoveStock, req: map[string]interface{}{"category": "red", "attribute_value": 50, "quantity": 20}, want: codes.FailedPrecondition},
		{name: "remove missing identity", method: MethodRemoveStock, req: map[string]interface{}{"category": "green", "attribute_value": 50, "quantity": 1}, want: codes.NotFound},
		{name: "correct missing id", method: MethodCorrectStock, req: map[string]interface{}{"id": "nope", "category": "red", "attribute_value": 50, "quantity": 1}, want: codes.NotFound},
		{name: "correct onto taken identity", method: MethodCorrectStock, req: map[string]interface{}{"id": blue["id"], "category": "red", "attribute_value": 50, "quantity": 1}, want: codes.AlreadyExists},
		{name: "unknown sort key", method: MethodListStock, req: map[string]interface{}{"sort_by": "quantity_asc"}, want: codes.InvalidArgument},
		{name: "malformed batch", method: MethodImportBatch, req: map[string]interface{}{"content": "red;50;1"}, want: codes.InvalidArgument},
		{name: "unknown movement type", method: MethodListMovements, req: map[string]interface{}{"movement_type": "theft"}, want: codes.InvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := call(t, c, tt.method, tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.want, status.Code(err), err.Error())
		})
	}
}

func TestListAndCountStock(t *testing.T) {
	c := newTestClient(t)
	for _, attr := range []float64{75, 80, 50} {
		mustCall(t, c, MethodAddStock, map[string]interface{}{"category": "red", "attribute_value": attr, "quantity": 100})
	}

	list := mustCall(t, c, MethodListStock, map[string]interface{}{
		"min_attribute_value": 50,
		"max_attribute_value": 75,
		"sort_by":             "attribute_asc",
	})
	items := list["items"].([]interface{})
	require.Len(t, items, 2)
	assert.Equal(t, 50.0, items[0].(map[string]interface{})["attribute_value"])
	assert.Equal(t, 75.0, items[1].(map[string]interface{})["attribute_value"])

	count := mustCall(t, c, MethodCountStock, map[string]interface{}{"category": "red"})
	assert.Equal(t, 300.0, count["count"])
}

func TestImportBatchAndMovements(t *testing.T) {
	c := newTestClient(t)

	out := mustCall(t, c, MethodImportBatch, map[string]interface{}{
		"name":    "delivery.csv",
		"content": "red,50.0,100\nred,50.0,50\n",
	})
	items := out["items"].([]interface{})
	require.Len(t, items, 1)
	rec := items[0].(map[string]interface{})
	assert.Equal(t, 150.0, rec["quantity"])

	movements := mustCall(t, c, MethodListMovements, map[string]interface{}{"record_id": rec["id"], "movement_type": "import"})
	list := movements["items"].([]interface{})
	require.Len(t, list, 2)
	assert.Equal(t, "delivery.csv", list[0].(map[string]interface{})["reference"])
}

func TestCorrectStock(t *testing.T) {
	c := newTestClient(t)
	rec := mustCall(t, c, MethodAddStock, map[string]interface{}{"category": "red", "attribute_value": 50, "quantity": 10})

	got := mustCall(t, c, MethodCorrectStock, map[string]interface{}{"id": rec["id"], "category": "blue", "attribute_value": 30, "quantity": 2})

	assert.Equal(t, "blue", got["category"])
	assert.Equal(t, 30.0, got["attribute_value"])
	assert.Equal(t, 2.0, got["quantity"])
}
