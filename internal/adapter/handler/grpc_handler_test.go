package handler

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

const bufSize = 1024 * 1024

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
		goleak.IgnoreTopFunction("google.golang.org/grpc/internal/transport.(*controlBuffer).get"),
	)
}

func newTestClient(t *testing.T) (*RegisterClient, *grpc.ClientConn) {
	t.Helper()

	listener := bufconn.Listen(bufSize)
	server := grpc.NewServer(grpc.UnaryInterceptor(UnaryLoggingInterceptor(zaptest.NewLogger(t))))
	RegisterRegisterServer(server, NewGRPCHandler(newTestRegister(t)))
	healthpb.RegisterHealthServer(server, health.NewServer())

	go func() {
		server.Serve(listener)
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		conn.Close()
		server.GracefulStop()
		listener.Close()
	})

	return NewRegisterClient(conn), conn
}

func TestGRPC_CheckoutFlow(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	products, err := client.ListProducts(ctx, &ListProductsRequest{Category: "Shirts"})
	require.NoError(t, err)
	require.Len(t, products.Products, 2)

	categories, err := client.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Shirts", "Pants", "Accessories"}, categories.Categories)

	_, err = client.AddItem(ctx, &AddItemRequest{ProductID: 1})
	require.NoError(t, err)
	_, err = client.AddItem(ctx, &AddItemRequest{ProductID: 2})
	require.NoError(t, err)

	cart, err := client.SetDiscount(ctx, &SetDiscountRequest{Discount: "10"})
	require.NoError(t, err)
	assert.Equal(t, "58.50", cart.Totals.Total)

	order, err := client.CommitOrder(ctx, &CommitOrderRequest{RequestID: "req-1"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), order.ID)
	assert.Equal(t, "65.00", order.Subtotal)
	assert.Equal(t, "6.50", order.DiscountAmount)
	assert.Len(t, order.Items, 2)

	cart, err = client.GetCart(ctx)
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
	assert.Empty(t, cart.Discount)

	got, err := client.GetOrder(ctx, &GetOrderRequest{ID: 1})
	require.NoError(t, err)
	assert.Equal(t, order.Total, got.Total)

	orders, err := client.ListOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, orders.Orders, 1)
}

func TestGRPC_ErrorCodes(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	_, err := client.CommitOrder(ctx, &CommitOrderRequest{})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	_, err = client.AddItem(ctx, &AddItemRequest{ProductID: 42})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = client.RemoveItem(ctx, &RemoveItemRequest{Index: 0})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = client.GetOrder(ctx, &GetOrderRequest{ID: 1})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = client.RegisterCustomer(ctx, &RegisterCustomerRequest{Name: "Ada"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.AddItem(ctx, &AddItemRequest{ProductID: 3})
	require.NoError(t, err)
	_, err = client.CommitOrder(ctx, &CommitOrderRequest{RequestID: "dup"})
	require.NoError(t, err)
	_, err = client.AddItem(ctx, &AddItemRequest{ProductID: 3})
	require.NoError(t, err)
	_, err = client.CommitOrder(ctx, &CommitOrderRequest{RequestID: "dup"})
	assert.Equal(t, codes.AlreadyExists, status.Code(err))
}

func TestGRPC_Customers(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	customer, err := client.RegisterCustomer(ctx, &RegisterCustomerRequest{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "C001", customer.ID)

	_, err = client.AddItem(ctx, &AddItemRequest{ProductID: 2})
	require.NoError(t, err)
	discount := "25"
	order, err := client.CommitOrder(ctx, &CommitOrderRequest{CustomerID: customer.ID, Discount: &discount})
	require.NoError(t, err)
	assert.Equal(t, "C001", order.CustomerID)
	assert.Equal(t, "25", order.DiscountPercent)
	assert.Equal(t, "30.00", order.Total)

	customers, err := client.ListCustomers(ctx)
	require.NoError(t, err)
	assert.Len(t, customers.Customers, 1)

	_, err = client.ClearCart(ctx)
	require.NoError(t, err)
}

func TestGRPC_HealthCheck(t *testing.T) {
	_, conn := newTestClient(t)

	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
}
