package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"github.com/altilar-labs/microlob/pkg/wire"
)

type fakeDispatcher struct {
	events []wire.Event
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, cmd wire.Command) []wire.Event {
	return f.events
}

func startTestServer(t *testing.T, dispatcher Dispatcher) *bufconn.Listener {
	t.Helper()
	lis := bufconn.Listen(1024 * 1024)

	srv := grpclib.NewServer(grpclib.ForceServerCodec(binaryCodec{}))
	Register(srv, dispatcher)

	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	return lis
}

func dialTestServer(t *testing.T, lis *bufconn.Listener) *grpclib.ClientConn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	conn, err := grpclib.DialContext(ctx, "bufconn",
		grpclib.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.Dial()
		}),
		grpclib.WithTransportCredentials(insecure.NewCredentials()),
		grpclib.WithDefaultCallOptions(grpclib.ForceCodec(binaryCodec{})),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestDispatchRoundTripSingleEvent(t *testing.T) {
	dispatcher := &fakeDispatcher{events: []wire.Event{
		{Kind: wire.EvtAck, OrderID: 1, Price: 100, Quantity: 5},
	}}
	lis := startTestServer(t, dispatcher)
	conn := dialTestServer(t, lis)

	client := NewClient(conn)
	events, err := client.Dispatch(context.Background(), wire.Command{Kind: wire.CmdNew, OrderID: 1})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, uint64(1), events[0].OrderID)
	assert.Equal(t, int64(100), events[0].Price)
}

func TestDispatchRoundTripMultipleEvents(t *testing.T) {
	dispatcher := &fakeDispatcher{events: []wire.Event{
		{Kind: wire.EvtFill, OrderID: 2, CounterID: 1, Quantity: 3},
		{Kind: wire.EvtAck, OrderID: 2, Quantity: 2},
	}}
	lis := startTestServer(t, dispatcher)
	conn := dialTestServer(t, lis)

	client := NewClient(conn)
	events, err := client.Dispatch(context.Background(), wire.Command{Kind: wire.CmdNew, OrderID: 2})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, wire.EvtFill, events[0].Kind)
	assert.Equal(t, wire.EvtAck, events[1].Kind)
}

func TestDispatchRoundTripNoEvents(t *testing.T) {
	dispatcher := &fakeDispatcher{events: nil}
	lis := startTestServer(t, dispatcher)
	conn := dialTestServer(t, lis)

	client := NewClient(conn)
	events, err := client.Dispatch(context.Background(), wire.Command{Kind: wire.CmdCancel, OrderID: 3})
	require.NoError(t, err)
	assert.Empty(t, events)
}
