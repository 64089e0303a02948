package grpc

import (
	"context"
	"errors"
	"fmt"
	"io"

	grpclib "google.golang.org/grpc"

	"github.com/altilar-labs/microlob/pkg/wire"
)

// Client is a minimal hand-written stub for the engine gateway service,
// standing in for what protoc-gen-go-grpc would otherwise generate.
type Client struct {
	conn *grpclib.ClientConn
}

// NewClient wraps an already-established connection. Dial conn with
// grpclib.WithDefaultCallOptions(grpclib.ForceCodec(binaryCodec{})) so
// every call on it uses the binary codec instead of the default proto
// one.
func NewClient(conn *grpclib.ClientConn) *Client {
	return &Client{conn: conn}
}

// Dispatch sends cmd and collects every wire.Event the engine emits in
// response before the server closes the stream.
func (c *Client) Dispatch(ctx context.Context, cmd wire.Command) ([]wire.Event, error) {
	streamDesc := &ServiceDesc.Streams[0]
	fullMethod := fmt.Sprintf("/%s/%s", serviceName, methodDispatch)

	stream, err := c.conn.NewStream(ctx, streamDesc, fullMethod, grpclib.ForceCodec(binaryCodec{}))
	if err != nil {
		return nil, fmt.Errorf("grpc: open dispatch stream: %w", err)
	}

	if err := stream.SendMsg(&cmd); err != nil {
		return nil, fmt.Errorf("grpc: send command: %w", err)
	}
	if err := stream.CloseSend(); err != nil {
		return nil, fmt.Errorf("grpc: close send: %w", err)
	}

	var events []wire.Event
	for {
		var ev wire.Event
		if err := stream.RecvMsg(&ev); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return events, err
		}
		events = append(events, ev)
	}
	return events, nil
}
