package grpc

import (
	"context"

	grpclib "google.golang.org/grpc"

	"github.com/altilar-labs/microlob/pkg/wire"
)

// Dispatcher is the engine-side seam this gateway talks to. It is
// satisfied by a thin adapter around core.MatchingEngine that translates
// wire.Command into the engine's New/Cancel/Replace calls and the
// resulting core.Event slice back into wire.Event — the gateway itself
// never imports core, keeping the wire format the only thing shared
// across the process boundary.
type Dispatcher interface {
	Dispatch(ctx context.Context, cmd wire.Command) []wire.Event
}

// serviceName is used both as the ServiceDesc.ServiceName and as the
// single method's fully-qualified path.
const (
	serviceName   = "microlob.engine.v1.Engine"
	methodDispatch = "Dispatch"
)

// server implements the handwritten service against a Dispatcher.
type server struct {
	dispatcher Dispatcher
}

// NewServer wraps dispatcher as a registrable gRPC service.
func NewServer(dispatcher Dispatcher) *server {
	return &server{dispatcher: dispatcher}
}

// Dispatch satisfies the Dispatcher interface named by ServiceDesc's
// HandlerType, forwarding to the wrapped dispatcher.
func (s *server) Dispatch(ctx context.Context, cmd wire.Command) []wire.Event {
	return s.dispatcher.Dispatch(ctx, cmd)
}

// dispatchStreamHandler backs the service's one RPC: the client sends a
// single wire.Command and the server streams back every wire.Event that
// command produced (one message for a Cancel/Reject, N Fills followed by
// an Ack if a remainder rests for a marketable New), then closes the
// stream.
func dispatchStreamHandler(srv interface{}, stream grpclib.ServerStream) error {
	s := srv.(*server)

	var cmd wire.Command
	if err := stream.RecvMsg(&cmd); err != nil {
		return err
	}

	events := s.dispatcher.Dispatch(stream.Context(), cmd)
	for i := range events {
		if err := stream.SendMsg(&events[i]); err != nil {
			return err
		}
	}
	return nil
}

// ServiceDesc is the hand-authored replacement for what protoc would
// otherwise generate. It is registered directly with a *grpc.Server via
// RegisterService, and callers must Dial/Serve with grpc.ForceCodec(the
// codec registered in codec.go) since there is no generated Go client
// stub to do that for them.
var ServiceDesc = grpclib.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*Dispatcher)(nil),
	Methods:     []grpclib.MethodDesc{},
	Streams: []grpclib.StreamDesc{
		{
			StreamName:    methodDispatch,
			Handler:       dispatchStreamHandler,
			ServerStreams: true,
			ClientStreams: false,
		},
	},
	Metadata: "pkg/gateway/grpc/service.go",
}

// Register attaches the engine gateway service to grpcServer.
func Register(grpcServer *grpclib.Server, dispatcher Dispatcher) {
	grpcServer.RegisterService(&ServiceDesc, NewServer(dispatcher))
}
