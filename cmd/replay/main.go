// Command replay drives a running engine process with a synthetic order
// tape captured on a Kafka topic, the way cmd/loadtest drove the
// teacher's order book service over gRPC, but sourcing its commands from
// a durable tape instead of generating them in-process, and reporting
// dispatch latency percentiles instead of just a pass/fail error count.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/fatih/color"
	kafka "github.com/segmentio/kafka-go"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"golang.org/x/time/rate"

	"github.com/altilar-labs/microlob/pkg/gateway/grpc"
	"github.com/altilar-labs/microlob/pkg/latency"
	"github.com/altilar-labs/microlob/pkg/wire"
)

func main() {
	addr := flag.String("addr", "localhost:50051", "engine gRPC address")
	brokers := flag.String("kafka-brokers", "localhost:9092", "comma-separated Kafka brokers")
	topic := flag.String("kafka-topic", "microlob-replay-tape", "Kafka topic holding the command tape")
	seed := flag.Int("seed", 0, "if > 0, synthesize this many commands onto the tape before replaying")
	rps := flag.Float64("rps", 50000, "commands per second")
	queueDepth := flag.Int("queue", 4096, "consumer/sender ring depth (power of two)")
	flag.Parse()

	brokerList := strings.Split(*brokers, ",")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		log.Println("interrupted, stopping replay")
		cancel()
	}()

	if *seed > 0 {
		if err := seedTape(ctx, brokerList, *topic, *seed); err != nil {
			log.Fatalf("seed tape: %v", err)
		}
		log.Printf("seeded %d commands onto topic %q", *seed, *topic)
	}

	conn, err := grpclib.NewClient(*addr,
		grpclib.WithTransportCredentials(insecure.NewCredentials()),
		grpclib.WithDefaultCallOptions(grpclib.ForceCodec(grpc.Codec())),
	)
	if err != nil {
		log.Fatalf("dial engine: %v", err)
	}
	defer conn.Close()

	client := grpc.NewClient(conn)
	recorder := latency.NewRecorder(int64(time.Second), 3)

	queue := newRingBuffer(*queueDepth)
	go consumeTape(ctx, brokerList, *topic, *seed, queue)

	limiter := rate.NewLimiter(rate.Limit(*rps), int(*rps)/10+1)
	sent := sendLoop(ctx, client, queue, limiter, recorder)

	printReport(sent, recorder.Snapshot())
}

// seedTape synthesizes count random New-order commands and writes them
// to the tape topic as fixed-size binary records, so a fresh cluster has
// something to replay without a separately captured production tape.
func seedTape(ctx context.Context, brokers []string, topic string, count int) error {
	writer := &kafka.Writer{
		Addr:  kafka.TCP(brokers...),
		Topic: topic,
	}
	defer writer.Close()

	r := rand.New(rand.NewSource(1))
	msgs := make([]kafka.Message, 0, count)
	for i := 0; i < count; i++ {
		side := uint8(0)
		if r.Float64() < 0.5 {
			side = 1
		}
		cmd := wire.Command{
			Kind:      wire.CmdNew,
			OrderType: 0, // Limit
			Side:      side,
			OrderID:   uint64(i + 1),
			Price:     100 + int64(r.Intn(20)-10),
			Quantity:  uint64(1 + r.Intn(50)),
		}
		data, err := cmd.MarshalBinary()
		if err != nil {
			return err
		}
		msgs = append(msgs, kafka.Message{Value: data})
	}

	return writer.WriteMessages(ctx, msgs...)
}

// consumeTape reads exactly expectCount binary command records (or until
// ctx is cancelled if expectCount is 0, meaning "replay whatever is
// already on the topic") off topic and feeds them into q.
func consumeTape(ctx context.Context, brokers []string, topic string, expectCount int, q *ringBuffer) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: "microlob-replay",
	})
	defer reader.Close()
	defer q.Close()

	read := 0
	for expectCount == 0 || read < expectCount {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			return
		}

		var cmd wire.Command
		if err := cmd.UnmarshalBinary(msg.Value); err != nil {
			log.Printf("skipping malformed tape record: %v", err)
			continue
		}

		for !q.TryPush(cmd) {
			select {
			case <-ctx.Done():
				return
			default:
			}
		}
		read++
	}
}

func sendLoop(ctx context.Context, client *grpc.Client, q *ringBuffer, limiter *rate.Limiter, recorder *latency.Recorder) int {
	sent := 0
	for {
		cmd, ok := q.Pop(ctx)
		if !ok {
			return sent
		}
		if err := limiter.Wait(ctx); err != nil {
			return sent
		}

		start := time.Now()
		if _, err := client.Dispatch(ctx, cmd); err != nil {
			log.Printf("dispatch error: %v", err)
			continue
		}
		recorder.Record(time.Since(start))
		sent++

		if sent%10000 == 0 {
			log.Printf("sent %d commands", sent)
		}
	}
}

func printReport(sent int, snap latency.Snapshot) {
	bold := color.New(color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()

	fmt.Println(bold("replay complete"))
	fmt.Printf("  commands sent : %s\n", green(fmt.Sprintf("%d", sent)))
	fmt.Printf("  p50 latency   : %v\n", snap.P50)
	fmt.Printf("  p90 latency   : %v\n", snap.P90)
	fmt.Printf("  p99 latency   : %v\n", snap.P99)
	fmt.Printf("  p99.9 latency : %v\n", snap.P999)
	fmt.Printf("  max latency   : %v\n", snap.Max)
}
