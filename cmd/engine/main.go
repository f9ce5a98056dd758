package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"lobengine/book"
	"lobengine/internal/feed"
	"lobengine/internal/journal"
	"lobengine/internal/metrics"
	"lobengine/ring"
	"lobengine/update"
)

func main() {
	var (
		brokers     = flag.String("brokers", "localhost:9092", "comma-separated Kafka broker list")
		topic       = flag.String("topic", "market-updates", "Kafka topic carrying wire-format updates")
		group       = flag.String("group", "lobengine", "Kafka consumer group id")
		journalDir  = flag.String("journal-dir", "./journal", "pebble directory for the audit journal")
		metricsAddr = flag.String("metrics-addr", ":9100", "address to serve /metrics on")
		tickerID    = flag.Uint("ticker-id", 0, "instrument id this engine instance books")
		ringSize    = flag.Uint64("ring-size", 1<<16, "SPSC ring capacity, must be a power of two")
	)
	flag.Parse()

	m, promReg := metrics.New()

	j, err := journal.Open(*journalDir)
	if err != nil {
		log.Fatalf("engine: journal init failed: %v", err)
	}
	defer j.Close()

	r := ring.New[update.Wire](*ringSize)
	b := book.New(book.Config{
		TickerID: uint32(*tickerID),
		Policy:   book.PolicyDropAndReport,
	})

	consumer, err := feed.New(strings.Split(*brokers, ","), *group, *topic, r, m)
	if err != nil {
		log.Fatalf("engine: feed init failed: %v", err)
	}
	defer consumer.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
			log.Printf("engine: feed consumer exited: %v", err)
		}
	}()

	go runApplyLoop(ctx, b, r, j, m)

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(promReg))
	srv := &http.Server{Addr: *metricsAddr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("engine: metrics server exited: %v", err)
		}
	}()

	log.Printf("engine: running, ticker=%d metrics=%s", *tickerID, *metricsAddr)
	<-ctx.Done()
	log.Println("engine: shutting down")
	_ = srv.Close()
	os.Exit(0)
}

// runApplyLoop is the book's single apply-thread: it dequeues wire
// records from the ring, applies each to the book, appends it to the
// audit journal, and publishes the refreshed metrics. It is the only
// goroutine that ever touches b.
func runApplyLoop(ctx context.Context, b *book.Book, r *ring.Ring[update.Wire], j *journal.Journal, m *metrics.Registry) {
	for {
		if ctx.Err() != nil {
			return
		}

		slot, ok := r.NextReadSlot()
		if !ok {
			continue
		}
		w := *slot
		r.CommitRead()

		if err := b.Apply(w.Update); err != nil {
			m.MalformedUpdates.Inc()
			log.Printf("engine: dropped malformed update seq=%d: %v", w.SeqNum, err)
			continue
		}
		m.UpdatesApplied.Inc()

		if err := j.Append(w.SeqNum, w.Update); err != nil {
			log.Printf("engine: journal append failed for seq=%d: %v", w.SeqNum, err)
		}

		bbo := b.BBO()
		m.BBOBidPrice.Set(float64(bbo.BidPrice))
		m.BBOAskPrice.Set(float64(bbo.AskPrice))
		m.OrderPoolLive.Set(float64(b.OrderPoolLive()))
		m.LevelPoolLive.Set(float64(b.LevelPoolLive()))
		m.RingOccupancy.Set(float64(r.Size()))
	}
}
