package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"golang.org/x/time/rate"
)

// simulate fires a batch of verification attempts at a running instance and
// prints the outcome tally plus the resulting carrier ranking.

type counters struct {
	verified     atomic.Int64
	unsuccessful atomic.Int64
	noCarriers   atomic.Int64
	failed       atomic.Int64
}

func main() {
	var (
		addr     = flag.String("addr", "http://localhost:5000", "Base URL of a running verification API")
		attempts = flag.Int("attempts", 1000, "Number of verification attempts to fire")
		workers  = flag.Int("workers", 16, "Concurrent workers")
		rps      = flag.Float64("rate", 0, "Target attempts per second (0 means unthrottled)")
	)
	flag.Parse()

	if *attempts <= 0 || *workers <= 0 {
		log.Fatalf("attempts and workers must be positive")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runID := uuid.New().String()
	fmt.Printf("run %s: %d attempts against %s (%d workers)\n", runID, *attempts, *addr, *workers)

	client := &http.Client{Timeout: 10 * time.Second}

	var limiter *rate.Limiter
	if *rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(*rps), *workers)
	}

	pool, err := ants.NewPool(*workers, ants.WithNonblocking(false))
	if err != nil {
		log.Fatalf("Failed to create worker pool: %v", err)
	}
	defer pool.Release()

	var tally counters
	var wg sync.WaitGroup

	start := time.Now()
	for i := 0; i < *attempts; i++ {
		if ctx.Err() != nil {
			break
		}
		seq := i
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			if limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					return
				}
			}
			fire(ctx, client, *addr, runID, seq, &tally)
		}); err != nil {
			wg.Done()
			log.Fatalf("Failed to submit attempt: %v", err)
		}
	}
	wg.Wait()
	elapsed := time.Since(start)

	total := tally.verified.Load() + tally.unsuccessful.Load() + tally.noCarriers.Load() + tally.failed.Load()
	fmt.Printf("\n%d attempts in %s (%.1f/s)\n", total, elapsed.Round(time.Millisecond), float64(total)/elapsed.Seconds())
	fmt.Printf("  verified      %d\n", tally.verified.Load())
	fmt.Printf("  unsuccessful  %d\n", tally.unsuccessful.Load())
	fmt.Printf("  no carriers   %d\n", tally.noCarriers.Load())
	fmt.Printf("  errors        %d\n", tally.failed.Load())

	if err := printRanking(ctx, client, *addr); err != nil {
		log.Fatalf("Failed to fetch ranking: %v", err)
	}
}

// fire posts one verification attempt and buckets the outcome.
func fire(ctx context.Context, client *http.Client, addr, runID string, seq int, tally *counters) {
	number := fmt.Sprintf("+1500555%04d", rand.IntN(10000))
	payload, err := json.Marshal(map[string]interface{}{
		"number": number,
		"time":   time.Now().UnixMilli(),
	})
	if err != nil {
		tally.failed.Add(1)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, addr+"/", bytes.NewReader(payload))
	if err != nil {
		tally.failed.Add(1)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", fmt.Sprintf("%s-%06d", runID, seq))

	resp, err := client.Do(req)
	if err != nil {
		tally.failed.Add(1)
		return
	}
	defer resp.Body.Close()

	var body struct {
		Token string `json:"token"`
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		tally.failed.Add(1)
		return
	}

	switch {
	case resp.StatusCode == http.StatusOK && body.Token != "":
		tally.verified.Add(1)
	case resp.StatusCode == http.StatusOK:
		tally.unsuccessful.Add(1)
	case resp.StatusCode == http.StatusServiceUnavailable:
		tally.noCarriers.Add(1)
	default:
		tally.failed.Add(1)
	}
}

// printRanking fetches /rank and renders the pair list as a table.
func printRanking(ctx context.Context, client *http.Client, addr string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr+"/rank", nil)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("rank endpoint returned %s", resp.Status)
	}

	var ranking [][2]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&ranking); err != nil {
		return err
	}

	fmt.Println("\ncarrier ranking (mean step weight, best first):")
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "  #\tcarrier\tscore")
	for i, pair := range ranking {
		fmt.Fprintf(w, "  %d\t%v\t%v\n", i+1, pair[0], pair[1])
	}
	return w.Flush()
}
