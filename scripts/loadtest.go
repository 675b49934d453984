//go:build ignore

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

const (
	baseURL = "http://localhost:8080"
	baseLat = 37.7749
	baseLng = -122.4194
)

type Stats struct {
	TotalRequests   int64
	SuccessRequests int64
	FailedRequests  int64
	TotalLatency    int64
	MinLatency      int64
	MaxLatency      int64
}

func newStats() *Stats {
	return &Stats{MinLatency: math.MaxInt64}
}

// record times one request and counts it as a success when the status is
// in ok.
func (s *Stats) record(req *http.Request, ok ...int) {
	start := time.Now()
	resp, err := http.DefaultClient.Do(req)
	latency := time.Since(start).Milliseconds()

	atomic.AddInt64(&s.TotalRequests, 1)
	atomic.AddInt64(&s.TotalLatency, latency)

	success := false
	if err == nil {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		for _, code := range ok {
			if resp.StatusCode == code {
				success = true
			}
		}
	}
	if !success {
		atomic.AddInt64(&s.FailedRequests, 1)
		return
	}
	atomic.AddInt64(&s.SuccessRequests, 1)

	for {
		old := atomic.LoadInt64(&s.MinLatency)
		if latency >= old || atomic.CompareAndSwapInt64(&s.MinLatency, old, latency) {
			break
		}
	}
	for {
		old := atomic.LoadInt64(&s.MaxLatency)
		if latency <= old || atomic.CompareAndSwapInt64(&s.MaxLatency, old, latency) {
			break
		}
	}
}

func main() {
	fmt.Println("Gig Marketplace Load Test")
	fmt.Println("=========================")

	fmt.Println("\n1. Creating test data...")
	clientIDs := register("CLIENT", 20)
	providerIDs := register("PROVIDER", 30)
	if len(clientIDs) == 0 || len(providerIDs) == 0 {
		log.Fatal("Failed to create test data")
	}
	fmt.Printf("Created %d clients and %d providers\n", len(clientIDs), len(providerIDs))

	fmt.Println("\n2. Testing Job Posting (200 jobs, 20 concurrent)...")
	printStats("Job Posting", run(200, 20, func(i int) *http.Request {
		req := postJSON("/jobs", map[string]interface{}{
			"title":     fmt.Sprintf("Load test gig %d", i),
			"price":     20 + rand.Intn(200),
			"clientId":  clientIDs[rand.Intn(len(clientIDs))],
			"latitude":  baseLat + (rand.Float64()-0.5)*0.2,
			"longitude": baseLng + (rand.Float64()-0.5)*0.2,
		})
		req.Header.Set("Idempotency-Key", fmt.Sprintf("load-test-job-%d-%d", i, time.Now().UnixNano()))
		return req
	}, http.StatusCreated))

	fmt.Println("\n3. Testing Nearby Search (1000 queries, 50 concurrent)...")
	printStats("Nearby Search", run(1000, 50, func(int) *http.Request {
		url := fmt.Sprintf("%s/jobs/nearby?lat=%f&lng=%f&radius=10",
			baseURL, baseLat+(rand.Float64()-0.5)*0.1, baseLng+(rand.Float64()-0.5)*0.1)
		req, _ := http.NewRequest(http.MethodGet, url, nil)
		return req
	}, http.StatusOK))

	fmt.Println("\n4. Testing Messaging (500 messages, 25 concurrent)...")
	printStats("Messaging", run(500, 25, func(i int) *http.Request {
		return postJSON("/messages", map[string]string{
			"senderId":   clientIDs[rand.Intn(len(clientIDs))],
			"receiverId": providerIDs[rand.Intn(len(providerIDs))],
			"content":    fmt.Sprintf("load test message %d", i),
		})
	}, http.StatusCreated))

	fmt.Println("\nLoad test completed!")
}

func register(role string, n int) []string {
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		body, _ := json.Marshal(map[string]string{
			"email":    fmt.Sprintf("loadtest-%s-%d-%d@example.com", role, i, rand.Intn(1000000)),
			"password": "password123",
			"name":     fmt.Sprintf("LoadTest %s %d", role, i),
			"role":     role,
		})
		resp, err := http.Post(baseURL+"/auth/register", "application/json", bytes.NewReader(body))
		if err != nil {
			continue
		}
		var result map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&result)
		resp.Body.Close()

		if id, ok := result["id"].(string); ok && resp.StatusCode == http.StatusCreated {
			ids = append(ids, id)
		}
	}
	return ids
}

func postJSON(path string, payload interface{}) *http.Request {
	body, _ := json.Marshal(payload)
	req, _ := http.NewRequest(http.MethodPost, baseURL+path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func run(numRequests, concurrency int, build func(i int) *http.Request, ok ...int) *Stats {
	stats := newStats()
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, concurrency)

	for i := 0; i < numRequests; i++ {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(i int) {
			defer wg.Done()
			defer func() { <-semaphore }()
			stats.record(build(i), ok...)
		}(i)
	}

	wg.Wait()
	return stats
}

func printStats(name string, stats *Stats) {
	avgLatency := float64(0)
	if stats.TotalRequests > 0 {
		avgLatency = float64(stats.TotalLatency) / float64(stats.TotalRequests)
	}

	fmt.Printf("\n%s Results:\n", name)
	fmt.Printf("  Total Requests:   %d\n", stats.TotalRequests)
	fmt.Printf("  Successful:       %d\n", stats.SuccessRequests)
	fmt.Printf("  Failed:           %d\n", stats.FailedRequests)
	fmt.Printf("  Success Rate:     %.2f%%\n", float64(stats.SuccessRequests)/float64(stats.TotalRequests)*100)
	fmt.Printf("  Avg Latency:      %.2f ms\n", avgLatency)
	if stats.MinLatency != math.MaxInt64 {
		fmt.Printf("  Min Latency:      %d ms\n", stats.MinLatency)
	}
	fmt.Printf("  Max Latency:      %d ms\n", stats.MaxLatency)
}
