// loadgen drives traffic against a running loglab instance so the
// pipeline can be watched under load. Disposable tooling, not part of
// the pipeline itself.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// weighted route table, roughly matching real traffic: mostly reads,
// occasional failures.
var routes = []struct {
	path   string
	weight int
}{
	{"/", 1},
	{"/ping", 1},
	{"/items/%d", 3},
	{"/external-api", 3},
	{"/exception", 2},
	{"/invalid", 1},
}

func pickRoute(rng *rand.Rand) string {
	total := 0
	for _, rt := range routes {
		total += rt.weight
	}
	n := rng.Intn(total)
	for _, rt := range routes {
		if n < rt.weight {
			if rt.path == "/items/%d" {
				return fmt.Sprintf(rt.path, rng.Intn(10))
			}
			return rt.path
		}
		n -= rt.weight
	}
	return "/"
}

func main() {
	target := flag.String("target", "http://localhost:8000", "Base URL of the loglab server")
	users := flag.Int("users", 10, "Concurrent workers")
	duration := flag.Duration("duration", 30*time.Second, "How long to run")
	flag.Parse()

	client := &http.Client{Timeout: 15 * time.Second}
	deadline := time.Now().Add(*duration)

	var requests, failures int64
	var wg sync.WaitGroup
	for i := 0; i < *users; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for time.Now().Before(deadline) {
				resp, err := client.Get(*target + pickRoute(rng))
				atomic.AddInt64(&requests, 1)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				} else {
					resp.Body.Close()
				}
				time.Sleep(time.Duration(100+rng.Intn(400)) * time.Millisecond)
			}
		}(int64(i) + time.Now().UnixNano())
	}
	wg.Wait()

	log.Printf("loadgen finished: %d requests, %d transport failures", requests, failures)
}
