// Package main provides a load tool for the live like state WebSocket stream.
// Employer watchers subscribe to /api/ws/likes while the maker toggles the like.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
)

// Metrics tracks the test results
type Metrics struct {
	ConnectionsAttempted int64
	ConnectionsSuccess   int64
	ConnectionsFailed    int64
	TogglesSent          int64
	EventsReceived       int64
	Errors               int64
}

var metrics Metrics

type session struct {
	Token string
	User  struct {
		ID uint `json:"id"`
	}
}

var httpClient = &http.Client{Timeout: 5 * time.Second}

func main() {
	host := flag.String("host", "localhost:8375", "API server host")
	employerEmail := flag.String("employer", "employer@whvmatch.dev", "Employer account email")
	makerEmail := flag.String("maker", "maker@whvmatch.dev", "Maker account email")
	password := flag.String("password", "Password123!", "Password of both accounts")
	jobID := flag.Uint("job", 0, "Job post ID owned by the employer")
	watchers := flag.Int("watchers", 50, "Number of concurrent like stream watchers")
	interval := flag.Duration("interval", time.Second, "Delay between like toggles")
	duration := flag.Duration("duration", 30*time.Second, "Test duration")
	flag.Parse()

	if *jobID == 0 {
		log.Fatal("-job is required")
	}

	log.Printf("🚀 Starting Like Stream Load Test")
	log.Printf("Target: %s", *host)
	log.Printf("Watchers: %d", *watchers)
	log.Printf("Duration: %v", *duration)

	employer, err := login(*host, *employerEmail, *password)
	if err != nil {
		log.Fatalf("❌ Employer login failed: %v", err)
	}
	maker, err := login(*host, *makerEmail, *password)
	if err != nil {
		log.Fatalf("❌ Maker login failed: %v", err)
	}
	log.Printf("✅ Logged in as employer %d and maker %d", employer.User.ID, maker.User.ID)

	// The employer likes first so each maker toggle flips the stream between liked and mutual.
	if err := sendLike(*host, employer.Token, http.MethodPost, map[string]uint{"target_id": maker.User.ID, "job_post_id": *jobID}); err != nil {
		log.Fatalf("❌ Employer like failed: %v", err)
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup
	stopChan := make(chan struct{})

	for i := 0; i < *watchers; i++ {
		wg.Add(1)
		go runWatcher(*host, employer.Token, maker.User.ID, *jobID, stopChan, &wg)
		time.Sleep(20 * time.Millisecond) // Stagger connections to allow ticket issuance
	}

	wg.Add(1)
	go runToggler(*host, maker.Token, *jobID, *interval, stopChan, &wg)

	select {
	case <-time.After(*duration):
		log.Println("⏱️  Test duration reached")
	case <-interrupt:
		log.Println("🛑 Interrupted by user")
	}

	close(stopChan)
	log.Println("Waiting for watchers to disconnect...")
	wg.Wait()

	printMetrics(*watchers)
}

func login(host, email, password string) (*session, error) {
	loginURL := fmt.Sprintf("http://%s/api/auth/login", host)
	body, _ := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})

	resp, err := httpClient.Post(loginURL, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("login failed with status %d", resp.StatusCode)
	}

	var s session
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

func getTicket(host, token string) (string, error) {
	ticketURL := fmt.Sprintf("http://%s/api/ws/ticket", host)
	req, _ := http.NewRequest(http.MethodPost, ticketURL, nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ticket issuance failed with status %d", resp.StatusCode)
	}

	var result struct {
		Ticket string `json:"ticket"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	return result.Ticket, nil
}

func runWatcher(host, token string, makerID uint, jobID uint, stopChan <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()
	atomic.AddInt64(&metrics.ConnectionsAttempted, 1)

	ticket, err := getTicket(host, token)
	if err != nil {
		atomic.AddInt64(&metrics.ConnectionsFailed, 1)
		atomic.AddInt64(&metrics.Errors, 1)
		return
	}

	q := url.Values{}
	q.Set("ticket", ticket)
	q.Set("target_id", fmt.Sprint(makerID))
	q.Set("job_post_id", fmt.Sprint(jobID))
	u := url.URL{Scheme: "ws", Host: host, Path: "/api/ws/likes", RawQuery: q.Encode()}

	c, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		atomic.AddInt64(&metrics.ConnectionsFailed, 1)
		atomic.AddInt64(&metrics.Errors, 1)
		return
	}
	if resp != nil && resp.Body != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	defer func() { _ = c.Close() }()

	atomic.AddInt64(&metrics.ConnectionsSuccess, 1)

	go func() {
		for {
			_, data, err := c.ReadMessage()
			if err != nil {
				return
			}
			var evt struct {
				Type string `json:"type"`
			}
			if json.Unmarshal(data, &evt) == nil && evt.Type == "like_state" {
				atomic.AddInt64(&metrics.EventsReceived, 1)
			}
		}
	}()

	<-stopChan
	_ = c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func sendLike(host, token, method string, target map[string]uint) error {
	body, _ := json.Marshal(target)
	req, _ := http.NewRequest(method, fmt.Sprintf("http://%s/api/likes", host), bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s /api/likes failed with status %d", method, resp.StatusCode)
	}
	return nil
}

// runToggler likes and unlikes the job in turn so every watcher sees a
// liked/mutual transition on each tick.
func runToggler(host, token string, jobID uint, interval time.Duration, stopChan <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	target := map[string]uint{"job_post_id": jobID}
	method := http.MethodPost

	for {
		select {
		case <-stopChan:
			return
		case <-ticker.C:
			if err := sendLike(host, token, method, target); err != nil {
				atomic.AddInt64(&metrics.Errors, 1)
				continue
			}
			atomic.AddInt64(&metrics.TogglesSent, 1)
			if method == http.MethodPost {
				method = http.MethodDelete
			} else {
				method = http.MethodPost
			}
		}
	}
}

func printMetrics(watchers int) {
	log.Println("\n📊 Test Results")
	log.Println("===============")
	log.Printf("Connections Attempted: %d", atomic.LoadInt64(&metrics.ConnectionsAttempted))
	log.Printf("Connections Successful: %d", atomic.LoadInt64(&metrics.ConnectionsSuccess))
	log.Printf("Connections Failed: %d", atomic.LoadInt64(&metrics.ConnectionsFailed))
	log.Printf("Toggles Sent: %d", atomic.LoadInt64(&metrics.TogglesSent))
	log.Printf("like_state Events Received: %d", atomic.LoadInt64(&metrics.EventsReceived))
	if expected := int64(watchers) * (atomic.LoadInt64(&metrics.TogglesSent) + 1); expected > 0 {
		log.Printf("Delivery ratio: %.2f%%", 100*float64(atomic.LoadInt64(&metrics.EventsReceived))/float64(expected))
	}
	log.Printf("Total Errors: %d", atomic.LoadInt64(&metrics.Errors))
}
