// Package main provides a stress testing tool for the chat WebSocket server.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"writescape/internal/middleware"
	"writescape/internal/notifications"

	"github.com/gorilla/websocket"
)

// Metrics tracks the test results
type Metrics struct {
	ConnectionsAttempted atomic.Int64
	ConnectionsSuccess   atomic.Int64
	ConnectionsFailed    atomic.Int64
	MessagesSent         atomic.Int64
	MessagesReceived     atomic.Int64
	Errors               atomic.Int64
}

var (
	metrics    Metrics
	httpClient = &http.Client{Timeout: 5 * time.Second}
)

func main() {
	host := flag.String("host", "localhost:8375", "API server host")
	username := flag.String("username", "", "Test user name")
	password := flag.String("password", "", "Test user password")
	clients := flag.Int("clients", 50, "Number of concurrent clients")
	duration := flag.Duration("duration", 30*time.Second, "Test duration")
	interval := flag.Duration("interval", 5*time.Second, "Delay between messages per client")
	flag.Parse()

	logger := middleware.Logger
	logger.Info("starting chat stress test",
		slog.String("target", *host),
		slog.Int("clients", *clients),
		slog.Duration("duration", *duration),
	)

	token, err := login(*host, *username, *password)
	if err != nil {
		logger.Error("login failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup
	stopChan := make(chan struct{})

	for i := 0; i < *clients; i++ {
		wg.Add(1)
		go runClient(*host, token, i, *interval, stopChan, &wg)
		time.Sleep(50 * time.Millisecond) // stagger ticket issuance
	}

	select {
	case <-time.After(*duration):
		logger.Info("test duration reached")
	case <-interrupt:
		logger.Info("interrupted")
	}

	close(stopChan)
	wg.Wait()

	logger.Info("test results",
		slog.Int64("connections_attempted", metrics.ConnectionsAttempted.Load()),
		slog.Int64("connections_success", metrics.ConnectionsSuccess.Load()),
		slog.Int64("connections_failed", metrics.ConnectionsFailed.Load()),
		slog.Int64("messages_sent", metrics.MessagesSent.Load()),
		slog.Int64("messages_received", metrics.MessagesReceived.Load()),
		slog.Int64("errors", metrics.Errors.Load()),
	)
}

func postJSON(endpoint, token string, payload any, out any) error {
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			return err
		}
	}
	req, err := http.NewRequest(http.MethodPost, endpoint, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s failed with status %d", endpoint, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func login(host, username, password string) (string, error) {
	var result struct {
		Token string `json:"token"`
	}
	err := postJSON(fmt.Sprintf("http://%s/api/auth/login", host), "", map[string]string{
		"username": username,
		"password": password,
	}, &result)
	return result.Token, err
}

func getTicket(host, token string) (string, error) {
	var result struct {
		Ticket string `json:"ticket"`
	}
	err := postJSON(fmt.Sprintf("http://%s/api/auth/ws-ticket", host), token, nil, &result)
	return result.Ticket, err
}

func chatFrame(id int) ([]byte, error) {
	payload, err := json.Marshal(map[string]string{
		"message": fmt.Sprintf("Stress test message from client %d", id),
	})
	if err != nil {
		return nil, err
	}
	return json.Marshal(notifications.ChatMessage{Type: notifications.ChatFromClient, Payload: payload})
}

func runClient(host, token string, id int, interval time.Duration, stopChan <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()
	metrics.ConnectionsAttempted.Add(1)

	// Tickets are single use, so every connection needs its own.
	ticket, err := getTicket(host, token)
	if err != nil {
		metrics.ConnectionsFailed.Add(1)
		metrics.Errors.Add(1)
		return
	}

	u := url.URL{Scheme: "ws", Host: host, Path: "/api/ws/chat", RawQuery: "ticket=" + url.QueryEscape(ticket)}
	c, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		metrics.ConnectionsFailed.Add(1)
		metrics.Errors.Add(1)
		return
	}
	if resp != nil && resp.Body != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	defer func() { _ = c.Close() }()

	metrics.ConnectionsSuccess.Add(1)

	go func() {
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
			metrics.MessagesReceived.Add(1)
		}
	}()

	frame, err := chatFrame(id)
	if err != nil {
		metrics.Errors.Add(1)
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopChan:
			_ = c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case <-ticker.C:
			if err := c.WriteMessage(websocket.TextMessage, frame); err != nil {
				metrics.Errors.Add(1)
				return
			}
			metrics.MessagesSent.Add(1)
		}
	}
}
