package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/readhall/seatdesk-api/internal/models"
)

type target struct {
	Method   string
	Path     string
	Status   int
	Critical bool
}

type result struct {
	Target   target
	Status   int
	Duration time.Duration
	Error    error
}

// Smoke check for a running instance. Signs a short-lived ADMIN token with
// the shared secret and walks the read endpoints, failing on any critical
// mismatch.
func main() {
	var (
		base    string
		secret  string
		timeout time.Duration
	)

	flag.StringVar(&base, "base", "http://localhost:8080", "API base URL")
	flag.StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "HS256 token secret")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	if secret == "" {
		fmt.Fprintln(os.Stderr, "a token secret is required (-secret or JWT_SECRET)")
		os.Exit(2)
	}

	token, err := signToken(secret)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to sign token: %v\n", err)
		os.Exit(2)
	}

	targets := []target{
		{Method: http.MethodGet, Path: "/health", Status: http.StatusOK, Critical: true},
		{Method: http.MethodGet, Path: "/ready", Status: http.StatusOK, Critical: true},
		{Method: http.MethodGet, Path: "/metrics", Status: http.StatusOK},
		{Method: http.MethodGet, Path: "/api/v1/seats", Status: http.StatusOK, Critical: true},
		{Method: http.MethodGet, Path: "/api/v1/seats/summary", Status: http.StatusOK, Critical: true},
		{Method: http.MethodGet, Path: "/api/v1/shifts", Status: http.StatusOK, Critical: true},
		{Method: http.MethodGet, Path: "/api/v1/students", Status: http.StatusOK},
		{Method: http.MethodGet, Path: "/api/v1/bookings", Status: http.StatusOK},
	}

	client := &http.Client{Timeout: timeout}
	var failures int
	results := make([]result, 0, len(targets))
	for _, tgt := range targets {
		res := check(client, base, token, tgt)
		if (res.Error != nil || res.Status != tgt.Status) && tgt.Critical {
			failures++
		}
		results = append(results, res)
	}

	printReport(results)
	fmt.Printf("Critical failures: %d\n", failures)
	if failures > 0 {
		os.Exit(1)
	}
}

func signToken(secret string) (string, error) {
	claims := models.JWTClaims{
		UserID: "smoke-check",
		Role:   models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(5 * time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func check(client *http.Client, base, token string, tgt target) result {
	res := result{Target: tgt}
	url := strings.TrimRight(base, "/") + tgt.Path

	req, err := http.NewRequest(tgt.Method, url, nil)
	if err != nil {
		res.Error = err
		return res
	}
	if strings.HasPrefix(tgt.Path, "/api/") {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := client.Do(req)
	res.Duration = time.Since(start)
	if err != nil {
		res.Error = err
		return res
	}
	defer resp.Body.Close()

	res.Status = resp.StatusCode
	if res.Status != tgt.Status {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		var envelope struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(body, &envelope) == nil && envelope.Error.Code != "" {
			res.Error = fmt.Errorf("%s: %s", envelope.Error.Code, envelope.Error.Message)
		}
	}
	return res
}

func printReport(results []result) {
	fmt.Println("SeatDesk Smoke Report")
	fmt.Println("=====================")
	for _, res := range results {
		status := "OK"
		if res.Error != nil || res.Status != res.Target.Status {
			status = "FAIL"
		}
		fmt.Printf("[%s] %s %s\n", status, res.Target.Method, res.Target.Path)
		fmt.Printf("  Status: %d (want %d) in %s\n", res.Status, res.Target.Status, res.Duration)
		if res.Error != nil {
			fmt.Printf("  Error: %v\n", res.Error)
		}
	}
}
