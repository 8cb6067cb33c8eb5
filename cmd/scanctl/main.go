// scanctl is the admin-side scanner: it logs in, captures a member's QR code
// (from a file of scanned text or through a remote image decoder), shows who
// was scanned, and awards points through the backend.
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/greenloop/recycle-be/internal/capture"
	"github.com/greenloop/recycle-be/internal/qr"
)

type options struct {
	serverURL string
	email     string
	password  string
	scanFile  string
	imageFile string
	decodeURL string
	points    int64
	timeout   time.Duration
}

func main() {
	opts := parseFlags()

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	token, err := login(ctx, opts)
	if err != nil {
		log.Fatalf("login: %v", err)
	}

	raw, err := captureSymbol(ctx, opts)
	if errors.Is(err, capture.ErrCancelled) {
		fmt.Println("scan cancelled, nothing changed")
		return
	}
	if errors.Is(err, capture.ErrNoCodeFound) {
		log.Fatal("no QR code found in the capture; try again with a clearer shot")
	}
	if err != nil {
		log.Fatalf("capture: %v", err)
	}

	payload, err := qr.Decode(raw)
	if err != nil {
		log.Fatalf("scanned text is not a valid member code: %v", err)
	}
	if payload.DisplayName != "" {
		fmt.Printf("scanned: %s (%s)\n", payload.DisplayName, payload.IdentityToken)
	} else {
		fmt.Printf("scanned: %s\n", payload.IdentityToken)
	}

	delta := opts.points
	if delta <= 0 {
		delta, err = promptPoints()
		if err != nil {
			log.Fatalf("read points: %v", err)
		}
	}

	newTotal, err := award(ctx, opts, token, raw, delta)
	if err != nil {
		log.Fatalf("award: %v", err)
	}
	fmt.Printf("points updated, new total: %d\n", newTotal)
}

func parseFlags() options {
	var opts options
	flag.StringVar(&opts.serverURL, "server", envOr("RECYCLE_SERVER_URL", "http://localhost:8080"), "backend base URL")
	flag.StringVar(&opts.email, "email", os.Getenv("RECYCLE_ADMIN_EMAIL"), "admin email")
	flag.StringVar(&opts.password, "password", "", "admin password (prompted when omitted)")
	flag.StringVar(&opts.scanFile, "scan", "", "file containing already-decoded QR text")
	flag.StringVar(&opts.imageFile, "image", "", "captured image to send to the decode service")
	flag.StringVar(&opts.decodeURL, "decode-url", os.Getenv("QR_DECODE_URL"), "remote QR decode service URL")
	flag.Int64Var(&opts.points, "points", 0, "points to award (prompted when omitted)")
	flag.DurationVar(&opts.timeout, "timeout", 30*time.Second, "overall operation timeout")
	flag.Parse()

	if opts.email == "" {
		log.Fatal("an admin email is required (-email or RECYCLE_ADMIN_EMAIL)")
	}
	return opts
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func captureSymbol(ctx context.Context, opts options) (string, error) {
	var source capture.Source
	switch {
	case opts.scanFile != "":
		source = capture.FileSource{Path: opts.scanFile}
	case opts.imageFile != "":
		if opts.decodeURL == "" {
			return "", errors.New("-image requires -decode-url or QR_DECODE_URL")
		}
		source = capture.RemoteDecoder{URL: opts.decodeURL, ImagePath: opts.imageFile}
	default:
		// Neither input was offered; treat it like backing out of the picker.
		source = capture.FileSource{}
	}
	return source.Capture(ctx)
}

func promptPoints() (int64, error) {
	fmt.Print("points to award: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return 0, err
	}
	delta, err := strconv.ParseInt(strings.TrimSpace(line), 10, 64)
	if err != nil || delta <= 0 {
		return 0, errors.New("points must be a positive integer")
	}
	return delta, nil
}

func readPassword() (string, error) {
	fmt.Print("password: ")
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func login(ctx context.Context, opts options) (string, error) {
	password := opts.password
	if password == "" {
		var err error
		password, err = readPassword()
		if err != nil {
			return "", err
		}
	}

	body, err := json.Marshal(map[string]string{"email": opts.email, "password": password})
	if err != nil {
		return "", err
	}
	env, err := post(ctx, opts.serverURL+"/login", "", body)
	if err != nil {
		return "", err
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return "", fmt.Errorf("decode login response: %w", err)
	}
	if out.Token == "" {
		return "", errors.New("login response missing token")
	}
	return out.Token, nil
}

func award(ctx context.Context, opts options, token, qrPayload string, delta int64) (int64, error) {
	body, err := json.Marshal(map[string]any{"qrPayload": qrPayload, "points": delta})
	if err != nil {
		return 0, err
	}
	env, err := post(ctx, opts.serverURL+"/points/award", token, body)
	if err != nil {
		return 0, err
	}

	var out struct {
		NewTotal int64 `json:"newTotal"`
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return 0, fmt.Errorf("decode award response: %w", err)
	}
	return out.NewTotal, nil
}

func post(ctx context.Context, url, bearer string, body []byte) (*envelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode response (%d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("server reported %d: %s", resp.StatusCode, env.Message)
	}
	return &env, nil
}
