// mockwebhook posts a synthetic Deluxe payment event to a running server so
// the reconciliation path can be exercised without real gateway traffic.
//
//	go run ./cmd/tools/mockwebhook -order o1 -status Approved
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/google/uuid"
)

func main() {
	url := flag.String("url", "http://localhost:8080/deluxe/webhook", "webhook endpoint")
	orderID := flag.String("order", "", "order id the event should resolve to (required)")
	status := flag.String("status", "Approved", "gateway status string")
	paymentID := flag.String("payment", "", "gateway payment id (random when empty)")
	amount := flag.Float64("amount", 150.00, "event amount")
	viaCustomData := flag.Bool("customdata", false, "carry the order id in customData instead of orderData")
	dryRun := flag.Bool("dry-run", false, "print the payload without sending")
	flag.Parse()

	if *orderID == "" {
		fmt.Fprintln(os.Stderr, "-order is required")
		os.Exit(2)
	}

	pid := *paymentID
	if pid == "" {
		pid = uuid.NewString()
	}

	payload := map[string]any{
		"eventId":   uuid.NewString(),
		"status":    *status,
		"paymentId": pid,
		"amount":    map[string]any{"amount": *amount, "currency": "USD"},
	}
	if *viaCustomData {
		payload["customData"] = []map[string]string{{"name": "orderId", "value": *orderID}}
	} else {
		payload["orderData"] = map[string]string{"orderId": *orderID}
	}

	body, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling payload: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Body: %s\n", string(body))

	if *dryRun {
		fmt.Println("\n[DRY RUN] Not sending request")
		return
	}

	fmt.Printf("\nSending to %s...\n", *url)
	resp, err := http.Post(*url, "application/json", bytes.NewReader(body))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error sending request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	fmt.Printf("Status: %d\n", resp.StatusCode)
	fmt.Printf("Response: %s\n", string(respBody))

	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}
}
