// Package main is the entry point for the PodSweeper Hint Agent.
// The Hint Agent is a minimal HTTP server that runs inside hint pods.
// It exposes the hint value (number of adjacent mines) via HTTP.
//
// Configuration via environment variables:
//   - HINT_VALUE: The number to display (0-8)
//   - POD_X: The X coordinate of this pod
//   - POD_Y: The Y coordinate of this pod
//   - PORT: The port to listen on (default: 8080)
package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/podsweeper/engine/pkg/geometry"
)

// parseHintValue parses HINT_VALUE as the adjacent-mine count a revealed
// dirt cell carries: always 0-8, per pkg/board.FogState.Revealed.
func parseHintValue(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 8 {
		return 0, false
	}
	return n, true
}

func main() {
	// Read configuration from environment
	hintRaw := os.Getenv("HINT_VALUE")
	hintValue, hintValid := parseHintValue(hintRaw)
	if !hintValid {
		log.Printf("HINT_VALUE %q is not a valid adjacency count (0-8), serving as unknown", hintRaw)
	}

	var loc geometry.Location
	var haveLoc bool
	if x, errX := strconv.Atoi(os.Getenv("POD_X")); errX == nil {
		if y, errY := strconv.Atoi(os.Getenv("POD_Y")); errY == nil {
			loc = geometry.NewLocation(x, y)
			haveLoc = true
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Validate port is a number
	if _, err := strconv.Atoi(port); err != nil {
		log.Fatalf("Invalid PORT value: %s", port)
	}

	hintText := "?"
	if hintValid {
		hintText = strconv.Itoa(hintValue)
	}

	// Create HTTP handler
	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprintf(w, "%s\n", hintText)
	})

	// Health check endpoint
	http.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})

	// Info endpoint with coordinates
	http.HandleFunc("/info", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		x, y, _ := loc.XY()
		fmt.Fprintf(w, `{"x":%d,"y":%d,"hint":%q,"locationKnown":%t}`, x, y, hintText, haveLoc)
	})

	addr := ":" + port
	log.Printf("Hint Agent starting on %s (hint=%s, loc=%v, locationKnown=%t)", addr, hintText, loc, haveLoc)

	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
