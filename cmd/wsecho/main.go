// wsecho connects to a websocket endpoint, logs every JSON text frame it
// receives and echoes the decoded value back on the same connection.
// Usage: go run ./cmd/wsecho --config configs/wsecho.example.yaml
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
