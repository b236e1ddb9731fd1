// Command demoserver starts a local site whose pages issue XHR traffic, for
// trying web2api end to end.
// Usage: go run ./cmd/demoserver [port]
// Default port: 9999
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/raysh454/web2api/internal/demoserver"
)

func main() {
	cfg := demoserver.DefaultConfig()

	// Optional: custom port from command line
	if len(os.Args) > 1 {
		port, err := strconv.Atoi(os.Args[1])
		if err != nil || port < 1 || port > 65535 {
			log.Fatalf("Invalid port: %s", os.Args[1])
		}
		cfg.Port = port
	}

	fmt.Println("===========================================")
	fmt.Println("   web2api demo server")
	fmt.Println("===========================================")
	fmt.Println()
	fmt.Println("Pages (each issues XHR calls on load):")
	for _, p := range demoserver.GetAllPages() {
		fmt.Printf("  %-12s %s\n", p.Path, p.Description)
	}
	fmt.Println()
	fmt.Printf("Try: web2api http://localhost:%d/page\n", cfg.Port)
	fmt.Println()

	server := demoserver.NewDemoServer(cfg)
	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
