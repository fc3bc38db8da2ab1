package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"gitlab.com/dirk.krummacker/contact-form-service/pkg/model"
)

// Polls the health endpoint until the service answers and reports its store
// as connected, or until the timeout is reached.
//
// Usage example on the command line:
// > go run main.go -url=http://localhost:3000 -timeout=2m
func main() {
	baseURL := flag.String("url", "http://localhost:3000", "base URL of the contact form service")
	timeout := flag.Duration("timeout", 2*time.Minute, "give up after this long")
	flag.Parse()

	deadline := time.Now().Add(*timeout)
	totalWaitTime := 0
	for {
		health, err := fetchHealth(*baseURL + "/health")
		if err == nil && health.Database == "Connected" {
			fmt.Println("service is available:", health.Timestamp)
			return
		}
		if err != nil {
			fmt.Println(err)
		} else {
			fmt.Println("service is up, database is", health.Database)
		}
		if time.Now().After(deadline) {
			fmt.Println("giving up")
			os.Exit(1)
		}
		totalWaitTime += 5
		fmt.Printf("Waiting %d seconds", totalWaitTime)
		fmt.Println()
		time.Sleep(5 * time.Second)
	}
}

func fetchHealth(url string) (model.Health, error) {
	var health model.Health
	res, err := http.Get(url)
	if err != nil {
		return health, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return health, fmt.Errorf("unexpected status %s", res.Status)
	}
	err = json.NewDecoder(res.Body).Decode(&health)
	return health, err
}
