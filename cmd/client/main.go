package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"gitlab.com/dirk.krummacker/contact-form-service/pkg/model"
)

// Usage example on the command line:
// > go run main.go -url=http://localhost:3000
func main() {
	baseURL := flag.String("url", "http://localhost:3000", "base URL of the contact form service")
	flag.Parse()

	fmt.Println()
	fmt.Println("  Elements    SUBMIT      LIST       GET ")
	fmt.Println("-----------------------------------------")
	sizes := []int{100, 500, 1000, 5000}
	for _, loops := range sizes {
		fmt.Printf("%10d", loops)
		ids := make([]string, 0, loops)
		{
			// POST requests
			var duration int64
			for i := 0; i < loops; i++ {
				id, d := sendSubmitRequest(*baseURL, i)
				ids = append(ids, id)
				duration += d
			}
			fmt.Printf("%10d", duration/int64(loops*1000))
		}
		{
			// one list request covering everything submitted so far
			_, duration := sendRequest(http.MethodGet, *baseURL+"/contacts", nil, http.StatusOK)
			fmt.Printf("%10d", duration/1000)
		}
		{
			// GET requests in random order
			rand.Shuffle(len(ids), func(i, j int) {
				ids[i], ids[j] = ids[j], ids[i]
			})
			var duration int64
			for _, id := range ids {
				_, d := sendRequest(http.MethodGet, *baseURL+"/contacts/"+id, nil, http.StatusOK)
				duration += d
			}
			fmt.Printf("%10d", duration/int64(loops*1000))
		}
		fmt.Println()
	}
}

func sendSubmitRequest(baseURL string, i int) (string, int64) {
	jsonBody, err := json.Marshal(model.SubmitRequest{
		Name:    "Marcus Antonius",
		Email:   fmt.Sprintf("marcus.%d@Example.com", i),
		Subject: "Load test",
		Message: fmt.Sprintf("Message number %d sent at %s", i, time.Now().Format(time.RFC3339)),
	})
	if err != nil {
		panic(err)
	}
	resBody, duration := sendRequest(http.MethodPost, baseURL+"/submit-contact", bytes.NewReader(jsonBody), http.StatusCreated)
	var submitted model.Submitted
	if err := json.Unmarshal(resBody, &submitted); err != nil {
		fmt.Println("could not unmarshal JSON", err)
		panic(err)
	}
	return submitted.Data.Id, duration
}

func sendRequest(method string, requestURL string, bodyReader io.Reader, expectedStatus int) ([]byte, int64) {
	req, err := http.NewRequest(method, requestURL, bodyReader)
	if err != nil {
		fmt.Println("could not create request", err)
		panic(err)
	}
	if bodyReader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	before := time.Now().UnixNano()
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Println("error making http request", err)
		panic(err)
	}
	defer res.Body.Close()
	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		fmt.Println("could not read response body", err)
		panic(err)
	}
	after := time.Now().UnixNano()
	if res.StatusCode != expectedStatus {
		var failure model.Failure
		_ = json.Unmarshal(resBody, &failure)
		panic(fmt.Sprintf("%s %s: status %d: %s", method, requestURL, res.StatusCode, failure.Message))
	}
	return resBody, after - before
}
