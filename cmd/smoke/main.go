// Command smoke posts an image to a running server and prints the prediction.
//
//	BASE_URL=http://localhost:8000 API_TOKEN=... go run ./cmd/smoke dog.jpeg
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/agenthands/imgclass/internal/core/model"
)

const defaultBaseURL = "http://localhost:8000"

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Println("usage: smoke <image>")
		os.Exit(2)
	}

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	fmt.Println("Checking health...")
	if !checkHealth(baseURL) {
		fmt.Println("FAILED: health")
		os.Exit(1)
	}
	fmt.Println("PASSED: health")

	fmt.Printf("Predicting %s...\n", os.Args[1])
	resp, err := predict(baseURL, os.Getenv("API_TOKEN"), os.Args[1])
	if err != nil {
		fmt.Printf("FAILED: predict: %v\n", err)
		os.Exit(1)
	}
	if !resp.Success || resp.Prediction == nil || resp.Score == nil {
		fmt.Printf("FAILED: predict: unsuccessful response (%s)\n", resp.Detail)
		os.Exit(1)
	}
	fmt.Printf("PASSED: predict: %s (%.4f) stored as %s\n", *resp.Prediction, *resp.Score, *resp.ImageFileName)
}

var httpClient = &http.Client{Timeout: time.Minute}

func checkHealth(baseURL string) bool {
	resp, err := httpClient.Get(baseURL + "/health")
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func predict(baseURL, token, path string) (model.PredictResponse, error) {
	var out model.PredictResponse

	data, err := os.ReadFile(path)
	if err != nil {
		return out, err
	}

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return out, err
	}
	if _, err := part.Write(data); err != nil {
		return out, err
	}
	if err := w.Close(); err != nil {
		return out, err
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+"/model/predict", body)
	if err != nil {
		return out, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return out, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return out, err
	}
	fmt.Printf("Status: %d\nBody: %s\n", resp.StatusCode, raw)

	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("failed to decode response: %w", err)
	}
	return out, nil
}
