package main

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"
)

// Fake ASR engine endpoint for local development. It accepts the same
// multipart uploads the service sends and replies with a growing canned
// transcription so the incremental diffing path gets exercised.

type segmentResponse struct {
	Text            string  `json:"text"`
	StartMs         int64   `json:"start_ms"`
	EndMs           int64   `json:"end_ms"`
	SpeakerTurnNext bool    `json:"speaker_turn_next"`
	Tokens          []int32 `json:"tokens"`
}

type inferenceResponse struct {
	Text     string            `json:"text"`
	Segments []segmentResponse `json:"segments"`
}

var cannedTexts = []string{
	" And so my fellow Americans",
	" And so my fellow Americans ask not",
	" And so my fellow Americans ask not what your country",
	" And so my fellow Americans ask not what your country can do for you",
	" ask not what your country can do for you",
	" ask not what your country can do for you ask what you",
	" ask what you can do for your country",
}

var (
	requestMu    sync.Mutex
	requestCount int
)

func inferenceHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "Error parsing form", http.StatusBadRequest)
		return
	}

	language := r.FormValue("language")
	translate := r.FormValue("translate")
	maxTokens := r.FormValue("max_tokens")
	promptTokens := r.FormValue("prompt_tokens")
	sampleRate := r.FormValue("sample_rate")

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Error getting audio file", http.StatusBadRequest)
		return
	}
	file.Close()

	requestMu.Lock()
	text := cannedTexts[requestCount%len(cannedTexts)]
	requestCount++
	n := requestCount
	requestMu.Unlock()

	log.Printf("🎤 INFERENCE REQUEST #%d:", n)
	log.Printf("    File: %s (%d bytes)", header.Filename, header.Size)
	log.Printf("    Language: %s, Translate: %s, Max Tokens: %s", language, translate, maxTokens)
	log.Printf("    Sample Rate: %s, Prompt Tokens: %s", sampleRate, promptTokens)

	// Simulate inference latency
	time.Sleep(150 * time.Millisecond)

	response := inferenceResponse{
		Text: text,
		Segments: []segmentResponse{{
			Text:    text,
			StartMs: 0,
			EndMs:   int64(n) * 3000,
			Tokens:  []int32{int32(n * 100), int32(n*100 + 1)},
		}},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)

	log.Printf("✅ RESPONSE SENT: '%s'", text)
}

func main() {
	http.HandleFunc("/inference", inferenceHandler)

	port := ":9000"
	log.Printf("🚀 Test ASR Engine starting on port %s", port)
	log.Printf("📡 Endpoint: http://localhost%s/inference", port)
	log.Println("💡 Update your config to use: http://localhost:9000/inference")

	if err := http.ListenAndServe(port, nil); err != nil {
		log.Fatal("Server failed to start:", err)
	}
}
