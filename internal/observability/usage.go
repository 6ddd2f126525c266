// Package observability provides oracle usage accounting and formatted
// output for verbose CLI mode.
package observability

import (
	"encoding/json"
	"log"
	"os"
	"sync"
	"time"
)

// Per-token prices for cost accounting. Pass-through metric, not part of
// core correctness.
const (
	promptPricePerToken     = 0.00000015
	completionPricePerToken = 0.0000006
)

// CallRecord is one logged oracle invocation.
type CallRecord struct {
	Model        string  `json:"model"`
	Time         string  `json:"time"`
	Prompt       string  `json:"prompt"`
	Reply        string  `json:"reply"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	TotalTokens  int     `json:"total_tokens"`
	Cost         float64 `json:"cost"`
}

// Accountant appends one JSON line per oracle call to a log file and keeps
// running totals. Failures to write are logged and swallowed; accounting
// never blocks an application.
type Accountant struct {
	path string

	mu          sync.Mutex
	totalTokens int
	totalCost   float64
	calls       int
}

// NewAccountant creates an accountant writing to the given path. An empty
// path keeps totals in memory without a call log.
func NewAccountant(path string) *Accountant {
	return &Accountant{path: path}
}

// RecordCall accounts for one oracle invocation.
func (a *Accountant) RecordCall(model, prompt, reply string, inputTokens, outputTokens int) {
	cost := float64(inputTokens)*promptPricePerToken + float64(outputTokens)*completionPricePerToken

	a.mu.Lock()
	a.calls++
	a.totalTokens += inputTokens + outputTokens
	a.totalCost += cost
	a.mu.Unlock()

	if a.path == "" {
		return
	}

	rec := CallRecord{
		Model:        model,
		Time:         time.Now().Format("2006-01-02 15:04:05"),
		Prompt:       prompt,
		Reply:        reply,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		TotalTokens:  inputTokens + outputTokens,
		Cost:         cost,
	}

	line, err := json.Marshal(rec)
	if err != nil {
		log.Printf("usage: failed to encode call record: %v", err)
		return
	}

	f, err := os.OpenFile(a.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		log.Printf("usage: failed to open call log %s: %v", a.path, err)
		return
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		log.Printf("usage: failed to append call record: %v", err)
	}
}

// Totals returns the number of calls, total tokens, and total cost so far.
func (a *Accountant) Totals() (calls, tokens int, cost float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls, a.totalTokens, a.totalCost
}
