// Package apilog is the append-only provider call log (Task 5.1).
// Every outbound AI call lands here, success or failure.
package apilog

import "time"

// Tool names recorded in the log. Failures append the error suffix so they
// stay distinguishable without an extra column.
const (
	ToolAutocomplete   = "autocomplete"
	ToolSmartCompose   = "smartcompose"
	ToolWritingTips    = "writing-tips"
	ToolAutoSelect     = "taxonomy-auto-select"
	ToolSuggestTerms   = "taxonomy-suggest"
	ToolImageGenerate  = "image-generate"
	ToolImageEdit      = "image-edit"
	ToolImagePrompt    = "image-prompt"
	ErrorSuffix        = "-error"
	SystemActor        = "system"
)

// Record is one log entry. Immutable once inserted.
type Record struct {
	ID             int64     `json:"id"`
	Tool           string    `json:"tool"`
	InputTokens    int       `json:"input_tokens"`
	OutputTokens   int       `json:"output_tokens"`
	Model          string    `json:"model"`
	Timestamp      time.Time `json:"ts"`
	ResponseTimeMs int64     `json:"response_time_ms"`
	ActorID        string    `json:"actor_id"`
	Message        string    `json:"message"`
}

// QueryArgs filters and pages the log listing.
type QueryArgs struct {
	Page    int    // 1-based
	PerPage int
	Search  string // case-insensitive substring over tool, model, message
	OrderBy string // one of the allow-listed columns; default "id"
	Order   string // "asc" | "desc"; default "desc"
	Tool    string // exact tool filter, empty = all
}
