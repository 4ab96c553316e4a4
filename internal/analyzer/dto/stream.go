package dto

// StreamAnalysisRequest is the payload of a queued pipeline request.
type StreamAnalysisRequest struct {
	CompanyName string `json:"company_name"`
	RequestID   string `json:"request_id,omitempty"`
}

// StreamAnalysisResult is published once a queued request has run.
type StreamAnalysisResult struct {
	RequestID    string          `json:"request_id,omitempty"`
	CompanyName  string          `json:"company_name"`
	Status       string          `json:"status"`
	FailureStage string          `json:"failure_stage,omitempty"`
	Ticker       string          `json:"ticker,omitempty"`
	Analysis     *AnalysisResult `json:"analysis,omitempty"`
	Error        string          `json:"error,omitempty"`
	DurationSec  float64         `json:"duration_seconds"`
}

// AnalysisNotification carries what a notifier needs from a successful run.
type AnalysisNotification struct {
	Company  string
	Ticker   string
	Analysis *AnalysisResult
}
