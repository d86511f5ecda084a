package model

import (
	"errors"
	"time"
)

// ErrAskNotFound is returned when feedback names an unknown ask id
var ErrAskNotFound = errors.New("ask not found")

// Answer kinds returned to clients
const (
	KindText    = "text"
	KindChart   = "chart"
	KindWarning = "warning"
)

// Routes taken through the pipeline
const (
	RouteChart = "chart"
	RouteText  = "text"
	RouteCache = "cache"
)

// TextAnswer is either a formatted sentence or a user-facing warning
type TextAnswer struct {
	Text    string `json:"text"`
	Warning bool   `json:"warning"`
}

// AskRequest represents a natural-language question
type AskRequest struct {
	Query   string `json:"query" binding:"required"`
	Version string `json:"version,omitempty"`
}

// AskResponse represents the answer to a question
type AskResponse struct {
	ID         string      `json:"id"`
	Version    string      `json:"version"`
	Kind       string      `json:"kind"` // text, chart, warning
	Route      string      `json:"route"`
	Answer     string      `json:"answer,omitempty"`
	AnswerHTML string      `json:"answer_html,omitempty"`
	Chart      *ChartSpec  `json:"chart,omitempty"`
	RuleIntent *RuleIntent `json:"rule_intent,omitempty"`
	Intent     *Intent     `json:"intent,omitempty"`
	Took       int64       `json:"took_ms"`
}

// IntentRequest asks for the rule-based reading of a query only
type IntentRequest struct {
	Query string `json:"query" binding:"required"`
}

// TableInfo describes one loaded table
type TableInfo struct {
	Key     string   `json:"key"`
	Columns []string `json:"columns"`
	Rows    int      `json:"rows"`
}

// CatalogResponse lists the tables of a version
type CatalogResponse struct {
	Version string      `json:"version"`
	OneD    []TableInfo `json:"one_d"`
	TwoD    []TableInfo `json:"two_d"`
}

// QueryLog is one persisted ask
type QueryLog struct {
	ID         string
	Version    string
	Query      string
	Route      string
	Kind       string
	Intent     *Intent
	Answer     string
	Embedding  []float32
	ResponseMs int
	CreatedAt  time.Time
}

// FeedbackRequest represents user feedback on an answer
type FeedbackRequest struct {
	AskID   string `json:"ask_id" binding:"required"`
	Helpful *bool  `json:"helpful" binding:"required"`
	Comment string `json:"comment,omitempty"`
}

// FeedbackResponse represents feedback response
type FeedbackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
