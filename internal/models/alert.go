package models

import (
	"fmt"
	"strings"
	"time"
)

// AlertType categorizes alerts by the scanner that produced them.
type AlertType string

const (
	AlertTypeEarnings  AlertType = "earnings"
	AlertTypePrice     AlertType = "price"
	AlertTypeValuation AlertType = "valuation"
	AlertTypeNews      AlertType = "news"
)

// Alert is one alertable condition found by a scanner pass.
type Alert struct {
	Type    AlertType `json:"type"`
	Ticker  string    `json:"ticker,omitempty"`
	Message string    `json:"message"`
}

// ImpactLevel grades how much a news batch is expected to move a stock.
type ImpactLevel string

const (
	ImpactHigh ImpactLevel = "high"
	ImpactMed  ImpactLevel = "med"
	ImpactLow  ImpactLevel = "low"
)

// NewsAnalysis is the structured output of the AI news summarization.
// Sentiment is in [-1, 1].
type NewsAnalysis struct {
	Summary     string      `json:"summary"`
	Sentiment   float64     `json:"sentiment"`
	ImpactLevel ImpactLevel `json:"impact_level"`
}

// DefaultNewsAnalysis is the fixed fallback when the summarization call
// fails or returns something unparseable: the caller never fails.
func DefaultNewsAnalysis(summary string) *NewsAnalysis {
	return &NewsAnalysis{
		Summary:     summary,
		Sentiment:   0,
		ImpactLevel: ImpactLow,
	}
}

// ReportSection is one titled block of the daily report.
type ReportSection struct {
	Title string   `json:"title"`
	Lines []string `json:"lines"`
}

// SyncReport is the assembled output of one daily sync run. An empty alert
// set still produces a report so silence is distinguishable from failure.
type SyncReport struct {
	GeneratedAt   time.Time       `json:"generated_at"`
	Tickers       []string        `json:"tickers"`
	AssetsUpdated int             `json:"assets_updated"`
	Alerts        []Alert         `json:"alerts"`
	Sections      []ReportSection `json:"sections"`
}

// HasAlerts reports whether any scanner fired.
func (r *SyncReport) HasAlerts() bool {
	return len(r.Alerts) > 0
}

// Format renders the report as Markdown for the notification sink.
func (r *SyncReport) Format() string {
	var b strings.Builder
	b.WriteString("*SmartFolio Daily Report*\n")

	if !r.HasAlerts() {
		b.WriteString(fmt.Sprintf("\nUpdated %d assets. No alerts today.\n", r.AssetsUpdated))
		return b.String()
	}

	for _, sec := range r.Sections {
		if len(sec.Lines) == 0 {
			continue
		}
		b.WriteString("\n*" + sec.Title + "*\n")
		for _, line := range sec.Lines {
			b.WriteString(line + "\n")
		}
	}

	return b.String()
}
