package stt

import (
	"fmt"
	"strings"
)

// Segment is a timed slice of the transcript, roughly fifteen words long.
type Segment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Result represents the result of a speech-to-text transcription
type Result struct {
	Text           string    `json:"text"`
	Segments       []Segment `json:"segments"`
	Language       string    `json:"language"`
	Confidence     float64   `json:"confidence"`
	Duration       float64   `json:"duration"`
	ProcessingTime float64   `json:"processing_time"`
	Provider       string    `json:"provider"`
	RawResponse    string    `json:"-"`
}

// Search returns the segments whose text contains the query,
// case-insensitively.
func (r *Result) Search(query string) []Segment {
	query = strings.ToLower(query)
	var matches []Segment
	for _, seg := range r.Segments {
		if strings.Contains(strings.ToLower(seg.Text), query) {
			matches = append(matches, seg)
		}
	}
	return matches
}

// SegmentAt returns the segment covering the given time, if any.
func (r *Result) SegmentAt(seconds float64) (Segment, bool) {
	for _, seg := range r.Segments {
		if seg.Start <= seconds && seconds <= seg.End {
			return seg, true
		}
	}
	return Segment{}, false
}

// Format renders the transcript as readable text, optionally with
// [MM:SS --> MM:SS] prefixes per segment.
func (r *Result) Format(includeTimestamps bool) string {
	if !includeTimestamps || len(r.Segments) == 0 {
		return r.Text
	}

	lines := make([]string, 0, len(r.Segments))
	for _, seg := range r.Segments {
		lines = append(lines, fmt.Sprintf("[%s --> %s] %s",
			formatTime(seg.Start), formatTime(seg.End), seg.Text))
	}
	return strings.Join(lines, "\n")
}

func formatTime(seconds float64) string {
	s := int(seconds)
	hours := s / 3600
	minutes := (s % 3600) / 60
	secs := s % 60

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}
