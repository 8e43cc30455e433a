package api

import (
	"tseval/domain/eval"
)

// evaluateRequest is one iteration's execution export for one technique
type evaluateRequest struct {
	SessionID  string                     `json:"session_id"`
	Technique  string                     `json:"technique"`
	Iteration  int                        `json:"iteration"`
	Executions []eval.TestExecutionRecord `json:"executions"`
	Faults     []eval.FaultRecord         `json:"faults,omitempty"`
	Timing     *eval.TimingBreakdown      `json:"timing,omitempty"`
	Resources  *eval.ResourceUsage        `json:"resources,omitempty"`
}

type batchRequest struct {
	Requests []evaluateRequest `json:"requests"`
}

type compareRequest struct {
	TechniqueA string `json:"technique_a"`
	TechniqueB string `json:"technique_b"`
	Metric     string `json:"metric"`
}

// learningCurveRequest carries an iteration-ordered sequence of execution
// exports for one technique
type learningCurveRequest struct {
	SessionID        string                       `json:"session_id"`
	Technique        string                       `json:"technique"`
	Iterations       [][]eval.TestExecutionRecord `json:"iterations"`
	AdaptationCounts []int                        `json:"adaptation_counts,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type healthResponse struct {
	Status string `json:"status"`
}
