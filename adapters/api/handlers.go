package api

import (
	"encoding/json"
	"log"
	"net/http"

	"tseval/adapters/compare"
	"tseval/app"
	"tseval/domain/core"
	"tseval/domain/eval"
	"tseval/internal/errors"

	"github.com/go-chi/chi/v5"
)

func (a *App) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (a *App) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.InvalidInput("malformed evaluate request body"))
		return
	}

	iterReq, err := toIterationRequest(req)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := a.service.EvaluateIteration(r.Context(), iterReq)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *App) handleEvaluateBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.InvalidInput("malformed batch request body"))
		return
	}

	iterReqs := make([]app.IterationRequest, 0, len(req.Requests))
	for _, item := range req.Requests {
		iterReq, err := toIterationRequest(item)
		if err != nil {
			writeError(w, err)
			return
		}
		iterReqs = append(iterReqs, iterReq)
	}

	results, err := a.service.EvaluateBatch(r.Context(), iterReqs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (a *App) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.InvalidInput("malformed compare request body"))
		return
	}

	techniqueA, err := core.ParseTechniqueKey(req.TechniqueA)
	if err != nil {
		writeError(w, errors.InvalidInput(err.Error()))
		return
	}
	techniqueB, err := core.ParseTechniqueKey(req.TechniqueB)
	if err != nil {
		writeError(w, errors.InvalidInput(err.Error()))
		return
	}

	result, err := a.service.CompareTechniques(techniqueA, techniqueB, eval.MetricKind(req.Metric))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *App) handleCompareAll(w http.ResponseWriter, r *http.Request) {
	metric := eval.MetricKind(r.URL.Query().Get("metric"))
	if metric == "" {
		metric = eval.MetricAPFD
	}

	report, err := a.service.CompareAllTechniques(metric, compare.CorrectionBonferroni)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (a *App) handleTrend(w http.ResponseWriter, r *http.Request) {
	technique, err := core.ParseTechniqueKey(chi.URLParam(r, "technique"))
	if err != nil {
		writeError(w, errors.InvalidInput(err.Error()))
		return
	}

	metric := eval.MetricKind(r.URL.Query().Get("metric"))
	if metric == "" {
		metric = eval.MetricAPFD
	}

	report, err := a.service.TrendFor(technique, metric)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (a *App) handleLearningCurve(w http.ResponseWriter, r *http.Request) {
	var req learningCurveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.InvalidInput("malformed learning curve request body"))
		return
	}

	sessionID, err := core.ParseSessionID(req.SessionID)
	if err != nil {
		writeError(w, errors.InvalidInput(err.Error()))
		return
	}
	technique, err := core.ParseTechniqueKey(req.Technique)
	if err != nil {
		writeError(w, errors.InvalidInput(err.Error()))
		return
	}

	points, err := a.service.GenerateLearningCurve(r.Context(), sessionID, technique, req.Iterations, req.AdaptationCounts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, points)
}

func (a *App) handleLearningCurveLoad(w http.ResponseWriter, r *http.Request) {
	technique, err := core.ParseTechniqueKey(chi.URLParam(r, "technique"))
	if err != nil {
		writeError(w, errors.InvalidInput(err.Error()))
		return
	}
	sessionID, err := core.ParseSessionID(r.URL.Query().Get("session_id"))
	if err != nil {
		writeError(w, errors.InvalidInput(err.Error()))
		return
	}

	points, err := a.service.LearningCurve(r.Context(), sessionID, technique)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, points)
}

func toIterationRequest(req evaluateRequest) (app.IterationRequest, error) {
	sessionID, err := core.ParseSessionID(req.SessionID)
	if err != nil {
		return app.IterationRequest{}, errors.InvalidInput(err.Error())
	}
	technique, err := core.ParseTechniqueKey(req.Technique)
	if err != nil {
		return app.IterationRequest{}, errors.InvalidInput(err.Error())
	}

	return app.IterationRequest{
		SessionID:  sessionID,
		Technique:  technique,
		Iteration:  req.Iteration,
		Executions: req.Executions,
		Faults:     req.Faults,
		Timing:     req.Timing,
		Resources:  req.Resources,
	}, nil
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[API] Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)

	status := http.StatusInternalServerError
	switch code {
	case errors.CodeInvalidInput, errors.CodeValidationError:
		status = http.StatusBadRequest
	case errors.CodeNotFound:
		status = http.StatusNotFound
	}

	writeJSON(w, status, errorResponse{Error: err.Error(), Code: code})
}
