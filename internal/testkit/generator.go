package testkit

import (
	"fmt"
	"math"
	"math/rand"

	"tseval/domain/core"
	"tseval/domain/eval"
)

// SuiteGeneratorConfig configures the synthetic execution generator
type SuiteGeneratorConfig struct {
	SuiteSize        int     `json:"suite_size"`
	SelectionRatio   float64 `json:"selection_ratio"`
	FaultCount       int     `json:"fault_count"`
	TechniqueQuality float64 `json:"technique_quality"`
	AvgTestTimeMs    float64 `json:"avg_test_time_ms"`
	Seed             int64   `json:"seed"`
}

// DefaultSuiteConfig returns sensible defaults for synthetic suites
func DefaultSuiteConfig() SuiteGeneratorConfig {
	return SuiteGeneratorConfig{
		SuiteSize:        100,
		SelectionRatio:   0.4,
		FaultCount:       8,
		TechniqueQuality: 0.8,
		AvgTestTimeMs:    150,
		Seed:             42,
	}
}

// SuiteGenerator produces deterministic execution fixtures for the
// evaluation engines. TechniqueQuality controls how early fault-detecting
// tests land in the selected ordering: 1.0 front-loads every detection,
// 0.0 scatters them uniformly.
type SuiteGenerator struct {
	config SuiteGeneratorConfig
	rng    *rand.Rand
}

// NewSuiteGenerator creates a seeded suite generator
func NewSuiteGenerator(config SuiteGeneratorConfig) *SuiteGenerator {
	return &SuiteGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// GenerateExecutions produces one iteration's ordered execution records.
// Selected records come first, fault detections placed by quality.
func (g *SuiteGenerator) GenerateExecutions() []eval.TestExecutionRecord {
	n := g.config.SuiteSize
	selected := int(math.Round(float64(n) * g.config.SelectionRatio))
	if selected > n {
		selected = n
	}

	faultSlots := g.detectionSlots(selected)

	records := make([]eval.TestExecutionRecord, 0, n)
	for i := 0; i < n; i++ {
		rec := eval.TestExecutionRecord{
			TestID:   core.TestID(fmt.Sprintf("test_%04d", i+1)),
			Selected: i < selected,
		}
		if rec.Selected {
			rec.Executed = true
			rec.ExecutionTimeMs = g.testDuration()
			if faultSlots[i] {
				rec.Status = eval.StatusFailed
				rec.FaultDetected = true
			} else {
				rec.Status = eval.StatusPassed
			}
			impact := g.predictedImpact(rec.FaultDetected)
			rec.PredictedImpact = &impact
		} else {
			rec.Status = eval.StatusSkipped
		}
		records = append(records, rec)
	}
	return records
}

// GenerateFaults produces the injected fault set matching the suite,
// assigning each fault the detecting test from the generated ordering.
func (g *SuiteGenerator) GenerateFaults(executions []eval.TestExecutionRecord) []eval.FaultRecord {
	faults := make([]eval.FaultRecord, 0, g.config.FaultCount)
	detecting := make([]core.TestID, 0)
	for _, rec := range executions {
		if rec.FaultDetected {
			detecting = append(detecting, rec.TestID)
		}
	}

	for i := 0; i < g.config.FaultCount; i++ {
		fault := eval.FaultRecord{FaultID: core.FaultID(fmt.Sprintf("fault_%03d", i+1))}
		if i < len(detecting) {
			fault.DetectingTests = []core.TestID{detecting[i]}
		}
		faults = append(faults, fault)
	}
	return faults
}

// GenerateHistory produces an iteration-ordered metric history drifting
// from start toward target with seeded noise.
func (g *SuiteGenerator) GenerateHistory(iterations int, start, target, noise float64) []float64 {
	history := make([]float64, iterations)
	for i := range history {
		progress := 0.0
		if iterations > 1 {
			progress = float64(i) / float64(iterations-1)
		}
		history[i] = start + (target-start)*progress + g.rng.NormFloat64()*noise
	}
	return history
}

// detectionSlots picks which selected positions detect a fault. Quality
// biases slots toward the front of the ordering.
func (g *SuiteGenerator) detectionSlots(selected int) map[int]bool {
	slots := make(map[int]bool)
	if selected == 0 {
		return slots
	}

	detections := g.config.FaultCount
	if detections > selected {
		detections = selected
	}

	for len(slots) < detections {
		var pos int
		if g.rng.Float64() < g.config.TechniqueQuality {
			// Front half of the ordering
			pos = g.rng.Intn(max(1, selected/2))
		} else {
			pos = g.rng.Intn(selected)
		}
		slots[pos] = true
	}
	return slots
}

func (g *SuiteGenerator) testDuration() float64 {
	d := g.config.AvgTestTimeMs + g.rng.NormFloat64()*g.config.AvgTestTimeMs*0.2
	return math.Max(1, d)
}

// predictedImpact emits a technique self-prediction that agrees with the
// outcome at the configured quality rate.
func (g *SuiteGenerator) predictedImpact(detected bool) float64 {
	agrees := g.rng.Float64() < g.config.TechniqueQuality
	predictsDetection := detected == agrees
	if predictsDetection {
		return 0.6 + g.rng.Float64()*0.4
	}
	return g.rng.Float64() * 0.4
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
