package ports

import (
	"tseval/domain/eval"
)

// ExecutionReader produces ordered execution records from an external
// source (spreadsheet, CSV export of a test runner). Order of the returned
// slice is the execution order under evaluation.
type ExecutionReader interface {
	ReadExecutions() ([]eval.TestExecutionRecord, error)
}
