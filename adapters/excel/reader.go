package excel

import (
	"encoding/csv"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"tseval/domain/core"
	"tseval/domain/eval"
	"tseval/internal/errors"

	"github.com/xuri/excelize/v2"
)

// Column headers the reader recognizes, case-insensitive
const (
	colTestID          = "test_id"
	colSelected        = "selected"
	colExecuted        = "executed"
	colStatus          = "status"
	colExecutionTimeMs = "execution_time_ms"
	colFaultDetected   = "fault_detected"
	colPredictedImpact = "predicted_impact"
)

// DataReader ingests test execution exports from Excel or CSV files.
// Row order in the file is the execution order under evaluation.
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewDataReader creates a reader that handles both Excel and CSV exports
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType}
}

// ReadExecutions reads the ordered execution records from the file
func (r *DataReader) ReadExecutions() ([]eval.TestExecutionRecord, error) {
	log.Printf("[DataReader] Reading %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, errors.NotFound(r.filePath)
	}

	rows, err := r.readRows()
	if err != nil {
		return nil, errors.IngestError(r.filePath, err)
	}
	if len(rows) < 2 {
		return nil, errors.InvalidInput("execution file must have a header row and at least one data row")
	}

	records, err := r.parseRows(rows)
	if err != nil {
		return nil, err
	}

	log.Printf("[DataReader] Parsed %d execution records", len(records))
	return records, nil
}

func (r *DataReader) readRows() ([][]string, error) {
	if r.fileType == "csv" {
		return r.readCSVRows()
	}
	return r.readExcelRows()
}

// readExcelRows reads Sheet1 of the workbook
func (r *DataReader) readExcelRows() ([][]string, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	if err != nil {
		return nil, err
	}

	readTime := time.Since(startTime)
	log.Printf("[DataReader] Sheet1 read in %.2fms (%d rows)", float64(readTime.Nanoseconds())/1e6, len(rows))
	return rows, nil
}

func (r *DataReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return csv.NewReader(file).ReadAll()
}

// parseRows maps header-addressed cells onto execution records. Unknown
// columns are ignored; a missing test_id column is fatal, everything else
// defaults to the zero value.
func (r *DataReader) parseRows(rows [][]string) ([]eval.TestExecutionRecord, error) {
	index := make(map[string]int)
	for i, header := range rows[0] {
		index[strings.ToLower(strings.TrimSpace(header))] = i
	}
	if _, ok := index[colTestID]; !ok {
		return nil, errors.InvalidInput("execution file is missing the test_id column")
	}

	records := make([]eval.TestExecutionRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		testID := cell(row, index, colTestID)
		if testID == "" {
			continue
		}

		rec := eval.TestExecutionRecord{
			TestID:          core.TestID(testID),
			Selected:        parseBool(cell(row, index, colSelected)),
			Executed:        parseBool(cell(row, index, colExecuted)),
			Status:          parseStatus(cell(row, index, colStatus)),
			ExecutionTimeMs: parseFloat(cell(row, index, colExecutionTimeMs)),
			FaultDetected:   parseBool(cell(row, index, colFaultDetected)),
		}
		if raw := cell(row, index, colPredictedImpact); raw != "" {
			impact := parseFloat(raw)
			rec.PredictedImpact = &impact
		}

		records = append(records, rec)
	}
	return records, nil
}

func cell(row []string, index map[string]int, column string) string {
	i, ok := index[column]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseBool(raw string) bool {
	switch strings.ToLower(raw) {
	case "true", "1", "yes", "y":
		return true
	}
	return false
}

func parseFloat(raw string) float64 {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseStatus(raw string) eval.ExecutionStatus {
	switch strings.ToLower(raw) {
	case string(eval.StatusPassed):
		return eval.StatusPassed
	case string(eval.StatusFailed):
		return eval.StatusFailed
	default:
		return eval.StatusSkipped
	}
}
