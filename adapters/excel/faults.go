package excel

import (
	"log"
	"strings"

	"tseval/domain/core"
	"tseval/domain/eval"
	"tseval/internal/errors"

	"github.com/xuri/excelize/v2"
)

const (
	colFaultID        = "fault_id"
	colDetectingTests = "detecting_tests"
	colSeverity       = "severity"
	colFaultType      = "fault_type"
)

// ReadFaults reads the injected fault set from the Faults sheet of an
// Excel workbook. CSV exports carry no fault sheet; callers fall back to
// heuristic confusion estimation when no fault ground truth is available.
func (r *DataReader) ReadFaults() ([]eval.FaultRecord, error) {
	if r.fileType != "xlsx" {
		return nil, nil
	}

	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, errors.IngestError(r.filePath, err)
	}
	defer f.Close()

	rows, err := f.GetRows("Faults")
	if err != nil {
		// No fault sheet means no ground truth, not a failure
		log.Printf("[DataReader] No Faults sheet in %s, confusion metrics will be estimated", r.filePath)
		return nil, nil
	}
	if len(rows) < 2 {
		return nil, nil
	}

	index := make(map[string]int)
	for i, header := range rows[0] {
		index[strings.ToLower(strings.TrimSpace(header))] = i
	}
	if _, ok := index[colFaultID]; !ok {
		return nil, errors.InvalidInput("Faults sheet is missing the fault_id column")
	}

	faults := make([]eval.FaultRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		faultID := cell(row, index, colFaultID)
		if faultID == "" {
			continue
		}

		fault := eval.FaultRecord{
			FaultID:   core.FaultID(faultID),
			Severity:  cell(row, index, colSeverity),
			FaultType: cell(row, index, colFaultType),
		}
		for _, testID := range strings.Split(cell(row, index, colDetectingTests), ";") {
			if testID = strings.TrimSpace(testID); testID != "" {
				fault.DetectingTests = append(fault.DetectingTests, core.TestID(testID))
			}
		}
		faults = append(faults, fault)
	}

	log.Printf("[DataReader] Parsed %d fault records", len(faults))
	return faults, nil
}
