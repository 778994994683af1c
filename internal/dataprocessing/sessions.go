package dataprocessing

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode"

	"bkpreport/pkg/contracts/domain"
)

const (
	sessionHeaderToken = "Session Type"
	minSessionFields   = 11
)

// Column offsets of a Data Protector session export row.
const (
	colSessionType   = 0
	colSpecification = 1
	colStatus        = 2
	colMode          = 3
	colStartTime     = 4
	colEndTime       = 6
	colDuration      = 9
	colGBWritten     = 10
	colErrors        = 12
	colWarnings      = 13
	colFailedDA      = 16
	colCompletedDA   = 17
	colObjects       = 18
	colSuccess       = 20
	colSessionID     = 22
)

// ParseSessionFile reads a session export from disk. Only an unreadable file is
// an error; content problems degrade to empty or default values.
func ParseSessionFile(filePath string) (domain.SessionParseResult, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return domain.SessionParseResult{Source: filePath}, fmt.Errorf("failed to read session file: %w", err)
	}

	result := ParseSessionLines(splitLines(decodeText(data)))
	result.Source = filePath
	return result, nil
}

// ParseSessionReader is ParseSessionFile for an already open stream.
func ParseSessionReader(r io.Reader) (domain.SessionParseResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return domain.SessionParseResult{}, fmt.Errorf("failed to read session data: %w", err)
	}
	return ParseSessionLines(splitLines(decodeText(data))), nil
}

// ParseSessionLines extracts session records from the lines of an export.
// Everything before the "Session Type" header is ignored; without a header the
// result is empty.
func ParseSessionLines(lines []string) domain.SessionParseResult {
	var result domain.SessionParseResult

	headerIdx := findSessionHeader(lines)
	if headerIdx < 0 {
		return result
	}
	result.HeaderFound = true

	for _, line := range lines[headerIdx+1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}

		// Edge tabs are empty cells; trimming them would shift the offsets.
		fields := strings.Split(strings.TrimRight(line, "\r\n"), "\t")
		if len(fields) < minSessionFields {
			result.SkippedRows++
			continue
		}

		result.Records = append(result.Records, parseSessionFields(fields))
	}

	return result
}

func findSessionHeader(lines []string) int {
	for i, line := range lines {
		content := strings.TrimLeftFunc(line, func(r rune) bool {
			return r == '#' || unicode.IsSpace(r)
		})
		if strings.HasPrefix(content, sessionHeaderToken) {
			return i
		}
	}
	return -1
}

func parseSessionFields(fields []string) domain.SessionRecord {
	startTime := field(fields, colStartTime)

	success := field(fields, colSuccess)
	if success == "" {
		success = domain.DefaultSuccess
	}

	return domain.SessionRecord{
		SessionType:   field(fields, colSessionType),
		Specification: field(fields, colSpecification),
		Status:        field(fields, colStatus),
		Mode:          field(fields, colMode),
		StartTime:     startTime,
		StartDatetime: ParseStartTime(startTime),
		EndTime:       field(fields, colEndTime),
		Duration:      field(fields, colDuration),
		GBWritten:     parseNonNegativeFloat(field(fields, colGBWritten)),
		Errors:        parseNonNegativeInt(field(fields, colErrors)),
		Warnings:      parseNonNegativeInt(field(fields, colWarnings)),
		FailedDA:      parseNonNegativeInt(field(fields, colFailedDA)),
		CompletedDA:   parseNonNegativeInt(field(fields, colCompletedDA)),
		Objects:       parseNonNegativeInt(field(fields, colObjects)),
		Success:       success,
		SessionID:     field(fields, colSessionID),
	}
}

// field returns the trimmed value at idx, or "" past the end of the row.
func field(fields []string, idx int) string {
	if idx >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[idx])
}

func parseNonNegativeFloat(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func parseNonNegativeInt(s string) int {
	if s == "" {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
