package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Parse reads interchange CSV into sessions. The whole file is validated
// before anything is returned: a malformed row fails the import with
// nothing to apply. Contiguous rows sharing the same (date, workout name)
// key form one session; the same key appearing again later starts a new
// session.
func Parse(r io.Reader) ([]ParsedSession, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if !strings.EqualFold(header[0], "Date") {
		return nil, fmt.Errorf("unexpected header %q", strings.Join(header, ","))
	}

	var sessions []ParsedSession
	var current *ParsedSession
	line := 1

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		row, err := parseRow(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		if current == nil || !current.Date.Equal(row.Date) || current.Name != row.WorkoutName {
			if current != nil {
				sessions = append(sessions, *current)
			}
			current = &ParsedSession{
				Date:            row.Date,
				Name:            row.WorkoutName,
				DurationMinutes: row.DurationMinutes,
			}
		}
		current.Rows = append(current.Rows, row)
	}
	if current != nil {
		sessions = append(sessions, *current)
	}

	return sessions, nil
}

func parseRow(record []string) (Row, error) {
	var row Row
	var err error

	row.Date, err = time.Parse(dateLayout, record[0])
	if err != nil {
		return Row{}, fmt.Errorf("parsing date %q: %w", record[0], err)
	}
	row.WorkoutName = record[1]

	row.DurationMinutes, err = atoiDefault(record[2])
	if err != nil {
		return Row{}, fmt.Errorf("parsing duration %q: %w", record[2], err)
	}

	row.Exercise = strings.TrimSpace(record[3])
	if row.Exercise == "" {
		return Row{}, fmt.Errorf("empty exercise name")
	}

	row.SetNumber, err = atoiDefault(record[4])
	if err != nil {
		return Row{}, fmt.Errorf("parsing set number %q: %w", record[4], err)
	}

	if record[5] != "" {
		row.Weight, err = strconv.ParseFloat(record[5], 64)
		if err != nil {
			return Row{}, fmt.Errorf("parsing weight %q: %w", record[5], err)
		}
	}
	row.Reps, err = atoiDefault(record[6])
	if err != nil {
		return Row{}, fmt.Errorf("parsing reps %q: %w", record[6], err)
	}

	row.Distance, err = parseOptional(record[7])
	if err != nil {
		return Row{}, fmt.Errorf("parsing distance %q: %w", record[7], err)
	}
	row.TimeSec, err = parseOptional(record[8])
	if err != nil {
		return Row{}, fmt.Errorf("parsing time %q: %w", record[8], err)
	}

	row.Unit, err = parseUnit(record[9])
	if err != nil {
		return Row{}, err
	}

	return row, nil
}

func atoiDefault(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func parseOptional(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
