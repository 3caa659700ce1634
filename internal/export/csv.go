package export

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/rxbook/rxbook-go/internal/session"
	"github.com/rxbook/rxbook-go/internal/spectrum"
)

// ExportFrameCSV writes one row per spectrum column of a frame
func ExportFrameCSV(ev session.FrameEvent, directory string) (string, error) {
	filename := GenerateFilename(prefix("frame", ev), "csv", directory)
	if err := ExportFrameCSVToFile(ev, filename); err != nil {
		return "", err
	}
	return filename, nil
}

// ExportFrameCSVToFile writes a frame to a specific file
func ExportFrameCSVToFile(ev session.FrameEvent, filename string) error {
	axis, err := ev.Snapshot.Axis()
	if err != nil {
		return fmt.Errorf("frame has no frequency axis: %w", err)
	}

	file, err := createFile(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"column", "frequency_mhz", "level_dbm"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, level := range ev.Levels {
		row := []string{
			strconv.Itoa(i),
			strconv.FormatFloat(columnFrequency(axis, i), 'f', 6, 64),
			strconv.FormatFloat(level, 'f', 2, 64),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// ExportRecords writes recorded readouts to a timestamped CSV file
func ExportRecords(records []session.Record, directory string) (string, error) {
	filename := GenerateFilename("rxbook_recording", "csv", directory)
	if err := ExportRecordsToFile(records, filename); err != nil {
		return "", err
	}
	return filename, nil
}

// ExportRecordsToFile writes recorded readouts to a specific file
func ExportRecordsToFile(records []session.Record, filename string) error {
	file, err := createFile(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"timestamp", "receiver", "frequency_mhz", "level_dbm", "mode", "squelch_open"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, rec := range records {
		row := []string{
			rec.Time.UTC().Format(time.RFC3339Nano),
			rec.Receiver,
			session.FormatFrequency(rec.FrequencyMHz),
			session.FormatLevel(rec.LevelDBm),
			string(rec.Mode),
			strconv.FormatBool(rec.SquelchOpen),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// columnFrequency is the frequency at the center of a pixel column
func columnFrequency(axis spectrum.Axis, i int) float64 {
	return axis.FrequencyAtPixel(float64(i) + 0.5)
}
