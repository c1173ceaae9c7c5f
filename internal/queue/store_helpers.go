package queue

import (
	"database/sql"
	"errors"
	"time"
)

const jobColumns = "id, ref_path, sec_path, ter_path, mode, status, error_message, created_at, updated_at, global_shift_ms, delays_json, options_path, chapters_path, temp_dir"

func scanJob(scanner interface{ Scan(dest ...any) error }) (*Job, error) {
	var (
		id           int64
		refPath      string
		secPath      string
		terPath      sql.NullString
		mode         string
		statusStr    string
		errorMessage sql.NullString
		createdRaw   sql.NullString
		updatedRaw   sql.NullString
		globalShift  sql.NullInt64
		delays       sql.NullString
		optionsPath  sql.NullString
		chaptersPath sql.NullString
		tempDir      sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&refPath,
		&secPath,
		&terPath,
		&mode,
		&statusStr,
		&errorMessage,
		&createdRaw,
		&updatedRaw,
		&globalShift,
		&delays,
		&optionsPath,
		&chaptersPath,
		&tempDir,
	); err != nil {
		return nil, err
	}

	job := &Job{
		ID:            id,
		RefPath:       refPath,
		SecPath:       secPath,
		TerPath:       terPath.String,
		Mode:          mode,
		Status:        Status(statusStr),
		ErrorMessage:  errorMessage.String,
		GlobalShiftMs: int(globalShift.Int64),
		DelaysJSON:    delays.String,
		OptionsPath:   optionsPath.String,
		ChaptersPath:  chaptersPath.String,
		TempDir:       tempDir.String,
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		job.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		job.UpdatedAt = updated
	}
	return job, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
