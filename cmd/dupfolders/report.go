// cmd/dupfolders/report.go
package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// DuplicateFile is one row of the scanner's duplicate report. Records are
// immutable once parsed.
type DuplicateFile struct {
	GroupID string
	Folder  string
	Path    string
	Size    int64
}

// RowError records a report row that could not be parsed. The row is
// skipped; the rest of the report is still processed.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// reportHeader is the exact header the Synology duplicate-file scanner
// writes. Anything else means we are not looking at a duplicate report.
var reportHeader = []string{"Group", "Shared Folder", "File", "Size(Byte)", "Modified Time"}

// ReportOptions controls how report rows are interpreted.
type ReportOptions struct {
	// VolumePrefix is the mount point every file path must live under,
	// e.g. "/volume1".
	VolumePrefix string
	// FolderDepth is how many path components below the volume prefix
	// identify a folder. Depth 1 yields top-level shared folders;
	// deeper values yield nested folder names like "photos/2020".
	FolderDepth int
	// Excluder drops records living under housekeeping folders
	// (#recycle, @eaDir). May be nil.
	Excluder *FolderExcluder
}

// readDuplicateReport parses the CSV duplicate report at csvPath. Bad rows
// are collected as RowErrors and skipped rather than aborting the run;
// only an unreadable file or a wrong header is fatal.
func readDuplicateReport(csvPath string, opts ReportOptions) ([]DuplicateFile, []RowError, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open duplicate report '%s': %w", csvPath, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // row length validated per record below

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, fmt.Errorf("duplicate report '%s' is empty", csvPath)
		}
		return nil, nil, fmt.Errorf("cannot read header of '%s': %w", csvPath, err)
	}
	if !equalFields(header, reportHeader) {
		return nil, nil, fmt.Errorf("unexpected CSV header %v, want %v", header, reportHeader)
	}

	var (
		files     []DuplicateFile
		rowErrors []RowError
		excluded  int
	)
	line := 1
	for {
		line++
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			rowErrors = append(rowErrors, RowError{Line: line, Err: err})
			continue
		}

		file, parseErr := parseReportRow(record, opts)
		if parseErr != nil {
			slog.Debug("Skipping malformed report row.", "line", line, "error", parseErr)
			rowErrors = append(rowErrors, RowError{Line: line, Err: parseErr})
			continue
		}
		if opts.Excluder != nil && opts.Excluder.IsExcluded(file.Path) {
			excluded++
			continue
		}
		files = append(files, file)
	}

	slog.Info("Duplicate report parsed.",
		"path", csvPath, "rows", len(files), "skipped", len(rowErrors), "excluded", excluded)
	return files, rowErrors, nil
}

// parseReportRow validates one data row and turns it into a DuplicateFile.
func parseReportRow(record []string, opts ReportOptions) (DuplicateFile, error) {
	if len(record) != len(reportHeader) {
		return DuplicateFile{}, fmt.Errorf("expected %d fields, got %d", len(reportHeader), len(record))
	}
	groupID, sharedFolder, path, sizeStr, modified := record[0], record[1], record[2], record[3], record[4]
	if groupID == "" || sharedFolder == "" || path == "" || modified == "" {
		return DuplicateFile{}, fmt.Errorf("all fields must be non-empty")
	}

	size, err := strconv.ParseInt(sizeStr, 10, 64)
	if err != nil {
		return DuplicateFile{}, fmt.Errorf("invalid size value %q", sizeStr)
	}
	if size < 0 {
		return DuplicateFile{}, fmt.Errorf("negative size %d", size)
	}

	folder, err := extractFolderName(path, opts.VolumePrefix, opts.FolderDepth)
	if err != nil {
		return DuplicateFile{}, err
	}

	return DuplicateFile{GroupID: groupID, Folder: folder, Path: path, Size: size}, nil
}

// extractFolderName derives the folder identity from a full file path.
// With prefix "/volume1" and depth 1, "/volume1/photos/vacation/img.jpg"
// yields "photos"; depth 2 yields "photos/vacation". The final component
// is the file itself and never counts toward the folder.
func extractFolderName(path, volumePrefix string, depth int) (string, error) {
	if depth < 1 {
		depth = 1
	}
	prefix := strings.TrimRight(volumePrefix, "/")
	if prefix == "" || !strings.HasPrefix(path, prefix+"/") {
		return "", fmt.Errorf("invalid path format: %q, expected %s/<folder>/...", path, prefix)
	}
	rest := strings.Trim(strings.TrimPrefix(path, prefix+"/"), "/")
	parts := strings.Split(rest, "/")
	if len(parts) < 2 || parts[0] == "" {
		// A bare "/volume1/file" has no shared folder component.
		return "", fmt.Errorf("invalid path format: %q, expected %s/<folder>/...", path, prefix)
	}
	// Never swallow the filename into the folder identity.
	if depth > len(parts)-1 {
		depth = len(parts) - 1
	}
	for _, part := range parts[:depth] {
		if part == "" {
			return "", fmt.Errorf("invalid path format: %q, empty folder component", path)
		}
	}
	return strings.Join(parts[:depth], "/"), nil
}

func equalFields(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if strings.TrimSpace(a[i]) != b[i] {
			return false
		}
	}
	return true
}
