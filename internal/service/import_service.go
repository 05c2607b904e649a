package service

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-events-admin/internal/models"
	"github.com/noah-isme/sma-events-admin/internal/repository"
	appErrors "github.com/noah-isme/sma-events-admin/pkg/errors"
)

// importColumns is the number of cells read per spreadsheet row. Shorter
// rows are padded with empty cells.
const importColumns = 16

// Column positions of the student sheet.
const (
	colFirstName = iota
	colMiddleName
	colLastName
	colDOB
	colStudentID
	colPassword
	colStreet
	colCity
	colProvince
	colDistrict
	colZip
	colEmail
	colPhone
	colClassLevel
	colFaculty
	colComments
)

var sheetDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02/01/2006",
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type uploadArchive interface {
	SaveStream(original string, r io.Reader) (string, error)
	Open(name string) (*os.File, error)
}

// ImportConfig tunes the bulk import.
type ImportConfig struct {
	// Atomic runs the whole sheet in one transaction. Otherwise rows stored
	// before a failing row are kept.
	Atomic bool
	// FallbackPassword is hashed for rows without a password. When empty a
	// random password is generated per row.
	FallbackPassword string
}

// ImportService loads students from an uploaded spreadsheet.
type ImportService struct {
	students    studentRepository
	db          txProvider
	credentials passwordHasher
	archive     uploadArchive
	cfg         ImportConfig
	logger      *zap.Logger
	metrics     *MetricsService
	now         func() time.Time
}

// NewImportService constructs the import pipeline. archive may be nil to skip
// keeping a copy of uploads.
func NewImportService(students studentRepository, db txProvider, credentials passwordHasher, archive uploadArchive, cfg ImportConfig, logger *zap.Logger, metrics *MetricsService) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if credentials == nil {
		credentials = NewCredentialService(0)
	}
	return &ImportService{students: students, db: db, credentials: credentials, archive: archive, cfg: cfg, logger: logger, metrics: metrics, now: time.Now}
}

// Import reads the first sheet of an .xlsx workbook (or a .csv file), skips
// the header row and stores one student per row in order. The first failing
// row stops the import with an error naming its sheet row number.
func (s *ImportService) Import(ctx context.Context, filename string, r io.Reader) (result *models.ImportResult, err error) {
	result = &models.ImportResult{}
	defer func() { s.metrics.RecordImport(err == nil) }()

	format, err := importFormat(filename)
	if err != nil {
		return result, err
	}

	source := r
	if s.archive != nil {
		stored, err := s.archive.SaveStream(filename, r)
		if err != nil {
			return result, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store upload")
		}
		file, err := s.archive.Open(stored)
		if err != nil {
			return result, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload")
		}
		defer file.Close() //nolint:errcheck
		source = file
		result.Archive = stored
	}

	rows, err := readSheetRows(format, source)
	if err != nil {
		return result, appErrors.Wrap(err, appErrors.ErrImportFailed.Code, appErrors.ErrImportFailed.Status, err.Error())
	}

	imported, err := s.store(ctx, rows)
	if err != nil {
		s.logger.Warn("student import stopped", zap.String("file", filename), zap.Int("imported", imported), zap.Error(err))
		if !s.cfg.Atomic {
			result.Imported = imported
			s.metrics.RecordStudentsCreated("import", imported)
		}
		return result, err
	}

	result.Imported = imported
	s.metrics.RecordStudentsCreated("import", imported)
	s.logger.Info("students imported", zap.String("file", filename), zap.Int("imported", imported), zap.Bool("atomic", s.cfg.Atomic))
	return result, nil
}

func (s *ImportService) store(ctx context.Context, rows [][]string) (imported int, err error) {
	var exec sqlx.ExtContext
	if s.cfg.Atomic && s.db != nil {
		tx, txErr := s.db.BeginTxx(ctx, nil)
		if txErr != nil {
			return 0, appErrors.Wrap(txErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to start import")
		}
		defer func() {
			if err != nil {
				_ = tx.Rollback()
				imported = 0
				return
			}
			if cerr := tx.Commit(); cerr != nil {
				imported = 0
				err = appErrors.Wrap(cerr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit import")
			}
		}()
		exec = tx
	}

	for i, row := range rows {
		if i == 0 {
			continue
		}
		rowNum := i + 1
		student, err := s.rowToStudent(row)
		if err != nil {
			return imported, rowError(rowNum, err)
		}
		if student == nil {
			continue
		}
		if err := s.students.Create(ctx, exec, student); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return imported, rowError(rowNum, errors.New("student_id or email already exists"))
			}
			return imported, rowError(rowNum, err)
		}
		imported++
	}
	return imported, nil
}

// rowToStudent maps one sheet row. A nil student means the row is blank.
func (s *ImportService) rowToStudent(row []string) (*models.Student, error) {
	cells := make([]string, importColumns)
	blank := true
	for i := 0; i < importColumns && i < len(row); i++ {
		cells[i] = strings.TrimSpace(row[i])
		if cells[i] != "" {
			blank = false
		}
	}
	if blank {
		return nil, nil
	}

	dob, err := parseSheetDate(cells[colDOB])
	if err != nil {
		return nil, err
	}
	classLevel, err := parseClassLevel(cells[colClassLevel])
	if err != nil {
		return nil, err
	}

	password := ""
	if cells[colPassword] != "" {
		password = row[colPassword]
	}
	if password == "" {
		password = s.cfg.FallbackPassword
	}
	if password == "" {
		password = uuid.NewString()
	}
	hash, err := s.credentials.Hash(password)
	if err != nil {
		return nil, err
	}

	return &models.Student{
		FirstName:    cells[colFirstName],
		MiddleName:   cells[colMiddleName],
		LastName:     cells[colLastName],
		DateOfBirth:  dob,
		StudentID:    cells[colStudentID],
		PasswordHash: hash,
		Street:       cells[colStreet],
		City:         cells[colCity],
		Province:     cells[colProvince],
		District:     cells[colDistrict],
		Zip:          cells[colZip],
		Email:        cells[colEmail],
		Phone:        cells[colPhone],
		ClassLevel:   classLevel,
		Faculty:      cells[colFaculty],
		Comments:     cells[colComments],
		CreatedAt:    s.now().UTC(),
	}, nil
}

func rowError(rowNum int, err error) error {
	return appErrors.Wrap(err, appErrors.ErrImportFailed.Code, appErrors.ErrImportFailed.Status, fmt.Sprintf("row %d: %v", rowNum, err))
}

func importFormat(filename string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".xlsx", ".xlsm":
		return "xlsx", nil
	case ".csv":
		return "csv", nil
	default:
		return "", appErrors.Clone(appErrors.ErrImportFailed, fmt.Sprintf("unsupported file type %q, upload an .xlsx or .csv file", ext))
	}
}

// readSheetRows returns all rows including the header. Workbook cells are
// read raw so dates arrive as Excel serial numbers.
func readSheetRows(format string, r io.Reader) ([][]string, error) {
	if format == "csv" {
		reader := csv.NewReader(r)
		reader.FieldsPerRecord = -1
		rows, err := reader.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		return rows, nil
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close() //nolint:errcheck

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if sheet == "" {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	return rows, nil
}

// parseSheetDate accepts ISO dates, day-first dates and Excel serial numbers.
func parseSheetDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	for _, layout := range sheetDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d, nil
		}
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil && serial > 0 {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d, nil
		}
	}
	return nil, fmt.Errorf("invalid date of birth %q", raw)
}
