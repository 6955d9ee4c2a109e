package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/balkashynov/punch/internal/models"
)

// userColumns is the column order of an import file
var userColumns = []string{"username", "password", "full_name", "role"}

// UserRow is one account read from an import file
type UserRow struct {
	Username string
	Password string
	FullName string
	Role     models.Role
}

// ErrNoUserRows is returned when a file holds nothing but a header
var ErrNoUserRows = errors.New("import file has no user rows")

// ParseUsersFile reads users from a .csv or .xlsx file
func ParseUsersFile(path string) ([]UserRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ParseUsersCSV(f)
	case ".xlsx":
		return ParseUsersXLSX(f)
	}
	return nil, fmt.Errorf("unsupported import file %s. Use .csv or .xlsx", filepath.Base(path))
}

// ParseUsersCSV reads username,password,full_name,role records. A first
// row starting with "username" (or "usuario") is a header and skipped.
// Short rows come back with empty fields so validation can report them
// by row number.
func ParseUsersCSV(r io.Reader) ([]UserRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return usersFromRows(records)
}

// ParseUsersXLSX reads the first sheet of a workbook with the same
// layout as ParseUsersCSV
func ParseUsersXLSX(r io.Reader) ([]UserRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	return usersFromRows(rows)
}

func usersFromRows(rows [][]string) ([]UserRow, error) {
	if len(rows) > 0 && isHeader(rows[0]) {
		rows = rows[1:]
	}

	var users []UserRow
	for _, row := range rows {
		if isBlank(row) {
			continue
		}
		cell := func(i int) string {
			if i < len(row) {
				return strings.TrimSpace(row[i])
			}
			return ""
		}
		users = append(users, UserRow{
			Username: cell(0),
			Password: cell(1),
			FullName: cell(2),
			Role:     models.Role(strings.ToLower(cell(3))),
		})
	}

	if len(users) == 0 {
		return nil, ErrNoUserRows
	}
	return users, nil
}

func isHeader(row []string) bool {
	if len(row) == 0 {
		return false
	}
	first := strings.ToLower(strings.TrimSpace(row[0]))
	return first == userColumns[0] || first == "usuario"
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
