package gsheets

import (
	"context"
	"io"
	"time"

	sheets "google.golang.org/api/sheets/v4"
)

// SheetsService is the subset of the Google Sheets API the client needs. Values are exchanged as
// row-major strings with "" for blank cells.
type SheetsService interface {
	GetValues(ctx context.Context, spreadsheetID, rangeLabel string) ([][]string, error)
	UpdateValues(ctx context.Context, spreadsheetID, rangeLabel string, values [][]string) error
	BatchClear(ctx context.Context, spreadsheetID string, ranges []string) error
	BatchUpdate(ctx context.Context, spreadsheetID string, requests []*sheets.Request) (*sheets.BatchUpdateSpreadsheetResponse, error)
	// GetSpreadsheet returns the spreadsheet metadata. Grid data is included when fields selects
	// it, for example "sheets.data.rowData.values.userEnteredFormat".
	GetSpreadsheet(ctx context.Context, spreadsheetID string, ranges []string, fields string) (*sheets.Spreadsheet, error)
	CreateSpreadsheet(ctx context.Context, title string) (*sheets.Spreadsheet, error)
}

// DriveService is the subset of the Google Drive API the client needs.
type DriveService interface {
	// FindSpreadsheet returns the ID of the first spreadsheet named title, or ErrNotFound.
	FindSpreadsheet(ctx context.Context, title string) (string, error)
	DeleteFile(ctx context.Context, fileID string) error
	CreatePermission(ctx context.Context, fileID string, req ShareRequest) (*Permission, error)
	DeletePermission(ctx context.Context, fileID, permissionID string) error
	ListPermissions(ctx context.Context, fileID string) ([]*Permission, error)
	// ListRevisions returns every revision of the file, following page tokens.
	ListRevisions(ctx context.Context, fileID string) ([]*Revision, error)
	// Download fetches an authenticated URL such as a revision export link.
	Download(ctx context.Context, url string) ([]byte, error)
	// Upload creates a Google spreadsheet from r, converting from mimeType, and returns its ID.
	Upload(ctx context.Context, r io.Reader, title, mimeType string) (string, error)
}

// Permission is a Drive permission on a file.
type Permission struct {
	ID                 string
	Type               string
	Role               string
	EmailAddress       string
	Domain             string
	AllowFileDiscovery bool
}

// Revision is one revision of a spreadsheet.
type Revision struct {
	ID           string
	MimeType     string
	ModifiedTime time.Time
	// ExportLinks maps a MIME type to the URL exporting this revision in that format.
	ExportLinks map[string]string
}

// Export MIME types accepted by Spreadsheet.Export.
const (
	MimePDF  = "application/pdf"
	MimeODS  = "application/x-vnd.oasis.opendocument.spreadsheet"
	MimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MimeZIP  = "application/zip"
	MimeCSV  = "text/csv"
	MimeTSV  = "text/tab-separated-values"

	mimeSpreadsheet = "application/vnd.google-apps.spreadsheet"
)
