package gsheets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"
	httptransport "google.golang.org/api/transport/http"
)

type googleServices struct {
	sheets *sheets.Service
	drive  *drive.Service
	http   *http.Client
}

// NewGoogleServices builds the Sheets and Drive collaborators over one authenticated HTTP client.
// Credentials are resolved from opts, falling back to Application Default Credentials.
func NewGoogleServices(ctx context.Context, opts ...option.ClientOption) (SheetsService, DriveService, error) {
	opts = append([]option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope, drive.DriveScope)}, opts...)
	hc, _, err := httptransport.NewClient(ctx, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("google http client: %w", err)
	}
	s, err := sheets.NewService(ctx, option.WithHTTPClient(hc))
	if err != nil {
		return nil, nil, fmt.Errorf("sheets service: %w", err)
	}
	d, err := drive.NewService(ctx, option.WithHTTPClient(hc))
	if err != nil {
		return nil, nil, fmt.Errorf("drive service: %w", err)
	}
	g := &googleServices{sheets: s, drive: d, http: hc}
	return g, g, nil
}

func (g *googleServices) GetValues(ctx context.Context, spreadsheetID, rangeLabel string) ([][]string, error) {
	resp, err := g.sheets.Spreadsheets.Values.Get(spreadsheetID, rangeLabel).
		ValueRenderOption("FORMATTED_VALUE").Context(ctx).Do()
	if err != nil {
		return nil, remoteError("values.get "+rangeLabel, err)
	}
	values := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		values[i] = make([]string, len(row))
		for j, v := range row {
			values[i][j] = fmt.Sprint(v)
		}
	}
	return values, nil
}

func (g *googleServices) UpdateValues(ctx context.Context, spreadsheetID, rangeLabel string, values [][]string) error {
	rows := make([][]interface{}, len(values))
	for i, row := range values {
		rows[i] = make([]interface{}, len(row))
		for j, v := range row {
			rows[i][j] = v
		}
	}
	_, err := g.sheets.Spreadsheets.Values.Update(spreadsheetID, rangeLabel, &sheets.ValueRange{Values: rows}).
		ValueInputOption("RAW").Context(ctx).Do()
	return remoteError("values.update "+rangeLabel, err)
}

func (g *googleServices) BatchClear(ctx context.Context, spreadsheetID string, ranges []string) error {
	_, err := g.sheets.Spreadsheets.Values.BatchClear(spreadsheetID, &sheets.BatchClearValuesRequest{Ranges: ranges}).
		Context(ctx).Do()
	return remoteError("values.batchClear", err)
}

func (g *googleServices) BatchUpdate(ctx context.Context, spreadsheetID string, requests []*sheets.Request) (*sheets.BatchUpdateSpreadsheetResponse, error) {
	resp, err := g.sheets.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{Requests: requests}).
		Context(ctx).Do()
	if err != nil {
		return nil, remoteError("spreadsheets.batchUpdate", err)
	}
	return resp, nil
}

func (g *googleServices) GetSpreadsheet(ctx context.Context, spreadsheetID string, ranges []string, fields string) (*sheets.Spreadsheet, error) {
	call := g.sheets.Spreadsheets.Get(spreadsheetID).Context(ctx)
	if len(ranges) > 0 {
		call = call.Ranges(ranges...)
	}
	if fields != "" {
		call = call.Fields(googleapi.Field(fields))
		if strings.Contains(fields, ".data") {
			call = call.IncludeGridData(true)
		}
	}
	resp, err := call.Do()
	if err != nil {
		return nil, remoteError("spreadsheets.get", err)
	}
	return resp, nil
}

func (g *googleServices) CreateSpreadsheet(ctx context.Context, title string) (*sheets.Spreadsheet, error) {
	resp, err := g.sheets.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{Title: title},
	}).Context(ctx).Do()
	if err != nil {
		return nil, remoteError("spreadsheets.create", err)
	}
	return resp, nil
}

func (g *googleServices) FindSpreadsheet(ctx context.Context, title string) (string, error) {
	q := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false", escapeQuery(title), mimeSpreadsheet)
	resp, err := g.drive.Files.List().Q(q).Fields("files(id,name)").PageSize(1).
		SupportsAllDrives(true).IncludeItemsFromAllDrives(true).Context(ctx).Do()
	if err != nil {
		return "", remoteError("files.list", err)
	}
	if len(resp.Files) == 0 {
		return "", notFound(fmt.Sprintf("spreadsheet %q", title), nil)
	}
	return resp.Files[0].Id, nil
}

func (g *googleServices) DeleteFile(ctx context.Context, fileID string) error {
	err := g.drive.Files.Delete(fileID).SupportsAllDrives(true).Context(ctx).Do()
	return remoteError("files.delete "+fileID, err)
}

func (g *googleServices) CreatePermission(ctx context.Context, fileID string, req ShareRequest) (*Permission, error) {
	p := &drive.Permission{
		Type:         req.Type,
		Role:         req.Role,
		EmailAddress: req.Email,
	}
	if req.Type == "domain" {
		p.Domain, p.EmailAddress = req.Email, ""
	}
	if req.Type == "domain" || req.Type == "anyone" {
		p.AllowFileDiscovery = !req.WithLink
		p.ForceSendFields = []string{"AllowFileDiscovery"}
	}
	call := g.drive.Permissions.Create(fileID, p).SupportsAllDrives(true).
		SendNotificationEmail(req.Notify).TransferOwnership(req.Role == "owner").Context(ctx)
	if req.Notify && req.Message != "" {
		call = call.EmailMessage(req.Message)
	}
	resp, err := call.Do()
	if err != nil {
		return nil, remoteError("permissions.create", err)
	}
	return permissionFromAPI(resp), nil
}

func (g *googleServices) DeletePermission(ctx context.Context, fileID, permissionID string) error {
	err := g.drive.Permissions.Delete(fileID, permissionID).SupportsAllDrives(true).Context(ctx).Do()
	return remoteError("permissions.delete", err)
}

func (g *googleServices) ListPermissions(ctx context.Context, fileID string) ([]*Permission, error) {
	var res []*Permission
	token := ""
	for {
		call := g.drive.Permissions.List(fileID).SupportsAllDrives(true).
			Fields("nextPageToken", "permissions(id,type,role,emailAddress,domain,allowFileDiscovery)").Context(ctx)
		if token != "" {
			call = call.PageToken(token)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, remoteError("permissions.list", err)
		}
		for _, p := range resp.Permissions {
			res = append(res, permissionFromAPI(p))
		}
		if token = resp.NextPageToken; token == "" {
			return res, nil
		}
	}
}

func (g *googleServices) ListRevisions(ctx context.Context, fileID string) ([]*Revision, error) {
	var res []*Revision
	token := ""
	for {
		call := g.drive.Revisions.List(fileID).Fields("*").Context(ctx)
		if token != "" {
			call = call.PageToken(token)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, remoteError("revisions.list", err)
		}
		for _, r := range resp.Revisions {
			rev := &Revision{ID: r.Id, MimeType: r.MimeType, ExportLinks: r.ExportLinks}
			if r.ModifiedTime != "" {
				if rev.ModifiedTime, err = time.Parse(time.RFC3339Nano, r.ModifiedTime); err != nil {
					return nil, fmt.Errorf("revision %s modified time %q: %w", r.Id, r.ModifiedTime, err)
				}
			}
			res = append(res, rev)
		}
		if token = resp.NextPageToken; token == "" {
			return res, nil
		}
	}
}

func (g *googleServices) Download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.http.Do(req)
	if err != nil {
		return nil, remoteError("download", err)
	}
	defer resp.Body.Close()
	if err := googleapi.CheckResponse(resp); err != nil {
		return nil, remoteError("download", err)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, remoteError("download", err)
	}
	return data, nil
}

func (g *googleServices) Upload(ctx context.Context, r io.Reader, title, mimeType string) (string, error) {
	f := &drive.File{Name: title, MimeType: mimeSpreadsheet}
	resp, err := g.drive.Files.Create(f).Media(r, googleapi.ContentType(mimeType)).
		SupportsAllDrives(true).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", remoteError("files.create", err)
	}
	return resp.Id, nil
}

func permissionFromAPI(p *drive.Permission) *Permission {
	return &Permission{
		ID:                 p.Id,
		Type:               p.Type,
		Role:               p.Role,
		EmailAddress:       p.EmailAddress,
		Domain:             p.Domain,
		AllowFileDiscovery: p.AllowFileDiscovery,
	}
}

func escapeQuery(s string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s)
}
