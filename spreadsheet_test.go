package gsheets

import (
	"bytes"
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func openRoster(t *testing.T) (*Spreadsheet, *fakeSheets, *fakeDrive, *[]time.Duration) {
	t.Helper()
	c, s, d, delays := newTestClient(t)
	fake := s.add("Roster", "Names", "Other", "Third")
	ss, err := c.OpenByKey(context.Background(), fake.id)
	require.NoError(t, err)
	return ss, s, d, delays
}

func titles(ws []*Worksheet) []string {
	res := make([]string, len(ws))
	for i, w := range ws {
		res[i] = w.Title()
	}
	return res
}

func TestSpreadsheet_Select(t *testing.T) {
	ss, _, _, _ := openRoster(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		sel     WorksheetSelector
		want    string
		wantErr error
	}{
		{name: "title", sel: ByTitle(" other "), want: "Other"},
		{name: "id", sel: ByID(2), want: "Third"},
		{name: "first id", sel: ByID(0), want: "Names"},
		{name: "index", sel: ByIndex(1), want: "Other"},
		{name: "default", sel: WorksheetSelector{}, want: "Names"},
		{name: "missing title", sel: ByTitle("Nope"), wantErr: ErrNotFound},
		{name: "missing index", sel: ByIndex(3), wantErr: ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := ss.Select(ctx, tt.sel)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, w.Title())
			assert.Same(t, w, ss.Active())
		})
	}
}

func TestSpreadsheet_Worksheets(t *testing.T) {
	ss, _, _, _ := openRoster(t)
	active := ss.Active()

	all, err := ss.Worksheets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Names", "Other", "Third"}, titles(all))
	assert.Same(t, active, all[0])
	assert.Equal(t, 2, all[2].Index())
	assert.EqualValues(t, 1000, all[1].RowCount())

	again, err := ss.Worksheets(context.Background())
	require.NoError(t, err)
	for i := range all {
		assert.Same(t, all[i], again[i])
	}
}

func TestSpreadsheet_AddWorksheet(t *testing.T) {
	ss, s, _, _ := openRoster(t)
	ctx := context.Background()

	w, err := ss.AddWorksheet(ctx, AddWorksheetRequest{Title: "Summary"})
	require.NoError(t, err)
	assert.Same(t, w, ss.Active())
	assert.Equal(t, "Summary", w.Title())
	assert.EqualValues(t, 56, w.RowCount())
	assert.EqualValues(t, 26, w.ColumnCount())
	assert.Len(t, s.spreadsheets[ss.ID()].sheets, 4)

	_, err = ss.AddWorksheet(ctx, AddWorksheetRequest{Title: "Other", FailIfExists: true})
	assert.ErrorIs(t, err, ErrAlreadyExists)

	existing, err := ss.AddWorksheet(ctx, AddWorksheetRequest{Title: "Other", Rows: 5, Cols: 5})
	require.NoError(t, err)
	assert.Equal(t, "Other", existing.Title())
	assert.Same(t, existing, ss.Active())
	assert.Len(t, s.spreadsheets[ss.ID()].sheets, 4)

	_, err = ss.AddWorksheet(ctx, AddWorksheetRequest{})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSpreadsheet_DeleteWorksheet(t *testing.T) {
	ss, s, _, _ := openRoster(t)
	ctx := context.Background()

	require.NoError(t, ss.DeleteWorksheet(ctx))
	assert.Nil(t, ss.Active())
	assert.Len(t, s.spreadsheets[ss.ID()].sheets, 2)
	assert.ErrorIs(t, ss.DeleteWorksheet(ctx), ErrNoWorksheet)

	all, err := ss.Worksheets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Other", "Third"}, titles(all))
}

func TestSpreadsheet_Reorder(t *testing.T) {
	ss, _, _, _ := openRoster(t)
	ctx := context.Background()

	all, err := ss.Worksheets(ctx)
	require.NoError(t, err)
	require.NoError(t, ss.Reorder(ctx, []*Worksheet{all[2], all[0], all[1]}))
	assert.Equal(t, 0, all[2].Index())

	all, err = ss.Worksheets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Third", "Names", "Other"}, titles(all))
}

func TestSpreadsheet_Share(t *testing.T) {
	ss, _, d, _ := openRoster(t)
	ctx := context.Background()

	invalid := []ShareRequest{
		{Email: "otto@example.com", Type: "robot", Role: "writer"},
		{Email: "otto@example.com", Type: "user", Role: "admin"},
		{Type: "user", Role: "reader"},
	}
	for _, req := range invalid {
		_, err := ss.Share(ctx, req)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	}
	assert.Zero(t, d.calls["CreatePermission"])

	_, err := ss.Share(ctx, ShareRequest{Email: "otto@example.com", Type: "user", Role: "writer"})
	require.NoError(t, err)
	_, err = ss.Share(ctx, ShareRequest{Email: "otto@example.com", Type: "user", Role: "reader"})
	require.NoError(t, err)
	_, err = ss.Share(ctx, ShareRequest{Email: "ana@example.com", Type: "user", Role: "reader"})
	require.NoError(t, err)
	_, err = ss.Share(ctx, ShareRequest{Type: "anyone", Role: "reader", WithLink: true})
	require.NoError(t, err)

	perms, err := ss.Permissions(ctx)
	require.NoError(t, err)
	assert.Len(t, perms, 4)

	require.NoError(t, ss.Unshare(ctx, "Otto@example.com", "reader"))
	perms, err = ss.Permissions(ctx)
	require.NoError(t, err)
	assert.Len(t, perms, 3)

	require.NoError(t, ss.Unshare(ctx, "otto@example.com", "any"))
	perms, err = ss.Permissions(ctx)
	require.NoError(t, err)
	require.Len(t, perms, 2)
	assert.Equal(t, "ana@example.com", perms[0].EmailAddress)
	assert.Equal(t, "anyone", perms[1].Type)

	assert.ErrorIs(t, ss.Unshare(ctx, "", "any"), ErrInvalidArgument)
}

func TestSpreadsheet_Revisions(t *testing.T) {
	ss, _, d, _ := openRoster(t)
	ctx := context.Background()

	_, err := ss.Revision(ctx, "head")
	assert.ErrorIs(t, err, ErrNotFound)

	base := time.Date(2021, 11, 15, 9, 25, 19, 0, time.UTC)
	d.addRevision(ss.ID(), "16", base.Add(48*time.Hour), nil)
	d.addRevision(ss.ID(), "1", base, nil)
	d.addRevision(ss.ID(), "40", base.Add(72*time.Hour), nil)

	revs, err := ss.Revisions(ctx)
	require.NoError(t, err)
	ids := make([]string, len(revs))
	for i, r := range revs {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"1", "16", "40"}, ids)

	head, err := ss.Revision(ctx, "head")
	require.NoError(t, err)
	assert.Equal(t, "40", head.ID)
	latest, err := ss.Revision(ctx, "")
	require.NoError(t, err)
	assert.Same(t, head, latest)

	r, err := ss.Revision(ctx, "16")
	require.NoError(t, err)
	assert.Equal(t, base.Add(48*time.Hour), r.ModifiedTime)

	_, err = ss.Revision(ctx, "7")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSpreadsheet_Export(t *testing.T) {
	ss, _, d, delays := openRoster(t)
	ctx := context.Background()
	d.addRevision(ss.ID(), "1", time.Now(), map[string][]byte{MimeCSV: []byte("a,b\n")})
	d.fail["Download"] = []error{apiError("download", http.StatusForbidden, "rate limit")}

	var buf bytes.Buffer
	n, err := ss.Export(ctx, &buf, "head", MimeCSV)
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)
	assert.Equal(t, "a,b\n", buf.String())
	assert.Equal(t, []time.Duration{2 * time.Second}, *delays)

	_, err = ss.Export(ctx, &buf, "1", MimePDF)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSpreadsheet_RevisionValues(t *testing.T) {
	ss, _, d, _ := openRoster(t)
	ctx := context.Background()

	f := excelize.NewFile()
	_, err := f.NewSheet("Names")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Names", "A1", &[]interface{}{"Patricio", "Levi", "Weiss"}))
	require.NoError(t, f.SetSheetRow("Names", "A2", &[]interface{}{"Halimah", "", "Abraham"}))
	xlsx, err := f.WriteToBuffer()
	require.NoError(t, err)
	d.addRevision(ss.ID(), "3", time.Now(), map[string][]byte{MimeXLSX: xlsx.Bytes()})

	rows, err := ss.RevisionValues(ctx, "head", "")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Patricio", "Levi", "Weiss"}, {"Halimah", "", "Abraham"}}, rows)

	_, err = ss.RevisionValues(ctx, "3", "Missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSpreadsheet_Delete(t *testing.T) {
	ss, s, d, _ := openRoster(t)
	ws := ss.Active()
	require.NoError(t, ss.Delete(context.Background()))
	assert.Nil(t, ss.Active())
	assert.Nil(t, ss.client.Active())
	assert.True(t, ws.Snapshot().Expired())
	assert.NotContains(t, s.spreadsheets, ss.ID())
	assert.Equal(t, []string{ss.ID()}, d.deleted)
}
