package importer

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestImportRows(t *testing.T) {
	buf := workbook(t, [][]any{
		{"component", "field1", "field2"},
		{"slab", 100, 5},
		{"Stair", 170, 280},
		{"chimney", 1, 2},
		{"column", "abc", 200},
		{"wall", 0, 1},
		{"column", 4, 200},
	})

	res, err := Import(buf)
	require.NoError(t, err)
	require.Equal(t, 3, res.Count)
	assert.Equal(t, []int{4, 5, 6}, res.Skipped)

	assert.Equal(t, "slab", res.Rows[0].Component)
	assert.Equal(t, 2, res.Rows[0].Line)
	assert.Contains(t, res.Rows[0].Verdict, "Warning (RCC31)")

	assert.Equal(t, "stair", res.Rows[1].Component)
	assert.Equal(t, "Stair", res.Rows[1].Name)
	assert.Contains(t, res.Rows[1].Verdict, "Safe")

	assert.Equal(t, 7, res.Rows[2].Line)
	assert.Contains(t, res.Rows[2].Verdict, "Warning (RCC51)")
}

func TestImportSkipsNonFinite(t *testing.T) {
	buf := workbook(t, [][]any{
		{"component", "field1", "field2"},
		{"slab", "Inf", 5},
		{"slab", 100, "+Inf"},
		{"column", "NaN", 200},
		{"stair", 170, 280},
	})

	res, err := Import(buf)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 4}, res.Skipped)
	require.Equal(t, 1, res.Count)
	assert.Equal(t, "stair", res.Rows[0].Component)
}

func TestImportRejects(t *testing.T) {
	_, err := Import(bytes.NewBufferString("not a workbook"))
	assert.Error(t, err)

	_, err = Import(workbook(t, [][]any{{"component", "field1", "field2"}}))
	assert.Error(t, err)
}

func TestHandlerComponents(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "components.xlsx")
	require.NoError(t, err)
	_, err = fw.Write(workbook(t, [][]any{
		{"component", "field1", "field2"},
		{"wide_beam", 300, 400},
	}).Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/user/components/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	(&Handler{MaxUpload: 1 << 20}).Components(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var res Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Equal(t, 1, res.Count)
	assert.Equal(t, "Wide Beam", res.Rows[0].Name)

	rec = httptest.NewRecorder()
	(&Handler{}).Components(rec, httptest.NewRequest(http.MethodPost, "/api/user/components/import", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
