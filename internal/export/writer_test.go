package export

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/nconklindev/bomdiff/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleSheet() *Sheet {
	return &Sheet{
		Headers: []string{"PN", "Left.Qty", "Right.Qty"},
		Rows: [][]types.Cell{
			{"A", 1.0, 2.0},
			{"B", "", nil},
		},
	}
}

func TestWrite(t *testing.T) {
	data, err := Write(sampleSheet())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"PN", "Left.Qty", "Right.Qty"}, rows[0])
	assert.Equal(t, []string{"A", "1", "2"}, rows[1])
	assert.Equal(t, "B", rows[2][0])

	styleID, err := f.GetCellStyle(SheetName, "A1")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	require.NotNil(t, style.Font)
	assert.True(t, style.Font.Bold)
	require.NotEmpty(t, style.Fill.Color)
	assert.Contains(t, style.Fill.Color[0], HeaderFill)
	assert.Len(t, style.Border, 4)

	styleID, err = f.GetCellStyle(SheetName, "C3")
	require.NoError(t, err)
	style, err = f.GetStyle(styleID)
	require.NoError(t, err)
	assert.Len(t, style.Border, 4, "empty cells are bordered too")
}

func TestWrite_HeaderOnly(t *testing.T) {
	data, err := Write(&Sheet{Headers: []string{"PN"}})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"PN"}}, rows)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, WriteFile(sampleSheet(), path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	value, err := f.GetCellValue(SheetName, "C2")
	require.NoError(t, err)
	assert.Equal(t, "2", value)
}

func TestColumnWidths(t *testing.T) {
	s := &Sheet{
		Headers: []string{"PN", "Description"},
		Rows: [][]types.Cell{
			{"A", "a very long description that goes well past the maximum column width"},
		},
	}

	widths := columnWidths(s)

	assert.Equal(t, []float64{minColWidth, maxColWidth}, widths)
}
