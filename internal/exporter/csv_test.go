package exporter

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCSVWriter(t *testing.T) {
	writer := NewCSVWriter("", nil)
	assert.NotNil(t, writer)
	assert.Equal(t, EncodingUTF8, writer.encoding)
	assert.NotNil(t, writer.logger)
}

func TestCSVWriter_WriteCSV(t *testing.T) {
	tempDir := t.TempDir()

	tests := []struct {
		name     string
		encoding string
		filePath string
		options  WriteOptions
		validate func(t *testing.T, content []byte)
	}{
		{
			name:     "basic write with headers",
			filePath: "test_basic.csv",
			options: WriteOptions{
				Headers: []string{"CustomerID", "Recency", "Country"},
				Records: [][]string{
					{"12347", "1", "Iceland"},
					{"12583", "374", "France"},
				},
			},
			validate: func(t *testing.T, content []byte) {
				lines := strings.Split(strings.TrimSpace(string(content)), "\n")
				assert.Len(t, lines, 3)
				assert.Equal(t, "CustomerID,Recency,Country", lines[0])
				assert.Equal(t, "12347,1,Iceland", lines[1])
				assert.Equal(t, "12583,374,France", lines[2])
			},
		},
		{
			name:     "write with BOM prefix",
			filePath: "test_bom.csv",
			options: WriteOptions{
				Headers:   []string{"Segment", "Count"},
				Records:   [][]string{{"Champions", "3"}},
				BOMPrefix: true,
			},
			validate: func(t *testing.T, content []byte) {
				assert.True(t, bytes.HasPrefix(content, utf8BOM))
				lines := strings.Split(strings.TrimSpace(string(content[3:])), "\n")
				assert.Equal(t, "Segment,Count", lines[0])
				assert.Equal(t, "Champions,3", lines[1])
			},
		},
		{
			name:     "quotes fields with commas",
			filePath: "nested/dir/test_quote.csv",
			options: WriteOptions{
				Headers: []string{"Description"},
				Records: [][]string{{"SET OF 3, RED"}},
			},
			validate: func(t *testing.T, content []byte) {
				assert.Contains(t, string(content), `"SET OF 3, RED"`)
			},
		},
		{
			name:     "empty records",
			filePath: "test_empty.csv",
			options: WriteOptions{
				Headers: []string{"Col1", "Col2"},
				Records: [][]string{},
			},
			validate: func(t *testing.T, content []byte) {
				lines := strings.Split(strings.TrimSpace(string(content)), "\n")
				assert.Len(t, lines, 1)
				assert.Equal(t, "Col1,Col2", lines[0])
			},
		},
		{
			name:     "latin-1 output",
			encoding: EncodingLatin1,
			filePath: "test_latin1.csv",
			options: WriteOptions{
				Headers:   []string{"Description"},
				Records:   [][]string{{"Café"}},
				BOMPrefix: true,
			},
			validate: func(t *testing.T, content []byte) {
				assert.False(t, bytes.HasPrefix(content, utf8BOM))
				assert.Equal(t, []byte("Description\nCaf\xe9\n"), content)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tempDir, tt.filePath)
			err := NewCSVWriter(tt.encoding, nil).WriteCSV(path, tt.options)
			require.NoError(t, err)

			content, err := os.ReadFile(path)
			require.NoError(t, err)
			tt.validate(t, content)
		})
	}
}

func TestCSVWriter_Append(t *testing.T) {
	path := filepath.Join(t.TempDir(), "append.csv")
	writer := NewCSVWriter(EncodingUTF8, nil)

	require.NoError(t, writer.WriteSimpleCSV(path, []string{"A", "B"}, [][]string{{"1", "2"}}))
	require.NoError(t, writer.WriteCSV(path, WriteOptions{
		Headers: []string{"ignored"},
		Records: [][]string{{"3", "4"}},
		Append:  true,
	}))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "A,B\n1,2\n3,4\n", string(content))
}

func TestCSVWriter_StreamWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stream.csv")
	writer := NewCSVWriter(EncodingUTF8, nil)

	stream, err := writer.CreateStreamWriter(path, []string{"InvoiceNo", "TotalPrice"}, true)
	require.NoError(t, err)
	require.NoError(t, stream.WriteRecord([]string{"536365", "15.30"}))
	require.NoError(t, stream.WriteRecord([]string{"536366", "11.10"}))
	assert.Equal(t, 2, stream.Rows())
	require.NoError(t, stream.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, utf8BOM))
	assert.Equal(t, "InvoiceNo,TotalPrice\n536365,15.30\n536366,11.10\n", string(content[3:]))
}

func TestCSVWriter_StreamWriterLatin1(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stream_latin1.csv")
	stream, err := NewCSVWriter(EncodingLatin1, nil).CreateStreamWriter(path, []string{"Country"}, false)
	require.NoError(t, err)
	require.NoError(t, stream.WriteRecord([]string{"España"}))
	require.NoError(t, stream.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("Country\nEspa\xf1a\n"), content)
}
