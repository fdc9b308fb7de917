package manifest

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"manifest-service/pkg/logger"
)

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)

	require.NoError(t, zw.Close())
	return buf.Bytes()
}

const docxHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
	`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">`

func TestExtractDocxBytes(t *testing.T) {
	data := buildDocx(t, docxHeader+
		`<w:body>`+
		`<w:p><w:r><w:t>[New] 10-Jul-25 Transfer</w:t></w:r></w:p>`+
		`<w:p><w:r><w:t>Booking #: ABC-123</w:t></w:r></w:p>`+
		`</w:body></w:document>`)

	text, err := ExtractDocxBytes(bytes.NewReader(data), int64(len(data)))

	require.NoError(t, err)
	assert.Equal(t, "[New] 10-Jul-25 Transfer\nBooking #: ABC-123", text)
}

func TestExtractDocxSplitRunsAndBreaks(t *testing.T) {
	data := buildDocx(t, docxHeader+
		`<w:body>`+
		`<w:p><w:r><w:t>Hotel</w:t></w:r><w:r><w:t xml:space="preserve"> Name: Grand</w:t></w:r></w:p>`+
		`<w:p><w:r><w:t>col1</w:t><w:tab/><w:t>col2</w:t><w:br/><w:t>next</w:t></w:r></w:p>`+
		`</w:body></w:document>`)

	text, err := ExtractDocxBytes(bytes.NewReader(data), int64(len(data)))

	require.NoError(t, err)
	assert.Equal(t, "Hotel Name: Grand\ncol1\tcol2\nnext", text)
}

func TestExtractDocxMissingBody(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/styles.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<w:styles/>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = ExtractDocxBytes(bytes.NewReader(buf.Bytes()), int64(buf.Len()))

	assert.ErrorIs(t, err, ErrNoDocumentBody)
}

func TestExtractDocxNotAnArchive(t *testing.T) {
	junk := []byte("this is not a zip archive")

	_, err := ExtractDocxBytes(bytes.NewReader(junk), int64(len(junk)))

	assert.Error(t, err)
}

// A manifest carried as a .docx attachment parses end to end.
func TestParseAttachment(t *testing.T) {
	data := buildDocx(t, docxHeader+
		`<w:body>`+
		`<w:p><w:r><w:t>[New] 10-Jul-25 Arrival Transfers</w:t></w:r></w:p>`+
		`<w:p><w:r><w:t>Booking #: ATT-1</w:t></w:r></w:p>`+
		`<w:p><w:r><w:t>Adult 1: John Smith</w:t></w:r></w:p>`+
		`</w:body></w:document>`)

	p := NewParser(logger.NewLogger())
	res := p.ParseAttachment("manifest.docx", bytes.NewReader(data), int64(len(data)))

	require.Empty(t, res.Errors)
	require.Len(t, res.Services, 1)
	assert.Equal(t, "ATT-1", res.Services[0].ServiceID)
	assert.Equal(t, "Arrival Transfers", res.Services[0].ServiceType)
}

func TestParseAttachmentCorrupt(t *testing.T) {
	junk := []byte("%PDF-1.4 definitely not a docx")

	p := NewParser(logger.NewLogger())
	res := p.ParseAttachment("broken.docx", bytes.NewReader(junk), int64(len(junk)))

	assert.Empty(t, res.Services)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "broken.docx")
}
