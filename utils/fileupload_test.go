package utils

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestFileHeader creates a mock multipart.FileHeader for testing
func createTestFileHeader(filename string, size int64, content []byte) *multipart.FileHeader {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", "application/pdf")
	part, _ := writer.CreatePart(h)
	part.Write(content)
	writer.Close()

	reader := multipart.NewReader(body, writer.Boundary())
	form, _ := reader.ReadForm(int64(len(content)) + 1024)
	defer form.RemoveAll()

	if len(form.File["file"]) > 0 {
		fileHeader := form.File["file"][0]
		// Override size for testing purposes
		fileHeader.Size = size
		return fileHeader
	}

	return nil
}

func TestValidateAttachment_Success(t *testing.T) {
	content := []byte("fake pdf content")
	fileHeader := createTestFileHeader("assignment.pdf", int64(len(content)), content)
	require.NotNil(t, fileHeader)

	err := ValidateAttachment(fileHeader)
	assert.NoError(t, err)
}

func TestValidateAttachment_AtSizeLimit(t *testing.T) {
	content := []byte("fake pdf content")
	fileHeader := createTestFileHeader("assignment.pdf", MaxFileSize, content)
	require.NotNil(t, fileHeader)

	err := ValidateAttachment(fileHeader)
	assert.NoError(t, err)
}

func TestValidateAttachment_FileTooLarge(t *testing.T) {
	content := []byte("fake pdf content")
	fileHeader := createTestFileHeader("huge.pdf", 11*1024*1024, content)
	require.NotNil(t, fileHeader)

	err := ValidateAttachment(fileHeader)
	assert.Error(t, err)

	uploadErr, ok := err.(*FileUploadError)
	require.True(t, ok)
	assert.Equal(t, "FILE_TOO_LARGE", uploadErr.Code)
	assert.Contains(t, uploadErr.Message, "10 MB")
}
