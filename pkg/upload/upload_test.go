package upload

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartContext(t *testing.T, field string, content []byte) echo.Context {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if field != "" {
		part, err := w.CreateFormFile(field, "avatar.png")
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.WriteField("note", "hello"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return echo.New().NewContext(req, httptest.NewRecorder())
}

func TestReadFormFile(t *testing.T) {
	c := multipartContext(t, "file", []byte("image-bytes"))

	got, err := ReadFormFile(c, "file", 1024)
	require.NoError(t, err)
	assert.Equal(t, []byte("image-bytes"), got)
}

func TestReadFormFileMissing(t *testing.T) {
	c := multipartContext(t, "", nil)

	got, err := ReadFormFile(c, "file", 1024)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestReadFormFileStopsPastLimit(t *testing.T) {
	c := multipartContext(t, "file", []byte(strings.Repeat("x", 100)))

	got, err := ReadFormFile(c, "file", 10)
	require.NoError(t, err)
	assert.Len(t, got, 11)
}
