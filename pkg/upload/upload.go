package upload

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
)

// ReadFormFile reads the multipart file field. It returns nil, nil when the
// field is absent and reads at most limit+1 bytes so oversize files can be
// rejected without buffering them whole.
func ReadFormFile(c echo.Context, field string, limit int64) ([]byte, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read form file %q: %w", field, err)
	}

	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open form file %q: %w", field, err)
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read form file %q: %w", field, err)
	}
	return content, nil
}
