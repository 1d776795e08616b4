package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/martinmanurung/account-service/internal/domain/users"
	"github.com/martinmanurung/account-service/pkg/apperror"
	"github.com/martinmanurung/account-service/pkg/constant"
	"github.com/martinmanurung/account-service/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUsecase struct {
	patch   users.UserPatch
	admin   users.AdminPatch
	filter  users.ListFilter
	target  string
	content []byte
	err     error
}

func (s *stubUsecase) PatchSelf(_ context.Context, caller users.User, patch users.UserPatch) (*users.User, error) {
	s.patch = patch
	if s.err != nil {
		return nil, s.err
	}
	updated := patch.Apply(caller)
	return &updated, nil
}

func (s *stubUsecase) DeleteSelf(_ context.Context, caller users.User) error {
	return s.err
}

func (s *stubUsecase) GetByID(_ context.Context, caller users.User, targetID string) (*users.User, error) {
	s.target = targetID
	if s.err != nil {
		return nil, s.err
	}
	return &users.User{ID: targetID}, nil
}

func (s *stubUsecase) PatchByID(_ context.Context, caller users.User, targetID string, patch users.AdminPatch) (*users.User, error) {
	s.target = targetID
	s.admin = patch
	if s.err != nil {
		return nil, s.err
	}
	updated := patch.Apply(users.User{ID: targetID})
	return &updated, nil
}

func (s *stubUsecase) DeleteByID(_ context.Context, caller users.User, targetID string) error {
	s.target = targetID
	return s.err
}

func (s *stubUsecase) List(_ context.Context, caller users.User, filter users.ListFilter) ([]users.User, error) {
	s.filter = filter
	if s.err != nil {
		return nil, s.err
	}
	return []users.User{}, nil
}

func (s *stubUsecase) UploadAvatar(_ context.Context, caller users.User, content []byte) (*users.UploadImageResponse, error) {
	s.content = content
	if s.err != nil {
		return nil, s.err
	}
	return &users.UploadImageResponse{Image: "s3://user-images/" + caller.ID + "/x.png", Status: "uploaded"}, nil
}

var me = users.User{ID: "u-1", Username: "john", Role: users.RoleAdmin, HashedPassword: "secret-digest"}

func newServer(uc *stubUsecase) *echo.Echo {
	e := echo.New()
	e.Validator = validator.NewValidator()
	h := NewHandler(uc, 1<<20)

	g := e.Group("/users", func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller := me
			c.Set(string(constant.CtxKeyUser), &caller)
			return next(c)
		}
	})
	g.GET("/me", h.GetMe)
	g.PATCH("/me", h.PatchMe)
	g.DELETE("/me", h.DeleteMe)
	g.POST("/me/upload-image", h.UploadImage)
	g.GET("", h.List)
	g.GET("/:id", h.GetByID)
	g.PATCH("/:id", h.PatchByID)
	g.DELETE("/:id", h.DeleteByID)
	return e
}

func do(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestGetMeHidesPassword(t *testing.T) {
	e := newServer(&stubUsecase{})

	rec := do(e, http.MethodGet, "/users/me", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"john"`)
	assert.NotContains(t, rec.Body.String(), "secret-digest")
}

func TestGetMeWithoutCaller(t *testing.T) {
	e := echo.New()
	h := NewHandler(&stubUsecase{}, 1<<20)
	e.GET("/me", h.GetMe)

	rec := do(e, http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPatchMe(t *testing.T) {
	uc := &stubUsecase{}
	e := newServer(uc)

	rec := do(e, http.MethodPatch, "/users/me", `{"email":"new@example.com","role":"admin"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, uc.patch.Email)
	assert.Equal(t, "new@example.com", *uc.patch.Email)
	assert.Nil(t, uc.patch.Name)

	rec = do(e, http.MethodPatch, "/users/me", `{"email":"not-an-email"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	uc.err = apperror.EmptyUpdateData("u-1")
	rec = do(e, http.MethodPatch, "/users/me", `{"unknown":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListQuery(t *testing.T) {
	uc := &stubUsecase{}
	e := newServer(uc)

	rec := do(e, http.MethodGet, "/users?page=2&limit=10&filter_by_name=jo&sort_by=email&order_by=asc", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, users.ListFilter{Page: 2, Limit: 10, FilterByName: "jo", SortBy: "email", OrderBy: users.OrderAsc}, uc.filter)

	rec = do(e, http.MethodGet, "/users", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, users.DefaultListFilter(), uc.filter)

	rec = do(e, http.MethodGet, "/users?limit=101", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodGet, "/users?page=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	uc.err = apperror.NonExistSortKey("password")
	rec = do(e, http.MethodGet, "/users?sort_by=password", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	uc.err = apperror.MethodNotAllowed("u-1")
	rec = do(e, http.MethodGet, "/users", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestByIDRoutes(t *testing.T) {
	uc := &stubUsecase{}
	e := newServer(uc)
	target := "a0000000-0000-4000-8000-000000000009"

	rec := do(e, http.MethodGet, "/users/"+target, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, target, uc.target)

	rec = do(e, http.MethodPatch, "/users/"+target, `{"is_blocked":true,"role":"moderator"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, uc.admin.IsBlocked)
	assert.True(t, *uc.admin.IsBlocked)
	assert.Equal(t, users.RoleModerator, *uc.admin.Role)

	rec = do(e, http.MethodPatch, "/users/"+target, `{"role":"root"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodDelete, "/users/"+target, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	uc.err = apperror.UserNotFound(target)
	rec = do(e, http.MethodGet, "/users/"+target, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	uc.err = apperror.InvalidID("42")
	rec = do(e, http.MethodDelete, "/users/42", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadImage(t *testing.T) {
	uc := &stubUsecase{}
	e := newServer(uc)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "me.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/users/me/upload-image", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []byte("png-bytes"), uc.content)

	var body struct {
		Data users.UploadImageResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "s3://user-images/u-1/x.png", body.Data.Image)
}

func TestUploadImageMissingFile(t *testing.T) {
	uc := &stubUsecase{err: apperror.NoFileContent()}
	e := newServer(uc)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("other", "x"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/users/me/upload-image", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, uc.content)
}
