package v1

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func (ts *testServer) multipartRequest(t *testing.T, path, token string, fields map[string]string, imageName string) *httptest.ResponseRecorder {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if imageName != "" {
		part, err := writer.CreateFormFile("image", imageName)
		require.NoError(t, err)
		_, err = part.Write([]byte("not really a jpeg"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	ts.echo.ServeHTTP(rec, req)
	return rec
}

func TestCreateItemWithImage(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signup(t, "alice")
	hobbyID := ts.createHobby(t, token, "Stamps")

	rec := ts.multipartRequest(t, fmt.Sprintf("/api/hobbies/%s/items", hobbyID), token, nil, "penny_black.jpg")
	require.Equal(t, http.StatusCreated, rec.Code)

	var response itemResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	// The name falls back to the image filename stem.
	require.Equal(t, "penny black", response.Item.Name)
	require.NotEmpty(t, response.Item.ImageRef)
}

func TestCreateItemWithoutNameOrImage(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signup(t, "alice")
	hobbyID := ts.createHobby(t, token, "Stamps")

	rec := ts.multipartRequest(t, fmt.Sprintf("/api/hobbies/%s/items", hobbyID), token, map[string]string{
		"description": "no name given",
	}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateItemExplicitNameWinsOverFilename(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signup(t, "alice")
	hobbyID := ts.createHobby(t, token, "Stamps")

	rec := ts.multipartRequest(t, fmt.Sprintf("/api/hobbies/%s/items", hobbyID), token, map[string]string{
		"name": "Penny Black",
	}, "IMG_0042.jpg")
	require.Equal(t, http.StatusCreated, rec.Code)

	var response itemResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Equal(t, "Penny Black", response.Item.Name)
}
