package app_test

import (
	"bytes"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mediaHttp "github.com/nekogravitycat/vendor-booking-backend/internal/media/http"
)

func (a *testApp) uploadPhoto(t *testing.T, path string, content []byte, token string) *httptest.ResponseRecorder {
	t.Helper()
	body := new(bytes.Buffer)
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("file", "storefront.png")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, _ := http.NewRequest("PUT", path, body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	a.container.Router.ServeHTTP(w, req)
	return w
}

func TestVendorPhotoFlow(t *testing.T) {
	a := newTestApp(t)
	vendorToken := a.login(t, "freshveg@example.com")

	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, image.NewRGBA(image.Rect(0, 0, 400, 300))))

	w := a.executeRequest("GET", "/v1/vendors/v1/photo", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.uploadPhoto(t, "/v1/vendors/v2/photo", buf.Bytes(), vendorToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.uploadPhoto(t, "/v1/vendors/v1/photo", []byte("not an image"), vendorToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.uploadPhoto(t, "/v1/vendors/v1/photo", buf.Bytes(), vendorToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "/v1/vendors/v1/photo/thumbnail", decode[mediaHttp.PhotoUploadResponse](t, w).ThumbnailURL)

	w = a.executeRequest("GET", "/v1/vendors/v1/photo/thumbnail", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
	cfg, format, err := image.DecodeConfig(w.Body)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 200, cfg.Width)

	w = a.executeRequest("DELETE", "/v1/vendors/v1/photo", nil, vendorToken)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = a.executeRequest("GET", "/v1/vendors/v1/photo", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
