package v1

import (
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/curiocodex/curiocodex/internal/errcode"
	"github.com/curiocodex/curiocodex/server/auth"
	"github.com/curiocodex/curiocodex/server/service/collection"
)

type upsertItemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

type itemResponse struct {
	Success bool          `json:"success"`
	Item    *ItemResponse `json:"item"`
}

// maxImageSize caps uploaded item images at 8 MiB.
const maxImageSize = 8 << 20

// bindItemRequest reads an item payload from either a JSON body or a
// multipart form with an optional image part. When the form carries an
// image but no name, the image filename stem becomes the item name.
func (s *APIV1Service) bindItemRequest(c echo.Context) (*collection.UpsertItemRequest, error) {
	contentType := c.Request().Header.Get(echo.HeaderContentType)
	if !strings.HasPrefix(contentType, echo.MIMEMultipartForm) {
		request := &upsertItemRequest{}
		if err := c.Bind(request); err != nil {
			return nil, errcode.InvalidArgument("malformed request body")
		}
		return &collection.UpsertItemRequest{
			Name:        request.Name,
			Description: request.Description,
			Category:    request.Category,
		}, nil
	}

	request := &collection.UpsertItemRequest{
		Name:        c.FormValue("name"),
		Description: c.FormValue("description"),
		Category:    c.FormValue("category"),
	}

	file, err := c.FormFile("image")
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		return nil, errcode.InvalidArgument("malformed image upload")
	}
	if file != nil {
		if file.Size > maxImageSize {
			return nil, errcode.InvalidArgument("image exceeds the size limit")
		}
		imageRef, err := s.storeImage(file)
		if err != nil {
			return nil, errcode.Internal("failed to store image", err)
		}
		request.ImageRef = imageRef
		if request.Name == "" {
			request.Name = imageStem(file.Filename)
		}
	}

	if request.Name == "" {
		return nil, errcode.InvalidArgument("name or image is required")
	}
	return request, nil
}

// storeImage writes the upload under the data directory and returns its
// reference path.
func (s *APIV1Service) storeImage(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", errors.Wrap(err, "failed to open upload")
	}
	defer src.Close()

	assetDir := filepath.Join(s.Profile.Data, "assets")
	if err := os.MkdirAll(assetDir, 0o750); err != nil {
		return "", errors.Wrap(err, "failed to create asset directory")
	}

	name := uuid.NewString() + strings.ToLower(filepath.Ext(file.Filename))
	dst, err := os.Create(filepath.Join(assetDir, name))
	if err != nil {
		return "", errors.Wrap(err, "failed to create asset file")
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", errors.Wrap(err, "failed to write asset file")
	}
	return filepath.ToSlash(filepath.Join("assets", name)), nil
}

// imageStem derives a display name from an uploaded filename.
func imageStem(filename string) string {
	base := filepath.Base(filename)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return strings.TrimSpace(strings.ReplaceAll(stem, "_", " "))
}

// CreateItem handles POST /api/hobbies/:hobbyId/items.
func (s *APIV1Service) CreateItem(c echo.Context) error {
	user := auth.UserFromContext(c)

	request, err := s.bindItemRequest(c)
	if err != nil {
		return writeError(c, err)
	}

	item, err := s.Collection.CreateItem(c.Request().Context(), user, c.Param("hobbyId"), request)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, &itemResponse{Success: true, Item: convertItem(item)})
}

// ListItems handles GET /api/hobbies/:hobbyId/items.
func (s *APIV1Service) ListItems(c echo.Context) error {
	user := auth.UserFromContext(c)

	items, err := s.Collection.ListItems(c.Request().Context(), user, c.Param("hobbyId"))
	if err != nil {
		return writeError(c, err)
	}

	responses := make([]*ItemResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, convertItem(item))
	}
	return c.JSON(http.StatusOK, map[string][]*ItemResponse{"items": responses})
}

// UpdateItem handles PUT /api/hobbies/:hobbyId/items/:id.
func (s *APIV1Service) UpdateItem(c echo.Context) error {
	user := auth.UserFromContext(c)

	request, err := s.bindItemRequest(c)
	if err != nil {
		return writeError(c, err)
	}

	item, err := s.Collection.UpdateItem(c.Request().Context(), user, c.Param("hobbyId"), c.Param("id"), request)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, &itemResponse{Success: true, Item: convertItem(item)})
}

// DeleteItem handles DELETE /api/hobbies/:hobbyId/items/:id.
func (s *APIV1Service) DeleteItem(c echo.Context) error {
	user := auth.UserFromContext(c)

	if err := s.Collection.DeleteItem(c.Request().Context(), user, c.Param("hobbyId"), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}
