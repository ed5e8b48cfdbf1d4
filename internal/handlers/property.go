package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	apperrors "property-catalog/internal/errors"
	"property-catalog/internal/models"
	"property-catalog/internal/query"
	"property-catalog/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// ImageField is the multipart field that carries a property image.
const ImageField = "propertyImage"

// multipartOverhead is the allowance for form fields and part headers on top of the image.
const multipartOverhead = 64 << 10

type PropertyService interface {
	List(ctx context.Context, criteria query.Criteria) (*models.PropertyPage, error)
	GetByID(ctx context.Context, id string) (*models.Property, error)
	Create(ctx context.Context, input *models.PropertyInput, image *models.ImageUpload) (*models.Property, error)
	Update(ctx context.Context, id string, patch *models.PropertyPatch, image *models.ImageUpload) (*models.Property, error)
	Delete(ctx context.Context, id string) (*models.Property, error)
}

type PropertyHandler struct {
	service       PropertyService
	maxImageBytes int64
}

func NewPropertyHandler(service PropertyService, maxImageBytes int64) *PropertyHandler {
	return &PropertyHandler{service: service, maxImageBytes: maxImageBytes}
}

// ListProperties godoc
// @Summary List properties
// @Description Filtered, paginated listing ordered by creation
// @Tags Properties
// @Produce json
// @Param location query string false "Exact location"
// @Param type query string false "Residential, Commercial, Industrial or Land"
// @Param minPrice query number false "Inclusive lower price bound"
// @Param maxPrice query number false "Inclusive upper price bound"
// @Param search query string false "Case-insensitive text in name, location or type"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} models.PropertyPage
// @Success 204
// @Failure 400 {object} map[string]interface{}
// @Router /api/private/properties [get]
func (h *PropertyHandler) ListProperties(c *gin.Context) {
	var criteria query.Criteria
	if err := c.ShouldBindQuery(&criteria); err != nil {
		c.Error(apperrors.NewValidationError("query", err.Error()))
		return
	}

	page, err := h.service.List(c.Request.Context(), criteria)
	if err != nil {
		c.Error(err)
		return
	}

	links := *page
	base := requestBaseURL(c)
	params := c.Request.URL.Query()
	if links.Page < links.TotalPages {
		next := utils.BuildPageURL(base, links.Page+1, links.Limit, params)
		links.Next = &next
	}
	if links.Page > 1 {
		prev := utils.BuildPageURL(base, links.Page-1, links.Limit, params)
		links.Prev = &prev
	}
	c.JSON(http.StatusOK, links)
}

// GetProperty godoc
// @Summary Get property by ID
// @Tags Properties
// @Produce json
// @Param id path string true "Property ID"
// @Success 200 {object} models.Property
// @Failure 404 {object} map[string]interface{}
// @Router /api/private/properties/{id} [get]
func (h *PropertyHandler) GetProperty(c *gin.Context) {
	property, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, property)
}

// CreateProperty godoc
// @Summary Create a property
// @Description Multipart form (with optional propertyImage file) or JSON body
// @Tags Properties
// @Accept multipart/form-data,json
// @Produce json
// @Param propertyImage formData file false "Image, at most 200 KiB"
// @Security BearerAuth
// @Success 201 {object} models.Property
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /api/private/properties [post]
func (h *PropertyHandler) CreateProperty(c *gin.Context) {
	h.limitBody(c)

	var input models.PropertyInput
	if err := c.ShouldBind(&input); err != nil {
		c.Error(h.bindError(err))
		return
	}
	image, err := h.readImage(c)
	if err != nil {
		c.Error(err)
		return
	}

	property, err := h.service.Create(c.Request.Context(), &input, image)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, property)
}

// UpdateProperty godoc
// @Summary Update a property
// @Description Partial update; a new propertyImage replaces the stored one
// @Tags Properties
// @Accept multipart/form-data,json
// @Produce json
// @Param id path string true "Property ID"
// @Security BearerAuth
// @Success 200 {object} models.Property
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/private/properties/{id} [put]
func (h *PropertyHandler) UpdateProperty(c *gin.Context) {
	h.limitBody(c)

	var patch models.PropertyPatch
	if err := c.ShouldBind(&patch); err != nil {
		c.Error(h.bindError(err))
		return
	}
	image, err := h.readImage(c)
	if err != nil {
		c.Error(err)
		return
	}

	property, err := h.service.Update(c.Request.Context(), c.Param("id"), &patch, image)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, property)
}

// DeleteProperty godoc
// @Summary Delete a property and its image
// @Tags Properties
// @Produce json
// @Param id path string true "Property ID"
// @Security BearerAuth
// @Success 200 {object} models.Property
// @Failure 404 {object} map[string]interface{}
// @Router /api/private/properties/{id} [delete]
func (h *PropertyHandler) DeleteProperty(c *gin.Context) {
	property, err := h.service.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, property)
}

func (h *PropertyHandler) limitBody(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxImageBytes+multipartOverhead)
}

func (h *PropertyHandler) tooLarge() error {
	return apperrors.NewValidationError(ImageField, fmt.Sprintf("size exceeds the %d byte limit", h.maxImageBytes))
}

func (h *PropertyHandler) bindError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return h.tooLarge()
	}
	return apperrors.NewValidationError("", "malformed request: "+err.Error())
}

// readImage returns nil when the request carries no image part.
func (h *PropertyHandler) readImage(c *gin.Context) (*models.ImageUpload, error) {
	if c.ContentType() != binding.MIMEMultipartPOSTForm {
		return nil, nil
	}

	header, err := c.FormFile(ImageField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, h.bindError(err)
	}
	if header.Size > h.maxImageBytes {
		return nil, h.tooLarge()
	}

	data, err := readPart(header, h.maxImageBytes)
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > h.maxImageBytes {
		return nil, h.tooLarge()
	}

	return &models.ImageUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Data:        data,
	}, nil
}

func readPart(header *multipart.FileHeader, max int64) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, apperrors.NewStorageError("open upload", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, max+1))
	if err != nil {
		return nil, apperrors.NewStorageError("read upload", err)
	}
	return data, nil
}

func requestBaseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = strings.ToLower(strings.Split(proto, ",")[0])
	}
	return fmt.Sprintf("%s://%s%s", scheme, c.Request.Host, c.Request.URL.Path)
}
