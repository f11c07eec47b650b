// Package items serves /api/secondchance/items and the search endpoint.
package items

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"second-chance/internal/api"
	"second-chance/internal/logging"
	"second-chance/internal/model"
	"second-chance/internal/store"
	"second-chance/internal/upload"

	"github.com/labstack/echo/v4"
)

const (
	statusSuccess = "success"
	statusFailed  = "failed"

	imageFormField = "image"
	maxUploadBytes = 10 << 20
)

type Repository interface {
	List(ctx context.Context, filter store.ItemFilter) ([]model.Item, error)
	Create(ctx context.Context, fields map[string]any, imageRef string) (*model.Item, error)
	GetByID(ctx context.Context, id string) (*model.Item, error)
	Update(ctx context.Context, id string, partial map[string]any) error
	Delete(ctx context.Context, id string) error
}

type Handler struct {
	repo    Repository
	uploads upload.Store
	log     logging.Logger
}

func New(repo Repository, uploads upload.Store, log logging.Logger) *Handler {
	if log == nil {
		log = logging.Discard()
	}
	return &Handler{repo: repo, uploads: uploads, log: log}
}

func (h *Handler) internalError(c echo.Context, op string, err error) error {
	h.log.Error(c.Request().Context(), op+" failed", "error", err)
	return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Internal server error"})
}

// decodeFields reads a JSON object body. An empty body is an empty object.
func decodeFields(r io.Reader) (map[string]any, error) {
	fields := map[string]any{}
	if err := json.NewDecoder(r).Decode(&fields); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return fields, nil
}

// List returns every item
// @Summary     List items
// @Tags        items
// @Produce     json
// @Success     200 {array}  object
// @Failure     500 {object} api.ErrorResponse
// @Router      /secondchance/items [get]
func (h *Handler) List(c echo.Context) error {
	items, err := h.repo.List(c.Request().Context(), store.ItemFilter{})
	if err != nil {
		return h.internalError(c, "list items", err)
	}
	return c.JSON(http.StatusOK, items)
}

// Create adds an item, optionally with an image
// @Summary     Create item
// @Description Accepts a JSON object or a multipart form. A multipart file in the image field is stored and its reference saved on the item.
// @Tags        items
// @Accept      json
// @Accept      mpfd
// @Produce     json
// @Param       image formData file false "item image"
// @Success     201   {object} object
// @Failure     400   {object} api.ErrorResponse
// @Failure     500   {object} api.ErrorResponse
// @Router      /secondchance/items [post]
func (h *Handler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	var (
		fields   map[string]any
		imageRef string
		err      error
	)
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		fields, imageRef, err = h.readMultipart(c)
		if err != nil {
			if errors.Is(err, upload.ErrInvalidName) || errors.Is(err, errBadForm) {
				return c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
			}
			return h.internalError(c, "store upload", err)
		}
	} else {
		fields, err = decodeFields(c.Request().Body)
		if err != nil {
			return c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request body"})
		}
	}

	it, err := h.repo.Create(ctx, fields, imageRef)
	if err != nil {
		return h.internalError(c, "create item", err)
	}
	return c.JSON(http.StatusCreated, it)
}

var errBadForm = errors.New("invalid multipart form")

func (h *Handler) readMultipart(c echo.Context) (map[string]any, string, error) {
	c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, maxUploadBytes)
	form, err := c.MultipartForm()
	if err != nil {
		return nil, "", errBadForm
	}
	fields := make(map[string]any, len(form.Value))
	for k, vs := range form.Value {
		if len(vs) == 1 {
			fields[k] = vs[0]
		} else {
			fields[k] = vs
		}
	}

	files := form.File[imageFormField]
	if len(files) == 0 || h.uploads == nil {
		return fields, "", nil
	}
	fh := files[0]
	f, err := fh.Open()
	if err != nil {
		return nil, "", err
	}
	defer f.Close()
	ref, err := h.uploads.Save(c.Request().Context(), fh.Filename, f)
	if err != nil {
		return nil, "", err
	}
	return fields, ref, nil
}

// Get returns one item, or null when there is none
// @Summary     Get item
// @Tags        items
// @Produce     json
// @Param       id  path     string true "item id"
// @Success     200 {object} object
// @Failure     500 {object} api.ErrorResponse
// @Router      /secondchance/items/{id} [get]
func (h *Handler) Get(c echo.Context) error {
	it, err := h.repo.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return c.JSON(http.StatusOK, nil)
		}
		return h.internalError(c, "get item", err)
	}
	return c.JSON(http.StatusOK, it)
}

// Update merges the body into the item
// @Summary     Update item
// @Tags        items
// @Accept      json
// @Produce     json
// @Param       id  path     string true "item id"
// @Success     200 {object} api.UpdateItemResponse
// @Failure     400 {object} api.ErrorResponse
// @Failure     500 {object} api.ErrorResponse
// @Router      /secondchance/items/{id} [put]
func (h *Handler) Update(c echo.Context) error {
	fields, err := decodeFields(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request body"})
	}
	if err := h.repo.Update(c.Request().Context(), c.Param("id"), fields); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return c.JSON(http.StatusOK, api.UpdateItemResponse{Uploaded: statusFailed})
		}
		return h.internalError(c, "update item", err)
	}
	return c.JSON(http.StatusOK, api.UpdateItemResponse{Uploaded: statusSuccess})
}

// Delete removes the item. Deleting a missing item also reports success.
// @Summary     Delete item
// @Tags        items
// @Produce     json
// @Param       id  path     string true "item id"
// @Success     200 {object} api.DeleteItemResponse
// @Failure     500 {object} api.ErrorResponse
// @Router      /secondchance/items/{id} [delete]
func (h *Handler) Delete(c echo.Context) error {
	if err := h.repo.Delete(c.Request().Context(), c.Param("id")); err != nil && !errors.Is(err, model.ErrNotFound) {
		return h.internalError(c, "delete item", err)
	}
	return c.JSON(http.StatusOK, api.DeleteItemResponse{Deleted: statusSuccess})
}

// Search filters items by query parameters
// @Summary     Search items
// @Tags        items
// @Produce     json
// @Param       name      query    string false "substring of the item name"
// @Param       category  query    string false "exact category"
// @Param       condition query    string false "exact condition"
// @Param       age_years query    number false "maximum age in years"
// @Success     200       {array}  object
// @Failure     400       {object} api.ErrorResponse
// @Failure     500       {object} api.ErrorResponse
// @Router      /secondchance/search [get]
func (h *Handler) Search(c echo.Context) error {
	var q api.SearchQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid query"})
	}
	filter := store.ItemFilter{
		Name:      strings.TrimSpace(q.Name),
		Category:  q.Category,
		Condition: q.Condition,
	}
	if q.AgeYears != "" {
		age, err := strconv.ParseFloat(q.AgeYears, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "age_years must be a number"})
		}
		filter.AgeYears = &age
	}
	items, err := h.repo.List(c.Request().Context(), filter)
	if err != nil {
		return h.internalError(c, "search items", err)
	}
	return c.JSON(http.StatusOK, items)
}
