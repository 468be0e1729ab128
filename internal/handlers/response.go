package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/goer-app/goer/backend/internal/errs"
	"github.com/goer-app/goer/backend/internal/services"
)

// pictureField is the multipart field carrying uploaded pictures.
const pictureField = "pictures"

func ok(c echo.Context, status int, data any) error {
	return c.JSON(status, echo.Map{"success": true, "data": data})
}

func okMessage(c echo.Context, message string) error {
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": message})
}

func paged(c echo.Context, data any, page int) error {
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    data,
		"meta":    echo.Map{"page": page},
	})
}

// bind decodes and validates the request body into req.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return errs.Validation("Invalid request payload")
	}
	return c.Validate(req)
}

func pathID(c echo.Context, name, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		return primitive.NilObjectID, errs.Validation("Invalid " + what + " ID")
	}
	return id, nil
}

func queryID(c echo.Context, name, what string) (primitive.ObjectID, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return primitive.NilObjectID, errs.Validation(name + " is required")
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, errs.Validation("Invalid " + what + " ID")
	}
	return id, nil
}

// pageOf returns the 1-based page query parameter.
func pageOf(c echo.Context) int {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	return page
}

// uploads returns the pictures of a multipart request. Other content types
// carry none.
func uploads(c echo.Context) ([]services.Upload, func(), error) {
	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, func() {}, nil
		}
		return nil, func() {}, errs.Validation("Invalid multipart form")
	}
	headers := form.File[pictureField]
	result := make([]services.Upload, 0, len(headers))
	files := make([]multipart.File, 0, len(headers))
	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
	}
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, errs.Validation("Invalid picture " + h.Filename)
		}
		files = append(files, f)
		result = append(result, services.Upload{
			Filename:    h.Filename,
			ContentType: h.Header.Get(echo.HeaderContentType),
			Size:        h.Size,
			Reader:      f,
		})
	}
	return result, closeAll, nil
}

// upload returns the first picture, if any.
func upload(c echo.Context) (*services.Upload, func(), error) {
	list, done, err := uploads(c)
	if err != nil || len(list) == 0 {
		return nil, done, err
	}
	return &list[0], done, nil
}
