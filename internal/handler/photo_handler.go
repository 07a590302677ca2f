package handler

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"github.com/aayush4jha/kirayawale-beta-version/internal/middleware"
)

const maxPhotoSize = 10 << 20

// PhotoStore keeps the photo bytes.
type PhotoStore interface {
	UploadPhoto(file io.Reader, filename, listingID string) (string, error)
	DownloadPhoto(photoID string) ([]byte, string, error)
}

type PhotoHandler struct {
	Repo     PhotoStore
	Listings Listings
}

func (h *PhotoHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	protected.POST("/listings/:id/photos", h.UploadPhoto)
	public.GET("/photos/:id", h.DownloadPhoto)
}

// PhotoURL is the public path of a stored photo.
func PhotoURL(photoID string) string {
	return "/api/photos/" + photoID
}

// POST /api/listings/:id/photos (multipart field "file")
func (h *PhotoHandler) UploadPhoto(c *gin.Context) {
	listingID := c.Param("id")
	actor := middleware.UserID(c)
	fail := failure{action: "Failed to upload photo.", notFound: listingNotFound}

	if err := h.Listings.CheckOwner(c.Request.Context(), actor, listingID); err != nil {
		fail.write(c, err)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file is required")
		return
	}
	if fileHeader.Size > maxPhotoSize {
		badRequest(c, "Photo must be 10 MB or smaller")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot open file"})
		return
	}
	defer file.Close()

	mtype, err := mimetype.DetectReader(file)
	if err != nil || !strings.HasPrefix(mtype.String(), "image/") {
		badRequest(c, "Only image files can be uploaded")
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot read file"})
		return
	}

	filename := fmt.Sprintf("listing_%s_%s", listingID, fileHeader.Filename)
	photoID, err := h.Repo.UploadPhoto(file, filename, listingID)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return
	}

	url := PhotoURL(photoID)
	if err := h.Listings.AddPhoto(c.Request.Context(), actor, listingID, url); err != nil {
		fail.write(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"photo_id": photoID, "url": url})
}

// GET /api/photos/:id
func (h *PhotoHandler) DownloadPhoto(c *gin.Context) {
	data, filename, err := h.Repo.DownloadPhoto(c.Param("id"))
	if err != nil {
		failure{action: "Failed to load photo.", notFound: "Photo not found."}.write(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", filename))
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, mimetype.Detect(data).String(), data)
}
