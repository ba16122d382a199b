package handler

import (
	"net/http"
	"os"

	"github.com/hirestack/hirestack-backend/internal/repository"
	"github.com/hirestack/hirestack-backend/pkg/response"
	"github.com/hirestack/hirestack-backend/pkg/storage"

	"github.com/gin-gonic/gin"
)

type UploadHandler struct {
	fileStorage storage.FileStorage
	userRepo    repository.UserRepository
}

func NewUploadHandler(fileStorage storage.FileStorage, userRepo repository.UserRepository) *UploadHandler {
	return &UploadHandler{
		fileStorage: fileStorage,
		userRepo:    userRepo,
	}
}

// UploadResume stores the file and records its URL on the applicant profile.
// Applications snapshot this URL at submit time.
func (h *UploadHandler) UploadResume(c *gin.Context) {
	actorID, err := response.GetActorID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open file"})
		return
	}
	defer file.Close()

	folder := os.Getenv("CLOUDINARY_UPLOAD_FOLDER")
	if folder == "" {
		folder = "hirestack"
	}

	url, err := h.fileStorage.UploadFile(c.Request.Context(), file, folder+"/resumes", fileHeader.Filename)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.userRepo.UpdateResumeURL(c.Request.Context(), actorID, url); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"resume_url": url})
}
