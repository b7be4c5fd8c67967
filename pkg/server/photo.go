package server

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"winenow.app/WineNowNote/pkg/model"
	"winenow.app/WineNowNote/pkg/storage"
)

var allowedPhotoTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
}

// UploadPhoto stores the multipart "photo" file in the blob store and
// appends its public URL to the note's photo list. Only the photos
// column is persisted.
func (n *NoteServer) UploadPhoto(c *gin.Context) {
	user, note, ok := n.ownedNote(c)
	if !ok {
		return
	}

	header, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})

		return
	}

	if header.Size > maxPhotoBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo may not exceed 5MB"})

		return
	}

	if !allowedPhotoTypes[header.Header.Get("Content-Type")] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo must be JPEG or PNG"})

		return
	}

	if len(note.Photos) >= model.MaxPhotos {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a note may have at most 5 photos"})

		return
	}

	file, err := header.Open()
	if err != nil {
		n.logger.Error("error opening uploaded photo", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to upload photo"})

		return
	}
	defer file.Close() //nolint:errcheck // read-only handle

	url, err := n.store.Put(c.Request.Context(), storage.NoteKey(user.ID, header.Filename), file)
	if err != nil {
		n.logger.Error("error storing photo", zap.Uint("note_id", note.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to upload photo"})

		return
	}

	photos := append([]string(note.Photos), url)

	if err := n.notes.UpdateNotePhotos(c.Request.Context(), note.ID, photos); err != nil {
		n.logger.Error("error saving photo list", zap.Uint("note_id", note.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to upload photo"})

		return
	}

	c.JSON(http.StatusOK, gin.H{"photo": url, "photos": photos})
}

// DeletePhoto removes the given URL from the note's photo list. The
// stored blob itself is not deleted.
func (n *NoteServer) DeletePhoto(c *gin.Context) {
	_, note, ok := n.ownedNote(c)
	if !ok {
		return
	}

	url := c.Query("url")
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})

		return
	}

	index := slices.Index(note.Photos, url)
	if index < 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "photo not found"})

		return
	}

	photos := slices.Delete([]string(note.Photos), index, index+1)

	if err := n.notes.UpdateNotePhotos(c.Request.Context(), note.ID, photos); err != nil {
		n.logger.Error("error saving photo list", zap.Uint("note_id", note.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete photo"})

		return
	}

	c.JSON(http.StatusOK, gin.H{"photos": photos})
}
