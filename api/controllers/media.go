package controllers

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/pestilink/pestilink-backend/api/responses"
	"github.com/pestilink/pestilink-backend/internal/media"
	pkgerrors "github.com/pestilink/pestilink-backend/pkg/errors"
	"github.com/pestilink/pestilink-backend/pkg/logger"
)

// UploadProductImage accepts a multipart image and returns its stored filename.
// The filename is then attached to a listing through the products endpoints.
func UploadProductImage(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		file, _, err := r.FormFile("image")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "image file required"))
			return
		}
		defer file.Close()

		filename, err := svc.Save(r.Context(), file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"filename": filename})
	}
}

// ServeProductImage streams a stored image back to the client.
func ServeProductImage(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		path, err := svc.Path(chi.URLParam(r, "filename"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if _, err := os.Stat(path); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "image not found"))
			return
		}

		http.ServeFile(w, r, path)
	}
}
