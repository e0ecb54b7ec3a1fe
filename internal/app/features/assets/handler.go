// internal/app/features/assets/handler.go
package assets

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dalemusser/creatorhub/internal/app/membership"
	assetstore "github.com/dalemusser/creatorhub/internal/app/store/assets"
	userstore "github.com/dalemusser/creatorhub/internal/app/store/users"
	"github.com/dalemusser/creatorhub/internal/app/system/authz"
	"github.com/dalemusser/creatorhub/internal/app/system/limits"
	"github.com/dalemusser/creatorhub/internal/app/system/timeouts"
	"github.com/dalemusser/creatorhub/internal/app/system/webjson"
	"github.com/dalemusser/creatorhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the shared media library. File bytes live in the
// configured storage backend; Mongo holds only metadata.
type Handler struct {
	Coordinator *membership.Coordinator
	Users       *userstore.Store
	Assets      *assetstore.Store
	Storage     storage.Store
	Log         *zap.Logger
}

func NewHandler(db *mongo.Database, coordinator *membership.Coordinator, store storage.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Coordinator: coordinator,
		Users:       userstore.New(db),
		Assets:      assetstore.New(db),
		Storage:     store,
		Log:         logger,
	}
}

func (h *Handler) scope(ctx context.Context, w http.ResponseWriter, r *http.Request) (*models.User, primitive.ObjectID, bool) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		webjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return nil, primitive.NilObjectID, false
	}
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		webjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return nil, primitive.NilObjectID, false
	}
	assoc, err := h.Coordinator.Resolve(ctx, u)
	if err != nil {
		h.Log.Error("association resolve failed", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "internal error")
		return nil, primitive.NilObjectID, false
	}
	if !assoc.Approved() {
		webjson.Error(w, http.StatusForbidden, "keine Firma")
		return nil, primitive.NilObjectID, false
	}
	return u, assoc.Company.ID, true
}

// ServeList handles GET /api/assets.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	_, companyID, ok := h.scope(ctx, w, r)
	if !ok {
		return
	}

	list, err := h.Assets.ListByCompany(ctx, companyID)
	if err != nil {
		h.Log.Error("list assets failed", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	webjson.Write(w, http.StatusOK, list)
}

// HandleUpload handles POST /api/assets: multipart upload, form field
// "file".
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxAssetUploadSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		webjson.Error(w, http.StatusBadRequest, "Datei ist zu groß oder ungültig.")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		webjson.Error(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	u, companyID, ok := h.scope(ctx, w, r)
	if !ok {
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	path, err := uploadFile(ctx, h.Storage, companyID.Hex(), header.Filename, file, contentType)
	if err != nil {
		h.Log.Error("asset upload failed", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	a, err := h.Assets.Create(ctx, models.Asset{
		CompanyID:   companyID,
		UploaderID:  u.ID,
		FileName:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		StoragePath: path,
	})
	if err != nil {
		// Metadata insert failed; don't strand the uploaded bytes.
		if delErr := h.Storage.Delete(ctx, path); delErr != nil {
			h.Log.Warn("orphaned upload cleanup failed",
				zap.String("path", path), zap.Error(delErr))
		}
		h.Log.Error("create asset failed", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	webjson.Write(w, http.StatusCreated, a)
}

// ServeDownload handles GET /api/assets/{id}/download. Local storage
// serves the file directly; S3 redirects to a short-lived signed URL.
func (h *Handler) ServeDownload(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		webjson.Error(w, http.StatusBadRequest, "invalid asset id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	_, companyID, ok := h.scope(ctx, w, r)
	if !ok {
		return
	}

	a, err := h.Assets.GetByID(ctx, id, companyID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			webjson.Error(w, http.StatusNotFound, "asset not found")
			return
		}
		h.Log.Error("load asset failed", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	filename := a.FileName
	if filename == "" {
		filename = "download"
	}
	contentDisposition := "attachment; filename=\"" + filename + "\""

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")

	if localStorage, ok := h.Storage.(*storage.Local); ok {
		fullPath, err := localStorage.GetFullPath(a.StoragePath)
		if err != nil {
			h.Log.Error("asset path lookup failed",
				zap.String("path", a.StoragePath), zap.Error(err))
			webjson.Error(w, http.StatusInternalServerError, "internal error")
			return
		}
		w.Header().Set("Content-Disposition", contentDisposition)
		http.ServeFile(w, r, fullPath)
		return
	}

	signedURL, err := h.Storage.PresignedURL(ctx, a.StoragePath, &storage.PresignOptions{
		Expires:            15 * time.Minute,
		ContentDisposition: contentDisposition,
	})
	if err != nil {
		h.Log.Error("presign failed",
			zap.String("path", a.StoragePath), zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	http.Redirect(w, r, signedURL, http.StatusSeeOther)
}

// HandleDelete handles DELETE /api/assets/{id}: removes the metadata
// first, then the stored bytes best-effort.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		webjson.Error(w, http.StatusBadRequest, "invalid asset id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	_, companyID, ok := h.scope(ctx, w, r)
	if !ok {
		return
	}

	a, err := h.Assets.GetByID(ctx, id, companyID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			webjson.Error(w, http.StatusNotFound, "asset not found")
			return
		}
		h.Log.Error("load asset failed", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := h.Assets.Delete(ctx, id, companyID); err != nil {
		h.Log.Error("delete asset failed", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	if err := h.Storage.Delete(ctx, a.StoragePath); err != nil {
		h.Log.Warn("stored bytes removal failed",
			zap.String("path", a.StoragePath), zap.Error(err))
	}
	webjson.Write(w, http.StatusOK, map[string]string{"status": "deleted"})
}
