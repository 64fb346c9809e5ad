// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package corporate_blue

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/olegiv/corporate-blue/internal/files"
	"github.com/olegiv/corporate-blue/internal/i18n"
	"github.com/olegiv/corporate-blue/internal/imaging"
	"github.com/olegiv/corporate-blue/internal/middleware"
	"github.com/olegiv/corporate-blue/internal/settings"
	"github.com/olegiv/corporate-blue/internal/util"
)

// maxUploadSize bounds a banner upload request.
const maxUploadSize = 10 << 20

// bannersResponse is the body of GET and PUT /admin/banners.
type bannersResponse struct {
	Revision int64    `json:"revision"`
	Banners  []Banner `json:"banners"`
}

// bannersRequest is the body of PUT /admin/banners.
type bannersRequest struct {
	Banners []Banner `json:"banners" validate:"required,max=50,dive"`
}

// uploadResponse is the body of POST /admin/banners/upload.
type uploadResponse struct {
	ImagePath string `json:"image_path"`
	URL       string `json:"url"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleGetBanners handles GET /admin/banners.
func (m *Module) handleGetBanners(w http.ResponseWriter, r *http.Request) {
	banners, revision, err := m.GetBannersVersioned(r.Context())
	if err != nil {
		m.ctx.Logger.Error("failed to load banners", "error", err)
		m.writeError(w, r, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	w.Header().Set("ETag", strconv.Quote(strconv.FormatInt(revision, 10)))
	render.JSON(w, r, bannersResponse{Revision: revision, Banners: banners})
}

// handlePutBanners handles PUT /admin/banners. With an If-Match header the
// write only succeeds if the stored revision still matches.
func (m *Module) handlePutBanners(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLanguage(r)

	var req bannersRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		m.writeError(w, r, http.StatusBadRequest, i18n.T(lang, "corporate_blue.error_invalid_banners"))
		return
	}
	if err := m.validate.Struct(req); err != nil {
		m.ctx.Logger.Info("rejected banner list", "error", err)
		m.writeError(w, r, http.StatusUnprocessableEntity, i18n.T(lang, "corporate_blue.error_invalid_banners"))
		return
	}

	if ifMatch := r.Header.Get("If-Match"); ifMatch != "" {
		revision, err := strconv.ParseInt(strings.Trim(strings.TrimPrefix(ifMatch, "W/"), `"`), 10, 64)
		if err != nil {
			m.writeError(w, r, http.StatusBadRequest, "invalid If-Match header")
			return
		}
		if _, err := m.SetBannersIfRevision(r.Context(), req.Banners, revision); err != nil {
			if errors.Is(err, settings.ErrVersionConflict) {
				m.writeError(w, r, http.StatusPreconditionFailed, i18n.T(lang, "corporate_blue.error_revision_conflict"))
				return
			}
			m.ctx.Logger.Error("failed to save banners", "error", err)
			m.writeError(w, r, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
			return
		}
	} else if err := m.SetBanners(r.Context(), req.Banners); err != nil {
		m.ctx.Logger.Error("failed to save banners", "error", err)
		m.writeError(w, r, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	m.ctx.Logger.Info("banners updated", "count", len(req.Banners), "ip", middleware.ClientIP(r))
	m.handleGetBanners(w, r)
}

// handleUploadBanner handles POST /admin/banners/upload. The "image" part is
// cropped to the slider size and stored under public://banners/.
func (m *Module) handleUploadBanner(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLanguage(r)

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		m.writeError(w, r, http.StatusBadRequest, "invalid upload")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		m.writeError(w, r, http.StatusBadRequest, "missing image")
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		m.writeError(w, r, http.StatusBadRequest, "invalid upload")
		return
	}
	if !imaging.IsImage(imaging.DetectMimeType(data)) {
		m.writeError(w, r, http.StatusUnsupportedMediaType, i18n.T(lang, "corporate_blue.error_not_image"))
		return
	}

	slug := util.SlugifyFilename(header.Filename)
	name := uuid.New().String() + "-" + strings.TrimSuffix(slug, filepath.Ext(slug)) + imaging.OutputExtension(header.Filename)
	ref := files.PublicRef(bannerDir, name)

	dest, err := m.ctx.Files.LocalPath(ref)
	if err != nil {
		m.ctx.Logger.Error("invalid banner destination", "ref", ref, "error", err)
		m.writeError(w, r, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	result, err := imaging.NewBannerProcessor().Process(bytes.NewReader(data), dest)
	if err != nil {
		if errors.Is(err, imaging.ErrUnsupportedFormat) {
			m.writeError(w, r, http.StatusUnsupportedMediaType, i18n.T(lang, "corporate_blue.error_not_image"))
			return
		}
		m.ctx.Logger.Error("failed to process banner", "error", err)
		m.writeError(w, r, http.StatusUnprocessableEntity, i18n.T(lang, "corporate_blue.error_not_image"))
		return
	}

	m.ctx.Logger.Info("banner uploaded", "ref", ref, "size", result.Size)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, uploadResponse{
		ImagePath: ref,
		URL:       m.ctx.Files.URL(ref),
		Width:     result.Width,
		Height:    result.Height,
	})
}

func (m *Module) writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Error: msg})
}
