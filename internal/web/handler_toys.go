package web

import (
	"errors"
	"math"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/vbonduro/toyinv/internal/domain"
	"github.com/vbonduro/toyinv/internal/inventory"
	"github.com/vbonduro/toyinv/internal/view"
)

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// screen snapshots the app state and consumes pending notices.
func (s *Server) screen() view.Screen {
	return view.NewScreen(s.app.State(), s.app.TakeNotices())
}

// respond renders the current screen. htmx requests get the fragment; plain
// requests get the full page, except successful form posts which redirect.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, status int) {
	if isHTMX(r) {
		if err := s.renderPartial(w, status, s.screen()); err != nil {
			s.logger.Error("render partial failed", "error", err)
		}
		return
	}
	if r.Method != http.MethodGet && status == http.StatusOK {
		http.Redirect(w, r, "/toys", http.StatusSeeOther)
		return
	}
	if err := s.renderPage(w, status, s.screen()); err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}

// handleToys serves the inventory page. Loading the page is the mount, so it
// refreshes first. A failed refresh leaves an error notice on the screen.
func (s *Server) handleToys(w http.ResponseWriter, r *http.Request) {
	_ = s.app.Refresh(r.Context())
	s.respond(w, r, http.StatusOK)
}

// handleScreen re-renders the current state without touching the gateway.
func (s *Server) handleScreen(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, http.StatusOK)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	_ = s.app.Refresh(r.Context())
	s.respond(w, r, http.StatusOK)
}

func (s *Server) handleNew(w http.ResponseWriter, r *http.Request) {
	s.app.OpenForCreate()
	s.respond(w, r, http.StatusOK)
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	if err := s.app.OpenForEdit(chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, inventory.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "failed to open toy", http.StatusInternalServerError)
		s.logger.Error("open toy failed", "toy_id", chi.URLParam(r, "id"), "error", err)
		return
	}
	s.respond(w, r, http.StatusOK)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	s.app.Cancel()
	s.respond(w, r, http.StatusOK)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	// Failures are reported through the error notice.
	_ = s.app.Delete(r.Context(), chi.URLParam(r, "id"))
	s.respond(w, r, http.StatusOK)
}

// handleSubmit submits the open dialog. An attached image is stored only
// once the form validates, and removed again if no dialog takes it. A saved
// edit that drops an uploaded image removes the old file.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := parseRequestForm(r); err != nil {
		http.Error(w, "failed to parse form", http.StatusBadRequest)
		return
	}
	form := parseToyForm(r)

	var imageKey string
	if form.Validate() == nil {
		key, err := s.saveUploadedImage(r)
		if err != nil {
			var ue *uploadError
			if errors.As(err, &ue) {
				http.Error(w, ue.msg, http.StatusBadRequest)
				return
			}
			http.Error(w, "failed to store image", http.StatusInternalServerError)
			s.logger.Error("store image failed", "error", err)
			return
		}
		if key != "" {
			imageKey = key
			form.ImageURL = imageURL(key)
		}
	}

	previousKey := s.editedImageKey()
	err := s.app.Submit(r.Context(), form)
	if imageKey != "" && errors.Is(err, inventory.ErrNoDialog) {
		s.discardImage(r, imageKey)
	}
	saved := err == nil || errors.Is(err, inventory.ErrLoad)
	if saved && previousKey != "" && previousKey != uploadedImageKey(form.ImageURL) {
		s.discardImage(r, previousKey)
	}

	var ve *inventory.ValidationError
	switch {
	case errors.As(err, &ve):
		s.respond(w, r, http.StatusUnprocessableEntity)
	case errors.Is(err, inventory.ErrNoDialog):
		s.respond(w, r, http.StatusConflict)
	default:
		// Save and reload failures are shown as notices.
		s.respond(w, r, http.StatusOK)
	}
}

func parseRequestForm(r *http.Request) error {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "multipart/form-data" {
		return r.ParseMultipartForm(maxImageSize)
	}
	return r.ParseForm()
}

// parseToyForm reads the dialog fields. Empty, unparseable or non-finite
// numbers are treated as absent.
func parseToyForm(r *http.Request) inventory.Form {
	f := inventory.Form{
		Name:        r.PostFormValue("name"),
		Category:    domain.Category(r.PostFormValue("category")),
		AgeRange:    r.PostFormValue("ageRange"),
		ImageURL:    strings.TrimSpace(r.PostFormValue("imageUrl")),
		Description: r.PostFormValue("description"),
		InStock:     parseCheckbox(r.PostFormValue("inStock")),
	}
	if v := strings.TrimSpace(r.PostFormValue("price")); v != "" {
		if p, err := strconv.ParseFloat(v, 64); err == nil && !math.IsInf(p, 0) && !math.IsNaN(p) {
			f.Price = &p
		}
	}
	if v := strings.TrimSpace(r.PostFormValue("rating")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			f.Rating = &n
		}
	}
	return f
}

func parseCheckbox(v string) bool {
	switch strings.ToLower(v) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

// editedImageKey returns the uploaded image key of the toy in an open edit
// dialog, or "".
func (s *Server) editedImageKey() string {
	st := s.app.State()
	if !st.Dialog.Open || st.Dialog.Mode != inventory.ModeEdit {
		return ""
	}
	for _, t := range st.Toys {
		if t.ID == st.Dialog.ToyID {
			return uploadedImageKey(t.ImageURL)
		}
	}
	return ""
}
