package web

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/vbonduro/toyinv/internal/imagestore"
)

const maxImageSize = 10 * 1024 * 1024 // 10 MB

// allowedImageTypes is the set of MIME types accepted for uploaded toy images.
// net/http.DetectContentType handles JPEG, PNG, and GIF via magic-byte
// sniffing. WebP is detected separately because the WHATWG sniff spec (and
// therefore the stdlib) does not include a WebP signature.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// isWebP reports whether data is a WebP image (RIFF container with "WEBP" at
// offset 8).
func isWebP(data []byte) bool {
	return len(data) >= 12 &&
		string(data[0:4]) == "RIFF" &&
		string(data[8:12]) == "WEBP"
}

// allowedImageMIME returns the detected MIME type and true if the data is an
// accepted image format, or ("", false) otherwise.
func allowedImageMIME(data []byte) (string, bool) {
	if isWebP(data) {
		return "image/webp", true
	}
	mime := http.DetectContentType(data)
	if allowedImageTypes[mime] {
		return mime, true
	}
	return "", false
}

// uploadError is a client mistake in the uploaded file.
type uploadError struct{ msg string }

func (e *uploadError) Error() string { return e.msg }

const imagePathPrefix = "/images/"

func imageURL(key string) string {
	return imagePathPrefix + url.PathEscape(key)
}

// uploadedImageKey is the inverse of imageURL. It returns "" for URLs that do
// not point at an uploaded image.
func uploadedImageKey(imageURL string) string {
	rest, ok := strings.CutPrefix(imageURL, imagePathPrefix)
	if !ok || rest == "" {
		return ""
	}
	key, err := url.PathUnescape(rest)
	if err != nil {
		return ""
	}
	return key
}

// saveUploadedImage stores the optional "image" file of a multipart form and
// returns its key, or "" when no file was sent.
func (s *Server) saveUploadedImage(r *http.Request) (string, error) {
	if r.MultipartForm == nil {
		return "", nil
	}
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || (err == nil && header.Size == 0) {
		if file != nil {
			closeWithLog(file, "upload file", s.logger)
		}
		return "", nil
	}
	if err != nil {
		return "", &uploadError{msg: "failed to read image"}
	}
	defer closeWithLog(file, "upload file", s.logger)

	data, err := io.ReadAll(io.LimitReader(file, maxImageSize+1))
	if err != nil {
		return "", &uploadError{msg: "failed to read image"}
	}
	if len(data) > maxImageSize {
		return "", &uploadError{msg: "image too large"}
	}
	mimeType, ok := allowedImageMIME(data)
	if !ok {
		return "", &uploadError{msg: "unsupported image format"}
	}

	key, err := s.images.Save(r.Context(), mimeType, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	s.logger.Info("image stored", "key", key, "mime", mimeType, "bytes", len(data))
	return key, nil
}

func (s *Server) discardImage(r *http.Request, key string) {
	if err := s.images.Delete(r.Context(), key); err != nil {
		s.logger.Warn("discard image failed", "key", key, "error", err)
	}
}

func (s *Server) handleGetImage(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	reader, mimeType, err := s.images.Get(r.Context(), key)
	if err != nil {
		if !errors.Is(err, imagestore.ErrNotFound) {
			s.logger.Error("get image failed", "key", key, "error", err)
		}
		http.NotFound(w, r)
		return
	}
	defer closeWithLog(reader, "image reader", s.logger)

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	if _, err := io.Copy(w, reader); err != nil {
		s.logger.Error("write image failed", "key", key, "error", err)
	}
}

// closeWithLog closes c and logs any error, using label to identify the resource.
func closeWithLog(c io.Closer, label string, logger *slog.Logger) {
	if err := c.Close(); err != nil {
		logger.Error("failed to close resource", "label", label, "error", err)
	}
}
