// Package upload accepts supporting documents for bookings and serves
// them back as static files.
package upload

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"roombooking/internal/api"
)

// maxFileSize caps a single upload at 5 MB.
const maxFileSize = 5 << 20

type Handlers struct {
	Dir           string
	PublicBaseURL string
}

// Upload stores one multipart file under a timestamped name and returns
// the URL it will be served from.
func (h Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFileSize)
	if err := r.ParseMultipartForm(maxFileSize); err != nil {
		api.WriteError(w, http.StatusBadRequest, "INVALID_INPUT", "file exceeds the 5MB limit or the form is malformed")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "INVALID_INPUT", "a 'file' form field is required")
		return
	}
	defer file.Close()

	name := sanitizeFilename(header.Filename)
	stored := fmt.Sprintf("%d-%s", time.Now().UnixNano(), name)

	if err := os.MkdirAll(h.Dir, 0o755); err != nil {
		api.WriteFault(w, err)
		return
	}
	dst, err := os.Create(filepath.Join(h.Dir, stored))
	if err != nil {
		api.WriteFault(w, err)
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		api.WriteFault(w, err)
		return
	}

	api.WriteJSON(w, http.StatusCreated, map[string]string{
		"url":  strings.TrimRight(h.PublicBaseURL, "/") + "/uploads/" + stored,
		"name": name,
	})
}

// sanitizeFilename strips path components and characters that do not
// belong in a stored name.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if name == "" || name == "." {
		name = "file"
	}
	return name
}
