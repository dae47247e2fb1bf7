package app

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// uploadHandler accepts a multipart upload, stores it in the media
// directory, and answers with the stored name.
func (a *App) uploadHandler(mediaDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "missing multipart field 'file'", http.StatusBadRequest)
			return
		}
		defer file.Close()

		// Strip any path components the client sent.
		name := filepath.Base(header.Filename)
		if name == "." || name == string(filepath.Separator) || strings.HasPrefix(name, "..") {
			http.Error(w, "invalid filename", http.StatusBadRequest)
			return
		}

		dst, err := os.Create(filepath.Join(mediaDir, name))
		if err != nil {
			a.logger.Error("Failed to store upload.", "name", name, "error", err)
			http.Error(w, "failed to store upload", http.StatusInternalServerError)
			return
		}
		defer dst.Close()

		size, err := io.Copy(dst, file)
		if err != nil {
			a.logger.Error("Failed to write upload.", "name", name, "error", err)
			http.Error(w, "failed to store upload", http.StatusInternalServerError)
			return
		}

		a.logger.Info("Upload stored.", "name", name, "bytes", size, "remote_addr", r.RemoteAddr)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"name": name})
	}
}

// previewHandler serves stored files back to the UI's preview surface.
func (a *App) previewHandler(mediaDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := filepath.Base(strings.TrimPrefix(r.URL.Path, "/preview/"))
		if name == "" || name == "." {
			http.Error(w, "missing filename", http.StatusBadRequest)
			return
		}
		a.logger.Debug("Preview requested.", "name", name, "remote_addr", r.RemoteAddr)
		http.ServeFile(w, r, filepath.Join(mediaDir, name))
	}
}

// startMediaServer runs the upload/preview HTTP server in the background.
func (a *App) startMediaServer(port int, mediaDir string) {
	a.logger.Debug("Configuring media server.", "dir", mediaDir)
	if mediaDir == "" {
		mediaDir = "media"
	}
	if err := os.MkdirAll(mediaDir, 0o755); err != nil {
		a.logger.Error("Failed to create media directory, media server disabled.", "dir", mediaDir, "error", err)
		return
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/upload", a.uploadHandler(mediaDir))
	mux.HandleFunc("/preview/", a.previewHandler(mediaDir))

	addr := fmt.Sprintf(":%d", port)

	go func() {
		a.logger.Info("📺 Media server starting", "address", fmt.Sprintf("http://localhost%s/upload", addr))
		if err := http.ListenAndServe(addr, mux); err != nil {
			a.logger.Error("Media server failed", "error", err)
		}
	}()
}
