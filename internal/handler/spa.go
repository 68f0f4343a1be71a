package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"chatrelay/internal/pkg/resp"
)

// SPAHandler serves the pre-built client bundle from staticDir. Requests for
// files that exist are served directly; any other non-API, non-realtime path
// falls back to the bundle's entry document so client-side routing works.
func SPAHandler(staticDir string) http.HandlerFunc {
	fileServer := http.FileServer(http.Dir(staticDir))

	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api") || strings.HasPrefix(r.URL.Path, "/ws") {
			resp.RespondJSON(w, r, http.StatusNotFound, resp.ErrorBody{Error: "not found"})
			return
		}

		requested := filepath.Join(staticDir, filepath.Clean("/"+r.URL.Path))

		info, err := os.Stat(requested)
		if err == nil && !info.IsDir() {
			fileServer.ServeHTTP(w, r)
			return
		}

		http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
	}
}
