package middleware

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
)

const indexFile = "index.html"

// Static serves files that exist under dir for GET and HEAD requests and
// passes everything else to next. The root path serves index.html, so a
// built frontend and short-code redirects share one router.
func Static(dir string) func(http.Handler) http.Handler {
	fileServer := http.FileServer(http.Dir(dir))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				next.ServeHTTP(w, r)

				return
			}

			name := path.Clean("/" + r.URL.Path)
			if name == "/" {
				name = "/" + indexFile
			}

			info, err := os.Stat(filepath.Join(dir, filepath.FromSlash(name)))
			if err != nil || info.IsDir() {
				next.ServeHTTP(w, r)

				return
			}

			if name == "/"+indexFile {
				http.ServeFile(w, r, filepath.Join(dir, indexFile))

				return
			}

			fileServer.ServeHTTP(w, r)
		})
	}
}
