package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// RegisterRoutes registers the URL shortener routes.
func RegisterRoutes(api huma.API, urlHandler *URLHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "shorten-url",
		Method:      http.MethodPost,
		Path:        "/api/shorten",
		Summary:     "Create short URL",
		Description: "Returns the short URL for a long URL, reusing the existing code if the URL was shortened before.",
		Tags:        []string{"URLs"},
		Errors:      []int{http.StatusBadRequest, http.StatusInternalServerError},
	}, urlHandler.ShortenURL)

	huma.Register(api, huma.Operation{
		OperationID:   "redirect",
		Method:        http.MethodGet,
		Path:          "/{code}",
		Summary:       "Redirect to original URL",
		Description:   "Redirects to the original URL associated with the short code.",
		Tags:          []string{"URLs"},
		DefaultStatus: http.StatusFound,
		Errors:        []int{http.StatusNotFound, http.StatusInternalServerError},
	}, urlHandler.RedirectToURL)
}
