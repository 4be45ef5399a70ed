package handlers

// ShortenRequest is the request body for creating a short URL.
// longUrl is untyped in the schema so that a null, missing or non-string value
// reaches the handler and is answered with 400 instead of a schema error.
// Unknown fields are ignored.
type ShortenRequest struct {
	Body struct {
		_       struct{} `additionalProperties:"true" json:"-"`
		LongURL any      `doc:"The URL to shorten, e.g. https://example.com/page" json:"longUrl,omitempty"`
	} `required:"false"`
}

// ShortenResponse is the response for a successfully shortened URL.
type ShortenResponse struct {
	Body struct {
		ShortURL string `doc:"The full short URL" example:"http://localhost:5000/AbC12XyZ" json:"shortUrl"`
	}
}

// RedirectRequest is the request for redirecting a short URL.
type RedirectRequest struct {
	Code string `doc:"The short code" example:"AbC12XyZ" path:"code"`
}

// RedirectResponse redirects the client to the original URL.
type RedirectResponse struct {
	Status   int
	Location string `doc:"The original URL" header:"Location"`
}
