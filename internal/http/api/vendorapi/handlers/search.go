package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/visora-labs/visora-relay/internal/search"
)

// SearchHandler serves the vendor web search endpoint.
type SearchHandler struct {
	client *search.Client
}

// NewSearchHandler constructs a SearchHandler.
func NewSearchHandler(client *search.Client) *SearchHandler {
	return &SearchHandler{client: client}
}

// Google handles POST /v1/search/google. This public endpoint spends Serper
// quota directly rather than walking the keyless provider chain.
func (h *SearchHandler) Google(c *gin.Context) {
	var body struct {
		Query string `json:"query"`
	}
	if errBind := c.ShouldBindJSON(&body); errBind != nil || strings.TrimSpace(body.Query) == "" {
		vendorError(c, http.StatusBadRequest, "Query is required", "invalid_request_error")
		return
	}

	resp := h.client.SerperOnly(c.Request.Context(), body.Query)
	results := resp.Results
	if len(results) > 10 {
		results = results[:10]
	}
	c.JSON(http.StatusOK, gin.H{
		"conclusion": resp.Conclusion,
		"results":    results,
	})
}
