// utils/http.go
package utils

import (
	"net/http"
	"time"
)

// NewHTTPClient returns the shared outbound client. One instance is reused
// across requests so connections are pooled.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
