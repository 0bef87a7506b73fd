package research

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/ternarybob/indago/internal/models"
)

// validateRequest rejects malformed research requests before any job state
// exists. Every failure maps to ErrInvalidInput.
func (s *Service) validateRequest(req *models.ResearchRequest) error {
	if req == nil {
		return fmt.Errorf("%w: missing request body", models.ErrInvalidInput)
	}
	if err := s.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	target, err := url.Parse(strings.TrimSpace(req.URL))
	if err != nil {
		return fmt.Errorf("%w: unparseable url %q", models.ErrInvalidInput, req.URL)
	}
	if target.Scheme != "http" && target.Scheme != "https" {
		return fmt.Errorf("%w: url scheme must be http or https, got %q", models.ErrInvalidInput, target.Scheme)
	}
	if target.Hostname() == "" {
		return fmt.Errorf("%w: url %q has no host", models.ErrInvalidInput, req.URL)
	}
	if !s.config.AllowTestURLs() && isTestHost(target.Hostname()) {
		return fmt.Errorf("%w: local address %q is not a valid research target", models.ErrInvalidInput, target.Hostname())
	}
	return nil
}

// isTestHost reports whether the hostname points at a local or private
// address rather than a public website.
func isTestHost(hostname string) bool {
	host := strings.ToLower(hostname)
	if host == "localhost" || strings.HasSuffix(host, ".localhost") || strings.HasSuffix(host, ".local") {
		return true
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() || ip.IsLinkLocalUnicast()
	}
	return false
}
