package validation

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-trackjournal/pkg/vehicle"
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

// Sanitize strips markup from free text received from untrusted clients.
func Sanitize(raw string) string {
	if raw == "" {
		return ""
	}
	if !strings.ContainsAny(raw, "<>&") {
		return raw
	}
	cleaned := textSanitizer().Sanitize(raw)
	return html.UnescapeString(cleaned)
}

// SanitizeCandidate applies Sanitize to every text attribute of c.
func SanitizeCandidate(c Candidate) Candidate {
	c.Make = Sanitize(c.Make)
	c.Model = Sanitize(c.Model)
	c.Engine = Sanitize(c.Engine)
	c.Transmission = Sanitize(c.Transmission)
	c.Color = Sanitize(c.Color)
	c.VIN = Sanitize(c.VIN)
	c.LicensePlate = Sanitize(c.LicensePlate)
	c.Notes = Sanitize(c.Notes)
	return c
}

// SanitizePatch applies Sanitize to every present text attribute of p.
func SanitizePatch(p vehicle.Patch) vehicle.Patch {
	p.Make = sanitizeRef(p.Make)
	p.Model = sanitizeRef(p.Model)
	p.Engine = sanitizeRef(p.Engine)
	p.Transmission = sanitizeRef(p.Transmission)
	p.Color = sanitizeRef(p.Color)
	p.VIN = sanitizeRef(p.VIN)
	p.LicensePlate = sanitizeRef(p.LicensePlate)
	p.Notes = sanitizeRef(p.Notes)
	return p
}

func sanitizeRef(s *string) *string {
	if s == nil {
		return nil
	}
	v := Sanitize(*s)
	return &v
}

func textSanitizer() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}
