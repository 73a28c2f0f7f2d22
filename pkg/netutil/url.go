// Package netutil validates network endpoints supplied through configuration.
package netutil

import (
	"net"
	"net/url"
	"strconv"

	"github.com/pkg/errors"
	"golang.org/x/net/idna"
)

const maxDomainNameSize = 253

// ValidateHttpUrl checks that value is an absolute http(s) URL with a usable
// host. A bare host is rejected since the RPC client will not infer a scheme.
func ValidateHttpUrl(value string, requireSecureConnection bool) error {
	parsed, err := url.Parse(value)
	if err != nil {
		return err
	}

	switch parsed.Scheme {
	case "https":
	case "http":
		if requireSecureConnection {
			return errors.New("url scheme must be https")
		}
	default:
		return errors.Errorf("url scheme must be http or https, got %q", parsed.Scheme)
	}

	host := parsed.Hostname()
	if host == "" {
		return errors.New("host component missing")
	}

	if port := parsed.Port(); port != "" {
		if n, err := strconv.Atoi(port); err != nil || n <= 0 || n > 65535 {
			return errors.Errorf("invalid port %q", port)
		}
	}

	if net.ParseIP(host) != nil {
		return nil
	}
	return errors.Wrap(ValidateDomainName(host), "host is not a valid domain name")
}

// ValidateDomainName checks value against the IDNA registration profile.
func ValidateDomainName(value string) error {
	switch {
	case value == "":
		return errors.New("domain name is empty")
	case len(value) > maxDomainNameSize:
		return errors.Errorf("domain name exceeds %d bytes", maxDomainNameSize)
	}

	if _, err := idna.Registration.ToASCII(value); err != nil {
		return errors.Wrap(err, "domain name is invalid")
	}
	return nil
}
