package validators

import (
	"context"
	"net"
	"strings"
	"time"
)

// dnsTimeout bounds the registration request when the resolver hangs.
const dnsTimeout = 3 * time.Second

// resolver is swapped in tests.
var resolver interface {
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
} = net.DefaultResolver

// EmailDomain returns the lower-cased domain part of an address, or "" when
// the address has none.
func EmailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return ""
	}
	return strings.ToLower(strings.TrimSuffix(strings.TrimSpace(email[at+1:]), "."))
}

// IsEmailDomainValid accepts a domain with an MX record or, failing that,
// any address record.
func IsEmailDomainValid(email string) bool {
	domain := EmailDomain(email)
	if domain == "" {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), dnsTimeout)
	defer cancel()

	if mx, err := resolver.LookupMX(ctx, domain); err == nil && len(mx) > 0 {
		return true
	}

	ips, err := resolver.LookupIPAddr(ctx, domain)
	return err == nil && len(ips) > 0
}
