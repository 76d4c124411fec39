package service

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/DenisKhanov/RouteBOT/internal/routebot/constant"
	"github.com/DenisKhanov/RouteBOT/internal/routebot/directory"
)

// BuildDeepLink returns a chat link to target with a prefilled message naming the user and department.
// A leading "+" is stripped from target; name and label are query-encoded.
func BuildDeepLink(base, target, name, label string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse deep link base %q: %w", base, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("deep link base %q must be an absolute URL", base)
	}
	address := strings.TrimPrefix(strings.TrimSpace(target), "+")
	if address == "" {
		return "", fmt.Errorf("empty routing target for department %q", label)
	}

	u = u.JoinPath(address)
	q := url.Values{}
	q.Set("text", fmt.Sprintf(constant.DEEP_LINK_TEXT, name, directory.TitleFirst(label)))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
