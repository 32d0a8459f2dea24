package images

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"path"
	"syscall"
	"time"
)

// ErrForbiddenHost rejects image URLs that point at loopback, private or
// link-local addresses
var ErrForbiddenHost = errors.New("image host is not publicly routable")

// Fetcher downloads images referenced by URL
type Fetcher struct {
	HTTPClient *http.Client
	MaxBytes   int64

	// AllowPrivate permits hosts on loopback and private networks
	AllowPrivate bool
}

// NewFetcher creates a new image fetcher. Every connection is checked
// against the resolved address, so redirects and DNS answers pointing at
// internal hosts are refused as well.
func NewFetcher(maxBytes int64) *Fetcher {
	f := &Fetcher{MaxBytes: maxBytes}
	dialer := &net.Dialer{
		Timeout: 10 * time.Second,
		Control: f.checkDial,
	}
	f.HTTPClient = &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			DialContext:         dialer.DialContext,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}
	return f
}

// Fetch downloads imageURL and validates it as an Input
func (f *Fetcher) Fetch(ctx context.Context, imageURL string) (*Input, error) {
	u, err := url.Parse(imageURL)
	if err != nil {
		return nil, &ValidationError{Reason: fmt.Sprintf("invalid image url: %v", err)}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, &ValidationError{Reason: fmt.Sprintf("unsupported image url scheme %q", u.Scheme)}
	}
	if u.Hostname() == "" {
		return nil, &ValidationError{Reason: "image url has no host"}
	}
	if addr, err := netip.ParseAddr(u.Hostname()); err == nil && !f.allowed(addr) {
		return nil, forbidden(addr.String())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &ValidationError{Reason: fmt.Sprintf("invalid image url: %v", err)}
	}

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		if errors.Is(err, ErrForbiddenHost) {
			return nil, forbidden(u.Hostname())
		}
		return nil, &EncodingError{Err: fmt.Errorf("failed to download image: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &EncodingError{Err: fmt.Errorf("failed to download image: HTTP %d", resp.StatusCode)}
	}

	filename := path.Base(req.URL.Path)
	if filename == "" || filename == "/" || filename == "." {
		filename = "image"
	}

	in, err := ReadInput(resp.Body, resp.Header.Get("Content-Type"), filename, f.MaxBytes)
	if err != nil {
		return nil, err
	}

	slog.Info("Downloaded image", "url", imageURL, "bytes", in.Size(), "type", in.MIMEType)
	return in, nil
}

func (f *Fetcher) checkDial(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return err
	}
	if !f.allowed(addr) {
		return fmt.Errorf("%w: %s", ErrForbiddenHost, addr)
	}
	return nil
}

func (f *Fetcher) allowed(addr netip.Addr) bool {
	if f.AllowPrivate {
		return true
	}
	addr = addr.Unmap()
	return !(addr.IsLoopback() ||
		addr.IsPrivate() ||
		addr.IsUnspecified() ||
		addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() ||
		addr.IsInterfaceLocalMulticast() ||
		addr.IsMulticast())
}

func forbidden(host string) error {
	slog.Warn("Refusing to fetch image from internal host", "host", host)
	return &ValidationError{Reason: "image host " + host + " is not allowed", Kind: ErrForbiddenHost}
}
