package internal

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// ParseNetscapeCookies parses a cookies.txt file as exported by browsers
// and yt-dlp. Fields are tab separated:
// domain, include-subdomains, path, secure, expiry, name, value.
func ParseNetscapeCookies(r io.Reader) ([]*http.Cookie, error) {
	var cookies []*http.Cookie
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		httpOnly := false
		if rest, ok := strings.CutPrefix(line, "#HttpOnly_"); ok {
			line = rest
			httpOnly = true
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, "\t")
		if len(parts) < 7 {
			continue
		}

		expiresUnix, _ := strconv.ParseInt(parts[4], 10, 64)
		cookie := &http.Cookie{
			Domain:   parts[0],
			Path:     parts[2],
			Secure:   strings.EqualFold(parts[3], "TRUE"),
			Name:     parts[5],
			Value:    parts[6],
			HttpOnly: httpOnly,
		}
		if expiresUnix > 0 {
			cookie.Expires = time.Unix(expiresUnix, 0)
		}
		cookies = append(cookies, cookie)
	}

	return cookies, scanner.Err()
}

// LoadCookieJar builds a cookie jar for the YouTube hosts from a cookies.txt file
func LoadCookieJar(path string) (http.CookieJar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening cookies file: %w", err)
	}
	defer f.Close()

	cookies, err := ParseNetscapeCookies(f)
	if err != nil {
		return nil, fmt.Errorf("parsing cookies file: %w", err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	for _, host := range []string{"https://www.youtube.com", "https://music.youtube.com", "https://youtube.com"} {
		u, _ := url.Parse(host)
		jar.SetCookies(u, cookiesFor(u.Host, cookies))
	}
	return jar, nil
}

func cookiesFor(host string, cookies []*http.Cookie) []*http.Cookie {
	var out []*http.Cookie
	for _, c := range cookies {
		domain := strings.TrimPrefix(c.Domain, ".")
		if host == domain || strings.HasSuffix(host, "."+domain) {
			out = append(out, c)
		}
	}
	return out
}
