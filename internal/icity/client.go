// Package icity talks to the iCity diary service: establishing a cookie
// session via the form login flow, and crawling the paginated entry listing.
package icity

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/gorewood/icex/internal/diary"
	"github.com/gorewood/icex/internal/output"
)

const (
	// DefaultPageDelay is the pause between listing pages, small enough to
	// keep exports quick, large enough to stay polite.
	DefaultPageDelay = 150 * time.Millisecond

	requestTimeout = 30 * time.Second
	userAgent      = "Mozilla/5.0 (compatible; icex/1.0)"
	acceptLanguage = "zh-CN,zh;q=0.9,en;q=0.8"
)

// HTTPDoer abstracts the HTTP client for testing.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Progress is called after each listing page with the page number, the
// records that page added, and the running total.
type Progress func(page, added, total int)

// Client is a session-holding iCity client. Login must succeed before
// FetchEntries returns anything useful; the cookie jar carries the session.
type Client struct {
	http  HTTPDoer
	base  *url.URL
	delay time.Duration
}

// New builds a client against the given server URL with a cookie-holding
// HTTP client. delay spaces out listing-page requests; pass
// DefaultPageDelay unless configured otherwise.
func New(baseURL string, delay time.Duration) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, output.NewUserError(fmt.Sprintf("invalid server URL %q", baseURL))
	}

	jar, _ := cookiejar.New(nil)
	return &Client{
		http:  &http.Client{Timeout: requestTimeout, Jar: jar},
		base:  base,
		delay: delay,
	}, nil
}

// WithHTTPDoer swaps the underlying HTTP client. Test hook.
func (c *Client) WithHTTPDoer(doer HTTPDoer) *Client {
	c.http = doer
	return c
}

// Login establishes a session: fetch the welcome page for a CSRF token,
// submit the sign-in form, then probe the target user's page to confirm the
// session holds. probeUser is the account whose diary will be fetched.
func (c *Client) Login(ctx context.Context, username, password, probeUser string) error {
	welcome, err := c.get(ctx, "/welcome")
	if err != nil {
		return err
	}

	token := ParseCSRFToken(welcome)
	if token == "" {
		return output.NewProtocolError("the sign-in page had no CSRF token; the service layout may have changed")
	}

	form := url.Values{}
	form.Set("utf8", "✓")
	form.Set("authenticity_token", token)
	form.Set("icty_user[login]", username)
	form.Set("icty_user[password]", password)
	form.Set("icty_user[remember_me]", "1")
	form.Set("commit", "登入")

	if err := c.postForm(ctx, "/users/sign_in", form); err != nil {
		return err
	}

	probe, err := c.get(ctx, "/u/"+url.PathEscape(probeUser))
	if err != nil {
		return err
	}
	switch {
	case IsVerificationPage(probe):
		return output.NewVerificationError("the service is asking for extra verification; complete it in a browser, then rerun")
	case IsLoginPage(probe):
		return output.NewAuthError("sign-in rejected: check the account name and password")
	}
	return nil
}

// FetchEntries crawls the user's listing pages until an empty page (or
// maxPages, when > 0) and returns the deduplicated records in page order.
// On a mid-crawl failure the records gathered so far come back alongside the
// error, so callers can report how far the run got.
func (c *Client) FetchEntries(ctx context.Context, user string, maxPages int, progress Progress) ([]*diary.Record, error) {
	var all []*diary.Record

	for page := 1; ; page++ {
		path := fmt.Sprintf("/u/%s/posts", url.PathEscape(user))
		if page > 1 {
			path += fmt.Sprintf("?page=%d", page)
		}

		body, err := c.get(ctx, path)
		if err != nil {
			return diary.Dedupe(all), err
		}
		if IsLoginPage(body) {
			return diary.Dedupe(all), output.NewAuthError(
				fmt.Sprintf("the session expired while fetching page %d; rerun to sign in again", page))
		}

		pageRecords, err := ParseEntries(body, c.base)
		if err != nil {
			return diary.Dedupe(all), err
		}
		if len(pageRecords) == 0 {
			break
		}

		all = append(all, pageRecords...)
		if progress != nil {
			progress(page, len(pageRecords), len(all))
		}

		if maxPages > 0 && page >= maxPages {
			break
		}
		if err := pause(ctx, c.delay); err != nil {
			return diary.Dedupe(all), output.NewNetworkError("fetch interrupted", err)
		}
	}

	return diary.Dedupe(all), nil
}

// get performs a GET against a server-relative path and returns the body.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, output.NewProtocolError(fmt.Sprintf("bad request path %q: %v", path, err))
	}
	target := c.base.ResolveReference(ref)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, output.NewProtocolError(fmt.Sprintf("building request for %s: %v", target, err))
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", acceptLanguage)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, output.NewNetworkError(fmt.Sprintf("request to %s failed", target), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, output.NewProtocolError(fmt.Sprintf("the service returned status %d for %s", resp.StatusCode, target.Path))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, output.NewNetworkError(fmt.Sprintf("reading response from %s", target), err)
	}
	return body, nil
}

// postForm submits a form POST against a server-relative path. Redirects are
// followed by the underlying client; any non-error final status below 400
// counts as accepted, since the service answers sign-in with a redirect and
// signals rejection through page content, not status codes.
func (c *Client) postForm(ctx context.Context, path string, form url.Values) error {
	target := c.base.ResolveReference(&url.URL{Path: path})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), strings.NewReader(form.Encode()))
	if err != nil {
		return output.NewProtocolError(fmt.Sprintf("building request for %s: %v", target, err))
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", acceptLanguage)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Origin", c.base.String())
	req.Header.Set("Referer", c.base.ResolveReference(&url.URL{Path: "/welcome"}).String())

	resp, err := c.http.Do(req)
	if err != nil {
		return output.NewNetworkError(fmt.Sprintf("request to %s failed", target), err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return output.NewProtocolError(fmt.Sprintf("the service returned status %d for %s", resp.StatusCode, target.Path))
	}
	return nil
}

// pause sleeps for d or until the context is canceled.
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
