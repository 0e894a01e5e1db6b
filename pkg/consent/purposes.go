package consent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"assent/pkg/consent/tracer"
)

// maxPurposePages caps Link-header continuation so a platform that keeps
// advertising a next page cannot trap the client in an endless walk.
const maxPurposePages = 100

// Purposes fetches the full purpose catalog for the organization tied to
// the API key.
//
// A paginating platform advertises continuation through RFC 8288
// "Link: <url>; rel=\"next\"" headers; the client follows every
// continuation link and returns the fully materialized catalog in server
// order. Repeated calls against an unchanged backend return identical
// sequences.
func (c *Client) Purposes(ctx context.Context) ([]Purpose, error) {
	const op = "Purposes"

	ctx, span := c.tracer.Start(ctx, tracer.SpanPurposes)
	start := time.Now()

	purposes, pages, err := c.collectPurposes(ctx, op, span)
	c.observe(opPurposes, start, err)
	if err != nil {
		span.End(err)
		return nil, err
	}

	span.SetAttributes(
		tracer.Int64(tracer.AttrPageCount, int64(pages)),
		tracer.Int64(tracer.AttrPurposeCount, int64(len(purposes))),
	)
	span.End(nil)
	return purposes, nil
}

// collectPurposes walks the catalog page by page until no continuation
// link remains.
func (c *Client) collectPurposes(ctx context.Context, op string, span tracer.Span) ([]Purpose, int, error) {
	purposes := []Purpose{}
	pageURL := c.baseURL + "/purposes"
	pages := 0

	for pageURL != "" {
		if pages == maxPurposePages {
			return nil, pages, &Error{
				Kind:    KindContract,
				Op:      op,
				Message: fmt.Sprintf("pagination did not terminate after %d pages", maxPurposePages),
			}
		}

		code, body, header, err := c.get(ctx, op, "/purposes", pageURL)
		if err != nil {
			return nil, pages, err
		}
		if respErr := classifyResponse(op, code, body); respErr != nil {
			return nil, pages, respErr
		}

		var page []purposeResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, pages, &Error{
				Kind:    KindContract,
				Op:      op,
				Message: "failed to parse response",
				Status:  code,
				Body:    string(body),
				Err:     err,
			}
		}
		for _, p := range page {
			purposes = append(purposes, p.toPurpose())
		}
		pages++

		next, err := resolveLink(pageURL, nextLink(header.Get("Link")))
		if err != nil {
			return nil, pages, &Error{
				Kind:    KindContract,
				Op:      op,
				Message: "invalid pagination link",
				Err:     err,
			}
		}
		span.AddEvent(tracer.EventPageFetched,
			tracer.Int64("page", int64(pages)),
			tracer.Int64("purposes", int64(len(page))),
			tracer.Bool("more", next != ""),
		)
		pageURL = next
	}
	return purposes, pages, nil
}

// nextLink extracts the rel="next" target from an RFC 8288 Link header.
// Returns "" when the header carries no next relation.
func nextLink(header string) string {
	for _, field := range strings.Split(header, ",") {
		parts := strings.Split(field, ";")
		if len(parts) < 2 {
			continue
		}
		target := strings.TrimSpace(parts[0])
		if !strings.HasPrefix(target, "<") || !strings.HasSuffix(target, ">") {
			continue
		}
		for _, param := range parts[1:] {
			key, value, ok := strings.Cut(strings.TrimSpace(param), "=")
			if !ok || strings.TrimSpace(key) != "rel" {
				continue
			}
			if strings.Trim(strings.TrimSpace(value), `"`) == "next" {
				return strings.Trim(target, "<>")
			}
		}
	}
	return ""
}

// resolveLink makes a continuation target absolute relative to the page
// it came from.
func resolveLink(pageURL, target string) (string, error) {
	if target == "" {
		return "", nil
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(target)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}
