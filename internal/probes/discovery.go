package probes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/apisentinel/scanner/internal/transport"
)

// maxScriptFetches caps how many external script files the js-files
// strategy will download per target.
const maxScriptFetches = 5

var (
	scriptSrcPattern = regexp.MustCompile(`(?i)<script[^>]+src=["']([^"']+\.js[^"']*)["']`)
	apiPathPattern   = regexp.MustCompile(`["'](/(?:api|v[0-9]+|rest|graphql)(?:/[A-Za-z0-9_\-./{}]*)?)["']`)
)

// CommonPaths probes a fixed path list under the target and keeps
// every path that answers below 400.
func CommonPaths(paths []string) DiscoveryFunc {
	return func(ctx context.Context, target string, client *transport.Client) ([]string, error) {
		var found []string
		for _, path := range paths {
			if ctx.Err() != nil {
				return found, ctx.Err()
			}
			endpoint := joinPath(target, path)
			resp, _, err := client.Get(ctx, endpoint)
			if err != nil {
				continue
			}
			if resp.StatusCode < 400 {
				found = append(found, endpoint)
			}
		}
		return found, nil
	}
}

// JSFiles pulls the target's landing page, follows its script tags and
// scrapes API-looking paths out of the JavaScript.
func JSFiles(ctx context.Context, target string, client *transport.Client) ([]string, error) {
	resp, body, err := client.Get(ctx, target)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("landing page returned %d", resp.StatusCode)
	}

	page := string(body)
	var found []string

	for _, path := range apiPathPattern.FindAllStringSubmatch(page, -1) {
		found = append(found, joinPath(target, path[1]))
	}

	fetched := 0
	for _, m := range scriptSrcPattern.FindAllStringSubmatch(page, -1) {
		if fetched >= maxScriptFetches || ctx.Err() != nil {
			break
		}
		scriptURL, err := resolveURL(target, m[1])
		if err != nil {
			continue
		}
		_, script, err := client.Get(ctx, scriptURL)
		if err != nil {
			continue
		}
		fetched++
		for _, path := range apiPathPattern.FindAllStringSubmatch(string(script), -1) {
			found = append(found, joinPath(target, path[1]))
		}
	}

	return found, nil
}

// swaggerDoc is the subset of an OpenAPI document discovery cares about.
type swaggerDoc struct {
	BasePath string                     `json:"basePath"`
	Paths    map[string]json.RawMessage `json:"paths"`
}

var swaggerLocations = []string{
	"/swagger.json",
	"/openapi.json",
	"/swagger/v1/swagger.json",
	"/api-docs",
	"/v2/api-docs",
}

// Swagger looks for an OpenAPI/Swagger document in the usual places and
// turns its path table into endpoints.
func Swagger(ctx context.Context, target string, client *transport.Client) ([]string, error) {
	for _, loc := range swaggerLocations {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		docURL := joinPath(target, loc)
		resp, body, err := client.Get(ctx, docURL)
		if err != nil || resp.StatusCode != 200 {
			continue
		}

		var doc swaggerDoc
		if err := json.Unmarshal(body, &doc); err != nil || len(doc.Paths) == 0 {
			continue
		}

		found := []string{docURL}
		for path := range doc.Paths {
			found = append(found, joinPath(target, doc.BasePath+path))
		}
		return found, nil
	}
	return nil, nil
}

var graphqlLocations = []string{"/graphql", "/api/graphql", "/v1/graphql"}

// GraphQL detects a GraphQL endpoint by sending a minimal __typename
// query to the usual mount points.
func GraphQL(ctx context.Context, target string, client *transport.Client) ([]string, error) {
	query := []byte(`{"query":"{__typename}"}`)

	var found []string
	for _, loc := range graphqlLocations {
		if ctx.Err() != nil {
			return found, ctx.Err()
		}
		endpoint := joinPath(target, loc)
		resp, body, err := client.PostJSON(ctx, endpoint, query)
		if err != nil {
			continue
		}
		// A GraphQL server answers the probe with a data or errors
		// document even when it rejects the query.
		text := string(body)
		if resp.StatusCode < 500 && (strings.Contains(text, "__typename") ||
			strings.Contains(text, `"data"`) || strings.Contains(text, `"errors"`)) {
			found = append(found, endpoint)
		}
	}
	return found, nil
}

func joinPath(target, path string) string {
	return strings.TrimSuffix(target, "/") + "/" + strings.TrimPrefix(path, "/")
}

func resolveURL(base, ref string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return baseURL.ResolveReference(refURL).String(), nil
}
