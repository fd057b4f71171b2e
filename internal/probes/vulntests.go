package probes

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/apisentinel/scanner/internal/transport"
)

// sqlErrorSignatures are backend error fragments that leak through when
// a quote breaks a query. Matched case-insensitively against the body.
var sqlErrorSignatures = []string{
	"sql syntax",
	"mysql_fetch",
	"you have an error in your sql",
	"unclosed quotation mark",
	"quoted string not properly terminated",
	"pg_query",
	"syntax error at or near",
	"sqlite3.operationalerror",
	"sqlstate[",
	"ora-00933",
	"ora-01756",
	"odbc sql server driver",
}

// TestSQLi appends a breaking quote to a common query parameter and
// checks the response for database error leakage. Error-based detection
// only; no payload goes beyond a single quote.
func TestSQLi(ctx context.Context, endpoint string, client *transport.Client) (string, error) {
	probeURL := endpoint
	if strings.Contains(endpoint, "?") {
		probeURL += "&id=1'"
	} else {
		probeURL += "?id=1'"
	}

	resp, body, err := client.Get(ctx, probeURL)
	if err != nil {
		return "", err
	}

	lower := strings.ToLower(string(body))
	for _, sig := range sqlErrorSignatures {
		if strings.Contains(lower, sig) {
			return fmt.Sprintf("database error leaked for payload id=1' (status %d, matched %q)", resp.StatusCode, sig), nil
		}
	}
	return "", nil
}

// TestBOLA reads two adjacent object IDs without credentials. Two
// distinct 2xx bodies means object-level authorization is not enforced.
func TestBOLA(ctx context.Context, endpoint string, client *transport.Client) (string, error) {
	respA, bodyA, err := client.Get(ctx, joinPath(endpoint, "/1"))
	if err != nil {
		return "", err
	}
	if respA.StatusCode < 200 || respA.StatusCode >= 300 {
		return "", nil
	}

	respB, bodyB, err := client.Get(ctx, joinPath(endpoint, "/2"))
	if err != nil {
		return "", err
	}
	if respB.StatusCode < 200 || respB.StatusCode >= 300 {
		return "", nil
	}

	if len(bodyA) > 0 && len(bodyB) > 0 && !bytes.Equal(bodyA, bodyB) {
		return "objects 1 and 2 readable without authorization and return distinct records", nil
	}
	return "", nil
}

// TestBFLA checks function-level authorization: an admin sub-resource
// reachable anonymously, or state-changing verbs advertised via OPTIONS.
func TestBFLA(ctx context.Context, endpoint string, client *transport.Client) (string, error) {
	resp, _, err := client.Get(ctx, joinPath(endpoint, "/admin"))
	if err == nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return "administrative function reachable without credentials", nil
	}

	resp, _, err = client.Request(ctx, http.MethodOptions, endpoint, nil, "")
	if err != nil {
		return "", err
	}
	allow := resp.Header.Get("Allow")
	for _, verb := range []string{"DELETE", "PUT", "PATCH"} {
		if strings.Contains(allow, verb) {
			return fmt.Sprintf("state-changing methods advertised to anonymous clients: %s", allow), nil
		}
	}
	return "", nil
}

// TestMassAssignment posts a record with privileged fields attached and
// checks whether the server accepts and echoes them back.
func TestMassAssignment(ctx context.Context, endpoint string, client *transport.Client) (string, error) {
	payload := []byte(`{"username":"sentinel_probe","role":"admin","is_admin":true}`)

	resp, body, err := client.PostJSON(ctx, endpoint, payload)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", nil
	}

	text := string(body)
	if strings.Contains(text, `"is_admin":true`) || strings.Contains(text, `"role":"admin"`) {
		return "server accepted and echoed privileged fields (role, is_admin) from an unprivileged create", nil
	}
	return "", nil
}

// TestExposedSecrets scans the endpoint's response body for credential
// material (API keys, tokens, connection strings).
func TestExposedSecrets(ctx context.Context, endpoint string, client *transport.Client) (string, error) {
	resp, body, err := client.Get(ctx, endpoint)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 400 {
		return "", nil
	}

	matches := DetectSecrets(string(body))
	if len(matches) == 0 {
		return "", nil
	}

	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		parts = append(parts, fmt.Sprintf("%s (%s)", m.Name, m.Redacted))
	}
	return "response body exposes " + strings.Join(parts, ", "), nil
}
