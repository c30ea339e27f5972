package github

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/alanmeadows/prharvest/internal/provider"
)

// nonOKPrefix starts the error the GraphQL transport returns for non-200 responses.
const nonOKPrefix = "non-200 OK status code"

// graphQLPkg is the package whose unexported errors type carries the
// response's "errors" array.
const graphQLPkg = "github.com/shurcooL/graphql"

// fetchError wraps a failed page query in provider.ErrFetchFailed with an
// actionable reason. Errors reported in the GraphQL errors array keep their
// first message verbatim.
func fetchError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %w", provider.ErrFetchFailed, ctxErr)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%w: network error contacting GitHub: %v", provider.ErrFetchFailed, urlErr.Err)
	}

	msg := err.Error()
	if isGraphQLErrors(err) {
		return fmt.Errorf("%w: GraphQL Error: %s", provider.ErrFetchFailed, msg)
	}
	if !strings.HasPrefix(msg, nonOKPrefix) {
		return fmt.Errorf("%w: unexpected response from GitHub: %s", provider.ErrFetchFailed, msg)
	}

	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "rate limit") || strings.Contains(lower, "code: 429"):
		return fmt.Errorf("%w: GitHub API rate limit exceeded: %s", provider.ErrFetchFailed, msg)
	case strings.Contains(lower, "code: 401") || strings.Contains(lower, "code: 403"):
		return fmt.Errorf("%w: GitHub authentication failed, check the token: %s", provider.ErrFetchFailed, msg)
	case strings.Contains(lower, "code: 404"):
		return fmt.Errorf("%w: GraphQL endpoint not found: %s", provider.ErrFetchFailed, msg)
	default:
		return fmt.Errorf("%w: %s", provider.ErrFetchFailed, msg)
	}
}

// isGraphQLErrors reports whether err, or anything it wraps, is the errors
// array decoded from a 200 response.
func isGraphQLErrors(err error) bool {
	for ; err != nil; err = errors.Unwrap(err) {
		t := reflect.TypeOf(err)
		if t.PkgPath() == graphQLPkg && t.Name() == "errors" {
			return true
		}
	}
	return false
}
