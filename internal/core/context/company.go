// Package context provides request-scoped values extraction.
package context

import (
	"context"

	"sitestock/internal/core/id"
)

// CompanyContext carries the tenant scope of the current request.
// Every stock table is keyed by company id; repositories must never query
// without it.
type CompanyContext struct {
	CompanyID id.ID
	Actor     string // user identifier from the surrounding application, free-form
}

type companyContextKey struct{}

// WithCompany adds CompanyContext to context.
func WithCompany(ctx context.Context, company *CompanyContext) context.Context {
	return context.WithValue(ctx, companyContextKey{}, company)
}

// GetCompany returns CompanyContext from context.
func GetCompany(ctx context.Context) *CompanyContext {
	if v, ok := ctx.Value(companyContextKey{}).(*CompanyContext); ok {
		return v
	}
	return nil
}

// GetCompanyID returns the company id from context or the nil id.
func GetCompanyID(ctx context.Context) id.ID {
	if c := GetCompany(ctx); c != nil {
		return c.CompanyID
	}
	return id.Nil()
}

// GetActor returns the acting user from context or empty string.
func GetActor(ctx context.Context) string {
	if c := GetCompany(ctx); c != nil {
		return c.Actor
	}
	return ""
}
