package middleware

import (
	"github.com/gin-gonic/gin"

	"sitestock/internal/core/apperror"
	appctx "sitestock/internal/core/context"
	"sitestock/internal/core/id"
)

const (
	HeaderCompanyID = "X-Company-ID"
	HeaderActor     = "X-Actor"
)

// Company middleware resolves the tenant scope of the request. The
// surrounding application authenticates the user and forwards the company
// id; every repository query below is keyed by it.
func Company() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(HeaderCompanyID)
		if raw == "" {
			_ = c.Error(apperror.NewValidation("missing " + HeaderCompanyID + " header"))
			c.Abort()
			return
		}

		companyID, err := id.Parse(raw)
		if err != nil || id.IsNil(companyID) {
			_ = c.Error(apperror.NewValidation("invalid " + HeaderCompanyID + " header"))
			c.Abort()
			return
		}

		company := &appctx.CompanyContext{
			CompanyID: companyID,
			Actor:     c.GetHeader(HeaderActor),
		}

		ctx := appctx.WithCompany(c.Request.Context(), company)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
