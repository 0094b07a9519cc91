package view

import (
	"html/template"
	"net/url"

	"github.com/utafrali/EcommerceGo/services/storefront/internal/api"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/domain"
)

var funcs = template.FuncMap{
	"idr":   domain.FormatIDR,
	"short": domain.ShortName,
	"date":  domain.FormatDate,
	"add":   func(a, b int) int { return a + b },
	"path":  url.PathEscape,
	"pay":   api.PayURL,
}
