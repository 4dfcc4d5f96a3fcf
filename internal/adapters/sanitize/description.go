package sanitize

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

// policy es una lista blanca: lo que no está permitido (svg, math, handlers,
// esquemas que no sean http/https/mailto) se descarta. Es segura para uso
// concurrente una vez armada.
var policy = bluemonday.UGCPolicy()

// DescriptionHTML limpia el descriptionHtml que viene del backend antes de
// marcarlo como seguro en el template.
func DescriptionHTML(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	return strings.TrimSpace(policy.Sanitize(raw))
}

// PlainText devuelve el texto visible, con espacios colapsados.
func PlainText(raw string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return ""
	}
	doc.Find("script, style, iframe, object, embed, template, noscript").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}
