package httpserver_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/whatupfoo/h2-dev-plus/internal/adapters/httpserver"
	"github.com/whatupfoo/h2-dev-plus/internal/app"
	"github.com/whatupfoo/h2-dev-plus/internal/domain"
	"github.com/whatupfoo/h2-dev-plus/internal/usecase"
)

type memStorefront struct {
	products map[string]domain.Product
	panicOn  string
}

func (m *memStorefront) ProductByHandle(_ context.Context, handle string, sel domain.Selection) (*domain.ProductPage, error) {
	if handle == m.panicOn {
		panic("boom")
	}
	p, ok := m.products[handle]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if v, ok := domain.MatchVariant(&p, sel); ok {
		match := *v
		p.SelectedVariant = &match
	}
	return &domain.ProductPage{Shop: domain.Shop{PrimaryDomainURL: "https://oak-furniture.example"}, Product: &p}, nil
}

func (m *memStorefront) ProductVariants(_ context.Context, handle string) ([]domain.Variant, error) {
	p, ok := m.products[handle]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p.Variants, nil
}

type memCarts struct {
	carts   map[string]*domain.Cart
	created int
}

func (m *memCarts) CreateCart(ctx context.Context, lines []domain.CartLineInput) (*domain.Cart, error) {
	m.created++
	c := &domain.Cart{ID: "gid://test/Cart/" + string(rune('0'+m.created)), CheckoutURL: "https://checkout.example/c"}
	m.carts[c.ID] = c
	return m.AddLines(ctx, c.ID, lines)
}

func (m *memCarts) AddLines(_ context.Context, cartID string, lines []domain.CartLineInput) (*domain.Cart, error) {
	c, ok := m.carts[cartID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	for _, l := range lines {
		c.Lines = append(c.Lines, domain.CartLine{MerchandiseID: l.MerchandiseID, Quantity: l.Quantity, Title: "Oak Chair"})
		c.TotalQuantity += l.Quantity
	}
	return c, nil
}

func (m *memCarts) GetCart(_ context.Context, cartID string) (*domain.Cart, error) {
	c, ok := m.carts[cartID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func usd(s string) domain.Money {
	return domain.Money{Amount: decimal.RequireFromString(s), CurrencyCode: "USD"}
}

func catalog() map[string]domain.Product {
	compare := usd("180")
	opts := func(color, size string) []domain.SelectedOption {
		return []domain.SelectedOption{{Name: "Color", Value: color}, {Name: "Size", Value: size}}
	}
	return map[string]domain.Product{
		"oak-chair": {
			ID:              "gid://shopify/Product/1",
			Handle:          "oak-chair",
			Title:           "Oak Chair",
			Vendor:          "Nordic Works",
			DescriptionHTML: `<p onclick="x()">Solid <em>oak</em>.</p><script>alert(1)</script>`,
			FeaturedImage:   &domain.Image{URL: "https://cdn.example/oak.jpg", AltText: "Oak chair"},
			Options: []domain.Option{
				{Name: "Color", Values: []string{"Natural", "Walnut"}},
				{Name: "Size", Values: []string{"Small", "Large"}},
			},
			Variants: []domain.Variant{
				{ID: "gid://shopify/ProductVariant/1", Title: "Natural / Small", AvailableForSale: true, Price: usd("120.00"), SelectedOptions: opts("Natural", "Small")},
				{ID: "gid://shopify/ProductVariant/2", Title: "Natural / Large", AvailableForSale: true, Price: usd("140"), SelectedOptions: opts("Natural", "Large")},
				{ID: "gid://shopify/ProductVariant/3", Title: "Walnut / Small", AvailableForSale: false, Price: usd("130"), SelectedOptions: opts("Walnut", "Small")},
				{ID: "gid://shopify/ProductVariant/4", Title: "Walnut / Large", AvailableForSale: true, Price: usd("150"), CompareAtPrice: &compare,
					Image: &domain.Image{URL: "https://cdn.example/walnut.jpg"}, SelectedOptions: opts("Walnut", "Large")},
			},
			Metafields: []domain.Metafield{
				{Namespace: "furniture", Key: domain.MetafieldAdditionalFeature, Value: "Stackable up to 4"},
				{Namespace: "furniture", Key: domain.MetafieldManufacturerInfo, Reference: &domain.Metaobject{
					Fields: []domain.MetaobjectField{{Key: "name", Value: "Nordic Works AB"}},
				}},
			},
		},
		"bare-stool": {
			ID:     "gid://shopify/Product/2",
			Handle: "bare-stool",
			Title:  "Bare Stool",
		},
	}
}

func newHandler(t *testing.T) (http.Handler, *memCarts) {
	t.Helper()
	tmpl, err := app.NewTemplates(false)
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	carts := &memCarts{carts: map[string]*domain.Cart{}}
	sf := &memStorefront{products: catalog(), panicOn: "explode"}
	h := httpserver.New(tmpl, &usecase.ProductUC{Storefront: sf}, &usecase.CartUC{Carts: carts}, httpserver.Options{SessionKey: "test-key"})
	return h, carts
}

func get(t *testing.T, h http.Handler, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func document(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

func TestProductPageDefaultVariant(t *testing.T) {
	h, _ := newHandler(t)
	doc := document(t, get(t, h, "/products/oak-chair"))

	if got := strings.TrimSpace(doc.Find("h1.product-title").Text()); got != "Oak Chair" {
		t.Fatalf("title = %q", got)
	}
	if got := strings.TrimSpace(doc.Find(".product-vendor").Text()); got != "Nordic Works" {
		t.Fatalf("vendor = %q", got)
	}
	if got := doc.Find(".product-price .price").Text(); got != "$120" {
		t.Fatalf("price = %q", got)
	}
	if got := doc.Find(`input[name="merchandiseId"]`).AttrOr("value", ""); got != "gid://shopify/ProductVariant/1" {
		t.Fatalf("merchandiseId = %q", got)
	}
	btn := doc.Find("form.add-to-cart button")
	if _, disabled := btn.Attr("disabled"); disabled || strings.TrimSpace(btn.Text()) != "Add to cart" {
		t.Fatalf("unexpected button: disabled=%v text=%q", disabled, btn.Text())
	}
	if doc.Find("shop-pay-button").Length() != 1 {
		t.Fatalf("shop pay button expected for available variant")
	}
	if got := doc.Find("shop-pay-button").AttrOr("variants", ""); got != "gid://shopify/ProductVariant/1" {
		t.Fatalf("shop pay variants = %q", got)
	}
	if got := doc.Find("img.product-image").AttrOr("src", ""); got != "https://cdn.example/oak.jpg" {
		t.Fatalf("image = %q", got)
	}
	if doc.Find(".compare-at").Length() != 0 {
		t.Fatalf("no compare-at price expected")
	}
}

func TestProductPageOptionLinks(t *testing.T) {
	h, _ := newHandler(t)
	doc := document(t, get(t, h, "/products/oak-chair"))

	links := doc.Find(`.product-option[data-option="Color"] a`)
	if links.Length() != 2 {
		t.Fatalf("expected 2 color links, got %d", links.Length())
	}
	if !links.First().HasClass("selected") {
		t.Fatalf("current value must be marked")
	}
	if got := links.Last().AttrOr("href", ""); got != "/products/oak-chair?Color=Walnut&Size=Small" {
		t.Fatalf("href = %q", got)
	}
}

func TestProductPageMatchedVariant(t *testing.T) {
	h, _ := newHandler(t)
	doc := document(t, get(t, h, "/products/oak-chair?Color=Walnut&Size=Large"))

	if got := doc.Find(`input[name="merchandiseId"]`).AttrOr("value", ""); got != "gid://shopify/ProductVariant/4" {
		t.Fatalf("merchandiseId = %q", got)
	}
	if got := doc.Find(".product-price .price").Text(); got != "$150" {
		t.Fatalf("price = %q", got)
	}
	if got := doc.Find(".compare-at").Text(); got != "$180" {
		t.Fatalf("compare-at = %q", got)
	}
	if got := doc.Find("img.product-image").AttrOr("src", ""); got != "https://cdn.example/walnut.jpg" {
		t.Fatalf("variant image expected, got %q", got)
	}
}

func TestProductPageSoldOut(t *testing.T) {
	h, _ := newHandler(t)
	doc := document(t, get(t, h, "/products/oak-chair?Color=Walnut&Size=Small"))

	btn := doc.Find("form.add-to-cart button")
	if _, disabled := btn.Attr("disabled"); !disabled {
		t.Fatalf("sold out button must be disabled")
	}
	if got := strings.TrimSpace(btn.Text()); got != "Sold out" {
		t.Fatalf("button = %q", got)
	}
	if doc.Find("shop-pay-button").Length() != 0 {
		t.Fatalf("no shop pay for unavailable variant")
	}
	if got := doc.Find(".product-price .price").Text(); got != "$130" {
		t.Fatalf("price still shown, got %q", got)
	}
	if doc.Find("img.product-image").Length() != 1 {
		t.Fatalf("image still shown")
	}
	if !strings.Contains(doc.Find(".product-description").Text(), "Solid oak.") {
		t.Fatalf("description still shown")
	}
}

func TestProductPageDescriptionSanitized(t *testing.T) {
	h, _ := newHandler(t)
	doc := document(t, get(t, h, "/products/oak-chair"))

	desc := doc.Find(".product-description")
	if desc.Find("script").Length() != 0 {
		t.Fatalf("script must be removed")
	}
	if _, ok := desc.Find("p").Attr("onclick"); ok {
		t.Fatalf("event handlers must be removed")
	}
	if desc.Find("em").Text() != "oak" {
		t.Fatalf("markup must survive")
	}
	if got, _ := doc.Find(`meta[name="description"]`).Attr("content"); got != "Solid oak." {
		t.Fatalf("meta description from plain text, got %q", got)
	}
}

func TestProductPageMetafields(t *testing.T) {
	h, _ := newHandler(t)
	doc := document(t, get(t, h, "/products/oak-chair"))

	features := doc.Find(".product-features")
	if strings.TrimSpace(features.Find("h3").Text()) != "Additional Features" || strings.TrimSpace(features.Find("p").Text()) != "Stackable up to 4" {
		t.Fatalf("unexpected features section: %q", features.Text())
	}
	m := doc.Find(".product-manufacturer")
	if !strings.Contains(m.Find(".manufacturer-name").Text(), "Nordic Works AB") {
		t.Fatalf("manufacturer name expected: %q", m.Text())
	}
	if m.Find(".manufacturer-description").Length() != 0 {
		t.Fatalf("absent description line must not render")
	}

	doc = document(t, get(t, h, "/products/bare-stool"))
	if doc.Find(".product-features, .product-manufacturer").Length() != 0 {
		t.Fatalf("sections must be suppressed without metafields")
	}
}

func TestProductPageUnavailable(t *testing.T) {
	h, _ := newHandler(t)
	doc := document(t, get(t, h, "/products/bare-stool"))

	if got := strings.TrimSpace(doc.Find(".product-unavailable").Text()); got != "Unavailable" {
		t.Fatalf("unavailable state expected, got %q", got)
	}
	if doc.Find("form.add-to-cart, .product-price, shop-pay-button").Length() != 0 {
		t.Fatalf("no purchase controls for unorderable product")
	}
}

func TestProductNotFound(t *testing.T) {
	h, _ := newHandler(t)
	rec := get(t, h, "/products/does-not-exist")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %q", rec.Body.String())
	}
}

func TestProductJSON(t *testing.T) {
	h, _ := newHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/products/oak-chair?Color=Walnut&Size=Large", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Shop struct {
			PrimaryDomainURL string `json:"primaryDomainUrl"`
		} `json:"shop"`
		Product struct {
			ID string `json:"id"`
		} `json:"product"`
		SelectedVariant struct {
			ID string `json:"id"`
		} `json:"selectedVariant"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Shop.PrimaryDomainURL != "https://oak-furniture.example" || body.Product.ID != "gid://shopify/Product/1" || body.SelectedVariant.ID != "gid://shopify/ProductVariant/4" {
		t.Fatalf("unexpected payload: %+v", body)
	}
}

func postCart(t *testing.T, h http.Handler, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/cart", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func cartCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "cart" {
			return c
		}
	}
	t.Fatalf("cart cookie not set")
	return nil
}

func TestCartAdd(t *testing.T) {
	h, carts := newHandler(t)

	rec := postCart(t, h, url.Values{"merchandiseId": {"gid://shopify/ProductVariant/1"}, "redirect": {"/products/oak-chair?Color=Natural"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/products/oak-chair?Color=Natural#cart-aside" {
		t.Fatalf("location = %q", got)
	}
	cookie := cartCookie(t, rec)

	rec = postCart(t, h, url.Values{"merchandiseId": {"gid://shopify/ProductVariant/4"}, "quantity": {"2"}}, cookie)
	if got := rec.Header().Get("Location"); got != "/cart#cart-aside" {
		t.Fatalf("default redirect expected, got %q", got)
	}
	if carts.created != 1 {
		t.Fatalf("second add must reuse the cart, created=%d", carts.created)
	}
	c := carts.carts["gid://test/Cart/1"]
	if c.TotalQuantity != 3 || len(c.Lines) != 2 {
		t.Fatalf("unexpected cart: %+v", c)
	}

	doc := document(t, get(t, h, "/cart", cookie))
	if doc.Find("li.cart-line").Length() != 2 {
		t.Fatalf("expected 2 lines in cart page")
	}
	if doc.Find("a.checkout").AttrOr("href", "") != "https://checkout.example/c" {
		t.Fatalf("checkout link expected")
	}
}

func TestCartAddRejects(t *testing.T) {
	h, carts := newHandler(t)

	rec := postCart(t, h, url.Values{"merchandiseId": {""}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	for _, target := range []string{
		"https://evil.example/",
		"//evil.example",
		"/\\evil.example",
		"/\t/evil.example",
		"/\n/evil.example",
		"/\r/evil.example",
		"/\x7f/evil.example",
		"javascript:alert(1)",
	} {
		rec = postCart(t, h, url.Values{"merchandiseId": {"gid://shopify/ProductVariant/1"}, "redirect": {target}})
		if got := rec.Header().Get("Location"); got != "/cart#cart-aside" {
			t.Fatalf("redirect %q must fall back to the cart, got %q", target, got)
		}
	}
	created := carts.created

	forged := &http.Cookie{Name: "cart", Value: "AAAA.eyJpZCI6ImdpZDovL3Rlc3QvQ2FydC8xIn0"}
	postCart(t, h, url.Values{"merchandiseId": {"gid://shopify/ProductVariant/2"}}, forged)
	if carts.created != created+1 {
		t.Fatalf("forged cookie must be ignored, created=%d", carts.created)
	}
}

func TestCartEmpty(t *testing.T) {
	h, _ := newHandler(t)
	doc := document(t, get(t, h, "/cart"))
	if doc.Find(".cart-empty").Length() != 1 {
		t.Fatalf("empty cart message expected")
	}
}

func TestVariantsExport(t *testing.T) {
	h, _ := newHandler(t)
	rec := get(t, h, "/products/oak-chair/variants.xlsx")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), "oak-chair-variants.xlsx") {
		t.Fatalf("unexpected disposition %q", rec.Header().Get("Content-Disposition"))
	}
	f, err := excelize.OpenReader(rec.Body)
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 2+4 {
		t.Fatalf("expected title, header and 4 variants, got %d rows", len(rows))
	}

	if rec := get(t, h, "/products/nope/variants.xlsx"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHealthAndRequestID(t *testing.T) {
	h, _ := newHandler(t)

	rec := get(t, h, "/healthz")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("unexpected health response: %d %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("request id header expected")
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get("X-Request-ID") != "abc-123" {
		t.Fatalf("incoming request id must be reused")
	}
}

func TestRecovery(t *testing.T) {
	h, _ := newHandler(t)
	rec := get(t, h, "/products/explode")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
