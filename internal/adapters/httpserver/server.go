package httpserver

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/whatupfoo/h2-dev-plus/internal/adapters/export"
	"github.com/whatupfoo/h2-dev-plus/internal/domain"
	"github.com/whatupfoo/h2-dev-plus/internal/usecase"
)

const cartCookie = "cart"

type Server struct {
	router   *mux.Router
	tmpl     *template.Template
	products *usecase.ProductUC
	carts    *usecase.CartUC

	secret  []byte
	baseURL string
	static  string
}

type Options struct {
	SessionKey string
	BaseURL    string
	// StaticDir es la carpeta servida bajo /public/
	StaticDir string
}

func New(t *template.Template, p *usecase.ProductUC, c *usecase.CartUC, opts Options) http.Handler {
	s := &Server{tmpl: t, products: p, carts: c, router: mux.NewRouter(), baseURL: strings.TrimSuffix(opts.BaseURL, "/"), static: opts.StaticDir}
	key := opts.SessionKey
	if key == "" {
		key = "dev-insecure"
	}
	s.secret = []byte(key)
	if s.static == "" {
		s.static = "public"
	}

	s.routes()
	return Chain(s.router,
		SecurityHeaders,
		RequestID,
		Recovery,
		Logging,
	)
}

func (s *Server) routes() {
	s.router.PathPrefix("/public/").Handler(http.StripPrefix("/public/", http.FileServer(http.Dir(s.static))))

	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	s.router.HandleFunc("/products/{handle}", s.handleProduct).Methods(http.MethodGet, http.MethodHead)
	s.router.HandleFunc("/products/{handle}/variants.xlsx", s.handleVariantsExport).Methods(http.MethodGet)

	s.router.HandleFunc("/cart", s.handleCart).Methods(http.MethodGet)
	s.router.HandleFunc("/cart", s.handleCartAdd).Methods(http.MethodPost)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// loaderPayload es la respuesta JSON de la página de producto.
type loaderPayload struct {
	Shop            domain.Shop     `json:"shop"`
	Product         *domain.Product `json:"product"`
	SelectedVariant *domain.Variant `json:"selectedVariant"`
}

func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request) {
	handle := mux.Vars(r)["handle"]
	sel := domain.ParseSelection(r.URL.RawQuery)

	page, err := s.products.Page(r.Context(), handle, sel)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, loaderPayload{Shop: page.Shop, Product: page.Product, SelectedVariant: page.SelectedVariant})
		return
	}

	base := s.canonicalBase(r)
	data := map[string]any{
		"Title":        page.Product.Title,
		"Page":         page,
		"CanonicalURL": base + "/products/" + page.Product.Handle,
		"CurrentURL":   r.URL.RequestURI(),
		"Description":  page.Summary,
	}
	if page.Image != nil && page.Image.URL != "" {
		og := page.Image.URL
		if !strings.HasPrefix(og, "http://") && !strings.HasPrefix(og, "https://") {
			og = base + "/" + strings.TrimPrefix(og, "/")
		}
		data["OGImage"] = og
	}
	s.render(w, "product.html", data)
}

func (s *Server) handleVariantsExport(w http.ResponseWriter, r *http.Request) {
	p, variants, err := s.products.Variants(r.Context(), mux.Vars(r)["handle"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+p.Handle+`-variants.xlsx"`)
	if err := export.WriteVariants(w, p, variants); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("handle", p.Handle).Msg("export variantes")
	}
}

func (s *Server) handleCart(w http.ResponseWriter, r *http.Request) {
	cart, err := s.carts.Get(r.Context(), s.readCart(r).ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, map[string]any{"cart": cart})
		return
	}
	s.render(w, "cart.html", map[string]any{"Title": "Cart", "Cart": cart})
}

func (s *Server) handleCartAdd(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "form inválido", http.StatusBadRequest)
		return
	}
	qty, _ := strconv.Atoi(strings.TrimSpace(r.PostFormValue("quantity")))
	line := domain.CartLineInput{MerchandiseID: r.PostFormValue("merchandiseId"), Quantity: qty}

	cart, err := s.carts.AddLine(r.Context(), s.readCart(r).ID, line)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeCart(w, cartPayload{ID: cart.ID})

	target := localRedirect(r.PostFormValue("redirect"))
	http.Redirect(w, r, target+"#cart-aside", http.StatusSeeOther)
}

// localRedirect sólo acepta paths del propio sitio. Los navegadores ignoran
// tabs y saltos de línea dentro de una URL, así que cualquier byte de control
// se rechaza antes de mirar el prefijo.
func localRedirect(raw string) string {
	const fallback = "/cart"
	raw = strings.TrimSpace(raw)
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		raw = raw[:i]
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] < 0x20 || raw[i] == 0x7f {
			return fallback
		}
	}
	if !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return fallback
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil {
		return fallback
	}
	return raw
}

// fail traduce errores de dominio a status HTTP.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var ue *domain.UserError
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrInvalidHandle):
		w.WriteHeader(http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidLine):
		http.Error(w, "merchandiseId requerido", http.StatusBadRequest)
	case errors.As(err, &ue):
		http.Error(w, ue.Message, http.StatusBadRequest)
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		http.Error(w, "err", http.StatusInternalServerError)
	}
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// canonicalBase arma el esquema y host para URLs absolutas
func (s *Server) canonicalBase(r *http.Request) string {
	host := r.Header.Get("X-Forwarded-Host")
	if host == "" {
		host = r.Host
	}
	if host == "" {
		return s.baseURL
	}
	scheme := r.Header.Get("X-Forwarded-Proto")
	if scheme == "" {
		if r.TLS != nil {
			scheme = "https"
		} else {
			scheme = "http"
		}
	}
	return scheme + "://" + host
}

func (s *Server) render(w http.ResponseWriter, name string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	if _, ok := data["Year"]; !ok {
		data["Year"] = time.Now().Year()
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		log.Error().Err(err).Str("tpl", name).Msg("render")
		http.Error(w, "tpl", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type cartPayload struct {
	ID string `json:"id"`
}

func (s *Server) readCart(r *http.Request) cartPayload {
	c, err := r.Cookie(cartCookie)
	if err != nil {
		return cartPayload{}
	}
	parts := strings.SplitN(c.Value, ".", 2)
	if len(parts) != 2 {
		return cartPayload{}
	}
	sig, _ := base64.RawURLEncoding.DecodeString(parts[0])
	payload, _ := base64.RawURLEncoding.DecodeString(parts[1])
	h := hmac.New(sha256.New, s.secret)
	h.Write(payload)
	if !hmac.Equal(sig, h.Sum(nil)) {
		return cartPayload{}
	}
	var cp cartPayload
	_ = json.Unmarshal(payload, &cp)
	return cp
}

func (s *Server) writeCart(w http.ResponseWriter, cp cartPayload) {
	b, _ := json.Marshal(cp)
	h := hmac.New(sha256.New, s.secret)
	h.Write(b)
	sig := base64.RawURLEncoding.EncodeToString(h.Sum(nil))
	val := sig + "." + base64.RawURLEncoding.EncodeToString(b)
	http.SetCookie(w, &http.Cookie{Name: cartCookie, Value: val, Path: "/", MaxAge: 60 * 60 * 24 * 14, HttpOnly: true, SameSite: http.SameSiteLaxMode})
}
