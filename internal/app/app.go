package app

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	gormpg "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/whatupfoo/h2-dev-plus/internal/adapters/httpserver"
	"github.com/whatupfoo/h2-dev-plus/internal/adapters/repo/postgres"
	"github.com/whatupfoo/h2-dev-plus/internal/adapters/storefront"
	"github.com/whatupfoo/h2-dev-plus/internal/config"
	"github.com/whatupfoo/h2-dev-plus/internal/domain"
	"github.com/whatupfoo/h2-dev-plus/internal/usecase"
	"github.com/whatupfoo/h2-dev-plus/internal/views"
)

type App struct {
	Config    *config.Config
	DB        *gorm.DB // sólo con CATALOG_BACKEND=postgres
	Tmpl      *template.Template
	Products  *postgres.ProductRepo
	ProductUC *usecase.ProductUC
	CartUC    *usecase.CartUC
}

func NewApp(cfg *config.Config) (*App, error) {
	var (
		sf    domain.Storefront
		carts domain.Carts
		app   = &App{Config: cfg}
	)

	switch cfg.Backend {
	case config.BackendPostgres:
		db, err := OpenDB(cfg.Database)
		if err != nil {
			return nil, err
		}
		repo := postgres.NewProductRepo(db, domain.Shop{PrimaryDomainURL: cfg.BaseURL})
		app.DB = db
		app.Products = repo
		sf = repo
		carts = postgres.NewCartRepo(db)
	default:
		client := storefront.NewClient(cfg.Storefront, storefront.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}))
		log.Info().Str("endpoint", client.Endpoint()).Msg("storefront backend")
		sf = client
		carts = client
	}

	app.ProductUC = &usecase.ProductUC{Storefront: sf}
	app.CartUC = &usecase.CartUC{Carts: carts}

	tmpl, err := NewTemplates(!cfg.IsProduction())
	if err != nil {
		return nil, err
	}
	app.Tmpl = tmpl
	return app, nil
}

// OpenDB abre la conexión de gorm contra postgres.
func OpenDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(gormpg.Open(cfg.ConnString()), &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}
	return db, nil
}

// FuncMap son los helpers disponibles en los templates.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"money": money,
		"img": func(u string) string {
			s := strings.TrimSpace(u)
			if s == "" {
				return s
			}
			if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") && !strings.HasPrefix(s, "/") {
				s = "/" + s
			}
			s = strings.ReplaceAll(s, " ", "%20")
			return s
		},
	}
}

// currencySymbols: sólo USD usa "$" a secas, el resto de los dólares lleva
// prefijo. Las monedas que no están acá salen como "CODE amount".
var currencySymbols = map[string]string{
	"USD": "$",
	"CAD": "CA$",
	"AUD": "A$",
	"NZD": "NZ$",
	"MXN": "MX$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
}

// money formatea sin ceros decimales de más: 120.00 -> $120, 129.5 -> $129.50.
func money(v any) string {
	var m domain.Money
	switch t := v.(type) {
	case domain.Money:
		m = t
	case *domain.Money:
		if t == nil {
			return ""
		}
		m = *t
	default:
		return ""
	}
	abs := m.Amount.Abs()
	amount := abs.StringFixed(2)
	if abs.Equal(abs.Truncate(0)) {
		amount = abs.StringFixed(0)
	}
	amount = groupThousands(amount)
	if m.Amount.IsNegative() {
		amount = "-" + amount
	}
	if sym, ok := currencySymbols[m.CurrencyCode]; ok {
		if strings.HasPrefix(amount, "-") {
			return "-" + sym + amount[1:]
		}
		return sym + amount
	}
	return strings.TrimSpace(m.CurrencyCode + " " + amount)
}

func groupThousands(s string) string {
	intPart, frac, hasFrac := strings.Cut(s, ".")
	n := len(intPart)
	if n <= 3 {
		return s
	}
	rem := n % 3
	if rem == 0 {
		rem = 3
	}
	out := intPart[:rem]
	for i := rem; i < n; i += 3 {
		out += "," + intPart[i:i+3]
	}
	if hasFrac {
		out += "." + frac
	}
	return out
}

// NewTemplates parsea los templates. En desarrollo se leen del disco para no
// recompilar al editarlos.
func NewTemplates(dev bool) (*template.Template, error) {
	t := template.New("layout").Funcs(FuncMap())
	if dev {
		if tmpl, err := t.ParseGlob("internal/views/*.html"); err == nil {
			return tmpl, nil
		}
		t = template.New("layout").Funcs(FuncMap())
	}
	tmpl, err := t.ParseFS(views.FS, "*.html")
	if err != nil {
		return nil, errors.Wrap(err, "parse templates")
	}
	return tmpl, nil
}

func (a *App) HTTPHandler() http.Handler {
	return httpserver.New(a.Tmpl, a.ProductUC, a.CartUC, httpserver.Options{
		SessionKey: a.Config.SessionKey,
		BaseURL:    a.Config.BaseURL,
	})
}

// Migrate crea las tablas del catálogo propio.
func (a *App) Migrate() error {
	if a.DB == nil {
		return errors.New("migrate requiere CATALOG_BACKEND=postgres")
	}
	return postgres.Migrate(a.DB)
}

func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
