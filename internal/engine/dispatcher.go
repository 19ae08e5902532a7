// Package engine maps procurement columns to their cleaning rules and runs
// records through them.
package engine

import (
	"errors"
	"fmt"

	"github.com/pnt-cleaner/app/models"
	"github.com/pnt-cleaner/internal/catalog"
	"github.com/pnt-cleaner/internal/fuzzy"
	"github.com/pnt-cleaner/internal/reflist"
	"github.com/pnt-cleaner/internal/resources"
	"github.com/pnt-cleaner/internal/rules"
	"github.com/pnt-cleaner/internal/validators"
)

// Kind names the cleaning rule applied to a column
type Kind string

const (
	KindFiscalYear     Kind = "fiscal_year"
	KindDate           Kind = "date"
	KindProcedureType  Kind = "procedure_type"
	KindPersonName     Kind = "person_name"
	KindCompanyName    Kind = "company_name"
	KindRFC            Kind = "rfc"
	KindStreetType     Kind = "street_type"
	KindStreetName     Kind = "street_name"
	KindExteriorNumber Kind = "exterior_number"
	KindInteriorNumber Kind = "interior_number"
	KindSettlementType Kind = "settlement_type"
	KindAddressText    Kind = "address_text"
	KindMunicipalityID Kind = "municipality_key"
	KindStateID        Kind = "state_key"
	KindStateName      Kind = "state_name"
	KindPostalCode     Kind = "postal_code"
	KindCountry        Kind = "country"
	KindFreeText       Kind = "free_text"
	KindCodedText      Kind = "coded_text"
	KindAmount         Kind = models.RuleAmount
	KindCurrency       Kind = "currency"
	KindPaymentMethod  Kind = "payment_method"
)

// Rule the cleaning rule of one column. Immutable after NewDispatcher.
type Rule struct {
	Column    Column   `json:"column"`
	Kind      Kind     `json:"kind"`
	Resources []string `json:"resources,omitempty"` // lists and catalogs the rule reads
	apply     validators.Func
}

// Apply runs the rule on a raw value
func (r Rule) Apply(v models.RawValue, ref models.FieldRef) (models.Value, error) {
	return r.apply(v, ref)
}

// Dispatcher the column -> rule table
type Dispatcher struct {
	rules   map[Column]Rule
	scorer  *fuzzy.Scorer
	matcher catalog.Matcher
}

// Option customizes NewDispatcher
type Option func(*dispatcherOptions)

type dispatcherOptions struct {
	matcher      catalog.Matcher
	resolverSize int
}

// WithMatcher replaces the catalog matcher
func WithMatcher(m catalog.Matcher) Option {
	return func(o *dispatcherOptions) { o.matcher = m }
}

// WithResolverCache memoizes catalog resolutions in an LRU of the given size
func WithResolverCache(size int) Option {
	return func(o *dispatcherOptions) { o.resolverSize = size }
}

// NewDispatcher compiles every rule against already loaded resources. A
// resource missing from set fails with resources.ErrResourceUnavailable.
func NewDispatcher(cfg *rules.Config, set *resources.Set, opts ...Option) (*Dispatcher, error) {
	if cfg == nil {
		return nil, errors.New("rules config is required")
	}
	if set == nil {
		return nil, errors.New("resource set is required")
	}

	o := dispatcherOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	scorer, err := fuzzy.NewScorer(cfg.SimilarityMethod)
	if err != nil {
		return nil, err
	}

	matcher := o.matcher
	if matcher == nil {
		matcher = catalog.NewResolver(scorer, cfg.Thresholds.Catalog)
	}
	if o.resolverSize > 0 {
		cached, err := catalog.NewCachedResolver(matcher, o.resolverSize)
		if err != nil {
			return nil, err
		}
		matcher = cached
	}

	b := &tableBuilder{
		cfg:     cfg,
		set:     set,
		filter:  reflist.NewFilter(scorer, cfg.Thresholds.Blacklist, cfg.MinListLineLength),
		lists:   make(map[string]*reflist.Blacklist),
		indexes: make(map[string]*catalog.Index),
		rules:   make(map[Column]Rule, len(AllColumns)),
	}
	b.build(scorer, matcher)
	if err := errors.Join(b.errs...); err != nil {
		return nil, fmt.Errorf("build rule table: %w", err)
	}

	return &Dispatcher{rules: b.rules, scorer: scorer, matcher: matcher}, nil
}

// Rule returns the rule of a column
func (d *Dispatcher) Rule(col Column) (Rule, bool) {
	r, ok := d.rules[col]
	return r, ok
}

// Rules every rule in table order
func (d *Dispatcher) Rules() []Rule {
	out := make([]Rule, 0, len(d.rules))
	for _, col := range AllColumns {
		if r, ok := d.rules[col]; ok {
			out = append(out, r)
		}
	}
	return out
}

// MissingColumns ruled columns absent from a source header
func (d *Dispatcher) MissingColumns(header []string) []Column {
	present := make(map[string]struct{}, len(header))
	for _, h := range header {
		present[h] = struct{}{}
	}
	var missing []Column
	for _, col := range AllColumns {
		if _, ok := present[string(col)]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}

// Scorer the similarity scorer the rules were built with
func (d *Dispatcher) Scorer() *fuzzy.Scorer { return d.scorer }

type tableBuilder struct {
	cfg     *rules.Config
	set     *resources.Set
	filter  *reflist.Filter
	lists   map[string]*reflist.Blacklist
	indexes map[string]*catalog.Index
	rules   map[Column]Rule
	errs    []error
}

func (b *tableBuilder) add(kind Kind, fn validators.Func, res []string, cols ...Column) {
	for _, col := range cols {
		b.rules[col] = Rule{Column: col, Kind: kind, Resources: res, apply: fn}
	}
}

// blacklist compiles a list once and reuses it
func (b *tableBuilder) blacklist(name string) *reflist.Blacklist {
	if bl, ok := b.lists[name]; ok {
		return bl
	}
	list, err := b.set.List(name)
	if err != nil {
		b.errs = append(b.errs, err)
	}
	bl := b.filter.Compile(list)
	b.lists[name] = bl
	return bl
}

// index builds a catalog index once and reuses it
func (b *tableBuilder) index(spec rules.CatalogSpec) *catalog.Index {
	if idx, ok := b.indexes[spec.Table]; ok {
		return idx
	}
	cat, err := b.set.Catalog(spec.Table)
	if err != nil {
		b.errs = append(b.errs, err)
	}
	idx := catalog.NewIndex(cat)
	b.indexes[spec.Table] = idx
	return idx
}

func (b *tableBuilder) rawList(name string) []string {
	list, err := b.set.List(name)
	if err != nil {
		b.errs = append(b.errs, err)
	}
	return list.Lines
}

func (b *tableBuilder) personName(scorer *fuzzy.Scorer, listName string) validators.Func {
	cfg := b.cfg
	return validators.PersonName(validators.PersonNameConfig{
		Blacklists:       []*reflist.Blacklist{b.blacklist(cfg.Lists.AddressBlacklist), b.blacklist(listName)},
		CompanySuffixes:  cfg.CompanySuffixes,
		Titles:           cfg.ProfessionalTitles,
		SuffixThreshold:  cfg.Thresholds.CompanySuffix,
		TitleThreshold:   cfg.Thresholds.Title,
		ReviewTokenLimit: cfg.PersonName.ReviewTokenLimit,
		ReviewPrefix:     cfg.PersonName.ReviewPrefix,
		RejectAnyDigit:   cfg.PersonName.RejectAnyDigit,
		Scorer:           scorer,
	})
}

func (b *tableBuilder) build(scorer *fuzzy.Scorer, matcher catalog.Matcher) {
	cfg := b.cfg
	lists := cfg.Lists
	cats := cfg.Catalogs
	address := b.blacklist(lists.AddressBlacklist)

	b.add(KindFiscalYear, validators.FiscalYear(cfg.FiscalYear.Min, cfg.FiscalYear.Max), nil, ColEjercicio)
	b.add(KindDate, validators.Date(), nil,
		ColFechaInicioPeriodo, ColFechaTerminoPeriodo, ColFechaConvocatoria, ColFechaJunta,
		ColFechaContrato, ColFechaInicioVigencia, ColFechaFinVigencia,
		ColFechaInicioEntrega, ColFechaTerminoEntrega, ColFechaValidacion, ColFechaActualizacion)
	b.add(KindProcedureType, validators.CatalogMatch(matcher, b.index(cats.ProcedureType)),
		[]string{cats.ProcedureType.Table}, ColTipoProcedimiento)

	// 1. contractor identity
	b.add(KindPersonName, b.personName(scorer, lists.NameBlacklist),
		[]string{lists.AddressBlacklist, lists.NameBlacklist}, ColNombreContratista, ColNombreAdjudicado)
	b.add(KindPersonName, b.personName(scorer, lists.FirstSurnameBlacklist),
		[]string{lists.AddressBlacklist, lists.FirstSurnameBlacklist}, ColPrimerApellidoContratista, ColPrimerApellidoAdjudicado)
	b.add(KindPersonName, b.personName(scorer, lists.SecondSurnameBlacklist),
		[]string{lists.AddressBlacklist, lists.SecondSurnameBlacklist}, ColSegundoApellidoContratista, ColSegundoApellidoAdjudicado)
	b.add(KindCompanyName, validators.Blacklist(b.blacklist(lists.CompanyBlacklist)),
		[]string{lists.CompanyBlacklist}, ColRazonSocialContratista, ColRazonSocialAdjudicado)
	b.add(KindRFC, validators.RFC(cfg.RFC.InvalidPrefixes), nil, ColRFCContratista, ColRFCAdjudicado)

	// 2. fiscal address
	b.add(KindStreetType, validators.Enumeration(cfg.StreetTypes), nil, ColTipoVialidad)
	b.add(KindStreetName, validators.StreetName(), nil, ColNombreVialidad)
	b.add(KindExteriorNumber, validators.ExteriorNumber(), nil, ColNumeroExterior)
	b.add(KindInteriorNumber, validators.InteriorNumber(cfg.InteriorNumberRejections), nil, ColNumeroInterior, ColExtranjeroNumero)
	b.add(KindSettlementType, validators.Enumeration(cfg.SettlementTypes), nil, ColTipoAsentamiento)
	b.add(KindAddressText, validators.Blacklist(address), []string{lists.AddressBlacklist},
		ColNombreAsentamiento, ColNombreLocalidad, ColNombreMunicipio, ColNumeroContrato)
	b.add(KindMunicipalityID, validators.KeyLookup(address, b.index(cats.Municipality)),
		[]string{lists.AddressBlacklist, cats.Municipality.Table}, ColClaveMunicipio)
	b.add(KindStateID, validators.KeyLookup(address, b.index(cats.State)),
		[]string{lists.AddressBlacklist, cats.State.Table}, ColClaveEntidad)
	b.add(KindStateName, validators.CatalogMatch(matcher, b.index(cats.State)),
		[]string{cats.State.Table}, ColNombreEntidad)
	b.add(KindPostalCode, validators.PostalCode(), nil, ColCodigoPostal)
	b.add(KindCountry, validators.Country(address, cfg.CountryAliases, matcher, b.index(cats.Country)),
		[]string{lists.AddressBlacklist, cats.Country.Table}, ColExtranjeroPais)

	// 3. descriptive text
	b.add(KindFreeText, validators.FreeText(address, ""), []string{lists.AddressBlacklist},
		ColExtranjeroCiudad, ColExtranjeroCalle, ColAreaSolicitante, ColAreaEjecucion,
		ColAreaContratante, ColAreaInformacion, ColOrigenRecursos)
	b.add(KindCodedText, validators.FreeText(address, "-"), []string{lists.AddressBlacklist},
		ColFuenteFinanciamiento, ColTipoFondo, ColMecanismosVigilancia)

	// 4. money
	b.add(KindAmount, validators.Amount(), nil,
		ColMontoSinImpuestos, ColMontoConImpuestos, ColMontoMinimo, ColMontoMaximo, ColMontoGarantias)

	currencies := make([]validators.CurrencyList, 0, len(cfg.Currencies))
	var currencyRes []string
	for _, cur := range cfg.Currencies {
		currencies = append(currencies, validators.CurrencyList{Code: cur.Code, Lines: b.rawList(cur.List)})
		currencyRes = append(currencyRes, cur.List)
	}
	b.add(KindCurrency, validators.Currency(currencies), currencyRes, ColTipoMoneda, ColTipoCambio)

	groups := make([]validators.KeywordGroup, len(cfg.PaymentMethods))
	for i, pm := range cfg.PaymentMethods {
		groups[i] = validators.KeywordGroup{Label: pm.Label, Keywords: pm.Keywords}
	}
	b.add(KindPaymentMethod, validators.PaymentMethod(groups, scorer, cfg.Thresholds.PaymentMethod), nil, ColFormaPago)
}
