package rules

import "fmt"

// Option lists for the categorical fleet columns.
var (
	FuelOptions      = []string{"Nafta", "Diesel", "Gas", "Electrico", "Hibrido"}
	UsageOptions     = []string{"Kilometros", "Horas"}
	StatusOptions    = []string{"Activo", "Inactivo", "En Reparacion", "Baja"}
	CoverageOptions  = []string{"Responsabilidad Civil", "Terceros Completo", "Todo Riesgo"}
	OwnershipOptions = []string{"Propio", "Leasing", "Alquilado", "Comodato"}
)

// CanonicalOptions selects the configurable variants of the fleet mapping.
type CanonicalOptions struct {
	Cutoff   float64
	Year     Kind // KindYear or KindInteger
	Comments Kind // KindCapitalize or KindTitle
}

// Canonical returns the fleet workbook column mapping.
func Canonical(opts CanonicalOptions) ([]Entry, error) {
	if opts.Cutoff == 0 {
		opts.Cutoff = DefaultCutoff
	}
	if opts.Year == "" {
		opts.Year = KindYear
	}
	if opts.Comments == "" {
		opts.Comments = KindCapitalize
	}
	if opts.Year != KindYear && opts.Year != KindInteger {
		return nil, fmt.Errorf("year column rule must be %q or %q, got %q", KindYear, KindInteger, opts.Year)
	}
	if opts.Comments != KindCapitalize && opts.Comments != KindTitle {
		return nil, fmt.Errorf("comments column rule must be %q or %q, got %q", KindCapitalize, KindTitle, opts.Comments)
	}

	categorical := func(options []string) (Rule, error) {
		return NewCategorical(options, opts.Cutoff)
	}
	fuel, err := categorical(FuelOptions)
	if err != nil {
		return nil, err
	}
	usage, err := categorical(UsageOptions)
	if err != nil {
		return nil, err
	}
	status, err := categorical(StatusOptions)
	if err != nil {
		return nil, err
	}
	coverage, err := categorical(CoverageOptions)
	if err != nil {
		return nil, err
	}
	ownership, err := categorical(OwnershipOptions)
	if err != nil {
		return nil, err
	}
	year, err := New(opts.Year, nil, opts.Cutoff)
	if err != nil {
		return nil, err
	}
	comments, err := New(opts.Comments, nil, opts.Cutoff)
	if err != nil {
		return nil, err
	}

	entries := []Entry{
		{Key: "codigo-interno", Rule: Upper{}},
		{Key: "dominio", Rule: DomainCode{}},
		{Key: "marca", Rule: Title{}},
		{Key: "modelo", Rule: Title{}},
		{Key: "tipo-de-vehiculo", Rule: Title{}},
		{Key: "grupo-base", Rule: Title{}},
		{Key: "cia-seguros", Rule: Title{}},
		{Key: "nombre-del-titular", Rule: Title{}},
		{Key: "color", Rule: Title{}},
		{Key: "nro-chasis", Rule: Upper{}},
		{Key: "nro-motor", Rule: Upper{}},
		{Key: "nro-poliza", Rule: Upper{}},
		{Key: "ano", Rule: year},
		{Key: "cons-promedio", Rule: Decimal{Precision: 1}},
		{Key: "combustible", Rule: fuel},
		{Key: "med-uso", Rule: usage},
		{Key: "estado", Rule: status},
		{Key: "tipo-cobertura", Rule: coverage},
		{Key: "titularidad", Rule: ownership},
		{Key: "vto-vtv", Rule: Date{}},
		{Key: "vto-seguro", Rule: Date{}},
		{Key: "vto-patente", Rule: Date{}},
		{Key: "vto-ruta", Rule: Date{}},
		{Key: "vto-matafuego", Rule: Date{}},
		{Key: "vto-licencia", Rule: Date{}},
		{Key: "vto-habilitacion", Rule: Date{}},
		{Key: "vto-*", Rule: Date{}},
		{Key: "comentarios", Rule: comments},
		{Key: "odometro", Rule: Integer{}},
	}
	return entries, nil
}
