package textnorm

import "testing"

func TestText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "whitespace only", input: "   \t ", want: ""},
		{name: "accents", input: "  Vehículo Eléctrico ", want: "vehiculo electrico"},
		{name: "enye", input: "Año", want: "ano"},
		{name: "ordinal indicator", input: "Nº Chasis", want: "no chasis"},
		{name: "inner whitespace", input: "Tipo   de\tVehículo", want: "tipo de vehiculo"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Text(tc.input); got != tc.want {
				t.Fatalf("Text(%q): want %q, got %q", tc.input, tc.want, got)
			}
		})
	}
}

func TestKey(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"Código Interno":     "codigo-interno",
		"Nro. Chasis":        "nro-chasis",
		"nro chasis":         "nro-chasis",
		"Cía. Seguros":       "cia-seguros",
		"Vto VTV":            "vto-vtv",
		"Tipo de Vehículo":   "tipo-de-vehiculo",
		"Odómetro":           "odometro",
		" Cons. Promedio ":   "cons-promedio",
		"--":                 "",
		"Nombre del Titular": "nombre-del-titular",
	}
	for input, want := range tests {
		if got := Key(input); got != want {
			t.Fatalf("Key(%q): want %q, got %q", input, want, got)
		}
	}
}

func TestPresentationTransforms(t *testing.T) {
	t.Parallel()

	if got := Title("  FORD   ranger "); got != "Ford Ranger" {
		t.Fatalf("unexpected title case: %q", got)
	}
	if got := Upper(" abc 123 "); got != "ABC 123" {
		t.Fatalf("unexpected upper case: %q", got)
	}
	if got := CapitalizeFirst("  cambio de aceite ABS "); got != "Cambio de aceite ABS" {
		t.Fatalf("unexpected capitalization: %q", got)
	}
	if got := CapitalizeFirst("123 km"); got != "123 km" {
		t.Fatalf("unexpected capitalization with leading digits: %q", got)
	}
}
