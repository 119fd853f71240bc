package entry

import (
	"encoding/json"
	"errors"
	"testing"

	"valkiria-backend-go/internal/models"
)

func testConfig() models.Configuration {
	return models.Configuration{
		Sedes: []models.Sede{{ID: "A", Name: "North"}, {ID: "B", Name: "South"}},
		Modelos: []models.Modelo{
			{ID: "m1", Name: "Ana", SedeID: "A"},
			{ID: "m2", Name: "Bea", SedeID: "B"},
			{ID: "m3", Name: "Cris", SedeID: "B"},
		},
		Plataformas: []models.Plataforma{
			{ID: "p1", Name: "Web", SedeID: "A"},
			{ID: "p2", Name: "App", SedeID: "B"},
		},
	}
}

func TestSelectSedeResetsDependents(t *testing.T) {
	cfg := testConfig()
	var sel Selection
	sel.SelectSede("A")
	sel.SelectModelo("m1")
	sel.SelectPlataforma("p1")

	sel.SelectSede("B")
	if sel.ModeloID != "" || sel.PlataformaID != "" {
		t.Fatalf("dependent choices not reset: %+v", sel)
	}
	opts := sel.Options(cfg)
	if len(opts.Modelos) != 2 || len(opts.Plataformas) != 1 {
		t.Fatalf("unexpected options %+v", opts)
	}
	for _, modelo := range opts.Modelos {
		if modelo.SedeID != "B" {
			t.Errorf("modelo %s belongs to %s", modelo.ID, modelo.SedeID)
		}
	}
	for _, plataforma := range opts.Plataformas {
		if plataforma.SedeID != "B" {
			t.Errorf("plataforma %s belongs to %s", plataforma.ID, plataforma.SedeID)
		}
	}
}

func TestSelectSameSedeKeepsDependents(t *testing.T) {
	sel := Selection{SedeID: "A", ModeloID: "m1", PlataformaID: "p1"}
	sel.SelectSede("A")
	if sel.ModeloID != "m1" || sel.PlataformaID != "p1" {
		t.Fatalf("reselecting the same sede cleared choices: %+v", sel)
	}
}

func TestOptionsWithoutSede(t *testing.T) {
	opts := Selection{}.Options(testConfig())
	if len(opts.Sedes) != 2 || len(opts.Modelos) != 0 || len(opts.Plataformas) != 0 {
		t.Fatalf("unexpected options %+v", opts)
	}
}

func TestFormCheckAgainstCascade(t *testing.T) {
	tests := []struct {
		name string
		form Form
		want map[string]string
	}{
		{"matching sede", Form{SedeID: "B", ModeloID: "m3", PlataformaID: "p2"}, nil},
		{"modelo from other sede", Form{SedeID: "A", ModeloID: "m2", PlataformaID: "p1"}, map[string]string{"modeloId": "sede"}},
		{"plataforma from other sede", Form{SedeID: "B", ModeloID: "m2", PlataformaID: "p1"}, map[string]string{"plataformaId": "sede"}},
		{"unknown sede", Form{SedeID: "Z", ModeloID: "m1", PlataformaID: "p1"}, map[string]string{"sedeId": "exists", "modeloId": "sede", "plataformaId": "sede"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := tt.form
			form.Date = "2024-01-15"
			err := form.CheckAgainst(testConfig())
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error %v", err)
				}
				return
			}
			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if len(verr.Fields) != len(tt.want) {
				t.Fatalf("fields = %v, want %v", verr.Fields, tt.want)
			}
			for field, tag := range tt.want {
				if verr.Fields[field] != tag {
					t.Errorf("fields[%s] = %q, want %q", field, verr.Fields[field], tag)
				}
			}
		})
	}
}

func TestFormValidateMissingField(t *testing.T) {
	form := Form{Date: "2024-01-15", SedeID: "s1", ModeloID: "m1", PlataformaID: "  "}
	err := form.Validate()
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Fields["plataformaId"] != "required" || len(verr.Fields) != 1 {
		t.Fatalf("unexpected fields %v", verr.Fields)
	}
}

func TestFormValidateDate(t *testing.T) {
	form := Form{Date: "15/01/2024", SedeID: "s1", ModeloID: "m1", PlataformaID: "p1"}
	var verr ValidationError
	if err := form.Validate(); !errors.As(err, &verr) || verr.Fields["date"] != "datetime" {
		t.Fatalf("expected datetime failure, got %v", err)
	}
}

func TestFormNewLogCoercesNumbers(t *testing.T) {
	var form Form
	body := `{"date":"2024-01-15","sedeId":"s1","modeloId":"m1","plataformaId":"p1","horasConexion":"2.5","totalTokens":100}`
	if err := json.Unmarshal([]byte(body), &form); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := form.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	got := form.NewLog()
	if got.HorasConexion != 2.5 || got.TotalTokens != 100 {
		t.Fatalf("unexpected numbers %+v", got)
	}

	blank := Form{HorasConexion: "", TotalTokens: "abc"}.NewLog()
	if blank.HorasConexion != 0 || blank.TotalTokens != 0 {
		t.Fatalf("blank numbers should be 0: %+v", blank)
	}
}

func TestParseNumberOrZero(t *testing.T) {
	cases := map[string]float64{
		"":     0,
		"1.25": 1.25,
		" 3 ":  3,
		"NaN":  0,
		"-4":   0,
		"2,5":  0,
		"1e2":  100,
	}
	for in, want := range cases {
		if got := ParseNumberOrZero(in); got != want {
			t.Errorf("ParseNumberOrZero(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParentFormValidate(t *testing.T) {
	sede := ParentForm{Name: " North "}
	if err := sede.Validate(models.KindSede); err != nil || sede.Name != "North" {
		t.Fatalf("sede form: %v %+v", err, sede)
	}
	modelo := ParentForm{Name: "Ana"}
	if err := modelo.Validate(models.KindModelo); err == nil {
		t.Fatal("modelo without sede should fail")
	}
	empty := ParentForm{Name: "   "}
	if err := empty.Validate(models.KindSede); err == nil {
		t.Fatal("blank name should fail")
	}
}
