package models

// Placeholder shown for a log whose parent row no longer exists.
const MissingName = "N/A"

type Sede struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Modelo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	SedeID string `json:"sedeId"`
}

type Plataforma struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	SedeID string `json:"sedeId"`
}

// AttendanceLog is one recorded work session. The three names are a
// read-time projection of the parent rows and are never written back.
type AttendanceLog struct {
	ID             string  `json:"id"`
	Date           string  `json:"date"`
	SedeID         string  `json:"sedeId"`
	SedeName       string  `json:"sedeName"`
	ModeloID       string  `json:"modeloId"`
	ModeloName     string  `json:"modeloName"`
	PlataformaID   string  `json:"plataformaId"`
	PlataformaName string  `json:"plataformaName"`
	HorasConexion  float64 `json:"horasConexion"`
	TotalTokens    int64   `json:"totalTokens"`
}

// NewAttendanceLog carries the writable columns of an attendance log.
type NewAttendanceLog struct {
	Date          string
	SedeID        string
	ModeloID      string
	PlataformaID  string
	HorasConexion float64
	TotalTokens   int64
}

type Configuration struct {
	Sedes       []Sede       `json:"sedes"`
	Modelos     []Modelo     `json:"modelos"`
	Plataformas []Plataforma `json:"plataformas"`
}

func EmptyConfiguration() Configuration {
	return Configuration{Sedes: []Sede{}, Modelos: []Modelo{}, Plataformas: []Plataforma{}}
}

// ParentKind names one of the three configuration tables.
type ParentKind string

const (
	KindSede       ParentKind = "sedes"
	KindModelo     ParentKind = "modelos"
	KindPlataforma ParentKind = "plataformas"
)

func (k ParentKind) Valid() bool {
	switch k {
	case KindSede, KindModelo, KindPlataforma:
		return true
	}
	return false
}

// NeedsSede reports whether rows of this kind belong to a sede.
func (k ParentKind) NeedsSede() bool {
	return k == KindModelo || k == KindPlataforma
}

func (c Configuration) SedeName(id string) (string, bool) {
	for _, sede := range c.Sedes {
		if sede.ID == id {
			return sede.Name, true
		}
	}
	return "", false
}

func (c Configuration) ModeloName(id string) (string, bool) {
	for _, modelo := range c.Modelos {
		if modelo.ID == id {
			return modelo.Name, true
		}
	}
	return "", false
}

func (c Configuration) PlataformaName(id string) (string, bool) {
	for _, plataforma := range c.Plataformas {
		if plataforma.ID == id {
			return plataforma.Name, true
		}
	}
	return "", false
}
