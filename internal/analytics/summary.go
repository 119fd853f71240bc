// Package analytics filters attendance logs and derives the dashboard
// totals from them. Everything here is pure.
package analytics

import (
	"math"
	"strconv"

	"valkiria-backend-go/internal/models"
)

// UnknownName is the grouping key for a log without a display name.
const UnknownName = "Desconocida"

type Bucket struct {
	Name  string  `json:"name"`
	Value int64   `json:"value"`
	Share float64 `json:"share"`
}

type Summary struct {
	Count           int      `json:"count"`
	TotalTokens     int64    `json:"totalTokens"`
	TotalHours      float64  `json:"totalHours"`
	Efficiency      float64  `json:"efficiency"`
	EfficiencyLabel string   `json:"efficiencyLabel"`
	TopSede         string   `json:"topSede"`
	TopModel        string   `json:"topModel"`
	BySede          []Bucket `json:"bySede"`
	ByModelo        []Bucket `json:"byModelo"`
	ByPlataforma    []Bucket `json:"byPlataforma"`
}

// Summarize totals logs and groups tokens by sede, modelo and plataforma
// name. Buckets keep first-seen order, which also breaks ties for the top
// sede and modelo.
func Summarize(logs []models.AttendanceLog) Summary {
	var (
		tokens int64
		hours  float64
	)
	bySede := newGrouping()
	byModelo := newGrouping()
	byPlataforma := newGrouping()
	for _, item := range logs {
		itemTokens := item.TotalTokens
		if itemTokens < 0 {
			itemTokens = 0
		}
		tokens += itemTokens
		hours += nonNegative(item.HorasConexion)
		bySede.add(item.SedeName, itemTokens)
		byModelo.add(item.ModeloName, itemTokens)
		byPlataforma.add(item.PlataformaName, itemTokens)
	}

	efficiency := 0.0
	if hours > 0 {
		efficiency = math.Round(float64(tokens)/hours*10) / 10
	}
	return Summary{
		Count:           len(logs),
		TotalTokens:     tokens,
		TotalHours:      hours,
		Efficiency:      efficiency,
		EfficiencyLabel: strconv.FormatFloat(efficiency, 'f', 1, 64),
		TopSede:         bySede.top(),
		TopModel:        byModelo.top(),
		BySede:          bySede.buckets(tokens),
		ByModelo:        byModelo.buckets(tokens),
		ByPlataforma:    byPlataforma.buckets(tokens),
	}
}

// Share is value/total, or 0 when total is 0.
func Share(value, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(value) / float64(total)
}

type grouping struct {
	order []string
	sums  map[string]int64
}

func newGrouping() *grouping {
	return &grouping{sums: map[string]int64{}}
}

func (g *grouping) add(name string, value int64) {
	if name == "" {
		name = UnknownName
	}
	if _, ok := g.sums[name]; !ok {
		g.order = append(g.order, name)
	}
	g.sums[name] += value
}

func (g *grouping) top() string {
	best := models.MissingName
	var bestValue int64 = -1
	for _, name := range g.order {
		if g.sums[name] > bestValue {
			best, bestValue = name, g.sums[name]
		}
	}
	return best
}

func (g *grouping) buckets(total int64) []Bucket {
	items := make([]Bucket, 0, len(g.order))
	for _, name := range g.order {
		items = append(items, Bucket{Name: name, Value: g.sums[name], Share: Share(g.sums[name], total)})
	}
	return items
}

func nonNegative(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return 0
	}
	return value
}
