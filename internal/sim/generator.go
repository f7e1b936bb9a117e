package sim

import (
	"github.com/Borislavv/go-ctx-cache/internal/shared/random"
	"math"
	"strconv"
	"strings"
)

// Generator draws request contexts. With skew 1 every value of a dimension is equally likely;
// a higher skew concentrates traffic on the first values, so few contexts serve most requests.
type Generator struct {
	dims Dimensions
	src  *random.Source
	skew float64
	buf  strings.Builder
}

func NewGenerator(dims Dimensions, skew float64, seed int64) *Generator {
	if skew <= 0 {
		skew = 1
	}
	return &Generator{dims: dims, src: random.New(seed), skew: skew}
}

// Next returns a context key: a JSON object of dimension names to values, in dimension order.
func (g *Generator) Next() string {
	g.buf.Reset()
	g.buf.WriteByte('{')
	for i, dim := range g.dims {
		if i > 0 {
			g.buf.WriteByte(',')
		}
		g.buf.WriteString(strconv.Quote(dim.Name))
		g.buf.WriteByte(':')
		g.buf.WriteString(strconv.Quote(dim.Values[g.pick(len(dim.Values))]))
	}
	g.buf.WriteByte('}')
	return g.buf.String()
}

func (g *Generator) pick(n int) int {
	if g.skew == 1 {
		return g.src.IntN(n)
	}
	return min(int(float64(n)*math.Pow(g.src.Float64(), g.skew)), n-1)
}
