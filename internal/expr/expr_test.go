package expr

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileLinear(t *testing.T) {
	fn, err := Compile("x - 5", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, -5.0, fn(0))
	assert.Equal(t, 0.0, fn(5))
	assert.InDelta(t, 2.5, fn(7.5), 1e-12)
}

func TestCompileTwoVariables(t *testing.T) {
	fn, err := Compile("x*y + 1", []string{"x", "y"}, nil)
	require.NoError(t, err)

	assert.InDelta(t, 7.0, fn(2, 3), 1e-12)
}

func TestCompileMathPackage(t *testing.T) {
	fn, err := Compile("math.Sqrt(x) + math.Pow(x, 2)", nil, nil)
	require.NoError(t, err)

	assert.InDelta(t, 2+16.0, fn(4), 1e-9)
}

func TestCompileConstants(t *testing.T) {
	fn, err := Compile("A*x - B", nil, map[string]float64{"A": 2, "B": 0.5})
	require.NoError(t, err)

	assert.InDelta(t, 5.5, fn(3), 1e-12)
}

func TestDivisionByZeroIsNaN(t *testing.T) {
	fn, err := Compile("1 / x", nil, nil)
	require.NoError(t, err)

	assert.True(t, math.IsNaN(fn(0)))
	assert.InDelta(t, 0.5, fn(2), 1e-12)
}

func TestMissingArgumentIsNaN(t *testing.T) {
	fn, err := Compile("x + y", nil, nil)
	require.NoError(t, err)

	assert.True(t, math.IsNaN(fn(1)))
	assert.InDelta(t, 3.0, fn(1, 2), 1e-12)
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		vars   []string
		consts map[string]float64
		err    error
	}{
		{"empty", "  ", nil, nil, ErrSyntax},
		{"syntax", "(x - 5", nil, nil, ErrSyntax},
		{"unknown reference", "x + z", nil, nil, ErrSyntax},
		{"bad variable", "x", []string{"1x"}, nil, ErrIdentifier},
		{"reserved constant", "x", nil, map[string]float64{"out": 1}, ErrIdentifier},
		{"shadowing constant", "x", nil, map[string]float64{"x": 1}, ErrIdentifier},
		{"infinite constant", "x", nil, map[string]float64{"A": math.Inf(1)}, ErrIdentifier},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.src, tt.vars, tt.consts)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestCompilerCaches(t *testing.T) {
	c := NewCompiler()

	_, err := c.Compile("x * 2", nil, nil)
	require.NoError(t, err)
	_, err = c.Compile("x * 2", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Cached())

	_, err = c.Compile("x * 2", nil, map[string]float64{"k": 1})
	require.NoError(t, err)
	assert.Equal(t, 2, c.Cached())
}

func TestProgram(t *testing.T) {
	src := Program("A*x", []string{"x", "y"}, map[string]float64{"A": 1.5})
	assert.Equal(t, "A: 1.5\nx: number\ny: number\nout: A*x\n", src)

	src = Program("math.Exp(x)", []string{"x"}, nil)
	assert.Equal(t, "import \"math\"\n\nx: number\nout: math.Exp(x)\n", src)
}
