package integrators

import (
	"testing"

	"github.com/san-kum/iterlab/internal/dynamo"
)

func decay(args ...float64) float64 { return -args[1] }

func benchmarkStep(b *testing.B, m dynamo.Method) {
	x, err := m.ChangeFormat(odeInput(0, 1, 0.001))
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = m.Step(decay, x)
	}
}

func BenchmarkEuler(b *testing.B) {
	benchmarkStep(b, NewEuler("euler", nil))
}

func BenchmarkRK4(b *testing.B) {
	benchmarkStep(b, NewRK4("rk4", nil))
}
