package universe

import (
	"math/rand"
	"testing"
)

const benchSide = 256

func benchOptions(rule ColonyRule) *Options {
	o := DefaultUniverseOptions
	o.Side = benchSide
	o.SeedProbability = 0.2
	o.MaxColonyHeight = 8
	o.ColonyRule = rule
	o.MaxSteps = 1 << 20
	o.Seed = 7
	return &o
}

//benchGenerations times single generations, the plate is reseeded every 50 of them
func benchGenerations(b *testing.B, engine string, rule ColonyRule) {
	stateCh := make(chan Status, 10)
	u, err := Engines[engine](benchOptions(rule), stateCh)
	if err != nil {
		b.Fatal(err)
	}
	defer u.Close()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if i%50 == 0 {
			b.StopTimer()
			u.SettleWithRandomData()
			b.StartTimer()
		}
		u.Step()
		for st := range stateCh {
			if st.RunningMode == RunningStateManual {
				break
			}
		}
	}
}

func Benchmark_Generation(b *testing.B) {
	for _, rule := range []ColonyRule{ColonyRuleThreshold, ColonyRuleRelative} {
		for _, e := range EngineNames() {
			b.Run(rule.String()+"/"+e, func(b *testing.B) {
				benchGenerations(b, e, rule)
			})
		}
	}
}

func Benchmark_Run(b *testing.B) {
	for _, e := range EngineNames() {
		b.Run(e, func(b *testing.B) {
			o := benchOptions(ColonyRuleRelative)
			o.MaxSteps = 25
			stateCh := make(chan Status, 10)
			u, err := Engines[e](o, stateCh)
			if err != nil {
				b.Fatal(err)
			}
			defer u.Close()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				u.SettleWithRandomData()
				u.Run()
				for st := range stateCh {
					if st.RunningMode == RunningStateFinished {
						break
					}
				}
			}
		})
	}
}

func Benchmark_RulesNext(b *testing.B) {
	rnd := rand.New(rand.NewSource(1))
	cases := make([]Neighbors, 1024)
	for i := range cases {
		for d := range cases[i] {
			cases[i][d] = uint16(rnd.Intn(4))
		}
	}
	rules := Rules{MaxColonyHeight: 8, Colony: ColonyRuleRelative}
	b.ResetTimer()
	var sink uint16
	for i := 0; i < b.N; i++ {
		n := &cases[i%len(cases)]
		sink += rules.Next(uint16(i%3), n)
	}
	_ = sink
}

func Benchmark_Histogram(b *testing.B) {
	rnd := rand.New(rand.NewSource(1))
	values := make([]float64, 10000)
	for i := range values {
		values[i] = float64(rnd.Intn(16))
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Histogram(values, DefHistogramBins)
	}
}
