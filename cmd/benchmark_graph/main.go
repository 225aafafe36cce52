package main

import (
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/delaneyj/depwatch/observer"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
)

type graphConfig struct {
	name           string  // unique label of the run
	width          int     // nodes per layer
	totalLayers    int     // depth of the graph, sources included
	staticFraction float64 // fraction of nodes that always read all of their sources
	nSources       int     // sources read by each node
	readFraction   float64 // fraction of the last layer read after every write
	iterations     int
}

var graphConfigs = []graphConfig{
	{name: "simple component", width: 10, totalLayers: 5, staticFraction: 1, nSources: 2, readFraction: 0.2, iterations: 600000},
	{name: "dynamic component", width: 10, totalLayers: 10, staticFraction: 0.75, nSources: 6, readFraction: 0.2, iterations: 15000},
	{name: "large web app", width: 1000, totalLayers: 12, staticFraction: 0.95, nSources: 4, readFraction: 1, iterations: 7000},
	{name: "wide dense", width: 1000, totalLayers: 5, staticFraction: 1, nSources: 25, readFraction: 1, iterations: 3000},
	{name: "deep", width: 5, totalLayers: 500, staticFraction: 1, nSources: 3, readFraction: 1, iterations: 500},
	{name: "very dynamic", width: 100, totalLayers: 15, staticFraction: 0.5, nSources: 6, readFraction: 1, iterations: 2000},
}

// node is anything a layer can read from.
type node interface {
	Get() int
}

type graph struct {
	sys     *observer.System
	sources []*observer.Ref[int]
	layers  [][]*observer.Computed[int]
}

func main() {
	log.Print("Starting graph benchmark, please wait...")
	defer log.Print("Finished graph benchmark")

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{
		"test", "size", "nSources", "read%", "static%",
		"nTimes", "time", "evaluations", "updateRate", "title",
	})

	const repeats = 5
	for _, cfg := range graphConfigs {
		log.Printf("Running '%s'", cfg.name)

		best := time.Duration(math.MaxInt64)
		var bestEvals int64
		for i := 0; i < repeats; i++ {
			var evals int64
			g := makeGraph(cfg, &evals)
			start := time.Now()
			sum := runGraph(g, cfg)
			duration := time.Since(start)
			log.Printf("'%s' %d/%d took %v, sum %d", cfg.name, i+1, repeats, duration, sum)
			if duration < best {
				best, bestEvals = duration, evals
			}
		}

		updateRate := float64(bestEvals) / (float64(best) / float64(time.Millisecond))
		table.Append([]string{
			cfg.name,
			fmt.Sprintf("%dx%d", cfg.width, cfg.totalLayers),
			fmt.Sprint(cfg.nSources),
			fmt.Sprint(cfg.readFraction),
			fmt.Sprint(cfg.staticFraction),
			humanize.Comma(int64(cfg.iterations)),
			fmt.Sprint(best),
			humanize.Comma(bestEvals),
			humanize.Comma(int64(updateRate)),
			title(cfg),
		})
	}
	table.Render()
}

func title(cfg graphConfig) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%dx%d %d sources", cfg.width, cfg.totalLayers, cfg.nSources)
	if cfg.staticFraction < 1 {
		sb.WriteString(" dynamic")
	}
	if cfg.readFraction < 1 {
		fmt.Fprintf(&sb, " read %0.2f%%", 100*cfg.readFraction)
	}
	return sb.String()
}

func makeGraph(cfg graphConfig, evals *int64) *graph {
	sys := observer.New(observer.WithErrorHandler(func(err error) {
		log.Panic(err)
	}))
	g := &graph{sys: sys, sources: make([]*observer.Ref[int], cfg.width)}
	prev := make([]node, cfg.width)
	for i := range g.sources {
		g.sources[i] = observer.NewRef(sys, i)
		prev[i] = g.sources[i]
	}

	random := rand.New(rand.NewSource(0))
	for l := 0; l < cfg.totalLayers-1; l++ {
		row := makeRow(sys, prev, cfg, random, evals)
		g.layers = append(g.layers, row)
		prev = make([]node, len(row))
		for i, c := range row {
			prev[i] = c
		}
	}
	return g
}

// makeRow builds one layer over prev. Dynamic nodes skip one of their
// sources depending on the value of the first, so their dependency set
// changes between runs.
func makeRow(sys *observer.System, prev []node, cfg graphConfig, random *rand.Rand, evals *int64) []*observer.Computed[int] {
	row := make([]*observer.Computed[int], len(prev))
	for myDex := range prev {
		mySources := make([]node, 0, cfg.nSources)
		for s := 0; s < cfg.nSources; s++ {
			mySources = append(mySources, prev[(myDex+s)%len(prev)])
		}

		if random.Float64() < cfg.staticFraction {
			row[myDex] = observer.NewComputed(sys, func() int {
				*evals++
				sum := 0
				for _, src := range mySources {
					sum += src.Get()
				}
				return sum
			})
			continue
		}

		first, tail := mySources[0], mySources[1:]
		row[myDex] = observer.NewComputed(sys, func() int {
			*evals++
			sum := first.Get()
			shouldDrop := sum&0x1 > 0
			dropDex := sum % len(tail)
			for i, src := range tail {
				if shouldDrop && i == dropDex {
					continue
				}
				sum += src.Get()
			}
			return sum
		})
	}
	return row
}

// runGraph writes one source per iteration and reads a fixed random subset
// of the leaves after each write. It returns the final sum of those leaves.
func runGraph(g *graph, cfg graphConfig) int {
	random := rand.New(rand.NewSource(0))
	leaves := g.layers[len(g.layers)-1]
	skip := int(math.Round(float64(len(leaves)) * (1 - cfg.readFraction)))
	read := removeRandom(leaves, skip, random)

	for i := 0; i < cfg.iterations; i++ {
		dex := i % len(g.sources)
		g.sources[dex].Set(i + dex)
		for _, leaf := range read {
			leaf.Get()
		}
	}

	sum := 0
	for _, leaf := range read {
		sum += leaf.Get()
	}
	return sum
}

func removeRandom[T any](src []T, n int, random *rand.Rand) []T {
	out := make([]T, len(src))
	copy(out, src)
	for i := 0; i < n; i++ {
		dex := random.Intn(len(out))
		out[dex] = out[len(out)-1]
		out = out[:len(out)-1]
	}
	return out
}
