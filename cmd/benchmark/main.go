package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/delaneyj/depwatch/observer"
	"github.com/dustin/go-humanize"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
)

var (
	iters   = flag.Int("iters", 100, "updates per benchmark")
	profile = flag.String("profile", "", "write a CPU profile to this file")
	sync    = flag.Bool("sync", false, "flush synchronously instead of once per update")
)

var (
	ww = []int{1, 10, 100, 1_000}
	hh = []int{1, 10, 100, 1_000}
)

func main() {
	flag.Parse()

	if *profile != "" {
		f, err := os.Create(*profile)
		if err != nil {
			log.Fatal(err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	log.Printf("warming up")
	benchmarkPropagate(false)
	benchmarkPropagate(true)
	benchmarkObjectFanout()
}

func newSystem() *observer.System {
	opts := []observer.Option{
		observer.WithErrorHandler(func(err error) {
			log.Panic(err)
		}),
	}
	if *sync {
		opts = append(opts, observer.WithSync())
	}
	return observer.New(opts...)
}

// benchmarkPropagate measures one write to a source ref feeding w chains of
// h computed values, each chain ending in a watcher.
func benchmarkPropagate(shouldRender bool) {
	tbl := table.NewWriter()
	tbl.SetTitle("Propagate")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max", "callbacks", "digest"})

	for _, w := range ww {
		for _, h := range hh {
			tach := tachymeter.New(&tachymeter.Config{Size: *iters})

			sys := newSystem()
			src := observer.NewRef(sys, 1)
			digest := xxhash.New()
			callbacks := 0
			for i := 0; i < w; i++ {
				last := func() int { return src.Get() }
				for j := 0; j < h; j++ {
					prev := last
					c := observer.NewComputed(sys, func() int {
						return prev() + 1
					})
					last = c.Get
				}

				tail := last
				_, err := sys.NewWatcher(func() (any, error) {
					return tail(), nil
				}, func(value, _ any) error {
					callbacks++
					digest.WriteString(strconv.Itoa(value.(int)))
					return nil
				})
				if err != nil {
					log.Fatal(err)
				}
			}

			for i := 0; i < *iters; i++ {
				start := time.Now()
				src.Set(src.Peek() + 1)
				sys.Drain()
				tach.AddTime(time.Since(start))
			}

			calc := tach.Calc()
			tbl.AppendRows([]table.Row{
				{
					fmt.Sprintf("propagate: %d * %d", w, h),
					calc.Time.Avg,
					calc.Time.Min,
					calc.Time.P75,
					calc.Time.P99,
					calc.Time.Max,
					humanize.Comma(int64(callbacks)),
					fmt.Sprintf("%016x", digest.Sum64()),
				},
			})
		}
	}

	if shouldRender {
		tbl.Render()
	}
}

// benchmarkObjectFanout measures writes to one key of an observed object
// read by n path watchers.
func benchmarkObjectFanout() {
	tbl := table.NewWriter()
	tbl.SetTitle("Object fan-out")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"watchers", "avg", "min", "p75", "p99", "max", "callbacks"})

	for _, n := range []int{1, 10, 100, 1_000, 10_000} {
		tach := tachymeter.New(&tachymeter.Config{Size: *iters})

		sys := newSystem()
		data := observer.NewObject(
			observer.F("user", observer.NewObject(observer.F("visits", 0))),
		)
		host := sys.NewHost(data)
		callbacks := 0
		for i := 0; i < n; i++ {
			if _, err := host.Watch("user.visits", func(_, _ any) error {
				callbacks++
				return nil
			}); err != nil {
				log.Fatal(err)
			}
		}

		user := data.Get("user").(*observer.Object)
		for i := 0; i < *iters; i++ {
			start := time.Now()
			user.Set("visits", i+1)
			sys.Drain()
			tach.AddTime(time.Since(start))
		}
		host.Destroy()

		calc := tach.Calc()
		tbl.AppendRows([]table.Row{
			{
				humanize.Comma(int64(n)),
				calc.Time.Avg,
				calc.Time.Min,
				calc.Time.P75,
				calc.Time.P99,
				calc.Time.Max,
				humanize.Comma(int64(callbacks)),
			},
		})
	}
	tbl.Render()
}
