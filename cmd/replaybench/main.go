// Command replaybench drives both replay buffer strategies under a matrix
// of subscriber counts and demand patterns, then renders a comparative
// throughput chart as a self-contained HTML file.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/hashicorp/go-multicast-replay/replay"
)

type cli struct {
	Out         string `name:"out" default:"replaybench.html" help:"Output HTML chart path."`
	Values      int    `name:"values" default:"200000" help:"Number of values to publish per run."`
	BufferSize  int    `name:"buffer-size" default:"1024" help:"Buffer capacity (segment size or ring limit)."`
	Subscribers []int  `name:"subscribers" default:"1,8,32,128" sep:"," help:"Comma-separated subscriber counts to benchmark."`
}

type result struct {
	strategy    string
	subscribers int
	throughput  float64 // values/sec, summed across all subscribers' deliveries
}

func main() {
	maxprocs.Set()

	var c cli
	kong.Parse(&c, kong.Name("replaybench"),
		kong.Description("Benchmarks replay buffer throughput across both retention strategies."))

	var results []result
	for _, n := range c.Subscribers {
		results = append(results, runBench("unbounded", c.BufferSize, true, c.Values, n))
		results = append(results, runBench("bounded", c.BufferSize, false, c.Values, n))
	}

	if err := renderChart(c.Out, results); err != nil {
		fmt.Fprintln(os.Stderr, "failed to render chart:", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s\n", c.Out)
}

// drainSubscriber requests unbounded demand up front and counts deliveries,
// closing done once it observes a terminal signal.
type drainSubscriber struct {
	count int64
	done  chan struct{}
}

func newDrainSubscriber() *drainSubscriber { return &drainSubscriber{done: make(chan struct{})} }

func (d *drainSubscriber) OnSubscribe(sub *replay.Subscription[int]) { sub.Request(9223372036854775807) }
func (d *drainSubscriber) OnNext(int)                                { d.count++ }
func (d *drainSubscriber) OnError(error)                             { close(d.done) }
func (d *drainSubscriber) OnComplete()                               { close(d.done) }

func runBench(label string, bufferSize int, unbounded bool, values, subscribers int) result {
	p := replay.New[int](bufferSize, unbounded)

	subs := make([]*drainSubscriber, subscribers)
	for i := range subs {
		subs[i] = newDrainSubscriber()
		p.Subscribe(subs[i])
	}

	start := time.Now()
	for v := 0; v < values; v++ {
		p.OnNext(v)
	}
	p.OnComplete()

	for _, s := range subs {
		<-s.done
	}
	elapsed := time.Since(start).Seconds()

	var total int64
	for _, s := range subs {
		total += s.count
	}
	throughput := float64(total) / elapsed

	return result{strategy: label, subscribers: subscribers, throughput: throughput}
}

func renderChart(path string, results []result) error {
	bySubs := map[int]map[string]float64{}
	var subCounts []int
	seen := map[int]bool{}
	for _, r := range results {
		if !seen[r.subscribers] {
			seen[r.subscribers] = true
			subCounts = append(subCounts, r.subscribers)
		}
		if bySubs[r.subscribers] == nil {
			bySubs[r.subscribers] = map[string]float64{}
		}
		bySubs[r.subscribers][r.strategy] = r.throughput
	}

	var xAxis []string
	for _, n := range subCounts {
		xAxis = append(xAxis, fmt.Sprintf("%d subs", n))
	}

	var unboundedSeries, boundedSeries []opts.LineData
	for _, n := range subCounts {
		unboundedSeries = append(unboundedSeries, opts.LineData{Value: bySubs[n]["unbounded"]})
		boundedSeries = append(boundedSeries, opts.LineData{Value: bySubs[n]["bounded"]})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Replay buffer throughput"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "subscriber count"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "values/sec delivered"}),
	)
	line.SetXAxis(xAxis).
		AddSeries("unbounded (segmented)", unboundedSeries).
		AddSeries("bounded (ring)", boundedSeries)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return line.Render(f)
}
