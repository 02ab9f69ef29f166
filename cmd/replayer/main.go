package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/satryanta/geofuse/pkg/concurrent"
	"github.com/satryanta/geofuse/pkg/datastructure"
	"github.com/satryanta/geofuse/pkg/fusion"
	"github.com/satryanta/geofuse/pkg/logger"
	"github.com/satryanta/geofuse/pkg/matcher"
	"github.com/satryanta/geofuse/pkg/util"
	"go.uber.org/zap"
)

var (
	fixFile  = flag.String("fixes", "./data/fixes.csv", "csv of fixes: ts,lat,lon,acc,spd,hdg")
	imuFile  = flag.String("imu", "", "csv of inertial samples: ts,ax,ay,az,gx,gy,gz (optional)")
	roadFile = flag.String("roads", "", "road snapshot file (optional)")
	snap     = flag.Bool("snap", false, "enable snap-to-roads")
)

type event struct {
	ts       int64
	fix      *datastructure.Fix
	inertial *datastructure.InertialSample
}

// Replays recorded sensor logs through the fusion engine and prints the
// unified positions as json lines.
func main() {
	flag.Parse()

	log, err := logger.New()
	if err != nil {
		panic(err)
	}

	events, err := readEvents(*fixFile, *imuFile)
	if err != nil {
		panic(err)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].ts < events[j].ts })

	opts := fusion.DefaultOptions()
	opts.EnableSnapToRoads = *snap

	m := matcher.NewMatcher(log, opts.SnapConfidenceThreshold, opts.MaxSnapDistance)
	if *roadFile != "" {
		roads, err := matcher.ReadRoads(*roadFile)
		if err != nil {
			panic(err)
		}
		if _, err := m.LoadRoadSegments(roads); err != nil {
			panic(err)
		}
	}

	engine := fusion.NewEngine(log, opts, m)

	done := make(chan struct{})
	go func() {
		defer close(done)
		enc := json.NewEncoder(os.Stdout)
		for record := range engine.Output() {
			if err := enc.Encode(record); err != nil {
				log.Error("encode failed", zap.Error(err))
				return
			}
		}
	}()

	for _, ev := range events {
		if ev.fix != nil {
			engine.OnFix(*ev.fix)
		} else {
			engine.OnInertial(*ev.inertial)
		}
	}
	engine.Close()
	<-done

	log.Info("replay finished", zap.Int("events", len(events)))
}

// readEvents parses both logs with a worker pool and merges the results.
func readEvents(fixPath, imuPath string) ([]event, error) {
	pool := concurrent.NewWorkerPool[parseJob, *event](4, 1024)
	pool.Start(parseLine)

	go func() {
		defer pool.Close()
		addFile(pool, fixPath, true)
		if imuPath != "" {
			addFile(pool, imuPath, false)
		}
	}()

	collected := make(chan []event, 1)
	go func() {
		var events []event
		for ev := range pool.CollectResults() {
			if ev != nil {
				events = append(events, *ev)
			}
		}
		collected <- events
	}()

	pool.Wait()
	return <-collected, nil
}

type parseJob struct {
	line  string
	isFix bool
}

func addFile(pool *concurrent.WorkerPool[parseJob, *event], path string, isFix bool) {
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot open %s: %v\n", path, err)
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		pool.AddJob(parseJob{line: line, isFix: isFix})
	}
}

func parseLine(job parseJob) *event {
	fields := strings.Split(job.line, ",")
	want := 7
	if job.isFix {
		want = 6
	}
	if len(fields) != want {
		return nil
	}

	vals := make([]float64, len(fields))
	for i, field := range fields {
		v, err := util.StringToFloat64(strings.TrimSpace(field))
		if err != nil {
			return nil
		}
		vals[i] = v
	}

	ts := int64(vals[0])
	if job.isFix {
		f := datastructure.NewFix(ts, vals[1], vals[2], vals[3], vals[4], vals[5])
		return &event{ts: ts, fix: &f}
	}
	s := datastructure.NewInertialSample(ts, vals[1], vals[2], vals[3], vals[4], vals[5], vals[6])
	return &event{ts: ts, inertial: &s}
}
