package cmd

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"

	"github.com/spiffcs/eipboard/internal/log"
)

// profiles starts the profiles requested on the command line. Empty paths
// are skipped. The returned stop function flushes everything that started.
func profiles(opts *Options) (stop func(), err error) {
	var stops []func()
	unwind := func() {
		for i := len(stops) - 1; i >= 0; i-- {
			stops[i]()
		}
	}
	stop = func() {
		unwind()
		if opts.MemProfile != "" {
			writeHeapProfile(opts.MemProfile)
		}
	}

	if opts.CPUProfile != "" {
		f, err := os.Create(opts.CPUProfile)
		if err != nil {
			return nil, fmt.Errorf("could not create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			closeProfile(f)
			return nil, fmt.Errorf("could not start CPU profile: %w", err)
		}
		stops = append(stops, func() {
			pprof.StopCPUProfile()
			closeProfile(f)
		})
	}

	if opts.Trace != "" {
		f, err := os.Create(opts.Trace)
		if err != nil {
			unwind()
			return nil, fmt.Errorf("could not create trace: %w", err)
		}
		if err := trace.Start(f); err != nil {
			closeProfile(f)
			unwind()
			return nil, fmt.Errorf("could not start trace: %w", err)
		}
		stops = append(stops, func() {
			trace.Stop()
			closeProfile(f)
		})
	}

	return stop, nil
}

func writeHeapProfile(path string) {
	f, err := os.Create(path)
	if err != nil {
		log.Warn("could not create memory profile", "path", path, "error", err)
		return
	}
	defer closeProfile(f)

	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		log.Warn("could not write memory profile", "path", path, "error", err)
	}
}

func closeProfile(f *os.File) {
	if err := f.Close(); err != nil {
		log.Warn("could not close profile", "path", f.Name(), "error", err)
	}
}
