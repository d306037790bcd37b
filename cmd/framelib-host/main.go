// Command framelib-host loads a YAML graph patch and runs it against a
// live portaudio stream, optionally dropping into an interactive console
// for listing, inspecting and resetting nodes while it runs.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	framelib "github.com/Pezz89/FrameLib"
	"github.com/Pezz89/FrameLib/host"
	"github.com/Pezz89/FrameLib/operators"
)

func main() {
	patchPath := pflag.StringP("patch", "p", "", "path to a YAML graph patch")
	vecSize := pflag.IntP("vector-size", "v", 512, "block size in samples")
	workers := pflag.IntP("workers", "w", 0, "number of background worker threads")
	interactive := pflag.BoolP("interactive", "i", false, "drop into an interactive console once streaming")
	logDir := pflag.String("log-dir", "", "directory for a daily-rotated log file; empty disables file logging")
	pflag.Parse()

	logger := framelib.NewLogger(os.Stderr)
	if *logDir != "" {
		f, err := framelib.DailyLogFile(*logDir, "framelib-host-%Y%m%d.log")
		if err != nil {
			logger.Fatalf("opening log file: %v", err)
		}
		defer f.Close()
		logger = framelib.NewLogger(f)
	}

	if *patchPath == "" {
		fmt.Fprintln(os.Stderr, "framelib-host: --patch (-p) is required")
		os.Exit(2)
	}

	data, err := os.ReadFile(*patchPath)
	if err != nil {
		logger.Fatalf("reading patch: %v", err)
	}
	patch, err := framelib.ParsePatch(data)
	if err != nil {
		logger.Fatalf("parsing patch: %v", err)
	}

	graph := framelib.NewGraph(framelib.NewPoolAllocator())
	nodes, err := patch.Build(graph, registry())
	if err != nil {
		logger.Fatalf("building graph: %v", err)
	}
	logger.Infof("built graph with %d nodes", len(nodes))

	driver := framelib.NewBlockDriver(graph, *workers)
	defer driver.Close()

	h, err := host.NewPortaudioHost(driver, 2, 2, *vecSize)
	if err != nil {
		logger.Fatalf("opening audio device: %v", err)
	}
	defer h.Close()

	if err := h.Start(); err != nil {
		logger.Fatalf("starting audio stream: %v", err)
	}
	logger.Infof("streaming at vector size %d with %d workers", *vecSize, *workers)

	if *interactive {
		runConsole(logger, nodes)
		return
	}
	select {}
}

// registry lists every example operator type a patch file can reference.
func registry() framelib.Registry {
	r := make(framelib.Registry)
	r.Register("constant", func(params map[string]any, alloc framelib.Allocator) (framelib.Kind, any, int, int, int, int, error) {
		return framelib.KindProcessor, operators.NewConstantImpl(floatSliceParam(params, "value")), 0, 1, 0, 0, nil
	})
	r.Register("add", binaryOpFactory(operators.Add))
	r.Register("mul", binaryOpFactory(operators.Mul))
	r.Register("sub", binaryOpFactory(operators.Sub))
	r.Register("interval", func(params map[string]any, alloc framelib.Allocator) (framelib.Kind, any, int, int, int, int, error) {
		period := int64(intParam(params, "period", 0))
		if period <= 0 {
			return framelib.KindScheduler, nil, 0, 1, 0, 0, fmt.Errorf("interval node requires a positive 'period' param")
		}
		return framelib.KindScheduler, operators.NewIntervalImpl(framelib.FromSamples(period)), 0, 1, 0, 0, nil
	})
	r.Register("cumsum", func(params map[string]any, alloc framelib.Allocator) (framelib.Kind, any, int, int, int, int, error) {
		return framelib.KindProcessor, &operators.CumSum{}, 1, 1, 0, 0, nil
	})
	r.Register("smoothmean", func(params map[string]any, alloc framelib.Allocator) (framelib.Kind, any, int, int, int, int, error) {
		coeff := floatParam(params, "coeff", 0.1)
		return framelib.KindProcessor, operators.NewSmoothMeanImpl(coeff), 1, 1, 0, 0, nil
	})
	r.Register("medianfilter", func(params map[string]any, alloc framelib.Allocator) (framelib.Kind, any, int, int, int, int, error) {
		window := intParam(params, "window", 5)
		return framelib.KindProcessor, operators.NewMedianFilterImpl(window), 1, 1, 0, 0, nil
	})
	r.Register("yin", func(params map[string]any, alloc framelib.Allocator) (framelib.Kind, any, int, int, int, int, error) {
		threshold := floatParam(params, "threshold", 0.15)
		return framelib.KindProcessor, operators.NewYINImpl(threshold), 1, 1, 0, 0, nil
	})
	r.Register("circlemean", func(params map[string]any, alloc framelib.Allocator) (framelib.Kind, any, int, int, int, int, error) {
		return framelib.KindProcessor, &operators.CircleMean{}, 1, 1, 0, 0, nil
	})
	r.Register("host_input", func(params map[string]any, alloc framelib.Allocator) (framelib.Kind, any, int, int, int, int, error) {
		ch := intParam(params, "channel", 0)
		return framelib.KindProcessor, operators.NewHostInputImpl(ch), 0, 1, 1, 0, nil
	})
	r.Register("host_output", func(params map[string]any, alloc framelib.Allocator) (framelib.Kind, any, int, int, int, int, error) {
		ch := intParam(params, "channel", 0)
		return framelib.KindOutput, operators.NewHostOutputImpl(ch), 1, 0, 0, 1, nil
	})
	return r
}

func binaryOpFactory(op func(a, b float64) float64) framelib.NodeFactory {
	return func(params map[string]any, alloc framelib.Allocator) (framelib.Kind, any, int, int, int, int, error) {
		return framelib.KindProcessor, operators.NewBinaryOpImpl(op), 2, 1, 0, 0, nil
	}
}

func intParam(params map[string]any, key string, def int) int {
	v, ok := params[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	default:
		return def
	}
}

func floatParam(params map[string]any, key string, def float64) float64 {
	v, ok := params[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return def
	}
}

func floatSliceParam(params map[string]any, key string) []float64 {
	v, ok := params[key]
	if !ok {
		return nil
	}
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]float64, 0, len(raw))
	for _, item := range raw {
		switch n := item.(type) {
		case float64:
			out = append(out, n)
		case int:
			out = append(out, float64(n))
		}
	}
	return out
}
