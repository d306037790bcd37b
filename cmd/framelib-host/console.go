package main

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/pkg/term"

	framelib "github.com/Pezz89/FrameLib"
)

// runConsole drives a line-oriented command console against the running
// graph, reading from /dev/tty in raw mode (or stdin if /dev/tty cannot be
// opened). A command is acted on only once its line ends in a newline.
func runConsole(logger *log.Logger, nodes map[string]*framelib.Node) {
	names := make([]string, 0, len(nodes))
	for name := range nodes {
		names = append(names, name)
	}
	sort.Strings(names)

	t, err := term.Open("/dev/tty")
	if err != nil {
		logger.Warnf("console: opening /dev/tty: %v; falling back to stdin", err)
		runConsoleOn(bufio.NewScanner(os.Stdin), logger, nodes, names)
		return
	}
	if err := term.RawMode(t); err != nil {
		logger.Warnf("console: entering raw mode: %v", err)
	}
	defer func() {
		t.Restore()
		t.Close()
	}()

	fmt.Fprintln(t, "framelib-host console: list, status <node>, reset <node>, reset, quit")
	runConsoleOn(bufio.NewScanner(t), logger, nodes, names)
}

func runConsoleOn(scanner *bufio.Scanner, logger *log.Logger, nodes map[string]*framelib.Node, names []string) {
	scanner.Split(bufio.ScanLines)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "quit", "q", "exit":
			return
		case "list":
			for _, name := range names {
				fmt.Println(name)
			}
		case "status":
			if len(fields) < 2 {
				fmt.Println("usage: status <node>")
				continue
			}
			n, ok := nodes[fields[1]]
			if !ok {
				fmt.Printf("unknown node %q\n", fields[1])
				continue
			}
			fmt.Printf("%s: ft=%s vt=%s\n", fields[1], n.FrameTime(), n.ValidTime())
		case "reset":
			if len(fields) < 2 {
				for _, n := range nodes {
					n.Reset()
				}
				logger.Info("reset every node")
				continue
			}
			n, ok := nodes[fields[1]]
			if !ok {
				fmt.Printf("unknown node %q\n", fields[1])
				continue
			}
			n.Reset()
			logger.Infof("reset node %q", fields[1])
		default:
			fmt.Printf("unrecognized command %q\n", fields[0])
		}
	}
}
