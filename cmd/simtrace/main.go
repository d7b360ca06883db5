// Command simtrace reads a newline-delimited JSON event log emitted by the
// event sink and reprints it filtered by category — the simulator's
// analogue of the teacher's cmd/debug-raw standalone frame decoder.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: simtrace <log-file> [category...]")
		os.Exit(1)
	}

	path := os.Args[1]
	wanted := make(map[string]bool, len(os.Args)-2)
	for _, c := range os.Args[2:] {
		wanted[c] = true
	}

	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "opening %s: %v\n", path, err)
		os.Exit(1)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	total, shown := 0, 0
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		total++

		var event map[string]any
		if err := json.Unmarshal(line, &event); err != nil {
			fmt.Fprintf(os.Stderr, "line %d: decode error: %v\n", total, err)
			continue
		}

		cat, _ := event["category"].(string)
		if len(wanted) > 0 && !wanted[cat] {
			continue
		}
		shown++

		fmt.Printf("[%v] %-5s %v", event["ts"], cat, event["msg"])
		for k, v := range event {
			switch k {
			case "ts", "category", "msg", "level", "logger":
				continue
			}
			fmt.Printf(" %s=%v", k, v)
		}
		fmt.Println()
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "scanning %s: %v\n", path, err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "total events: %d, shown: %d\n", total, shown)
}
