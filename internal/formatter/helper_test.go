package formatter

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/tidwall/gjson"
)

const helperEnv = "FF_HELPER_MODE"

// TestMain turns the test binary into a fake external tool when
// FF_HELPER_MODE is set.
func TestMain(m *testing.M) {
	if mode := os.Getenv(helperEnv); mode != "" {
		os.Exit(runHelper(mode, os.Args[1:]))
	}
	os.Exit(m.Run())
}

// helperCommand re-executes the test binary as a fake external tool.
func helperCommand(t *testing.T, mode string) []string {
	t.Helper()
	t.Setenv(helperEnv, mode)
	return []string{os.Args[0]}
}

func runHelper(mode string, args []string) int {
	switch mode {
	case "server":
		serveFake()
	case "batch":
		code, _ := strconv.Atoi(os.Getenv("FF_HELPER_EXIT"))
		return code
	case "reflow":
		// echoes its arguments on the first line, then the input
		in, _ := io.ReadAll(os.Stdin)
		fmt.Printf("# args: %s\n%s", strings.Join(args, " "), in)
	case "reflow-fail":
		fmt.Fprintln(os.Stderr, "unparsable import block")
		return 2
	case "clang":
		if len(args) > 0 && args[0] == "-output-replacements-xml" {
			fmt.Println(`<?xml version='1.0'?>`)
			fmt.Println(`<replacements xml:space='preserve' incomplete_format='false'>`)
			if os.Getenv("FF_HELPER_REPLACE") != "" {
				fmt.Println(`<replacement offset='5' length='2'>&#10;</replacement>`)
			}
			fmt.Println(`</replacements>`)
		}
	case "clang-fail":
		fmt.Fprintln(os.Stderr, "Invalid argument")
		return 1
	}
	return 0
}

// serveFake answers code-server requests: "boom" fails, everything else has
// "x=1" rewritten to "x = 1".
func serveFake() {
	sc := bufio.NewScanner(os.Stdin)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		code := gjson.Get(sc.Text(), "code").String()
		resp := map[string]string{"result": strings.ReplaceAll(code, "x=1", "x = 1")}
		if strings.Contains(code, "boom") {
			resp = map[string]string{"error": "boom"}
		}
		b, _ := json.Marshal(resp)
		_, _ = os.Stdout.Write(append(b, '\n'))
	}
	os.Exit(0)
}
