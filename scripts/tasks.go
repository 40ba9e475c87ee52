package main

import (
	"bufio"
	"os"
	"os/exec"
	"strings"

	"github.com/pterm/pterm"
	"github.com/zintix-labs/hongbao/errs"
)

// runTest 等同 go clean -testcache && go test ./... -cover -count=1 | grep -E '^(ok|FAIL)'
func runTest(args []string) error {
	pterm.Info.Println("running tests")
	if err := exec.Command("go", "clean", "-testcache").Run(); err != nil {
		pterm.Warning.Println(err)
	}
	return stream(append([]string{"test", "./...", "-cover", "-count=1"}, args...), func(line string) {
		switch {
		case strings.HasPrefix(line, "ok"):
			pterm.Success.Println(line)
		case strings.HasPrefix(line, "FAIL"),
			strings.Contains(line, "build failed"),
			strings.Contains(line, "setup failed"):
			pterm.Error.Println(line)
		}
	})
}

func runTestDetail(args []string) error {
	pterm.Info.Println("running tests (detail)")
	if err := exec.Command("go", "clean", "-testcache").Run(); err != nil {
		return errs.Wrap(err, "go clean -testcache")
	}
	return stream(append([]string{"test", "./...", "-v", "-count=1"}, args...), func(line string) {
		switch {
		case strings.Contains(line, "[no test files]"):
		case strings.HasPrefix(line, "ok"):
			pterm.Success.Println(line)
		case strings.HasPrefix(line, "FAIL"):
			pterm.Error.Println(line)
		default:
			pterm.Println(line)
		}
	})
}

// passTo 以 go run 執行指定的 cmd，stdin/stdout 直接接上終端機。
func passTo(pkg string) func(args []string) error {
	return func(args []string) error {
		pterm.Info.Printfln("go run %s %s", pkg, joinArgs(args))
		cmd := exec.Command("go", append([]string{"run", pkg}, args...)...)
		cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
		if err := cmd.Run(); err != nil {
			return errs.Wrap(err, "go run "+pkg)
		}
		return nil
	}
}

// stream 執行 go 子指令，stdout 與 stderr 合併後逐行交給 each。
func stream(goArgs []string, each func(line string)) error {
	cmd := exec.Command("go", goArgs...)
	out, err := cmd.StdoutPipe()
	if err != nil {
		return errs.Wrap(err, "stdout pipe")
	}
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return errs.Wrap(err, "start go "+goArgs[0])
	}
	sc := bufio.NewScanner(out)
	for sc.Scan() {
		each(sc.Text())
	}
	if err := cmd.Wait(); err != nil {
		return errs.Wrap(err, "go "+goArgs[0]+" finished with errors")
	}
	return sc.Err()
}
