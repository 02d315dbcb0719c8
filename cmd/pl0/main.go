// Command pl0 compiles and runs PL/0 source code.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dr8co/pl0/compiler"
	"github.com/dr8co/pl0/lexer"
	"github.com/dr8co/pl0/pl0io"
	"github.com/dr8co/pl0/repl"
	"github.com/dr8co/pl0/vm"
)

const version = "0.1.0"

func printUsage() {
	_, _ = fmt.Fprintf(os.Stderr, `PL/0 Compiler v%s

USAGE:
    %s [OPTIONS]

DESCRIPTION:
    pl0 compiles PL/0 source into bytecode for a small stack machine and
    runs it. Without any flags, it starts an interactive REPL.

OPTIONS:
    -f, --file <path>       Compile and run a PL/0 source file
    -c, --compile <path>    Compile a PL/0 source file and print its instructions
    -e, --eval <code>       Compile and run an inline PL/0 program
    -d, --debug             Print compile/run timings in the REPL
    -v, --version           Show version information
    -h, --help              Show this help message

EXAMPLES:
    # Start interactive REPL
    %s

    # Run a script file
    %s -f factorial.pl0

    # Compile only, and list the resulting instructions
    %s -c factorial.pl0

    # Run an inline program
    %s -e "var x; begin x := 1 + 2 * 3; write x end."

`, version, os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0])
}

func main() {
	flag.Usage = printUsage

	fileFlag := flag.String("file", "", "Compile and run a PL/0 source file")
	compileFlag := flag.String("compile", "", "Compile a PL/0 source file and print its instructions")
	evalFlag := flag.String("eval", "", "Compile and run an inline PL/0 program")
	debugFlag := flag.Bool("debug", false, "Print compile/run timings")
	versionFlag := flag.Bool("version", false, "Show version information")

	flag.StringVar(fileFlag, "f", "", "Compile and run a PL/0 source file")
	flag.StringVar(compileFlag, "c", "", "Compile a PL/0 source file and print its instructions")
	flag.StringVar(evalFlag, "e", "", "Compile and run an inline PL/0 program")
	flag.BoolVar(debugFlag, "d", false, "Print compile/run timings")
	flag.BoolVar(versionFlag, "v", false, "Show version information")

	flag.Parse()

	if *versionFlag {
		fmt.Printf("PL/0 Compiler v%s\n", version)
		return
	}

	if *compileFlag != "" {
		os.Exit(listInstructions(*compileFlag))
	}

	if *fileFlag != "" {
		os.Exit(runFile(*fileFlag))
	}

	if *evalFlag != "" {
		os.Exit(runSource(*evalFlag, os.Stdin, os.Stdout))
	}

	fmt.Println("PL/0 REPL. Enter a program, terminated by '.'. Ctrl+D or Ctrl+C to exit.")
	repl.Start(repl.Options{Debug: *debugFlag})
}

// exitCode maps a compile/run error to the code spec.md §6 requires:
// 0 success, 1 for a static (lex/syntax/semantic) error, 2 for a
// runtime fault.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if _, ok := err.(*vm.RuntimeError); ok {
		return 2
	}
	return 1
}

func listInstructions(path string) int {
	content, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reading %s: %s\n", path, err)
		return 1
	}

	l := lexer.New(string(content))
	c := compiler.New(l)
	prog, err := c.Compile()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitCode(err)
	}

	for i, ins := range prog.Instructions {
		fmt.Printf("%4d  %s\n", i, ins)
	}
	return 0
}

func runFile(path string) int {
	content, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reading %s: %s\n", path, err)
		return 1
	}
	return runSource(string(content), os.Stdin, os.Stdout)
}

func runSource(source string, stdin *os.File, stdout *os.File) int {
	l := lexer.New(source)
	c := compiler.New(l)
	prog, err := c.Compile()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitCode(err)
	}

	m := vm.New(prog.Instructions, pl0io.NewLineReader(stdin), pl0io.NewLineWriter(stdout))
	if err := m.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitCode(err)
	}
	return 0
}
