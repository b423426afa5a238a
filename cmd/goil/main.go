package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"goil/compiler"
	"goil/il"
	"goil/rle"
	"goil/vm"
)

const (
	exitIO      = 1 // file or allocation failure
	exitProgram = 2 // compile or verify failure
)

func fail(code int, err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(code)
}

func main() {
	rootCmd := &cobra.Command{
		Use:          "goil",
		Short:        "Soft PLC toolchain — compile and execute IL programs",
		SilenceUsage: true,
	}

	// compile command
	var output string

	compileCmd := &cobra.Command{
		Use:   "compile <program.il>",
		Short: "Compile IL source into a framed binary program",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			src, err := os.ReadFile(args[0])
			if err != nil {
				fail(exitIO, err)
			}
			bin, warnings, err := compiler.Compile(src)
			for _, w := range warnings {
				fmt.Fprintln(os.Stderr, w)
			}
			if err != nil {
				fail(exitProgram, err)
			}
			out := output
			if out == "" {
				out = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".bin"
			}
			if err := os.WriteFile(out, bin, 0o644); err != nil {
				fail(exitIO, err)
			}
			fmt.Printf("%s: %d bytes, %d warnings\n", out, len(bin), len(warnings))
		},
	}
	compileCmd.Flags().StringVarP(&output, "output", "o", "", "Output file path (default: source with .bin)")

	// run command
	var inputs string
	var ticks int
	var scans int
	var snapshot string

	runCmd := &cobra.Command{
		Use:   "run <program.bin>",
		Short: "Load a compiled program and run scan cycles",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			bin, err := os.ReadFile(args[0])
			if err != nil {
				fail(exitIO, err)
			}
			v, err := vm.New(bin)
			if err != nil {
				fail(exitProgram, err)
			}
			if inputs != "" {
				in, err := parseHexBytes(inputs)
				if err != nil {
					fail(exitProgram, err)
				}
				v.SetInputs(in)
			}
			for i := 0; i < scans; i++ {
				v.Tick(uint32(ticks))
				if err := v.Scan(); err != nil {
					fail(exitProgram, err)
				}
			}
			fmt.Printf("Q: % x\n", v.Outputs())
			fmt.Printf("M: % x\n", v.Memories())
			if snapshot != "" {
				snap := rle.EncodeZ(append(v.Outputs(), v.Memories()...))
				if err := os.WriteFile(snapshot, snap, 0o644); err != nil {
					fail(exitIO, err)
				}
				fmt.Printf("snapshot: %s (%d bytes)\n", snapshot, len(snap))
			}
		},
	}
	runCmd.Flags().StringVar(&inputs, "inputs", "", "Input bank as hex bytes, e.g. \"0f 00\"")
	runCmd.Flags().IntVar(&ticks, "ticks", 0, "Ticks to advance before each scan")
	runCmd.Flags().IntVar(&scans, "scans", 1, "Number of scan cycles to run")
	runCmd.Flags().StringVar(&snapshot, "snapshot", "", "Write a compressed Q+M snapshot to this file")

	// dump command
	dumpCmd := &cobra.Command{
		Use:   "dump <program.bin>",
		Short: "Verify a binary program and print its listing",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			bin, err := os.ReadFile(args[0])
			if err != nil {
				fail(exitIO, err)
			}
			if err := il.Verify(bin); err != nil {
				fail(exitProgram, err)
			}
			listing, err := il.Disassemble(bin)
			if err != nil {
				fail(exitProgram, err)
			}
			fmt.Print(listing)
			fmt.Printf("%d bytes, checksum ok\n", il.ProgramSize(bin))
		},
	}

	// debug command
	var debugInputs string

	debugCmd := &cobra.Command{
		Use:   "debug <program.bin>",
		Short: "Step a compiled program in an interactive TUI",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			bin, err := os.ReadFile(args[0])
			if err != nil {
				fail(exitIO, err)
			}
			v, err := vm.New(bin)
			if err != nil {
				fail(exitProgram, err)
			}
			if debugInputs != "" {
				in, err := parseHexBytes(debugInputs)
				if err != nil {
					fail(exitProgram, err)
				}
				v.SetInputs(in)
			}
			if err := v.Debug(); err != nil {
				fail(exitProgram, err)
			}
		},
	}
	debugCmd.Flags().StringVar(&debugInputs, "inputs", "", "Input bank as hex bytes")

	rootCmd.AddCommand(compileCmd, runCmd, dumpCmd, debugCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitProgram)
	}
}

// parseHexBytes reads whitespace-separated hex bytes, the same shape the
// run command prints.
func parseHexBytes(s string) ([]byte, error) {
	var out []byte
	for _, f := range strings.Fields(s) {
		b, err := strconv.ParseUint(f, 16, 8)
		if err != nil {
			return nil, fmt.Errorf("bad input byte %q: %w", f, err)
		}
		out = append(out, byte(b))
	}
	return out, nil
}
