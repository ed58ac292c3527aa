package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"strings"

	"github.com/andreyvit/diff"
	"github.com/pkg/profile"

	"github.com/DavidHVernon/billion-row/internal/brc"
	"github.com/DavidHVernon/billion-row/internal/measurements"
	"github.com/DavidHVernon/billion-row/internal/stream"
)

func main() {
	profileMode := flag.String("profile", "", "write a cpu or mem profile to the current directory")
	parserFuncName := flag.String("funcName", "process", "function to call: process, process-mmap, stream, baseline")
	inputFile := flag.String("i", "data/10m.txt", "input file")
	nworkers := flag.Int("n", runtime.NumCPU(), "number of workers for parallel funcs")
	generate := flag.Int("generate", 0, "write that many rows to the input file and exit")
	seed := flag.Uint64("seed", 1, "seed for -generate")
	expectFile := flag.String("expect", "", "compare the output with this file")
	flag.Parse()

	switch *profileMode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
	default:
		log.Fatalf("unknown profile: %s", *profileMode)
	}

	if *generate > 0 {
		if err := measurements.GenerateFile(*inputFile, *generate, *seed); err != nil {
			log.Fatal(err)
		}
		return
	}

	out, err := runFunc(*parserFuncName, *inputFile, *nworkers)
	if err != nil {
		log.Fatalf("%s: %s", *parserFuncName, err)
	}
	fmt.Println(out)

	if *expectFile != "" {
		expected, err := os.ReadFile(*expectFile)
		if err != nil {
			log.Fatal(err)
		}
		if strings.TrimSpace(string(expected)) != out {
			fmt.Println(diff.LineDiff(
				diff.TrimLinesInString(reportLines(string(expected))),
				diff.TrimLinesInString(reportLines(out))))
			os.Exit(1)
		}
	}
}

func runFunc(name, inputFile string, nworkers int) (string, error) {
	ctx := context.Background()
	switch name {
	case "process":
		buf, err := brc.LoadFile(inputFile)
		if err != nil {
			return "", err
		}
		defer buf.Release()
		report, err := brc.Process(ctx, buf, brc.Options{Workers: 1})
		if err != nil {
			return "", err
		}
		return report.String(), nil
	case "process-mmap":
		buf, err := brc.MapFile(inputFile)
		if err != nil {
			return "", err
		}
		defer buf.Release()
		report, err := brc.Process(ctx, buf, brc.Options{Workers: nworkers})
		if err != nil {
			return "", err
		}
		return report.String(), nil
	case "stream":
		f, err := os.Open(inputFile)
		if err != nil {
			return "", err
		}
		defer f.Close()
		report, err := stream.Collect(ctx, f, stream.Options{Workers: nworkers})
		if err != nil {
			return "", err
		}
		return report.String(), nil
	case "baseline":
		f, err := os.Open(inputFile)
		if err != nil {
			return "", err
		}
		defer f.Close()
		return brc.Baseline(f)
	default:
		return "", fmt.Errorf("unknown func: %s", name)
	}
}

// reportLines puts one station per line so that a diff points at stations.
func reportLines(s string) string {
	s = strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(s), "{"), "}")
	return strings.ReplaceAll(s, ", ", "\n")
}
