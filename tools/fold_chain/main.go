package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/schollz/progressbar/v3"

	"github.com/eon-protocol/eondos"
	"github.com/eon-protocol/eondos/chain"
	"github.com/eon-protocol/eondos/circuits/hasher"
	"github.com/eon-protocol/eondos/circuits/step"
	"github.com/eon-protocol/eondos/config"
	"github.com/eon-protocol/eondos/fold"
	"github.com/eon-protocol/eondos/transport"
)

// Reads base64 attestations from stdin, one per line, the genesis link first, and
// prints the compressed chain proof.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalln(err)
	}
	cfg.SetupLogger()

	var lines []string
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		log.Fatalln(err)
	}
	lines = lo.FilterMap(lines, func(l string, _ int) (string, bool) {
		l = strings.TrimSpace(l)
		return l, l != ""
	})
	if len(lines) == 0 {
		log.Fatalln(chain.ErrEmptyChain)
	}
	atts, err := transport.DecodeAttestations(lines)
	if err != nil {
		log.Fatalln(err)
	}

	fn, err := step.NewFunction(hasher.DefaultConfig())
	if err != nil {
		log.Fatalln(err)
	}
	pk, err := eondos.LoadOrCompile(cfg.CacheDir, fn.Tag(), fn.Placeholder())
	if err != nil {
		log.Fatalln(err)
	}
	engine, err := fold.NewPlonkEngine(fn, pk, cfg.ProverOptions()...)
	if err != nil {
		log.Fatalln(err)
	}

	start := time.Now()
	bar := progressbar.NewOptions(len(atts),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("Folding attestations"),
		progressbar.OptionShowCount(),
	)
	z0 := chain.Genesis(&atts[0]).Elements()
	proof, err := fold.ProveChain(engine, z0[:], atts, func(done int) { bar.Set(done) })
	if err != nil {
		log.Fatalln(err)
	}
	bar.Finish()
	fmt.Fprintln(os.Stderr, "folded", len(atts), "attestations in", time.Since(start).Round(time.Millisecond))

	out, err := transport.EncodeProof(proof, cfg.CompressionLevel)
	if err != nil {
		log.Fatalln(err)
	}
	fmt.Println(out)
}
