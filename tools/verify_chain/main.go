package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/eon-protocol/eondos"
	"github.com/eon-protocol/eondos/config"
	"github.com/eon-protocol/eondos/fold"
	"github.com/eon-protocol/eondos/transport"
)

// Reads a chain proof printed by fold_chain from stdin, checks it against the
// verifying key file written by gen_params and prints the state it attests.
func main() {
	if len(os.Args) != 2 {
		log.Fatalln("usage:", os.Args[0], "<vk-file>")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalln(err)
	}
	cfg.SetupLogger()

	vk, err := eondos.ReadVerifyingKey(os.Args[1])
	if err != nil {
		log.Fatalln(err)
	}
	text, err := io.ReadAll(os.Stdin)
	if err != nil {
		log.Fatalln(err)
	}
	var proof fold.ChainProof
	if err := transport.DecodeProof(string(text), &proof); err != nil {
		log.Fatalln(err)
	}
	final, err := fold.Verify(context.Background(), vk, &proof)
	if err != nil {
		log.Fatalln(err)
	}
	if !proof.IsGenesis() {
		fmt.Fprintln(os.Stderr, "warning: proof does not start from a genesis state")
	}
	fmt.Println("valid", final)
}
