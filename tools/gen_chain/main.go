package main

import (
	"crypto/rand"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/eon-protocol/eondos/chain"
	"github.com/eon-protocol/eondos/circuits/hasher"
	"github.com/eon-protocol/eondos/config"
	"github.com/eon-protocol/eondos/signature"
	"github.com/eon-protocol/eondos/transport"
)

// Prints one base64 attestation per line. With "extend <attestation>" a fresh
// identity attests the public key of the given attestation, so the output line can
// be appended to an existing chain.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalln(err)
	}
	cfg.SetupLogger()
	hcfg := hasher.DefaultConfig()

	if len(os.Args) == 3 && os.Args[1] == "extend" {
		prev, err := transport.DecodeAttestation(os.Args[2])
		if err != nil {
			log.Fatalln(err)
		}
		kp, err := signature.GenerateKey(rand.Reader)
		if err != nil {
			log.Fatalln(err)
		}
		att, err := chain.Extend(hcfg, &prev.PublicKey, kp)
		if err != nil {
			log.Fatalln(err)
		}
		line, err := transport.EncodeAttestation(&att)
		if err != nil {
			log.Fatalln(err)
		}
		fmt.Println(line)
		return
	}

	n := cfg.Steps
	switch len(os.Args) {
	case 1:
	case 2:
		if n, err = strconv.Atoi(os.Args[1]); err != nil {
			log.Fatalln(err)
		}
	default:
		log.Fatalln("usage:", os.Args[0], "[<n>]", "|", os.Args[0], "extend", "<attestation>")
	}
	_, atts, err := chain.GenerateChain(n, rand.Reader, hcfg)
	if err != nil {
		log.Fatalln(err)
	}
	lines, err := transport.EncodeAttestations(atts)
	if err != nil {
		log.Fatalln(err)
	}
	for _, line := range lines {
		fmt.Println(line)
	}
}
