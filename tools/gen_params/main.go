package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/eon-protocol/eondos"
	"github.com/eon-protocol/eondos/circuits/hasher"
	"github.com/eon-protocol/eondos/circuits/step"
	"github.com/eon-protocol/eondos/config"
)

// Compiles (or loads) the step circuit key into the cache directory, writes the
// verifying key to the given path (default: next to the proving key) and prints the
// verifying key address. Hand the file to verify_chain.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalln(err)
	}
	cfg.SetupLogger()
	fn, err := step.NewFunction(hasher.DefaultConfig())
	if err != nil {
		log.Fatalln(err)
	}
	pathvk := filepath.Join(cfg.CacheDir, fn.Tag()+eondos.VK_SUFFIX)
	switch len(os.Args) {
	case 1:
	case 2:
		pathvk = os.Args[1]
	default:
		log.Fatalln("usage:", os.Args[0], "[<vk-file>]")
	}
	pk, err := eondos.LoadOrCompile(cfg.CacheDir, fn.Tag(), fn.Placeholder())
	if err != nil {
		log.Fatalln(err)
	}
	vk := pk.Vk()
	if err := eondos.WriteVerifyingKey(&vk, pathvk); err != nil {
		log.Fatalln(err)
	}
	address := vk.Address()
	fmt.Println("address", address.Text(16))
	fmt.Println("vk", pathvk)
}
