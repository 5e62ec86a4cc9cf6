package eondos

import (
	"os"
	"path/filepath"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/eon-protocol/eondos/attestation"
	"github.com/eon-protocol/eondos/chain"
	"github.com/eon-protocol/eondos/circuits/hasher"
)

const STATE_LEN = chain.STATE_LEN
const NUM_PUBLIC = 2 * STATE_LEN
const HASH_T = hasher.WIDTH
const HASH_RF = hasher.ROUND_FULL
const HASH_RP = hasher.ROUND_PARTIAL
const HASH_SEED = hasher.SEED
const POINT_SIZE = attestation.POINT_SIZE
const SCALAR_SIZE = attestation.SCALAR_SIZE
const ATTESTATION_SIZE = attestation.SIZE

const PK_SUFFIX = ".PK.BIN"
const PK_HASH_SUFFIX = ".PK.SHA256"
const VK_SUFFIX = ".VK.BIN"

var FIELD = ecc.BLS12_381.ScalarField()
var COSET_SHIFT = fr.NewElement(7)

// DATA_CACHE_DIR holds compiled step keys. Overridden by EONDOS_CACHE_DIR in the tools.
var DATA_CACHE_DIR = func() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "eondos")
	}
	return filepath.Join(os.TempDir(), "eondos")
}()
