// native (off-circuit) Poseidon hasher functions
package hasher

import (
	"log"
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// Compress runs the native Poseidon2 permutation of cfg on (x,y) and returns
// perm([x,y])[1] + y, matching the circuit's Compress.
func (me Config) Compress(x, y fr.Element) fr.Element {
	vars := [2]fr.Element{x, y}
	if err := me.Permutation().Permutation(vars[:]); err != nil {
		log.Fatalln(err)
	}
	var ret fr.Element
	ret.Add(&vars[1], &y)
	return ret
}

// Sum folds a sequence using Compress(acc, v) starting from zero.
func (me Config) Sum(val ...fr.Element) fr.Element {
	var ret fr.Element
	for _, v := range val {
		ret = me.Compress(ret, v)
	}
	return ret
}

// HashCompress and HashSum use the default config.
func HashCompress(x, y fr.Element) fr.Element {
	return DefaultConfig().Compress(x, y)
}

func HashSum(val ...fr.Element) fr.Element {
	return DefaultConfig().Sum(val...)
}

// DecomposeG1 splits a G1Affine into (xq,xm,yq,ym) such that
// X = xq * r + xm, Y = yq * r + ym, where r is the scalar field modulus.
func DecomposeG1(val bls12381.G1Affine) [2][2]fr.Element {
	var ixq, ixm, iyq, iym big.Int
	var exq, exm, eyq, eym fr.Element
	val.X.BigInt(&ixq)
	val.Y.BigInt(&iyq)
	ixq.DivMod(&ixq, fr.Modulus(), &ixm)
	iyq.DivMod(&iyq, fr.Modulus(), &iym)
	exq.SetBigInt(&ixq)
	exm.SetBigInt(&ixm)
	eyq.SetBigInt(&iyq)
	eym.SetBigInt(&iym)
	return [2][2]fr.Element{{exq, exm}, {eyq, eym}}
}

// HashG1 ≡ Compress(Compress(xq,xm), Compress(yq,ym)).
func HashG1(val bls12381.G1Affine) fr.Element {
	decompose := DecomposeG1(val)
	x := HashCompress(decompose[0][0], decompose[0][1])
	y := HashCompress(decompose[1][0], decompose[1][1])
	return HashCompress(x, y)
}
