package chain

import (
	"fmt"
	"io"

	"github.com/consensys/gnark/logger"

	"github.com/eon-protocol/eondos/attestation"
	"github.com/eon-protocol/eondos/circuits/hasher"
	"github.com/eon-protocol/eondos/signature"
)

// Extend has kp attest prev: kp signs Hash(prev). The result is verified before it
// is returned; a failure there means signing itself is broken.
func Extend(cfg hasher.Config, prev *signature.PublicKey, kp *signature.KeyPair) (attestation.Attestation, error) {
	msg := HashPublicKey(cfg, prev)
	sig, err := kp.Sign(cfg, msg)
	if err != nil {
		return attestation.Attestation{}, err
	}
	att := attestation.Attestation{PublicKey: kp.Public, Signature: sig}
	if err := signature.Verify(cfg, &att.PublicKey, msg, &att.Signature); err != nil {
		return attestation.Attestation{}, fmt.Errorf("%w: %w", ErrConstructionInvariant, err)
	}
	return att, nil
}

// GenerateChain creates n fresh identities K0..Kn-1 where K0 attests itself and Ki
// attests Ki-1. It returns the genesis state and the n attestations; replaying them
// from the genesis state ends at degree n.
func GenerateChain(n int, rng io.Reader, cfg hasher.Config) (State, []attestation.Attestation, error) {
	if n < 1 {
		return State{}, nil, ErrEmptyChain
	}
	if err := cfg.Validate(); err != nil {
		return State{}, nil, err
	}
	log := logger.Logger().With().Str("component", "chain").Int("links", n).Logger()

	atts := make([]attestation.Attestation, 0, n)
	var prev *signature.PublicKey
	for i := 0; i < n; i++ {
		kp, err := signature.GenerateKey(rng)
		if err != nil {
			return State{}, nil, fmt.Errorf("chain: key %d: %w", i, err)
		}
		if prev == nil {
			prev = &kp.Public
		}
		att, err := Extend(cfg, prev, kp)
		if err != nil {
			return State{}, nil, fmt.Errorf("chain: link %d: %w", i, err)
		}
		atts = append(atts, att)
		prev = &atts[i].PublicKey
		log.Debug().Int("link", i).Str("pk.x", att.PublicKey.X.Text(16)).Msg("attested")
	}
	return Genesis(&atts[0]), atts, nil
}
