package eondos

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/logger"
	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
)

var ErrCacheCorrupted = errors.New("cached proving key does not match its checksum")

// LoadOrCompile returns the proving key stored under dir/tag, compiling circuit and
// writing the cache when it is missing or fails its checksum.
func LoadOrCompile(dir, tag string, circuit frontend.Circuit) (*Pk, error) {
	log := logger.Logger().With().Str("component", "pk").Str("tag", tag).Logger()
	pathpk := filepath.Join(dir, tag+PK_SUFFIX)
	pathsum := filepath.Join(dir, tag+PK_HASH_SUFFIX)

	pk, err := ReadProvingKey(pathpk, pathsum)
	if err == nil {
		log.Debug().Str("path", pathpk).Msg("proving key loaded from cache")
		return pk, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("ignoring local proving key cache")
	}

	pk = new(Pk)
	if err := pk.Compile(circuit); err != nil {
		return nil, err
	}
	if err := WriteProvingKey(pk, pathpk, pathsum); err != nil {
		return nil, err
	}
	return pk, nil
}

// ReadProvingKey loads a proving key and checks it against the hex sha256 sidecar.
func ReadProvingKey(pathpk, pathsum string) (*Pk, error) {
	bytesum, err := os.ReadFile(pathsum)
	if err != nil {
		return nil, err
	}
	bytepk, err := os.ReadFile(pathpk)
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(bytepk)
	if hex.EncodeToString(sum[:]) != strings.TrimSpace(string(bytesum)) {
		return nil, fmt.Errorf("%w: %s", ErrCacheCorrupted, pathpk)
	}
	var pk Pk
	if _, err := pk.ReadFrom(bytes.NewReader(bytepk)); err != nil {
		return nil, fmt.Errorf("%s: %w", pathpk, err)
	}
	return &pk, nil
}

// WriteProvingKey serializes pk to pathpk and its checksum to pathsum.
func WriteProvingKey(pk *Pk, pathpk, pathsum string) error {
	if err := os.MkdirAll(filepath.Dir(pathpk), 0o755); err != nil {
		return err
	}
	var buf bytes.Buffer
	if _, err := pk.WriteTo(&buf); err != nil {
		return err
	}
	bytepk := buf.Bytes()
	f, err := os.Create(pathpk)
	if err != nil {
		return err
	}
	defer f.Close()
	bar := progressbar.DefaultBytesSilent(int64(len(bytepk)), "Writing proving key")
	if logger.Logger().GetLevel() <= zerolog.DebugLevel {
		bar = progressbar.DefaultBytes(int64(len(bytepk)), "Writing proving key")
	}
	if _, err := io.Copy(io.MultiWriter(f, bar), bytes.NewReader(bytepk)); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return err
	}
	sum := sha256.Sum256(bytepk)
	return os.WriteFile(pathsum, []byte(hex.EncodeToString(sum[:])), 0o644)
}

// WriteVerifyingKey stores vk at path. Verifiers load it with ReadVerifyingKey: a key
// compiled locally comes from a different SRS and would not match the prover's.
func WriteVerifyingKey(vk *Vk, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var buf bytes.Buffer
	if _, err := vk.WriteTo(&buf); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func ReadVerifyingKey(path string) (*Vk, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var vk Vk
	if _, err := vk.ReadFrom(f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if n, _ := io.Copy(io.Discard, f); n != 0 {
		return nil, fmt.Errorf("%s: %d trailing bytes", path, n)
	}
	return &vk, nil
}
