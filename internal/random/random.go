// Package random implements the hash-chained random source of §4.4: a
// CSPRNG whose reservoir is mixed from OS entropy by default, or made a
// pure function of a fixed secret key via SetSecretKey for deterministic,
// testable sequences.
package random

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"os"
	"sync"
	"time"

	"github.com/ImageMagick/WizardsToolkit-sub001/internal/buffer"
	"github.com/ImageMagick/WizardsToolkit-sub001/internal/hashengine"
	"github.com/ImageMagick/WizardsToolkit-sub001/internal/wizerr"
)

// secretKey, when non-nil, makes every newly acquired Source deterministic:
// its reservoir is seeded from the key alone, with no OS entropy mixed in.
// It is process-wide, guarded by secretKeyMu, matching §5's single
// random-source mutex discipline.
var (
	secretKeyMu sync.Mutex
	secretKey   *uint64
)

// SetSecretKey fixes the process-wide seed used by every Source acquired
// from this point on. Passing it to two independent processes that issue
// the same call sequence yields byte-identical output (§8 "Random
// determinism").
func SetSecretKey(seed uint64) {
	secretKeyMu.Lock()
	defer secretKeyMu.Unlock()
	secretKey = &seed
}

// ClearSecretKey returns the process to nondeterministic, OS-entropy-backed
// mode.
func ClearSecretKey() {
	secretKeyMu.Lock()
	defer secretKeyMu.Unlock()
	secretKey = nil
}

// GetSecretKey returns the process-wide secret key, if one is set.
func GetSecretKey() (uint64, bool) {
	secretKeyMu.Lock()
	defer secretKeyMu.Unlock()
	if secretKey == nil {
		return 0, false
	}
	return *secretKey, true
}

// Source is a hash-chained random byte source. It is not safe for
// concurrent use by multiple goroutines without external serialisation,
// matching §5's per-context ownership model.
type Source struct {
	algo      hashengine.Algorithm
	reservoir []byte
	counter   uint64
	seeded    bool
}

// Acquire returns a new Source backed by the given hash algorithm
// (typically hashengine.SHA256, the default).
func Acquire(algo hashengine.Algorithm) (*Source, error) {
	if _, err := hashengine.Acquire(algo); err != nil {
		return nil, err
	}
	return &Source{algo: algo}, nil
}

// prime mixes the initial reservoir, either from the process-wide secret
// key (deterministic mode) or from OS entropy plus process-varying inputs
// (nondeterministic mode), per §4.4 step 1.
func (s *Source) prime() error {
	if s.seeded {
		return nil
	}
	if seed, ok := GetSecretKey(); ok {
		seedBytes := make([]byte, 8)
		binary.BigEndian.PutUint64(seedBytes, seed)
		d, err := hashengine.Sum(s.algo, seedBytes)
		if err != nil {
			return err
		}
		s.reservoir = d.Bytes()
		s.seeded = true
		return nil
	}

	pool := make([]byte, 0, 128)
	var tsBuf [8]byte
	binary.BigEndian.PutUint64(tsBuf[:], uint64(time.Now().UnixNano()))
	pool = append(pool, tsBuf[:]...)

	var pidBuf [8]byte
	binary.BigEndian.PutUint64(pidBuf[:], uint64(os.Getpid()))
	pool = append(pool, pidBuf[:]...)

	if host, err := os.Hostname(); err == nil {
		pool = append(pool, []byte(host)...)
	}

	osEntropy := make([]byte, 32)
	if _, err := cryptorand.Read(osEntropy); err != nil {
		return wizerr.Wrap(wizerr.Random, "could not read OS entropy", err)
	}
	pool = append(pool, osEntropy...)

	for _, path := range customEntropyPaths() {
		if data, err := os.ReadFile(path); err == nil {
			pool = append(pool, data...)
		}
	}

	d, err := hashengine.Sum(s.algo, pool)
	if err != nil {
		return err
	}
	s.reservoir = d.Bytes()
	s.seeded = true
	return nil
}

// customEntropyPaths returns a fixed list of files whose contents vary
// between systems and over time: three /proc files and, when a home
// directory is known, the user's shell history. The list is not
// configurable. Missing files are silently skipped by prime.
func customEntropyPaths() []string {
	paths := []string{
		"/proc/self/stat",
		"/proc/interrupts",
		"/proc/uptime",
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, home+"/.bash_history")
	}
	return paths
}

// next yields exactly n bytes via the hash chain: block = H(reservoir ||
// counter); counter++; copy min(remaining, digest_size) bytes; then
// reservoir = H(reservoir || block) so prior output cannot be
// reconstructed from the new reservoir.
func (s *Source) next(n int) ([]byte, error) {
	if err := s.prime(); err != nil {
		return nil, err
	}
	out := make([]byte, 0, n)
	for len(out) < n {
		var ctr [8]byte
		binary.BigEndian.PutUint64(ctr[:], s.counter)
		s.counter++

		input := append(append([]byte{}, s.reservoir...), ctr[:]...)
		block, err := hashengine.Sum(s.algo, input)
		if err != nil {
			return nil, err
		}
		blockBytes := block.Bytes()

		take := n - len(out)
		if take > len(blockBytes) {
			take = len(blockBytes)
		}
		out = append(out, blockBytes[:take]...)

		chain, err := hashengine.Sum(s.algo, append(append([]byte{}, s.reservoir...), blockBytes...))
		if err != nil {
			return nil, err
		}
		s.reservoir = chain.Bytes()
	}
	return out, nil
}

// GetValue returns a pseudo-random float64 in [0,1), built from a 53-bit
// mantissa drawn from two 32-bit slices of the hash chain.
func (s *Source) GetValue() (float64, error) {
	raw, err := s.next(8)
	if err != nil {
		return 0, err
	}
	hi := binary.BigEndian.Uint32(raw[0:4])
	lo := binary.BigEndian.Uint32(raw[4:8])
	mantissa := (uint64(hi)<<32 | uint64(lo)) >> (64 - 53)
	return float64(mantissa) / float64(uint64(1)<<53), nil
}

// GetKey returns a freshly generated key of n bytes.
func (s *Source) GetKey(n int) (*buffer.Buffer, error) {
	raw, err := s.next(n)
	if err != nil {
		return nil, err
	}
	return buffer.FromBytes(raw), nil
}

// SetKey fills out (exactly n bytes, len(out) == n) with freshly generated
// bytes, for callers that already own fixed-size storage.
func (s *Source) SetKey(n int, out []byte) error {
	if len(out) != n {
		return wizerr.New(wizerr.Random, "output length mismatch", "")
	}
	raw, err := s.next(n)
	if err != nil {
		return err
	}
	copy(out, raw)
	return nil
}

// Reseed atomically replaces the reservoir, re-running the priming step
// (OS entropy in nondeterministic mode, or the secret-key derivation in
// deterministic mode).
func (s *Source) Reseed() error {
	s.seeded = false
	s.reservoir = nil
	return s.prime()
}
