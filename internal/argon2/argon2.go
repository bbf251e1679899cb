// Package argon2 implements the Argon2 key derivation function (RFC 9106)
// with the parts golang.org/x/crypto/argon2 does not expose: the Argon2d
// variant, version 0x10, a secret key K and associated data X.
package argon2

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	"golang.org/x/crypto/blake2b"
)

// Algorithm is an Argon2 variant. Values match the type field y of RFC 9106.
type Algorithm uint32

const (
	// Argon2d uses data-dependent memory access
	Argon2d Algorithm = 0
	// Argon2i uses data-independent memory access
	Argon2i Algorithm = 1
	// Argon2id mixes both: data-independent for the first half of the first pass
	Argon2id Algorithm = 2
)

// Ident returns the PHC identifier of the variant
func (a Algorithm) Ident() string {
	switch a {
	case Argon2d:
		return "argon2d"
	case Argon2i:
		return "argon2i"
	case Argon2id:
		return "argon2id"
	default:
		return fmt.Sprintf("argon2(%d)", uint32(a))
	}
}

func (a Algorithm) String() string {
	switch a {
	case Argon2d:
		return "Argon2d"
	case Argon2i:
		return "Argon2i"
	case Argon2id:
		return "Argon2id"
	default:
		return fmt.Sprintf("Argon2(%d)", uint32(a))
	}
}

// Version is an Argon2 algorithm version
type Version uint32

const (
	// V10 is version 1.0 (0x10): blocks are overwritten on every pass
	V10 Version = 0x10
	// V13 is version 1.3 (0x13): later passes XOR into the existing block
	V13 Version = 0x13
)

// Limits on the inputs accepted by Derive
const (
	MinMemory     = 8
	MinTime       = 1
	MinLanes      = 1
	MaxLanes      = 0xFFFFFF
	MinKeyLength  = 4
	MinSaltLength = 8
)

var (
	// ErrUnsupported is returned for an unknown Algorithm or Version
	ErrUnsupported = errors.New("argon2: unsupported algorithm or version")
	// ErrInvalidInput is returned when a cost, length or input size is out of range
	ErrInvalidInput = errors.New("argon2: invalid input")
)

const (
	blockLength = 128
	syncPoints  = 4
)

type block [blockLength]uint64

// Input bundles everything Derive consumes
type Input struct {
	Algorithm Algorithm
	Version   Version
	Password  []byte
	Salt      []byte
	Secret    []byte
	Data      []byte
	Time      uint32
	Memory    uint32
	Lanes     uint32
	KeyLength uint32
}

// Validate reports whether the input can be fed to Derive
func (in *Input) Validate() error {
	switch in.Algorithm {
	case Argon2d, Argon2i, Argon2id:
	default:
		return fmt.Errorf("%w: algorithm %d", ErrUnsupported, uint32(in.Algorithm))
	}
	switch in.Version {
	case V10, V13:
	default:
		return fmt.Errorf("%w: version %#x", ErrUnsupported, uint32(in.Version))
	}
	if in.Time < MinTime {
		return fmt.Errorf("%w: time must be >= %d, got %d", ErrInvalidInput, MinTime, in.Time)
	}
	if in.Lanes < MinLanes || in.Lanes > MaxLanes {
		return fmt.Errorf("%w: lanes must be in [%d, %d], got %d", ErrInvalidInput, MinLanes, MaxLanes, in.Lanes)
	}
	if uint64(in.Memory) < 8*uint64(in.Lanes) {
		return fmt.Errorf("%w: memory (%d KiB) must be >= 8*lanes", ErrInvalidInput, in.Memory)
	}
	if in.KeyLength < MinKeyLength {
		return fmt.Errorf("%w: key length must be >= %d, got %d", ErrInvalidInput, MinKeyLength, in.KeyLength)
	}
	if len(in.Salt) < MinSaltLength {
		return fmt.Errorf("%w: salt must be >= %d bytes, got %d", ErrInvalidInput, MinSaltLength, len(in.Salt))
	}
	for _, b := range [][]byte{in.Password, in.Salt, in.Secret, in.Data} {
		if uint64(len(b)) > math.MaxUint32 {
			return fmt.Errorf("%w: input longer than 2^32-1 bytes", ErrInvalidInput)
		}
	}
	return nil
}

// Derive runs Argon2 over in and returns a tag of in.KeyLength bytes
func Derive(in Input) ([]byte, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	h0 := initHash(&in)

	lanes := in.Lanes
	memory := in.Memory / (syncPoints * lanes) * (syncPoints * lanes)
	if memory < 2*syncPoints*lanes {
		memory = 2 * syncPoints * lanes
	}

	B := initBlocks(&h0, memory, lanes)
	processBlocks(B, &in, memory)
	return extractKey(B, memory, lanes, in.KeyLength), nil
}

// initHash computes the 64-byte pre-hash H0 followed by 8 bytes of room
// for the block index and lane number.
func initHash(in *Input) [blake2b.Size + 8]byte {
	var (
		h0     [blake2b.Size + 8]byte
		params [24]byte
		tmp    [4]byte
	)

	b2, _ := blake2b.New512(nil)
	binary.LittleEndian.PutUint32(params[0:4], in.Lanes)
	binary.LittleEndian.PutUint32(params[4:8], in.KeyLength)
	binary.LittleEndian.PutUint32(params[8:12], in.Memory)
	binary.LittleEndian.PutUint32(params[12:16], in.Time)
	binary.LittleEndian.PutUint32(params[16:20], uint32(in.Version))
	binary.LittleEndian.PutUint32(params[20:24], uint32(in.Algorithm))
	b2.Write(params[:])
	for _, field := range [][]byte{in.Password, in.Salt, in.Secret, in.Data} {
		binary.LittleEndian.PutUint32(tmp[:], uint32(len(field)))
		b2.Write(tmp[:])
		b2.Write(field)
	}
	b2.Sum(h0[:0])
	return h0
}

func initBlocks(h0 *[blake2b.Size + 8]byte, memory, lanes uint32) []block {
	var block0 [1024]byte
	B := make([]block, memory)
	for lane := uint32(0); lane < lanes; lane++ {
		j := lane * (memory / lanes)
		binary.LittleEndian.PutUint32(h0[blake2b.Size+4:], lane)

		for i := uint32(0); i < 2; i++ {
			binary.LittleEndian.PutUint32(h0[blake2b.Size:], i)
			blake2bHash(block0[:], h0[:])
			for k := range B[j+i] {
				B[j+i][k] = binary.LittleEndian.Uint64(block0[k*8:])
			}
		}
	}
	return B
}

func processBlocks(B []block, in *Input, memory uint32) {
	lanes := in.Lanes
	laneLength := memory / lanes
	segments := laneLength / syncPoints
	mode := in.Algorithm

	processSegment := func(n, slice, lane uint32, wg *sync.WaitGroup) {
		defer wg.Done()

		var addresses, input, zero block
		independent := mode == Argon2i || (mode == Argon2id && n == 0 && slice < syncPoints/2)
		if independent {
			input[0] = uint64(n)
			input[1] = uint64(lane)
			input[2] = uint64(slice)
			input[3] = uint64(memory)
			input[4] = uint64(in.Time)
			input[5] = uint64(mode)
		}

		index := uint32(0)
		if n == 0 && slice == 0 {
			// the first two blocks of each lane come from H0
			index = 2
			if independent {
				input[6]++
				processBlock(&addresses, &input, &zero)
				processBlock(&addresses, &addresses, &zero)
			}
		}

		overwrite := n == 0 || in.Version == V10
		offset := lane*laneLength + slice*segments + index
		var random uint64
		for index < segments {
			prev := offset - 1
			if index == 0 && slice == 0 {
				prev += laneLength
			}
			if independent {
				if index%blockLength == 0 {
					input[6]++
					processBlock(&addresses, &input, &zero)
					processBlock(&addresses, &addresses, &zero)
				}
				random = addresses[index%blockLength]
			} else {
				random = B[prev][0]
			}
			ref := indexAlpha(random, laneLength, segments, lanes, n, slice, lane, index)
			if overwrite {
				processBlock(&B[offset], &B[prev], &B[ref])
			} else {
				processBlockXOR(&B[offset], &B[prev], &B[ref])
			}
			index, offset = index+1, offset+1
		}
	}

	for n := uint32(0); n < in.Time; n++ {
		for slice := uint32(0); slice < syncPoints; slice++ {
			var wg sync.WaitGroup
			for lane := uint32(0); lane < lanes; lane++ {
				wg.Add(1)
				go processSegment(n, slice, lane, &wg)
			}
			wg.Wait()
		}
	}
}

func extractKey(B []block, memory, lanes, keyLen uint32) []byte {
	laneLength := memory / lanes
	last := &B[memory-1]
	for lane := uint32(0); lane < lanes-1; lane++ {
		for i, v := range B[lane*laneLength+laneLength-1] {
			last[i] ^= v
		}
	}

	var buf [1024]byte
	for i, v := range last {
		binary.LittleEndian.PutUint64(buf[i*8:], v)
	}
	key := make([]byte, keyLen)
	blake2bHash(key, buf[:])
	return key
}

func indexAlpha(rand uint64, laneLength, segments, lanes, n, slice, lane, index uint32) uint32 {
	refLane := uint32(rand>>32) % lanes
	if n == 0 && slice == 0 {
		refLane = lane
	}
	m, s := 3*segments, ((slice+1)%syncPoints)*segments
	if lane == refLane {
		m += index
	}
	if n == 0 {
		m, s = slice*segments, 0
		if slice == 0 || lane == refLane {
			m += index
		}
	}
	if index == 0 || lane == refLane {
		m--
	}
	return phi(rand, uint64(m), uint64(s), refLane, laneLength)
}

func phi(rand, m, s uint64, lane, laneLength uint32) uint32 {
	p := rand & 0xFFFFFFFF
	p = (p * p) >> 32
	p = (p * m) >> 32
	return lane*laneLength + uint32((s+m-(p+1))%uint64(laneLength))
}
