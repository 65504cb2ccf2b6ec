package holo

/*------------------------------------------------------------------
 *
 * Purpose:	Chunk-directory scanner shared by the image, audio, and
 *		binary decode paths. Validates every chunk file, rejects a
 *		directory that mixes modes, and keeps only the
 *		majority-consistent (mode, version, header, coarse, N, B)
 *		bucket, so a stray or corrupt chunk cannot poison a decode.
 *
 *------------------------------------------------------------------*/

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// chunkSet is the result of a successful directory scan: every
// majority-consistent chunk, keyed by block index, plus the signature they
// agree on.
type chunkSet struct {
	mode       magic
	version    uint16
	modeHeader []byte
	blockCount uint32
	nTotal     uint64
	chunks     map[uint32]*rawChunk
}

// chunkSignature is everything chunks of one object must agree on. The
// coarse payload is byte-identical across chunks of an object, so it
// participates (hashed, it can be tens of kilobytes) alongside the
// header fields; a chunk with tampered coarse bytes lands in its own
// bucket instead of nondeterministically supplying the coarse for the
// whole decode.
type chunkSignature struct {
	version    uint16
	modeHeader string
	coarseSum  [sha256.Size]byte
	blockCount uint32
	nTotal     uint64
}

func scanChunkDir(dir string) (*chunkSet, error) {
	var entries, readErr = os.ReadDir(dir)
	if readErr != nil {
		return nil, fmt.Errorf("holo: reading chunk directory: %w", readErr)
	}

	var parsed []*rawChunk

	var modesSeen = map[magic]bool{}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".holo" {
			continue
		}

		var full = filepath.Join(dir, entry.Name())

		var c, err = readOneChunkFile(full)
		if err != nil {
			logWarn("skipping unusable chunk", "err", chunkErr(full, err))

			continue
		}

		modesSeen[c.magic] = true
		parsed = append(parsed, c)
	}

	if len(modesSeen) > 1 {
		return nil, ErrMixedModes
	}

	if len(parsed) == 0 {
		return nil, ErrNoChunks
	}

	logDebug("scanned chunk directory", "dir", dir, "usable", len(parsed))

	return bucketBySignature(parsed)
}

func readOneChunkFile(path string) (*rawChunk, error) {
	var f, err = os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var c, readErr = readChunk(f)
	if readErr != nil {
		return nil, readErr
	}

	return c, nil
}

// bucketBySignature groups chunks by the (version, mode header, coarse,
// N, B) they claim, keeps the largest group (breaking ties by signature
// order for determinism), and returns it as a chunkSet keyed by block
// index.
func bucketBySignature(parsed []*rawChunk) (*chunkSet, error) {
	var buckets = map[chunkSignature][]*rawChunk{}

	for _, c := range parsed {
		var sig = chunkSignature{
			version:    c.version,
			modeHeader: string(c.modeHeader),
			coarseSum:  sha256.Sum256(c.coarse),
			blockCount: c.blockCount,
			nTotal:     c.nTotal,
		}
		buckets[sig] = append(buckets[sig], c)
	}

	var sigs = make([]chunkSignature, 0, len(buckets))
	for sig := range buckets {
		sigs = append(sigs, sig)
	}

	sort.Slice(sigs, func(i, j int) bool {
		if sigs[i].modeHeader != sigs[j].modeHeader {
			return sigs[i].modeHeader < sigs[j].modeHeader
		}

		if c := bytes.Compare(sigs[i].coarseSum[:], sigs[j].coarseSum[:]); c != 0 {
			return c < 0
		}

		if sigs[i].version != sigs[j].version {
			return sigs[i].version < sigs[j].version
		}

		if sigs[i].blockCount != sigs[j].blockCount {
			return sigs[i].blockCount < sigs[j].blockCount
		}

		return sigs[i].nTotal < sigs[j].nTotal
	})

	var bestSig chunkSignature
	var bestCount = -1

	for _, sig := range sigs {
		if len(buckets[sig]) > bestCount {
			bestCount = len(buckets[sig])
			bestSig = sig
		}
	}

	var winners = buckets[bestSig]

	for sig, group := range buckets {
		if sig != bestSig {
			for _, c := range group {
				logWarn("dropping inconsistent chunk", "blockIndex", c.blockIndex, "reason", ErrInconsistentChunk)
			}
		}
	}

	var set = &chunkSet{
		mode:       winners[0].magic,
		version:    bestSig.version,
		modeHeader: winners[0].modeHeader,
		blockCount: bestSig.blockCount,
		nTotal:     bestSig.nTotal,
		chunks:     map[uint32]*rawChunk{},
	}

	for _, c := range winners {
		if _, ok := set.chunks[c.blockIndex]; ok {
			logWarn("duplicate block index in directory, keeping first", "blockIndex", c.blockIndex)

			continue
		}

		set.chunks[c.blockIndex] = c
	}

	return set, nil
}
