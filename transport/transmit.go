package transport

/*------------------------------------------------------------------
 *
 * Purpose:	Transmit side of the datagram transport (C7): encode the
 *		object into a temporary chunk directory, then blast every
 *		chunk out as HNET DATA segments, looped and re-shuffled.
 *
 * Description:	Fire and forget. The transmitter never reads the network
 *		and has no knowledge of success; redundancy comes from the
 *		loop count and from the codec's tolerance of missing
 *		chunks. Each chunk's segments are fragmented in memory
 *		before the first sendto so no packet is ever half-built.
 *
 *------------------------------------------------------------------*/

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/ciaoidea/holocodec/holo"
)

// TxOptions configures one Transmit call.
type TxOptions struct {
	ChunkKB    int
	Loops      int
	MaxPayload int
	Delay      time.Duration

	// Seed makes the per-loop chunk shuffle reproducible. 0 seeds from
	// the transfer id, which is good enough for the wire (the shuffle
	// only spreads loss across chunks) and keeps tests deterministic.
	Seed uint64
}

// transferIDCounter is host-local and monotonically increasing per
// sender process, as the protocol requires.
var transferIDCounter atomic.Uint32

func nextTransferID() uint32 {
	return transferIDCounter.Add(1)
}

// Transmit encodes path and sends it to addr ("host:port") over UDP.
// Cancellation is observed between packets; no datagram is truncated.
func Transmit(ctx context.Context, path string, addr string, opts TxOptions) error {
	if opts.Loops < 1 {
		opts.Loops = 1
	}

	if opts.MaxPayload < 1 || opts.MaxPayload > maxUDPPayload-packetHeaderLen {
		opts.MaxPayload = 1200
	}

	var tmp, tmpErr = os.MkdirTemp("", "holo-tx-*")
	if tmpErr != nil {
		return fmt.Errorf("hnet: creating staging directory: %w", tmpErr)
	}
	defer os.RemoveAll(tmp)

	var name = filepath.Base(path)
	var chunkDir = filepath.Join(tmp, name+".holo")

	var blockCount, encErr = holo.EncodeFileTo(path, chunkDir, holo.EncodeOptions{TargetKB: opts.ChunkKB})
	if encErr != nil {
		return encErr
	}

	var conn, dialErr = net.Dial("udp", addr)
	if dialErr != nil {
		return fmt.Errorf("hnet: dialing %s: %w", addr, dialErr)
	}
	defer conn.Close()

	var id = nextTransferID()

	var seed = opts.Seed
	if seed == 0 {
		seed = uint64(id)
	}

	var rng = rand.New(rand.NewPCG(seed, seed))

	logger.Info("transfer starting", "at", stampNow(), "id", id, "name", name, "chunks", blockCount, "loops", opts.Loops, "dest", addr)

	var meta = encodePacket(&packet{
		ptype:      typeMeta,
		transferID: id,
		chunkTotal: uint32(blockCount), //nolint:gosec
		payload:    []byte(name),
	})

	if err := sendPaced(ctx, conn, meta, opts.Delay); err != nil {
		return err
	}

	for loop := 0; loop < opts.Loops; loop++ {
		for _, b := range rng.Perm(int(blockCount)) {
			if err := sendChunk(ctx, conn, chunkDir, id, int64(b), blockCount, opts); err != nil {
				return err
			}
		}
	}

	logger.Info("transfer sent", "at", stampNow(), "id", id, "name", name)

	return nil
}

// sendChunk fragments one on-disk chunk and sends every segment.
func sendChunk(ctx context.Context, conn net.Conn, chunkDir string, id uint32, b int64, blockCount int64, opts TxOptions) error {
	var data, readErr = os.ReadFile(filepath.Join(chunkDir, holo.ChunkFileName(b, blockCount)))
	if readErr != nil {
		return fmt.Errorf("hnet: reading chunk %d: %w", b, readErr)
	}

	var segments = fragment(data, opts.MaxPayload)
	if len(segments) > 0xFFFF {
		return fmt.Errorf("hnet: chunk %d needs %d segments, seg_count is 16-bit; raise --payload", b, len(segments))
	}

	for i, seg := range segments {
		var raw = encodePacket(&packet{
			ptype:      typeData,
			transferID: id,
			chunkTotal: uint32(blockCount),    //nolint:gosec
			chunkIndex: uint32(b),             //nolint:gosec
			segIndex:   uint16(i),             //nolint:gosec
			segCount:   uint16(len(segments)), //nolint:gosec
			payload:    seg,
		})

		if err := sendPaced(ctx, conn, raw, opts.Delay); err != nil {
			return err
		}
	}

	return nil
}

func sendPaced(ctx context.Context, conn net.Conn, raw []byte, delay time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := conn.Write(raw); err != nil {
		return fmt.Errorf("hnet: send: %w", err)
	}

	if delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return nil
}
