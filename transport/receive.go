package transport

/*------------------------------------------------------------------
 *
 * Purpose:	Receive side of the datagram transport (C7): reassemble
 *		HNET segments into chunk files, then hand the finished
 *		directory to the codec once the transfer goes idle.
 *
 * Description:	One goroutine owns the socket and all transfer state, so
 *		there is no locking: the loop alternates between a timed
 *		recvfrom and expiry checks. Each transfer's directory is
 *		exclusively ours until decoding completes.
 *
 *		State per transfer:
 *		  Receiving -> idle timeout -> Decoding -> Done | Failed
 *
 *------------------------------------------------------------------*/

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/ciaoidea/holocodec/holo"
)

// DecodeMode selects what happens when a transfer goes idle with chunks
// missing.
type DecodeMode int

const (
	// DecodeBest decodes whatever arrived; the codec degrades
	// gracefully with a partial chunk set.
	DecodeBest DecodeMode = iota

	// DecodeStrict refuses to decode unless every chunk arrived.
	DecodeStrict
)

// ParseDecodeMode maps the CLI spelling to a DecodeMode.
func ParseDecodeMode(s string) (DecodeMode, error) {
	switch s {
	case "best":
		return DecodeBest, nil
	case "strict":
		return DecodeStrict, nil
	default:
		return DecodeBest, fmt.Errorf("hnet: unknown decode mode %q (want best or strict)", s)
	}
}

// RxOptions configures a Receiver.
type RxOptions struct {
	Port        int
	BaseDir     string
	IdleTimeout time.Duration
	DecodeMode  DecodeMode

	// Announce publishes the listener over DNS-SD so senders on the
	// LAN can find it without typing an address.
	Announce     bool
	AnnounceName string
}

// chunkReassembly collects the segments of one chunk.
type chunkReassembly struct {
	segs     [][]byte
	received int
	done     bool
}

// transferState tracks one in-flight transfer_id.
type transferState struct {
	id         uint32
	chunkTotal uint32
	name       string
	dirPath    string
	chunks     map[uint32]*chunkReassembly
	complete   int
	lastPacket time.Time
	startedAt  string
}

// Receiver reassembles transfers from a UDP socket.
type Receiver struct {
	opts      RxOptions
	conn      net.PacketConn
	transfers map[uint32]*transferState
	now       func() time.Time
}

// NewReceiver binds the UDP socket and prepares the transfer table.
func NewReceiver(opts RxOptions) (*Receiver, error) {
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = 3 * time.Second
	}

	if opts.BaseDir == "" {
		opts.BaseDir = "."
	}

	if err := os.MkdirAll(opts.BaseDir, 0o755); err != nil {
		return nil, fmt.Errorf("hnet: creating base directory: %w", err)
	}

	var conn, listenErr = net.ListenPacket("udp", fmt.Sprintf(":%d", opts.Port))
	if listenErr != nil {
		return nil, fmt.Errorf("hnet: listening on port %d: %w", opts.Port, listenErr)
	}

	if udp, ok := conn.(*net.UDPConn); ok {
		setSocketOptions(udp)
	}

	var r = &Receiver{
		opts:      opts,
		conn:      conn,
		transfers: map[uint32]*transferState{},
		now:       time.Now,
	}

	if opts.Announce {
		announceReceiver(opts.AnnounceName, localPort(conn))
	}

	return r, nil
}

func localPort(conn net.PacketConn) int {
	if addr, ok := conn.LocalAddr().(*net.UDPAddr); ok {
		return addr.Port
	}

	return 0
}

// Run blocks on the socket until ctx is cancelled, decoding each
// transfer after its idle timeout expires.
func (r *Receiver) Run(ctx context.Context) error {
	defer r.conn.Close()

	logger.Info("listening", "at", stampNow(), "addr", r.conn.LocalAddr().String(), "idleTimeout", r.opts.IdleTimeout)

	var buf = make([]byte, maxUDPPayload)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		_ = r.conn.SetReadDeadline(r.nextDeadline())

		var n, _, readErr = r.conn.ReadFrom(buf)

		if readErr != nil {
			var ne net.Error
			if errors.As(readErr, &ne) && ne.Timeout() {
				r.finalizeExpired()

				continue
			}

			return fmt.Errorf("hnet: recvfrom: %w", readErr)
		}

		var raw = make([]byte, n)
		copy(raw, buf[:n])

		r.handleDatagram(raw)
		r.finalizeExpired()
	}
}

// nextDeadline is the earliest moment any transfer's idle budget runs
// out, or one idle period from now when nothing is in flight (so the
// loop still wakes to observe cancellation).
func (r *Receiver) nextDeadline() time.Time {
	var deadline = r.now().Add(r.opts.IdleTimeout)

	for _, ts := range r.transfers {
		var expiry = ts.lastPacket.Add(r.opts.IdleTimeout)
		if expiry.Before(deadline) {
			deadline = expiry
		}
	}

	return deadline
}

func (r *Receiver) handleDatagram(raw []byte) {
	var p, err = decodePacket(raw)
	if err != nil {
		logger.Debug("dropping datagram", "err", err)

		return
	}

	switch p.ptype {
	case typeMeta:
		r.handleMeta(p)
	case typeData:
		r.handleData(p)
	}
}

// handleMeta creates or refreshes the transfer and renames its working
// directory once a name is known.
func (r *Receiver) handleMeta(p *packet) {
	var ts = r.lookupTransfer(p.transferID, p.chunkTotal)
	if ts == nil {
		return
	}

	ts.lastPacket = r.now()

	var name = filepath.Base(string(p.payload))
	if name == "" || name == "." || name == string(filepath.Separator) || ts.name != "" {
		return
	}

	var newDir = filepath.Join(r.opts.BaseDir, name+".holo")
	if err := os.Rename(ts.dirPath, newDir); err != nil {
		logger.Warn("keeping transfer directory name", "err", err)

		return
	}

	ts.name = name
	ts.dirPath = newDir

	logger.Info("transfer receiving", "at", ts.startedAt, "id", ts.id, "name", name, "chunks", ts.chunkTotal)
}

// handleData stores one segment, finishing the chunk file when the last
// slot fills.
func (r *Receiver) handleData(p *packet) {
	var ts = r.lookupTransfer(p.transferID, p.chunkTotal)
	if ts == nil {
		return
	}

	ts.lastPacket = r.now()

	if p.chunkTotal != ts.chunkTotal {
		logger.Debug("dropping segment with disagreeing chunk_total", "id", ts.id, "chunk", p.chunkIndex)

		return
	}

	if p.chunkIndex >= ts.chunkTotal || p.segCount == 0 || p.segIndex >= p.segCount {
		logger.Debug("dropping out-of-range segment", "id", ts.id, "chunk", p.chunkIndex, "seg", p.segIndex)

		return
	}

	var re = ts.chunks[p.chunkIndex]
	if re == nil {
		re = &chunkReassembly{segs: make([][]byte, p.segCount)}
		ts.chunks[p.chunkIndex] = re
	}

	if re.done {
		return
	}

	if len(re.segs) != int(p.segCount) {
		logger.Debug("dropping segment with disagreeing seg_count", "id", ts.id, "chunk", p.chunkIndex)

		return
	}

	if existing := re.segs[p.segIndex]; existing != nil {
		if !bytes.Equal(existing, p.payload) {
			logger.Warn("duplicate segment differs, keeping first", "id", ts.id, "chunk", p.chunkIndex, "seg", p.segIndex)
		}

		return
	}

	re.segs[p.segIndex] = p.payload
	re.received++

	if re.received == len(re.segs) {
		r.completeChunk(ts, p.chunkIndex, re)
	}
}

// lookupTransfer finds or creates the state for a transfer_id, with its
// working directory already on disk.
func (r *Receiver) lookupTransfer(id uint32, chunkTotal uint32) *transferState {
	if ts := r.transfers[id]; ts != nil {
		return ts
	}

	var dir = filepath.Join(r.opts.BaseDir, fmt.Sprintf("transfer_%d.holo", id))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Warn("cannot create transfer directory", "err", err)

		return nil
	}

	var ts = &transferState{
		id:         id,
		chunkTotal: chunkTotal,
		dirPath:    dir,
		chunks:     map[uint32]*chunkReassembly{},
		lastPacket: r.now(),
		startedAt:  stampNow(),
	}
	r.transfers[id] = ts

	return ts
}

// completeChunk concatenates the segments and writes the chunk file
// atomically: temp name first, rename after.
func (r *Receiver) completeChunk(ts *transferState, chunkIndex uint32, re *chunkReassembly) {
	var assembled = bytes.Join(re.segs, nil)

	// Segment buffers are not needed anymore.
	re.segs = nil
	re.done = true

	var final = filepath.Join(ts.dirPath, holo.ChunkFileName(int64(chunkIndex), int64(ts.chunkTotal)))
	var tmp = final + ".part"

	if err := os.WriteFile(tmp, assembled, 0o644); err != nil {
		logger.Warn("cannot write chunk file", "err", err)

		return
	}

	if err := os.Rename(tmp, final); err != nil {
		logger.Warn("cannot finalize chunk file", "err", err)

		return
	}

	ts.complete++

	logger.Debug("chunk complete", "id", ts.id, "chunk", chunkIndex, "have", ts.complete, "of", ts.chunkTotal)
}

// finalizeExpired decodes every transfer whose idle budget ran out.
func (r *Receiver) finalizeExpired() {
	var cutoff = r.now().Add(-r.opts.IdleTimeout)

	for id, ts := range r.transfers {
		if ts.lastPacket.After(cutoff) {
			continue
		}

		delete(r.transfers, id)
		r.decodeTransfer(ts)
	}
}

// decodeTransfer runs the codec over the finalized directory. Failed
// transfers keep their directory for inspection; successful ones leave
// only the reconstructed object.
func (r *Receiver) decodeTransfer(ts *transferState) {
	logger.Info("transfer idle, decoding", "at", stampNow(), "id", ts.id, "chunks", ts.complete, "of", ts.chunkTotal, "mode", r.opts.DecodeMode)

	if r.opts.DecodeMode == DecodeStrict && holo.CompleteChunks(ts.dirPath) != int(ts.chunkTotal) {
		logger.Error("transfer failed", "at", stampNow(), "id", ts.id, "err", holo.ErrIncomplete)

		return
	}

	var outPath, err = holo.DecodePath(ts.dirPath)
	if err != nil && !errors.Is(err, holo.ErrIncomplete) {
		logger.Error("transfer failed", "at", stampNow(), "id", ts.id, "err", err)

		return
	}

	if err := os.RemoveAll(ts.dirPath); err != nil {
		logger.Warn("cannot remove transfer directory", "err", err)
	}

	logger.Info("transfer done", "at", stampNow(), "id", ts.id, "output", outPath)
}

func (m DecodeMode) String() string {
	if m == DecodeStrict {
		return "strict"
	}

	return "best"
}
