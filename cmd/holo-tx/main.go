package main

/*------------------------------------------------------------------
 *
 * Purpose:	Send a file to a holo-rx receiver over UDP.
 *
 *		holo-tx <path> <host> [flags]
 *
 *------------------------------------------------------------------*/

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/ciaoidea/holocodec/transport"
)

func main() {
	os.Exit(run())
}

func run() int {
	var port = pflag.Int("port", 9987, "Destination UDP port.")
	var chunkKB = pflag.Int("chunk-kb", 8, "Target chunk size in KiB.")
	var loops = pflag.Int("loops", 3, "Number of full passes over the chunk set; each pass is re-shuffled.")
	var payload = pflag.Int("payload", 1200, "Maximum datagram payload in bytes.")
	var delay = pflag.Duration("delay", 2*time.Millisecond, "Pause between datagrams.")
	var seed = pflag.Uint64("seed", 0, "Shuffle seed; 0 derives one from the transfer id.")
	var verbose = pflag.BoolP("verbose", "v", false, "Enable debug logging.")
	var help = pflag.BoolP("help", "h", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s <path> <host> [flags]\n\n", os.Args[0])
		pflag.PrintDefaults()
	}

	pflag.Parse()

	if *help {
		pflag.Usage()

		return 0
	}

	if *verbose {
		transport.SetLogLevel(log.DebugLevel)
	}

	var args = pflag.Args()
	if len(args) != 2 {
		pflag.Usage()

		return 1
	}

	var addr = net.JoinHostPort(args[1], strconv.Itoa(*port))

	var ctx, stop = signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err = transport.Transmit(ctx, args[0], addr, transport.TxOptions{
		ChunkKB:    *chunkKB,
		Loops:      *loops,
		MaxPayload: *payload,
		Delay:      *delay,
		Seed:       *seed,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)

		return 1
	}

	return 0
}
