package main

/*------------------------------------------------------------------
 *
 * Purpose:	Receive holo transfers over UDP and decode them once
 *		they go idle.
 *
 *		holo-rx [flags]
 *
 *------------------------------------------------------------------*/

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/ciaoidea/holocodec/transport"
)

func main() {
	os.Exit(run())
}

func run() int {
	var port = pflag.Int("port", 9987, "UDP port to listen on.")
	var baseDir = pflag.String("base-dir", ".", "Directory for transfer working directories and decoded output.")
	var idleTimeout = pflag.Duration("idle-timeout", 3*time.Second, "Decode a transfer after this long with no packets.")
	var payload = pflag.Int("payload", 1200, "Expected maximum datagram payload; informational, the sender sizes datagrams.")
	var decodeMode = pflag.String("decode-mode", "best", "best decodes whatever arrived; strict requires every chunk.")
	var announce = pflag.Bool("announce", false, "Announce this receiver over DNS-SD on the local network.")
	var announceName = pflag.String("announce-name", "", "DNS-SD service name; default derives from the hostname.")
	var verbose = pflag.BoolP("verbose", "v", false, "Enable debug logging.")
	var help = pflag.BoolP("help", "h", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags]\n\n", os.Args[0])
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

	_ = *payload // datagrams are sized by the sender; the flag exists so tx and rx share a vocabulary

	var mode, modeErr = transport.ParseDecodeMode(*decodeMode)
	if modeErr != nil {
		fmt.Fprintf(os.Stderr, "%v\n", modeErr)

		return 1
	}

	var rx, rxErr = transport.NewReceiver(transport.RxOptions{
		Port:         *port,
		BaseDir:      *baseDir,
		IdleTimeout:  *idleTimeout,
		DecodeMode:   mode,
		Announce:     *announce,
		AnnounceName: *announceName,
	})
	if rxErr != nil {
		fmt.Fprintf(os.Stderr, "%v\n", rxErr)

		return 1
	}

	var ctx, stop = signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rx.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "%v\n", err)

		return 1
	}

	return 0
}
