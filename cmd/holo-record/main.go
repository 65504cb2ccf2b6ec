package main

/*------------------------------------------------------------------
 *
 * Purpose:	Capture audio from the default input device, write it as
 *		a WAV file, and optionally encode it straight into a
 *		chunk directory.
 *
 *		holo-record [flags] <out.wav>
 *
 *------------------------------------------------------------------*/

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gordonklaus/portaudio"
	"github.com/spf13/pflag"

	"github.com/ciaoidea/holocodec/holo"
)

func main() {
	os.Exit(run())
}

func run() int {
	var seconds = pflag.Float64("seconds", 5, "Recording length in seconds.")
	var rate = pflag.Int("rate", 48000, "Sample rate.")
	var channels = pflag.Int("channels", 1, "Number of input channels.")
	var chunkKB = pflag.Int("chunk-kb", 4, "Target chunk size in KiB when encoding.")
	var encode = pflag.Bool("encode", false, "Encode the recording into <out.wav>.holo/ after capture.")
	var verbose = pflag.BoolP("verbose", "v", false, "Enable debug logging.")
	var help = pflag.BoolP("help", "h", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <out.wav>\n\n", os.Args[0])
		pflag.PrintDefaults()
	}

	pflag.Parse()

	if *help {
		pflag.Usage()

		return 0
	}

	if *verbose {
		holo.SetLogLevel(log.DebugLevel)
	}

	var args = pflag.Args()
	if len(args) != 1 || *seconds <= 0 || *channels < 1 {
		pflag.Usage()

		return 1
	}

	var outPath = args[0]

	var ctx, stop = signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var pcm, capErr = capture(ctx, *rate, *channels, *seconds)
	if capErr != nil {
		fmt.Fprintf(os.Stderr, "%v\n", capErr)

		return 1
	}

	if err := holo.WriteWAV(outPath, pcm); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)

		return 1
	}

	fmt.Println(outPath)

	if *encode {
		var outDir, _, encErr = holo.EncodePath(outPath, holo.EncodeOptions{TargetKB: *chunkKB})
		if encErr != nil {
			fmt.Fprintf(os.Stderr, "%v\n", encErr)

			return 1
		}

		fmt.Println(outDir)
	}

	return 0
}

// capture reads from the default input device until the requested
// duration elapses or ctx is cancelled (which keeps what was captured
// so far).
func capture(ctx context.Context, rate, channels int, seconds float64) (*holo.PCMAudio, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio: %w", err)
	}
	defer portaudio.Terminate()

	var frameBuf = make([]int16, 1024*channels)

	var stream, openErr = portaudio.OpenDefaultStream(channels, 0, float64(rate), len(frameBuf)/channels, frameBuf)
	if openErr != nil {
		return nil, fmt.Errorf("portaudio: %w", openErr)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, fmt.Errorf("portaudio: %w", err)
	}
	defer stream.Stop()

	var want = int(seconds * float64(rate))
	var samples = make([]int16, 0, want*channels)

	var deadline = time.Now().Add(time.Duration(seconds * float64(time.Second)))

	for len(samples) < want*channels && time.Now().Before(deadline.Add(time.Second)) {
		if ctx.Err() != nil {
			break
		}

		if err := stream.Read(); err != nil {
			return nil, fmt.Errorf("portaudio: %w", err)
		}

		samples = append(samples, frameBuf...)
	}

	if len(samples) > want*channels {
		samples = samples[:want*channels]
	}

	return &holo.PCMAudio{SampleRate: rate, Channels: channels, Samples: samples}, nil
}
