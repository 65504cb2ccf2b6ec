package transport

/*------------------------------------------------------------------
 *
 * Purpose:	Announce a receiver using DNS-SD, so a sender on the same
 *		LAN can pick it from a browse list instead of typing an
 *		address and port.
 *
 * Description:	Pure-Go mDNS via github.com/brutella/dnssd; no system
 *		daemon or C library needed.
 *
 *------------------------------------------------------------------*/

import (
	"context"
	"os"

	"github.com/brutella/dnssd"
)

const dnsSDService = "_holo-rx._udp"

func announceReceiver(name string, port int) {
	if name == "" {
		var host, err = os.Hostname()
		if err != nil {
			host = "holo"
		}

		name = "Holo Receiver on " + host
	}

	var cfg = dnssd.Config{ //nolint:exhaustruct
		Name: name,
		Type: dnsSDService,
		Port: port,
	}

	var sv, svErr = dnssd.NewService(cfg)
	if svErr != nil {
		logger.Warn("DNS-SD: cannot create service", "err", svErr)

		return
	}

	var rp, rpErr = dnssd.NewResponder()
	if rpErr != nil {
		logger.Warn("DNS-SD: cannot create responder", "err", rpErr)

		return
	}

	var _, addErr = rp.Add(sv)
	if addErr != nil {
		logger.Warn("DNS-SD: cannot add service", "err", addErr)

		return
	}

	logger.Info("DNS-SD: announcing", "name", name, "type", dnsSDService, "port", port)

	go func() {
		if err := rp.Respond(context.Background()); err != nil {
			logger.Warn("DNS-SD: responder stopped", "err", err)
		}
	}()
}
