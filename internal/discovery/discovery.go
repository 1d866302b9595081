// Package discovery announces a local ringwolf daemon over mDNS/DNS-SD so a
// companion app on the same network can find it without a typed-in address,
// the same job the teacher's dns_sd.go does for its KISS-over-TCP service.
package discovery

import (
	"context"
	"fmt"
	"os"

	"github.com/brutella/dnssd"
)

// ServiceType is the DNS-SD service type ringwolf advertises.
const ServiceType = "_ringwolf._tcp"

// Announcer runs the DNS-SD responder for as long as its context is live.
type Announcer struct {
	name string
	port int
}

// New prepares an announcer. If name is empty, the host's name is used,
// mirroring dns_sd_default_service_name in the teacher codebase.
func New(name string, port int) *Announcer {
	if name == "" {
		name = defaultServiceName()
	}
	return &Announcer{name: name, port: port}
}

func defaultServiceName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "ringwolf"
	}
	return host
}

// Run creates the service and responds to queries until ctx is canceled.
// Announce failures are returned rather than logged-and-ignored so the
// caller's supervision tree decides whether discovery is load-bearing.
func (a *Announcer) Run(ctx context.Context) error {
	cfg := dnssd.Config{
		Name: a.name,
		Type: ServiceType,
		Port: a.port,
	}

	service, err := dnssd.NewService(cfg)
	if err != nil {
		return fmt.Errorf("discovery: creating service: %w", err)
	}

	responder, err := dnssd.NewResponder()
	if err != nil {
		return fmt.Errorf("discovery: creating responder: %w", err)
	}

	if _, err := responder.Add(service); err != nil {
		return fmt.Errorf("discovery: adding service: %w", err)
	}

	return responder.Respond(ctx)
}
