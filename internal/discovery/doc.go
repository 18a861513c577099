// Package discovery locates Lumakit DMX gateways reachable from this
// machine.
//
// Discovery runs in two phases. Enumeration collects candidate endpoints:
// every local serial port, plus any gateway advertising the
// "_dmxlink._tcp" service over mDNS. Probing then connects to each
// candidate and runs the identify handshake; only candidates that answer
// with a valid identify record are reported as gateways.
//
// # Usage Example
//
//	gateways, err := discovery.Scan(5 * time.Second)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, gw := range gateways {
//	    fmt.Println(gw)
//	}
//
// # Network Requirements
//
// mDNS browsing requires multicast support on the network interface and a
// firewall that allows UDP port 5353. When browsing fails, discovery
// degrades to serial enumeration only.
//
// Probing opens serial ports exclusively, so a scan will briefly hold
// every enumerated port. Devices that are not gateways simply time out
// during the handshake and are skipped.
package discovery
