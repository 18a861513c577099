// Package bridge forwards live sACN (E1.31) lighting data to a DMX
// gateway.
//
// The bridge joins the multicast group of every configured sACN universe
// and, whenever a source changes the data, pushes the full universe to
// the gateway with one SetUniverseData write. Universe numbers are mapped
// through the bridge section of the configuration file, so sACN universe
// 1 can drive gateway universe 0 and so on.
//
// The gateway accepts one in-flight operation at a time. Frames that
// arrive while a write is pending are dropped rather than queued; sACN
// sources retransmit continuously, so a newer frame always follows.
package bridge
