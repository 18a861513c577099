// Package device implements the client session for a single Lumakit DMX
// gateway: opening the endpoint, the identify handshake, and the full
// operation catalog.
//
// A Device owns one transport endpoint and one background read goroutine.
// The gateway answers at most one request at a time, so the device keeps a
// single pending operation slot; starting a second request while one is in
// flight fails with ErrBusy rather than silently replacing the first.
//
// Request operations block until the response completes or the operation
// budget elapses. Fire-and-forget operations return as soon as the message
// has been written. Connect retries failed opens in 100ms steps until its
// budget is spent.
//
// Typical use:
//
//	d := device.New("/dev/ttyUSB0")
//	if err := d.Connect(2 * time.Second); err != nil {
//		return err
//	}
//	defer d.Close()
//
//	id, err := d.Identify(time.Second)
//	if err != nil {
//		return err
//	}
//	fmt.Println(id.Model, id.Version)
package device
