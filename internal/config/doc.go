// Package config manages the user configuration file for the dmxlink
// tools.
//
// The configuration is a single YAML file in the platform's standard
// config directory (e.g., ~/.config/dmxlink/config.yaml on Linux). It
// stores client-side metadata only: the default endpoint, nicknames and
// last-seen records for known gateways, timing preferences, and the sACN
// bridge universe mappings. Nothing in this file is read by or written to
// the gateway itself.
//
// Saves are atomic: the file is written to a temporary path and renamed
// into place.
package config
