package config

import (
	"os"
	"path/filepath"

	"github.com/pkt-cash/iriswallet/er"
)

// SampleConfig is written to the data directory on first run.
const SampleConfig = `[Application Options]

; Logging level {trace, debug, info, warn, error, critical}
; debuglevel=info

; Node daemon of embedded wallets and where it listens
; nodebin=rgb-lightning-node
; nodeaddr=127.0.0.1:3001
; ldkpeerport=9735

; Network used before one has been chosen {mainnet, testnet, regtest}
; network=regtest

; Node timeouts
; readtimeout=30s
; transfertimeout=2m
; unlocktimeout=30s
; synctoastafter=10m
; startattempts=12

; Background workers, 0 is the CPU count clamped to [2, 8]
; workers=0

; Serve Prometheus metrics
; metrics=127.0.0.1:9090

; Passed to the node when it is unlocked
; indexerurl=127.0.0.1:50001
; proxyendpoint=rpc://127.0.0.1:3000/json-rpc
; bitcoindrpchost=localhost
; bitcoindrpcport=18443
; bitcoindrpcuser=user
; bitcoindrpcpass=password
`

func createDefaultConfigFile(path string) er.R {
	if errr := os.MkdirAll(filepath.Dir(path), 0o700); errr != nil {
		return er.E(errr)
	}
	return er.E(os.WriteFile(path, []byte(SampleConfig), 0o600))
}
