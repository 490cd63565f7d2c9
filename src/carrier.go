package tetra

import (
	"fmt"
)

/*
 * Carrier frequencies from the fields of SYSINFO / D-MLE-SYSINFO.
 * TS 100 392-2, 21.4.4.1.
 */

const (
	bandBaseHz       = 100_000_000
	carrierSpacingHz = 25_000
	maxBand          = 9
)

var carrierOffsetHz = [4]int64{0, +6_250, -6_250, +12_500}

// Duplex spacing in kHz, indexed by duplex spacing field then frequency band.
// -1 is reserved.
var duplexSpacingKHz = [8][16]int64{
	{-1, 1600, 10000, 10000, 10000, 10000, 10000, -1, -1, -1, -1, -1, -1, -1, -1, -1},
	{-1, 4500, -1, 36000, 7000, -1, -1, -1, 45000, 45000, -1, -1, -1, -1, -1, -1},
	{-1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
	{-1, -1, -1, 8000, 8000, -1, -1, -1, 18000, 18000, -1, -1, -1, -1, -1, -1},
	{-1, -1, -1, 18000, 5000, -1, 30000, 30000, -1, 39000, -1, -1, -1, -1, -1, -1},
	{-1, -1, -1, -1, 9500, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1},
	{-1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1},
	{-1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1},
}

// DownlinkHz is band * 100 MHz + carrier * 25 kHz + the offset code
// (0: none, 1: +6.25 kHz, 2: -6.25 kHz, 3: +12.5 kHz).
func DownlinkHz(band uint8, carrier uint16, offset uint8) (int64, error) {
	if band == 0 || band > maxBand {
		return 0, fmt.Errorf("%w: %d", ErrInvalidBand, band)
	}

	return int64(band)*bandBaseHz + int64(carrier)*carrierSpacingHz + carrierOffsetHz[offset&3], nil
}

// UplinkHz is the downlink frequency less the duplex spacing, or plus it
// for reverse operation.
func UplinkHz(band uint8, carrier uint16, offset uint8, duplex uint8, reverse bool) (int64, error) {
	var dl, err = DownlinkHz(band, carrier, offset)
	if err != nil {
		return 0, err
	}

	var spacing = duplexSpacingKHz[duplex&7][band&15]
	if spacing < 0 {
		return 0, fmt.Errorf("%w: duplex spacing %d reserved for band %d", ErrInvalidBand, duplex&7, band)
	}

	spacing *= 1000

	if reverse {
		return dl + spacing, nil
	}

	return dl - spacing, nil
}
