package tetra

import "errors"

var (
	ErrOutOfWindow    = errors.New("bit range outside buffered window")
	ErrInvalidSession = errors.New("invalid receive session")
	ErrInvalidBand    = errors.New("invalid frequency band")
	ErrInvalidConfig  = errors.New("invalid configuration")

	// Returned by logical-channel codecs.  Routine on a noisy channel.
	ErrMalformed = errors.New("malformed PDU")
	ErrCRC       = errors.New("CRC mismatch")
)
