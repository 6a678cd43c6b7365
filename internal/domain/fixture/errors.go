package fixture

import "errors"

// ErrUnrecognizedListing means the fixtures markup contained none of the
// expected date headers, usually because the source site layout changed.
var ErrUnrecognizedListing = errors.New("listing has no fixture date headers")
