package mqttclock

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Encoding selects the payload format of published readings.
type Encoding string

const (
	JSON Encoding = "json"
	CBOR Encoding = "cbor"
)

// Reading is the payload published for each read of the clock.
type Reading struct {
	Time time.Time `json:"time" cbor:"1,keyasint"`
	Unix int64     `json:"unix" cbor:"2,keyasint"`
}

// NewReading returns the reading for t.
func NewReading(t time.Time) Reading {
	return Reading{
		Time: t.UTC(),
		Unix: t.Unix(),
	}
}

// encMode encodes readings canonically with RFC 3339 timestamps; the clocks only resolve seconds.
var encMode cbor.EncMode

func init() {
	opts := cbor.CanonicalEncOptions()
	opts.Time = cbor.TimeRFC3339
	var err error
	encMode, err = opts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create reading CBOR encoder mode: %v", err))
	}
}

// Encode encodes r in the given format.
func Encode(r Reading, enc Encoding) ([]byte, error) {
	switch enc {
	case JSON:
		return json.Marshal(r)
	case CBOR:
		return encMode.Marshal(r)
	}
	return nil, fmt.Errorf("mqttclock: unknown encoding %q", enc)
}

// Decode decodes a reading encoded by Encode.
func Decode(data []byte, enc Encoding) (Reading, error) {
	var r Reading
	var err error
	switch enc {
	case JSON:
		err = json.Unmarshal(data, &r)
	case CBOR:
		err = cbor.Unmarshal(data, &r)
	default:
		return Reading{}, fmt.Errorf("mqttclock: unknown encoding %q", enc)
	}
	if err != nil {
		return Reading{}, fmt.Errorf("mqttclock: cannot decode %s reading: %w", enc, err)
	}
	return r, nil
}
