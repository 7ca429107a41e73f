package pskreporter

// Field length limits enforced on decoded reports. Longer values are
// truncated rather than rejected.
const (
	maxCallsignLen = 20
	maxLocatorLen  = 10
	maxModeLen     = 16
)

// ReceptionReport is one monitor report as returned by the retrieval
// API. JSON tags follow the wire field names.
type ReceptionReport struct {
	ReceiverCallsign string `json:"receiverCallsign"`
	ReceiverLocator  string `json:"receiverLocator"`
	SenderCallsign   string `json:"senderCallsign"`
	SenderLocator    string `json:"senderLocator"`
	Frequency        uint64 `json:"frequency"`
	FlowStartSeconds uint64 `json:"flowStartSeconds"`
	Mode             string `json:"mode"`
	SNR              int32  `json:"sNR"`
}

// clamp truncates string fields to their limits in place.
func (r *ReceptionReport) clamp() {
	if len(r.ReceiverCallsign) > maxCallsignLen {
		r.ReceiverCallsign = r.ReceiverCallsign[:maxCallsignLen]
	}
	if len(r.SenderCallsign) > maxCallsignLen {
		r.SenderCallsign = r.SenderCallsign[:maxCallsignLen]
	}
	if len(r.ReceiverLocator) > maxLocatorLen {
		r.ReceiverLocator = r.ReceiverLocator[:maxLocatorLen]
	}
	if len(r.SenderLocator) > maxLocatorLen {
		r.SenderLocator = r.SenderLocator[:maxLocatorLen]
	}
	if len(r.Mode) > maxModeLen {
		r.Mode = r.Mode[:maxModeLen]
	}
}

// apiResponse is the payload inside the JSONP wrapper on success.
type apiResponse struct {
	CurrentSeconds uint64            `json:"currentSeconds"`
	Reports        []ReceptionReport `json:"receptionReport"`
}

// apiError is the payload the server returns instead of a report list
// when it refuses the query.
type apiError struct {
	Message string `json:"message"`
}
