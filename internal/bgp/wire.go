package bgp

import (
	"encoding/binary"
	"fmt"
	"net"
)

// Message is the tagged variant of what rides inside one IPFrame's
// transport.BGPPayload, per spec.md §4.4: Open, Update, Notification.
type Message interface {
	isMessage()
}

// OpenMessage carries the AS number and BGP id, spec.md §4.4.
type OpenMessage struct {
	ASNumber uint16
	BGPID    uint32
}

func (OpenMessage) isMessage() {}

// UpdateMessage announces or withdraws a single prefix. The real BGP wire
// format allows batching several NLRI/withdrawals per UPDATE; this
// simulator's speaker emits one per change, which is sufficient for the
// policy being modeled and keeps the decision process trivially
// attributable to a single causal event for the event sink.
type UpdateMessage struct {
	Withdraw  bool
	Prefix    string // CIDR
	ASPath    []int
	NextHop   string
	LocalPref uint32
}

func (UpdateMessage) isMessage() {}

// NotificationMessage is reserved for invariant violations, spec.md §4.4:
// "unused in steady state; reserved for invariant violations a
// conservative implementation may raise."
type NotificationMessage struct {
	Code    uint8
	Subcode uint8
	Reason  string
}

func (NotificationMessage) isMessage() {}

// Encode serializes msg into a BGP header + body, mirroring the wire shape
// the teacher's internal/bgp decodes (marker/length/type header, TLV path
// attributes with the same type codes), generalized to also produce bytes
// rather than only parse them.
func Encode(msg Message) ([]byte, error) {
	var msgType uint8
	var body []byte
	var err error

	switch m := msg.(type) {
	case OpenMessage:
		msgType = MsgTypeOpen
		body = encodeOpen(m)
	case UpdateMessage:
		msgType = MsgTypeUpdate
		body, err = encodeUpdate(m)
	case NotificationMessage:
		msgType = MsgTypeNotification
		body = encodeNotification(m)
	default:
		return nil, fmt.Errorf("bgp: unknown message type %T", msg)
	}
	if err != nil {
		return nil, err
	}

	out := make([]byte, BGPHeaderSize+len(body))
	// 16-byte marker is unused (no authentication modeled); length+type
	// follow it, matching the teacher's BGPHeaderSize layout.
	binary.BigEndian.PutUint16(out[16:18], uint16(BGPHeaderSize+len(body)))
	out[18] = msgType
	copy(out[BGPHeaderSize:], body)
	return out, nil
}

// Decode parses the bytes Encode produced.
func Decode(data []byte) (Message, error) {
	if len(data) < BGPHeaderSize {
		return nil, fmt.Errorf("bgp: message truncated: %d bytes", len(data))
	}
	msgType := data[18]
	body := data[BGPHeaderSize:]

	switch msgType {
	case MsgTypeOpen:
		return decodeOpen(body)
	case MsgTypeUpdate:
		return decodeUpdate(body)
	case MsgTypeNotification:
		return decodeNotification(body), nil
	default:
		return nil, fmt.Errorf("bgp: unknown message type %d", msgType)
	}
}

func encodeOpen(m OpenMessage) []byte {
	b := make([]byte, 6)
	binary.BigEndian.PutUint16(b[0:2], m.ASNumber)
	binary.BigEndian.PutUint32(b[2:6], m.BGPID)
	return b
}

func decodeOpen(data []byte) (Message, error) {
	if len(data) < 6 {
		return nil, fmt.Errorf("bgp: OPEN truncated")
	}
	return OpenMessage{
		ASNumber: binary.BigEndian.Uint16(data[0:2]),
		BGPID:    binary.BigEndian.Uint32(data[2:6]),
	}, nil
}

func encodeNotification(m NotificationMessage) []byte {
	b := make([]byte, 2+len(m.Reason))
	b[0] = m.Code
	b[1] = m.Subcode
	copy(b[2:], m.Reason)
	return b
}

func decodeNotification(data []byte) Message {
	m := NotificationMessage{}
	if len(data) >= 2 {
		m.Code, m.Subcode = data[0], data[1]
		m.Reason = string(data[2:])
	}
	return m
}

// encodeUpdate lays out: 1 byte withdraw flag, 1 byte prefix length, 4
// bytes prefix network address, then — for announcements only — three
// TLV path attributes using the teacher's attribute type codes: AS_PATH,
// NEXT_HOP, LOCAL_PREF.
func encodeUpdate(m UpdateMessage) ([]byte, error) {
	ip, ipNet, err := net.ParseCIDR(m.Prefix)
	if err != nil {
		return nil, fmt.Errorf("bgp: bad prefix %q: %w", m.Prefix, err)
	}
	_ = ip
	ones, _ := ipNet.Mask.Size()

	body := []byte{0, byte(ones)}
	if m.Withdraw {
		body[0] = 1
	}
	body = append(body, ipNet.IP.To4()...)

	if m.Withdraw {
		return body, nil
	}

	body = append(body, encodeASPathAttr(m.ASPath)...)
	body = append(body, encodeNextHopAttr(m.NextHop)...)
	body = append(body, encodeLocalPrefAttr(m.LocalPref)...)
	return body, nil
}

func decodeUpdate(data []byte) (Message, error) {
	if len(data) < 6 {
		return nil, fmt.Errorf("bgp: UPDATE truncated")
	}
	withdraw := data[0] == 1
	prefixLen := data[1]
	ip := net.IP(data[2:6])
	m := UpdateMessage{
		Withdraw: withdraw,
		Prefix:   fmt.Sprintf("%s/%d", ip.String(), prefixLen),
	}
	if withdraw {
		return m, nil
	}

	offset := 6
	for offset < len(data) {
		if offset+2 > len(data) {
			return nil, fmt.Errorf("bgp: attr header truncated at %d", offset)
		}
		typeCode := data[offset]
		attrLen := int(data[offset+1])
		offset += 2
		if offset+attrLen > len(data) {
			return nil, fmt.Errorf("bgp: attr data truncated (type %d)", typeCode)
		}
		attrData := data[offset : offset+attrLen]
		offset += attrLen

		switch typeCode {
		case AttrTypeASPath:
			m.ASPath = decodeASPathAttr(attrData)
		case AttrTypeNextHop:
			if len(attrData) == 4 {
				m.NextHop = net.IP(attrData).String()
			}
		case AttrTypeLocalPref:
			if len(attrData) == 4 {
				m.LocalPref = binary.BigEndian.Uint32(attrData)
			}
		}
	}
	return m, nil
}

func encodeASPathAttr(asPath []int) []byte {
	segBody := make([]byte, 2+4*len(asPath))
	segBody[0] = ASPathSegmentSequence
	segBody[1] = byte(len(asPath))
	for i, as := range asPath {
		binary.BigEndian.PutUint32(segBody[2+4*i:6+4*i], uint32(as))
	}
	return append([]byte{AttrTypeASPath, byte(len(segBody))}, segBody...)
}

func decodeASPathAttr(data []byte) []int {
	var path []int
	offset := 0
	for offset+2 <= len(data) {
		segLen := int(data[offset+1])
		offset += 2
		for i := 0; i < segLen && offset+4 <= len(data); i++ {
			path = append(path, int(binary.BigEndian.Uint32(data[offset:offset+4])))
			offset += 4
		}
	}
	return path
}

func encodeNextHopAttr(nextHop string) []byte {
	ip := net.ParseIP(nextHop).To4()
	if ip == nil {
		ip = make([]byte, 4)
	}
	return append([]byte{AttrTypeNextHop, 4}, ip...)
}

func encodeLocalPrefAttr(pref uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, pref)
	return append([]byte{AttrTypeLocalPref, 4}, b...)
}
