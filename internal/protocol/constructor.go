package protocol

import (
	"encoding/binary"
	"fmt"
)

// Command identifies a command word sent to the sensor. The sensor echoes
// the low byte back in the response frame (see Frame.CmdEcho).
type Command uint16

// Command IDs understood by the LD2420 module.
const (
	CmdOpenConfigMode  Command = 0xFF
	CmdCloseConfigMode Command = 0xFE
	CmdReadVersion     Command = 0x00
	CmdReadConfig      Command = 0x08
	CmdSetConfig       Command = 0x07
	CmdReboot          Command = 0x68
)

// Configuration parameter IDs carried by read/config commands. Their
// value semantics are firmware-specific and not interpreted here.
const (
	ParamMinDistance  uint16 = 0x00
	ParamMaxDistance  uint16 = 0x01
	ParamDelayTime    uint16 = 0x04
	ParamTriggerBase  uint16 = 0x10
	ParamMaintainBase uint16 = 0x20
)

// configProtocolVersion is the 16-bit value carried by the open config
// mode command.
const configProtocolVersion uint16 = 0x0001

// String returns a human-readable command name.
func (c Command) String() string {
	switch c {
	case CmdOpenConfigMode:
		return "OpenConfigMode"
	case CmdCloseConfigMode:
		return "CloseConfigMode"
	case CmdReadVersion:
		return "ReadVersion"
	case CmdReadConfig:
		return "ReadConfig"
	case CmdSetConfig:
		return "SetConfig"
	case CmdReboot:
		return "Reboot"
	default:
		return fmt.Sprintf("Command(0x%02x)", uint16(c))
	}
}

// Echo returns the byte the sensor echoes back for this command.
func (c Command) Echo() byte {
	return byte(c)
}

// BuildCommand serializes a command frame for transmission:
//
//	header (4) | intra-frame length (2, LE) | command (2, LE) | params | footer (4)
//
// The intra-frame length counts the command word plus the parameter
// bytes. Returns ErrInvalidArguments if params would push the frame past
// the transmit maximum.
func BuildCommand(cmd Command, params []byte) ([]byte, error) {
	total := HeaderSize + LengthSize + 2 + len(params) + FooterSize
	if total > MaxTxFrameSize {
		return nil, fmt.Errorf("%w: %d byte command frame exceeds maximum %d",
			ErrInvalidArguments, total, MaxTxFrameSize)
	}

	buf := make([]byte, total)
	n := copy(buf, FrameHeader[:])
	binary.LittleEndian.PutUint16(buf[n:], uint16(2+len(params)))
	n += LengthSize
	binary.LittleEndian.PutUint16(buf[n:], uint16(cmd))
	n += 2
	n += copy(buf[n:], params)
	copy(buf[n:], FrameFooter[:])
	return buf, nil
}

// OpenConfigModeParams returns the parameter bytes carried by the open
// config mode command: the config protocol version word, little-endian.
func OpenConfigModeParams() []byte {
	var params [2]byte
	binary.LittleEndian.PutUint16(params[:], configProtocolVersion)
	return params[:]
}

// ParseVersionPayload extracts the firmware version string from a read
// version response payload. The payload is a 16-bit string length
// followed by the ASCII version text. Malformed payloads yield "".
func ParseVersionPayload(payload []byte) string {
	if len(payload) < 2 {
		return ""
	}
	n := int(binary.LittleEndian.Uint16(payload))
	if n > len(payload)-2 {
		n = len(payload) - 2
	}
	return string(payload[2 : 2+n])
}

// BuildOpenConfigMode builds the command that puts the sensor into
// configuration mode. It carries the config protocol version word; the
// sensor answers with its own protocol version and buffer size in the
// response payload.
func BuildOpenConfigMode() []byte {
	buf, _ := BuildCommand(CmdOpenConfigMode, OpenConfigModeParams())
	return buf
}

// BuildCloseConfigMode builds the command that returns the sensor to
// normal reporting mode.
func BuildCloseConfigMode() []byte {
	buf, _ := BuildCommand(CmdCloseConfigMode, nil)
	return buf
}

// BuildReadVersion builds the firmware version query. Valid only while
// configuration mode is open.
func BuildReadVersion() []byte {
	buf, _ := BuildCommand(CmdReadVersion, nil)
	return buf
}

// BuildReboot builds the module reboot command. Valid only while
// configuration mode is open.
func BuildReboot() []byte {
	buf, _ := BuildCommand(CmdReboot, nil)
	return buf
}
