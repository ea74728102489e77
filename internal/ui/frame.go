package ui

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// RenderSessionHeader renders a bordered header block with the command
// title and its key/value parameters.
func RenderSessionHeader(title string, params [][2]string) string {
	var b strings.Builder
	b.WriteString(HeaderTitleStyle.Render(title))
	b.WriteString("\n")
	for _, kv := range params {
		b.WriteString(HeaderParamKeyStyle.Render(kv[0] + ": "))
		b.WriteString(HeaderParamValueStyle.Render(kv[1]))
		b.WriteString("\n")
	}
	return HeaderBorderStyle().Render(strings.TrimRight(b.String(), "\n"))
}

// FormatFrameLine renders one decoded frame as a single output line:
// timestamp, command echo, status and payload hex.
func FormatFrameLine(ts time.Time, cmdEcho byte, status uint16, payload []byte) string {
	statusStyle := StatusOkStyle
	if status != 0 {
		statusStyle = StatusErrStyle
	}

	payloadHex := "-"
	if len(payload) > 0 {
		payloadHex = hex.EncodeToString(payload)
	}

	return fmt.Sprintf("%s  %s  %s  %s",
		TimestampStyle.Render(ts.Format("15:04:05.000")),
		CmdStyle.Render(fmt.Sprintf("cmd 0x%02x", cmdEcho)),
		statusStyle.Render(fmt.Sprintf("status 0x%04x", status)),
		PayloadStyle.Render(payloadHex),
	)
}

// FormatStreamWarning renders a stream corruption notice.
func FormatStreamWarning(ts time.Time, err error) string {
	return fmt.Sprintf("%s  %s",
		TimestampStyle.Render(ts.Format("15:04:05.000")),
		StreamWarnStyle.Render("resync: "+err.Error()),
	)
}

// FormatStats renders the session counters footer.
func FormatStats(bytesRead, bytesDropped, framesDecoded, decodeErrors uint64) string {
	return StatsStyle.Render(fmt.Sprintf(
		"bytes %d  dropped %d  frames %d  errors %d",
		bytesRead, bytesDropped, framesDecoded, decodeErrors,
	))
}

// RenderSuccess renders a success result block with optional details.
func RenderSuccess(title string, details [][2]string) string {
	var b strings.Builder
	b.WriteString(SuccessTitleStyle.Render(SuccessMarker + " " + title))
	for _, kv := range details {
		b.WriteString("\n")
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			ResultKeyStyle.Render("  "+kv[0]),
			ResultValueStyle.Render(kv[1]),
		))
	}
	return b.String()
}

// RenderError renders a failure result block.
func RenderError(title string, err error) string {
	return ErrorTitleStyle.Render(FailureMarker+" "+title) + "\n" +
		ErrorMessageStyle.Render("  "+err.Error())
}
